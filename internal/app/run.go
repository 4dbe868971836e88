package app

import (
	"context"
	"fmt"

	"github.com/vk/flowforgego/internal/ctxlog"
	"github.com/vk/flowforgego/internal/engine"
	"github.com/vk/flowforgego/internal/plugin"
)

// Run executes the main application logic: the plugin phases first, then
// the task engine over the workflow's task graph.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")

	if a.config.HealthcheckPort > 0 {
		a.startHealthcheckServer(ctx)
		defer a.closeHealthcheckServer(ctx)
	}

	scaffold := engine.NewContext()

	plugins, err := a.registry.BuildPlugins(a.model)
	if err != nil {
		return fmt.Errorf("failed to build plugins: %w", err)
	}
	if len(plugins) > 0 {
		pluginResult, err := plugin.NewExecutor().Execute(ctx, plugins, scaffold)
		if err != nil {
			return fmt.Errorf("plugin execution failed: %w", err)
		}
		if !pluginResult.Success() {
			// Plugin hook failures never block the task run; the phased
			// executor already logged each one.
			a.logger.Warn("Continuing run despite plugin failures.", "failures", len(pluginResult.Errors))
		}
	}

	tasks, err := a.registry.BuildTasks(a.model, a.converter)
	if err != nil {
		return fmt.Errorf("failed to build task graph: %w", err)
	}
	if len(tasks) == 0 {
		a.logger.Warn("No tasks found in workflow, execution not required.")
		return nil
	}

	eng := engine.New(engine.Options{
		Workers:         a.config.Workers,
		TaskTimeout:     a.config.TaskTimeout,
		ContinueOnError: a.config.ContinueOnError,
		NoAutoRecovery:  a.config.NoRecovery,
	}, a.classifier, a.planner)

	if _, err := eng.Execute(ctx, tasks, scaffold); err != nil {
		return fmt.Errorf("execution failed: %w", err)
	}

	a.logger.Debug("App.Run method finished.")
	return nil
}
