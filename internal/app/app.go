package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/vk/flowforgego/internal/classify"
	"github.com/vk/flowforgego/internal/config"
	"github.com/vk/flowforgego/internal/ctxlog"
	"github.com/vk/flowforgego/internal/recovery"
	"github.com/vk/flowforgego/internal/registry"
)

// App encapsulates the application's dependencies, configuration, and
// lifecycle.
type App struct {
	outW       io.Writer
	logger     *slog.Logger
	config     *Config
	registry   *registry.Registry
	model      *config.Model
	converter  config.Converter
	classifier *classify.Classifier
	planner    *recovery.Synthesizer
	httpServer *http.Server
}

// New is the constructor for the main application. It returns a fully
// initialized App instance, including its own isolated logger and registry.
func New(outW io.Writer, appConfig *Config, loader config.Loader, modules ...registry.Module) *App {
	logger := newLogger(appConfig.LogLevel, appConfig.LogFormat, outW)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	cfgModel, converter, err := loader.Load(ctx, appConfig.WorkflowPath)
	if err != nil {
		// A failure to load config is a fatal startup error.
		panic(fmt.Errorf("failed to load configuration: %w", err))
	}
	logger.Debug("Configuration loaded and translated into unified model.")

	reg := registry.New()
	if len(modules) == 0 {
		modules = coreModules
	}
	for _, mod := range modules {
		mod.Register(reg)
	}
	registerCorePlugins(reg)
	logger.Debug("All Go modules registered.", "count", len(modules))

	if err := reg.Validate(cfgModel); err != nil {
		// A mismatch between workflow files and compiled code is fatal.
		panic(err)
	}
	logger.Debug("Registry validation passed.")

	return &App{
		outW:       outW,
		logger:     logger,
		config:     appConfig,
		registry:   reg,
		model:      cfgModel,
		converter:  converter,
		classifier: classify.New(classify.Options{}),
		planner:    recovery.New(recovery.Options{}),
	}
}

// Registry returns the application's registry. This is primarily for testing.
func (a *App) Registry() *registry.Registry {
	return a.registry
}

// Model returns the loaded configuration model. Primarily for testing.
func (a *App) Model() *config.Model {
	return a.model
}
