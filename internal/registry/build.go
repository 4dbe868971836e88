package registry

import (
	"context"
	"fmt"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/zclconf/go-cty/cty"

	"github.com/vk/flowforgego/internal/config"
	"github.com/vk/flowforgego/internal/engine"
	"github.com/vk/flowforgego/internal/plugin"
)

// Validate performs a strict check of the loaded model against the
// registered Go code. Every module and plugin type a workflow names must
// have a handler; all violations are reported at once.
func (r *Registry) Validate(model *config.Model) error {
	var errs []string
	for _, t := range model.Tasks {
		if _, ok := r.runners[t.ModuleType]; !ok {
			errs = append(errs, fmt.Sprintf("task '%s': unknown module type '%s'", t.ID(), t.ModuleType))
		}
	}
	for _, p := range model.Plugins {
		if _, ok := r.plugins[p.Type]; !ok {
			errs = append(errs, fmt.Sprintf("unknown plugin type '%s'", p.Type))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("registry validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}

// BuildTasks converts the model's task blocks into engine tasks. Argument
// decoding happens inside each task's work function, against the run state
// at that moment, so a bad argument fails that task, not the whole build,
// and expressions can reference completed dependency outputs.
func (r *Registry) BuildTasks(model *config.Model, conv config.Converter) ([]engine.Task, error) {
	tasks := make([]engine.Task, 0, len(model.Tasks))
	for _, def := range model.Tasks {
		handler, ok := r.runners[def.ModuleType]
		if !ok {
			return nil, fmt.Errorf("task '%s': unknown module type '%s'", def.ID(), def.ModuleType)
		}

		def := def
		tasks = append(tasks, engine.Task{
			ID:                def.ID(),
			Name:              def.Name,
			Title:             def.Name,
			Description:       def.Description,
			DependsOn:         def.DependsOn,
			Retry:             def.Retry,
			Timeout:           def.Timeout,
			ContinueOnFailure: def.ContinueOnFailure,
			Hints:             engine.Hints{Batchable: def.Batchable},
			Run: func(ctx context.Context, h *engine.Handle) error {
				input := handler.NewInput()
				if err := conv.DecodeBody(ctx, input, def.Arguments, evalContextFrom(h.Context())); err != nil {
					return fmt.Errorf("invalid arguments for task '%s': %w", def.ID(), err)
				}
				return handler.invoke(ctx, h, input)
			},
		})
	}
	return tasks, nil
}

// evalContextFrom exposes run state to argument expressions: completed
// dependency outputs as task.<name>.output and values published by the
// env_vars module as env.<NAME>.
func evalContextFrom(scope *engine.Context) *hcl.EvalContext {
	taskVals := make(map[string]cty.Value)
	envVals := make(map[string]cty.Value)
	for _, key := range scope.Keys() {
		val, ok := scope.GetString(key)
		if !ok {
			continue
		}
		if rest, found := strings.CutPrefix(key, "task."); found {
			name, found := strings.CutSuffix(rest, ".output")
			// Names containing a dot are not addressable as an HCL
			// traversal and are left out.
			if found && !strings.Contains(name, ".") {
				taskVals[name] = cty.ObjectVal(map[string]cty.Value{"output": cty.StringVal(val)})
			}
			continue
		}
		if name, found := strings.CutPrefix(key, "env."); found {
			envVals[name] = cty.StringVal(val)
		}
	}

	vars := make(map[string]cty.Value)
	if len(taskVals) > 0 {
		vars["task"] = cty.ObjectVal(taskVals)
	}
	if len(envVals) > 0 {
		vars["env"] = cty.ObjectVal(envVals)
	}
	if len(vars) == 0 {
		return nil
	}
	return &hcl.EvalContext{Variables: vars}
}

// BuildPlugins converts the model's plugin blocks into executable plugins.
func (r *Registry) BuildPlugins(model *config.Model) ([]plugin.Plugin, error) {
	plugins := make([]plugin.Plugin, 0, len(model.Plugins))
	for _, def := range model.Plugins {
		handler, ok := r.plugins[def.Type]
		if !ok {
			return nil, fmt.Errorf("unknown plugin type '%s'", def.Type)
		}
		plugins = append(plugins, plugin.Plugin{
			ID:          def.Type,
			Description: handler.Description,
			DependsOn:   def.DependsOn,
			Conflicts:   def.Conflicts,
			Hooks:       handler.Hooks,
		})
	}
	return plugins, nil
}
