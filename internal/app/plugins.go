package app

import (
	"context"
	"os"
	"strings"

	"github.com/vk/flowforgego/internal/ctxlog"
	"github.com/vk/flowforgego/internal/engine"
	"github.com/vk/flowforgego/internal/plugin"
	"github.com/vk/flowforgego/internal/registry"
)

// registerCorePlugins wires the built-in plugin types into the registry.
func registerCorePlugins(r *registry.Registry) {
	r.RegisterPlugin("env", &registry.RegisteredPlugin{
		Description: "Snapshots the process environment into the run scaffold.",
		Hooks: plugin.Hooks{
			Prepare: prepareEnv,
		},
	})

	r.RegisterPlugin("workspace", &registry.RegisteredPlugin{
		Description: "Provides a temporary workspace directory for the run.",
		Hooks: plugin.Hooks{
			Prepare:  prepareWorkspace,
			Finalize: finalizeWorkspace,
		},
	})
}

func prepareEnv(ctx context.Context, scaffold *engine.Context) error {
	count := 0
	for _, e := range os.Environ() {
		pair := strings.SplitN(e, "=", 2)
		if len(pair) != 2 {
			continue
		}
		scaffold.Set("env."+pair[0], pair[1])
		count++
	}
	ctxlog.FromContext(ctx).Debug("Environment snapshot captured.", "variables", count)
	return nil
}

func prepareWorkspace(ctx context.Context, scaffold *engine.Context) error {
	dir, err := os.MkdirTemp("", "flowforge-workspace-*")
	if err != nil {
		return err
	}
	scaffold.Set("workspace.dir", dir)
	ctxlog.FromContext(ctx).Debug("Workspace directory created.", "dir", dir)
	return nil
}

func finalizeWorkspace(ctx context.Context, scaffold *engine.Context) error {
	dir, ok := scaffold.GetString("workspace.dir")
	if !ok {
		return nil
	}
	ctxlog.FromContext(ctx).Debug("Removing workspace directory.", "dir", dir)
	return os.RemoveAll(dir)
}
