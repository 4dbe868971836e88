// Package exec provides the 'exec' task module, which runs a shell
// command and records its combined output on the task handle.
package exec

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/vk/flowforgego/internal/ctxlog"
	"github.com/vk/flowforgego/internal/engine"
	"github.com/vk/flowforgego/internal/registry"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Input defines the arguments for the exec module.
type Input struct {
	Command string            `flow:"command"`
	Dir     string            `flow:"dir,optional"`
	Env     map[string]string `flow:"env,optional"`
}

// OnRunExec is the handler for the 'exec' module.
func OnRunExec(ctx context.Context, h *engine.Handle, input *Input) error {
	logger := ctxlog.FromContext(ctx).With("module", "exec", "command", input.Command)
	logger.Info("Running command")

	cmd := exec.CommandContext(ctx, "sh", "-c", input.Command)
	cmd.Dir = input.Dir
	if len(input.Env) > 0 {
		cmd.Env = os.Environ()
		for k, v := range input.Env {
			cmd.Env = append(cmd.Env, k+"="+v)
		}
	}

	var buf bytes.Buffer
	cmd.Stdout = &buf
	cmd.Stderr = &buf

	err := cmd.Run()
	h.SetOutput(strings.TrimSpace(buf.String()))
	if err != nil {
		return fmt.Errorf("command '%s' failed: %w", input.Command, err)
	}

	logger.Debug("Command finished")
	return nil
}

// Register registers the handler with the engine.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterRunner("exec", &registry.RegisteredRunner{
		Description: "Runs a shell command.",
		NewInput:    func() any { return new(Input) },
		Fn:          OnRunExec,
	})
}
