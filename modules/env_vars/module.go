package env_vars

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/vk/flowforgego/internal/engine"
	"github.com/vk/flowforgego/internal/registry"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Input defines the arguments for the env_vars module.
type Input struct {
	// Required lists variables that must be present and non-empty.
	Required []string `flow:"required,optional"`
	// Prefix copies every matching variable into the shared context.
	Prefix string `flow:"prefix,optional"`
}

// OnRunEnvVars is the handler for the 'env_vars' module. It validates
// required variables and publishes matching ones to the shared context
// under "env.<NAME>" keys.
func OnRunEnvVars(ctx context.Context, h *engine.Handle, input *Input) error {
	var missing []string
	for _, name := range input.Required {
		if os.Getenv(name) == "" {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required environment variables: %s", strings.Join(missing, ", "))
	}

	shared := h.Context()
	count := 0
	for _, e := range os.Environ() {
		pair := strings.SplitN(e, "=", 2)
		if len(pair) != 2 {
			continue
		}
		if input.Prefix != "" && !strings.HasPrefix(pair[0], input.Prefix) {
			continue
		}
		shared.Set("env."+pair[0], pair[1])
		count++
	}

	h.SetOutput(fmt.Sprintf("published %d variables", count))
	return nil
}

// Register registers the handler with the engine.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterRunner("env_vars", &registry.RegisteredRunner{
		Description: "Validates and publishes environment variables.",
		NewInput:    func() any { return new(Input) },
		Fn:          OnRunEnvVars,
	})
}
