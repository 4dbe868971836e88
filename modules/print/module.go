package print

import (
	"context"
	"fmt"

	"github.com/vk/flowforgego/internal/engine"
	"github.com/vk/flowforgego/internal/registry"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Input defines the arguments for the print module.
type Input struct {
	Message string `flow:"message"`
}

// OnRunPrint is the handler for the 'print' module.
func OnRunPrint(ctx context.Context, h *engine.Handle, input *Input) error {
	fmt.Println(input.Message)
	h.SetOutput(input.Message)
	return nil
}

// Register registers the handler with the engine.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterRunner("print", &registry.RegisteredRunner{
		Description: "Prints a message to stdout.",
		NewInput:    func() any { return new(Input) },
		Fn:          OnRunPrint,
	})
}
