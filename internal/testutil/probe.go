package testutil

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/vk/flowforgego/internal/engine"
	"github.com/vk/flowforgego/internal/registry"
)

// ProbeModule is a shared test module registered as the 'probe' module
// type. It records the order in which task instances run and can be told
// to sleep or fail for specific instance names.
type ProbeModule struct {
	mu     sync.Mutex
	ran    []string
	FailOn map[string]bool
	Sleep  time.Duration
}

// NewProbeModule creates a probe module for testing.
func NewProbeModule() *ProbeModule {
	return &ProbeModule{FailOn: make(map[string]bool)}
}

// Ran returns the recorded instance names in execution order.
func (m *ProbeModule) Ran() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.ran...)
}

// Register registers the 'probe' module type's Go handler.
func (m *ProbeModule) Register(r *registry.Registry) {
	type probeInput struct {
		Name string `flow:"name"`
	}

	r.RegisterRunner("probe", &registry.RegisteredRunner{
		Description: "Records task execution for tests.",
		NewInput:    func() any { return new(probeInput) },
		Fn: func(ctx context.Context, h *engine.Handle, input *probeInput) error {
			if m.Sleep > 0 {
				time.Sleep(m.Sleep)
			}
			m.mu.Lock()
			m.ran = append(m.ran, input.Name)
			m.mu.Unlock()

			if m.FailOn[input.Name] {
				return fmt.Errorf("probe '%s' failed as instructed", input.Name)
			}
			return nil
		},
	})
}
