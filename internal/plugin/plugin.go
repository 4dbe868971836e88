package plugin

import (
	"context"
	"errors"
	"fmt"

	"github.com/vk/flowforgego/internal/engine"
)

// Phase names, in execution order.
const (
	PhasePrepare  = "prepare"
	PhaseApply    = "apply"
	PhaseFinalize = "finalize"
)

// ErrConflictingPlugins is returned when two plugins declare each other
// incompatible and are both present in the same set.
var ErrConflictingPlugins = errors.New("conflicting plugins")

// Hook is a single phase callback. The scaffold is shared across every
// plugin and phase of one Execute call.
type Hook func(ctx context.Context, scaffold *engine.Context) error

// Hooks holds a plugin's phase callbacks. Nil hooks are skipped.
type Hooks struct {
	Prepare  Hook
	Apply    Hook
	Finalize Hook
}

// Plugin is one extension unit.
type Plugin struct {
	ID          string
	Description string
	// DependsOn orders this plugin after the named plugins within
	// every phase.
	DependsOn []string
	// Conflicts names plugins that must not be active alongside this
	// one.
	Conflicts []string
	Hooks     Hooks
}

// PhaseError records a single hook failure.
type PhaseError struct {
	Plugin string
	Phase  string
	Err    error
}

func (e *PhaseError) Error() string {
	return fmt.Sprintf("plugin '%s' failed during %s: %v", e.Plugin, e.Phase, e.Err)
}

func (e *PhaseError) Unwrap() error {
	return e.Err
}

// Result is the outcome of one Execute call.
type Result struct {
	// Scaffold is the shared state the hooks built up.
	Scaffold *engine.Context
	// Errors holds every hook failure, in the order they occurred.
	Errors []*PhaseError
}

// Success reports whether every hook that ran succeeded.
func (r *Result) Success() bool {
	return len(r.Errors) == 0
}
