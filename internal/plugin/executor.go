package plugin

import (
	"context"
	"fmt"

	"github.com/vk/flowforgego/internal/ctxlog"
	"github.com/vk/flowforgego/internal/engine"
	"github.com/vk/flowforgego/internal/graph"
)

// Executor runs plugin sets. It carries no state between Execute calls.
type Executor struct{}

// NewExecutor creates an Executor.
func NewExecutor() *Executor {
	return &Executor{}
}

// Execute validates the set, then runs the prepare, apply, and finalize
// phases over it in dependency order. Construction errors (duplicate id,
// missing dependency, cycle, conflict) are fatal and returned before any
// hook runs. Hook failures are collected in the Result and never stop
// the remaining hooks; in particular a failed prepare still gets its
// apply and finalize turns.
func (e *Executor) Execute(ctx context.Context, plugins []Plugin, scaffold *engine.Context) (*Result, error) {
	logger := ctxlog.FromContext(ctx)
	if scaffold == nil {
		scaffold = engine.NewContext()
	}

	g := graph.New()
	byID := make(map[string]*Plugin, len(plugins))
	for i := range plugins {
		p := &plugins[i]
		if err := g.Add(p.ID, p.DependsOn...); err != nil {
			return nil, fmt.Errorf("invalid plugin set: %w", err)
		}
		byID[p.ID] = p
	}
	order, err := g.Order()
	if err != nil {
		return nil, fmt.Errorf("invalid plugin set: %w", err)
	}
	if err := ValidateConflicts(plugins); err != nil {
		return nil, err
	}

	logger.Info("🔌 Running plugins...", "plugins", len(order))
	result := &Result{Scaffold: scaffold}

	for _, phase := range []string{PhasePrepare, PhaseApply, PhaseFinalize} {
		for _, id := range order {
			p := byID[id]
			hook := p.hookFor(phase)
			if hook == nil {
				continue
			}

			logger.Debug("Running plugin hook.", "plugin", id, "phase", phase)
			if hookErr := hook(ctx, scaffold); hookErr != nil {
				perr := &PhaseError{Plugin: id, Phase: phase, Err: hookErr}
				logger.Error("🔥 Plugin hook failed.", "plugin", id, "phase", phase, "error", hookErr)
				result.Errors = append(result.Errors, perr)
			}
		}
	}

	if result.Success() {
		logger.Info("Plugins finished.", "plugins", len(order))
	} else {
		logger.Warn("Plugins finished with failures.", "plugins", len(order), "failures", len(result.Errors))
	}
	return result, nil
}

func (p *Plugin) hookFor(phase string) Hook {
	switch phase {
	case PhasePrepare:
		return p.Hooks.Prepare
	case PhaseApply:
		return p.Hooks.Apply
	case PhaseFinalize:
		return p.Hooks.Finalize
	}
	return nil
}

// ValidateConflicts checks every plugin's conflict list against the set.
func ValidateConflicts(plugins []Plugin) error {
	present := make(map[string]struct{}, len(plugins))
	for _, p := range plugins {
		present[p.ID] = struct{}{}
	}
	for _, p := range plugins {
		for _, other := range p.Conflicts {
			if _, ok := present[other]; ok {
				return fmt.Errorf("%w: '%s' conflicts with '%s'", ErrConflictingPlugins, p.ID, other)
			}
		}
	}
	return nil
}
