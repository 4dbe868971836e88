package plugin

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/flowforgego/internal/engine"
	"github.com/vk/flowforgego/internal/graph"
)

// tracer appends "plugin/phase" markers as hooks run. Phases execute
// sequentially so no locking is needed.
type tracer struct {
	steps []string
}

func (tr *tracer) hook(plugin, phase string) Hook {
	return func(ctx context.Context, scaffold *engine.Context) error {
		tr.steps = append(tr.steps, plugin+"/"+phase)
		return nil
	}
}

func (tr *tracer) plugin(id string, deps ...string) Plugin {
	return Plugin{
		ID:        id,
		DependsOn: deps,
		Hooks: Hooks{
			Prepare:  tr.hook(id, PhasePrepare),
			Apply:    tr.hook(id, PhaseApply),
			Finalize: tr.hook(id, PhaseFinalize),
		},
	}
}

func (tr *tracer) index(step string) int {
	for i, s := range tr.steps {
		if s == step {
			return i
		}
	}
	return -1
}

func TestExecute_PhasesRunWholeSetInOrder(t *testing.T) {
	tr := &tracer{}
	plugins := []Plugin{
		tr.plugin("docker", "env"),
		tr.plugin("env"),
	}

	result, err := NewExecutor().Execute(context.Background(), plugins, nil)
	require.NoError(t, err)
	assert.True(t, result.Success())

	assert.Equal(t, []string{
		"env/prepare", "docker/prepare",
		"env/apply", "docker/apply",
		"env/finalize", "docker/finalize",
	}, tr.steps, "every plugin finishes a phase before the next phase starts")
}

func TestExecute_HookFailuresNeverAbort(t *testing.T) {
	tr := &tracer{}
	boom := errors.New("daemon not running")

	broken := tr.plugin("docker")
	broken.Hooks.Prepare = func(ctx context.Context, scaffold *engine.Context) error {
		return boom
	}
	plugins := []Plugin{broken, tr.plugin("env")}

	result, err := NewExecutor().Execute(context.Background(), plugins, nil)
	require.NoError(t, err)
	assert.False(t, result.Success())

	require.Len(t, result.Errors, 1)
	assert.Equal(t, "docker", result.Errors[0].Plugin)
	assert.Equal(t, PhasePrepare, result.Errors[0].Phase)
	assert.ErrorIs(t, result.Errors[0], boom)

	// The failing plugin still gets its later phases, and the healthy
	// plugin is untouched.
	assert.GreaterOrEqual(t, tr.index("docker/apply"), 0)
	assert.GreaterOrEqual(t, tr.index("docker/finalize"), 0)
	assert.GreaterOrEqual(t, tr.index("env/finalize"), 0)
}

func TestExecute_ScaffoldIsSharedAcrossPluginsAndPhases(t *testing.T) {
	plugins := []Plugin{
		{
			ID: "env",
			Hooks: Hooks{
				Prepare: func(ctx context.Context, scaffold *engine.Context) error {
					scaffold.Set("env.loaded", true)
					return nil
				},
			},
		},
		{
			ID:        "docker",
			DependsOn: []string{"env"},
			Hooks: Hooks{
				Apply: func(ctx context.Context, scaffold *engine.Context) error {
					if _, ok := scaffold.Get("env.loaded"); !ok {
						return errors.New("env plugin never prepared")
					}
					scaffold.Set("docker.network", "flowforge-net")
					return nil
				},
			},
		},
	}

	scaffold := engine.NewContext()
	result, err := NewExecutor().Execute(context.Background(), plugins, scaffold)
	require.NoError(t, err)
	require.True(t, result.Success())

	v, ok := scaffold.GetString("docker.network")
	require.True(t, ok)
	assert.Equal(t, "flowforge-net", v)
	assert.Same(t, scaffold, result.Scaffold)
}

func TestExecute_ConstructionErrorsAreFatal(t *testing.T) {
	ex := NewExecutor()

	t.Run("missing dependency", func(t *testing.T) {
		_, err := ex.Execute(context.Background(), []Plugin{{ID: "a", DependsOn: []string{"dne"}}}, nil)
		assert.ErrorIs(t, err, graph.ErrMissingDependency)
	})

	t.Run("cycle", func(t *testing.T) {
		_, err := ex.Execute(context.Background(), []Plugin{
			{ID: "a", DependsOn: []string{"b"}},
			{ID: "b", DependsOn: []string{"a"}},
		}, nil)
		assert.ErrorIs(t, err, graph.ErrCyclicDependency)
	})

	t.Run("conflict", func(t *testing.T) {
		var prepared bool
		plugins := []Plugin{
			{ID: "docker", Conflicts: []string{"podman"}, Hooks: Hooks{
				Prepare: func(ctx context.Context, scaffold *engine.Context) error {
					prepared = true
					return nil
				},
			}},
			{ID: "podman"},
		}
		_, err := ex.Execute(context.Background(), plugins, nil)
		assert.ErrorIs(t, err, ErrConflictingPlugins)
		assert.False(t, prepared, "no hook may run for an invalid set")
	})
}

func TestValidateConflicts(t *testing.T) {
	assert.NoError(t, ValidateConflicts([]Plugin{
		{ID: "docker", Conflicts: []string{"podman"}},
		{ID: "env"},
	}))

	err := ValidateConflicts([]Plugin{
		{ID: "docker", Conflicts: []string{"podman"}},
		{ID: "podman"},
	})
	assert.ErrorIs(t, err, ErrConflictingPlugins)
}

func TestExecute_NilHooksAreSkipped(t *testing.T) {
	result, err := NewExecutor().Execute(context.Background(), []Plugin{{ID: "inert"}}, nil)
	require.NoError(t, err)
	assert.True(t, result.Success())
}
