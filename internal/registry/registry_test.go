package registry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/hashicorp/hcl/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/flowforgego/internal/config"
	"github.com/vk/flowforgego/internal/engine"
	"github.com/vk/flowforgego/internal/plugin"
)

type echoInput struct {
	Message string `flow:"message"`
}

func registerEcho(r *Registry, got *string) {
	r.RegisterRunner("echo", &RegisteredRunner{
		NewInput: func() any { return new(echoInput) },
		Fn: func(ctx context.Context, h *engine.Handle, input *echoInput) error {
			*got = input.Message
			return nil
		},
	})
}

// staticConverter decodes by copying pre-baked values instead of
// evaluating HCL expressions.
type staticConverter struct {
	message string
	err     error
}

func (c *staticConverter) DecodeBody(ctx context.Context, inputStruct any, args map[string]hcl.Expression, evalCtx *hcl.EvalContext) error {
	if c.err != nil {
		return c.err
	}
	if in, ok := inputStruct.(*echoInput); ok {
		in.Message = c.message
	}
	return nil
}

func TestRegisterRunner_RejectsDuplicates(t *testing.T) {
	r := New()
	var got string
	registerEcho(r, &got)
	assert.Panics(t, func() { registerEcho(r, &got) })
}

func TestRegisterRunner_RejectsBadSignature(t *testing.T) {
	r := New()
	assert.Panics(t, func() {
		r.RegisterRunner("bad", &RegisteredRunner{
			NewInput: func() any { return new(echoInput) },
			Fn:       func(input *echoInput) error { return nil },
		})
	})

	assert.Panics(t, func() {
		r.RegisterRunner("mismatched", &RegisteredRunner{
			NewInput: func() any { return new(echoInput) },
			Fn:       func(ctx context.Context, h *engine.Handle, input *struct{}) error { return nil },
		})
	})
}

func TestValidate_ReportsAllUnknownTypes(t *testing.T) {
	r := New()
	model := &config.Model{
		Tasks:   []*config.Task{{ModuleType: "exec", Name: "lint"}},
		Plugins: []*config.Plugin{{Type: "docker"}},
	}

	err := r.Validate(model)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown module type 'exec'")
	assert.Contains(t, err.Error(), "unknown plugin type 'docker'")

	var got string
	registerEcho(r, &got)
	r.RegisterPlugin("docker", &RegisteredPlugin{})
	model.Tasks[0].ModuleType = "echo"
	assert.NoError(t, r.Validate(model))
}

func TestBuildTasks_WiresHandlerAndArguments(t *testing.T) {
	r := New()
	var got string
	registerEcho(r, &got)

	model := &config.Model{Tasks: []*config.Task{{
		ModuleType: "echo",
		Name:       "greet",
		DependsOn:  []string{"echo.other"},
		Retry:      1,
	}}}

	tasks, err := r.BuildTasks(model, &staticConverter{message: "hello"})
	require.NoError(t, err)
	require.Len(t, tasks, 1)

	task := tasks[0]
	assert.Equal(t, "echo.greet", task.ID)
	assert.Equal(t, []string{"echo.other"}, task.DependsOn)
	assert.Equal(t, 1, task.Retry)

	e := engine.New(engine.Options{}, nil, nil)
	task.DependsOn = nil
	_, err = e.Execute(context.Background(), []engine.Task{task}, nil)
	require.NoError(t, err)
	assert.Equal(t, "hello", got)
}

func TestBuildTasks_DecodeErrorFailsTheTask(t *testing.T) {
	r := New()
	var got string
	registerEcho(r, &got)

	model := &config.Model{Tasks: []*config.Task{{ModuleType: "echo", Name: "greet"}}}
	tasks, err := r.BuildTasks(model, &staticConverter{err: errors.New("bad argument")})
	require.NoError(t, err)

	e := engine.New(engine.Options{}, nil, nil)
	_, err = e.Execute(context.Background(), tasks, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad argument")
}

func TestBuildTasks_UnknownModuleType(t *testing.T) {
	r := New()
	model := &config.Model{Tasks: []*config.Task{{ModuleType: "dne", Name: "x"}}}
	_, err := r.BuildTasks(model, &staticConverter{})
	assert.Error(t, err)
}

func TestBuildPlugins_WiresHooksAndOrdering(t *testing.T) {
	r := New()
	var prepared bool
	r.RegisterPlugin("docker", &RegisteredPlugin{
		Description: "container runtime",
		Hooks: plugin.Hooks{
			Prepare: func(ctx context.Context, scaffold *engine.Context) error {
				prepared = true
				return nil
			},
		},
	})

	model := &config.Model{Plugins: []*config.Plugin{{
		Type:      "docker",
		Conflicts: []string{"podman"},
	}}}

	plugins, err := r.BuildPlugins(model)
	require.NoError(t, err)
	require.Len(t, plugins, 1)
	assert.Equal(t, "docker", plugins[0].ID)
	assert.Equal(t, "container runtime", plugins[0].Description)
	assert.Equal(t, []string{"podman"}, plugins[0].Conflicts)

	result, err := plugin.NewExecutor().Execute(context.Background(), plugins, nil)
	require.NoError(t, err)
	assert.True(t, result.Success())
	assert.True(t, prepared)
}

func TestEvalContextFrom_ExposesRunState(t *testing.T) {
	scope := engine.NewContext()
	scope.Set("task.gen.output", "hello")
	scope.Set("task.exec.gen.output", "not addressable")
	scope.Set("env.HOME", "/root")
	scope.Set("unrelated", 42)

	evalCtx := evalContextFrom(scope)
	require.NotNil(t, evalCtx)

	taskVal, ok := evalCtx.Variables["task"]
	require.True(t, ok)
	assert.Equal(t, "hello", taskVal.GetAttr("gen").GetAttr("output").AsString())
	assert.False(t, taskVal.Type().HasAttribute("exec.gen"), "dotted names cannot form an HCL traversal")

	envVal, ok := evalCtx.Variables["env"]
	require.True(t, ok)
	assert.Equal(t, "/root", envVal.GetAttr("HOME").AsString())
}

func TestEvalContextFrom_EmptyScope(t *testing.T) {
	assert.Nil(t, evalContextFrom(engine.NewContext()))
}

func TestBuildTasks_CarriesSchedulingFields(t *testing.T) {
	r := New()
	r.RegisterRunner("echo", &RegisteredRunner{
		Description: "echoes its message",
		NewInput:    func() any { return new(echoInput) },
		Fn: func(ctx context.Context, h *engine.Handle, input *echoInput) error {
			return nil
		},
	})

	model := &config.Model{Tasks: []*config.Task{{
		ModuleType:        "echo",
		Name:              "fast",
		Timeout:           90 * time.Second,
		ContinueOnFailure: true,
		Batchable:         true,
	}}}

	tasks, err := r.BuildTasks(model, &staticConverter{})
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, "fast", tasks[0].Name)
	assert.Equal(t, 90*time.Second, tasks[0].Timeout)
	assert.True(t, tasks[0].ContinueOnFailure)
	assert.True(t, tasks[0].Hints.Batchable)
}
