package hcl

import (
	"context"
	"testing"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"
)

func expr(t *testing.T, src string) hcl.Expression {
	t.Helper()
	e, diags := hclsyntax.ParseExpression([]byte(src), "test.hcl", hcl.InitialPos)
	require.False(t, diags.HasErrors(), diags.Error())
	return e
}

type execInput struct {
	Command string            `flow:"command"`
	Dir     string            `flow:"dir,optional"`
	Env     map[string]string `flow:"env,optional"`
	Retries int               `flow:"retries,optional"`
	skipped string
}

func TestDecodeBody_PopulatesTaggedFields(t *testing.T) {
	args := map[string]hcl.Expression{
		"command": expr(t, `"npm run build"`),
		"dir":     expr(t, `"./web"`),
		"env":     expr(t, `{ CI = "true" }`),
		"retries": expr(t, `3`),
	}

	var input execInput
	err := NewConverter().DecodeBody(context.Background(), &input, args, nil)
	require.NoError(t, err)

	assert.Equal(t, "npm run build", input.Command)
	assert.Equal(t, "./web", input.Dir)
	assert.Equal(t, map[string]string{"CI": "true"}, input.Env)
	assert.Equal(t, 3, input.Retries)
	assert.Empty(t, input.skipped)
}

func TestDecodeBody_OptionalFieldsMayBeOmitted(t *testing.T) {
	args := map[string]hcl.Expression{
		"command": expr(t, `"true"`),
	}

	var input execInput
	err := NewConverter().DecodeBody(context.Background(), &input, args, nil)
	require.NoError(t, err)
	assert.Equal(t, "true", input.Command)
	assert.Empty(t, input.Dir)
}

func TestDecodeBody_MissingRequiredArgument(t *testing.T) {
	var input execInput
	err := NewConverter().DecodeBody(context.Background(), &input, nil, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"command"`)
}

func TestDecodeBody_ImplicitTypeConversion(t *testing.T) {
	args := map[string]hcl.Expression{
		"command": expr(t, `42`), // number converts to string
	}

	var input execInput
	err := NewConverter().DecodeBody(context.Background(), &input, args, nil)
	require.NoError(t, err)
	assert.Equal(t, "42", input.Command)
}

func TestDecodeBody_EvalContextVariables(t *testing.T) {
	args := map[string]hcl.Expression{
		"command": expr(t, `"npm run ${script}"`),
	}
	evalCtx := &hcl.EvalContext{
		Variables: map[string]cty.Value{"script": cty.StringVal("lint")},
	}

	var input execInput
	err := NewConverter().DecodeBody(context.Background(), &input, args, evalCtx)
	require.NoError(t, err)
	assert.Equal(t, "npm run lint", input.Command)
}

func TestDecodeBody_RejectsNonPointer(t *testing.T) {
	err := NewConverter().DecodeBody(context.Background(), execInput{}, nil, nil)
	assert.Error(t, err)
}
