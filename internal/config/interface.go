package config

import (
	"context"

	"github.com/hashicorp/hcl/v2"
)

// Loader is the interface for a format-specific configuration loader.
type Loader interface {
	// Load reads workflow configuration from the given paths, translates
	// it into the format-agnostic model, and returns a matching
	// Converter for later argument decoding.
	Load(ctx context.Context, paths ...string) (*Model, Converter, error)
}

// Converter is the interface for a format-specific data binding and type
// conversion implementation. It bridges raw configuration arguments and
// the Go input structs modules declare.
type Converter interface {
	// DecodeBody evaluates the raw argument expressions of a task or
	// plugin block and populates the target Go struct. Struct fields
	// declare their argument name and optionality via the `flow` tag.
	DecodeBody(
		ctx context.Context,
		inputStruct any,
		args map[string]hcl.Expression,
		evalCtx *hcl.EvalContext,
	) error
}
