// Package schema holds the HCL-specific block structures that workflow
// files decode into before translation to the format-agnostic model.
package schema

import (
	"github.com/hashicorp/hcl/v2"
)

// TaskArgs represents the content of the 'arguments' block within a task.
type TaskArgs struct {
	Body hcl.Body `hcl:",remain"`
}

// Task represents a `task` block from a user's workflow file. It is a
// runnable instance of a compiled module.
type Task struct {
	ModuleType  string    `hcl:"module_type,label"`
	Name        string    `hcl:"instance_name,label"`
	Description string    `hcl:"description,optional"`
	Arguments   *TaskArgs `hcl:"arguments,block"`
	DependsOn   []string  `hcl:"depends_on,optional"`
	Retry       int       `hcl:"retry,optional"`
	// Timeout is a Go duration string, e.g. "90s".
	Timeout           string `hcl:"timeout,optional"`
	ContinueOnFailure bool   `hcl:"continue_on_failure,optional"`
	Batchable         bool   `hcl:"batchable,optional"`
}

// Plugin represents a `plugin` block from a user's workflow file.
type Plugin struct {
	Type      string    `hcl:"plugin_type,label"`
	Arguments *TaskArgs `hcl:"arguments,block"`
	DependsOn []string  `hcl:"depends_on,optional"`
	Conflicts []string  `hcl:"conflicts,optional"`
}

// WorkflowConfig represents the top-level structure of a workflow file.
type WorkflowConfig struct {
	Tasks   []*Task   `hcl:"task,block"`
	Plugins []*Plugin `hcl:"plugin,block"`
	Body    hcl.Body  `hcl:",remain"`
}
