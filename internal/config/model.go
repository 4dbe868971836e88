package config

import (
	"time"

	"github.com/hashicorp/hcl/v2"
)

// Model is the unified, format-agnostic representation of one workflow
// configuration: every task to run and every plugin to activate.
type Model struct {
	Tasks   []*Task
	Plugins []*Plugin
}

// Task is the format-agnostic representation of a `task` block. The
// ModuleType names the compiled Go module that executes it; Name makes
// the instance addressable in depends_on lists.
type Task struct {
	ModuleType  string
	Name        string
	Description string
	Arguments   map[string]hcl.Expression
	DependsOn   []string
	// Retry is the number of additional attempts after a failed run.
	Retry int
	// Timeout overrides the run-wide per-task budget when positive.
	Timeout time.Duration
	// ContinueOnFailure records this task's failure without aborting
	// the run or blocking its dependents.
	ContinueOnFailure bool
	// Batchable routes the task through the engine's batcher.
	Batchable bool
}

// ID returns the task's graph identifier, "type.name".
func (t *Task) ID() string {
	return t.ModuleType + "." + t.Name
}

// Plugin is the format-agnostic representation of a `plugin` block.
type Plugin struct {
	Type      string
	DependsOn []string
	Conflicts []string
	Arguments map[string]hcl.Expression
}
