package engine

import (
	"context"
	"time"
)

// WorkFunc is the opaque asynchronous operation attached to a task. The
// handle is the task's progress side-channel; writing to it never affects
// control flow.
type WorkFunc func(ctx context.Context, h *Handle) error

// ResourceHint is advisory sizing metadata attached to a task. The engine
// records it for reporting and logging only; it never drives scheduling.
type ResourceHint struct {
	EstimatedMemoryMB int
	EstimatedCPU      float64
	EstimatedDuration string
}

// Hints carries optional scheduling hints supplied by the caller.
type Hints struct {
	// Batchable routes the task through the engine's batcher, which
	// chunks large waves instead of submitting them all at once.
	Batchable bool
	// Priority orders submission within a wave, higher first. It never
	// overrides dependency ordering.
	Priority int
	// Cacheable is recorded for logging only.
	Cacheable bool
}

// Task is a single named unit of work in a workflow run.
type Task struct {
	// ID must be unique within one run.
	ID string
	// Name is the short instance name under which the task's output is
	// published to the shared context ("task.<name>.output"). Defaults
	// to ID when empty.
	Name        string
	Title       string
	Description string

	// DependsOn lists ids of tasks that must reach a terminal state first.
	// Every id must exist in the same run; an unresolved reference is a
	// construction-time error, not a runtime one.
	DependsOn []string

	// Retry re-invokes the work function up to this many extra times on
	// failure before the error surfaces.
	Retry int

	// Timeout overrides the engine's per-task budget for this task alone
	// when positive.
	Timeout time.Duration

	// ContinueOnFailure records this task's failure without aborting the
	// run and without blocking its dependents, regardless of the
	// engine's fail-fast policy.
	ContinueOnFailure bool

	// Subtasks run recursively under the same engine before the parent's
	// own work function. A subtask failure is the parent's failure.
	Subtasks []Task

	Run WorkFunc

	Resources *ResourceHint
	Hints     Hints
}

// displayTitle returns the human-facing name used in logs and results.
func (t *Task) displayTitle() string {
	if t.Title != "" {
		return t.Title
	}
	return t.ID
}

// outputName is the instance name used to key the task's published output.
func (t *Task) outputName() string {
	if t.Name != "" {
		return t.Name
	}
	return t.ID
}
