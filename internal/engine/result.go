package engine

import (
	"time"

	"github.com/vk/flowforgego/internal/pool"
)

// TaskResult is the terminal record of one task in a run.
type TaskResult struct {
	ID       string
	Title    string
	State    pool.State
	Err      error
	Duration time.Duration
	// Attempts counts work-function invocations, including retries.
	Attempts int
	// Output and Progress reflect the task's last side-channel writes.
	Output   string
	Progress float64
}

// RunResult aggregates the per-task results of one run plus every error in
// detection order.
type RunResult struct {
	// Tasks holds one entry per scheduled task, keyed by task id.
	Tasks map[string]*TaskResult
	// Errors collects every failure in the order the engine observed it.
	Errors []error
}

func newRunResult() *RunResult {
	return &RunResult{Tasks: make(map[string]*TaskResult)}
}

// Success reports whether every task completed.
func (r *RunResult) Success() bool {
	return len(r.Errors) == 0
}

// Completed counts tasks that reached the Completed state.
func (r *RunResult) Completed() int {
	n := 0
	for _, tr := range r.Tasks {
		if tr.State == pool.Completed {
			n++
		}
	}
	return n
}
