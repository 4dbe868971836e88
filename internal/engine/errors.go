package engine

import (
	"fmt"

	"github.com/vk/flowforgego/internal/classify"
)

// TaskExecutionError wraps an error thrown by a task's work function,
// preserving the original cause.
type TaskExecutionError struct {
	TaskID string
	Err    error
}

func (e *TaskExecutionError) Error() string {
	return fmt.Sprintf("task '%s' failed: %v", e.TaskID, e.Err)
}

func (e *TaskExecutionError) Unwrap() error { return e.Err }

// WorkflowExecutionError is the top-level wrapper surfaced to the caller
// after optional recovery has been attempted.
type WorkflowExecutionError struct {
	Err error
	// Classification is set when the error classifier ran.
	Classification *classify.Classification
	// Recovered reports whether a synthesized recovery plan executed
	// without errors. The original failure is surfaced either way.
	Recovered bool
}

func (e *WorkflowExecutionError) Error() string {
	if e.Classification != nil {
		return fmt.Sprintf("workflow execution failed (%s, severity %s): %v",
			e.Classification.Category, e.Classification.Severity, e.Err)
	}
	return fmt.Sprintf("workflow execution failed: %v", e.Err)
}

func (e *WorkflowExecutionError) Unwrap() error { return e.Err }
