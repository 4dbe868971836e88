package pool

import (
	"fmt"
	"time"
)

// State is the terminal outcome of a single unit.
type State int32

const (
	// Completed means the unit's work function returned nil.
	Completed State = iota
	// Failed means the unit's work function returned an error.
	Failed
	// Skipped means the unit never started because an earlier failure
	// aborted the run (fail-fast policy only).
	Skipped
	// TimedOut means the unit exceeded its time budget and was abandoned.
	TimedOut
)

// String returns the lowercase name of the state.
func (s State) String() string {
	switch s {
	case Completed:
		return "completed"
	case Failed:
		return "failed"
	case Skipped:
		return "skipped"
	case TimedOut:
		return "timed_out"
	default:
		return fmt.Sprintf("state(%d)", int32(s))
	}
}

// Result records the terminal state of one unit.
type Result struct {
	ID       string
	State    State
	Err      error
	Duration time.Duration
	// FailureSeq orders failures by detection time within one RunAll
	// call, starting at 1. Zero for units that did not fail or whose
	// failure was tolerated.
	FailureSeq int
}

// TimeoutError reports that a unit exceeded its allotted time.
type TimeoutError struct {
	Unit  string
	Limit time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("unit '%s' timed out after %s", e.Unit, e.Limit)
}
