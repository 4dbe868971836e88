package pool

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/vk/flowforgego/internal/ctxlog"
)

const (
	// DefaultMaxConcurrent bounds the live-set when no limit is configured.
	DefaultMaxConcurrent = 4
	// DefaultTimeout is the per-unit time budget when none is configured.
	DefaultTimeout = 30 * time.Second
)

// ErrAbandoned is the skip reason recorded for units that never started
// because an earlier failure aborted the run.
var ErrAbandoned = errors.New("abandoned after earlier failure")

// ErrInterrupted is the skip reason recorded for units that were already
// running when an earlier failure cancelled the run. Their cancellation is
// an artifact of the abort, not a failure of their own.
var ErrInterrupted = errors.New("interrupted by earlier failure")

// Unit is a single zero-argument asynchronous operation with an id used
// for reporting.
type Unit struct {
	ID  string
	Run func(ctx context.Context) error
	// Timeout overrides Options.Timeout for this unit when positive.
	Timeout time.Duration
	// Tolerate records this unit's failure without aborting the run and
	// without counting it toward the returned error.
	Tolerate bool
}

// Options configures one RunAll invocation.
type Options struct {
	// MaxConcurrent bounds simultaneous executions. Zero means
	// DefaultMaxConcurrent.
	MaxConcurrent int
	// Timeout is the per-unit budget. Zero means DefaultTimeout.
	Timeout time.Duration
	// ContinueOnError lets every unit run to completion and defers error
	// propagation until the whole batch has finished. The default is
	// fail-fast.
	ContinueOnError bool
}

func (o Options) withDefaults() Options {
	if o.MaxConcurrent <= 0 {
		o.MaxConcurrent = DefaultMaxConcurrent
	}
	if o.Timeout <= 0 {
		o.Timeout = DefaultTimeout
	}
	return o
}

// RunAll executes every unit with at most opts.MaxConcurrent running at
// once, racing each against its time budget. It always returns one Result
// per unit, index-aligned with the input. The returned error wraps the
// first failure detected; tolerated failures never contribute to it.
func RunAll(ctx context.Context, units []Unit, opts Options) ([]Result, error) {
	opts = opts.withDefaults()
	logger := ctxlog.FromContext(ctx)

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	results := make([]Result, len(units))

	var mu sync.Mutex
	var firstErr error
	var failureSeq int
	recordFailure := func(err error) int {
		mu.Lock()
		failureSeq++
		seq := failureSeq
		if firstErr == nil {
			firstErr = err
		}
		mu.Unlock()
		if !opts.ContinueOnError {
			cancel()
		}
		return seq
	}
	hasFailure := func() bool {
		mu.Lock()
		defer mu.Unlock()
		return firstErr != nil
	}

	var eg errgroup.Group
	eg.SetLimit(opts.MaxConcurrent)

	for i, unit := range units {
		eg.Go(func() error {
			if !opts.ContinueOnError && runCtx.Err() != nil {
				logger.Warn("Skipping unit, run already aborted.", "unitID", unit.ID)
				results[i] = Result{ID: unit.ID, State: Skipped, Err: ErrAbandoned}
				return nil
			}

			timeout := opts.Timeout
			if unit.Timeout > 0 {
				timeout = unit.Timeout
			}

			start := time.Now()
			err := runWithTimeout(runCtx, unit, timeout)
			elapsed := time.Since(start)

			var timeoutErr *TimeoutError
			switch {
			case err == nil:
				results[i] = Result{ID: unit.ID, State: Completed, Duration: elapsed}
			case errors.As(err, &timeoutErr):
				logger.Error("Unit timed out.", "unitID", unit.ID, "limit", timeout)
				if unit.Tolerate {
					results[i] = Result{ID: unit.ID, State: TimedOut, Err: err, Duration: elapsed}
					return nil
				}
				results[i] = Result{ID: unit.ID, State: TimedOut, Err: err, Duration: elapsed, FailureSeq: recordFailure(err)}
			case !opts.ContinueOnError && errors.Is(err, context.Canceled) && hasFailure():
				// The unit was in flight when another unit's failure
				// cancelled the run. Its cancellation error must not
				// shadow the root cause.
				logger.Warn("Unit cancelled by an earlier failure.", "unitID", unit.ID)
				results[i] = Result{ID: unit.ID, State: Skipped, Err: ErrInterrupted, Duration: elapsed}
			default:
				logger.Error("Unit execution failed.", "unitID", unit.ID, "error", err)
				if unit.Tolerate {
					logger.Warn("Failure tolerated, run continues.", "unitID", unit.ID)
					results[i] = Result{ID: unit.ID, State: Failed, Err: err, Duration: elapsed}
					return nil
				}
				results[i] = Result{ID: unit.ID, State: Failed, Err: err, Duration: elapsed, FailureSeq: recordFailure(err)}
			}
			return nil
		})
	}

	// Worker errors are recorded in results, never returned from the
	// closures, so Wait only synchronizes.
	_ = eg.Wait()

	if firstErr != nil {
		return results, fmt.Errorf("run failed: %w", firstErr)
	}
	return results, nil
}

// runWithTimeout races the unit against its budget. If the timer wins, the
// unit's goroutine is abandoned; its context is cancelled so cooperative
// work functions can stop.
func runWithTimeout(ctx context.Context, unit Unit, timeout time.Duration) error {
	unitCtx, cancel := context.WithTimeout(ctx, timeout)

	done := make(chan error, 1)
	go func() {
		defer cancel()
		done <- unit.Run(unitCtx)
	}()

	select {
	case err := <-done:
		return err
	case <-unitCtx.Done():
		if errors.Is(unitCtx.Err(), context.DeadlineExceeded) {
			return &TimeoutError{Unit: unit.ID, Limit: timeout}
		}
		// The surrounding run was cancelled while this unit was in flight.
		return unitCtx.Err()
	}
}
