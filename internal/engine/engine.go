package engine

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/vk/flowforgego/internal/batch"
	"github.com/vk/flowforgego/internal/classify"
	"github.com/vk/flowforgego/internal/ctxlog"
	"github.com/vk/flowforgego/internal/graph"
	"github.com/vk/flowforgego/internal/pool"
)

// waveFlushBackstop disarms the batcher's interval trigger during wave
// execution: the engine drains the batcher itself at the end of each
// wave, so a timer-driven flush would only race that drain.
const waveFlushBackstop = time.Hour

// RecoveryPlanner builds a remediation task list from a classification.
// The engine executes the returned plan exactly like any other task graph.
type RecoveryPlanner interface {
	Plan(c classify.Classification) []Task
}

// Options configures an Engine. The zero value gives the defaults: four
// workers, a 30 second task timeout, fail-fast error handling, and
// automated recovery (when a classifier and planner are attached).
type Options struct {
	// Workers bounds concurrent task execution. Zero means
	// pool.DefaultMaxConcurrent.
	Workers int
	// TaskTimeout is the per-task budget. Zero means pool.DefaultTimeout.
	TaskTimeout time.Duration
	// ContinueOnError keeps scheduling past failed tasks and their
	// dependents instead of aborting on the first failure.
	ContinueOnError bool
	// NoAutoRecovery disables classification and recovery runs.
	NoAutoRecovery bool
}

// Engine drives workflow runs. It is stateless across runs; the dependency
// graph built for one Execute call is never shared with another.
type Engine struct {
	opts       Options
	classifier *classify.Classifier
	planner    RecoveryPlanner
}

// New creates an Engine. Classifier and planner may be nil, which disables
// automated recovery regardless of Options.
func New(opts Options, classifier *classify.Classifier, planner RecoveryPlanner) *Engine {
	return &Engine{opts: opts, classifier: classifier, planner: planner}
}

// Execute runs the task set against the shared context. Construction
// errors (duplicate id, missing dependency, cycle) are fatal and returned
// before any work function runs. Execution errors follow the engine's
// fail-fast or continue-on-error policy; with automated recovery enabled
// the first error is classified and a synthesized plan is run before the
// wrapped failure is surfaced.
func (e *Engine) Execute(ctx context.Context, tasks []Task, shared *Context) (*RunResult, error) {
	logger := ctxlog.FromContext(ctx)
	if shared == nil {
		shared = NewContext()
	}

	g := graph.New()
	byID := make(map[string]*Task, len(tasks))
	for i := range tasks {
		t := &tasks[i]
		if err := g.Add(t.ID, t.DependsOn...); err != nil {
			return nil, fmt.Errorf("invalid task set: %w", err)
		}
		byID[t.ID] = t
	}
	order, err := g.Order()
	if err != nil {
		return nil, fmt.Errorf("invalid task set: %w", err)
	}

	logger.Info("🚀 Starting run...", "tasks", len(order))
	result := newRunResult()
	terminal := make(map[string]pool.State, len(order))
	scheduled := make(map[string]bool, len(order))
	aborted := false

	for len(terminal) < len(order) && !aborted {
		wave, skips := e.collectReady(ctx, order, byID, scheduled, terminal, result)
		if len(wave) == 0 {
			if skips == 0 {
				break
			}
			continue
		}

		// Priority is a submission-order hint only; dependency ordering
		// is already settled by the wave boundary.
		sort.SliceStable(wave, func(i, j int) bool {
			return wave[i].Hints.Priority > wave[j].Hints.Priority
		})

		handles := make(map[string]*Handle, len(wave))
		var direct, batchable []*Task
		for _, t := range wave {
			handles[t.ID] = newHandle(t, shared, logger.With("taskID", t.ID))
			if t.Hints.Batchable {
				batchable = append(batchable, t)
			} else {
				direct = append(direct, t)
			}
		}

		waveResults, waveErr := e.runWave(ctx, direct, batchable, handles, shared)

		type failure struct {
			seq int
			err error
		}
		var failures []failure
		for _, wr := range waveResults {
			t := byID[wr.ID]
			terminal[t.ID] = wr.State
			tr := &TaskResult{
				ID:       t.ID,
				State:    wr.State,
				Err:      wr.Err,
				Duration: wr.Duration,
			}
			tr.Title, tr.Output, tr.Progress, tr.Attempts = handles[t.ID].snapshot()
			result.Tasks[t.ID] = tr
			if wr.State == pool.Completed && tr.Output != "" {
				shared.Set("task."+t.outputName()+".output", tr.Output)
			}
			if wr.Err != nil && wr.State != pool.Skipped && !t.ContinueOnFailure {
				failures = append(failures, failure{seq: wr.FailureSeq, err: wr.Err})
			}
		}
		sort.Slice(failures, func(i, j int) bool { return failures[i].seq < failures[j].seq })
		for _, f := range failures {
			result.Errors = append(result.Errors, f.err)
		}

		if waveErr != nil && !e.opts.ContinueOnError {
			aborted = true
		}
	}

	if aborted {
		for _, id := range order {
			if _, done := terminal[id]; done {
				continue
			}
			terminal[id] = pool.Skipped
			result.Tasks[id] = &TaskResult{
				ID:    id,
				Title: byID[id].displayTitle(),
				State: pool.Skipped,
				Err:   pool.ErrAbandoned,
			}
		}
	}

	if result.Success() {
		logger.Info("🏁 Run finished.", "tasks", len(order))
		return result, nil
	}
	return result, e.surfaceFailure(ctx, result.Errors[0], shared)
}

// runWave executes one wave of ready tasks. Non-batchable tasks go to the
// pool in a single submission; batchable tasks are chunked through a
// Batcher so a huge wave never has every handle and unit live at once.
// The batcher is drained synchronously on this goroutine, chunk by chunk,
// and a fail-fast abort between chunks abandons the rest.
func (e *Engine) runWave(ctx context.Context, direct, batchable []*Task, handles map[string]*Handle, shared *Context) ([]pool.Result, error) {
	popts := pool.Options{
		MaxConcurrent:   e.opts.Workers,
		Timeout:         e.opts.TaskTimeout,
		ContinueOnError: e.opts.ContinueOnError,
	}
	unitFor := func(t *Task) pool.Unit {
		return pool.Unit{
			ID:       t.ID,
			Timeout:  t.Timeout,
			Tolerate: t.ContinueOnFailure,
			Run:      e.taskRunner(t, shared, handles[t.ID]),
		}
	}

	var (
		results  []pool.Result
		firstErr error
		seqBase  int
	)
	// absorb renumbers failure sequences so detection order holds across
	// successive pool submissions within the wave.
	absorb := func(rs []pool.Result, err error) {
		for _, r := range rs {
			if r.FailureSeq > 0 {
				r.FailureSeq += seqBase
			}
			results = append(results, r)
		}
		seqBase += len(rs)
		if firstErr == nil {
			firstErr = err
		}
	}
	abandon := func(tasks []*Task) {
		for _, t := range tasks {
			results = append(results, pool.Result{ID: t.ID, State: pool.Skipped, Err: pool.ErrAbandoned})
		}
	}

	if len(direct) > 0 {
		units := make([]pool.Unit, len(direct))
		for i, t := range direct {
			units[i] = unitFor(t)
		}
		rs, err := pool.RunAll(ctx, units, popts)
		absorb(rs, err)
	}
	if len(batchable) == 0 {
		return results, firstErr
	}
	if firstErr != nil && !e.opts.ContinueOnError {
		abandon(batchable)
		return results, firstErr
	}

	pending := make(map[string]pool.Unit, len(batchable))
	for _, t := range batchable {
		pending[t.ID] = unitFor(t)
	}
	b := batch.New(ctx, batch.Options{
		FlushInterval: waveFlushBackstop,
		Process: func(ctx context.Context, chunk []batch.Task) {
			if firstErr != nil && !e.opts.ContinueOnError {
				for _, bt := range chunk {
					results = append(results, pool.Result{ID: bt.ID, State: pool.Skipped, Err: pool.ErrAbandoned})
				}
				return
			}
			units := make([]pool.Unit, len(chunk))
			for i, bt := range chunk {
				units[i] = pending[bt.ID]
			}
			rs, err := pool.RunAll(ctx, units, popts)
			absorb(rs, err)
		},
	})
	for _, t := range batchable {
		b.Add(batch.Task{ID: t.ID, Run: pending[t.ID].Run})
	}
	b.Flush()
	return results, firstErr
}

// collectReady walks the topological order and gathers every unscheduled
// task whose dependency set is terminal. Under fail-fast, tasks behind a
// failed dependency are marked Skipped instead of joining the wave.
func (e *Engine) collectReady(
	ctx context.Context,
	order []string,
	byID map[string]*Task,
	scheduled map[string]bool,
	terminal map[string]pool.State,
	result *RunResult,
) (wave []*Task, skips int) {
	logger := ctxlog.FromContext(ctx)

	for _, id := range order {
		if scheduled[id] {
			continue
		}
		t := byID[id]

		ready := true
		failedDep := ""
		for _, dep := range t.DependsOn {
			st, done := terminal[dep]
			if !done {
				ready = false
				break
			}
			if st != pool.Completed && !byID[dep].ContinueOnFailure {
				failedDep = dep
			}
		}
		if !ready {
			continue
		}

		if failedDep != "" && !e.opts.ContinueOnError {
			logger.Warn("Skipping task due to upstream failure.", "taskID", id, "dependency", failedDep)
			scheduled[id] = true
			terminal[id] = pool.Skipped
			result.Tasks[id] = &TaskResult{
				ID:    id,
				Title: t.displayTitle(),
				State: pool.Skipped,
				Err:   fmt.Errorf("skipped due to upstream failure of '%s'", failedDep),
			}
			skips++
			continue
		}

		scheduled[id] = true
		wave = append(wave, t)
	}
	return wave, skips
}

// taskRunner builds the pool unit for one task: subtasks first, then the
// work function with retries.
func (e *Engine) taskRunner(t *Task, shared *Context, h *Handle) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		logger := ctxlog.FromContext(ctx).With("taskID", t.ID)
		logger.Info("▶️ Starting task", "title", t.displayTitle())
		if t.Resources != nil {
			logger.Debug("Task resource hints.",
				"estMemoryMB", t.Resources.EstimatedMemoryMB,
				"estCPU", t.Resources.EstimatedCPU,
				"estDuration", t.Resources.EstimatedDuration,
				"cacheable", t.Hints.Cacheable)
		}

		if len(t.Subtasks) > 0 {
			sub := &Engine{opts: e.opts}
			sub.opts.NoAutoRecovery = true
			if _, err := sub.Execute(ctx, t.Subtasks, shared); err != nil {
				return &TaskExecutionError{TaskID: t.ID, Err: err}
			}
		}

		if t.Run == nil {
			logger.Info("✅ Finished task")
			return nil
		}

		var err error
		for attempt := 0; attempt <= t.Retry; attempt++ {
			if attempt > 0 {
				logger.Warn("Retrying task after failure.", "attempt", attempt+1, "of", t.Retry+1, "error", err)
			}
			h.recordAttempt()
			err = t.Run(ctx, h)
			if err == nil {
				break
			}
			if ctx.Err() != nil {
				break
			}
		}
		if err != nil {
			return &TaskExecutionError{TaskID: t.ID, Err: err}
		}

		logger.Info("✅ Finished task")
		return nil
	}
}

// surfaceFailure classifies the first error, optionally executes a
// synthesized recovery plan, and wraps the failure for the caller.
// Recovery runs are logged distinctly from the original failure so an
// operator can tell "the build failed" apart from "we tried to fix the
// build and still failed".
func (e *Engine) surfaceFailure(ctx context.Context, first error, shared *Context) error {
	logger := ctxlog.FromContext(ctx)
	wrapped := &WorkflowExecutionError{Err: first}

	if e.opts.NoAutoRecovery || e.classifier == nil || e.planner == nil {
		return wrapped
	}

	c := e.classifier.Classify(first)
	wrapped.Classification = &c
	logger.Warn("🩹 Attempting automated recovery.",
		"category", c.Category, "severity", c.Severity, "fixable", c.Fixable, "fingerprint", c.Fingerprint)

	plan := e.planner.Plan(c)
	if len(plan) == 0 {
		return wrapped
	}

	recovery := &Engine{opts: e.opts}
	recovery.opts.NoAutoRecovery = true
	recovery.opts.ContinueOnError = false
	if _, recErr := recovery.Execute(ctx, plan, shared); recErr != nil {
		logger.Error("Recovery run failed, original failure stands.", "error", recErr)
	} else {
		wrapped.Recovered = true
		logger.Info("Recovery run completed, original failure is still surfaced.")
	}
	return wrapped
}
