package engine

import (
	"log/slog"
	"sync"
)

// Handle is the progress side-channel exposed to a task's work function.
// Everything written here is observational: it is recorded on the task's
// result and logged, and has no effect on control flow.
type Handle struct {
	taskID string
	shared *Context
	logger *slog.Logger

	mu       sync.Mutex
	title    string
	output   string
	progress float64
	attempts int
}

func newHandle(task *Task, shared *Context, logger *slog.Logger) *Handle {
	return &Handle{
		taskID: task.ID,
		shared: shared,
		logger: logger,
		title:  task.displayTitle(),
	}
}

// Context returns the run's shared key/value store.
func (h *Handle) Context() *Context {
	return h.shared
}

// SetTitle updates the task's display title.
func (h *Handle) SetTitle(title string) {
	h.mu.Lock()
	h.title = title
	h.mu.Unlock()
	h.logger.Debug("Task title updated.", "title", title)
}

// SetOutput records the task's most recent output line.
func (h *Handle) SetOutput(output string) {
	h.mu.Lock()
	h.output = output
	h.mu.Unlock()
	h.logger.Debug("Task output updated.", "output", output)
}

// SetProgress records completion progress in the range [0, 1].
func (h *Handle) SetProgress(progress float64) {
	if progress < 0 {
		progress = 0
	}
	if progress > 1 {
		progress = 1
	}
	h.mu.Lock()
	h.progress = progress
	h.mu.Unlock()
	h.logger.Debug("Task progress updated.", "progress", progress)
}

func (h *Handle) recordAttempt() {
	h.mu.Lock()
	h.attempts++
	h.mu.Unlock()
}

// snapshot returns the current title, output, progress, and attempt count.
func (h *Handle) snapshot() (title, output string, progress float64, attempts int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.title, h.output, h.progress, h.attempts
}
