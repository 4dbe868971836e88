package batch

import (
	"context"
	"runtime"
	"sync"
	"time"

	"github.com/vk/flowforgego/internal/ctxlog"
)

const (
	// DefaultMaxBatchSize flushes the queue once it holds this many tasks.
	DefaultMaxBatchSize = 10
	// DefaultMemoryThreshold flushes early once heap utilization
	// (HeapAlloc / HeapSys) crosses this ratio.
	DefaultMemoryThreshold = 0.8
	// DefaultFlushInterval bounds how long an admitted task can wait.
	DefaultFlushInterval = 100 * time.Millisecond
)

// Task is a single batchable unit of work.
type Task struct {
	ID  string
	Run func(ctx context.Context) error
}

// Options configures a Batcher. Zero values fall back to the defaults.
type Options struct {
	MaxBatchSize    int
	MemoryThreshold float64
	FlushInterval   time.Duration
	// Process overrides how a drained batch is handled. The default runs
	// each task sequentially and logs failures without stopping the batch.
	Process func(ctx context.Context, tasks []Task)
}

// Batcher is a mutex-guarded task accumulator. It is safe for use from
// multiple goroutines.
type Batcher struct {
	ctx  context.Context
	opts Options

	mu       sync.Mutex
	queue    []Task
	timer    *time.Timer
	memProbe func() float64
}

// New creates a Batcher. The context is used for logging and is passed to
// every processed task.
func New(ctx context.Context, opts Options) *Batcher {
	if opts.MaxBatchSize <= 0 {
		opts.MaxBatchSize = DefaultMaxBatchSize
	}
	if opts.MemoryThreshold <= 0 {
		opts.MemoryThreshold = DefaultMemoryThreshold
	}
	if opts.FlushInterval <= 0 {
		opts.FlushInterval = DefaultFlushInterval
	}
	b := &Batcher{
		ctx:      ctx,
		opts:     opts,
		memProbe: heapUtilization,
	}
	if b.opts.Process == nil {
		b.opts.Process = b.processSequentially
	}
	return b
}

// Add admits a task into the queue (fire-and-forget). It may trigger an
// immediate flush when the size or memory threshold is crossed.
func (b *Batcher) Add(task Task) {
	b.mu.Lock()

	b.queue = append(b.queue, task)
	if b.timer == nil {
		// First admission into an unflushed queue arms the interval timer.
		b.timer = time.AfterFunc(b.opts.FlushInterval, b.Flush)
	}

	if len(b.queue) >= b.opts.MaxBatchSize {
		ctxlog.FromContext(b.ctx).Debug("Batch size threshold reached, flushing.", "size", len(b.queue))
		b.flushLocked()
		return
	}
	if util := b.memProbe(); util >= b.opts.MemoryThreshold {
		ctxlog.FromContext(b.ctx).Warn("Heap pressure threshold reached, flushing early.", "utilization", util)
		b.flushLocked()
		return
	}

	b.mu.Unlock()
}

// Flush force-drains the queue and processes every admitted task.
func (b *Batcher) Flush() {
	b.mu.Lock()
	b.flushLocked()
}

// Clear drops the queue and disarms the pending flush timer without
// executing anything. Used for abort scenarios.
func (b *Batcher) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.queue = nil
	b.stopTimerLocked()
}

// Len reports the number of tasks currently queued.
func (b *Batcher) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.queue)
}

// flushLocked drains the queue and releases the lock before processing, so
// tasks admitted during processing start a fresh batch.
func (b *Batcher) flushLocked() {
	tasks := b.queue
	b.queue = nil
	b.stopTimerLocked()
	b.mu.Unlock()

	if len(tasks) == 0 {
		return
	}
	b.opts.Process(b.ctx, tasks)
}

func (b *Batcher) stopTimerLocked() {
	if b.timer != nil {
		b.timer.Stop()
		b.timer = nil
	}
}

// processSequentially is the default batch handler: tasks run in admission
// order and individual failures do not stop the rest of the batch.
func (b *Batcher) processSequentially(ctx context.Context, tasks []Task) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Processing batch.", "size", len(tasks))
	for _, task := range tasks {
		if err := task.Run(ctx); err != nil {
			logger.Error("Batched task failed.", "taskID", task.ID, "error", err)
		}
	}
}

// heapUtilization returns HeapAlloc / HeapSys for the current process.
func heapUtilization() float64 {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	if ms.HeapSys == 0 {
		return 0
	}
	return float64(ms.HeapAlloc) / float64(ms.HeapSys)
}
