package batch

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func countingTask(ran *atomic.Int32) Task {
	return Task{
		ID: "count",
		Run: func(ctx context.Context) error {
			ran.Add(1)
			return nil
		},
	}
}

func TestBatcher_FlushesAtSizeThreshold(t *testing.T) {
	var ran atomic.Int32
	b := New(context.Background(), Options{
		MaxBatchSize:  3,
		FlushInterval: time.Hour, // the timer must not be the trigger
	})

	b.Add(countingTask(&ran))
	b.Add(countingTask(&ran))
	assert.EqualValues(t, 0, ran.Load())
	assert.Equal(t, 2, b.Len())

	b.Add(countingTask(&ran))
	assert.EqualValues(t, 3, ran.Load(), "size threshold must flush immediately")
	assert.Equal(t, 0, b.Len())
}

func TestBatcher_FlushesOnInterval(t *testing.T) {
	var ran atomic.Int32
	b := New(context.Background(), Options{
		MaxBatchSize:  100,
		FlushInterval: 30 * time.Millisecond,
	})

	b.Add(countingTask(&ran))
	assert.EqualValues(t, 0, ran.Load())

	require.Eventually(t, func() bool {
		return ran.Load() == 1
	}, time.Second, 5*time.Millisecond, "interval timer must drain the queue")
}

func TestBatcher_ClearExecutesNothing(t *testing.T) {
	var ran atomic.Int32
	b := New(context.Background(), Options{
		MaxBatchSize:  100,
		FlushInterval: 20 * time.Millisecond,
	})

	b.Add(countingTask(&ran))
	b.Add(countingTask(&ran))
	b.Clear()

	assert.Equal(t, 0, b.Len())
	time.Sleep(60 * time.Millisecond) // past the disarmed timer
	assert.EqualValues(t, 0, ran.Load(), "cleared tasks must never run")
}

func TestBatcher_MemoryPressureFlushes(t *testing.T) {
	var ran atomic.Int32
	b := New(context.Background(), Options{
		MaxBatchSize:    100,
		MemoryThreshold: 0.5,
		FlushInterval:   time.Hour,
	})
	b.memProbe = func() float64 { return 0.9 }

	b.Add(countingTask(&ran))
	assert.EqualValues(t, 1, ran.Load(), "heap pressure must flush immediately")
}

func TestBatcher_PartialFailureTolerant(t *testing.T) {
	var order []string
	done := make(chan struct{})
	b := New(context.Background(), Options{
		MaxBatchSize:  3,
		FlushInterval: time.Hour,
	})

	b.Add(Task{ID: "ok-1", Run: func(ctx context.Context) error {
		order = append(order, "ok-1")
		return nil
	}})
	b.Add(Task{ID: "bad", Run: func(ctx context.Context) error {
		order = append(order, "bad")
		return assert.AnError
	}})
	b.Add(Task{ID: "ok-2", Run: func(ctx context.Context) error {
		order = append(order, "ok-2")
		close(done)
		return nil
	}})

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("batch did not finish")
	}
	assert.Equal(t, []string{"ok-1", "bad", "ok-2"}, order,
		"a failing task must not stop the rest of the batch")
}

func TestBatcher_FlushOnEmptyQueueIsNoop(t *testing.T) {
	processed := false
	b := New(context.Background(), Options{
		Process: func(ctx context.Context, tasks []Task) { processed = true },
	})
	b.Flush()
	assert.False(t, processed)
}
