// Package batch accumulates small units of work and flushes them as a
// group, trading latency for per-task overhead.
//
// A queued batch is processed when any of three triggers fires: the queue
// reaches its size threshold, process heap utilization crosses the memory
// threshold, or the flush interval elapses since the first task was
// admitted into an otherwise unflushed queue. The interval timer is
// debounced against flushes, not arrivals: it starts with the first
// admission and is only reset by a flush or a clear.
//
// Batch processing is partial-failure tolerant: a failing task is logged
// and the rest of the batch still runs. This is deliberately different from
// the pool package's fail-fast policy.
package batch
