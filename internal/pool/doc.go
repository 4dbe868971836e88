// Package pool runs a queue of asynchronous units of work with a bounded
// number of simultaneous executions and a per-unit timeout.
//
// Two failure policies are supported. Fail-fast (the default) cancels the
// run context on the first failure, so units that have not started yet are
// recorded as skipped. Continue-on-error lets every unit run to completion
// (or timeout) and reports the first error only after the whole batch has
// finished, preserving partial progress.
//
// Timeouts are advisory races, not preemption: a unit that exceeds its
// budget is reported as timed out and its goroutine abandoned. The unit's
// context is cancelled at the deadline, so cooperative work functions can
// stop, but nothing forcibly kills the underlying work.
package pool
