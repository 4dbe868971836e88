// Package engine renders a dependency-ordered collection of named tasks,
// optionally nested into subtasks, with configurable fail-fast or
// continue-on-error semantics.
//
// Scheduling works in ready-waves: the resolver validates and orders the
// task set up front, then every task whose dependencies have reached a
// terminal state is submitted together to the pool package, which bounds
// concurrency and enforces per-task timeouts. Tasks with no mutual
// dependency therefore run concurrently; a task never starts before its
// whole dependency set is terminal.
//
// On an unrecoverable failure the engine can hand the error to the error
// classifier and a recovery planner, execute the synthesized remediation
// plan through itself (recovery is ordinary scheduling, only the planning
// is special), and finally surface a wrapped WorkflowExecutionError.
package engine
