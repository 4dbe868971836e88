// Package graph implements the dependency resolver shared by the task
// engine and the plugin executor. Callers register named nodes with their
// declared dependencies; the graph validates referential integrity, detects
// cycles, and produces a deterministic topological order.
//
// The resolver is pure: it never invokes work functions and has no side
// effects beyond its own bookkeeping. Both construction-time failure modes
// (an edge referencing an unknown node, a dependency cycle) are programmer
// errors in the workflow definition and are surfaced as typed errors before
// any execution begins.
package graph
