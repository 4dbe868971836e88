// Package plugin runs extension hooks in three phases: prepare, apply,
// then finalize. Each phase visits every plugin in dependency order
// before the next phase starts, and hook failures are collected rather
// than aborting the run, so one broken plugin never blocks another's
// cleanup.
package plugin
