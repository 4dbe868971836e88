// Package recovery synthesizes remediation task lists from error
// classifications. The synthesizer only plans; the task engine executes
// the plan like any other task graph, with automated recovery disabled
// so a failing fix can never trigger another fix.
package recovery
