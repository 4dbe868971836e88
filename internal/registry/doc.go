// Package registry provides the central glue for the module system.
//
// The Registry maps the module types used in workflow files (e.g. "exec")
// to the compiled Go handlers that implement them, and plugin types to
// their phase hooks. During application startup the registry is populated
// by each module's Register call and then validated against the loaded
// configuration, so an unknown module type fails before anything runs.
package registry
