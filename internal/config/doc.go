// Package config defines the format-agnostic configuration model for the
// application, along with the core interfaces (Loader, Converter) for
// loading and interpreting workflow files from various sources.
//
// The config.Model is the single source of truth for the registry and the
// task engine. Concrete implementations of the interfaces, such as for
// HCL, live in separate packages.
package config
