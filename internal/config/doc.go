// Package config loads graph description files and resolves them, through
// a registry.Registry, into a runnable jobs.Graph. See model.go for the
// HCL grammar.
package config
