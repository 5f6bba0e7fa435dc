// Package application wires storage, the calculation engine, the result cache,
// HTTP handlers, metrics and the HTTP server together from a resolved config, so
// the main package only parses flags and handles shutdown.
package application
