// Package config resolves server settings (listen port, timeouts, rate limits,
// result cache size, log level and the initial pallet preset catalog) from
// defaults, environment variables, a YAML file and CLI flags, in increasing order
// of precedence. Pallet presets in YAML are expressed in millimeters and kilograms.
package config
