// Package config declares the property server's own settings (port, timeouts,
// rate limiting, logging) as properties of an internal group and reads them back
// into a strongly typed Config after values are resolved. They follow the same
// precedence as every other property: CLI arguments > environment > YAML config >
// TOML config > defaults.
package config
