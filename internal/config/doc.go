// Package config loads CLI defaults from an optional YAML file and from
// CHAINSAW_* environment variables.
//
// Precedence, lowest to highest: built-in defaults, config file, environment,
// command-line flags (merged in by the caller via Merge).
package config
