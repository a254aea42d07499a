// Package config handles configuration management for dotstow.
// It layers the embedded defaults, a TOML or YAML user file, DOTSTOW_*
// environment variables and explicit overrides into a single Config value.
package config
