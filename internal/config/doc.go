// Package config loads and validates performersync configuration.
//
// Settings live in a TOML file (default ~/.config/performersync/config.toml,
// falling back to ./performersync.toml). Load applies defaults, decodes the
// file, expands paths, pulls secrets from the environment when the file leaves
// them blank, and validates the result. The plugin entrypoint can further
// override catalog connection settings and the run mode from the host payload
// via ApplyServerConnection.
package config
