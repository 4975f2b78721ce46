// Package config handles configuration loading and management for mlconsole.
//
// It provides functionality for:
//   - Loading configuration from .mlconsole.yml or .mlconsole.yaml files
//   - Default configuration values
//   - Merging file config with CLI flag overrides
package config
