// Package config handles configuration loading and management for request.
//
// It provides functionality for:
//   - Loading configuration from .request.yaml, .request.yml or .requestrc files
//   - Default configuration values
//   - Merging file settings with command line overrides
package config
