// Package config handles configuration for the CLI client, including
// defaults, JSON overlay, and command-line flags.
package config
