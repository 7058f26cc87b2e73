// Package config handles configuration for the capture client,
// including defaults, JSON overlay, command-line flags, and environment.
package config
