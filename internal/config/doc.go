// Package config loads, validates, and normalizes the TOML configuration
// shared by the patenttrack CLI and the patenttrackd daemon.
package config
