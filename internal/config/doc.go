// Package config loads, normalizes, and validates osassist configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours the OSASSIST_RESOURCES_DIR
// environment override. The Config type centralizes every knob the panel
// server and CLI need: where the assistant's resources live, how to reach the
// sidecar over loopback, and how the log viewer pages through output.
//
// Always obtain settings through this package so downstream code receives
// expanded paths and clear validation errors.
package config
