package config

import (
	"errors"
	"fmt"
	"net"
	"path/filepath"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateAssistant(); err != nil {
		return err
	}
	if err := c.validateTail(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePaths() error {
	for key, name := range map[string]string{
		"paths.log_file":        c.Paths.LogFile,
		"paths.settings_file":   c.Paths.SettingsFile,
		"paths.auth_cache_file": c.Paths.AuthCacheFile,
	} {
		if filepath.Base(name) != name {
			return fmt.Errorf("%s must be a bare file name, got %q", key, name)
		}
	}
	if c.Paths.APIBind != "" {
		if _, _, err := net.SplitHostPort(c.Paths.APIBind); err != nil {
			return fmt.Errorf("paths.api_bind: %w", err)
		}
	}
	return nil
}

func (c *Config) validateAssistant() error {
	if _, _, err := net.SplitHostPort(c.Assistant.HealthAddr); err != nil {
		return fmt.Errorf("assistant.health_addr: %w", err)
	}
	if _, _, err := net.SplitHostPort(c.Assistant.ControlAddr); err != nil {
		return fmt.Errorf("assistant.control_addr: %w", err)
	}
	if c.Assistant.ConnectTimeoutMS <= 0 {
		return errors.New("assistant.connect_timeout_ms must be positive")
	}
	if c.Assistant.ReadTimeoutMS <= 0 {
		return errors.New("assistant.read_timeout_ms must be positive")
	}
	if c.Assistant.WriteTimeoutMS <= 0 {
		return errors.New("assistant.write_timeout_ms must be positive")
	}
	if c.Assistant.ShutdownGraceMS < 0 {
		return errors.New("assistant.shutdown_grace_ms must be non-negative")
	}
	return nil
}

func (c *Config) validateTail() error {
	if c.Tail.MaxBytes < 0 {
		return errors.New("tail.max_bytes must be non-negative")
	}
	if c.Tail.LastLines < 0 {
		return errors.New("tail.last_lines must be non-negative")
	}
	if c.Tail.PollIntervalMS <= 0 {
		return errors.New("tail.poll_interval_ms must be positive")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	return nil
}
