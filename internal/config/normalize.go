package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeAssistant()
	c.normalizeStartup()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if value, ok := os.LookupEnv(ResourcesDirEnv); ok && strings.TrimSpace(value) != "" {
		c.Paths.ResourcesDir = strings.TrimSpace(value)
	}
	if c.Paths.ResourcesDir, err = expandPath(strings.TrimSpace(c.Paths.ResourcesDir)); err != nil {
		return fmt.Errorf("paths.resources_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		c.Paths.StateDir = defaultStateDir
	}
	if c.Paths.StateDir, err = expandPath(c.Paths.StateDir); err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}
	c.Paths.LogFile = strings.TrimSpace(c.Paths.LogFile)
	if c.Paths.LogFile == "" {
		c.Paths.LogFile = defaultLogFile
	}
	c.Paths.SettingsFile = strings.TrimSpace(c.Paths.SettingsFile)
	if c.Paths.SettingsFile == "" {
		c.Paths.SettingsFile = defaultSettingsFile
	}
	c.Paths.AuthCacheFile = strings.TrimSpace(c.Paths.AuthCacheFile)
	if c.Paths.AuthCacheFile == "" {
		c.Paths.AuthCacheFile = defaultAuthCacheFile
	}
	c.Paths.APIBind = strings.TrimSpace(c.Paths.APIBind)
	if value, ok := os.LookupEnv(APITokenEnv); ok {
		c.Paths.APIToken = value
	}
	c.Paths.APIToken = strings.TrimSpace(c.Paths.APIToken)
	return nil
}

func (c *Config) normalizeAssistant() {
	c.Assistant.HealthAddr = strings.TrimSpace(c.Assistant.HealthAddr)
	c.Assistant.ControlAddr = strings.TrimSpace(c.Assistant.ControlAddr)
	c.Assistant.ProcessName = strings.TrimSpace(c.Assistant.ProcessName)
	if c.Assistant.ProcessName == "" {
		c.Assistant.ProcessName = defaultProcessName
	}
}

func (c *Config) normalizeStartup() {
	c.Startup.AppName = strings.TrimSpace(c.Startup.AppName)
	if c.Startup.AppName == "" {
		c.Startup.AppName = defaultStartupAppName
	}
	sidecar := strings.TrimSpace(c.Startup.SidecarPath)
	if sidecar != "" {
		if expanded, err := expandPath(sidecar); err == nil {
			sidecar = expanded
		}
	}
	c.Startup.SidecarPath = sidecar
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
