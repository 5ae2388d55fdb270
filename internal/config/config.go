package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"

	"osassist/internal/fileutil"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains file locations and bind addresses.
type Paths struct {
	ResourcesDir  string `toml:"resources_dir"`
	LogFile       string `toml:"log_file"`
	SettingsFile  string `toml:"settings_file"`
	AuthCacheFile string `toml:"auth_cache_file"`
	StateDir      string `toml:"state_dir"`
	APIBind       string `toml:"api_bind"`
	APIToken      string `toml:"api_token"`
}

// Assistant contains loopback addresses and timeouts for the sidecar process.
type Assistant struct {
	HealthAddr       string `toml:"health_addr"`
	ControlAddr      string `toml:"control_addr"`
	ConnectTimeoutMS int    `toml:"connect_timeout_ms"`
	ReadTimeoutMS    int    `toml:"read_timeout_ms"`
	WriteTimeoutMS   int    `toml:"write_timeout_ms"`
	ShutdownGraceMS  int    `toml:"shutdown_grace_ms"`
	ProcessName      string `toml:"process_name"`
}

// Startup contains OS autostart registration settings.
type Startup struct {
	AppName     string `toml:"app_name"`
	SidecarPath string `toml:"sidecar_path"`
}

// Tail contains log viewer defaults.
type Tail struct {
	MaxBytes       int64 `toml:"max_bytes"`
	LastLines      int   `toml:"last_lines"`
	PollIntervalMS int   `toml:"poll_interval_ms"`
}

// Logging contains configuration for the panel's own log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for the control panel.
//
// Configuration sections by subsystem:
//   - Paths: resources discovery, file names, state directory, HTTP bind
//   - Assistant: sidecar health/control sockets and timeouts
//   - Startup: autostart registration
//   - Tail: log viewer defaults
//   - Logging: panel log format and level
type Config struct {
	Paths     Paths     `toml:"paths"`
	Assistant Assistant `toml:"assistant"`
	Startup   Startup   `toml:"startup"`
	Tail      Tail      `toml:"tail"`
	Logging   Logging   `toml:"logging"`
}

// DefaultConfigPath returns where config init writes and Load looks first.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load reads the configuration at path, or the first of the default
// locations that exists, applies environment overrides and validates it.
// It also returns the resolved path and whether a file was read; without
// one the defaults are used.
func Load(path string) (*Config, string, bool, error) {
	source, exists, err := locateConfig(path)
	if err != nil {
		return nil, "", false, err
	}

	cfg := Default()
	if exists {
		data, err := os.ReadFile(source)
		if err != nil {
			return nil, "", false, fmt.Errorf("read config %s: %w", source, err)
		}
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config %s: %w", source, err)
		}
	}
	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}
	return &cfg, source, exists, nil
}

// locateConfig resolves an explicit path as given. Otherwise it tries the
// user config directory, then osassist.toml in the working directory.
func locateConfig(path string) (string, bool, error) {
	var candidates []string
	if strings.TrimSpace(path) != "" {
		candidates = []string{path}
	} else {
		candidates = []string{defaultConfigPath, projectConfigFile}
	}

	var first string
	for i, candidate := range candidates {
		resolved, err := expandPath(candidate)
		if err != nil {
			return "", false, err
		}
		if i == 0 {
			first = resolved
		}
		info, err := os.Stat(resolved)
		switch {
		case err == nil && !info.IsDir():
			return resolved, true, nil
		case err != nil && !errors.Is(err, fs.ErrNotExist):
			return "", false, fmt.Errorf("stat config %s: %w", resolved, err)
		}
	}
	return first, false, nil
}

// EnsureDirectories creates the panel state directory.
func (c *Config) EnsureDirectories() error {
	if err := os.MkdirAll(c.Paths.StateDir, 0o755); err != nil {
		return fmt.Errorf("create directory %q: %w", c.Paths.StateDir, err)
	}
	return nil
}

// SocketPath returns the panel IPC socket location.
func (c *Config) SocketPath() string {
	return filepath.Join(c.Paths.StateDir, "osassist.sock")
}

// LockPath returns the single-instance lock used by the panel server.
func (c *Config) LockPath() string {
	return filepath.Join(c.Paths.StateDir, "osassist-panel.lock")
}

// PIDPath returns the file holding the running panel's process id.
func (c *Config) PIDPath() string {
	return filepath.Join(c.Paths.StateDir, "osassist.pid")
}

// PanelLogPath returns the file the panel writes its own logs to.
func (c *Config) PanelLogPath() string {
	return filepath.Join(c.Paths.StateDir, "osassist.log")
}

// ConnectTimeout returns the sidecar dial timeout.
func (c *Config) ConnectTimeout() time.Duration {
	return time.Duration(c.Assistant.ConnectTimeoutMS) * time.Millisecond
}

// ReadTimeout returns the sidecar read timeout.
func (c *Config) ReadTimeout() time.Duration {
	return time.Duration(c.Assistant.ReadTimeoutMS) * time.Millisecond
}

// WriteTimeout returns the sidecar write timeout.
func (c *Config) WriteTimeout() time.Duration {
	return time.Duration(c.Assistant.WriteTimeoutMS) * time.Millisecond
}

// ShutdownGrace returns how long to wait after a shutdown request before re-probing.
func (c *Config) ShutdownGrace() time.Duration {
	return time.Duration(c.Assistant.ShutdownGraceMS) * time.Millisecond
}

// PollInterval returns the follow-mode polling cadence.
func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.Tail.PollIntervalMS) * time.Millisecond
}

func expandPath(value string) (string, error) {
	if value == "" {
		return "", nil
	}
	if value == "~" || strings.HasPrefix(value, "~/") || strings.HasPrefix(value, `~\`) {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		value = filepath.Join(home, value[1:])
	}
	absolute, err := filepath.Abs(value)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", value, err)
	}
	return absolute, nil
}

// ExpandPath applies the same ~ and relative-path rules Load uses.
func ExpandPath(value string) (string, error) {
	return expandPath(value)
}

// CreateSample writes the commented sample configuration to path.
func CreateSample(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	return fileutil.WriteFileAtomic(path, []byte(sampleConfig), 0o644)
}
