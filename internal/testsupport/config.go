package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"osassist/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// The resources directory exists but is empty, and no sidecar listens on the
// loopback addresses.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.ResourcesDir = filepath.Join(base, "resources")
	cfgVal.Paths.StateDir = filepath.Join(base, "state")
	cfgVal.Paths.APIBind = "127.0.0.1:0"
	cfgVal.Assistant.HealthAddr = "127.0.0.1:1"
	cfgVal.Assistant.ControlAddr = "127.0.0.1:1"
	cfgVal.Assistant.ShutdownGraceMS = 1
	cfgVal.Startup.AppName = "OSAssistantTest"

	if err := os.MkdirAll(cfgVal.Paths.ResourcesDir, 0o755); err != nil {
		t.Fatalf("mkdir resources dir: %v", err)
	}

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithAssistantAddrs points the health and control probes at test listeners.
func WithAssistantAddrs(health, control string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Assistant.HealthAddr = health
		b.cfg.Assistant.ControlAddr = control
	}
}

// WithLogContent seeds the assistant log under resources/logs.
func WithLogContent(content string) ConfigOption {
	return func(b *configBuilder) {
		WriteText(b.t, filepath.Join(b.cfg.Paths.ResourcesDir, "logs", b.cfg.Paths.LogFile), content)
	}
}

// WithoutResources removes the resources directory and clears the
// configured path so lookups fall back to discovery and fail.
func WithoutResources() ConfigOption {
	return func(b *configBuilder) {
		if err := os.RemoveAll(b.cfg.Paths.ResourcesDir); err != nil {
			b.t.Fatalf("remove resources dir: %v", err)
		}
		b.cfg.Paths.ResourcesDir = ""
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.StateDir)
}
