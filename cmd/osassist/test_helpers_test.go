package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"osassist/internal/config"
	"osassist/internal/ipc"
	"osassist/internal/panel"
	"osassist/internal/testsupport"
)

type memStartup struct{ enabled bool }

func (m *memStartup) Enabled() (bool, error)   { return m.enabled, nil }
func (m *memStartup) SetEnabled(on bool) error { m.enabled = on; return nil }

func noopRunner(context.Context, string, ...string) error { return nil }

type cliTestEnv struct {
	cfg        *config.Config
	socketPath string
	configPath string
	startup    *memStartup
}

func setupCLITestEnv(t *testing.T, opts ...testsupport.ConfigOption) *cliTestEnv {
	t.Helper()

	cfg := testsupport.NewConfig(t, opts...)
	base := testsupport.BaseDir(cfg)
	t.Setenv("HOME", filepath.Join(base, "home"))
	t.Setenv(config.ResourcesDirEnv, "")
	t.Setenv(config.APITokenEnv, "")

	configPath := filepath.Join(base, "config.toml")
	writeTestConfig(t, configPath, cfg)

	return &cliTestEnv{
		cfg:        cfg,
		socketPath: cfg.SocketPath(),
		configPath: configPath,
		startup:    &memStartup{},
	}
}

func (e *cliTestEnv) panelOptions() []panel.Option {
	return []panel.Option{panel.WithStartupManager(e.startup), panel.WithCommandRunner(noopRunner)}
}

// startPanel serves a panel on the env socket for the rest of the test.
func (e *cliTestEnv) startPanel(t *testing.T) {
	t.Helper()
	if err := e.cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories: %v", err)
	}
	svc, err := panel.New(e.cfg, nil, e.panelOptions()...)
	if err != nil {
		t.Fatalf("panel.New: %v", err)
	}
	if err := svc.Start(); err != nil {
		t.Fatalf("panel Start: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	srv, err := ipc.NewServer(ctx, e.socketPath, svc, nil)
	if err != nil {
		cancel()
		if strings.Contains(err.Error(), "operation not permitted") {
			t.Skipf("skipping IPC-backed CLI test: %v", err)
		}
		t.Fatalf("ipc.NewServer: %v", err)
	}
	srv.Serve()
	t.Cleanup(func() {
		cancel()
		srv.Close()
		svc.Close()
		svc.Wait(context.Background())
	})
}

func (e *cliTestEnv) run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	cmd := newRootCommandWithPanel(e.panelOptions()...)
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetIn(strings.NewReader(""))
	cmd.SetArgs(append([]string{"--socket", e.socketPath, "--config", e.configPath}, args...))
	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func writeTestConfig(t *testing.T, path string, cfg *config.Config) {
	t.Helper()
	content := fmt.Sprintf(`[paths]
resources_dir = %q
state_dir = %q
api_bind = ""

[assistant]
health_addr = %q
control_addr = %q
shutdown_grace_ms = 1

[startup]
app_name = %q
`,
		cfg.Paths.ResourcesDir,
		cfg.Paths.StateDir,
		cfg.Assistant.HealthAddr,
		cfg.Assistant.ControlAddr,
		cfg.Startup.AppName,
	)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}
