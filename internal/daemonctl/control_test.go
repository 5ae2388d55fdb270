package daemonctl_test

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"osassist/internal/config"
	"osassist/internal/daemonctl"
	"osassist/internal/daemonrun"
	"osassist/internal/panel"
	"osassist/internal/testsupport"
)

type staticStartup struct{}

func (staticStartup) Enabled() (bool, error) { return false, nil }
func (staticStartup) SetEnabled(bool) error  { return nil }

func runPanel(t *testing.T) (*config.Config, <-chan error) {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	cfg.Paths.APIBind = ""

	ready := make(chan struct{})
	errCh := make(chan error, 1)
	go func() {
		errCh <- daemonrun.Run(context.Background(), cfg, daemonrun.Options{
			Console: io.Discard,
			PanelOptions: []panel.Option{
				panel.WithStartupManager(staticStartup{}),
				panel.WithCommandRunner(func(context.Context, string, ...string) error { return nil }),
			},
			Ready: func(string, string) { close(ready) },
		})
	}()
	select {
	case <-ready:
	case err := <-errCh:
		if err != nil && strings.Contains(err.Error(), "operation not permitted") {
			t.Skipf("skipping panel runtime test: %v", err)
		}
		t.Fatalf("panel exited early: %v", err)
	case <-time.After(5 * time.Second):
		t.Fatal("timeout waiting for panel")
	}
	return cfg, errCh
}

func paths(cfg *config.Config) daemonctl.Paths {
	return daemonctl.Paths{Socket: cfg.SocketPath(), PID: cfg.PIDPath(), Lock: cfg.LockPath()}
}

func TestEnsureStartedReportsRunningPanel(t *testing.T) {
	cfg, errCh := runPanel(t)

	result, err := daemonctl.EnsureStarted(cfg.SocketPath(), "/nonexistent/osassist", daemonctl.LaunchOptions{}, time.Second)
	if err != nil {
		t.Fatalf("EnsureStarted: %v", err)
	}
	if result.State != daemonctl.StartStateAlreadyRunning || result.Launched || result.PID != os.Getpid() {
		t.Fatalf("unexpected result: %+v", result)
	}

	running, pid, err := daemonctl.ProcessInfo(cfg.SocketPath())
	if err != nil || !running || pid != os.Getpid() {
		t.Fatalf("ProcessInfo = %v, %d, %v", running, pid, err)
	}

	stop, err := daemonctl.StopAndTerminate(paths(cfg), 5*time.Second)
	if err != nil {
		t.Fatalf("StopAndTerminate: %v", err)
	}
	if !stop.StopAcknowledged || stop.ForcedKill {
		t.Fatalf("unexpected stop result: %+v", stop)
	}
	select {
	case err := <-errCh:
		if err != nil {
			t.Fatalf("panel returned error: %v", err)
		}
	case <-time.After(15 * time.Second):
		t.Fatal("panel did not exit")
	}
}

func TestStopWhenNotRunning(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories: %v", err)
	}
	_, err := daemonctl.StopAndTerminate(paths(cfg), time.Second)
	if !errors.Is(err, daemonctl.ErrPanelNotRunning) {
		t.Fatalf("expected ErrPanelNotRunning, got %v", err)
	}
	running, pid, err := daemonctl.ProcessInfo(cfg.SocketPath())
	if err != nil || running || pid != 0 {
		t.Fatalf("ProcessInfo = %v, %d, %v", running, pid, err)
	}
	if err := daemonctl.WaitForShutdown(cfg.SocketPath(), time.Second); err != nil {
		t.Fatalf("WaitForShutdown: %v", err)
	}
}

func TestLaunchRequiresExecutable(t *testing.T) {
	if err := daemonctl.Launch("  ", daemonctl.LaunchOptions{}); err == nil {
		t.Fatal("expected error for empty executable")
	}
	_, err := daemonctl.EnsureStarted(filepath.Join(t.TempDir(), "missing.sock"), filepath.Join(t.TempDir(), "missing-bin"), daemonctl.LaunchOptions{}, 200*time.Millisecond)
	if err == nil || !strings.Contains(err.Error(), "launch panel") {
		t.Fatalf("expected launch error, got %v", err)
	}
}

func TestForceKillRefusesCurrentProcess(t *testing.T) {
	dir := t.TempDir()
	pidPath := filepath.Join(dir, "osassist.pid")
	if err := os.WriteFile(pidPath, []byte(strconv.Itoa(os.Getpid())+"\n"), 0o644); err != nil {
		t.Fatalf("write pid: %v", err)
	}
	if _, err := daemonctl.ForceKill(daemonctl.Paths{PID: pidPath}, 0); err == nil {
		t.Fatal("expected refusal to kill current process")
	}
	if _, err := daemonctl.ForceKill(daemonctl.Paths{PID: filepath.Join(dir, "missing.pid")}, 0); err == nil {
		t.Fatal("expected error without any pid")
	}
}
