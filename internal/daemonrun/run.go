package daemonrun

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"osassist/internal/config"
	"osassist/internal/httpapi"
	"osassist/internal/ipc"
	"osassist/internal/logging"
	"osassist/internal/panel"
)

// cleanupWait bounds how long shutdown waits for the sidecar cleanup that
// closing the panel starts.
const cleanupWait = 10 * time.Second

// Options configures panel process runtime behavior.
type Options struct {
	// LogLevel overrides cfg.Logging.Level when set.
	LogLevel string
	// Console receives human-readable logs; nil means stderr.
	Console io.Writer
	// PanelOptions are handed to panel.New.
	PanelOptions []panel.Option
	// Ready is called once the IPC socket and HTTP API accept connections.
	Ready func(socketPath, apiAddr string)
}

// Run starts the panel and blocks until ctx ends, a signal arrives, or a
// client asks the panel to shut down.
func Run(cmdCtx context.Context, cfg *config.Config, opts Options) error {
	if cfg == nil {
		return fmt.Errorf("config is required")
	}

	signalCtx, cancel := signal.NotifyContext(cmdCtx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := cfg.EnsureDirectories(); err != nil {
		return err
	}

	level := opts.LogLevel
	if strings.TrimSpace(level) == "" {
		level = cfg.Logging.Level
	}
	console := opts.Console
	if console == nil {
		console = os.Stderr
	}
	logger, err := logging.New(logging.Options{
		Level:     level,
		Format:    cfg.Logging.Format,
		Console:   console,
		FilePaths: []string{cfg.PanelLogPath()},
	})
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	svc, err := panel.New(cfg, logger, opts.PanelOptions...)
	if err != nil {
		return fmt.Errorf("create panel: %w", err)
	}
	if err := svc.Start(); err != nil {
		return err
	}
	defer func() {
		svc.Close()
		waitCtx, waitCancel := context.WithTimeout(context.Background(), cleanupWait)
		defer waitCancel()
		svc.Wait(waitCtx)
	}()

	pidPath := cfg.PIDPath()
	if err := writePIDFile(pidPath); err != nil {
		return fmt.Errorf("write pid file: %w", err)
	}
	defer os.Remove(pidPath)

	ipcServer, err := ipc.NewServer(signalCtx, cfg.SocketPath(), svc, logger)
	if err != nil {
		return fmt.Errorf("start IPC server: %w", err)
	}
	defer ipcServer.Close()
	ipcServer.Serve()

	apiServer, err := httpapi.New(cfg.Paths.APIBind, cfg.Paths.APIToken, svc, logger)
	if err != nil {
		return fmt.Errorf("create api server: %w", err)
	}
	if err := apiServer.Start(signalCtx); err != nil {
		return fmt.Errorf("start api server: %w", err)
	}
	defer apiServer.Stop()

	logRuntimeSnapshot(signalCtx, logger, cfg, svc, apiServer.Addr())
	if opts.Ready != nil {
		opts.Ready(cfg.SocketPath(), apiServer.Addr())
	}

	select {
	case <-signalCtx.Done():
	case <-svc.StopRequested():
	}
	logger.Info("osassist panel shutting down")
	return nil
}

func writePIDFile(path string) error {
	if path == "" {
		return nil
	}
	value := strconv.Itoa(os.Getpid()) + "\n"
	return os.WriteFile(path, []byte(value), 0o644)
}

func logRuntimeSnapshot(ctx context.Context, logger *slog.Logger, cfg *config.Config, svc *panel.Service, apiAddr string) {
	status := svc.Status(ctx)
	logger.Info("panel runtime snapshot",
		logging.String(logging.FieldEventType, "runtime_snapshot"),
		logging.String("socket", cfg.SocketPath()),
		logging.String("api_address", apiAddr),
		logging.Bool("api_token_set", strings.TrimSpace(cfg.Paths.APIToken) != ""),
		logging.String("log_path", status.LogPath),
		logging.String("settings_path", status.SettingsPath),
		logging.String("assistant_status", status.Assistant.Status),
		logging.Bool("startup_enabled", status.StartupEnabled),
	)
	if status.LogPath == "" {
		logging.WarnWithContext(logger, "assistant log not located", "resources_missing",
			logging.String("resources_dir", cfg.Paths.ResourcesDir),
			logging.String(logging.FieldImpact, "log tail requests will fail"),
			logging.String(logging.FieldErrorHint, "set paths.resources_dir or install the resources folder next to the binary"))
	}
}
