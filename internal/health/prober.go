package health

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os/exec"
	"runtime"
	"strconv"
	"strings"
	"time"

	"osassist/internal/logging"
)

const (
	StatusOffline  = "offline"
	StatusUnknown  = "unknown"
	OfflineMessage = "OS Assistant not started"

	CleanupSucceeded = "Successfully cleaned up unfinished scripts"
	CleanupNothing   = "No unfinished scripts found to clean up"

	shutdownCommand = "shutdown"
)

// ErrInvalidResponse reports a health reply without a header/body separator.
var ErrInvalidResponse = errors.New("invalid HTTP response format")

// Status is the sidecar's self-reported state.
type Status struct {
	Status    string `json:"status"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

// Online reports whether the sidecar answered the probe.
func (s Status) Online() bool {
	return s.Status != "" && s.Status != StatusOffline
}

// CommandRunner executes an external command and waits for it.
type CommandRunner func(ctx context.Context, name string, args ...string) error

func runCommand(ctx context.Context, name string, args ...string) error {
	return exec.CommandContext(ctx, name, args...).Run() //nolint:gosec
}

// Options configures a Prober. Zero durations keep the defaults.
type Options struct {
	HealthAddr     string
	ControlAddr    string
	ConnectTimeout time.Duration
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	ShutdownGrace  time.Duration
	ProcessName    string
	Runner         CommandRunner
	Now            func() time.Time
	Logger         *slog.Logger
}

// Prober talks to the sidecar's health and control ports.
type Prober struct {
	opts   Options
	logger *slog.Logger
}

// NewProber applies defaults to opts.
func NewProber(opts Options) *Prober {
	if opts.ConnectTimeout <= 0 {
		opts.ConnectTimeout = 300 * time.Millisecond
	}
	if opts.ReadTimeout <= 0 {
		opts.ReadTimeout = 700 * time.Millisecond
	}
	if opts.WriteTimeout <= 0 {
		opts.WriteTimeout = 300 * time.Millisecond
	}
	if opts.ShutdownGrace < 0 {
		opts.ShutdownGrace = 0
	}
	if strings.TrimSpace(opts.ProcessName) == "" {
		opts.ProcessName = "main"
	}
	if opts.Runner == nil {
		opts.Runner = runCommand
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Prober{opts: opts, logger: logging.NewComponentLogger(logger, "health")}
}

func (p *Prober) dial(ctx context.Context, addr string) (net.Conn, error) {
	dialer := net.Dialer{Timeout: p.opts.ConnectTimeout}
	return dialer.DialContext(ctx, "tcp", addr)
}

// Check performs one health request and returns the parsed reply.
func (p *Prober) Check(ctx context.Context) (Status, error) {
	conn, err := p.dial(ctx, p.opts.HealthAddr)
	if err != nil {
		return Status{}, fmt.Errorf("connect to health server: %w", err)
	}
	defer conn.Close()

	request := "GET /health HTTP/1.1\r\nHost: " + p.opts.HealthAddr + "\r\nConnection: close\r\n\r\n"
	if err := conn.SetWriteDeadline(time.Now().Add(p.opts.WriteTimeout)); err != nil {
		return Status{}, fmt.Errorf("set write timeout: %w", err)
	}
	if _, err := io.WriteString(conn, request); err != nil {
		return Status{}, fmt.Errorf("send HTTP request: %w", err)
	}
	if err := conn.SetReadDeadline(time.Now().Add(p.opts.ReadTimeout)); err != nil {
		return Status{}, fmt.Errorf("set read timeout: %w", err)
	}
	response, err := io.ReadAll(conn)
	if err != nil {
		return Status{}, fmt.Errorf("read HTTP response: %w", err)
	}
	return parseResponse(string(response))
}

func parseResponse(response string) (Status, error) {
	parts := strings.SplitN(response, "\r\n\r\n", 3)
	if len(parts) < 2 {
		return Status{}, ErrInvalidResponse
	}
	var body map[string]any
	if err := json.Unmarshal([]byte(parts[1]), &body); err != nil {
		return Status{}, fmt.Errorf("parse JSON response: %w", err)
	}
	status := stringField(body, "status")
	if status == "" {
		status = StatusUnknown
	}
	return Status{
		Status:    status,
		Message:   stringField(body, "message"),
		Timestamp: stringField(body, "timestamp"),
	}, nil
}

func stringField(body map[string]any, key string) string {
	if value, ok := body[key].(string); ok {
		return value
	}
	return ""
}

// Status never fails: a sidecar that cannot be reached is reported offline.
func (p *Prober) Status(ctx context.Context) Status {
	status, err := p.Check(ctx)
	if err != nil {
		p.logger.Debug("health probe failed", logging.Error(err))
		return Status{
			Status:    StatusOffline,
			Message:   OfflineMessage,
			Timestamp: strconv.FormatInt(p.opts.Now().Unix(), 10),
		}
	}
	return status
}

// Stop asks the sidecar to shut down, waits the grace period, and reports
// the resulting status. Delivery of the request is best effort.
func (p *Prober) Stop(ctx context.Context) Status {
	if err := p.sendShutdown(ctx); err != nil {
		p.logger.Info("shutdown request not delivered", logging.Error(err))
	} else {
		select {
		case <-ctx.Done():
		case <-time.After(p.opts.ShutdownGrace):
		}
	}
	return p.Status(ctx)
}

func (p *Prober) sendShutdown(ctx context.Context) error {
	conn, err := p.dial(ctx, p.opts.ControlAddr)
	if err != nil {
		return err
	}
	defer conn.Close()
	if err := conn.SetWriteDeadline(time.Now().Add(p.opts.WriteTimeout)); err != nil {
		return err
	}
	_, err = io.WriteString(conn, shutdownCommand)
	return err
}

// CleanupCommand returns the platform command that kills leftover sidecars.
func CleanupCommand(goos, processName string) (string, []string) {
	if goos == "windows" {
		return "taskkill", []string{"/f", "/im", processName + ".exe"}
	}
	return "pkill", []string{"-x", processName}
}

// Cleanup kills leftover sidecar processes. A command that ran but matched
// nothing is not an error; failing to start it is.
func (p *Prober) Cleanup(ctx context.Context) (string, error) {
	name, args := CleanupCommand(runtime.GOOS, p.opts.ProcessName)
	err := p.opts.Runner(ctx, name, args...)
	if err == nil {
		p.logger.Info("cleaned up sidecar processes", logging.String("process", p.opts.ProcessName))
		return CleanupSucceeded, nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return CleanupNothing, nil
	}
	return "", fmt.Errorf("kill %s processes: %w", p.opts.ProcessName, err)
}
