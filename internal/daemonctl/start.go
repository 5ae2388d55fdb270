// Package daemonctl starts, stops and restarts the background panel process
// from the CLI.
package daemonctl

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"syscall"
	"time"

	"osassist/internal/ipc"
)

const pollInterval = 200 * time.Millisecond

// ErrPanelNotRunning indicates nothing answers on the panel socket.
var ErrPanelNotRunning = errors.New("panel not running")

// LaunchOptions are forwarded to the hidden daemon command.
type LaunchOptions struct {
	ConfigPath string
	LogLevel   string
}

func (o LaunchOptions) args() []string {
	args := []string{"daemon"}
	if cfg := strings.TrimSpace(o.ConfigPath); cfg != "" {
		args = append(args, "--config", cfg)
	}
	if level := strings.TrimSpace(o.LogLevel); level != "" {
		args = append(args, "--log-level", level)
	}
	return args
}

type StartState string

const (
	StartStateStarted        StartState = "started"
	StartStateAlreadyRunning StartState = "already_running"
)

// StartResult reports whether EnsureStarted had to launch a process.
type StartResult struct {
	State    StartState
	Launched bool
	PID      int
}

// Launch starts a detached panel process running the hidden daemon command.
func Launch(executablePath string, opts LaunchOptions) error {
	if strings.TrimSpace(executablePath) == "" {
		return errors.New("launch panel: executable path is empty")
	}
	proc := exec.Command(executablePath, opts.args()...)
	if err := proc.Start(); err != nil {
		return fmt.Errorf("launch panel: %w", err)
	}
	return proc.Process.Release()
}

// WaitForClient dials socketPath until it answers or timeout passes.
func WaitForClient(socketPath string, timeout time.Duration) (*ipc.Client, error) {
	var client *ipc.Client
	err := poll(timeout, func() (bool, error) {
		c, err := ipc.Dial(socketPath)
		if err != nil {
			return false, err
		}
		client = c
		return true, nil
	})
	if err != nil {
		return nil, fmt.Errorf("panel failed to start: %w", err)
	}
	return client, nil
}

// EnsureStarted launches the panel unless one already answers on socketPath.
func EnsureStarted(socketPath, executablePath string, opts LaunchOptions, waitTimeout time.Duration) (StartResult, error) {
	result := StartResult{State: StartStateAlreadyRunning}
	client, err := ipc.Dial(socketPath)
	if err != nil {
		if err := Launch(executablePath, opts); err != nil {
			return StartResult{}, err
		}
		if client, err = WaitForClient(socketPath, waitTimeout); err != nil {
			return StartResult{}, err
		}
		result = StartResult{State: StartStateStarted, Launched: true}
	}
	defer client.Close()

	status, err := client.Status()
	if err != nil {
		return StartResult{}, fmt.Errorf("query panel status: %w", err)
	}
	if !status.Running {
		return StartResult{}, fmt.Errorf("panel answered on %s but is not running", socketPath)
	}
	result.PID = status.PID
	return result, nil
}

// ProcessInfo reports whether a panel answers on socketPath and its PID.
func ProcessInfo(socketPath string) (bool, int, error) {
	client, err := ipc.Dial(socketPath)
	if isPanelUnavailable(err) {
		return false, 0, nil
	}
	if err != nil {
		return false, 0, err
	}
	defer client.Close()
	status, err := client.Status()
	if err != nil {
		return true, 0, err
	}
	return true, status.PID, nil
}

// poll calls fn every pollInterval until it reports done or timeout passes,
// returning the last error fn produced.
func poll(timeout time.Duration, fn func() (bool, error)) error {
	deadline := time.Now().Add(timeout)
	lastErr := errors.New("timed out")
	for time.Now().Before(deadline) {
		done, err := fn()
		if done {
			return nil
		}
		if err != nil {
			lastErr = err
		}
		time.Sleep(pollInterval)
	}
	return lastErr
}

func isPanelUnavailable(err error) bool {
	return err != nil && (errors.Is(err, os.ErrNotExist) ||
		errors.Is(err, syscall.ENOENT) ||
		errors.Is(err, syscall.ECONNREFUSED))
}
