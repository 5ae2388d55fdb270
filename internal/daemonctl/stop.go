package daemonctl

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"osassist/internal/ipc"
)

// Paths names the files a running panel owns.
type Paths struct {
	Socket string
	PID    string
	Lock   string
}

// StopResult reports how the panel went away.
type StopResult struct {
	StopAcknowledged bool
	ForcedKill       bool
	PID              int
}

// RestartResult combines the stop and start halves of Restart.
type RestartResult struct {
	WasRunning bool
	Stop       StopResult
	Start      StartResult
}

// WaitForShutdown waits until nothing answers on socketPath.
func WaitForShutdown(socketPath string, timeout time.Duration) error {
	err := poll(timeout, func() (bool, error) {
		client, err := ipc.Dial(socketPath)
		if isPanelUnavailable(err) {
			return true, nil
		}
		if err != nil {
			return false, err
		}
		_ = client.Close()
		return false, errors.New("panel still running")
	})
	if err != nil {
		return fmt.Errorf("panel did not stop: %w", err)
	}
	return nil
}

// ForceKill kills the panel and removes the files it owns. The PID comes
// from the pid file, or fallbackPID when that file is missing.
func ForceKill(paths Paths, fallbackPID int) (int, error) {
	pid, err := readPID(paths.PID)
	if err != nil {
		return 0, err
	}
	if pid <= 0 {
		pid = fallbackPID
	}
	switch {
	case pid <= 0:
		return 0, fmt.Errorf("unable to determine panel pid (pid file: %s)", paths.PID)
	case pid == os.Getpid():
		return 0, fmt.Errorf("refusing to kill current process (pid %d)", pid)
	}

	proc, err := os.FindProcess(pid)
	if err != nil {
		return 0, fmt.Errorf("locate panel process %d: %w", pid, err)
	}
	if err := proc.Kill(); err != nil {
		return 0, fmt.Errorf("kill panel process %d: %w", pid, err)
	}
	for _, path := range []string{paths.PID, paths.Lock, paths.Socket} {
		if path == "" {
			continue
		}
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return pid, fmt.Errorf("remove %q: %w", path, err)
		}
	}
	return pid, nil
}

// readPID returns 0 when path is unset, missing or unparsable.
func readPID(path string) (int, error) {
	if path == "" {
		return 0, nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read panel pid file %q: %w", path, err)
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return 0, nil
	}
	return pid, nil
}

// StopAndTerminate asks the panel to shut down over IPC and kills it if it
// still answers after gracePeriod.
func StopAndTerminate(paths Paths, gracePeriod time.Duration) (StopResult, error) {
	client, err := ipc.Dial(paths.Socket)
	if isPanelUnavailable(err) {
		return StopResult{}, ErrPanelNotRunning
	}
	if err != nil {
		return StopResult{}, err
	}
	var result StopResult
	if status, err := client.Status(); err == nil {
		result.PID = status.PID
	}
	result.StopAcknowledged, err = client.Shutdown()
	_ = client.Close()
	if err != nil {
		return StopResult{}, err
	}

	if WaitForShutdown(paths.Socket, gracePeriod) == nil {
		return result, nil
	}
	alive, livePID, err := ProcessInfo(paths.Socket)
	if err != nil || !alive {
		return result, nil
	}
	if livePID == 0 {
		livePID = result.PID
	}
	killed, err := ForceKill(paths, livePID)
	if err != nil {
		return result, fmt.Errorf("failed to stop panel process: %w", err)
	}
	result.ForcedKill = true
	result.PID = killed
	return result, nil
}

// Restart stops the panel if it is running, then starts it again.
func Restart(paths Paths, executablePath string, opts LaunchOptions, stopGracePeriod, startWaitTimeout time.Duration) (RestartResult, error) {
	stop, stopErr := StopAndTerminate(paths, stopGracePeriod)
	if stopErr != nil && !errors.Is(stopErr, ErrPanelNotRunning) {
		return RestartResult{}, stopErr
	}
	start, err := EnsureStarted(paths.Socket, executablePath, opts, startWaitTimeout)
	if err != nil {
		return RestartResult{}, err
	}
	return RestartResult{WasRunning: stopErr == nil, Stop: stop, Start: start}, nil
}
