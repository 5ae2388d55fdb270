package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"osassist/internal/daemonctl"
	"osassist/internal/panel"
	"osassist/internal/panelaccess"
)

func newPanelCommand(ctx *commandContext) *cobra.Command {
	panelCmd := &cobra.Command{
		Use:   "panel",
		Short: "Manage the control panel process",
	}

	var startLogLevel string
	startCmd := &cobra.Command{
		Use:   "start",
		Short: "Start the control panel in the background",
		RunE: func(cmd *cobra.Command, args []string) error {
			stdout := cmd.OutOrStdout()
			exe, err := panelExecutable()
			if err != nil {
				return err
			}

			result, err := daemonctl.EnsureStarted(
				ctx.socketPath(),
				exe,
				panelLaunchOptions(ctx, startLogLevel),
				10*time.Second,
			)
			if err != nil {
				return err
			}

			switch result.State {
			case daemonctl.StartStateStarted:
				fmt.Fprintf(stdout, "Panel started (pid %d)\n", result.PID)
			case daemonctl.StartStateAlreadyRunning:
				fmt.Fprintf(stdout, "Panel already running (pid %d)\n", result.PID)
			}
			return nil
		},
	}
	startCmd.Flags().StringVar(&startLogLevel, "log-level", "", "Override logging.level for the panel process")

	stopCmd := &cobra.Command{
		Use:   "stop",
		Short: "Stop the control panel process",
		RunE: func(cmd *cobra.Command, args []string) error {
			stdout := cmd.OutOrStdout()
			result, err := daemonctl.StopAndTerminate(panelPaths(ctx), 5*time.Second)
			if errors.Is(err, daemonctl.ErrPanelNotRunning) {
				fmt.Fprintln(stdout, "Panel is not running")
				return nil
			}
			if err != nil {
				return err
			}
			if result.ForcedKill && result.PID > 0 {
				fmt.Fprintf(stdout, "Killed panel process (pid %d)\n", result.PID)
			}
			fmt.Fprintln(stdout, "Panel stopped")
			return nil
		},
	}

	var restartLogLevel string
	restartCmd := &cobra.Command{
		Use:   "restart",
		Short: "Restart the control panel",
		RunE: func(cmd *cobra.Command, args []string) error {
			stdout := cmd.OutOrStdout()
			exe, err := panelExecutable()
			if err != nil {
				return err
			}
			result, err := daemonctl.Restart(
				panelPaths(ctx),
				exe,
				panelLaunchOptions(ctx, restartLogLevel),
				5*time.Second,
				10*time.Second,
			)
			if err != nil {
				return err
			}
			if result.WasRunning {
				fmt.Fprintln(stdout, "Panel stopped")
			}
			fmt.Fprintf(stdout, "Panel restarted (pid %d)\n", result.Start.PID)
			return nil
		},
	}
	restartCmd.Flags().StringVar(&restartLogLevel, "log-level", "", "Override logging.level for the panel process")

	panelCmd.AddCommand(startCmd, stopCmd, restartCmd, newStatusCommand(ctx))
	return panelCmd
}

func newStatusCommand(ctx *commandContext) *cobra.Command {
	var statusJSON bool
	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show panel, assistant and file status",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withAccess(func(session panelaccess.Session) error {
				status, err := session.Access.Status(cmd.Context())
				if err != nil {
					return err
				}
				if statusJSON {
					return writeJSON(cmd, status)
				}
				renderPanelStatus(cmd.OutOrStdout(), status, session.Remote)
				return nil
			})
		},
	}
	statusCmd.Flags().BoolVar(&statusJSON, "json", false, "Output as JSON")
	return statusCmd
}

func renderPanelStatus(w io.Writer, status panel.Status, remote bool) {
	out := newStatusWriter(w)
	out.section("Control Panel")
	if remote && status.Running {
		out.line("Panel", statusOK, fmt.Sprintf("Running (pid %d)", status.PID))
	} else {
		out.line("Panel", statusWarn, "Not running")
	}
	detail := status.Assistant.Status
	if msg := strings.TrimSpace(status.Assistant.Message); msg != "" {
		detail = fmt.Sprintf("%s (%s)", detail, msg)
	}
	out.line("Assistant", healthKind(status.Assistant), detail)
	if status.StartupError != "" {
		out.line("Run at login", statusWarn, status.StartupError)
	} else {
		out.line("Run at login", statusInfo, yesNo(status.StartupEnabled))
	}

	out.section("Files")
	if status.LogPath != "" {
		out.line("Assistant log", statusOK, status.LogPath)
	} else {
		out.line("Assistant log", statusError, "resources directory not found")
	}
	out.line("Settings", statusInfo, status.SettingsPath)
	out.line("Auth cache", statusInfo, status.AuthCachePath)

	out.section("Startup Plans")
	if len(status.StartupPlans) == 0 {
		fmt.Fprintln(w, "No plans run at startup")
		return
	}
	for _, name := range status.StartupPlans {
		out.item(name)
	}
}

func panelExecutable() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("resolve executable: %w", err)
	}
	return exe, nil
}

func panelLaunchOptions(ctx *commandContext, logLevel string) daemonctl.LaunchOptions {
	return daemonctl.LaunchOptions{
		ConfigPath: ctx.configPath(),
		LogLevel:   strings.TrimSpace(logLevel),
	}
}

func panelPaths(ctx *commandContext) daemonctl.Paths {
	paths := daemonctl.Paths{Socket: ctx.socketPath()}
	if cfg, err := ctx.ensureConfig(); err == nil {
		paths.PID = cfg.PIDPath()
		paths.Lock = cfg.LockPath()
	}
	return paths
}
