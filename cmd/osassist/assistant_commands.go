package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"osassist/internal/health"
	"osassist/internal/panelaccess"
)

func newAssistantCommands(ctx *commandContext) []*cobra.Command {
	var healthJSON bool
	healthCmd := &cobra.Command{
		Use:   "health",
		Short: "Probe the assistant process",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withAccess(func(session panelaccess.Session) error {
				status, err := session.Access.Health(cmd.Context())
				if err != nil {
					return err
				}
				if healthJSON {
					return writeJSON(cmd, status)
				}
				printHealth(cmd.OutOrStdout(), status)
				return nil
			})
		},
	}
	healthCmd.Flags().BoolVar(&healthJSON, "json", false, "Output as JSON")

	stopCmd := &cobra.Command{
		Use:   "stop",
		Short: "Ask the assistant process to shut down",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withAccess(func(session panelaccess.Session) error {
				status, err := session.Access.StopAssistant(cmd.Context())
				if err != nil {
					return err
				}
				if status.Online() {
					fmt.Fprintln(cmd.OutOrStdout(), "Assistant is still responding after the shutdown request")
				} else {
					fmt.Fprintln(cmd.OutOrStdout(), "Assistant stopped")
				}
				printHealth(cmd.OutOrStdout(), status)
				return nil
			})
		},
	}

	cleanupCmd := &cobra.Command{
		Use:   "cleanup",
		Short: "Kill leftover assistant processes",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withAccess(func(session panelaccess.Session) error {
				msg, err := session.Access.Cleanup(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), msg)
				return nil
			})
		},
	}

	return []*cobra.Command{healthCmd, stopCmd, cleanupCmd}
}

func printHealth(w io.Writer, status health.Status) {
	out := newStatusWriter(w)
	message := status.Status
	if status.Message != "" {
		message = fmt.Sprintf("%s (%s)", status.Status, status.Message)
	}
	out.line("Assistant", healthKind(status), message)
	if status.Timestamp != "" {
		out.line("Reported at", statusInfo, status.Timestamp)
	}
}
