package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"osassist/internal/panelaccess"
)

func newStartupCommand(ctx *commandContext) *cobra.Command {
	startupCmd := &cobra.Command{
		Use:   "startup",
		Short: "Manage running the assistant at login",
	}

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show whether the assistant runs at login",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withAccess(func(session panelaccess.Session) error {
				enabled, err := session.Access.StartupEnabled(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Run at login: %s\n", yesNo(enabled))
				return nil
			})
		},
	}

	toggle := func(use, short string, enable bool, done string) *cobra.Command {
		return &cobra.Command{
			Use:   use,
			Short: short,
			RunE: func(cmd *cobra.Command, args []string) error {
				return ctx.withAccess(func(session panelaccess.Session) error {
					if err := session.Access.SetStartup(cmd.Context(), enable); err != nil {
						return err
					}
					fmt.Fprintln(cmd.OutOrStdout(), done)
					return nil
				})
			},
		}
	}

	startupCmd.AddCommand(
		statusCmd,
		toggle("enable", "Register the assistant to run at login", true, "Startup enabled"),
		toggle("disable", "Stop running the assistant at login", false, "Startup disabled"),
	)
	return startupCmd
}
