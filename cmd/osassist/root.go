package main

import (
	"github.com/spf13/cobra"

	"osassist/internal/panel"
)

func newRootCommand() *cobra.Command {
	return newRootCommandWithPanel()
}

// newRootCommandWithPanel passes opts to every panel the command tree builds.
func newRootCommandWithPanel(opts ...panel.Option) *cobra.Command {
	ctx := &commandContext{panelOptions: opts}

	rootCmd := &cobra.Command{
		Use:           "osassist",
		Short:         "OS assistant control panel",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if skipsConfigLoad(cmd) {
				return nil
			}
			_, err := ctx.ensureConfig()
			return err
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	ctx.bindFlags(rootCmd.PersistentFlags())

	rootCmd.AddCommand(newAssistantCommands(ctx)...)
	rootCmd.AddCommand(
		newPanelCommand(ctx),
		newDaemonRunCommand(ctx),
		newStatusCommand(ctx),
		newLogsCommand(ctx),
		newSettingsCommand(ctx),
		newListCommand(ctx, listPlans),
		newListCommand(ctx, listProfiles),
		newListCommand(ctx, listApps),
		newStartupCommand(ctx),
		newAuthCommand(ctx),
		newConfigCommand(ctx),
		newDoctorCommand(ctx),
	)

	return rootCmd
}
