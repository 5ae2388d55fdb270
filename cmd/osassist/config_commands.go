package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"

	"osassist/internal/config"
	"osassist/internal/resources"
)

const redactedValue = "<redacted>"

func newConfigCommand(ctx *commandContext) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect and scaffold the panel configuration",
	}
	configCmd.AddCommand(
		newConfigInitCommand(),
		newConfigValidateCommand(ctx),
		newConfigShowCommand(ctx),
	)
	return configCmd
}

func newConfigInitCommand() *cobra.Command {
	var (
		targetPath string
		overwrite  bool
	)
	cmd := &cobra.Command{
		Use:         "init",
		Short:       "Write a commented sample config.toml",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			target, err := initTarget(targetPath)
			if err != nil {
				return err
			}
			if !overwrite {
				switch _, statErr := os.Stat(target); {
				case statErr == nil:
					return fmt.Errorf("config file already exists at %s (pass --overwrite to replace it)", target)
				case !errors.Is(statErr, fs.ErrNotExist):
					return fmt.Errorf("check config path: %w", statErr)
				}
			}
			if err := config.CreateSample(target); err != nil {
				return fmt.Errorf("write sample config: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote sample configuration to %s\n", target)
			fmt.Fprintf(cmd.OutOrStdout(), "Set paths.resources_dir (or %s) when the assistant's resources folder is elsewhere.\n", config.ResourcesDirEnv)
			return nil
		},
	}
	cmd.Flags().StringVarP(&targetPath, "path", "p", "", "Where to write the file (default: the standard config location)")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Replace an existing file")
	return cmd
}

func initTarget(flagValue string) (string, error) {
	if strings.TrimSpace(flagValue) == "" {
		return config.DefaultConfigPath()
	}
	return config.ExpandPath(strings.TrimSpace(flagValue))
}

func newConfigValidateCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:         "validate",
		Short:       "Load the configuration and report where everything resolves",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, path, exists, err := config.Load(ctx.configPath())
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if err := cfg.EnsureDirectories(); err != nil {
				return fmt.Errorf("ensure directories: %w", err)
			}

			out := cmd.OutOrStdout()
			source := path
			if !exists {
				source += " (not found, defaults used)"
			}
			locator := resources.NewLocator(cfg.Paths.ResourcesDir)
			logPath, logErr := locator.LogPath(cfg.Paths.LogFile)
			if logErr != nil {
				logPath = "unresolved: " + logErr.Error()
			}
			rows := [][]string{
				{"Config", source},
				{"State dir", cfg.Paths.StateDir},
				{"Assistant log", logPath},
				{"Settings", locator.SettingsPath(cfg.Paths.SettingsFile)},
				{"Health probe", cfg.Assistant.HealthAddr},
				{"HTTP API", valueOr(cfg.Paths.APIBind, "disabled")},
			}
			for _, row := range rows {
				fmt.Fprintf(out, "%-14s %s\n", row[0]+":", row[1])
			}
			fmt.Fprintln(out, "Configuration valid")
			return nil
		},
	}
}

func newConfigShowCommand(ctx *commandContext) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration with secrets redacted",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			redacted := *cfg
			if redacted.Paths.APIToken != "" {
				redacted.Paths.APIToken = redactedValue
			}
			switch strings.ToLower(format) {
			case "json":
				return writeJSON(cmd, redacted)
			case "", "toml":
				data, err := toml.Marshal(redacted)
				if err != nil {
					return fmt.Errorf("encode config: %w", err)
				}
				_, err = cmd.OutOrStdout().Write(data)
				return err
			default:
				return fmt.Errorf("unsupported format %q (expected toml or json)", format)
			}
		},
	}
	cmd.Flags().StringVar(&format, "format", "toml", "Output format: toml or json")
	return cmd
}

func valueOr(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}
