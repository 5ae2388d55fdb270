package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"osassist/internal/config"
	"osassist/internal/panelaccess"
	"osassist/internal/settings"
)

func newSettingsCommand(ctx *commandContext) *cobra.Command {
	settingsCmd := &cobra.Command{
		Use:   "settings",
		Short: "Inspect and edit assistant settings",
	}

	var showFormat string
	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Print the settings document",
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := settings.ParseFormat(showFormat)
			if err != nil {
				return err
			}
			return ctx.withAccess(func(session panelaccess.Session) error {
				data, err := session.Access.ExportSettings(cmd.Context(), format)
				if err != nil {
					return err
				}
				_, err = cmd.OutOrStdout().Write(data)
				return err
			})
		},
	}
	showCmd.Flags().StringVar(&showFormat, "format", "json", "Output format: json or yaml")

	pathCmd := &cobra.Command{
		Use:   "path",
		Short: "Print where the settings document is stored",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withAccess(func(session panelaccess.Session) error {
				loaded, err := session.Access.LoadSettings(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), loaded.Path)
				return nil
			})
		},
	}

	var importFormat string
	importCmd := &cobra.Command{
		Use:   "import <file|->",
		Short: "Replace the settings document with a JSON or YAML file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, source, err := readInput(cmd, args[0])
			if err != nil {
				return err
			}
			format, err := settings.ParseFormat(importFormat)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("format") {
				format = formatFromPath(source)
			}
			return ctx.withAccess(func(session panelaccess.Session) error {
				result, err := session.Access.ImportSettings(cmd.Context(), data, format)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Imported settings from %s into %s\n", source, result.Path)
				return nil
			})
		},
	}
	importCmd.Flags().StringVar(&importFormat, "format", "", "Input format: json or yaml (default from file extension)")

	setCmd := &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Change one top-level setting (" + strings.Join(settableKeys(), ", ") + ")",
		Long: "Change one top-level setting. An empty value clears llm_model, " +
			"openai_api_key and openai_base_url, and resets llm_provider to its default.",
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, value := strings.TrimSpace(args[0]), args[1]
			return ctx.withAccess(func(session panelaccess.Session) error {
				loaded, err := session.Access.LoadSettings(cmd.Context())
				if err != nil {
					return err
				}
				doc := loaded.Settings
				if err := applySetting(&doc, key, value); err != nil {
					return err
				}
				result, err := session.Access.SaveSettings(cmd.Context(), doc)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Updated %s in %s\n", key, result.Path)
				return nil
			})
		},
	}

	settingsCmd.AddCommand(showCmd, pathCmd, importCmd, setCmd)
	return settingsCmd
}

func settableKeys() []string {
	return []string{"wake_phrase", "llm_provider", "llm_model", "openai_api_key", "openai_base_url"}
}

func applySetting(doc *settings.Settings, key, value string) error {
	optional := func(v string) *string {
		if strings.TrimSpace(v) == "" {
			return nil
		}
		return &v
	}
	switch key {
	case "wake_phrase":
		if strings.TrimSpace(value) == "" {
			return fmt.Errorf("wake_phrase cannot be empty")
		}
		doc.WakePhrase = value
	case "llm_provider":
		doc.LLMProvider = strings.TrimSpace(value)
	case "llm_model":
		doc.LLMModel = optional(value)
	case "openai_api_key":
		doc.OpenAIAPIKey = optional(value)
	case "openai_base_url":
		doc.OpenAIBaseURL = optional(value)
	default:
		return fmt.Errorf("unknown setting %q (expected one of %s)", key, strings.Join(settableKeys(), ", "))
	}
	return nil
}

// readInput reads a file argument, or stdin for "-".
func readInput(cmd *cobra.Command, arg string) ([]byte, string, error) {
	if arg == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return nil, "", fmt.Errorf("read stdin: %w", err)
		}
		return data, "stdin", nil
	}
	path, err := config.ExpandPath(arg)
	if err != nil {
		return nil, "", err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, "", fmt.Errorf("read %s: %w", path, err)
	}
	return data, path, nil
}

func formatFromPath(path string) settings.Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return settings.FormatYAML
	default:
		return settings.FormatJSON
	}
}
