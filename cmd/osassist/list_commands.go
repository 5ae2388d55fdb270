package main

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"osassist/internal/panelaccess"
	"osassist/internal/settings"
)

// listKind describes one settings collection exposed as a command group.
type listKind struct {
	use     string
	short   string
	noun    string
	list    settings.List
	headers []string
	rows    func(settings.Settings) [][]string
	// bind registers item flags and returns a builder reading them.
	bind func(cmd *cobra.Command) func(cmd *cobra.Command) (any, error)
}

var listPlans = listKind{
	use:     "plans",
	short:   "Manage execution plans",
	noun:    "plan",
	list:    settings.ExecutionPlans,
	headers: []string{"Name", "Actions", "Startup"},
	rows: func(doc settings.Settings) [][]string {
		rows := make([][]string, 0, len(doc.ExecutionPlans))
		for _, plan := range doc.ExecutionPlans {
			rows = append(rows, []string{plan.Name, describeActions(plan.Actions), yesNo(plan.RunsOnStartup())})
		}
		return rows
	},
	bind: func(cmd *cobra.Command) func(*cobra.Command) (any, error) {
		var name, actionsFile string
		var startup bool
		cmd.Flags().StringVar(&name, "name", "", "Plan name")
		cmd.Flags().StringVar(&actionsFile, "actions", "", "JSON file (or -) holding the plan's action array")
		cmd.Flags().BoolVar(&startup, "startup", false, "Run the plan when the assistant starts")
		return func(cmd *cobra.Command) (any, error) {
			plan := settings.ExecutionPlan{Name: strings.TrimSpace(name), Actions: []settings.Action{}}
			if plan.Name == "" {
				return nil, fmt.Errorf("--name is required")
			}
			if actionsFile != "" {
				data, _, err := readInput(cmd, actionsFile)
				if err != nil {
					return nil, err
				}
				if err := json.Unmarshal(data, &plan.Actions); err != nil {
					return nil, fmt.Errorf("parse actions: %w", err)
				}
			}
			if cmd.Flags().Changed("startup") {
				plan.RunOnStartup = &startup
			}
			return plan, nil
		}
	},
}

var listProfiles = listKind{
	use:     "profiles",
	short:   "Manage browser profiles",
	noun:    "profile",
	list:    settings.ChromeProfiles,
	headers: []string{"Name", "Shortcut"},
	rows: func(doc settings.Settings) [][]string {
		rows := make([][]string, 0, len(doc.ChromeProfiles))
		for _, profile := range doc.ChromeProfiles {
			rows = append(rows, []string{profile.Name, profile.ShortcutPath})
		}
		return rows
	},
	bind: func(cmd *cobra.Command) func(*cobra.Command) (any, error) {
		var name, shortcut string
		cmd.Flags().StringVar(&name, "name", "", "Spoken profile name")
		cmd.Flags().StringVar(&shortcut, "shortcut", "", "Path to the browser profile shortcut")
		return func(*cobra.Command) (any, error) {
			if strings.TrimSpace(name) == "" {
				return nil, fmt.Errorf("--name is required")
			}
			return settings.ChromeProfile{Name: strings.TrimSpace(name), ShortcutPath: shortcut}, nil
		}
	},
}

var listApps = listKind{
	use:     "apps",
	short:   "Manage custom applications",
	noun:    "app",
	list:    settings.CustomApps,
	headers: []string{"Name", "Executable"},
	rows: func(doc settings.Settings) [][]string {
		rows := make([][]string, 0, len(doc.CustomApps))
		for _, app := range doc.CustomApps {
			rows = append(rows, []string{app.Name, app.ExePath})
		}
		return rows
	},
	bind: func(cmd *cobra.Command) func(*cobra.Command) (any, error) {
		var name, exe string
		cmd.Flags().StringVar(&name, "name", "", "Spoken application name")
		cmd.Flags().StringVar(&exe, "exe", "", "Path to the executable")
		return func(*cobra.Command) (any, error) {
			if strings.TrimSpace(name) == "" {
				return nil, fmt.Errorf("--name is required")
			}
			return settings.CustomApp{Name: strings.TrimSpace(name), ExePath: exe}, nil
		}
	},
}

func newListCommand(ctx *commandContext, kind listKind) *cobra.Command {
	group := &cobra.Command{
		Use:   kind.use,
		Short: kind.short,
	}

	var asJSON bool
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List " + kind.use,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withAccess(func(session panelaccess.Session) error {
				loaded, err := session.Access.LoadSettings(cmd.Context())
				if err != nil {
					return err
				}
				if asJSON {
					return writeJSON(cmd, listItems(loaded.Settings, kind.list))
				}
				rows := kind.rows(loaded.Settings)
				if len(rows) == 0 {
					fmt.Fprintf(cmd.OutOrStdout(), "No %s configured\n", kind.use)
					return nil
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderIndexedTable(kind.headers, rows))
				return nil
			})
		},
	}
	listCmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")

	addCmd := &cobra.Command{
		Use:   "add",
		Short: "Append a " + kind.noun,
		Args:  cobra.NoArgs,
	}
	addItem := itemFlags(addCmd, kind)
	addCmd.RunE = func(cmd *cobra.Command, args []string) error {
		item, err := addItem(cmd)
		if err != nil {
			return err
		}
		return ctx.withAccess(func(session panelaccess.Session) error {
			if err := session.Access.AddListItem(cmd.Context(), kind.list, item); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added %s\n", kind.noun)
			return nil
		})
	}

	updateCmd := &cobra.Command{
		Use:   "update <index>",
		Short: "Replace the " + kind.noun + " at index",
		Args:  cobra.ExactArgs(1),
	}
	updateItem := itemFlags(updateCmd, kind)
	updateCmd.RunE = func(cmd *cobra.Command, args []string) error {
		index, err := parseIndex(args[0])
		if err != nil {
			return err
		}
		item, err := updateItem(cmd)
		if err != nil {
			return err
		}
		return ctx.withAccess(func(session panelaccess.Session) error {
			if err := session.Access.UpdateListItem(cmd.Context(), kind.list, index, item); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated %s %d\n", kind.noun, index)
			return nil
		})
	}

	removeCmd := &cobra.Command{
		Use:   "remove <index>",
		Short: "Delete the " + kind.noun + " at index",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			index, err := parseIndex(args[0])
			if err != nil {
				return err
			}
			return ctx.withAccess(func(session panelaccess.Session) error {
				if err := session.Access.RemoveListItem(cmd.Context(), kind.list, index); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed %s %d\n", kind.noun, index)
				return nil
			})
		},
	}

	group.AddCommand(listCmd, addCmd, updateCmd, removeCmd)
	return group
}

// itemFlags binds the collection's flags plus --item, which takes the entry
// as raw JSON and bypasses the other flags.
func itemFlags(cmd *cobra.Command, kind listKind) func(*cobra.Command) (json.RawMessage, error) {
	var raw string
	cmd.Flags().StringVar(&raw, "item", "", "Entry as a JSON object; overrides the other flags")
	build := kind.bind(cmd)
	return func(cmd *cobra.Command) (json.RawMessage, error) {
		if strings.TrimSpace(raw) != "" {
			if !json.Valid([]byte(raw)) {
				return nil, fmt.Errorf("--item is not valid JSON")
			}
			return json.RawMessage(raw), nil
		}
		item, err := build(cmd)
		if err != nil {
			return nil, err
		}
		return json.Marshal(item)
	}
}

func parseIndex(value string) (int, error) {
	index, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil || index < 0 {
		return 0, fmt.Errorf("invalid index %q", value)
	}
	return index, nil
}

func listItems(doc settings.Settings, list settings.List) any {
	switch list {
	case settings.ExecutionPlans:
		return doc.ExecutionPlans
	case settings.ChromeProfiles:
		return doc.ChromeProfiles
	default:
		return doc.CustomApps
	}
}

func describeActions(actions []settings.Action) string {
	if len(actions) == 0 {
		return "-"
	}
	kinds := make([]string, 0, len(actions))
	for _, action := range actions {
		kinds = append(kinds, action.ActionType)
	}
	return strings.Join(kinds, ", ")
}
