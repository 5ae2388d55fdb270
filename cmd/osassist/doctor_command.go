package main

import (
	"errors"

	"github.com/spf13/cobra"

	"osassist/internal/preflight"
)

func newDoctorCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check directories, settings, helper programs and the language model",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			results := preflight.RunAll(cmd.Context(), cfg)
			if asJSON {
				if err := writeJSON(cmd, results); err != nil {
					return err
				}
			} else {
				out := newStatusWriter(cmd.OutOrStdout())
				for _, r := range results {
					out.line(r.Name, resultKind(r), r.Detail)
				}
			}
			if preflight.Failed(results) {
				return errors.New("one or more required checks failed")
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")
	return cmd
}

func resultKind(r preflight.Result) statusKind {
	switch {
	case r.Passed:
		return statusOK
	case r.Optional:
		return statusWarn
	default:
		return statusError
	}
}
