package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"osassist/internal/auth"
	"osassist/internal/panelaccess"
)

// authTokenEnv supplies the access token for `auth set` without exposing it
// in the process list.
const authTokenEnv = "OSASSIST_ACCESS_TOKEN"

func newAuthCommand(ctx *commandContext) *cobra.Command {
	authCmd := &cobra.Command{
		Use:   "auth",
		Short: "Manage the assistant's cached credentials",
	}

	var data auth.Data
	setCmd := &cobra.Command{
		Use:   "set",
		Short: "Store credentials for the assistant process",
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(data.AccessToken) == "" {
				data.AccessToken = strings.TrimSpace(os.Getenv(authTokenEnv))
			}
			if data.AccessToken == "" {
				return fmt.Errorf("--token or %s is required", authTokenEnv)
			}
			return ctx.withAccess(func(session panelaccess.Session) error {
				msg, err := session.Access.UpdateAuthCache(cmd.Context(), data)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), msg)
				return nil
			})
		},
	}
	setCmd.Flags().StringVar(&data.AccessToken, "token", "", "Access token (or set "+authTokenEnv+")")
	setCmd.Flags().StringVar(&data.SubscriptionStatus, "subscription", "", "Subscription status")
	setCmd.Flags().StringVar(&data.UserID, "user-id", "", "User id")

	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove cached credentials",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withAccess(func(session panelaccess.Session) error {
				msg, err := session.Access.ClearAuthCache(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), msg)
				return nil
			})
		},
	}

	authCmd.AddCommand(setCmd, clearCmd)
	return authCmd
}
