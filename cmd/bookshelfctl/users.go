package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/samber/do/v2"
	"github.com/spf13/cobra"

	"github.com/bookshelfapp/bookshelf-server/internal/service"
)

// passwordEnv lets scripts avoid putting the password on the command line.
const passwordEnv = "BOOKSHELF_PASSWORD"

func newCreateUserCmd(opts *rootOptions) *cobra.Command {
	var name, email, password string

	cmd := &cobra.Command{
		Use:   "create-user",
		Short: "Create an account",
		Long: `Create an account with the same validation as registration.

The password is read from --password or the ` + passwordEnv + ` environment variable.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if password == "" {
				password = os.Getenv(passwordEnv)
			}
			if password == "" {
				return errors.New("password is required (--password or " + passwordEnv + ")")
			}

			return opts.withContainer(cmd, func(i do.Injector) error {
				authService := do.MustInvoke[*service.AuthService](i)

				user, err := authService.CreateUser(cmd.Context(), name, email, password)
				if err != nil {
					return err
				}

				fmt.Fprintf(cmd.OutOrStdout(), "Created user %s <%s> (%s)\n", user.Name, user.Email, user.ID)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Display name")
	cmd.Flags().StringVar(&email, "email", "", "Email address")
	cmd.Flags().StringVar(&password, "password", "", "Password")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("email")

	return cmd
}

func newPruneSessionsCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "prune-sessions",
		Short: "Delete expired login sessions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.withContainer(cmd, func(i do.Injector) error {
				sessions := do.MustInvoke[*service.SessionService](i)

				count, err := sessions.DeleteExpiredSessions(cmd.Context())
				if err != nil {
					return err
				}

				fmt.Fprintf(cmd.OutOrStdout(), "Deleted %d expired sessions\n", count)
				return nil
			})
		},
	}
}
