package cmd

import (
	"fmt"

	"github.com/oursapp/ours/internal/repository"
	"github.com/oursapp/ours/internal/service"
	"github.com/spf13/cobra"
)

func SessionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sessions",
		Short: "Login sessions",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "prune",
		Short: "Delete expired sessions",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, database, err := open()
			if err != nil {
				return err
			}
			defer database.Close()

			auth := service.NewAuthService(
				repository.NewUserRepository(database),
				repository.NewSessionRepository(database),
				cfg.SessionExpiry,
				cfg.SecureCookies(),
			)
			n, err := auth.PruneSessions(cmd.Context())
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "pruned %d expired sessions\n", n)
			return nil
		},
	})

	return cmd
}
