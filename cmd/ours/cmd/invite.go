package cmd

import (
	"fmt"
	"time"

	"github.com/oursapp/ours/internal/repository"
	"github.com/oursapp/ours/internal/service"
	"github.com/spf13/cobra"
)

func InviteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "invite",
		Short: "Invite codes",
	}

	var expiry time.Duration
	create := &cobra.Command{
		Use:   "create",
		Short: "Mint a single-use invite code",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, database, err := open()
			if err != nil {
				return err
			}
			defer database.Close()

			if expiry == 0 {
				expiry = cfg.InviteExpiry
			}
			invites := service.NewInviteService(repository.NewInviteCodeRepository(database), expiry)
			invite, err := invites.Create(cmd.Context(), nil)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s (expires %s)\n", invite.Code, invite.ExpiresAt.Format(time.RFC3339))
			return nil
		},
	}
	create.Flags().DurationVar(&expiry, "expiry", 0, "how long the code stays valid (default INVITE_EXPIRY)")

	cmd.AddCommand(create)
	return cmd
}
