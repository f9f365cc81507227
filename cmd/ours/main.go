package main

import (
	"os"

	"github.com/oursapp/ours/cmd/ours/cmd"
	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "ours",
		Short:        "Maintenance tools for the ours server",
		SilenceUsage: true,
	}

	rootCmd.AddCommand(cmd.MigrateCmd())
	rootCmd.AddCommand(cmd.InviteCmd())
	rootCmd.AddCommand(cmd.SessionsCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
