package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/udisondev/craftplan/internal/db"
)

func newMigrateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			version, err := db.RunMigrations(cmd.Context(), a.cfg.Database.DSN())
			if err != nil {
				return fmt.Errorf("running migrations: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "schema at version %d\n", version)
			return nil
		},
	}
}
