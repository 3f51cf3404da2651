package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/yukikurage/column-task-api/internal/config"
	"github.com/yukikurage/column-task-api/internal/database"
)

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema and indexes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			if err := cfg.Validate(); err != nil {
				return err
			}

			db, err := database.Open(cfg)
			if err != nil {
				return err
			}
			if err := database.MigrateDatabase(db); err != nil {
				return fmt.Errorf("failed to run migrations: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), "Migrations completed")
			return nil
		},
	}
}
