package main

import (
	"crmm/internal/storage"
	"crmm/internal/util/logger"

	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database migrations",
}

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply all pending migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runMigrate(storage.MigrationDirectionUp)
	},
}

var migrateDownCmd = &cobra.Command{
	Use:   "down",
	Short: "Rollback all migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runMigrate(storage.MigrationDirectionDown)
	},
}

func init() {
	migrateCmd.AddCommand(migrateUpCmd, migrateDownCmd)
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(direction storage.MigrationDirection) error {
	log := logger.GetLogger()
	log.Info("Running database migrations...", "direction", direction)

	if err := storage.RunMigrations(direction); err != nil {
		return err
	}

	log.Info("Database migrations completed successfully", "direction", direction)
	return nil
}
