package main

import (
	"errors"
	"mbs-hub/internal/common"
	"mbs-hub/internal/data"

	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply the embedded database migrations",
	Long: `Apply every pending up migration for the configured db.driver.

Requires db.dsn (MBS_DB_DSN).`,
	RunE: func(cmd *cobra.Command, args []string) error {
		log.Info("Applying database migrations...")
		if err := data.ApplyMigrations(cfg.DB); err != nil {
			if errors.Is(err, common.ErrUnconfigured) {
				return errors.New("db.dsn is not set; nothing to migrate")
			}
			return err
		}
		log.Info("Migrations applied successfully.")
		return nil
	},
}
