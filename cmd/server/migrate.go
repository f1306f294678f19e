package main

import (
	"github.com/spf13/cobra"

	pkgdb "github.com/Skotchmaster/konveksi/pkg/db"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		_, logger, db, err := boot(ctx)
		if err != nil {
			return err
		}
		defer pkgdb.Close(db)

		if err := migrate(ctx, db); err != nil {
			return err
		}
		logger.Info("migrate_success")
		return nil
	},
}
