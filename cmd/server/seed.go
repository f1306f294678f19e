package main

import (
	"github.com/spf13/cobra"

	"github.com/Skotchmaster/konveksi/internal/repo"
	"github.com/Skotchmaster/konveksi/internal/seed"
	"github.com/Skotchmaster/konveksi/pkg/logging"
	pkgdb "github.com/Skotchmaster/konveksi/pkg/db"
)

var seedDemo bool

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Create the admin account from ADMIN_* and optionally a demo catalog",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, logger, db, err := boot(cmd.Context())
		if err != nil {
			return err
		}
		defer pkgdb.Close(db)

		ctx := logging.IntoContext(cmd.Context(), logger)
		if err := migrate(ctx, db); err != nil {
			return err
		}

		r := repo.New(db)
		if _, err := seed.Admin(ctx, r, cfg.AdminName, cfg.AdminEmail, cfg.AdminPassword); err != nil {
			return err
		}
		if seedDemo || cfg.SeedDemo {
			if err := seed.Demo(ctx, r); err != nil {
				return err
			}
		}
		return nil
	},
}

func init() {
	seedCmd.Flags().BoolVar(&seedDemo, "demo", false, "also add the demo category and product")
}
