package main

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/ArishaRashid/WhoYap/internal/app"
)

func migrateCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			logrus.Info("Applying database migrations...")
			db, err := app.OpenDatabase(cfg, opts.serviceLogger())
			if err != nil {
				return err
			}
			defer db.Close()

			logrus.WithField("driver", cfg.Database.Type).Info("Database migrations applied successfully.")
			return nil
		},
	}
}
