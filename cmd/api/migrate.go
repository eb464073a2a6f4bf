package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Tomlord1122/todo-api/internal/database"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := setup()
		if err != nil {
			return err
		}

		dbService, err := database.New(cfg.Database, log)
		if err != nil {
			log.Error("failed to connect to database", zap.Error(err))
			return err
		}
		defer dbService.Close()

		if err := database.Migrate(dbService.GetDB()); err != nil {
			log.Error("failed to migrate database", zap.Error(err))
			return err
		}
		log.Info("database migration complete", zap.String("driver", cfg.Database.Driver))
		return nil
	},
}
