package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Tomlord1122/todo-api/internal/config"
	"github.com/Tomlord1122/todo-api/internal/logger"
)

var (
	driverFlag     string
	sqlitePathFlag string
)

var rootCmd = &cobra.Command{
	Use:           "todo-api",
	Short:         "Todo items REST API",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&driverFlag, "driver", "", "database driver (postgres or sqlite), overrides DB_DRIVER")
	rootCmd.PersistentFlags().StringVar(&sqlitePathFlag, "sqlite-path", "", "sqlite database file, overrides DB_SQLITE_PATH")

	rootCmd.AddCommand(serveCmd, migrateCmd)
}

// setup loads the configuration, applies flag overrides and builds the logger.
func setup() (config.Config, *zap.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		return config.Config{}, nil, err
	}
	if driverFlag != "" {
		cfg.Database.Driver = driverFlag
	}
	if sqlitePathFlag != "" {
		cfg.Database.SQLitePath = sqlitePathFlag
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		return config.Config{}, nil, err
	}

	log, err := logger.New(cfg.LogDevelopment)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		return config.Config{}, nil, err
	}
	zap.ReplaceGlobals(log)
	return cfg, log, nil
}
