package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Tomlord1122/todo-api/internal/database"
	"github.com/Tomlord1122/todo-api/internal/repository"
	"github.com/Tomlord1122/todo-api/internal/server"
	"github.com/Tomlord1122/todo-api/internal/service"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
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

		if cfg.Database.AutoMigrate {
			log.Info("running database auto-migration")
			if err := database.Migrate(dbService.GetDB()); err != nil {
				log.Error("failed to auto-migrate database", zap.Error(err))
				_ = dbService.Close()
				return err
			}
		}

		todoRepo := repository.NewGormTodoRepository(dbService.GetDB())
		todoService := service.NewTodoService(todoRepo, service.WithLogger(log))
		apiServer := server.NewServer(cfg.Port, todoService, dbService, log)

		done := make(chan struct{})
		go gracefulShutdown(apiServer, dbService, cfg.ShutdownTimeout, log, done)

		log.Info("starting server", zap.String("addr", apiServer.Addr), zap.String("driver", cfg.Database.Driver))
		if err := apiServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("HTTP server ListenAndServe error", zap.Error(err))
			_ = dbService.Close()
			return err
		}

		<-done
		log.Info("graceful shutdown complete")
		return nil
	},
}

func gracefulShutdown(apiServer *http.Server, dbService database.Service, timeout time.Duration, log *zap.Logger, done chan<- struct{}) {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	log.Info("shutting down gracefully, press Ctrl+C again to force")
	stop()

	ctxTimeout, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := apiServer.Shutdown(ctxTimeout); err != nil {
		log.Error("server forced to shutdown", zap.Error(err))
	}

	if err := dbService.Close(); err != nil {
		log.Error("error closing database connection pool", zap.Error(err))
	}

	close(done)
}
