package server

import (
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/Tomlord1122/todo-api/internal/service"
)

// HealthChecker reports the state of the backing store.
type HealthChecker interface {
	Health() map[string]string
}

type Server struct {
	port        int
	todoService service.TodoService
	db          HealthChecker
	logger      *zap.Logger
}

func NewServer(port int, todoService service.TodoService, db HealthChecker, logger *zap.Logger) *http.Server {
	appServer := &Server{
		port:        port,
		todoService: todoService,
		db:          db,
		logger:      logger.Named("http"),
	}

	return &http.Server{
		Addr:         fmt.Sprintf(":%d", appServer.port),
		Handler:      appServer.RegisterRoutes(),
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		ErrorLog:     zap.NewStdLog(appServer.logger),
	}
}
