package service

import (
	"time"

	"go.uber.org/zap"
)

type Option func(*todoService)

// WithClock replaces time.Now as the source of timestamps.
func WithClock(clock func() time.Time) Option {
	return func(s *todoService) {
		s.clock = clock
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(s *todoService) {
		s.logger = logger.Named("todo_service")
	}
}
