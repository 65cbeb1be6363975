package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/SscSPs/erp_ledger_engine/internal/middleware"
)

// Option configures the BaseService embedded in every service.
type Option func(*BaseService)

// WithClock overrides the time source, mainly for tests.
func WithClock(clock func() time.Time) Option {
	return func(b *BaseService) {
		b.clock = clock
	}
}

// BaseService provides common functionality for all services
type BaseService struct {
	clock func() time.Time
}

func newBaseService(opts []Option) BaseService {
	b := BaseService{clock: time.Now}
	for _, opt := range opts {
		opt(&b)
	}
	return b
}

// Now returns the current time in UTC from the configured clock.
func (s *BaseService) Now() time.Time {
	if s.clock == nil {
		return time.Now().UTC()
	}
	return s.clock().UTC()
}

// GetLogger gets the logger from context or returns a default one
func (s *BaseService) GetLogger(ctx context.Context) *slog.Logger {
	logger := middleware.GetLoggerFromCtx(ctx)
	if logger == nil {
		return slog.Default()
	}
	return logger
}

// LogError logs an error with consistent formatting
func (s *BaseService) LogError(ctx context.Context, err error, msg string, keyvals ...any) {
	logger := s.GetLogger(ctx)
	args := make([]any, 0, len(keyvals)+1)
	args = append(args, slog.String("error", err.Error()))
	args = append(args, keyvals...)
	logger.Error(msg, args...)
}

// LogWarn logs an expected rejection, such as a validation failure.
func (s *BaseService) LogWarn(ctx context.Context, msg string, keyvals ...any) {
	s.GetLogger(ctx).Warn(msg, keyvals...)
}

// LogInfo logs an info message with consistent formatting
func (s *BaseService) LogInfo(ctx context.Context, msg string, keyvals ...any) {
	s.GetLogger(ctx).Info(msg, keyvals...)
}

// LogDebug logs a debug message with consistent formatting
func (s *BaseService) LogDebug(ctx context.Context, msg string, keyvals ...any) {
	s.GetLogger(ctx).Debug(msg, keyvals...)
}
