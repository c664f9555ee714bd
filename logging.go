package ioc

import (
	"context"

	"go.uber.org/zap"
)

// LoggingMiddleware logs resolutions. Successful resolutions are logged at
// debug level and failures at warn level.
type LoggingMiddleware struct {
	logger *zap.Logger
}

// NewLoggingMiddleware creates logging middleware. A nil logger discards output.
func NewLoggingMiddleware(logger *zap.Logger) *LoggingMiddleware {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &LoggingMiddleware{logger: logger.Named("ioc")}
}

// BeforeResolve implements Middleware.
func (m *LoggingMiddleware) BeforeResolve(context.Context, ServiceType) error {
	return nil
}

// AfterResolve implements Middleware.
func (m *LoggingMiddleware) AfterResolve(_ context.Context, event ResolveEvent) error {
	fields := []zap.Field{
		zap.Stringer("service", event.Service),
		zap.Duration("duration", event.Duration),
		zap.Int("depth", event.Depth),
	}

	if event.Err != nil {
		m.logger.Warn("resolve failed", append(fields, zap.Error(event.Err))...)

		return nil
	}

	m.logger.Debug("resolved", fields...)

	return nil
}
