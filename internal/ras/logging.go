package ras

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// LoggingAPI logs every call made through the API it wraps.
type LoggingAPI struct {
	next   API
	logger *zap.Logger
}

// NewLoggingAPI wraps next. A nil logger discards output.
func NewLoggingAPI(next API, logger *zap.Logger) *LoggingAPI {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &LoggingAPI{next: next, logger: logger.Named("ras")}
}

// Dial implements API.
func (l *LoggingAPI) Dial(ctx context.Context, deviceName, entry string) (Connection, error) {
	start := time.Now()
	c, err := l.next.Dial(ctx, deviceName, entry)
	l.log("dial", start, err,
		zap.String("device", deviceName),
		zap.String("entry", entry),
		zap.String("id", c.ID),
	)

	return c, err
}

// HangUp implements API.
func (l *LoggingAPI) HangUp(ctx context.Context, id string) error {
	start := time.Now()
	err := l.next.HangUp(ctx, id)
	l.log("hangup", start, err, zap.String("id", id))

	return err
}

// Stats implements API.
func (l *LoggingAPI) Stats(ctx context.Context, id string) (Stats, error) {
	start := time.Now()
	s, err := l.next.Stats(ctx, id)
	l.log("stats", start, err, zap.String("id", id))

	return s, err
}

func (l *LoggingAPI) log(call string, start time.Time, err error, fields ...zap.Field) {
	fields = append(fields, zap.String("call", call), zap.Duration("duration", time.Since(start)))

	if err != nil {
		l.logger.Warn("ras call failed", append(fields, zap.Error(err))...)
		return
	}

	l.logger.Debug("ras call", fields...)
}
