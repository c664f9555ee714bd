package ras

import (
	"context"
	"slices"
	"sync"

	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// Session tracks the connections dialed during one unit of work. Disposing
// the session hangs up whatever is still open, newest first.
type Session struct {
	api    API
	logger *zap.Logger

	mu   sync.Mutex
	open []string
}

// NewSession creates a session on api.
func NewSession(api API, logger *zap.Logger) *Session {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Session{api: api, logger: logger}
}

// Dial dials entry on the named device and tracks the connection.
func (s *Session) Dial(ctx context.Context, deviceName, entry string) (Connection, error) {
	c, err := s.api.Dial(ctx, deviceName, entry)
	if err != nil {
		return Connection{}, err
	}

	s.mu.Lock()
	s.open = append(s.open, c.ID)
	s.mu.Unlock()

	return c, nil
}

// HangUp closes a connection dialed through this session.
func (s *Session) HangUp(ctx context.Context, id string) error {
	s.mu.Lock()
	s.open = slices.DeleteFunc(s.open, func(open string) bool { return open == id })
	s.mu.Unlock()

	return s.api.HangUp(ctx, id)
}

// Stats returns the statistics of a connection.
func (s *Session) Stats(ctx context.Context, id string) (Stats, error) {
	return s.api.Stats(ctx, id)
}

// Open returns the IDs of connections still open.
func (s *Session) Open() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return slices.Clone(s.open)
}

// Dispose hangs up every open connection.
func (s *Session) Dispose() error {
	s.mu.Lock()
	open := s.open
	s.open = nil
	s.mu.Unlock()

	var err error
	for i := len(open) - 1; i >= 0; i-- {
		err = multierr.Append(err, s.api.HangUp(context.Background(), open[i]))
	}

	if len(open) > 0 {
		s.logger.Debug("session closed", zap.Int("hung_up", len(open)), zap.Error(err))
	}

	return err
}
