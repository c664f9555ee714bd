package ioc

import (
	"context"

	"go.uber.org/zap"
)

// Scope is a short-lived resolution context. Per-scope services resolved
// through it are built once and released together when the scope is disposed.
// Singletons still come from, and belong to, the parent container.
//
// Typical use:
//
//	scope := c.CreateScope()
//	defer scope.Dispose()
type Scope struct {
	lt *scopeLifetime
}

// Resolve returns an instance of t within this scope.
func (s *Scope) Resolve(t ServiceType) (any, error) {
	return s.ResolveContext(context.Background(), t)
}

// ResolveContext resolves t, passing ctx to middleware.
func (s *Scope) ResolveContext(ctx context.Context, t ServiceType) (any, error) {
	return resolve(ctx, s.lt, &builder{}, nil, t)
}

// Dispose releases the per-scope instances built in this scope, newest first.
// Disposing twice is a no-op.
func (s *Scope) Dispose() error {
	err := s.lt.cache.dispose()
	if err != nil {
		s.lt.container().logger.Warn("scope disposal failed", zap.Error(err))
	}

	return err
}
