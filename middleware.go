package ioc

import (
	"context"
	"time"
)

// ResolveEvent describes a finished resolution.
type ResolveEvent struct {
	Service  ServiceType
	Instance any
	Err      error
	Duration time.Duration
	// Depth is 0 for a top-level Resolve and grows by one per nested dependency.
	Depth int
}

// Middleware provides hooks around every resolution, including the nested
// resolutions of constructor parameters.
type Middleware interface {
	// BeforeResolve is called before resolving a service.
	// Return error to abort resolution.
	BeforeResolve(ctx context.Context, service ServiceType) error

	// AfterResolve is called after resolving a service, even if it failed.
	// Returning an error replaces the result.
	AfterResolve(ctx context.Context, event ResolveEvent) error
}

// middlewareChain is fixed at construction, so it needs no locking.
type middlewareChain struct {
	middleware []Middleware
}

func newMiddlewareChain(middleware ...Middleware) *middlewareChain {
	return &middlewareChain{middleware: middleware}
}

// beforeResolve calls BeforeResolve on all middleware.
func (m *middlewareChain) beforeResolve(ctx context.Context, service ServiceType) error {
	for _, mw := range m.middleware {
		if err := mw.BeforeResolve(ctx, service); err != nil {
			return err
		}
	}
	return nil
}

// afterResolve calls AfterResolve on all middleware.
func (m *middlewareChain) afterResolve(ctx context.Context, event ResolveEvent) error {
	for _, mw := range m.middleware {
		if err := mw.AfterResolve(ctx, event); err != nil {
			return err
		}
	}
	return nil
}

// FuncMiddleware wraps functions as Middleware.
type FuncMiddleware struct {
	BeforeResolveFunc func(ctx context.Context, service ServiceType) error
	AfterResolveFunc  func(ctx context.Context, event ResolveEvent) error
}

// BeforeResolve implements Middleware.
func (f *FuncMiddleware) BeforeResolve(ctx context.Context, service ServiceType) error {
	if f.BeforeResolveFunc != nil {
		return f.BeforeResolveFunc(ctx, service)
	}
	return nil
}

// AfterResolve implements Middleware.
func (f *FuncMiddleware) AfterResolve(ctx context.Context, event ResolveEvent) error {
	if f.AfterResolveFunc != nil {
		return f.AfterResolveFunc(ctx, event)
	}
	return nil
}
