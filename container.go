package ioc

import (
	"context"
	"fmt"
	"reflect"

	"go.uber.org/zap"
)

// Container is the root of the container: it owns the registration table
// and the singleton cache. A Container is safe for concurrent resolution once
// registration is complete.
type Container struct {
	registry   *registry
	root       *containerLifetime
	middleware *middlewareChain
	logger     *zap.Logger
	waits      *waitGraph
}

// New creates an empty container.
func New(opts ...Option) *Container {
	cfg := newConfig(opts)

	c := &Container{
		registry:   newRegistry(),
		middleware: newMiddlewareChain(cfg.middleware...),
		logger:     cfg.logger,
		waits:      newWaitGraph(),
	}
	c.root = &containerLifetime{owner: c, cache: newInstanceCache(c.waits)}

	return c
}

// Register binds service type t to an implementation given as a constructor
// function or a ConstructorSet. The constructor is analyzed immediately; its
// parameters are resolved from the container each time an instance is built.
// The binding starts out transient.
func (c *Container) Register(t ServiceType, implementation any) (*Registration, error) {
	p, err := compile(implementation)
	if err != nil {
		return nil, err
	}

	if !assignable(p.result, t.typ) {
		return nil, errResultMismatch(t, p.result, p.name)
	}

	return c.install(t, &binding{
		lifecycle:      Transient,
		build:          guard(t, p.build),
		implementation: p.name,
		deps:           p.dependencies(),
	})
}

// RegisterFactory binds service type t to a factory function. The binding
// starts out transient.
func (c *Container) RegisterFactory(t ServiceType, factory Factory) (*Registration, error) {
	if factory == nil {
		return nil, errNoConstructor(t.String(), "factory cannot be nil")
	}

	return c.install(t, &binding{
		lifecycle:      Transient,
		build:          guard(t, factory),
		implementation: "factory",
	})
}

func (c *Container) install(t ServiceType, b *binding) (*Registration, error) {
	if t.IsZero() {
		return nil, errNoConstructor("<nil>", "service type cannot be nil")
	}

	if err := c.registry.install(t, b); err != nil {
		return nil, err
	}

	c.logger.Debug("service registered",
		zap.Stringer("service", t),
		zap.String("implementation", b.implementation),
	)

	return &Registration{service: t, registry: c.registry, current: b}, nil
}

// Resolve returns an instance of t.
func (c *Container) Resolve(t ServiceType) (any, error) {
	return c.ResolveContext(context.Background(), t)
}

// ResolveContext resolves t, passing ctx to middleware.
func (c *Container) ResolveContext(ctx context.Context, t ServiceType) (any, error) {
	return resolve(ctx, c.root, &builder{}, nil, t)
}

// Has reports whether t is registered.
func (c *Container) Has(t ServiceType) bool {
	_, ok := c.registry.peek(t)

	return ok
}

// CreateScope returns a new scope whose per-scope instances are independent
// of every other scope. The caller owns the scope and must dispose it.
func (c *Container) CreateScope() *Scope {
	return &Scope{
		lt: &scopeLifetime{parent: c.root, cache: newInstanceCache(c.waits)},
	}
}

// Dispose releases every singleton the container created, newest first.
// Scopes created from the container are not touched. Disposing twice is a no-op.
func (c *Container) Dispose() error {
	err := c.root.cache.dispose()
	if err != nil {
		c.logger.Warn("container disposal failed", zap.Error(err))
	}

	return err
}

// guard wraps foreign errors from a factory with the service being built.
func guard(t ServiceType, f Factory) Factory {
	return func(r Resolver) (any, error) {
		instance, err := f(r)
		if err != nil {
			if isServiceError(err) {
				return nil, err
			}

			return nil, errService(t, "build", err)
		}

		return instance, nil
	}
}

// assignable reports whether a constructor result of type from can be
// registered as service type to.
func assignable(from, to reflect.Type) bool {
	if from.AssignableTo(to) {
		return true
	}

	return to.Kind() == reflect.Interface && from.Implements(to)
}

// String describes the container for debugging.
func (c *Container) String() string {
	return fmt.Sprintf("ioc.Container{services: %d}", len(c.registry.types()))
}
