package ioc

import (
	"context"
	"slices"
	"time"
)

// Resolver resolves services. Container and Scope implement it, and so does
// the resolver handed to factories while a service is being built.
type Resolver interface {
	Resolve(t ServiceType) (any, error)
}

// Factory builds a service instance. r resolves dependencies against the
// lifetime the service is being built in.
type Factory func(r Resolver) (any, error)

// lifetime is a resolution strategy: the container root or a scope.
type lifetime interface {
	container() *Container
	resolveAsSingleton(r *resolution, t ServiceType, b *binding) (any, error)
	resolveAsPerScope(r *resolution, t ServiceType, b *binding) (any, error)
	disposed() bool
}

// containerLifetime backs singletons. Per-scope requests made directly
// against it collapse to singletons.
type containerLifetime struct {
	owner *Container
	cache *instanceCache
}

func (l *containerLifetime) container() *Container { return l.owner }

func (l *containerLifetime) disposed() bool { return l.cache.isDisposed() }

func (l *containerLifetime) resolveAsSingleton(r *resolution, t ServiceType, b *binding) (any, error) {
	return l.cache.getOrCreate(r, t, func() (any, error) {
		return b.build(r)
	})
}

func (l *containerLifetime) resolveAsPerScope(r *resolution, t ServiceType, b *binding) (any, error) {
	return l.resolveAsSingleton(r, t, b)
}

// scopeLifetime backs per-scope instances and delegates singletons to its
// parent. It never owns anything the parent cached.
type scopeLifetime struct {
	parent *containerLifetime
	cache  *instanceCache
}

func (l *scopeLifetime) container() *Container { return l.parent.owner }

func (l *scopeLifetime) disposed() bool { return l.cache.isDisposed() }

// resolveAsSingleton builds against the root so a singleton never captures
// an instance owned by this scope.
func (l *scopeLifetime) resolveAsSingleton(r *resolution, t ServiceType, b *binding) (any, error) {
	return l.parent.resolveAsSingleton(r.in(l.parent), t, b)
}

func (l *scopeLifetime) resolveAsPerScope(r *resolution, t ServiceType, b *binding) (any, error) {
	return l.cache.getOrCreate(r, t, func() (any, error) {
		return b.build(r)
	})
}

// resolution is the Resolver passed to factories. It carries the active
// lifetime, the chain of services under construction, used to reject cycles
// before they recurse, and the builder that owns the construction.
type resolution struct {
	ctx  context.Context
	lt   lifetime
	path []ServiceType
	by   *builder

	// from is set on detached resolutions, which start a new builder per
	// Resolve call.
	from *builder
}

// Resolve implements Resolver.
func (r *resolution) Resolve(t ServiceType) (any, error) {
	by := r.by
	if by == nil {
		by = &builder{parent: r.from}
	}

	return resolve(r.ctx, r.lt, by, r.path, t)
}

// builder returns the builder of r. It is nil for a nil or detached resolution.
func (r *resolution) builder() *builder {
	if r == nil {
		return nil
	}

	return r.by
}

// in rebinds the resolution to another lifetime, keeping the path.
func (r *resolution) in(lt lifetime) *resolution {
	return &resolution{ctx: r.ctx, lt: lt, path: r.path, by: r.by, from: r.from}
}

// detach returns a resolver for the same lifetime that forgets the current
// path. Services that keep a Resolver for later use (Lazy, Provider) get a
// detached one so deferred lookups are not mistaken for cycles. Lookups made
// through it while the current build is still running can still be reported
// as cycles when they wait on that build.
func detach(r Resolver) Resolver {
	if res, ok := r.(*resolution); ok {
		return &resolution{ctx: res.ctx, lt: res.lt, from: res.by}
	}

	return r
}

// resolve is the single entry point for every resolution, top level or nested.
func resolve(ctx context.Context, lt lifetime, by *builder, path []ServiceType, t ServiceType) (any, error) {
	c := lt.container()
	start := time.Now()

	if err := c.middleware.beforeResolve(ctx, t); err != nil {
		return nil, err
	}

	instance, err := resolveInternal(ctx, lt, by, path, t)

	event := ResolveEvent{
		Service:  t,
		Instance: instance,
		Err:      err,
		Duration: time.Since(start),
		Depth:    len(path),
	}
	if mwErr := c.middleware.afterResolve(ctx, event); mwErr != nil {
		return nil, mwErr
	}

	return instance, err
}

func resolveInternal(ctx context.Context, lt lifetime, by *builder, path []ServiceType, t ServiceType) (any, error) {
	if lt.disposed() {
		return nil, ErrDisposed
	}

	if slices.Contains(path, t) {
		return nil, errCircular(append(slices.Clone(path), t))
	}

	b, ok := lt.container().registry.lookup(t)
	if !ok {
		return nil, errUnregistered(t)
	}

	next := &resolution{
		ctx:  ctx,
		lt:   lt,
		path: append(slices.Clone(path), t),
		by:   by,
	}

	switch b.lifecycle {
	case Singleton:
		return lt.resolveAsSingleton(next, t, b)
	case PerScope:
		return lt.resolveAsPerScope(next, t, b)
	default:
		return b.build(next)
	}
}
