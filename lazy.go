package ioc

import (
	"fmt"
	"sync"
	"sync/atomic"
)

// Lazy wraps a dependency that is resolved on first access.
// This is useful for breaking circular dependencies or deferring
// resolution of expensive services until they're actually needed.
//
// A constructor obtains one by taking a Resolver parameter:
//
//	func NewReporter(r ioc.Resolver) *Reporter {
//	    return &Reporter{mailer: ioc.NewLazy[Mailer](r)}
//	}
type Lazy[T any] struct {
	resolver Resolver
	once     sync.Once
	value    T
	err      error
	resolved atomic.Bool
}

// NewLazy creates a new lazy dependency wrapper.
func NewLazy[T any](r Resolver) *Lazy[T] {
	return &Lazy[T]{resolver: detach(r)}
}

// Get resolves the dependency and returns it.
// The resolution happens only once; subsequent calls return the cached value.
func (l *Lazy[T]) Get() (T, error) {
	l.once.Do(func() {
		l.value, l.err = Resolve[T](l.resolver)
		l.resolved.Store(l.err == nil)
	})

	return l.value, l.err
}

// MustGet resolves the dependency and returns it, panicking on error.
func (l *Lazy[T]) MustGet() T {
	value, err := l.Get()
	if err != nil {
		panic(fmt.Sprintf("lazy dependency %s failed: %v", TypeOf[T](), err))
	}

	return value
}

// IsResolved returns true if the dependency has been resolved.
func (l *Lazy[T]) IsResolved() bool {
	return l.resolved.Load()
}

// Provider resolves its dependency on every call. Whether the result is new
// depends on the dependency's lifecycle.
type Provider[T any] struct {
	resolver Resolver
}

// NewProvider creates a new provider.
func NewProvider[T any](r Resolver) *Provider[T] {
	return &Provider[T]{resolver: detach(r)}
}

// Provide resolves and returns the dependency.
func (p *Provider[T]) Provide() (T, error) {
	return Resolve[T](p.resolver)
}

// MustProvide resolves and returns the dependency, panicking on error.
func (p *Provider[T]) MustProvide() T {
	value, err := p.Provide()
	if err != nil {
		panic(fmt.Sprintf("provider %s failed: %v", TypeOf[T](), err))
	}

	return value
}
