package ioc

import (
	"sync"
	"sync/atomic"
)

// Lifecycle is the caching strategy of a registration.
type Lifecycle int

const (
	// Transient services are built on every resolution.
	Transient Lifecycle = iota
	// Singleton services are built once per container and shared by all scopes.
	Singleton
	// PerScope services are built once per scope. Resolved on the container
	// itself they behave like singletons.
	PerScope
)

// String returns the lifecycle name.
func (l Lifecycle) String() string {
	switch l {
	case Singleton:
		return "singleton"
	case PerScope:
		return "per-scope"
	default:
		return "transient"
	}
}

// binding is the tagged description of how a service type is built.
// Bindings are never mutated; upgrades install a copy.
type binding struct {
	lifecycle      Lifecycle
	build          Factory
	implementation string
	deps           []ServiceType // nil when built by an opaque factory
}

func (b *binding) with(lifecycle Lifecycle) *binding {
	clone := *b
	clone.lifecycle = lifecycle

	return &clone
}

// registry maps service types to bindings. It is writable until the first
// resolution and read-only afterwards.
type registry struct {
	bindings map[ServiceType]*binding
	order    []ServiceType
	sealed   atomic.Bool
	mu       sync.RWMutex
}

func newRegistry() *registry {
	return &registry{
		bindings: make(map[ServiceType]*binding),
	}
}

// install stores b under t, replacing any prior binding.
func (r *registry) install(t ServiceType, b *binding) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.sealed.Load() {
		return ErrSealed
	}

	if _, exists := r.bindings[t]; !exists {
		r.order = append(r.order, t)
	}

	r.bindings[t] = b

	return nil
}

// replace swaps old for b under t if old is still current.
func (r *registry) replace(t ServiceType, old, b *binding) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.sealed.Load() {
		return ErrSealed
	}

	if r.bindings[t] != old {
		return errReplaced(t)
	}

	r.bindings[t] = b

	return nil
}

// lookup returns the binding for t and seals the table.
func (r *registry) lookup(t ServiceType) (*binding, bool) {
	if !r.sealed.Load() {
		r.seal()
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	b, ok := r.bindings[t]

	return b, ok
}

// peek returns the binding for t without sealing.
func (r *registry) peek(t ServiceType) (*binding, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	b, ok := r.bindings[t]

	return b, ok
}

func (r *registry) seal() {
	// Taking the write lock orders sealing after any in-progress install.
	r.mu.Lock()
	r.sealed.Store(true)
	r.mu.Unlock()
}

// types returns registered service types in registration order.
func (r *registry) types() []ServiceType {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]ServiceType, len(r.order))
	copy(out, r.order)

	return out
}

// Registration is the handle returned by Register. It can upgrade the
// binding it created to a cached lifetime exactly once.
type Registration struct {
	service  ServiceType
	registry *registry
	current  *binding
	mu       sync.Mutex
}

// Service returns the registered service type.
func (h *Registration) Service() ServiceType {
	return h.service
}

// Lifecycle returns the lifecycle currently installed by this handle.
func (h *Registration) Lifecycle() Lifecycle {
	h.mu.Lock()
	defer h.mu.Unlock()

	return h.current.lifecycle
}

// AsSingleton caches the service for the lifetime of the container.
func (h *Registration) AsSingleton() error {
	return h.upgrade(Singleton)
}

// PerScope caches the service once per scope.
func (h *Registration) PerScope() error {
	return h.upgrade(PerScope)
}

// upgrade re-installs the original factory under a cached lifecycle. Asking
// for the lifecycle already set is a no-op; asking for a different one fails.
func (h *Registration) upgrade(lifecycle Lifecycle) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	switch h.current.lifecycle {
	case lifecycle:
		return nil
	case Transient:
	default:
		return errLifetimeConflict(h.service, h.current.lifecycle, lifecycle)
	}

	next := h.current.with(lifecycle)
	if err := h.registry.replace(h.service, h.current, next); err != nil {
		return err
	}

	h.current = next

	return nil
}
