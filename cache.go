package ioc

import (
	"fmt"
	"io"
	"sync"

	"github.com/xraph/go-utils/di"
	"go.uber.org/multierr"
)

// Disposable is implemented by services that release resources when the
// container or scope owning them is disposed. Instances implementing
// io.Closer are released through Close instead.
type Disposable = di.Disposable

// flight is a build in progress. instance and err are written before done
// is closed.
type flight struct {
	key      ServiceType
	owner    *builder
	done     chan struct{}
	instance any
	err      error
}

// instanceCache is a get-or-create store of constructed instances. It owns
// every instance it created and releases them on dispose.
type instanceCache struct {
	instances map[ServiceType]any
	order     []ServiceType // creation order, for reverse disposal
	flights   map[ServiceType]*flight
	waits     *waitGraph
	disposed  bool
	mu        sync.RWMutex
}

// newInstanceCache creates a cache. Caches that can wait on each other must
// share waits.
func newInstanceCache(waits *waitGraph) *instanceCache {
	return &instanceCache{
		instances: make(map[ServiceType]any),
		flights:   make(map[ServiceType]*flight),
		waits:     waits,
	}
}

// lookup returns a cached instance.
func (c *instanceCache) lookup(key ServiceType) (any, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.disposed {
		return nil, false, ErrDisposed
	}

	instance, ok := c.instances[key]

	return instance, ok, nil
}

// getOrCreate returns the instance cached under key, calling build at most
// once per key. Concurrent callers for a missing key share a single build and
// all observe its result. Failed builds are not cached.
//
// r identifies the caller's resolution. Joining a build that is, directly or
// through other waiting builds, waiting on r fails with ErrCircularDependency
// instead of blocking forever. r may be nil.
func (c *instanceCache) getOrCreate(r *resolution, key ServiceType, build func() (any, error)) (any, error) {
	// Fast path
	if instance, ok, err := c.lookup(key); err != nil || ok {
		return instance, err
	}

	c.mu.Lock()

	if c.disposed {
		c.mu.Unlock()

		return nil, ErrDisposed
	}

	if instance, ok := c.instances[key]; ok {
		c.mu.Unlock()

		return instance, nil
	}

	if f, ok := c.flights[key]; ok {
		c.mu.Unlock()

		if err := c.waits.wait(r, f); err != nil {
			return nil, err
		}

		return f.instance, f.err
	}

	f := &flight{key: key, owner: r.builder(), done: make(chan struct{})}
	c.flights[key] = f
	c.mu.Unlock()

	defer func() {
		// Waiters must not hang on a build that panicked.
		if p := recover(); p != nil {
			f.instance, f.err = nil, errService(key, "build", fmt.Errorf("panic: %v", p))
			c.land(f)
			panic(p)
		}
	}()

	f.instance, f.err = build()
	c.land(f)

	return f.instance, f.err
}

// land publishes the result of f and wakes its waiters.
func (c *instanceCache) land(f *flight) {
	var orphan any

	c.mu.Lock()
	delete(c.flights, f.key)

	if f.err == nil {
		if c.disposed {
			// Disposed while building: nobody else will ever release it.
			orphan = f.instance
			f.instance, f.err = nil, ErrDisposed
		} else {
			c.instances[f.key] = f.instance
			c.order = append(c.order, f.key)
		}
	}
	c.mu.Unlock()

	if orphan != nil {
		f.err = multierr.Append(f.err, release(f.key, orphan))
	}

	close(f.done)
}

// has reports whether key has been constructed.
func (c *instanceCache) has(key ServiceType) bool {
	_, ok, _ := c.lookup(key)

	return ok
}

func (c *instanceCache) isDisposed() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.disposed
}

// dispose releases all owned instances in reverse creation order. Every
// instance is attempted; failures are combined into the returned error.
// Subsequent calls are no-ops.
func (c *instanceCache) dispose() error {
	c.mu.Lock()

	if c.disposed {
		c.mu.Unlock()

		return nil
	}

	c.disposed = true
	instances := c.instances
	order := c.order
	c.instances = nil
	c.order = nil
	c.mu.Unlock()

	var err error

	for i := len(order) - 1; i >= 0; i-- {
		key := order[i]
		err = multierr.Append(err, release(key, instances[key]))
	}

	return err
}

// release disposes a single instance if it supports it.
func release(key ServiceType, instance any) error {
	var err error

	switch v := instance.(type) {
	case Disposable:
		err = v.Dispose()
	case io.Closer:
		err = v.Close()
	}

	if err != nil {
		return errDisposeFailed(key, err)
	}

	return nil
}
