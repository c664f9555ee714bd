package ioc

import (
	"sort"
)

// ServiceInfo contains diagnostic information about a registration.
type ServiceInfo struct {
	Service        ServiceType
	Lifecycle      Lifecycle
	Implementation string
	Dependencies   []ServiceType
	// Cached is true once the container's own cache holds an instance.
	Cached bool
}

// Inspect returns diagnostic information about a service.
// The second result is false if the service is not registered.
func (c *Container) Inspect(t ServiceType) (ServiceInfo, bool) {
	b, ok := c.registry.peek(t)
	if !ok {
		return ServiceInfo{Service: t}, false
	}

	return ServiceInfo{
		Service:        t,
		Lifecycle:      b.lifecycle,
		Implementation: b.implementation,
		Dependencies:   b.deps,
		Cached:         c.root.cache.has(t),
	}, true
}

// Services returns information about every registration, sorted by type name.
func (c *Container) Services() []ServiceInfo {
	types := c.registry.types()
	infos := make([]ServiceInfo, 0, len(types))

	for _, t := range types {
		if info, ok := c.Inspect(t); ok {
			infos = append(infos, info)
		}
	}

	sort.Slice(infos, func(i, j int) bool {
		return infos[i].Service.String() < infos[j].Service.String()
	})

	return infos
}

// FindByLifecycle returns registrations with the given lifecycle.
func (c *Container) FindByLifecycle(lifecycle Lifecycle) []ServiceInfo {
	var results []ServiceInfo

	for _, info := range c.Services() {
		if info.Lifecycle == lifecycle {
			results = append(results, info)
		}
	}

	return results
}
