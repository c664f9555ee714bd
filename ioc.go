// Package ioc is an inversion-of-control container keyed by Go types.
//
// Services are registered against a service type (usually an interface)
// with either a constructor function, whose parameters are resolved from the
// container, or a Factory. Every registration starts out transient and can be
// upgraded once to a singleton or a per-scope lifetime:
//
//	c := ioc.New()
//	defer c.Dispose()
//
//	reg, _ := ioc.Register[Logger](c, NewConsoleLogger)
//	_ = reg.AsSingleton()
//
//	reg, _ = ioc.Register[Worker](c, NewWorker) // NewWorker(Logger) *worker
//	_ = reg.PerScope()
//
//	scope := c.CreateScope()
//	defer scope.Dispose()
//
//	w, err := ioc.Resolve[Worker](scope)
//
// Registration must finish before resolution starts: the first Resolve seals
// the container and later registrations fail with ErrSealed.
package ioc
