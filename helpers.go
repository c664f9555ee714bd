package ioc

import (
	"fmt"
)

// Register binds service type S to a constructor function or ConstructorSet.
//
//	reg, err := ioc.Register[Logger](c, NewConsoleLogger)
func Register[S any](c *Container, implementation any) (*Registration, error) {
	return c.Register(TypeOf[S](), implementation)
}

// MustRegister is Register that panics on error - use only during startup.
func MustRegister[S any](c *Container, implementation any) *Registration {
	reg, err := Register[S](c, implementation)
	if err != nil {
		panic(fmt.Sprintf("failed to register %s: %v", TypeOf[S](), err))
	}

	return reg
}

// RegisterFactory binds service type S to a typed factory.
func RegisterFactory[S any](c *Container, factory func(r Resolver) (S, error)) (*Registration, error) {
	if factory == nil {
		return c.RegisterFactory(TypeOf[S](), nil)
	}

	return c.RegisterFactory(TypeOf[S](), func(r Resolver) (any, error) {
		return factory(r)
	})
}

// RegisterSingleton registers a constructor and upgrades it to a singleton.
func RegisterSingleton[S any](c *Container, implementation any) error {
	reg, err := Register[S](c, implementation)
	if err != nil {
		return err
	}

	return reg.AsSingleton()
}

// RegisterPerScope registers a constructor and upgrades it to per-scope.
func RegisterPerScope[S any](c *Container, implementation any) error {
	reg, err := Register[S](c, implementation)
	if err != nil {
		return err
	}

	return reg.PerScope()
}

// RegisterInstance registers a pre-built value as a singleton. The container
// takes ownership and disposes it with its other singletons.
func RegisterInstance[S any](c *Container, instance S) error {
	reg, err := c.RegisterFactory(TypeOf[S](), func(Resolver) (any, error) {
		return instance, nil
	})
	if err != nil {
		return err
	}

	return reg.AsSingleton()
}

// Resolve with type safety. r is a Container, a Scope, or the Resolver given
// to a factory.
func Resolve[T any](r Resolver) (T, error) {
	var zero T

	t := TypeOf[T]()

	instance, err := r.Resolve(t)
	if err != nil {
		return zero, err
	}

	if instance == nil {
		return zero, nil
	}

	typed, ok := instance.(T)
	if !ok {
		return zero, errTypeMismatch(t, instance)
	}

	return typed, nil
}

// MustResolve resolves or panics - use only during startup.
func MustResolve[T any](r Resolver) T {
	instance, err := Resolve[T](r)
	if err != nil {
		panic(fmt.Sprintf("failed to resolve %s: %v", TypeOf[T](), err))
	}

	return instance
}

// Has reports whether service type S is registered.
func Has[S any](c *Container) bool {
	return c.Has(TypeOf[S]())
}
