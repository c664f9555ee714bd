package ioc

import (
	"reflect"
)

// ServiceType identifies a service by its Go type. It is comparable and is
// the key for registrations and cached instances.
type ServiceType struct {
	typ reflect.Type
}

// TypeOf returns the ServiceType for T. Interface types are supported:
//
//	ioc.TypeOf[Logger]()
func TypeOf[T any]() ServiceType {
	return ServiceType{typ: reflect.TypeOf((*T)(nil)).Elem()}
}

// ServiceTypeOf wraps an existing reflect.Type.
func ServiceTypeOf(t reflect.Type) ServiceType {
	return ServiceType{typ: t}
}

// Type returns the underlying reflect.Type.
func (s ServiceType) Type() reflect.Type {
	return s.typ
}

// IsZero reports whether s identifies no type.
func (s ServiceType) IsZero() bool {
	return s.typ == nil
}

// String returns the Go type name.
func (s ServiceType) String() string {
	if s.typ == nil {
		return "<nil>"
	}

	return s.typ.String()
}
