package ioc

import (
	"errors"
	"fmt"
	"reflect"
	"runtime"
	"strings"
	"unicode"
	"unicode/utf8"
)

var (
	errorType    = reflect.TypeOf((*error)(nil)).Elem()
	resolverType = reflect.TypeOf((*Resolver)(nil)).Elem()
)

// ConstructorSet lists the candidate constructors of one implementation.
// The first exported function wins; unexported ones are used only when no
// exported candidate exists.
//
// Example:
//
//	ioc.Register[Store](c, ioc.Constructors(newMemoryStore, NewStore))
type ConstructorSet []any

// Constructors groups candidate constructor functions.
func Constructors(fns ...any) ConstructorSet {
	return ConstructorSet(fns)
}

// plan is the compiled construction recipe for one implementation.
type plan struct {
	name     string // constructor name for diagnostics
	fn       reflect.Value
	params   []reflect.Type
	result   reflect.Type
	hasError bool
}

// compile selects a constructor for implementation and analyzes its
// signature. No instance is created.
func compile(implementation any) (*plan, error) {
	candidates, ok := implementation.(ConstructorSet)
	if !ok {
		candidates = ConstructorSet{implementation}
	}

	fn, err := selectConstructor(candidates, describe(implementation))
	if err != nil {
		return nil, err
	}

	return analyze(fn)
}

// selectConstructor picks the first exported function, falling back to the
// first unexported one.
func selectConstructor(candidates ConstructorSet, impl string) (reflect.Value, error) {
	var fallback reflect.Value

	for _, candidate := range candidates {
		if candidate == nil {
			continue
		}

		v := reflect.ValueOf(candidate)
		if v.Kind() != reflect.Func || v.IsNil() {
			continue
		}

		if isExportedFunc(v) {
			return v, nil
		}

		if !fallback.IsValid() {
			fallback = v
		}
	}

	if fallback.IsValid() {
		return fallback, nil
	}

	return reflect.Value{}, errNoConstructor(impl, "expected a constructor function")
}

// analyze inspects a constructor function: func(deps...) T or func(deps...) (T, error).
func analyze(fn reflect.Value) (*plan, error) {
	fnType := fn.Type()
	name := funcName(fn)

	if fnType.IsVariadic() {
		return nil, errNoConstructor(name, "variadic constructors are not supported")
	}

	p := &plan{
		name:   name,
		fn:     fn,
		params: make([]reflect.Type, fnType.NumIn()),
	}

	for i := 0; i < fnType.NumIn(); i++ {
		p.params[i] = fnType.In(i)
	}

	switch fnType.NumOut() {
	case 1:
		if fnType.Out(0) == errorType {
			return nil, errNoConstructor(name, "constructor must return a value")
		}
	case 2:
		if fnType.Out(1) != errorType {
			return nil, errNoConstructor(name, "second return value must be error")
		}

		p.hasError = true
	default:
		return nil, errNoConstructor(name, fmt.Sprintf("constructor must return (T) or (T, error), got %d values", fnType.NumOut()))
	}

	p.result = fnType.Out(0)

	return p, nil
}

// dependencies returns the service types the plan resolves, excluding the
// injected Resolver itself.
func (p *plan) dependencies() []ServiceType {
	deps := make([]ServiceType, 0, len(p.params))
	for _, param := range p.params {
		if param == resolverType {
			continue
		}
		deps = append(deps, ServiceType{typ: param})
	}

	return deps
}

// build resolves every parameter through r, depth first, then calls the
// constructor.
func (p *plan) build(r Resolver) (any, error) {
	args := make([]reflect.Value, len(p.params))

	for i, param := range p.params {
		if param == resolverType {
			injected := detach(r)
			args[i] = reflect.ValueOf(&injected).Elem()

			continue
		}

		key := ServiceType{typ: param}

		resolved, err := r.Resolve(key)
		if err != nil {
			return nil, errParameterUnresolvable(p.name, i, key, err)
		}

		arg, err := convert(resolved, param)
		if err != nil {
			return nil, errParameterUnresolvable(p.name, i, key, err)
		}

		args[i] = arg
	}

	results := p.fn.Call(args)

	if p.hasError && !results[1].IsNil() {
		return nil, results[1].Interface().(error)
	}

	return results[0].Interface(), nil
}

// convert casts a resolved instance to the parameter's static type.
func convert(instance any, to reflect.Type) (reflect.Value, error) {
	if instance == nil {
		switch to.Kind() {
		case reflect.Interface, reflect.Ptr, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
			return reflect.Zero(to), nil
		default:
			return reflect.Value{}, errTypeMismatch(ServiceType{typ: to}, instance)
		}
	}

	v := reflect.ValueOf(instance)

	switch {
	case v.Type().AssignableTo(to):
		if to.Kind() == reflect.Interface {
			out := reflect.New(to).Elem()
			out.Set(v)

			return out, nil
		}

		return v, nil
	case v.Type().ConvertibleTo(to) && v.Kind() == to.Kind():
		return v.Convert(to), nil
	default:
		return reflect.Value{}, errTypeMismatch(ServiceType{typ: to}, instance)
	}
}

// isExportedFunc reports whether fn is a named, exported function or method.
// Closures are treated as unexported.
func isExportedFunc(fn reflect.Value) bool {
	name := funcName(fn)
	if i := strings.LastIndex(name, "."); i >= 0 {
		name = name[i+1:]
	}

	r, _ := utf8.DecodeRuneInString(name)

	return unicode.IsUpper(r)
}

// funcName returns the runtime name of fn without generic brackets or the
// method value suffix.
func funcName(fn reflect.Value) string {
	f := runtime.FuncForPC(fn.Pointer())
	if f == nil {
		return fn.Type().String()
	}

	name := strings.TrimSuffix(f.Name(), "-fm")
	if i := strings.Index(name, "["); i >= 0 {
		name = name[:i]
	}

	return name
}

// describe names an implementation for error messages.
func describe(implementation any) string {
	if implementation == nil {
		return "<nil>"
	}

	if set, ok := implementation.(ConstructorSet); ok {
		return fmt.Sprintf("constructor set of %d", len(set))
	}

	return reflect.TypeOf(implementation).String()
}

// isServiceError reports whether err already carries a code from this package.
func isServiceError(err error) bool {
	var e *Error

	return errors.As(err, &e) && ownCodes[e.Code]
}
