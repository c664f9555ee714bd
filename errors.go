package ioc

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/xraph/go-utils/errs"
)

// Error is the structured error returned by the container. Errors match
// under errors.Is when their codes are equal, so the sentinels below classify
// any error produced by this package.
type Error = errs.Error

// =============================================================================
// ERROR CODES
// =============================================================================

const (
	// CodeUnregisteredService indicates a resolution for a type with no binding
	CodeUnregisteredService = "UNREGISTERED_SERVICE"

	// CodeNoConstructor indicates an implementation has no usable constructor
	CodeNoConstructor = "NO_CONSTRUCTOR"

	// CodeParameterUnresolvable indicates a constructor parameter could not be resolved
	CodeParameterUnresolvable = "PARAMETER_UNRESOLVABLE"

	// CodeServiceError indicates a constructor or factory returned an error
	CodeServiceError = "SERVICE_ERROR"

	// CodeDisposeFailed indicates an owned instance failed to release its resources
	CodeDisposeFailed = "DISPOSE_FAILED"

	// CodeCircularDependency indicates a service requires itself while being built
	CodeCircularDependency = "CIRCULAR_DEPENDENCY"

	// CodeTypeMismatch indicates a value is not assignable to the requested type
	CodeTypeMismatch = "TYPE_MISMATCH"

	// CodeLifetimeConflict indicates a registration was upgraded to two lifetimes
	CodeLifetimeConflict = "LIFETIME_CONFLICT"

	// CodeRegistrationReplaced indicates an upgrade through a handle whose binding was overwritten
	CodeRegistrationReplaced = "REGISTRATION_REPLACED"

	// CodeSealed indicates a registration attempt after resolution began
	CodeSealed = "SEALED"

	// CodeDisposed indicates an operation on a disposed container or scope
	CodeDisposed = "DISPOSED"
)

// =============================================================================
// SENTINEL ERRORS
// =============================================================================

// ErrUnregisteredService matches resolutions of types with no registration.
var ErrUnregisteredService = errs.NewError(CodeUnregisteredService, "service not registered", nil)

// ErrNoConstructor matches registrations whose implementation has no usable constructor.
var ErrNoConstructor = errs.NewError(CodeNoConstructor, "no constructor found", nil)

// ErrParameterUnresolvable matches failures to resolve a constructor parameter.
var ErrParameterUnresolvable = errs.NewError(CodeParameterUnresolvable, "constructor parameter unresolvable", nil)

// ErrServiceFailed matches constructor and factory failures.
var ErrServiceFailed = errs.NewError(CodeServiceError, "service construction failed", nil)

// ErrDisposeFailed matches failures of Dispose or Close on owned instances.
var ErrDisposeFailed = errs.NewError(CodeDisposeFailed, "service disposal failed", nil)

// ErrCircularDependency matches dependency cycles found during resolution or validation.
var ErrCircularDependency = errs.NewError(CodeCircularDependency, "circular dependency", nil)

// ErrTypeMismatch matches values not assignable to the requested type.
var ErrTypeMismatch = errs.NewError(CodeTypeMismatch, "type mismatch", nil)

// ErrLifetimeConflict is returned when a registration is upgraded to a second lifetime.
var ErrLifetimeConflict = errs.NewError(CodeLifetimeConflict, "registration lifetime already set", nil)

// ErrRegistrationReplaced is returned when upgrading through a stale handle.
var ErrRegistrationReplaced = errs.NewError(CodeRegistrationReplaced, "registration was replaced", nil)

// ErrSealed is returned when registering after the first resolution.
var ErrSealed = errs.NewError(CodeSealed, "container is sealed; register services before resolving", nil)

// ErrDisposed is returned when resolving from a disposed container or scope.
var ErrDisposed = errs.NewError(CodeDisposed, "lifetime has been disposed", nil)

// codes produced by this package, for telling them apart from foreign errs.Error values.
var ownCodes = map[string]bool{
	CodeUnregisteredService:   true,
	CodeNoConstructor:         true,
	CodeParameterUnresolvable: true,
	CodeServiceError:          true,
	CodeDisposeFailed:         true,
	CodeCircularDependency:    true,
	CodeTypeMismatch:          true,
	CodeLifetimeConflict:      true,
	CodeRegistrationReplaced:  true,
	CodeSealed:                true,
	CodeDisposed:              true,
}

// =============================================================================
// ERROR CONSTRUCTORS
// =============================================================================

func errUnregistered(t ServiceType) *errs.Error {
	return errs.NewError(
		CodeUnregisteredService,
		fmt.Sprintf("service '%s' not registered", t),
		nil,
	).WithContext("service", t.String()).(*errs.Error)
}

func errNoConstructor(impl string, reason string) *errs.Error {
	return errs.NewError(
		CodeNoConstructor,
		fmt.Sprintf("no constructor found for %s: %s", impl, reason),
		nil,
	).WithContext("implementation", impl).(*errs.Error)
}

func errParameterUnresolvable(ctor string, index int, param ServiceType, cause error) *errs.Error {
	return errs.NewError(
		CodeParameterUnresolvable,
		fmt.Sprintf("%s: parameter %d (%s) unresolvable", ctor, index, param),
		cause,
	).WithContext("constructor", ctor).
		WithContext("parameter", param.String()).(*errs.Error)
}

func errService(t ServiceType, operation string, cause error) *errs.Error {
	return errs.NewError(
		CodeServiceError,
		fmt.Sprintf("service '%s' error during %s", t, operation),
		cause,
	).WithContext("service", t.String()).
		WithContext("operation", operation).(*errs.Error)
}

func errCircular(cycle []ServiceType) *errs.Error {
	names := make([]string, len(cycle))
	for i, t := range cycle {
		names[i] = t.String()
	}

	return errs.NewError(
		CodeCircularDependency,
		fmt.Sprintf("circular dependency detected: %s", strings.Join(names, " -> ")),
		nil,
	).WithContext("cycle", names).(*errs.Error)
}

func errTypeMismatch(want ServiceType, actual any) *errs.Error {
	return errs.NewError(
		CodeTypeMismatch,
		fmt.Sprintf("type mismatch: %T is not assignable to %s", actual, want),
		nil,
	).WithContext("service", want.String()).
		WithContext("actual_type", fmt.Sprintf("%T", actual)).(*errs.Error)
}

func errResultMismatch(want ServiceType, result reflect.Type, ctor string) *errs.Error {
	return errs.NewError(
		CodeTypeMismatch,
		fmt.Sprintf("%s returns %s, which does not implement %s", ctor, result, want),
		nil,
	).WithContext("service", want.String()).
		WithContext("implementation", ctor).(*errs.Error)
}

func errLifetimeConflict(t ServiceType, current, requested Lifecycle) *errs.Error {
	return errs.NewError(
		CodeLifetimeConflict,
		fmt.Sprintf("service '%s' already registered as %s, cannot change to %s", t, current, requested),
		nil,
	).WithContext("service", t.String()).(*errs.Error)
}

func errReplaced(t ServiceType) *errs.Error {
	return errs.NewError(
		CodeRegistrationReplaced,
		fmt.Sprintf("service '%s' was registered again; upgrade the newer registration", t),
		nil,
	).WithContext("service", t.String()).(*errs.Error)
}

func errDisposeFailed(t ServiceType, cause error) *errs.Error {
	return errs.NewError(
		CodeDisposeFailed,
		fmt.Sprintf("failed to dispose %s", t),
		cause,
	).WithContext("service", t.String()).(*errs.Error)
}
