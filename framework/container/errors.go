package container

import (
	"errors"
	"strconv"
	"strings"
)

var (
	// ErrUnbound is matched by every UnboundIdentifierError.
	ErrUnbound = errors.New("container: unbound identifier")

	// ErrCyclicAlias is matched by every CyclicAliasError.
	ErrCyclicAlias = errors.New("container: cyclic alias")

	// ErrTypeMismatch is wrapped by Resolve when the resolved value is not of
	// the requested type.
	ErrTypeMismatch = errors.New("container: type mismatch")

	// ErrExtendConflict is matched by every ExtendConflictError.
	ErrExtendConflict = errors.New("container: instance changed while extending")
)

// UnboundIdentifierError is returned by Make when an abstract has neither a
// cached instance nor a binding.
type UnboundIdentifierError struct {
	// Abstract is the identifier the caller asked for.
	Abstract string
	// Canonical is Abstract after alias resolution.
	Canonical string
}

// Error implements the error interface.
func (e *UnboundIdentifierError) Error() string {
	// Example: container: no binding registered for "cache"
	msg := "container: no binding registered for " + strconv.Quote(e.Abstract)
	if e.Canonical != "" && e.Canonical != e.Abstract {
		msg += " (alias of " + strconv.Quote(e.Canonical) + ")"
	}
	return msg
}

// Is reports whether target is ErrUnbound.
func (e *UnboundIdentifierError) Is(target error) bool { return target == ErrUnbound }

// CyclicAliasError is returned by Alias when the new mapping would close a loop.
type CyclicAliasError struct {
	Alias    string
	Abstract string
	// Path is the chain walked from Abstract back to Alias.
	Path []string
}

// Error implements the error interface.
func (e *CyclicAliasError) Error() string {
	if e.Alias == e.Abstract {
		return "container: " + strconv.Quote(e.Abstract) + " is aliased to itself"
	}
	return "container: aliasing " + strconv.Quote(e.Alias) + " to " + strconv.Quote(e.Abstract) +
		" creates a cycle (" + strings.Join(e.Path, " -> ") + ")"
}

// Is reports whether target is ErrCyclicAlias.
func (e *CyclicAliasError) Is(target error) bool { return target == ErrCyclicAlias }

// ExtendConflictError is returned by Extend when the cached instance was
// replaced during every attempt to decorate it.
type ExtendConflictError struct {
	Abstract string
	Attempts int
}

// Error implements the error interface.
func (e *ExtendConflictError) Error() string {
	return "container: " + strconv.Quote(e.Abstract) + " changed while extending (" +
		strconv.Itoa(e.Attempts) + " attempts)"
}

// Is reports whether target is ErrExtendConflict.
func (e *ExtendConflictError) Is(target error) bool { return target == ErrExtendConflict }
