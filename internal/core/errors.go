package core

import (
	"fmt"
)

// Kind classifies the error conditions the blame engine can surface.
type Kind int

const (
	// NotFound: path does not exist at the target commit, or HEAD is unresolvable.
	NotFound Kind = iota
	// Invalid: malformed options (inverted window, zero-length buffer).
	Invalid
	// OOM: allocation failure; the partially built Blame is freed before surfacing.
	OOM
	// ObjectError: a blob/commit/tree could not be loaded from the object database.
	ObjectError
	// DiffError: the diff engine reported a fatal error.
	DiffError
)

func (k Kind) String() string {
	switch k {
	case NotFound:
		return "not_found"
	case Invalid:
		return "invalid"
	case OOM:
		return "oom"
	case ObjectError:
		return "object_error"
	case DiffError:
		return "diff_error"
	default:
		return "unknown"
	}
}

// Error is the typed error surfaced by the blame engine. The first one
// observed aborts the walk, except a NotFound from looking up a parent's
// path, which the Pass-Blame Engine treats as that parent contributing
// nothing.
type Error struct {
	Kind  Kind
	Cause error
}

func (e *Error) Error() string {
	if e.Cause == nil {
		return e.Kind.String()
	}
	return fmt.Sprintf("%s: %v", e.Kind, e.Cause)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Wrap builds a Kind-tagged Error, attaching cause as context.
func Wrap(kind Kind, cause error) *Error {
	return &Error{Kind: kind, Cause: cause}
}

// Newf builds a Kind-tagged Error from a formatted message.
func Newf(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Cause: fmt.Errorf(format, args...)}
}

// Is reports whether err is a *Error of the given Kind.
func Is(err error, kind Kind) bool {
	e, ok := err.(*Error)
	return ok && e.Kind == kind
}
