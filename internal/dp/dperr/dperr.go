// Package dperr implements the compiler's tagged error taxonomy: every
// fallible compiler operation returns an error classified by one of a
// closed set of Kinds, checkable with errors.Is/errors.As rather than by
// matching on message text.
package dperr

import (
	"errors"
	"fmt"
)

// Kind is the closed set of error kinds a fallible compiler operation can
// report.
type Kind uint8

const (
	// Syntax is a parse or lex failure; scope is upstream of this
	// compiler and is passed through unchanged.
	Syntax Kind = iota
	// TypeError is a unification failure, use of an Invalid value, or a
	// reference/non-reference flavor mismatch.
	TypeError
	// NameResolution is an unknown identifier, duplicate definition, or
	// ambiguous import.
	NameResolution
	// PreImageError is a compile-time-known input that is absent, or a
	// compile-time side effect that failed.
	PreImageError
	// LinkError is an opcode trace mismatch, a duplicate command-set
	// major version, or an opcode lookup on an un-recalculated mapping.
	LinkError
	// Internal is an invariant that should never trip; Error.Invariant
	// names which one.
	Internal
)

// String implements fmt.Stringer.
func (k Kind) String() string {
	switch k {
	case Syntax:
		return "Syntax"
	case TypeError:
		return "TypeError"
	case NameResolution:
		return "NameResolution"
	case PreImageError:
		return "PreImageError"
	case LinkError:
		return "LinkError"
	case Internal:
		return "Internal"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

// sentinel is the target errors.Is compares against for each Kind, so
// errors.Is(err, dperr.Sentinel(dperr.TypeError)) works regardless of the
// wrapped message.
type sentinel struct{ kind Kind }

func (s *sentinel) Error() string { return s.kind.String() }

var sentinels = map[Kind]*sentinel{
	Syntax:         {Syntax},
	TypeError:      {TypeError},
	NameResolution: {NameResolution},
	PreImageError:  {PreImageError},
	LinkError:      {LinkError},
	Internal:       {Internal},
}

// Sentinel returns the canonical target for errors.Is(err, Sentinel(kind)).
func Sentinel(kind Kind) error { return sentinels[kind] }

// Error is a dperr-classified error: a Kind, a human message, an optional
// wrapped cause, and, for Internal errors, the name of the invariant that
// tripped.
type Error struct {
	Kind      Kind
	Message   string
	Invariant string
	Cause     error

	// File/Line record the last executed (file, line) pair when raised
	// from the pre-image interpreter, so a PreImageError can carry a
	// source location when one is available.
	File string
	Line int
}

// Error implements the error interface. A wrapped Cause's message is
// appended after the error's own.
func (e *Error) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Kind, e.Message)
	if e.Invariant != "" {
		msg = fmt.Sprintf("%s (invariant: %s)", msg, e.Invariant)
	}
	if e.File != "" {
		msg = fmt.Sprintf("%s [%s:%d]", msg, e.File, e.Line)
	}
	if e.Cause != nil {
		msg = fmt.Sprintf("%s: %s", msg, e.Cause.Error())
	}
	return msg
}

// Unwrap lets errors.Is/errors.As see through to Cause.
func (e *Error) Unwrap() error { return e.Cause }

// Is reports whether target is the sentinel for e.Kind, so
// errors.Is(err, dperr.Sentinel(dperr.LinkError)) matches any *Error of
// that kind.
func (e *Error) Is(target error) bool {
	s, ok := target.(*sentinel)
	return ok && s.kind == e.Kind
}

// New returns a dperr.Error of the given kind with a formatted message.
func New(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap returns a dperr.Error of the given kind wrapping cause.
func Wrap(kind Kind, cause error, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// Internalf returns an Internal error naming the invariant that tripped.
func Internalf(invariant, format string, args ...interface{}) *Error {
	return &Error{Kind: Internal, Invariant: invariant, Message: fmt.Sprintf(format, args...)}
}

// WithLocation attaches a (file, line) pair to e and returns it, used by the
// pre-image interpreter to locate a PreImageError.
func (e *Error) WithLocation(file string, line int) *Error {
	c := *e
	c.File, c.Line = file, line
	return &c
}

// KindOf returns the Kind of err if it (or something it wraps) is a
// *dperr.Error, and false otherwise.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return 0, false
}
