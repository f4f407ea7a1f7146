// Package vecdberr defines the closed set of error kinds the vector database
// exposes at its boundaries, so callers can catch broadly (the Error type) or
// narrowly (errors.Is against a sentinel, or a Kind() switch).
package vecdberr

import "fmt"

// Kind identifies which of the documented failure modes an Error represents.
type Kind string

const (
	DimensionMismatch  Kind = "DimensionMismatch"
	DuplicateID        Kind = "DuplicateId"
	InvalidArgument    Kind = "InvalidArgument"
	CollectionExists   Kind = "CollectionExists"
	CollectionNotFound Kind = "CollectionNotFound"
	Deserialization    Kind = "Deserialization"
)

// Error is the structured error type returned by the index, collection,
// persistence and façade layers. The leaf distance package and the CLI
// helpers return plain errors.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches by Kind, and also matches the package-level sentinel values
// (ErrDimensionMismatch etc.) which carry the same Kind and no message.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// New constructs an *Error of the given kind with a formatted message.
func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap constructs an *Error of the given kind around an underlying cause.
func Wrap(kind Kind, cause error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// Sentinels for errors.Is comparisons against a bare kind, e.g.
// errors.Is(err, vecdberr.ErrDimensionMismatch).
var (
	ErrDimensionMismatch  = &Error{Kind: DimensionMismatch, Message: "dimension mismatch"}
	ErrDuplicateID        = &Error{Kind: DuplicateID, Message: "duplicate id"}
	ErrInvalidArgument    = &Error{Kind: InvalidArgument, Message: "invalid argument"}
	ErrCollectionExists   = &Error{Kind: CollectionExists, Message: "collection exists"}
	ErrCollectionNotFound = &Error{Kind: CollectionNotFound, Message: "collection not found"}
	ErrDeserialization    = &Error{Kind: Deserialization, Message: "deserialization failed"}
)

// Is reports whether err is a *Error of the given kind.
func Is(err error, kind Kind) bool {
	e, ok := err.(*Error)
	if !ok {
		return false
	}
	return e.Kind == kind
}

// KindOf extracts the Kind from err, or "" if err is not an *Error.
func KindOf(err error) Kind {
	if e, ok := err.(*Error); ok {
		return e.Kind
	}
	return ""
}
