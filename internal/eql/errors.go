package eql

import errors "gopkg.in/src-d/go-errors.v1"

var (
	// ErrInvalidSelection is returned when a selection string does not
	// follow the token grammar.
	ErrInvalidSelection = errors.NewKind("invalid selection %q: %s")

	// ErrInvalidQuery is returned by Validate for structurally malformed
	// query trees.
	ErrInvalidQuery = errors.NewKind("invalid query at %s: %s")
)
