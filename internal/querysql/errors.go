package querysql

import errors "gopkg.in/src-d/go-errors.v1"

var (
	// ErrNestingTooDeep is returned when nested queries recurse past
	// Options.MaxDepth.
	ErrNestingTooDeep = errors.NewKind("nested queries exceed the maximum depth of %d")

	// ErrNestedWithoutTypes is returned for a nested query naming no types.
	ErrNestedWithoutTypes = errors.NewKind("nested query for %s names no types")

	// ErrAmbiguousAttribute is returned under ErrorOnAmbiguity when two
	// candidate types resolve one name to different attributes.
	ErrAmbiguousAttribute = errors.NewKind("attribute %q is ambiguous: %s and %s")

	// ErrNoMainTable is returned when none of the statement's types has a
	// main table to select from.
	ErrNoMainTable = errors.NewKind("types %v resolve to no main table")
)
