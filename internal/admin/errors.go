package admin

import (
	"fmt"

	"cuelang.org/go/cue/token"
	errors "gopkg.in/src-d/go-errors.v1"
)

var (
	// ErrUnknownType is returned when a model references an undeclared type.
	ErrUnknownType = errors.NewKind("unknown type %q")

	// ErrUnknownTable is returned when a type or attribute references an
	// undeclared table.
	ErrUnknownTable = errors.NewKind("%s references unknown table %q")

	// ErrNoMainTable is returned for a concrete type without a main table.
	ErrNoMainTable = errors.NewKind("type %q resolves to no main table")

	// ErrChildAsMain is returned when a type names a child table as its
	// main table.
	ErrChildAsMain = errors.NewKind("type %q uses child table %q as main table")

	// ErrInheritanceCycle is returned when a parent chain loops.
	ErrInheritanceCycle = errors.NewKind("type %q inherits from itself")

	// ErrDuplicateID is returned when two types share a numeric id.
	ErrDuplicateID = errors.NewKind("type id %d is used by %q and %q")

	// ErrInvalidAttribute is returned for malformed attribute declarations.
	ErrInvalidAttribute = errors.NewKind("attribute %s: %s")
)

// LoadError is a model loading failure with the CUE source position.
type LoadError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}
