package oneselect

import errors "gopkg.in/src-d/go-errors.v1"

var (
	// ErrMixedMainTables is returned when a Query is created over types
	// stored in different main tables.
	ErrMixedMainTables = errors.NewKind("types %v span main tables %s and %s")

	// ErrAlreadyExecuted is returned when Execute is called twice.
	ErrAlreadyExecuted = errors.NewKind("query already executed")

	// ErrRowWithoutID is returned when a result row has no instance id.
	ErrRowWithoutID = errors.NewKind("result row %d has no id")
)
