// Package admin provides the read-only admin model the query compiler works
// against: types arranged in a single-inheritance hierarchy, the physical
// tables they are stored in, their attributes, status groups and
// classifications.
//
// A Registry is an immutable snapshot. It is built once (from CUE documents
// via LoadDir/LoadString, or programmatically via Builder) and then shared
// freely across goroutines. Nothing in this package mutates a Registry after
// Build returns.
//
// # Storage mapping
//
// Every concrete type resolves to exactly one main table. Several types may
// share a main table; the table then carries a discriminator column (the
// "type column") holding the numeric type id of each row. Attributes that do
// not live in the main table live in child tables, joined 1:1 by ID.
// Classifications are types whose rows reference a classified instance
// through a link attribute and are reached with an outer join.
//
// Attribute lookup by name searches the type and then its ancestor chain.
package admin
