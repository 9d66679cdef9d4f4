// Package query compiles and executes eql queries against the admin model.
//
// An Executor validates a query, resolves and expands its types, groups
// them by main table and compiles one oneselect.Query per group. Compile
// returns the resulting Plan without touching the database; Execute runs
// every statement, including linkfrom and attributeset fan-outs, and
// returns one Row per result instance.
//
// Executors hold no per-call state and are safe for concurrent use.
package query
