// Package harness runs YAML query scenarios against an admin model and
// checks the compiled SQL and, for seeded scenarios, the returned rows.
//
// A scenario names a CUE model, an optional list of seed statements, the
// compiler options and one query document:
//
//	name: ticket-by-status
//	description: status keys compile to status ids
//	model: ../model
//	query:
//	  types: [Ticket]
//	  select: [attribute[Title]]
//	  where:
//	    - attribute: Status
//	      value: Open
//	assertions:
//	  - type: sql_contains
//	    value: "T0.STATUSID = 42"
//
// Scenarios without seed statements are only compiled. Seeded scenarios
// run in a fresh in-memory SQLite database holding the model's tables.
//
// RunWithGolden additionally snapshots the statements and rows into
// testdata/golden/<name>.golden; regenerate with
//
//	go test ./internal/harness -update
package harness
