package harness

import "github.com/efaps/efql/internal/query"

// Result is the outcome of one scenario.
type Result struct {
	// Pass is true when every assertion held.
	Pass bool `json:"pass"`

	// SQL and Aliases hold one entry per compiled statement.
	SQL     []string   `json:"sql"`
	Aliases [][]string `json:"aliases"`

	// Rows are set for seeded scenarios.
	Rows []query.Row `json:"-"`

	// Err is the compile or execution error, if any.
	Err error `json:"-"`

	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a passing result.
func NewResult() *Result {
	return &Result{Pass: true, Errors: []string{}}
}

// AddError records a failed check and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
