package query

import (
	"strconv"

	"github.com/efaps/efql/internal/eql"
	"github.com/efaps/efql/internal/ir"
	"github.com/efaps/efql/internal/oneselect"
)

// Plan is the compiled form of one query: a statement per main table.
type Plan struct {
	ID          string      `json:"id"`
	Fingerprint uint64      `json:"fingerprint"`
	Selects     []string    `json:"selects"`
	Statements  []Statement `json:"statements"`

	queries []*oneselect.Query
}

// Statement is one compiled SELECT.
type Statement struct {
	ID      string   `json:"id"`
	Types   []string `json:"types"`
	SQL     string   `json:"sql"`
	Aliases []string `json:"aliases"`
	FanOuts []FanOut `json:"fan_outs,omitempty"`
}

// FanOut names a child statement run per batch of parent ids.
type FanOut struct {
	Key  string `json:"key"`
	Type string `json:"type"`
}

// SQL returns the statement texts in plan order.
func (p *Plan) SQL() []string {
	out := make([]string, len(p.Statements))
	for i, st := range p.Statements {
		out[i] = st.SQL
	}
	return out
}

func newStatement(q *oneselect.Query, text string) (Statement, error) {
	aliases := q.Statement().Select().Aliases()
	id, err := ir.StatementID(text, aliases)
	if err != nil {
		return Statement{}, err
	}
	st := Statement{ID: id, SQL: text, Aliases: aliases}
	for _, t := range q.Types() {
		st.Types = append(st.Types, t.Name())
	}
	for _, lf := range q.LinkFroms() {
		st.FanOuts = append(st.FanOuts, FanOut{Key: lf.Key(), Type: lf.LinkType().Name()})
	}
	return st, nil
}

// planID hashes the fingerprint, the statement ids and the plan version.
func planID(fingerprint uint64, q *eql.Query, statements []Statement) (string, error) {
	ids := make(ir.IRArray, len(statements))
	for i, st := range statements {
		ids[i] = ir.IRString(st.ID)
	}
	selects := make(ir.IRArray, len(q.Selects))
	for i, s := range q.Selects {
		selects[i] = ir.IRString(s)
	}
	return ir.PlanID(ir.IRObject{
		"version":     ir.IRString(ir.PlanVersion),
		"compiler":    ir.IRString(ir.CompilerVersion),
		"fingerprint": ir.IRString(strconv.FormatUint(fingerprint, 10)),
		"selects":     selects,
		"statements":  ids,
	})
}
