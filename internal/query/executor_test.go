package query

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/opentracing/opentracing-go/mocktracer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/efaps/efql/internal/admin"
	"github.com/efaps/efql/internal/eql"
	"github.com/efaps/efql/internal/ir"
	"github.com/efaps/efql/internal/querysql"
	"github.com/efaps/efql/internal/store"
	"github.com/efaps/efql/internal/testutil"
)

func seededStore(t *testing.T, reg *admin.Registry) *store.Store {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "efql.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	ctx := context.Background()
	require.NoError(t, s.ApplySchema(ctx, reg.DDL()))
	for _, stmt := range testutil.Seed {
		_, err := s.Exec(ctx, stmt)
		require.NoError(t, err)
	}
	return s
}

func newExecutor(t *testing.T, options ...Option) (*Executor, *store.Store) {
	t.Helper()
	reg := testutil.Registry(t)
	return NewExecutor(reg, querysql.Options{Logger: testutil.DiscardLogger()}, options...), seededStore(t, reg)
}

func element(attribute string, op eql.Op, values ...ir.IRValue) *eql.ElementTerm {
	return &eql.ElementTerm{Element: eql.Element{Attribute: attribute, Op: op, Values: values}}
}

func oids(rows []Row) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r.OID()
	}
	return out
}

func TestExecute_StatusFilter(t *testing.T) {
	e, db := newExecutor(t)
	q := &eql.Query{
		Types:   []string{"Ticket"},
		Selects: []string{"attribute[Title]", "status.label"},
		Where:   &eql.Where{Terms: []eql.Term{element("Status", eql.OpEqual, ir.IRString("Open"))}},
	}

	res, err := e.Execute(context.Background(), db, q)
	require.NoError(t, err)

	assert.Equal(t, []string{"SELECT T0.ID, T0.TITLE, T0.STATUSID FROM T_TICKET T0 WHERE T0.STATUSID = 42 ORDER BY T0.ID"}, res.SQL)
	assert.Equal(t, []string{"200.10", "200.12"}, oids(res.Rows))
	assert.Equal(t, []any{"Broken printer", "Open"}, res.Rows[0].Values)
	assert.Equal(t, []any{"No owner", "Open"}, res.Rows[1].Values)
	assert.Len(t, res.Instances, 2)
	assert.NotEmpty(t, res.PlanID)
}

func TestExecute_ChildTypes(t *testing.T) {
	e, db := newExecutor(t)

	res, err := e.Execute(context.Background(), db, &eql.Query{Types: []string{"Person"}, Selects: []string{"type"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"100.1", "101.2", "100.3"}, oids(res.Rows))
	assert.Equal(t, "Employee", res.Rows[1].Values[0])

	res, err = e.Execute(context.Background(), db, &eql.Query{Types: []string{"Person"}, ExcludeChildTypes: true})
	require.NoError(t, err)
	assert.Equal(t, []string{"SELECT T0.ID, T0.TYPEID FROM T_PERSON T0 WHERE T0.TYPEID IN (100) ORDER BY T0.ID"}, res.SQL)
	assert.Equal(t, []string{"100.1", "100.3"}, oids(res.Rows))
}

func TestExecute_GroupsByMainTable(t *testing.T) {
	e, db := newExecutor(t)
	q := &eql.Query{Types: []string{"Ticket", "Person"}, Selects: []string{"oid"}}

	res, err := e.Execute(context.Background(), db, q)
	require.NoError(t, err)
	require.Len(t, res.SQL, 2)
	assert.Equal(t, "SELECT T0.ID FROM T_TICKET T0 ORDER BY T0.ID", res.SQL[0])
	assert.Equal(t, "SELECT T0.ID, T0.TYPEID FROM T_PERSON T0 WHERE T0.TYPEID IN (100,101) ORDER BY T0.ID", res.SQL[1])
	assert.Equal(t, []string{"200.10", "200.11", "200.12", "100.1", "101.2", "100.3"}, oids(res.Rows))
	assert.Equal(t, []any{"101.2"}, res.Rows[4].Values)
}

func TestExecute_NestedQuery(t *testing.T) {
	e, db := newExecutor(t)
	q := &eql.Query{
		Types:   []string{"Ticket"},
		Selects: []string{"attribute[Title]"},
		Where: &eql.Where{Terms: []eql.Term{
			&eql.ElementTerm{Element: eql.Element{
				Attribute: "Owner",
				Op:        eql.OpIn,
				Nested: &eql.NestedQuery{
					Types: []string{"Person"},
					Where: &eql.Where{Terms: []eql.Term{element("Name", eql.OpEqual, ir.IRString("Ana"))}},
				},
			}},
		}},
	}

	res, err := e.Execute(context.Background(), db, q)
	require.NoError(t, err)
	assert.Equal(t, []string{"200.10"}, oids(res.Rows))

	text := res.SQL[0]
	nested := text[strings.Index(text, "IN (")+len("IN (") : strings.LastIndex(text, ") ORDER BY")]
	assert.Equal(t, "SELECT N1T0.ID FROM T_PERSON N1T0 WHERE N1T0.NAME = 'Ana' AND N1T0.TYPEID IN (100,101)", nested)

	rows, err := db.QueryContext(context.Background(), nested)
	require.NoError(t, err)
	scanned, err := store.ScanRows(rows)
	require.NoError(t, err)
	require.Len(t, scanned, 1)
	assert.Equal(t, int64(1), scanned[0][0])
}

func TestExecute_FanOut(t *testing.T) {
	e, db := newExecutor(t)
	q := &eql.Query{
		Types:   []string{"Document"},
		Selects: []string{"attribute[Name]", "linkfrom[Position#DocumentLink].attribute[Quantity]"},
		Where:   &eql.Where{Terms: []eql.Term{element("Name", eql.OpLike, ir.IRString("INV*"))}},
	}

	res, err := e.Execute(context.Background(), db, q)
	require.NoError(t, err)
	assert.Equal(t, []string{"301.20", "301.22"}, oids(res.Rows))
	assert.Equal(t, []any{"INV-1", []any{int64(2), int64(5)}}, res.Rows[0].Values)
	assert.Equal(t, []any{"INV-2", []any{}}, res.Rows[1].Values)
}

func TestCompile_Plan(t *testing.T) {
	e, _ := newExecutor(t)
	q := &eql.Query{
		Types:   []string{"Document"},
		Selects: []string{"linkfrom[Position#DocumentLink].attribute[Quantity]"},
	}

	plan, err := e.Compile(context.Background(), q)
	require.NoError(t, err)
	require.Len(t, plan.Statements, 1)

	st := plan.Statements[0]
	assert.Equal(t, []string{"Document", "Invoice", "Receipt"}, st.Types)
	assert.Equal(t, []string{"T0"}, st.Aliases)
	assert.Equal(t, []FanOut{{Key: "linkfrom[Position#DocumentLink]", Type: "Position"}}, st.FanOuts)
	assert.Equal(t, ir.MustStatementID(st.SQL, st.Aliases), st.ID)

	again, err := e.Compile(context.Background(), &eql.Query{
		Types:   []string{"Document"},
		Selects: []string{"linkfrom[Position#DocumentLink].attribute[Quantity]"},
	})
	require.NoError(t, err)
	assert.Equal(t, plan.ID, again.ID)
	assert.Equal(t, plan.Fingerprint, again.Fingerprint)

	q.Limit = 5
	limited, err := e.Compile(context.Background(), q)
	require.NoError(t, err)
	assert.NotEqual(t, plan.Fingerprint, limited.Fingerprint)
	assert.NotEqual(t, plan.ID, limited.ID)
}

func TestCompile_Errors(t *testing.T) {
	tests := []struct {
		name  string
		query *eql.Query
		check func(error) bool
	}{
		{"nil query", nil, eql.ErrInvalidQuery.Is},
		{"no types", &eql.Query{}, eql.ErrInvalidQuery.Is},
		{"bad selection", &eql.Query{Types: []string{"Ticket"}, Selects: []string{"attribute["}}, eql.ErrInvalidQuery.Is},
		{"unknown types only", &eql.Query{Types: []string{"Nope", "Missing"}}, admin.ErrUnknownType.Is},
		{"nested without types", &eql.Query{
			Types: []string{"Ticket"},
			Where: &eql.Where{Terms: []eql.Term{&eql.ElementTerm{Element: eql.Element{
				Attribute: "Owner", Op: eql.OpIn, Nested: &eql.NestedQuery{},
			}}}},
		}, func(err error) bool { return strings.Contains(err.Error(), "names no types") }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, _ := newExecutor(t)
			_, err := e.Compile(context.Background(), tt.query)
			require.Error(t, err)
			assert.True(t, tt.check(err), "unexpected error: %v", err)
		})
	}
}

func TestCompile_UnknownTypeSkipped(t *testing.T) {
	e, _ := newExecutor(t)

	plan, err := e.Compile(context.Background(), &eql.Query{Types: []string{"Nope", "Ticket"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"SELECT T0.ID FROM T_TICKET T0 ORDER BY T0.ID"}, plan.SQL())
}

func TestExecute_Spans(t *testing.T) {
	tracer := mocktracer.New()
	e, db := newExecutor(t, WithTracer(tracer))

	_, err := e.Execute(context.Background(), db, &eql.Query{Types: []string{"Ticket", "Product"}})
	require.NoError(t, err)

	spans := tracer.FinishedSpans()
	names := make([]string, len(spans))
	for i, s := range spans {
		names[i] = s.OperationName
	}
	assert.Equal(t, []string{"efql.compile", "efql.statement", "efql.statement", "efql.execute"}, names)

	root := spans[len(spans)-1]
	for _, s := range spans[:len(spans)-1] {
		assert.Equal(t, root.SpanContext.SpanID, s.ParentID)
	}
	assert.Equal(t, 2, spans[0].Tag("statements"))
}
