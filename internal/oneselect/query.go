package oneselect

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/efaps/efql/internal/admin"
	"github.com/efaps/efql/internal/eql"
	"github.com/efaps/efql/internal/querysql"
	"github.com/efaps/efql/internal/store"
)

// Query selects instances of types sharing one main table. It selects the
// instance id and discriminator first, then the columns of every added
// selection, and orders rows by id.
//
// A Query is built and executed once by one goroutine.
type Query struct {
	st    *querysql.Statement
	res   querysql.Resolver
	log   *slog.Logger
	types []*admin.Type

	mainAlias string
	idCol     int
	typeCol   int

	// set on fan-out children: the link column keyed by parent id
	relAlias  string
	relColumn string
	relCol    int

	selects   []*OneSelect
	linkFroms []*LinkFromSelect
	byKey     map[string]*LinkFromSelect

	where    *eql.Where
	built    bool
	executed bool

	instances []admin.Instance
	relIDs    []int64
}

// NewQuery starts a query over types. Every type must resolve to the same
// main table.
func NewQuery(res querysql.Resolver, types []*admin.Type, opts querysql.Options) (*Query, error) {
	st, err := querysql.NewStatement(res, types, opts)
	if err != nil {
		return nil, err
	}
	selected := st.Types()
	main := selected[0].MainTable()
	for _, t := range selected[1:] {
		if t.MainTable() != main {
			return nil, ErrMixedMainTables.New(typeNames(selected), main.Name(), t.MainTable().Name())
		}
	}

	q := &Query{
		st:        st,
		res:       res,
		log:       st.Logger(),
		types:     selected,
		mainAlias: st.MainAlias(selected[0]),
		typeCol:   -1,
		relCol:    -1,
		byKey:     make(map[string]*LinkFromSelect),
	}
	q.idCol = st.Select().Column(q.mainAlias, idColumn(selected[0]))
	if main.HasTypeColumn() {
		q.typeCol = st.Select().Column(q.mainAlias, main.TypeColumn())
	}
	return q, nil
}

// Statement returns the underlying statement.
func (q *Query) Statement() *querysql.Statement { return q.st }

// Types returns the selected types.
func (q *Query) Types() []*admin.Type { return q.types }

// AddSelect parses selection and appends its joins and columns. Only a
// malformed selection or an ambiguity under ErrorOnAmbiguity fails; names
// that do not resolve are logged and leave the selection empty.
func (q *Query) AddSelect(selection string) (*OneSelect, error) {
	sel, err := newOneSelect(q, selection)
	if err != nil {
		return nil, err
	}
	q.selects = append(q.selects, sel)
	return sel, nil
}

// Selects returns the selections in the order they were added.
func (q *Query) Selects() []*OneSelect { return q.selects }

// LinkFroms returns the fan-outs in the order they were first used.
func (q *Query) LinkFroms() []*LinkFromSelect { return q.linkFroms }

// Where sets the filter applied by Build.
func (q *Query) Where(w *eql.Where) { q.where = w }

// Limit caps the number of rows; zero means no limit.
func (q *Query) Limit(n int) { q.st.Select().Limit(n) }

// Offset skips rows; zero means none.
func (q *Query) Offset(n int) { q.st.Select().Offset(n) }

// Build applies the filter and type criteria once and renders the SQL.
func (q *Query) Build() (string, error) {
	if !q.built {
		if err := q.st.ApplyWhere(q.where); err != nil {
			return "", err
		}
		q.st.Select().OrderBy(q.mainAlias + "." + idColumn(q.types[0]))
		q.built = true
	}
	return q.st.SQL(), nil
}

// SQL renders the statement in its current state.
func (q *Query) SQL() string { return q.st.SQL() }

// Execute builds the query, runs it, feeds every row to AddRow and then
// runs the fan-outs against the collected ids.
func (q *Query) Execute(ctx context.Context, db store.Querier) error {
	if q.executed {
		return ErrAlreadyExecuted.New()
	}
	q.executed = true

	text, err := q.Build()
	if err != nil {
		return err
	}
	rows, err := db.QueryContext(ctx, text)
	if err != nil {
		return fmt.Errorf("query %s: %w", q.types[0].MainTable().Name(), err)
	}
	scanned, err := store.ScanRows(rows)
	if err != nil {
		return err
	}
	for _, row := range scanned {
		if err := q.AddRow(row); err != nil {
			return err
		}
	}
	for _, lf := range q.linkFroms {
		if err := lf.execute(ctx, db); err != nil {
			return fmt.Errorf("%s: %w", lf.key, err)
		}
	}
	return nil
}

// AddRow records the instance of one result row and hands the row to every
// selection.
func (q *Query) AddRow(row store.Row) error {
	id, ok := store.Int64(row[q.idCol])
	if !ok {
		return ErrRowWithoutID.New(len(q.instances))
	}
	t := q.defaultType()
	if q.typeCol >= 0 {
		if typed := q.lookupType(row[q.typeCol]); typed != nil {
			t = typed
		}
	}
	q.instances = append(q.instances, admin.Instance{Type: t, ID: id})
	if q.relCol >= 0 {
		rel, _ := store.Int64(row[q.relCol])
		q.relIDs = append(q.relIDs, rel)
	}
	for _, sel := range q.selects {
		sel.AddObject(row)
	}
	return nil
}

// Instances returns the instance of every row added so far.
func (q *Query) Instances() []admin.Instance { return q.instances }

// Len returns the number of rows added.
func (q *Query) Len() int { return len(q.instances) }

// linkFrom returns the fan-out registered under key, creating it on first
// use.
func (q *Query) linkFrom(key string, linkType *admin.Type, linkAttr *admin.Attribute) (*LinkFromSelect, error) {
	if lf, ok := q.byKey[key]; ok {
		return lf, nil
	}
	lf, err := newLinkFromSelect(q, key, linkType, linkAttr)
	if err != nil {
		return nil, err
	}
	q.byKey[key] = lf
	q.linkFroms = append(q.linkFroms, lf)
	return lf, nil
}

// classified picks the query type a classification join starts from.
func (q *Query) classified(class *admin.Type) *admin.Type {
	for _, t := range q.types {
		if t.IsKindOf(class.Classifies()) {
			return t
		}
	}
	return q.types[0]
}

// defaultType is the type of rows without a discriminator: the first
// concrete query type.
func (q *Query) defaultType() *admin.Type {
	for _, t := range q.types {
		if !t.IsAbstract() {
			return t
		}
	}
	return q.types[0]
}

func (q *Query) lookupType(v any) *admin.Type {
	id, ok := store.Int64(v)
	if !ok {
		return nil
	}
	t, ok := q.res.TypeByID(id)
	if !ok {
		q.log.Warn("unknown type id in result", "id", id)
		return nil
	}
	return t
}

// typeOf resolves a discriminator value to its type, nil when unknown.
func (q *Query) typeOf(v any) any {
	if t := q.lookupType(v); t != nil {
		return t
	}
	return nil
}

// status resolves a status id to its status, nil when unknown.
func (q *Query) status(v any) any {
	id, ok := store.Int64(v)
	if !ok {
		return nil
	}
	s, ok := q.res.StatusByID(id)
	if !ok {
		q.log.Warn("unknown status id in result", "id", id)
		return nil
	}
	return s
}

func typeNames(types []*admin.Type) []string {
	names := make([]string, len(types))
	for i, t := range types {
		names[i] = t.Name()
	}
	return names
}
