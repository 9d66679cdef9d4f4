package query

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	opentracing "github.com/opentracing/opentracing-go"
	otlog "github.com/opentracing/opentracing-go/log"

	"github.com/efaps/efql/internal/admin"
	"github.com/efaps/efql/internal/eql"
	"github.com/efaps/efql/internal/oneselect"
	"github.com/efaps/efql/internal/querysql"
	"github.com/efaps/efql/internal/store"
)

// Executor compiles and runs queries against one admin model.
type Executor struct {
	res    querysql.Resolver
	opts   querysql.Options
	log    *slog.Logger
	tracer opentracing.Tracer
}

// Option configures an Executor.
type Option func(*Executor)

// WithLogger sets the logger used by the executor and every compilation.
func WithLogger(l *slog.Logger) Option {
	return func(e *Executor) { e.log = l }
}

// WithTracer sets the tracer spans are started from. The default is the
// global tracer.
func WithTracer(t opentracing.Tracer) Option {
	return func(e *Executor) { e.tracer = t }
}

// NewExecutor creates an executor over res. opts apply to every query;
// ExcludeChildTypes is taken from each query instead.
func NewExecutor(res querysql.Resolver, opts querysql.Options, options ...Option) *Executor {
	e := &Executor{res: res, opts: opts, log: opts.Logger}
	for _, o := range options {
		o(e)
	}
	if e.log == nil {
		e.log = slog.Default()
	}
	if e.tracer == nil {
		e.tracer = opentracing.GlobalTracer()
	}
	e.opts.Logger = e.log
	return e
}

// Row is one result instance with one value per selection.
type Row struct {
	Instance admin.Instance
	Values   []any
}

// OID returns the object identifier of the row's instance.
func (r Row) OID() string { return r.Instance.OID() }

// Result is the outcome of Execute.
type Result struct {
	Fingerprint uint64
	PlanID      string
	SQL         []string
	Selects     []string
	Instances   []admin.Instance
	Rows        []Row
}

// Compile validates q and compiles it into a Plan.
func (e *Executor) Compile(ctx context.Context, q *eql.Query) (*Plan, error) {
	span, _ := e.span(ctx, "efql.compile")
	defer span.Finish()

	plan, err := e.compile(q)
	if err != nil {
		span.SetTag("error", true)
		span.LogFields(otlog.Error(err))
		return nil, err
	}
	span.SetTag("plan", plan.ID)
	span.SetTag("statements", len(plan.Statements))
	return plan, nil
}

func (e *Executor) compile(q *eql.Query) (*Plan, error) {
	if err := eql.Validate(q); err != nil {
		return nil, err
	}
	fingerprint, err := eql.Fingerprint(q)
	if err != nil {
		return nil, err
	}

	groups, err := e.groups(q)
	if err != nil {
		return nil, err
	}

	opts := e.opts
	opts.ExcludeChildTypes = q.ExcludeChildTypes
	plan := &Plan{Fingerprint: fingerprint, Selects: q.Selects}
	for _, types := range groups {
		oq, err := oneselect.NewQuery(e.res, types, opts)
		if err != nil {
			return nil, err
		}
		for _, sel := range q.Selects {
			if _, err := oq.AddSelect(sel); err != nil {
				return nil, err
			}
		}
		oq.Where(q.Where)
		oq.Limit(q.Limit)
		oq.Offset(q.Offset)

		text, err := oq.Build()
		if err != nil {
			return nil, fmt.Errorf("compile %s: %w", types[0].MainTable().Name(), err)
		}
		st, err := newStatement(oq, text)
		if err != nil {
			return nil, err
		}
		plan.Statements = append(plan.Statements, st)
		plan.queries = append(plan.queries, oq)
	}

	plan.ID, err = planID(fingerprint, q, plan.Statements)
	if err != nil {
		return nil, err
	}
	e.log.Debug("query compiled",
		"plan", plan.ID,
		"fingerprint", fingerprint,
		"statements", len(plan.Statements))
	return plan, nil
}

// groups resolves the query types, expands their children and splits them
// by main table in first-seen order.
func (e *Executor) groups(q *eql.Query) ([][]*admin.Type, error) {
	types := querysql.ResolveTypes(e.res, q.Types, e.log)
	if len(types) == 0 {
		return nil, admin.ErrUnknownType.New(strings.Join(q.Types, ", "))
	}
	types = querysql.ExpandTypes(types, !q.ExcludeChildTypes)

	var groups [][]*admin.Type
	byTable := make(map[*admin.SQLTable]int)
	for _, t := range types {
		table := t.MainTable()
		if table == nil {
			e.log.Warn("type has no main table", "type", t.Name())
			continue
		}
		i, ok := byTable[table]
		if !ok {
			i = len(groups)
			byTable[table] = i
			groups = append(groups, nil)
		}
		groups[i] = append(groups[i], t)
	}
	if len(groups) == 0 {
		return nil, querysql.ErrNoMainTable.New(q.Types)
	}
	return groups, nil
}

// Execute compiles q and runs it against db.
func (e *Executor) Execute(ctx context.Context, db store.Querier, q *eql.Query) (*Result, error) {
	span, ctx := e.span(ctx, "efql.execute")
	defer span.Finish()

	plan, err := e.Compile(ctx, q)
	if err != nil {
		span.SetTag("error", true)
		return nil, err
	}
	res, err := e.run(ctx, db, plan)
	if err != nil {
		span.SetTag("error", true)
		span.LogFields(otlog.Error(err))
		return nil, err
	}
	span.SetTag("rows", len(res.Rows))
	return res, nil
}

func (e *Executor) run(ctx context.Context, db store.Querier, plan *Plan) (*Result, error) {
	res := &Result{
		Fingerprint: plan.Fingerprint,
		PlanID:      plan.ID,
		SQL:         plan.SQL(),
		Selects:     plan.Selects,
	}
	for i, oq := range plan.queries {
		span, sctx := e.span(ctx, "efql.statement")
		span.SetTag("statement", plan.Statements[i].ID)
		span.LogFields(otlog.String("sql", plan.Statements[i].SQL))

		err := oq.Execute(sctx, db)
		span.Finish()
		if err != nil {
			return nil, err
		}

		selects := oq.Selects()
		for r, inst := range oq.Instances() {
			values := make([]any, len(selects))
			for c, sel := range selects {
				values[c] = sel.Value(r)
			}
			res.Instances = append(res.Instances, inst)
			res.Rows = append(res.Rows, Row{Instance: inst, Values: values})
		}
		e.log.Debug("statement executed", "statement", plan.Statements[i].ID, "rows", oq.Len())
	}
	return res, nil
}

func (e *Executor) span(ctx context.Context, name string) (opentracing.Span, context.Context) {
	var opts []opentracing.StartSpanOption
	if parent := opentracing.SpanFromContext(ctx); parent != nil {
		opts = append(opts, opentracing.ChildOf(parent.Context()))
	}
	span := e.tracer.StartSpan(name, opts...)
	return span, opentracing.ContextWithSpan(ctx, span)
}
