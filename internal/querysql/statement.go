package querysql

import (
	"log/slog"

	"github.com/efaps/efql/internal/admin"
)

// Statement couples one SQLSelect with the candidate types it selects and
// the admin model it resolves names against.
//
// Joins are created through Statement so select and where terms that reach
// the same table over the same path share one alias.
type Statement struct {
	res   Resolver
	opts  Options
	log   *slog.Logger
	depth int

	sel       *SQLSelect
	types     []*admin.Type
	mainAlias map[*admin.SQLTable]string
}

// NewStatement starts a top-level statement over types. Every distinct
// main table gets a FROM entry and every concrete type a discriminator
// criterion on tables shared by several types.
func NewStatement(res Resolver, types []*admin.Type, opts Options) (*Statement, error) {
	return newStatement(res, types, opts.withDefaults(), 0)
}

func newStatement(res Resolver, types []*admin.Type, opts Options, depth int) (*Statement, error) {
	s := &Statement{
		res:       res,
		opts:      opts,
		log:       opts.Logger,
		depth:     depth,
		sel:       NewSQLSelect(NewTableIndexer(AliasPrefix(depth)), opts.Dialect),
		mainAlias: make(map[*admin.SQLTable]string),
	}
	for _, t := range types {
		table := t.MainTable()
		if table == nil {
			continue
		}
		s.types = append(s.types, t)
		alias, ok := s.mainAlias[table]
		if !ok {
			idx := s.sel.indexer.TableIdx(table.Name())
			alias = idx.Alias()
			s.mainAlias[table] = alias
			s.sel.From(table.Name(), alias)
		}
		if table.HasTypeColumn() && !t.IsAbstract() {
			s.sel.AddTypeCriterion(TypeCriterion{Alias: alias, Column: table.TypeColumn(), TypeID: t.ID()})
		}
	}
	if len(s.types) == 0 {
		return nil, ErrNoMainTable.New(typeNames(types))
	}
	return s, nil
}

// Select returns the statement builder.
func (s *Statement) Select() *SQLSelect { return s.sel }

// Types returns the candidate types that have a main table.
func (s *Statement) Types() []*admin.Type { return s.types }

// Depth returns the nesting depth, zero for the outer statement.
func (s *Statement) Depth() int { return s.depth }

// Options returns the effective options.
func (s *Statement) Options() Options { return s.opts }

// Resolver returns the admin model resolver.
func (s *Statement) Resolver() Resolver { return s.res }

// Logger returns the statement logger.
func (s *Statement) Logger() *slog.Logger { return s.log }

// SQL renders the statement.
func (s *Statement) SQL() string { return s.sel.SQL() }

// MainAlias returns the alias of the main table of t, or "" when t is not
// selected by this statement.
func (s *Statement) MainAlias(t *admin.Type) string {
	if t == nil {
		return ""
	}
	return s.mainAlias[t.MainTable()]
}

// ResolveAttribute finds name on the candidate types in list order.
//
// Under FirstMatch the first type declaring the name wins. Under
// ErrorOnAmbiguity every candidate is checked and two different attributes
// for the same name fail with ErrAmbiguousAttribute. A missing name
// returns nil without error.
func (s *Statement) ResolveAttribute(name string) (*admin.Type, *admin.Attribute, error) {
	var foundType *admin.Type
	var found *admin.Attribute
	for _, t := range s.types {
		attr := t.Attribute(name)
		if attr == nil {
			continue
		}
		if found == nil {
			foundType, found = t, attr
			if s.opts.Ambiguity == FirstMatch {
				break
			}
			continue
		}
		if attr != found {
			return nil, nil, ErrAmbiguousAttribute.New(name, found.String(), attr.String())
		}
	}
	return foundType, found, nil
}

// AttributeAlias returns the alias holding attr's columns for an instance
// of t whose main table is baseAlias. Attributes of another table are
// reached over a child table join by ID.
func (s *Statement) AttributeAlias(baseAlias string, t *admin.Type, attr *admin.Attribute) string {
	table := attr.Table()
	if table == nil || t == nil || table == t.MainTable() {
		return baseAlias
	}
	return s.ChildTable(baseAlias, table)
}

// ChildTable joins table to baseAlias by ID once and returns its alias.
func (s *Statement) ChildTable(baseAlias string, table *admin.SQLTable) string {
	idx := s.sel.indexer.JoinedTableIdx(table.Name(), baseAlias, "ID")
	if idx.Created {
		s.sel.LeftJoin(table.Name(), idx.Alias(), baseAlias, "ID", "ID")
		if s.sel.IsNullable(baseAlias) {
			s.sel.MarkNullable(idx.Alias())
		}
	}
	return idx.Alias()
}

// LinkTo joins the main table of attr's target type over the link column
// found at alias. The target type and its descendants restrict the
// discriminator of the joined table.
func (s *Statement) LinkTo(alias string, attr *admin.Attribute) (string, *admin.Type) {
	target := attr.Link()
	if target == nil || target.MainTable() == nil {
		return "", nil
	}
	table := target.MainTable()
	idx := s.sel.indexer.JoinedTableIdx(table.Name(), alias, attr.Column())
	if idx.Created {
		s.sel.LeftJoin(table.Name(), idx.Alias(), alias, attr.Column(), "ID")
		if s.sel.IsNullable(alias) {
			s.sel.MarkNullable(idx.Alias())
		}
	}
	if table.HasTypeColumn() {
		for _, t := range target.Descendants(true) {
			if t.IsAbstract() || t.MainTable() != table {
				continue
			}
			s.sel.AddTypeCriterion(TypeCriterion{Alias: idx.Alias(), Column: table.TypeColumn(), TypeID: t.ID()})
		}
	}
	return idx.Alias(), target
}

// Classification joins the table of class to baseAlias over the class
// link column. The join is optional: the alias is marked nullable and its
// discriminator criteria admit NULL.
func (s *Statement) Classification(baseAlias string, class *admin.Type) string {
	table := class.MainTable()
	link := class.ClassLinkAttribute()
	if table == nil || link == nil {
		return ""
	}
	idx := s.sel.indexer.JoinedTableIdx(table.Name(), baseAlias, link.Column())
	if idx.Created {
		s.sel.LeftJoin(table.Name(), idx.Alias(), baseAlias, "ID", link.Column())
	}
	s.sel.MarkNullable(idx.Alias())
	if table.HasTypeColumn() {
		for _, t := range class.Descendants(true) {
			if t.IsAbstract() || t.MainTable() != table {
				continue
			}
			s.sel.AddTypeCriterion(TypeCriterion{Alias: idx.Alias(), Column: table.TypeColumn(), TypeID: t.ID(), Nullable: true})
		}
	}
	return idx.Alias()
}

// Nested starts an independent statement one level deeper, with its own
// alias space.
func (s *Statement) Nested(types []*admin.Type) (*Statement, error) {
	if s.depth+1 > s.opts.MaxDepth {
		return nil, ErrNestingTooDeep.New(s.opts.MaxDepth)
	}
	return newStatement(s.res, types, s.opts, s.depth+1)
}
