package querysql

import (
	"strconv"
	"strings"
)

// SelectColumn is one entry of the select list.
type SelectColumn struct {
	Alias  string
	Column string
}

func (c SelectColumn) String() string { return c.Alias + "." + c.Column }

// FromEntry is one table of the FROM clause.
type FromEntry struct {
	Table    string
	Alias    string
	LeftJoin bool
	// On is the join condition, e.g. "T0.ID = T1.ID".
	On string

	typeColumn string
	typeIDs    []string
}

// TypeIDs returns the discriminator ids attached to the join condition.
func (e *FromEntry) TypeIDs() []string { return e.typeIDs }

func (e *FromEntry) render() string {
	if !e.LeftJoin {
		return e.Table + " " + e.Alias
	}
	var sb strings.Builder
	sb.WriteString(" LEFT JOIN ")
	sb.WriteString(e.Table + " " + e.Alias + " ON " + e.On)
	if len(e.typeIDs) > 0 {
		sb.WriteString(" AND " + e.Alias + "." + e.typeColumn + " IN (" + strings.Join(e.typeIDs, ",") + ")")
	}
	return sb.String()
}

// SQLSelect builds one SELECT statement. It is owned by a single
// compilation and is not safe for concurrent use.
type SQLSelect struct {
	dialect  Dialect
	indexer  *TableIndexer
	distinct bool

	columns   []SelectColumn
	columnIdx map[SelectColumn]int

	from        []*FromEntry
	fromByAlias map[string]*FromEntry
	nullable    map[string]bool

	where SQLWhere

	typeCriteria        []TypeCriterion
	typeCriteriaIdx     map[typeCriterionKey]int
	typeCriteriaApplied bool

	orderBy []string
	limit   int
	offset  int
}

// NewSQLSelect creates an empty statement allocating aliases from indexer.
func NewSQLSelect(indexer *TableIndexer, dialect Dialect) *SQLSelect {
	return &SQLSelect{
		dialect:         dialect,
		indexer:         indexer,
		columnIdx:       make(map[SelectColumn]int),
		fromByAlias:     make(map[string]*FromEntry),
		nullable:        make(map[string]bool),
		typeCriteriaIdx: make(map[typeCriterionKey]int),
	}
}

// Indexer returns the statement's alias allocator.
func (s *SQLSelect) Indexer() *TableIndexer { return s.indexer }

// Dialect returns the rendering dialect.
func (s *SQLSelect) Dialect() Dialect { return s.dialect }

// Column adds alias.column to the select list and returns its zero-based
// position. A column already selected returns its existing position.
func (s *SQLSelect) Column(alias, column string) int {
	c := SelectColumn{Alias: alias, Column: column}
	if i, ok := s.columnIdx[c]; ok {
		return i
	}
	s.columns = append(s.columns, c)
	s.columnIdx[c] = len(s.columns) - 1
	return len(s.columns) - 1
}

// Columns returns the select list.
func (s *SQLSelect) Columns() []SelectColumn { return s.columns }

// From adds a plain FROM entry.
func (s *SQLSelect) From(table, alias string) {
	s.addFrom(&FromEntry{Table: table, Alias: alias})
}

// LeftJoin adds "LEFT JOIN table alias ON leftAlias.leftColumn =
// alias.rightColumn".
func (s *SQLSelect) LeftJoin(table, alias, leftAlias, leftColumn, rightColumn string) {
	s.addFrom(&FromEntry{
		Table:    table,
		Alias:    alias,
		LeftJoin: true,
		On:       leftAlias + "." + leftColumn + " = " + alias + "." + rightColumn,
	})
}

func (s *SQLSelect) addFrom(e *FromEntry) {
	if _, dup := s.fromByAlias[e.Alias]; dup {
		return
	}
	s.from = append(s.from, e)
	s.fromByAlias[e.Alias] = e
}

// FromEntries returns the FROM clause entries in order.
func (s *SQLSelect) FromEntries() []*FromEntry { return s.from }

// Entry looks up a FROM entry by alias.
func (s *SQLSelect) Entry(alias string) (*FromEntry, bool) {
	e, ok := s.fromByAlias[alias]
	return e, ok
}

// MarkNullable records that rows of alias may be missing (optional join).
func (s *SQLSelect) MarkNullable(alias string) { s.nullable[alias] = true }

// IsNullable reports whether alias was reached over an optional join.
func (s *SQLSelect) IsNullable(alias string) bool { return s.nullable[alias] }

// Where returns the WHERE clause.
func (s *SQLSelect) Where() *SQLWhere { return &s.where }

// Distinct toggles SELECT DISTINCT.
func (s *SQLSelect) Distinct(on bool) { s.distinct = on }

// OrderBy appends an ORDER BY expression.
func (s *SQLSelect) OrderBy(expr string) { s.orderBy = append(s.orderBy, expr) }

// Limit sets LIMIT; zero means no limit.
func (s *SQLSelect) Limit(n int) { s.limit = n }

// Offset sets OFFSET; zero means none.
func (s *SQLSelect) Offset(n int) { s.offset = n }

// Aliases returns the FROM aliases in clause order.
func (s *SQLSelect) Aliases() []string {
	out := make([]string, len(s.from))
	for i, e := range s.from {
		out[i] = e.Alias
	}
	return out
}

// SQL renders the statement text.
func (s *SQLSelect) SQL() string {
	var sb strings.Builder
	sb.WriteString("SELECT ")
	if s.distinct {
		sb.WriteString("DISTINCT ")
	}
	if len(s.columns) == 0 {
		sb.WriteString("1")
	}
	for i, c := range s.columns {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(c.String())
	}

	sb.WriteString(" FROM ")
	for i, e := range s.from {
		if i > 0 && !e.LeftJoin {
			sb.WriteString(", ")
		}
		sb.WriteString(e.render())
	}

	if !s.where.Empty() {
		sb.WriteString(" WHERE ")
		sb.WriteString(s.where.root.render(s.dialect))
	}
	if len(s.orderBy) > 0 {
		sb.WriteString(" ORDER BY ")
		sb.WriteString(strings.Join(s.orderBy, ", "))
	}
	switch {
	case s.limit > 0:
		sb.WriteString(" LIMIT " + strconv.Itoa(s.limit))
	case s.offset > 0 && s.dialect == SQLite:
		sb.WriteString(" LIMIT -1")
	}
	if s.offset > 0 {
		sb.WriteString(" OFFSET " + strconv.Itoa(s.offset))
	}
	return sb.String()
}

func (s *SQLSelect) String() string { return s.SQL() }
