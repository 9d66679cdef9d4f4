package querysql

import (
	"regexp"
	"strings"

	"github.com/efaps/efql/internal/eql"
)

// Comparison is the SQL operator of a Criteria.
type Comparison string

const (
	CompEqual        Comparison = "="
	CompUnequal      Comparison = "<>"
	CompGreater      Comparison = ">"
	CompLess         Comparison = "<"
	CompGreaterEqual Comparison = ">="
	CompLessEqual    Comparison = "<="
	CompLike         Comparison = "LIKE"
	CompIn           Comparison = "IN"
	CompNotIn        Comparison = "NOT IN"
	CompIsNull       Comparison = "IS NULL"
	CompIsNotNull    Comparison = "IS NOT NULL"
)

// comparisonFor maps a query operator, in any accepted spelling, to the SQL
// comparison.
func comparisonFor(op eql.Op) Comparison {
	switch op.Canonical() {
	case eql.OpUnequal:
		return CompUnequal
	case eql.OpGreater:
		return CompGreater
	case eql.OpLess:
		return CompLess
	case eql.OpGreaterEqual:
		return CompGreaterEqual
	case eql.OpLessEqual:
		return CompLessEqual
	case eql.OpLike:
		return CompLike
	case eql.OpIn:
		return CompIn
	case eql.OpNotIn:
		return CompNotIn
	case eql.OpIsNull:
		return CompIsNull
	case eql.OpNotNull:
		return CompIsNotNull
	default:
		return CompEqual
	}
}

// Criteria is one predicate on one column.
type Criteria struct {
	Alias      string
	Column     string
	Comparison Comparison
	Values     []string

	// Escape quotes every value. Values that are not plain numbers are
	// quoted regardless.
	Escape bool
	// Raw renders values verbatim, e.g. dialect boolean literals.
	Raw bool
	// IgnoreCase wraps column and values in UPPER().
	IgnoreCase bool
	// OrNull adds "OR column IS NULL" for columns of optional joins.
	OrNull bool
	// Subquery replaces Values for IN / NOT IN.
	Subquery string

	Conn eql.Connection
}

func (c *Criteria) column() string {
	return c.Alias + "." + c.Column
}

var numericPattern = regexp.MustCompile(`^-?[0-9]+(\.[0-9]+)?$`)

// IsNumeric reports whether s renders as a bare SQL number.
func IsNumeric(s string) bool {
	return numericPattern.MatchString(s)
}

func (c *Criteria) value(d Dialect, v string) string {
	out := v
	if !c.Raw && (c.Escape || !IsNumeric(v)) {
		out = d.Quote(v)
	}
	if c.IgnoreCase {
		out = "UPPER(" + out + ")"
	}
	return out
}

func (c *Criteria) render(d Dialect) string {
	col := c.column()
	if c.IgnoreCase {
		col = "UPPER(" + col + ")"
	}

	var pred string
	switch comp := c.Comparison; {
	case comp == CompIsNull || comp == CompIsNotNull:
		return col + " " + string(comp)
	case (comp == CompIn || comp == CompNotIn) && c.Subquery != "":
		pred = col + " " + string(comp) + " (" + c.Subquery + ")"
	case comp == CompIn || comp == CompNotIn ||
		((comp == CompEqual || comp == CompUnequal) && len(c.Values) > 1):
		in := comp == CompIn || comp == CompEqual
		if len(c.Values) == 0 {
			if in {
				return "1 = 0"
			}
			return "1 = 1"
		}
		vals := make([]string, len(c.Values))
		for i, v := range c.Values {
			vals[i] = c.value(d, v)
		}
		op := string(CompIn)
		if !in {
			op = string(CompNotIn)
		}
		pred = col + " " + op + " (" + strings.Join(vals, ",") + ")"
	case len(c.Values) > 1:
		parts := make([]string, len(c.Values))
		for i, v := range c.Values {
			parts[i] = col + " " + string(comp) + " " + c.value(d, v)
		}
		pred = "(" + strings.Join(parts, " OR ") + ")"
	case len(c.Values) == 1:
		pred = col + " " + string(comp) + " " + c.value(d, c.Values[0])
	default:
		return "1 = 0"
	}

	if c.OrNull {
		pred = "(" + pred + " OR " + c.column() + " IS NULL)"
	}
	return pred
}

// Group is a parenthesized list of criteria and groups.
type Group struct {
	Conn  eql.Connection
	parts []wherePart
}

type wherePart struct {
	criteria *Criteria
	group    *Group
}

func (p wherePart) conn() eql.Connection {
	if p.criteria != nil {
		return p.criteria.Conn
	}
	return p.group.Conn
}

// Add appends a criteria.
func (g *Group) Add(c Criteria) {
	g.parts = append(g.parts, wherePart{criteria: &c})
}

// AddGroup appends and returns a nested group.
func (g *Group) AddGroup(conn eql.Connection) *Group {
	sub := &Group{Conn: conn}
	g.parts = append(g.parts, wherePart{group: sub})
	return sub
}

// Empty reports whether the group renders nothing.
func (g *Group) Empty() bool {
	for _, p := range g.parts {
		if p.criteria != nil || !p.group.Empty() {
			return false
		}
	}
	return true
}

// render joins the parts; the connection of the first rendered part is
// dropped. Empty sub-groups are skipped.
func (g *Group) render(d Dialect) string {
	var sb strings.Builder
	first := true
	for _, p := range g.parts {
		var text string
		if p.criteria != nil {
			text = p.criteria.render(d)
		} else {
			if p.group.Empty() {
				continue
			}
			text = "(" + p.group.render(d) + ")"
		}
		if !first {
			sb.WriteString(" " + p.conn().String() + " ")
		}
		sb.WriteString(text)
		first = false
	}
	return sb.String()
}

func (g *Group) walk(fn func(*Criteria)) {
	for _, p := range g.parts {
		if p.criteria != nil {
			fn(p.criteria)
		} else {
			p.group.walk(fn)
		}
	}
}

// SQLWhere is the WHERE clause of one statement.
type SQLWhere struct {
	root Group
}

// Root returns the top-level group.
func (w *SQLWhere) Root() *Group { return &w.root }

// Add appends a criteria to the top-level group.
func (w *SQLWhere) Add(c Criteria) { w.root.Add(c) }

// Empty reports whether the clause renders nothing.
func (w *SQLWhere) Empty() bool { return w.root.Empty() }

// Criteria returns all criteria in render order.
func (w *SQLWhere) Criteria() []Criteria {
	var out []Criteria
	w.root.walk(func(c *Criteria) { out = append(out, *c) })
	return out
}
