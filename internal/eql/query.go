package eql

import (
	"fmt"
	"strings"

	"github.com/mitchellh/hashstructure"

	"github.com/efaps/efql/internal/ir"
)

// Query is a complete selection request over a set of types.
type Query struct {
	// Types are the candidate type names. Child types are added by the
	// executor unless ExcludeChildTypes is set.
	Types             []string
	ExcludeChildTypes bool

	// Selects are selection strings, one output value each.
	Selects []string

	Where *Where

	Limit  int
	Offset int
}

// Connection joins a term to its predecessor.
type Connection int

const (
	And Connection = iota
	Or
)

func (c Connection) String() string {
	if c == Or {
		return "OR"
	}
	return "AND"
}

// ParseConnection maps "and"/"or" (any case) to a Connection. An empty
// string is And.
func ParseConnection(s string) (Connection, error) {
	switch strings.ToLower(s) {
	case "", "and":
		return And, nil
	case "or":
		return Or, nil
	}
	return And, fmt.Errorf("unknown connection %q", s)
}

// Where is an ordered list of terms.
type Where struct {
	Terms []Term
}

// Empty reports whether the where tree has no terms.
func (w *Where) Empty() bool {
	return w == nil || len(w.Terms) == 0
}

// Term is a node of the where tree.
//
// This is a sealed interface: only ElementTerm and GroupTerm implement it.
type Term interface {
	termNode()
	Connection() Connection
}

// ElementTerm is a single comparison.
type ElementTerm struct {
	Conn    Connection
	Element Element
}

func (*ElementTerm) termNode() {}

// Connection returns the connection to the previous term.
func (t *ElementTerm) Connection() Connection { return t.Conn }

// GroupTerm wraps terms in parentheses.
type GroupTerm struct {
	Conn  Connection
	Terms []Term
}

func (*GroupTerm) termNode() {}

// Connection returns the connection to the previous term.
func (t *GroupTerm) Connection() Connection { return t.Conn }

// Element is the left side, operator and right side of one comparison.
//
// Exactly one of Attribute and Select names the left side. The right side
// is either Values or Nested.
type Element struct {
	Attribute  string
	Select     string
	Op         Op
	Values     []ir.IRValue
	Nested     *NestedQuery
	IgnoreCase bool
}

// NullValue reports whether the right side is a single null literal.
// Under eq/in it compiles to IS NULL, under ne/notin to IS NOT NULL.
func (e *Element) NullValue() bool {
	if len(e.Values) != 1 {
		return false
	}
	_, ok := e.Values[0].(ir.IRNull)
	return ok
}

// Target returns the left side as written.
func (e *Element) Target() string {
	if e.Attribute != "" {
		return e.Attribute
	}
	return e.Select
}

// NestedQuery is a sub-selection used as the right side of IN / NOT IN.
type NestedQuery struct {
	Types []string
	// Select names the projected attribute; empty projects the ID.
	Select string
	Where  *Where
}

// Op is a comparison operator.
type Op string

const (
	OpEqual        Op = "eq"
	OpUnequal      Op = "ne"
	OpGreater      Op = "gt"
	OpLess         Op = "lt"
	OpGreaterEqual Op = "ge"
	OpLessEqual    Op = "le"
	OpLike         Op = "like"
	OpIn           Op = "in"
	OpNotIn        Op = "notin"
	OpIsNull       Op = "isnull"
	OpNotNull      Op = "notnull"
)

var opAliases = map[string]Op{
	"=": OpEqual, "==": OpEqual, "eq": OpEqual,
	"!=": OpUnequal, "<>": OpUnequal, "ne": OpUnequal,
	">": OpGreater, "gt": OpGreater,
	"<": OpLess, "lt": OpLess,
	">=": OpGreaterEqual, "ge": OpGreaterEqual,
	"<=": OpLessEqual, "le": OpLessEqual,
	"like": OpLike,
	"in": OpIn,
	"notin": OpNotIn, "not in": OpNotIn,
	"isnull": OpIsNull, "is null": OpIsNull,
	"notnull": OpNotNull, "is not null": OpNotNull,
}

// ParseOp maps an operator spelling to an Op.
func ParseOp(s string) (Op, error) {
	if op, ok := opAliases[strings.ToLower(strings.TrimSpace(s))]; ok {
		return op, nil
	}
	return "", fmt.Errorf("unknown operator %q", s)
}

// Canonical returns the constant for any accepted spelling of o, or o
// itself when the spelling is unknown.
func (o Op) Canonical() Op {
	if op, err := ParseOp(string(o)); err == nil {
		return op
	}
	return o
}

// IsNullCheck reports whether the operator tests for NULL and takes no
// values.
func (o Op) IsNullCheck() bool {
	c := o.Canonical()
	return c == OpIsNull || c == OpNotNull
}

// Negated reports whether the operator excludes the listed values.
func (o Op) Negated() bool {
	c := o.Canonical()
	return c == OpUnequal || c == OpNotIn
}

// Fingerprint returns a structural hash of the query. Equal trees hash
// equal regardless of pointer identity.
func Fingerprint(q *Query) (uint64, error) {
	if q == nil {
		return 0, fmt.Errorf("fingerprint of nil query")
	}
	h, err := hashstructure.Hash(q, nil)
	if err != nil {
		return 0, fmt.Errorf("fingerprint: %w", err)
	}
	return h, nil
}
