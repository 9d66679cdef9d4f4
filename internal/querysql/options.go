package querysql

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/efaps/efql/internal/admin"
)

// DefaultMaxDepth bounds nested query recursion when Options.MaxDepth is
// zero.
const DefaultMaxDepth = 8

// Ambiguity selects how an attribute name that several candidate types
// resolve differently is handled.
type Ambiguity int

const (
	// FirstMatch binds the attribute of the first candidate type that has
	// one, in candidate list order.
	FirstMatch Ambiguity = iota
	// ErrorOnAmbiguity fails compilation with ErrAmbiguousAttribute.
	ErrorOnAmbiguity
)

func (a Ambiguity) String() string {
	if a == ErrorOnAmbiguity {
		return "error"
	}
	return "first"
}

// ParseAmbiguity maps "first" or "error" to an Ambiguity.
func ParseAmbiguity(s string) (Ambiguity, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "first", "firstmatch":
		return FirstMatch, nil
	case "error":
		return ErrorOnAmbiguity, nil
	}
	return FirstMatch, fmt.Errorf("unknown ambiguity policy %q (want first or error)", s)
}

// Dialect is the SQL flavor rendered by SQLSelect.
type Dialect int

const (
	SQLite Dialect = iota
	Postgres
)

func (d Dialect) String() string {
	if d == Postgres {
		return "postgres"
	}
	return "sqlite"
}

// ParseDialect maps a dialect name to a Dialect.
func ParseDialect(s string) (Dialect, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "sqlite", "sqlite3", "libsql":
		return SQLite, nil
	case "postgres", "postgresql", "pg":
		return Postgres, nil
	}
	return SQLite, fmt.Errorf("unknown dialect %q (want sqlite or postgres)", s)
}

// BoolLiteral renders a boolean constant.
func (d Dialect) BoolLiteral(b bool) string {
	switch {
	case d == Postgres && b:
		return "TRUE"
	case d == Postgres:
		return "FALSE"
	case b:
		return "1"
	default:
		return "0"
	}
}

// Quote renders a string literal, doubling embedded single quotes.
func (d Dialect) Quote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

// Options configure one compilation.
type Options struct {
	Dialect   Dialect
	Ambiguity Ambiguity
	MaxDepth  int

	// ExcludeChildTypes keeps nested query type sets as written instead of
	// adding every descendant type.
	ExcludeChildTypes bool

	Logger *slog.Logger
}

func (o Options) withDefaults() Options {
	if o.MaxDepth <= 0 {
		o.MaxDepth = DefaultMaxDepth
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	return o
}

// Resolver answers admin model lookups during compilation.
// *admin.Registry implements it.
type Resolver interface {
	Type(name string) (*admin.Type, bool)
	TypeByID(id int64) (*admin.Type, bool)
	StatusID(group *admin.StatusGroup, key string) (int64, bool)
	StatusByID(id int64) (*admin.Status, bool)
	Instance(oid string) (admin.Instance, error)
}

var _ Resolver = (*admin.Registry)(nil)

// ExpandTypes returns types followed by their descendants when
// includeChildren is set. Duplicates are dropped, first occurrence wins.
func ExpandTypes(types []*admin.Type, includeChildren bool) []*admin.Type {
	seen := make(map[*admin.Type]bool)
	var out []*admin.Type
	add := func(t *admin.Type) {
		if !seen[t] {
			seen[t] = true
			out = append(out, t)
		}
	}
	for _, t := range types {
		if !includeChildren {
			add(t)
			continue
		}
		for _, d := range t.Descendants(true) {
			add(d)
		}
	}
	return out
}

// ResolveTypes looks up type names, logging and skipping unknown ones.
func ResolveTypes(res Resolver, names []string, log *slog.Logger) []*admin.Type {
	var out []*admin.Type
	for _, name := range names {
		t, ok := res.Type(name)
		if !ok {
			log.Warn("unknown type", "type", name)
			continue
		}
		out = append(out, t)
	}
	return out
}

func typeNames(types []*admin.Type) []string {
	names := make([]string, len(types))
	for i, t := range types {
		names[i] = t.Name()
	}
	return names
}
