package oneselect

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cast"

	"github.com/efaps/efql/internal/admin"
	"github.com/efaps/efql/internal/eql"
	"github.com/efaps/efql/internal/store"
)

// ValueSelect is the terminal of a selection: it names the columns it reads
// and turns the captured row objects into a value.
type ValueSelect interface {
	Kind() eql.TokenKind
	// appendColumns adds the columns read for the instance of t at alias
	// and returns their select-list positions.
	appendColumns(q *Query, alias string, t *admin.Type) []int
	// resolve converts the objects captured at those positions. A missing
	// instance resolves to nil.
	resolve(q *Query, objs []any) any
}

// AttributeValueSelect reads the columns of one attribute. Status and type
// attributes resolve to their admin objects, multi-column attributes to a
// slice in column order.
type AttributeValueSelect struct {
	Attribute *admin.Attribute
}

func (*AttributeValueSelect) Kind() eql.TokenKind { return eql.TokenAttribute }

func (v *AttributeValueSelect) appendColumns(q *Query, alias string, _ *admin.Type) []int {
	cols := make([]int, 0, len(v.Attribute.Columns()))
	for _, col := range v.Attribute.Columns() {
		cols = append(cols, q.st.Select().Column(alias, col))
	}
	return cols
}

func (v *AttributeValueSelect) resolve(q *Query, objs []any) any {
	if len(objs) != 1 {
		return append([]any(nil), objs...)
	}
	switch v.Attribute.Kind() {
	case admin.KindStatus:
		return q.status(objs[0])
	case admin.KindType:
		return q.typeOf(objs[0])
	case admin.KindBoolean:
		if objs[0] == nil {
			return nil
		}
		if b, err := cast.ToBoolE(objs[0]); err == nil {
			return b
		}
	}
	return objs[0]
}

// OIDValueSelect renders the object identifier "<typeID>.<rowID>".
type OIDValueSelect struct {
	typed bool
	fixed *admin.Type
}

func (*OIDValueSelect) Kind() eql.TokenKind { return eql.TokenOID }

func (v *OIDValueSelect) appendColumns(q *Query, alias string, t *admin.Type) []int {
	cols, typed := idAndTypeColumns(q, alias, t)
	v.typed, v.fixed = typed, t
	return cols
}

func (v *OIDValueSelect) resolve(q *Query, objs []any) any {
	id, ok := store.Int64(objs[0])
	if !ok {
		return nil
	}
	t := v.fixed
	if v.typed {
		t = q.lookupType(objs[1])
	}
	if t == nil {
		return nil
	}
	return admin.Instance{Type: t, ID: id}.OID()
}

// IDValueSelect reads the row id.
type IDValueSelect struct{}

func (*IDValueSelect) Kind() eql.TokenKind { return eql.TokenID }

func (*IDValueSelect) appendColumns(q *Query, alias string, t *admin.Type) []int {
	return []int{q.st.Select().Column(alias, idColumn(t))}
}

func (*IDValueSelect) resolve(_ *Query, objs []any) any {
	if id, ok := store.Int64(objs[0]); ok {
		return id
	}
	return nil
}

// TypeValueSelect resolves the instance type from the discriminator column,
// or to the selecting type on tables without one.
type TypeValueSelect struct {
	typed bool
	fixed *admin.Type
}

func (*TypeValueSelect) Kind() eql.TokenKind { return eql.TokenType }

func (v *TypeValueSelect) appendColumns(q *Query, alias string, t *admin.Type) []int {
	cols, typed := idAndTypeColumns(q, alias, t)
	v.typed, v.fixed = typed, t
	return cols
}

func (v *TypeValueSelect) resolve(q *Query, objs []any) any {
	if objs[0] == nil {
		return nil
	}
	if v.typed {
		return q.typeOf(objs[1])
	}
	return v.fixed
}

// StatusValueSelect resolves the status attribute of the instance.
type StatusValueSelect struct {
	Attribute *admin.Attribute
}

func (*StatusValueSelect) Kind() eql.TokenKind { return eql.TokenStatus }

func (v *StatusValueSelect) appendColumns(q *Query, alias string, _ *admin.Type) []int {
	return []int{q.st.Select().Column(alias, v.Attribute.Column())}
}

func (*StatusValueSelect) resolve(q *Query, objs []any) any {
	return q.status(objs[0])
}

// ClassificationValueSelect resolves which classification type, if any, is
// attached to the instance.
type ClassificationValueSelect struct {
	Class *admin.Type
	typed bool
}

func (*ClassificationValueSelect) Kind() eql.TokenKind { return eql.TokenClass }

func (v *ClassificationValueSelect) appendColumns(q *Query, alias string, t *admin.Type) []int {
	cols, typed := idAndTypeColumns(q, alias, t)
	v.typed = typed
	return cols
}

func (v *ClassificationValueSelect) resolve(q *Query, objs []any) any {
	if objs[0] == nil {
		return nil
	}
	if v.typed {
		return q.typeOf(objs[1])
	}
	return v.Class
}

// refineSelect maps the type or status produced by its inner select to one
// of its properties: label, name, key, uuid or id.
type refineSelect struct {
	kind  eql.TokenKind
	inner ValueSelect
}

func (v *refineSelect) Kind() eql.TokenKind { return v.kind }

func (v *refineSelect) appendColumns(q *Query, alias string, t *admin.Type) []int {
	return v.inner.appendColumns(q, alias, t)
}

func (v *refineSelect) resolve(q *Query, objs []any) any {
	switch obj := v.inner.resolve(q, objs).(type) {
	case *admin.Type:
		switch v.kind {
		case eql.TokenLabel:
			return obj.Label()
		case eql.TokenUUID:
			return obj.UUID().String()
		case eql.TokenID:
			return obj.ID()
		default:
			return obj.Name()
		}
	case *admin.Status:
		switch v.kind {
		case eql.TokenLabel:
			return obj.Label()
		case eql.TokenUUID:
			return obj.UUID().String()
		case eql.TokenID:
			return obj.ID()
		default:
			return obj.Key()
		}
	}
	return nil
}

// refinable reports whether vs produces a type or status.
func refinable(vs ValueSelect) bool {
	switch v := vs.(type) {
	case *TypeValueSelect, *StatusValueSelect, *ClassificationValueSelect:
		return true
	case *AttributeValueSelect:
		k := v.Attribute.Kind()
		return k == admin.KindStatus || k == admin.KindType
	}
	return false
}

// ValueValueSelect returns the raw database objects of its inner select.
type ValueValueSelect struct {
	inner ValueSelect
}

func (*ValueValueSelect) Kind() eql.TokenKind { return eql.TokenValue }

func (v *ValueValueSelect) appendColumns(q *Query, alias string, t *admin.Type) []int {
	return v.inner.appendColumns(q, alias, t)
}

func (*ValueValueSelect) resolve(_ *Query, objs []any) any {
	if len(objs) == 1 {
		return objs[0]
	}
	return append([]any(nil), objs...)
}

// FormatValueSelect renders the value of its inner select. Dates use the
// pattern as a Go time layout; other values use it as a fmt verb when it
// contains '%'.
type FormatValueSelect struct {
	Pattern string
	inner   ValueSelect
}

func (*FormatValueSelect) Kind() eql.TokenKind { return eql.TokenFormat }

func (v *FormatValueSelect) appendColumns(q *Query, alias string, t *admin.Type) []int {
	return v.inner.appendColumns(q, alias, t)
}

func (v *FormatValueSelect) resolve(q *Query, objs []any) any {
	return Format(present(v.inner.resolve(q, objs)), v.Pattern)
}

// Format renders value with pattern. nil stays nil.
func Format(value any, pattern string) any {
	switch val := value.(type) {
	case nil:
		return nil
	case time.Time:
		return val.Format(pattern)
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = Format(present(item), pattern)
		}
		return out
	}
	if strings.Contains(pattern, "%") {
		return fmt.Sprintf(pattern, value)
	}
	s, err := cast.ToStringE(value)
	if err != nil {
		return fmt.Sprint(value)
	}
	return s
}

// present maps resolved objects to their output form: types by name,
// statuses by key and null times to nil.
func present(v any) any {
	switch val := v.(type) {
	case *admin.Type:
		if val == nil {
			return nil
		}
		return val.Name()
	case *admin.Status:
		if val == nil {
			return nil
		}
		return val.Key()
	case sql.NullTime:
		if !val.Valid {
			return nil
		}
		return val.Time
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = present(item)
		}
		return out
	}
	return v
}

func idColumn(t *admin.Type) string {
	if t != nil {
		if attr := t.IDAttribute(); attr != nil {
			return attr.Column()
		}
	}
	return "ID"
}

// idAndTypeColumns selects the id and, on shared tables, the discriminator
// of the instance at alias. typed reports whether the second column exists.
func idAndTypeColumns(q *Query, alias string, t *admin.Type) ([]int, bool) {
	cols := []int{q.st.Select().Column(alias, idColumn(t))}
	if t == nil || t.MainTable() == nil || !t.MainTable().HasTypeColumn() {
		return cols, false
	}
	return append(cols, q.st.Select().Column(alias, t.MainTable().TypeColumn())), true
}
