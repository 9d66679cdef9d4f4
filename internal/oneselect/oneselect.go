package oneselect

import (
	"strings"

	"github.com/efaps/efql/internal/admin"
	"github.com/efaps/efql/internal/eql"
	"github.com/efaps/efql/internal/store"
)

type state int

const (
	stateNone state = iota
	stateValue
	stateDelegating
)

// OneSelect is one selection of a Query: the joins it needs, its terminal
// value select and the objects captured for every result row.
type OneSelect struct {
	selection string
	tokens    []eql.Token
	q         *Query

	state       state
	parts       []Part
	valueSelect ValueSelect
	cols        []int

	// delegation to a fan-out child
	fromSelect *LinkFromSelect
	child      *OneSelect
	linkIDCol  int

	objects [][]any
	values  []any
}

func newOneSelect(q *Query, selection string) (*OneSelect, error) {
	tokens, err := eql.ParseSelection(selection)
	if err != nil {
		return nil, err
	}
	o := &OneSelect{selection: selection, tokens: tokens, q: q, linkIDCol: -1}
	if err := o.analyze(); err != nil {
		return nil, err
	}
	return o, nil
}

// Selection returns the selection as written.
func (o *OneSelect) Selection() string { return o.selection }

// Parts returns the join steps in chain order.
func (o *OneSelect) Parts() []Part { return o.parts }

// ValueSelect returns the terminal value select, or nil when the selection
// did not resolve or delegates to a fan-out.
func (o *OneSelect) ValueSelect() ValueSelect { return o.valueSelect }

// LinkFrom returns the fan-out this selection delegates to, or nil.
func (o *OneSelect) LinkFrom() *LinkFromSelect { return o.fromSelect }

// Columns returns the select-list positions read by the value select.
func (o *OneSelect) Columns() []int { return o.cols }

// analyze walks the tokens and appends the needed joins and columns to the
// query's statement.
func (o *OneSelect) analyze() error {
	q := o.q
	log := q.log.With("selection", o.selection)

	alias := ""
	var cur *admin.Type
	for i, tok := range o.tokens {
		if o.state == stateValue {
			o.refine(tok)
			continue
		}
		last := i == len(o.tokens)-1

		switch tok.Kind {
		case eql.TokenLinkTo:
			t, attr, err := o.lookup(cur, tok.Payload)
			if err != nil {
				return err
			}
			if attr == nil || attr.Kind() != admin.KindLink {
				log.Warn("link attribute not found", "attribute", tok.Payload)
				return nil
			}
			colAlias := o.route(o.base(alias, t), t, attr)
			next, target := q.st.LinkTo(colAlias, attr)
			if target == nil {
				log.Warn("link target has no table", "attribute", attr.String())
				return nil
			}
			o.parts = append(o.parts, &LinkToPart{Attribute: attr, To: next})
			alias, cur = next, target

		case eql.TokenClass:
			class, ok := q.res.Type(tok.Payload)
			if !ok || !class.IsClassification() {
				log.Warn("classification not found", "class", tok.Payload)
				return nil
			}
			from := cur
			if from == nil {
				from = q.classified(class)
			}
			classAlias := q.st.Classification(o.base(alias, from), class)
			if classAlias == "" {
				log.Warn("classification has no table", "class", class.Name())
				return nil
			}
			o.parts = append(o.parts, &ClassPart{Class: class, To: classAlias})
			alias, cur = classAlias, class
			if last {
				o.setValue(&ClassificationValueSelect{Class: class}, alias, class)
			}

		case eql.TokenLinkFrom, eql.TokenAttributeSet:
			return o.delegate(alias, cur, tok, o.tokens[:i+1], o.tokens[i+1:])

		case eql.TokenAttribute:
			t, attr, err := o.lookup(cur, tok.Payload)
			if err != nil {
				return err
			}
			if attr == nil {
				log.Warn("attribute not found", "attribute", tok.Payload)
				return nil
			}
			if attr.Kind() == admin.KindAttributeSet {
				log.Warn("attribute set selected as value; use attributeset[...]", "attribute", attr.String())
				return nil
			}
			o.setValue(&AttributeValueSelect{Attribute: attr}, o.route(o.base(alias, t), t, attr), t)

		case eql.TokenStatus, eql.TokenKey:
			t := o.current(cur, (*admin.Type).StatusAttribute)
			if t == nil {
				log.Warn("type has no status")
				return nil
			}
			attr := t.StatusAttribute()
			var vs ValueSelect = &StatusValueSelect{Attribute: attr}
			if tok.Kind == eql.TokenKey {
				vs = &refineSelect{kind: eql.TokenKey, inner: vs}
			}
			o.setValue(vs, o.route(o.base(alias, t), t, attr), t)

		case eql.TokenType, eql.TokenLabel, eql.TokenName, eql.TokenUUID:
			t := o.current(cur, nil)
			var vs ValueSelect = &TypeValueSelect{}
			if tok.Kind != eql.TokenType {
				vs = &refineSelect{kind: tok.Kind, inner: vs}
			}
			o.setValue(vs, o.base(alias, t), t)

		case eql.TokenOID:
			t := o.current(cur, nil)
			o.setValue(&OIDValueSelect{}, o.base(alias, t), t)

		case eql.TokenID:
			t := o.current(cur, nil)
			o.setValue(&IDValueSelect{}, o.base(alias, t), t)

		default:
			log.Warn("selection token needs a value before it", "token", tok.String())
			return nil
		}
	}

	if o.state == stateNone && len(o.parts) > 0 {
		// a chain of hops selects the instance it ends on
		o.setValue(&OIDValueSelect{}, alias, cur)
	}
	return nil
}

// refine applies a token that follows the terminal value select.
func (o *OneSelect) refine(tok eql.Token) {
	switch tok.Kind {
	case eql.TokenLabel, eql.TokenName, eql.TokenKey, eql.TokenUUID, eql.TokenID:
		if refinable(o.valueSelect) {
			o.valueSelect = &refineSelect{kind: tok.Kind, inner: o.valueSelect}
			return
		}
	case eql.TokenValue:
		o.valueSelect = &ValueValueSelect{inner: o.valueSelect}
		return
	case eql.TokenFormat:
		o.valueSelect = &FormatValueSelect{Pattern: tok.Payload, inner: o.valueSelect}
		return
	}
	o.q.log.Warn("selection token not applicable to value", "selection", o.selection, "token", tok.String())
}

func (o *OneSelect) setValue(vs ValueSelect, alias string, t *admin.Type) {
	o.valueSelect = vs
	o.cols = vs.appendColumns(o.q, alias, t)
	o.state = stateValue
}

// lookup resolves an attribute name on cur, or on the query types before the
// first hop. A name cur does not know is searched on cur's direct children.
func (o *OneSelect) lookup(cur *admin.Type, name string) (*admin.Type, *admin.Attribute, error) {
	if cur == nil {
		t, attr, err := o.q.st.ResolveAttribute(name)
		if err != nil || attr != nil {
			return t, attr, err
		}
		for _, base := range o.q.types {
			if child, attr := childAttribute(base, name); attr != nil {
				return child, attr, nil
			}
		}
		return nil, nil, nil
	}
	if attr := cur.Attribute(name); attr != nil {
		return cur, attr, nil
	}
	child, attr := childAttribute(cur, name)
	return child, attr, nil
}

func childAttribute(t *admin.Type, name string) (*admin.Type, *admin.Attribute) {
	for _, child := range t.Children() {
		if attr := child.Attribute(name); attr != nil {
			return child, attr
		}
	}
	return nil, nil
}

// current returns cur, or the first query type for which has answers
// (any type when has is nil).
func (o *OneSelect) current(cur *admin.Type, has func(*admin.Type) *admin.Attribute) *admin.Type {
	if cur != nil {
		if has != nil && has(cur) == nil {
			return nil
		}
		return cur
	}
	for _, t := range o.q.types {
		if has == nil || has(t) != nil {
			return t
		}
	}
	return nil
}

func (o *OneSelect) base(alias string, t *admin.Type) string {
	if alias != "" {
		return alias
	}
	return o.q.st.MainAlias(t)
}

// route returns the alias holding attr, joining a child table once when
// the attribute is not stored in the main table.
func (o *OneSelect) route(base string, t *admin.Type, attr *admin.Attribute) string {
	alias := o.q.st.AttributeAlias(base, t, attr)
	if alias == base {
		return alias
	}
	for _, p := range o.parts {
		if p.Alias() == alias {
			return alias
		}
	}
	o.parts = append(o.parts, &ChildTablePart{Table: attr.Table(), To: alias})
	return alias
}

// delegate hands the tokens after a linkfrom or attributeset step to a
// fan-out child query.
func (o *OneSelect) delegate(alias string, cur *admin.Type, tok eql.Token, head, rest []eql.Token) error {
	q := o.q
	log := q.log.With("selection", o.selection)

	var linkType *admin.Type
	var linkAttr *admin.Attribute
	from := cur
	switch tok.Kind {
	case eql.TokenLinkFrom:
		t, ok := q.res.Type(tok.Type)
		if !ok {
			log.Warn("linkfrom type not found", "type", tok.Type)
			return nil
		}
		linkType, linkAttr = t, t.Attribute(tok.Attribute)
		if from == nil {
			from = o.current(nil, nil)
		}
	case eql.TokenAttributeSet:
		t, set, err := o.lookup(cur, tok.Payload)
		if err != nil {
			return err
		}
		if set == nil || set.Kind() != admin.KindAttributeSet || set.SetType() == nil {
			log.Warn("attribute set not found", "attribute", tok.Payload)
			return nil
		}
		linkType, linkAttr, from = set.SetType(), set.SetType().Attribute(set.SetLink()), t
	}
	if linkAttr == nil || linkAttr.Kind() != admin.KindLink {
		log.Warn("fan-out link attribute not found", "token", tok.String())
		return nil
	}

	lf, err := q.linkFrom(joinTokens(head), linkType, linkAttr)
	if err != nil {
		return err
	}
	childSelection := joinTokens(rest)
	if childSelection == "" {
		childSelection = string(eql.TokenOID)
	}
	child, err := lf.query.AddSelect(childSelection)
	if err != nil {
		return err
	}

	o.linkIDCol = q.st.Select().Column(o.base(alias, from), idColumn(from))
	o.fromSelect, o.child = lf, child
	lf.parents = append(lf.parents, o)
	o.state = stateDelegating
	return nil
}

func joinTokens(tokens []eql.Token) string {
	parts := make([]string, len(tokens))
	for i, t := range tokens {
		parts[i] = t.String()
	}
	return strings.Join(parts, ".")
}

// AddObject captures the objects of one result row: the columns of the
// value select, or the id the fan-out is keyed by.
func (o *OneSelect) AddObject(row store.Row) {
	switch o.state {
	case stateValue:
		objs := make([]any, len(o.cols))
		for i, c := range o.cols {
			objs[i] = row[c]
		}
		o.objects = append(o.objects, objs)
	case stateDelegating:
		o.objects = append(o.objects, []any{row[o.linkIDCol]})
	default:
		o.objects = append(o.objects, nil)
	}
	o.values = nil
}

// IsMultiple reports whether more than one row was captured.
func (o *OneSelect) IsMultiple() bool {
	return len(o.objects) > 1
}

// Objects returns the raw objects captured per row.
func (o *OneSelect) Objects() [][]any { return o.objects }

// Values returns one value per captured row. Fan-out selections yield a
// []any per row holding the child values in child row order.
func (o *OneSelect) Values() []any {
	if o.values != nil {
		return o.values
	}
	out := make([]any, len(o.objects))
	for i, objs := range o.objects {
		switch o.state {
		case stateValue:
			out[i] = present(o.valueSelect.resolve(o.q, objs))
		case stateDelegating:
			if id, ok := store.Int64(objs[0]); ok {
				out[i] = o.fromSelect.valuesFor(o.child, id)
			}
		}
	}
	o.values = out
	return out
}

// Value returns the value of row i.
func (o *OneSelect) Value(i int) any {
	values := o.Values()
	if i < 0 || i >= len(values) {
		return nil
	}
	return values[i]
}

// linkIDs returns the distinct fan-out keys captured so far.
func (o *OneSelect) linkIDs() []int64 {
	var ids []int64
	for _, objs := range o.objects {
		if id, ok := store.Int64(objs[0]); ok {
			ids = append(ids, id)
		}
	}
	return ids
}
