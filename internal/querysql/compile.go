package querysql

import (
	"fmt"
	"strings"

	"github.com/efaps/efql/internal/admin"
	"github.com/efaps/efql/internal/eql"
)

// target is the resolved left side of a where element.
type target struct {
	alias  string
	column string
	kind   admin.AttributeKind
	attr   *admin.Attribute
	// nullable is set when alias was reached over an optional join.
	nullable bool
}

// ApplyWhere compiles the where tree into the statement and then emits the
// collected type criteria. A nil tree only emits the type criteria.
//
// Unknown names are logged and their elements skipped. Structural errors
// (nesting depth, nested queries without types, ambiguity under
// ErrorOnAmbiguity) abort compilation.
func (s *Statement) ApplyWhere(where *eql.Where) error {
	if !where.Empty() {
		group := s.sel.where.Root()
		if hasOr(where.Terms) {
			group = group.AddGroup(eql.And)
		}
		if err := s.compileTerms(group, where.Terms); err != nil {
			return err
		}
	}
	s.sel.ApplyTypeCriteria()
	return nil
}

func hasOr(terms []eql.Term) bool {
	for i, t := range terms {
		if i > 0 && t.Connection() == eql.Or {
			return true
		}
	}
	return false
}

func (s *Statement) compileTerms(g *Group, terms []eql.Term) error {
	for _, t := range terms {
		switch term := t.(type) {
		case *eql.ElementTerm:
			if err := s.compileElement(g, term.Conn, &term.Element); err != nil {
				return err
			}
		case *eql.GroupTerm:
			if err := s.compileTerms(g.AddGroup(term.Conn), term.Terms); err != nil {
				return err
			}
		default:
			return fmt.Errorf("unsupported where term: %T", t)
		}
	}
	return nil
}

func (s *Statement) compileElement(g *Group, conn eql.Connection, el *eql.Element) error {
	tgt, ok, err := s.resolveTarget(el.Attribute, el.Select)
	if err != nil || !ok {
		return err
	}
	if el.Nested != nil {
		return s.compileNested(g, conn, tgt, el)
	}

	op := el.Op.Canonical()
	if el.NullValue() {
		switch op {
		case eql.OpEqual, eql.OpIn:
			op = eql.OpIsNull
		case eql.OpUnequal, eql.OpNotIn:
			op = eql.OpNotNull
		}
	}

	c := Criteria{
		Alias:      tgt.alias,
		Column:     tgt.column,
		Comparison: comparisonFor(op),
		IgnoreCase: el.IgnoreCase,
		OrNull:     tgt.nullable && !op.IsNullCheck(),
		Conn:       conn,
	}
	if !op.IsNullCheck() {
		conv := s.convertValues(tgt.kind, tgt.attr, el.Values)
		c.Values = conv.values
		c.Escape = conv.escape
		c.Raw = conv.raw
	}
	if op == eql.OpLike {
		for i, v := range c.Values {
			c.Values[i] = strings.ReplaceAll(v, "*", "%")
		}
		c.Escape = true
		c.Raw = false
	}
	g.Add(c)
	return nil
}

// resolveTarget finds the column an element compares. Either attribute
// names a bare attribute of the candidate types or selection is a token
// chain such as linkto[Owner].attribute[Name]. ok is false when a name did
// not resolve; the miss has been logged.
func (s *Statement) resolveTarget(attribute, selection string) (target, bool, error) {
	if attribute != "" {
		t, attr, err := s.ResolveAttribute(attribute)
		if err != nil {
			return target{}, false, err
		}
		if attr == nil {
			s.log.Warn("attribute not found", "attribute", attribute, "types", typeNames(s.types))
			return target{}, false, nil
		}
		return s.attributeTarget(s.MainAlias(t), t, attr, attribute)
	}

	tokens, err := eql.ParseSelection(selection)
	if err != nil {
		return target{}, false, err
	}

	var cur *admin.Type
	alias := ""
	for i, tok := range tokens {
		last := i == len(tokens)-1
		if !last && !tok.IsHop() {
			s.log.Warn("selection continues after terminal", "selection", selection, "token", tok.String())
			return target{}, false, nil
		}

		switch tok.Kind {
		case eql.TokenLinkTo:
			t, attr, err := s.lookup(cur, tok.Payload)
			if err != nil {
				return target{}, false, err
			}
			if attr == nil || attr.Kind() != admin.KindLink {
				s.log.Warn("link attribute not found", "selection", selection, "attribute", tok.Payload)
				return target{}, false, nil
			}
			base := s.baseAlias(alias, t)
			colAlias := s.AttributeAlias(base, t, attr)
			if last {
				return target{alias: colAlias, column: attr.Column(), kind: admin.KindLink, attr: attr,
					nullable: s.sel.IsNullable(colAlias)}, true, nil
			}
			alias, cur = s.LinkTo(colAlias, attr)
			if cur == nil {
				s.log.Warn("link target has no table", "selection", selection, "attribute", attr.String())
				return target{}, false, nil
			}

		case eql.TokenClass:
			class, ok := s.res.Type(tok.Payload)
			if !ok || !class.IsClassification() {
				s.log.Warn("classification not found", "selection", selection, "class", tok.Payload)
				return target{}, false, nil
			}
			base := s.baseAlias(alias, s.classifiedType(cur, class))
			if last {
				s.log.Warn("classification used as where terminal", "selection", selection)
				return target{}, false, nil
			}
			alias, cur = s.Classification(base, class), class

		case eql.TokenAttribute:
			t, attr, err := s.lookup(cur, tok.Payload)
			if err != nil {
				return target{}, false, err
			}
			if attr == nil {
				s.log.Warn("attribute not found", "selection", selection, "attribute", tok.Payload)
				return target{}, false, nil
			}
			return s.attributeTarget(s.baseAlias(alias, t), t, attr, selection)

		case eql.TokenStatus:
			t, attr := s.pick(cur, (*admin.Type).StatusAttribute)
			if attr == nil {
				s.log.Warn("type has no status", "selection", selection, "types", typeNames(s.types))
				return target{}, false, nil
			}
			return s.attributeTarget(s.baseAlias(alias, t), t, attr, selection)

		case eql.TokenType:
			t, attr := s.pick(cur, (*admin.Type).TypeAttribute)
			if attr == nil {
				s.log.Warn("type has no discriminator", "selection", selection, "types", typeNames(s.types))
				return target{}, false, nil
			}
			return s.attributeTarget(s.baseAlias(alias, t), t, attr, selection)

		case eql.TokenID, eql.TokenOID:
			t, attr := s.pick(cur, (*admin.Type).IDAttribute)
			if attr == nil {
				return target{}, false, nil
			}
			tgt, ok, err := s.attributeTarget(s.baseAlias(alias, t), t, attr, selection)
			if tok.Kind == eql.TokenOID {
				// object identifiers compare by their row id part
				tgt.kind = admin.KindLink
			}
			return tgt, ok, err

		default:
			s.log.Warn("selection token not usable in where", "selection", selection, "token", tok.String())
			return target{}, false, nil
		}
	}
	s.log.Warn("selection has no terminal", "selection", selection)
	return target{}, false, nil
}

func (s *Statement) attributeTarget(base string, t *admin.Type, attr *admin.Attribute, name string) (target, bool, error) {
	if attr.Kind() == admin.KindAttributeSet {
		s.log.Warn("attribute set cannot be compared", "attribute", name)
		return target{}, false, nil
	}
	alias := s.AttributeAlias(base, t, attr)
	return target{
		alias:    alias,
		column:   attr.Column(),
		kind:     attr.Kind(),
		attr:     attr,
		nullable: s.sel.IsNullable(alias),
	}, true, nil
}

// lookup resolves name on cur, or on the candidate types before the first
// hop.
func (s *Statement) lookup(cur *admin.Type, name string) (*admin.Type, *admin.Attribute, error) {
	if cur == nil {
		return s.ResolveAttribute(name)
	}
	return cur, cur.Attribute(name), nil
}

// pick applies get to cur, or to the candidate types in order until one
// answers.
func (s *Statement) pick(cur *admin.Type, get func(*admin.Type) *admin.Attribute) (*admin.Type, *admin.Attribute) {
	if cur != nil {
		return cur, get(cur)
	}
	for _, t := range s.types {
		if attr := get(t); attr != nil {
			return t, attr
		}
	}
	return nil, nil
}

// baseAlias is the main table alias of the current hop, or of t before the
// first hop.
func (s *Statement) baseAlias(alias string, t *admin.Type) string {
	if alias != "" {
		return alias
	}
	return s.MainAlias(t)
}

// classifiedType picks the type a classification join starts from.
func (s *Statement) classifiedType(cur, class *admin.Type) *admin.Type {
	if cur != nil {
		return cur
	}
	for _, t := range s.types {
		if t.IsKindOf(class.Classifies()) {
			return t
		}
	}
	return s.types[0]
}
