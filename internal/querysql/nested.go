package querysql

import (
	"github.com/efaps/efql/internal/eql"
)

// compileNested realizes an element whose right side is a sub-selection:
//
//	outer.column IN (SELECT ... FROM ... WHERE ...)
//
// The nested statement has its own alias space and is rendered to text
// before it is embedded.
func (s *Statement) compileNested(g *Group, conn eql.Connection, tgt target, el *eql.Element) error {
	nq := el.Nested
	if len(nq.Types) == 0 {
		return ErrNestedWithoutTypes.New(tgt.alias + "." + tgt.column)
	}
	types := ResolveTypes(s.res, nq.Types, s.log)
	if len(types) == 0 {
		s.log.Warn("nested query resolves no types", "types", nq.Types)
		return nil
	}
	types = ExpandTypes(types, !s.opts.ExcludeChildTypes)

	child, err := s.Nested(types)
	if err != nil {
		return err
	}
	if err := child.project(nq.Select); err != nil {
		return err
	}
	if err := child.ApplyWhere(nq.Where); err != nil {
		return err
	}

	comp := CompIn
	if el.Op.Negated() {
		comp = CompNotIn
	}
	g.Add(Criteria{
		Alias:      tgt.alias,
		Column:     tgt.column,
		Comparison: comp,
		Subquery:   child.SQL(),
		OrNull:     tgt.nullable,
		Conn:       conn,
	})
	return nil
}

// project adds the single column a nested statement returns: the selected
// attribute, or the ID of the first type when nothing is selected or the
// selection does not resolve.
func (s *Statement) project(selection string) error {
	if selection != "" {
		tgt, ok, err := s.resolveTarget("", selection)
		if err != nil {
			return err
		}
		if ok {
			s.sel.Column(tgt.alias, tgt.column)
			return nil
		}
	}
	first := s.types[0]
	s.sel.Column(s.MainAlias(first), first.IDAttribute().Column())
	return nil
}
