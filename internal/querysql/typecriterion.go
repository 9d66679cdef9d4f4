package querysql

import (
	"sort"
	"strconv"

	"github.com/efaps/efql/internal/eql"
)

// TypeCriterion restricts the discriminator column of one alias to a type.
//
// Criteria are identified by their qualified column and type id, so the
// same restriction reached over different paths collapses into one.
type TypeCriterion struct {
	Alias    string
	Column   string
	TypeID   int64
	Nullable bool
}

type typeCriterionKey struct {
	column string
	typeID int64
}

func (tc TypeCriterion) key() typeCriterionKey {
	return typeCriterionKey{column: tc.Alias + "." + tc.Column, typeID: tc.TypeID}
}

// AddTypeCriterion collects a discriminator restriction. A duplicate is
// dropped; if either copy is nullable the kept one becomes nullable.
func (s *SQLSelect) AddTypeCriterion(tc TypeCriterion) {
	k := tc.key()
	if i, ok := s.typeCriteriaIdx[k]; ok {
		if tc.Nullable {
			s.typeCriteria[i].Nullable = true
		}
		return
	}
	s.typeCriteriaIdx[k] = len(s.typeCriteria)
	s.typeCriteria = append(s.typeCriteria, tc)
}

// TypeCriteria returns the collected criteria sorted by alias and type id.
func (s *SQLSelect) TypeCriteria() []TypeCriterion {
	out := append([]TypeCriterion(nil), s.typeCriteria...)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Alias != out[j].Alias {
			return out[i].Alias < out[j].Alias
		}
		return out[i].TypeID < out[j].TypeID
	})
	return out
}

// ApplyTypeCriteria emits the collected criteria, at most one predicate per
// alias and column:
//
//   - any nullable criterion: (col = v1 OR ... OR col IS NULL) in WHERE
//   - alias is a LEFT JOIN: AND col IN (...) on the join's ON clause
//   - otherwise: col IN (...) AND-ed into WHERE
//
// Calling it again is a no-op.
func (s *SQLSelect) ApplyTypeCriteria() {
	if s.typeCriteriaApplied {
		return
	}
	s.typeCriteriaApplied = true

	type bucket struct {
		alias, column string
		ids           []string
		nullable      bool
	}
	var buckets []*bucket
	byColumn := make(map[string]*bucket)
	for _, tc := range s.TypeCriteria() {
		col := tc.Alias + "." + tc.Column
		b, ok := byColumn[col]
		if !ok {
			b = &bucket{alias: tc.Alias, column: tc.Column}
			byColumn[col] = b
			buckets = append(buckets, b)
		}
		b.ids = append(b.ids, strconv.FormatInt(tc.TypeID, 10))
		b.nullable = b.nullable || tc.Nullable
	}

	for _, b := range buckets {
		switch entry := s.fromByAlias[b.alias]; {
		case b.nullable:
			g := s.where.root.AddGroup(eql.And)
			for i, id := range b.ids {
				conn := eql.Or
				if i == 0 {
					conn = eql.And
				}
				g.Add(Criteria{Alias: b.alias, Column: b.column, Comparison: CompEqual, Values: []string{id}, Conn: conn})
			}
			g.Add(Criteria{Alias: b.alias, Column: b.column, Comparison: CompIsNull, Conn: eql.Or})
		case entry != nil && entry.LeftJoin:
			entry.typeColumn = b.column
			entry.typeIDs = append(entry.typeIDs, b.ids...)
		default:
			s.where.Add(Criteria{Alias: b.alias, Column: b.column, Comparison: CompIn, Values: b.ids, Conn: eql.And})
		}
	}
}
