package eql

import (
	"fmt"

	"github.com/efaps/efql/internal/ir"
)

// Validate checks the structural shape of a query: types are present,
// every selection parses, every element names exactly one left side and
// carries values that fit its operator.
//
// Operator spellings such as ">" or "not in" are rewritten to their
// canonical constant in place.
//
// Validate never consults the admin model. Unknown type or attribute
// names are metadata misses handled while compiling.
func Validate(q *Query) error {
	if q == nil {
		return ErrInvalidQuery.New("query", "nil query")
	}
	if len(q.Types) == 0 {
		return ErrInvalidQuery.New("types", "at least one type is required")
	}
	for i, name := range q.Types {
		if name == "" {
			return ErrInvalidQuery.New(fmt.Sprintf("types[%d]", i), "empty type name")
		}
	}
	for i, sel := range q.Selects {
		if _, err := ParseSelection(sel); err != nil {
			return ErrInvalidQuery.New(fmt.Sprintf("select[%d]", i), err.Error())
		}
	}
	if q.Limit < 0 || q.Offset < 0 {
		return ErrInvalidQuery.New("limit", "limit and offset must not be negative")
	}
	if q.Where != nil {
		return validateTerms("where", q.Where.Terms)
	}
	return nil
}

func validateTerms(path string, terms []Term) error {
	for i, t := range terms {
		p := fmt.Sprintf("%s[%d]", path, i)
		switch term := t.(type) {
		case *ElementTerm:
			if err := validateElement(p, &term.Element); err != nil {
				return err
			}
		case *GroupTerm:
			if len(term.Terms) == 0 {
				return ErrInvalidQuery.New(p, "empty group")
			}
			if err := validateTerms(p+".group", term.Terms); err != nil {
				return err
			}
		case nil:
			return ErrInvalidQuery.New(p, "nil term")
		default:
			return ErrInvalidQuery.New(p, fmt.Sprintf("unknown term type %T", t))
		}
	}
	return nil
}

func validateElement(path string, el *Element) error {
	switch {
	case el.Attribute == "" && el.Select == "":
		return ErrInvalidQuery.New(path, "element needs attribute or select")
	case el.Attribute != "" && el.Select != "":
		return ErrInvalidQuery.New(path, "element takes either attribute or select")
	}
	if el.Select != "" {
		if _, err := ParseSelection(el.Select); err != nil {
			return ErrInvalidQuery.New(path, err.Error())
		}
	}
	op, err := ParseOp(string(el.Op))
	if err != nil {
		return ErrInvalidQuery.New(path, err.Error())
	}
	el.Op = op

	if el.Nested != nil {
		if len(el.Values) > 0 {
			return ErrInvalidQuery.New(path, "nested query takes no values")
		}
		switch el.Op {
		case OpEqual, OpIn, OpUnequal, OpNotIn:
		default:
			return ErrInvalidQuery.New(path, fmt.Sprintf("operator %q cannot compare with a nested query", el.Op))
		}
		if el.Nested.Select != "" {
			if _, err := ParseSelection(el.Nested.Select); err != nil {
				return ErrInvalidQuery.New(path+".nested", err.Error())
			}
		}
		if el.Nested.Where != nil {
			return validateTerms(path+".nested.where", el.Nested.Where.Terms)
		}
		return nil
	}

	switch {
	case el.Op.IsNullCheck() && len(el.Values) > 0:
		return ErrInvalidQuery.New(path, fmt.Sprintf("operator %q takes no values", el.Op))
	case !el.Op.IsNullCheck() && len(el.Values) == 0:
		return ErrInvalidQuery.New(path, fmt.Sprintf("operator %q needs at least one value", el.Op))
	}
	if hasNull(el.Values) {
		switch {
		case !el.NullValue():
			return ErrInvalidQuery.New(path, "null cannot be combined with other values, use isnull or notnull")
		case el.Op != OpEqual && el.Op != OpUnequal && el.Op != OpIn && el.Op != OpNotIn:
			return ErrInvalidQuery.New(path, fmt.Sprintf("operator %q cannot compare with null, use isnull or notnull", el.Op))
		}
	}
	return nil
}

func hasNull(values []ir.IRValue) bool {
	for _, v := range values {
		switch val := v.(type) {
		case ir.IRNull:
			return true
		case ir.IRArray:
			if hasNull(val) {
				return true
			}
		}
	}
	return false
}
