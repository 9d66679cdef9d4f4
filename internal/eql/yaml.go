package eql

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/efaps/efql/internal/ir"
)

// queryDoc is the YAML shape of a Query.
type queryDoc struct {
	Types             []string  `yaml:"types"`
	ExcludeChildTypes bool      `yaml:"exclude_child_types,omitempty"`
	Select            []string  `yaml:"select,omitempty"`
	Where             []termDoc `yaml:"where,omitempty"`
	Limit             int       `yaml:"limit,omitempty"`
	Offset            int       `yaml:"offset,omitempty"`
}

// termDoc is one where term. A term with Group is a GroupTerm, anything
// else is an ElementTerm.
type termDoc struct {
	Conn       string     `yaml:"conn,omitempty"`
	Group      []termDoc  `yaml:"group,omitempty"`
	Attribute  string     `yaml:"attribute,omitempty"`
	Select     string     `yaml:"select,omitempty"`
	Op         string     `yaml:"op,omitempty"`
	Value      any        `yaml:"value,omitempty"`
	Values     []any      `yaml:"values,omitempty"`
	IgnoreCase bool       `yaml:"ignore_case,omitempty"`
	Nested     *nestedDoc `yaml:"nested,omitempty"`
}

type nestedDoc struct {
	Types  []string  `yaml:"types"`
	Select string    `yaml:"select,omitempty"`
	Where  []termDoc `yaml:"where,omitempty"`
}

// DecodeYAML reads one query document.
func DecodeYAML(r io.Reader) (*Query, error) {
	var q Query
	if err := yaml.NewDecoder(r).Decode(&q); err != nil {
		return nil, fmt.Errorf("decode query: %w", err)
	}
	return &q, nil
}

// UnmarshalYAML decodes the document shape into the tree.
func (q *Query) UnmarshalYAML(node *yaml.Node) error {
	var doc queryDoc
	if err := node.Decode(&doc); err != nil {
		return err
	}
	where, err := decodeTerms("where", doc.Where)
	if err != nil {
		return fmt.Errorf("line %d: %w", node.Line, err)
	}
	*q = Query{
		Types:             doc.Types,
		ExcludeChildTypes: doc.ExcludeChildTypes,
		Selects:           doc.Select,
		Limit:             doc.Limit,
		Offset:            doc.Offset,
	}
	if len(where) > 0 {
		q.Where = &Where{Terms: where}
	}
	return nil
}

// MarshalYAML encodes the tree in the same shape UnmarshalYAML reads.
func (q Query) MarshalYAML() (any, error) {
	doc := queryDoc{
		Types:             q.Types,
		ExcludeChildTypes: q.ExcludeChildTypes,
		Select:            q.Selects,
		Limit:             q.Limit,
		Offset:            q.Offset,
	}
	if q.Where != nil {
		doc.Where = encodeTerms(q.Where.Terms)
	}
	return doc, nil
}

func decodeTerms(path string, docs []termDoc) ([]Term, error) {
	terms := make([]Term, 0, len(docs))
	for i, d := range docs {
		p := fmt.Sprintf("%s[%d]", path, i)
		conn, err := ParseConnection(d.Conn)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", p, err)
		}

		if len(d.Group) > 0 {
			if d.Attribute != "" || d.Select != "" || d.Op != "" {
				return nil, fmt.Errorf("%s: group terms take no attribute, select or op", p)
			}
			sub, err := decodeTerms(p+".group", d.Group)
			if err != nil {
				return nil, err
			}
			terms = append(terms, &GroupTerm{Conn: conn, Terms: sub})
			continue
		}

		el, err := decodeElement(p, d)
		if err != nil {
			return nil, err
		}
		terms = append(terms, &ElementTerm{Conn: conn, Element: el})
	}
	return terms, nil
}

func decodeElement(path string, d termDoc) (Element, error) {
	op, err := ParseOp(d.Op)
	if d.Op == "" {
		op, err = OpEqual, nil
	}
	if err != nil {
		return Element{}, fmt.Errorf("%s: %w", path, err)
	}

	raw := d.Values
	if d.Value != nil {
		raw = append([]any{d.Value}, raw...)
	}
	values := make([]ir.IRValue, 0, len(raw))
	for j, r := range raw {
		v, err := ir.FromAny(r)
		if err != nil {
			return Element{}, fmt.Errorf("%s.values[%d]: %w", path, j, err)
		}
		values = append(values, v)
	}

	el := Element{
		Attribute:  d.Attribute,
		Select:     d.Select,
		Op:         op,
		Values:     values,
		IgnoreCase: d.IgnoreCase,
	}
	if d.Nested != nil {
		nested := &NestedQuery{Types: d.Nested.Types, Select: d.Nested.Select}
		sub, err := decodeTerms(path+".nested.where", d.Nested.Where)
		if err != nil {
			return Element{}, err
		}
		if len(sub) > 0 {
			nested.Where = &Where{Terms: sub}
		}
		el.Nested = nested
		if d.Op == "" {
			el.Op = OpIn
		}
	}
	return el, nil
}

func encodeTerms(terms []Term) []termDoc {
	docs := make([]termDoc, 0, len(terms))
	for i, t := range terms {
		var d termDoc
		if i > 0 && t.Connection() == Or {
			d.Conn = "or"
		}
		switch term := t.(type) {
		case *GroupTerm:
			d.Group = encodeTerms(term.Terms)
		case *ElementTerm:
			el := term.Element
			d.Attribute = el.Attribute
			d.Select = el.Select
			d.Op = string(el.Op)
			d.IgnoreCase = el.IgnoreCase
			for _, v := range el.Values {
				d.Values = append(d.Values, toAny(v))
			}
			if el.Nested != nil {
				d.Nested = &nestedDoc{Types: el.Nested.Types, Select: el.Nested.Select}
				if el.Nested.Where != nil {
					d.Nested.Where = encodeTerms(el.Nested.Where.Terms)
				}
			}
		}
		docs = append(docs, d)
	}
	return docs
}

func toAny(v ir.IRValue) any {
	switch val := v.(type) {
	case ir.IRString:
		return string(val)
	case ir.IRInt:
		return int64(val)
	case ir.IRBool:
		return bool(val)
	case ir.IRArray:
		out := make([]any, len(val))
		for i, e := range val {
			out[i] = toAny(e)
		}
		return out
	case ir.IRObject:
		out := make(map[string]any, len(val))
		for k, e := range val {
			out[k] = toAny(e)
		}
		return out
	default:
		return nil
	}
}
