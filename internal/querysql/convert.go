package querysql

import (
	"strconv"

	"github.com/spf13/cast"

	"github.com/efaps/efql/internal/admin"
	"github.com/efaps/efql/internal/ir"
)

// converted is the SQL-ready right side of a criteria.
type converted struct {
	values []string
	escape bool
	raw    bool
}

// convertValues turns literals into SQL value texts according to the kind
// of the compared column. This is the only place that switches on the
// attribute kind for value conversion.
//
// Lookup failures never fail compilation: the literal is kept and the miss
// is logged.
func (s *Statement) convertValues(kind admin.AttributeKind, attr *admin.Attribute, values []ir.IRValue) converted {
	texts := ir.Texts(values)
	out := converted{values: make([]string, 0, len(texts))}

	switch kind {
	case admin.KindStatus:
		for _, v := range texts {
			out.values = append(out.values, s.statusValue(attr, v))
		}
	case admin.KindLink:
		for _, v := range texts {
			out.values = append(out.values, s.linkValue(attr, v))
		}
	case admin.KindType:
		for _, v := range texts {
			out.values = append(out.values, s.typeValue(v))
		}
	case admin.KindLong, admin.KindInteger, admin.KindDecimal:
		out.values = append(out.values, texts...)
	case admin.KindBoolean:
		out.raw = true
		for _, v := range texts {
			b, err := cast.ToBoolE(v)
			if err != nil {
				s.log.Error("invalid boolean literal", "attribute", attrName(attr), "value", v)
				out.raw = false
				out.escape = true
				out.values = append(out.values, v)
				continue
			}
			out.values = append(out.values, s.sel.dialect.BoolLiteral(b))
		}
	default:
		out.escape = true
		out.values = append(out.values, texts...)
	}
	return out
}

func (s *Statement) statusValue(attr *admin.Attribute, v string) string {
	if IsNumeric(v) {
		return v
	}
	var group *admin.StatusGroup
	if attr != nil {
		group = attr.StatusGroup()
	}
	if id, ok := s.res.StatusID(group, v); ok {
		return strconv.FormatInt(id, 10)
	}
	s.log.Warn("status key not found", "attribute", attrName(attr), "value", v)
	return v
}

func (s *Statement) linkValue(attr *admin.Attribute, v string) string {
	if IsNumeric(v) {
		return v
	}
	inst, err := s.res.Instance(v)
	if err != nil {
		s.log.Error("invalid object identifier", "attribute", attrName(attr), "value", v, "error", err)
		return v
	}
	if attr != nil && attr.Link() != nil && !inst.Type.IsKindOf(attr.Link()) {
		s.log.Warn("object identifier does not match link type",
			"attribute", attrName(attr), "value", v,
			"type", inst.Type.Name(), "link", attr.Link().Name())
	}
	return strconv.FormatInt(inst.ID, 10)
}

func (s *Statement) typeValue(v string) string {
	if IsNumeric(v) {
		return v
	}
	if t, ok := s.res.Type(v); ok {
		return strconv.FormatInt(t.ID(), 10)
	}
	s.log.Warn("unknown type literal", "value", v)
	return v
}

func attrName(attr *admin.Attribute) string {
	if attr == nil {
		return ""
	}
	return attr.String()
}
