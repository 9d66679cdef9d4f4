package admin

import (
	"fmt"
	"strings"
)

// AttributeKind classifies the database semantics of an attribute.
//
// The set is closed. Code that needs kind-specific behavior switches on the
// kind once instead of probing attribute implementations.
type AttributeKind int

const (
	KindString AttributeKind = iota
	KindLong
	KindInteger
	KindDecimal
	KindBoolean
	KindDate
	KindDateTime
	KindLink
	KindStatus
	KindType
	KindAttributeSet
)

var kindNames = [...]string{
	KindString:       "string",
	KindLong:         "long",
	KindInteger:      "integer",
	KindDecimal:      "decimal",
	KindBoolean:      "boolean",
	KindDate:         "date",
	KindDateTime:     "datetime",
	KindLink:         "link",
	KindStatus:       "status",
	KindType:         "type",
	KindAttributeSet: "attributeset",
}

// String returns the lower-case kind name used in model documents.
func (k AttributeKind) String() string {
	if k >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("AttributeKind(%d)", int(k))
}

// ParseKind maps a model document kind name to an AttributeKind.
// An empty name defaults to KindString.
func ParseKind(name string) (AttributeKind, error) {
	if name == "" {
		return KindString, nil
	}
	for k, n := range kindNames {
		if strings.EqualFold(n, name) {
			return AttributeKind(k), nil
		}
	}
	return 0, fmt.Errorf("unknown attribute kind %q", name)
}

// IsLongInteger reports whether values of this kind are stored in a
// long-integer column. Literals compared against such columns are not
// escaped.
func (k AttributeKind) IsLongInteger() bool {
	switch k {
	case KindLong, KindInteger, KindLink, KindStatus, KindType:
		return true
	}
	return false
}

// IsNumeric reports whether values of this kind render as bare numbers.
func (k AttributeKind) IsNumeric() bool {
	return k.IsLongInteger() || k == KindDecimal
}

// SQLType is the column type used when rendering DDL for this kind.
func (k AttributeKind) SQLType() string {
	switch k {
	case KindLong, KindLink, KindStatus, KindType:
		return "BIGINT"
	case KindInteger:
		return "INTEGER"
	case KindDecimal:
		return "DECIMAL(18,4)"
	case KindBoolean:
		return "BOOLEAN"
	case KindDate:
		return "DATE"
	case KindDateTime:
		return "TIMESTAMP"
	default:
		return "VARCHAR(1024)"
	}
}
