package admin

import (
	"sort"

	"github.com/google/uuid"
)

// Names of the attributes every type owns implicitly.
const (
	AttrID   = "ID"
	AttrType = "Type"
)

// Type is a node in the single-inheritance type hierarchy.
type Type struct {
	id         int64
	uuid       uuid.UUID
	name       string
	label      string
	abstract   bool
	parent     *Type
	children   []*Type
	mainTable  *SQLTable
	attributes map[string]*Attribute
	statusAttr string

	classifies  *Type
	classLink   string
	classifiers []*Type
}

// ID returns the numeric type id stored in discriminator columns.
func (t *Type) ID() int64 { return t.id }

// UUID returns the type UUID.
func (t *Type) UUID() uuid.UUID { return t.uuid }

// Name returns the type name.
func (t *Type) Name() string { return t.name }

// Label returns the display label, falling back to the name.
func (t *Type) Label() string {
	if t.label == "" {
		return t.name
	}
	return t.label
}

// IsAbstract reports whether the type can have rows of its own.
func (t *Type) IsAbstract() bool { return t.abstract }

// Parent returns the parent type, or nil for a root.
func (t *Type) Parent() *Type { return t.parent }

// Children returns the direct child types ordered by name.
func (t *Type) Children() []*Type { return t.children }

// MainTable returns the table holding the type's rows.
func (t *Type) MainTable() *SQLTable { return t.mainTable }

// Attribute looks up an attribute by name on the type and then on its
// ancestors. It returns nil when no type in the chain declares the name.
func (t *Type) Attribute(name string) *Attribute {
	for cur := t; cur != nil; cur = cur.parent {
		if attr, ok := cur.attributes[name]; ok {
			return attr
		}
	}
	return nil
}

// OwnAttribute looks up an attribute declared directly on the type.
func (t *Type) OwnAttribute(name string) *Attribute {
	return t.attributes[name]
}

// Attributes returns all visible attributes (own and inherited, own ones
// shadowing inherited ones) ordered by name.
func (t *Type) Attributes() []*Attribute {
	seen := make(map[string]*Attribute)
	for cur := t; cur != nil; cur = cur.parent {
		for name, attr := range cur.attributes {
			if _, ok := seen[name]; !ok {
				seen[name] = attr
			}
		}
	}
	out := make([]*Attribute, 0, len(seen))
	for _, attr := range seen {
		out = append(out, attr)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].name < out[j].name })
	return out
}

// IDAttribute returns the implicit ID attribute.
func (t *Type) IDAttribute() *Attribute { return t.Attribute(AttrID) }

// TypeAttribute returns the discriminator attribute, or nil when the main
// table is not shared.
func (t *Type) TypeAttribute() *Attribute {
	attr := t.Attribute(AttrType)
	if attr == nil || attr.kind != KindType {
		return nil
	}
	return attr
}

// StatusAttribute returns the attribute holding the type's status, or nil.
func (t *Type) StatusAttribute() *Attribute {
	for cur := t; cur != nil; cur = cur.parent {
		if cur.statusAttr != "" {
			return t.Attribute(cur.statusAttr)
		}
	}
	return nil
}

// ChildTables returns the tables other than the main table that hold
// visible attributes, ordered by name.
func (t *Type) ChildTables() []*SQLTable {
	seen := make(map[*SQLTable]bool)
	var out []*SQLTable
	for _, attr := range t.Attributes() {
		if attr.table == nil || attr.table == t.mainTable || seen[attr.table] {
			continue
		}
		seen[attr.table] = true
		out = append(out, attr.table)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].name < out[j].name })
	return out
}

// Descendants returns the type's subtree in pre-order. Siblings are ordered
// by name. The type itself comes first when includeSelf is set.
func (t *Type) Descendants(includeSelf bool) []*Type {
	var out []*Type
	if includeSelf {
		out = append(out, t)
	}
	for _, child := range t.children {
		out = append(out, child.Descendants(true)...)
	}
	return out
}

// IsKindOf reports whether t is other or one of its descendants.
func (t *Type) IsKindOf(other *Type) bool {
	for cur := t; cur != nil; cur = cur.parent {
		if cur == other {
			return true
		}
	}
	return false
}

// IsClassification reports whether the type classifies another type.
func (t *Type) IsClassification() bool {
	return t.Classifies() != nil
}

// Classifies returns the type this classification extends, searching the
// ancestor chain so sub-classifications inherit it.
func (t *Type) Classifies() *Type {
	for cur := t; cur != nil; cur = cur.parent {
		if cur.classifies != nil {
			return cur.classifies
		}
	}
	return nil
}

// ClassLinkAttribute returns the attribute of the classification that
// references the classified instance.
func (t *Type) ClassLinkAttribute() *Attribute {
	for cur := t; cur != nil; cur = cur.parent {
		if cur.classLink != "" {
			return t.Attribute(cur.classLink)
		}
	}
	return nil
}

// Classifiers returns the root classifications declared for the type.
func (t *Type) Classifiers() []*Type { return t.classifiers }

func (t *Type) String() string { return t.name }
