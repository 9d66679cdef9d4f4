package admin

// Attribute is a named property of a type stored in one table.
type Attribute struct {
	name        string
	owner       *Type
	table       *SQLTable
	columns     []string
	kind        AttributeKind
	link        *Type
	statusGroup *StatusGroup
	setType     *Type
	setLink     string
}

// Name returns the attribute name.
func (a *Attribute) Name() string { return a.name }

// Type returns the type that declares the attribute.
func (a *Attribute) Type() *Type { return a.owner }

// Table returns the table holding the attribute's columns.
func (a *Attribute) Table() *SQLTable { return a.table }

// Columns returns the physical column names. Multi-column attributes keep
// their declaration order.
func (a *Attribute) Columns() []string { return a.columns }

// Column returns the first physical column, or "" for attribute sets.
func (a *Attribute) Column() string {
	if len(a.columns) == 0 {
		return ""
	}
	return a.columns[0]
}

// Kind returns the attribute kind.
func (a *Attribute) Kind() AttributeKind { return a.kind }

// Link returns the target type of a link attribute.
func (a *Attribute) Link() *Type { return a.link }

// StatusGroup returns the status group of a status attribute.
func (a *Attribute) StatusGroup() *StatusGroup { return a.statusGroup }

// SetType returns the type holding the rows of an attribute set.
func (a *Attribute) SetType() *Type { return a.setType }

// SetLink returns the attribute of SetType referencing the owning instance.
func (a *Attribute) SetLink() string { return a.setLink }

func (a *Attribute) String() string {
	if a.owner == nil {
		return a.name
	}
	return a.owner.name + "/" + a.name
}
