package admin

// SQLTable describes one physical table.
type SQLTable struct {
	name       string
	typeColumn string
	mainTable  *SQLTable
	columns    []Column
}

// Column is a physical column of a table as rendered into DDL.
type Column struct {
	Name string
	Kind AttributeKind
}

// Name returns the physical table name.
func (t *SQLTable) Name() string { return t.name }

// TypeColumn returns the discriminator column, or "" when the table is not
// shared between types.
func (t *SQLTable) TypeColumn() string { return t.typeColumn }

// HasTypeColumn reports whether rows of several types share this table.
func (t *SQLTable) HasTypeColumn() bool { return t.typeColumn != "" }

// MainTable returns the table this child table extends, or nil for a main
// table.
func (t *SQLTable) MainTable() *SQLTable { return t.mainTable }

// IsChild reports whether the table is an extension table joined 1:1 by ID.
func (t *SQLTable) IsChild() bool { return t.mainTable != nil }

// Columns returns the physical columns in DDL order: ID, the type column,
// then attribute columns sorted by name.
func (t *SQLTable) Columns() []Column { return t.columns }

func (t *SQLTable) String() string { return t.name }
