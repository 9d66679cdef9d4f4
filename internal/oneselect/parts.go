package oneselect

import "github.com/efaps/efql/internal/admin"

// Part is one join step of a selection. It records the alias the step
// moved to.
//
// This is a sealed interface: only LinkToPart, ChildTablePart and ClassPart
// implement it.
type Part interface {
	partNode()
	// Alias is the table alias the step ends on.
	Alias() string
	String() string
}

// LinkToPart follows a link attribute to the main table of its target.
type LinkToPart struct {
	Attribute *admin.Attribute
	To        string
}

func (*LinkToPart) partNode() {}
func (p *LinkToPart) Alias() string { return p.To }
func (p *LinkToPart) String() string {
	return "linkto[" + p.Attribute.Name() + "] as " + p.To
}

// ChildTablePart joins a child table holding an attribute to its main
// table by ID.
type ChildTablePart struct {
	Table *admin.SQLTable
	To    string
}

func (*ChildTablePart) partNode() {}
func (p *ChildTablePart) Alias() string { return p.To }
func (p *ChildTablePart) String() string {
	return "child " + p.Table.Name() + " as " + p.To
}

// ClassPart joins the table of a classification over its link column.
type ClassPart struct {
	Class *admin.Type
	To    string
}

func (*ClassPart) partNode() {}
func (p *ClassPart) Alias() string { return p.To }
func (p *ClassPart) String() string {
	return "class[" + p.Class.Name() + "] as " + p.To
}
