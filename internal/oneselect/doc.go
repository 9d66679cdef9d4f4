// Package oneselect resolves selection strings into select-list columns and
// walks result rows back into per-selection values.
//
// A Query owns one querysql.Statement over types sharing a main table. Each
// AddSelect parses one selection such as
//
//	linkto[Owner].attribute[Name]
//	status.label
//	linkfrom[Position#DocumentLink].attribute[Quantity]
//
// into a OneSelect: an ordered list of Parts (joins) followed by a terminal
// ValueSelect. linkfrom and attributeset hand the rest of the chain to a
// LinkFromSelect, a child Query executed after the parent rows are known and
// restricted to the parent ids.
//
// Parsing runs through three states and never backtracks:
//
//	none -> value (terminal attached; label/name/key/uuid/id/value/format refine it)
//	none -> delegating (linkfrom/attributeset; remaining tokens belong to the child)
//
// Names that do not resolve are logged and leave the selection empty.
package oneselect
