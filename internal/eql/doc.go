// Package eql defines the abstract query tree consumed by the SQL builder.
//
// A Query names a set of types, a list of selections and a where tree.
// The tree is what an upstream EQL parser produces; this package only
// models it, decodes it from YAML documents and checks its shape.
//
// WHERE TREE:
//
// Where holds an ordered list of terms. Every term carries the connection
// (AND/OR) to its predecessor; the connection of the first term is
// ignored. A term is either an element or a parenthesized group:
//
//	Where{Terms: []Term{
//	  &ElementTerm{Element: Element{Attribute: "Title", Op: OpLike, Values: ...}},
//	  &GroupTerm{Conn: And, Terms: []Term{
//	    &ElementTerm{Element: Element{Select: "status", Op: OpEqual, ...}},
//	    &ElementTerm{Conn: Or, Element: Element{Attribute: "Priority", ...}},
//	  }},
//	}}
//
// renders as
//
//	TITLE LIKE ... AND (STATUSID = ... OR PRIORITY = ...)
//
// SEALED INTERFACES:
//
// Term is sealed with a marker method so the SQL builder can switch over
// it exhaustively.
//
// SELECTIONS:
//
// A selection is a dot separated chain of tokens, each either a bare word
// or word[payload]:
//
//	attribute[Name]
//	linkto[Owner].attribute[Name]
//	linkfrom[PersonPhone#PersonLink].attribute[Number]
//	class[ProductClass].attribute[Color]
//	status.label
//	attribute[Date].format[2006-01-02]
//
// ParseSelection turns the text into Tokens; it never consults the admin
// model, so unknown names surface later as logged metadata misses.
package eql
