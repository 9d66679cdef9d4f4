package querysql

import (
	"fmt"
	"strconv"
)

// TableIdx is one aliased occurrence of a physical table in a statement.
type TableIdx struct {
	Table string
	Idx   int
	// Created is true only on the lookup that allocated the alias.
	Created bool

	prefix string
}

// Alias renders the SQL alias, e.g. T0 or N1T0.
func (t TableIdx) Alias() string {
	return t.prefix + strconv.Itoa(t.Idx)
}

type tableKey struct {
	table      string
	viaAlias   string
	joinColumn string
}

// TableIndexer allocates and memoizes table aliases for one statement.
// The same (table, join path) always yields the same alias.
type TableIndexer struct {
	prefix  string
	next    int
	entries map[tableKey]TableIdx
}

// AliasPrefix returns the alias prefix for a statement nested depth levels
// deep. The outer statement uses T, nested ones N<depth>T.
func AliasPrefix(depth int) string {
	if depth == 0 {
		return "T"
	}
	return fmt.Sprintf("N%dT", depth)
}

// NewTableIndexer creates an indexer whose aliases start with prefix.
func NewTableIndexer(prefix string) *TableIndexer {
	return &TableIndexer{prefix: prefix, entries: make(map[tableKey]TableIdx)}
}

// Prefix returns the alias prefix.
func (ti *TableIndexer) Prefix() string { return ti.prefix }

// Len returns the number of allocated aliases.
func (ti *TableIndexer) Len() int { return ti.next }

// TableIdx returns the alias of a table selected directly (not joined).
func (ti *TableIndexer) TableIdx(table string) TableIdx {
	return ti.lookup(tableKey{table: table})
}

// JoinedTableIdx returns the alias of table joined from viaAlias over
// joinColumn.
func (ti *TableIndexer) JoinedTableIdx(table, viaAlias, joinColumn string) TableIdx {
	return ti.lookup(tableKey{table: table, viaAlias: viaAlias, joinColumn: joinColumn})
}

func (ti *TableIndexer) lookup(key tableKey) TableIdx {
	if idx, ok := ti.entries[key]; ok {
		idx.Created = false
		return idx
	}
	idx := TableIdx{Table: key.table, Idx: ti.next, Created: true, prefix: ti.prefix}
	ti.next++
	ti.entries[key] = idx
	return idx
}
