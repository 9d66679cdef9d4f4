package admin

import (
	"fmt"
	"sort"
	"strings"
)

// buildColumns derives each table's physical columns from the attributes
// stored in it. When several types map the same column, the first type by
// name decides its kind.
func buildColumns(r *Registry) {
	byTable := make(map[*SQLTable]map[string]AttributeKind)
	for _, t := range r.Types() {
		for _, attr := range t.attributes {
			if attr.table == nil {
				continue
			}
			cols, ok := byTable[attr.table]
			if !ok {
				cols = make(map[string]AttributeKind)
				byTable[attr.table] = cols
			}
			for _, col := range attr.columns {
				if _, seen := cols[col]; !seen {
					cols[col] = attr.kind
				}
			}
		}
	}
	for _, table := range r.tables {
		cols := byTable[table]
		columns := []Column{{Name: "ID", Kind: KindLong}}
		if table.typeColumn != "" {
			columns = append(columns, Column{Name: table.typeColumn, Kind: KindType})
		}
		names := make([]string, 0, len(cols))
		for name := range cols {
			if name == "ID" || name == table.typeColumn {
				continue
			}
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			columns = append(columns, Column{Name: name, Kind: cols[name]})
		}
		table.columns = columns
	}
}

// DDL renders CREATE TABLE statements for every table, main tables first.
// The column types are accepted by both SQLite and PostgreSQL.
func (r *Registry) DDL() []string {
	tables := r.Tables()
	sort.SliceStable(tables, func(i, j int) bool {
		return !tables[i].IsChild() && tables[j].IsChild()
	})

	stmts := make([]string, 0, len(tables))
	for _, table := range tables {
		defs := make([]string, 0, len(table.columns))
		for _, col := range table.columns {
			def := col.Name + " " + col.Kind.SQLType()
			if col.Name == "ID" {
				def += " PRIMARY KEY"
			}
			defs = append(defs, def)
		}
		if table.mainTable != nil {
			defs = append(defs, fmt.Sprintf("FOREIGN KEY (ID) REFERENCES %s (ID)", table.mainTable.name))
		}
		stmts = append(stmts, fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)", table.name, strings.Join(defs, ", ")))
	}
	return stmts
}
