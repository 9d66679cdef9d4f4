package querysql

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/efaps/efql/internal/eql"
)

func TestTableIndexer_AliasStability(t *testing.T) {
	ti := NewTableIndexer("T")

	first := ti.TableIdx("T_PERSON")
	assert.True(t, first.Created)
	assert.Equal(t, "T0", first.Alias())

	again := ti.TableIdx("T_PERSON")
	assert.False(t, again.Created)
	assert.Equal(t, first.Idx, again.Idx)

	viaOwner := ti.JoinedTableIdx("T_PERSON", "T0", "OWNERID")
	assert.True(t, viaOwner.Created)
	assert.Equal(t, "T1", viaOwner.Alias())

	viaOther := ti.JoinedTableIdx("T_PERSON", "T1", "OWNERID")
	assert.True(t, viaOther.Created, "different path, different alias")
	assert.Equal(t, "T2", viaOther.Alias())

	for i := 0; i < 3; i++ {
		idx := ti.JoinedTableIdx("T_PERSON", "T0", "OWNERID")
		assert.False(t, idx.Created)
		assert.Equal(t, "T1", idx.Alias())
	}
	assert.Equal(t, 3, ti.Len())
}

func TestTableIndexer_NestedPrefix(t *testing.T) {
	assert.Equal(t, "T", AliasPrefix(0))
	assert.Equal(t, "N1T", AliasPrefix(1))
	assert.Equal(t, "N1T0", NewTableIndexer(AliasPrefix(1)).TableIdx("T_PERSON").Alias())
}

func TestTypeCriteria_GroupedInWhere(t *testing.T) {
	sel := NewSQLSelect(NewTableIndexer("T"), SQLite)
	sel.From("T_DOC", "T0")
	sel.AddTypeCriterion(TypeCriterion{Alias: "T0", Column: "TYPEID", TypeID: 302})
	sel.AddTypeCriterion(TypeCriterion{Alias: "T0", Column: "TYPEID", TypeID: 301})
	sel.AddTypeCriterion(TypeCriterion{Alias: "T0", Column: "TYPEID", TypeID: 302})

	sel.ApplyTypeCriteria()
	sel.ApplyTypeCriteria()

	crits := sel.Where().Criteria()
	require.Len(t, crits, 1)
	assert.Equal(t, CompIn, crits[0].Comparison)
	assert.Equal(t, []string{"301", "302"}, crits[0].Values)
	assert.Equal(t, "SELECT 1 FROM T_DOC T0 WHERE T0.TYPEID IN (301,302)", sel.SQL())
}

func TestTypeCriteria_AttachedToLeftJoin(t *testing.T) {
	sel := NewSQLSelect(NewTableIndexer("T"), SQLite)
	sel.From("T_DOCPOS", "T0")
	sel.LeftJoin("T_DOC", "T1", "T0", "DOCID", "ID")
	sel.AddTypeCriterion(TypeCriterion{Alias: "T1", Column: "TYPEID", TypeID: 302})
	sel.AddTypeCriterion(TypeCriterion{Alias: "T1", Column: "TYPEID", TypeID: 301})
	sel.ApplyTypeCriteria()

	assert.True(t, sel.Where().Empty(), "left join discriminators stay out of WHERE")
	assert.Equal(t,
		"SELECT 1 FROM T_DOCPOS T0 LEFT JOIN T_DOC T1 ON T0.DOCID = T1.ID AND T1.TYPEID IN (301,302)",
		sel.SQL())
}

func TestTypeCriteria_Nullable(t *testing.T) {
	sel := NewSQLSelect(NewTableIndexer("T"), SQLite)
	sel.From("T_PRODUCT", "T0")
	sel.LeftJoin("T_PRODCLASS", "T1", "T0", "ID", "PRODUCTID")
	sel.AddTypeCriterion(TypeCriterion{Alias: "T1", Column: "TYPEID", TypeID: 7, Nullable: true})
	sel.ApplyTypeCriteria()

	assert.Equal(t,
		"SELECT 1 FROM T_PRODUCT T0 LEFT JOIN T_PRODCLASS T1 ON T0.ID = T1.PRODUCTID WHERE (T1.TYPEID = 7 OR T1.TYPEID IS NULL)",
		sel.SQL())
}

func TestTypeCriteria_DuplicateBecomesNullable(t *testing.T) {
	sel := NewSQLSelect(NewTableIndexer("T"), SQLite)
	sel.From("T_PRODCLASS", "T0")
	sel.AddTypeCriterion(TypeCriterion{Alias: "T0", Column: "TYPEID", TypeID: 600})
	sel.AddTypeCriterion(TypeCriterion{Alias: "T0", Column: "TYPEID", TypeID: 600, Nullable: true})

	got := sel.TypeCriteria()
	require.Len(t, got, 1)
	assert.True(t, got[0].Nullable)
}

func TestCriteria_Render(t *testing.T) {
	tests := []struct {
		name string
		c    Criteria
		want string
	}{
		{"numeric", Criteria{Alias: "T0", Column: "ID", Comparison: CompEqual, Values: []string{"5"}}, "T0.ID = 5"},
		{"text always quoted", Criteria{Alias: "T0", Column: "ID", Comparison: CompEqual, Values: []string{"5; DROP"}}, "T0.ID = '5; DROP'"},
		{"escape flag", Criteria{Alias: "T0", Column: "NAME", Comparison: CompEqual, Values: []string{"5"}, Escape: true}, "T0.NAME = '5'"},
		{"quote doubling", Criteria{Alias: "T0", Column: "NAME", Comparison: CompEqual, Values: []string{"O'Brien"}, Escape: true}, "T0.NAME = 'O''Brien'"},
		{"raw", Criteria{Alias: "T0", Column: "ACTIVE", Comparison: CompEqual, Values: []string{"TRUE"}, Raw: true}, "T0.ACTIVE = TRUE"},
		{"multi equal", Criteria{Alias: "T0", Column: "ID", Comparison: CompEqual, Values: []string{"1", "2"}}, "T0.ID IN (1,2)"},
		{"multi unequal", Criteria{Alias: "T0", Column: "ID", Comparison: CompUnequal, Values: []string{"1", "2"}}, "T0.ID NOT IN (1,2)"},
		{"multi like", Criteria{Alias: "T0", Column: "NAME", Comparison: CompLike, Values: []string{"a%", "b%"}, Escape: true}, "(T0.NAME LIKE 'a%' OR T0.NAME LIKE 'b%')"},
		{"empty in", Criteria{Alias: "T0", Column: "ID", Comparison: CompIn}, "1 = 0"},
		{"empty not in", Criteria{Alias: "T0", Column: "ID", Comparison: CompNotIn}, "1 = 1"},
		{"is null", Criteria{Alias: "T0", Column: "NAME", Comparison: CompIsNull, OrNull: true}, "T0.NAME IS NULL"},
		{"or null", Criteria{Alias: "T1", Column: "COLOR", Comparison: CompEqual, Values: []string{"red"}, Escape: true, OrNull: true}, "(T1.COLOR = 'red' OR T1.COLOR IS NULL)"},
		{"ignore case", Criteria{Alias: "T0", Column: "NAME", Comparison: CompLike, Values: []string{"an%"}, Escape: true, IgnoreCase: true}, "UPPER(T0.NAME) LIKE UPPER('an%')"},
		{"subquery", Criteria{Alias: "T0", Column: "OWNERID", Comparison: CompNotIn, Subquery: "SELECT N1T0.ID FROM T_PERSON N1T0"}, "T0.OWNERID NOT IN (SELECT N1T0.ID FROM T_PERSON N1T0)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.c.render(SQLite))
		})
	}
}

func TestSQLWhere_GroupsAndConnections(t *testing.T) {
	var w SQLWhere
	w.Add(Criteria{Alias: "T0", Column: "A", Comparison: CompEqual, Values: []string{"1"}})
	g := w.Root().AddGroup(eql.And)
	g.Add(Criteria{Alias: "T0", Column: "B", Comparison: CompEqual, Values: []string{"2"}})
	g.Add(Criteria{Alias: "T0", Column: "C", Comparison: CompEqual, Values: []string{"3"}, Conn: eql.Or})
	w.Root().AddGroup(eql.Or)

	assert.Equal(t, "T0.A = 1 AND (T0.B = 2 OR T0.C = 3)", w.root.render(SQLite))
	assert.Len(t, w.Criteria(), 3)
}

func TestSQLSelect_Render(t *testing.T) {
	sel := NewSQLSelect(NewTableIndexer("T"), SQLite)
	sel.From("T_TICKET", "T0")
	assert.Equal(t, 0, sel.Column("T0", "ID"))
	assert.Equal(t, 1, sel.Column("T0", "TITLE"))
	assert.Equal(t, 0, sel.Column("T0", "ID"), "columns are selected once")
	sel.OrderBy("T0.ID")
	sel.Offset(10)

	assert.Equal(t, "SELECT T0.ID, T0.TITLE FROM T_TICKET T0 ORDER BY T0.ID LIMIT -1 OFFSET 10", sel.SQL())
	assert.Equal(t, []string{"T0"}, sel.Aliases())

	pg := NewSQLSelect(NewTableIndexer("T"), Postgres)
	pg.From("T_TICKET", "T0")
	pg.Distinct(true)
	pg.Column("T0", "ID")
	pg.Limit(5)
	pg.Offset(10)
	assert.Equal(t, "SELECT DISTINCT T0.ID FROM T_TICKET T0 LIMIT 5 OFFSET 10", pg.SQL())
}

func TestParseDialectAndAmbiguity(t *testing.T) {
	d, err := ParseDialect("PostgreSQL")
	require.NoError(t, err)
	assert.Equal(t, Postgres, d)
	assert.Equal(t, "FALSE", d.BoolLiteral(false))
	assert.Equal(t, "1", SQLite.BoolLiteral(true))
	_, err = ParseDialect("oracle")
	assert.Error(t, err)

	a, err := ParseAmbiguity("error")
	require.NoError(t, err)
	assert.Equal(t, ErrorOnAmbiguity, a)
	_, err = ParseAmbiguity("random")
	assert.Error(t, err)
}
