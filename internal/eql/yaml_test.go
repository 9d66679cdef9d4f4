package eql

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/efaps/efql/internal/ir"
)

const ticketQuery = `
types: [Ticket]
select:
  - attribute[Title]
  - linkto[Owner].attribute[Name]
where:
  - attribute: Title
    op: like
    value: "Bug*"
    ignore_case: true
  - group:
      - select: status
        value: Open
      - conn: or
        attribute: Priority
        op: ">="
        values: [3, 4]
  - attribute: Owner
    nested:
      types: [Person]
      where:
        - attribute: Name
          value: Ana
limit: 20
`

func TestDecodeYAML(t *testing.T) {
	q, err := DecodeYAML(strings.NewReader(ticketQuery))
	require.NoError(t, err)

	assert.Equal(t, []string{"Ticket"}, q.Types)
	assert.Equal(t, []string{"attribute[Title]", "linkto[Owner].attribute[Name]"}, q.Selects)
	assert.Equal(t, 20, q.Limit)
	require.NotNil(t, q.Where)
	require.Len(t, q.Where.Terms, 3)

	first, ok := q.Where.Terms[0].(*ElementTerm)
	require.True(t, ok)
	assert.Equal(t, Element{
		Attribute:  "Title",
		Op:         OpLike,
		Values:     []ir.IRValue{ir.IRString("Bug*")},
		IgnoreCase: true,
	}, first.Element)

	group, ok := q.Where.Terms[1].(*GroupTerm)
	require.True(t, ok)
	assert.Equal(t, And, group.Conn)
	require.Len(t, group.Terms, 2)
	status := group.Terms[0].(*ElementTerm)
	assert.Equal(t, "status", status.Element.Select)
	assert.Equal(t, OpEqual, status.Element.Op, "op defaults to eq")
	prio := group.Terms[1].(*ElementTerm)
	assert.Equal(t, Or, prio.Conn)
	assert.Equal(t, OpGreaterEqual, prio.Element.Op)
	assert.Equal(t, []ir.IRValue{ir.IRInt(3), ir.IRInt(4)}, prio.Element.Values)

	owner := q.Where.Terms[2].(*ElementTerm)
	require.NotNil(t, owner.Element.Nested)
	assert.Equal(t, OpIn, owner.Element.Op, "nested op defaults to in")
	assert.Equal(t, []string{"Person"}, owner.Element.Nested.Types)
	require.NotNil(t, owner.Element.Nested.Where)
	assert.Len(t, owner.Element.Nested.Where.Terms, 1)

	require.NoError(t, Validate(q))
}

func TestQueryYAMLRoundTrip(t *testing.T) {
	q, err := DecodeYAML(strings.NewReader(ticketQuery))
	require.NoError(t, err)

	out, err := yaml.Marshal(q)
	require.NoError(t, err)

	again, err := DecodeYAML(strings.NewReader(string(out)))
	require.NoError(t, err)
	assert.Equal(t, q, again)

	fp1, err := Fingerprint(q)
	require.NoError(t, err)
	fp2, err := Fingerprint(again)
	require.NoError(t, err)
	assert.Equal(t, fp1, fp2)
}

func TestDecodeYAML_Errors(t *testing.T) {
	tests := map[string]string{
		"bad op":          "types: [A]\nwhere:\n  - attribute: X\n    op: between\n    value: 1\n",
		"bad conn":        "types: [A]\nwhere:\n  - attribute: X\n    conn: xor\n    value: 1\n",
		"group with attr": "types: [A]\nwhere:\n  - attribute: X\n    group:\n      - attribute: Y\n        value: 1\n",
		"not a mapping":   "types: [A]\nwhere: 5\n",
	}
	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := DecodeYAML(strings.NewReader(doc))
			require.Error(t, err)
		})
	}
}

func TestFingerprint_DiffersOnValues(t *testing.T) {
	a := &Query{Types: []string{"Ticket"}, Where: &Where{Terms: []Term{
		&ElementTerm{Element: Element{Attribute: "Title", Op: OpEqual, Values: []ir.IRValue{ir.IRString("a")}}},
	}}}
	b := &Query{Types: []string{"Ticket"}, Where: &Where{Terms: []Term{
		&ElementTerm{Element: Element{Attribute: "Title", Op: OpEqual, Values: []ir.IRValue{ir.IRString("b")}}},
	}}}

	fa, err := Fingerprint(a)
	require.NoError(t, err)
	fb, err := Fingerprint(b)
	require.NoError(t, err)
	assert.NotEqual(t, fa, fb)

	_, err = Fingerprint(nil)
	assert.Error(t, err)
}
