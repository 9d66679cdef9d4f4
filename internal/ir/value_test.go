package ir

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestText(t *testing.T) {
	tests := []struct {
		name  string
		input IRValue
		want  string
		ok    bool
	}{
		{"string", IRString("Open"), "Open", true},
		{"int", IRInt(42), "42", true},
		{"negative int", IRInt(-7), "-7", true},
		{"bool", IRBool(true), "true", true},
		{"null", IRNull{}, "", false},
		{"array", IRArray{IRInt(1)}, "", false},
		{"object", IRObject{}, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Text(tt.input)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTexts_FlattensArrays(t *testing.T) {
	got := Texts([]IRValue{IRInt(1), IRArray{IRInt(2), IRString("x")}, IRNull{}})
	assert.Equal(t, []string{"1", "2", "x"}, got)
}

func TestFromAny(t *testing.T) {
	tests := []struct {
		name  string
		input any
		want  IRValue
	}{
		{"nil", nil, IRNull{}},
		{"string", "Ana", IRString("Ana")},
		{"int", 5, IRInt(5)},
		{"int64", int64(6), IRInt(6)},
		{"integral float", float64(7), IRInt(7)},
		{"fractional float", 3.25, IRString("3.25")},
		{"bool", false, IRBool(false)},
		{"list", []any{1, "a"}, IRArray{IRInt(1), IRString("a")}},
		{"map", map[string]any{"k": 1}, IRObject{"k": IRInt(1)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FromAny(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFromAny_Unsupported(t *testing.T) {
	_, err := FromAny(struct{}{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported literal type")
}

func TestIRObject_MarshalJSONSorted(t *testing.T) {
	obj := IRObject{"zebra": IRInt(1), "alpha": IRString("a"), "mid": IRArray{IRBool(true), IRNull{}}}

	data, err := json.Marshal(obj)
	require.NoError(t, err)
	assert.Equal(t, `{"alpha":"a","mid":[true,null],"zebra":1}`, string(data))
}

func TestSortedKeys_UTF16Order(t *testing.T) {
	// U+1F600 encodes to a surrogate pair (0xD83D...) which sorts before U+FF5E
	// in UTF-16 but after it in UTF-8.
	obj := IRObject{"\uFF5E": IRInt(1), "\U0001F600": IRInt(2)}
	assert.Equal(t, []string{"\U0001F600", "\uFF5E"}, obj.SortedKeys())
}
