package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalCanonicalBasic(t *testing.T) {
	tests := []struct {
		name     string
		input    any
		expected string
	}{
		{"string", IRString("hello"), `"hello"`},
		{"plain string", "SELECT 1", `"SELECT 1"`},
		{"int", IRInt(42), "42"},
		{"negative int", IRInt(-100), "-100"},
		{"bool", IRBool(false), "false"},
		{"empty array", IRArray{}, "[]"},
		{"string slice", []string{"T0", "T1"}, `["T0","T1"]`},
		{"empty object", IRObject{}, "{}"},
		{"sorted object", IRObject{"b": IRInt(1), "a": IRInt(2)}, `{"a":2,"b":1}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := MarshalCanonical(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, string(result))
		})
	}
}

func TestMarshalCanonical_NoHTMLEscape(t *testing.T) {
	result, err := MarshalCanonical(IRString("T0.A < 5 AND T0.B > 'x&y'"))
	require.NoError(t, err)
	assert.Equal(t, `"T0.A < 5 AND T0.B > 'x&y'"`, string(result))
}

func TestMarshalCanonical_NFC(t *testing.T) {
	// "e" + combining acute accent normalizes to U+00E9.
	result, err := MarshalCanonical(IRString("cafe\u0301"))
	require.NoError(t, err)
	assert.Equal(t, "\"caf\u00e9\"", string(result))
}

func TestMarshalCanonical_LineSeparators(t *testing.T) {
	result, err := MarshalCanonical(IRString("a\u2028b"))
	require.NoError(t, err)
	assert.Equal(t, "\"a\u2028b\"", string(result))

	escaped, err := MarshalCanonical(IRString(`a\u2028b`))
	require.NoError(t, err)
	assert.Equal(t, `"a\\u2028b"`, string(escaped))
}

func TestMarshalCanonical_Rejects(t *testing.T) {
	for name, input := range map[string]any{
		"nil":    nil,
		"null":   IRNull{},
		"float":  1.5,
		"nested": IRObject{"x": IRNull{}},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := MarshalCanonical(input)
			require.Error(t, err)
		})
	}
}
