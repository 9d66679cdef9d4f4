package eql

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSelection(t *testing.T) {
	tests := []struct {
		in   string
		want []Token
	}{
		{
			in:   "attribute[Name]",
			want: []Token{{Kind: TokenAttribute, Payload: "Name"}},
		},
		{
			in: "linkto[Owner].attribute[Name]",
			want: []Token{
				{Kind: TokenLinkTo, Payload: "Owner"},
				{Kind: TokenAttribute, Payload: "Name"},
			},
		},
		{
			in: "linkfrom[PersonPhone#PersonLink].attribute[Number]",
			want: []Token{
				{Kind: TokenLinkFrom, Payload: "PersonPhone#PersonLink", Type: "PersonPhone", Attribute: "PersonLink"},
				{Kind: TokenAttribute, Payload: "Number"},
			},
		},
		{
			in:   "status.label",
			want: []Token{{Kind: TokenStatus}, {Kind: TokenLabel}},
		},
		{
			in: "attribute[Date].format[02.01.2006]",
			want: []Token{
				{Kind: TokenAttribute, Payload: "Date"},
				{Kind: TokenFormat, Payload: "02.01.2006"},
			},
		},
		{
			in:   "  OID ",
			want: []Token{{Kind: TokenOID}},
		},
		{
			in: "class[ProductClass].attribute[Color]",
			want: []Token{
				{Kind: TokenClass, Payload: "ProductClass"},
				{Kind: TokenAttribute, Payload: "Color"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseSelection(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseSelection_Errors(t *testing.T) {
	tests := map[string]string{
		"":                         "empty selection",
		"attribute":                "requires [name]",
		"attribute[]":              "requires [name]",
		"status[Open]":             "takes no payload",
		"select[Name]":             "unknown token",
		"attribute[Name].":         "trailing dot",
		"attribute[Name]x":         "unexpected text",
		"linkfrom[PersonPhone]":    "Type#Attribute",
		"attribute[Na me]":         "invalid name",
		"linkto[Owner]..attribute": "unexpected text",
	}

	for in, wantMsg := range tests {
		t.Run(in, func(t *testing.T) {
			_, err := ParseSelection(in)
			require.Error(t, err)
			assert.True(t, ErrInvalidSelection.Is(err))
			assert.Contains(t, err.Error(), wantMsg)
		})
	}
}

func TestToken_IsHop(t *testing.T) {
	assert.True(t, Token{Kind: TokenLinkTo}.IsHop())
	assert.True(t, Token{Kind: TokenAttributeSet}.IsHop())
	assert.False(t, Token{Kind: TokenAttribute}.IsHop())
	assert.Equal(t, "linkto[Owner]", Token{Kind: TokenLinkTo, Payload: "Owner"}.String())
	assert.Equal(t, "oid", Token{Kind: TokenOID}.String())
}
