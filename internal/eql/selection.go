package eql

import (
	"regexp"
	"strings"
)

// TokenKind names one step of a selection chain.
type TokenKind string

const (
	TokenAttribute    TokenKind = "attribute"
	TokenLinkTo       TokenKind = "linkto"
	TokenLinkFrom     TokenKind = "linkfrom"
	TokenAttributeSet TokenKind = "attributeset"
	TokenClass        TokenKind = "class"
	TokenStatus       TokenKind = "status"
	TokenOID          TokenKind = "oid"
	TokenID           TokenKind = "id"
	TokenType         TokenKind = "type"
	TokenLabel        TokenKind = "label"
	TokenUUID         TokenKind = "uuid"
	TokenName         TokenKind = "name"
	TokenKey          TokenKind = "key"
	TokenValue        TokenKind = "value"
	TokenFormat       TokenKind = "format"
)

// payload requirement per token kind: true means word[payload] is
// mandatory, false means the bare word is required.
var tokenPayload = map[TokenKind]bool{
	TokenAttribute:    true,
	TokenLinkTo:       true,
	TokenLinkFrom:     true,
	TokenAttributeSet: true,
	TokenClass:        true,
	TokenFormat:       true,
	TokenStatus:       false,
	TokenOID:          false,
	TokenID:           false,
	TokenType:         false,
	TokenLabel:        false,
	TokenUUID:         false,
	TokenName:         false,
	TokenKey:          false,
	TokenValue:        false,
}

// Token is one parsed step of a selection.
type Token struct {
	Kind    TokenKind
	Payload string

	// Type and Attribute split a linkfrom payload "Type#Attribute".
	Type      string
	Attribute string
}

func (t Token) String() string {
	if t.Payload == "" {
		return string(t.Kind)
	}
	return string(t.Kind) + "[" + t.Payload + "]"
}

// IsHop reports whether the token moves to another table or type instead
// of producing a value.
func (t Token) IsHop() bool {
	switch t.Kind {
	case TokenLinkTo, TokenLinkFrom, TokenAttributeSet, TokenClass:
		return true
	}
	return false
}

var (
	// mainPattern matches one token at the start of the remaining text,
	// followed by a dot or the end.
	mainPattern     = regexp.MustCompile(`^([A-Za-z]+)(?:\[([^\[\]]*)\])?(\.|$)`)
	linkFromPattern = regexp.MustCompile(`^([^#\s]+)#([^#\s]+)$`)
	namePattern     = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
)

// ParseSelection splits a selection string into tokens.
func ParseSelection(selection string) ([]Token, error) {
	rest := strings.TrimSpace(selection)
	if rest == "" {
		return nil, ErrInvalidSelection.New(selection, "empty selection")
	}

	var tokens []Token
	for rest != "" {
		m := mainPattern.FindStringSubmatchIndex(rest)
		if m == nil {
			return nil, ErrInvalidSelection.New(selection, "unexpected text at "+quote(rest))
		}
		word := strings.ToLower(rest[m[2]:m[3]])
		hasPayload := m[4] >= 0
		payload := ""
		if hasPayload {
			payload = strings.TrimSpace(rest[m[4]:m[5]])
		}
		trailingDot := m[6] != m[7]
		rest = rest[m[1]:]
		if trailingDot && rest == "" {
			return nil, ErrInvalidSelection.New(selection, "trailing dot")
		}

		tok, err := newToken(selection, TokenKind(word), hasPayload, payload)
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, tok)
	}
	return tokens, nil
}

func newToken(selection string, kind TokenKind, hasPayload bool, payload string) (Token, error) {
	needsPayload, known := tokenPayload[kind]
	if !known {
		return Token{}, ErrInvalidSelection.New(selection, "unknown token "+quote(string(kind)))
	}
	if needsPayload && (!hasPayload || payload == "") {
		return Token{}, ErrInvalidSelection.New(selection, string(kind)+" requires [name]")
	}
	if !needsPayload && hasPayload {
		return Token{}, ErrInvalidSelection.New(selection, string(kind)+" takes no payload")
	}

	tok := Token{Kind: kind, Payload: payload}
	switch kind {
	case TokenLinkFrom:
		m := linkFromPattern.FindStringSubmatch(payload)
		if m == nil {
			return Token{}, ErrInvalidSelection.New(selection, "linkfrom expects [Type#Attribute]")
		}
		tok.Type, tok.Attribute = m[1], m[2]
	case TokenAttribute, TokenLinkTo, TokenAttributeSet, TokenClass:
		if !namePattern.MatchString(payload) {
			return Token{}, ErrInvalidSelection.New(selection, "invalid name "+quote(payload))
		}
	}
	return tok, nil
}

func quote(s string) string {
	return `"` + s + `"`
}
