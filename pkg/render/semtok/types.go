/*
Token Types and Modifiers:
------------------------

	+-------------+     +-------------------+
	| token.Kind  | --> | TokenType         |
	+-------------+     +-------------------+
	      |                   |
	      v                   v
	[keyword,           index into
	 name,              Legend.TokenTypes
	 variable, ...]

	+-------------+     +-------------------+
	| token.Link  | --> | TokenModifier     |
	+-------------+     +-------------------+
	                          |
	                          v
	                    bit set over
	                    Legend.TokenModifiers

Whitespace, punctuation and unclassified tokens have no type and are not encoded.
*/
package semtok

import (
	"github.com/walteh/clang-highlight/pkg/token"
)

// TokenType is an index into Legend.TokenTypes
type TokenType uint32

const (
	TokenKeyword TokenType = iota
	TokenName
	TokenVariable
	TokenString
	TokenNumber
	TokenLiteral
	TokenOperator
	TokenComment
	TokenMacro
	TokenFile
	TokenEscapeSequence
	TokenFormatSpecifier

	tokenTypeCount
)

var typeNames = [tokenTypeCount]string{
	TokenKeyword:         "keyword",
	TokenName:            "name",
	TokenVariable:        "variable",
	TokenString:          "string",
	TokenNumber:          "number",
	TokenLiteral:         "literal",
	TokenOperator:        "operator",
	TokenComment:         "comment",
	TokenMacro:           "macro",
	TokenFile:            "file",
	TokenEscapeSequence:  "escapeSequence",
	TokenFormatSpecifier: "formatSpecifier",
}

func (t TokenType) String() string {
	if t < tokenTypeCount {
		return typeNames[t]
	}
	return "unknown"
}

// TokenModifier is a bit set over Legend.TokenModifiers
type TokenModifier uint32

const (
	ModifierNone TokenModifier = 0

	// ModifierLinked marks a token that points at a declaration
	ModifierLinked TokenModifier = 1 << (iota - 1)

	// ModifierDefaultLibrary marks a token whose link resolved to a cppreference page
	ModifierDefaultLibrary
)

var modifierNames = []string{"linked", "defaultLibrary"}

func (m TokenModifier) String() string {
	switch m {
	case ModifierNone:
		return "none"
	case ModifierLinked:
		return "linked"
	case ModifierDefaultLibrary:
		return "defaultLibrary"
	case ModifierLinked | ModifierDefaultLibrary:
		return "linked|defaultLibrary"
	default:
		return "unknown"
	}
}

// Legend names the token types and modifiers the encoded integers refer to
type Legend struct {
	TokenTypes     []string `json:"tokenTypes"`
	TokenModifiers []string `json:"tokenModifiers"`
}

func DefaultLegend() Legend {
	return Legend{
		TokenTypes:     append([]string(nil), typeNames[:]...),
		TokenModifiers: append([]string(nil), modifierNames...),
	}
}

// TypeOf maps an annotated kind to its token type; false for kinds that are not encoded
func TypeOf(kind token.Kind) (TokenType, bool) {
	switch kind {
	case token.KindKeyword:
		return TokenKeyword, true
	case token.KindName:
		return TokenName, true
	case token.KindVariable:
		return TokenVariable, true
	case token.KindStringLiteral:
		return TokenString, true
	case token.KindNumberLiteral:
		return TokenNumber, true
	case token.KindOtherLiteral:
		return TokenLiteral, true
	case token.KindOperator:
		return TokenOperator, true
	case token.KindComment:
		return TokenComment, true
	case token.KindPreprocessor:
		return TokenMacro, true
	case token.KindPreprocessorFile:
		return TokenFile, true
	case token.KindStringLiteralEscape:
		return TokenEscapeSequence, true
	case token.KindStringLiteralInterpolation:
		return TokenFormatSpecifier, true
	}
	return 0, false
}

func modifierOf(link *token.Link) TokenModifier {
	if link == nil {
		return ModifierNone
	}
	if link.CppRef != "" {
		return ModifierLinked | ModifierDefaultLibrary
	}
	return ModifierLinked
}
