/*
Package token defines the annotated token model shared by every pass.

Token Model:
-----------

	+-----------+     +-------------+
	|   Token   | --> |    Link     |
	+-----------+     +-------------+
	      |                 |
	      v                 v
	 [Offset, Length]   [Name, QualifiedName,
	  Kind               File, Line, Column,
	                     ParameterTypes]

A token covers one byte range of the main source buffer. Its Kind starts out as the
lexer's guess and is refined by the preprocessor and semantic passes.
*/
package token

// Kind is the semantic category of a token
type Kind uint8

const (
	KindWhitespace Kind = iota
	KindKeyword
	KindName
	KindStringLiteral
	KindNumberLiteral
	KindOtherLiteral
	KindOperator
	KindPunctuation
	KindComment
	KindPreprocessor
	KindVariable
	KindOther

	// refinements produced by post-processing only
	KindPreprocessorFile
	KindStringLiteralEscape
	KindStringLiteralInterpolation
)

var kindNames = [...]string{
	KindWhitespace:                 "whitespace",
	KindKeyword:                    "keyword",
	KindName:                       "name",
	KindStringLiteral:              "string_literal",
	KindNumberLiteral:              "number_literal",
	KindOtherLiteral:               "other_literal",
	KindOperator:                   "operator",
	KindPunctuation:                "punctuation",
	KindComment:                    "comment",
	KindPreprocessor:               "preprocessor",
	KindVariable:                   "variable",
	KindOther:                      "other",
	KindPreprocessorFile:           "preprocessor_file",
	KindStringLiteralEscape:        "string_literal_escape",
	KindStringLiteralInterpolation: "string_literal_interpolation",
}

var kindCSS = [...]string{
	KindKeyword:                    "k",
	KindName:                       "n",
	KindStringLiteral:              "s",
	KindNumberLiteral:              "m",
	KindOtherLiteral:               "l",
	KindOperator:                   "o",
	KindPunctuation:                "p",
	KindComment:                    "c",
	KindPreprocessor:               "cp",
	KindVariable:                   "nv",
	KindPreprocessorFile:           "cpf",
	KindStringLiteralEscape:        "se",
	KindStringLiteralInterpolation: "si",
}

// String returns the canonical lowercase name used in JSON output
func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// CSSClass returns the short highlighting class, or "" when the kind is rendered unwrapped
func (k Kind) CSSClass() string {
	if int(k) < len(kindCSS) {
		return kindCSS[k]
	}
	return ""
}

// ParseKind is the inverse of Kind.String
func ParseKind(s string) (Kind, bool) {
	for i, name := range kindNames {
		if name == s {
			return Kind(i), true
		}
	}
	return KindOther, false
}

// Token is one classified, possibly linked, byte range of the source buffer
type Token struct {
	// Offset is the byte offset of the first byte in the main file
	Offset int

	// Length is the number of bytes covered
	Length int

	// Kind is the current classification
	Kind Kind

	// Link points at the declaring entity, if one was resolved
	Link *Link
}

// End returns the exclusive end offset
func (t *Token) End() int {
	return t.Offset + t.Length
}

// Contains reports whether offset falls inside [Offset, End)
func (t *Token) Contains(offset int) bool {
	return offset >= t.Offset && offset < t.End()
}

// Text returns the bytes of buf covered by the token
func (t *Token) Text(buf []byte) []byte {
	if t.End() > len(buf) {
		return nil
	}
	return buf[t.Offset:t.End()]
}
