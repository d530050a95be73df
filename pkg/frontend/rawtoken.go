package frontend

// RawKind is the kind a raw (not macro-expanded) lexer assigns to a token
type RawKind uint8

const (
	RawEOF RawKind = iota
	RawIdentifier
	RawNumericConstant
	RawCharConstant
	RawWideCharConstant
	RawUTF8CharConstant
	RawUTF16CharConstant
	RawUTF32CharConstant
	RawStringLiteral
	RawWideStringLiteral
	RawUTF8StringLiteral
	RawUTF16StringLiteral
	RawUTF32StringLiteral
	RawComment
	RawPunctuator
	RawUnknown
)

// IsLiteral reports numeric, character and string literal kinds
func (k RawKind) IsLiteral() bool {
	return k >= RawNumericConstant && k <= RawUTF32StringLiteral
}

// IsStringLiteral reports every string literal encoding
func (k RawKind) IsStringLiteral() bool {
	return k >= RawStringLiteral && k <= RawUTF32StringLiteral
}

func (k RawKind) String() string {
	switch k {
	case RawEOF:
		return "eof"
	case RawIdentifier:
		return "raw_identifier"
	case RawNumericConstant:
		return "numeric_constant"
	case RawCharConstant:
		return "char_constant"
	case RawWideCharConstant:
		return "wide_char_constant"
	case RawUTF8CharConstant:
		return "utf8_char_constant"
	case RawUTF16CharConstant:
		return "utf16_char_constant"
	case RawUTF32CharConstant:
		return "utf32_char_constant"
	case RawStringLiteral:
		return "string_literal"
	case RawWideStringLiteral:
		return "wide_string_literal"
	case RawUTF8StringLiteral:
		return "utf8_string_literal"
	case RawUTF16StringLiteral:
		return "utf16_string_literal"
	case RawUTF32StringLiteral:
		return "utf32_string_literal"
	case RawComment:
		return "comment"
	case RawPunctuator:
		return "punctuator"
	default:
		return "unknown"
	}
}

// RawToken is one token of the raw re-lexing stream
type RawToken struct {
	Kind   RawKind
	Offset int
	Length int
	Text   string
}

// End returns the exclusive end offset
func (t RawToken) End() int {
	return t.Offset + t.Length
}

// RawLexer yields the raw token stream of the main file buffer, comments included
type RawLexer interface {
	// Lex returns the next token, or a RawEOF token once the buffer is exhausted
	Lex() RawToken

	// AtEnd reports whether the cursor has reached the end of the buffer
	AtEnd() bool
}

// IdentifierTable tells reserved words apart from identifiers
type IdentifierTable interface {
	IsKeyword(ident string) bool
}

// TokenStream replays an already lexed token slice as a RawLexer
type TokenStream struct {
	tokens []RawToken
	size   int
	pos    int
}

// NewTokenStream returns a RawLexer over tokens of a buffer of size bytes
func NewTokenStream(tokens []RawToken, size int) *TokenStream {
	return &TokenStream{tokens: tokens, size: size}
}

func (s *TokenStream) Lex() RawToken {
	if s.pos >= len(s.tokens) {
		return RawToken{Kind: RawEOF, Offset: s.size}
	}
	tok := s.tokens[s.pos]
	s.pos++
	return tok
}

func (s *TokenStream) AtEnd() bool {
	if s.pos >= len(s.tokens) {
		return true
	}
	return s.tokens[s.pos].Kind == RawEOF
}
