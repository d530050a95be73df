package cxxlex

import (
	"github.com/walteh/clang-highlight/pkg/frontend"
)

// encoding prefixes that may start a character or string literal
var literalPrefixes = map[string]struct {
	str, chr frontend.RawKind
}{
	"L":  {frontend.RawWideStringLiteral, frontend.RawWideCharConstant},
	"u8": {frontend.RawUTF8StringLiteral, frontend.RawUTF8CharConstant},
	"u":  {frontend.RawUTF16StringLiteral, frontend.RawUTF16CharConstant},
	"U":  {frontend.RawUTF32StringLiteral, frontend.RawUTF32CharConstant},
}

func (lx *Lexer) scanIdentOrPrefixedLiteral() frontend.RawKind {
	start := lx.cur.off
	for isIdentContinue(lx.cur.peek()) {
		lx.cur.bump()
	}
	ident := string(lx.cur.buf[start:lx.cur.off])
	next := lx.cur.peek()

	if next == '"' {
		if kinds, ok := literalPrefixes[ident]; ok {
			return lx.scanQuoted('"', kinds.str)
		}
		if lx.lang == LangCXX {
			if kind, ok := rawStringKind(ident); ok && lx.scanRawString() {
				return kind
			}
		}
	}

	if next == '\'' {
		if kinds, ok := literalPrefixes[ident]; ok {
			return lx.scanQuoted('\'', kinds.chr)
		}
	}

	return frontend.RawIdentifier
}

// rawStringKind maps R, LR, u8R, uR and UR to their string kind
func rawStringKind(ident string) (frontend.RawKind, bool) {
	if ident == "R" {
		return frontend.RawStringLiteral, true
	}
	if len(ident) < 2 || ident[len(ident)-1] != 'R' {
		return 0, false
	}
	kinds, ok := literalPrefixes[ident[:len(ident)-1]]
	return kinds.str, ok
}

// scanQuoted consumes a quoted literal starting at the cursor. Unterminated literals stop
// before the end of the line and are reported as unknown tokens.
func (lx *Lexer) scanQuoted(quote byte, kind frontend.RawKind) frontend.RawKind {
	lx.cur.bump()
	for !lx.cur.eof() {
		c := lx.cur.peek()
		switch {
		case c == '\\':
			lx.cur.bump()
			if lx.cur.peek() == '\r' && lx.cur.peekAt(1) == '\n' {
				lx.cur.bump()
			}
			lx.cur.bump()
		case c == quote:
			lx.cur.bump()
			return kind
		case c == '\n':
			return frontend.RawUnknown
		default:
			lx.cur.bump()
		}
	}
	return frontend.RawUnknown
}

// scanRawString consumes R"delim( ... )delim". The cursor sits on the opening quote. On a
// malformed delimiter nothing is consumed and false is returned.
func (lx *Lexer) scanRawString() bool {
	start := lx.cur.off
	lx.cur.bump()

	delimStart := lx.cur.off
	for !lx.cur.eof() && lx.cur.peek() != '(' {
		c := lx.cur.peek()
		if c == ' ' || c == ')' || c == '\\' || c == '\t' || c == '\n' || lx.cur.off-delimStart >= 16 {
			lx.cur.off = start
			return false
		}
		lx.cur.bump()
	}
	if lx.cur.eof() {
		lx.cur.off = start
		return false
	}
	closing := ")" + string(lx.cur.buf[delimStart:lx.cur.off]) + `"`
	lx.cur.bump()

	for !lx.cur.eof() {
		if lx.cur.hasPrefix(closing) {
			lx.cur.off += len(closing)
			return true
		}
		lx.cur.bump()
	}
	return true
}

// scanNumber consumes a preprocessing number
func (lx *Lexer) scanNumber() {
	lx.cur.bump()
	for !lx.cur.eof() {
		c := lx.cur.peek()
		switch {
		case (c == '+' || c == '-') && isExponent(lx.cur.peekAt(-1)):
			lx.cur.bump()
		case isIdentContinue(c) || c == '.':
			lx.cur.bump()
		case c == '\'' && lx.lang == LangCXX && isIdentContinue(lx.cur.peekAt(1)):
			lx.cur.off += 2
		default:
			return
		}
	}
}

func isExponent(c byte) bool {
	return c == 'e' || c == 'E' || c == 'p' || c == 'P'
}
