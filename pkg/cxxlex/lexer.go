// Package cxxlex is a raw C/C++ lexer: it tokenizes a buffer without running the
// preprocessor, keeps comments as tokens and leaves whitespace as untokenized gaps.
//
// Identifiers are reported as raw identifiers; telling keywords apart is left to a
// Keywords table for the unit's language, the same split clang's raw lexer makes.
package cxxlex

import (
	"github.com/walteh/clang-highlight/pkg/frontend"
)

// Lexer implements frontend.RawLexer over one buffer
type Lexer struct {
	cur  cursor
	lang Language
}

var _ frontend.RawLexer = (*Lexer)(nil)

// New returns a lexer positioned at the start of buf
func New(buf []byte, lang Language) *Lexer {
	return &Lexer{cur: cursor{buf: buf}, lang: lang}
}

// AtEnd reports whether the cursor has reached the end of the buffer
func (lx *Lexer) AtEnd() bool {
	return lx.cur.eof()
}

// Lex returns the next token, skipping whitespace. At the end of the buffer it returns a
// RawEOF token, repeatedly.
func (lx *Lexer) Lex() frontend.RawToken {
	lx.skipWhitespace()

	if lx.cur.eof() {
		return frontend.RawToken{Kind: frontend.RawEOF, Offset: len(lx.cur.buf)}
	}

	start := lx.cur.off
	kind := lx.scan()
	return frontend.RawToken{
		Kind:   kind,
		Offset: start,
		Length: lx.cur.off - start,
		Text:   string(lx.cur.buf[start:lx.cur.off]),
	}
}

// All lexes the whole buffer and returns every token before EOF
func (lx *Lexer) All() []frontend.RawToken {
	var out []frontend.RawToken
	for {
		tok := lx.Lex()
		if tok.Kind == frontend.RawEOF {
			return out
		}
		out = append(out, tok)
	}
}

func (lx *Lexer) scan() frontend.RawKind {
	c := lx.cur.peek()

	switch {
	case c == '/' && lx.cur.peekAt(1) == '/':
		lx.scanLineComment()
		return frontend.RawComment

	case c == '/' && lx.cur.peekAt(1) == '*':
		lx.scanBlockComment()
		return frontend.RawComment

	case isIdentStart(c):
		return lx.scanIdentOrPrefixedLiteral()

	case isDigit(c), c == '.' && isDigit(lx.cur.peekAt(1)):
		lx.scanNumber()
		return frontend.RawNumericConstant

	case c == '"':
		return lx.scanQuoted('"', frontend.RawStringLiteral)

	case c == '\'':
		return lx.scanQuoted('\'', frontend.RawCharConstant)

	default:
		return lx.scanPunctuator()
	}
}

func (lx *Lexer) skipWhitespace() {
	for !lx.cur.eof() {
		if n, ok := lx.cur.lineSplice(); ok {
			lx.cur.off += n
			continue
		}
		if !isSpace(lx.cur.peek()) {
			return
		}
		lx.cur.bump()
	}
}

func (lx *Lexer) scanLineComment() {
	for !lx.cur.eof() {
		if n, ok := lx.cur.lineSplice(); ok {
			lx.cur.off += n
			continue
		}
		c := lx.cur.peek()
		if c == '\n' || (c == '\r' && lx.cur.peekAt(1) == '\n') {
			return
		}
		lx.cur.bump()
	}
}

func (lx *Lexer) scanBlockComment() {
	lx.cur.off += 2
	for !lx.cur.eof() {
		if lx.cur.peek() == '*' && lx.cur.peekAt(1) == '/' {
			lx.cur.off += 2
			return
		}
		lx.cur.bump()
	}
}

func isSpace(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\r', '\v', '\f':
		return true
	}
	return false
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isIdentStart(c byte) bool {
	return c == '_' || c == '$' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c >= 0x80
}

func isIdentContinue(c byte) bool {
	return isIdentStart(c) || isDigit(c)
}
