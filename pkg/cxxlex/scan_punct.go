package cxxlex

import (
	"github.com/walteh/clang-highlight/pkg/frontend"
)

// punctuators ordered longest first so the first prefix match is the maximal munch
var punctuators = []string{
	"%:%:",
	"<<=", ">>=", "...", "->*", "<=>",
	"->", "++", "--", "<<", ">>", "<=", ">=", "==", "!=", "&&", "||",
	"*=", "/=", "%=", "+=", "-=", "&=", "^=", "|=", "##", "::", ".*",
	"<:", ":>", "<%", "%>", "%:",
	"{", "}", "[", "]", "(", ")", "#", ";", ":", "?", ".", "~", "!",
	"+", "-", "*", "/", "%", "^", "&", "|", "=", "<", ">", ",", "@",
}

func (lx *Lexer) scanPunctuator() frontend.RawKind {
	// C++11: "<::" not followed by ':' or '>' lexes as '<' then '::'
	if lx.lang == LangCXX && lx.cur.hasPrefix("<::") {
		if next := lx.cur.peekAt(3); next != ':' && next != '>' {
			lx.cur.bump()
			return frontend.RawPunctuator
		}
	}

	for _, p := range punctuators {
		if lx.cur.hasPrefix(p) {
			if (p == ".*" || p == "->*" || p == "::") && lx.lang != LangCXX {
				continue
			}
			lx.cur.off += len(p)
			return frontend.RawPunctuator
		}
	}

	lx.cur.bump()
	return frontend.RawUnknown
}
