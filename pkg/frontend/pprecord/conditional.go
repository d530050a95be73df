package pprecord

import (
	"strconv"
	"strings"

	"github.com/walteh/clang-highlight/pkg/frontend"
)

// truth is the value of a conditional as far as the record can tell without running the
// preprocessor
type truth uint8

const (
	truthNo truth = iota
	truthYes
	truthMaybe
)

func (t truth) not() truth {
	switch t {
	case truthNo:
		return truthYes
	case truthYes:
		return truthNo
	}
	return truthMaybe
}

func (t truth) and(o truth) truth {
	switch {
	case t == truthNo || o == truthNo:
		return truthNo
	case t == truthYes && o == truthYes:
		return truthYes
	}
	return truthMaybe
}

func (t truth) or(o truth) truth {
	switch {
	case t == truthYes || o == truthYes:
		return truthYes
	case t == truthNo && o == truthNo:
		return truthNo
	}
	return truthMaybe
}

// branch is one open #if group
type branch struct {
	// reachable is false when an enclosing group is disabled
	reachable bool
	// taken is whether an earlier branch of the group was entered
	taken truth
	// active is whether the current branch may be compiled
	active bool
}

type conditionals struct {
	stack []branch
}

// active reports whether code at the current point may be compiled
func (c *conditionals) active() bool {
	return len(c.stack) == 0 || c.stack[len(c.stack)-1].active
}

func (c *conditionals) open(cond truth) {
	reachable := c.active()
	if !reachable {
		cond = truthNo
	}
	c.stack = append(c.stack, branch{reachable: reachable, taken: cond, active: reachable && cond != truthNo})
}

func (c *conditionals) elif(cond truth) {
	if len(c.stack) == 0 {
		return
	}
	top := &c.stack[len(c.stack)-1]
	if !top.reachable || top.taken == truthYes {
		top.active = false
		return
	}
	top.active = cond != truthNo
	top.taken = top.taken.or(cond)
}

func (c *conditionals) otherwise() {
	c.elif(truthYes)
}

func (c *conditionals) close() {
	if len(c.stack) > 0 {
		c.stack = c.stack[:len(c.stack)-1]
	}
}

// defined evaluates `defined X` against the macros seen so far. Without a table of the
// macros defined outside the main file an unknown name may still be defined.
func (b *builder) defined(name string) truth {
	if _, ok := b.macros[name]; ok {
		return truthYes
	}
	if b.complete {
		return truthNo
	}
	return truthMaybe
}

func (b *builder) definedArg(args []frontend.RawToken) truth {
	if len(args) == 0 || args[0].Kind != frontend.RawIdentifier {
		return truthMaybe
	}
	return b.defined(args[0].Text)
}

// condition evaluates the controlling expression of #if and #elif. Anything beyond
// integer literals, defined, the logical operators and parentheses is undecided.
func (b *builder) condition(toks []frontend.RawToken) truth {
	p := &condParser{b: b, toks: toks}
	v := p.or()
	if p.pos != len(toks) {
		return truthMaybe
	}
	return v
}

type condParser struct {
	b    *builder
	toks []frontend.RawToken
	pos  int
}

func (p *condParser) peek() string {
	if p.pos < len(p.toks) {
		return p.toks[p.pos].Text
	}
	return ""
}

func (p *condParser) or() truth {
	v := p.and()
	for p.peek() == "||" {
		p.pos++
		v = v.or(p.and())
	}
	return v
}

func (p *condParser) and() truth {
	v := p.unary()
	for p.peek() == "&&" {
		p.pos++
		v = v.and(p.unary())
	}
	return v
}

func (p *condParser) unary() truth {
	if p.peek() == "!" {
		p.pos++
		return p.unary().not()
	}
	return p.primary()
}

func (p *condParser) primary() truth {
	if p.pos >= len(p.toks) {
		return truthMaybe
	}
	tok := p.toks[p.pos]
	p.pos++

	switch {
	case tok.Text == "(":
		v := p.or()
		if p.peek() != ")" {
			p.pos = len(p.toks) + 1
			return truthMaybe
		}
		p.pos++
		return v

	case tok.Text == "defined":
		paren := p.peek() == "("
		if paren {
			p.pos++
		}
		if p.pos >= len(p.toks) || p.toks[p.pos].Kind != frontend.RawIdentifier {
			p.pos = len(p.toks) + 1
			return truthMaybe
		}
		v := p.b.defined(p.toks[p.pos].Text)
		p.pos++
		if paren {
			if p.peek() != ")" {
				p.pos = len(p.toks) + 1
				return truthMaybe
			}
			p.pos++
		}
		return v

	case tok.Kind == frontend.RawNumericConstant:
		n, ok := integer(tok.Text)
		if !ok {
			return truthMaybe
		}
		if n == 0 {
			return truthNo
		}
		return truthYes

	case tok.Text == "true":
		return truthYes
	case tok.Text == "false":
		return truthNo

	case tok.Kind == frontend.RawIdentifier && p.b.defined(tok.Text) == truthNo:
		// names that are not macros evaluate to 0
		return truthNo
	}

	// macros and comparisons need the values the record does not track
	p.pos = len(p.toks) + 1
	return truthMaybe
}

// integer parses a preprocessor integer literal, suffixes and digit separators included
func integer(text string) (int64, bool) {
	text = strings.TrimRight(strings.ReplaceAll(text, "'", ""), "uUlLzZ")
	if n, err := strconv.ParseInt(text, 0, 64); err == nil {
		return n, true
	}
	// values past int64 are only ever compared against zero here
	if _, err := strconv.ParseUint(text, 0, 64); err == nil {
		return 1, true
	}
	return 0, false
}
