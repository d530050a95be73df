package cxxlex

// cursor is a byte position in the buffer being lexed
type cursor struct {
	buf []byte
	off int
}

func (c *cursor) eof() bool {
	return c.off >= len(c.buf)
}

// peek returns the byte at the cursor, or 0 at the end
func (c *cursor) peek() byte {
	return c.peekAt(0)
}

// peekAt returns the byte n positions ahead of the cursor, or 0 past the end
func (c *cursor) peekAt(n int) byte {
	if c.off+n >= len(c.buf) || c.off+n < 0 {
		return 0
	}
	return c.buf[c.off+n]
}

func (c *cursor) bump() byte {
	if c.eof() {
		return 0
	}
	b := c.buf[c.off]
	c.off++
	return b
}

// eat consumes b if it is the next byte
func (c *cursor) eat(b byte) bool {
	if !c.eof() && c.buf[c.off] == b {
		c.off++
		return true
	}
	return false
}

// hasPrefix reports whether the remaining input starts with s
func (c *cursor) hasPrefix(s string) bool {
	if c.off+len(s) > len(c.buf) {
		return false
	}
	return string(c.buf[c.off:c.off+len(s)]) == s
}

// lineSplice reports whether a backslash-newline sequence starts at the cursor and returns
// its length
func (c *cursor) lineSplice() (int, bool) {
	if c.peek() != '\\' {
		return 0, false
	}
	switch c.peekAt(1) {
	case '\n':
		return 2, true
	case '\r':
		if c.peekAt(2) == '\n' {
			return 3, true
		}
		return 2, true
	}
	return 0, false
}
