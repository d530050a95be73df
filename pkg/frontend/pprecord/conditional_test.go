package pprecord

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/walteh/clang-highlight/pkg/cxxlex"
)

func TestCondition(t *testing.T) {
	tests := []struct {
		expr     string
		complete bool
		want     truth
	}{
		{expr: "0", want: truthNo},
		{expr: "1", want: truthYes},
		{expr: "0x10UL", want: truthYes},
		{expr: "0'000", want: truthNo},
		{expr: "18446744073709551615u", want: truthYes},
		{expr: "defined(HAVE)", want: truthYes},
		{expr: "defined HAVE && !defined(HAVE)", want: truthNo},
		{expr: "defined MISSING", want: truthMaybe},
		{expr: "defined MISSING", complete: true, want: truthNo},
		{expr: "defined MISSING || 1", want: truthYes},
		{expr: "(0 || defined(HAVE)) && 1", want: truthYes},
		{expr: "MISSING", complete: true, want: truthNo},
		{expr: "HAVE", want: truthMaybe},
		{expr: "VERSION >= 2", complete: true, want: truthMaybe},
		{expr: "(1", want: truthMaybe},
		{expr: "", want: truthMaybe},
	}

	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			b := &builder{macros: Table{"HAVE": {}}, complete: tt.complete}
			toks := cxxlex.New([]byte(tt.expr), cxxlex.LangCXX).All()
			assert.Equal(t, tt.want, b.condition(toks))
		})
	}
}

func TestConditionals(t *testing.T) {
	var c conditionals
	assert.True(t, c.active())

	c.open(truthMaybe)
	assert.True(t, c.active())
	c.elif(truthNo)
	assert.False(t, c.active())
	c.otherwise()
	assert.True(t, c.active(), "an undecided group may still reach #else")
	c.close()

	c.open(truthYes)
	c.otherwise()
	assert.False(t, c.active())
	c.close()

	c.close()
	assert.True(t, c.active(), "a stray #endif is ignored")
}
