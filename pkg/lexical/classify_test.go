package lexical_test

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/walteh/clang-highlight/pkg/cxxlex"
	"github.com/walteh/clang-highlight/pkg/frontend"
	"github.com/walteh/clang-highlight/pkg/lexical"
	"github.com/walteh/clang-highlight/pkg/tokindex"
	"github.com/walteh/clang-highlight/pkg/token"
)

type classified struct {
	text string
	kind token.Kind
}

func classify(t *testing.T, src string) []classified {
	t.Helper()
	ctx := zerolog.New(zerolog.NewTestWriter(t)).WithContext(context.Background())

	idx := tokindex.New()
	lx := cxxlex.New([]byte(src), cxxlex.LangCXX)
	require.NoError(t, lexical.Classify(ctx, idx, lx, cxxlex.KeywordsFor(cxxlex.LangCXX)))
	require.NoError(t, idx.Validate())

	var out []classified
	for tok := range idx.All() {
		out = append(out, classified{string(tok.Text([]byte(src))), tok.Kind})
	}
	return out
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []classified
	}{
		{
			name:  "simple declaration",
			input: "int x = 5;",
			want: []classified{
				{"int", token.KindKeyword},
				{"x", token.KindName},
				{"=", token.KindPunctuation},
				{"5", token.KindNumberLiteral},
				{";", token.KindPunctuation},
			},
		},
		{
			name:  "literal kinds",
			input: `auto s = u8"a"; char c = 'c'; auto r = R"(x)";`,
			want: []classified{
				{"auto", token.KindKeyword},
				{"s", token.KindName},
				{"=", token.KindPunctuation},
				{`u8"a"`, token.KindStringLiteral},
				{";", token.KindPunctuation},
				{"char", token.KindKeyword},
				{"c", token.KindName},
				{"=", token.KindPunctuation},
				{"'c'", token.KindOtherLiteral},
				{";", token.KindPunctuation},
				{"auto", token.KindKeyword},
				{"r", token.KindName},
				{"=", token.KindPunctuation},
				{`R"(x)"`, token.KindStringLiteral},
				{";", token.KindPunctuation},
			},
		},
		{
			name:  "comments are never skipped",
			input: "a/*x*/b // y",
			want: []classified{
				{"a", token.KindName},
				{"/*x*/", token.KindComment},
				{"b", token.KindName},
				{"// y", token.KindComment},
			},
		},
		{
			name:  "empty buffer",
			input: "",
			want:  nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, classify(t, tt.input))
		})
	}
}

func TestClassifyUnitWithoutBuffer(t *testing.T) {
	ctx := context.Background()
	unit := &frontend.RecordedUnit{File: "missing.cpp"}

	err := lexical.ClassifyUnit(ctx, tokindex.New(), unit)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reading main file buffer")
}

func TestClassifyUnitReplaysTokens(t *testing.T) {
	src := []byte("return 0;")
	unit := &frontend.RecordedUnit{
		File:     "a.cpp",
		Source:   src,
		Tokens:   cxxlex.New(src, cxxlex.LangCXX).All(),
		Keywords: cxxlex.KeywordsFor(cxxlex.LangCXX),
	}

	idx := tokindex.New()
	require.NoError(t, lexical.ClassifyUnit(context.Background(), idx, unit))
	require.Equal(t, 3, idx.Len())
	assert.Equal(t, token.KindKeyword, idx.At(0).Kind)
	assert.Equal(t, token.KindNumberLiteral, idx.At(1).Kind)
	assert.Equal(t, token.KindPunctuation, idx.At(2).Kind)
}
