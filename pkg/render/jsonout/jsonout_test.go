package jsonout_test

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"
	"github.com/walteh/clang-highlight/pkg/annotate"
	"github.com/walteh/clang-highlight/pkg/config"
	"github.com/walteh/clang-highlight/pkg/render/jsonout"
	"github.com/walteh/clang-highlight/pkg/tokindex"
	"github.com/walteh/clang-highlight/pkg/token"
)

const src = "f(a, b);\n"

func sample(t *testing.T) *annotate.Result {
	t.Helper()
	idx := tokindex.New()
	toks := []*token.Token{
		{Offset: 0, Length: 1, Kind: token.KindName, Link: token.NewLink("f", "ns::f", "/inc/f.h", 2, 6, []string{"int", "int"})},
		{Offset: 1, Length: 1, Kind: token.KindPunctuation},
		{Offset: 2, Length: 1, Kind: token.KindVariable},
		{Offset: 3, Length: 1, Kind: token.KindPunctuation, Link: token.NewLink("operator,", "operator,", "/inc/op.h", 1, 1, nil)},
		{Offset: 5, Length: 1, Kind: token.KindVariable},
		{Offset: 6, Length: 1, Kind: token.KindPunctuation},
		{Offset: 7, Length: 1, Kind: token.KindPunctuation},
	}
	for _, tok := range toks {
		require.NoError(t, idx.Insert(tok))
	}
	return &annotate.Result{File: "/src/a.cpp", Buffer: []byte(src), Index: idx}
}

func TestRenderKeep(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, jsonout.Render(&out, sample(t), config.PunctuationKeep))

	want := `{
  "file": "/src/a.cpp",
  "tokens": [
    {
      "offset": 0,
      "length": 1,
      "type": "name",
      "link": {
        "file": "/inc/f.h",
        "line": 2,
        "column": 6,
        "name": "f",
        "qualified_name": "ns::f",
        "parameter_types": [
          "int",
          "int"
        ]
      }
    },
    {
      "offset": 1,
      "length": 1,
      "type": "punctuation"
    },
    {
      "offset": 2,
      "length": 1,
      "type": "variable"
    },
    {
      "offset": 3,
      "length": 1,
      "type": "punctuation",
      "link": {
        "file": "/inc/op.h",
        "line": 1,
        "column": 1,
        "name": "operator,",
        "qualified_name": "operator,"
      }
    },
    {
      "offset": 5,
      "length": 1,
      "type": "variable"
    },
    {
      "offset": 6,
      "length": 1,
      "type": "punctuation"
    },
    {
      "offset": 7,
      "length": 1,
      "type": "punctuation"
    }
  ]
}
`
	assert.Equal(t, want, out.String())
}

func TestPunctuationModes(t *testing.T) {
	tests := []struct {
		mode            config.Punctuation
		wantPunctuation int
		wantTotal       int
	}{
		{config.PunctuationKeep, 4, 7},
		{config.PunctuationSkip, 0, 3},
		{config.PunctuationLinkedOnly, 1, 4},
	}

	for _, tt := range tests {
		t.Run(tt.mode.String(), func(t *testing.T) {
			doc := jsonout.Build(sample(t), tt.mode)
			punct := 0
			for _, tok := range doc.Tokens {
				if tok.Type == "punctuation" {
					punct++
					if tt.mode == config.PunctuationLinkedOnly {
						assert.NotNil(t, tok.Link)
					}
				}
			}
			assert.Equal(t, tt.wantPunctuation, punct)
			assert.Len(t, doc.Tokens, tt.wantTotal)
		})
	}
}

func TestLengthRoundTrip(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, jsonout.Render(&out, sample(t), config.PunctuationKeep))

	var doc jsonout.Document
	require.NoError(t, json.Unmarshal(out.Bytes(), &doc))

	covered, gaps, pos := 0, 0, 0
	for _, tok := range doc.Tokens {
		require.GreaterOrEqual(t, tok.Offset, pos)
		gaps += tok.Offset - pos
		covered += tok.Length
		pos = tok.Offset + tok.Length
	}
	gaps += len(src) - pos

	assert.Equal(t, len(src), covered+gaps)
	assert.Equal(t, 2, gaps)
}

func TestEmptyIndex(t *testing.T) {
	var out bytes.Buffer
	doc := &annotate.Result{File: "empty.cpp", Index: tokindex.New()}
	require.NoError(t, jsonout.Render(&out, doc, config.PunctuationKeep))
	assert.JSONEq(t, `{"file":"empty.cpp","tokens":[]}`, out.String())
}

func TestMsgpack(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, jsonout.RenderMsgpack(&out, sample(t), config.PunctuationSkip))

	dec := msgpack.NewDecoder(&out)
	dec.SetCustomStructTag("json")
	var got jsonout.Document
	require.NoError(t, dec.Decode(&got))

	assert.Equal(t, jsonout.Build(sample(t), config.PunctuationSkip), &got)
}
