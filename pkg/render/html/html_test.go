package html_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/walteh/clang-highlight/pkg/annotate"
	"github.com/walteh/clang-highlight/pkg/render/html"
	"github.com/walteh/clang-highlight/pkg/tokindex"
	"github.com/walteh/clang-highlight/pkg/token"
)

func doc(t *testing.T, src string, toks ...*token.Token) *annotate.Result {
	t.Helper()
	idx := tokindex.New()
	for _, tok := range toks {
		require.NoError(t, idx.Insert(tok))
	}
	return &annotate.Result{File: "/src/a.cpp", Buffer: []byte(src), Index: idx}
}

func TestRenderEmbed(t *testing.T) {
	src := "int a<b; // x/y\n"
	d := doc(t, src,
		&token.Token{Offset: 0, Length: 3, Kind: token.KindKeyword},
		&token.Token{Offset: 4, Length: 1, Kind: token.KindVariable, Link: token.NewLink("a", "ns::a", "/inc/a.h", 3, 5, nil)},
		&token.Token{Offset: 5, Length: 1, Kind: token.KindPunctuation},
		&token.Token{Offset: 6, Length: 1, Kind: token.KindOther},
		&token.Token{Offset: 7, Length: 1, Kind: token.KindPunctuation},
		&token.Token{Offset: 9, Length: 6, Kind: token.KindComment},
	)

	var out bytes.Buffer
	require.NoError(t, html.Render(&out, d, html.Options{Embed: true}))

	want := `<pre class="m-code">` +
		`<span class="k">int</span> ` +
		`<span class="nv"><a href="file:///inc/a.h#3_a">a</a></span>` +
		`<span class="p">&lt;</span>` +
		`b` +
		`<span class="p">;</span> ` +
		`<span class="c">&#47;&#47; x&#47;y</span>` + "\n" +
		`</pre>`
	assert.Equal(t, want, out.String())
}

func TestRenderCppRefAndEscapedLinks(t *testing.T) {
	src := "a < b"
	link := token.NewLink("operator<", "std::operator<", "/inc/x.h", 1, 1, []string{"int", "int"})
	cpp := token.NewLink("vector", "std::vector", "/inc/v.h", 2, 2, nil)
	cpp.CppRef = "cpp/container/vector"

	d := doc(t, src,
		&token.Token{Offset: 0, Length: 1, Kind: token.KindName, Link: cpp},
		&token.Token{Offset: 2, Length: 1, Kind: token.KindOperator, Link: link},
	)

	var out bytes.Buffer
	require.NoError(t, html.Render(&out, d, html.Options{Embed: true}))

	assert.Contains(t, out.String(), `<a href="https://en.cppreference.com/w/cpp/container/vector">a</a>`)
	assert.Contains(t, out.String(), `<span class="o"><a href="file:///inc/x.h#1_operator&lt;">&lt;</a></span>`)
}

func TestRenderDocument(t *testing.T) {
	d := doc(t, "x", &token.Token{Offset: 0, Length: 1, Kind: token.KindName})

	var out bytes.Buffer
	require.NoError(t, html.Render(&out, d, html.Options{TabSize: 4}))

	s := out.String()
	assert.True(t, strings.HasPrefix(s, "<!doctype html>"))
	assert.Contains(t, s, "<title>&#47;src&#47;a.cpp</title>")
	assert.Contains(t, s, "m-dark.compiled.css")
	assert.Contains(t, s, "%7CSource+Code+Pro")
	assert.Contains(t, s, `<pre class="m-code" style="tab-size: 4"><span class="n">x</span></pre>`)
	assert.True(t, strings.HasSuffix(s, "</body></html>\n"))
}

func TestTabSizeFor(t *testing.T) {
	fs := afero.NewMemMapFs()
	write := func(path, content string) {
		require.NoError(t, afero.WriteFile(fs, path, []byte(content), 0o644))
	}
	write("/.editorconfig", "[*]\ntab_width = 5\n")
	write("/proj/.editorconfig", "root = true\n\n[*.cpp]\nindent_style = tab\ntab_width = 3\n\n[*.h]\nindent_size = 2\n")
	write("/proj/src/.editorconfig", "[*.cpp]\ntab_width = 8\n")

	tests := []struct {
		path string
		want int
	}{
		{"/proj/main.cpp", 3},
		{"/proj/main.h", 2},
		{"/proj/README", 0},
		{"/proj/src/main.cpp", 8},
		{"/proj/src/main.h", 2},
		{"/other/main.c", 5},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, html.TabSizeFor(fs, tt.path))
		})
	}

	assert.Equal(t, 0, html.TabSizeFor(afero.NewMemMapFs(), "/proj/main.cpp"), "nothing on the real file system is read")
}
