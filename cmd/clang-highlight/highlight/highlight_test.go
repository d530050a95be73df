package highlight

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"
	"github.com/walteh/clang-highlight/pkg/config"
	"github.com/walteh/clang-highlight/pkg/render/jsonout"
)

const emptyDump = `{"id": "0x1", "kind": "TranslationUnitDecl", "inner": []}`

func setup(t *testing.T) (*Handler, *bytes.Buffer) {
	t.Helper()

	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/src/a.cpp", []byte("int x = 1; // hi\n"), 0o644))
	require.NoError(t, afero.WriteFile(fs, "/src/a.json", []byte(emptyDump), 0o644))

	var stdout bytes.Buffer
	return &Handler{fs: fs, stdout: &stdout, stderr: &bytes.Buffer{}}, &stdout
}

func execute(t *testing.T, me *Handler, args ...string) error {
	t.Helper()

	cmd := newCommand(me)
	cmd.SetArgs(args)
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	return cmd.ExecuteContext(context.Background())
}

func TestHighlightJSONToStdout(t *testing.T) {
	me, stdout := setup(t)

	err := execute(t, me, "/src/a.cpp", "--ast-json", "/src/a.json", "--no-punctuation", "--json-out")
	require.NoError(t, err)

	var doc jsonout.Document
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &doc))

	assert.Equal(t, "/src/a.cpp", doc.File)
	assert.Equal(t, []jsonout.Token{
		{Offset: 0, Length: 3, Type: "keyword"},
		{Offset: 4, Length: 1, Type: "name"},
		{Offset: 8, Length: 1, Type: "number_literal"},
		{Offset: 11, Length: 5, Type: "comment"},
	}, doc.Tokens)
}

func TestHighlightWritesFiles(t *testing.T) {
	me, stdout := setup(t)
	require.NoError(t, afero.WriteFile(me.fs, "/src/.clang-highlight.yaml", []byte("html:\n  title: from config\n"), 0o644))
	require.NoError(t, afero.WriteFile(me.fs, "/src/.editorconfig", []byte("root = true\n[*.cpp]\ntab_width = 6\n"), 0o644))

	err := execute(t, me, "/src/a.cpp", "--ast-json=/src/a.json", "--html-out=/out/a.html", "--msgpack-out=/out/a.msgpack", "--semtok-out=/out/a.semtok.json")
	require.NoError(t, err)
	assert.Empty(t, stdout.String())

	html, err := afero.ReadFile(me.fs, "/out/a.html")
	require.NoError(t, err)
	assert.Contains(t, string(html), "from config")
	assert.Contains(t, string(html), `<span class="k">int</span>`)
	assert.Contains(t, string(html), `style="tab-size: 6"`, "editorconfig is read from the handler's file system")

	f, err := me.fs.Open("/out/a.msgpack")
	require.NoError(t, err)
	defer f.Close()
	dec := msgpack.NewDecoder(f)
	dec.SetCustomStructTag("json")
	var doc jsonout.Document
	require.NoError(t, dec.Decode(&doc))
	assert.Len(t, doc.Tokens, 6)

	semtokJSON, err := afero.ReadFile(me.fs, "/out/a.semtok.json")
	require.NoError(t, err)
	assert.Contains(t, string(semtokJSON), `"data":[0,0,3,0,0,`)
}

func TestHighlightArguments(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{
			name:    "no_output",
			args:    []string{"/src/a.cpp", "--ast-json", "/src/a.json"},
			wantErr: "no output selected",
		},
		{
			name:    "stray_argument",
			args:    []string{"/src/a.cpp", "/src/b.cpp", "--ansi"},
			wantErr: "unexpected arguments",
		},
		{
			name:    "two_files_before_dash",
			args:    []string{"/src/a.cpp", "/src/b.cpp", "--ansi", "--", "-std=c++20"},
			wantErr: "expected exactly one file",
		},
		{
			name:    "bad_punctuation",
			args:    []string{"/src/a.cpp", "--ansi", "--punctuation", "some"},
			wantErr: "invalid punctuation mode",
		},
		{
			name:    "missing_dump",
			args:    []string{"/src/a.cpp", "--ansi", "--ast-json", "/src/missing.json"},
			wantErr: "opening AST dump",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			me, _ := setup(t)
			err := execute(t, me, tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestOptionsCompilerFlagsAfterDash(t *testing.T) {
	me, _ := setup(t)
	cmd := newCommand(me)
	require.NoError(t, cmd.ParseFlags([]string{"--ansi", "--clang", "clang-18"}))

	opts, err := me.Options(cmd, "/src/a.cpp", []string{"-std=c++20", "-DX"})
	require.NoError(t, err)

	assert.Equal(t, "clang-18", opts.Clang.Binary)
	assert.Equal(t, []string{"-std=c++20", "-DX"}, opts.Clang.Args)
	assert.True(t, opts.ANSI)
	assert.Equal(t, config.PunctuationKeep, opts.Punctuation)
}
