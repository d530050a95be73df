package config_test

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/walteh/clang-highlight/pkg/config"
)

func ptr[T any](v T) *T {
	return &v
}

func TestLoadFile(t *testing.T) {
	t.Setenv("HOME", "/home/test")

	tests := []struct {
		name     string
		path     string
		content  string
		expected *config.File
		wantErr  string
	}{
		{
			name: "hcl",
			path: "/proj/.clang-highlight.hcl",
			content: `
punctuation = "linked-only"
postprocess = ["all"]
cppref_map = "${home}/cppref.json"

clang {
  binary = "clang-18"
  args   = ["-std=c++20"]
}

html {
  embed = true
  title = "demo"
}
`,
			expected: &config.File{
				Punctuation: ptr("linked-only"),
				Postprocess: []string{"all"},
				CppRefMap:   ptr("/home/test/cppref.json"),
				Clang:       &config.ClangBlock{Binary: "clang-18", Args: []string{"-std=c++20"}},
				HTML:        &config.HTMLBlock{Embed: ptr(true), Title: "demo"},
			},
		},
		{
			name: "yaml",
			path: "/proj/.clang-highlight.yaml",
			content: `
exclude_links:
  - "**/bits/*"
external_macros_only: true
`,
			expected: &config.File{
				ExcludeLinks:       []string{"**/bits/*"},
				ExternalMacrosOnly: ptr(true),
			},
		},
		{
			name:    "yaml_unknown_field",
			path:    "/proj/.clang-highlight.yml",
			content: "colour: red\n",
			wantErr: "parsing YAML",
		},
		{
			name:    "hcl_syntax_error",
			path:    "/proj/.clang-highlight.hcl",
			content: "punctuation = \n",
			wantErr: "parsing HCL",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := afero.NewMemMapFs()
			require.NoError(t, afero.WriteFile(fs, tt.path, []byte(tt.content), 0o644))

			got, err := config.LoadFile(fs, tt.path)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestLoadFileMissing(t *testing.T) {
	_, err := config.LoadFile(afero.NewMemMapFs(), "/nope.hcl")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reading config file")
}

func TestFindFile(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/proj/.clang-highlight.yaml", []byte("{}"), 0o644))
	require.NoError(t, fs.MkdirAll("/proj/src/deep", 0o755))

	path, ok := config.FindFile(fs, "/proj/src/deep")
	require.True(t, ok)
	assert.Equal(t, "/proj/.clang-highlight.yaml", path)

	require.NoError(t, afero.WriteFile(fs, "/proj/src/.clang-highlight.hcl", []byte(""), 0o644))
	path, ok = config.FindFile(fs, "/proj/src/deep")
	require.True(t, ok)
	assert.Equal(t, "/proj/src/.clang-highlight.hcl", path)

	_, ok = config.FindFile(fs, "/other")
	assert.False(t, ok)
}

func TestApplyFile(t *testing.T) {
	opts := config.Default()
	opts.Clang.Args = []string{"-DX"}

	err := opts.ApplyFile(&config.File{
		Punctuation:        ptr("skip"),
		ExternalMacrosOnly: ptr(true),
		Clang:              &config.ClangBlock{Binary: "clang-17", Args: []string{"-std=c++17"}},
		HTML:               &config.HTMLBlock{Title: "t"},
	})
	require.NoError(t, err)

	assert.Equal(t, config.PunctuationSkip, opts.Punctuation)
	assert.True(t, opts.ExternalMacrosOnly)
	assert.Equal(t, "clang-17", opts.Clang.Binary)
	assert.Equal(t, []string{"-DX", "-std=c++17"}, opts.Clang.Args)
	assert.Equal(t, "t", opts.HTMLTitle)
	assert.False(t, opts.HTMLEmbed)

	err = opts.ApplyFile(&config.File{Punctuation: ptr("sometimes")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config punctuation")

	require.NoError(t, opts.ApplyFile(nil))
}

func TestParsePunctuation(t *testing.T) {
	tests := []struct {
		in       string
		expected config.Punctuation
		wantErr  bool
	}{
		{in: "", expected: config.PunctuationKeep},
		{in: "keep", expected: config.PunctuationKeep},
		{in: " Skip ", expected: config.PunctuationSkip},
		{in: "none", expected: config.PunctuationSkip},
		{in: "linked_only", expected: config.PunctuationLinkedOnly},
		{in: "linked", expected: config.PunctuationLinkedOnly},
		{in: "all", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := config.ParsePunctuation(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
			assert.Equal(t, got, mustParse(t, got.String()))
		})
	}
}

func mustParse(t *testing.T, s string) config.Punctuation {
	t.Helper()
	p, err := config.ParsePunctuation(s)
	require.NoError(t, err)
	return p
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(o *config.Options)
		wantErr []string
	}{
		{
			name: "valid",
			mutate: func(o *config.Options) {
				o.HTMLOut = ptr("out.html")
				o.Postprocess = []string{"all", "escapes"}
			},
		},
		{
			name:    "no_output",
			mutate:  func(o *config.Options) {},
			wantErr: []string{"no output selected"},
		},
		{
			name: "two_stdout_outputs",
			mutate: func(o *config.Options) {
				o.JSONOut = ptr("-")
				o.ANSI = true
			},
			wantErr: []string{"more than one output writes to standard output"},
		},
		{
			name: "everything_wrong",
			mutate: func(o *config.Options) {
				o.MsgpackOut = ptr("out.msgpack")
				o.Postprocess = []string{"not_a_step"}
				o.ExcludeLinks = []string{"[unclosed"}
				o.Clang.Binary = ""
			},
			wantErr: []string{"not_a_step", "invalid exclude_links pattern", "no clang binary configured"},
		},
		{
			name: "ast_json_needs_no_binary",
			mutate: func(o *config.Options) {
				o.ANSI = true
				o.Clang.Binary = ""
				o.Clang.ASTJSON = "dump.json"
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := config.Default()
			tt.mutate(&opts)

			err := opts.Validate()
			if len(tt.wantErr) == 0 {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			for _, want := range tt.wantErr {
				assert.Contains(t, err.Error(), want)
			}
		})
	}
}

func TestExpandHome(t *testing.T) {
	t.Setenv("HOME", "/home/test")

	assert.Equal(t, "/home/test", config.ExpandHome("~"))
	assert.Equal(t, "/home/test/a/b", config.ExpandHome("~/a/b"))
	assert.Equal(t, "/abs/~/x", config.ExpandHome("/abs/~/x"))
}
