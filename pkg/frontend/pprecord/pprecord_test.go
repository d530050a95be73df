package pprecord_test

import (
	"context"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/walteh/clang-highlight/pkg/cxxlex"
	"github.com/walteh/clang-highlight/pkg/frontend"
	"github.com/walteh/clang-highlight/pkg/frontend/pprecord"
)

type entity struct {
	kind  frontend.EntityKind
	begin int
	end   int
	def   string
}

func build(t *testing.T, src string, external pprecord.Table) []frontend.PPEntity {
	t.Helper()
	ctx := zerolog.New(zerolog.NewTestWriter(t)).WithContext(context.Background())
	toks := cxxlex.New([]byte(src), cxxlex.LangCXX).All()
	return pprecord.Build(ctx, "/src/main.cpp", []byte(src), toks, external)
}

func summarize(entities []frontend.PPEntity) []entity {
	out := make([]entity, 0, len(entities))
	for _, e := range entities {
		got := entity{kind: e.Kind, begin: e.Begin.Offset, end: e.End.Offset}
		if e.Definition != nil {
			got.def = e.Definition.Loc.String()
		}
		out = append(out, got)
	}
	return out
}

func TestBuild(t *testing.T) {
	tests := []struct {
		name     string
		src      string
		external pprecord.Table
		want     []entity
	}{
		{
			name: "includes, defines and expansions",
			src: "#include <vector>\n" +
				"#define N 4\n" +
				"#define SQ(x) ((x)*(x))\n" +
				"int a = N + SQ(2) + SQ;\n" +
				"#undef N\n" +
				"int b = N;\n",
			want: []entity{
				{frontend.EntityInclusionDirective, 0, 16, ""},
				{frontend.EntityMacroDefinition, 26, 28, "/src/main.cpp:2:9"},
				{frontend.EntityMacroDefinition, 38, 52, "/src/main.cpp:3:9"},
				{frontend.EntityMacroExpansion, 62, 62, "/src/main.cpp:2:9"},
				{frontend.EntityMacroExpansion, 66, 70, "/src/main.cpp:3:9"},
			},
		},
		{
			name: "include variants and trailing comment",
			src:  "#include \"a.h\" // note\n#  include_next <b.h>\n#import <c.h>\n",
			want: []entity{
				{frontend.EntityInclusionDirective, 0, 9, ""},
				{frontend.EntityInclusionDirective, 23, 43, ""},
				{frontend.EntityInclusionDirective, 45, 57, ""},
			},
		},
		{
			name: "spliced directive",
			src:  "#define LONG \\\n  1\nint x = LONG;\n",
			want: []entity{
				{frontend.EntityMacroDefinition, 8, 17, "/src/main.cpp:1:9"},
				{frontend.EntityMacroExpansion, 27, 27, "/src/main.cpp:1:9"},
			},
		},
		{
			name: "external macros",
			src:  "int c = EXT + BUILTIN;\n",
			external: pprecord.Table{
				"EXT": {Definition: &frontend.MacroDefinition{
					Name: "EXT",
					Loc:  frontend.Location{File: "/usr/include/ext.h", Line: 3, Column: 9},
				}},
				"BUILTIN": {},
			},
			want: []entity{
				{frontend.EntityMacroExpansion, 8, 8, "/usr/include/ext.h:3:9"},
				{frontend.EntityMacroExpansion, 14, 14, ""},
			},
		},
		{
			name: "disabled if block",
			src:  "#define N 1\n#if 0\nint a = N;\n#include <never.h>\n#endif\nint b = N;\n",
			want: []entity{
				{frontend.EntityMacroDefinition, 8, 10, "/src/main.cpp:1:9"},
				{frontend.EntityMacroExpansion, 63, 63, "/src/main.cpp:1:9"},
			},
		},
		{
			name: "undef in disabled else",
			src:  "#define A 1\n#ifdef A\n#else\n#undef A\n#endif\nint x = A;\n",
			want: []entity{
				{frontend.EntityMacroDefinition, 8, 10, "/src/main.cpp:1:9"},
				{frontend.EntityMacroExpansion, 51, 51, "/src/main.cpp:1:9"},
			},
		},
		{
			name: "include guard on an external macro",
			src:  "#ifndef EXT\n#define EXT 2\n#endif\nint y = EXT;\n",
			external: pprecord.Table{
				"EXT": {Definition: &frontend.MacroDefinition{
					Name: "EXT",
					Loc:  frontend.Location{File: "/usr/include/ext.h", Line: 3, Column: 9},
				}},
			},
			want: []entity{
				{frontend.EntityMacroExpansion, 41, 41, "/usr/include/ext.h:3:9"},
			},
		},
		{
			name: "elif chain takes one branch",
			src:  "#if 0\n#elif 1\n#define B 1\n#else\n#define B 2\n#endif\nB\n",
			want: []entity{
				{frontend.EntityMacroDefinition, 22, 24, "/src/main.cpp:3:9"},
				{frontend.EntityMacroExpansion, 51, 51, "/src/main.cpp:3:9"},
			},
		},
		{
			name: "nested group inside disabled block",
			src:  "#if 0\n#if 1\nN\n#else\nN\n#endif\n#endif\nN\n",
			external: pprecord.Table{"N": {}},
			want: []entity{
				{frontend.EntityMacroExpansion, 36, 36, ""},
			},
		},
		{
			name: "undecided condition keeps both branches",
			src:  "#ifdef X\n#define C 1\n#else\n#define C 2\n#endif\n",
			want: []entity{
				{frontend.EntityMacroDefinition, 17, 19, "/src/main.cpp:2:9"},
				{frontend.EntityMacroDefinition, 35, 37, "/src/main.cpp:4:9"},
			},
		},
		{
			name: "hash inside a line is not a directive",
			src:  "int a = 1; # define X\nint X;\n",
			want: []entity{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := build(t, tt.src, tt.external)
			assert.Equal(t, tt.want, summarize(got))
			for _, e := range got {
				assert.True(t, e.Local(), "every entity belongs to the main file")
			}
		})
	}
}

func TestBuildDoesNotModifyExternal(t *testing.T) {
	external := pprecord.Table{"EXT": {}}
	build(t, "#undef EXT\n#define MINE 1\n", external)
	assert.Len(t, external, 1)
	assert.Contains(t, external, "EXT")
}

func TestParseDefines(t *testing.T) {
	out := strings.Join([]string{
		`# 1 "/src/main.cpp"`,
		`# 1 "<built-in>" 1`,
		`#define __GNUC__ 4`,
		`# 1 "<command line>" 1`,
		`# 1 "/usr/include/ext.h" 1`,
		`#define EXT 1`,
		`#define CALL(a) a`,
		``,
		`#define GONE`,
		`#undef GONE`,
		`# 7 "/src/main.cpp" 2`,
		`#define LOCAL 2`,
		`int main() { return EXT; }`,
	}, "\n")

	table, err := pprecord.ParseDefines(strings.NewReader(out), "/src/./main.cpp")
	require.NoError(t, err)

	require.Contains(t, table, "__GNUC__")
	assert.Nil(t, table["__GNUC__"].Definition)

	require.Contains(t, table, "EXT")
	require.NotNil(t, table["EXT"].Definition)
	assert.Equal(t, frontend.Location{File: "/usr/include/ext.h", Line: 1, Column: 9}, table["EXT"].Definition.Loc)
	assert.False(t, table["EXT"].FunctionLike)
	assert.False(t, table["EXT"].Definition.InMainFile)

	require.Contains(t, table, "CALL")
	assert.True(t, table["CALL"].FunctionLike)
	assert.Equal(t, 2, table["CALL"].Definition.Loc.Line)

	assert.NotContains(t, table, "GONE")
	assert.NotContains(t, table, "LOCAL", "main file definitions come from the raw tokens")
}
