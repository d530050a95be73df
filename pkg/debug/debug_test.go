package debug_test

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/walteh/clang-highlight/pkg/debug"
)

func TestNewLogger(t *testing.T) {
	now := func() time.Time { return time.Date(2024, 5, 1, 12, 30, 5, 250_000_000, time.UTC) }

	tests := []struct {
		name      string
		opts      debug.LoggerOptions
		wantDebug bool
	}{
		{"info", debug.LoggerOptions{Now: now}, false},
		{"debug", debug.LoggerOptions{Now: now, Debug: true}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			logger := debug.NewLogger(&out, tt.opts)

			logger.Info().Str("file", "a.cpp").Msg("annotated")
			logger.Debug().Msg("token count")

			s := out.String()
			assert.Contains(t, s, "12:30:05.250")
			assert.Contains(t, s, "annotated")
			assert.Contains(t, s, "file=a.cpp")
			assert.NotContains(t, s, "\x1b[", "colour is off")
			assert.Equal(t, tt.wantDebug, bytes.Contains(out.Bytes(), []byte("token count")))
		})
	}
}

func TestGetPackageAndFuncFromFuncName(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantPkg  string
		wantFunc string
	}{
		{"plain function", "github.com/walteh/clang-highlight/pkg/lexical.Classify", "github.com/walteh/clang-highlight/pkg/lexical", "Classify"},
		{"pointer method", "github.com/walteh/clang-highlight/pkg/tokindex.(*Index).Insert", "github.com/walteh/clang-highlight/pkg/tokindex", "(*Index).Insert"},
		{"closure", "main.run.func1", "main", "run.func1"},
		{"no dot", "weird", "weird", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pkg, fn := debug.GetPackageAndFuncFromFuncName(tt.input)
			assert.Equal(t, tt.wantPkg, pkg)
			assert.Equal(t, tt.wantFunc, fn)
		})
	}
}

func TestFormatCaller(t *testing.T) {
	assert.Equal(t, "pkg/semantic:visitors.go:42", debug.FormatCaller("pkg/semantic", "/src/pkg/semantic/visitors.go", 42, false))
	assert.Equal(t, "a.go", debug.FileNameOfPath("a.go"))
}
