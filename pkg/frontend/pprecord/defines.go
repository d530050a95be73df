package pprecord

import (
	"bufio"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/walteh/clang-highlight/pkg/frontend"
	"gitlab.com/tozd/go/errors"
)

// ParseDefines reads preprocessed output that kept its directives (`clang -E -dD`) and
// returns the macros defined outside mainFile. Line markers attribute each definition to
// the file and line it was written at; definitions in pseudo files such as <built-in> get
// no definition site.
func ParseDefines(r io.Reader, mainFile string) (Table, error) {
	main := filepath.Clean(mainFile)
	table := Table{}

	file := ""
	line := 0

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for sc.Scan() {
		text := sc.Text()
		line++

		if f, l, ok := parseLineMarker(text); ok {
			file, line = f, l-1
			continue
		}

		if file != "" && filepath.Clean(file) == main {
			continue
		}

		rest, ok := directive(text)
		if !ok {
			continue
		}

		switch {
		case strings.HasPrefix(rest, "define "):
			body := rest[len("define "):]
			name := identifierPrefix(body)
			if name == "" {
				continue
			}
			macro := Macro{FunctionLike: strings.HasPrefix(body[len(name):], "(")}
			if !isPseudoFile(file) {
				macro.Definition = &frontend.MacroDefinition{
					Name: name,
					Loc: frontend.Location{
						File:   file,
						Line:   line,
						Column: strings.Index(text, name) + 1,
					},
				}
			}
			table[name] = macro

		case strings.HasPrefix(rest, "undef "):
			delete(table, identifierPrefix(strings.TrimSpace(rest[len("undef "):])))
		}
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Errorf("reading preprocessed output: %w", err)
	}

	return table, nil
}

// directive returns the text after the '#' of a directive line
func directive(text string) (string, bool) {
	t := strings.TrimLeft(text, " \t")
	if !strings.HasPrefix(t, "#") {
		return "", false
	}
	return strings.TrimLeft(t[1:], " \t"), true
}

// parseLineMarker recognizes `# 12 "file" flags...` and `#line 12 "file"`
func parseLineMarker(text string) (string, int, bool) {
	rest, ok := directive(text)
	if !ok {
		return "", 0, false
	}
	rest = strings.TrimPrefix(rest, "line ")

	num, after, _ := strings.Cut(strings.TrimSpace(rest), " ")
	n, err := strconv.Atoi(num)
	if err != nil {
		return "", 0, false
	}

	after = strings.TrimSpace(after)
	if !strings.HasPrefix(after, `"`) {
		return "", 0, false
	}
	end := closingQuote(after)
	if end < 0 {
		return "", 0, false
	}
	file, err := strconv.Unquote(after[:end+1])
	if err != nil {
		file = after[1:end]
	}
	return file, n, true
}

func closingQuote(s string) int {
	for i := 1; i < len(s); i++ {
		switch s[i] {
		case '\\':
			i++
		case '"':
			return i
		}
	}
	return -1
}

func identifierPrefix(s string) string {
	for i := 0; i < len(s); i++ {
		c := s[i]
		ident := c == '_' || c == '$' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= 0x80 || i > 0 && c >= '0' && c <= '9'
		if !ident {
			return s[:i]
		}
	}
	return s
}

func isPseudoFile(file string) bool {
	return file == "" || strings.HasPrefix(file, "<")
}
