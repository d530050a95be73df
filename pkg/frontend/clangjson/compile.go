package clangjson

import (
	"encoding/json"
	"path/filepath"
	"strings"

	"github.com/kballard/go-shellquote"
	"github.com/spf13/afero"
	"gitlab.com/tozd/go/errors"
)

var ErrNoCompileCommand = errors.Base("no compile command for file")

// CompileCommand is one entry of a compile_commands.json database
type CompileCommand struct {
	Directory string   `json:"directory"`
	File      string   `json:"file"`
	Command   string   `json:"command,omitempty"`
	Arguments []string `json:"arguments,omitempty"`
	Output    string   `json:"output,omitempty"`
}

// Path returns the absolute path of the compiled file
func (c *CompileCommand) Path() string {
	if filepath.IsAbs(c.File) {
		return filepath.Clean(c.File)
	}
	return filepath.Join(c.Directory, c.File)
}

// Flags returns the compiler flags of the entry without the compiler itself, the input
// file and the output options. Command is split with POSIX shell quoting.
func (c *CompileCommand) Flags() ([]string, error) {
	argv := c.Arguments
	if len(argv) == 0 {
		words, err := shellquote.Split(c.Command)
		if err != nil {
			return nil, errors.Errorf("splitting compile command for %s: %w", c.File, err)
		}
		argv = words
	}
	if len(argv) > 0 {
		argv = argv[1:]
	}

	var out []string
	for i := 0; i < len(argv); i++ {
		arg := argv[i]
		switch {
		case arg == "-c":
		case arg == "-o":
			i++
		case strings.HasPrefix(arg, "-o") && len(arg) > 2:
		case c.isInput(arg):
		default:
			out = append(out, arg)
		}
	}
	return out, nil
}

func (c *CompileCommand) isInput(arg string) bool {
	if arg == c.File {
		return true
	}
	if strings.HasPrefix(arg, "-") {
		return false
	}
	if !filepath.IsAbs(arg) {
		arg = filepath.Join(c.Directory, arg)
	}
	return filepath.Clean(arg) == c.Path()
}

// LoadCompileCommand finds the entry for file in dir/compile_commands.json
func LoadCompileCommand(fs afero.Fs, dir, file string) (*CompileCommand, error) {
	path := filepath.Join(dir, "compile_commands.json")
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, errors.Errorf("reading compilation database: %w", err)
	}

	var db []CompileCommand
	if err := json.Unmarshal(data, &db); err != nil {
		return nil, errors.Errorf("parsing %s: %w", path, err)
	}

	want, err := filepath.Abs(file)
	if err != nil {
		return nil, errors.Errorf("resolving %s: %w", file, err)
	}
	for i := range db {
		if db[i].Path() == want {
			return &db[i], nil
		}
	}

	return nil, errors.WithDetails(ErrNoCompileCommand, "file", want, "database", path)
}
