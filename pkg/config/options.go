// Package config holds the run options of one highlighting run and loads the optional
// configuration file they can be seeded from.
package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/hashicorp/go-multierror"
	"github.com/walteh/clang-highlight/pkg/postprocess"
	"gitlab.com/tozd/go/errors"
)

// Punctuation selects which punctuation tokens structured output carries
type Punctuation uint8

const (
	PunctuationKeep Punctuation = iota
	PunctuationSkip
	PunctuationLinkedOnly
)

func (p Punctuation) String() string {
	switch p {
	case PunctuationSkip:
		return "skip"
	case PunctuationLinkedOnly:
		return "linked-only"
	default:
		return "keep"
	}
}

func ParsePunctuation(s string) (Punctuation, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "keep", "":
		return PunctuationKeep, nil
	case "skip", "none":
		return PunctuationSkip, nil
	case "linked-only", "linked_only", "linked":
		return PunctuationLinkedOnly, nil
	}
	return PunctuationKeep, errors.Errorf("invalid punctuation mode %q (use keep, skip or linked-only)", s)
}

// Options is everything one run needs. Output paths are pointers: nil skips that output,
// "" or "-" writes it to standard output.
type Options struct {
	HTMLOut    *string
	JSONOut    *string
	MsgpackOut *string
	SemtokOut  *string
	ANSI       bool

	HTMLEmbed bool
	HTMLTitle string

	Punctuation        Punctuation
	Postprocess        []string
	ExcludeLinks       []string
	ExternalMacrosOnly bool
	CppRefMap          string

	Clang Clang
}

// Clang describes how to obtain the AST of the main file
type Clang struct {
	Binary string
	Args   []string

	// ASTJSON is a pre-dumped -ast-dump=json file used instead of running Binary
	ASTJSON string

	// Defines is saved `clang -E -dD` output used instead of running Binary for macros
	Defines string

	// BuildDir holds compile_commands.json
	BuildDir string
}

func Default() Options {
	return Options{
		Punctuation: PunctuationKeep,
		Clang:       Clang{Binary: "clang++"},
	}
}

// ApplyFile copies every value set in f onto the options
func (me *Options) ApplyFile(f *File) error {
	if f == nil {
		return nil
	}

	if f.Punctuation != nil {
		p, err := ParsePunctuation(*f.Punctuation)
		if err != nil {
			return errors.Errorf("config punctuation: %w", err)
		}
		me.Punctuation = p
	}
	if f.Postprocess != nil {
		me.Postprocess = f.Postprocess
	}
	if f.ExcludeLinks != nil {
		me.ExcludeLinks = f.ExcludeLinks
	}
	if f.ExternalMacrosOnly != nil {
		me.ExternalMacrosOnly = *f.ExternalMacrosOnly
	}
	if f.CppRefMap != nil {
		me.CppRefMap = ExpandHome(*f.CppRefMap)
	}
	if f.Clang != nil {
		if f.Clang.Binary != "" {
			me.Clang.Binary = f.Clang.Binary
		}
		me.Clang.Args = append(me.Clang.Args, f.Clang.Args...)
		if f.Clang.BuildDir != "" {
			me.Clang.BuildDir = ExpandHome(f.Clang.BuildDir)
		}
	}
	if f.HTML != nil {
		if f.HTML.Embed != nil {
			me.HTMLEmbed = *f.HTML.Embed
		}
		me.HTMLTitle = f.HTML.Title
	}
	return nil
}

// Validate reports every problem with the options at once
func (me *Options) Validate() error {
	var result *multierror.Error

	if me.HTMLOut == nil && me.JSONOut == nil && me.MsgpackOut == nil && me.SemtokOut == nil && !me.ANSI {
		result = multierror.Append(result, errors.New("no output selected (use --html-out, --json-out, --msgpack-out, --semtok-out or --ansi)"))
	}

	stdout := 0
	for _, out := range []*string{me.HTMLOut, me.JSONOut, me.MsgpackOut, me.SemtokOut} {
		if out != nil && IsStdout(*out) {
			stdout++
		}
	}
	if me.ANSI {
		stdout++
	}
	if stdout > 1 {
		result = multierror.Append(result, errors.New("more than one output writes to standard output"))
	}

	for _, step := range me.Postprocess {
		if _, err := postprocess.ParseSteps([]string{step}); err != nil {
			result = multierror.Append(result, err)
		}
	}

	for _, pattern := range me.ExcludeLinks {
		if !doublestar.ValidatePattern(pattern) {
			result = multierror.Append(result, errors.Errorf("invalid exclude_links pattern %q", pattern))
		}
	}

	if me.Clang.ASTJSON == "" && me.Clang.Binary == "" {
		result = multierror.Append(result, errors.New("no clang binary configured"))
	}

	return result.ErrorOrNil()
}

// IsStdout reports whether an output path means standard output
func IsStdout(path string) bool {
	return path == "" || path == "-"
}

// ExpandHome replaces a leading ~ with the user's home directory
func ExpandHome(path string) string {
	if path == "~" {
		return homeDir()
	}
	if strings.HasPrefix(path, "~/") {
		return filepath.Join(homeDir(), path[2:])
	}
	return path
}

func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return home
}
