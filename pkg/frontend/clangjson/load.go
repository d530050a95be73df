/*
Package clangjson adapts clang to the annotator's front-end model.

	 clang -fsyntax-only -Xclang -ast-dump=json  --->  Decode --> Resolve --> Convert
	 clang -E -dD                                --->  pprecord.ParseDefines
	 main file bytes                             --->  cxxlex raw tokens
	                                                         |
	                                                         v
	                                              frontend.RecordedUnit

The JSON dump carries declaration graphs and expression ranges but no type locations and
no name locations for references; both are recovered from the raw token stream.
*/
package clangjson

import (
	"bytes"
	"context"
	"io"
	"os/exec"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/walteh/clang-highlight/pkg/cxxlex"
	"github.com/walteh/clang-highlight/pkg/frontend"
	"github.com/walteh/clang-highlight/pkg/frontend/pprecord"
	"gitlab.com/tozd/go/errors"
)

// Invocation describes how to obtain the front-end output for one file
type Invocation struct {
	// File is the main file
	File string

	// Clang is the compiler binary
	Clang string

	// Args are compiler flags, appended after those of the compilation database
	Args []string

	// Dir is the working directory of the compiler
	Dir string

	// BuildDir holds a compile_commands.json to take flags from
	BuildDir string

	// ASTJSON is a previously dumped AST; the compiler is not run for the AST when set
	ASTJSON string

	// Defines is previously saved `clang -E -dD` output
	Defines string
}

// Load runs or reads the front-end for inv and returns the flattened unit
func Load(ctx context.Context, fs afero.Fs, inv Invocation) (*frontend.RecordedUnit, error) {
	logger := zerolog.Ctx(ctx)

	if inv.BuildDir != "" {
		cc, err := LoadCompileCommand(fs, inv.BuildDir, inv.File)
		if err != nil {
			return nil, err
		}
		flags, err := cc.Flags()
		if err != nil {
			return nil, err
		}
		inv.Args = append(flags, inv.Args...)
		if inv.Dir == "" {
			inv.Dir = cc.Directory
		}
	}

	buf, err := afero.ReadFile(fs, inv.File)
	if err != nil {
		return nil, errors.Errorf("reading main file buffer: %w", err)
	}

	lang := cxxlex.LanguageFor(inv.File, inv.Args)
	keywords := cxxlex.KeywordsFor(lang)
	toks := cxxlex.New(buf, lang).All()

	root, err := inv.ast(ctx, fs)
	if err != nil {
		return nil, err
	}

	macros, err := inv.macros(ctx, fs)
	if err != nil {
		return nil, err
	}

	nodes, err := Convert(ctx, root, Source{File: inv.File, Tokens: toks, Identifiers: keywords})
	if err != nil {
		return nil, errors.Errorf("converting AST of %s: %w", inv.File, err)
	}

	logger.Debug().
		Str("file", inv.File).
		Stringer("language", lang).
		Int("tokens", len(toks)).
		Int("macros", len(macros)).
		Msg("loaded front-end output")

	return &frontend.RecordedUnit{
		File:     inv.File,
		Source:   buf,
		Tokens:   toks,
		Keywords: keywords,
		Entities: pprecord.Build(ctx, inv.File, buf, toks, macros),
		Nodes:    nodes,
	}, nil
}

func (inv Invocation) ast(ctx context.Context, fs afero.Fs) (*Node, error) {
	if inv.ASTJSON != "" {
		f, err := fs.Open(inv.ASTJSON)
		if err != nil {
			return nil, errors.Errorf("opening AST dump: %w", err)
		}
		defer f.Close()
		return Decode(f)
	}

	var root *Node
	err := inv.run(ctx, []string{"-fsyntax-only", "-Xclang", "-ast-dump=json"}, func(r io.Reader) error {
		var err error
		root, err = Decode(r)
		return err
	})
	if err != nil {
		return nil, err
	}
	return root, nil
}

func (inv Invocation) macros(ctx context.Context, fs afero.Fs) (pprecord.Table, error) {
	if inv.Defines != "" {
		f, err := fs.Open(inv.Defines)
		if err != nil {
			return nil, errors.Errorf("opening macro definitions: %w", err)
		}
		defer f.Close()
		return pprecord.ParseDefines(f, inv.File)
	}

	if inv.ASTJSON != "" {
		zerolog.Ctx(ctx).Debug().Msg("AST loaded from file and no definitions given, external macros stay unlinked")
		return nil, nil
	}

	var table pprecord.Table
	err := inv.run(ctx, []string{"-E", "-dD"}, func(r io.Reader) error {
		var err error
		table, err = pprecord.ParseDefines(r, inv.File)
		return err
	})
	if err != nil {
		return nil, err
	}
	return table, nil
}

// run executes the compiler with mode flags and feeds its standard output to consume
func (inv Invocation) run(ctx context.Context, mode []string, consume func(io.Reader) error) error {
	if inv.Clang == "" {
		return errors.New("no clang binary configured")
	}

	args := append(append(append([]string{}, mode...), inv.Args...), inv.File)
	cmd := exec.CommandContext(ctx, inv.Clang, args...)
	cmd.Dir = inv.Dir

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return errors.Errorf("piping %s output: %w", inv.Clang, err)
	}

	zerolog.Ctx(ctx).Debug().Str("clang", inv.Clang).Strs("args", args).Msg("running front-end")

	if err := cmd.Start(); err != nil {
		return errors.Errorf("starting %s: %w", inv.Clang, err)
	}

	consumeErr := consume(stdout)
	if consumeErr != nil {
		_, _ = io.Copy(io.Discard, stdout)
	}

	if err := cmd.Wait(); err != nil {
		return errors.WithDetails(
			errors.Errorf("running %s %s: %w", inv.Clang, strings.Join(mode, " "), err),
			"stderr", strings.TrimSpace(stderr.String()),
		)
	}
	return consumeErr
}
