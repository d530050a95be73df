package highlight

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/walteh/clang-highlight/pkg/annotate"
	"github.com/walteh/clang-highlight/pkg/config"
	"github.com/walteh/clang-highlight/pkg/debug"
	"github.com/walteh/clang-highlight/pkg/frontend/clangjson"
	"github.com/walteh/clang-highlight/pkg/linkmap"
	"github.com/walteh/clang-highlight/pkg/postprocess"
	"github.com/walteh/clang-highlight/pkg/preproc"
	"github.com/walteh/clang-highlight/pkg/render/ansi"
	"github.com/walteh/clang-highlight/pkg/render/html"
	"github.com/walteh/clang-highlight/pkg/render/jsonout"
	"github.com/walteh/clang-highlight/pkg/render/semtok"
	"gitlab.com/tozd/go/errors"
	"go.uber.org/multierr"
)

type Handler struct {
	debug bool

	configPath string
	htmlOut    string
	jsonOut    string
	msgpackOut string
	semtokOut  string
	ansi       bool

	htmlEmbed bool
	htmlTitle string

	punctuation   string
	noPunctuation bool

	clang    string
	astJSON  string
	defines  string
	buildDir string

	cppRefMap          string
	postprocess        []string
	excludeLinks       []string
	externalMacrosOnly bool

	fs     afero.Fs
	stdout io.Writer
	stderr io.Writer
}

func NewHighlightCommand() *cobra.Command {
	return newCommand(&Handler{
		fs:     afero.NewOsFs(),
		stdout: os.Stdout,
		stderr: os.Stderr,
	})
}

func newCommand(me *Handler) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "highlight <file> [-- compiler flags]",
		Short: "annotate a C or C++ file with semantic token kinds and links",
		Args:  cobra.MinimumNArgs(1),
	}

	flags := cmd.Flags()
	flags.BoolVar(&me.debug, "debug", false, "enable debug logging")
	flags.StringVar(&me.configPath, "config", "", "configuration file (default: nearest .clang-highlight.{hcl,yaml})")

	flags.StringVar(&me.htmlOut, "html-out", "", "write HTML to this file (- for stdout)")
	flags.StringVar(&me.jsonOut, "json-out", "", "write the JSON token list to this file (- for stdout)")
	flags.StringVar(&me.msgpackOut, "msgpack-out", "", "write the MessagePack token list to this file (- for stdout)")
	flags.StringVar(&me.semtokOut, "semtok-out", "", "write LSP semantic tokens as JSON to this file (- for stdout)")
	for _, name := range []string{"html-out", "json-out", "msgpack-out", "semtok-out"} {
		flags.Lookup(name).NoOptDefVal = "-"
	}
	flags.BoolVar(&me.ansi, "ansi", false, "write colored output to stdout")

	flags.BoolVar(&me.htmlEmbed, "html-embed", false, "write only the <pre> block")
	flags.StringVar(&me.htmlTitle, "html-title", "", "title of the HTML document")

	flags.StringVar(&me.punctuation, "punctuation", "", "punctuation in structured output: keep, skip or linked-only")
	flags.BoolVar(&me.noPunctuation, "no-punctuation", false, "same as --punctuation=skip")

	flags.StringVar(&me.clang, "clang", "", "clang binary (default clang++)")
	flags.StringVar(&me.astJSON, "ast-json", "", "read a saved -ast-dump=json instead of running clang")
	flags.StringVar(&me.defines, "defines", "", "read saved `clang -E -dD` output instead of running clang")
	flags.StringVarP(&me.buildDir, "build-dir", "p", "", "directory holding compile_commands.json")

	flags.StringVar(&me.cppRefMap, "cppref-map", "", "cppreference symbol cache")
	flags.StringSliceVar(&me.postprocess, "postprocess", nil, "post-processing steps")
	flags.StringSliceVar(&me.excludeLinks, "exclude-links", nil, "globs over link target files whose links are dropped")
	flags.BoolVar(&me.externalMacrosOnly, "external-macros-only", false, "link macros only when defined outside the main file")

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		file := args[0]
		var extra []string
		if at := cmd.ArgsLenAtDash(); at >= 0 {
			if at != 1 {
				return errors.Errorf("expected exactly one file before --, got %d arguments", at)
			}
			extra = args[at:]
		} else if len(args) > 1 {
			return errors.Errorf("unexpected arguments %v (pass compiler flags after --)", args[1:])
		}

		opts, err := me.Options(cmd, file, extra)
		if err != nil {
			return err
		}

		logger := debug.NewLogger(me.stderr, debug.LoggerOptions{Debug: me.debug})
		ctx := logger.WithContext(cmd.Context())

		return me.Run(ctx, file, opts)
	}

	return cmd
}

// Options layers defaults, the configuration file and the flags set on cmd
func (me *Handler) Options(cmd *cobra.Command, file string, extra []string) (config.Options, error) {
	opts := config.Default()

	path := me.configPath
	if path == "" {
		dir, err := filepath.Abs(filepath.Dir(file))
		if err != nil {
			return opts, errors.Errorf("resolving %s: %w", file, err)
		}
		path, _ = config.FindFile(me.fs, dir)
	}
	if path != "" {
		cfg, err := config.LoadFile(me.fs, path)
		if err != nil {
			return opts, err
		}
		if err := opts.ApplyFile(cfg); err != nil {
			return opts, errors.Errorf("applying %s: %w", path, err)
		}
	}

	flags := cmd.Flags()
	if flags.Changed("html-out") {
		opts.HTMLOut = &me.htmlOut
	}
	if flags.Changed("json-out") {
		opts.JSONOut = &me.jsonOut
	}
	if flags.Changed("msgpack-out") {
		opts.MsgpackOut = &me.msgpackOut
	}
	if flags.Changed("semtok-out") {
		opts.SemtokOut = &me.semtokOut
	}
	opts.ANSI = me.ansi

	if flags.Changed("html-embed") {
		opts.HTMLEmbed = me.htmlEmbed
	}
	if flags.Changed("html-title") {
		opts.HTMLTitle = me.htmlTitle
	}

	if flags.Changed("punctuation") {
		p, err := config.ParsePunctuation(me.punctuation)
		if err != nil {
			return opts, err
		}
		opts.Punctuation = p
	}
	if me.noPunctuation {
		opts.Punctuation = config.PunctuationSkip
	}

	if me.clang != "" {
		opts.Clang.Binary = me.clang
	}
	if me.astJSON != "" {
		opts.Clang.ASTJSON = me.astJSON
	}
	if me.defines != "" {
		opts.Clang.Defines = me.defines
	}
	if me.buildDir != "" {
		opts.Clang.BuildDir = me.buildDir
	}
	opts.Clang.Args = append(opts.Clang.Args, extra...)

	if me.cppRefMap != "" {
		opts.CppRefMap = config.ExpandHome(me.cppRefMap)
	}
	if flags.Changed("postprocess") {
		opts.Postprocess = me.postprocess
	}
	if flags.Changed("exclude-links") {
		opts.ExcludeLinks = me.excludeLinks
	}
	if flags.Changed("external-macros-only") {
		opts.ExternalMacrosOnly = me.externalMacrosOnly
	}

	if err := opts.Validate(); err != nil {
		return opts, errors.Errorf("invalid options: %w", err)
	}
	return opts, nil
}

func (me *Handler) Run(ctx context.Context, file string, opts config.Options) error {
	logger := zerolog.Ctx(ctx)

	unit, err := clangjson.Load(ctx, me.fs, clangjson.Invocation{
		File:     file,
		Clang:    opts.Clang.Binary,
		Args:     opts.Clang.Args,
		BuildDir: opts.Clang.BuildDir,
		ASTJSON:  opts.Clang.ASTJSON,
		Defines:  opts.Clang.Defines,
	})
	if err != nil {
		return errors.Errorf("loading %s: %w", file, err)
	}

	annotateOpts := annotate.Options{
		Preproc: preproc.Options{ExternalMacrosOnly: opts.ExternalMacrosOnly},
	}
	if annotateOpts.Postprocess, err = postprocess.ParseSteps(opts.Postprocess); err != nil {
		return err
	}
	if opts.CppRefMap != "" {
		if annotateOpts.LinkMap, err = linkmap.Load(me.fs, opts.CppRefMap); err != nil {
			return err
		}
	}
	if len(opts.ExcludeLinks) > 0 {
		if annotateOpts.Exclude, err = linkmap.NewExcluder(opts.ExcludeLinks); err != nil {
			return err
		}
	}

	doc, err := annotate.Run(ctx, unit, annotateOpts)
	if err != nil {
		return errors.Errorf("annotating %s: %w", file, err)
	}

	if opts.HTMLOut != nil {
		htmlOpts := html.Options{
			Embed:   opts.HTMLEmbed,
			Title:   opts.HTMLTitle,
			TabSize: html.TabSizeFor(me.fs, file),
		}
		if err := me.write(*opts.HTMLOut, func(w io.Writer) error { return html.Render(w, doc, htmlOpts) }); err != nil {
			return errors.Errorf("writing HTML: %w", err)
		}
	}
	if opts.JSONOut != nil {
		if err := me.write(*opts.JSONOut, func(w io.Writer) error { return jsonout.Render(w, doc, opts.Punctuation) }); err != nil {
			return errors.Errorf("writing JSON: %w", err)
		}
	}
	if opts.MsgpackOut != nil {
		if err := me.write(*opts.MsgpackOut, func(w io.Writer) error { return jsonout.RenderMsgpack(w, doc, opts.Punctuation) }); err != nil {
			return errors.Errorf("writing MessagePack: %w", err)
		}
	}
	if opts.SemtokOut != nil {
		if err := me.write(*opts.SemtokOut, func(w io.Writer) error { return semtok.Render(w, doc) }); err != nil {
			return errors.Errorf("writing semantic tokens: %w", err)
		}
	}
	if opts.ANSI {
		if err := ansi.Render(me.stdout, doc, ansi.Options{}); err != nil {
			return errors.Errorf("writing ANSI: %w", err)
		}
	}

	logger.Debug().Str("file", file).Int("tokens", doc.Index.Len()).Msg("highlighted")
	return nil
}

func (me *Handler) write(path string, render func(io.Writer) error) (err error) {
	if config.IsStdout(path) {
		return render(me.stdout)
	}

	f, err := me.fs.Create(path)
	if err != nil {
		return errors.Errorf("creating %s: %w", path, err)
	}
	defer func() {
		err = multierr.Append(err, f.Close())
	}()

	return render(f)
}
