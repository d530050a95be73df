// Package annotate runs the annotation passes over one compilation unit, in order:
//
//	lexical -> preprocessor -> semantic -> post-processing -> link mapping
//
// Each pass mutates the index left by the previous one. Nothing is returned unless every
// pass succeeds.
package annotate

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/walteh/clang-highlight/pkg/frontend"
	"github.com/walteh/clang-highlight/pkg/lexical"
	"github.com/walteh/clang-highlight/pkg/linkmap"
	"github.com/walteh/clang-highlight/pkg/postprocess"
	"github.com/walteh/clang-highlight/pkg/preproc"
	"github.com/walteh/clang-highlight/pkg/semantic"
	"github.com/walteh/clang-highlight/pkg/tokindex"
	"gitlab.com/tozd/go/errors"
)

type Options struct {
	Preproc     preproc.Options
	Postprocess []postprocess.Step

	// LinkMap and Exclude are optional
	LinkMap *linkmap.Map
	Exclude *linkmap.Excluder
}

// Result is a finished, read-only annotation of one file
type Result struct {
	File   string
	Buffer []byte
	Index  *tokindex.Index
}

func Run(ctx context.Context, unit frontend.Unit, opts Options) (*Result, error) {
	logger := zerolog.Ctx(ctx).With().Str("file", unit.MainFile()).Logger()
	ctx = logger.WithContext(ctx)

	buf, err := unit.Buffer()
	if err != nil {
		return nil, errors.Errorf("reading main file buffer: %w", err)
	}

	idx := tokindex.New()

	if err := lexical.ClassifyUnit(ctx, idx, unit); err != nil {
		return nil, errors.Errorf("lexical pass: %w", err)
	}

	if err := preproc.Annotate(ctx, idx, unit.PreprocessingRecord(), opts.Preproc); err != nil {
		return nil, errors.Errorf("preprocessor pass: %w", err)
	}

	if err := semantic.Annotate(ctx, idx, unit); err != nil {
		return nil, errors.Errorf("semantic pass: %w", err)
	}

	if len(opts.Postprocess) > 0 {
		idx, err = postprocess.Apply(ctx, idx, buf, opts.Postprocess)
		if err != nil {
			return nil, err
		}
	}

	if opts.LinkMap != nil || opts.Exclude != nil {
		linkmap.Apply(ctx, idx, opts.LinkMap, opts.Exclude)
	}

	if err := idx.Validate(); err != nil {
		return nil, errors.Errorf("validating token index: %w", err)
	}

	logger.Debug().Int("tokens", idx.Len()).Int("covered", idx.Covered()).Int("size", len(buf)).Msg("annotation complete")

	return &Result{File: unit.MainFile(), Buffer: buf, Index: idx}, nil
}
