// Package preproc folds the preprocessing record into the token index: inclusion
// directives collapse into one opaque token and macro expansion sites are tagged and
// linked to their definitions.
package preproc

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/walteh/clang-highlight/pkg/frontend"
	"github.com/walteh/clang-highlight/pkg/tokindex"
	"github.com/walteh/clang-highlight/pkg/token"
	"gitlab.com/tozd/go/errors"
)

type Options struct {
	// ExternalMacrosOnly links a macro expansion only when its definition lives outside
	// the main file
	ExternalMacrosOnly bool
}

// Annotate applies every local entity of record to idx, in record order
func Annotate(ctx context.Context, idx *tokindex.Index, record []frontend.PPEntity, opts Options) error {
	logger := zerolog.Ctx(ctx)

	for i := range record {
		entity := &record[i]
		if !entity.Local() {
			continue
		}

		pos := idx.LowerBound(entity.Begin.Offset)
		if pos >= idx.Len() || idx.At(pos).Offset != entity.Begin.Offset {
			logger.Warn().
				Str("entity", entity.Kind.String()).
				Int("offset", entity.Begin.Offset).
				Msg("no token at preprocessing entity, skipping")
			continue
		}
		first := idx.At(pos)

		switch entity.Kind {
		case frontend.EntityInclusionDirective:
			if err := collapseInclusion(ctx, idx, entity); err != nil {
				return err
			}
		case frontend.EntityMacroExpansion:
			annotateExpansion(idx, first, entity, opts)
		}
	}

	return nil
}

func collapseInclusion(ctx context.Context, idx *tokindex.Index, entity *frontend.PPEntity) error {
	begin := entity.Begin.Offset
	end, ok := endOfToken(idx, entity.End)
	if !ok || end <= begin {
		zerolog.Ctx(ctx).Warn().
			Int("offset", begin).
			Str("end", entity.End.String()).
			Msg("inclusion directive has no usable end, skipping")
		return nil
	}

	removed := idx.RemoveRange(begin, end)

	if err := idx.Insert(&token.Token{
		Offset: begin,
		Length: end - begin,
		Kind:   token.KindPreprocessor,
	}); err != nil {
		return errors.Errorf("collapsing inclusion directive at %d: %w", begin, err)
	}

	zerolog.Ctx(ctx).Trace().Int("offset", begin).Int("end", end).Int("removed", removed).Msg("collapsed inclusion directive")
	return nil
}

// endOfToken returns the offset one past the token at loc
func endOfToken(idx *tokindex.Index, loc frontend.SourceLoc) (int, bool) {
	if !loc.Annotatable() {
		return 0, false
	}
	if tok, ok := idx.FindExact(loc.Offset); ok {
		return tok.End(), true
	}
	if pos := idx.LowerBound(loc.Offset); pos > 0 && idx.At(pos-1).Contains(loc.Offset) {
		return idx.At(pos - 1).End(), true
	}
	return 0, false
}

func annotateExpansion(idx *tokindex.Index, tok *token.Token, entity *frontend.PPEntity, opts Options) {
	kind := token.KindPreprocessor

	var link *token.Link
	if def := entity.Definition; def != nil && !(opts.ExternalMacrosOnly && def.InMainFile) {
		link = token.NewLink(def.Name, def.Name, def.Loc.File, def.Loc.Line, def.Loc.Column, nil)
	}

	idx.Overwrite(tok, &kind, link)
}
