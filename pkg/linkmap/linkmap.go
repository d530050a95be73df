// Package linkmap post-processes links on a finished token index: links into standard
// library headers are mapped to cppreference.com pages and links into excluded files are
// dropped.
package linkmap

import (
	"context"
	"encoding/json"
	"path/filepath"
	"slices"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/walteh/clang-highlight/pkg/tokindex"
	"github.com/walteh/clang-highlight/pkg/token"
	"gitlab.com/tozd/go/errors"
)

// HeaderLinkName is the link name used for links that point at a whole file
const HeaderLinkName = "<file>"

// Map is the cppreference cache: symbol pages keyed by qualified name, overloaded
// function pages keyed by qualified name and parameter types, and header pages keyed by
// the resolved header path.
type Map struct {
	Symbols   map[string]string     `json:"symbols"`
	Overloads map[string][]Overload `json:"overloads"`
	Headers   map[string]string     `json:"headers"`
}

type Overload struct {
	Page     string      `json:"page"`
	Overload OverloadKey `json:"overload"`
}

type OverloadKey struct {
	QualifiedName  string   `json:"qualified_name"`
	ParameterTypes []string `json:"parameter_types"`
}

// Load reads a cache file
func Load(fs afero.Fs, path string) (*Map, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, errors.Errorf("reading cppreference map: %w", err)
	}

	var m Map
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, errors.Errorf("decoding cppreference map %s: %w", path, err)
	}
	return &m, nil
}

// Resolve returns the cppreference page of link. Plain symbols win over overloads; links
// to whole files resolve through the header table.
func (me *Map) Resolve(link *token.Link) (string, bool) {
	if me == nil || link == nil {
		return "", false
	}

	if link.Name == HeaderLinkName {
		page, ok := me.Headers[link.File]
		return page, ok
	}

	if page, ok := me.Symbols[link.QualifiedName]; ok {
		return page, true
	}

	if link.ParameterTypes == nil {
		return "", false
	}
	for _, o := range me.Overloads[link.QualifiedName] {
		if o.Overload.QualifiedName == link.QualifiedName && slices.Equal(o.Overload.ParameterTypes, link.ParameterTypes) {
			return o.Page, true
		}
	}
	return "", false
}

// Excluder drops links whose target file matches one of a set of globs
type Excluder struct {
	patterns []string
}

func NewExcluder(patterns []string) (*Excluder, error) {
	for _, p := range patterns {
		if !doublestar.ValidatePattern(filepath.ToSlash(p)) {
			return nil, errors.Errorf("invalid link exclusion pattern %q", p)
		}
	}
	return &Excluder{patterns: slices.Clone(patterns)}, nil
}

// Excluded reports whether file matches any pattern
func (me *Excluder) Excluded(file string) bool {
	if me == nil {
		return false
	}
	file = filepath.ToSlash(file)
	for _, p := range me.patterns {
		if ok, _ := doublestar.Match(filepath.ToSlash(p), file); ok {
			return true
		}
	}
	return false
}

// Apply resolves and filters every link in idx in place
func Apply(ctx context.Context, idx *tokindex.Index, m *Map, ex *Excluder) {
	mapped, dropped := 0, 0
	for tok := range idx.All() {
		if tok.Link == nil {
			continue
		}
		if ex.Excluded(tok.Link.File) {
			tok.Link = nil
			dropped++
			continue
		}
		if page, ok := m.Resolve(tok.Link); ok {
			tok.Link.CppRef = page
			mapped++
		}
	}

	zerolog.Ctx(ctx).Debug().Int("mapped", mapped).Int("dropped", dropped).Msg("link mapping done")
}
