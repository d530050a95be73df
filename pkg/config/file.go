package config

import (
	"bytes"
	"path/filepath"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/spf13/afero"
	"github.com/zclconf/go-cty/cty"
	"gitlab.com/tozd/go/errors"
	"gopkg.in/yaml.v3"
)

// FileNames are the configuration file names looked up next to the source file and in
// its parent directories, in order of preference
var FileNames = []string{".clang-highlight.hcl", ".clang-highlight.yaml", ".clang-highlight.yml"}

// 📝 Configuration file structure
type File struct {
	// 🎨 Punctuation mode: keep, skip or linked-only
	Punctuation *string `json:"punctuation,omitempty" hcl:"punctuation,optional" yaml:"punctuation,omitempty"`

	// 🔧 Post-processing steps run after annotation
	Postprocess []string `json:"postprocess,omitempty" hcl:"postprocess,optional" yaml:"postprocess,omitempty"`

	// 🚫 Globs over link target files whose links are dropped
	ExcludeLinks []string `json:"exclude_links,omitempty" hcl:"exclude_links,optional" yaml:"exclude_links,omitempty"`

	// 🔗 Link macros only when defined outside the main file
	ExternalMacrosOnly *bool `json:"external_macros_only,omitempty" hcl:"external_macros_only,optional" yaml:"external_macros_only,omitempty"`

	// 📚 cppreference symbol cache
	CppRefMap *string `json:"cppref_map,omitempty" hcl:"cppref_map,optional" yaml:"cppref_map,omitempty"`

	// ⚙️ Compiler invocation
	Clang *ClangBlock `json:"clang,omitempty" hcl:"clang,block" yaml:"clang,omitempty"`

	// 🖼 HTML output settings
	HTML *HTMLBlock `json:"html,omitempty" hcl:"html,block" yaml:"html,omitempty"`
}

type ClangBlock struct {
	Binary string   `json:"binary,omitempty" hcl:"binary,optional" yaml:"binary,omitempty"`
	Args   []string `json:"args,omitempty" hcl:"args,optional" yaml:"args,omitempty"`

	// BuildDir holds compile_commands.json
	BuildDir string `json:"build_dir,omitempty" hcl:"build_dir,optional" yaml:"build_dir,omitempty"`
}

type HTMLBlock struct {
	Embed *bool `json:"embed,omitempty" hcl:"embed,optional" yaml:"embed,omitempty"`
	Title string `json:"title,omitempty" hcl:"title,optional" yaml:"title,omitempty"`
}

// LoadFile reads a configuration file. Files ending in .yaml or .yml are YAML, anything
// else is HCL.
func LoadFile(fs afero.Fs, path string) (*File, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, errors.Errorf("reading config file: %w", err)
	}

	if strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml") {
		var cfg File
		decoder := yaml.NewDecoder(bytes.NewReader(data))
		decoder.KnownFields(true)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, errors.Errorf("parsing YAML %s: %w", path, err)
		}
		return &cfg, nil
	}

	parser := hclparse.NewParser()
	hclFile, diags := parser.ParseHCL(data, path)
	if diags.HasErrors() {
		return nil, errors.Errorf("parsing HCL: %s", diags.Error())
	}

	evalCtx := &hcl.EvalContext{
		Variables: map[string]cty.Value{
			"home": cty.StringVal(homeDir()),
		},
	}

	var cfg File
	diags = gohcl.DecodeBody(hclFile.Body, evalCtx, &cfg)
	if diags.HasErrors() {
		return nil, errors.Errorf("decoding HCL: %s", diags.Error())
	}

	return &cfg, nil
}

// FindFile looks for a configuration file in dir and its parents
func FindFile(fs afero.Fs, dir string) (string, bool) {
	dir = filepath.Clean(dir)
	for {
		for _, name := range FileNames {
			candidate := filepath.Join(dir, name)
			if ok, _ := afero.Exists(fs, candidate); ok {
				return candidate, true
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false
		}
		dir = parent
	}
}
