package html

import (
	"strconv"

	"github.com/editorconfig/editorconfig-core-go/v2"
	"github.com/spf13/afero"
)

// TabSizeFor returns the tab width the .editorconfig files above path assign to it, or 0
// when none is configured. The files are read from fs; a file with root = true ends the
// search.
func TabSizeFor(fs afero.Fs, path string) int {
	cfg := &editorconfig.Config{Parser: &fsParser{fs: fs}}
	def, _, err := cfg.LoadGraceful(path)
	if err != nil || def == nil {
		return 0
	}
	if def.TabWidth > 0 {
		return def.TabWidth
	}
	if n, err := strconv.Atoi(def.IndentSize); err == nil && n > 0 {
		return n
	}
	return 0
}

type fsParser struct {
	fs afero.Fs
}

var _ editorconfig.Parser = (*fsParser)(nil)

func (me *fsParser) ParseIni(filename string) (*editorconfig.Editorconfig, error) {
	ec, warning, err := me.ParseIniGraceful(filename)
	if err != nil {
		return nil, err
	}
	return ec, warning
}

func (me *fsParser) ParseIniGraceful(filename string) (*editorconfig.Editorconfig, error, error) {
	f, err := me.fs.Open(filename)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	return editorconfig.ParseGraceful(f)
}

func (me *fsParser) FnmatchCase(pattern, name string) (bool, error) {
	return editorconfig.FnmatchCase(pattern, name)
}
