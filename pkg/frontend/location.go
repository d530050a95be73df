/*
Package frontend describes what the annotator needs from a C/C++ front-end.

	 +-----------------+        raw tokens        +-------------+
	 |                 | -----------------------> |  lexical    |
	 |   front-end     |   preprocessing record   +-------------+
	 |  (clang, ...)   | -----------------------> |  preproc    |
	 |                 |    MatchAST callbacks    +-------------+
	 |                 | -----------------------> |  semantic   |
	 +-----------------+                          +-------------+

Nothing in here parses C/C++. An adapter (see clangjson) converts a real front-end's
output into these types; the annotation passes only ever see this package.
*/
package frontend

import "fmt"

// SourceLoc is a spelling location already resolved against the main file
type SourceLoc struct {
	// Offset is the byte offset in the main file buffer; meaningful only when InMainFile
	Offset int

	// Valid is false for implicit or unknown locations
	Valid bool

	// InMainFile reports whether the spelling location lies in the main file
	InMainFile bool

	// InPreamble reports whether the location belongs to a precompiled preamble
	InPreamble bool
}

// MainFileLoc returns a valid main file location at offset
func MainFileLoc(offset int) SourceLoc {
	return SourceLoc{Offset: offset, Valid: true, InMainFile: true}
}

// Annotatable reports whether a pass may map the location onto the token index
func (l SourceLoc) Annotatable() bool {
	return l.Valid && l.InMainFile
}

func (l SourceLoc) String() string {
	switch {
	case !l.Valid:
		return "<invalid>"
	case !l.InMainFile:
		return "<external>"
	default:
		return fmt.Sprintf("@%d", l.Offset)
	}
}

// Location is where a declaring entity is spelled, as a file plus 1-based line/column
type Location struct {
	File   string
	Line   int
	Column int
}

func (l Location) String() string {
	return fmt.Sprintf("%s:%d:%d", l.File, l.Line, l.Column)
}
