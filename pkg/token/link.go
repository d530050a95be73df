package token

import (
	"fmt"
	"slices"
)

// Link is a cross reference from a token to the entity that declares it
type Link struct {
	Name           string
	QualifiedName  string
	File           string
	Line           int
	Column         int
	ParameterTypes []string

	// CppRef is a cppreference.com page path, filled in by link mapping
	CppRef string
}

// NewLink builds a complete link in one step. It returns nil if the target location is
// unknown, so a partially filled link can never be attached.
func NewLink(name, qualifiedName, file string, line, column int, parameterTypes []string) *Link {
	if file == "" || line <= 0 || column <= 0 {
		return nil
	}
	return &Link{
		Name:           name,
		QualifiedName:  qualifiedName,
		File:           file,
		Line:           line,
		Column:         column,
		ParameterTypes: slices.Clone(parameterTypes),
	}
}

// Clone returns a deep copy
func (l *Link) Clone() *Link {
	if l == nil {
		return nil
	}
	c := *l
	c.ParameterTypes = slices.Clone(l.ParameterTypes)
	return &c
}

func (l *Link) String() string {
	return fmt.Sprintf("%s@%s:%d:%d", l.QualifiedName, l.File, l.Line, l.Column)
}
