package frontend

// EntityKind is the kind of a preprocessing record entry
type EntityKind uint8

const (
	EntityOther EntityKind = iota
	EntityInclusionDirective
	EntityMacroExpansion
	EntityMacroDefinition
)

func (k EntityKind) String() string {
	switch k {
	case EntityInclusionDirective:
		return "inclusion_directive"
	case EntityMacroExpansion:
		return "macro_expansion"
	case EntityMacroDefinition:
		return "macro_definition"
	default:
		return "other"
	}
}

// MacroDefinition is the definition site of a macro
type MacroDefinition struct {
	Name string
	Loc  Location

	// InMainFile reports whether the definition is spelled in the main file
	InMainFile bool
}

// PPEntity is one entry of the preprocessing record. For inclusion directives End is the
// location of the directive's last token.
type PPEntity struct {
	Kind  EntityKind
	Begin SourceLoc
	End   SourceLoc

	// InMainFileID reports whether the record attributes the entity to the main file
	InMainFileID bool

	// Definition is set for macro expansions whose definition could be resolved
	Definition *MacroDefinition
}

// Local reports whether the entity belongs to the main file and may be annotated
func (e *PPEntity) Local() bool {
	return e.Begin.Annotatable() && !e.Begin.InPreamble && e.InMainFileID
}
