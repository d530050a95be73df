package frontend

// DeclKind is the closed set of declaration categories the annotator distinguishes
type DeclKind uint8

const (
	DeclOther DeclKind = iota
	DeclFunction
	DeclVariable
	DeclTemplate
	DeclRecord
	DeclTypedef
)

func (k DeclKind) String() string {
	switch k {
	case DeclFunction:
		return "function"
	case DeclVariable:
		return "variable"
	case DeclTemplate:
		return "template"
	case DeclRecord:
		return "record"
	case DeclTypedef:
		return "typedef"
	default:
		return "other"
	}
}

// Decl is a declaring entity handle. Only the fields needed for linking and for walking
// template instantiations back to the code that was written are carried.
type Decl struct {
	Kind          DeclKind
	Name          string
	QualifiedName string
	Loc           Location

	// ParamTypes holds the spelled type of each parameter of a function
	ParamTypes []string

	// MemberFunctionOrigin is the member function a function was instantiated from
	MemberFunctionOrigin *Decl

	// Specialization is set for functions carrying template specialization info
	Specialization *Specialization

	// InstantiatedFrom is the member template a template declaration was instantiated from
	InstantiatedFrom *Decl

	// TemplatedDecl is the declaration a template declaration parameterizes
	TemplatedDecl *Decl
}

// Specialization links a function template specialization to its pattern
type Specialization struct {
	// Pattern is the declaration the specialization was instantiated from
	Pattern *Decl

	// MemberTemplateOrigin is the member template the pattern itself came from, if any
	MemberTemplateOrigin *Decl
}

func (d *Decl) String() string {
	if d == nil {
		return "<nil>"
	}
	return d.Kind.String() + " " + d.QualifiedName
}
