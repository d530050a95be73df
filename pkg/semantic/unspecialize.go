package semantic

import "github.com/walteh/clang-highlight/pkg/frontend"

// Unspecialize walks a compiler-generated template instantiation back to the declaration
// written in source. Declarations without instantiation metadata are returned unchanged.
//
//	member of a class template specialization -> member of the pattern
//	function template specialization          -> member template origin, else pattern
//	template instantiated from a member       -> that member template
//	template                                  -> its templated declaration
func Unspecialize(d *frontend.Decl) *frontend.Decl {
	if d == nil {
		return nil
	}

	switch d.Kind {
	case frontend.DeclFunction:
		if d.MemberFunctionOrigin != nil {
			return d.MemberFunctionOrigin
		}
		if spec := d.Specialization; spec != nil {
			if spec.MemberTemplateOrigin != nil {
				return spec.MemberTemplateOrigin
			}
			if spec.Pattern != nil {
				return spec.Pattern
			}
		}
	case frontend.DeclTemplate:
		if d.InstantiatedFrom != nil {
			return d.InstantiatedFrom
		}
		if d.TemplatedDecl != nil {
			return d.TemplatedDecl
		}
	}

	return d
}
