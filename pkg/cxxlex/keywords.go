package cxxlex

import (
	"path/filepath"
	"strings"

	"github.com/walteh/clang-highlight/pkg/frontend"
)

// Language selects the lexical rules and reserved words
type Language uint8

const (
	LangCXX Language = iota
	LangC
)

func (l Language) String() string {
	if l == LangC {
		return "c"
	}
	return "c++"
}

// LanguageFor picks the language the way the compiler driver would: an explicit -x flag
// wins, otherwise the file extension decides.
func LanguageFor(path string, args []string) Language {
	for i, arg := range args {
		var lang string
		switch {
		case arg == "-x" && i+1 < len(args):
			lang = args[i+1]
		case strings.HasPrefix(arg, "-x") && len(arg) > 2:
			lang = arg[2:]
		default:
			continue
		}
		if lang == "c" || lang == "c-header" {
			return LangC
		}
		return LangCXX
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".c", ".h":
		return LangC
	}
	return LangCXX
}

var commonKeywords = []string{
	"auto", "break", "case", "char", "const", "continue", "default", "do", "double",
	"else", "enum", "extern", "float", "for", "goto", "if", "inline", "int", "long",
	"register", "restrict", "return", "short", "signed", "sizeof", "static", "struct",
	"switch", "typedef", "union", "unsigned", "void", "volatile", "while",

	// GNU and clang extensions
	"asm", "__asm", "__asm__", "__attribute", "__attribute__", "__builtin_offsetof",
	"__builtin_va_arg", "__builtin_types_compatible_p", "__const", "__const__",
	"__declspec", "__extension__", "__inline", "__inline__", "__int128", "__label__",
	"__restrict", "__restrict__", "__signed", "__signed__", "__thread", "__typeof",
	"__typeof__", "__volatile", "__volatile__", "__alignof", "__alignof__", "__real",
	"__real__", "__imag", "__imag__", "__func__", "__FUNCTION__", "__PRETTY_FUNCTION__",
	"typeof", "__auto_type", "__builtin_bit_cast", "__cdecl", "__stdcall", "__fastcall",
}

var cKeywords = []string{
	"_Alignas", "_Alignof", "_Atomic", "_Bool", "_Complex", "_Generic", "_Imaginary",
	"_Noreturn", "_Static_assert", "_Thread_local",
}

var cxxKeywords = []string{
	"alignas", "alignof", "bool", "catch", "char8_t", "char16_t", "char32_t", "class",
	"co_await", "co_return", "co_yield", "concept", "consteval", "constexpr", "constinit",
	"const_cast", "decltype", "delete", "dynamic_cast", "explicit", "export", "false",
	"friend", "mutable", "namespace", "new", "noexcept", "nullptr", "operator", "private",
	"protected", "public", "reinterpret_cast", "requires", "static_assert", "static_cast",
	"template", "this", "thread_local", "throw", "true", "try", "typeid", "typename",
	"using", "virtual", "wchar_t",

	// alternative operator spellings
	"and", "and_eq", "bitand", "bitor", "compl", "not", "not_eq", "or", "or_eq", "xor",
	"xor_eq",

	// C keywords clang also accepts in C++ mode
	"_Alignas", "_Alignof", "_Atomic", "_Bool", "_Complex", "_Static_assert",
	"_Thread_local", "_Noreturn",

	// type traits spelled as keywords
	"__is_same", "__is_base_of", "__is_class", "__is_enum", "__is_union", "__is_pod",
	"__is_trivially_copyable", "__underlying_type", "__decltype", "__nullptr",
}

// Keywords is a reserved-word table for one language
type Keywords struct {
	words map[string]struct{}
}

var _ frontend.IdentifierTable = (*Keywords)(nil)

// KeywordsFor builds the reserved-word table of lang
func KeywordsFor(lang Language) *Keywords {
	kw := &Keywords{words: make(map[string]struct{})}
	add := func(words []string) {
		for _, w := range words {
			kw.words[w] = struct{}{}
		}
	}
	add(commonKeywords)
	if lang == LangC {
		add(cKeywords)
	} else {
		add(cxxKeywords)
	}
	return kw
}

// IsKeyword reports whether ident is reserved in the table's language
func (kw *Keywords) IsKeyword(ident string) bool {
	_, ok := kw.words[ident]
	return ok
}
