package diag

// CodeCategory represents the semantic domain of an error code.
//
// Categories represent the semantic domain of an error, not necessarily the
// pipeline stage that emits it. Most codes are emitted exclusively by their
// category's stage, but some codes represent cross-cutting concerns.
type CodeCategory uint8

const (
	// CategoryPreprocessor is for #define/#include handling issues.
	CategoryPreprocessor CodeCategory = iota

	// CategorySyntax is for lexer/parser errors.
	CategorySyntax

	// CategoryBinding is for name-resolution issues (undeclared or
	// redeclared procedures, variables, and parameters).
	CategoryBinding

	// CategoryBuiltin is for built-in opcode usage issues.
	CategoryBuiltin
)

// String returns a human-readable label for the category.
func (c CodeCategory) String() string {
	switch c {
	case CategoryPreprocessor:
		return "preprocessor"
	case CategorySyntax:
		return "syntax"
	case CategoryBinding:
		return "binding"
	case CategoryBuiltin:
		return "builtin"
	default:
		return "unknown"
	}
}

// Code is a stable programmatic identifier for an Issue.
//
// Error codes are stable identifiers that tools can match on, even when
// message text changes. The Code type uses unexported fields to enforce
// a closed set of valid codes—only codes defined in this package are valid.
//
// Code.String() values are globally unique across all categories. The
// CodeCategory is informational metadata for filtering and grouping.
type Code struct {
	value string
	cat   CodeCategory
}

// String returns the code's string representation (e.g., "E_SYNTAX").
func (c Code) String() string {
	return c.value
}

// Category returns the programmatic category for this code.
func (c Code) Category() CodeCategory {
	return c.cat
}

// IsZero reports whether the code is unset.
func (c Code) IsZero() bool {
	return c.value == ""
}

// code is the unexported constructor—callers cannot create arbitrary codes.
func code(value string, cat CodeCategory) Code {
	return Code{value: value, cat: cat}
}

// Preprocessor codes. Preprocessor issues other than a malformed directive
// are warnings: the file remains
// analyzable, and a cursory #include cycle or a header edited mid-session
// must not take diagnostics hostage.
var (
	// E_INCLUDE_NOT_FOUND indicates an #include target could not be read,
	// resolved relative to the directory of the including file. Emitted by
	// the include-closure loader as a warning on the directive's path span.
	E_INCLUDE_NOT_FOUND = code("E_INCLUDE_NOT_FOUND", CategoryPreprocessor)

	// E_MACRO_REDEFINED indicates a #define reuses a name already defined
	// earlier in the same file. Emitted by the binding check as a warning
	// on the later directive, with related info pointing at the original.
	// Redefinition across #include boundaries carries no diagnostic: the
	// ordering of cyclically-related headers is unspecified.
	E_MACRO_REDEFINED = code("E_MACRO_REDEFINED", CategoryPreprocessor)

	// E_MACRO_ARITY indicates a function-like #define was invoked with a
	// different number of arguments than its parameter list declares.
	// Emitted by the binding check as a warning on the call site.
	E_MACRO_ARITY = code("E_MACRO_ARITY", CategoryPreprocessor)

	// E_MALFORMED_DIRECTIVE indicates a preprocessor directive could not be
	// parsed (e.g. #include with no path, #define with no name). Emitted by
	// the parser as an Error, like any other parse failure.
	E_MALFORMED_DIRECTIVE = code("E_MALFORMED_DIRECTIVE", CategoryPreprocessor)
)

// Syntax codes. Parse failures are the only Error-severity diagnostics the
// pipeline produces; everything downstream of the parser warns.
var (
	// E_SYNTAX indicates a character the lexer could not classify as the
	// start of any token.
	E_SYNTAX = code("E_SYNTAX", CategorySyntax)

	// E_UNTERMINATED_STRING indicates a string literal with no closing quote
	// before end of line. A warning: the literal is closed at end-of-line
	// and scanning continues.
	E_UNTERMINATED_STRING = code("E_UNTERMINATED_STRING", CategorySyntax)

	// E_UNEXPECTED_TOKEN indicates a token appeared where the grammar did
	// not permit it.
	E_UNEXPECTED_TOKEN = code("E_UNEXPECTED_TOKEN", CategorySyntax)

	// E_UNEXPECTED_EOF indicates the source ended mid-construct (an
	// unclosed procedure body, a call missing its terminator).
	E_UNEXPECTED_EOF = code("E_UNEXPECTED_EOF", CategorySyntax)
)

// Binding codes. The binding check runs after symbol indexing, resolves
// every recorded identifier use through the same scope rule the navigation
// queries use, and emits warnings only — SSL performs no type checking, so
// an unresolved name never blocks analysis.
var (
	// E_UNDECLARED_PROCEDURE indicates a `call NAME` statement whose target
	// resolves to no declaration anywhere in the include closure.
	E_UNDECLARED_PROCEDURE = code("E_UNDECLARED_PROCEDURE", CategoryBinding)

	// E_UNDECLARED_VARIABLE indicates an identifier use that resolves to no
	// declaration in scope and names no built-in opcode.
	E_UNDECLARED_VARIABLE = code("E_UNDECLARED_VARIABLE", CategoryBinding)

	// E_DUPLICATE_PROCEDURE indicates a procedure name declared more than
	// once in the same file. The warning lands on the later declaration,
	// with related info pointing at the first.
	E_DUPLICATE_PROCEDURE = code("E_DUPLICATE_PROCEDURE", CategoryBinding)

	// E_DUPLICATE_VARIABLE indicates a variable name declared more than
	// once in the same scope: two globals in one file, or two locals (or a
	// local colliding with a parameter) in one procedure.
	E_DUPLICATE_VARIABLE = code("E_DUPLICATE_VARIABLE", CategoryBinding)

	// E_DUPLICATE_PARAMETER indicates a procedure declares the same
	// parameter name twice.
	E_DUPLICATE_PARAMETER = code("E_DUPLICATE_PARAMETER", CategoryBinding)
)

// Builtin codes.
var (
	// E_UNKNOWN_BUILTIN indicates a call expression `f(...)` whose callee
	// matches no user declaration and no catalogue opcode.
	E_UNKNOWN_BUILTIN = code("E_UNKNOWN_BUILTIN", CategoryBuiltin)

	// E_BUILTIN_ARITY indicates a built-in opcode called with a different
	// number of arguments than its catalogue signature declares.
	E_BUILTIN_ARITY = code("E_BUILTIN_ARITY", CategoryBuiltin)
)

// allCodes contains all defined codes for AllCodes() and uniqueness verification.
var allCodes = []Code{
	// Preprocessor
	E_INCLUDE_NOT_FOUND,
	E_MACRO_REDEFINED,
	E_MACRO_ARITY,
	E_MALFORMED_DIRECTIVE,
	// Syntax
	E_SYNTAX,
	E_UNTERMINATED_STRING,
	E_UNEXPECTED_TOKEN,
	E_UNEXPECTED_EOF,
	// Binding
	E_UNDECLARED_PROCEDURE,
	E_UNDECLARED_VARIABLE,
	E_DUPLICATE_PROCEDURE,
	E_DUPLICATE_VARIABLE,
	E_DUPLICATE_PARAMETER,
	// Builtin
	E_UNKNOWN_BUILTIN,
	E_BUILTIN_ARITY,
}

// AllCodes returns all defined codes.
//
// This function is useful for tooling and testing. The returned slice is a
// copy; modifications do not affect the original.
func AllCodes() []Code {
	result := make([]Code, len(allCodes))
	copy(result, allCodes)
	return result
}

// CodesByCategory returns codes in the given category.
//
// The returned slice is a new allocation; modifications do not affect
// internal state.
func CodesByCategory(cat CodeCategory) []Code {
	var result []Code
	for _, c := range allCodes {
		if c.cat == cat {
			result = append(result, c)
		}
	}
	return result
}
