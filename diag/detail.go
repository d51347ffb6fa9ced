package diag

import "strconv"

// Detail provides key-value context for diagnostic issues.
//
// Details are used to add structured information to issues that can be
// programmatically inspected by tools. Use the standard detail key constants
// to ensure consistent key naming across the codebase.
type Detail struct {
	Key   string
	Value string
}

// Standard detail keys for consistent diagnostic metadata.
//
// Use these constants to avoid stringly-typed drift and enable programmatic
// inspection of diagnostic details. Custom detail keys are permitted for
// domain-specific diagnostics; use lower_snake_case for custom keys.
const (
	// DetailKeyExpected is the expected token or construct.
	DetailKeyExpected = "expected"

	// DetailKeyGot is the actual token or construct encountered.
	DetailKeyGot = "got"

	// DetailKeyName is the identifier name involved (procedure, variable,
	// parameter, macro, or builtin).
	DetailKeyName = "name"

	// DetailKeyReason is the failure reason discriminant.
	DetailKeyReason = "reason"

	// DetailKeyPath is the #include path as written in the directive.
	DetailKeyPath = "path"

	// DetailKeyResolvedPath is the canonicalized path an #include resolved
	// to, once resolution succeeds.
	DetailKeyResolvedPath = "resolved_path"

	// DetailKeyCycle is the include cycle participants as a JSON array of
	// paths, in inclusion order.
	DetailKeyCycle = "cycle"

	// DetailKeyExpectedArity is the expected argument count for a builtin
	// or macro call.
	DetailKeyExpectedArity = "expected_arity"

	// DetailKeyGotArity is the actual argument count supplied.
	DetailKeyGotArity = "got_arity"

	// DetailKeyFirstLine is the line number of the first (shadowed or
	// conflicting) declaration.
	DetailKeyFirstLine = "first_line"

	// DetailKeyContext is contextual information (e.g. the enclosing
	// procedure name) for a diagnostic.
	DetailKeyContext = "context"
)

// ExpectedGot creates a pair of details for "expected X, got Y" diagnostics,
// the standard shape for syntax errors.
func ExpectedGot(expected, got string) []Detail {
	return []Detail{
		{Key: DetailKeyExpected, Value: expected},
		{Key: DetailKeyGot, Value: got},
	}
}

// Arity creates a pair of details for wrong-argument-count diagnostics on
// builtin or macro calls.
func Arity(expected, got int) []Detail {
	return []Detail{
		{Key: DetailKeyExpectedArity, Value: strconv.Itoa(expected)},
		{Key: DetailKeyGotArity, Value: strconv.Itoa(got)},
	}
}
