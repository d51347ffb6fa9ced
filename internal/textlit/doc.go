// Package textlit converts SSL string literals to their values.
//
// SSL strings are delimited by double or single quotes and support a small,
// fixed escape set: \n, \t, \r, \\, \", \', and \0. There are no unicode or
// hex escapes in the language, so the decoder is a straight byte loop
// rather than a strconv.Unquote wrapper.
//
// # Internal Package
//
// This package is internal to the ssl-lsp module. Its API may change without
// notice between versions. External consumers should not import this package.
//
// # Main Functions
//
//   - ConvertString: Converts an SSL string literal (double or single
//     quoted) to its value, processing escape sequences. Returns the
//     original string alongside an error for unterminated literals or
//     escapes outside SSL's set, so the lexer can emit a diagnostic and
//     fall back to the raw text.
package textlit
