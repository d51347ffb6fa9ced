// Package diag provides structured diagnostics for the SSL language server
// pipeline.
//
// This package sits at the foundation tier alongside [location], providing the
// single diagnostic infrastructure used across preprocessing, lexing, parsing,
// and binding.
//
// # Design Principles
//
// The diag package follows several key design principles:
//
//   - Structured data, string-last presentation: Location is stored as data
//     ([location.Span]), never embedded in message strings.
//   - Immutable results: [Result] stores issues in unexported fields and exposes
//     accessor methods that return defensive copies.
//   - Stable error codes: [Code] values are stable identifiers that tools can
//     match on, even when message text changes. The Code type uses an unexported
//     struct to enforce a closed set of valid codes.
//   - Deterministic ordering: [Collector.Result] sorts issues by source, position,
//     and code to ensure stable output across runs.
//   - Builder pattern: [IssueBuilder] is the only valid construction path for
//     [Issue] values, eliminating common construction mistakes.
//   - Precomputed counts: [Collector] maintains O(1) severity queries via
//     precomputed counts updated during collection.
//
// # Entry Point Pattern
//
// Pipeline stages follow a consistent pattern:
//
//   - err != nil: catastrophic failure (I/O, internal corruption, runtime failures)
//   - err == nil and !result.OK(): semantic failure represented as structured issues
//   - err == nil and result.OK(): success (may still include warnings/info/hints)
//
// # Severity Semantics
//
// [Severity] is an ordered enumeration where lower values are more severe.
// SSL analysis never aborts, so Error is the top of the scale:
//
//   - [Error]: A parse failure — the construct is not valid SSL
//   - [Warning]: A condition the scripter should fix but that leaves the
//     file analyzable (missing include, unterminated string, unresolved
//     name, duplicate declaration)
//   - [Info], [Hint]: Non-blocking diagnostics
//
// The [Severity.IsFailure] method returns true only for Error, matching the
// !result.OK() check.
//
// # Issue Construction
//
// Issues must be constructed using [NewIssue] and [IssueBuilder]:
//
//	issue := diag.NewIssue(diag.Warning, diag.E_UNDECLARED_PROCEDURE, `procedure "foo" is not declared`).
//	    WithSpan(span).
//	    WithHint("check for a missing #include").
//	    Build()
//
// Direct struct literal construction bypasses validity checks and will cause
// panics when the issue is collected.
//
// # Collection and Results
//
// Use [Collector] to aggregate issues during a pipeline run:
//
//	collector := diag.NewCollector(100) // limit of 100 issues
//	collector.Collect(issue)
//	result := collector.Result()
//
//	if !result.OK() {
//	    // publish as LSP diagnostics
//	}
//
// [Collector] is thread-safe and provides O(1) severity queries via
// [Collector.OK] and [Collector.HasErrors].
//
// # Rendering
//
// The [Renderer] provides formatting for multiple output formats:
//
//   - Text output with optional source excerpts and ANSI colors
//   - JSON output with stable wire format
//   - LSP-compatible diagnostics with UTF-16 character offsets
//
// Example:
//
//	renderer := diag.NewRenderer(
//	    diag.WithSourceProvider(registry),
//	    diag.WithExcerpts(true),
//	)
//	output := renderer.FormatResult(result)
//
// # Package Dependencies
//
// Per the foundation rule, diag imports only stdlib and [location]. It must
// not import higher-level packages such as the lexer, parser, or lsp.
package diag
