package diag

import (
	"fmt"
	"iter"
	"strings"
)

// SeverityCounts provides counts by severity level without map allocation.
type SeverityCounts struct {
	Errors   int
	Warnings int
	Info     int
	Hints    int
}

// Result is an immutable snapshot of diagnostic issues with precomputed counts.
//
// Every stage of the analysis pipeline produces one Result per source file:
// the lexer and parser contribute syntax issues, the include loader
// contributes missing-include warnings, and the binding check contributes
// unresolved-name and duplicate-declaration warnings. The language server
// flattens the per-source Results of a document's include closure into the
// diagnostics it publishes.
//
// Result provides O(1) severity queries and iterator-based access to issues.
// Results are obtained via [Collector.Result] or the [OK] function for empty
// success results.
//
// There is no public constructor accepting arbitrary issues; this ensures
// all issues in a Result are valid.
type Result struct {
	issues       []Issue
	limit        int
	limitReached bool
	droppedCount int

	// Precomputed counts (set at construction time)
	errorCount   int
	warningCount int
	infoCount    int
	hintCount    int
}

// newResult creates a Result with precomputed counts.
//
// The issues slice is owned by the Result and must not be modified after
// this call. Callers must pass a fresh slice (not shared with other code).
func newResult(issues []Issue, limit int, limitReached bool, droppedCount int) Result {
	var errorCount, warningCount, infoCount, hintCount int

	for _, issue := range issues {
		switch issue.Severity() {
		case Error:
			errorCount++
		case Warning:
			warningCount++
		case Info:
			infoCount++
		case Hint:
			hintCount++
		}
	}

	return Result{
		issues:       issues,
		limit:        limit,
		limitReached: limitReached,
		droppedCount: droppedCount,
		errorCount:   errorCount,
		warningCount: warningCount,
		infoCount:    infoCount,
		hintCount:    hintCount,
	}
}

// OK returns a Result representing success (no issues).
//
// This is the canonical way to construct a success Result in return statements.
// The returned Result has:
//   - OK() == true
//   - HasErrors() == false
//   - Len() == 0
//   - LimitReached() == false
func OK() Result {
	return newResult(nil, 0, false, 0)
}

// OK reports whether no Error issues are present.
//
// A file whose Result is OK parsed as valid SSL; it may still carry
// warnings (a missing include, an unterminated string).
func (r Result) OK() bool {
	return r.errorCount == 0
}

// HasErrors reports whether any Error issue is present.
func (r Result) HasErrors() bool {
	return r.errorCount > 0
}

// HasWarnings reports whether any Warning issue is present.
func (r Result) HasWarnings() bool {
	return r.warningCount > 0
}

// Len returns the number of issues.
func (r Result) Len() int {
	return len(r.issues)
}

// LimitReached reports whether the collection limit was reached.
func (r Result) LimitReached() bool {
	return r.limitReached
}

// DroppedCount returns how many issues were dropped after hitting the limit.
func (r Result) DroppedCount() int {
	return r.droppedCount
}

// Limit returns the configured issue limit (0 means unlimited).
// Use [LimitReached] to check if the limit was actually reached.
func (r Result) Limit() int {
	return r.limit
}

// SeverityCounts returns counts by severity level.
func (r Result) SeverityCounts() SeverityCounts {
	return SeverityCounts{
		Errors:   r.errorCount,
		Warnings: r.warningCount,
		Info:     r.infoCount,
		Hints:    r.hintCount,
	}
}

// Issues returns an iterator over all issues without copying.
//
// This is what diagnostic publication iterates: every issue, regardless of
// severity, becomes an LSP diagnostic. The yielded issues must not be
// mutated. Use [IssuesSlice] if you need a mutable slice.
func (r Result) Issues() iter.Seq[Issue] {
	return func(yield func(Issue) bool) {
		for _, issue := range r.issues {
			if !yield(issue) {
				return
			}
		}
	}
}

// IssuesSlice returns a deep copy of all issues.
//
// Prefer [Issues] for read-only iteration to avoid allocation.
func (r Result) IssuesSlice() []Issue {
	if len(r.issues) == 0 {
		return nil
	}
	result := make([]Issue, len(r.issues))
	for i, issue := range r.issues {
		result[i] = issue.Clone()
	}
	return result
}

// Errors returns an iterator over Error issues.
func (r Result) Errors() iter.Seq[Issue] {
	return func(yield func(Issue) bool) {
		for _, issue := range r.issues {
			if issue.Severity().IsFailure() {
				if !yield(issue) {
					return
				}
			}
		}
	}
}

// Warnings returns an iterator over Warning issues.
func (r Result) Warnings() iter.Seq[Issue] {
	return func(yield func(Issue) bool) {
		for _, issue := range r.issues {
			if issue.Severity() == Warning {
				if !yield(issue) {
					return
				}
			}
		}
	}
}

// Messages returns message strings from Error issues.
//
// This is a convenience helper, not a collection accessor; no iterator variant.
func (r Result) Messages() []string {
	if r.errorCount == 0 {
		return nil
	}
	result := make([]string, 0, r.errorCount)
	for _, issue := range r.issues {
		if issue.Severity().IsFailure() {
			result = append(result, issue.Message())
		}
	}
	return result
}

// String returns a minimal multi-line representation suitable for quick debugging.
//
// String returns "OK" when OK() is true (no Error issues), regardless of
// warnings or hints. Each error issue is printed on its own line (message
// only, no excerpts). Use [SeverityCounts] for full severity breakdown.
// For formatted output with excerpts, use [Renderer.FormatResult].
func (r Result) String() string {
	if r.OK() {
		return "OK"
	}

	var sb strings.Builder
	counts := r.SeverityCounts()

	// Summary line
	fmt.Fprintf(&sb, "%d error(s)", counts.Errors)
	if counts.Warnings > 0 {
		fmt.Fprintf(&sb, ", %d warning(s)", counts.Warnings)
	}
	if r.limitReached {
		fmt.Fprintf(&sb, " [limit reached, %d dropped]", r.droppedCount)
	}
	sb.WriteString("\n")

	// Error messages
	for _, issue := range r.issues {
		if issue.Severity().IsFailure() {
			fmt.Fprintf(&sb, "  %s: %s\n", issue.Code(), issue.Message())
		}
	}

	return sb.String()
}
