package lsp

import (
	"fmt"
	"strings"

	"github.com/ssl-lang/ssl-lsp/builtin"
	"github.com/ssl-lang/ssl-lsp/diag"
	"github.com/ssl-lang/ssl-lsp/location"
	"github.com/ssl-lang/ssl-lsp/ssl"
)

// checkBindings is the post-index name-resolution pass. For every source in
// the snapshot's closure it flags duplicate declarations within the file
// and resolves every recorded identifier use through the same scope rule
// the navigation queries use, warning on names that bind to nothing.
//
// Everything this pass emits is a Warning: SSL performs no type checking,
// so an unresolved or redeclared name never invalidates the analysis — the
// scripter may simply not have written the #include yet.
//
// Returned issues are keyed by source; the analyzer merges them with each
// source's parse diagnostics before LSP conversion.
func checkBindings(snapshot *Snapshot) map[location.SourceID][]diag.Issue {
	issues := make(map[location.SourceID][]diag.Issue)
	if snapshot == nil || snapshot.Closure == nil {
		return issues
	}

	for _, id := range snapshot.Closure.Order {
		idx := snapshot.SymbolIndexAt(id)
		if idx == nil {
			continue
		}
		var out []diag.Issue
		out = append(out, duplicateDeclarations(idx)...)
		out = append(out, unresolvedReferences(snapshot, id, idx)...)
		if len(out) > 0 {
			issues[id] = out
		}
	}
	return issues
}

// duplicateDeclarations flags names declared twice in the same namespace
// of one file: two procedures, two top-level variables, a repeated
// parameter, a local colliding with another local or a parameter of its
// procedure, or a repeated #define. Each warning lands on the later
// declaration and points back at the first.
//
// Cross-namespace reuse (a variable named after a procedure, a #define
// shadowing a variable) is not flagged: later-declaration-wins shadowing
// within a file is the documented resolution rule, not an error. Nor is
// redeclaration across files — the ordering of headers in a closure is
// unspecified.
func duplicateDeclarations(idx *SymbolIndex) []diag.Issue {
	var out []diag.Issue

	// Namespaces: file-level procedures, file-level variables, file-level
	// defines, and one per procedure for its parameters and locals.
	const (
		nsProcedures = "procedures"
		nsGlobals    = "globals"
		nsDefines    = "defines"
	)
	firstSeen := make(map[string]map[string]*Symbol)

	// Symbols are in declaration order, so the first occurrence wins the
	// map slot and every later one warns.
	for i := range idx.Symbols {
		sym := &idx.Symbols[i]

		var ns string
		var code diag.Code
		var what, relatedMsg string
		switch sym.Kind {
		case SymbolProcedure:
			ns = nsProcedures
			code = diag.E_DUPLICATE_PROCEDURE
			what = "procedure"
			relatedMsg = location.MsgPreviousDefinition
		case SymbolGlobalVariable:
			ns = nsGlobals
			code = diag.E_DUPLICATE_VARIABLE
			what = "variable"
			relatedMsg = location.MsgPreviousDefinition
		case SymbolParameter:
			ns = "scope:" + sym.Container
			code = diag.E_DUPLICATE_PARAMETER
			what = "parameter"
			relatedMsg = location.MsgPreviousDefinition
		case SymbolLocalVariable:
			ns = "scope:" + sym.Container
			code = diag.E_DUPLICATE_VARIABLE
			what = "variable"
			relatedMsg = location.MsgPreviousDefinition
		case SymbolDefine, SymbolDefineFn:
			ns = nsDefines
			code = diag.E_MACRO_REDEFINED
			what = "macro"
			relatedMsg = location.MsgDefinedHere
		default:
			continue
		}

		scope := firstSeen[ns]
		if scope == nil {
			scope = make(map[string]*Symbol)
			firstSeen[ns] = scope
		}
		first, dup := scope[sym.Name]
		if !dup {
			scope[sym.Name] = sym
			continue
		}

		out = append(out, diag.NewIssue(diag.Warning, code,
			fmt.Sprintf("%s %q already declared", what, sym.Name)).
			WithSpan(sym.Selection).
			WithRelated(location.RelatedInfo{Span: first.Selection, Message: relatedMsg}).
			Build())
	}
	return out
}

// unresolvedReferences resolves every identifier use in one source and
// warns on names that bind to nothing visible. Call references also get an
// argument-count check against the signature they bound to.
func unresolvedReferences(snapshot *Snapshot, id location.SourceID, idx *SymbolIndex) []diag.Issue {
	var out []diag.Issue
	for i := range idx.References {
		ref := &idx.References[i]
		sym := snapshot.ResolveName(ref.Name, id, ref.Container)

		switch ref.Kind {
		case RefCallStmt:
			if sym != nil || builtin.IsBuiltin(ref.Name) {
				continue
			}
			out = append(out, diag.NewIssue(diag.Warning, diag.E_UNDECLARED_PROCEDURE,
				fmt.Sprintf("procedure %q is not declared", ref.Name)).
				WithSpan(ref.Span).
				WithHint("check for a missing #include").
				Build())

		case RefCallExpr:
			if sym != nil {
				if issue, bad := macroArity(sym, ref); bad {
					out = append(out, issue)
				}
				continue
			}
			entry, isBuiltin := builtin.Lookup(ref.Name)
			if !isBuiltin {
				out = append(out, diag.NewIssue(diag.Warning, diag.E_UNKNOWN_BUILTIN,
					fmt.Sprintf("unknown procedure or opcode %q", ref.Name)).
					WithSpan(ref.Span).
					WithHint("check for a missing #include").
					Build())
				continue
			}
			if ref.ArgCount != entry.Arity() {
				out = append(out, diag.NewIssue(diag.Warning, diag.E_BUILTIN_ARITY,
					fmt.Sprintf("%s expects %d argument(s), got %d",
						entry.Label, entry.Arity(), ref.ArgCount)).
					WithSpan(ref.Span).
					Build())
			}

		default: // RefRead, RefWrite
			if sym != nil || builtin.IsBuiltin(ref.Name) {
				continue
			}
			out = append(out, diag.NewIssue(diag.Warning, diag.E_UNDECLARED_VARIABLE,
				fmt.Sprintf("name %q is not declared in this scope", ref.Name)).
				WithSpan(ref.Span).
				Build())
		}
	}
	return out
}

// macroArity checks a call expression that bound to a function-like define
// against the define's parameter count.
func macroArity(sym *Symbol, ref *Reference) (diag.Issue, bool) {
	if sym.Kind != SymbolDefineFn {
		return diag.Issue{}, false
	}
	def, ok := sym.Node.(*ssl.DefineDecl)
	if !ok || ref.ArgCount == len(def.Params) {
		return diag.Issue{}, false
	}
	return diag.NewIssue(diag.Warning, diag.E_MACRO_ARITY,
		fmt.Sprintf("macro %s(%s) expects %d argument(s), got %d",
			def.Name, strings.Join(def.Params, ", "), len(def.Params), ref.ArgCount)).
		WithSpan(ref.Span).
		WithRelated(location.RelatedInfo{Span: sym.Selection, Message: location.MsgDefinedHere}).
		Build(), true
}
