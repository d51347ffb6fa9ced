package lsp

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"github.com/ssl-lang/ssl-lsp/internal/source"
	"github.com/ssl-lang/ssl-lsp/location"
	"github.com/ssl-lang/ssl-lsp/ssl"
)

// SymbolKind represents the kind of a declaration symbol.
type SymbolKind int

const (
	SymbolProcedure SymbolKind = iota
	SymbolGlobalVariable
	SymbolLocalVariable
	SymbolParameter
	SymbolDefine
	SymbolDefineFn
)

// String returns a string representation of the symbol kind.
func (k SymbolKind) String() string {
	switch k {
	case SymbolProcedure:
		return "Procedure"
	case SymbolGlobalVariable:
		return "GlobalVariable"
	case SymbolLocalVariable:
		return "LocalVariable"
	case SymbolParameter:
		return "Parameter"
	case SymbolDefine:
		return "Define"
	case SymbolDefineFn:
		return "DefineFn"
	default:
		return "Unknown"
	}
}

// Symbol represents a declaration in an SSL source file.
type Symbol struct {
	Name      string
	Kind      SymbolKind
	SourceID  location.SourceID
	Range     location.Span // Full declaration span
	Selection location.Span // Name-only span
	Container string        // Enclosing procedure name; empty for top-level symbols
	Detail    string        // Signature-ish detail
	Node      ssl.Node      // Syntax pointer (*ssl.ProcedureDecl, *ssl.VariableDecl, *ssl.DefineDecl)
}

// ReferenceKind classifies how an identifier is used. The binding check
// keys its diagnostics on this: call targets that resolve to nothing warn
// differently from plain reads, and call references carry an argument
// count for arity checking.
type ReferenceKind int

const (
	// RefRead is an identifier read in an expression (including the
	// define-name occurrences recorded inside #define replacement bodies).
	RefRead ReferenceKind = iota

	// RefWrite is an assignment target or a foreach loop variable.
	RefWrite

	// RefCallStmt is the target of a `call NAME` statement.
	RefCallStmt

	// RefCallExpr is the callee of a `NAME(args)` call expression.
	RefCallExpr
)

// Reference represents an identifier use: an expression operand, a call
// target, an assignment LHS, or a define-name occurrence inside a #define
// replacement body.
type Reference struct {
	Name      string
	Kind      ReferenceKind
	Span      location.Span
	Container string // Enclosing procedure name at the usage site; empty at top level

	// ArgCount is the argument count at a call reference; -1 for reads
	// and writes.
	ArgCount int
}

// SymbolIndex holds extracted symbols and references for one source file.
type SymbolIndex struct {
	// Symbols sorted by span start position.
	Symbols []Symbol
	// References sorted by span start position.
	References []Reference
}

// BuildSymbolIndex walks a parsed translation unit and extracts every
// declaration symbol and identifier reference. The sources registry is
// optional; when provided it enables reference extraction from #define
// replacement bodies (which requires re-reading the directive text).
func BuildSymbolIndex(tu *ssl.TranslationUnit, sources *source.Registry) *SymbolIndex {
	idx := &SymbolIndex{}
	if tu == nil {
		return idx
	}

	ex := &extractor{idx: idx, sourceID: tu.Source, sources: sources}
	for _, decl := range tu.Decls {
		ex.topLevelDecl(decl)
	}
	ex.defineBodyReferences(tu)

	sortSymbolsByPosition(idx.Symbols)
	sortReferencesByPosition(idx.References)
	return idx
}

type extractor struct {
	idx      *SymbolIndex
	sourceID location.SourceID
	sources  *source.Registry

	// container is the name of the procedure currently being walked;
	// empty at top level.
	container string

	// defines accumulates define names seen so far, used by the
	// replacement-body reference pass.
	defines []*ssl.DefineDecl
}

func (ex *extractor) topLevelDecl(decl ssl.Decl) {
	switch d := decl.(type) {
	case *ssl.ProcedureDecl:
		ex.procedure(d)
	case *ssl.VariableDecl:
		ex.idx.Symbols = append(ex.idx.Symbols, Symbol{
			Name:      d.Name,
			Kind:      SymbolGlobalVariable,
			SourceID:  ex.sourceID,
			Range:     d.Span(),
			Selection: d.NameSpan,
			Detail:    "variable " + d.Name,
			Node:      d,
		})
		ex.expr(d.Initializer)
	case *ssl.DefineDecl:
		kind := SymbolDefine
		detail := "#define " + d.Name
		if d.IsFunctionLike() {
			kind = SymbolDefineFn
			detail = fmt.Sprintf("#define %s(%s)", d.Name, strings.Join(d.Params, ", "))
		}
		ex.idx.Symbols = append(ex.idx.Symbols, Symbol{
			Name:      d.Name,
			Kind:      kind,
			SourceID:  ex.sourceID,
			Range:     d.Span(),
			Selection: d.NameSpan,
			Detail:    detail,
			Node:      d,
		})
		ex.defines = append(ex.defines, d)
	case *ssl.IncludeDirective:
		// Includes carry no symbol; the definition provider resolves a
		// cursor over the path span directly from the syntax tree.
	}
}

func (ex *extractor) procedure(d *ssl.ProcedureDecl) {
	ex.idx.Symbols = append(ex.idx.Symbols, Symbol{
		Name:      d.Name,
		Kind:      SymbolProcedure,
		SourceID:  ex.sourceID,
		Range:     d.Span(),
		Selection: d.NameSpan,
		Detail:    formatProcedureDetail(d),
		Node:      d,
	})

	prev := ex.container
	ex.container = d.Name
	defer func() { ex.container = prev }()

	for _, param := range d.Params {
		ex.idx.Symbols = append(ex.idx.Symbols, Symbol{
			Name:      param.Name,
			Kind:      SymbolParameter,
			SourceID:  ex.sourceID,
			Range:     param.Span(),
			Selection: param.NameSpan,
			Container: d.Name,
			Detail:    "parameter " + param.Name,
			Node:      param,
		})
	}
	ex.block(d.Body)
}

func (ex *extractor) block(b *ssl.Block) {
	if b == nil {
		return
	}
	for _, stmt := range b.Stmts {
		ex.stmt(stmt)
	}
}

func (ex *extractor) stmt(stmt ssl.Stmt) {
	switch s := stmt.(type) {
	case *ssl.VariableDecl:
		ex.idx.Symbols = append(ex.idx.Symbols, Symbol{
			Name:      s.Name,
			Kind:      SymbolLocalVariable,
			SourceID:  ex.sourceID,
			Range:     s.Span(),
			Selection: s.NameSpan,
			Container: ex.container,
			Detail:    "variable " + s.Name,
			Node:      s,
		})
		ex.expr(s.Initializer)
	case *ssl.AssignStmt:
		ex.identifier(s.Target, RefWrite, -1)
		ex.expr(s.Value)
	case *ssl.CallStmt:
		ex.identifier(s.Callee, RefCallStmt, len(s.Args))
		for _, arg := range s.Args {
			ex.expr(arg)
		}
	case *ssl.ExprStmt:
		ex.expr(s.X)
	case *ssl.ReturnStmt:
		ex.expr(s.Value)
	case *ssl.IfStmt:
		ex.expr(s.Cond)
		ex.block(s.Then)
		if s.Else != nil {
			ex.stmt(s.Else)
		}
	case *ssl.WhileStmt:
		ex.expr(s.Cond)
		ex.block(s.Body)
	case *ssl.ForStmt:
		if s.Init != nil {
			ex.stmt(s.Init)
		}
		ex.expr(s.Cond)
		if s.Post != nil {
			ex.stmt(s.Post)
		}
		ex.block(s.Body)
	case *ssl.ForeachStmt:
		ex.identifier(s.Var, RefWrite, -1)
		ex.expr(s.Collection)
		ex.block(s.Body)
	case *ssl.SwitchStmt:
		ex.expr(s.Subject)
		for _, c := range s.Cases {
			for _, v := range c.Values {
				ex.expr(v)
			}
			for _, body := range c.Body {
				ex.stmt(body)
			}
		}
	case *ssl.Block:
		ex.block(s)
	case *ssl.BreakStmt, *ssl.ContinueStmt:
	}
}

func (ex *extractor) expr(e ssl.Expr) {
	switch x := e.(type) {
	case nil:
	case *ssl.Identifier:
		ex.identifier(x, RefRead, -1)
	case *ssl.BinaryExpr:
		ex.expr(x.Left)
		ex.expr(x.Right)
	case *ssl.UnaryExpr:
		ex.expr(x.Operand)
	case *ssl.CallExpr:
		if callee, ok := x.Callee.(*ssl.Identifier); ok {
			ex.identifier(callee, RefCallExpr, len(x.Args))
		} else {
			ex.expr(x.Callee)
		}
		for _, arg := range x.Args {
			ex.expr(arg)
		}
	case *ssl.ParenExpr:
		ex.expr(x.Inner)
	case *ssl.IntLit, *ssl.FloatLit, *ssl.StringLit:
	}
}

func (ex *extractor) identifier(id *ssl.Identifier, kind ReferenceKind, argCount int) {
	if id == nil || id.Name == "" {
		return
	}
	ex.idx.References = append(ex.idx.References, Reference{
		Name:      id.Name,
		Kind:      kind,
		Span:      id.Sp,
		Container: ex.container,
		ArgCount:  argCount,
	})
}

// defineBodyReferences scans every #define replacement body for identifiers
// that textually match a known define name and records each match as a
// reference. Replacement text lives inside the raw directive lexeme, so the
// scan re-reads the directive bytes from the source registry to compute
// precise spans; directives that span multiple physical lines are skipped
// (their sub-offsets no longer correspond to source columns).
func (ex *extractor) defineBodyReferences(tu *ssl.TranslationUnit) {
	if ex.sources == nil || len(ex.defines) == 0 {
		return
	}
	content, ok := ex.sources.ContentBySource(tu.Source)
	if !ok {
		return
	}

	known := make(map[string]struct{}, len(ex.defines))
	for _, d := range ex.defines {
		known[d.Name] = struct{}{}
	}

	for _, d := range ex.defines {
		if d.Replacement == "" {
			continue
		}
		sp := d.Span()
		if sp.Start.Byte < 0 || sp.End.Byte < 0 || sp.End.Byte > len(content) {
			continue
		}
		text := string(content[sp.Start.Byte:sp.End.Byte])
		if strings.ContainsAny(text, "\n\r") {
			continue
		}

		// The replacement is the final occurrence of its text within the
		// directive; searching from the end avoids matching the macro name
		// when the replacement repeats it.
		bodyOff := strings.LastIndex(text, d.Replacement)
		if bodyOff < 0 {
			continue
		}

		for _, occ := range identifierOccurrences(d.Replacement) {
			if _, isDefine := known[occ.text]; !isDefine {
				continue
			}
			startByte := sp.Start.Byte + bodyOff + occ.offset
			ex.idx.References = append(ex.idx.References, Reference{
				Name:     occ.text,
				Kind:     RefRead,
				ArgCount: -1,
				Span: location.Span{
					Source: tu.Source,
					Start:  ex.sources.PositionAt(tu.Source, startByte),
					End:    ex.sources.PositionAt(tu.Source, startByte+len(occ.text)),
				},
			})
		}
	}
}

type identOccurrence struct {
	text   string
	offset int
}

// identifierOccurrences returns every maximal [A-Za-z_][A-Za-z0-9_]* run in
// s with its byte offset.
func identifierOccurrences(s string) []identOccurrence {
	var out []identOccurrence
	i := 0
	for i < len(s) {
		c := s[i]
		if c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') {
			j := i + 1
			for j < len(s) {
				c = s[j]
				if c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') {
					j++
					continue
				}
				break
			}
			out = append(out, identOccurrence{text: s[i:j], offset: i})
			i = j
			continue
		}
		// Skip past any trailing digits so "2x" does not yield "x".
		if c >= '0' && c <= '9' {
			for i < len(s) {
				c = s[i]
				if c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') {
					i++
					continue
				}
				break
			}
			continue
		}
		i++
	}
	return out
}

// SymbolAtPosition finds the smallest symbol whose Range contains the given
// position. It returns the most specific (innermost) symbol at that
// position — a local variable rather than its containing procedure.
//
// Linear search over all symbols is acceptable for typical script sizes
// (a few hundred symbols); the slice is kept sorted for deterministic
// iteration, not for binary search, since containment queries need the
// smallest containing span rather than an exact start match.
//
// Returns nil if no symbol contains the position or if idx is nil.
func (idx *SymbolIndex) SymbolAtPosition(pos location.Position) *Symbol {
	if idx == nil || len(idx.Symbols) == 0 {
		return nil
	}

	var best *Symbol
	for i := range idx.Symbols {
		sym := &idx.Symbols[i]
		if sym.Range.Contains(pos) {
			if best == nil || isSmaller(sym.Range, best.Range) {
				best = sym
			}
		}
	}
	return best
}

// DeclarationNameAtPosition finds a symbol whose name-only selection span
// contains the given position. Unlike SymbolAtPosition this only matches
// when the cursor sits directly on the declaring identifier.
func (idx *SymbolIndex) DeclarationNameAtPosition(pos location.Position) *Symbol {
	if idx == nil {
		return nil
	}
	for i := range idx.Symbols {
		sym := &idx.Symbols[i]
		if sym.Selection.Contains(pos) {
			return sym
		}
	}
	return nil
}

// ReferenceAtPosition finds the identifier reference at the given position.
func (idx *SymbolIndex) ReferenceAtPosition(pos location.Position) *Reference {
	if idx == nil || len(idx.References) == 0 {
		return nil
	}
	for i := range idx.References {
		ref := &idx.References[i]
		if ref.Span.Contains(pos) {
			return ref
		}
	}
	return nil
}

// EnclosingProcedure returns the procedure symbol whose declaration span
// contains pos, or nil when pos is at top level.
func (idx *SymbolIndex) EnclosingProcedure(pos location.Position) *Symbol {
	if idx == nil {
		return nil
	}
	for i := range idx.Symbols {
		sym := &idx.Symbols[i]
		if sym.Kind == SymbolProcedure && sym.Range.Contains(pos) {
			return sym
		}
	}
	return nil
}

// formatProcedureDetail renders a procedure declaration header for hover
// and completion detail.
func formatProcedureDetail(d *ssl.ProcedureDecl) string {
	if len(d.Params) == 0 {
		return "procedure " + d.Name
	}
	names := make([]string, len(d.Params))
	for i, p := range d.Params {
		names[i] = p.Name
	}
	return fmt.Sprintf("procedure %s(%s)", d.Name, strings.Join(names, ", "))
}

// sortSymbolsByPosition sorts symbols by their start position.
func sortSymbolsByPosition(symbols []Symbol) {
	slices.SortFunc(symbols, func(a, b Symbol) int {
		return positionCompare(a.Range.Start, b.Range.Start)
	})
}

// sortReferencesByPosition sorts references by their start position.
func sortReferencesByPosition(refs []Reference) {
	slices.SortFunc(refs, func(a, b Reference) int {
		return positionCompare(a.Span.Start, b.Span.Start)
	})
}

// positionCompare compares two positions, returning -1, 0, or +1.
func positionCompare(a, b location.Position) int {
	return cmp.Or(
		cmp.Compare(a.Line, b.Line),
		cmp.Compare(a.Column, b.Column),
	)
}

// isSmaller returns true if a is smaller (more specific) than b.
func isSmaller(a, b location.Span) bool {
	aLines := a.End.Line - a.Start.Line
	bLines := b.End.Line - b.Start.Line
	if aLines != bLines {
		return aLines < bLines
	}
	if a.Start.Line == a.End.Line && b.Start.Line == b.End.Line {
		return (a.End.Column - a.Start.Column) < (b.End.Column - b.Start.Column)
	}
	return false
}
