package ssl

import "github.com/ssl-lang/ssl-lsp/location"

// Node is implemented by every syntax tree element. It reports the span of
// source text the node was parsed from.
type Node interface {
	Span() location.Span
}

// Decl is a top-level declaration: a ProcedureDecl, a top-level
// VariableDecl, a DefineDecl, or an IncludeDirective.
type Decl interface {
	Node
	declNode()
}

// Stmt is a statement inside a procedure body.
type Stmt interface {
	Node
	stmtNode()
}

// Expr is an expression.
type Expr interface {
	Node
	exprNode()
}

// TranslationUnit is the root of a single file's syntax tree: an ordered
// sequence of top-level declarations in whatever order they appeared.
type TranslationUnit struct {
	Source location.SourceID
	Decls  []Decl
	Sp     location.Span
}

func (t *TranslationUnit) Span() location.Span { return t.Sp }

// ProcedureDecl is `procedure NAME [(params)] begin Stmt* end`.
type ProcedureDecl struct {
	Name     string
	NameSpan location.Span // selection span: the identifier only
	Params   []*VariableDecl
	Body     *Block
	Sp       location.Span
}

func (p *ProcedureDecl) Span() location.Span { return p.Sp }
func (p *ProcedureDecl) declNode()           {}

// VariableDecl is `variable NAME [:= initializer]`, used both as a
// top-level declaration and as a procedure parameter / local declaration.
type VariableDecl struct {
	Name        string
	NameSpan    location.Span
	Initializer Expr // nil when absent
	Sp          location.Span
}

func (v *VariableDecl) Span() location.Span { return v.Sp }
func (v *VariableDecl) declNode()           {}
func (v *VariableDecl) stmtNode()           {}

// DefineDecl is a `#define NAME REPLACEMENT` or
// `#define NAME(p1, p2, ...) REPLACEMENT` directive.
//
// Params is nil for an object-like define and non-nil (possibly empty) for
// a function-like one; see IsFunctionLike.
type DefineDecl struct {
	Name        string
	NameSpan    location.Span
	Params      []string
	ParamsSpan  location.Span
	Replacement string
	Sp          location.Span
}

func (d *DefineDecl) Span() location.Span { return d.Sp }
func (d *DefineDecl) declNode()           {}

// IsFunctionLike reports whether the define carries a parameter list.
func (d *DefineDecl) IsFunctionLike() bool { return d.Params != nil }

// IncludeDirective is an `#include "path"` directive.
type IncludeDirective struct {
	Path     string
	PathSpan location.Span
	// Resolved is the SourceID the path resolved to, or the zero value if
	// the include target could not be found.
	Resolved location.SourceID
	Sp       location.Span
}

func (i *IncludeDirective) Span() location.Span { return i.Sp }
func (i *IncludeDirective) declNode()           {}

// Block is a brace-free `begin Stmt* end` or `{ Stmt* }` statement list.
type Block struct {
	Stmts []Stmt
	Sp    location.Span
}

func (b *Block) Span() location.Span { return b.Sp }
func (b *Block) stmtNode()           {}

// AssignStmt is `target := value ;`.
type AssignStmt struct {
	Target *Identifier
	Value  Expr
	Sp     location.Span
}

func (s *AssignStmt) Span() location.Span { return s.Sp }
func (s *AssignStmt) stmtNode()           {}

// CallStmt is `call NAME [(args)] ;`.
type CallStmt struct {
	Callee *Identifier
	Args   []Expr
	Sp     location.Span
}

func (s *CallStmt) Span() location.Span { return s.Sp }
func (s *CallStmt) stmtNode()           {}

// ExprStmt wraps a bare expression used as a statement (`expr ;`).
type ExprStmt struct {
	X  Expr
	Sp location.Span
}

func (s *ExprStmt) Span() location.Span { return s.Sp }
func (s *ExprStmt) stmtNode()           {}

// ReturnStmt is `return [value] ;`.
type ReturnStmt struct {
	Value Expr // nil when bare `return;`
	Sp    location.Span
}

func (s *ReturnStmt) Span() location.Span { return s.Sp }
func (s *ReturnStmt) stmtNode()           {}

// IfStmt is `if cond then Block [else (IfStmt|Block)]`.
type IfStmt struct {
	Cond Expr
	Then *Block
	Else Stmt // *IfStmt, *Block, or nil
	Sp   location.Span
}

func (s *IfStmt) Span() location.Span { return s.Sp }
func (s *IfStmt) stmtNode()           {}

// WhileStmt is `while cond Block`.
type WhileStmt struct {
	Cond Expr
	Body *Block
	Sp   location.Span
}

func (s *WhileStmt) Span() location.Span { return s.Sp }
func (s *WhileStmt) stmtNode()           {}

// ForStmt is `for (init; cond; post) Block`. Init and Post may be nil.
type ForStmt struct {
	Init Stmt
	Cond Expr
	Post Stmt
	Body *Block
	Sp   location.Span
}

func (s *ForStmt) Span() location.Span { return s.Sp }
func (s *ForStmt) stmtNode()           {}

// ForeachStmt is `foreach (ident in collection) Block`.
type ForeachStmt struct {
	Var        *Identifier
	Collection Expr
	Body       *Block
	Sp         location.Span
}

func (s *ForeachStmt) Span() location.Span { return s.Sp }
func (s *ForeachStmt) stmtNode()           {}

// SwitchCase is a single `case value:` or `default:` arm.
type SwitchCase struct {
	Values    []Expr // empty for the default arm
	IsDefault bool
	Body      []Stmt
	Sp        location.Span
}

func (c *SwitchCase) Span() location.Span { return c.Sp }

// SwitchStmt is `switch (subject) { case ...: ... default: ... }`.
type SwitchStmt struct {
	Subject Expr
	Cases   []*SwitchCase
	Sp      location.Span
}

func (s *SwitchStmt) Span() location.Span { return s.Sp }
func (s *SwitchStmt) stmtNode()           {}

// BreakStmt is `break;`.
type BreakStmt struct{ Sp location.Span }

func (s *BreakStmt) Span() location.Span { return s.Sp }
func (s *BreakStmt) stmtNode()           {}

// ContinueStmt is `continue;`.
type ContinueStmt struct{ Sp location.Span }

func (s *ContinueStmt) Span() location.Span { return s.Sp }
func (s *ContinueStmt) stmtNode()           {}

// Identifier is a bare name reference, either a use or (in some contexts) a
// declaration's selection span.
type Identifier struct {
	Name string
	Sp   location.Span
}

func (i *Identifier) Span() location.Span { return i.Sp }
func (i *Identifier) exprNode()           {}

// IntLit is an integer literal.
type IntLit struct {
	Value int64
	Sp    location.Span
}

func (l *IntLit) Span() location.Span { return l.Sp }
func (l *IntLit) exprNode()           {}

// FloatLit is a floating-point literal.
type FloatLit struct {
	Value float64
	Sp    location.Span
}

func (l *FloatLit) Span() location.Span { return l.Sp }
func (l *FloatLit) exprNode()           {}

// StringLit is a double- or single-quoted string literal.
type StringLit struct {
	Value string // unescaped value
	Raw   string // original lexeme, including quotes
	Sp    location.Span
}

func (l *StringLit) Span() location.Span { return l.Sp }
func (l *StringLit) exprNode()           {}

// BinaryExpr is `left OP right`.
type BinaryExpr struct {
	Op    Kind
	Left  Expr
	Right Expr
	Sp    location.Span
}

func (e *BinaryExpr) Span() location.Span { return e.Sp }
func (e *BinaryExpr) exprNode()           {}

// UnaryExpr is `OP operand`.
type UnaryExpr struct {
	Op      Kind
	Operand Expr
	Sp      location.Span
}

func (e *UnaryExpr) Span() location.Span { return e.Sp }
func (e *UnaryExpr) exprNode()           {}

// CallExpr is `callee(args)`, a call used as an expression (as opposed to a
// CallStmt, which is the `call NAME(args);` statement form).
type CallExpr struct {
	Callee Expr
	Args   []Expr
	Sp     location.Span
}

func (e *CallExpr) Span() location.Span { return e.Sp }
func (e *CallExpr) exprNode()           {}

// ParenExpr is `(inner)`; retained so that span hygiene can distinguish a
// parenthesized expression from its contents.
type ParenExpr struct {
	Inner Expr
	Sp    location.Span
}

func (e *ParenExpr) Span() location.Span { return e.Sp }
func (e *ParenExpr) exprNode()           {}
