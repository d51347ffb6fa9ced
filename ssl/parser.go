package ssl

import (
	"fmt"
	"strings"

	"github.com/ssl-lang/ssl-lsp/diag"
	"github.com/ssl-lang/ssl-lsp/location"
)

// Parser is a recursive-descent parser over a token stream produced by
// [Lexer.Tokenize]. On syntax error it emits a diagnostic and resynchronizes
// at the next statement-recovery point, so a single malformed construct
// never prevents the rest of the file from parsing.
type Parser struct {
	source location.SourceID
	tokens []Token
	pos    int
	issues *diag.Collector
}

// NewParser creates a Parser over tokens, identified by source for span
// construction. issues receives syntax diagnostics; it may be nil to
// discard them.
func NewParser(source location.SourceID, tokens []Token, issues *diag.Collector) *Parser {
	return &Parser{source: source, tokens: tokens, issues: issues}
}

// Parse builds a TranslationUnit out of the entire token stream.
func Parse(source location.SourceID, content []byte, issues *diag.Collector) *TranslationUnit {
	lx := NewLexer(source, content, issues)
	tokens := lx.Tokenize()
	p := NewParser(source, tokens, issues)
	return p.ParseTranslationUnit()
}

func (p *Parser) cur() Token {
	if p.pos >= len(p.tokens) {
		return p.tokens[len(p.tokens)-1] // EOF
	}
	return p.tokens[p.pos]
}

func (p *Parser) peekAt(n int) Token {
	idx := p.pos + n
	if idx >= len(p.tokens) {
		return p.tokens[len(p.tokens)-1]
	}
	return p.tokens[idx]
}

func (p *Parser) atEOF() bool {
	return p.cur().Kind == EOF
}

func (p *Parser) advance() Token {
	t := p.cur()
	if p.pos < len(p.tokens)-1 {
		p.pos++
	}
	return t
}

func (p *Parser) check(k Kind) bool {
	return p.cur().Kind == k
}

func (p *Parser) match(k Kind) (Token, bool) {
	if p.check(k) {
		return p.advance(), true
	}
	return Token{}, false
}

// expect consumes a token of kind k, or emits a syntax diagnostic naming
// what was expected and returns the current (unconsumed) token. Hitting
// end-of-file mid-construct reports as such rather than as a stray token.
func (p *Parser) expect(k Kind, construct string) Token {
	if p.check(k) {
		return p.advance()
	}
	if p.atEOF() {
		p.errorf(p.cur().Span, diag.E_UNEXPECTED_EOF,
			"unexpected end of file while parsing %s, expected %s", construct, k)
	} else {
		p.errorf(p.cur().Span, diag.E_UNEXPECTED_TOKEN,
			"expected %s while parsing %s, found %q", k, construct, p.cur().Kind)
	}
	return p.cur()
}

func (p *Parser) errorf(span location.Span, code diag.Code, format string, args ...any) {
	if p.issues == nil {
		return
	}
	p.issues.Collect(diag.NewIssue(diag.Error, code, fmt.Sprintf(format, args...)).
		WithSpan(span).
		Build())
}

// synchronize discards tokens until a recovery point: the next `;`, `end`,
// `procedure`, or a directive, so that downstream declarations still yield
// usable symbols after a malformed construct.
func (p *Parser) synchronize() {
	for !p.atEOF() {
		switch p.cur().Kind {
		case Semicolon:
			p.advance()
			return
		case KwEnd, KwProcedure, Directive:
			return
		}
		p.advance()
	}
}

// ParseTranslationUnit parses a sequence of procedure declarations,
// top-level variable declarations, and preprocessor directives, in any
// order.
func (p *Parser) ParseTranslationUnit() *TranslationUnit {
	startSpan := p.cur().Span
	tu := &TranslationUnit{Source: p.source}

	for !p.atEOF() {
		before := p.pos
		decl := p.parseTopLevelDecl()
		if decl != nil {
			tu.Decls = append(tu.Decls, decl)
		}
		if p.pos == before {
			// parseTopLevelDecl made no progress; force advancement to
			// avoid an infinite loop on a token nothing recognizes.
			p.errorf(p.cur().Span, diag.E_UNEXPECTED_TOKEN,
				"expected declaration, found %q", p.cur().Kind)
			p.advance()
			p.synchronize()
		}
	}

	endSpan := p.cur().Span
	tu.Sp = joinSpans(p.source, startSpan, endSpan)
	return tu
}

func (p *Parser) parseTopLevelDecl() Decl {
	switch p.cur().Kind {
	case Directive:
		return p.parseDirective()
	case KwProcedure:
		return p.parseProcedureDecl()
	case KwVariable:
		return p.parseTopLevelVariableDecl()
	default:
		return nil
	}
}

// parseDirective dispatches a raw directive token to #define or #include
// handling based on its leading word.
func (p *Parser) parseDirective() Decl {
	tok := p.advance()
	text := strings.TrimPrefix(strings.TrimSpace(tok.Lexeme), "#")
	text = strings.TrimSpace(text)

	switch {
	case strings.HasPrefix(text, "define"):
		return p.parseDefineDirective(tok, text[len("define"):])
	case strings.HasPrefix(text, "include"):
		return p.parseIncludeDirective(tok, text[len("include"):])
	default:
		p.errorf(tok.Span, diag.E_MALFORMED_DIRECTIVE,
			"unrecognized preprocessor directive %q", tok.Lexeme)
		return nil
	}
}

// parseDefineDirective parses the body of a #define directive. rest is the
// directive text following the `define` keyword. Sub-spans for the name
// and parameter list are computed by locating their text within the
// directive token's lexeme and offsetting from the token's start byte;
// this is approximate when the directive spans multiple physical lines
// (continuation), in which case the whole directive span is used instead.
func (p *Parser) parseDefineDirective(tok Token, rest string) Decl {
	rest = strings.TrimLeft(rest, " \t")
	name, afterName := splitIdent(rest)
	if name == "" {
		p.errorf(tok.Span, diag.E_MALFORMED_DIRECTIVE, "#define missing macro name")
		return nil
	}

	nameSpan := subSpan(tok, rest, name, len(rest)-len(afterName)-len(name))

	var params []string
	paramsSpan := location.Span{}
	body := afterName
	if strings.HasPrefix(afterName, "(") {
		closeIdx := strings.IndexByte(afterName, ')')
		if closeIdx < 0 {
			p.errorf(tok.Span, diag.E_MALFORMED_DIRECTIVE, "#define %s: unterminated parameter list", name)
			params = []string{}
		} else {
			paramList := afterName[1:closeIdx]
			params = splitParams(paramList)
			paramsSpan = subSpan(tok, rest, afterName[:closeIdx+1], len(rest)-len(afterName))
			body = afterName[closeIdx+1:]
		}
	}
	replacement := strings.TrimSpace(body)

	return &DefineDecl{
		Name:        name,
		NameSpan:    nameSpan,
		Params:      params,
		ParamsSpan:  paramsSpan,
		Replacement: replacement,
		Sp:          tok.Span,
	}
}

func (p *Parser) parseIncludeDirective(tok Token, rest string) Decl {
	rest = strings.TrimSpace(rest)
	path, quoted := unquotePath(rest)
	if !quoted {
		p.errorf(tok.Span, diag.E_MALFORMED_DIRECTIVE, "#include expects a quoted path")
		return nil
	}

	pathSpan := tok.Span
	if idx := strings.Index(tok.Lexeme, rest); idx >= 0 {
		pathSpan = subSpanAt(tok, idx, len(rest))
	}

	return &IncludeDirective{
		Path:     path,
		PathSpan: pathSpan,
		Sp:       tok.Span,
	}
}

func (p *Parser) parseProcedureDecl() Decl {
	start := p.advance() // 'procedure'
	nameTok := p.expect(Ident, "procedure name")

	var params []*VariableDecl
	if _, ok := p.match(LParen); ok {
		for !p.check(RParen) && !p.atEOF() {
			params = append(params, p.parseParamDecl())
			if _, ok := p.match(Comma); !ok {
				break
			}
		}
		p.expect(RParen, "procedure parameter list")
	}

	p.expect(KwBegin, "procedure body")
	body := p.parseBlockUntil(KwEnd)
	end := p.expect(KwEnd, "procedure body")

	return &ProcedureDecl{
		Name:     nameTok.Lexeme,
		NameSpan: nameTok.Span,
		Params:   params,
		Body:     body,
		Sp:       joinSpans(p.source, start.Span, end.Span),
	}
}

func (p *Parser) parseParamDecl() *VariableDecl {
	nameTok := p.expect(Ident, "parameter name")
	return &VariableDecl{Name: nameTok.Lexeme, NameSpan: nameTok.Span, Sp: nameTok.Span}
}

func (p *Parser) parseTopLevelVariableDecl() Decl {
	decl, _ := p.parseVariableDeclStmt()
	return decl
}

// parseVariableDeclStmt parses `variable NAME [:= expr] ;` both at top
// level and inside a procedure body.
func (p *Parser) parseVariableDeclStmt() (*VariableDecl, bool) {
	start := p.advance() // 'variable'
	nameTok := p.expect(Ident, "variable declaration")

	var init Expr
	if _, ok := p.match(Assign); ok {
		init = p.parseExpr()
	}
	semi := p.expect(Semicolon, "variable declaration")

	return &VariableDecl{
		Name:        nameTok.Lexeme,
		NameSpan:    nameTok.Span,
		Initializer: init,
		Sp:          joinSpans(p.source, start.Span, semi.Span),
	}, true
}

// parseBlockUntil parses statements until the current token is terminator
// (not consumed) or EOF.
func (p *Parser) parseBlockUntil(terminator Kind) *Block {
	start := p.cur().Span
	b := &Block{}
	for !p.check(terminator) && !p.atEOF() {
		before := p.pos
		stmt := p.parseStmt()
		if stmt != nil {
			b.Stmts = append(b.Stmts, stmt)
		}
		if p.pos == before {
			p.errorf(p.cur().Span, diag.E_UNEXPECTED_TOKEN,
				"expected statement, found %q", p.cur().Kind)
			p.advance()
			p.synchronize()
		}
	}
	b.Sp = joinSpans(p.source, start, p.cur().Span)
	return b
}

func (p *Parser) parseStmt() Stmt {
	switch p.cur().Kind {
	case KwVariable:
		decl, _ := p.parseVariableDeclStmt()
		return decl
	case KwCall:
		return p.parseCallStmt()
	case KwReturn:
		return p.parseReturnStmt()
	case KwIf:
		return p.parseIfStmt()
	case KwWhile:
		return p.parseWhileStmt()
	case KwFor:
		return p.parseForStmt()
	case KwForeach:
		return p.parseForeachStmt()
	case KwSwitch:
		return p.parseSwitchStmt()
	case KwBreak:
		tok := p.advance()
		semi := p.expect(Semicolon, "break statement")
		return &BreakStmt{Sp: joinSpans(p.source, tok.Span, semi.Span)}
	case KwContinue:
		tok := p.advance()
		semi := p.expect(Semicolon, "continue statement")
		return &ContinueStmt{Sp: joinSpans(p.source, tok.Span, semi.Span)}
	case KwBegin:
		p.advance()
		block := p.parseBlockUntil(KwEnd)
		p.expect(KwEnd, "begin block")
		return block
	case LBrace:
		p.advance()
		block := p.parseBlockUntil(RBrace)
		p.expect(RBrace, "brace block")
		return block
	case Directive:
		tok := p.advance()
		p.errorf(tok.Span, diag.E_MALFORMED_DIRECTIVE, "preprocessor directives are only valid at top level")
		return nil
	default:
		return p.parseSimpleStmt()
	}
}

// parseSimpleStmt handles `ident := expr ;` and bare expression
// statements.
func (p *Parser) parseSimpleStmt() Stmt {
	startTok := p.cur()
	if startTok.Kind == Ident && p.peekAt(1).Kind == Assign {
		ident := p.advance()
		p.advance() // ':='
		value := p.parseExpr()
		semi := p.expect(Semicolon, "assignment")
		return &AssignStmt{
			Target: &Identifier{Name: ident.Lexeme, Sp: ident.Span},
			Value:  value,
			Sp:     joinSpans(p.source, ident.Span, semi.Span),
		}
	}

	expr := p.parseExpr()
	semi := p.expect(Semicolon, "expression statement")
	return &ExprStmt{X: expr, Sp: joinSpans(p.source, startTok.Span, semi.Span)}
}

func (p *Parser) parseCallStmt() Stmt {
	start := p.advance() // 'call'
	nameTok := p.expect(Ident, "call target")
	callee := &Identifier{Name: nameTok.Lexeme, Sp: nameTok.Span}

	var args []Expr
	if _, ok := p.match(LParen); ok {
		args = p.parseArgList()
		p.expect(RParen, "call arguments")
	}
	semi := p.expect(Semicolon, "call statement")

	return &CallStmt{Callee: callee, Args: args, Sp: joinSpans(p.source, start.Span, semi.Span)}
}

func (p *Parser) parseReturnStmt() Stmt {
	start := p.advance() // 'return'
	var value Expr
	if !p.check(Semicolon) {
		value = p.parseExpr()
	}
	semi := p.expect(Semicolon, "return statement")
	return &ReturnStmt{Value: value, Sp: joinSpans(p.source, start.Span, semi.Span)}
}

func (p *Parser) parseIfStmt() Stmt {
	start := p.advance() // 'if'
	cond := p.parseExpr()
	p.expect(KwThen, "if statement")
	then := p.parseControlBody()

	var elseStmt Stmt
	endSpan := then.Span()
	if elseTok, ok := p.match(KwElse); ok {
		endSpan = elseTok.Span
		if p.check(KwIf) {
			elseStmt = p.parseIfStmt()
		} else {
			elseStmt = p.parseControlBody()
		}
		endSpan = elseStmt.Span()
	}

	return &IfStmt{Cond: cond, Then: then, Else: elseStmt, Sp: joinSpans(p.source, start.Span, endSpan)}
}

func (p *Parser) parseWhileStmt() Stmt {
	start := p.advance() // 'while'
	cond := p.parseExpr()
	body := p.parseControlBody()
	return &WhileStmt{Cond: cond, Body: body, Sp: joinSpans(p.source, start.Span, body.Span())}
}

func (p *Parser) parseForStmt() Stmt {
	start := p.advance() // 'for'
	p.expect(LParen, "for statement")

	var init Stmt
	if p.check(KwVariable) {
		init, _ = p.parseVariableDeclStmt()
	} else if !p.check(Semicolon) {
		init = p.parseSimpleStmt()
	} else {
		p.advance()
	}

	var cond Expr
	if !p.check(Semicolon) {
		cond = p.parseExpr()
	}
	p.expect(Semicolon, "for statement")

	var post Stmt
	if p.check(Ident) && p.peekAt(1).Kind == Assign {
		ident := p.advance()
		p.advance() // ':='
		value := p.parseExpr()
		post = &AssignStmt{
			Target: &Identifier{Name: ident.Lexeme, Sp: ident.Span},
			Value:  value,
			Sp:     joinSpans(p.source, ident.Span, value.Span()),
		}
	} else if !p.check(RParen) {
		postExpr := p.parseExpr()
		post = &ExprStmt{X: postExpr, Sp: postExpr.Span()}
	}
	p.expect(RParen, "for statement")

	body := p.parseControlBody()
	return &ForStmt{Init: init, Cond: cond, Post: post, Body: body, Sp: joinSpans(p.source, start.Span, body.Span())}
}

func (p *Parser) parseForeachStmt() Stmt {
	start := p.advance() // 'foreach'
	p.expect(LParen, "foreach statement")
	nameTok := p.expect(Ident, "foreach variable")
	p.expect(KwIn, "foreach statement")
	collection := p.parseExpr()
	p.expect(RParen, "foreach statement")
	body := p.parseControlBody()

	return &ForeachStmt{
		Var:        &Identifier{Name: nameTok.Lexeme, Sp: nameTok.Span},
		Collection: collection,
		Body:       body,
		Sp:         joinSpans(p.source, start.Span, body.Span()),
	}
}

func (p *Parser) parseSwitchStmt() Stmt {
	start := p.advance() // 'switch'
	p.expect(LParen, "switch statement")
	subject := p.parseExpr()
	p.expect(RParen, "switch statement")
	p.expect(LBrace, "switch body")

	var cases []*SwitchCase
	for p.check(KwCase) || p.check(KwDefault) {
		cases = append(cases, p.parseSwitchCase())
	}
	end := p.expect(RBrace, "switch body")

	return &SwitchStmt{Subject: subject, Cases: cases, Sp: joinSpans(p.source, start.Span, end.Span)}
}

func (p *Parser) parseSwitchCase() *SwitchCase {
	c := &SwitchCase{}
	start := p.cur().Span
	if p.check(KwDefault) {
		p.advance()
		c.IsDefault = true
	} else {
		p.advance() // 'case'
		c.Values = append(c.Values, p.parseExpr())
		for {
			if _, ok := p.match(Comma); !ok {
				break
			}
			c.Values = append(c.Values, p.parseExpr())
		}
	}
	p.expect(Colon, "case label")

	for !p.check(KwCase) && !p.check(KwDefault) && !p.check(RBrace) && !p.atEOF() {
		before := p.pos
		stmt := p.parseStmt()
		if stmt != nil {
			c.Body = append(c.Body, stmt)
		}
		if p.pos == before {
			p.advance()
		}
	}
	c.Sp = joinSpans(p.source, start, p.cur().Span)
	return c
}

// parseControlBody parses either a `begin ... end` block or a single
// statement, the two forms SSL control-flow constructs accept as a body.
func (p *Parser) parseControlBody() *Block {
	if p.check(KwBegin) {
		start := p.advance()
		blk := p.parseBlockUntil(KwEnd)
		end := p.expect(KwEnd, "block")
		blk.Sp = joinSpans(p.source, start.Span, end.Span)
		return blk
	}
	if p.check(LBrace) {
		start := p.advance()
		blk := p.parseBlockUntil(RBrace)
		end := p.expect(RBrace, "block")
		blk.Sp = joinSpans(p.source, start.Span, end.Span)
		return blk
	}
	stmt := p.parseStmt()
	if stmt == nil {
		return &Block{Sp: p.cur().Span}
	}
	return &Block{Stmts: []Stmt{stmt}, Sp: stmt.Span()}
}

func (p *Parser) parseArgList() []Expr {
	var args []Expr
	if p.check(RParen) {
		return args
	}
	args = append(args, p.parseExpr())
	for {
		if _, ok := p.match(Comma); !ok {
			break
		}
		args = append(args, p.parseExpr())
	}
	return args
}

// Expression parsing: standard precedence climbing.

var binaryPrecedence = map[Kind]int{
	OrOr:    1,
	AndAnd:  2,
	BitOr:   3,
	BitXor:  4,
	BitAnd:  5,
	Eq:      6,
	NotEq:   6,
	Lt:      7,
	LtEq:    7,
	Gt:      7,
	GtEq:    7,
	Plus:    8,
	Minus:   8,
	Star:    9,
	Slash:   9,
	Percent: 9,
}

func (p *Parser) parseExpr() Expr {
	return p.parseBinary(0)
}

func (p *Parser) parseBinary(minPrec int) Expr {
	left := p.parseUnary()
	for {
		prec, ok := binaryPrecedence[p.cur().Kind]
		if !ok || prec < minPrec {
			return left
		}
		op := p.advance()
		right := p.parseBinary(prec + 1)
		left = &BinaryExpr{Op: op.Kind, Left: left, Right: right, Sp: joinSpans(p.source, left.Span(), right.Span())}
	}
}

func (p *Parser) parseUnary() Expr {
	switch p.cur().Kind {
	case Minus, Not, BitAnd:
		op := p.advance()
		operand := p.parseUnary()
		return &UnaryExpr{Op: op.Kind, Operand: operand, Sp: joinSpans(p.source, op.Span, operand.Span())}
	default:
		return p.parsePostfix()
	}
}

func (p *Parser) parsePostfix() Expr {
	expr := p.parsePrimary()
	for p.check(LParen) {
		p.advance()
		args := p.parseArgList()
		end := p.expect(RParen, "call expression")
		expr = &CallExpr{Callee: expr, Args: args, Sp: joinSpans(p.source, expr.Span(), end.Span)}
	}
	return expr
}

func (p *Parser) parsePrimary() Expr {
	tok := p.cur()
	switch tok.Kind {
	case IntLiteral:
		p.advance()
		return &IntLit{Value: parseIntLiteral(tok.Lexeme), Sp: tok.Span}
	case FloatLiteral:
		p.advance()
		return &FloatLit{Value: parseFloatLiteral(tok.Lexeme), Sp: tok.Span}
	case StringLiteral:
		p.advance()
		return &StringLit{Value: tok.Lexeme, Raw: tok.Lexeme, Sp: tok.Span}
	case Ident:
		p.advance()
		return &Identifier{Name: tok.Lexeme, Sp: tok.Span}
	case LParen:
		p.advance()
		inner := p.parseExpr()
		end := p.expect(RParen, "parenthesized expression")
		return &ParenExpr{Inner: inner, Sp: joinSpans(p.source, tok.Span, end.Span)}
	default:
		p.errorf(tok.Span, diag.E_UNEXPECTED_TOKEN, "expected expression, found %q", tok.Kind)
		// Do not consume: let the caller's synchronization handle it, but
		// return a placeholder so callers always have a non-nil Expr.
		return &Identifier{Name: "", Sp: tok.Span}
	}
}

// joinSpans merges two spans defensively: if either is zero or they
// otherwise can't be merged (e.g. produced across a recovery boundary),
// the first span is returned (or the second, when the first is zero)
// rather than panicking.
func joinSpans(source location.SourceID, a, b location.Span) location.Span {
	if merged, ok := location.MergeSafe(a, b); ok {
		return merged
	}
	if !a.IsZero() {
		return a
	}
	return b
}
