package ssl

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/ssl-lang/ssl-lsp/diag"
	"github.com/ssl-lang/ssl-lsp/internal/textlit"
	"github.com/ssl-lang/ssl-lsp/location"
)

// Lexer is a classical hand-written scanner over SSL source bytes. It
// tracks line and UTF-16 column positions incrementally as it advances,
// using the same counting convention (1-based lines/columns, surrogate
// pairs count as 2 units) as [location.Position].
type Lexer struct {
	source  location.SourceID
	content []byte
	issues  *diag.Collector

	offset int // byte offset of the next unread byte
	line   int // 1-based
	col    int // 1-based, UTF-16 code units
}

// NewLexer creates a Lexer over content, identified for diagnostic and span
// purposes by source. Diagnostics (unterminated strings, and characters
// that start no token) are reported to issues; issues may be nil to
// discard them.
func NewLexer(source location.SourceID, content []byte, issues *diag.Collector) *Lexer {
	return &Lexer{
		source:  source,
		content: content,
		issues:  issues,
		offset:  0,
		line:    1,
		col:     1,
	}
}

// pos returns the current position as a location.Position.
func (l *Lexer) pos() location.Position {
	return location.NewPosition(l.line, l.col, l.offset)
}

// peekByte returns the byte at the current offset, or 0 at EOF.
func (l *Lexer) peekByte() byte {
	if l.offset >= len(l.content) {
		return 0
	}
	return l.content[l.offset]
}

// peekByteAt returns the byte n ahead of the current offset, or 0 past EOF.
func (l *Lexer) peekByteAt(n int) byte {
	if l.offset+n >= len(l.content) {
		return 0
	}
	return l.content[l.offset+n]
}

// advance consumes one rune, updating offset, line, and column, and
// returns the rune consumed.
func (l *Lexer) advance() rune {
	if l.offset >= len(l.content) {
		return 0
	}
	r, size := utf8.DecodeRune(l.content[l.offset:])
	if r == utf8.RuneError && size <= 1 {
		size = 1
	}
	l.offset += size

	switch {
	case r == '\n':
		l.line++
		l.col = 1
	case r == '\r':
		// A bare \r also starts a new line; in a \r\n pair the line
		// break is counted when the following \n is consumed.
		if l.peekByte() != '\n' {
			l.line++
			l.col = 1
		}
	case r > 0xFFFF:
		l.col += 2
	default:
		l.col++
	}
	return r
}

func isIdentStart(r rune) bool {
	return r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

func isIdentCont(r rune) bool {
	return isIdentStart(r) || (r >= '0' && r <= '9')
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

// Tokenize scans content in its entirety and returns the resulting token
// stream, always terminated by a single EOF token. Comments and
// whitespace are discarded.
func (l *Lexer) Tokenize() []Token {
	var tokens []Token
	atLineStart := true
	for {
		l.skipHorizontalSpace()

		b := l.peekByte()
		switch {
		case b == 0:
			tokens = append(tokens, Token{Kind: EOF, Span: location.Point(l.source, l.line, l.col)})
			return tokens
		case b == '\n' || b == '\r':
			l.advance()
			atLineStart = true
			continue
		case b == '#' && atLineStart:
			tokens = append(tokens, l.scanDirective())
			atLineStart = true
			continue
		case b == '/' && l.peekByteAt(1) == '/':
			l.skipLineComment()
			continue
		case b == '/' && l.peekByteAt(1) == '*':
			l.skipBlockComment()
			continue
		}

		atLineStart = false

		switch {
		case b == '"' || b == '\'':
			tokens = append(tokens, l.scanString(b))
		case isDigit(rune(b)):
			tokens = append(tokens, l.scanNumber())
		case isIdentStart(rune(b)):
			tokens = append(tokens, l.scanIdentifier())
		default:
			tokens = append(tokens, l.scanOperator())
		}
	}
}

// skipHorizontalSpace consumes spaces and tabs, leaving newlines untouched
// so the caller can track line starts.
func (l *Lexer) skipHorizontalSpace() {
	for {
		b := l.peekByte()
		if b == ' ' || b == '\t' {
			l.advance()
			continue
		}
		return
	}
}

func (l *Lexer) skipLineComment() {
	for {
		b := l.peekByte()
		if b == 0 || b == '\n' || b == '\r' {
			return
		}
		l.advance()
	}
}

func (l *Lexer) skipBlockComment() {
	l.advance() // '/'
	l.advance() // '*'
	for {
		b := l.peekByte()
		if b == 0 {
			return
		}
		if b == '*' && l.peekByteAt(1) == '/' {
			l.advance()
			l.advance()
			return
		}
		l.advance()
	}
}

// scanDirective captures the entire logical line of a preprocessor
// directive, joining backslash-newline continuations, as a single
// Directive token whose lexeme is the joined text (the leading '#' is
// included).
func (l *Lexer) scanDirective() Token {
	start := l.pos()
	var sb strings.Builder
	for {
		b := l.peekByte()
		if b == 0 || b == '\n' || b == '\r' {
			break
		}
		if b == '\\' && (l.peekByteAt(1) == '\n' || (l.peekByteAt(1) == '\r')) {
			l.advance() // backslash
			if l.peekByte() == '\r' {
				l.advance()
			}
			if l.peekByte() == '\n' {
				l.advance()
			}
			sb.WriteByte(' ')
			continue
		}
		sb.WriteRune(l.advance())
	}
	end := l.pos()
	return Token{Kind: Directive, Span: spanBetween(l.source, start, end), Lexeme: sb.String()}
}

func (l *Lexer) scanString(quote byte) Token {
	start := l.pos()
	var sb strings.Builder
	sb.WriteByte(quote)
	l.advance() // opening quote
	terminated := false
	for {
		b := l.peekByte()
		if b == 0 || b == '\n' || b == '\r' {
			break
		}
		if b == quote {
			sb.WriteByte(quote)
			l.advance()
			terminated = true
			break
		}
		if b == '\\' {
			sb.WriteByte(b)
			l.advance()
			if l.peekByte() != 0 {
				sb.WriteRune(l.advance())
			}
			continue
		}
		sb.WriteRune(l.advance())
	}
	end := l.pos()
	span := spanBetween(l.source, start, end)
	raw := sb.String()

	if !terminated && l.issues != nil {
		l.issues.Collect(diag.NewIssue(diag.Warning, diag.E_UNTERMINATED_STRING,
			"unterminated string literal").
			WithSpan(span).
			Build())
	}

	value := raw
	if terminated {
		if v, err := textlit.ConvertString(raw); err == nil {
			value = v
		}
	} else {
		// Close the literal at end-of-line so downstream consumers still
		// get a usable (if inexact) value.
		closed := raw + string(quote)
		if v, err := textlit.ConvertString(closed); err == nil {
			value = v
		}
	}

	return Token{Kind: StringLiteral, Span: span, Lexeme: value}
}

func (l *Lexer) scanNumber() Token {
	start := l.pos()
	var sb strings.Builder
	isFloat := false
	for isDigit(rune(l.peekByte())) {
		sb.WriteRune(l.advance())
	}
	if l.peekByte() == '.' && isDigit(rune(l.peekByteAt(1))) {
		isFloat = true
		sb.WriteRune(l.advance()) // '.'
		for isDigit(rune(l.peekByte())) {
			sb.WriteRune(l.advance())
		}
	}
	if b := l.peekByte(); b == 'e' || b == 'E' {
		next := l.peekByteAt(1)
		digitsAhead := isDigit(rune(next))
		signedAhead := (next == '+' || next == '-') && isDigit(rune(l.peekByteAt(2)))
		if digitsAhead || signedAhead {
			isFloat = true
			sb.WriteRune(l.advance())
			if l.peekByte() == '+' || l.peekByte() == '-' {
				sb.WriteRune(l.advance())
			}
			for isDigit(rune(l.peekByte())) {
				sb.WriteRune(l.advance())
			}
		}
	}
	end := l.pos()
	span := spanBetween(l.source, start, end)
	lexeme := sb.String()
	if isFloat {
		return Token{Kind: FloatLiteral, Span: span, Lexeme: lexeme}
	}
	return Token{Kind: IntLiteral, Span: span, Lexeme: lexeme}
}

func (l *Lexer) scanIdentifier() Token {
	start := l.pos()
	var sb strings.Builder
	for isIdentCont(rune(l.peekByte())) {
		sb.WriteRune(l.advance())
	}
	end := l.pos()
	lexeme := sb.String()
	span := spanBetween(l.source, start, end)
	if kw, ok := lookupKeyword(lexeme); ok {
		return Token{Kind: kw, Span: span, Lexeme: lexeme}
	}
	return Token{Kind: Ident, Span: span, Lexeme: lexeme}
}

func (l *Lexer) scanOperator() Token {
	start := l.pos()
	b := l.peekByte()

	two := func(second byte, kind2 Kind, kind1 Kind) Token {
		l.advance()
		if l.peekByte() == second {
			l.advance()
			return Token{Kind: kind2, Span: spanBetween(l.source, start, l.pos()), Lexeme: string(b) + string(second)}
		}
		return Token{Kind: kind1, Span: spanBetween(l.source, start, l.pos()), Lexeme: string(b)}
	}

	switch b {
	case '(':
		l.advance()
		return Token{Kind: LParen, Span: spanBetween(l.source, start, l.pos()), Lexeme: "("}
	case ')':
		l.advance()
		return Token{Kind: RParen, Span: spanBetween(l.source, start, l.pos()), Lexeme: ")"}
	case '{':
		l.advance()
		return Token{Kind: LBrace, Span: spanBetween(l.source, start, l.pos()), Lexeme: "{"}
	case '}':
		l.advance()
		return Token{Kind: RBrace, Span: spanBetween(l.source, start, l.pos()), Lexeme: "}"}
	case '[':
		l.advance()
		return Token{Kind: LBracket, Span: spanBetween(l.source, start, l.pos()), Lexeme: "["}
	case ']':
		l.advance()
		return Token{Kind: RBracket, Span: spanBetween(l.source, start, l.pos()), Lexeme: "]"}
	case ',':
		l.advance()
		return Token{Kind: Comma, Span: spanBetween(l.source, start, l.pos()), Lexeme: ","}
	case ';':
		l.advance()
		return Token{Kind: Semicolon, Span: spanBetween(l.source, start, l.pos()), Lexeme: ";"}
	case '.':
		l.advance()
		return Token{Kind: Dot, Span: spanBetween(l.source, start, l.pos()), Lexeme: "."}
	case '+':
		l.advance()
		return Token{Kind: Plus, Span: spanBetween(l.source, start, l.pos()), Lexeme: "+"}
	case '-':
		l.advance()
		return Token{Kind: Minus, Span: spanBetween(l.source, start, l.pos()), Lexeme: "-"}
	case '*':
		l.advance()
		return Token{Kind: Star, Span: spanBetween(l.source, start, l.pos()), Lexeme: "*"}
	case '/':
		l.advance()
		return Token{Kind: Slash, Span: spanBetween(l.source, start, l.pos()), Lexeme: "/"}
	case '%':
		l.advance()
		return Token{Kind: Percent, Span: spanBetween(l.source, start, l.pos()), Lexeme: "%"}
	case '^':
		l.advance()
		return Token{Kind: BitXor, Span: spanBetween(l.source, start, l.pos()), Lexeme: "^"}
	case ':':
		return two('=', Assign, Colon)
	case '=':
		return two('=', Eq, Assign)
	case '!':
		return two('=', NotEq, Not)
	case '<':
		return two('=', LtEq, Lt)
	case '>':
		return two('=', GtEq, Gt)
	case '&':
		return two('&', AndAnd, BitAnd)
	case '|':
		return two('|', OrOr, BitOr)
	default:
		l.advance()
		span := spanBetween(l.source, start, l.pos())
		if l.issues != nil {
			l.issues.Collect(diag.NewIssue(diag.Error, diag.E_SYNTAX,
				fmt.Sprintf("unexpected character %q", rune(b))).
				WithSpan(span).
				Build())
		}
		return Token{Kind: Invalid, Span: span, Lexeme: string(b)}
	}
}

// spanBetween builds a span from two previously captured positions.
func spanBetween(source location.SourceID, start, end location.Position) location.Span {
	if start == end {
		return location.PointWithByte(source, start.Line, start.Column, start.Byte)
	}
	return location.RangeWithBytes(source, start.Line, start.Column, start.Byte, end.Line, end.Column, end.Byte)
}

// parseIntLiteral parses the decimal digits of an IntLit lexeme.
func parseIntLiteral(lexeme string) int64 {
	v, _ := strconv.ParseInt(lexeme, 10, 64)
	return v
}

// parseFloatLiteral parses the digits of a FloatLit lexeme.
func parseFloatLiteral(lexeme string) float64 {
	v, _ := strconv.ParseFloat(lexeme, 64)
	return v
}
