package ssl

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ssl-lang/ssl-lsp/diag"
	"github.com/ssl-lang/ssl-lsp/location"
)

func testSource() location.SourceID {
	return location.MustNewSourceID("test://lexer.ssl")
}

func kinds(tokens []Token) []Kind {
	out := make([]Kind, len(tokens))
	for i, t := range tokens {
		out[i] = t.Kind
	}
	return out
}

func TestTokenizeKeywordsAndIdentifiers(t *testing.T) {
	src := "variable x; procedure start begin call foo; end"
	toks := NewLexer(testSource(), []byte(src), nil).Tokenize()
	assert.Equal(t, []Kind{
		KwVariable, Ident, Semicolon,
		KwProcedure, Ident, KwBegin,
		KwCall, Ident, Semicolon,
		KwEnd, EOF,
	}, kinds(toks))
}

func TestTokenizeIntAndFloatLiterals(t *testing.T) {
	toks := NewLexer(testSource(), []byte("42 3.14 1e10 2.5e-3"), nil).Tokenize()
	require.Len(t, toks, 5)
	assert.Equal(t, IntLiteral, toks[0].Kind)
	assert.Equal(t, "42", toks[0].Lexeme)
	assert.Equal(t, FloatLiteral, toks[1].Kind)
	assert.Equal(t, FloatLiteral, toks[2].Kind)
	assert.Equal(t, FloatLiteral, toks[3].Kind)
}

func TestTokenizeStringLiteral(t *testing.T) {
	toks := NewLexer(testSource(), []byte(`"hello \"world\""`), nil).Tokenize()
	require.Len(t, toks, 2)
	assert.Equal(t, StringLiteral, toks[0].Kind)
	assert.Equal(t, `hello "world"`, toks[0].Lexeme)
}

func TestTokenizeUnterminatedStringEmitsWarning(t *testing.T) {
	collector := diag.NewCollectorUnlimited()
	toks := NewLexer(testSource(), []byte("\"oops\nvariable x;"), collector).Tokenize()
	require.NotEmpty(t, toks)
	assert.Equal(t, StringLiteral, toks[0].Kind)

	result := collector.Result()
	require.Equal(t, 1, result.Len())
	issue := result.IssuesSlice()[0]
	assert.Equal(t, diag.Warning, issue.Severity())
	assert.Equal(t, diag.E_UNTERMINATED_STRING, issue.Code())
}

func TestTokenizeLineAndBlockComments(t *testing.T) {
	src := "variable x; // trailing\n/* block\ncomment */ variable y;"
	toks := NewLexer(testSource(), []byte(src), nil).Tokenize()
	assert.Equal(t, []Kind{
		KwVariable, Ident, Semicolon,
		KwVariable, Ident, Semicolon,
		EOF,
	}, kinds(toks))
}

func TestTokenizeOperators(t *testing.T) {
	toks := NewLexer(testSource(), []byte(":= == != <= >= && || ! & | ^ + - * / %"), nil).Tokenize()
	assert.Equal(t, []Kind{
		Assign, Eq, NotEq, LtEq, GtEq, AndAnd, OrOr, Not, BitAnd, BitOr, BitXor,
		Plus, Minus, Star, Slash, Percent, EOF,
	}, kinds(toks))
}

func TestTokenizeDirectiveCapturesLogicalLine(t *testing.T) {
	src := "#define FOO 1\nvariable x;"
	toks := NewLexer(testSource(), []byte(src), nil).Tokenize()
	require.GreaterOrEqual(t, len(toks), 2)
	assert.Equal(t, Directive, toks[0].Kind)
	assert.Equal(t, "#define FOO 1", toks[0].Lexeme)
}

func TestTokenizeDirectiveWithContinuation(t *testing.T) {
	src := "#define FOO 1 + \\\n2\n"
	toks := NewLexer(testSource(), []byte(src), nil).Tokenize()
	require.Equal(t, Directive, toks[0].Kind)
	assert.Contains(t, toks[0].Lexeme, "FOO")
	assert.Contains(t, toks[0].Lexeme, "2")
}

func TestPositionsAreOneBasedAndTrackLines(t *testing.T) {
	src := "variable x;\nvariable y;"
	toks := NewLexer(testSource(), []byte(src), nil).Tokenize()
	// "variable" on line 1
	assert.Equal(t, 1, toks[0].Span.Start.Line)
	assert.Equal(t, 1, toks[0].Span.Start.Column)
	// second "variable" on line 2
	var secondVar Token
	count := 0
	for _, tok := range toks {
		if tok.Kind == KwVariable {
			count++
			if count == 2 {
				secondVar = tok
			}
		}
	}
	assert.Equal(t, 2, secondVar.Span.Start.Line)
	assert.Equal(t, 1, secondVar.Span.Start.Column)
}
