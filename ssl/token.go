package ssl

import "github.com/ssl-lang/ssl-lsp/location"

// Kind identifies the lexical category of a [Token].
type Kind uint8

const (
	// Invalid marks a token that could not be classified.
	Invalid Kind = iota

	EOF
	Ident
	IntLiteral
	FloatLiteral
	StringLiteral
	Directive // raw text of a preprocessor directive line

	// Keywords.
	KwVariable
	KwProcedure
	KwBegin
	KwEnd
	KwIf
	KwThen
	KwElse
	KwWhile
	KwFor
	KwForeach
	KwIn
	KwSwitch
	KwCase
	KwDefault
	KwCall
	KwReturn
	KwBreak
	KwContinue

	// Punctuation and operators.
	LParen
	RParen
	LBrace
	RBrace
	LBracket
	RBracket
	Comma
	Semicolon
	Colon
	Dot

	Assign // :=
	Plus
	Minus
	Star
	Slash
	Percent
	Eq    // ==
	NotEq // !=
	Lt
	LtEq
	Gt
	GtEq
	AndAnd // &&
	OrOr   // ||
	Not    // !
	BitAnd
	BitOr
	BitXor
)

var keywords = map[string]Kind{
	"variable":  KwVariable,
	"procedure": KwProcedure,
	"begin":     KwBegin,
	"end":       KwEnd,
	"if":        KwIf,
	"then":      KwThen,
	"else":      KwElse,
	"while":     KwWhile,
	"for":       KwFor,
	"foreach":   KwForeach,
	"in":        KwIn,
	"switch":    KwSwitch,
	"case":      KwCase,
	"default":   KwDefault,
	"call":      KwCall,
	"return":    KwReturn,
	"break":     KwBreak,
	"continue":  KwContinue,
}

// lookupKeyword promotes an identifier lexeme to its keyword Kind, returning
// (Invalid, false) when lexeme is not a keyword.
func lookupKeyword(lexeme string) (Kind, bool) {
	k, ok := keywords[lexeme]
	return k, ok
}

func (k Kind) String() string {
	switch k {
	case Invalid:
		return "invalid"
	case EOF:
		return "eof"
	case Ident:
		return "identifier"
	case IntLiteral:
		return "int"
	case FloatLiteral:
		return "float"
	case StringLiteral:
		return "string"
	case Directive:
		return "directive"
	case KwVariable:
		return "variable"
	case KwProcedure:
		return "procedure"
	case KwBegin:
		return "begin"
	case KwEnd:
		return "end"
	case KwIf:
		return "if"
	case KwThen:
		return "then"
	case KwElse:
		return "else"
	case KwWhile:
		return "while"
	case KwFor:
		return "for"
	case KwForeach:
		return "foreach"
	case KwIn:
		return "in"
	case KwSwitch:
		return "switch"
	case KwCase:
		return "case"
	case KwDefault:
		return "default"
	case KwCall:
		return "call"
	case KwReturn:
		return "return"
	case KwBreak:
		return "break"
	case KwContinue:
		return "continue"
	case LParen:
		return "("
	case RParen:
		return ")"
	case LBrace:
		return "{"
	case RBrace:
		return "}"
	case LBracket:
		return "["
	case RBracket:
		return "]"
	case Comma:
		return ","
	case Semicolon:
		return ";"
	case Colon:
		return ":"
	case Dot:
		return "."
	case Assign:
		return ":="
	case Plus:
		return "+"
	case Minus:
		return "-"
	case Star:
		return "*"
	case Slash:
		return "/"
	case Percent:
		return "%"
	case Eq:
		return "=="
	case NotEq:
		return "!="
	case Lt:
		return "<"
	case LtEq:
		return "<="
	case Gt:
		return ">"
	case GtEq:
		return ">="
	case AndAnd:
		return "&&"
	case OrOr:
		return "||"
	case Not:
		return "!"
	case BitAnd:
		return "&"
	case BitOr:
		return "|"
	case BitXor:
		return "^"
	default:
		return "?"
	}
}

// IsKeyword reports whether k is one of the reserved SSL keywords.
func (k Kind) IsKeyword() bool {
	return k >= KwVariable && k <= KwContinue
}

// Token is a single lexical unit: its kind, the source span it occupies,
// and its literal text.
type Token struct {
	Kind   Kind
	Span   location.Span
	Lexeme string
}
