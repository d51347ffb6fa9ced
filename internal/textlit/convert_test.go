package textlit

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConvertString(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		out     string
		wantErr bool
	}{
		{name: "plain double", in: `"plain"`, out: "plain"},
		{name: "plain single", in: `'plain'`, out: "plain"},
		{name: "escaped newline", in: `"with\nnewline"`, out: "with\nnewline"},
		{name: "escaped tab", in: `"tab\tend"`, out: "tab\tend"},
		{name: "escaped carriage return", in: `"cr\rend"`, out: "cr\rend"},
		{name: "escaped quote", in: `"quote\"inner"`, out: `quote"inner`},
		{name: "escaped backslash", in: `"backslash\\inner"`, out: `backslash\inner`},
		{name: "escaped nul", in: `"a\0b"`, out: "a\x00b"},
		{name: "mixed escapes", in: `"mixed\"quote\n"`, out: "mixed\"quote\n"},
		{name: "unquoted", in: `unquoted`, out: "unquoted"},
		{name: "invalid escape", in: `"bad\q"`, out: `"bad\q"`, wantErr: true},
		{name: "no unicode escapes", in: `"\u0041"`, out: `"\u0041"`, wantErr: true},
		{name: "unterminated", in: `"unterminated`, out: `"unterminated`, wantErr: true},
		{name: "trailing backslash", in: `"end\"`, out: `"end\"`, wantErr: true},
		{name: "empty double quoted", in: `""`, out: ""},
		{name: "empty single quoted", in: `''`, out: ""},
		{name: "single char double", in: `"a"`, out: "a"},
		{name: "single char single", in: `'a'`, out: "a"},
		{name: "single quote with escape newline", in: `'\n'`, out: "\n"},
		{name: "single quote with escape tab", in: `'\t'`, out: "\t"},
		{name: "single quote with escape backslash", in: `'\\'`, out: "\\"},
		// Boundary case: a lone quote character (len==1) is not a literal.
		{name: "single quote char only", in: `'`, out: `'`},
		// Double quotes need no escaping inside single-quoted strings.
		{name: "single quote with embedded double quote", in: `'He said "hi"'`, out: `He said "hi"`},
		{name: "single quote with multiple double quotes", in: `'"quoted" text "here"'`, out: `"quoted" text "here"`},
		{name: "single quote double quote only", in: `'"'`, out: `"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := ConvertString(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.out, out)
		})
	}
}
