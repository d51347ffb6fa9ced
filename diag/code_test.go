package diag

import "testing"

func TestCode_String(t *testing.T) {
	tests := []struct {
		code Code
		want string
	}{
		{E_DUPLICATE_PROCEDURE, "E_DUPLICATE_PROCEDURE"},
		{E_SYNTAX, "E_SYNTAX"},
		{E_UNKNOWN_BUILTIN, "E_UNKNOWN_BUILTIN"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.code.String(); got != tt.want {
				t.Errorf("String() = %q; want %q", got, tt.want)
			}
		})
	}
}

func TestCode_Category(t *testing.T) {
	tests := []struct {
		code Code
		want CodeCategory
	}{
		{E_DUPLICATE_PROCEDURE, CategoryBinding},
		{E_UNDECLARED_VARIABLE, CategoryBinding},
		{E_SYNTAX, CategorySyntax},
		{E_UNEXPECTED_TOKEN, CategorySyntax},
		{E_INCLUDE_NOT_FOUND, CategoryPreprocessor},
		{E_MACRO_REDEFINED, CategoryPreprocessor},
		{E_UNKNOWN_BUILTIN, CategoryBuiltin},
		{E_BUILTIN_ARITY, CategoryBuiltin},
	}
	for _, tt := range tests {
		if got := tt.code.Category(); got != tt.want {
			t.Errorf("%s.Category() = %v; want %v", tt.code, got, tt.want)
		}
	}
}

func TestCode_IsZero(t *testing.T) {
	var zero Code
	if !zero.IsZero() {
		t.Error("zero-value Code.IsZero() = false; want true")
	}
	if E_SYNTAX.IsZero() {
		t.Error("E_SYNTAX.IsZero() = true; want false")
	}
}

func TestCodeCategory_String(t *testing.T) {
	tests := []struct {
		cat  CodeCategory
		want string
	}{
		{CategoryPreprocessor, "preprocessor"},
		{CategorySyntax, "syntax"},
		{CategoryBinding, "binding"},
		{CategoryBuiltin, "builtin"},
		{CodeCategory(255), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.cat.String(); got != tt.want {
			t.Errorf("CodeCategory(%d).String() = %q; want %q", tt.cat, got, tt.want)
		}
	}
}

func TestAllCodes_Unique(t *testing.T) {
	codes := AllCodes()
	if len(codes) == 0 {
		t.Fatal("AllCodes() returned no codes")
	}
	seen := make(map[string]bool)
	for _, c := range codes {
		if seen[c.String()] {
			t.Errorf("duplicate code: %s", c)
		}
		seen[c.String()] = true
	}
}

func TestCodesByCategory(t *testing.T) {
	codes := CodesByCategory(CategoryBinding)
	if len(codes) == 0 {
		t.Fatal("CodesByCategory(CategoryBinding) returned no codes")
	}
	for _, c := range codes {
		if c.Category() != CategoryBinding {
			t.Errorf("code %s has category %v; want CategoryBinding", c, c.Category())
		}
	}
}

func TestCodesByCategory_Immutable(t *testing.T) {
	codes1 := CodesByCategory(CategorySyntax)
	codes1[0] = Code{}
	codes2 := CodesByCategory(CategorySyntax)
	if codes2[0].IsZero() {
		t.Error("mutating returned slice affected internal state")
	}
}
