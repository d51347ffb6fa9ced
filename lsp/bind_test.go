package lsp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

// diagnosticCodes runs the full pipeline over src (with headers served
// from reader) and returns the code of every published diagnostic.
func diagnosticCodes(t *testing.T, reader memReader, src string) []string {
	t.Helper()
	a := NewAnalyzer(nil, reader)
	snap := a.Analyze(entryID(t), src, 1, nil)

	var codes []string
	for _, ud := range snap.LSPDiagnostics {
		require.NotNil(t, ud.Diagnostic.Code)
		codes = append(codes, ud.Diagnostic.Code.Value.(string))
	}
	return codes
}

func TestBindCleanProgramNoWarnings(t *testing.T) {
	src := "#define MAX_HP 100\n" +
		"variable count := 0;\n" +
		"procedure helper(amount) begin\n" +
		"    count := count + amount;\n" +
		"end\n" +
		"procedure start begin\n" +
		"    variable hp := MAX_HP;\n" +
		"    call helper(hp);\n" +
		"    display_msg(\"ready\");\n" +
		"end\n"
	assert.Empty(t, diagnosticCodes(t, memReader{}, src))
}

func TestBindUndeclaredProcedure(t *testing.T) {
	src := "procedure start begin\n    call missing_proc;\nend\n"
	codes := diagnosticCodes(t, memReader{}, src)
	assert.Equal(t, []string{"E_UNDECLARED_PROCEDURE"}, codes)
}

func TestBindCallStatementToBuiltinIsQuiet(t *testing.T) {
	src := "procedure start begin\n    call display_msg;\nend\n"
	assert.Empty(t, diagnosticCodes(t, memReader{}, src))
}

func TestBindUndeclaredVariable(t *testing.T) {
	src := "procedure start begin\n    nowhere := 1;\nend\n"
	codes := diagnosticCodes(t, memReader{}, src)
	assert.Equal(t, []string{"E_UNDECLARED_VARIABLE"}, codes)
}

func TestBindResolutionThroughInclude(t *testing.T) {
	reader := memReader{
		"/ws/defs.h": "#define WORLDMAP 1\nvariable shared;\nprocedure from_header begin\nend\n",
	}
	src := "#include \"defs.h\"\n" +
		"procedure start begin\n" +
		"    shared := WORLDMAP;\n" +
		"    call from_header;\n" +
		"end\n"
	assert.Empty(t, diagnosticCodes(t, reader, src))
}

func TestBindUnknownCallExpression(t *testing.T) {
	src := "procedure start begin\n    variable x := mystery_op(1);\nend\n"
	codes := diagnosticCodes(t, memReader{}, src)
	assert.Equal(t, []string{"E_UNKNOWN_BUILTIN"}, codes)
}

func TestBindBuiltinArity(t *testing.T) {
	src := "procedure start begin\n    variable x := random(1);\nend\n"
	codes := diagnosticCodes(t, memReader{}, src)
	assert.Equal(t, []string{"E_BUILTIN_ARITY"}, codes)

	src = "procedure start begin\n    variable x := random(1, 5);\nend\n"
	assert.Empty(t, diagnosticCodes(t, memReader{}, src))
}

func TestBindMacroArity(t *testing.T) {
	src := "#define CLAMP(v, lo, hi) v\n" +
		"procedure start begin\n" +
		"    variable x := CLAMP(1);\n" +
		"end\n"
	codes := diagnosticCodes(t, memReader{}, src)
	assert.Equal(t, []string{"E_MACRO_ARITY"}, codes)

	src = "#define CLAMP(v, lo, hi) v\n" +
		"procedure start begin\n" +
		"    variable x := CLAMP(1, 0, 10);\n" +
		"end\n"
	assert.Empty(t, diagnosticCodes(t, memReader{}, src))
}

func TestBindDuplicateDeclarations(t *testing.T) {
	cases := []struct {
		name string
		src  string
		want string
	}{
		{
			name: "procedure",
			src:  "procedure start begin\nend\nprocedure start begin\nend\n",
			want: "E_DUPLICATE_PROCEDURE",
		},
		{
			name: "global",
			src:  "variable g;\nvariable g;\n",
			want: "E_DUPLICATE_VARIABLE",
		},
		{
			name: "parameter",
			src:  "procedure p(a, a) begin\nend\n",
			want: "E_DUPLICATE_PARAMETER",
		},
		{
			name: "local vs parameter",
			src:  "procedure p(a) begin\n    variable a;\nend\n",
			want: "E_DUPLICATE_VARIABLE",
		},
		{
			name: "macro",
			src:  "#define X 1\n#define X 2\n",
			want: "E_MACRO_REDEFINED",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			codes := diagnosticCodes(t, memReader{}, tc.src)
			assert.Equal(t, []string{tc.want}, codes)
		})
	}
}

func TestBindDuplicateCarriesRelatedInfo(t *testing.T) {
	a := NewAnalyzer(nil, memReader{})
	snap := a.Analyze(entryID(t), "variable g;\nvariable g;\n", 1, nil)

	require.Len(t, snap.LSPDiagnostics, 1)
	d := snap.LSPDiagnostics[0].Diagnostic
	assert.Equal(t, protocol.UInteger(1), d.Range.Start.Line, "warning lands on the later declaration")
	require.Len(t, d.RelatedInformation, 1)
	assert.Equal(t, "previous definition here", d.RelatedInformation[0].Message)
	assert.Equal(t, protocol.UInteger(0), d.RelatedInformation[0].Location.Range.Start.Line)
}

func TestBindShadowingIsNotDuplicate(t *testing.T) {
	// Cross-namespace reuse is shadowing, resolved later-wins, not an error.
	cases := []string{
		"variable item;\nprocedure item begin\nend\n",
		"#define item 1\nvariable item;\n",
		"variable item;\nprocedure p begin\n    variable item;\n    item := 1;\nend\n",
	}
	for _, src := range cases {
		assert.Empty(t, diagnosticCodes(t, memReader{}, src), "source: %s", src)
	}
}

func TestBindCrossFileRedefinitionIsQuiet(t *testing.T) {
	reader := memReader{
		"/ws/a.h": "#define DUP 1\nvariable both;\n",
		"/ws/b.h": "#define DUP 2\nvariable both;\n",
	}
	src := "#include \"a.h\"\n#include \"b.h\"\n"
	assert.Empty(t, diagnosticCodes(t, reader, src))
}

func TestBindWarningsAreSeverityWarning(t *testing.T) {
	a := NewAnalyzer(nil, memReader{})
	snap := a.Analyze(entryID(t), "procedure start begin\n    call missing_proc;\nend\n", 1, nil)

	require.Len(t, snap.LSPDiagnostics, 1)
	d := snap.LSPDiagnostics[0].Diagnostic
	require.NotNil(t, d.Severity)
	assert.Equal(t, protocol.DiagnosticSeverityWarning, *d.Severity)
}
