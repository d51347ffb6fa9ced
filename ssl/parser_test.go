package ssl

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ssl-lang/ssl-lsp/diag"
)

func parseSrc(t *testing.T, src string) (*TranslationUnit, diag.Result) {
	t.Helper()
	collector := diag.NewCollectorUnlimited()
	tu := Parse(testSource(), []byte(src), collector)
	return tu, collector.Result()
}

func TestParseSimpleProgram(t *testing.T) {
	src := "variable x := 0;\n\nprocedure start begin\n    variable localvar;\n    x := 1;\nend\n"
	tu, result := parseSrc(t, src)
	assert.True(t, result.OK())
	require.Len(t, tu.Decls, 2)

	v, ok := tu.Decls[0].(*VariableDecl)
	require.True(t, ok)
	assert.Equal(t, "x", v.Name)
	require.NotNil(t, v.Initializer)

	proc, ok := tu.Decls[1].(*ProcedureDecl)
	require.True(t, ok)
	assert.Equal(t, "start", proc.Name)
	require.Len(t, proc.Body.Stmts, 2)
}

func TestParseProcedureWithParameters(t *testing.T) {
	src := "procedure add(a, b) begin\n    return a + b;\nend\n"
	tu, result := parseSrc(t, src)
	assert.True(t, result.OK())
	require.Len(t, tu.Decls, 1)

	proc := tu.Decls[0].(*ProcedureDecl)
	require.Len(t, proc.Params, 2)
	assert.Equal(t, "a", proc.Params[0].Name)
	assert.Equal(t, "b", proc.Params[1].Name)

	ret, ok := proc.Body.Stmts[0].(*ReturnStmt)
	require.True(t, ok)
	bin, ok := ret.Value.(*BinaryExpr)
	require.True(t, ok)
	assert.Equal(t, Plus, bin.Op)
}

func TestParseCallStatement(t *testing.T) {
	src := "procedure test begin\nend\n\nprocedure start begin\n    call test;\nend\n"
	tu, result := parseSrc(t, src)
	assert.True(t, result.OK())
	require.Len(t, tu.Decls, 2)

	start := tu.Decls[1].(*ProcedureDecl)
	require.Len(t, start.Body.Stmts, 1)
	callStmt, ok := start.Body.Stmts[0].(*CallStmt)
	require.True(t, ok)
	assert.Equal(t, "test", callStmt.Callee.Name)
}

func TestParseControlFlow(t *testing.T) {
	src := `procedure test begin
    if x > 0 then begin
        call a;
    end else begin
        call b;
    end
    while x > 0 begin
        x := x - 1;
    end
    for (variable i := 0; i < 10; i := i + 1) begin
        call noop;
    end
end
`
	tu, result := parseSrc(t, src)
	assert.True(t, result.OK())
	require.Len(t, tu.Decls, 1)
	proc := tu.Decls[0].(*ProcedureDecl)
	require.Len(t, proc.Body.Stmts, 3)

	ifStmt, ok := proc.Body.Stmts[0].(*IfStmt)
	require.True(t, ok)
	require.NotNil(t, ifStmt.Else)

	_, ok = proc.Body.Stmts[1].(*WhileStmt)
	assert.True(t, ok)

	_, ok = proc.Body.Stmts[2].(*ForStmt)
	assert.True(t, ok)
}

func TestParseSwitchStatement(t *testing.T) {
	src := `procedure test begin
    switch (x) {
        case 1:
            call a;
        case 2, 3:
            call b;
        default:
            call c;
    }
end
`
	tu, result := parseSrc(t, src)
	assert.True(t, result.OK())
	proc := tu.Decls[0].(*ProcedureDecl)
	sw, ok := proc.Body.Stmts[0].(*SwitchStmt)
	require.True(t, ok)
	require.Len(t, sw.Cases, 3)
	assert.Len(t, sw.Cases[1].Values, 2)
	assert.True(t, sw.Cases[2].IsDefault)
}

func TestParseDefineObjectLike(t *testing.T) {
	src := "#define MAX_HP 100\n"
	tu, result := parseSrc(t, src)
	assert.True(t, result.OK())
	require.Len(t, tu.Decls, 1)
	d := tu.Decls[0].(*DefineDecl)
	assert.Equal(t, "MAX_HP", d.Name)
	assert.False(t, d.IsFunctionLike())
	assert.Equal(t, "100", d.Replacement)
}

func TestParseDefineFunctionLike(t *testing.T) {
	src := "#define SQUARE(x) ((x) * (x))\n"
	tu, _ := parseSrc(t, src)
	require.Len(t, tu.Decls, 1)
	d := tu.Decls[0].(*DefineDecl)
	assert.True(t, d.IsFunctionLike())
	assert.Equal(t, []string{"x"}, d.Params)
}

func TestParseInclude(t *testing.T) {
	src := "#include \"headers/sfall.h\"\n"
	tu, result := parseSrc(t, src)
	assert.True(t, result.OK())
	require.Len(t, tu.Decls, 1)
	inc := tu.Decls[0].(*IncludeDirective)
	assert.Equal(t, "headers/sfall.h", inc.Path)
}

func TestParseInvalidSSLProducesEmptyDecls(t *testing.T) {
	tu, result := parseSrc(t, "this is not valid ssl code;\n")
	assert.False(t, result.OK())
	assert.Empty(t, tu.Decls)
}

func TestParseErrorRecoveryContinuesToNextProcedure(t *testing.T) {
	src := "procedure broken begin\n    x :=;\nend\n\nprocedure ok begin\nend\n"
	tu, result := parseSrc(t, src)
	assert.False(t, result.OK())
	require.Len(t, tu.Decls, 2)
	assert.Equal(t, "broken", tu.Decls[0].(*ProcedureDecl).Name)
	assert.Equal(t, "ok", tu.Decls[1].(*ProcedureDecl).Name)
}

func TestParseSelectionSpanCoversOnlyIdentifier(t *testing.T) {
	tu, _ := parseSrc(t, "procedure start begin\nend\n")
	proc := tu.Decls[0].(*ProcedureDecl)
	assert.NotEqual(t, proc.Sp, proc.NameSpan)
	assert.Equal(t, proc.NameSpan.Start.Column, 11) // "procedure " is 10 chars
}
