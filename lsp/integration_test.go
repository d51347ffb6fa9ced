package lsp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/ssl-lang/ssl-lsp/lsp/testutil"
)

// newTestHarness builds an in-process server whose #include resolution is
// served from reader, rooted at /ws.
func newTestHarness(t *testing.T, reader memReader) *testutil.Harness {
	t.Helper()
	server := NewServerWithReader(testLogger(), Config{}, reader)
	h := testutil.NewHarness(t, server.Handler(), "/ws")
	require.NoError(t, h.Initialize())
	return h
}

func asLocation(t *testing.T, result any) protocol.Location {
	t.Helper()
	switch v := result.(type) {
	case *protocol.Location:
		require.NotNil(t, v)
		return *v
	case protocol.Location:
		return v
	default:
		t.Fatalf("unexpected definition result type: %T", result)
		return protocol.Location{}
	}
}

func TestDocumentSymbolsHierarchy(t *testing.T) {
	h := newTestHarness(t, memReader{})
	src := "variable count := 0;\n\nprocedure start begin\n    variable localvar;\n    count := 1;\nend\n"
	require.NoError(t, h.OpenDocument("main.ssl", src))

	result, err := h.DocumentSymbols("main.ssl")
	require.NoError(t, err)

	symbols, ok := result.([]protocol.DocumentSymbol)
	require.True(t, ok)
	require.Len(t, symbols, 2)

	assert.Equal(t, "count", symbols[0].Name)
	assert.Equal(t, protocol.SymbolKindVariable, symbols[0].Kind)

	assert.Equal(t, "start", symbols[1].Name)
	assert.Equal(t, protocol.SymbolKindFunction, symbols[1].Kind)
	require.Len(t, symbols[1].Children, 1)
	assert.Equal(t, "localvar", symbols[1].Children[0].Name)
	assert.Equal(t, protocol.SymbolKindVariable, symbols[1].Children[0].Kind)
}

func TestDocumentSymbolsInvalidSourceEmpty(t *testing.T) {
	h := newTestHarness(t, memReader{})
	require.NoError(t, h.OpenDocument("main.ssl", "this is not valid ssl code;\n"))

	result, err := h.DocumentSymbols("main.ssl")
	require.NoError(t, err)

	symbols, ok := result.([]protocol.DocumentSymbol)
	require.True(t, ok)
	assert.Empty(t, symbols)
}

func TestGotoDefinitionProcedure(t *testing.T) {
	h := newTestHarness(t, memReader{})
	src := "variable v0;\n" + // line 0
		"\n" +
		"procedure test begin\n" + // line 2
		"    variable a;\n" +
		"    variable b;\n" +
		"    a := 1;\n" +
		"    b := 2;\n" +
		"end\n" +
		"procedure start begin\n" +
		"    call test;\n" + // line 9, "test" at chars 9-13
		"end\n"
	require.NoError(t, h.OpenDocument("main.ssl", src))

	result, err := h.Definition("main.ssl", 9, 9)
	require.NoError(t, err)
	loc := asLocation(t, result)

	assert.Equal(t, testutil.PathToURI("/ws/main.ssl"), loc.URI)
	assert.Equal(t, protocol.UInteger(2), loc.Range.Start.Line)
	testutil.AssertLocationLine(t, loc, 2)
}

func TestGotoDefinitionVariable(t *testing.T) {
	h := newTestHarness(t, memReader{})
	src := "variable count := 0;\n" + // line 0, "count" at chars 9-14
		"procedure start begin\n" +
		"    count := count + 1;\n" + // line 2
		"end\n"
	require.NoError(t, h.OpenDocument("main.ssl", src))

	// The read on the RHS at line 2, char 13.
	result, err := h.Definition("main.ssl", 2, 13)
	require.NoError(t, err)
	loc := asLocation(t, result)

	testutil.AssertLocationLine(t, loc, 0)
	assert.Equal(t, protocol.UInteger(9), loc.Range.Start.Character)
}

func TestGotoDefinitionNoSymbolUnderCursor(t *testing.T) {
	h := newTestHarness(t, memReader{})
	require.NoError(t, h.OpenDocument("main.ssl", "variable x := 0;\n"))

	// Cursor on whitespace past the statement.
	result, err := h.Definition("main.ssl", 0, 16)
	require.NoError(t, err)
	assert.Nil(t, result)
}

func TestGotoDefinitionAcrossInclude(t *testing.T) {
	reader := memReader{
		"/ws/headers/sfall.h": "#define WORLDMAP 1\n",
	}
	h := newTestHarness(t, reader)
	src := "#include \"headers/sfall.h\"\n" +
		"procedure start begin\n" +
		"    variable m := WORLDMAP;\n" + // line 2, WORLDMAP at chars 18-26
		"end\n"
	require.NoError(t, h.OpenDocument("main.ssl", src))

	result, err := h.Definition("main.ssl", 2, 20)
	require.NoError(t, err)
	loc := asLocation(t, result)

	testutil.AssertLocationURI(t, loc, "headers/sfall.h")
	testutil.AssertLocationLine(t, loc, 0)
}

func TestGotoDefinitionOnIncludePath(t *testing.T) {
	reader := memReader{
		"/ws/headers/sfall.h": "#define WORLDMAP 1\n",
	}
	h := newTestHarness(t, reader)
	require.NoError(t, h.OpenDocument("main.ssl", "#include \"headers/sfall.h\"\n"))

	result, err := h.Definition("main.ssl", 0, 12)
	require.NoError(t, err)
	loc := asLocation(t, result)

	testutil.AssertLocationURI(t, loc, "headers/sfall.h")
	assert.Equal(t, protocol.UInteger(0), loc.Range.Start.Line)
	assert.Equal(t, protocol.UInteger(0), loc.Range.End.Line)
}

func TestFindReferencesProcedure(t *testing.T) {
	h := newTestHarness(t, memReader{})
	src := "procedure test begin\nend\n" + // decl on line 0
		"procedure start begin\n" +
		"    call test;\n" + // line 3
		"    call test;\n" + // line 4
		"end\n"
	require.NoError(t, h.OpenDocument("main.ssl", src))

	refs, err := h.References("main.ssl", 3, 10, false)
	require.NoError(t, err)
	require.Len(t, refs, 2)
	assert.Equal(t, protocol.UInteger(3), refs[0].Range.Start.Line)
	assert.Equal(t, protocol.UInteger(4), refs[1].Range.Start.Line)

	// includeDeclaration adds the declaration site first.
	refs, err = h.References("main.ssl", 3, 10, true)
	require.NoError(t, err)
	require.Len(t, refs, 3)
	assert.Equal(t, protocol.UInteger(0), refs[0].Range.Start.Line)
}

func TestFindReferencesVariableFromDeclaration(t *testing.T) {
	h := newTestHarness(t, memReader{})
	src := "variable count := 0;\n" +
		"procedure start begin\n" +
		"    count := count + 1;\n" +
		"end\n"
	require.NoError(t, h.OpenDocument("main.ssl", src))

	// Cursor on the declaration name itself.
	refs, err := h.References("main.ssl", 0, 10, false)
	require.NoError(t, err)
	assert.Len(t, refs, 2)
}

func TestCompletionBuiltins(t *testing.T) {
	h := newTestHarness(t, memReader{})
	src := "procedure start begin\n    rand\nend\n"
	require.NoError(t, h.OpenDocument("main.ssl", src))

	result, err := h.Completion("main.ssl", 1, 8)
	require.NoError(t, err)
	testutil.AssertCompletionContains(t, result, "random")

	items, ok := result.([]protocol.CompletionItem)
	require.True(t, ok)
	for _, item := range items {
		if item.Label == "random" {
			require.NotNil(t, item.Kind)
			assert.Equal(t, protocol.CompletionItemKindFunction, *item.Kind)
			require.NotNil(t, item.Detail)
			assert.NotEmpty(t, *item.Detail)
		}
	}
}

func TestCompletionUserSymbolsAndKinds(t *testing.T) {
	reader := memReader{
		"/ws/defs.h": "#define DMG_FIRE 4\n#define DMG_BONUS(x) x\n",
	}
	h := newTestHarness(t, reader)
	src := "#include \"defs.h\"\n" +
		"variable damage := 0;\n" +
		"procedure deal_damage begin\n" +
		"    variable dmult;\n" +
		"    d\n" + // line 4, cursor after "d" at char 5
		"    DM\n" + // line 5, cursor after "DM" at char 6
		"end\n"
	require.NoError(t, h.OpenDocument("main.ssl", src))

	result, err := h.Completion("main.ssl", 4, 5)
	require.NoError(t, err)

	testutil.AssertCompletionContains(t, result, "damage")
	testutil.AssertCompletionContains(t, result, "dmult")
	testutil.AssertCompletionContains(t, result, "deal_damage")
	testutil.AssertCompletionContains(t, result, "display_msg")

	items := result.([]protocol.CompletionItem)
	kinds := make(map[string]protocol.CompletionItemKind)
	for _, item := range items {
		if item.Kind != nil {
			kinds[item.Label] = *item.Kind
		}
	}
	assert.Equal(t, protocol.CompletionItemKindVariable, kinds["damage"])
	assert.Equal(t, protocol.CompletionItemKindVariable, kinds["dmult"])
	assert.Equal(t, protocol.CompletionItemKindFunction, kinds["deal_damage"])

	// Include-closure defines, with object-like and function-like defines
	// mapped to distinct completion kinds.
	result, err = h.Completion("main.ssl", 5, 6)
	require.NoError(t, err)
	testutil.AssertCompletionContains(t, result, "DMG_FIRE")
	testutil.AssertCompletionContains(t, result, "DMG_BONUS")

	items = result.([]protocol.CompletionItem)
	kinds = make(map[string]protocol.CompletionItemKind)
	for _, item := range items {
		if item.Kind != nil {
			kinds[item.Label] = *item.Kind
		}
	}
	assert.Equal(t, protocol.CompletionItemKindConstant, kinds["DMG_FIRE"])
	assert.Equal(t, protocol.CompletionItemKindFunction, kinds["DMG_BONUS"])
}

func TestCompletionNoPrefixEmpty(t *testing.T) {
	h := newTestHarness(t, memReader{})
	src := "procedure start begin\n    \nend\n"
	require.NoError(t, h.OpenDocument("main.ssl", src))

	result, err := h.Completion("main.ssl", 1, 4)
	require.NoError(t, err)

	items, ok := result.([]protocol.CompletionItem)
	require.True(t, ok)
	assert.Empty(t, items)
}

func TestCompletionPrefixIsCaseSensitive(t *testing.T) {
	h := newTestHarness(t, memReader{})
	src := "variable Count;\nvariable count;\nprocedure p begin\n    Cou\nend\n"
	require.NoError(t, h.OpenDocument("main.ssl", src))

	result, err := h.Completion("main.ssl", 3, 7)
	require.NoError(t, err)
	testutil.AssertCompletionContains(t, result, "Count")
	testutil.AssertCompletionNotContains(t, result, "count")
}

func TestCompletionLocalShadowsGlobal(t *testing.T) {
	h := newTestHarness(t, memReader{})
	src := "variable item;\n" +
		"procedure p begin\n" +
		"    variable item;\n" +
		"    it\n" +
		"end\n"
	require.NoError(t, h.OpenDocument("main.ssl", src))

	result, err := h.Completion("main.ssl", 3, 6)
	require.NoError(t, err)

	items := result.([]protocol.CompletionItem)
	var seen int
	for _, item := range items {
		if item.Label == "item" {
			seen++
			require.NotNil(t, item.Detail)
		}
	}
	assert.Equal(t, 1, seen, "deduplicated by name, nearest scope wins")
}

func TestHoverDefine(t *testing.T) {
	reader := memReader{
		"/ws/headers/sfall.h": "#define WORLDMAP 1\n",
	}
	h := newTestHarness(t, reader)
	src := "#include \"headers/sfall.h\"\n" +
		"#define LOCAL_DEF 42\n" +
		"procedure start begin\n" +
		"    variable a := LOCAL_DEF;\n" + // line 3
		"    variable b := WORLDMAP;\n" + // line 4
		"end\n"
	require.NoError(t, h.OpenDocument("main.ssl", src))

	hover, err := h.Hover("main.ssl", 3, 20)
	require.NoError(t, err)
	testutil.AssertHoverContains(t, hover, "#define LOCAL_DEF 42")
	testutil.AssertHoverContains(t, hover, "current file")
	testutil.AssertHoverKind(t, hover, protocol.MarkupKindMarkdown)

	hover, err = h.Hover("main.ssl", 4, 20)
	require.NoError(t, err)
	testutil.AssertHoverContains(t, hover, "#define WORLDMAP 1")
	testutil.AssertHoverContains(t, hover, "sfall.h")
}

func TestHoverBuiltinAndProcedure(t *testing.T) {
	h := newTestHarness(t, memReader{})
	src := "procedure heal(target, amount) begin\nend\n" +
		"procedure start begin\n" +
		"    call heal;\n" + // line 3
		"    random(1, 5);\n" + // line 4
		"end\n"
	require.NoError(t, h.OpenDocument("main.ssl", src))

	hover, err := h.Hover("main.ssl", 3, 10)
	require.NoError(t, err)
	testutil.AssertHoverContains(t, hover, "procedure heal(target, amount)")

	hover, err = h.Hover("main.ssl", 4, 6)
	require.NoError(t, err)
	testutil.AssertHoverContains(t, hover, "random")
}

func TestHoverNoSymbol(t *testing.T) {
	h := newTestHarness(t, memReader{})
	require.NoError(t, h.OpenDocument("main.ssl", "variable x := 0;\n"))

	hover, err := h.Hover("main.ssl", 0, 15)
	require.NoError(t, err)
	assert.Nil(t, hover)
}

func TestSignatureHelpBuiltin(t *testing.T) {
	h := newTestHarness(t, memReader{})
	src := "procedure start begin\n" +
		"    random(1, \n" + // cursor after the comma
		"end\n"
	require.NoError(t, h.OpenDocument("main.ssl", src))

	help, err := h.SignatureHelp("main.ssl", 1, 14)
	require.NoError(t, err)
	testutil.AssertSignatureLabelContains(t, help, "random")
	testutil.AssertSignatureActiveParameter(t, help, 1)
	require.Len(t, help.Signatures, 1)
	assert.Len(t, help.Signatures[0].Parameters, 2)
}

func TestSignatureHelpUserProcedure(t *testing.T) {
	h := newTestHarness(t, memReader{})
	src := "procedure heal(target, amount, reason) begin\nend\n" +
		"procedure start begin\n" +
		"    call heal(1, 2, \n" + // line 3
		"end\n"
	require.NoError(t, h.OpenDocument("main.ssl", src))

	help, err := h.SignatureHelp("main.ssl", 3, 20)
	require.NoError(t, err)
	testutil.AssertSignatureLabelContains(t, help, "heal")
	testutil.AssertSignatureActiveParameter(t, help, 2)
}

func TestSignatureHelpNestedCall(t *testing.T) {
	h := newTestHarness(t, memReader{})
	src := "procedure start begin\n" +
		"    display_msg(random(1, 2), \n" + // line 1
		"end\n"
	require.NoError(t, h.OpenDocument("main.ssl", src))

	// After the closing paren of random(...), the enclosing unmatched `(`
	// belongs to display_msg; one top-level comma has passed.
	help, err := h.SignatureHelp("main.ssl", 1, 30)
	require.NoError(t, err)
	testutil.AssertSignatureLabelContains(t, help, "display_msg")
	testutil.AssertSignatureActiveParameter(t, help, 1)

	// Inside random's own parentheses, random is the active call.
	help, err = h.SignatureHelp("main.ssl", 1, 25)
	require.NoError(t, err)
	testutil.AssertSignatureLabelContains(t, help, "random")
	testutil.AssertSignatureActiveParameter(t, help, 1)
}

func TestSignatureHelpNoEnclosingCall(t *testing.T) {
	h := newTestHarness(t, memReader{})
	require.NoError(t, h.OpenDocument("main.ssl", "variable x := 0;\n"))

	help, err := h.SignatureHelp("main.ssl", 0, 10)
	require.NoError(t, err)
	assert.Nil(t, help)
}

func TestChangeDocumentReflectsInQueries(t *testing.T) {
	h := newTestHarness(t, memReader{})
	require.NoError(t, h.OpenDocument("main.ssl", "variable first;\n"))
	require.NoError(t, h.ChangeDocument("main.ssl", "variable second;\nprocedure start begin\nend\n", 2))

	result, err := h.DocumentSymbols("main.ssl")
	require.NoError(t, err)
	testutil.AssertDocumentSymbolExists(t, result, "second")
	testutil.AssertDocumentSymbolExists(t, result, "start")
}

func TestCloseDocumentDropsQueries(t *testing.T) {
	h := newTestHarness(t, memReader{})
	require.NoError(t, h.OpenDocument("main.ssl", "variable x;\n"))
	require.NoError(t, h.CloseDocument("main.ssl"))

	result, err := h.DocumentSymbols("main.ssl")
	require.NoError(t, err)
	assert.Nil(t, result)
}
