package lsp

import (
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestNewServer(t *testing.T) {
	t.Parallel()

	server := NewServer(testLogger(), Config{WorkspaceRoot: "/test/root"})

	require.NotNil(t, server)
	assert.NotNil(t, server.logger)
	assert.NotNil(t, server.workspace)
	assert.NotNil(t, server.server)
	assert.Equal(t, "/test/root", server.config.WorkspaceRoot)
}

func TestServerClose(t *testing.T) {
	t.Parallel()

	server := NewServer(testLogger(), Config{})

	// Close before RunStdio should be safe (no connection yet), and
	// idempotent.
	assert.NoError(t, server.Close())
	assert.NoError(t, server.Close())
}

func TestInitializeCapabilities(t *testing.T) {
	t.Parallel()

	server := NewServer(testLogger(), Config{})
	result, err := server.Handler().Initialize(nil, &protocol.InitializeParams{})
	require.NoError(t, err)

	init, ok := result.(protocol.InitializeResult)
	require.True(t, ok)

	caps := init.Capabilities
	assert.Equal(t, protocol.TextDocumentSyncKindFull, caps.TextDocumentSync)
	assert.Equal(t, true, caps.DocumentSymbolProvider)
	assert.Equal(t, true, caps.DefinitionProvider)
	assert.Equal(t, true, caps.ReferencesProvider)
	assert.Equal(t, true, caps.HoverProvider)

	require.NotNil(t, caps.CompletionProvider)
	assert.Empty(t, caps.CompletionProvider.TriggerCharacters)

	require.NotNil(t, caps.SignatureHelpProvider)
	assert.Contains(t, caps.SignatureHelpProvider.TriggerCharacters, "(")
	assert.Contains(t, caps.SignatureHelpProvider.TriggerCharacters, ",")

	require.NotNil(t, init.ServerInfo)
	assert.Equal(t, "ssl-lsp", init.ServerInfo.Name)
}

func TestShutdownSetsFlag(t *testing.T) {
	t.Parallel()

	server := NewServer(testLogger(), Config{})
	require.False(t, server.shutdownCalled)
	require.NoError(t, server.Handler().Shutdown(nil))
	assert.True(t, server.shutdownCalled)
}

func TestDidChangeIgnoresStaleVersion(t *testing.T) {
	t.Parallel()

	server := NewServer(testLogger(), Config{})
	h := server.Handler()
	uri := PathToURI("/ws/main.ssl")

	require.NoError(t, h.TextDocumentDidOpen(nil, &protocol.DidOpenTextDocumentParams{
		TextDocument: protocol.TextDocumentItem{URI: uri, LanguageID: "ssl", Version: 3, Text: "variable a;\n"},
	}))

	require.NoError(t, h.TextDocumentDidChange(nil, &protocol.DidChangeTextDocumentParams{
		TextDocument: protocol.VersionedTextDocumentIdentifier{
			TextDocumentIdentifier: protocol.TextDocumentIdentifier{URI: uri},
			Version:                2,
		},
		ContentChanges: []any{protocol.TextDocumentContentChangeEventWhole{Text: "variable stale;\n"}},
	}))

	doc := server.Workspace().GetDocumentSnapshot(uri)
	require.NotNil(t, doc)
	assert.Equal(t, 3, doc.Version)
	assert.Equal(t, "variable a;\n", doc.Text)
}

func TestQueriesOnUnopenedDocumentReturnNoResult(t *testing.T) {
	t.Parallel()

	server := NewServer(testLogger(), Config{})
	h := server.Handler()
	uri := PathToURI("/ws/ghost.ssl")
	posParams := protocol.TextDocumentPositionParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: uri},
		Position:     protocol.Position{Line: 0, Character: 0},
	}

	def, err := h.TextDocumentDefinition(nil, &protocol.DefinitionParams{TextDocumentPositionParams: posParams})
	require.NoError(t, err)
	assert.Nil(t, def)

	hover, err := h.TextDocumentHover(nil, &protocol.HoverParams{TextDocumentPositionParams: posParams})
	require.NoError(t, err)
	assert.Nil(t, hover)

	refs, err := h.TextDocumentReferences(nil, &protocol.ReferenceParams{TextDocumentPositionParams: posParams})
	require.NoError(t, err)
	assert.Empty(t, refs)

	sig, err := h.TextDocumentSignatureHelp(nil, &protocol.SignatureHelpParams{TextDocumentPositionParams: posParams})
	require.NoError(t, err)
	assert.Nil(t, sig)

	syms, err := h.TextDocumentDocumentSymbol(nil, &protocol.DocumentSymbolParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: uri},
	})
	require.NoError(t, err)
	assert.Nil(t, syms)
}
