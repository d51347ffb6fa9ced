// Package testutil provides integration testing utilities for the SSL LSP.
package testutil

import (
	"net/url"
	"path/filepath"
	"runtime"
	"testing"

	protocol "github.com/tliron/glsp/protocol_3_16"
)

// PathToURI converts a filesystem path to a file:// URI.
// This is a local copy to avoid import cycles with the lsp package.
// It matches the behavior of lsp.PathToURI including Windows support.
// Exported for equivalence testing with lsp.PathToURI.
func PathToURI(path string) string {
	// Ensure absolute path
	if !filepath.IsAbs(path) {
		absPath, err := filepath.Abs(path)
		if err == nil {
			path = absPath
		}
	}

	// Normalize to forward slashes for URI path
	uriPath := filepath.ToSlash(path)

	// Windows: prepend leading slash for drive letters (C:/path → /C:/path)
	if runtime.GOOS == "windows" && len(uriPath) >= 2 && uriPath[1] == ':' && isWindowsDriveLetter(uriPath[0]) {
		uriPath = "/" + uriPath
	}

	// Use url.URL to properly escape the path
	u := url.URL{
		Scheme: "file",
		Path:   uriPath,
	}
	return u.String()
}

// isWindowsDriveLetter reports whether c is a valid Windows drive letter (A-Z or a-z).
func isWindowsDriveLetter(c byte) bool {
	return (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z')
}

// Harness provides an in-process LSP server for integration testing.
// It drives the protocol handler directly, without a transport.
type Harness struct {
	t       *testing.T
	handler *protocol.Handler

	// Root path for the test workspace
	Root string
}

// NewHarness creates a new test harness with the given handler.
func NewHarness(t *testing.T, handler *protocol.Handler, root string) *Harness {
	t.Helper()

	return &Harness{
		t:       t,
		handler: handler,
		Root:    root,
	}
}

// Initialize performs the LSP initialization handshake.
func (h *Harness) Initialize() error {
	h.t.Helper()

	rootURI := PathToURI(h.Root)
	params := &protocol.InitializeParams{
		RootURI: &rootURI,
		Capabilities: protocol.ClientCapabilities{
			TextDocument: &protocol.TextDocumentClientCapabilities{
				Synchronization: &protocol.TextDocumentSyncClientCapabilities{},
				Hover:           &protocol.HoverClientCapabilities{},
				Completion:      &protocol.CompletionClientCapabilities{},
				Definition:      &protocol.DefinitionClientCapabilities{},
				References:      &protocol.ReferenceClientCapabilities{},
				DocumentSymbol:  &protocol.DocumentSymbolClientCapabilities{},
				SignatureHelp:   &protocol.SignatureHelpClientCapabilities{},
			},
		},
	}

	_, err := h.handler.Initialize(nil, params)
	if err != nil {
		return err //nolint:wrapcheck // test utility
	}

	return h.handler.Initialized(nil, &protocol.InitializedParams{}) //nolint:wrapcheck // test utility
}

// abs resolves path against the harness root when it is relative.
func (h *Harness) abs(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(h.Root, path)
}

// OpenDocument opens a document with the given content.
func (h *Harness) OpenDocument(path, content string) error {
	h.t.Helper()

	return h.handler.TextDocumentDidOpen(nil, &protocol.DidOpenTextDocumentParams{ //nolint:wrapcheck // test utility
		TextDocument: protocol.TextDocumentItem{
			URI:        PathToURI(h.abs(path)),
			LanguageID: "ssl",
			Version:    1,
			Text:       content,
		},
	})
}

// ChangeDocument sends a full-text document change notification.
func (h *Harness) ChangeDocument(path, content string, version int) error {
	h.t.Helper()

	return h.handler.TextDocumentDidChange(nil, &protocol.DidChangeTextDocumentParams{ //nolint:wrapcheck // test utility
		TextDocument: protocol.VersionedTextDocumentIdentifier{
			TextDocumentIdentifier: protocol.TextDocumentIdentifier{
				URI: PathToURI(h.abs(path)),
			},
			Version: protocol.Integer(version), //nolint:gosec // test utility, version is always small
		},
		ContentChanges: []any{
			protocol.TextDocumentContentChangeEventWhole{
				Text: content,
			},
		},
	})
}

// CloseDocument closes a document.
func (h *Harness) CloseDocument(path string) error {
	h.t.Helper()

	return h.handler.TextDocumentDidClose(nil, &protocol.DidCloseTextDocumentParams{ //nolint:wrapcheck // test utility
		TextDocument: protocol.TextDocumentIdentifier{
			URI: PathToURI(h.abs(path)),
		},
	})
}

// Hover requests hover information at the given position.
func (h *Harness) Hover(path string, line, char int) (*protocol.Hover, error) {
	h.t.Helper()

	return h.handler.TextDocumentHover(nil, &protocol.HoverParams{ //nolint:wrapcheck // test utility
		TextDocumentPositionParams: h.positionParams(path, line, char),
	})
}

// Definition requests go-to-definition at the given position.
func (h *Harness) Definition(path string, line, char int) (any, error) {
	h.t.Helper()

	return h.handler.TextDocumentDefinition(nil, &protocol.DefinitionParams{ //nolint:wrapcheck // test utility
		TextDocumentPositionParams: h.positionParams(path, line, char),
	})
}

// References requests find-references at the given position.
func (h *Harness) References(path string, line, char int, includeDeclaration bool) ([]protocol.Location, error) {
	h.t.Helper()

	return h.handler.TextDocumentReferences(nil, &protocol.ReferenceParams{ //nolint:wrapcheck // test utility
		TextDocumentPositionParams: h.positionParams(path, line, char),
		Context: protocol.ReferenceContext{
			IncludeDeclaration: includeDeclaration,
		},
	})
}

// Completion requests completion items at the given position.
func (h *Harness) Completion(path string, line, char int) (any, error) {
	h.t.Helper()

	return h.handler.TextDocumentCompletion(nil, &protocol.CompletionParams{ //nolint:wrapcheck // test utility
		TextDocumentPositionParams: h.positionParams(path, line, char),
	})
}

// SignatureHelp requests signature help at the given position.
func (h *Harness) SignatureHelp(path string, line, char int) (*protocol.SignatureHelp, error) {
	h.t.Helper()

	return h.handler.TextDocumentSignatureHelp(nil, &protocol.SignatureHelpParams{ //nolint:wrapcheck // test utility
		TextDocumentPositionParams: h.positionParams(path, line, char),
	})
}

// DocumentSymbols requests document symbols.
func (h *Harness) DocumentSymbols(path string) (any, error) {
	h.t.Helper()

	return h.handler.TextDocumentDocumentSymbol(nil, &protocol.DocumentSymbolParams{ //nolint:wrapcheck // test utility
		TextDocument: protocol.TextDocumentIdentifier{
			URI: PathToURI(h.abs(path)),
		},
	})
}

func (h *Harness) positionParams(path string, line, char int) protocol.TextDocumentPositionParams {
	return protocol.TextDocumentPositionParams{
		TextDocument: protocol.TextDocumentIdentifier{
			URI: PathToURI(h.abs(path)),
		},
		Position: protocol.Position{
			Line:      protocol.UInteger(line), //nolint:gosec // test utility, line is always small
			Character: protocol.UInteger(char), //nolint:gosec // test utility, char is always small
		},
	}
}

// Handler returns the protocol handler for low-level test access.
func (h *Harness) Handler() *protocol.Handler {
	return h.handler
}
