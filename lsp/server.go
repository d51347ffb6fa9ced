package lsp

import (
	"fmt"
	"log/slog"
	"os"
	"sync"

	// commonlog is a required dependency of github.com/tliron/glsp.
	// We silence it in NewServer() via commonlog.Configure(0, nil) because
	// this server uses slog for all logging. The blank import of the
	// "simple" backend is required by glsp at runtime.
	"github.com/tliron/commonlog"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
	"github.com/tliron/glsp/server"

	_ "github.com/tliron/commonlog/simple" // required backend for glsp

	"github.com/ssl-lang/ssl-lsp/ssl/load"
)

const serverName = "ssl-lsp"

// Config holds the server configuration.
type Config struct {
	// WorkspaceRoot overrides the workspace root reported by the client.
	// Informational only: #include paths resolve relative to the including
	// file, never to the root.
	WorkspaceRoot string
}

// Server is the SSL language server.
type Server struct {
	logger    *slog.Logger
	config    Config
	handler   protocol.Handler
	server    *server.Server
	workspace *Workspace

	// shutdownCalled tracks whether shutdown was called before exit.
	shutdownCalled bool

	closeOnce sync.Once
	closeErr  error
}

// NewServer creates a new SSL language server. If logger is nil,
// slog.Default() is used.
func NewServer(logger *slog.Logger, cfg Config) *Server {
	return NewServerWithReader(logger, cfg, nil)
}

// NewServerWithReader creates a server whose #include resolution reads
// through reader instead of the filesystem. Tests use this to serve
// headers from in-memory fixtures.
func NewServerWithReader(logger *slog.Logger, cfg Config, reader load.FileReader) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		logger:    logger.With(slog.String("component", "server")),
		config:    cfg,
		workspace: NewWorkspace(logger, cfg, reader),
	}

	// Silence commonlog - glsp uses it internally but we use slog.
	commonlog.Configure(0, nil)

	s.handler = protocol.Handler{
		// Lifecycle
		Initialize:    s.initialize,
		Initialized:   s.initialized,
		Shutdown:      s.shutdown,
		Exit:          s.exit,
		SetTrace:      s.setTrace,
		CancelRequest: s.cancelRequest,

		// Text document synchronization
		TextDocumentDidOpen:   s.textDocumentDidOpen,
		TextDocumentDidChange: s.textDocumentDidChange,
		TextDocumentDidClose:  s.textDocumentDidClose,

		// Language features
		TextDocumentDefinition:     s.textDocumentDefinition,
		TextDocumentReferences:     s.textDocumentReferences,
		TextDocumentHover:          s.textDocumentHover,
		TextDocumentCompletion:     s.textDocumentCompletion,
		TextDocumentDocumentSymbol: s.textDocumentDocumentSymbol,
		TextDocumentSignatureHelp:  s.textDocumentSignatureHelp,
	}

	s.server = server.NewServer(&s.handler, serverName, false)
	return s
}

// Handler returns the protocol handler for testing purposes.
func (s *Server) Handler() *protocol.Handler {
	return &s.handler
}

// Workspace returns the server's workspace for testing purposes.
func (s *Server) Workspace() *Workspace {
	return s.workspace
}

// RunStdio runs the server using stdio transport.
func (s *Server) RunStdio() error {
	if err := s.server.RunStdio(); err != nil {
		return fmt.Errorf("run stdio: %w", err)
	}
	return nil
}

// Close closes the JSON-RPC connection, causing RunStdio to return.
//
// Close is idempotent: multiple calls return the same result. It is safe
// to call before RunStdio (returns nil if the connection is not yet
// initialized); the nil check is outside closeOnce.Do so callers can
// retry in that case.
func (s *Server) Close() error {
	conn := s.server.GetStdio()
	if conn == nil {
		return nil
	}
	s.closeOnce.Do(func() {
		if err := conn.Close(); err != nil {
			s.closeErr = fmt.Errorf("close connection: %w", err)
		}
	})
	return s.closeErr
}

// initialize handles the initialize request.
func (s *Server) initialize(_ *glsp.Context, params *protocol.InitializeParams) (any, error) {
	s.logger.Info("initialize request received",
		slog.String("client_name", s.clientName(params)),
	)

	// Full-text sync only: SSL documents are small enough that wholesale
	// replacement plus full reparse is cheaper than incremental tracking.
	capabilities := s.handler.CreateServerCapabilities()
	capabilities.TextDocumentSync = protocol.TextDocumentSyncKindFull
	capabilities.CompletionProvider = &protocol.CompletionOptions{
		TriggerCharacters: []string{},
	}
	capabilities.SignatureHelpProvider = &protocol.SignatureHelpOptions{
		TriggerCharacters: []string{"(", ","},
	}

	version := Version
	return protocol.InitializeResult{
		Capabilities: capabilities,
		ServerInfo: &protocol.InitializeResultServerInfo{
			Name:    serverName,
			Version: &version,
		},
	}, nil
}

// Version is the server version reported in serverInfo; overridden at
// link time by the command's build.
var Version = "dev"

// initialized handles the initialized notification.
func (s *Server) initialized(_ *glsp.Context, _ *protocol.InitializedParams) error {
	s.logger.Info("server initialized")
	return nil
}

// shutdown handles the shutdown request.
func (s *Server) shutdown(_ *glsp.Context) error {
	s.logger.Info("shutdown request received")
	s.shutdownCalled = true
	protocol.SetTraceValue(protocol.TraceValueOff)
	return nil
}

// exit handles the exit notification per the LSP lifecycle: exit code 0
// if shutdown was received first, 1 otherwise.
func (s *Server) exit(_ *glsp.Context) error {
	exitCode := 0
	if !s.shutdownCalled {
		s.logger.Warn("exit called without shutdown")
		exitCode = 1
	}
	s.logger.Info("exit notification received", slog.Int("exit_code", exitCode))
	os.Exit(exitCode)
	return nil // unreachable
}

// setTrace handles the $/setTrace notification.
func (s *Server) setTrace(_ *glsp.Context, params *protocol.SetTraceParams) error {
	s.logger.Debug("setTrace", slog.String("value", string(params.Value)))
	protocol.SetTraceValue(params.Value)
	return nil
}

// cancelRequest handles the $/cancelRequest notification. Handlers are
// non-preemptive and fast, so in-flight work is not interruptible; a
// cancellation arriving after the response has been emitted is dropped.
func (s *Server) cancelRequest(_ *glsp.Context, params *protocol.CancelParams) error {
	s.logger.Debug("cancelRequest", slog.Any("id", params.ID))
	return nil
}

// textDocumentDidOpen handles textDocument/didOpen: store the text, run
// the pipeline, publish diagnostics.
func (s *Server) textDocumentDidOpen(ctx *glsp.Context, params *protocol.DidOpenTextDocumentParams) error {
	uri := params.TextDocument.URI
	s.logger.Debug("textDocument/didOpen",
		slog.String("uri", uri),
		slog.Int("version", int(params.TextDocument.Version)),
	)

	s.workspace.DocumentOpened(uri, int(params.TextDocument.Version), params.TextDocument.Text)
	s.workspace.AnalyzeAndPublish(s.notifier(ctx), uri)
	return nil
}

// textDocumentDidChange handles textDocument/didChange. Only full-text
// changes are applied (the server advertises full sync); the last whole
// change in the batch wins. Stale versions are dropped without reanalysis.
func (s *Server) textDocumentDidChange(ctx *glsp.Context, params *protocol.DidChangeTextDocumentParams) error {
	uri := params.TextDocument.URI
	version := int(params.TextDocument.Version)
	s.logger.Debug("textDocument/didChange",
		slog.String("uri", uri),
		slog.Int("version", version),
	)

	var lastFullChange *protocol.TextDocumentContentChangeEventWhole
	for _, rawChange := range params.ContentChanges {
		if change, ok := rawChange.(protocol.TextDocumentContentChangeEventWhole); ok {
			lastFullChange = &change
		}
	}
	if lastFullChange == nil {
		s.logger.Warn("no full-text change in didChange batch; server advertises full sync",
			slog.String("uri", uri), slog.Int("version", version))
		return nil
	}

	if !s.workspace.DocumentChanged(uri, version, lastFullChange.Text) {
		return nil
	}
	s.workspace.AnalyzeAndPublish(s.notifier(ctx), uri)
	return nil
}

// textDocumentDidClose handles textDocument/didClose.
func (s *Server) textDocumentDidClose(ctx *glsp.Context, params *protocol.DidCloseTextDocumentParams) error {
	uri := params.TextDocument.URI
	s.logger.Debug("textDocument/didClose", slog.String("uri", uri))
	s.workspace.DocumentClosed(s.notifier(ctx), uri)
	return nil
}

// notifier extracts the notification capability from a glsp context; nil
// contexts (tests without a transport) yield a nil Notifier.
func (s *Server) notifier(ctx *glsp.Context) Notifier {
	if ctx == nil {
		return nil
	}
	return func(method string, params any) { ctx.Notify(method, params) }
}

func (s *Server) clientName(params *protocol.InitializeParams) string {
	if params.ClientInfo != nil {
		if params.ClientInfo.Version != nil {
			return params.ClientInfo.Name + " " + *params.ClientInfo.Version
		}
		return params.ClientInfo.Name
	}
	return "unknown"
}
