package lsp

import (
	"fmt"
	"log/slog"
	"net/url"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"github.com/google/uuid"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/ssl-lang/ssl-lsp/location"
	"github.com/ssl-lang/ssl-lsp/ssl/load"
)

// Notifier is a function that sends LSP notifications. Capturing only the
// notification capability from a glsp.Context keeps publication code
// decoupled from the transport; a nil Notifier suppresses publication,
// which tests rely on.
type Notifier func(method string, params any)

// Document represents an open document in the workspace.
type Document struct {
	URI      string
	SourceID location.SourceID
	Version  int
	Text     string
}

// DocumentSnapshot is an immutable view of a document at a point in time.
type DocumentSnapshot struct {
	URI      string
	SourceID location.SourceID
	Version  int
	Text     string
}

// Workspace manages open documents and their analysis snapshots.
//
// The handler loop is single-threaded (one event processed to completion
// before the next is read), so the mutex here is not load-bearing today; it
// preserves the snapshot-swap discipline that would let analysis be
// parallelized without changing readers.
type Workspace struct {
	mu sync.RWMutex

	logger *slog.Logger
	config Config

	// Open documents keyed by URI.
	open map[string]*Document

	// Latest analysis snapshots keyed by entry URI.
	snapshots map[string]*Snapshot

	// URIs that each entry's last analysis published diagnostics to.
	// Closing or re-analyzing an entry clears exactly the URIs it owned,
	// so one document's analysis never wipes another's diagnostics.
	publishedByEntry map[string]map[string]struct{}

	analyzer *Analyzer
}

// NewWorkspace creates a new workspace. If logger is nil, slog.Default()
// is used. The reader loads #include targets; pass nil for the real
// filesystem.
func NewWorkspace(logger *slog.Logger, cfg Config, reader load.FileReader) *Workspace {
	if logger == nil {
		logger = slog.Default()
	}
	return &Workspace{
		logger:           logger.With(slog.String("component", "workspace")),
		config:           cfg,
		open:             make(map[string]*Document),
		snapshots:        make(map[string]*Snapshot),
		publishedByEntry: make(map[string]map[string]struct{}),
		analyzer:         NewAnalyzer(logger, reader),
	}
}

// DocumentOpened stores a newly opened document.
func (w *Workspace) DocumentOpened(uri string, version int, text string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.open[uri] = &Document{
		URI:      uri,
		SourceID: sourceIDForURI(uri),
		Version:  version,
		Text:     normalizeLineEndings(text),
	}
}

// DocumentChanged replaces a document's content wholesale (the only edit
// mode this server supports; clients are told textDocumentSync = Full).
// Stale updates, where version is not greater than the stored version, are
// ignored so out-of-order notifications cannot overwrite newer content.
// Returns false when the change was ignored.
func (w *Workspace) DocumentChanged(uri string, version int, text string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	doc, ok := w.open[uri]
	if !ok {
		return false
	}
	if version != 0 && doc.Version != 0 && version <= doc.Version {
		w.logger.Debug("ignoring stale document change",
			slog.String("uri", uri),
			slog.Int("incoming_version", version),
			slog.Int("current_version", doc.Version),
		)
		return false
	}
	doc.Version = version
	doc.Text = normalizeLineEndings(text)
	return true
}

// DocumentClosed drops a document's text and analysis state. Diagnostics
// published for URIs that only this entry's closure reached are cleared.
func (w *Workspace) DocumentClosed(notify Notifier, uri string) {
	w.mu.Lock()
	delete(w.open, uri)
	delete(w.snapshots, uri)

	publishedFromEntry := w.publishedByEntry[uri]
	delete(w.publishedByEntry, uri)

	urisToClear := make([]string, 0, len(publishedFromEntry))
	for pubURI := range publishedFromEntry {
		stillPublished := false
		for _, otherPubs := range w.publishedByEntry {
			if _, ok := otherPubs[pubURI]; ok {
				stillPublished = true
				break
			}
		}
		if !stillPublished {
			urisToClear = append(urisToClear, pubURI)
		}
	}
	w.mu.Unlock()

	for _, pubURI := range urisToClear {
		publishDiagnostics(notify, pubURI, nil)
	}
}

// AnalyzeAndPublish runs the full pipeline over a document and publishes
// the resulting diagnostics, replacing the stored snapshot. Analysis is
// synchronous: the worst-case document size makes full reparse per edit
// cheap enough that deferral buys nothing.
//
// Diagnostics are always republished, even when the list is empty — an
// empty publish is what clears a document's prior diagnostics.
func (w *Workspace) AnalyzeAndPublish(notify Notifier, uri string) *Snapshot {
	w.mu.RLock()
	doc, ok := w.open[uri]
	if !ok {
		w.mu.RUnlock()
		return nil
	}

	entry := doc.SourceID
	version := doc.Version
	text := doc.Text

	// Overlay content from every open document, so a header that is itself
	// open is read from its buffer rather than from disk.
	overlays := make(map[string][]byte, len(w.open))
	for _, d := range w.open {
		overlays[d.SourceID.String()] = []byte(d.Text)
	}
	w.mu.RUnlock()

	snapshot := w.analyzer.Analyze(entry, text, version, overlays)

	w.mu.Lock()
	w.snapshots[uri] = snapshot
	w.mu.Unlock()

	w.publishSnapshotDiagnostics(notify, uri, snapshot)
	return snapshot
}

// publishSnapshotDiagnostics groups a snapshot's diagnostics by URI and
// publishes them, clearing any URI this entry published to previously but
// not this time. The entry document's own URI is always published, even
// with an empty list.
func (w *Workspace) publishSnapshotDiagnostics(notify Notifier, entryURI string, snapshot *Snapshot) {
	diagsByURI := make(map[string][]protocol.Diagnostic)
	diagsByURI[entryURI] = []protocol.Diagnostic{}
	for _, ud := range snapshot.LSPDiagnostics {
		pubURI := w.remapToOpenDocURI(ud.URI, snapshot.EntrySourceID, entryURI)
		diagsByURI[pubURI] = append(diagsByURI[pubURI], ud.Diagnostic)
	}

	w.mu.Lock()
	currentURIs := make(map[string]struct{}, len(diagsByURI))
	for uri := range diagsByURI {
		currentURIs[uri] = struct{}{}
	}
	previousURIs := w.publishedByEntry[entryURI]
	staleURIs := make([]string, 0)
	for uri := range previousURIs {
		if _, ok := currentURIs[uri]; !ok {
			staleURIs = append(staleURIs, uri)
		}
	}
	w.publishedByEntry[entryURI] = currentURIs
	w.mu.Unlock()

	for _, uri := range staleURIs {
		publishDiagnostics(notify, uri, nil)
	}
	for uri, diags := range diagsByURI {
		publishDiagnostics(notify, uri, diags)
	}
}

// remapToOpenDocURI maps a diagnostic URI back to the URI the client used
// to open the document, when they differ (a non-file buffer's synthetic
// SourceID round-trips through here).
func (w *Workspace) remapToOpenDocURI(diagURI string, entry location.SourceID, entryURI string) string {
	if diagURI == entry.String() || diagURI == "" {
		return entryURI
	}
	w.mu.RLock()
	defer w.mu.RUnlock()
	for _, doc := range w.open {
		if cp, ok := doc.SourceID.CanonicalPath(); ok && PathToURI(cp.String()) == diagURI {
			return doc.URI
		}
	}
	return diagURI
}

// publishDiagnostics sends a single publishDiagnostics notification. A nil
// diagnostics slice publishes an empty list, which clears prior
// diagnostics on the client.
func publishDiagnostics(notify Notifier, uri string, diagnostics []protocol.Diagnostic) {
	if notify == nil {
		return
	}
	if diagnostics == nil {
		diagnostics = []protocol.Diagnostic{}
	}
	notify(protocol.ServerTextDocumentPublishDiagnostics, protocol.PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: diagnostics,
	})
}

// LatestSnapshot returns the latest snapshot for a URI.
func (w *Workspace) LatestSnapshot(uri string) *Snapshot {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.snapshots[uri]
}

// GetDocumentSnapshot returns an immutable copy of the document state for
// a URI, or nil when the document is not open.
func (w *Workspace) GetDocumentSnapshot(uri string) *DocumentSnapshot {
	w.mu.RLock()
	defer w.mu.RUnlock()

	doc := w.open[uri]
	if doc == nil {
		return nil
	}
	return &DocumentSnapshot{
		URI:      doc.URI,
		SourceID: doc.SourceID,
		Version:  doc.Version,
		Text:     doc.Text,
	}
}

// RemapPathToURI maps a canonical path (or SourceID string) to the URI the
// client used to open the corresponding document, when it is open;
// otherwise it returns a plain file:// URI for the path.
func (w *Workspace) RemapPathToURI(path string) string {
	w.mu.RLock()
	defer w.mu.RUnlock()

	cleaned := filepath.ToSlash(filepath.Clean(path))
	for _, doc := range w.open {
		if cp, ok := doc.SourceID.CanonicalPath(); ok && cp.String() == cleaned {
			return doc.URI
		}
	}
	if hasURIScheme(path) {
		return path
	}
	return PathToURI(cleaned)
}

// sourceIDForURI derives the analysis SourceID for a document URI. File
// URIs map to their canonical path; any other scheme (an untitled buffer,
// a notebook cell) gets a synthetic per-open identity, which still lets
// the pipeline run — relative #include resolution is simply unavailable
// for such buffers.
func sourceIDForURI(uri string) location.SourceID {
	if path, err := URIToPath(uri); err == nil {
		if id, err := location.SourceIDFromPath(path); err == nil {
			return id
		}
	}
	return location.NewSourceID("buffer-" + uuid.NewString())
}

// normalizeLineEndings converts CRLF and CR line endings to LF so that
// byte-offset arithmetic is consistent regardless of the client platform.
func normalizeLineEndings(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	return text
}

// URIToPath converts a file:// URI to a filesystem path.
//
// On POSIX systems: file:///path/to/file → /path/to/file
// On Windows: file:///C:/path/to/file → C:\path\to\file
func URIToPath(uri string) (string, error) {
	u, err := url.Parse(uri)
	if err != nil {
		return "", fmt.Errorf("parse URI %q: %w", uri, err)
	}
	if u.Scheme != "file" {
		return "", fmt.Errorf("not a file URI: %s", uri)
	}

	path := u.Path
	if runtime.GOOS == "windows" {
		if len(path) >= 3 && path[0] == '/' && isWindowsDriveLetter(path[1]) && path[2] == ':' {
			path = path[1:]
		}
		path = filepath.FromSlash(path)
	}
	return path, nil
}

// PathToURI converts a filesystem path to a file:// URI.
func PathToURI(path string) string {
	if !filepath.IsAbs(path) {
		if absPath, err := filepath.Abs(path); err == nil {
			path = absPath
		}
	}
	path = filepath.ToSlash(path)
	if runtime.GOOS == "windows" && len(path) >= 2 && isWindowsDriveLetter(path[0]) && path[1] == ':' {
		path = "/" + path
	}
	u := url.URL{Scheme: "file", Path: path}
	return u.String()
}

// isWindowsDriveLetter reports whether c is a valid Windows drive letter.
func isWindowsDriveLetter(c byte) bool {
	return (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z')
}

// hasURIScheme reports whether s appears to have a URI scheme prefix, per
// the RFC3986 scheme grammar. Used to avoid double-encoding values that
// are already URIs.
func hasURIScheme(s string) bool {
	idx := strings.Index(s, "://")
	if idx <= 0 {
		return false
	}
	scheme := s[:idx]
	if !isSchemeAlpha(scheme[0]) {
		return false
	}
	for i := 1; i < len(scheme); i++ {
		c := scheme[i]
		if !isSchemeAlpha(c) && !isSchemeDigit(c) && c != '+' && c != '-' && c != '.' {
			return false
		}
	}
	return true
}

func isSchemeAlpha(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isSchemeDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
