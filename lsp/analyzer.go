package lsp

import (
	"log/slog"
	"slices"
	"time"

	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/ssl-lang/ssl-lsp/diag"
	"github.com/ssl-lang/ssl-lsp/internal/source"
	"github.com/ssl-lang/ssl-lsp/location"
	"github.com/ssl-lang/ssl-lsp/ssl"
	"github.com/ssl-lang/ssl-lsp/ssl/load"
)

// Snapshot is the immutable analysis result for a single entry document:
// the parsed syntax trees and symbol indices of the document and its whole
// #include closure, plus diagnostics converted to LSP protocol format.
//
// Snapshots are created by [Analyzer.Analyze] and stored in [Workspace]
// keyed by entry document URI. Each open or change event produces a fresh
// snapshot that replaces the previous one wholesale; query handlers only
// ever read a snapshot, never mutate it.
type Snapshot struct {
	// CreatedAt records when this snapshot was created.
	CreatedAt time.Time

	// EntrySourceID identifies the entry document that was analyzed.
	EntrySourceID location.SourceID

	// EntryVersion is the document version at analysis time.
	EntryVersion int

	// Closure holds the parsed translation units and per-source diagnostic
	// results for the entry document and every transitively #included file.
	Closure *load.Closure

	// Sources holds the content of all files in the include closure.
	// Used for UTF-16 position conversion.
	Sources *source.Registry

	// LSPDiagnostics contains every closure diagnostic converted to LSP
	// protocol format, ready for publishing.
	LSPDiagnostics []URIDiagnostic

	// SymbolsBySource maps each source in the closure to its symbol index.
	SymbolsBySource map[location.SourceID]*SymbolIndex

	// IncludedPaths lists the canonical paths of every #included file in
	// the closure, excluding the entry document, in sorted order.
	IncludedPaths []string
}

// URIDiagnostic pairs a file URI with an LSP diagnostic for that file.
// A single analysis may produce diagnostics across multiple files (errors
// inside #included headers), so diagnostics are grouped by URI when
// published.
type URIDiagnostic struct {
	URI        string
	Diagnostic protocol.Diagnostic
}

// SymbolIndexAt returns the symbol index for the given source ID.
func (s *Snapshot) SymbolIndexAt(sourceID location.SourceID) *SymbolIndex {
	if s == nil || s.SymbolsBySource == nil {
		return nil
	}
	return s.SymbolsBySource[sourceID]
}

// UnitAt returns the parsed translation unit for the given source ID.
func (s *Snapshot) UnitAt(sourceID location.SourceID) *ssl.TranslationUnit {
	if s == nil || s.Closure == nil {
		return nil
	}
	return s.Closure.Units[sourceID]
}

// ResolveName resolves an identifier used at a given site to its
// declaration symbol, or nil when no visible declaration matches.
//
// Lookup order follows lexical visibility: the enclosing procedure's
// parameters and locals first (container names the procedure; empty for a
// top-level site), then top-level symbols of the using document, then the
// rest of the include closure in depth-first include order. Within each
// tier the later declaration wins, so shadowing redeclarations and the
// later-loaded header take precedence.
func (s *Snapshot) ResolveName(name string, fromSource location.SourceID, container string) *Symbol {
	if s == nil || name == "" {
		return nil
	}

	idx := s.SymbolIndexAt(fromSource)
	if idx != nil && container != "" {
		if sym := lastMatch(idx.Symbols, name, func(sym *Symbol) bool {
			return sym.Container == container &&
				(sym.Kind == SymbolLocalVariable || sym.Kind == SymbolParameter)
		}); sym != nil {
			return sym
		}
	}

	if idx != nil {
		if sym := lastMatch(idx.Symbols, name, func(sym *Symbol) bool {
			return sym.Container == ""
		}); sym != nil {
			return sym
		}
	}

	// Include closure, in depth-first load order; the later-loaded header
	// wins when two headers bind the same name.
	var found *Symbol
	if s.Closure != nil {
		for _, id := range s.Closure.Order {
			if id == fromSource {
				continue
			}
			other := s.SymbolIndexAt(id)
			if other == nil {
				continue
			}
			if sym := lastMatch(other.Symbols, name, func(sym *Symbol) bool {
				return sym.Container == ""
			}); sym != nil {
				found = sym
			}
		}
	}
	return found
}

// ReferencesTo returns every reference in source fromSource that resolves
// to target, in span order.
func (s *Snapshot) ReferencesTo(target *Symbol, fromSource location.SourceID) []*Reference {
	idx := s.SymbolIndexAt(fromSource)
	if idx == nil || target == nil {
		return nil
	}

	var out []*Reference
	for i := range idx.References {
		ref := &idx.References[i]
		if ref.Name != target.Name {
			continue
		}
		if s.ResolveName(ref.Name, fromSource, ref.Container) == target {
			out = append(out, ref)
		}
	}
	return out
}

// lastMatch returns the last symbol in symbols named name for which keep
// returns true. Symbols are in position order, so the last match is the
// latest declaration.
func lastMatch(symbols []Symbol, name string, keep func(*Symbol) bool) *Symbol {
	var found *Symbol
	for i := range symbols {
		sym := &symbols[i]
		if sym.Name == name && keep(sym) {
			found = sym
		}
	}
	return found
}

// Analyzer runs the analysis pipeline (lex, preprocess, parse, index) over
// an entry document and its include closure.
type Analyzer struct {
	logger *slog.Logger
	reader load.FileReader
}

// NewAnalyzer creates a new analyzer. If logger is nil, slog.Default() is
// used. The reader loads #include targets; pass nil for the real
// filesystem.
func NewAnalyzer(logger *slog.Logger, reader load.FileReader) *Analyzer {
	if logger == nil {
		logger = slog.Default()
	}
	if reader == nil {
		reader = load.OSFileReader{}
	}
	return &Analyzer{
		logger: logger.With(slog.String("component", "analyzer")),
		reader: reader,
	}
}

// Analyze parses entry (and its include closure) and returns an immutable
// snapshot. Invalid SSL never fails analysis: parse errors land in the
// snapshot's diagnostics and the partial syntax tree still yields whatever
// symbols parsed.
//
// The overlays map provides in-memory content for open documents, keyed by
// canonical path (SourceID.String()); it takes precedence over disk when
// resolving #include targets.
func (a *Analyzer) Analyze(entry location.SourceID, text string, version int, overlays map[string][]byte) *Snapshot {
	a.logger.Debug("starting analysis",
		slog.String("entry", entry.String()),
		slog.Int("version", version),
		slog.Int("overlay_count", len(overlays)),
	)

	registry := source.NewRegistry()
	reader := overlayReader{overlays: overlays, fallback: a.reader}
	closure := load.Load(entry, []byte(text), registry, reader)

	snapshot := &Snapshot{
		CreatedAt:       time.Now(),
		EntrySourceID:   entry,
		EntryVersion:    version,
		Closure:         closure,
		Sources:         registry,
		SymbolsBySource: make(map[location.SourceID]*SymbolIndex, len(closure.Units)),
	}

	for id, tu := range closure.Units {
		snapshot.SymbolsBySource[id] = BuildSymbolIndex(tu, registry)
	}

	for _, id := range closure.Order {
		if id == entry {
			continue
		}
		if cp, ok := id.CanonicalPath(); ok {
			snapshot.IncludedPaths = append(snapshot.IncludedPaths, cp.String())
		}
	}
	slices.Sort(snapshot.IncludedPaths)

	bindIssues := checkBindings(snapshot)
	snapshot.LSPDiagnostics = a.convertDiagnostics(closure, bindIssues, registry)

	a.logger.Debug("analysis complete",
		slog.String("entry", entry.String()),
		slog.Int("sources", len(closure.Units)),
		slog.Int("diagnostics", len(snapshot.LSPDiagnostics)),
	)
	return snapshot
}

// overlayReader serves #include content from open-document overlays before
// falling back to the wrapped reader (normally the filesystem).
type overlayReader struct {
	overlays map[string][]byte
	fallback load.FileReader
}

func (r overlayReader) ReadFile(path string) ([]byte, error) {
	if content, ok := r.overlays[canonicalOverlayKey(path)]; ok {
		return content, nil
	}
	return r.fallback.ReadFile(path)
}

// canonicalOverlayKey normalizes a reader path to the SourceID.String()
// form used as overlay keys.
func canonicalOverlayKey(path string) string {
	if id, err := location.SourceIDFromPath(path); err == nil {
		return id.String()
	}
	return path
}

// convertDiagnostics flattens every per-source diagnostic result in the
// closure — parse issues merged with the binding check's warnings — into
// LSP protocol diagnostics keyed by file URI. Re-collecting both streams
// per source keeps the published order deterministic (sorted by position)
// no matter which pass produced an issue.
func (a *Analyzer) convertDiagnostics(closure *load.Closure, bindIssues map[location.SourceID][]diag.Issue, sources *source.Registry) []URIDiagnostic {
	renderer := diag.NewRenderer(
		diag.WithSourceProvider(sources),
		diag.WithLSPByteFallback(diag.LSPByteFallbackApproximate),
	)

	uriDiags := make([]URIDiagnostic, 0)
	for _, id := range closure.Order {
		collector := diag.NewCollectorUnlimited()
		if result, ok := closure.Issues[id]; ok {
			collector.Merge(result)
		}
		collector.CollectAll(bindIssues[id])

		for issue := range collector.Result().Issues() {
			lspDiag := renderer.LSPDiagnostic(issue)
			if lspDiag == nil {
				continue
			}

			uri := sourceIDToFileURI(issue.Span().Source, id)
			sourceName := diagnosticSource
			uriDiags = append(uriDiags, URIDiagnostic{
				URI: uri,
				Diagnostic: protocol.Diagnostic{
					Range:              convertRange(lspDiag.Range),
					Severity:           convertSeverity(lspDiag.Severity),
					Code:               &protocol.IntegerOrString{Value: lspDiag.Code},
					Source:             &sourceName,
					Message:            lspDiag.Message,
					RelatedInformation: convertRelatedInfo(lspDiag.RelatedInformation),
				},
			})
		}
	}
	return uriDiags
}

// diagnosticSource is the Diagnostic.source value attached to every
// published diagnostic.
const diagnosticSource = "ssl-lsp"

// sourceIDToFileURI converts a source ID to a file:// URI, falling back to
// fallback when the issue's own span carries no source.
func sourceIDToFileURI(id, fallback location.SourceID) string {
	if id.IsZero() {
		id = fallback
	}
	if cp, ok := id.CanonicalPath(); ok {
		return PathToURI(cp.String())
	}
	return id.String()
}

// convertRange converts a diag LSP range to the protocol type.
func convertRange(r diag.LSPRange) protocol.Range {
	return protocol.Range{
		Start: protocol.Position{
			Line:      toUInteger(r.Start.Line),
			Character: toUInteger(r.Start.Character),
		},
		End: protocol.Position{
			Line:      toUInteger(r.End.Line),
			Character: toUInteger(r.End.Character),
		},
	}
}

// convertRelatedInfo converts a diagnostic's related locations (the
// "previous definition here" pointers on duplicate-declaration warnings)
// to the protocol type.
func convertRelatedInfo(related []diag.LSPRelatedInfo) []protocol.DiagnosticRelatedInformation {
	if len(related) == 0 {
		return nil
	}
	out := make([]protocol.DiagnosticRelatedInformation, 0, len(related))
	for _, rel := range related {
		out = append(out, protocol.DiagnosticRelatedInformation{
			Location: protocol.Location{
				URI:   rel.Location.URI,
				Range: convertRange(rel.Location.Range),
			},
			Message: rel.Message,
		})
	}
	return out
}

// toUInteger safely converts an int to protocol.UInteger (uint32).
// Negative values are clamped to 0.
func toUInteger(n int) protocol.UInteger {
	if n < 0 {
		return 0
	}
	return protocol.UInteger(n) //nolint:gosec // clamped to non-negative
}

// convertSeverity converts a diag LSP severity number to the protocol type.
func convertSeverity(severity int) *protocol.DiagnosticSeverity {
	var s protocol.DiagnosticSeverity
	switch severity {
	case diag.LSPSeverityError:
		s = protocol.DiagnosticSeverityError
	case diag.LSPSeverityWarning:
		s = protocol.DiagnosticSeverityWarning
	case diag.LSPSeverityInformation:
		s = protocol.DiagnosticSeverityInformation
	case diag.LSPSeverityHint:
		s = protocol.DiagnosticSeverityHint
	default:
		s = protocol.DiagnosticSeverityError
	}
	return &s
}
