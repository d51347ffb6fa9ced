package lsp

import (
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/ssl-lang/ssl-lsp/location"
	"github.com/ssl-lang/ssl-lsp/ssl"
)

// textDocumentDefinition handles textDocument/definition requests.
// Returns nil, nil when no definition is found (standard LSP behavior).
//
//nolint:nilnil // LSP protocol: nil result means "no definition found"
func (s *Server) textDocumentDefinition(_ *glsp.Context, params *protocol.DefinitionParams) (any, error) {
	uri := params.TextDocument.URI
	pos := params.Position

	s.logger.Debug("definition request",
		"uri", uri,
		"line", pos.Line,
		"character", pos.Character,
	)

	snapshot := s.workspace.LatestSnapshot(uri)
	doc := s.workspace.GetDocumentSnapshot(uri)
	if snapshot == nil || doc == nil {
		return nil, nil
	}

	internalPos, ok := PositionFromLSP(
		snapshot.Sources,
		doc.SourceID,
		int(pos.Line),
		int(pos.Character),
	)
	if !ok {
		return nil, nil
	}

	// A cursor over an #include directive's path navigates to the resolved
	// header itself.
	if loc := s.includeTargetAt(snapshot, doc.SourceID, internalPos); loc != nil {
		return loc, nil
	}

	idx := snapshot.SymbolIndexAt(doc.SourceID)
	if idx == nil {
		return nil, nil
	}

	if ref := idx.ReferenceAtPosition(internalPos); ref != nil {
		sym := snapshot.ResolveName(ref.Name, doc.SourceID, ref.Container)
		if sym == nil {
			s.logger.Debug("could not resolve reference", "name", ref.Name)
			return nil, nil
		}
		return s.symbolToLocation(snapshot, sym), nil
	}

	// Cursor on a declaration's own name: the declaration is its own
	// definition.
	if sym := idx.DeclarationNameAtPosition(internalPos); sym != nil {
		return s.symbolToLocation(snapshot, sym), nil
	}

	s.logger.Debug("no symbol or reference at position", "uri", uri)
	return nil, nil
}

// includeTargetAt returns a Location pointing at line 0 of the header a
// cursor-over #include directive resolved to, or nil when pos is not on a
// resolved include path.
func (s *Server) includeTargetAt(snapshot *Snapshot, sourceID location.SourceID, pos location.Position) *protocol.Location {
	tu := snapshot.UnitAt(sourceID)
	if tu == nil {
		return nil
	}
	for _, decl := range tu.Decls {
		inc, ok := decl.(*ssl.IncludeDirective)
		if !ok {
			continue
		}
		if !inc.PathSpan.Contains(pos) {
			continue
		}
		if inc.Resolved.IsZero() {
			return nil
		}
		uri := inc.Resolved.String()
		if cp, ok := inc.Resolved.CanonicalPath(); ok {
			uri = s.workspace.RemapPathToURI(cp.String())
		}
		return &protocol.Location{URI: uri, Range: protocol.Range{}}
	}
	return nil
}

// symbolToLocation converts a symbol's selection span to an LSP Location.
func (s *Server) symbolToLocation(snapshot *Snapshot, sym *Symbol) *protocol.Location {
	if sym == nil || sym.Selection.IsZero() {
		return nil
	}

	uri := sym.SourceID.String()
	if cp, ok := sym.SourceID.CanonicalPath(); ok {
		uri = s.workspace.RemapPathToURI(cp.String())
	}

	start, end, ok := SpanToLSPRange(snapshot.Sources, sym.Selection)
	if !ok {
		// Fallback to naive conversion when byte offsets are unavailable.
		return &protocol.Location{
			URI: uri,
			Range: protocol.Range{
				Start: protocol.Position{
					Line:      toUInteger(sym.Selection.Start.Line - 1),
					Character: toUInteger(sym.Selection.Start.Column - 1),
				},
				End: protocol.Position{
					Line:      toUInteger(sym.Selection.End.Line - 1),
					Character: toUInteger(sym.Selection.End.Column - 1),
				},
			},
		}
	}

	return &protocol.Location{
		URI: uri,
		Range: protocol.Range{
			Start: protocol.Position{Line: toUInteger(start[0]), Character: toUInteger(start[1])},
			End:   protocol.Position{Line: toUInteger(end[0]), Character: toUInteger(end[1])},
		},
	}
}
