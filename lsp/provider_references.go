package lsp

import (
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/ssl-lang/ssl-lsp/location"
)

// textDocumentReferences handles textDocument/references requests. Only
// the current document is scanned; workspace-wide search is out of scope.
func (s *Server) textDocumentReferences(_ *glsp.Context, params *protocol.ReferenceParams) ([]protocol.Location, error) {
	uri := params.TextDocument.URI
	pos := params.Position

	s.logger.Debug("references request",
		"uri", uri,
		"line", pos.Line,
		"character", pos.Character,
		"include_declaration", params.Context.IncludeDeclaration,
	)

	snapshot := s.workspace.LatestSnapshot(uri)
	doc := s.workspace.GetDocumentSnapshot(uri)
	if snapshot == nil || doc == nil {
		return nil, nil
	}

	idx := snapshot.SymbolIndexAt(doc.SourceID)
	if idx == nil {
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

	target := s.symbolUnderCursor(snapshot, idx, doc.SourceID, internalPos)
	if target == nil {
		return nil, nil
	}

	var locations []protocol.Location
	if params.Context.IncludeDeclaration && target.SourceID == doc.SourceID {
		if loc := s.symbolToLocation(snapshot, target); loc != nil {
			locations = append(locations, *loc)
		}
	}
	for _, ref := range snapshot.ReferencesTo(target, doc.SourceID) {
		if loc := s.spanToLocation(snapshot, doc.URI, ref.Span); loc != nil {
			locations = append(locations, *loc)
		}
	}
	return locations, nil
}

// symbolUnderCursor resolves the symbol a position refers to: a reference
// resolves through scope lookup, a declaration name denotes itself.
func (s *Server) symbolUnderCursor(snapshot *Snapshot, idx *SymbolIndex, sourceID location.SourceID, pos location.Position) *Symbol {
	if ref := idx.ReferenceAtPosition(pos); ref != nil {
		return snapshot.ResolveName(ref.Name, sourceID, ref.Container)
	}
	return idx.DeclarationNameAtPosition(pos)
}

// spanToLocation converts an arbitrary span in the current document to an
// LSP Location.
func (s *Server) spanToLocation(snapshot *Snapshot, uri string, span location.Span) *protocol.Location {
	start, end, ok := SpanToLSPRange(snapshot.Sources, span)
	if !ok {
		return nil
	}
	return &protocol.Location{
		URI: uri,
		Range: protocol.Range{
			Start: protocol.Position{Line: toUInteger(start[0]), Character: toUInteger(start[1])},
			End:   protocol.Position{Line: toUInteger(end[0]), Character: toUInteger(end[1])},
		},
	}
}
