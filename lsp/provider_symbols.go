package lsp

import (
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

// textDocumentDocumentSymbol handles textDocument/documentSymbol requests.
// The outline is two-level: procedures (with their parameters and locals
// as children) and top-level variables. Defines are preprocessor state,
// not document structure, so they stay out of the outline.
//
//nolint:nilnil // LSP protocol: nil result means no symbols
func (s *Server) textDocumentDocumentSymbol(_ *glsp.Context, params *protocol.DocumentSymbolParams) (any, error) {
	uri := params.TextDocument.URI
	s.logger.Debug("documentSymbol request", "uri", uri)

	snapshot := s.workspace.LatestSnapshot(uri)
	doc := s.workspace.GetDocumentSnapshot(uri)
	if snapshot == nil || doc == nil {
		return nil, nil
	}

	idx := snapshot.SymbolIndexAt(doc.SourceID)
	if idx == nil {
		return nil, nil
	}

	return s.buildDocumentSymbols(snapshot, idx), nil
}

// buildDocumentSymbols converts a SymbolIndex into hierarchical
// DocumentSymbols. A translation unit with no parsed top-level
// declarations yields an empty (non-nil) list.
func (s *Server) buildDocumentSymbols(snapshot *Snapshot, idx *SymbolIndex) []protocol.DocumentSymbol {
	out := make([]protocol.DocumentSymbol, 0, len(idx.Symbols))
	childrenByProcedure := make(map[string][]protocol.DocumentSymbol)

	// Symbols are in position order, so children group under the
	// procedure that textually contains them.
	for i := range idx.Symbols {
		sym := &idx.Symbols[i]
		switch sym.Kind {
		case SymbolParameter, SymbolLocalVariable:
			docSym, ok := s.documentSymbol(snapshot, sym, protocol.SymbolKindVariable)
			if ok {
				childrenByProcedure[sym.Container] = append(childrenByProcedure[sym.Container], docSym)
			}
		}
	}

	for i := range idx.Symbols {
		sym := &idx.Symbols[i]
		switch sym.Kind {
		case SymbolProcedure:
			docSym, ok := s.documentSymbol(snapshot, sym, protocol.SymbolKindFunction)
			if !ok {
				continue
			}
			docSym.Children = childrenByProcedure[sym.Name]
			out = append(out, docSym)
		case SymbolGlobalVariable:
			docSym, ok := s.documentSymbol(snapshot, sym, protocol.SymbolKindVariable)
			if !ok {
				continue
			}
			out = append(out, docSym)
		}
	}
	return out
}

// documentSymbol converts one symbol, reporting ok=false when its spans
// cannot be converted to LSP ranges.
func (s *Server) documentSymbol(snapshot *Snapshot, sym *Symbol, kind protocol.SymbolKind) (protocol.DocumentSymbol, bool) {
	start, end, ok := SpanToLSPRange(snapshot.Sources, sym.Range)
	if !ok {
		return protocol.DocumentSymbol{}, false
	}
	selStart, selEnd, ok := SpanToLSPRange(snapshot.Sources, sym.Selection)
	if !ok {
		selStart, selEnd = start, end
	}

	detail := sym.Detail
	return protocol.DocumentSymbol{
		Name:   sym.Name,
		Detail: &detail,
		Kind:   kind,
		Range: protocol.Range{
			Start: protocol.Position{Line: toUInteger(start[0]), Character: toUInteger(start[1])},
			End:   protocol.Position{Line: toUInteger(end[0]), Character: toUInteger(end[1])},
		},
		SelectionRange: protocol.Range{
			Start: protocol.Position{Line: toUInteger(selStart[0]), Character: toUInteger(selStart[1])},
			End:   protocol.Position{Line: toUInteger(selEnd[0]), Character: toUInteger(selEnd[1])},
		},
	}, true
}
