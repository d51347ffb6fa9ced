package lsp

import (
	"fmt"
	"strings"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/ssl-lang/ssl-lsp/builtin"
	"github.com/ssl-lang/ssl-lsp/location"
	"github.com/ssl-lang/ssl-lsp/ssl"
)

// textDocumentHover handles textDocument/hover requests.
//
//nolint:nilnil // LSP protocol: nil result means "no hover info"
func (s *Server) textDocumentHover(_ *glsp.Context, params *protocol.HoverParams) (*protocol.Hover, error) {
	uri := params.TextDocument.URI

	s.logger.Debug("hover request",
		"uri", uri,
		"line", params.Position.Line,
		"character", params.Position.Character,
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
		int(params.Position.Line),
		int(params.Position.Character),
	)
	if !ok {
		return nil, nil
	}

	if ref := idx.ReferenceAtPosition(internalPos); ref != nil {
		if sym := snapshot.ResolveName(ref.Name, doc.SourceID, ref.Container); sym != nil {
			return s.buildHover(snapshot, s.hoverForSymbol(sym, doc.SourceID), ref.Span)
		}
		if entry, ok := builtin.Lookup(ref.Name); ok {
			return s.buildHover(snapshot, hoverForBuiltin(entry), ref.Span)
		}
		return nil, nil
	}

	if sym := idx.DeclarationNameAtPosition(internalPos); sym != nil {
		return s.buildHover(snapshot, s.hoverForSymbol(sym, doc.SourceID), sym.Selection)
	}

	return nil, nil
}

// buildHover packages rendered Markdown content with the hover range.
// All hover renderers emit Markdown; every mainstream client supports it.
//
//nolint:nilnil // nil result means no hover info
func (s *Server) buildHover(snapshot *Snapshot, content string, span location.Span) (*protocol.Hover, error) {
	if content == "" {
		return nil, nil
	}

	hover := &protocol.Hover{
		Contents: protocol.MarkupContent{
			Kind:  protocol.MarkupKindMarkdown,
			Value: content,
		},
	}

	start, end, ok := SpanToLSPRange(snapshot.Sources, span)
	if ok {
		hover.Range = &protocol.Range{
			Start: protocol.Position{Line: toUInteger(start[0]), Character: toUInteger(start[1])},
			End:   protocol.Position{Line: toUInteger(end[0]), Character: toUInteger(end[1])},
		}
	}
	return hover, nil
}

// hoverForSymbol renders hover content for a user-declared symbol.
// viewSource is the document the request came from; it decides whether a
// define's origin renders as "current file" or as the header's name.
func (s *Server) hoverForSymbol(sym *Symbol, viewSource location.SourceID) string {
	switch sym.Kind {
	case SymbolDefine, SymbolDefineFn:
		return hoverForDefine(sym, viewSource)
	case SymbolProcedure:
		var b strings.Builder
		b.WriteString("```ssl\n")
		b.WriteString(sym.Detail)
		b.WriteString("\n```\n")
		return b.String()
	case SymbolGlobalVariable, SymbolLocalVariable, SymbolParameter:
		var b strings.Builder
		b.WriteString("```ssl\n")
		b.WriteString(sym.Detail)
		b.WriteString("\n```\n")
		return b.String()
	default:
		return ""
	}
}

// hoverForDefine renders `#define NAME …REPLACEMENT` plus a source line
// naming where the define came from.
func hoverForDefine(sym *Symbol, viewSource location.SourceID) string {
	var b strings.Builder
	b.WriteString("```ssl\n")
	if d, ok := sym.Node.(*ssl.DefineDecl); ok {
		b.WriteString("#define ")
		b.WriteString(d.Name)
		if d.IsFunctionLike() {
			b.WriteString("(")
			b.WriteString(strings.Join(d.Params, ", "))
			b.WriteString(")")
		}
		if d.Replacement != "" {
			b.WriteString(" ")
			b.WriteString(d.Replacement)
		}
	} else {
		b.WriteString(sym.Detail)
	}
	b.WriteString("\n```\n\n")

	if sym.SourceID == viewSource {
		b.WriteString("Defined in current file")
	} else if cp, ok := sym.SourceID.CanonicalPath(); ok {
		fmt.Fprintf(&b, "Defined in `%s`", cp.Base())
	} else {
		fmt.Fprintf(&b, "Defined in `%s`", sym.SourceID.String())
	}
	return b.String()
}

// hoverForBuiltin renders a built-in opcode's catalogue signature and doc
// string.
func hoverForBuiltin(entry builtin.Entry) string {
	var b strings.Builder
	b.WriteString("```ssl\n")
	b.WriteString(entry.Label)
	b.WriteString("\n```\n")
	if entry.Doc != "" {
		b.WriteString("\n")
		b.WriteString(entry.Doc)
	}
	return b.String()
}
