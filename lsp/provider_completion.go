package lsp

import (
	"strings"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/ssl-lang/ssl-lsp/builtin"
)

// textDocumentCompletion handles textDocument/completion requests.
//
// Candidates are gathered nearest-scope-first: locals and parameters of
// the enclosing procedure, then the document's top-level symbols, then the
// include closure, then the built-in opcode catalogue. All are filtered by
// case-sensitive prefix match against the identifier ending at the cursor
// and deduplicated by name, nearest scope winning.
func (s *Server) textDocumentCompletion(_ *glsp.Context, params *protocol.CompletionParams) (any, error) {
	uri := params.TextDocument.URI
	pos := params.Position

	s.logger.Debug("completion request",
		"uri", uri,
		"line", pos.Line,
		"character", pos.Character,
	)

	snapshot := s.workspace.LatestSnapshot(uri)
	doc := s.workspace.GetDocumentSnapshot(uri)
	if snapshot == nil || doc == nil {
		return []protocol.CompletionItem{}, nil
	}

	byteOffset, ok := ByteOffsetFromLSP(
		snapshot.Sources,
		doc.SourceID,
		int(pos.Line),
		int(pos.Character),
	)
	if !ok {
		return []protocol.CompletionItem{}, nil
	}

	content, ok := snapshot.Sources.ContentBySource(doc.SourceID)
	if !ok {
		return []protocol.CompletionItem{}, nil
	}

	prefix := identifierPrefixAt(content, byteOffset)
	if prefix == "" {
		return []protocol.CompletionItem{}, nil
	}

	internalPos := snapshot.Sources.PositionAt(doc.SourceID, byteOffset)

	items := make([]protocol.CompletionItem, 0, 16)
	seen := make(map[string]struct{})
	add := func(name, detail string, kind protocol.CompletionItemKind) {
		if !strings.HasPrefix(name, prefix) {
			return
		}
		if _, dup := seen[name]; dup {
			return
		}
		seen[name] = struct{}{}
		d := detail
		k := kind
		items = append(items, protocol.CompletionItem{
			Label:  name,
			Kind:   &k,
			Detail: &d,
		})
	}

	idx := snapshot.SymbolIndexAt(doc.SourceID)

	// Locals and parameters of the enclosing procedure.
	if idx != nil {
		if proc := idx.EnclosingProcedure(internalPos); proc != nil {
			for i := range idx.Symbols {
				sym := &idx.Symbols[i]
				if sym.Container != proc.Name {
					continue
				}
				add(sym.Name, sym.Detail, completionKindFor(sym.Kind))
			}
		}

		// Top-level symbols of the current document.
		for i := range idx.Symbols {
			sym := &idx.Symbols[i]
			if sym.Container != "" {
				continue
			}
			add(sym.Name, sym.Detail, completionKindFor(sym.Kind))
		}
	}

	// Include closure, in depth-first load order.
	if snapshot.Closure != nil {
		for _, id := range snapshot.Closure.Order {
			if id == doc.SourceID {
				continue
			}
			other := snapshot.SymbolIndexAt(id)
			if other == nil {
				continue
			}
			for i := range other.Symbols {
				sym := &other.Symbols[i]
				if sym.Container != "" {
					continue
				}
				add(sym.Name, sym.Detail, completionKindFor(sym.Kind))
			}
		}
	}

	// Built-in opcode catalogue.
	for _, entry := range builtin.All() {
		add(entry.Name, entry.Label, protocol.CompletionItemKindFunction)
	}

	return items, nil
}

// completionKindFor maps a symbol kind to its LSP CompletionItemKind.
// Object-like defines surface as constants; function-like defines, like
// procedures and built-ins, surface as functions.
func completionKindFor(kind SymbolKind) protocol.CompletionItemKind {
	switch kind {
	case SymbolProcedure, SymbolDefineFn:
		return protocol.CompletionItemKindFunction
	case SymbolDefine:
		return protocol.CompletionItemKindConstant
	default:
		return protocol.CompletionItemKindVariable
	}
}

// identifierPrefixAt extracts the maximal identifier ending at byte offset
// pos in content, or "" when the character before pos cannot end an
// identifier.
func identifierPrefixAt(content []byte, pos int) string {
	if pos > len(content) {
		pos = len(content)
	}
	start := pos
	for start > 0 && isIdentByte(content[start-1]) {
		start--
	}
	// An identifier cannot start with a digit; drop leading digits so a
	// cursor after "2x" yields "x".
	for start < pos && content[start] >= '0' && content[start] <= '9' {
		start++
	}
	return string(content[start:pos])
}

func isIdentByte(c byte) bool {
	return c == '_' ||
		(c >= 'a' && c <= 'z') ||
		(c >= 'A' && c <= 'Z') ||
		(c >= '0' && c <= '9')
}
