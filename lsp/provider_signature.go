package lsp

import (
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/ssl-lang/ssl-lsp/builtin"
	"github.com/ssl-lang/ssl-lsp/ssl"
)

// textDocumentSignatureHelp handles textDocument/signatureHelp requests.
//
// The call site is recovered textually: scan backward from the cursor over
// balanced brackets to the nearest unmatched `(`, take the identifier
// immediately before it as the callee, and count depth-zero commas between
// the `(` and the cursor for the active parameter. A textual scan answers
// correctly even while the statement under the cursor is mid-edit and does
// not parse.
//
//nolint:nilnil // LSP protocol: nil result means "no signature help"
func (s *Server) textDocumentSignatureHelp(_ *glsp.Context, params *protocol.SignatureHelpParams) (*protocol.SignatureHelp, error) {
	uri := params.TextDocument.URI
	pos := params.Position

	s.logger.Debug("signatureHelp request",
		"uri", uri,
		"line", pos.Line,
		"character", pos.Character,
	)

	snapshot := s.workspace.LatestSnapshot(uri)
	doc := s.workspace.GetDocumentSnapshot(uri)
	if snapshot == nil || doc == nil {
		return nil, nil
	}

	byteOffset, ok := ByteOffsetFromLSP(
		snapshot.Sources,
		doc.SourceID,
		int(pos.Line),
		int(pos.Character),
	)
	if !ok {
		return nil, nil
	}

	content, ok := snapshot.Sources.ContentBySource(doc.SourceID)
	if !ok {
		return nil, nil
	}

	callee, activeParam, found := callSiteBefore(content, byteOffset)
	if !found || callee == "" {
		return nil, nil
	}

	label, paramNames, docString, ok := s.resolveCallable(snapshot, doc, callee)
	if !ok {
		return nil, nil
	}

	sigParams := make([]protocol.ParameterInformation, len(paramNames))
	for i, name := range paramNames {
		sigParams[i] = protocol.ParameterInformation{Label: name}
	}

	sig := protocol.SignatureInformation{
		Label:      label,
		Parameters: sigParams,
	}
	if docString != "" {
		sig.Documentation = docString
	}

	activeSignature := protocol.UInteger(0)
	active := toUInteger(activeParam)
	return &protocol.SignatureHelp{
		Signatures:      []protocol.SignatureInformation{sig},
		ActiveSignature: &activeSignature,
		ActiveParameter: &active,
	}, nil
}

// resolveCallable resolves a callee name to a signature: a user procedure
// or function-like define first (either shadows the catalogue), the
// built-in opcode catalogue otherwise.
func (s *Server) resolveCallable(snapshot *Snapshot, doc *DocumentSnapshot, callee string) (label string, params []string, docString string, ok bool) {
	if sym := snapshot.ResolveName(callee, doc.SourceID, ""); sym != nil {
		switch sym.Kind {
		case SymbolProcedure:
			if proc, isProc := sym.Node.(*ssl.ProcedureDecl); isProc {
				names := make([]string, len(proc.Params))
				for i, p := range proc.Params {
					names[i] = p.Name
				}
				return sym.Detail, names, "", true
			}
		case SymbolDefineFn:
			if def, isDef := sym.Node.(*ssl.DefineDecl); isDef {
				return sym.Detail, def.Params, "", true
			}
		}
	}

	if entry, found := builtin.Lookup(callee); found {
		return entry.Label, entry.Parameters, entry.Doc, true
	}
	return "", nil, "", false
}

// callSiteBefore scans backward from pos for the nearest unmatched `(`
// and returns the identifier preceding it plus the number of depth-zero
// commas between the `(` and pos. found is false when no enclosing
// unmatched `(` exists before the current statement boundary.
func callSiteBefore(content []byte, pos int) (callee string, activeParam int, found bool) {
	if pos > len(content) {
		pos = len(content)
	}

	depth := 0
	commas := 0
	openParen := -1

scan:
	for i := pos - 1; i >= 0; i-- {
		switch content[i] {
		case ')', ']':
			depth++
		case '[':
			if depth > 0 {
				depth--
			}
		case '(':
			if depth == 0 {
				openParen = i
				break scan
			}
			depth--
		case ',':
			if depth == 0 {
				commas++
			}
		case ';', '{', '}':
			// Statement boundary: no enclosing call.
			return "", 0, false
		case '"':
			// Walk back to the opening quote so bracket characters inside
			// string literals are ignored.
			for i--; i >= 0; i-- {
				if content[i] == '"' && (i == 0 || content[i-1] != '\\') {
					break
				}
			}
			if i < 0 {
				return "", 0, false
			}
		}
	}
	if openParen < 0 {
		return "", 0, false
	}

	end := openParen
	for end > 0 && (content[end-1] == ' ' || content[end-1] == '\t') {
		end--
	}
	start := end
	for start > 0 && isIdentByte(content[start-1]) {
		start--
	}
	for start < end && content[start] >= '0' && content[start] <= '9' {
		start++
	}
	if start == end {
		return "", 0, false
	}
	return string(content[start:end]), commas, true
}
