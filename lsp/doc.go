// Package lsp implements a Language Server Protocol (LSP) server for SSL
// scripts.
//
// The server provides IDE features including:
//   - Real-time diagnostics (parse errors, missing includes, unterminated
//     strings, unresolved names, duplicate declarations)
//   - Go-to-definition for procedures, variables, defines, and #include paths
//   - Find-references within the current document
//   - Hover information for defines, procedures, variables, and built-in opcodes
//   - Completion for user symbols, include-closure symbols, and built-ins
//   - Signature help at call sites, for procedures and built-in opcodes
//   - Document symbols for outline and breadcrumbs
//
// The server communicates via JSON-RPC 2.0 over stdio and implements
// LSP 3.16. All analysis runs through the ssl and ssl/load packages, so
// editor behavior and any batch tooling built on the same pipeline agree.
//
// # Architecture
//
// The server consists of:
//   - Server: protocol lifecycle and handler dispatch
//   - Workspace: open documents and analysis snapshots, keyed by URI
//   - Analyzer: runs the lex/preprocess/parse/index/bind pipeline over a
//     document and its #include closure, producing an immutable Snapshot
//   - Feature providers: definition, references, hover, completion,
//     signature help, document symbols (one provider_*.go file each)
//
// Handlers run one at a time to completion; each open or change event
// replaces the stored Snapshot wholesale, and query handlers only ever
// read the snapshot current when they start. Documents are synced in
// full-text mode only.
//
// # Usage
//
// The server is typically started via the ssl-lsp command:
//
//	ssl-lsp --stdio
//
// For debugging:
//
//	ssl-lsp --stdio --log-level debug --log-file /tmp/ssl-lsp.log
//
// # Limitations
//
// The server implements LSP 3.16, which does not support position encoding
// negotiation (added in LSP 3.17). UTF-16 encoding is assumed for all
// character positions.
//
// Documents must be opened (via textDocument/didOpen) before queries work
// for that document. Headers referenced by #include are loaded from disk
// automatically during analysis, with open-document buffers taking
// precedence over their on-disk content.
//
// Find-references scans the current document only; workspace-wide search
// is out of scope, as is any cross-workspace symbol index.
package lsp
