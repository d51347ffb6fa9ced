// Package ssllsp is the root of the SSL language server module.
//
// SSL (Scripting Sys Language) is a small imperative scripting language
// with procedures, variables, a C-style preprocessor (#define, #include),
// and a fixed catalogue of built-in opcodes. This module implements a
// Language Server Protocol server for it: the ssl-lsp binary speaks
// JSON-RPC 2.0 over stdio and provides diagnostics, document symbols,
// goto-definition, find-references, completion, hover, and signature help.
//
// # Architecture Overview
//
// The module is organized into layers with strict dependency ordering:
//
//	Foundation tier (no internal dependencies):
//	  - location: Source positions, spans, and canonical paths
//	  - diag: Structured diagnostics with stable error codes
//
//	Analysis tier:
//	  - ssl: Lexer, preprocessor directive handling, recursive-descent
//	    parser, and the syntax tree
//	  - ssl/load: #include transitive-closure walking
//	  - builtin: The fixed built-in opcode catalogue
//
//	Server tier:
//	  - lsp: Workspace state, analysis snapshots, symbol indexing, and
//	    the LSP feature providers
//	  - cmd/ssl-lsp: The server executable
//
// # Entry Points
//
// Parsing a single file:
//
//	import "github.com/ssl-lang/ssl-lsp/ssl"
//
//	collector := diag.NewCollectorUnlimited()
//	tu := ssl.Parse(sourceID, content, collector)
//
// Walking a document's include closure:
//
//	import "github.com/ssl-lang/ssl-lsp/ssl/load"
//
//	closure := load.Load(entryID, content, registry, reader)
//
// Running the server:
//
//	ssl-lsp --stdio
//
// # Subpackages
//
// See the individual package documentation for detailed usage:
//
//   - [github.com/ssl-lang/ssl-lsp/diag]: Structured diagnostics
//   - [github.com/ssl-lang/ssl-lsp/location]: Source location tracking
//   - [github.com/ssl-lang/ssl-lsp/ssl]: Lexer, parser, and syntax tree
//   - [github.com/ssl-lang/ssl-lsp/ssl/load]: Include-closure loading
//   - [github.com/ssl-lang/ssl-lsp/builtin]: Built-in opcode catalogue
//   - [github.com/ssl-lang/ssl-lsp/lsp]: Language Server Protocol server
package ssllsp
