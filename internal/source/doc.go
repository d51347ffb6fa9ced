// Package source is the text buffer (component A): it stores the current
// bytes of every open document and every #include-closure header, keyed
// by [location.SourceID], and answers line/column <-> byte-offset
// queries against the stored content.
//
// # Newline and column handling
//
//   - \r\n (CRLF), \n (LF), and bare \r (CR) each count as one line break.
//   - Columns count UTF-16 code units from line start, per the LSP
//     convention: a rune outside the Basic Multilingual Plane counts as
//     2. Column numbers are 1-based.
//
// # Lifecycle
//
// Register is an upsert: a document's full text is replaced wholesale on
// every didChange (the only edit mode this server supports is
// textDocumentSync = Full), recomputing the line table each time.
// RegisterOnce is used instead while walking an #include closure, where
// re-entering an already-loaded header must not silently overwrite it.
package source
