package location

// PositionRegistry provides byte-offset-to-position conversion.
//
// This interface is the bridge between the analysis pipeline (lexer,
// parser, preprocessor) and the source registry that performs the actual
// conversion. It lets those layers obtain accurate Position values from
// byte offsets captured during scanning without depending on the concrete
// registry type.
//
// The primary implementation is source.Registry.
type PositionRegistry interface {
	// PositionAt converts a byte offset to a Position for the given source.
	//
	// Returns a zero Position (check via IsZero()) if:
	//   - The source is not registered
	//   - The byte offset is out of range
	//   - The byte offset is negative
	//
	// The returned Position has:
	//   - Line: 1-based line number
	//   - Column: 1-based UTF-16 code-unit offset from line start
	//   - Byte: The input byteOffset (echoed back for convenience)
	PositionAt(source SourceID, byteOffset int) Position
}

// RuneOffsetConverter converts a rune offset within a source to a byte
// offset, for callers that track positions in rune counts rather than
// bytes (e.g. LSP clients using UTF-32-ish semantics internally).
type RuneOffsetConverter interface {
	// RuneToByteOffset converts a rune offset to a byte offset for the
	// given source. ok is false if the source is not registered or the
	// rune offset is out of range.
	RuneToByteOffset(source SourceID, runeOffset int) (byteOffset int, ok bool)
}
