package source

import (
	"bytes"
	"cmp"
	"fmt"
	"slices"
	"sync"
	"unicode/utf8"

	"github.com/ssl-lang/ssl-lsp/location"
)

// sourceEntry holds the content and precomputed line index for a source.
type sourceEntry struct {
	content []byte
	// lineOffsets[i] is the byte offset of the start of line i+1.
	// lineOffsets[0] is always 0 (start of line 1).
	lineOffsets []int
}

// Registry is the text buffer of component A: it stores the current
// content of every open document (and every header pulled in through an
// #include closure), keyed by [location.SourceID], and answers
// line/column <-> byte-offset queries against it.
//
// Registry is thread-safe, though the document manager only ever touches
// it from the single-threaded LSP event loop; the locking exists so tests
// and tooling can use it concurrently.
type Registry struct {
	mu      sync.RWMutex
	entries map[location.SourceID]*sourceEntry
}

// RegistryStats contains memory usage statistics for a source registry.
type RegistryStats struct {
	SourceCount  int
	ContentBytes int64
	IndexBytes   int64
}

// KeyCollisionError indicates that a registration was attempted with a
// SourceID that already exists but with different content.
type KeyCollisionError struct {
	SourceID location.SourceID
}

func (e *KeyCollisionError) Error() string {
	return fmt.Sprintf("source key collision: different content registered for %q", e.SourceID.String())
}

// NewRegistry creates a new empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		entries: make(map[location.SourceID]*sourceEntry),
	}
}

// Register stores content under the given sourceID, replacing whatever
// was registered before (full-text replacement, per spec: the only edit
// mode is textDocumentSync = Full). Unlike a one-shot build registry,
// Register here is an upsert: re-registering an existing sourceID with
// new content recomputes the line table and overwrites the old entry.
//
// The content is defensively cloned; callers may freely mutate or
// discard the original slice after Register returns.
func (r *Registry) Register(sourceID location.SourceID, content []byte) {
	cloned := slices.Clone(content)
	lineOffsets := computeLineOffsets(cloned)

	r.mu.Lock()
	defer r.mu.Unlock()

	r.entries[sourceID] = &sourceEntry{
		content:     cloned,
		lineOffsets: lineOffsets,
	}
}

// RegisterOnce stores content under sourceID only if not already present,
// returning [*KeyCollisionError] if different content is already
// registered. Used by include-closure loading, where a header already in
// the closure map must not be reloaded mid-walk.
func (r *Registry) RegisterOnce(sourceID location.SourceID, content []byte) error {
	cloned := slices.Clone(content)
	lineOffsets := computeLineOffsets(cloned)

	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.entries[sourceID]; ok {
		if bytes.Equal(existing.content, cloned) {
			return nil
		}
		return &KeyCollisionError{SourceID: sourceID}
	}

	r.entries[sourceID] = &sourceEntry{content: cloned, lineOffsets: lineOffsets}
	return nil
}

// ContentBySource returns the full content for a source. The returned
// slice is a defensive copy.
func (r *Registry) ContentBySource(sourceID location.SourceID) ([]byte, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entry, ok := r.entries[sourceID]
	if !ok {
		return nil, false
	}
	return slices.Clone(entry.content), true
}

// Content returns raw bytes for a source identified by the span's Source
// field. Implements a source-lookup contract analogous to diag's
// SourceProvider.
func (r *Registry) Content(span location.Span) ([]byte, bool) {
	return r.ContentBySource(span.Source)
}

// PositionAt converts a byte offset in the specified source to a
// Position, with Column counted in UTF-16 code units per spec §3/§4.A.
//
// Returns a zero Position if the source is unregistered or the offset is
// out of range. byteOffset == len(content) is valid (EOF position).
func (r *Registry) PositionAt(source location.SourceID, byteOffset int) location.Position {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entry, ok := r.entries[source]
	if !ok {
		return location.UnknownPosition()
	}
	if byteOffset < 0 || byteOffset > len(entry.content) {
		return location.UnknownPosition()
	}

	line := findLine(entry.lineOffsets, byteOffset)
	lineStart := entry.lineOffsets[line-1]
	column := utf16ColumnFromByteOffset(entry.content, lineStart, byteOffset)

	return location.NewPosition(line, column, byteOffset)
}

// LineStartByte returns the byte offset of the start of the given
// 1-based line. Returns (0, false) if the source is unregistered or the
// line is out of range.
func (r *Registry) LineStartByte(source location.SourceID, line int) (int, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entry, ok := r.entries[source]
	if !ok {
		return 0, false
	}
	if line < 1 || line > len(entry.lineOffsets) {
		return 0, false
	}
	return entry.lineOffsets[line-1], true
}

// LineCount returns the number of lines registered for source, or
// (0, false) if the source is unregistered.
func (r *Registry) LineCount(source location.SourceID) (int, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entry, ok := r.entries[source]
	if !ok {
		return 0, false
	}
	return len(entry.lineOffsets), true
}

// ByteOffsetFromUTF16 converts a 0-based LSP (line, utf16Char) position to
// a byte offset. line is 0-based (LSP convention); the registry's own
// line table is 1-based internally, so the conversion happens here.
//
// Mid-surrogate positions are floored to the start of that rune.  Returns
// (0, false) if the source or line is unknown.
func (r *Registry) ByteOffsetFromUTF16(source location.SourceID, line, utf16Char int) (int, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entry, ok := r.entries[source]
	if !ok {
		return 0, false
	}
	if line < 0 || line+1 > len(entry.lineOffsets) {
		return 0, false
	}
	if utf16Char < 0 {
		return 0, false
	}
	lineStart := entry.lineOffsets[line]
	return utf16CharToByteOffset(entry.content, lineStart, utf16Char), true
}

// Keys returns all registered source identifiers, sorted by their
// String() representation.
func (r *Registry) Keys() []location.SourceID {
	r.mu.RLock()
	keys := make([]location.SourceID, 0, len(r.entries))
	for k := range r.entries {
		keys = append(keys, k)
	}
	r.mu.RUnlock()

	slices.SortFunc(keys, func(a, b location.SourceID) int {
		return cmp.Compare(a.String(), b.String())
	})
	return keys
}

// Has reports whether sourceID is registered.
func (r *Registry) Has(sourceID location.SourceID) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.entries[sourceID]
	return ok
}

// Len returns the number of registered sources.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// Forget drops a single source's entry, used on didClose.
func (r *Registry) Forget(sourceID location.SourceID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.entries, sourceID)
}

// Clear removes all registered sources.
func (r *Registry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = make(map[location.SourceID]*sourceEntry)
}

// Stats returns memory usage statistics for the registry.
func (r *Registry) Stats() RegistryStats {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var stats RegistryStats
	stats.SourceCount = len(r.entries)
	for _, entry := range r.entries {
		stats.ContentBytes += int64(len(entry.content))
		stats.IndexBytes += int64(len(entry.lineOffsets) * 8)
	}
	return stats
}

// computeLineOffsets precomputes the byte offset of each line start.
// Handles \n, \r\n, and bare \r as line breaks.
func computeLineOffsets(content []byte) []int {
	offsets := []int{0}
	for i := 0; i < len(content); i++ {
		switch content[i] {
		case '\n':
			offsets = append(offsets, i+1)
		case '\r':
			if i+1 < len(content) && content[i+1] == '\n' {
				offsets = append(offsets, i+2)
				i++
			} else {
				offsets = append(offsets, i+1)
			}
		}
	}
	return offsets
}

// findLine finds the 1-based line number for a byte offset via binary
// search over lineOffsets.
func findLine(lineOffsets []int, byteOffset int) int {
	lo, hi := 0, len(lineOffsets)-1
	for lo < hi {
		mid := (lo + hi + 1) / 2
		if lineOffsets[mid] <= byteOffset {
			lo = mid
		} else {
			hi = mid - 1
		}
	}
	return lo + 1
}

// utf16ColumnFromByteOffset scans content from lineStart to byteOffset,
// counting UTF-16 code units, and returns the 1-based column. Runes
// above the Basic Multilingual Plane count as 2 code units (surrogate
// pair), matching the LSP position convention.
func utf16ColumnFromByteOffset(content []byte, lineStart, byteOffset int) int {
	units := 0
	pos := lineStart
	for pos < byteOffset && pos < len(content) {
		r, size := utf8.DecodeRune(content[pos:])
		if r == utf8.RuneError && size <= 1 {
			units++
			pos++
			continue
		}
		if r > 0xFFFF {
			units += 2
		} else {
			units++
		}
		pos += size
	}
	return units + 1
}

// utf16CharToByteOffset converts a UTF-16 character offset (relative to
// lineStart) to a byte offset within content. Stops at the line's
// newline; a charOffset requesting the second half of a surrogate pair
// floors to the start of that rune.
func utf16CharToByteOffset(content []byte, lineStart, charOffset int) int {
	if charOffset <= 0 {
		return lineStart
	}

	pos := lineStart
	units := 0
	for pos < len(content) && units < charOffset {
		r, size := utf8.DecodeRune(content[pos:])
		if r == utf8.RuneError && size <= 1 {
			units++
			pos++
			continue
		}
		if r == '\n' {
			break
		}
		if r > 0xFFFF {
			if units+2 > charOffset && units+1 == charOffset {
				return pos
			}
			units += 2
		} else {
			units++
		}
		pos += size
	}
	return pos
}
