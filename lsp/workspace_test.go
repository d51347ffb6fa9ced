package lsp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

// capturedPublish records one publishDiagnostics notification.
type capturedPublish struct {
	URI         string
	Diagnostics []protocol.Diagnostic
}

// captureNotifier returns a Notifier that appends every
// publishDiagnostics payload to the returned slice.
func captureNotifier(published *[]capturedPublish) Notifier {
	return func(method string, params any) {
		if method != protocol.ServerTextDocumentPublishDiagnostics {
			return
		}
		p, ok := params.(protocol.PublishDiagnosticsParams)
		if !ok {
			return
		}
		*published = append(*published, capturedPublish{URI: p.URI, Diagnostics: p.Diagnostics})
	}
}

func newTestWorkspace(reader memReader) *Workspace {
	return NewWorkspace(testLogger(), Config{}, reader)
}

func TestWorkspaceOpenStoresVersionAndText(t *testing.T) {
	w := newTestWorkspace(memReader{})
	uri := PathToURI("/ws/main.ssl")

	w.DocumentOpened(uri, 1, "variable x;\n")
	doc := w.GetDocumentSnapshot(uri)
	require.NotNil(t, doc)
	assert.Equal(t, 1, doc.Version)
	assert.Equal(t, "variable x;\n", doc.Text)
	assert.True(t, doc.SourceID.IsFilePath())
}

func TestWorkspaceChangeMonotonicVersions(t *testing.T) {
	w := newTestWorkspace(memReader{})
	uri := PathToURI("/ws/main.ssl")

	w.DocumentOpened(uri, 1, "variable a;\n")
	assert.True(t, w.DocumentChanged(uri, 2, "variable b;\n"))
	assert.True(t, w.DocumentChanged(uri, 5, "variable c;\n"))

	// Equal and lower versions are stale and must be ignored.
	assert.False(t, w.DocumentChanged(uri, 5, "variable stale;\n"))
	assert.False(t, w.DocumentChanged(uri, 3, "variable stale;\n"))

	doc := w.GetDocumentSnapshot(uri)
	require.NotNil(t, doc)
	assert.Equal(t, 5, doc.Version)
	assert.Equal(t, "variable c;\n", doc.Text)
}

func TestWorkspaceChangeUnknownDocument(t *testing.T) {
	w := newTestWorkspace(memReader{})
	assert.False(t, w.DocumentChanged(PathToURI("/ws/ghost.ssl"), 2, "x"))
}

func TestWorkspaceLineEndingsNormalized(t *testing.T) {
	w := newTestWorkspace(memReader{})
	uri := PathToURI("/ws/main.ssl")

	w.DocumentOpened(uri, 1, "variable a;\r\nvariable b;\r")
	doc := w.GetDocumentSnapshot(uri)
	require.NotNil(t, doc)
	assert.Equal(t, "variable a;\nvariable b;\n", doc.Text)
}

func TestAnalyzeAndPublishStoresSnapshot(t *testing.T) {
	w := newTestWorkspace(memReader{})
	uri := PathToURI("/ws/main.ssl")

	w.DocumentOpened(uri, 1, "variable x := 0;\n")
	snap := w.AnalyzeAndPublish(nil, uri)
	require.NotNil(t, snap)
	assert.Equal(t, 1, snap.EntryVersion)
	assert.Same(t, snap, w.LatestSnapshot(uri))

	// Re-analysis after a change replaces the snapshot wholesale.
	w.DocumentChanged(uri, 2, "variable y := 1;\n")
	snap2 := w.AnalyzeAndPublish(nil, uri)
	require.NotNil(t, snap2)
	assert.Equal(t, 2, snap2.EntryVersion)
	assert.NotSame(t, snap, snap2)
	assert.Same(t, snap2, w.LatestSnapshot(uri))
}

func TestAnalyzeAndPublishUnopenedURI(t *testing.T) {
	w := newTestWorkspace(memReader{})
	assert.Nil(t, w.AnalyzeAndPublish(nil, PathToURI("/ws/ghost.ssl")))
}

func TestDiagnosticsFlipAndAlwaysRepublished(t *testing.T) {
	w := newTestWorkspace(memReader{})
	uri := PathToURI("/ws/main.ssl")
	var published []capturedPublish
	notify := captureNotifier(&published)

	// Valid program: an empty diagnostic list is still published.
	w.DocumentOpened(uri, 1, "variable x := 0;\n\nprocedure start begin\n    x := 1;\nend\n")
	w.AnalyzeAndPublish(notify, uri)
	require.Len(t, published, 1)
	assert.Equal(t, uri, published[0].URI)
	assert.Empty(t, published[0].Diagnostics)

	// Broken program: a second publish carries at least one error.
	w.DocumentChanged(uri, 2, "this is broken\n")
	w.AnalyzeAndPublish(notify, uri)
	require.Len(t, published, 2)
	require.NotEmpty(t, published[1].Diagnostics)
	require.NotNil(t, published[1].Diagnostics[0].Severity)
	assert.Equal(t, protocol.DiagnosticSeverityError, *published[1].Diagnostics[0].Severity)

	// Fixing the program publishes an empty list again, clearing the
	// client's diagnostics.
	w.DocumentChanged(uri, 3, "variable x := 0;\n")
	w.AnalyzeAndPublish(notify, uri)
	require.Len(t, published, 3)
	assert.Empty(t, published[2].Diagnostics)
}

func TestHeaderDiagnosticsPublishedAndCleared(t *testing.T) {
	reader := memReader{
		"/ws/bad.h": "this is broken\n",
	}
	w := newTestWorkspace(reader)
	uri := PathToURI("/ws/main.ssl")
	headerURI := PathToURI("/ws/bad.h")
	var published []capturedPublish
	notify := captureNotifier(&published)

	w.DocumentOpened(uri, 1, "#include \"bad.h\"\n")
	w.AnalyzeAndPublish(notify, uri)

	byURI := make(map[string][]protocol.Diagnostic)
	for _, p := range published {
		byURI[p.URI] = p.Diagnostics
	}
	assert.Contains(t, byURI, uri)
	require.Contains(t, byURI, headerURI)
	assert.NotEmpty(t, byURI[headerURI])

	// Dropping the include clears the header's diagnostics.
	published = published[:0]
	w.DocumentChanged(uri, 2, "variable x;\n")
	w.AnalyzeAndPublish(notify, uri)

	var clearedHeader bool
	for _, p := range published {
		if p.URI == headerURI && len(p.Diagnostics) == 0 {
			clearedHeader = true
		}
	}
	assert.True(t, clearedHeader, "stale header diagnostics must be cleared")
}

func TestDocumentClosedDropsStateAndClearsDiagnostics(t *testing.T) {
	w := newTestWorkspace(memReader{})
	uri := PathToURI("/ws/main.ssl")
	var published []capturedPublish
	notify := captureNotifier(&published)

	w.DocumentOpened(uri, 1, "this is broken\n")
	w.AnalyzeAndPublish(notify, uri)
	require.NotEmpty(t, published)

	published = published[:0]
	w.DocumentClosed(notify, uri)
	assert.Nil(t, w.GetDocumentSnapshot(uri))
	assert.Nil(t, w.LatestSnapshot(uri))

	require.Len(t, published, 1)
	assert.Equal(t, uri, published[0].URI)
	assert.Empty(t, published[0].Diagnostics)
}

func TestOpenHeaderBufferOverlaysDisk(t *testing.T) {
	reader := memReader{
		"/ws/defs.h": "#define ONDISK 1\n",
	}
	w := newTestWorkspace(reader)
	mainURI := PathToURI("/ws/main.ssl")
	headerURI := PathToURI("/ws/defs.h")

	w.DocumentOpened(headerURI, 1, "#define INBUFFER 1\n")
	w.DocumentOpened(mainURI, 1, "#include \"defs.h\"\n")
	snap := w.AnalyzeAndPublish(nil, mainURI)
	require.NotNil(t, snap)

	assert.NotNil(t, snap.ResolveName("INBUFFER", snap.EntrySourceID, ""))
	assert.Nil(t, snap.ResolveName("ONDISK", snap.EntrySourceID, ""))
}

func TestSourceIDForURINonFileScheme(t *testing.T) {
	id := sourceIDForURI("untitled:Untitled-1")
	assert.False(t, id.IsZero())
	assert.False(t, id.IsFilePath())

	// Each untitled buffer gets its own identity.
	other := sourceIDForURI("untitled:Untitled-1")
	assert.NotEqual(t, id, other)
}

func TestRemapPathToURIPrefersOpenDocument(t *testing.T) {
	w := newTestWorkspace(memReader{})
	uri := PathToURI("/ws/main.ssl")
	w.DocumentOpened(uri, 1, "variable x;\n")

	assert.Equal(t, uri, w.RemapPathToURI("/ws/main.ssl"))
	assert.Equal(t, PathToURI("/ws/other.ssl"), w.RemapPathToURI("/ws/other.ssl"))
}
