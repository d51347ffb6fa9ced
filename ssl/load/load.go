// Package load drives component C of the analysis engine: it walks the
// #include transitive closure of an SSL document, parsing each file in
// turn and recording its Analysis-building inputs (syntax tree and
// diagnostics) for every source reached.
package load

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/ssl-lang/ssl-lsp/diag"
	"github.com/ssl-lang/ssl-lsp/internal/source"
	"github.com/ssl-lang/ssl-lsp/location"
	"github.com/ssl-lang/ssl-lsp/ssl"
)

// FileReader abstracts reading an #include target's content, so tests can
// substitute an in-memory filesystem for os.ReadFile.
type FileReader interface {
	ReadFile(path string) ([]byte, error)
}

// OSFileReader reads files from the real filesystem.
type OSFileReader struct{}

// ReadFile implements FileReader.
func (OSFileReader) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}

// Closure is the result of walking a document's #include transitive
// closure: one parsed TranslationUnit and diagnostic Result per source
// reached, plus the depth-first visitation order.
//
// Per the open question in the design notes, when two headers in the
// closure declare the same name, no ordering is promised between them;
// the later-visited declaration wins at the symbol-index layer, mirroring
// this package's depth-first, seen-guarded recursion order.
type Closure struct {
	Entry  location.SourceID
	Units  map[location.SourceID]*ssl.TranslationUnit
	Issues map[location.SourceID]diag.Result
	// Order lists every source reached, entry first, in depth-first
	// #include visitation order.
	Order []location.SourceID
}

// Load parses entry and recursively follows every #include reachable from
// it, registering each file's content into reg (so that byte<->position
// queries work uniformly across the closure) as it is loaded. Missing
// include targets produce a single Warning diagnostic on the directive's
// path span and do not abort the walk; a cycle (a source already present
// in the closure) is not re-entered.
func Load(entry location.SourceID, entryContent []byte, reg *source.Registry, reader FileReader) *Closure {
	c := &Closure{
		Entry:  entry,
		Units:  make(map[location.SourceID]*ssl.TranslationUnit),
		Issues: make(map[location.SourceID]diag.Result),
	}
	c.loadOne(entry, entryContent, reg, reader)
	return c
}

func (c *Closure) loadOne(id location.SourceID, content []byte, reg *source.Registry, reader FileReader) {
	if _, seen := c.Units[id]; seen {
		return
	}

	reg.Register(id, content)
	collector := diag.NewCollectorUnlimited()
	tu := ssl.Parse(id, content, collector)

	c.Units[id] = tu
	c.Order = append(c.Order, id)

	for _, decl := range tu.Decls {
		inc, ok := decl.(*ssl.IncludeDirective)
		if !ok {
			continue
		}

		resolvedID, childContent, err := resolveInclude(id, inc.Path, reader)
		if err != nil {
			collector.Collect(diag.NewIssue(diag.Warning, diag.E_INCLUDE_NOT_FOUND,
				fmt.Sprintf("cannot find include file %q: %s", inc.Path, err)).
				WithSpan(inc.PathSpan).
				WithDetail(diag.DetailKeyPath, inc.Path).
				Build())
			continue
		}
		inc.Resolved = resolvedID
		c.loadOne(resolvedID, childContent, reg, reader)
	}

	c.Issues[id] = collector.Result()
}

// resolveInclude resolves an #include path against the directory of the
// including source: absolute paths are used as-is, relative paths are
// joined to that directory. The including source must be file-backed for
// relative resolution; synthetic (in-memory, non-path) sources can only
// satisfy absolute include paths.
func resolveInclude(including location.SourceID, includePath string, reader FileReader) (location.SourceID, []byte, error) {
	var resolved location.CanonicalPath
	if filepath.IsAbs(includePath) {
		var err error
		resolved, err = location.NewCanonicalPath(includePath)
		if err != nil {
			return location.SourceID{}, nil, err
		}
	} else {
		cp, ok := including.CanonicalPath()
		if !ok {
			return location.SourceID{}, nil, fmt.Errorf("relative include %q from a non-file source", includePath)
		}
		var err error
		resolved, err = cp.Dir().Join(includePath)
		if err != nil {
			return location.SourceID{}, nil, err
		}
	}

	content, err := reader.ReadFile(resolved.String())
	if err != nil {
		return location.SourceID{}, nil, err
	}

	return location.SourceIDFromCanonicalPath(resolved), content, nil
}
