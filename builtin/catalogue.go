// Package builtin provides the fixed catalogue of opcodes recognized by the
// SSL analysis engine: the built-in procedures and functions that every SSL
// script may call without a matching user-written procedure declaration.
package builtin

import (
	"embed"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
)

//go:embed catalogue.json
var catalogueFS embed.FS

// Entry describes a single built-in opcode: its name, a short display label
// suitable for hover and signature-help rendering, its formal parameter
// names, and a one-line doc string.
type Entry struct {
	Name       string   `json:"name"`
	Label      string   `json:"label"`
	Parameters []string `json:"parameters"`
	Doc        string   `json:"doc"`
}

// Arity returns the number of formal parameters the opcode accepts.
func (e Entry) Arity() int {
	return len(e.Parameters)
}

var (
	once    sync.Once
	entries []Entry
	byName  map[string]Entry
	loadErr error
)

func load() {
	once.Do(func() {
		data, err := catalogueFS.ReadFile("catalogue.json")
		if err != nil {
			loadErr = fmt.Errorf("builtin: read catalogue: %w", err)
			return
		}
		var decoded []Entry
		if err := json.Unmarshal(data, &decoded); err != nil {
			loadErr = fmt.Errorf("builtin: parse catalogue: %w", err)
			return
		}
		sort.Slice(decoded, func(i, j int) bool {
			return decoded[i].Name < decoded[j].Name
		})
		byName = make(map[string]Entry, len(decoded))
		for _, e := range decoded {
			byName[e.Name] = e
		}
		entries = decoded
	})
}

// All returns every built-in opcode, sorted by name. The returned slice must
// not be mutated by callers.
func All() []Entry {
	load()
	if loadErr != nil {
		panic(loadErr)
	}
	return entries
}

// Lookup returns the built-in opcode with the given name and reports
// whether it exists.
func Lookup(name string) (Entry, bool) {
	load()
	if loadErr != nil {
		panic(loadErr)
	}
	e, ok := byName[name]
	return e, ok
}

// IsBuiltin reports whether name names a built-in opcode.
func IsBuiltin(name string) bool {
	_, ok := Lookup(name)
	return ok
}
