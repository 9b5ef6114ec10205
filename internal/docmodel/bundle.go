// Package docmodel holds the in-memory representation of one module's
// exported JSON documentation and its loader.
package docmodel

import (
	"encoding/json"
	"os"

	"git.home.luguber.info/inful/refgen/internal/errors"
)

// SymbolEntry is one documented symbol occurrence. A symbol appears multiple
// times when it is overloaded.
type SymbolEntry struct {
	Name        string     `json:"name"`
	Kind        SymbolKind `json:"type"`
	Code        string     `json:"code,omitempty"`
	Description string     `json:"description,omitempty"`
}

// DocBundle is the parsed documentation for one module. Entries preserve the
// exporter's order exactly (declaration order in source); the bundle is not
// mutated after loading.
type DocBundle struct {
	ModuleDescription string        `json:"moduleDescription"`
	Entries           []SymbolEntry `json:"entries"`

	// DefaultedKinds counts entries whose kind tag was absent and was
	// defaulted to skProc. Surfaced as a warning by the pipeline.
	DefaultedKinds int `json:"-"`
}

// Load parses the exporter's JSON file at path into a DocBundle.
// A missing file yields a filesystem-category error, unparseable JSON a
// parse-category error; both are module-scoped.
func Load(path string) (*DocBundle, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.InputNotFound(path)
		}
		return nil, errors.Wrap(err, errors.CategoryFileSystem, errors.SeverityError, "cannot read documentation JSON").
			WithContext("path", path)
	}

	var bundle DocBundle
	if err := json.Unmarshal(data, &bundle); err != nil {
		return nil, errors.MalformedInput(path, err)
	}

	// Partial exporter output may omit the kind tag; default it to skProc
	// but keep count so callers can report the leniency.
	for i := range bundle.Entries {
		if bundle.Entries[i].Kind == "" {
			bundle.Entries[i].Kind = KindProc
			bundle.DefaultedKinds++
		}
	}

	return &bundle, nil
}

// UnknownKinds returns the distinct unrecognized kind tags present in the
// bundle, in first-seen order. Such entries are skipped during assembly.
func (b *DocBundle) UnknownKinds() []SymbolKind {
	var unknown []SymbolKind
	seen := make(map[SymbolKind]bool)
	for _, e := range b.Entries {
		if !e.Kind.Known() && !seen[e.Kind] {
			seen[e.Kind] = true
			unknown = append(unknown, e.Kind)
		}
	}
	return unknown
}
