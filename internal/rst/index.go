package rst

import (
	"strings"
)

// AssembleIndex renders the top-level API index page. Module names appear in
// the order given; that order is the configured declaration order, which
// preserves intentional grouping (not alphabetical).
func AssembleIndex(moduleNames []string) string {
	title := "API Reference"
	bar := strings.Repeat("=", len(title))

	lines := []string{
		bar,
		title,
		bar,
		"",
		"Complete reference for all exported symbols.",
		"Generated automatically from source docstrings via ``nim jsondoc``.",
		"",
		".. toctree::",
		"   :maxdepth: 1",
		"   :caption: Modules",
		"",
	}
	for _, name := range moduleNames {
		lines = append(lines, "   "+name)
	}
	lines = append(lines, "")

	return strings.Join(lines, "\n")
}
