package rst

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"git.home.luguber.info/inful/refgen/internal/docmodel"
)

const codeIndent = "   "

// AssemblePage renders one module's DocBundle as a complete RST page:
// title block, converted module description, then one section per symbol
// kind in the fixed display order. Overloaded names get disambiguated
// anchors and numbered headings; the occurrence counter is local to this
// call. Sections with no entries are omitted.
func AssemblePage(moduleName, title string, bundle *docmodel.DocBundle) string {
	var lines []string

	bar := strings.Repeat("=", utf8.RuneCountInString(title))
	lines = append(lines, bar, title, bar, "")

	if desc := Convert(bundle.ModuleDescription); desc != "" {
		lines = append(lines, desc, "")
	}

	// Group by kind, preserving source order within each group.
	byKind := make(map[docmodel.SymbolKind][]docmodel.SymbolEntry)
	for _, entry := range bundle.Entries {
		byKind[entry.Kind] = append(byKind[entry.Kind], entry)
	}

	// Seen-name counter disambiguates overloaded symbols. Anchors must be
	// unique across the whole page, so the counter spans all sections: a
	// name shared between kinds still gets distinct anchors.
	nameCount := make(map[string]int)

	for _, kind := range docmodel.DisplayOrder() {
		entries := byKind[kind]
		if len(entries) == 0 {
			continue
		}

		section := kind.Label()
		lines = append(lines, section, strings.Repeat("-", utf8.RuneCountInString(section)), "")

		for _, entry := range entries {
			count := nameCount[entry.Name]
			nameCount[entry.Name] = count + 1

			lines = append(lines, ".. _"+anchor(moduleName, entry.Name, count)+":", "")

			heading := entry.Name
			if count > 0 {
				heading = fmt.Sprintf("%s (%d)", entry.Name, count+1)
			}
			lines = append(lines, heading, strings.Repeat("~", utf8.RuneCountInString(heading)), "")

			if code := CleanSignature(entry.Code); code != "" {
				lines = append(lines, ".. code-block:: nim", "")
				for _, codeLine := range strings.Split(code, "\n") {
					lines = append(lines, codeIndent+codeLine)
				}
				lines = append(lines, "")
			}

			if desc := Convert(entry.Description); desc != "" {
				lines = append(lines, desc, "")
			}
		}
	}

	return strings.Join(lines, "\n") + "\n"
}

// anchor builds the cross-reference label for the count-th occurrence of
// name (0-indexed): bare "module.name" first, "module.name.N" after.
func anchor(moduleName, name string, count int) string {
	label := moduleName + "." + name
	if count > 0 {
		label += "." + strconv.Itoa(count)
	}
	return label
}
