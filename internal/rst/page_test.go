package rst

import (
	"strings"
	"testing"

	"git.home.luguber.info/inful/refgen/internal/docmodel"
)

func TestAssemblePageOverloadAnchors(t *testing.T) {
	bundle := &docmodel.DocBundle{
		Entries: []docmodel.SymbolEntry{
			{Name: "foo", Kind: docmodel.KindProc, Code: "proc foo()"},
			{Name: "foo", Kind: docmodel.KindProc, Code: "proc foo(x: int)"},
			{Name: "foo", Kind: docmodel.KindProc, Code: "proc foo(x: string)"},
		},
	}
	page := AssemblePage("mod", "mod", bundle)

	anchors := []string{".. _mod.foo:", ".. _mod.foo.1:", ".. _mod.foo.2:"}
	headings := []string{"foo", "foo (2)", "foo (3)"}

	pos := -1
	for i, a := range anchors {
		idx := strings.Index(page, a+"\n")
		if idx < 0 {
			t.Fatalf("anchor %q missing from page:\n%s", a, page)
		}
		if idx < pos {
			t.Errorf("anchor %q out of order", a)
		}
		pos = idx

		h := headings[i]
		underlined := h + "\n" + strings.Repeat("~", len(h)) + "\n"
		if !strings.Contains(page, underlined) {
			t.Errorf("heading block for %q missing", h)
		}
	}
}

func TestAssemblePageSectionOmission(t *testing.T) {
	bundle := &docmodel.DocBundle{
		Entries: []docmodel.SymbolEntry{
			{Name: "Thing", Kind: docmodel.KindType, Code: "type Thing = object"},
		},
	}
	page := AssemblePage("m", "m", bundle)

	if !strings.Contains(page, "Types\n-----\n") {
		t.Errorf("Types section missing:\n%s", page)
	}
	for _, absent := range []string{"Macros", "Procedures", "Iterators", "Variables"} {
		if strings.Contains(page, absent) {
			t.Errorf("empty section %q must be omitted", absent)
		}
	}
}

func TestAssemblePageSectionOrderFixed(t *testing.T) {
	// Source order is var, proc, type; page order must be type, proc, var.
	bundle := &docmodel.DocBundle{
		Entries: []docmodel.SymbolEntry{
			{Name: "counter", Kind: docmodel.KindVar},
			{Name: "run", Kind: docmodel.KindProc},
			{Name: "Config", Kind: docmodel.KindType},
		},
	}
	page := AssemblePage("m", "m", bundle)

	idxTypes := strings.Index(page, "Types")
	idxProcs := strings.Index(page, "Procedures")
	idxVars := strings.Index(page, "Variables")
	if idxTypes < 0 || idxProcs < 0 || idxVars < 0 {
		t.Fatalf("expected all three sections:\n%s", page)
	}
	if !(idxTypes < idxProcs && idxProcs < idxVars) {
		t.Errorf("sections out of fixed display order: Types@%d Procedures@%d Variables@%d", idxTypes, idxProcs, idxVars)
	}
}

func TestAssemblePagePreservesSourceOrderWithinSection(t *testing.T) {
	bundle := &docmodel.DocBundle{
		Entries: []docmodel.SymbolEntry{
			{Name: "zeta", Kind: docmodel.KindProc},
			{Name: "alpha", Kind: docmodel.KindProc},
		},
	}
	page := AssemblePage("m", "m", bundle)

	if strings.Index(page, ".. _m.zeta:") > strings.Index(page, ".. _m.alpha:") {
		t.Errorf("entries reordered within section:\n%s", page)
	}
}

func TestAssemblePageAnchorsUniqueAcrossKinds(t *testing.T) {
	// The same name under two kinds must not produce the same anchor twice;
	// duplicate labels break cross-referencing downstream.
	bundle := &docmodel.DocBundle{
		Entries: []docmodel.SymbolEntry{
			{Name: "foo", Kind: docmodel.KindType, Code: "type foo = object"},
			{Name: "foo", Kind: docmodel.KindProc, Code: "proc foo()"},
		},
	}
	page := AssemblePage("m", "m", bundle)

	if n := strings.Count(page, ".. _m.foo:\n"); n != 1 {
		t.Errorf("bare anchor must appear exactly once, got %d:\n%s", n, page)
	}
	if !strings.Contains(page, ".. _m.foo.1:\n") {
		t.Errorf("second occurrence missing its numbered anchor:\n%s", page)
	}
	if !strings.Contains(page, "foo (2)\n~~~~~~~\n") {
		t.Errorf("second occurrence missing its numbered heading:\n%s", page)
	}
}

func TestAssemblePageUnknownKindsSkipped(t *testing.T) {
	bundle := &docmodel.DocBundle{
		Entries: []docmodel.SymbolEntry{
			{Name: "ghost", Kind: "skMystery"},
			{Name: "real", Kind: docmodel.KindProc},
		},
	}
	page := AssemblePage("m", "m", bundle)

	if strings.Contains(page, "ghost") || strings.Contains(page, "skMystery") {
		t.Errorf("unknown-kind entry leaked into page:\n%s", page)
	}
	if !strings.Contains(page, ".. _m.real:") {
		t.Errorf("known entry missing:\n%s", page)
	}
}

func TestAssemblePageTitleBlockWidth(t *testing.T) {
	title := "io — Protocol persistence"
	page := AssemblePage("io", title, &docmodel.DocBundle{})

	lines := strings.Split(page, "\n")
	if len(lines) < 3 || lines[1] != title {
		t.Fatalf("title block malformed:\n%s", page)
	}
	wantBar := strings.Repeat("=", len([]rune(title)))
	if lines[0] != wantBar || lines[2] != wantBar {
		t.Errorf("rule width must match title width in runes, got %q", lines[0])
	}
}

func TestAssemblePageEndToEnd(t *testing.T) {
	bundle := &docmodel.DocBundle{
		Entries: []docmodel.SymbolEntry{
			{
				Name:        "add",
				Kind:        docmodel.KindProc,
				Code:        "proc add(a,b:int):int {.inline.}",
				Description: "<p>Adds two numbers.</p>",
			},
		},
	}
	page := AssemblePage("mathutil", "mathutil", bundle)

	for _, want := range []string{
		"========\nmathutil\n========\n",
		"Procedures\n----------\n",
		".. _mathutil.add:\n",
		"add\n~~~\n",
		".. code-block:: nim\n\n   proc add(a,b:int):int\n",
		"Adds two numbers.",
	} {
		if !strings.Contains(page, want) {
			t.Errorf("page missing %q:\n%s", want, page)
		}
	}
	if strings.Contains(page, "{.inline.}") {
		t.Error("pragma must be stripped from the code block")
	}
}

func TestAssemblePageModuleDescription(t *testing.T) {
	bundle := &docmodel.DocBundle{
		ModuleDescription: "<p>Core <b>types</b>.</p>",
	}
	page := AssemblePage("definitions", "definitions", bundle)
	if !strings.Contains(page, "Core **types**.\n") {
		t.Errorf("converted module description missing:\n%s", page)
	}

	empty := AssemblePage("definitions", "definitions", &docmodel.DocBundle{})
	if strings.Contains(empty, "Core") {
		t.Error("empty description must emit nothing")
	}
}

func TestAssemblePageMultilineCodeIndent(t *testing.T) {
	bundle := &docmodel.DocBundle{
		Entries: []docmodel.SymbolEntry{
			{Name: "f", Kind: docmodel.KindProc, Code: "proc f(\n  x: int\n)"},
		},
	}
	page := AssemblePage("m", "m", bundle)
	for _, want := range []string{"   proc f(", "     x: int", "   )"} {
		if !strings.Contains(page, want+"\n") {
			t.Errorf("code line %q not indented uniformly:\n%s", want, page)
		}
	}
}
