package docmodel

// SymbolKind is the kind tag the exporter attaches to each documented
// symbol. The set of known kinds is closed; display grouping iterates
// kindTable, so an unknown tag can never surface as a section.
type SymbolKind string

// Known exporter kind tags.
const (
	KindType     SymbolKind = "skType"
	KindConst    SymbolKind = "skConst"
	KindProc     SymbolKind = "skProc"
	KindFunc     SymbolKind = "skFunc"
	KindMethod   SymbolKind = "skMethod"
	KindIterator SymbolKind = "skIterator"
	KindTemplate SymbolKind = "skTemplate"
	KindMacro    SymbolKind = "skMacro"
	KindLet      SymbolKind = "skLet"
	KindVar      SymbolKind = "skVar"
)

// kindTable pairs each kind with its section label, in display order.
// Section order on a page follows this table, not source order.
var kindTable = []struct {
	Kind  SymbolKind
	Label string
}{
	{KindType, "Types"},
	{KindConst, "Constants"},
	{KindProc, "Procedures"},
	{KindFunc, "Functions"},
	{KindMethod, "Methods"},
	{KindIterator, "Iterators"},
	{KindTemplate, "Templates"},
	{KindMacro, "Macros"},
	{KindLet, "Lets"},
	{KindVar, "Variables"},
}

// DisplayOrder returns the fixed total order over known kinds.
func DisplayOrder() []SymbolKind {
	order := make([]SymbolKind, len(kindTable))
	for i, row := range kindTable {
		order[i] = row.Kind
	}
	return order
}

// Label returns the section heading for a known kind, or the raw tag for an
// unknown one.
func (k SymbolKind) Label() string {
	for _, row := range kindTable {
		if row.Kind == k {
			return row.Label
		}
	}
	return string(k)
}

// Known reports whether the kind is part of the closed enumeration.
func (k SymbolKind) Known() bool {
	for _, row := range kindTable {
		if row.Kind == k {
			return true
		}
	}
	return false
}
