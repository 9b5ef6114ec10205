package pipeline

// StageName is a strongly-typed identifier for a per-module processing
// stage, used in log fields.
type StageName string

// Canonical stage names.
const (
	StagePrepareOutput StageName = "prepare_output"
	StageExport        StageName = "export"
	StageLoadBundle    StageName = "load_bundle"
	StageWritePage     StageName = "write_page"
	StageIndex         StageName = "index"
)
