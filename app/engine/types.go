package engine

import "sweepboard/app/interfaces"

// StageResult is the data flowing between pipeline stages: the column
// universe plus the surviving row set. Page metadata is filled in by the
// page stage, zero before it runs.
type StageResult struct {
	Columns    []string
	Rows       []*interfaces.Row
	Page       int // clamped 1-based page, 0 until paged
	TotalPages int
	TotalRows  int // row count before the page slice was taken
}

// PipelineStage is a single step of the query pipeline. Stages are pure:
// they never mutate their input rows.
type PipelineStage interface {
	// Execute processes the input and returns a new stage result.
	Execute(input *StageResult) *StageResult

	// CacheKey returns a key fragment identifying this stage's parameters.
	CacheKey() string

	// Name returns the stage name for logging.
	Name() string
}

// QueryResult is the final output of pipeline execution.
type QueryResult struct {
	Columns    []string
	Rows       []*interfaces.Row
	Page       int
	TotalPages int
	TotalRows  int // filtered row count across all pages
	Cached     bool
}
