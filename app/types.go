package app

import (
	"sweepboard/app/interfaces"
)

// QueryRequest selects a page of the filtered view. Filters, page size and
// column visibility come from the persisted view state, not the request.
type QueryRequest struct {
	Page int                 `json:"page"` // 1-based page, as entered by the user
	Sort interfaces.SortSpec `json:"sort"`
}

// QueryResponse is one rendered page of results for the frontend grid.
type QueryResponse struct {
	Columns     []string          `json:"columns"`
	Rows        [][]string        `json:"rows"`        // cell text aligned with Columns
	Activations []map[string]bool `json:"activations"` // per row: variant column -> active
	Page        int               `json:"page"`
	TotalPages  int               `json:"totalPages"`
	TotalRows   int               `json:"totalRows"`
	Cached      bool              `json:"cached"`
}

// ColumnsResponse describes the column universe for the visibility panel.
type ColumnsResponse struct {
	Columns    []string                 `json:"columns"`
	Visibility map[string]bool          `json:"visibility"`
	Groups     []interfaces.ColumnGroup `json:"groups"`
}

// CompletenessResponse is the rendered completeness report.
type CompletenessResponse struct {
	SummaryCol string   `json:"summaryCol"`
	Lines      []string `json:"lines"`
	Missing    int      `json:"missing"`
	Total      int      `json:"total"`
}

// RefreshResult reports the outcome of a snapshot refresh.
type RefreshResult struct {
	Changed   bool   `json:"changed"`
	TotalRows int    `json:"totalRows"`
	ModToken  string `json:"modToken"`
}

// CacheStatsResponse contains cache statistics for the frontend
type CacheStatsResponse struct {
	TotalSize    int64   `json:"totalSize"`
	MaxSize      int64   `json:"maxSize"`
	UsagePercent float64 `json:"usagePercent"`
	EntryCount   int     `json:"entryCount"`
}

// RangeSpec represents an inclusive range of zero-based row indexes in the filtered view
type RangeSpec struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// CopySelectionRequest carries the selection for backend clipboard copy.
// Ranges index into the full filtered/sorted view, not the current page.
type CopySelectionRequest struct {
	Ranges    []RangeSpec         `json:"ranges"`
	SelectAll bool                `json:"selectAll"`
	Sort      interfaces.SortSpec `json:"sort"`
}

// CopySelectionResult reports the number of data rows copied
type CopySelectionResult struct {
	RowsCopied int `json:"rowsCopied"`
}

// ExportRequest selects what to export to a spreadsheet.
type ExportRequest struct {
	Sort            interfaces.SortSpec `json:"sort"`
	DefaultFilename string              `json:"defaultFilename"`
}

// ExportResult reports the outcome of an export.
type ExportResult struct {
	RowsExported int    `json:"rowsExported"`
	Path         string `json:"path"`
	Cancelled    bool   `json:"cancelled"`
}
