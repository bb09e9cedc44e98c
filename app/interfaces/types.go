package interfaces

import "time"

// Variant-activation carrier pseudo-columns supplied by the results feed.
// They are never independently filterable, sortable or visible; their content
// is parsed into Row.Activations at ingest and the columns themselves are
// stripped from the column universe.
const (
	VariantColumnsField     = "variant_columns"
	VariantActivationsField = "variant_activations"
)

// IsCarrierColumn reports whether a column name is one of the two
// variant-activation carrier pseudo-columns.
func IsCarrierColumn(name string) bool {
	return name == VariantColumnsField || name == VariantActivationsField
}

// Row represents a single experiment-result record. Columns are an open
// mapping because the column set varies per sweep; a column that is missing
// from Cells is absent (null cells are dropped at ingest). Activations holds
// the per-variant display emphasis flags and is never merged into Cells.
type Row struct {
	Index       int               // 0-based position in the loaded snapshot
	Cells       map[string]string // column name -> raw cell text
	Activations map[string]bool   // variant column -> activation flag (display only)
}

// Cell returns the raw text of a column and whether the column is present.
func (r *Row) Cell(col string) (string, bool) {
	if r == nil || r.Cells == nil {
		return "", false
	}
	v, ok := r.Cells[col]
	return v, ok
}

// Snapshot is one immutable load of the results feed. A reload builds a new
// Snapshot and swaps the pointer; rows are never mutated in place.
type Snapshot struct {
	Columns  []string            // ordered column names (carriers already stripped)
	Groups   map[string][]string // loader-provided column groups
	Rows     []*Row
	Total    int
	ModToken string // feed mtime token, empty if the feed supplied none
	LoadedAt time.Time
}

// Filter operators understood by the predicate evaluator.
const (
	OpEq          = "eq"
	OpNeq         = "neq"
	OpContains    = "contains"
	OpNotContains = "not_contains"
	OpStartsWith  = "starts_with"
	OpEndsWith    = "ends_with"
	OpIn          = "in"
	OpGt          = "gt"
	OpGte         = "gte"
	OpLt          = "lt"
	OpLte         = "lte"
	OpBetween     = "between"
	OpEmpty       = "empty"
	OpNotEmpty    = "not_empty"
)

// FilterRule is one user-composed filter predicate. A rule with an empty
// operand is inactive unless the operator is empty/not_empty.
type FilterRule struct {
	ID       string `json:"id" yaml:"id"`
	Column   string `json:"column" yaml:"column"`
	Operator string `json:"operator" yaml:"operator"`
	Operand  string `json:"operand" yaml:"operand"`
}

// FilterLogic selects how active rules combine.
type FilterLogic string

const (
	LogicAll FilterLogic = "all" // every active rule must match
	LogicAny FilterLogic = "any" // at least one active rule must match
)

// Requirement is one completeness-check axis: a column plus the operand text
// that parses into its required value specs.
type Requirement struct {
	Column  string `json:"column" yaml:"column"`
	Operand string `json:"operand" yaml:"operand"`
}

// ViewState is the per-user persisted state of the results browser. It is
// owned by the caller and passed into the engine; the engine never stores it.
type ViewState struct {
	Filters          []FilterRule    `json:"filters" yaml:"filters"`
	FilterLogic      FilterLogic     `json:"filterLogic" yaml:"filter_logic"`
	CompletenessRows []Requirement   `json:"completenessRows" yaml:"completeness_rows"`
	SummaryCol       string          `json:"summaryCol" yaml:"summary_col"`
	ColumnVisibility map[string]bool `json:"columnVisibility" yaml:"column_visibility"`
	PageSize         int             `json:"pageSize" yaml:"page_size"`
}

// SortSpec selects the sort column and direction for a query. An empty
// Column keeps the filtered rows in load order.
type SortSpec struct {
	Column     string `json:"column"`
	Descending bool   `json:"descending"`
}

// ColumnGroup is a named bucket of related columns for bulk show/hide.
// Columns outside every loader-provided group land in the implicit
// OtherGroupName group.
type ColumnGroup struct {
	Name    string   `json:"name"`
	Columns []string `json:"columns"`
}

// OtherGroupName is the implicit group for columns the loader did not bucket.
const OtherGroupName = "other"
