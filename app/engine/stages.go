package engine

import (
	"fmt"
	"sort"
	"strings"

	"sweepboard/app/interfaces"
)

// FilterStage selects the rows matching the active filter rules.
type FilterStage struct {
	rules []interfaces.FilterRule
	logic interfaces.FilterLogic
}

// NewFilterStage creates a filter stage from the full rule set; dormant rules
// (empty operand, non-emptiness operator) are ignored at execution time.
func NewFilterStage(rules []interfaces.FilterRule, logic interfaces.FilterLogic) *FilterStage {
	if logic != interfaces.LogicAny {
		logic = interfaces.LogicAll
	}
	return &FilterStage{rules: rules, logic: logic}
}

// Execute returns the rows passing the rule set. With no active rules every
// row passes.
func (f *FilterStage) Execute(input *StageResult) *StageResult {
	active := make([]interfaces.FilterRule, 0, len(f.rules))
	for _, r := range f.rules {
		if RuleActive(r) {
			active = append(active, r)
		}
	}
	if len(active) == 0 {
		return &StageResult{Columns: input.Columns, Rows: input.Rows}
	}

	var matched []*interfaces.Row
	for _, row := range input.Rows {
		if matchRow(row, active, f.logic) {
			matched = append(matched, row)
		}
	}
	return &StageResult{Columns: input.Columns, Rows: matched}
}

// matchRow applies the combinator across active rules for one row.
func matchRow(row *interfaces.Row, rules []interfaces.FilterRule, logic interfaces.FilterLogic) bool {
	if logic == interfaces.LogicAny {
		for _, r := range rules {
			if EvalRule(r, row) {
				return true
			}
		}
		return false
	}
	for _, r := range rules {
		if !EvalRule(r, row) {
			return false
		}
	}
	return true
}

// CacheKey returns a key fragment covering every rule and the combinator.
func (f *FilterStage) CacheKey() string {
	parts := make([]string, 0, len(f.rules)+1)
	parts = append(parts, "logic="+string(f.logic))
	for _, r := range f.rules {
		parts = append(parts, fmt.Sprintf("%s:%s:%s", r.Column, r.Operator, r.Operand))
	}
	return "filter:" + strings.Join(parts, ";")
}

// Name returns the stage name.
func (f *FilterStage) Name() string {
	return "filter"
}

// SortStage orders rows by one column using the sort-parse comparator.
type SortStage struct {
	column     string
	descending bool
}

// NewSortStage creates a sort stage for a column. An empty column name makes
// the stage a no-op so callers can build the pipeline unconditionally.
func NewSortStage(column string, descending bool) *SortStage {
	return &SortStage{column: column, descending: descending}
}

// Execute returns the rows ordered by the stage column. The sort is stable:
// equal keys keep their relative input order, which keeps repeated queries
// deterministic. A column missing from a row sorts as absent (after every
// present value, in either direction). The input slice is copied, never
// reordered in place, because it may be shared with cached results.
func (s *SortStage) Execute(input *StageResult) *StageResult {
	if s.column == "" || len(input.Rows) == 0 {
		return &StageResult{Columns: input.Columns, Rows: input.Rows}
	}

	rows := make([]*interfaces.Row, len(input.Rows))
	copy(rows, input.Rows)

	keys := make([]Val, len(rows))
	for i, row := range rows {
		raw, ok := row.Cell(s.column)
		if !ok {
			keys[i] = Val{Absent: true}
			continue
		}
		keys[i] = ParseVal(raw)
	}

	idx := make([]int, len(rows))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		cmp := CompareVals(keys[idx[a]], keys[idx[b]])
		if cmp == 0 {
			return false
		}
		// Absent cells stay at the end regardless of direction.
		if keys[idx[a]].Absent || keys[idx[b]].Absent {
			return cmp < 0
		}
		if s.descending {
			return cmp > 0
		}
		return cmp < 0
	})

	ordered := make([]*interfaces.Row, len(rows))
	for i, j := range idx {
		ordered[i] = rows[j]
	}
	return &StageResult{Columns: input.Columns, Rows: ordered}
}

// CacheKey returns a key fragment with the column and direction.
func (s *SortStage) CacheKey() string {
	return fmt.Sprintf("sort:col=%s:desc=%t", s.column, s.descending)
}

// Name returns the stage name.
func (s *SortStage) Name() string {
	return "sort"
}

// PageStage slices the row set into one fixed-size page.
type PageStage struct {
	page int
	size int
}

// NewPageStage creates a page stage. Sizes below 1 fall back to the default.
func NewPageStage(page, size int) *PageStage {
	if size < 1 {
		size = DefaultPageSize
	}
	return &PageStage{page: page, size: size}
}

// DefaultPageSize matches the dashboard's default table height.
const DefaultPageSize = 20

// Execute clamps the requested page into the valid range and returns the
// corresponding contiguous slice. Shrinking filters or page-size changes
// clamp rather than error; an empty row set yields one empty page.
func (p *PageStage) Execute(input *StageResult) *StageResult {
	total := len(input.Rows)
	totalPages := (total + p.size - 1) / p.size
	if totalPages < 1 {
		totalPages = 1
	}
	page := p.page
	if page < 1 {
		page = 1
	}
	if page > totalPages {
		page = totalPages
	}

	start := (page - 1) * p.size
	end := start + p.size
	if start > total {
		start = total
	}
	if end > total {
		end = total
	}

	return &StageResult{
		Columns:    input.Columns,
		Rows:       input.Rows[start:end],
		Page:       page,
		TotalPages: totalPages,
		TotalRows:  total,
	}
}

// CacheKey returns a key fragment with the page and size.
func (p *PageStage) CacheKey() string {
	return fmt.Sprintf("page:%d:size:%d", p.page, p.size)
}

// Name returns the stage name.
func (p *PageStage) Name() string {
	return "page"
}
