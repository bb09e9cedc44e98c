package completeness

import (
	"fmt"
	"sort"
	"strings"

	"sweepboard/app/engine"
	"sweepboard/app/interfaces"
)

// Informational report outcomes. These are normal results, not errors.
const (
	MsgNoRequirements = "No required parameters specified."
	MsgComplete       = "Complete: all combinations found."
)

// ExpressionColumn is auto-added as a requirement axis when present in the
// data, so that observed-but-unlisted expressions are still checked against
// every other axis.
const ExpressionColumn = "expression"

// Report is the outcome of a completeness check.
type Report struct {
	SummaryCol string   `json:"summaryCol"` // may differ from the requested column (re-picked)
	Lines      []string `json:"lines"`
	Missing    int      `json:"missing"` // number of missing combinations
	Total      int      `json:"total"`   // size of the checked cross-product
}

// axis is one requirement with its parsed specs.
type axis struct {
	column string
	specs  []ValueSpec
}

// pair is one chosen spec on one axis inside a combination.
type pair struct {
	column string
	spec   ValueSpec
}

// Check enumerates the cross-product of the requirement specs and reports
// which combinations no observed row satisfies, grouped by the non-summary
// pairs and summarized over summaryCol. Rows are the *unfiltered* snapshot
// rows; the check is independent of the current filter state.
//
// The product size is the product of each requirement's spec count, so wide
// sweeps with many listed values produce large (but finite) products. No cap
// is imposed; this is the documented scaling limit of the check.
func Check(rows []*interfaces.Row, reqs []interfaces.Requirement, summaryCol string) *Report {
	axes := buildAxes(rows, reqs)
	if len(axes) == 0 {
		return &Report{SummaryCol: summaryCol, Lines: []string{MsgNoRequirements}}
	}

	summaryCol = pickSummaryColumn(axes, summaryCol)

	combos := crossProduct(axes)
	var missing []([]pair)
	for _, combo := range combos {
		if !anyRowSatisfies(rows, combo) {
			missing = append(missing, combo)
		}
	}

	report := &Report{SummaryCol: summaryCol, Missing: len(missing), Total: len(combos)}
	if len(missing) == 0 {
		report.Lines = []string{MsgComplete}
		return report
	}
	report.Lines = renderLines(missing, summaryCol)
	return report
}

// buildAxes parses each requirement into an axis, dropping requirements with
// no usable specs, and auto-adds the expression axis from observed values
// when the column exists in the data but is not already a requirement.
func buildAxes(rows []*interfaces.Row, reqs []interfaces.Requirement) []axis {
	var axes []axis
	haveExpression := false
	for _, req := range reqs {
		col := strings.TrimSpace(req.Column)
		if col == "" {
			continue
		}
		specs := ParseSpecs(req.Operand)
		if len(specs) == 0 {
			continue
		}
		if col == ExpressionColumn {
			haveExpression = true
		}
		axes = append(axes, axis{column: col, specs: specs})
	}

	if !haveExpression {
		if specs := observedSpecs(rows, ExpressionColumn); len(specs) > 0 {
			axes = append(axes, axis{column: ExpressionColumn, specs: specs})
		}
	}
	return axes
}

// observedSpecs builds text specs from the distinct observed values of a
// column, in first-appearance order.
func observedSpecs(rows []*interfaces.Row, col string) []ValueSpec {
	seen := make(map[string]bool)
	var specs []ValueSpec
	for _, row := range rows {
		raw, ok := row.Cell(col)
		if !ok {
			continue
		}
		v := strings.TrimSpace(raw)
		if v == "" {
			continue
		}
		folded := strings.ToLower(v)
		if seen[folded] {
			continue
		}
		seen[folded] = true
		specs = append(specs, ValueSpec{Kind: SpecText, Text: folded, Label: v})
	}
	return specs
}

// pickSummaryColumn keeps the requested summary column when it is a
// requirement axis; otherwise it re-picks the axis with the most specs,
// which yields the richest report.
func pickSummaryColumn(axes []axis, requested string) string {
	for _, ax := range axes {
		if ax.column == requested {
			return requested
		}
	}
	best := axes[0]
	for _, ax := range axes[1:] {
		if len(ax.specs) > len(best.specs) {
			best = ax
		}
	}
	return best.column
}

// crossProduct builds the full cartesian product across the axes. Each axis
// extends the accumulated partial combinations in turn.
func crossProduct(axes []axis) [][]pair {
	combos := [][]pair{{}}
	for _, ax := range axes {
		next := make([][]pair, 0, len(combos)*len(ax.specs))
		for _, combo := range combos {
			for _, spec := range ax.specs {
				extended := make([]pair, len(combo), len(combo)+1)
				copy(extended, combo)
				extended = append(extended, pair{column: ax.column, spec: spec})
				next = append(next, extended)
			}
		}
		combos = next
	}
	return combos
}

// anyRowSatisfies reports whether at least one row satisfies every pair of
// the combination.
func anyRowSatisfies(rows []*interfaces.Row, combo []pair) bool {
	for _, row := range rows {
		if rowSatisfies(row, combo) {
			return true
		}
	}
	return false
}

// rowSatisfies tests one row against every pair: range specs need a numeric
// cell inside [min,max], numeric specs numeric equality, text specs
// case-folded trimmed equality. A missing column fails the pair.
func rowSatisfies(row *interfaces.Row, combo []pair) bool {
	for _, p := range combo {
		raw, ok := row.Cell(p.column)
		if !ok {
			return false
		}
		switch p.spec.Kind {
		case SpecRange:
			n, ok := engine.ParseNumber(raw)
			if !ok || n < p.spec.Min || n > p.spec.Max {
				return false
			}
		case SpecNumber:
			n, ok := engine.ParseNumber(raw)
			if !ok || n != p.spec.Num {
				return false
			}
		default:
			if strings.ToLower(strings.TrimSpace(raw)) != p.spec.Text {
				return false
			}
		}
	}
	return true
}

// renderLines groups missing combinations by their non-summary pairs and
// emits one line per group listing the missing summary labels, de-duplicated
// and ordered by spec sort key. Lines themselves are sorted for
// deterministic output.
func renderLines(missing [][]pair, summaryCol string) []string {
	type group struct {
		labels []ValueSpec
		seen   map[string]bool
	}
	groups := make(map[string]*group)

	for _, combo := range missing {
		var keyParts []string
		var summary *ValueSpec
		for i := range combo {
			if combo[i].column == summaryCol {
				summary = &combo[i].spec
				continue
			}
			keyParts = append(keyParts, fmt.Sprintf("%s=%s", combo[i].column, combo[i].spec.Label))
		}
		if summary == nil {
			// Summary column not part of this combination; nothing to list.
			continue
		}
		key := strings.Join(keyParts, ", ")
		g, ok := groups[key]
		if !ok {
			g = &group{seen: make(map[string]bool)}
			groups[key] = g
		}
		if !g.seen[summary.Label] {
			g.seen[summary.Label] = true
			g.labels = append(g.labels, *summary)
		}
	}

	lines := make([]string, 0, len(groups))
	for key, g := range groups {
		sort.SliceStable(g.labels, func(i, j int) bool {
			return lessSpec(g.labels[i], g.labels[j])
		})
		labels := make([]string, len(g.labels))
		for i, s := range g.labels {
			labels[i] = s.Label
		}
		if key == "" {
			lines = append(lines, fmt.Sprintf("Missing %s: %s", summaryCol, strings.Join(labels, ", ")))
		} else {
			lines = append(lines, fmt.Sprintf("%s missing %s: %s", key, summaryCol, strings.Join(labels, ", ")))
		}
	}
	sort.Strings(lines)
	return lines
}
