package engine

import (
	"sweepboard/app/interfaces"
)

// ApplyVisibilityDefaults reconciles persisted column visibility with a
// freshly loaded snapshot. Previously known columns keep their state; new
// columns default to shown. On a first load (no prior state at all) a column
// whose value is identical across every row is defaulted to hidden, since a
// constant column conveys nothing. A single-row snapshot keeps everything
// shown. Carrier pseudo-columns never appear in the returned map. The input
// map is not mutated.
func ApplyVisibilityDefaults(snap *interfaces.Snapshot, prior map[string]bool) map[string]bool {
	firstLoad := len(prior) == 0
	out := make(map[string]bool, len(snap.Columns))
	for _, col := range snap.Columns {
		if interfaces.IsCarrierColumn(col) {
			continue
		}
		if v, ok := prior[col]; ok {
			out[col] = v
			continue
		}
		if firstLoad && len(snap.Rows) > 1 && columnConstant(snap.Rows, col) {
			out[col] = false
			continue
		}
		out[col] = true
	}
	return out
}

// columnConstant reports whether a column holds the identical raw value in
// every row. Absence counts as a value, so a column missing everywhere is
// constant too.
func columnConstant(rows []*interfaces.Row, col string) bool {
	if len(rows) == 0 {
		return true
	}
	first, firstOK := rows[0].Cell(col)
	for _, row := range rows[1:] {
		v, ok := row.Cell(col)
		if ok != firstOK || v != first {
			return false
		}
	}
	return true
}

// VisibleColumns returns the snapshot's columns in load order, restricted to
// those marked shown. Columns absent from the visibility map are treated as
// shown so a stale map never blanks the table.
func VisibleColumns(snap *interfaces.Snapshot, visibility map[string]bool) []string {
	out := make([]string, 0, len(snap.Columns))
	for _, col := range snap.Columns {
		if interfaces.IsCarrierColumn(col) {
			continue
		}
		if shown, ok := visibility[col]; ok && !shown {
			continue
		}
		out = append(out, col)
	}
	return out
}

// ColumnGroups returns the loader-provided groups restricted to columns that
// actually exist in the snapshot, plus the implicit "other" group for
// ungrouped columns. Group order follows first appearance of a grouped
// column in the snapshot's column order, with "other" always last. Every
// column still participates individually in single-column toggles; groups
// only exist for bulk show/hide.
func ColumnGroups(snap *interfaces.Snapshot) []interfaces.ColumnGroup {
	grouped := make(map[string]string) // column -> group name
	for name, cols := range snap.Groups {
		for _, col := range cols {
			grouped[col] = name
		}
	}

	var order []string
	members := make(map[string][]string)
	var other []string
	for _, col := range snap.Columns {
		if interfaces.IsCarrierColumn(col) {
			continue
		}
		name, ok := grouped[col]
		if !ok {
			other = append(other, col)
			continue
		}
		if _, seen := members[name]; !seen {
			order = append(order, name)
		}
		members[name] = append(members[name], col)
	}

	out := make([]interfaces.ColumnGroup, 0, len(order)+1)
	for _, name := range order {
		out = append(out, interfaces.ColumnGroup{Name: name, Columns: members[name]})
	}
	if len(other) > 0 {
		out = append(out, interfaces.ColumnGroup{Name: interfaces.OtherGroupName, Columns: other})
	}
	return out
}
