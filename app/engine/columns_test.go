package engine

import (
	"testing"

	"sweepboard/app/interfaces"
)

func snapshot(columns []string, rows []*interfaces.Row) *interfaces.Snapshot {
	return &interfaces.Snapshot{Columns: columns, Rows: rows}
}

// TestApplyVisibilityDefaults tests constant-column hiding on first load and
// prior-state retention afterwards
func TestApplyVisibilityDefaults(t *testing.T) {
	t.Run("constant column hidden on first load", func(t *testing.T) {
		snap := snapshot([]string{"mode", "ratio"}, makeRows(
			map[string]string{"mode": "x", "ratio": "0.1"},
			map[string]string{"mode": "x", "ratio": "0.2"},
			map[string]string{"mode": "x", "ratio": "0.3"},
		))
		vis := ApplyVisibilityDefaults(snap, nil)
		if vis["mode"] {
			t.Error("constant column mode should default to hidden")
		}
		if !vis["ratio"] {
			t.Error("varying column ratio should default to shown")
		}
	})

	t.Run("varying column shown on first load", func(t *testing.T) {
		snap := snapshot([]string{"mode"}, makeRows(
			map[string]string{"mode": "x"},
			map[string]string{"mode": "x"},
			map[string]string{"mode": "x"},
			map[string]string{"mode": "y"},
		))
		vis := ApplyVisibilityDefaults(snap, nil)
		if !vis["mode"] {
			t.Error("column with two values should default to shown")
		}
	})

	t.Run("single row shows everything", func(t *testing.T) {
		snap := snapshot([]string{"mode"}, makeRows(
			map[string]string{"mode": "x"},
		))
		vis := ApplyVisibilityDefaults(snap, nil)
		if !vis["mode"] {
			t.Error("single-row snapshot should show every column")
		}
	})

	t.Run("prior state retained, new columns shown", func(t *testing.T) {
		snap := snapshot([]string{"mode", "epochs"}, makeRows(
			map[string]string{"mode": "x", "epochs": "10"},
			map[string]string{"mode": "x", "epochs": "10"},
		))
		prior := map[string]bool{"mode": false}
		vis := ApplyVisibilityDefaults(snap, prior)
		if vis["mode"] {
			t.Error("prior hidden state should be retained")
		}
		if !vis["epochs"] {
			t.Error("new column should default to shown even when constant (not a first load)")
		}
	})

	t.Run("carrier columns excluded", func(t *testing.T) {
		snap := snapshot([]string{"mode", interfaces.VariantColumnsField}, makeRows(
			map[string]string{"mode": "x"},
			map[string]string{"mode": "y"},
		))
		vis := ApplyVisibilityDefaults(snap, nil)
		if _, ok := vis[interfaces.VariantColumnsField]; ok {
			t.Error("carrier pseudo-column must not appear in the visibility map")
		}
	})
}

// TestVisibleColumns tests load-order projection with unknown columns shown
func TestVisibleColumns(t *testing.T) {
	snap := snapshot([]string{"a", "b", "c"}, nil)
	got := VisibleColumns(snap, map[string]bool{"b": false})
	if len(got) != 2 || got[0] != "a" || got[1] != "c" {
		t.Errorf("VisibleColumns = %v, want [a c]", got)
	}
}

// TestColumnGroups tests loader groups plus the implicit other group
func TestColumnGroups(t *testing.T) {
	snap := &interfaces.Snapshot{
		Columns: []string{"lr", "epochs", "acc", "expression"},
		Groups: map[string][]string{
			"training": {"lr", "epochs"},
			"metrics":  {"acc"},
		},
	}
	groups := ColumnGroups(snap)
	if len(groups) != 3 {
		t.Fatalf("groups = %d, want 3", len(groups))
	}
	if groups[0].Name != "training" || groups[1].Name != "metrics" {
		t.Errorf("group order = [%s %s], want first-appearance order [training metrics]", groups[0].Name, groups[1].Name)
	}
	last := groups[len(groups)-1]
	if last.Name != interfaces.OtherGroupName || len(last.Columns) != 1 || last.Columns[0] != "expression" {
		t.Errorf("other group = %+v, want [expression]", last)
	}
}
