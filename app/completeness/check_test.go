package completeness

import (
	"testing"

	"sweepboard/app/interfaces"
)

func row(cells map[string]string) *interfaces.Row {
	return &interfaces.Row{Cells: cells}
}

// TestParseSpecs tests requirement operand parsing into value specs
func TestParseSpecs(t *testing.T) {
	tests := []struct {
		name    string
		operand string
		want    []ValueSpec
	}{
		{
			name:    "comma separated numbers",
			operand: "0.1, 0.2",
			want: []ValueSpec{
				{Kind: SpecNumber, Num: 0.1, Label: "0.1"},
				{Kind: SpecNumber, Num: 0.2, Label: "0.2"},
			},
		},
		{
			name:    "range with reversed bounds",
			operand: "10-5",
			want: []ValueSpec{
				{Kind: SpecRange, Min: 5, Max: 10, Label: "10-5"},
			},
		},
		{
			name:    "newline separated mixed",
			operand: "0.5\nresnet18",
			want: []ValueSpec{
				{Kind: SpecNumber, Num: 0.5, Label: "0.5"},
				{Kind: SpecText, Text: "resnet18", Label: "resnet18"},
			},
		},
		{
			name:    "text case folded",
			operand: "Trigger-A",
			want: []ValueSpec{
				{Kind: SpecText, Text: "trigger-a", Label: "Trigger-A"},
			},
		},
		{
			name:    "empty tokens skipped",
			operand: " , ,0.1",
			want: []ValueSpec{
				{Kind: SpecNumber, Num: 0.1, Label: "0.1"},
			},
		},
		{
			name:    "blank operand yields nothing",
			operand: "   ",
			want:    nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseSpecs(tt.operand)
			if len(got) != len(tt.want) {
				t.Fatalf("ParseSpecs(%q) = %d specs, want %d", tt.operand, len(got), len(tt.want))
			}
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Errorf("spec %d = %+v, want %+v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

// TestCheckMissingCombination tests the auto-added expression axis scenario:
// ratio 0.2 was never run with expression B
func TestCheckMissingCombination(t *testing.T) {
	rows := []*interfaces.Row{
		row(map[string]string{"expression": "A", "ratio": "0.1"}),
		row(map[string]string{"expression": "A", "ratio": "0.2"}),
		row(map[string]string{"expression": "B", "ratio": "0.1"}),
	}
	reqs := []interfaces.Requirement{
		{Column: "ratio", Operand: "0.1,0.2"},
	}

	report := Check(rows, reqs, "expression")
	if len(report.Lines) != 1 {
		t.Fatalf("lines = %v, want exactly one missing line", report.Lines)
	}
	want := "ratio=0.2 missing expression: B"
	if report.Lines[0] != want {
		t.Errorf("line = %q, want %q", report.Lines[0], want)
	}
	if report.Missing != 1 || report.Total != 4 {
		t.Errorf("missing/total = %d/%d, want 1/4", report.Missing, report.Total)
	}
}

// TestCheckComplete tests the single-requirement all-present scenario
func TestCheckComplete(t *testing.T) {
	rows := []*interfaces.Row{
		row(map[string]string{"expression": "A"}),
		row(map[string]string{"expression": "B"}),
	}
	reqs := []interfaces.Requirement{
		{Column: "expression", Operand: "A,B"},
	}

	report := Check(rows, reqs, "expression")
	if len(report.Lines) != 1 || report.Lines[0] != MsgComplete {
		t.Errorf("lines = %v, want [%q]", report.Lines, MsgComplete)
	}
	if report.Missing != 0 {
		t.Errorf("missing = %d, want 0", report.Missing)
	}
}

// TestCheckNoRequirements tests the empty-input outcome
func TestCheckNoRequirements(t *testing.T) {
	report := Check(nil, nil, "")
	if len(report.Lines) != 1 || report.Lines[0] != MsgNoRequirements {
		t.Errorf("lines = %v, want [%q]", report.Lines, MsgNoRequirements)
	}
}

// TestCheckSummaryRePick tests that a summary column that is not a
// requirement axis is replaced by the axis with the most specs
func TestCheckSummaryRePick(t *testing.T) {
	rows := []*interfaces.Row{
		row(map[string]string{"model": "resnet18", "ratio": "0.1"}),
	}
	reqs := []interfaces.Requirement{
		{Column: "model", Operand: "resnet18"},
		{Column: "ratio", Operand: "0.1,0.2,0.3"},
	}

	report := Check(rows, reqs, "epochs")
	if report.SummaryCol != "ratio" {
		t.Errorf("summaryCol = %q, want the widest axis %q", report.SummaryCol, "ratio")
	}
}

// TestCheckRangeSpec tests that a range requirement is satisfied by any
// numeric cell inside the inclusive bounds
func TestCheckRangeSpec(t *testing.T) {
	rows := []*interfaces.Row{
		row(map[string]string{"ratio": "0.15", "model": "a"}),
	}
	reqs := []interfaces.Requirement{
		{Column: "ratio", Operand: "0.1-0.2"},
		{Column: "model", Operand: "a,b"},
	}

	report := Check(rows, reqs, "model")
	if len(report.Lines) != 1 {
		t.Fatalf("lines = %v, want one missing line", report.Lines)
	}
	want := "ratio=0.1-0.2 missing model: b"
	if report.Lines[0] != want {
		t.Errorf("line = %q, want %q", report.Lines[0], want)
	}
}

// TestCheckIdempotent tests that running the check twice over the same input
// produces identical output
func TestCheckIdempotent(t *testing.T) {
	rows := []*interfaces.Row{
		row(map[string]string{"expression": "A", "ratio": "0.1"}),
		row(map[string]string{"expression": "B", "ratio": "0.2"}),
	}
	reqs := []interfaces.Requirement{
		{Column: "ratio", Operand: "0.1,0.2"},
	}

	first := Check(rows, reqs, "expression")
	second := Check(rows, reqs, "expression")
	if len(first.Lines) != len(second.Lines) {
		t.Fatalf("line counts differ: %d vs %d", len(first.Lines), len(second.Lines))
	}
	for i := range first.Lines {
		if first.Lines[i] != second.Lines[i] {
			t.Errorf("line %d differs: %q vs %q", i, first.Lines[i], second.Lines[i])
		}
	}
}

// TestCheckLabelOrdering tests that missing labels are numeric-ascending
// before text, and lines are sorted
func TestCheckLabelOrdering(t *testing.T) {
	rows := []*interfaces.Row{
		row(map[string]string{"expression": "A", "ratio": "0.1"}),
	}
	reqs := []interfaces.Requirement{
		{Column: "expression", Operand: "A"},
		{Column: "ratio", Operand: "0.3,0.2,0.1"},
	}

	report := Check(rows, reqs, "ratio")
	if len(report.Lines) != 1 {
		t.Fatalf("lines = %v, want one grouped line", report.Lines)
	}
	want := "expression=A missing ratio: 0.2, 0.3"
	if report.Lines[0] != want {
		t.Errorf("line = %q, want %q", report.Lines[0], want)
	}
}
