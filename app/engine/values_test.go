package engine

import (
	"testing"
)

// TestParseNumber tests the filter-comparison coercion of raw cell text
func TestParseNumber(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want float64
		ok   bool
	}{
		{name: "plain integer", raw: "42", want: 42, ok: true},
		{name: "plain float", raw: "0.15", want: 0.15, ok: true},
		{name: "negative", raw: "-3.5", want: -3.5, ok: true},
		{name: "trailing percent", raw: "85%", want: 85, ok: true},
		{name: "thousands separators with percent", raw: "1,234.5%", want: 1234.5, ok: true},
		{name: "sub-percent token", raw: "<1%", want: 0.5, ok: true},
		{name: "whitespace padded", raw: "  7  ", want: 7, ok: true},
		{name: "empty string absent", raw: "", ok: false},
		{name: "dash absent", raw: "-", ok: false},
		{name: "none absent", raw: "None", ok: false},
		{name: "nan absent", raw: "NaN", ok: false},
		{name: "free text", raw: "resnet18", ok: false},
		{name: "number with unit suffix", raw: "5 units", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseNumber(tt.raw)
			if ok != tt.ok {
				t.Fatalf("ParseNumber(%q) ok = %v, want %v", tt.raw, ok, tt.ok)
			}
			if ok && got != tt.want {
				t.Errorf("ParseNumber(%q) = %v, want %v", tt.raw, got, tt.want)
			}
		})
	}
}

// TestParseVal tests the sort coercion, including the percent dual typing
func TestParseVal(t *testing.T) {
	tests := []struct {
		name   string
		raw    string
		isNum  bool
		num    float64
		str    string
		absent bool
	}{
		{name: "numeric percent", raw: "20%", isNum: true, num: 20},
		{name: "small percent", raw: "5%", isNum: true, num: 5},
		{name: "non-numeric percent", raw: "high%", str: "high%"},
		{name: "plain number", raw: "3.25", isNum: true, num: 3.25},
		{name: "text lowercased", raw: "ResNet18", str: "resnet18"},
		{name: "sub-percent token", raw: "<1%", isNum: true, num: 0.5},
		{name: "absent dash", raw: "-", absent: true},
		{name: "absent empty", raw: "", absent: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := ParseVal(tt.raw)
			if v.Absent != tt.absent {
				t.Fatalf("ParseVal(%q).Absent = %v, want %v", tt.raw, v.Absent, tt.absent)
			}
			if tt.absent {
				return
			}
			if v.IsNum != tt.isNum {
				t.Fatalf("ParseVal(%q).IsNum = %v, want %v", tt.raw, v.IsNum, tt.isNum)
			}
			if tt.isNum && v.Num != tt.num {
				t.Errorf("ParseVal(%q).Num = %v, want %v", tt.raw, v.Num, tt.num)
			}
			if !tt.isNum && v.Str != tt.str {
				t.Errorf("ParseVal(%q).Str = %q, want %q", tt.raw, v.Str, tt.str)
			}
		})
	}
}

// TestCompareVals tests ordering: numbers numerically, text lexicographically,
// absent always after present
func TestCompareVals(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want int
	}{
		{name: "percent compares numerically", a: "5%", b: "20%", want: -1},
		{name: "numbers equal", a: "2.0", b: "2", want: 0},
		{name: "text lexicographic", a: "alpha", b: "beta", want: -1},
		{name: "text case folded equal", a: "Alpha", b: "alpha", want: 0},
		{name: "absent after number", a: "-", b: "999", want: 1},
		{name: "number before absent", a: "0", b: "nan", want: -1},
		{name: "both absent", a: "", b: "None", want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CompareVals(ParseVal(tt.a), ParseVal(tt.b))
			if got != tt.want {
				t.Errorf("CompareVals(%q, %q) = %d, want %d", tt.a, tt.b, got, tt.want)
			}
		})
	}
}
