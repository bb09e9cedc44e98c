package engine

import (
	"strconv"
	"strings"
)

// Placeholder tokens that mean "no value" regardless of context.
// Comparison is done on the lower-cased trimmed cell.
var absentTokens = map[string]bool{
	"":     true,
	"-":    true,
	"none": true,
	"nan":  true,
}

// subPercentToken is emitted by the scoring pipeline for rates that round to
// zero; it is treated as the midpoint 0.5 so threshold filters behave sanely.
const subPercentToken = "<1%"

// ParseNumber coerces a raw cell into a float for filter comparison.
// It returns ok=false for absent/placeholder cells and for anything that does
// not parse as a number after stripping a trailing "%" and thousands
// separators. It never fails hard; unparseable input is simply not a number.
func ParseNumber(raw string) (float64, bool) {
	s := strings.TrimSpace(raw)
	if absentTokens[strings.ToLower(s)] {
		return 0, false
	}
	if s == subPercentToken {
		return 0.5, true
	}
	s = strings.TrimSuffix(s, "%")
	s = strings.ReplaceAll(s, ",", "")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// Val is a sort-comparison value: a number, a lower-cased text, or absent.
// Str always carries the normalized text form so a numeric value can still be
// compared against free text if a column mixes both. The dual typing exists so
// "20%" sorts numerically against "5%" while free-text columns sort
// lexicographically.
type Val struct {
	Num    float64
	Str    string
	IsNum  bool
	Absent bool
}

// ParseVal coerces a raw cell into a Val for sorting. Percent cells become
// their numeric percentage value when parseable; everything else tries a
// float parse and falls back to lower-cased text.
func ParseVal(raw string) Val {
	s := strings.TrimSpace(raw)
	lower := strings.ToLower(s)
	if absentTokens[lower] {
		return Val{Absent: true}
	}
	if s == subPercentToken {
		return Val{Num: 0.5, Str: lower, IsNum: true}
	}
	if strings.HasSuffix(s, "%") {
		body := strings.ReplaceAll(strings.TrimSuffix(s, "%"), ",", "")
		if v, err := strconv.ParseFloat(body, 64); err == nil {
			return Val{Num: v, Str: lower, IsNum: true}
		}
		return Val{Str: lower}
	}
	if v, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", ""), 64); err == nil {
		return Val{Num: v, Str: lower, IsNum: true}
	}
	return Val{Str: lower}
}

// CompareVals orders two sort values: absent sorts after any present value,
// two numbers compare numerically, anything else compares as normalized text.
// Returns -1, 0 or 1.
func CompareVals(a, b Val) int {
	if a.Absent && b.Absent {
		return 0
	}
	if a.Absent {
		return 1
	}
	if b.Absent {
		return -1
	}
	if a.IsNum && b.IsNum {
		switch {
		case a.Num < b.Num:
			return -1
		case a.Num > b.Num:
			return 1
		}
		return 0
	}
	switch {
	case a.Str < b.Str:
		return -1
	case a.Str > b.Str:
		return 1
	}
	return 0
}
