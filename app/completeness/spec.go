package completeness

import (
	"regexp"
	"strconv"
	"strings"
)

// SpecKind discriminates the three requirement value forms.
type SpecKind int

const (
	SpecNumber SpecKind = iota // a single numeric value
	SpecRange                  // an inclusive numeric range
	SpecText                   // a case-folded text value
)

// ValueSpec is one parsed requirement value: a number, a numeric range, or a
// text token. Label is the user's original token for report rendering; the
// sort key orders labels deterministically within a report line.
type ValueSpec struct {
	Kind  SpecKind
	Num   float64 // SpecNumber
	Min   float64 // SpecRange
	Max   float64 // SpecRange
	Text  string  // SpecText, case-folded
	Label string
}

// rangeToken matches "<num>-<num>" requirement tokens like "0.1-0.3".
var rangeToken = regexp.MustCompile(`^(\d+(?:\.\d+)?)\s*-\s*(\d+(?:\.\d+)?)$`)

// ParseSpecs turns a requirement operand into its ordered value specs.
// Tokens are comma- or newline-separated; a "<num>-<num>" token becomes a
// range (bounds normalized so min <= max), a purely numeric token becomes a
// number, anything else becomes case-folded text. Empty tokens are skipped.
func ParseSpecs(operand string) []ValueSpec {
	var specs []ValueSpec
	for _, tok := range strings.FieldsFunc(operand, func(r rune) bool {
		return r == ',' || r == '\n'
	}) {
		tok = strings.TrimSpace(tok)
		if tok == "" {
			continue
		}
		if m := rangeToken.FindStringSubmatch(tok); m != nil {
			lo, _ := strconv.ParseFloat(m[1], 64)
			hi, _ := strconv.ParseFloat(m[2], 64)
			if lo > hi {
				lo, hi = hi, lo
			}
			specs = append(specs, ValueSpec{Kind: SpecRange, Min: lo, Max: hi, Label: tok})
			continue
		}
		if n, err := strconv.ParseFloat(tok, 64); err == nil {
			specs = append(specs, ValueSpec{Kind: SpecNumber, Num: n, Label: tok})
			continue
		}
		specs = append(specs, ValueSpec{Kind: SpecText, Text: strings.ToLower(tok), Label: tok})
	}
	return specs
}

// SortKey returns the ordering key of a spec: numeric specs and ranges order
// by their (lower) number, text specs lexicographically after all numbers.
func (s ValueSpec) SortKey() (float64, string, bool) {
	switch s.Kind {
	case SpecNumber:
		return s.Num, "", true
	case SpecRange:
		return s.Min, "", true
	}
	return 0, s.Text, false
}

// lessSpec orders two specs by sort key: numbers ascending before text,
// text lexicographic.
func lessSpec(a, b ValueSpec) bool {
	an, as, aNum := a.SortKey()
	bn, bs, bNum := b.SortKey()
	if aNum && bNum {
		return an < bn
	}
	if aNum != bNum {
		return aNum
	}
	return as < bs
}
