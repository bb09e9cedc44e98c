package engine

import (
	"strings"

	"sweepboard/app/interfaces"
)

// RuleActive reports whether a filter rule participates in matching.
// Rules with an empty operand are dormant, except the emptiness operators
// which ignore their operand entirely.
func RuleActive(rule interfaces.FilterRule) bool {
	if rule.Operator == interfaces.OpEmpty || rule.Operator == interfaces.OpNotEmpty {
		return true
	}
	return strings.TrimSpace(rule.Operand) != ""
}

// EvalRule evaluates one filter rule against one row. A rule whose column is
// not present in the row never matches, for every operator: an absent cell is
// not the same thing as an empty one. Malformed operands make the rule false,
// never an error.
func EvalRule(rule interfaces.FilterRule, row *interfaces.Row) bool {
	raw, present := row.Cell(rule.Column)
	if !present {
		return false
	}
	cell := strings.TrimSpace(raw)
	operand := strings.TrimSpace(rule.Operand)

	switch rule.Operator {
	case interfaces.OpEmpty:
		return cell == ""
	case interfaces.OpNotEmpty:
		return cell != ""
	}

	switch rule.Operator {
	case interfaces.OpEq:
		return equalCell(cell, operand)
	case interfaces.OpNeq:
		return !equalCell(cell, operand)
	case interfaces.OpContains:
		return strings.Contains(strings.ToLower(cell), strings.ToLower(operand))
	case interfaces.OpNotContains:
		return !strings.Contains(strings.ToLower(cell), strings.ToLower(operand))
	case interfaces.OpStartsWith:
		return strings.HasPrefix(strings.ToLower(cell), strings.ToLower(operand))
	case interfaces.OpEndsWith:
		return strings.HasSuffix(strings.ToLower(cell), strings.ToLower(operand))
	case interfaces.OpIn:
		return matchIn(cell, operand)
	case interfaces.OpGt, interfaces.OpGte, interfaces.OpLt, interfaces.OpLte:
		return matchOrdered(rule.Operator, cell, operand)
	case interfaces.OpBetween:
		return matchBetween(cell, operand)
	}

	// Unrecognized operator: match everything rather than silently dropping
	// rows a stale rule set no longer describes.
	return true
}

// equalCell implements the dual eq test: numeric equality when both sides
// parse, OR case-insensitive text equality. Either passing is a match, so
// "5.0" matches operand "5" numerically even though the texts differ.
func equalCell(cell, operand string) bool {
	cn, cok := ParseNumber(cell)
	on, ook := ParseNumber(operand)
	if cok && ook && cn == on {
		return true
	}
	return strings.EqualFold(cell, operand)
}

// matchIn tests the cell against a comma-separated operand list. When the
// cell and every token parse numerically the match is numeric; otherwise it
// is a case-folded text membership test.
func matchIn(cell, operand string) bool {
	tokens := make([]string, 0, 4)
	for _, t := range strings.Split(operand, ",") {
		t = strings.TrimSpace(t)
		if t != "" {
			tokens = append(tokens, t)
		}
	}
	if len(tokens) == 0 {
		return false
	}

	cn, cok := ParseNumber(cell)
	allNumeric := cok
	nums := make([]float64, 0, len(tokens))
	for _, t := range tokens {
		n, ok := ParseNumber(t)
		if !ok {
			allNumeric = false
			break
		}
		nums = append(nums, n)
	}
	if allNumeric {
		for _, n := range nums {
			if cn == n {
				return true
			}
		}
		return false
	}

	for _, t := range tokens {
		if strings.EqualFold(cell, t) {
			return true
		}
	}
	return false
}

// matchOrdered implements gt/gte/lt/lte. False when either side fails to
// parse numerically.
func matchOrdered(op, cell, operand string) bool {
	cn, cok := ParseNumber(cell)
	on, ook := ParseNumber(operand)
	if !cok || !ook {
		return false
	}
	switch op {
	case interfaces.OpGt:
		return cn > on
	case interfaces.OpGte:
		return cn >= on
	case interfaces.OpLt:
		return cn < on
	case interfaces.OpLte:
		return cn <= on
	}
	return false
}

// matchBetween parses the operand as two numbers in any order and tests the
// cell against the inclusive range. The operand is written "5-10" (or with a
// comma/space separator); "10-5" is the same range. Fewer than two parseable
// numbers, or an unparseable cell, is false.
func matchBetween(cell, operand string) bool {
	cn, cok := ParseNumber(cell)
	if !cok {
		return false
	}
	lo, hi, ok := parseBounds(operand)
	if !ok {
		return false
	}
	if lo > hi {
		lo, hi = hi, lo
	}
	return cn >= lo && cn <= hi
}

// parseBounds reads the two range bounds from a between operand. The comma
// and space separated forms are tried first so a leading minus sign stays
// part of its number; the dashed "5-10" form is a fallback where a dash only
// separates when both sides parse on their own, which keeps "-5--1" working.
func parseBounds(operand string) (float64, float64, bool) {
	var nums []float64
	for _, t := range strings.FieldsFunc(operand, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t'
	}) {
		if n, ok := ParseNumber(t); ok {
			nums = append(nums, n)
		}
	}
	if len(nums) >= 2 {
		return nums[0], nums[1], true
	}

	for i := 1; i < len(operand); i++ {
		if operand[i] != '-' {
			continue
		}
		lo, lok := ParseNumber(operand[:i])
		hi, hok := ParseNumber(operand[i+1:])
		if lok && hok {
			return lo, hi, true
		}
	}
	return 0, 0, false
}
