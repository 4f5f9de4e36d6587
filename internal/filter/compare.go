package filter

import (
	"regexp"
	"strconv"
	"strings"
)

// Op is a numeric comparison operator.
type Op string

const (
	OpEq Op = "eq"
	OpLt Op = "lt"
	OpGt Op = "gt"
)

// Comparison is a structured numeric constraint. A nil *Comparison means
// "no constraint", never the zero value, so price 0 and "unconstrained"
// stay distinguishable.
type Comparison struct {
	Op    Op
	Value float64
}

var firstIntRe = regexp.MustCompile(`(\d+)`)

// ParseComparison maps a free-text numeric-comparison phrase to a structured
// comparison. "free" means equals zero; "under"/"less than" and
// "over"/"more than" qualify the first integer literal found. Anything else
// yields nil rather than an error. Used for both price and attendance.
func ParseComparison(raw string) *Comparison {
	if raw == "" {
		return nil
	}
	lower := strings.ToLower(strings.TrimSpace(raw))
	if lower == "free" {
		return &Comparison{Op: OpEq, Value: 0}
	}

	m := firstIntRe.FindString(lower)
	if m == "" {
		return nil
	}
	value, err := strconv.ParseFloat(m, 64)
	if err != nil {
		return nil
	}

	switch {
	case strings.Contains(lower, "under"), strings.Contains(lower, "less than"):
		return &Comparison{Op: OpLt, Value: value}
	case strings.Contains(lower, "over"), strings.Contains(lower, "more than"):
		return &Comparison{Op: OpGt, Value: value}
	}
	return nil
}
