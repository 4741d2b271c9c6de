package filter

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseExpr parses a command-line filter of the form metric:op=arg.
//
//	score:lt=50
//	score:gt=10
//	score:range=10..50        either side of ".." may be empty
//	challenges:eq=Completed
//	completion_date:on=2024-03-01
//	completion_date:between=2024-01-01..2024-06-30
func ParseExpr(expr string) (string, Predicate, error) {
	metric, rest, ok := strings.Cut(expr, ":")
	metric = strings.TrimSpace(metric)
	if !ok || metric == "" {
		return "", Predicate{}, fmt.Errorf("filter %q: expected metric:op=value", expr)
	}

	op, arg, ok := strings.Cut(rest, "=")
	if !ok {
		return "", Predicate{}, fmt.Errorf("filter %q: expected op=value after metric", expr)
	}
	op = strings.ToLower(strings.TrimSpace(op))
	arg = strings.TrimSpace(arg)

	var p Predicate
	switch op {
	case "lt", "gt":
		f, err := strconv.ParseFloat(arg, 64)
		if err != nil {
			return "", Predicate{}, fmt.Errorf("filter %q: %q is not a number", expr, arg)
		}
		if op == "lt" {
			p = LessThan(f)
		} else {
			p = GreaterThan(f)
		}

	case "range":
		lo, hi, err := splitRange(arg)
		if err != nil {
			return "", Predicate{}, fmt.Errorf("filter %q: %w", expr, err)
		}
		var pl, ph *float64
		if lo != "" {
			f, err := strconv.ParseFloat(lo, 64)
			if err != nil {
				return "", Predicate{}, fmt.Errorf("filter %q: min %q is not a number", expr, lo)
			}
			pl = &f
		}
		if hi != "" {
			f, err := strconv.ParseFloat(hi, 64)
			if err != nil {
				return "", Predicate{}, fmt.Errorf("filter %q: max %q is not a number", expr, hi)
			}
			ph = &f
		}
		p = Range(pl, ph)

	case "eq":
		p = Equals(arg)

	case "on":
		p = ExactDate(arg)

	case "between":
		lo, hi, err := splitRange(arg)
		if err != nil {
			return "", Predicate{}, fmt.Errorf("filter %q: %w", expr, err)
		}
		p = DateRange(lo, hi)

	default:
		return "", Predicate{}, fmt.Errorf("filter %q: unknown op %q (want lt, gt, range, eq, on, between)", expr, op)
	}

	if err := p.Validate(); err != nil {
		return "", Predicate{}, fmt.Errorf("filter %q: %w", expr, err)
	}
	return metric, p, nil
}

// ParseExprs parses every expression into a Spec. A later expression for
// the same metric replaces an earlier one.
func ParseExprs(exprs []string) (Spec, error) {
	spec := Spec{}
	for _, e := range exprs {
		id, p, err := ParseExpr(e)
		if err != nil {
			return nil, err
		}
		spec[id] = p
	}
	return spec, nil
}

func splitRange(arg string) (string, string, error) {
	lo, hi, ok := strings.Cut(arg, "..")
	if !ok {
		return "", "", fmt.Errorf("range %q: expected lo..hi", arg)
	}
	return strings.TrimSpace(lo), strings.TrimSpace(hi), nil
}

func formatFloatPtr(f *float64) string {
	if f == nil {
		return ""
	}
	return strconv.FormatFloat(*f, 'f', -1, 64)
}
