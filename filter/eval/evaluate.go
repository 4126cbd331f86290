// Package eval implements the Literal Evaluator (spec §4.7): when an
// OrExpression references no keys, it can be evaluated directly to a
// boolean without touching storage.
package eval

import (
	"time"

	"github.com/Thysk/rucio/filter/ast"
)

// Evaluate computes the boolean value of expr. It returns an error if any
// condition in expr references a key (spec §6: "errors if any condition
// references a key").
func Evaluate(expr ast.OrExpression) (bool, error) {
	for _, group := range expr {
		for _, c := range group {
			if !c.IsLiteral() {
				return false, ast.ValueError(-1, "cannot evaluate a condition referencing key %q without storage", *c.Key)
			}
		}
	}
	for _, group := range expr {
		ok, err := evalGroup(group)
		if err != nil {
			return false, err
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}

func evalGroup(group ast.AndGroup) (bool, error) {
	for _, c := range group {
		if !c.IsLiteral() {
			return false, ast.ValueError(-1, "cannot evaluate a condition referencing key %q without storage", *c.Key)
		}
		ok, err := evalCondition(c)
		if err != nil {
			return false, err
		}
		if !ok {
			return false, nil
		}
	}
	return true, nil
}

func evalCondition(c ast.Condition) (bool, error) {
	return compare(c.Left, c.Op, c.Value)
}

// EvalCondition evaluates a single literal condition. Callers outside this
// package (the query compiler, folding a literal condition found alongside
// keyed conditions in the same AndGroup) use this directly; it panics if c
// references a key.
func EvalCondition(c ast.Condition) (bool, error) {
	if !c.IsLiteral() {
		panic("eval: EvalCondition called on a keyed condition")
	}
	return evalCondition(c)
}

// compare applies op to two typed values. Mixed numeric kinds (Int vs
// Float) are promoted to float64; any other kind mismatch is compared only
// for equality/inequality (always unequal across kinds).
func compare(a ast.Value, op ast.Operator, b ast.Value) (bool, error) {
	if a.Kind != b.Kind {
		af, aok := asFloat(a)
		bf, bok := asFloat(b)
		if aok && bok {
			return compareFloat(af, op, bf), nil
		}
		switch op {
		case ast.EQ:
			return false, nil
		case ast.NE:
			return true, nil
		default:
			return false, ast.ValueError(-1, "cannot order a %s value against a %s value", a.Kind, b.Kind)
		}
	}

	switch a.Kind {
	case ast.KindInt:
		return compareOrdered(a.Int, op, b.Int), nil
	case ast.KindFloat:
		return compareFloat(a.Float, op, b.Float), nil
	case ast.KindBool:
		return compareBool(a.Bool, op, b.Bool)
	case ast.KindDateTime:
		return compareTime(a.Time, op, b.Time), nil
	case ast.KindString:
		return compareString(a, op, b)
	default:
		return false, ast.ValueError(-1, "unknown value kind %v", a.Kind)
	}
}

func asFloat(v ast.Value) (float64, bool) {
	switch v.Kind {
	case ast.KindInt:
		return float64(v.Int), true
	case ast.KindFloat:
		return v.Float, true
	default:
		return 0, false
	}
}

func compareOrdered[T int64 | float64 | string](a T, op ast.Operator, b T) bool {
	switch op {
	case ast.EQ:
		return a == b
	case ast.NE:
		return a != b
	case ast.LT:
		return a < b
	case ast.LE:
		return a <= b
	case ast.GT:
		return a > b
	case ast.GE:
		return a >= b
	default:
		return false
	}
}

func compareFloat(a float64, op ast.Operator, b float64) bool {
	return compareOrdered(a, op, b)
}

func compareString(a ast.Value, op ast.Operator, b ast.Value) (bool, error) {
	switch op {
	case ast.EQ, ast.NE:
		eq := matchString(a, b)
		if op == ast.EQ {
			return eq, nil
		}
		return !eq, nil
	default:
		if a.Wildcard || b.Wildcard {
			return false, ast.ValueError(-1, "wildcard string values only support = and !=")
		}
		return compareOrdered(a.Str, op, b.Str), nil
	}
}

// matchString compares two string values for equality, applying wildcard
// pattern matching when either side carries the wildcard flag (`*` -> any
// run of characters).
func matchString(a, b ast.Value) bool {
	if a.Wildcard {
		return wildcardMatch(a.Str, b.Str)
	}
	if b.Wildcard {
		return wildcardMatch(b.Str, a.Str)
	}
	return a.Str == b.Str
}

// wildcardMatch reports whether s matches pattern, where '*' in pattern
// matches zero or more of any character.
func wildcardMatch(pattern, s string) bool {
	parts := splitOnStar(pattern)
	if len(parts) == 1 {
		return pattern == s
	}
	pos := 0
	for i, part := range parts {
		if part == "" {
			continue
		}
		if i == 0 {
			if len(s) < len(part) || s[:len(part)] != part {
				return false
			}
			pos = len(part)
			continue
		}
		if i == len(parts)-1 {
			return len(s)-pos >= len(part) && s[len(s)-len(part):] == part
		}
		idx := indexFrom(s, part, pos)
		if idx < 0 {
			return false
		}
		pos = idx + len(part)
	}
	return true
}

func splitOnStar(s string) []string {
	var parts []string
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] == '*' {
			parts = append(parts, s[start:i])
			start = i + 1
		}
	}
	parts = append(parts, s[start:])
	return parts
}

func indexFrom(s, sub string, from int) int {
	if from > len(s) {
		return -1
	}
	idx := indexOf(s[from:], sub)
	if idx < 0 {
		return -1
	}
	return idx + from
}

func indexOf(s, sub string) int {
	if sub == "" {
		return 0
	}
	for i := 0; i+len(sub) <= len(s); i++ {
		if s[i:i+len(sub)] == sub {
			return i
		}
	}
	return -1
}

func compareBool(a bool, op ast.Operator, b bool) (bool, error) {
	switch op {
	case ast.EQ:
		return a == b, nil
	case ast.NE:
		return a != b, nil
	default:
		return false, ast.ValueError(-1, "bool values only support = and !=")
	}
}

func compareTime(a time.Time, op ast.Operator, b time.Time) bool {
	switch op {
	case ast.EQ:
		return a.Equal(b)
	case ast.NE:
		return !a.Equal(b)
	case ast.LT:
		return a.Before(b)
	case ast.LE:
		return a.Before(b) || a.Equal(b)
	case ast.GT:
		return a.After(b)
	case ast.GE:
		return a.After(b) || a.Equal(b)
	default:
		return false
	}
}
