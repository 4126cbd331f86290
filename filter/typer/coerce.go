// Package typer coerces the raw string literals produced by the parser
// into typed ast.Value, applying legacy key rewrites and wildcard
// detection (spec §4.3).
package typer

import (
	"strconv"
	"strings"

	"github.com/Thysk/rucio/filter/ast"
	"github.com/Thysk/rucio/filter/datetimeutil"
	"github.com/Thysk/rucio/filter/parser"
)

// Options controls coercion behavior (spec §6: the engine's `new` options).
type Options struct {
	// ReservedKeys maps a reserved key name to its declared type.
	ReservedKeys map[string]ast.ValueKind
	// StrictCoerce: when true, a coercion that falls through to the string
	// branch for a reserved numeric/bool/datetime key raises InvalidValue
	// immediately. When false, the condition is kept with string type and
	// left for the Validator to accept or reject (spec §4.3 rule 5).
	StrictCoerce bool
}

// legacyRewrite maps a shorthand key to its canonical key and the operator
// it's rewritten to use (spec §4.3 rule 3, §6 "legacy shorthands").
var legacyRewrite = map[string]struct {
	Key string
	Op  ast.Operator
}{
	"created_after":  {Key: "created_at", Op: ast.GE},
	"created_before": {Key: "created_at", Op: ast.LE},
}

// Type coerces a full RawOrExpression into a typed ast.OrExpression.
func Type(raw parser.RawOrExpression, opts Options) (ast.OrExpression, error) {
	out := make(ast.OrExpression, 0, len(raw))
	for _, rawGroup := range raw {
		group := make(ast.AndGroup, 0, len(rawGroup))
		for _, rc := range rawGroup {
			cond, err := typeCondition(rc, opts)
			if err != nil {
				return nil, err
			}
			group = append(group, cond)
		}
		out = append(out, group)
	}
	return out, nil
}

func typeCondition(rc parser.RawCondition, opts Options) (ast.Condition, error) {
	if rc.Key == nil {
		left, err := coerceGeneric(rc.Left, rc.Offset)
		if err != nil {
			return ast.Condition{}, err
		}
		right, err := coerceGeneric(rc.Right, rc.Offset)
		if err != nil {
			return ast.Condition{}, err
		}
		return ast.Condition{Op: rc.Op, Left: left, Value: right}, nil
	}

	key := *rc.Key
	op := rc.Op

	// Legacy key rewrite, applied before reserved-type coercion (spec §4.3
	// rule 3): created_after/created_before always coerce as datetime.
	if rw, ok := legacyRewrite[key]; ok {
		v, err := coerceDateTime(rc.Right, rc.Offset)
		if err != nil {
			return ast.Condition{}, err
		}
		return ast.Condition{Key: &rw.Key, Op: rw.Op, Value: v}, nil
	}

	var value ast.Value
	var err error
	if declared, reserved := opts.ReservedKeys[key]; reserved {
		value, err = coerceReserved(rc.Right, declared, opts.StrictCoerce, rc.Offset)
	} else {
		value, err = coerceGeneric(rc.Right, rc.Offset)
	}
	if err != nil {
		return ast.Condition{}, err
	}

	if err := checkWildcard(value, op, rc.Offset); err != nil {
		return ast.Condition{}, err
	}

	return ast.Condition{Key: &key, Op: op, Value: value}, nil
}

// coerceReserved coerces a literal to a reserved key's declared type.
func coerceReserved(lit string, declared ast.ValueKind, strict bool, offset int) (ast.Value, error) {
	switch declared {
	case ast.KindInt:
		if v, ok := parseInt(lit); ok {
			return ast.IntValue(v), nil
		}
	case ast.KindFloat:
		if v, ok := parseFloat(lit); ok {
			return ast.FloatValue(v), nil
		}
	case ast.KindBool:
		if v, ok := parseBool(lit); ok {
			return ast.BoolValue(v), nil
		}
	case ast.KindDateTime:
		if v, ok := datetimeutil.Parse(lit); ok {
			return ast.TimeValue(v), nil
		}
	case ast.KindString:
		return withWildcard(ast.StringValue(lit), lit), nil
	}

	// Fell through: the literal does not match the declared type.
	if strict {
		return ast.Value{}, ast.ValueError(offset,
			"value %q does not coerce to declared type %s", lit, declared)
	}
	return withWildcard(ast.StringValue(lit), lit), nil
}

// coerceGeneric applies the ordered fallback cascade for non-reserved keys
// and literal operands (spec §4.3 rule 2): bool -> datetime -> int ->
// float -> string.
func coerceGeneric(lit string, offset int) (ast.Value, error) {
	if v, ok := parseBool(lit); ok {
		return ast.BoolValue(v), nil
	}
	if v, ok := datetimeutil.Parse(lit); ok {
		return ast.TimeValue(v), nil
	}
	if v, ok := parseInt(lit); ok {
		return ast.IntValue(v), nil
	}
	if v, ok := parseFloat(lit); ok {
		return ast.FloatValue(v), nil
	}
	return withWildcard(ast.StringValue(lit), lit), nil
}

func coerceDateTime(lit string, offset int) (ast.Value, error) {
	if v, ok := datetimeutil.Parse(lit); ok {
		return ast.TimeValue(v), nil
	}
	return ast.Value{}, ast.ValueError(offset, "value %q is not a valid datetime", lit)
}

func parseBool(lit string) (bool, bool) {
	switch strings.ToLower(lit) {
	case "true":
		return true, true
	case "false":
		return false, true
	default:
		return false, false
	}
}

func parseInt(lit string) (int64, bool) {
	v, err := strconv.ParseInt(lit, 10, 64)
	return v, err == nil
}

func parseFloat(lit string) (float64, bool) {
	v, err := strconv.ParseFloat(lit, 64)
	return v, err == nil
}

// withWildcard marks a string value as a wildcard pattern if it contains
// an unescaped '*'. No escape syntax exists (spec §9): a literal '*' is
// always a wildcard.
func withWildcard(v ast.Value, lit string) ast.Value {
	return v.WithWildcard(strings.Contains(lit, "*"))
}

// checkWildcard enforces spec §4.3 rule 4: wildcards are only permitted
// with = and !=, and only on string-typed values.
func checkWildcard(v ast.Value, op ast.Operator, offset int) error {
	if v.Kind != ast.KindString || !v.Wildcard {
		return nil
	}
	if op != ast.EQ && op != ast.NE {
		return ast.ValueError(offset, "wildcard value is only permitted with = or !=, not %s", op)
	}
	return nil
}
