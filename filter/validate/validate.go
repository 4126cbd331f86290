// Package validate enforces the per-AndGroup invariants described in
// spec §4.4: reserved-key operator/type compatibility and duplicate- or
// contradictory-criterion detection.
package validate

import "github.com/Thysk/rucio/filter/ast"

// equalityOnlyKeys are reserved keys that only support = and != (spec
// §4.4: "Reject name or did_type with any ordering operator").
var equalityOnlyKeys = map[string]bool{
	"name":     true,
	"did_type": true,
}

// Options carries the reserved-key type table needed to check
// operator/type compatibility.
type Options struct {
	ReservedKeys map[string]ast.ValueKind
}

// Validate checks every AndGroup in expr and returns the first violation.
func Validate(expr ast.OrExpression, opts Options) error {
	for _, group := range expr {
		if err := validateGroup(group, opts); err != nil {
			return err
		}
	}
	return nil
}

func validateGroup(group ast.AndGroup, opts Options) error {
	for _, c := range group {
		if c.IsLiteral() {
			continue
		}
		if err := validateCondition(c, opts); err != nil {
			return err
		}
	}
	return validateDuplicates(group)
}

func validateCondition(c ast.Condition, opts Options) error {
	key := *c.Key

	if equalityOnlyKeys[key] && c.Op.IsOrdering() {
		return ast.ValueError(-1, "key %q only supports = and !=, not %s", key, c.Op)
	}

	declared, reserved := opts.ReservedKeys[key]
	if !reserved {
		return nil
	}

	// An ordering operator on a reserved key requires the coerced value to
	// actually be of the declared kind (or a numeric kind comparable to
	// it); a string fallback (produced under strict_coerce=false, spec
	// §4.3 rule 5) used with an ordering operator is "semantically
	// impossible" and rejected here (spec §4.4, example: `length >= "test"`).
	if c.Op.IsOrdering() && !kindComparable(c.Value.Kind, declared) {
		return ast.ValueError(-1, "key %q declared %s cannot be compared with operator %s against a %s value",
			key, declared, c.Op, c.Value.Kind)
	}
	return nil
}

// kindComparable reports whether a value of kind `got` can be meaningfully
// ordered against a column declared `declared`. Int/Float are mutually
// comparable (numeric promotion); every other kind must match exactly.
func kindComparable(got, declared ast.ValueKind) bool {
	if got == declared {
		return true
	}
	numeric := func(k ast.ValueKind) bool { return k == ast.KindInt || k == ast.KindFloat }
	return numeric(got) && numeric(declared)
}

// validateDuplicates implements spec §4.4's duplicate-criterion check: two
// differing equality constraints on the same key, or more than one bound
// in the same direction family on the same key, make the group
// unsatisfiable or ambiguous.
func validateDuplicates(group ast.AndGroup) error {
	type key struct {
		name string
		dir  ast.Direction
	}
	eqValues := map[string][]ast.Value{}
	boundCount := map[key]int{}

	for _, c := range group {
		if c.IsLiteral() {
			continue
		}
		name := *c.Key
		switch c.Op {
		case ast.EQ:
			eqValues[name] = append(eqValues[name], c.Value)
		case ast.GT, ast.GE, ast.LT, ast.LE:
			k := key{name: name, dir: c.Op.Direction()}
			boundCount[k]++
		}
	}

	// Two differing equality values on the same key only conflict if
	// they're actually comparable (same kind, or both numeric). A Bool and
	// an Int are never compared with each other, so a same-key Bool/Int
	// pair under `=` (e.g. `k = true, k = 1` on a non-reserved key) is
	// left alone rather than flagged.
	for name, values := range eqValues {
		for i := 1; i < len(values); i++ {
			if !kindComparable(values[i].Kind, values[0].Kind) {
				continue
			}
			if !values[i].Equal(values[0]) {
				return ast.DuplicateError(-1, "key %q has conflicting equality constraints %s and %s",
					name, values[0], values[i])
			}
		}
	}

	for k, n := range boundCount {
		if n > 1 {
			dirName := "lower"
			if k.dir == ast.DirForward {
				dirName = "upper"
			}
			return ast.DuplicateError(-1, "key %q has more than one %s bound in the same AND-group", k.name, dirName)
		}
	}
	return nil
}
