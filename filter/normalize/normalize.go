// Package normalize produces the canonical DNF form described in spec
// §4.5: compound inequalities and legacy keys are already folded down to
// simple triples by the parser and typer, so the remaining job is a
// stable per-key sort within each AndGroup, which makes two independent
// parses of equivalent filter text compare equal (spec §8.1,
// "Normalization idempotence").
package normalize

import (
	"sort"

	"github.com/Thysk/rucio/filter/ast"
)

// Normalize returns expr with each AndGroup's conditions stably sorted by
// key (literal conditions, which have no key, sort first and keep their
// relative order).
func Normalize(expr ast.OrExpression) ast.OrExpression {
	out := make(ast.OrExpression, len(expr))
	for i, group := range expr {
		out[i] = normalizeGroup(group)
	}
	return out
}

func normalizeGroup(group ast.AndGroup) ast.AndGroup {
	sorted := make(ast.AndGroup, len(group))
	copy(sorted, group)
	sort.SliceStable(sorted, func(i, j int) bool {
		ki, kj := sorted[i].Key, sorted[j].Key
		if ki == nil && kj == nil {
			return false
		}
		if ki == nil {
			return true
		}
		if kj == nil {
			return false
		}
		return *ki < *kj
	})
	return sorted
}
