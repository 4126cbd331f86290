package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Thysk/rucio/filter/ast"
)

func cond(key string, op ast.Operator, v ast.Value) ast.Condition {
	k := key
	return ast.Condition{Key: &k, Op: op, Value: v}
}

func TestNormalizeSortsByKey(t *testing.T) {
	expr := ast.OrExpression{ast.AndGroup{
		cond("project", ast.EQ, ast.StringValue("test")),
		cond("run_number", ast.EQ, ast.IntValue(1)),
	}}
	out := Normalize(expr)
	assert.Equal(t, "project", *out[0][0].Key)
	assert.Equal(t, "run_number", *out[0][1].Key)
}

func TestNormalizeLiteralConditionsSortFirst(t *testing.T) {
	literal := ast.Condition{Op: ast.GT, Left: ast.IntValue(3), Value: ast.IntValue(2)}
	expr := ast.OrExpression{ast.AndGroup{
		cond("run_number", ast.EQ, ast.IntValue(1)),
		literal,
	}}
	out := Normalize(expr)
	assert.Nil(t, out[0][0].Key)
	assert.Equal(t, "run_number", *out[0][1].Key)
}

func TestNormalizeIsStableAndIdempotent(t *testing.T) {
	expr := ast.OrExpression{ast.AndGroup{
		cond("b", ast.EQ, ast.IntValue(1)),
		cond("a", ast.GT, ast.IntValue(0)),
		cond("a", ast.LT, ast.IntValue(5)),
	}}
	once := Normalize(expr)
	twice := Normalize(once)
	assert.True(t, once.Equal(twice))
	// within the "a" bucket, relative order (GT before LT) is preserved.
	assert.Equal(t, "a", *once[0][0].Key)
	assert.Equal(t, ast.GT, once[0][0].Op)
	assert.Equal(t, "a", *once[0][1].Key)
	assert.Equal(t, ast.LT, once[0][1].Op)
}

func TestNormalizeDoesNotMutateInput(t *testing.T) {
	expr := ast.OrExpression{ast.AndGroup{
		cond("b", ast.EQ, ast.IntValue(1)),
		cond("a", ast.EQ, ast.IntValue(1)),
	}}
	_ = Normalize(expr)
	assert.Equal(t, "b", *expr[0][0].Key)
}
