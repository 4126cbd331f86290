package eval

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Thysk/rucio/filter/ast"
)

func lit(op ast.Operator, left, right ast.Value) ast.Condition {
	return ast.Condition{Op: op, Left: left, Value: right}
}

func TestEvaluateSimpleLiteral(t *testing.T) {
	ok, err := Evaluate(ast.OrExpression{{lit(ast.EQ, ast.IntValue(1), ast.IntValue(1))}})
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestEvaluateChainedCompoundInequality(t *testing.T) {
	// "3 > 2 > 1" -> [3>2, 2>1] both true -> AndGroup true.
	ok, err := Evaluate(ast.OrExpression{{
		lit(ast.GT, ast.IntValue(3), ast.IntValue(2)),
		lit(ast.GT, ast.IntValue(2), ast.IntValue(1)),
	}})
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestEvaluateChainedCompoundInequalityFalse(t *testing.T) {
	// "1 > 2 > 3" -> 1>2 is false -> AndGroup false.
	ok, err := Evaluate(ast.OrExpression{{
		lit(ast.GT, ast.IntValue(1), ast.IntValue(2)),
		lit(ast.GT, ast.IntValue(2), ast.IntValue(3)),
	}})
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestEvaluateOrOfAndGroups(t *testing.T) {
	ok, err := Evaluate(ast.OrExpression{
		{lit(ast.EQ, ast.IntValue(1), ast.IntValue(2))},
		{lit(ast.EQ, ast.StringValue("a"), ast.StringValue("a"))},
	})
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestEvaluateErrorsOnKeyedCondition(t *testing.T) {
	key := "run_number"
	_, err := Evaluate(ast.OrExpression{{{Key: &key, Op: ast.EQ, Value: ast.IntValue(1)}}})
	require.Error(t, err)
	assert.Equal(t, ast.InvalidValue, err.(*ast.Error).Kind)
}

func TestEvaluateWildcardEquality(t *testing.T) {
	ok, err := Evaluate(ast.OrExpression{{
		lit(ast.EQ, ast.StringValue("anothertest1").WithWildcard(false), ast.StringValue("*anothertest*").WithWildcard(true)),
	}})
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestEvaluateNumericCrossKind(t *testing.T) {
	ok, err := Evaluate(ast.OrExpression{{lit(ast.EQ, ast.IntValue(1), ast.FloatValue(1.0))}})
	require.NoError(t, err)
	assert.True(t, ok)
}
