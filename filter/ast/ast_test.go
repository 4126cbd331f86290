package ast

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestOperatorDirectionAndFlip(t *testing.T) {
	assert.Equal(t, DirForward, LT.Direction())
	assert.Equal(t, DirForward, LE.Direction())
	assert.Equal(t, DirReverse, GT.Direction())
	assert.Equal(t, DirReverse, GE.Direction())
	assert.Equal(t, DirNeutral, EQ.Direction())
	assert.Equal(t, DirNeutral, NE.Direction())

	assert.Equal(t, GT, LT.Flip())
	assert.Equal(t, LT, GT.Flip())
	assert.Equal(t, GE, LE.Flip())
	assert.Equal(t, LE, GE.Flip())
	assert.Equal(t, EQ, EQ.Flip())
	assert.Equal(t, NE, NE.Flip())
}

func TestOperatorIsOrdering(t *testing.T) {
	assert.False(t, EQ.IsOrdering())
	assert.False(t, NE.IsOrdering())
	assert.True(t, LT.IsOrdering())
	assert.True(t, GE.IsOrdering())
}

func TestValueEqual(t *testing.T) {
	assert.True(t, IntValue(1).Equal(IntValue(1)))
	assert.False(t, IntValue(1).Equal(IntValue(2)))
	// Bool and Int are distinct kinds and never equal, even when their
	// underlying numeric interpretation would coincide (spec §8 S6: bool
	// preserved distinctly from int for introspection).
	assert.False(t, BoolValue(true).Equal(IntValue(1)))
	assert.True(t, StringValue("a").Equal(StringValue("a")))
	assert.False(t, StringValue("a").WithWildcard(true).Equal(StringValue("a")))

	now := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	assert.True(t, TimeValue(now).Equal(TimeValue(now)))
}

func TestConditionIsLiteral(t *testing.T) {
	key := "name"
	keyed := Condition{Key: &key, Op: EQ, Value: StringValue("x")}
	literal := Condition{Op: EQ, Left: IntValue(1), Value: IntValue(1)}

	assert.False(t, keyed.IsLiteral())
	assert.True(t, literal.IsLiteral())
}

func TestOrExpressionEqual(t *testing.T) {
	key := "run_number"
	a := OrExpression{AndGroup{{Key: &key, Op: EQ, Value: IntValue(1)}}}
	b := OrExpression{AndGroup{{Key: &key, Op: EQ, Value: IntValue(1)}}}
	c := OrExpression{AndGroup{{Key: &key, Op: EQ, Value: IntValue(2)}}}

	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(c))
}
