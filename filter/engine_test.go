package filter

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Thysk/rucio/entity"
	"github.com/Thysk/rucio/filter/ast"
	"github.com/Thysk/rucio/filter/compile"
)

func defaultOptions() Options {
	return Options{ReservedKeys: entity.ReservedKeyTypes(), StrictCoerce: true}
}

func TestNewParsesAndGroupEquality(t *testing.T) {
	// S1: AND of two equalities.
	eng, err := New("run_number = 1, project = test", defaultOptions())
	require.NoError(t, err)
	require.Len(t, eng.Filters(), 1)
	assert.Len(t, eng.Filters()[0], 2)
}

func TestNewParsesOrGroups(t *testing.T) {
	// S2: OR of two equalities.
	eng, err := New("run_number = 1; project = test", defaultOptions())
	require.NoError(t, err)
	assert.Len(t, eng.Filters(), 2)
}

func TestNewRejectsReservedKeyTypeMismatch(t *testing.T) {
	// S3 property/invariant 3: length >= test fails with InvalidValue.
	_, err := New("length >= test", defaultOptions())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidValue))
}

func TestNewCompoundInequality(t *testing.T) {
	// S4: compound inequality.
	eng, err := New("0 < run_number < 2", defaultOptions())
	require.NoError(t, err)
	assert.Len(t, eng.Filters()[0], 2)
}

func TestNewMixedDirectionCompoundInequalityIsDuplicateCriterion(t *testing.T) {
	// Testable property 2.
	_, err := New("1 < run_number > 3", defaultOptions())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDuplicateCriterion))
}

func TestNewInputSanitisation(t *testing.T) {
	// S6.
	opts := Options{
		ReservedKeys: map[string]ast.ValueKind{"TestKeyword1": ast.KindBool, "TestKeyword2": ast.KindInt, "TestKeyword4": ast.KindInt},
		StrictCoerce: true,
	}
	eng, err := New("  TestKeyword1  =  True  ,  TestKeyword2   =   0; 1 < TestKeyword4 <= 2", opts)
	require.NoError(t, err)
	require.Len(t, eng.Filters(), 2)
	assert.Equal(t, "TestKeyword1", *eng.Filters()[0][0].Key)
	assert.True(t, eng.Filters()[0][0].Value.Bool)
	assert.Equal(t, "TestKeyword2", *eng.Filters()[0][1].Key)
	assert.Equal(t, int64(0), eng.Filters()[0][1].Value.Int)
}

func TestEvaluateLiteralExpression(t *testing.T) {
	eng, err := New("1 < 2", defaultOptions())
	require.NoError(t, err)
	ok, err := eng.Evaluate()
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestEvaluateFailsWhenFilterReferencesAKey(t *testing.T) {
	eng, err := New("run_number = 1", defaultOptions())
	require.NoError(t, err)
	_, err = eng.Evaluate()
	assert.Error(t, err)
}

func TestCreateQueryCompilesAgainstDIDEntity(t *testing.T) {
	eng, err := New("run_number = 1; project = test", defaultOptions())
	require.NoError(t, err)
	q, err := eng.CreateQuery(compile.SQLite, entity.DIDs, nil, compile.Attribute{})
	require.NoError(t, err)
	assert.Contains(t, q.SQL, "SELECT DISTINCT")
	assert.Contains(t, q.SQL, " OR ")
}

func TestNormalizationIdempotence(t *testing.T) {
	// Testable property 1.
	a, err := New("project = test, run_number = 1", defaultOptions())
	require.NoError(t, err)
	b, err := New("run_number = 1, project = test", defaultOptions())
	require.NoError(t, err)
	assert.True(t, a.Filters().Equal(b.Filters()))
}
