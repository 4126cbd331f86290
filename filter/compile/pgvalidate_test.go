package compile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Thysk/rucio/filter/ast"
)

func TestValidatePostgresAcceptsCompiledQuery(t *testing.T) {
	expr := ast.OrExpression{{keyedCond("run_number", ast.EQ, ast.IntValue(1))}}
	q, err := Compile(expr, Postgres, testEntity{}, nil, nil)
	require.NoError(t, err)
	assert.NoError(t, ValidatePostgres(q))
}

func TestValidatePostgresRejectsWrongDialect(t *testing.T) {
	expr := ast.OrExpression{{keyedCond("run_number", ast.EQ, ast.IntValue(1))}}
	q, err := Compile(expr, SQLite, testEntity{}, nil, nil)
	require.NoError(t, err)
	assert.Error(t, ValidatePostgres(q))
}
