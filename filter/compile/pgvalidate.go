package compile

import (
	pg_query "github.com/pganalyze/pg_query_go/v2"

	"github.com/Thysk/rucio/filter/ast"
)

// ValidatePostgres re-parses a Postgres-dialect query's SQL text with
// pg_query_go as a defense-in-depth check that the compiler never emits
// syntactically invalid Postgres. It is not required for correctness —
// neither CreateQuery nor the CLI calls it — and this package's own tests
// run it against a compiled Postgres query.
func ValidatePostgres(q *Query) error {
	if q.Dialect != Postgres {
		return ast.ValueError(-1, "ValidatePostgres only accepts queries compiled for the postgres dialect")
	}
	if _, err := pg_query.Parse(q.SQL); err != nil {
		return ast.SyntaxError(-1, "compiler produced invalid Postgres SQL: %v\n%s", err, q.SQL)
	}
	return nil
}
