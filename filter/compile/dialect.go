// Package compile turns a normalized ast.OrExpression into a backend query
// tree (spec §4.6). The compilation table is implemented per-dialect: each
// backend quotes identifiers, extracts JSON paths, and binds placeholders
// differently.
package compile

import (
	"fmt"

	"github.com/Thysk/rucio/filter/ast"
)

// Dialect abstracts the SQL surface the compiler needs: identifier
// quoting, placeholder syntax, and JSON-path extraction. Each backend
// driver in the corpus gets its own implementation below.
type Dialect interface {
	Name() string
	QuoteIdent(id string) string
	// Placeholder returns the bind-parameter marker for the n-th
	// (1-indexed) argument in the query.
	Placeholder(n int) string
	// JSONExtractText returns an expression extracting key as text from
	// the JSON-typed column.
	JSONExtractText(column, key string) string
	// JSONCast wraps a JSON-extraction expression with a cast to kind,
	// for use in ordering comparisons (spec §4.6: "casts the extracted
	// value to the coerced type before comparing").
	JSONCast(extractExpr string, kind ast.ValueKind) string
	// SupportsNegatedWildcardJSON reports whether `!=` with a wildcard
	// value can be compiled over a JSON column on this backend (spec
	// §4.6: "observed: the target refuses this on one specific SQL
	// dialect").
	SupportsNegatedWildcardJSON() bool
}

// MySQL targets github.com/go-sql-driver/mysql.
var MySQL Dialect = mysqlDialect{}

type mysqlDialect struct{}

func (mysqlDialect) Name() string                 { return "mysql" }
func (mysqlDialect) QuoteIdent(id string) string  { return "`" + id + "`" }
func (mysqlDialect) Placeholder(int) string       { return "?" }
func (mysqlDialect) SupportsNegatedWildcardJSON() bool { return true }

func (mysqlDialect) JSONExtractText(column, key string) string {
	return fmt.Sprintf("JSON_UNQUOTE(JSON_EXTRACT(%s, '$.%s'))", column, key)
}

func (d mysqlDialect) JSONCast(expr string, kind ast.ValueKind) string {
	switch kind {
	case ast.KindInt:
		return fmt.Sprintf("CAST(%s AS SIGNED)", expr)
	case ast.KindFloat:
		return fmt.Sprintf("CAST(%s AS DECIMAL(65,10))", expr)
	case ast.KindDateTime:
		return fmt.Sprintf("CAST(%s AS DATETIME)", expr)
	case ast.KindBool:
		return fmt.Sprintf("CAST(%s AS UNSIGNED)", expr)
	default:
		return expr
	}
}

// Postgres targets github.com/lib/pq.
var Postgres Dialect = postgresDialect{}

type postgresDialect struct{}

func (postgresDialect) Name() string                 { return "postgres" }
func (postgresDialect) QuoteIdent(id string) string  { return `"` + id + `"` }
func (postgresDialect) Placeholder(n int) string     { return fmt.Sprintf("$%d", n) }
func (postgresDialect) SupportsNegatedWildcardJSON() bool { return true }

func (postgresDialect) JSONExtractText(column, key string) string {
	return fmt.Sprintf("%s->>'%s'", column, key)
}

func (d postgresDialect) JSONCast(expr string, kind ast.ValueKind) string {
	switch kind {
	case ast.KindInt:
		return fmt.Sprintf("(%s)::bigint", expr)
	case ast.KindFloat:
		return fmt.Sprintf("(%s)::double precision", expr)
	case ast.KindDateTime:
		return fmt.Sprintf("(%s)::timestamp", expr)
	case ast.KindBool:
		return fmt.Sprintf("(%s)::boolean", expr)
	default:
		return expr
	}
}

// MSSQL targets github.com/denisenkom/go-mssqldb. This is the dialect
// that cannot express a negated wildcard over a JSON column (spec §4.6):
// JSON_VALUE does not compose reliably with NOT LIKE and a NULL-widening
// OR across SQL Server collations, so the compiler rejects it up front
// with ErrUnsupportedOnBackend rather than emit a query that may silently
// misbehave.
var MSSQL Dialect = mssqlDialect{}

type mssqlDialect struct{}

func (mssqlDialect) Name() string                 { return "mssql" }
func (mssqlDialect) QuoteIdent(id string) string  { return "[" + id + "]" }
func (mssqlDialect) Placeholder(n int) string     { return fmt.Sprintf("@p%d", n) }
func (mssqlDialect) SupportsNegatedWildcardJSON() bool { return false }

func (mssqlDialect) JSONExtractText(column, key string) string {
	return fmt.Sprintf("JSON_VALUE(%s, '$.%s')", column, key)
}

func (d mssqlDialect) JSONCast(expr string, kind ast.ValueKind) string {
	switch kind {
	case ast.KindInt:
		return fmt.Sprintf("TRY_CAST(%s AS BIGINT)", expr)
	case ast.KindFloat:
		return fmt.Sprintf("TRY_CAST(%s AS FLOAT)", expr)
	case ast.KindDateTime:
		return fmt.Sprintf("TRY_CAST(%s AS DATETIME2)", expr)
	case ast.KindBool:
		return fmt.Sprintf("TRY_CAST(%s AS BIT)", expr)
	default:
		return expr
	}
}

// SQLite targets modernc.org/sqlite (with the mattn/go-sqlite3 build-tag
// twin for cgo environments); it's the default backend for the CLI's
// --explain dry-run and for engine tests that execute compiled queries
// end-to-end.
var SQLite Dialect = sqliteDialect{}

type sqliteDialect struct{}

func (sqliteDialect) Name() string                 { return "sqlite" }
func (sqliteDialect) QuoteIdent(id string) string  { return `"` + id + `"` }
func (sqliteDialect) Placeholder(int) string       { return "?" }
func (sqliteDialect) SupportsNegatedWildcardJSON() bool { return true }

func (sqliteDialect) JSONExtractText(column, key string) string {
	return fmt.Sprintf("json_extract(%s, '$.%s')", column, key)
}

func (d sqliteDialect) JSONCast(expr string, kind ast.ValueKind) string {
	switch kind {
	case ast.KindInt:
		return fmt.Sprintf("CAST(%s AS INTEGER)", expr)
	case ast.KindFloat:
		return fmt.Sprintf("CAST(%s AS REAL)", expr)
	case ast.KindDateTime:
		return fmt.Sprintf("datetime(%s)", expr)
	case ast.KindBool:
		return fmt.Sprintf("CAST(%s AS INTEGER)", expr)
	default:
		return expr
	}
}
