package compile

import (
	"fmt"
	"strings"

	"github.com/Thysk/rucio/filter/ast"
	"github.com/Thysk/rucio/filter/eval"
)

// Attribute is a handle to a single backend column: the name the
// EntityDescriptor knows it by, its underlying column expression, its
// declared kind, and whether it admits NULL (needed for the
// negation-includes-NULL widening, spec §4.6).
type Attribute struct {
	Name     string
	Column   string
	Kind     ast.ValueKind
	Nullable bool
}

// KVTable describes the fallback key-value metadata table used for
// non-reserved keys when no JSON attribute is configured (spec §4.6: "the
// predicate is lowered to a join/exists against a separate key-value
// metadata table keyed by (scope, name, key)").
type KVTable struct {
	Table       string
	ScopeColumn string
	NameColumn  string
	KeyColumn   string
	ValueColumn string
}

// EntityDescriptor names the table and exposes attribute handles for
// reserved keys plus the name/scope columns every entity has (spec §4.6,
// §9 design note: "a single lookup(key) capability rather than duplicate
// the key list").
type EntityDescriptor interface {
	Table() string
	Alias() string
	ScopeAttribute() Attribute
	NameAttribute() Attribute
	// Lookup resolves a reserved key to its column attribute. ok is false
	// for a non-reserved key.
	Lookup(key string) (attr Attribute, ok bool)
	// KeyValueTable returns the fallback metadata table, if this entity
	// has one (ok is false if non-reserved keys are only ever reachable
	// through the JSON attribute).
	KeyValueTable() (KVTable, bool)
}

// Query is the compiled backend query: parameterized SQL text plus its
// positional arguments, ready to hand to database/sql.
type Query struct {
	Dialect Dialect
	SQL     string
	Args    []any
}

type compiler struct {
	dialect    Dialect
	entity     EntityDescriptor
	jsonColumn *Attribute
	args       []any
}

// Compile builds a Query selecting the scope/name pair (plus any
// additional attributes) of every entity row matching expr, against the
// given entity descriptor, optional JSON-blob attribute, and dialect (spec
// §4.6). Result rows are deduplicated by (scope, name) via SELECT DISTINCT
// regardless of how many OrGroups match.
func Compile(expr ast.OrExpression, dialect Dialect, entity EntityDescriptor, additional []Attribute, jsonColumn *Attribute) (*Query, error) {
	if len(expr) == 0 {
		return nil, ast.ValueError(-1, "cannot compile an empty filter expression")
	}

	c := &compiler{dialect: dialect, entity: entity, jsonColumn: jsonColumn}

	groupPredicates := make([]string, 0, len(expr))
	for _, group := range expr {
		pred, err := c.compileGroup(group)
		if err != nil {
			return nil, err
		}
		groupPredicates = append(groupPredicates, pred)
	}

	scope := entity.ScopeAttribute()
	name := entity.NameAttribute()
	alias := entity.Alias()

	cols := []string{
		qualify(alias, scope.Column, dialect),
		qualify(alias, name.Column, dialect),
	}
	for _, a := range additional {
		cols = append(cols, qualify(alias, a.Column, dialect))
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "SELECT DISTINCT %s FROM %s AS %s WHERE ",
		strings.Join(cols, ", "), dialect.QuoteIdent(entity.Table()), dialect.QuoteIdent(alias))

	parts := make([]string, len(groupPredicates))
	for i, p := range groupPredicates {
		parts[i] = "(" + p + ")"
	}
	sb.WriteString(strings.Join(parts, " OR "))

	return &Query{Dialect: dialect, SQL: sb.String(), Args: c.args}, nil
}

func qualify(alias, column string, d Dialect) string {
	return d.QuoteIdent(alias) + "." + d.QuoteIdent(column)
}

func (c *compiler) compileGroup(group ast.AndGroup) (string, error) {
	preds := make([]string, 0, len(group))
	for _, cond := range group {
		if cond.IsLiteral() {
			ok, err := eval.EvalCondition(cond)
			if err != nil {
				return "", err
			}
			if !ok {
				// A false literal condition makes the whole AndGroup
				// unsatisfiable; 1=0 keeps the predicate well-formed SQL.
				return "1=0", nil
			}
			// A true literal condition contributes nothing.
			continue
		}
		pred, err := c.compileCondition(cond)
		if err != nil {
			return "", err
		}
		preds = append(preds, pred)
	}
	if len(preds) == 0 {
		return "1=1", nil
	}
	for i, p := range preds {
		preds[i] = "(" + p + ")"
	}
	return strings.Join(preds, " AND "), nil
}

func (c *compiler) bind(v any) string {
	c.args = append(c.args, v)
	return c.dialect.Placeholder(len(c.args))
}

func (c *compiler) compileCondition(cond ast.Condition) (string, error) {
	key := *cond.Key
	if attr, ok := c.entity.Lookup(key); ok {
		return c.compileReserved(attr, cond)
	}
	if c.jsonColumn != nil {
		return c.compileJSON(*c.jsonColumn, key, cond)
	}
	kv, ok := c.entity.KeyValueTable()
	if !ok {
		return "", ast.ValueError(-1, "key %q is not reserved and this entity has no JSON or key-value metadata store", key)
	}
	return c.compileKV(kv, key, cond)
}

// compileReserved emits the predicate for a reserved key bound to a typed
// column (spec §4.6 table, rows 1-4).
func (c *compiler) compileReserved(attr Attribute, cond ast.Condition) (string, error) {
	col := qualify(c.entity.Alias(), attr.Column, c.dialect)

	if cond.Value.Wildcard {
		pattern := likePattern(cond.Value.Str)
		arg := c.bind(pattern)
		switch cond.Op {
		case ast.EQ:
			return fmt.Sprintf("%s LIKE %s", col, arg), nil
		case ast.NE:
			pred := fmt.Sprintf("%s NOT LIKE %s", col, arg)
			if attr.Nullable {
				pred = fmt.Sprintf("(%s) OR (%s IS NULL)", pred, col)
			}
			return pred, nil
		default:
			return "", ast.ValueError(-1, "wildcard value only supports = and !=, not %s", cond.Op)
		}
	}

	arg := c.bind(sqlLiteral(cond.Value))
	switch cond.Op {
	case ast.NE:
		pred := fmt.Sprintf("%s != %s", col, arg)
		if attr.Nullable {
			pred = fmt.Sprintf("(%s) OR (%s IS NULL)", pred, col)
		}
		return pred, nil
	default:
		return fmt.Sprintf("%s %s %s", col, sqlOp(cond.Op), arg), nil
	}
}

// compileJSON emits the predicate for a non-reserved key backed by a JSON
// attribute (spec §4.6 table, rows 5-8).
func (c *compiler) compileJSON(jsonAttr Attribute, key string, cond ast.Condition) (string, error) {
	extractCol := qualify(c.entity.Alias(), jsonAttr.Column, c.dialect)
	extract := c.dialect.JSONExtractText(extractCol, key)

	if cond.Value.Wildcard {
		pattern := likePattern(cond.Value.Str)
		arg := c.bind(pattern)
		switch cond.Op {
		case ast.EQ:
			return fmt.Sprintf("%s LIKE %s", extract, arg), nil
		case ast.NE:
			if !c.dialect.SupportsNegatedWildcardJSON() {
				return "", ast.UnsupportedError("dialect %s cannot express a negated wildcard match over a JSON attribute", c.dialect.Name())
			}
			return fmt.Sprintf("(%s NOT LIKE %s) OR (%s IS NULL)", extract, arg, extract), nil
		default:
			return "", ast.ValueError(-1, "wildcard value only supports = and !=, not %s", cond.Op)
		}
	}

	if cond.Op == ast.EQ || cond.Op == ast.NE {
		arg := c.bind(sqlText(cond.Value))
		if cond.Op == ast.EQ {
			return fmt.Sprintf("%s = %s", extract, arg), nil
		}
		return fmt.Sprintf("(%s != %s) OR (%s IS NULL)", extract, arg, extract), nil
	}

	// Ordering operator: cast the extracted text to the coerced value's
	// kind before comparing. A cast failure is a non-match, not NULL
	// (spec §4.6); each dialect's JSONCast uses a safe-cast form where one
	// is available.
	casted := c.dialect.JSONCast(extract, cond.Value.Kind)
	arg := c.bind(sqlLiteral(cond.Value))
	return fmt.Sprintf("%s %s %s", casted, sqlOp(cond.Op), arg), nil
}

// compileKV emits the predicate for a non-reserved key with no JSON
// attribute configured, lowered to an EXISTS against the key-value
// metadata table (spec §4.6 table, row 9). NOT EXISTS naturally includes
// rows where the key is entirely absent, which is this table's analogue of
// NULL for the negation-includes-null rule.
func (c *compiler) compileKV(kv KVTable, key string, cond ast.Condition) (string, error) {
	scope := c.entity.ScopeAttribute()
	name := c.entity.NameAttribute()
	alias := c.entity.Alias()

	keyArg := c.bind(key)
	sub := fmt.Sprintf("SELECT 1 FROM %s WHERE %s = %s AND %s = %s AND %s = %s",
		c.dialect.QuoteIdent(kv.Table),
		c.dialect.QuoteIdent(kv.ScopeColumn), qualify(alias, scope.Column, c.dialect),
		c.dialect.QuoteIdent(kv.NameColumn), qualify(alias, name.Column, c.dialect),
		c.dialect.QuoteIdent(kv.KeyColumn), keyArg)

	valCol := c.dialect.QuoteIdent(kv.ValueColumn)

	if cond.Value.Wildcard {
		pattern := likePattern(cond.Value.Str)
		arg := c.bind(pattern)
		pred := fmt.Sprintf("EXISTS (%s AND %s LIKE %s)", sub, valCol, arg)
		if cond.Op == ast.NE {
			return "NOT " + pred, nil
		}
		return pred, nil
	}

	if cond.Op == ast.EQ || cond.Op == ast.NE {
		arg := c.bind(sqlText(cond.Value))
		pred := fmt.Sprintf("EXISTS (%s AND %s = %s)", sub, valCol, arg)
		if cond.Op == ast.NE {
			return "NOT " + pred, nil
		}
		return pred, nil
	}

	casted := c.dialect.JSONCast(valCol, cond.Value.Kind)
	arg := c.bind(sqlLiteral(cond.Value))
	return fmt.Sprintf("EXISTS (%s AND %s %s %s)", sub, casted, sqlOp(cond.Op), arg), nil
}

func sqlOp(op ast.Operator) string {
	switch op {
	case ast.EQ:
		return "="
	case ast.NE:
		return "!="
	case ast.LT:
		return "<"
	case ast.LE:
		return "<="
	case ast.GT:
		return ">"
	case ast.GE:
		return ">="
	default:
		return "="
	}
}

// likePattern rewrites '*' wildcards to SQL '%' (spec §8 invariant 5);
// this language has no escape syntax, so a literal '%' or '_' in user text
// passes through unescaped, matching the documented no-escape behavior.
func likePattern(s string) string {
	return strings.ReplaceAll(s, "*", "%")
}

// sqlLiteral returns the Go value to bind for a typed value used in a
// scalar or cast comparison.
func sqlLiteral(v ast.Value) any {
	switch v.Kind {
	case ast.KindInt:
		return v.Int
	case ast.KindFloat:
		return v.Float
	case ast.KindBool:
		return v.Bool
	case ast.KindDateTime:
		return v.Time
	default:
		return v.Str
	}
}

// sqlText stringifies a typed value for comparison against a text-typed
// column (a JSON-extracted string or a key-value table's value column).
func sqlText(v ast.Value) string {
	return v.String()
}
