// Package filter is the public surface of the DID metadata filter engine:
// parse, validate, and normalize a textual filter expression once at
// construction time, then either evaluate it directly or compile it into
// a backend query (spec §6).
package filter

import (
	"github.com/Thysk/rucio/filter/ast"
	"github.com/Thysk/rucio/filter/compile"
	"github.com/Thysk/rucio/filter/eval"
	"github.com/Thysk/rucio/filter/normalize"
	"github.com/Thysk/rucio/filter/parser"
	"github.com/Thysk/rucio/filter/typer"
	"github.com/Thysk/rucio/filter/validate"
)

// Re-exported error sentinels (spec §7): callers match with errors.Is
// against these rather than reaching into the ast package directly.
var (
	ErrInvalidSyntax        = ast.ErrInvalidSyntax
	ErrInvalidValue         = ast.ErrInvalidValue
	ErrDuplicateCriterion   = ast.ErrDuplicateCriterion
	ErrUnsupportedOnBackend = ast.ErrUnsupportedOnBackend
)

// Options configures construction (spec §6.1: "new(source, options)").
type Options struct {
	// ReservedKeys maps a reserved key name to its declared type. Pass
	// entity.ReservedKeyTypes() (or reservedkeys.LoadConfig's result) for
	// the DID entity's default table.
	ReservedKeys map[string]ast.ValueKind
	// StrictCoerce governs whether a reserved typed key that fails to
	// coerce raises InvalidValue immediately (true) or falls back to a
	// string value left for the Validator to accept or reject (false).
	// The zero value of Options is non-strict; the didfilter CLI's
	// --strict-coerce flag defaults to true.
	StrictCoerce bool
}

// Engine is the parsed, validated, normalized form of one filter
// expression. It is immutable after construction and safe for concurrent
// use (spec §5).
type Engine struct {
	filters ast.OrExpression
	opts    Options
}

// New parses, types, validates, and normalizes source, returning an
// Engine ready for Evaluate or CreateQuery. Fails with ErrInvalidSyntax,
// ErrInvalidValue, or ErrDuplicateCriterion.
func New(source string, opts Options) (*Engine, error) {
	reservedSet := make(map[string]bool, len(opts.ReservedKeys))
	for k := range opts.ReservedKeys {
		reservedSet[k] = true
	}

	raw, err := parser.Parse(source, reservedSet)
	if err != nil {
		return nil, err
	}

	typed, err := typer.Type(raw, typer.Options{
		ReservedKeys: opts.ReservedKeys,
		StrictCoerce: opts.StrictCoerce,
	})
	if err != nil {
		return nil, err
	}

	if err := validate.Validate(typed, validate.Options{ReservedKeys: opts.ReservedKeys}); err != nil {
		return nil, err
	}

	return &Engine{filters: normalize.Normalize(typed), opts: opts}, nil
}

// Filters returns the canonical DNF the engine was constructed from.
func (e *Engine) Filters() ast.OrExpression {
	return e.filters
}

// Evaluate computes the filter's boolean value directly, without touching
// storage. It fails if any condition references a key (spec §4.7).
func (e *Engine) Evaluate() (bool, error) {
	return eval.Evaluate(e.filters)
}

// CreateQuery compiles the filter into a backend query against entity,
// using dialect's SQL surface. jsonColumn is optional: pass the zero
// compile.Attribute to indicate no JSON attribute is configured, in which
// case non-reserved keys fall back to entity's key-value table (spec
// §4.6).
func (e *Engine) CreateQuery(dialect compile.Dialect, entity compile.EntityDescriptor, additional []compile.Attribute, jsonColumn compile.Attribute) (*compile.Query, error) {
	var jsonAttr *compile.Attribute
	if jsonColumn != (compile.Attribute{}) {
		jsonAttr = &jsonColumn
	}
	return compile.Compile(e.filters, dialect, entity, additional, jsonAttr)
}
