// Package entity describes the data identifier (DID) entity that the
// filter engine's Query Compiler targets: an (scope, name) pair with a
// handful of reserved, typed columns plus a JSON metadata blob (spec §4.6,
// §9 design note on reserved-vs-JSON keys).
package entity

import (
	"github.com/Thysk/rucio/filter/ast"
	"github.com/Thysk/rucio/filter/compile"
)

// DIDs implements compile.EntityDescriptor for the "dids" table: the
// reserved-key list named in spec §2 (name, scope, did_type, created_at,
// updated_at, length, …) bound to their columns, with a fallback
// key-value table for non-reserved keys when no JSON attribute is wired
// in.
var DIDs compile.EntityDescriptor = didDescriptor{}

type didDescriptor struct{}

func (didDescriptor) Table() string { return "dids" }
func (didDescriptor) Alias() string { return "d" }

func (didDescriptor) ScopeAttribute() compile.Attribute {
	return compile.Attribute{Name: "scope", Column: "scope", Kind: ast.KindString, Nullable: false}
}

func (didDescriptor) NameAttribute() compile.Attribute {
	return compile.Attribute{Name: "name", Column: "name", Kind: ast.KindString, Nullable: false}
}

// reservedColumns is the lookup(key) table referenced by spec §9: every
// reserved key the typer/validator know about maps here to a column
// handle, kept in one place instead of being duplicated across packages.
var reservedColumns = map[string]compile.Attribute{
	"name":       {Name: "name", Column: "name", Kind: ast.KindString, Nullable: false},
	"scope":      {Name: "scope", Column: "scope", Kind: ast.KindString, Nullable: false},
	"did_type":   {Name: "did_type", Column: "did_type", Kind: ast.KindString, Nullable: false},
	"created_at": {Name: "created_at", Column: "created_at", Kind: ast.KindDateTime, Nullable: true},
	"updated_at": {Name: "updated_at", Column: "updated_at", Kind: ast.KindDateTime, Nullable: true},
	"length":     {Name: "length", Column: "length", Kind: ast.KindInt, Nullable: true},
	"run_number": {Name: "run_number", Column: "run_number", Kind: ast.KindInt, Nullable: true},
	"project":    {Name: "project", Column: "project", Kind: ast.KindString, Nullable: true},
}

func (didDescriptor) Lookup(key string) (compile.Attribute, bool) {
	attr, ok := reservedColumns[key]
	return attr, ok
}

func (didDescriptor) KeyValueTable() (compile.KVTable, bool) {
	return compile.KVTable{
		Table:       "did_meta_kv",
		ScopeColumn: "scope",
		NameColumn:  "name",
		KeyColumn:   "key",
		ValueColumn: "value",
	}, true
}

// ReservedKeyTypes returns the declared ast.ValueKind for every reserved
// key, for wiring into filter.Options.ReservedKeys without duplicating the
// key/type table a second time.
func ReservedKeyTypes() map[string]ast.ValueKind {
	out := make(map[string]ast.ValueKind, len(reservedColumns))
	for k, attr := range reservedColumns {
		out[k] = attr.Kind
	}
	return out
}
