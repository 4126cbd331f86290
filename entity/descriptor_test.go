package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Thysk/rucio/filter/ast"
)

func TestDIDsLookupReservedKey(t *testing.T) {
	attr, ok := DIDs.Lookup("run_number")
	assert.True(t, ok)
	assert.Equal(t, "run_number", attr.Column)
	assert.Equal(t, ast.KindInt, attr.Kind)
}

func TestDIDsLookupNonReservedKey(t *testing.T) {
	_, ok := DIDs.Lookup("some_custom_key")
	assert.False(t, ok)
}

func TestDIDsKeyValueTableFallback(t *testing.T) {
	kv, ok := DIDs.KeyValueTable()
	assert.True(t, ok)
	assert.Equal(t, "did_meta_kv", kv.Table)
}

func TestReservedKeyTypesMatchesLookup(t *testing.T) {
	types := ReservedKeyTypes()
	attr, ok := DIDs.Lookup("project")
	assert.True(t, ok)
	assert.Equal(t, attr.Kind, types["project"])
}

func TestDIDsNameAndScopeAreNotNullable(t *testing.T) {
	assert.False(t, DIDs.ScopeAttribute().Nullable)
	assert.False(t, DIDs.NameAttribute().Nullable)
}
