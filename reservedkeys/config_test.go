package reservedkeys

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Thysk/rucio/filter/ast"
)

func TestDefaultMatchesEntityTable(t *testing.T) {
	types := Default()
	assert.Equal(t, ast.KindInt, types["run_number"])
	assert.Equal(t, ast.KindString, types["project"])
}

func TestLoadConfigOverridesAndAddsKeys(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "reserved.yml")
	require.NoError(t, os.WriteFile(path, []byte("keys:\n  project: int\n  custom_key: bool\n"), 0o644))

	types, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, ast.KindInt, types["project"])
	assert.Equal(t, ast.KindBool, types["custom_key"])
	assert.Equal(t, ast.KindInt, types["run_number"])
}

func TestLoadConfigRejectsUnknownType(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "reserved.yml")
	require.NoError(t, os.WriteFile(path, []byte("keys:\n  custom_key: weird\n"), 0o644))

	_, err := LoadConfig(path)
	assert.Error(t, err)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yml"))
	assert.Error(t, err)
}

func TestDefaultReturnsFreshMapEachCall(t *testing.T) {
	a := Default()
	a["project"] = ast.KindBool
	b := Default()
	assert.Equal(t, ast.KindString, b["project"])
}
