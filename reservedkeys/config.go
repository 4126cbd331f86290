// Package reservedkeys loads the reserved-key type table from YAML
// configuration (spec §5: "the only shared data is the declared set of
// reserved keys and their types, which is read-only configuration loaded
// once at process start").
package reservedkeys

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"

	"github.com/Thysk/rucio/filter/ast"
	"github.com/Thysk/rucio/entity"
)

// fileFormat mirrors the on-disk YAML shape:
//
//	keys:
//	  name: string
//	  length: int
//	  created_at: datetime
type fileFormat struct {
	Keys map[string]string `yaml:"keys"`
}

var kindNames = map[string]ast.ValueKind{
	"string":   ast.KindString,
	"int":      ast.KindInt,
	"float":    ast.KindFloat,
	"bool":     ast.KindBool,
	"datetime": ast.KindDateTime,
}

// Default returns the built-in reserved-key table for the DID entity
// (entity.ReservedKeyTypes), used whenever no override file is configured.
func Default() map[string]ast.ValueKind {
	return entity.ReservedKeyTypes()
}

// LoadConfig reads path as YAML and returns its reserved-key table,
// starting from Default() and overriding/adding entries named in the
// file. An unknown type name is a configuration error.
func LoadConfig(path string) (map[string]ast.ValueKind, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var ff fileFormat
	if err := yaml.Unmarshal(data, &ff); err != nil {
		return nil, fmt.Errorf("reservedkeys: parsing %s: %w", path, err)
	}

	out := Default()
	for key, typeName := range ff.Keys {
		kind, ok := kindNames[typeName]
		if !ok {
			return nil, fmt.Errorf("reservedkeys: %s: key %q has unknown type %q", path, key, typeName)
		}
		out[key] = kind
	}
	return out, nil
}
