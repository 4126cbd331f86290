package filter

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v2"

	"github.com/Thysk/rucio/filter/ast"
)

// scenarioFile mirrors testdata/filter_cases.yml, the scenario table
// grounded on the teacher's cmd/*/tests*.yml + parser_test.go readTests
// pattern (a flat YAML case list instead of per-test Go literals).
type scenarioFile struct {
	Cases []scenario `yaml:"cases"`
}

type scenario struct {
	Name               string            `yaml:"name"`
	Source             string            `yaml:"source"`
	ReservedKeys       map[string]string `yaml:"reserved_keys"`
	WantGroupCount     int               `yaml:"want_group_count"`
	WantConditionCount int               `yaml:"want_condition_count"`
	WantErrorKind      string            `yaml:"want_error_kind"`
	WantEvaluate       *bool             `yaml:"want_evaluate"`
}

var scenarioKinds = map[string]ast.ValueKind{
	"string":   ast.KindString,
	"int":      ast.KindInt,
	"float":    ast.KindFloat,
	"bool":     ast.KindBool,
	"datetime": ast.KindDateTime,
}

func loadScenarios(t *testing.T) []scenario {
	t.Helper()
	data, err := os.ReadFile("../testdata/filter_cases.yml")
	require.NoError(t, err)
	var f scenarioFile
	require.NoError(t, yaml.Unmarshal(data, &f))
	return f.Cases
}

func TestFilterScenarios(t *testing.T) {
	for _, sc := range loadScenarios(t) {
		sc := sc
		t.Run(sc.Name, func(t *testing.T) {
			reserved := make(map[string]ast.ValueKind, len(sc.ReservedKeys))
			for k, v := range sc.ReservedKeys {
				reserved[k] = scenarioKinds[v]
			}

			eng, err := New(sc.Source, Options{ReservedKeys: reserved, StrictCoerce: true})

			if sc.WantErrorKind != "" {
				require.Error(t, err)
				ferr, ok := err.(*ast.Error)
				require.True(t, ok)
				assert.Equal(t, sc.WantErrorKind, ferr.Kind.String())
				return
			}
			require.NoError(t, err)

			if sc.WantGroupCount > 0 {
				assert.Len(t, eng.Filters(), sc.WantGroupCount)
			}
			if sc.WantConditionCount > 0 {
				assert.Len(t, eng.Filters()[0], sc.WantConditionCount)
			}
			if sc.WantEvaluate != nil {
				ok, err := eng.Evaluate()
				require.NoError(t, err)
				assert.Equal(t, *sc.WantEvaluate, ok)
			}
		})
	}
}
