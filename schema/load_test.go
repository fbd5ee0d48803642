package schema_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hedtools/hedval/errors"
	"github.com/hedtools/hedval/internal/schematest"
	"github.com/hedtools/hedval/schema"
)

func TestLoadStandard(t *testing.T) {
	m := schematest.Load(t)

	assert.Equal(t, "8.3.0", m.Version().String())
	assert.False(t, m.IsLibrary())
	assert.False(t, m.IsPartnered())

	red := m.Node("Red")
	require.NotNil(t, red)
	assert.Equal(t, "Property/Color/Red", red.Path())
	assert.Equal(t, "Color", red.Parent().Name())
	assert.True(t, red.IsLeaf())

	delay := m.Node("Delay")
	require.NotNil(t, delay)
	assert.True(t, delay.TakesValue())
	assert.Equal(t, "time", delay.UnitClassName())
	assert.Equal(t, "numericClass", delay.ValueClassName())
}

func TestLoadYAML(t *testing.T) {
	src := `
version: 8.0.0
nodes:
  - name: Event
    children:
      - name: Sensory-event
`
	m, err := schema.LoadBytes([]byte(src), schema.FormatYAML)
	require.NoError(t, err)
	assert.NotNil(t, m.Node("Sensory-event"))
}

func TestLoadRejectsDuplicateShortNames(t *testing.T) {
	src := `{
	  "version": "8.0.0",
	  "nodes": [
	    {"name": "Event", "children": [{"name": "Red"}]},
	    {"name": "Property", "children": [{"name": "red"}]}
	  ]
	}`
	_, err := schema.LoadBytes([]byte(src), schema.FormatJSON)
	require.Error(t, err)
	assert.True(t, errors.IsSchemaError(err))
	assert.Contains(t, err.Error(), "not unique")
}

func TestLoadRejectsDanglingUnitClass(t *testing.T) {
	src := `{
	  "version": "8.0.0",
	  "nodes": [
	    {"name": "Delay", "attributes": {"takesValue": ""}, "unitClass": "volume"}
	  ]
	}`
	_, err := schema.LoadBytes([]byte(src), schema.FormatJSON)
	require.Error(t, err)
	assert.True(t, errors.IsSchemaError(err))
}

func TestLoadRejectsBadDefaultUnitCount(t *testing.T) {
	tests := []struct {
		name  string
		units string
	}{
		{"no default", `[{"symbol": "s"}, {"symbol": "h"}]`},
		{"two defaults", `[{"symbol": "s", "default": true}, {"symbol": "h", "default": true}]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := `{
			  "version": "8.0.0",
			  "nodes": [],
			  "unitClasses": [{"name": "time", "units": ` + tt.units + `}]
			}`
			_, err := schema.LoadBytes([]byte(src), schema.FormatJSON)
			require.Error(t, err)
			assert.Contains(t, err.Error(), "exactly one default unit")
		})
	}
}

func TestLoadRejectsBadVersion(t *testing.T) {
	_, err := schema.LoadBytes([]byte(`{"version": "not-a-version", "nodes": []}`), schema.FormatJSON)
	require.Error(t, err)
	assert.True(t, errors.IsSchemaError(err))
}

func TestLoadRejectsDelimiterInNodeName(t *testing.T) {
	src := `{"version": "8.0.0", "nodes": [{"name": "Bad,Name"}]}`
	_, err := schema.LoadBytes([]byte(src), schema.FormatJSON)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "structural delimiter")
}

func TestBuiltinValueClasses(t *testing.T) {
	m := schematest.Load(t)

	numeric := m.ValueClass(schema.NumericClass)
	require.NotNil(t, numeric)
	assert.True(t, numeric.Match("3"))
	assert.True(t, numeric.Match("-0.5"))
	assert.True(t, numeric.Match("1.5e-3"))
	assert.True(t, numeric.Match("2E+10"))
	assert.False(t, numeric.Match("abc"))
	assert.False(t, numeric.Match("1.5e"))
	assert.True(t, numeric.AllowsUnitOmission())

	text := m.ValueClass(schema.TextClass)
	require.NotNil(t, text)
	assert.True(t, text.Match("anything goes"))
}

func TestUnitClassMatch(t *testing.T) {
	m := schematest.Load(t)
	tc := m.UnitClass("time")
	require.NotNil(t, tc)
	assert.Equal(t, "s", tc.DefaultUnit())

	mods := map[string]*schema.UnitModifier{}
	for _, sym := range []string{"k", "m", "u", "n", "M"} {
		mods[sym] = m.UnitModifier(sym)
	}

	assert.True(t, tc.Match("s", mods))
	assert.True(t, tc.Match("ms", mods), "SI prefix on prefix-allowed unit")
	assert.True(t, tc.Match("h", mods))
	assert.False(t, tc.Match("kg", mods), "wrong class")
	assert.False(t, tc.Match("kh", mods), "h does not allow SI prefixes")
	assert.False(t, tc.Match("S", mods), "unit symbols are case-sensitive")
}

func TestExtensionAllowedInherits(t *testing.T) {
	m := schematest.Load(t)

	car := m.Node("Car")
	require.NotNil(t, car)
	assert.False(t, car.HasAttribute(schema.AttrExtensionAllowed))
	assert.True(t, car.ExtensionAllowed(), "inherited from Object")

	red := m.Node("Red")
	assert.False(t, red.ExtensionAllowed())
}

func TestLoadFromReader(t *testing.T) {
	m, err := schema.Load(strings.NewReader(schematest.StandardJSON), schema.FormatJSON)
	require.NoError(t, err)
	assert.Greater(t, m.NodeCount(), 10)
}
