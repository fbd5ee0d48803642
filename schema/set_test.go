package schema_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hedtools/hedval/errors"
	"github.com/hedtools/hedval/internal/schematest"
	"github.com/hedtools/hedval/schema"
)

func TestResolveShortForm(t *testing.T) {
	set := schematest.LoadSet(t)

	res, err := set.ResolveTag("Red")
	require.NoError(t, err)
	assert.Equal(t, "Property/Color/Red", res.Node.Path())
	assert.Empty(t, res.Remainder)
	assert.False(t, res.CaseMismatch)
}

func TestResolveLongAndPartialForm(t *testing.T) {
	set := schematest.LoadSet(t)

	tests := []struct {
		text      string
		wantPath  string
		remainder string
	}{
		{"Property/Color/Red", "Property/Color/Red", ""},
		{"Color/Red", "Property/Color/Red", ""},
		{"Item/Object/Vehicle/Car", "Item/Object/Vehicle/Car", ""},
		{"Delay/0.5", "Property/Delay", "0.5"},
		{"Object/Boat", "Item/Object", "Boat"},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			res, err := set.ResolveTag(tt.text)
			require.NoError(t, err)
			assert.Equal(t, tt.wantPath, res.Node.Path())
			assert.Equal(t, tt.remainder, res.Remainder)
		})
	}
}

func TestResolveCaseMismatch(t *testing.T) {
	set := schematest.LoadSet(t)

	res, err := set.ResolveTag("red")
	require.NoError(t, err)
	assert.True(t, res.CaseMismatch)

	res, err = set.ResolveTag("color/RED")
	require.NoError(t, err)
	assert.True(t, res.CaseMismatch)
}

func TestResolveUnknown(t *testing.T) {
	set := schematest.LoadSet(t)

	_, err := set.ResolveTag("Banana")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrTagUnknown))
}

func TestFormConversionRoundTrip(t *testing.T) {
	set := schematest.LoadSet(t)

	// short -> long -> short must return the original short form.
	for _, short := range []string{"Red", "Car", "Delay/0.5", "Sensory-event"} {
		long, err := set.ShortToLong(short)
		require.NoError(t, err)
		back, err := set.LongToShort(long)
		require.NoError(t, err)
		assert.Equal(t, short, back)
	}

	long, err := set.ShortToLong("Delay/1.5e-3")
	require.NoError(t, err)
	assert.Equal(t, "Property/Delay/1.5e-3", long)
}

func TestLibraryPrefixResolution(t *testing.T) {
	set, err := schema.NewSet(schematest.Load(t),
		schema.WithLibrary("sc", schematest.LoadLibrary(t)))
	require.NoError(t, err)

	res, err := set.ResolveTag("sc:Photic")
	require.NoError(t, err)
	assert.Equal(t, "Modulator/Photic", res.Node.Path())
	assert.Equal(t, "sc", res.Prefix)

	long, err := set.ShortToLong("sc:Photic")
	require.NoError(t, err)
	assert.Equal(t, "sc:Modulator/Photic", long)

	// Bare library terms are not resolvable without the prefix by default.
	_, err = set.ResolveTag("Photic")
	assert.True(t, errors.Is(err, errors.ErrTagUnknown))

	// Unknown prefix.
	_, err = set.ResolveTag("xx:Photic")
	assert.True(t, errors.Is(err, errors.ErrTagUnknown))
}

func TestBareLibraryLookup(t *testing.T) {
	set, err := schema.NewSet(schematest.Load(t),
		schema.WithLibrary("sc", schematest.LoadLibrary(t)),
		schema.WithBareLibraryLookup())
	require.NoError(t, err)

	// Unique across namespaces: resolves without the prefix, against the
	// library that owns the term.
	res, err := set.ResolveTag("Photic")
	require.NoError(t, err)
	assert.Equal(t, "Modulator/Photic", res.Node.Path())
	assert.Empty(t, res.Prefix, "prefix reflects the input form, not the owning schema")
}

func TestBareLibraryLookupAmbiguity(t *testing.T) {
	// Two libraries declaring the same short name make the bare term
	// ambiguous when bare lookup is enabled.
	lib := schematest.LoadLibrary(t)
	set, err := schema.NewSet(schematest.Load(t),
		schema.WithLibrary("a", lib),
		schema.WithLibrary("b", lib),
		schema.WithBareLibraryLookup())
	require.NoError(t, err)

	_, err = set.ResolveTag("Photic")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrTagAmbiguous))
}

func TestPartneredMerge(t *testing.T) {
	set, err := schema.NewSet(schematest.Load(t),
		schema.WithPartnered(schematest.LoadPartnered(t)))
	require.NoError(t, err)

	// Partnered nodes live in the unprefixed namespace.
	res, err := set.ResolveTag("Word")
	require.NoError(t, err)
	assert.Equal(t, "Language-item/Word", res.Node.Path())
	assert.Empty(t, res.Prefix)
}

func TestPartneredCollisionRejected(t *testing.T) {
	collider, err := schema.LoadBytes([]byte(`{
	  "version": "1.0.0",
	  "library": "clash",
	  "withStandard": "8.3.0",
	  "nodes": [{"name": "Red"}]
	}`), schema.FormatJSON)
	require.NoError(t, err)

	_, err = schema.NewSet(schematest.Load(t), schema.WithPartnered(collider))
	require.Error(t, err)
	assert.True(t, errors.IsSchemaError(err))
	assert.Contains(t, err.Error(), "collision")
}

func TestPartneredVersionMismatchRejected(t *testing.T) {
	partner, err := schema.LoadBytes([]byte(`{
	  "version": "1.0.0",
	  "library": "old",
	  "withStandard": "7.2.0",
	  "nodes": [{"name": "Legacy-item"}]
	}`), schema.FormatJSON)
	require.NoError(t, err)

	_, err = schema.NewSet(schematest.Load(t), schema.WithPartnered(partner))
	require.Error(t, err)
	assert.True(t, errors.IsSchemaError(err))
}

func TestPartneredDoubleMergeRejected(t *testing.T) {
	_, err := schema.NewSet(schematest.Load(t),
		schema.WithPartnered(schematest.LoadPartnered(t)),
		schema.WithPartnered(schematest.LoadPartnered(t)))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "merged twice")
}

func TestDuplicateLibraryPrefixRejected(t *testing.T) {
	lib := schematest.LoadLibrary(t)
	_, err := schema.NewSet(schematest.Load(t),
		schema.WithLibrary("sc", lib),
		schema.WithLibrary("sc", lib))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "registered twice")
}
