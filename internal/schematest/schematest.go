// Package schematest provides the canonical schema fixtures shared by
// the validation test suites.
package schematest

import (
	"testing"

	"github.com/hedtools/hedval/schema"
)

// StandardJSON is a small standard-schema fixture covering the node
// shapes the validators care about: plain terms, value-taking leaves
// with unit classes, extension-allowed subtrees, and the reserved
// structural tags.
const StandardJSON = `{
  "version": "8.3.0",
  "nodes": [
    {
      "name": "Event",
      "children": [
        {"name": "Sensory-event"},
        {"name": "Agent-action"}
      ]
    },
    {
      "name": "Item",
      "children": [
        {
          "name": "Object",
          "attributes": {"extensionAllowed": ""},
          "children": [
            {"name": "Building"},
            {"name": "Vehicle", "children": [{"name": "Car"}]}
          ]
        }
      ]
    },
    {
      "name": "Property",
      "children": [
        {
          "name": "Color",
          "children": [
            {"name": "Red"},
            {"name": "Green"},
            {"name": "Blue"}
          ]
        },
        {
          "name": "Delay",
          "attributes": {"takesValue": ""},
          "unitClass": "time",
          "valueClass": "numericClass"
        },
        {
          "name": "Duration",
          "attributes": {"takesValue": "", "unique": ""},
          "unitClass": "time",
          "valueClass": "numericClass"
        },
        {
          "name": "Weight",
          "attributes": {"takesValue": ""},
          "unitClass": "weight",
          "valueClass": "numericClass"
        },
        {
          "name": "Label",
          "attributes": {"takesValue": ""}
        }
      ]
    },
    {"name": "Definition", "attributes": {"takesValue": "", "reserved": "", "topLevelTagGroup": ""}},
    {"name": "Def", "attributes": {"takesValue": "", "reserved": ""}},
    {"name": "Def-expand", "attributes": {"takesValue": "", "reserved": "", "tagGroup": ""}},
    {"name": "Onset", "attributes": {"reserved": "", "topLevelTagGroup": ""}},
    {"name": "Offset", "attributes": {"reserved": "", "topLevelTagGroup": ""}},
    {"name": "Inset", "attributes": {"reserved": "", "topLevelTagGroup": ""}}
  ],
  "unitClasses": [
    {
      "name": "time",
      "units": [
        {"symbol": "s", "siPrefix": true, "default": true},
        {"symbol": "minute"},
        {"symbol": "h"}
      ]
    },
    {
      "name": "weight",
      "units": [
        {"symbol": "g", "siPrefix": true, "default": true},
        {"symbol": "lb"}
      ]
    }
  ],
  "unitModifiers": [
    {"symbol": "k", "name": "kilo"},
    {"symbol": "m", "name": "milli"},
    {"symbol": "u", "name": "micro"},
    {"symbol": "n", "name": "nano"},
    {"symbol": "M", "name": "mega"}
  ]
}`

// LibraryJSON is a prefixed library fixture.
const LibraryJSON = `{
  "version": "1.1.0",
  "library": "score",
  "nodes": [
    {
      "name": "Modulator",
      "children": [{"name": "Photic"}]
    },
    {"name": "Red-flag"}
  ]
}`

// PartneredJSON is a library partnered with the 8.x standard schema; it
// merges into the unprefixed namespace.
const PartneredJSON = `{
  "version": "2.0.0",
  "library": "lang",
  "withStandard": "8.3.0",
  "nodes": [
    {"name": "Language-item", "children": [{"name": "Word"}]}
  ]
}`

// Load builds the standard fixture model.
func Load(tb testing.TB) *schema.Model {
	tb.Helper()
	m, err := schema.LoadBytes([]byte(StandardJSON), schema.FormatJSON)
	if err != nil {
		tb.Fatalf("loading standard fixture: %v", err)
	}
	return m
}

// LoadSet builds a schema set over the standard fixture alone.
func LoadSet(tb testing.TB) *schema.Set {
	tb.Helper()
	s, err := schema.NewSet(Load(tb))
	if err != nil {
		tb.Fatalf("building fixture set: %v", err)
	}
	return s
}

// LoadLibrary builds the prefixed library fixture model.
func LoadLibrary(tb testing.TB) *schema.Model {
	tb.Helper()
	m, err := schema.LoadBytes([]byte(LibraryJSON), schema.FormatJSON)
	if err != nil {
		tb.Fatalf("loading library fixture: %v", err)
	}
	return m
}

// LoadPartnered builds the partnered library fixture model.
func LoadPartnered(tb testing.TB) *schema.Model {
	tb.Helper()
	m, err := schema.LoadBytes([]byte(PartneredJSON), schema.FormatJSON)
	if err != nil {
		tb.Fatalf("loading partnered fixture: %v", err)
	}
	return m
}
