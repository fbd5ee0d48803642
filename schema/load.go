package schema

import (
	"io"
	"regexp"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	"github.com/hedtools/hedval/errors"
)

// Format selects the materialized schema representation.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// fileModel is the materialized schema representation produced by the
// external schema-loading collaborator. Source formats further upstream
// (mediawiki, XML, TSV) are its concern, not ours.
type fileModel struct {
	Version       string             `json:"version" yaml:"version"`
	Library       string             `json:"library,omitempty" yaml:"library,omitempty"`
	WithStandard  string             `json:"withStandard,omitempty" yaml:"withStandard,omitempty"`
	Nodes         []fileNode         `json:"nodes" yaml:"nodes"`
	UnitClasses   []fileUnitClass    `json:"unitClasses,omitempty" yaml:"unitClasses,omitempty"`
	ValueClasses  []fileValueClass   `json:"valueClasses,omitempty" yaml:"valueClasses,omitempty"`
	UnitModifiers []fileUnitModifier `json:"unitModifiers,omitempty" yaml:"unitModifiers,omitempty"`
}

type fileNode struct {
	Name       string            `json:"name" yaml:"name"`
	Attributes map[string]string `json:"attributes,omitempty" yaml:"attributes,omitempty"`
	UnitClass  string            `json:"unitClass,omitempty" yaml:"unitClass,omitempty"`
	ValueClass string            `json:"valueClass,omitempty" yaml:"valueClass,omitempty"`
	Children   []fileNode        `json:"children,omitempty" yaml:"children,omitempty"`
}

type fileUnitClass struct {
	Name  string     `json:"name" yaml:"name"`
	Units []fileUnit `json:"units" yaml:"units"`
}

type fileUnit struct {
	Symbol   string `json:"symbol" yaml:"symbol"`
	SIPrefix bool   `json:"siPrefix,omitempty" yaml:"siPrefix,omitempty"`
	Default  bool   `json:"default,omitempty" yaml:"default,omitempty"`
}

type fileValueClass struct {
	Name              string `json:"name" yaml:"name"`
	Pattern           string `json:"pattern,omitempty" yaml:"pattern,omitempty"`
	AllowUnitOmission bool   `json:"allowUnitOmission,omitempty" yaml:"allowUnitOmission,omitempty"`
}

type fileUnitModifier struct {
	Symbol string `json:"symbol" yaml:"symbol"`
	Name   string `json:"name,omitempty" yaml:"name,omitempty"`
}

// NumericClass is the builtin value class registered when a schema does
// not declare its own numeric grammar.
const NumericClass = "numericClass"

// TextClass is the builtin catch-all value class.
const TextClass = "textClass"

// Load reads a materialized schema in the given format and freezes it
// into a queryable Model. Malformed structure is a fatal schema error;
// nothing can be validated against a model that failed to load.
func Load(r io.Reader, format Format) (*Model, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, "reading schema source")
	}
	return LoadBytes(raw, format)
}

// LoadBytes is Load over an in-memory representation.
func LoadBytes(raw []byte, format Format) (*Model, error) {
	var fm fileModel
	switch format {
	case FormatJSON:
		if err := json.Unmarshal(raw, &fm); err != nil {
			return nil, errors.Wrap(errors.ErrSchemaInvalid, err.Error())
		}
	case FormatYAML:
		if err := yaml.Unmarshal(raw, &fm); err != nil {
			return nil, errors.Wrap(errors.ErrSchemaInvalid, err.Error())
		}
	default:
		return nil, errors.Newf("unknown schema format %q", format)
	}
	return build(&fm)
}

// build freezes the file representation into a Model, checking the
// structural invariants that make the model usable.
func build(fm *fileModel) (*Model, error) {
	version, err := semver.NewVersion(fm.Version)
	if err != nil {
		return nil, errors.NewSchemaError("bad schema version %q: %v", fm.Version, err)
	}
	if fm.WithStandard != "" {
		if fm.Library == "" {
			return nil, errors.NewSchemaError("withStandard declared on a non-library schema")
		}
		if _, err := semver.NewVersion(fm.WithStandard); err != nil {
			return nil, errors.NewSchemaError("bad withStandard version %q: %v", fm.WithStandard, err)
		}
	}

	m := &Model{
		version:      version,
		library:      fm.Library,
		withStandard: fm.WithStandard,
		short:        map[string]*Node{},
		paths:        map[string]*Node{},
		unitClasses:  map[string]*UnitClass{},
		valueClasses: map[string]*ValueClass{},
		modifiers:    map[string]*UnitModifier{},
	}

	for i := range fm.UnitModifiers {
		um := fm.UnitModifiers[i]
		if um.Symbol == "" {
			return nil, errors.NewSchemaError("unit modifier with empty symbol")
		}
		m.modifiers[um.Symbol] = &UnitModifier{Symbol: um.Symbol, Name: um.Name}
	}

	for _, fuc := range fm.UnitClasses {
		uc, err := buildUnitClass(fuc)
		if err != nil {
			return nil, err
		}
		key := strings.ToLower(uc.name)
		if _, dup := m.unitClasses[key]; dup {
			return nil, errors.NewSchemaError("duplicate unit class %q", uc.name)
		}
		m.unitClasses[key] = uc
	}

	for _, fvc := range fm.ValueClasses {
		vc, err := buildValueClass(fvc)
		if err != nil {
			return nil, err
		}
		key := strings.ToLower(vc.name)
		if _, dup := m.valueClasses[key]; dup {
			return nil, errors.NewSchemaError("duplicate value class %q", vc.name)
		}
		m.valueClasses[key] = vc
	}
	registerBuiltinValueClasses(m)

	for i := range fm.Nodes {
		root, err := m.buildNode(&fm.Nodes[i], nil)
		if err != nil {
			return nil, err
		}
		m.roots = append(m.roots, root)
	}
	return m, nil
}

func buildUnitClass(fuc fileUnitClass) (*UnitClass, error) {
	if fuc.Name == "" {
		return nil, errors.NewSchemaError("unit class with empty name")
	}
	uc := &UnitClass{name: fuc.Name}
	defaults := 0
	for _, fu := range fuc.Units {
		if fu.Symbol == "" {
			return nil, errors.NewSchemaError("unit class %q has a unit with empty symbol", fuc.Name)
		}
		if fu.Default {
			defaults++
		}
		uc.units = append(uc.units, UnitEntry{
			Symbol:          fu.Symbol,
			SIPrefixAllowed: fu.SIPrefix,
			Default:         fu.Default,
		})
	}
	if defaults != 1 {
		return nil, errors.NewSchemaError("unit class %q must declare exactly one default unit, has %d", fuc.Name, defaults)
	}
	return uc, nil
}

func buildValueClass(fvc fileValueClass) (*ValueClass, error) {
	if fvc.Name == "" {
		return nil, errors.NewSchemaError("value class with empty name")
	}
	vc := &ValueClass{name: fvc.Name, allowUnitOmission: fvc.AllowUnitOmission}
	if fvc.Pattern != "" {
		pattern, err := regexp.Compile(fvc.Pattern)
		if err != nil {
			return nil, errors.NewSchemaError("value class %q has a bad pattern: %v", fvc.Name, err)
		}
		vc.pattern = pattern
	}
	return vc, nil
}

// registerBuiltinValueClasses fills in the numeric and text grammars
// when the schema does not declare them itself.
func registerBuiltinValueClasses(m *Model) {
	if _, ok := m.valueClasses[strings.ToLower(NumericClass)]; !ok {
		m.valueClasses[strings.ToLower(NumericClass)] = &ValueClass{
			name:              NumericClass,
			pattern:           numericPattern,
			allowUnitOmission: true,
		}
	}
	if _, ok := m.valueClasses[strings.ToLower(TextClass)]; !ok {
		m.valueClasses[strings.ToLower(TextClass)] = &ValueClass{
			name:              TextClass,
			allowUnitOmission: true,
		}
	}
}

func (m *Model) buildNode(fn *fileNode, parent *Node) (*Node, error) {
	if fn.Name == "" {
		return nil, errors.NewSchemaError("node with empty name")
	}
	if strings.ContainsAny(fn.Name, "/,()") {
		return nil, errors.NewSchemaError("node name %q contains a structural delimiter", fn.Name)
	}

	n := &Node{
		name:       fn.Name,
		parent:     parent,
		attributes: map[string]string{},
		unitClass:  fn.UnitClass,
		valueClass: fn.ValueClass,
	}
	if parent == nil {
		n.path = fn.Name
	} else {
		n.path = parent.path + "/" + fn.Name
	}
	for k, v := range fn.Attributes {
		n.attributes[k] = v
	}

	shortKey := strings.ToLower(n.name)
	if prev, dup := m.short[shortKey]; dup {
		return nil, errors.NewSchemaError("short name %q is not unique: %s and %s", n.name, prev.path, n.path)
	}
	m.short[shortKey] = n
	m.paths[strings.ToLower(n.path)] = n
	if n.HasAttribute(AttrRequired) {
		m.required = append(m.required, n)
	}

	if n.unitClass != "" && m.UnitClass(n.unitClass) == nil {
		return nil, errors.NewSchemaError("node %s references unknown unit class %q", n.path, n.unitClass)
	}
	if n.valueClass != "" && m.ValueClass(n.valueClass) == nil {
		return nil, errors.NewSchemaError("node %s references unknown value class %q", n.path, n.valueClass)
	}
	if (n.unitClass != "" || n.valueClass != "") && !n.TakesValue() {
		return nil, errors.NewSchemaError("node %s declares unit or value class but not %s", n.path, AttrTakesValue)
	}

	for i := range fn.Children {
		child, err := m.buildNode(&fn.Children[i], n)
		if err != nil {
			return nil, err
		}
		n.children = append(n.children, child)
	}
	return n, nil
}
