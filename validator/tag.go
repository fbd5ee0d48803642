package validator

import (
	"strings"
	"unicode"

	"github.com/hedtools/hedval/definition"
	"github.com/hedtools/hedval/errors"
	"github.com/hedtools/hedval/issues"
	"github.com/hedtools/hedval/parser"
	"github.com/hedtools/hedval/schema"
)

// checkTag validates one tag against its resolution: existence,
// extension rules, value and unit grammar, and case style. Reserved
// terms skip value checks; the definition and temporal subsystems own
// their remainder semantics.
func (v *Validator) checkTag(tag *parser.Tag, r resolution, inTemplate bool, at issues.Context) issues.Issues {
	if r.err != nil {
		if errors.Is(r.err, errors.ErrTagAmbiguous) {
			return issues.Issues{issues.New(issues.CodeTagInvalid,
				"tag %q is ambiguous across schemas, qualify it with a library prefix", tag.Text).At(at)}
		}
		return issues.Issues{issues.New(issues.CodeTagInvalid, "unknown tag %q", tag.Text).At(at)}
	}

	res := r.res
	node := res.Node

	var iss issues.Issues
	if v.checkWarnings && res.CaseMismatch {
		iss = append(iss, issues.Warning(issues.CodeStyleWarning,
			"tag %q does not match the schema casing of %q", tag.Text, node.Path()).At(at))
	}
	if node.Reserved() {
		return iss
	}

	switch {
	case res.Remainder == "":
		if node.TakesValue() {
			iss = append(iss, issues.New(issues.CodeValueRequired, "tag %q requires a value", tag.Text).At(at))
		} else if node.HasAttribute(schema.AttrRequireChild) {
			iss = append(iss, issues.New(issues.CodeValueRequired, "tag %q requires a child term", tag.Text).At(at))
		}
	case node.TakesValue():
		iss = append(iss, v.checkValue(node, res.Model, res.Remainder, inTemplate, at)...)
	case node.ExtensionAllowed():
		iss = append(iss, v.checkExtension(res, at)...)
	default:
		iss = append(iss, issues.New(issues.CodeTagExtensionInvalid,
			"tag %q extends %q, which does not allow extension", tag.Text, node.Path()).At(at))
	}
	return iss
}

// checkValue validates the value (and optional unit token) of a
// value-taking node. The unit token is split off only when the node
// declares a unit class; values without one keep embedded spaces.
func (v *Validator) checkValue(node *schema.Node, model *schema.Model, value string, inTemplate bool, at issues.Context) issues.Issues {
	if value == definition.Placeholder {
		if inTemplate {
			return nil
		}
		return issues.Issues{issues.New(issues.CodeCharacterInvalid,
			"placeholder %q outside a definition template", definition.Placeholder).At(at)}
	}

	unitClass := model.UnitClass(node.UnitClassName())
	raw, unit := value, ""
	if unitClass != nil {
		if i := strings.IndexByte(value, ' '); i >= 0 {
			raw, unit = value[:i], strings.TrimSpace(value[i+1:])
		}
	}

	className := node.ValueClassName()
	if className == "" {
		if unitClass != nil {
			className = schema.NumericClass
		} else {
			className = schema.TextClass
		}
	}

	var iss issues.Issues
	class := model.ValueClass(className)
	if class != nil && !class.Match(raw) {
		iss = append(iss, issues.New(issues.CodeValueInvalid,
			"value %q does not match value class %q", raw, class.Name()).At(at))
	}

	if unitClass != nil {
		switch {
		case unit == "":
			if class == nil || !class.AllowsUnitOmission() {
				iss = append(iss, issues.New(issues.CodeUnitsInvalid,
					"value %q is missing a unit of class %q", raw, unitClass.Name()).At(at))
			}
		case !unitClass.Match(unit, model.Modifiers()):
			iss = append(iss, issues.New(issues.CodeUnitsInvalid,
				"unit %q is not part of unit class %q", unit, unitClass.Name()).At(at))
		}
	}
	return iss
}

// checkExtension validates the extension suffix of an
// extension-allowed node: segment characters and collisions with
// existing schema terms.
func (v *Validator) checkExtension(res *schema.Resolution, at issues.Context) issues.Issues {
	var iss issues.Issues
	for _, seg := range strings.Split(res.Remainder, "/") {
		seg = strings.TrimSpace(seg)
		if seg == "" {
			iss = append(iss, issues.New(issues.CodeTagExtensionInvalid,
				"extension %q has an empty segment", res.Remainder).At(at))
			continue
		}
		if !validTerm(seg) {
			iss = append(iss, issues.New(issues.CodeTagExtensionInvalid,
				"extension %q contains disallowed characters", seg).At(at))
		}
		if n := res.Model.Node(seg); n != nil {
			iss = append(iss, issues.New(issues.CodeTagExtensionInvalid,
				"extension %q collides with schema term %q", seg, n.Path()).At(at))
		}
	}
	return iss
}

// validTerm reports whether s is a legal vocabulary term: letters,
// digits, hyphens, underscores and interior spaces.
func validTerm(s string) bool {
	for _, r := range s {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r):
		case r == '-', r == '_', r == ' ':
		default:
			return false
		}
	}
	return true
}
