package schema

import (
	"regexp"
	"strings"
)

// UnitEntry is one unit symbol within a unit class.
type UnitEntry struct {
	Symbol          string
	SIPrefixAllowed bool
	Default         bool
}

// UnitClass is a named set of units. Exactly one entry is the default;
// load rejects classes that violate this.
type UnitClass struct {
	name  string
	units []UnitEntry
}

// Name returns the class name.
func (uc *UnitClass) Name() string { return uc.name }

// Units returns the unit entries in declaration order.
func (uc *UnitClass) Units() []UnitEntry { return uc.units }

// DefaultUnit returns the default unit symbol.
func (uc *UnitClass) DefaultUnit() string {
	for _, u := range uc.units {
		if u.Default {
			return u.Symbol
		}
	}
	return ""
}

// Match reports whether token names a unit of this class, either an
// exact symbol or a legal SI prefix followed by a prefix-allowing
// symbol. Unit symbols are case-sensitive ("mS" is not "ms").
func (uc *UnitClass) Match(token string, modifiers map[string]*UnitModifier) bool {
	for _, u := range uc.units {
		if token == u.Symbol {
			return true
		}
		if !u.SIPrefixAllowed {
			continue
		}
		if rest, ok := strings.CutSuffix(token, u.Symbol); ok && rest != "" {
			if _, known := modifiers[rest]; known {
				return true
			}
		}
	}
	return false
}

// UnitModifier is one legal SI prefix (k, m, u, M, ...).
type UnitModifier struct {
	Symbol string
	Name   string
}

// numericPattern is the default grammar for numeric value classes,
// covering integers, decimals, and scientific notation (1.5e-3).
var numericPattern = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?$`)

// ValueClass is the grammar constraint attached to a value-taking leaf.
type ValueClass struct {
	name              string
	pattern           *regexp.Regexp
	allowUnitOmission bool
}

// Name returns the class name.
func (vc *ValueClass) Name() string { return vc.name }

// AllowsUnitOmission reports whether a bare value with no unit token is
// legal, in which case the unit class default applies.
func (vc *ValueClass) AllowsUnitOmission() bool { return vc.allowUnitOmission }

// Match reports whether the value text satisfies the class grammar.
func (vc *ValueClass) Match(value string) bool {
	if vc.pattern == nil {
		return true
	}
	return vc.pattern.MatchString(value)
}
