// Package issues holds the structured issue model shared by every
// validation component.
//
// Issues are not Go errors in the usual sense: validation accumulates
// them and keeps going. Only fatal conditions (an unparseable string, a
// broken schema) surface as real errors from the packages that detect
// them. Everything else lands here, with a closed code taxonomy, a
// severity, and an ordered context stack describing where in the input
// the problem was found.
package issues

import (
	"fmt"
	"sort"
	"strings"
)

// Code identifies one kind of validation issue. The taxonomy is closed:
// components may only report the codes declared below.
type Code string

const (
	// Tag-level codes
	CodeTagInvalid          Code = "tag_invalid"
	CodeTagExtensionInvalid Code = "tag_extension_invalid"
	CodeTagEmpty            Code = "tag_empty"
	CodeValueInvalid        Code = "value_invalid"
	CodeValueRequired       Code = "value_required"
	CodeUnitsInvalid        Code = "units_invalid"
	CodeCharacterInvalid    Code = "character_invalid"
	CodeStyleWarning        Code = "style_warning"

	// Structural codes (parser and group validator)
	CodeParenthesesMismatch Code = "parentheses_mismatch"
	CodeCommaMissing        Code = "comma_missing"
	CodeTagGroupEmpty       Code = "tag_group_empty"
	CodeDuplicateTag        Code = "duplicate_tag"
	CodeDuplicateGroup      Code = "duplicate_group"
	CodeTagNotUnique        Code = "tag_not_unique"
	CodeTagGroupError       Code = "tag_group_error"
	CodeTagNesting          Code = "tag_nesting"
	CodeSiblingRequired     Code = "sibling_required"
	CodeRequiredTagMissing  Code = "required_tag_missing"

	// Definition codes
	CodeDefinitionInvalid    Code = "definition_invalid"
	CodeDefDuplicate         Code = "def_duplicate"
	CodeDefUnknown           Code = "def_unknown"
	CodeDefArity             Code = "def_arity"
	CodeDefExpansionInvalid  Code = "def_expansion_invalid"

	// Temporal codes
	CodeTemporalUnmatchedOffset Code = "temporal_unmatched_offset"
	CodeTemporalUnmatchedInset  Code = "temporal_unmatched_inset"
	CodeTemporalScopeReopened   Code = "temporal_scope_reopened"
	CodeTemporalScopeUnclosed   Code = "temporal_scope_unclosed"

	// Session codes
	CodeSchemaLoadFailed Code = "schema_load_failed"
)

// Severity indicates how an issue should be treated by callers.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Context is one frame of the location trail for an issue. Row is the
// zero-based dataset row the annotation came from, or -1 when the issue
// is not tied to a row (for example a sidecar string). GroupDepth is the
// parenthesis depth at the point of detection, with 0 meaning top level.
type Context struct {
	Row        int    `json:"row"`
	Column     string `json:"column,omitempty"`
	Tag        string `json:"tag,omitempty"`
	GroupDepth int    `json:"group_depth"`
}

// NoRow marks a context frame that has no dataset row.
const NoRow = -1

// Issue is a single validation finding.
type Issue struct {
	Code     Code           `json:"code"`
	Severity Severity       `json:"severity"`
	Message  string         `json:"message"`
	// Params carries structured parameters ({"tag": "Red", "unit": "kg"})
	// for machine consumption alongside the rendered message.
	Params  map[string]any `json:"params,omitempty"`
	Context []Context      `json:"context,omitempty"`
}

// New builds an error-severity issue with a formatted message.
func New(code Code, format string, args ...any) Issue {
	return Issue{
		Code:     code,
		Severity: SeverityError,
		Message:  fmt.Sprintf(format, args...),
	}
}

// Warning builds a warning-severity issue with a formatted message.
func Warning(code Code, format string, args ...any) Issue {
	iss := New(code, format, args...)
	iss.Severity = SeverityWarning
	return iss
}

// WithParam attaches a structured parameter and returns the issue for
// chaining.
func (i Issue) WithParam(key string, value any) Issue {
	if i.Params == nil {
		i.Params = map[string]any{}
	}
	i.Params[key] = value
	return i
}

// At pushes a context frame onto the issue's location trail. Frames are
// ordered outermost first, so the caller closest to the source pushes
// last.
func (i Issue) At(ctx Context) Issue {
	i.Context = append([]Context{ctx}, i.Context...)
	return i
}

// Row returns the dataset row of the outermost context frame, or NoRow.
func (i Issue) Row() int {
	if len(i.Context) == 0 {
		return NoRow
	}
	return i.Context[0].Row
}

// IsError reports whether the issue has error severity.
func (i Issue) IsError() bool { return i.Severity == SeverityError }

// Issues is an ordered collection of findings. It implements error so
// fatal paths can return it directly.
type Issues []Issue

// Error summarizes the first few issues and the total count.
func (iss Issues) Error() string {
	if len(iss) == 0 {
		return ""
	}
	const maxShown = 3
	b := &strings.Builder{}
	lim := len(iss)
	if lim > maxShown {
		lim = maxShown
	}
	for i := 0; i < lim; i++ {
		if i > 0 {
			b.WriteString("; ")
		}
		fmt.Fprintf(b, "%s: %s", iss[i].Code, iss[i].Message)
	}
	if len(iss) > lim {
		fmt.Fprintf(b, "; ... (total %d)", len(iss))
	}
	return b.String()
}

// Append adds issues to the destination, initializing the slice when
// needed.
func Append(dst Issues, more ...Issue) Issues {
	if dst == nil && len(more) > 0 {
		dst = Issues{}
	}
	return append(dst, more...)
}

// HasErrors reports whether any issue carries error severity.
func (iss Issues) HasErrors() bool {
	for _, i := range iss {
		if i.IsError() {
			return true
		}
	}
	return false
}

// Errors returns only the error-severity issues.
func (iss Issues) Errors() Issues {
	var out Issues
	for _, i := range iss {
		if i.IsError() {
			out = Append(out, i)
		}
	}
	return out
}

// ByCode returns the issues carrying the given code.
func (iss Issues) ByCode(code Code) Issues {
	var out Issues
	for _, i := range iss {
		if i.Code == code {
			out = Append(out, i)
		}
	}
	return out
}

// SortByRow orders issues by dataset row, keeping the original order for
// issues on the same row. Row-less issues sort first.
func (iss Issues) SortByRow() {
	sort.SliceStable(iss, func(a, b int) bool {
		return iss[a].Row() < iss[b].Row()
	})
}
