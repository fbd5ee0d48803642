// Package temporal tracks onset/offset/inset scopes across the ordered
// rows of a dataset. It is the only component with cross-row state and
// is driven by the strictly sequential phase of batch validation.
package temporal

import (
	"sort"
	"strings"

	"github.com/hedtools/hedval/definition"
	"github.com/hedtools/hedval/issues"
	"github.com/hedtools/hedval/parser"
	"github.com/hedtools/hedval/schema"
)

// Scope is the open interval of one definition name.
type Scope struct {
	Name      string
	OpenedRow int
	Value     string
}

// key identifies a scope: Def/Name/Value and Def/Name track
// independently, matching the anchor semantics of the markers.
func (s Scope) key() string {
	return strings.ToLower(s.Name) + "\x00" + s.Value
}

// Tracker is the per-name state machine. States are Closed (absent from
// the map) and Open. Not safe for concurrent use; rows must be fed in
// dataset order.
type Tracker struct {
	set              *schema.Set
	defs             *definition.Table
	open             map[string]Scope
	unclosedSeverity issues.Severity
}

// Option configures a Tracker.
type Option func(*Tracker)

// WithUnclosedSeverity sets the severity of end-of-batch unclosed-scope
// findings. The default is a warning.
func WithUnclosedSeverity(sev issues.Severity) Option {
	return func(t *Tracker) { t.unclosedSeverity = sev }
}

// NewTracker creates a tracker resolving markers against set and
// definition names against defs.
func NewTracker(set *schema.Set, defs *definition.Table, opts ...Option) *Tracker {
	t := &Tracker{
		set:              set,
		defs:             defs,
		open:             map[string]Scope{},
		unclosedSeverity: issues.SeverityWarning,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// marker is one temporal marker group found in a row: the marker kind
// and its Def anchor.
type marker struct {
	kind     string
	name     string
	value    string
	tagText  string
	depth    int
	overlaps bool
}

// ProcessRow feeds the next row's tree to the state machine. Rows must
// arrive in dataset order.
func (t *Tracker) ProcessRow(row int, column string, tree *parser.Group) issues.Issues {
	var iss issues.Issues
	for _, m := range t.markers(tree) {
		// Unregistered anchor names are already reported as def_unknown
		// by definition checking; tracking them would only add
		// unclosed-scope noise for the same defect.
		if t.defs != nil && t.defs.Get(m.name) == nil {
			continue
		}
		at := issues.Context{Row: row, Column: column, Tag: m.tagText, GroupDepth: m.depth}
		scope := Scope{Name: m.name, OpenedRow: row, Value: m.value}
		switch m.kind {
		case definition.TagOnset:
			if prev, isOpen := t.open[scope.key()]; isOpen && !m.overlaps {
				iss = issues.Append(iss, issues.New(issues.CodeTemporalScopeReopened,
					"onset for %q while the scope opened at row %d is still open", m.name, prev.OpenedRow).
					At(at))
			}
			t.open[scope.key()] = scope
		case definition.TagOffset:
			if _, isOpen := t.open[scope.key()]; !isOpen {
				iss = issues.Append(iss, issues.New(issues.CodeTemporalUnmatchedOffset,
					"offset for %q with no open scope", m.name).
					At(at))
				continue
			}
			delete(t.open, scope.key())
		case definition.TagInset:
			if _, isOpen := t.open[scope.key()]; !isOpen {
				iss = issues.Append(iss, issues.New(issues.CodeTemporalUnmatchedInset,
					"inset for %q with no open scope", m.name).
					At(at))
			}
		}
	}
	return iss
}

// Finish reports every scope still open at the end of the row sequence.
func (t *Tracker) Finish() issues.Issues {
	var iss issues.Issues
	for _, scope := range t.openScopes() {
		found := issues.New(issues.CodeTemporalScopeUnclosed,
			"scope of %q opened at row %d never closes", scope.Name, scope.OpenedRow).
			At(issues.Context{Row: scope.OpenedRow})
		found.Severity = t.unclosedSeverity
		iss = issues.Append(iss, found)
	}
	return iss
}

// OpenScopes returns the currently open scopes ordered by opening row.
func (t *Tracker) OpenScopes() []Scope { return t.openScopes() }

func (t *Tracker) openScopes() []Scope {
	out := make([]Scope, 0, len(t.open))
	for _, s := range t.open {
		out = append(out, s)
	}
	sort.Slice(out, func(a, b int) bool {
		if out[a].OpenedRow != out[b].OpenedRow {
			return out[a].OpenedRow < out[b].OpenedRow
		}
		return out[a].Name < out[b].Name
	})
	return out
}

// markers extracts the temporal marker groups of one tree in source
// order. A marker needs a Def anchor in its group; markers without one
// are reported by the group validator, not here.
func (t *Tracker) markers(tree *parser.Group) []marker {
	var out []marker
	tree.Walk(func(g *parser.Group) {
		var kind, tagText string
		var overlaps bool
		var name, value string
		for _, tag := range g.Tags() {
			res, err := t.set.ResolveTag(tag.Text)
			if err != nil || !res.Node.Reserved() {
				continue
			}
			switch strings.ToLower(res.Node.Name()) {
			case definition.TagOnset, definition.TagOffset, definition.TagInset:
				kind = strings.ToLower(res.Node.Name())
				tagText = tag.Text
				overlaps = res.Node.HasAttribute(schema.AttrAllowsOverlap)
			case definition.TagDef:
				name, value = splitAnchor(res.Remainder)
			}
		}
		if kind != "" && name != "" {
			out = append(out, marker{
				kind:     kind,
				name:     name,
				value:    value,
				tagText:  tagText,
				depth:    g.Depth,
				overlaps: overlaps,
			})
		}
	})
	return out
}

func splitAnchor(remainder string) (name, value string) {
	if i := strings.Index(remainder, "/"); i >= 0 {
		return remainder[:i], remainder[i+1:]
	}
	return remainder, ""
}
