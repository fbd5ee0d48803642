// Package definition implements the two-pass definition subsystem:
// collecting Definition templates from a corpus of parsed strings,
// validating Def references against them, and the explicit expansion
// entry point. Validation never mutates input trees; expansion returns a
// new tree.
package definition

import (
	"sort"
	"strings"

	"github.com/hedtools/hedval/issues"
	"github.com/hedtools/hedval/parser"
	"github.com/hedtools/hedval/schema"
)

// Short names of the reserved structural tags this package acts on.
const (
	TagDefinition = "definition"
	TagDef        = "def"
	TagDefExpand  = "def-expand"
	TagOnset      = "onset"
	TagOffset     = "offset"
	TagInset      = "inset"
)

// Placeholder is the value placeholder character in templates.
const Placeholder = "#"

// Entry is one registered definition: a name, its placeholder arity
// (0 or 1), and the template group. The template may be nil for defs
// that carry no content.
type Entry struct {
	Name     string
	Arity    int
	Template *parser.Group
	Source   issues.Context
}

// Table maps definition names (case-insensitive) to entries. A name is
// unique across one validation session.
type Table struct {
	entries map[string]*Entry
}

// NewTable creates an empty definition table.
func NewTable() *Table {
	return &Table{entries: map[string]*Entry{}}
}

// Add registers an entry, replacing any previous holder of the name.
// Used for externally pre-collected definitions (a sidecar validated in
// an earlier session); in-corpus collisions go through Collect.
func (t *Table) Add(e *Entry) {
	t.entries[strings.ToLower(e.Name)] = e
}

// Get returns the entry for name, nil when absent.
func (t *Table) Get(name string) *Entry {
	return t.entries[strings.ToLower(name)]
}

// Names returns the registered names, sorted.
func (t *Table) Names() []string {
	out := make([]string, 0, len(t.entries))
	for _, e := range t.entries {
		out = append(out, e.Name)
	}
	sort.Strings(out)
	return out
}

// Len returns the number of registered definitions.
func (t *Table) Len() int { return len(t.entries) }

// Collector discovers Definition groups in parsed trees.
type Collector struct {
	set *schema.Set
}

// NewCollector creates a collector resolving reserved tags against set.
func NewCollector(set *schema.Set) *Collector {
	return &Collector{set: set}
}

// reservedName resolves tag text and returns the lowercase short name
// when it is one of the reserved structural tags, "" otherwise.
func reservedName(set *schema.Set, text string) (name, remainder string) {
	res, err := set.ResolveTag(text)
	if err != nil || !res.Node.Reserved() {
		return "", ""
	}
	return strings.ToLower(res.Node.Name()), res.Remainder
}

// Collect scans one tree for Definition groups and registers them in
// the table. ctx locates the tree for issue reporting. Collect is pass
// one of the two-pass corpus walk; call it for every tree before any
// ValidateUse call.
func (c *Collector) Collect(table *Table, tree *parser.Group, ctx issues.Context) issues.Issues {
	var iss issues.Issues
	tree.Walk(func(g *parser.Group) {
		for _, tag := range g.Tags() {
			name, remainder := reservedName(c.set, tag.Text)
			if name != TagDefinition {
				continue
			}
			entry, defIssues := c.extract(g, tag, remainder, ctx)
			iss = issues.Append(iss, defIssues...)
			if entry == nil {
				continue
			}
			if prev := table.Get(entry.Name); prev != nil {
				if sameTemplate(prev, entry) {
					iss = issues.Append(iss, issues.Warning(issues.CodeDefDuplicate,
						"definition %q declared more than once with the same template", entry.Name).
						At(ctx))
				} else {
					iss = issues.Append(iss, issues.New(issues.CodeDefDuplicate,
						"definition %q redeclared with a different template", entry.Name).
						WithParam("previous_row", prev.Source.Row).
						At(ctx))
				}
				continue
			}
			table.Add(entry)
		}
	})
	return iss
}

// extract pulls the entry out of one Definition group, reporting the
// structural rules a definition must satisfy.
func (c *Collector) extract(g *parser.Group, tag *parser.Tag, remainder string, ctx issues.Context) (*Entry, issues.Issues) {
	var iss issues.Issues
	bad := func(format string, args ...any) {
		iss = issues.Append(iss, issues.New(issues.CodeDefinitionInvalid, format, args...).
			At(issues.Context{Row: ctx.Row, Column: ctx.Column, Tag: tag.Text, GroupDepth: g.Depth}))
	}

	name, arity := splitNameArity(remainder)
	if name == "" {
		bad("definition without a name")
		return nil, iss
	}
	if strings.Contains(name, "/") {
		bad("definition name %q contains a slash", name)
		return nil, iss
	}

	if len(g.Tags()) > 1 {
		bad("definition group for %q contains tags beside the Definition tag", name)
	}
	subgroups := g.Groups()
	if len(subgroups) > 1 {
		bad("definition group for %q contains more than one template group", name)
		return nil, iss
	}

	var template *parser.Group
	if len(subgroups) == 1 {
		template = subgroups[0]
		for _, inner := range template.AllTags() {
			rn, _ := reservedName(c.set, inner.Text)
			switch rn {
			case TagDefinition, TagOnset, TagOffset, TagInset:
				bad("template of %q contains reserved tag %q", name, inner.Text)
			}
		}
		placeholders := countPlaceholders(template)
		if placeholders != arity {
			bad("definition %q declares %d placeholder(s) but its template contains %d", name, arity, placeholders)
			return nil, iss
		}
	} else if arity == 1 {
		bad("definition %q declares a placeholder but has no template", name)
		return nil, iss
	}

	if iss.HasErrors() {
		return nil, iss
	}
	return &Entry{Name: name, Arity: arity, Template: template, Source: ctx}, iss
}

// splitNameArity splits "Name" or "Name/#" into the name and declared
// placeholder arity.
func splitNameArity(remainder string) (string, int) {
	if rest, ok := strings.CutSuffix(remainder, "/"+Placeholder); ok {
		return rest, 1
	}
	return remainder, 0
}

// countPlaceholders counts '#' value placeholders in a template.
func countPlaceholders(g *parser.Group) int {
	count := 0
	for _, tag := range g.AllTags() {
		count += strings.Count(tag.Text, Placeholder)
	}
	return count
}

// sameTemplate reports whether two entries carry the same arity and a
// structurally identical template.
func sameTemplate(a, b *Entry) bool {
	if a.Arity != b.Arity {
		return false
	}
	switch {
	case a.Template == nil && b.Template == nil:
		return true
	case a.Template == nil || b.Template == nil:
		return false
	}
	return strings.EqualFold(a.Template.Format(), b.Template.Format())
}

// ValidateUse is pass two: check every Def and Def-expand reference in
// the tree against the table. Unknown names and arity mismatches are
// reported; expansion of those names is suppressed by callers.
func (c *Collector) ValidateUse(table *Table, tree *parser.Group, ctx issues.Context) issues.Issues {
	var iss issues.Issues
	tree.Walk(func(g *parser.Group) {
		for _, tag := range g.Tags() {
			name, remainder := reservedName(c.set, tag.Text)
			if name != TagDef && name != TagDefExpand {
				continue
			}
			at := issues.Context{Row: ctx.Row, Column: ctx.Column, Tag: tag.Text, GroupDepth: g.Depth}

			defName, value := splitDefReference(remainder)
			if defName == "" {
				iss = issues.Append(iss, issues.New(issues.CodeDefUnknown,
					"%s reference without a definition name", tag.Text).At(at))
				continue
			}
			entry := table.Get(defName)
			if entry == nil {
				iss = issues.Append(iss, issues.New(issues.CodeDefUnknown,
					"reference to unknown definition %q", defName).At(at))
				continue
			}
			switch {
			case entry.Arity == 0 && value != "":
				iss = issues.Append(iss, issues.New(issues.CodeDefArity,
					"definition %q takes no value, got %q", entry.Name, value).At(at))
			case entry.Arity == 1 && value == "":
				iss = issues.Append(iss, issues.New(issues.CodeDefArity,
					"definition %q requires a value", entry.Name).At(at))
			}

			if name == TagDefExpand {
				iss = issues.Append(iss, c.checkExpansion(entry, g, value, at)...)
			}
		}
	})
	return iss
}

// checkExpansion verifies that the inline content of a Def-expand group
// matches the registered template with the value substituted.
func (c *Collector) checkExpansion(entry *Entry, g *parser.Group, value string, at issues.Context) issues.Issues {
	subgroups := g.Groups()
	if entry.Template == nil {
		if len(subgroups) != 0 {
			return issues.Issues{issues.New(issues.CodeDefExpansionInvalid,
				"Def-expand of %q carries content but the definition has no template", entry.Name).At(at)}
		}
		return nil
	}
	if len(subgroups) != 1 {
		return issues.Issues{issues.New(issues.CodeDefExpansionInvalid,
			"Def-expand of %q must carry exactly one content group", entry.Name).At(at)}
	}
	want := substitute(entry.Template, value).Format()
	got := subgroups[0].Format()
	if !strings.EqualFold(want, got) {
		return issues.Issues{issues.New(issues.CodeDefExpansionInvalid,
			"Def-expand content of %q does not match its template", entry.Name).
			WithParam("want", want).
			WithParam("got", got).
			At(at)}
	}
	return nil
}

// splitDefReference splits a Def remainder "Name" or "Name/Value" into
// name and value. Values may themselves contain slashes.
func splitDefReference(remainder string) (name, value string) {
	if i := strings.Index(remainder, "/"); i >= 0 {
		return remainder[:i], remainder[i+1:]
	}
	return remainder, ""
}
