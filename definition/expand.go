package definition

import (
	"strings"

	"github.com/hedtools/hedval/issues"
	"github.com/hedtools/hedval/parser"
)

// maxExpandDepth bounds nested Def expansion: a template referencing
// another Def expands exactly one further level; anything deeper is
// reported, not silently resolved.
const maxExpandDepth = 2

// Expander performs the explicit, opt-in expansion of Def references.
type Expander struct {
	c     *Collector
	table *Table
}

// NewExpander creates an expander over a collected table.
func NewExpander(c *Collector, table *Table) *Expander {
	return &Expander{c: c, table: table}
}

// Expand returns a new tree with every Def reference replaced by its
// template content (value placeholder substituted). The input tree is
// never modified. References whose definition is unknown, and
// references nested beyond one template level, are reported and left in
// place.
func (e *Expander) Expand(tree *parser.Group, ctx issues.Context) (*parser.Group, issues.Issues) {
	var iss issues.Issues
	out := e.expandGroup(tree, ctx, 0, nil, &iss)
	return out, iss
}

func (e *Expander) expandGroup(g *parser.Group, ctx issues.Context, depth int, active []string, iss *issues.Issues) *parser.Group {
	out := &parser.Group{Depth: g.Depth, Span: g.Span}
	for _, child := range g.Children {
		switch n := child.(type) {
		case *parser.Group:
			out.Children = append(out.Children, e.expandGroup(n, ctx, depth, active, iss))
		case *parser.Tag:
			out.Children = append(out.Children, e.expandTag(n, g.Depth, ctx, depth, active, iss)...)
		}
	}
	return out
}

// expandTag replaces one Def reference with its substituted template
// group, or returns the tag unchanged when it is not a Def.
func (e *Expander) expandTag(tag *parser.Tag, groupDepth int, ctx issues.Context, depth int, active []string, iss *issues.Issues) []parser.Node {
	keep := []parser.Node{&parser.Tag{Text: tag.Text, Span: tag.Span}}

	name, remainder := reservedName(e.c.set, tag.Text)
	if name != TagDef {
		return keep
	}
	at := issues.Context{Row: ctx.Row, Column: ctx.Column, Tag: tag.Text, GroupDepth: groupDepth}

	defName, value := splitDefReference(remainder)
	entry := e.table.Get(defName)
	if entry == nil {
		// ValidateUse already reported unknown names during validation;
		// expansion reports again because it can be called on its own.
		*iss = issues.Append(*iss, issues.New(issues.CodeDefUnknown,
			"cannot expand unknown definition %q", defName).At(at))
		return keep
	}
	for _, open := range active {
		if strings.EqualFold(open, entry.Name) {
			*iss = issues.Append(*iss, issues.New(issues.CodeDefExpansionInvalid,
				"definition %q expands through itself", entry.Name).At(at))
			return keep
		}
	}
	if depth+1 > maxExpandDepth {
		*iss = issues.Append(*iss, issues.New(issues.CodeDefExpansionInvalid,
			"definition %q nested deeper than one template level", entry.Name).At(at))
		return keep
	}
	if entry.Template == nil {
		return nil
	}

	substituted := substitute(entry.Template, value)
	expanded := e.expandGroup(substituted, ctx, depth+1, append(active, entry.Name), iss)
	expanded.Depth = groupDepth + 1
	renumber(expanded)
	return []parser.Node{expanded}
}

// substitute returns a deep copy of the template with the value
// placeholder replaced.
func substitute(template *parser.Group, value string) *parser.Group {
	out := &parser.Group{Depth: template.Depth, Span: template.Span}
	for _, child := range template.Children {
		switch n := child.(type) {
		case *parser.Group:
			out.Children = append(out.Children, substitute(n, value))
		case *parser.Tag:
			text := n.Text
			if value != "" {
				text = strings.ReplaceAll(text, Placeholder, value)
			}
			out.Children = append(out.Children, &parser.Tag{Text: text, Span: n.Span})
		}
	}
	return out
}

// renumber fixes child group depths after a template lands at a new
// nesting level.
func renumber(g *parser.Group) {
	for _, sub := range g.Groups() {
		sub.Depth = g.Depth + 1
		renumber(sub)
	}
}
