// Package parser turns raw annotation text into a tree of tags and
// groups. Parsing is purely syntactic: it splits on commas, reconstructs
// parenthesis nesting exactly, and leaves semantic resolution of tag
// text to the validator.
package parser

import "strings"

// Node is one element of a parsed annotation tree: a Tag or a Group.
// The discriminant is the concrete type; validators switch exhaustively.
type Node interface {
	// Format renders the node back to annotation text.
	Format() string

	node()
}

// Tag is one parsed tag occurrence. The text is the trimmed source span;
// resolution against the schema happens later and does not mutate the
// tag.
type Tag struct {
	Text string
	Span Range
}

func (t *Tag) node() {}

// Format returns the tag's source text.
func (t *Tag) Format() string { return t.Text }

// Group is an ordered sequence of tags and nested groups. Depth 0 is the
// implicit top-level group of the whole string; parenthesized groups
// start at depth 1.
type Group struct {
	Children []Node
	Depth    int
	Span     Range
}

func (g *Group) node() {}

// Format renders the group back to annotation text, parenthesized for
// nested groups.
func (g *Group) Format() string {
	parts := make([]string, 0, len(g.Children))
	for _, c := range g.Children {
		parts = append(parts, c.Format())
	}
	body := strings.Join(parts, ", ")
	if g.Depth == 0 {
		return body
	}
	return "(" + body + ")"
}

// Tags returns the direct child tags in source order.
func (g *Group) Tags() []*Tag {
	var out []*Tag
	for _, c := range g.Children {
		if t, ok := c.(*Tag); ok {
			out = append(out, t)
		}
	}
	return out
}

// Groups returns the direct child groups in source order.
func (g *Group) Groups() []*Group {
	var out []*Group
	for _, c := range g.Children {
		if sub, ok := c.(*Group); ok {
			out = append(out, sub)
		}
	}
	return out
}

// IsEmpty reports whether the group has no children.
func (g *Group) IsEmpty() bool { return len(g.Children) == 0 }

// Walk visits the group and every descendant group, outer first.
func (g *Group) Walk(visit func(*Group)) {
	visit(g)
	for _, sub := range g.Groups() {
		sub.Walk(visit)
	}
}

// AllTags returns every tag in the tree in source order.
func (g *Group) AllTags() []*Tag {
	var out []*Tag
	g.Walk(func(grp *Group) {
		out = append(out, grp.Tags()...)
	})
	return out
}

// MaxDepth returns the deepest parenthesis depth in the tree.
func (g *Group) MaxDepth() int {
	max := g.Depth
	g.Walk(func(grp *Group) {
		if grp.Depth > max {
			max = grp.Depth
		}
	})
	return max
}
