package validator

import (
	"sort"
	"strings"

	"github.com/hedtools/hedval/issues"
	"github.com/hedtools/hedval/parser"
	"github.com/hedtools/hedval/schema"
)

// checkGroup validates the structural constraints of one group over its
// direct children: sibling duplicates, nesting depth, reserved-tag
// placement and co-occurrence attributes.
func (v *Validator) checkGroup(g *parser.Group, rs map[*parser.Tag]resolution, ctx issues.Context) issues.Issues {
	at := ctx
	at.GroupDepth = g.Depth

	var iss issues.Issues
	if v.maxDepth > 0 && g.Depth > v.maxDepth {
		iss = append(iss, issues.New(issues.CodeTagNesting,
			"group nested %d levels deep exceeds the limit of %d", g.Depth, v.maxDepth).At(at))
	}

	iss = append(iss, v.checkSiblingTags(g, rs, at)...)
	iss = append(iss, v.checkSiblingGroups(g, rs, at)...)
	iss = append(iss, v.checkPlacement(g, rs, at)...)
	return iss
}

// checkSiblingTags reports sibling tags resolving to the same schema
// node with the same value, once per duplicated key. Keys resolve both
// short and long forms, so the check is order and form independent.
func (v *Validator) checkSiblingTags(g *parser.Group, rs map[*parser.Tag]resolution, at issues.Context) issues.Issues {
	first := make(map[string]string)
	reported := make(map[string]bool)

	var iss issues.Issues
	for _, tag := range g.Tags() {
		key := tagKey(tag, rs)
		prev, seen := first[key]
		if !seen {
			first[key] = tag.Text
			continue
		}
		if reported[key] {
			continue
		}
		reported[key] = true
		tat := at
		tat.Tag = tag.Text
		iss = append(iss, issues.New(issues.CodeDuplicateTag,
			"tag %q duplicates sibling %q", tag.Text, prev).At(tat))
	}
	return iss
}

// checkSiblingGroups reports structurally identical sibling groups,
// compared as recursive multisets of resolved children.
func (v *Validator) checkSiblingGroups(g *parser.Group, rs map[*parser.Tag]resolution, at issues.Context) issues.Issues {
	seen := make(map[string]bool)
	reported := make(map[string]bool)

	var iss issues.Issues
	for _, child := range g.Groups() {
		sig := groupSignature(child, rs)
		if seen[sig] && !reported[sig] {
			reported[sig] = true
			iss = append(iss, issues.New(issues.CodeDuplicateGroup,
				"group %q duplicates a sibling group", child.Format()).At(at))
		}
		seen[sig] = true
	}
	return iss
}

// checkPlacement enforces reserved-tag placement and the tagGroup and
// siblingRequired attributes.
func (v *Validator) checkPlacement(g *parser.Group, rs map[*parser.Tag]resolution, at issues.Context) issues.Issues {
	var iss issues.Issues
	topLevelMarkers := 0
	for _, tag := range g.Tags() {
		r := rs[tag]
		if r.err != nil {
			continue
		}
		node := r.res.Node
		tat := at
		tat.Tag = tag.Text

		if node.Reserved() && node.HasAttribute(schema.AttrTopLevelTagGroup) {
			topLevelMarkers++
			if g.Depth != 1 {
				iss = append(iss, issues.New(issues.CodeTagGroupError,
					"tag %q must be the marker of a top-level group", tag.Text).At(tat))
			}
			if topLevelMarkers > 1 {
				iss = append(iss, issues.New(issues.CodeTagGroupError,
					"tag %q shares its group with another top-level marker", tag.Text).At(tat))
			}
		}
		if node.HasAttribute(schema.AttrTagGroup) && g.Depth == 0 {
			iss = append(iss, issues.New(issues.CodeTagGroupError,
				"tag %q must appear inside a parenthesized group", tag.Text).At(tat))
		}
		if node.HasAttribute(schema.AttrSiblingRequired) {
			iss = append(iss, v.checkRequiredSibling(g, tag, node, rs, tat)...)
		}
	}
	return iss
}

// checkRequiredSibling enforces the siblingRequired co-occurrence. A
// named attribute value must resolve as a sibling tag with that short
// form; an unnamed declaration accepts any sibling.
func (v *Validator) checkRequiredSibling(g *parser.Group, tag *parser.Tag, node *schema.Node, rs map[*parser.Tag]resolution, at issues.Context) issues.Issues {
	want := node.Attribute(schema.AttrSiblingRequired)
	if want == "" {
		if len(g.Children) < 2 {
			return issues.Issues{issues.New(issues.CodeSiblingRequired,
				"tag %q requires a sibling in its group", tag.Text).At(at)}
		}
		return nil
	}
	for _, sib := range g.Tags() {
		if sib == tag {
			continue
		}
		r := rs[sib]
		if r.err != nil {
			continue
		}
		if strings.EqualFold(r.res.Node.Name(), want) {
			return nil
		}
	}
	return issues.Issues{issues.New(issues.CodeSiblingRequired,
		"tag %q requires sibling %q in its group", tag.Text, want).At(at)}
}

// tagKey is the duplicate-detection identity of a tag: the resolved
// node path plus the remainder. Unresolved tags fall back to their
// lowercased text so repeated unknowns still pair up.
func tagKey(tag *parser.Tag, rs map[*parser.Tag]resolution) string {
	r := rs[tag]
	if r.err != nil {
		return strings.ToLower(strings.TrimSpace(tag.Text))
	}
	return strings.ToLower(r.res.Node.Path()) + "\x00" + r.res.Remainder
}

func groupSignature(g *parser.Group, rs map[*parser.Tag]resolution) string {
	parts := make([]string, 0, len(g.Children))
	for _, child := range g.Children {
		switch n := child.(type) {
		case *parser.Tag:
			parts = append(parts, "t:"+tagKey(n, rs))
		case *parser.Group:
			parts = append(parts, "g:("+groupSignature(n, rs)+")")
		}
	}
	sort.Strings(parts)
	return strings.Join(parts, ",")
}
