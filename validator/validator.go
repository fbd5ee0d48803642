// Package validator checks parsed annotation trees against a schema
// set. Tag and group checks are pure functions of (tree, schema) and
// accumulate findings; only a structural parse failure stops work on a
// string, and then only for that string.
package validator

import (
	"runtime"
	"strings"

	"github.com/hedtools/hedval/definition"
	"github.com/hedtools/hedval/errors"
	"github.com/hedtools/hedval/issues"
	"github.com/hedtools/hedval/parser"
	"github.com/hedtools/hedval/schema"
)

// DefaultMaxGroupDepth bounds group nesting before CodeTagNesting is
// reported.
const DefaultMaxGroupDepth = 10

// Validator validates annotation strings against one schema set. Safe
// for concurrent use; all mutable state lives in per-call values.
type Validator struct {
	set           *schema.Set
	checkWarnings bool
	maxDepth      int
	workers       int
	unclosedSev   issues.Severity
	external      []*definition.Entry
}

// Option configures a Validator.
type Option func(*Validator)

// WithWarnings enables style findings (case mismatches) in addition to
// errors.
func WithWarnings() Option {
	return func(v *Validator) { v.checkWarnings = true }
}

// WithMaxGroupDepth sets the nesting depth limit. Zero disables the
// check.
func WithMaxGroupDepth(n int) Option {
	return func(v *Validator) { v.maxDepth = n }
}

// WithWorkers sets the batch parallelism. Values below one fall back to
// the default.
func WithWorkers(n int) Option {
	return func(v *Validator) {
		if n > 0 {
			v.workers = n
		}
	}
}

// WithUnclosedSeverity sets the severity of unclosed temporal scopes
// reported at the end of a batch.
func WithUnclosedSeverity(sev issues.Severity) Option {
	return func(v *Validator) { v.unclosedSev = sev }
}

// WithDefinitions seeds a batch with externally collected definitions,
// such as those declared in a sidecar validated separately.
func WithDefinitions(entries ...*definition.Entry) Option {
	return func(v *Validator) { v.external = append(v.external, entries...) }
}

// New creates a validator over set.
func New(set *schema.Set, opts ...Option) *Validator {
	v := &Validator{
		set:         set,
		maxDepth:    DefaultMaxGroupDepth,
		workers:     runtime.NumCPU(),
		unclosedSev: issues.SeverityWarning,
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Set returns the schema set the validator resolves against.
func (v *Validator) Set() *schema.Set { return v.set }

// ValidateString parses and validates one annotation string. A
// structural parse failure is returned as an issue and yields a nil
// tree; all other findings accompany the complete tree.
func (v *Validator) ValidateString(text string, ctx issues.Context) (*parser.Group, issues.Issues) {
	tree, iss, err := parser.Parse(text)
	if err != nil {
		return nil, issues.Append(iss, parseIssue(err, ctx))
	}
	return tree, issues.Append(iss, v.ValidateTree(tree, ctx)...)
}

// ValidateTree validates an already-parsed tree. Definition collection,
// use checking and temporal tracking are batch concerns and are not run
// here.
func (v *Validator) ValidateTree(tree *parser.Group, ctx issues.Context) issues.Issues {
	rs := v.resolveAll(tree)
	templates := v.templateTags(tree)

	var iss issues.Issues
	tree.Walk(func(g *parser.Group) {
		for _, tag := range g.Tags() {
			at := ctx
			at.Tag = tag.Text
			at.GroupDepth = g.Depth
			iss = append(iss, v.checkTag(tag, rs[tag], templates[tag], at)...)
		}
		iss = append(iss, v.checkGroup(g, rs, ctx)...)
	})
	iss = append(iss, v.checkUnique(tree, rs, ctx)...)
	return append(iss, v.checkRequired(rs, ctx)...)
}

// resolution pairs a tag's schema lookup with its failure, resolved
// once per tree and shared by every check.
type resolution struct {
	res *schema.Resolution
	err error
}

func (v *Validator) resolveAll(tree *parser.Group) map[*parser.Tag]resolution {
	out := make(map[*parser.Tag]resolution)
	for _, tag := range tree.AllTags() {
		res, err := v.set.ResolveTag(tag.Text)
		out[tag] = resolution{res: res, err: err}
	}
	return out
}

// templateTags marks every tag inside a definition template subgroup.
// Placeholders are legal only there.
func (v *Validator) templateTags(tree *parser.Group) map[*parser.Tag]bool {
	out := make(map[*parser.Tag]bool)
	tree.Walk(func(g *parser.Group) {
		declares := false
		for _, tag := range g.Tags() {
			res, err := v.set.ResolveTag(tag.Text)
			if err == nil && res.Node.Reserved() &&
				strings.EqualFold(res.Node.Name(), definition.TagDefinition) {
				declares = true
				break
			}
		}
		if !declares {
			return
		}
		for _, sub := range g.Groups() {
			for _, tag := range sub.AllTags() {
				out[tag] = true
			}
		}
	})
	return out
}

// checkUnique reports schema terms carrying the unique attribute that
// occur more than once anywhere in the string.
func (v *Validator) checkUnique(tree *parser.Group, rs map[*parser.Tag]resolution, ctx issues.Context) issues.Issues {
	count := make(map[string]int)
	first := make(map[string]*parser.Tag)
	var order []string
	for _, tag := range tree.AllTags() {
		r := rs[tag]
		if r.err != nil || !r.res.Node.HasAttribute(schema.AttrUnique) {
			continue
		}
		key := strings.ToLower(r.res.Node.Path())
		if count[key] == 0 {
			first[key] = tag
			order = append(order, key)
		}
		count[key]++
	}

	var iss issues.Issues
	for _, key := range order {
		if count[key] > 1 {
			at := ctx
			at.Tag = first[key].Text
			iss = append(iss, issues.New(issues.CodeTagNotUnique,
				"tag %q occurs %d times but its schema term admits one occurrence", first[key].Text, count[key]).At(at))
		}
	}
	return iss
}

// checkRequired reports schema terms carrying the required attribute
// that the string never mentions. A tag resolving to a descendant of
// the required term counts as a mention.
func (v *Validator) checkRequired(rs map[*parser.Tag]resolution, ctx issues.Context) issues.Issues {
	required := v.set.RequiredNodes()
	if len(required) == 0 {
		return nil
	}
	present := make(map[string]bool)
	for _, r := range rs {
		if r.err != nil {
			continue
		}
		for cur := r.res.Node; cur != nil; cur = cur.Parent() {
			present[strings.ToLower(cur.Path())] = true
		}
	}

	var iss issues.Issues
	for _, node := range required {
		if !present[strings.ToLower(node.Path())] {
			iss = append(iss, issues.New(issues.CodeRequiredTagMissing,
				"required tag %q does not occur in the annotation string", node.Name()).At(ctx))
		}
	}
	return iss
}

// parseIssue converts a fatal parse failure into an issue of the
// matching code.
func parseIssue(err error, ctx issues.Context) issues.Issue {
	var pe *parser.ParseError
	if errors.As(err, &pe) {
		code := issues.CodeParenthesesMismatch
		if pe.Kind == parser.KindDelimiter {
			code = issues.CodeCharacterInvalid
		}
		return issues.New(code, "%s", pe.Message).At(ctx)
	}
	return issues.New(issues.CodeParenthesesMismatch, "%s", err.Error()).At(ctx)
}
