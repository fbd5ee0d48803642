package schema

import (
	"strings"

	"github.com/Masterminds/semver/v3"

	"github.com/hedtools/hedval/errors"
)

// Set is the merged view over a standard schema, its partnered
// libraries, and any prefixed libraries. All tag resolution goes through
// the Set. Like Model it is frozen after construction.
type Set struct {
	base              *Model
	partnered         []*Model
	libraries         map[string]*Model
	order             []string
	bareLibraryLookup bool

	// bare maps case-insensitive short names of the unprefixed
	// namespace (base plus partners) to their owning node and model.
	bare map[string]*namespaceNode
}

type namespaceNode struct {
	node  *Node
	model *Model
}

// SetOption configures Set construction.
type SetOption func(*setConfig)

type setConfig struct {
	libraries         []libraryEntry
	partnered         []*Model
	bareLibraryLookup bool
}

type libraryEntry struct {
	prefix string
	model  *Model
}

// WithLibrary merges a library schema under the given tag prefix
// ("sc" makes sc:Acceleration resolvable).
func WithLibrary(prefix string, m *Model) SetOption {
	return func(c *setConfig) {
		c.libraries = append(c.libraries, libraryEntry{prefix: prefix, model: m})
	}
}

// WithPartnered merges a partnered library into the unprefixed
// namespace shared with the standard schema.
func WithPartnered(m *Model) SetOption {
	return func(c *setConfig) { c.partnered = append(c.partnered, m) }
}

// WithBareLibraryLookup lets bare short-form terms match prefixed
// library nodes as well. The default requires the explicit prefix; with
// this enabled a term found in more than one namespace resolves as
// ambiguous rather than silently preferring one schema.
func WithBareLibraryLookup() SetOption {
	return func(c *setConfig) { c.bareLibraryLookup = true }
}

// NewSet builds the merged schema set. Collisions between partnered
// namespaces and inconsistent partner versions are fatal schema errors.
func NewSet(base *Model, opts ...SetOption) (*Set, error) {
	if base == nil {
		return nil, errors.NewSchemaError("schema set requires a base schema")
	}
	if base.IsLibrary() && !base.IsPartnered() {
		return nil, errors.NewSchemaError("base of a schema set must be a standard or partnered schema, got library %q", base.Library())
	}

	var cfg setConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	s := &Set{
		base:              base,
		libraries:         map[string]*Model{},
		bareLibraryLookup: cfg.bareLibraryLookup,
		bare:              map[string]*namespaceNode{},
	}
	for key, n := range base.short {
		s.bare[key] = &namespaceNode{node: n, model: base}
	}

	for _, partner := range cfg.partnered {
		if err := s.mergePartner(partner); err != nil {
			return nil, err
		}
	}

	for _, entry := range cfg.libraries {
		if err := s.addLibrary(entry.prefix, entry.model); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func (s *Set) mergePartner(partner *Model) error {
	if partner == nil {
		return errors.NewSchemaError("nil partnered schema")
	}
	if !partner.IsPartnered() {
		return errors.NewSchemaError("library %q is not partnered (missing withStandard)", partner.Library())
	}
	for _, prev := range s.partnered {
		if strings.EqualFold(prev.Library(), partner.Library()) {
			return errors.NewSchemaError("partnered schema %q merged twice", partner.Library())
		}
	}
	// The partner pins the standard version it was built against; a
	// major-version mismatch makes the shared namespace unsound.
	pinned := partner.WithStandard()
	if v, err := semverMajor(pinned); err != nil || v != s.base.Version().Major() {
		return errors.NewSchemaError(
			"partnered schema %q targets standard %s, set is built on %s",
			partner.Library(), pinned, s.base.Version().String())
	}
	for key, n := range partner.short {
		if prev, taken := s.bare[key]; taken {
			return errors.NewSchemaError(
				"partnered short name collision on %q: %s and %s",
				n.Name(), prev.node.Path(), n.Path())
		}
	}
	for key, n := range partner.short {
		s.bare[key] = &namespaceNode{node: n, model: partner}
	}
	s.partnered = append(s.partnered, partner)
	return nil
}

func (s *Set) addLibrary(prefix string, m *Model) error {
	if m == nil {
		return errors.NewSchemaError("nil library schema")
	}
	if prefix == "" {
		return errors.NewSchemaError("library %q needs a non-empty prefix; use WithPartnered for unprefixed merges", m.Library())
	}
	if strings.ContainsAny(prefix, "/,:() ") {
		return errors.NewSchemaError("library prefix %q contains a structural delimiter", prefix)
	}
	if _, dup := s.libraries[prefix]; dup {
		return errors.NewSchemaError("library prefix %q registered twice", prefix)
	}
	s.libraries[prefix] = m
	s.order = append(s.order, prefix)
	return nil
}

// Base returns the standard schema of the set.
func (s *Set) Base() *Model { return s.base }

// RequiredNodes returns the required-attribute nodes of the shared
// namespace: the base schema and every partnered merge. Prefixed
// libraries do not contribute; their terms are opt-in by prefix.
func (s *Set) RequiredNodes() []*Node {
	out := append([]*Node(nil), s.base.required...)
	for _, partner := range s.partnered {
		out = append(out, partner.required...)
	}
	return out
}

// Library returns the library registered under prefix, nil when absent.
func (s *Set) Library(prefix string) *Model { return s.libraries[prefix] }

// Prefixes returns the registered library prefixes in registration order.
func (s *Set) Prefixes() []string { return append([]string(nil), s.order...) }

// Resolution is the outcome of resolving one tag text against the set.
type Resolution struct {
	// Node is the deepest schema node the text reaches.
	Node *Node
	// Model is the schema the node belongs to; unit and value classes
	// are looked up there.
	Model *Model
	// Prefix is the library prefix used in the input, "" for the bare
	// namespace.
	Prefix string
	// Remainder is the input text beyond the deepest schema match, in
	// original case, "" when the match is exact. For a value-taking node
	// this is the value (and unit) text.
	Remainder string
	// CaseMismatch is set when a matched segment differs from the
	// canonical casing of its schema term.
	CaseMismatch bool
}

// ResolveTag resolves tag text, short or long form, optionally library
// prefixed (prefix:Name). Returns ErrTagUnknown for an unmatched first
// term and ErrTagAmbiguous when bare library lookup finds the term in
// more than one namespace.
func (s *Set) ResolveTag(text string) (*Resolution, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, errors.Wrap(errors.ErrTagUnknown, "empty tag")
	}

	prefix, rest := splitPrefix(text)
	segments := strings.Split(rest, "/")

	var candidates []*namespaceNode
	if prefix != "" {
		lib := s.libraries[prefix]
		if lib == nil {
			return nil, errors.Wrapf(errors.ErrTagUnknown, "no library registered under prefix %q", prefix)
		}
		if n := lib.Node(segments[0]); n != nil {
			candidates = append(candidates, &namespaceNode{node: n, model: lib})
		}
	} else {
		if nn := s.bare[strings.ToLower(segments[0])]; nn != nil {
			candidates = append(candidates, nn)
		}
		if s.bareLibraryLookup {
			for _, p := range s.order {
				if n := s.libraries[p].Node(segments[0]); n != nil {
					candidates = append(candidates, &namespaceNode{node: n, model: s.libraries[p]})
				}
			}
		}
	}

	switch len(candidates) {
	case 0:
		return nil, errors.Wrapf(errors.ErrTagUnknown, "term %q", segments[0])
	case 1:
	default:
		return nil, errors.WithHint(
			errors.Wrapf(errors.ErrTagAmbiguous, "term %q matches %d schemas", segments[0], len(candidates)),
			"qualify the term with its library prefix")
	}

	start := candidates[0]
	cur := start.node
	mismatch := segments[0] != cur.Name()
	consumed := 1
	for consumed < len(segments) {
		child := cur.Child(segments[consumed])
		if child == nil {
			break
		}
		if segments[consumed] != child.Name() {
			mismatch = true
		}
		cur = child
		consumed++
	}

	return &Resolution{
		Node:         cur,
		Model:        start.model,
		Prefix:       prefix,
		Remainder:    strings.Join(segments[consumed:], "/"),
		CaseMismatch: mismatch,
	}, nil
}

// ShortToLong converts a tag to its full-path long form, preserving any
// remainder (value or extension) and library prefix.
func (s *Set) ShortToLong(text string) (string, error) {
	res, err := s.ResolveTag(text)
	if err != nil {
		return "", err
	}
	return res.Format(res.Node.Path()), nil
}

// LongToShort converts a tag to its unique short form, preserving any
// remainder and library prefix.
func (s *Set) LongToShort(text string) (string, error) {
	res, err := s.ResolveTag(text)
	if err != nil {
		return "", err
	}
	return res.Format(res.Node.Name()), nil
}

// Format joins a converted head with the resolution's prefix and
// remainder.
func (r *Resolution) Format(head string) string {
	out := head
	if r.Remainder != "" {
		out = out + "/" + r.Remainder
	}
	if r.Prefix != "" {
		out = r.Prefix + ":" + out
	}
	return out
}

// splitPrefix peels a library prefix off tag text. A colon only counts
// before the first slash; colons later in the text belong to values.
func splitPrefix(text string) (prefix, rest string) {
	colon := strings.Index(text, ":")
	if colon < 0 {
		return "", text
	}
	if slash := strings.Index(text, "/"); slash >= 0 && slash < colon {
		return "", text
	}
	return text[:colon], text[colon+1:]
}

func semverMajor(v string) (uint64, error) {
	parsed, err := semver.NewVersion(v)
	if err != nil {
		return 0, err
	}
	return parsed.Major(), nil
}
