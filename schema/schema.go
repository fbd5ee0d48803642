// Package schema holds the in-memory model of a HED vocabulary: the node
// tree, unit classes, value classes, and the merged schema set used to
// resolve tags. Models are frozen after load and safe for concurrent
// readers; acquisition of the source material (download, caching,
// version resolution) is a collaborator's concern, this package only
// consumes an already-materialized representation.
package schema

import (
	"strings"

	"github.com/Masterminds/semver/v3"
)

// Schema attribute names the core acts on. Schemas may declare further
// attributes; unknown names are carried but not interpreted.
const (
	// AttrTakesValue marks a leaf whose tag carries a value segment.
	AttrTakesValue = "takesValue"
	// AttrExtensionAllowed permits extension below the node. Inherits to
	// descendants.
	AttrExtensionAllowed = "extensionAllowed"
	// AttrRequireChild requires the tag to carry a child segment or value.
	AttrRequireChild = "requireChild"
	// AttrUnique restricts the tag to at most one occurrence per string.
	AttrUnique = "unique"
	// AttrRequired requires the tag in every annotation string.
	AttrRequired = "required"
	// AttrReserved marks structural tags (Definition, Def, Onset, ...)
	// subject to placement rules.
	AttrReserved = "reserved"
	// AttrTopLevelTagGroup restricts the tag to a group at parenthesis
	// depth one, where it must be the only such tag.
	AttrTopLevelTagGroup = "topLevelTagGroup"
	// AttrTagGroup requires the tag to appear inside some group.
	AttrTagGroup = "tagGroup"
	// AttrAllowsOverlap permits re-opening a temporal scope for the same
	// definition name before the previous one closes.
	AttrAllowsOverlap = "allowsOverlap"
	// AttrSiblingRequired names a short form that must appear as a
	// sibling of the tag.
	AttrSiblingRequired = "siblingRequired"
)

// Node is one vocabulary term. Nodes are immutable after load.
type Node struct {
	name       string
	path       string
	parent     *Node
	children   []*Node
	attributes map[string]string
	unitClass  string
	valueClass string
}

// Name returns the canonical short name.
func (n *Node) Name() string { return n.name }

// Path returns the canonical full slash-separated path.
func (n *Node) Path() string { return n.path }

// Parent returns the parent node, nil at a root.
func (n *Node) Parent() *Node { return n.parent }

// Children returns the child nodes in declaration order.
func (n *Node) Children() []*Node { return n.children }

// Child finds a direct child by case-insensitive name.
func (n *Node) Child(name string) *Node {
	lower := strings.ToLower(name)
	for _, c := range n.children {
		if strings.ToLower(c.name) == lower {
			return c
		}
	}
	return nil
}

// HasAttribute reports whether the attribute is declared on this node.
// Declared-only: inheritance is explicit and lives in the methods that
// implement it (ExtensionAllowed).
func (n *Node) HasAttribute(name string) bool {
	_, ok := n.attributes[name]
	return ok
}

// Attribute returns the declared attribute value, "" for boolean
// attributes.
func (n *Node) Attribute(name string) string {
	return n.attributes[name]
}

// TakesValue reports whether a tag for this node carries a value
// segment. Not inherited.
func (n *Node) TakesValue() bool { return n.HasAttribute(AttrTakesValue) }

// ExtensionAllowed reports whether text beyond this node is a legal
// extension. The attribute inherits down the tree, so the walk goes up.
func (n *Node) ExtensionAllowed() bool {
	for cur := n; cur != nil; cur = cur.parent {
		if cur.HasAttribute(AttrExtensionAllowed) {
			return true
		}
	}
	return false
}

// Reserved reports whether the node is a structural reserved tag.
func (n *Node) Reserved() bool { return n.HasAttribute(AttrReserved) }

// UnitClassName returns the declared unit class reference, "" for none.
func (n *Node) UnitClassName() string { return n.unitClass }

// ValueClassName returns the declared value class reference, "" for none.
func (n *Node) ValueClassName() string { return n.valueClass }

// IsLeaf reports whether the node has no children.
func (n *Node) IsLeaf() bool { return len(n.children) == 0 }

// Model is one loaded vocabulary tree: a standard schema or one library.
// Immutable after load; concurrent readers need no locking.
type Model struct {
	version      *semver.Version
	library      string
	withStandard string
	roots        []*Node
	short        map[string]*Node
	paths        map[string]*Node
	unitClasses  map[string]*UnitClass
	valueClasses map[string]*ValueClass
	modifiers    map[string]*UnitModifier
	required     []*Node
}

// Version returns the parsed schema version.
func (m *Model) Version() *semver.Version { return m.version }

// Library returns the library name, "" for the standard schema.
func (m *Model) Library() string { return m.library }

// IsLibrary reports whether the model is a library schema.
func (m *Model) IsLibrary() bool { return m.library != "" }

// IsPartnered reports whether the library is partnered with a standard
// schema version and merges into the unprefixed namespace.
func (m *Model) IsPartnered() bool { return m.withStandard != "" }

// WithStandard returns the partnered standard version, "" for none.
func (m *Model) WithStandard() string { return m.withStandard }

// Roots returns the top-level nodes.
func (m *Model) Roots() []*Node { return m.roots }

// RequiredNodes returns the nodes carrying the required attribute, in
// schema declaration order.
func (m *Model) RequiredNodes() []*Node { return m.required }

// Node resolves a short name case-insensitively. Short names are unique
// within one model; load fails otherwise.
func (m *Model) Node(shortName string) *Node {
	return m.short[strings.ToLower(shortName)]
}

// ByPath resolves a full slash-separated path case-insensitively.
func (m *Model) ByPath(path string) *Node {
	return m.paths[strings.ToLower(path)]
}

// UnitClass returns the named unit class, nil when absent.
func (m *Model) UnitClass(name string) *UnitClass {
	return m.unitClasses[strings.ToLower(name)]
}

// ValueClass returns the named value class, nil when absent.
func (m *Model) ValueClass(name string) *ValueClass {
	return m.valueClasses[strings.ToLower(name)]
}

// UnitModifier returns the named SI prefix modifier, nil when absent.
func (m *Model) UnitModifier(symbol string) *UnitModifier {
	return m.modifiers[symbol]
}

// Modifiers returns the SI prefix table. Read-only; the map is shared.
func (m *Model) Modifiers() map[string]*UnitModifier { return m.modifiers }

// NodeCount returns the number of terms in the model.
func (m *Model) NodeCount() int { return len(m.short) }

// UnitClassCount returns the number of unit classes in the model.
func (m *Model) UnitClassCount() int { return len(m.unitClasses) }
