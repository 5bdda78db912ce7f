package core

import (
	"github.com/go-drift/vdom/pkg/errors"
)

// VNode is one rendered instance of a template. It is produced by a render
// pass and treated as immutable afterwards: the engine only ever clears the
// listeners it carries.
type VNode struct {
	// Template names the static template this node instantiates.
	Template string
	// RootIDs holds the identifiers of the top-level elements. RootID marks
	// an element that is not tracked individually.
	RootIDs []ElementID
	// DynamicNodes are the holes of the template filled at render time.
	DynamicNodes []DynamicNode
	// DynamicAttrs are the attributes whose values were computed at render
	// time, listeners included.
	DynamicAttrs []*Attribute
}

// DynamicNode is a templated hole: a *ComponentNode, *FragmentNode,
// *PlaceholderNode or *TextNode.
type DynamicNode interface {
	dynamicNode()
}

// ComponentNode is a slot rendering a child component. Once the child is
// mounted the slot resolves to the child's scope; the slot records only that
// lookup, the parent scope owns the child's lifetime.
type ComponentNode struct {
	// Name is the component's display name.
	Name string
	// Static marks props the child owns outright. Non-static props are
	// borrowed from the parent and must be severed before the parent's
	// state is destroyed.
	Static bool

	props    *Props
	scope    ScopeID
	resolved bool
}

// NewComponentNode returns an unmounted component slot carrying props.
func NewComponentNode(name string, props any) *ComponentNode {
	return &ComponentNode{Name: name, props: NewProps(props)}
}

// NewStaticComponentNode returns an unmounted component slot whose props are
// moved into the child scope when it mounts.
func NewStaticComponentNode(name string, props any) *ComponentNode {
	return &ComponentNode{Name: name, Static: true, props: NewProps(props)}
}

func (*ComponentNode) dynamicNode() {}

// Props returns the props cell of the slot. It may be nil.
func (c *ComponentNode) Props() *Props {
	return c.props
}

// Scope returns the mounted child scope, if the slot has resolved.
func (c *ComponentNode) Scope() (ScopeID, bool) {
	return c.scope, c.resolved
}

func (c *ComponentNode) resolve(id ScopeID) {
	if c.resolved && c.scope != id {
		panic(errors.Invariant("core.ComponentNode.resolve",
			"slot %q already resolved to scope %d, cannot resolve to %d", c.Name, c.scope, id))
	}
	c.scope = id
	c.resolved = true
}

func (c *ComponentNode) unresolve() {
	c.scope = 0
	c.resolved = false
}

// FragmentNode is an ordered list of further rendered nodes.
type FragmentNode struct {
	Nodes []*VNode
}

func (*FragmentNode) dynamicNode() {}

// idSlot holds an element identifier assigned after creation.
type idSlot struct {
	id  ElementID
	set bool
}

// ID returns the assigned identifier, if any.
func (s *idSlot) ID() (ElementID, bool) {
	return s.id, s.set
}

// SetID assigns the identifier.
func (s *idSlot) SetID(id ElementID) {
	s.id = id
	s.set = true
}

// PlaceholderNode stands in for content that renders nothing, such as an
// empty list or a suspended subtree.
type PlaceholderNode struct {
	idSlot
}

func (*PlaceholderNode) dynamicNode() {}

// TextNode is a dynamic text node.
type TextNode struct {
	idSlot
	Value string
}

func (*TextNode) dynamicNode() {}
