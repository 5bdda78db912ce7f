package core

import (
	"log/slog"
	"slices"

	"github.com/go-drift/vdom/pkg/errors"
	"github.com/go-drift/vdom/pkg/log"
)

// Dom owns the element table and the scope arena of one tree. It is the
// single entry point the reconciler uses to mint and reclaim identifiers,
// mount and render scopes, and tear scopes down.
//
// A Dom is not safe for concurrent use.
type Dom struct {
	elements *ElementTable
	scopes   *ScopeArena
	observer Observer
	logger   *slog.Logger
}

type options struct {
	elementCapacity int
	scopeCapacity   int
	observer        Observer
	logger          *slog.Logger
}

// Option configures a Dom.
type Option func(*options)

// WithElementCapacity preallocates room for n element identifiers.
func WithElementCapacity(n int) Option {
	return func(o *options) { o.elementCapacity = n }
}

// WithScopeCapacity preallocates room for n scopes.
func WithScopeCapacity(n int) Option {
	return func(o *options) { o.scopeCapacity = n }
}

// WithObserver reports teardown steps to obs.
func WithObserver(obs Observer) Option {
	return func(o *options) { o.observer = obs }
}

// WithLogger sets the logger. The package logger is used by default.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// NewDom creates a tree holding only RootID and the root scope.
func NewDom(opts ...Option) *Dom {
	o := options{elementCapacity: 64, scopeCapacity: 16}
	for _, opt := range opts {
		opt(&o)
	}
	if o.observer == nil {
		o.observer = NopObserver{}
	}
	d := &Dom{
		elements: NewElementTable(o.elementCapacity),
		scopes:   NewScopeArena(o.scopeCapacity),
		observer: o.observer,
		logger:   o.logger,
	}
	root := d.scopes.alloc()
	root.name = "root"
	return d
}

func (d *Dom) log() *slog.Logger {
	if d.logger != nil {
		return d.logger
	}
	return log.L
}

// Elements returns the element table.
func (d *Dom) Elements() *ElementTable { return d.elements }

// Scopes returns the scope arena.
func (d *Dom) Scopes() *ScopeArena { return d.scopes }

// NextElement allocates an identifier for the element at path in template.
func (d *Dom) NextElement(template *VNode, path []byte) ElementID {
	return d.elements.AllocateForTemplate(template, path)
}

// NextRoot allocates an identifier for the index-th root of template.
func (d *Dom) NextRoot(template *VNode, index int) ElementID {
	return d.elements.AllocateForRoot(template, index)
}

// NextNull allocates an identifier that names no template node.
func (d *Dom) NextNull() ElementID {
	return d.elements.AllocateNull()
}

// Element returns the reference stored for id. It is fatal if id is not
// allocated.
func (d *Dom) Element(id ElementID) ElementRef {
	return d.elements.Lookup(id)
}

// UpdateTemplate repoints id at template after an in-place re-render.
func (d *Dom) UpdateTemplate(id ElementID, template *VNode) {
	d.elements.UpdateTemplate(id, template)
}

// Reclaim frees id. It is fatal if id is RootID or not allocated.
func (d *Dom) Reclaim(id ElementID) {
	ref := d.elements.Reclaim(id)
	d.observer.ElementReclaimed(id, ref)
}

// TryReclaim frees id if it is allocated and reports whether it was.
// Reclaiming RootID is fatal.
func (d *Dom) TryReclaim(id ElementID) bool {
	ref, ok := d.elements.TryReclaim(id)
	if !ok {
		d.log().Debug("element already reclaimed", "element", id.String())
		return false
	}
	d.observer.ElementReclaimed(id, ref)
	return true
}

// Scope returns the live scope for id. It is fatal if there is none.
func (d *Dom) Scope(id ScopeID) *Scope {
	s, ok := d.scopes.Get(id)
	if !ok {
		panic(errors.Invariant("core.Dom.Scope", "scope %d is not allocated", id))
	}
	return s
}

// TryScope returns the live scope for id, if any.
func (d *Dom) TryScope(id ScopeID) (*Scope, bool) {
	return d.scopes.Get(id)
}

// Mount creates the child scope for slot under parent and resolves the slot
// to it.
//
// Static props are moved out of the slot into a cell owned by the child.
// Otherwise the child shares the slot's cell and the parent records the slot
// as lent, so the props can be severed before the parent's state goes away.
func (d *Dom) Mount(parent ScopeID, slot *ComponentNode) ScopeID {
	p := d.Scope(parent)
	if _, ok := slot.Scope(); ok {
		panic(errors.Invariant("core.Dom.Mount", "slot %q is already mounted", slot.Name))
	}
	child := d.scopes.alloc()
	child.name = slot.Name
	child.parent = parent
	child.hasParent = true
	child.height = p.height + 1
	d.attachProps(p, child, slot)
	d.resolve(slot, child)
	d.log().Debug("scope mounted", "scope", child.id.String(), "name", child.name, "parent", parent.String())
	return child.id
}

// Carry moves the scope mounted at from onto the slot to, as the reconciler
// does when a component survives a re-render. The props of to replace the
// scope's props.
//
// The scope is released from from, so only to resolves to it afterwards.
// Carrying a slot onto itself does nothing.
func (d *Dom) Carry(from, to *ComponentNode) {
	if from == to {
		return
	}
	id, ok := from.Scope()
	if !ok {
		panic(errors.Invariant("core.Dom.Carry", "slot %q is not mounted", from.Name))
	}
	s := d.Scope(id)
	if parentID, ok := s.Parent(); ok {
		parent := d.Scope(parentID)
		parent.borrowedProps = removeSlot(parent.borrowedProps, from)
		d.attachProps(parent, s, to)
	} else {
		s.props = NewProps(to.props.Take())
	}
	s.slots = removeSlot(s.slots, from)
	from.unresolve()
	d.resolve(to, s)
}

func removeSlot(slots []*ComponentNode, slot *ComponentNode) []*ComponentNode {
	return slices.DeleteFunc(slots, func(c *ComponentNode) bool { return c == slot })
}

func (d *Dom) attachProps(parent, child *Scope, slot *ComponentNode) {
	if slot.Static {
		child.props = NewProps(slot.props.Take())
		return
	}
	if slot.props == nil {
		slot.props = NewProps(nil)
	}
	child.props = slot.props
	parent.borrowedProps = append(parent.borrowedProps, slot)
}

func (d *Dom) resolve(slot *ComponentNode, s *Scope) {
	slot.resolve(s.id)
	s.slots = append(s.slots, slot)
}

// Render records rr as the scope's current output. The output it replaces is
// kept as the previous output for one more generation. Listener and
// arbitrary attribute values in a Ready node, fragments included, are
// registered for the disconnect phase.
//
// The output that falls out of the previous slot is disconnected: its
// listener and arbitrary attribute values are taken and unregistered, so
// the registry only ever covers the two kept generations.
func (d *Dom) Render(id ScopeID, rr RenderReturn) {
	s := d.Scope(id)
	discarded := s.previous
	s.previous = s.current
	s.current = rr
	if node, ok := readyNode(rr); ok {
		for _, attr := range collectAttributes(nil, node) {
			if !slices.Contains(s.attributesToDrop, attr) {
				s.attributesToDrop = append(s.attributesToDrop, attr)
			}
		}
	}
	if node, ok := readyNode(discarded); ok {
		d.disconnectFrame(s, node)
	}
}

func collectAttributes(dst []*Attribute, node *VNode) []*Attribute {
	for _, attr := range node.DynamicAttrs {
		if attr == nil {
			continue
		}
		switch attr.Value.(type) {
		case *ListenerValue, *AnyValue:
			dst = append(dst, attr)
		}
	}
	for _, dn := range node.DynamicNodes {
		if frag, ok := dn.(*FragmentNode); ok {
			for _, child := range frag.Nodes {
				dst = collectAttributes(dst, child)
			}
		}
	}
	return dst
}

// disconnectFrame takes the attribute values of a frame that left the scope.
// Attributes still referenced by a kept generation are left alone.
func (d *Dom) disconnectFrame(s *Scope, node *VNode) {
	stale := map[*Attribute]bool{}
	for _, attr := range collectAttributes(nil, node) {
		stale[attr] = true
	}
	for _, rr := range []RenderReturn{s.current, s.previous} {
		if kept, ok := readyNode(rr); ok {
			for _, attr := range collectAttributes(nil, kept) {
				delete(stale, attr)
			}
		}
	}
	if len(stale) == 0 {
		return
	}
	s.attributesToDrop = slices.DeleteFunc(s.attributesToDrop, func(attr *Attribute) bool {
		return stale[attr]
	})
	for attr := range stale {
		switch v := attr.Value.(type) {
		case *ListenerValue:
			v.Take()
		case *AnyValue:
			v.Take()
		}
	}
	d.log().Debug("frame disconnected", "scope", s.id.String(), "attributes", len(stale))
}

// InstallAttribute registers attr as installed by the scope, so its value is
// taken during the scope's disconnect phase.
func (d *Dom) InstallAttribute(id ScopeID, attr *Attribute) {
	s := d.Scope(id)
	s.attributesToDrop = append(s.attributesToDrop, attr)
}
