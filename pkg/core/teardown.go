package core

// DropScope destroys the scope and everything it rendered.
//
// The disconnect phase runs first: every props value the scope lent, and
// every listener or arbitrary attribute value it installed, is taken
// (see EnsureDropSafety). The destroy phase then walks the current and the
// previous render output, dropping nested scopes and reclaiming element
// identifiers, clears the scope's props, tears hooks down in insertion order,
// and finally removes the scope from the arena. Every slot that resolved to
// the scope is left unresolved.
//
// Dropping a scope that is not live is fatal.
func (d *Dom) DropScope(id ScopeID) {
	d.EnsureDropSafety(id)

	s := d.Scope(id)
	if node, ok := readyNode(s.current); ok {
		d.dropScopeInner(id, node)
	}
	if node, ok := readyNode(s.previous); ok {
		d.dropScopeInner(id, node)
	}
	s.current = nil
	s.previous = nil

	s.props.Take()
	s.props = nil

	// Children are gone by now, so hooks may release whatever they hold.
	for i, h := range s.hooks {
		if h.teardown != nil {
			h.teardown()
		}
		d.observer.HookTornDown(id, i, h)
		s.hooks[i] = nil
	}
	s.hooks = nil

	var parent *Scope
	if parentID, ok := s.Parent(); ok {
		parent, _ = d.TryScope(parentID)
	}
	for _, slot := range s.slots {
		slot.unresolve()
		if parent != nil {
			parent.borrowedProps = removeSlot(parent.borrowedProps, slot)
		}
	}
	s.slots = nil

	d.scopes.remove(id)
	d.log().Debug("scope dropped", "scope", id.String(), "name", s.name)
	d.observer.ScopeDropped(id, s.name)
}

// dropScopeInner destroys the contents of node. The node's own storage
// belongs to the render pass that produced it and is left alone.
func (d *Dom) dropScopeInner(owner ScopeID, node *VNode) {
	d.clearListeners(owner, node)

	for _, dn := range node.DynamicNodes {
		switch n := dn.(type) {
		case *ComponentNode:
			if child, ok := n.Scope(); ok {
				d.DropScope(child)
			}
			n.props.Take()
		case *FragmentNode:
			for _, child := range n.Nodes {
				d.dropScopeInner(owner, child)
			}
		case *PlaceholderNode:
			if id, ok := n.ID(); ok {
				d.TryReclaim(id)
			}
		case *TextNode:
			if id, ok := n.ID(); ok {
				d.TryReclaim(id)
			}
		}
	}

	for _, id := range node.RootIDs {
		if id != RootID {
			d.TryReclaim(id)
		}
	}
}

func (d *Dom) clearListeners(owner ScopeID, node *VNode) {
	for _, attr := range node.DynamicAttrs {
		if l, ok := attr.Value.(*ListenerValue); ok && l.Take() {
			d.observer.AttributeCleared(owner, attr)
		}
	}
}

// EnsureDropSafety severs every borrow that would let the scope's teardown
// observe another scope's state, or the other way round, without freeing
// anything.
//
// Props the scope lent to mounted children are handled first, and each
// child is made safe before its own props are cleared, so the deepest
// borrows go first. Props still borrowed elsewhere are left in place, and
// cells that are already empty are skipped without a notification.
// Listener and arbitrary attribute values the scope installed are taken
// afterwards. Both registries are drained, so a second call does nothing.
func (d *Dom) EnsureDropSafety(id ScopeID) {
	s := d.Scope(id)

	lent := s.borrowedProps
	s.borrowedProps = nil
	for _, slot := range lent {
		if child, ok := slot.Scope(); ok && child != id && d.scopes.Contains(child) {
			d.EnsureDropSafety(child)
		}
		if slot.props.IsEmpty() {
			continue
		}
		if slot.props.TryClear() {
			d.observer.PropsSevered(id, slot)
		} else {
			d.log().Debug("lent props still borrowed", "scope", id.String(), "slot", slot.Name)
			d.observer.PropsRetained(id, slot)
		}
	}

	installed := s.attributesToDrop
	s.attributesToDrop = nil
	for _, attr := range installed {
		if attr == nil {
			continue
		}
		var taken bool
		switch v := attr.Value.(type) {
		case *ListenerValue:
			taken = v.Take()
		case *AnyValue:
			taken = v.Take()
		}
		if taken {
			d.observer.AttributeCleared(id, attr)
		}
	}
}
