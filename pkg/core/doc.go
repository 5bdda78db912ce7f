// Package core provides the memory lifecycle of a retained-mode UI tree:
// element identifiers, the scopes (component instances) that own rendered
// templates, and the ordered teardown of a scope subtree.
//
// # Element Identifiers
//
// Every trackable element rendered into the tree gets an [ElementID] from the
// [ElementTable]. Identifiers are unique among live elements but are reused
// once reclaimed, so a slot is only recycled after everything that pointed
// through it has been torn down. Identifier 0 names the tree root; it is
// allocated when the table is created and can never be reclaimed:
//
//	dom := core.NewDom()
//	node := &core.VNode{Template: "app"}
//	id := dom.NextRoot(node, 0)
//	ref := dom.Element(id) // ref.Template == node
//
// # Scopes
//
// A [Scope] holds a component's hooks, its current and previous render
// output and its props. Child scopes are mounted from a [ComponentNode] slot
// in the parent's output. When the slot's props are borrowed from the parent
// (the slot is not Static) the parent records the slot so the borrow can be
// severed before the parent's state goes away.
//
// # Teardown
//
// [Dom.DropScope] destroys a scope and everything it rendered in two phases.
// The disconnect phase ([Dom.EnsureDropSafety]) takes every props value the
// scope lent to its children, deepest first, and then every listener or
// arbitrary attribute value it installed. Only after that does the destroy
// phase walk the rendered templates, drop nested scopes, reclaim element
// identifiers and finally tear down hooks in the order they were added.
//
// # Concurrency
//
// A Dom is not safe for concurrent use. All calls must come from the single
// driver that owns the tree.
package core
