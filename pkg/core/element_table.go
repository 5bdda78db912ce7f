package core

import (
	"github.com/go-drift/vdom/pkg/errors"
)

// ElementTable maps element identifiers to their ElementRef. Slots freed by
// reclamation are reused by later allocations, so identifiers stay dense and
// the table stays bounded no matter how much the tree churns.
//
// The root identifier is allocated when the table is created. Every
// reclamation path refuses it with a fatal fault.
type ElementTable struct {
	slots slab[ElementRef]
}

// NewElementTable creates a table with room for capacity identifiers and
// RootID already allocated.
func NewElementTable(capacity int) *ElementTable {
	t := &ElementTable{}
	t.slots.reserve(capacity)
	t.slots.insert(NullRef())
	return t
}

// Allocate reserves the next free identifier and stores ref under it.
func (t *ElementTable) Allocate(ref ElementRef) ElementID {
	return ElementID(t.slots.insert(ref))
}

// AllocateForTemplate allocates an identifier for the element at path inside
// template.
func (t *ElementTable) AllocateForTemplate(template *VNode, path []byte) ElementID {
	return t.Allocate(ElementRef{Template: template, Path: DeepPath(path...)})
}

// AllocateForRoot allocates an identifier for the index-th top-level element
// of template.
func (t *ElementTable) AllocateForRoot(template *VNode, index int) ElementID {
	return t.Allocate(ElementRef{Template: template, Path: RootPath(index)})
}

// AllocateNull allocates an identifier for a node that is not individually
// addressable.
func (t *ElementTable) AllocateNull() ElementID {
	return t.Allocate(NullRef())
}

// Reclaim frees id and returns the reference it held. Reclaiming RootID or an
// identifier that is not allocated is fatal.
func (t *ElementTable) Reclaim(id ElementID) ElementRef {
	if id == RootID {
		panic(errors.Invariant("core.ElementTable.Reclaim", "cannot reclaim the root element"))
	}
	ref, ok := t.slots.remove(int(id))
	if !ok {
		panic(errors.Invariant("core.ElementTable.Reclaim", "cannot reclaim %v: not allocated", id))
	}
	return ref
}

// TryReclaim frees id and returns the reference it held. It reports false
// when id was already free. Reclaiming RootID is fatal regardless.
func (t *ElementTable) TryReclaim(id ElementID) (ElementRef, bool) {
	if id == RootID {
		panic(errors.Invariant("core.ElementTable.TryReclaim", "cannot reclaim the root element"))
	}
	return t.slots.remove(int(id))
}

// UpdateTemplate repoints id at template, keeping its path. The caller
// guarantees id is allocated.
func (t *ElementTable) UpdateTemplate(id ElementID, template *VNode) {
	ref := t.slots.at(int(id))
	if ref == nil {
		panic(errors.Invariant("core.ElementTable.UpdateTemplate", "%v is not allocated", id))
	}
	ref.Template = template
}

// Lookup returns the reference stored for id. Looking up an identifier that
// is not allocated is fatal.
func (t *ElementTable) Lookup(id ElementID) ElementRef {
	ref := t.slots.at(int(id))
	if ref == nil {
		panic(errors.Invariant("core.ElementTable.Lookup", "%v is not allocated", id))
	}
	return *ref
}

// Get returns the reference stored for id, if any.
func (t *ElementTable) Get(id ElementID) (ElementRef, bool) {
	ref := t.slots.at(int(id))
	if ref == nil {
		return ElementRef{}, false
	}
	return *ref, true
}

// Contains reports whether id is allocated.
func (t *ElementTable) Contains(id ElementID) bool {
	return t.slots.contains(int(id))
}

// Len returns the number of allocated identifiers, RootID included.
func (t *ElementTable) Len() int {
	return t.slots.len
}

// Cap returns the number of slots backing the table.
func (t *ElementTable) Cap() int {
	return len(t.slots.entries)
}

// Each visits allocated identifiers in ascending order until fn returns false.
func (t *ElementTable) Each(fn func(ElementID, ElementRef) bool) {
	t.slots.each(func(key int, ref ElementRef) bool {
		return fn(ElementID(key), ref)
	})
}

// Snapshot returns the allocated identifiers in ascending order.
func (t *ElementTable) Snapshot() []ElementID {
	ids := make([]ElementID, 0, t.slots.len)
	t.Each(func(id ElementID, _ ElementRef) bool {
		ids = append(ids, id)
		return true
	})
	return ids
}
