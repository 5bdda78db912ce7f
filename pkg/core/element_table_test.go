package core

import (
	stderrors "errors"
	"testing"

	"github.com/go-drift/vdom/pkg/errors"
)

// expectInvariant runs fn and fails the test unless it panics with an
// *errors.InvariantError.
func expectInvariant(t *testing.T, fn func()) *errors.InvariantError {
	t.Helper()
	var inv *errors.InvariantError
	func() {
		defer func() {
			r := recover()
			if r == nil {
				t.Fatal("expected an invariant violation, got none")
			}
			err, ok := r.(error)
			if !ok || !stderrors.As(err, &inv) {
				t.Fatalf("expected *errors.InvariantError, got %T: %v", r, r)
			}
		}()
		fn()
	}()
	return inv
}

func TestElementTable_RootReserved(t *testing.T) {
	table := NewElementTable(0)
	if !table.Contains(RootID) {
		t.Fatal("root element should be allocated on creation")
	}
	if !table.Lookup(RootID).IsNull() {
		t.Error("root element should carry a null reference")
	}
	if got := table.AllocateNull(); got != 1 {
		t.Errorf("first allocation = %v, want e1", got)
	}
}

func TestElementTable_AllocateUnique(t *testing.T) {
	table := NewElementTable(4)
	node := &VNode{Template: "list"}
	seen := map[ElementID]bool{RootID: true}
	for i := 0; i < 100; i++ {
		id := table.AllocateForRoot(node, i%4)
		if seen[id] {
			t.Fatalf("allocation %d returned live id %v", i, id)
		}
		seen[id] = true
	}
	if table.Len() != 101 {
		t.Errorf("Len() = %d, want 101", table.Len())
	}
}

func TestElementTable_ReclaimReusesSlot(t *testing.T) {
	table := NewElementTable(0)
	node := &VNode{}
	a := table.AllocateForTemplate(node, []byte{0})
	b := table.AllocateForTemplate(node, []byte{1})
	c := table.AllocateForTemplate(node, []byte{2})

	ref := table.Reclaim(b)
	if ref.Template != node || !ref.Path.Equal([]byte{1}) {
		t.Errorf("reclaimed ref = %+v, want template and path [1]", ref)
	}
	if table.Contains(b) {
		t.Errorf("%v should be free after reclaim", b)
	}

	reused := table.AllocateNull()
	if reused != b {
		t.Errorf("allocation after reclaim = %v, want reused %v", reused, b)
	}
	if table.Cap() != 4 {
		t.Errorf("Cap() = %d, want 4 (no growth while a slot is free)", table.Cap())
	}
	if !table.Contains(a) || !table.Contains(c) {
		t.Error("unrelated identifiers must stay allocated")
	}
}

func TestElementTable_ReuseOrder(t *testing.T) {
	table := NewElementTable(0)
	ids := make([]ElementID, 5)
	for i := range ids {
		ids[i] = table.AllocateNull()
	}
	table.Reclaim(ids[1])
	table.Reclaim(ids[3])

	// Most recently freed first.
	if got := table.AllocateNull(); got != ids[3] {
		t.Errorf("first reuse = %v, want %v", got, ids[3])
	}
	if got := table.AllocateNull(); got != ids[1] {
		t.Errorf("second reuse = %v, want %v", got, ids[1])
	}
	if got := table.AllocateNull(); got != 6 {
		t.Errorf("after free list drains = %v, want e6", got)
	}
}

func TestElementTable_RoundTripChurn(t *testing.T) {
	table := NewElementTable(0)
	live := map[ElementID]bool{}
	var order []ElementID
	for round := 0; round < 50; round++ {
		for i := 0; i < 3; i++ {
			id := table.AllocateNull()
			if live[id] || id == RootID {
				t.Fatalf("round %d: allocated live id %v", round, id)
			}
			live[id] = true
			order = append(order, id)
		}
		for i := 0; i < 2; i++ {
			id := order[0]
			order = order[1:]
			if _, ok := table.TryReclaim(id); !ok {
				t.Fatalf("round %d: %v should be allocated", round, id)
			}
			delete(live, id)
		}
	}
	if table.Len() != len(live)+1 {
		t.Errorf("Len() = %d, want %d", table.Len(), len(live)+1)
	}
	// Reuse keeps the table dense: at most one slot per live id plus the root.
	if table.Cap() > len(live)+3 {
		t.Errorf("Cap() = %d, table grew past %d live ids", table.Cap(), len(live))
	}
}

func TestElementTable_ReclaimRootFaults(t *testing.T) {
	tests := []struct {
		name string
		fn   func(*ElementTable)
	}{
		{"Reclaim", func(tb *ElementTable) { tb.Reclaim(RootID) }},
		{"TryReclaim", func(tb *ElementTable) { tb.TryReclaim(RootID) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table := NewElementTable(0)
			for i := 0; i < 3; i++ {
				table.AllocateNull()
			}
			inv := expectInvariant(t, func() { tt.fn(table) })
			if inv.Reason != "cannot reclaim the root element" {
				t.Errorf("Reason = %q", inv.Reason)
			}
			if want := "core.ElementTable." + tt.name; inv.Op != want {
				t.Errorf("Op = %q, want %q", inv.Op, want)
			}
			if !table.Contains(RootID) {
				t.Error("root element must survive a refused reclaim")
			}
		})
	}
}

func TestElementTable_TryReclaimAbsent(t *testing.T) {
	table := NewElementTable(0)
	id := table.AllocateNull()
	if _, ok := table.TryReclaim(id); !ok {
		t.Fatal("first reclaim should succeed")
	}
	if _, ok := table.TryReclaim(id); ok {
		t.Error("second reclaim should report absence")
	}
	if _, ok := table.TryReclaim(ElementID(999)); ok {
		t.Error("out of range id should report absence")
	}
	expectInvariant(t, func() { table.Reclaim(id) })
}

func TestElementTable_UpdateTemplate(t *testing.T) {
	table := NewElementTable(0)
	oldNode := &VNode{Template: "old"}
	newNode := &VNode{Template: "new"}
	id := table.AllocateForTemplate(oldNode, []byte{0, 2, 1})

	table.UpdateTemplate(id, newNode)

	ref := table.Lookup(id)
	if ref.Template != newNode {
		t.Errorf("template = %v, want the new node", ref.Template)
	}
	if !ref.Path.Equal([]byte{0, 2, 1}) {
		t.Errorf("path = %v, want unchanged deep[0 2 1]", ref.Path)
	}

	rootID := table.AllocateForRoot(oldNode, 3)
	table.UpdateTemplate(rootID, newNode)
	if index, ok := table.Lookup(rootID).Path.RootIndex(); !ok || index != 3 {
		t.Errorf("root path changed to %v", table.Lookup(rootID).Path)
	}
}

func TestElementTable_UnallocatedFaults(t *testing.T) {
	table := NewElementTable(0)
	expectInvariant(t, func() { table.Lookup(5) })
	expectInvariant(t, func() { table.UpdateTemplate(5, &VNode{}) })
	if _, ok := table.Get(5); ok {
		t.Error("Get should report absence without faulting")
	}
}

func TestElementTable_Snapshot(t *testing.T) {
	table := NewElementTable(0)
	for i := 0; i < 4; i++ {
		table.AllocateNull()
	}
	table.Reclaim(2)
	got := table.Snapshot()
	want := []ElementID{0, 1, 3, 4}
	if len(got) != len(want) {
		t.Fatalf("Snapshot() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Snapshot() = %v, want %v", got, want)
		}
	}
}
