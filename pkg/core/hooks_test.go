package core

import "testing"

type mockDisposable struct {
	disposed bool
}

func (m *mockDisposable) Dispose() {
	m.disposed = true
}

func TestUseDisposable(t *testing.T) {
	d := NewDom()
	id := d.Mount(RootScope, NewComponentNode("A", nil))

	resource := UseDisposable(d.Scope(id), "resource", func() *mockDisposable {
		return &mockDisposable{}
	})
	if resource.disposed {
		t.Error("resource should not be disposed initially")
	}
	if d.Scope(id).HookCount() != 1 {
		t.Errorf("HookCount() = %d, want 1", d.Scope(id).HookCount())
	}

	d.DropScope(id)

	if !resource.disposed {
		t.Error("resource should be disposed when the scope is dropped")
	}
}

func TestHooks_TeardownInsertionOrder(t *testing.T) {
	d := NewDom()
	id := d.Mount(RootScope, NewComponentNode("A", nil))
	s := d.Scope(id)

	var order []string
	for _, name := range []string{"first", "second", "third"} {
		s.UseHook(name, nil, func() { order = append(order, name) })
	}
	if s.Hook(1).Name != "second" {
		t.Errorf("Hook(1).Name = %q, want second", s.Hook(1).Name)
	}

	d.DropScope(id)

	want := []string{"first", "second", "third"}
	if len(order) != len(want) {
		t.Fatalf("teardown order = %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("teardown order = %v, want %v", order, want)
		}
	}
}

func TestProps_BorrowAndClear(t *testing.T) {
	p := NewProps("value")
	v, release := p.Borrow()
	if v != "value" {
		t.Errorf("Borrow() = %v, want value", v)
	}
	if p.TryClear() {
		t.Error("TryClear should refuse while borrowed")
	}
	release()
	release()
	if p.Borrowed() {
		t.Error("double release must not underflow the borrow count")
	}
	if !p.TryClear() {
		t.Error("TryClear should succeed once released")
	}
	if !p.IsEmpty() {
		t.Error("props should be empty after TryClear")
	}

	var nilProps *Props
	if !nilProps.IsEmpty() || !nilProps.TryClear() || nilProps.Take() != nil {
		t.Error("nil props should behave as an empty cell")
	}
}

func TestAttributeValues_Take(t *testing.T) {
	payload := Any(42)
	if v, ok := payload.Value(); !ok || v != 42 {
		t.Errorf("Value() = %v, %v", v, ok)
	}
	if !payload.Take() {
		t.Error("first Take should report a payload")
	}
	if payload.Take() {
		t.Error("second Take should be a no-op")
	}

	l := Listener(func(any) {})
	if l.IsEmpty() {
		t.Error("listener should hold a handler")
	}
	if !l.Take() || l.Take() {
		t.Error("listener Take should succeed once")
	}
}
