package core

// Hook is one slot of a scope's private state.
type Hook struct {
	// Name identifies the hook in traces and logs.
	Name string
	// Value is the hook's state.
	Value    any
	teardown func()
}

// UseHook appends a hook to the scope and returns it. teardown, if non-nil,
// runs when the scope is dropped. Hooks are torn down in the order they were
// added, after every scope rendered below this one is gone.
func (s *Scope) UseHook(name string, value any, teardown func()) *Hook {
	h := &Hook{Name: name, Value: value, teardown: teardown}
	s.hooks = append(s.hooks, h)
	return h
}

// HookCount returns the number of hooks in the scope.
func (s *Scope) HookCount() int { return len(s.hooks) }

// Hook returns the i-th hook in insertion order.
func (s *Scope) Hook(i int) *Hook { return s.hooks[i] }

// Disposable is implemented by resources that need explicit cleanup.
type Disposable interface {
	Dispose()
}

// UseDisposable creates a resource and registers it as a hook whose teardown
// disposes it.
//
// Example:
//
//	conn := core.UseDisposable(scope, "socket", func() *Socket {
//	    return Dial(addr)
//	})
func UseDisposable[C Disposable](s *Scope, name string, create func() C) C {
	resource := create()
	s.UseHook(name, resource, resource.Dispose)
	return resource
}

// UseBorrowedProps borrows the scope's props for the lifetime of the scope.
// The borrow is released when the hook is torn down, which keeps the props
// from being cleared during the disconnect phase of the parent's teardown.
func UseBorrowedProps(s *Scope, name string) any {
	value, release := s.props.Borrow()
	s.UseHook(name, value, release)
	return value
}
