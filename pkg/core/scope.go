package core

import "strconv"

// ScopeID names a scope in the ScopeArena. Like ElementID it is reused once
// the scope is dropped.
type ScopeID int

// RootScope is the scope created with every Dom.
const RootScope ScopeID = 0

func (id ScopeID) String() string {
	return "s" + strconv.Itoa(int(id))
}

// RenderReturn is the output of rendering a scope: Ready, Pending or Aborted.
type RenderReturn interface {
	renderReturn()
}

// Ready is a completed render.
type Ready struct {
	Node *VNode
}

// Pending marks output that is deferred, such as a suspended subtree.
type Pending struct{}

// Aborted marks a render that bailed out without producing output.
type Aborted struct{}

func (Ready) renderReturn()   {}
func (Pending) renderReturn() {}
func (Aborted) renderReturn() {}

func readyNode(rr RenderReturn) (*VNode, bool) {
	if ready, ok := rr.(Ready); ok && ready.Node != nil {
		return ready.Node, true
	}
	return nil, false
}

// Scope is one component instance: its hooks, props and render output.
type Scope struct {
	id        ScopeID
	parent    ScopeID
	hasParent bool
	height    int
	name      string

	hooks    []*Hook
	current  RenderReturn
	previous RenderReturn
	props    *Props

	// slots resolved to this scope
	slots []*ComponentNode
	// slots in this scope's output whose props are borrowed from this scope
	borrowedProps []*ComponentNode
	// listener and arbitrary attribute values installed by this scope
	attributesToDrop []*Attribute
}

// ID returns the scope's identifier.
func (s *Scope) ID() ScopeID { return s.id }

// Parent returns the scope that mounted this one. The root scope has none.
func (s *Scope) Parent() (ScopeID, bool) { return s.parent, s.hasParent }

// Height returns the scope's distance from the root scope.
func (s *Scope) Height() int { return s.height }

// Name returns the component name the scope was mounted with.
func (s *Scope) Name() string { return s.name }

// Props returns the scope's props cell. It may be nil.
func (s *Scope) Props() *Props { return s.props }

// Current returns the latest render output, or nil if never rendered.
func (s *Scope) Current() RenderReturn { return s.current }

// Previous returns the output of the render before Current, or nil.
func (s *Scope) Previous() RenderReturn { return s.previous }

// LentProps returns how many slots borrow props from this scope and have not
// been severed yet.
func (s *Scope) LentProps() int { return len(s.borrowedProps) }

// InstalledAttributes returns how many listener or arbitrary attribute
// values this scope installed that have not been taken yet.
func (s *Scope) InstalledAttributes() int { return len(s.attributesToDrop) }

// ScopeArena is the collection of live scopes.
type ScopeArena struct {
	slots slab[*Scope]
}

// NewScopeArena creates an empty arena with room for capacity scopes.
func NewScopeArena(capacity int) *ScopeArena {
	a := &ScopeArena{}
	a.slots.reserve(capacity)
	return a
}

func (a *ScopeArena) alloc() *Scope {
	s := &Scope{}
	s.id = ScopeID(a.slots.insert(s))
	return s
}

func (a *ScopeArena) remove(id ScopeID) {
	a.slots.remove(int(id))
}

// Get returns the scope for id, if it is live.
func (a *ScopeArena) Get(id ScopeID) (*Scope, bool) {
	s := a.slots.at(int(id))
	if s == nil {
		return nil, false
	}
	return *s, true
}

// Contains reports whether id names a live scope.
func (a *ScopeArena) Contains(id ScopeID) bool {
	return a.slots.contains(int(id))
}

// Len returns the number of live scopes.
func (a *ScopeArena) Len() int {
	return a.slots.len
}

// Each visits live scopes in ascending id order until fn returns false.
func (a *ScopeArena) Each(fn func(*Scope) bool) {
	a.slots.each(func(_ int, s *Scope) bool {
		return fn(s)
	})
}
