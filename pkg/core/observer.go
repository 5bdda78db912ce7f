package core

// Observer is notified of each step of a teardown, in the order the steps
// happen. Implementations must not mutate the Dom.
type Observer interface {
	// PropsSevered is called when props that owner lent to slot are cleared.
	PropsSevered(owner ScopeID, slot *ComponentNode)
	// PropsRetained is called when props that owner lent to slot could not
	// be cleared because they were still borrowed.
	PropsRetained(owner ScopeID, slot *ComponentNode)
	// AttributeCleared is called when a listener or arbitrary attribute
	// value installed by owner is taken.
	AttributeCleared(owner ScopeID, attr *Attribute)
	// ElementReclaimed is called after id is freed.
	ElementReclaimed(id ElementID, ref ElementRef)
	// HookTornDown is called after the index-th hook of scope is torn down.
	HookTornDown(scope ScopeID, index int, hook *Hook)
	// ScopeDropped is called once scope has been removed from the arena.
	ScopeDropped(scope ScopeID, name string)
}

// NopObserver ignores every notification.
type NopObserver struct{}

func (NopObserver) PropsSevered(ScopeID, *ComponentNode)   {}
func (NopObserver) PropsRetained(ScopeID, *ComponentNode)  {}
func (NopObserver) AttributeCleared(ScopeID, *Attribute)   {}
func (NopObserver) ElementReclaimed(ElementID, ElementRef) {}
func (NopObserver) HookTornDown(ScopeID, int, *Hook)       {}
func (NopObserver) ScopeDropped(ScopeID, string)           {}
