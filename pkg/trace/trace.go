// Package trace records the steps of a scope teardown so they can be
// inspected, compared against expectations, and stored on disk.
package trace

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/go-drift/vdom/pkg/core"
)

// Kind identifies a teardown step.
type Kind uint8

const (
	// KindSever is a lent props value being cleared.
	KindSever Kind = iota + 1
	// KindRetain is a lent props value left in place because it was borrowed.
	KindRetain
	// KindClear is a listener or arbitrary attribute value being taken.
	KindClear
	// KindReclaim is an element identifier being freed.
	KindReclaim
	// KindHook is a hook being torn down.
	KindHook
	// KindDrop is a scope leaving the arena.
	KindDrop
)

func (k Kind) String() string {
	switch k {
	case KindSever:
		return "sever"
	case KindRetain:
		return "retain"
	case KindClear:
		return "clear"
	case KindReclaim:
		return "reclaim"
	case KindHook:
		return "hook"
	case KindDrop:
		return "drop"
	default:
		return "unknown"
	}
}

// Event is one recorded teardown step.
type Event struct {
	Kind    Kind   `msgpack:"kind"`
	Scope   int    `msgpack:"scope"`
	Element int    `msgpack:"element,omitempty"`
	Index   int    `msgpack:"index,omitempty"`
	Target  string `msgpack:"target,omitempty"`
	// Path locates a reclaimed element in its template: dotted child
	// indices such as "0.2", or "#1" for the second top-level element.
	// Empty for identifiers that named no node.
	Path string `msgpack:"path,omitempty"`
}

// String renders the event in the compact form used by scenario
// expectations, e.g. "sever s1->Header" or "reclaim e4".
func (e Event) String() string {
	scope := core.ScopeID(e.Scope).String()
	switch e.Kind {
	case KindSever, KindRetain:
		return fmt.Sprintf("%s %s->%s", e.Kind, scope, e.Target)
	case KindReclaim:
		return fmt.Sprintf("%s %s", e.Kind, core.ElementID(e.Element))
	default:
		return fmt.Sprintf("%s %s %s", e.Kind, scope, e.Target)
	}
}

// Trace is the outcome of one teardown.
type Trace struct {
	// Scenario names the scenario that produced the trace.
	Scenario string `msgpack:"scenario"`
	// Dropped is the scope the teardown started from.
	Dropped int `msgpack:"dropped"`
	// Events are the steps in the order they happened.
	Events []Event `msgpack:"events"`
	// LiveElements are the identifiers still allocated afterwards.
	LiveElements []int `msgpack:"live_elements"`
	// LiveScopes is the number of scopes still in the arena afterwards.
	LiveScopes int `msgpack:"live_scopes"`
	// LiveScopeNames labels each live scope as "s2 Header", in id order.
	LiveScopeNames []string `msgpack:"live_scope_names"`
}

// Lines returns the events in their compact form.
func (t *Trace) Lines() []string {
	lines := make([]string, len(t.Events))
	for i, e := range t.Events {
		lines[i] = e.String()
	}
	return lines
}

// Count returns how many events of kind k were recorded.
func (t *Trace) Count(k Kind) int {
	n := 0
	for _, e := range t.Events {
		if e.Kind == k {
			n++
		}
	}
	return n
}

// Recorder is a core.Observer that appends every step to a Trace.
type Recorder struct {
	events []Event
}

var _ core.Observer = (*Recorder)(nil)

// NewRecorder returns an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) PropsSevered(owner core.ScopeID, slot *core.ComponentNode) {
	r.events = append(r.events, Event{Kind: KindSever, Scope: int(owner), Target: slot.Name})
}

func (r *Recorder) PropsRetained(owner core.ScopeID, slot *core.ComponentNode) {
	r.events = append(r.events, Event{Kind: KindRetain, Scope: int(owner), Target: slot.Name})
}

func (r *Recorder) AttributeCleared(owner core.ScopeID, attr *core.Attribute) {
	r.events = append(r.events, Event{Kind: KindClear, Scope: int(owner), Target: attr.Name})
}

func (r *Recorder) ElementReclaimed(id core.ElementID, ref core.ElementRef) {
	r.events = append(r.events, Event{Kind: KindReclaim, Element: int(id), Path: pathLabel(ref)})
}

func pathLabel(ref core.ElementRef) string {
	if ref.IsNull() {
		return ""
	}
	switch ref.Path.Kind() {
	case core.PathRoot:
		index, _ := ref.Path.RootIndex()
		return "#" + strconv.Itoa(index)
	default:
		indices := ref.Path.Indices()
		parts := make([]string, len(indices))
		for i, b := range indices {
			parts[i] = strconv.Itoa(int(b))
		}
		return strings.Join(parts, ".")
	}
}

func (r *Recorder) HookTornDown(scope core.ScopeID, index int, hook *core.Hook) {
	r.events = append(r.events, Event{Kind: KindHook, Scope: int(scope), Index: index, Target: hook.Name})
}

func (r *Recorder) ScopeDropped(scope core.ScopeID, name string) {
	r.events = append(r.events, Event{Kind: KindDrop, Scope: int(scope), Target: name})
}

// Reset discards recorded events, e.g. those produced while building a tree.
func (r *Recorder) Reset() {
	r.events = nil
}

// Events returns the recorded events.
func (r *Recorder) Events() []Event {
	return r.events
}

// Finish snapshots the state of d after dropping the given scope.
func (r *Recorder) Finish(scenario string, dropped core.ScopeID, d *core.Dom) *Trace {
	t := &Trace{
		Scenario:   scenario,
		Dropped:    int(dropped),
		Events:     append([]Event(nil), r.events...),
		LiveScopes: d.Scopes().Len(),
	}
	for _, id := range d.Elements().Snapshot() {
		t.LiveElements = append(t.LiveElements, int(id))
	}
	d.Scopes().Each(func(s *core.Scope) bool {
		t.LiveScopeNames = append(t.LiveScopeNames, s.ID().String()+" "+s.Name())
		return true
	})
	return t
}
