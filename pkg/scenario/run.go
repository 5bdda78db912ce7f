package scenario

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"fortio.org/safecast"

	"github.com/go-drift/vdom/pkg/core"
	"github.com/go-drift/vdom/pkg/errors"
	"github.com/go-drift/vdom/pkg/log"
	"github.com/go-drift/vdom/pkg/trace"
)

// Built is a scenario tree mounted into a Dom.
type Built struct {
	Dom *core.Dom
	// Top is the scope built from Scenario.Root.
	Top core.ScopeID
	// Scopes maps scope names to ids. A repeated name maps to its first
	// occurrence in build order.
	Scopes map[string]core.ScopeID
}

type childMount struct {
	slot *core.ComponentNode
	spec *ScopeSpec
}

type builder struct {
	dom    *core.Dom
	scopes map[string]core.ScopeID
}

// Build mounts the scenario tree into d under the root scope.
func (s *Scenario) Build(d *core.Dom) (*Built, error) {
	b := &builder{dom: d, scopes: map[string]core.ScopeID{}}
	top, err := b.mount(core.RootScope, s.Root, nil)
	if err != nil {
		return nil, err
	}
	return &Built{Dom: d, Top: top, Scopes: b.scopes}, nil
}

func (b *builder) mount(parent core.ScopeID, spec *ScopeSpec, slot *core.ComponentNode) (core.ScopeID, error) {
	if slot == nil {
		slot = newSlot(spec)
	}
	id := b.dom.Mount(parent, slot)
	if _, ok := b.scopes[spec.Name]; !ok {
		b.scopes[spec.Name] = id
	}

	scope := b.dom.Scope(id)
	for _, name := range spec.Hooks {
		scope.UseHook(name, nil, nil)
	}
	if spec.Borrow {
		core.UseBorrowedProps(scope, "props")
	}

	if spec.Previous != nil {
		if err := b.render(id, spec.Previous); err != nil {
			return 0, err
		}
	}
	switch {
	case spec.Pending:
		b.dom.Render(id, core.Pending{})
	case spec.Render != nil:
		if err := b.render(id, spec.Render); err != nil {
			return 0, err
		}
	}
	return id, nil
}

func newSlot(spec *ScopeSpec) *core.ComponentNode {
	var props any
	if spec.Props != "" {
		props = spec.Props
	}
	if spec.Static {
		return core.NewStaticComponentNode(spec.Name, props)
	}
	return core.NewComponentNode(spec.Name, props)
}

// render builds a node for scope, records it as the scope's output, then
// mounts the components it contains.
func (b *builder) render(scope core.ScopeID, spec *NodeSpec) error {
	var children []childMount
	node, err := b.node(spec, nil, &children)
	if err != nil {
		return err
	}
	b.dom.Render(scope, core.Ready{Node: node})
	for _, c := range children {
		if _, err := b.mount(scope, c.spec, c.slot); err != nil {
			return err
		}
	}
	return nil
}

func (b *builder) node(spec *NodeSpec, prefix []byte, children *[]childMount) (*core.VNode, error) {
	v := &core.VNode{Template: spec.Template}

	for i, kind := range spec.Roots {
		switch kind {
		case "element":
			v.RootIDs = append(v.RootIDs, b.dom.NextRoot(v, i))
		case "root":
			v.RootIDs = append(v.RootIDs, core.RootID)
		case "null":
			v.RootIDs = append(v.RootIDs, b.dom.NextNull())
		default:
			return nil, fmt.Errorf("unknown root kind %q", kind)
		}
	}

	next := 0
	nextPath := func() ([]byte, error) {
		seg, err := safecast.Conv[uint8](next)
		if err != nil {
			return nil, fmt.Errorf("template %q: too many dynamic nodes: %w", spec.Template, err)
		}
		next++
		return append(slices.Clone(prefix), seg), nil
	}

	for _, value := range spec.Texts {
		path, err := nextPath()
		if err != nil {
			return nil, err
		}
		text := &core.TextNode{Value: value}
		text.SetID(b.dom.NextElement(v, path))
		v.DynamicNodes = append(v.DynamicNodes, text)
	}
	for i := 0; i < spec.Placeholders; i++ {
		path, err := nextPath()
		if err != nil {
			return nil, err
		}
		p := &core.PlaceholderNode{}
		if i == 0 && spec.SharePlaceholder {
			p.SetID(v.RootIDs[0])
		} else {
			p.SetID(b.dom.NextElement(v, path))
		}
		v.DynamicNodes = append(v.DynamicNodes, p)
	}
	for i := range spec.Fragments {
		path, err := nextPath()
		if err != nil {
			return nil, err
		}
		child, err := b.node(&spec.Fragments[i], path, children)
		if err != nil {
			return nil, err
		}
		v.DynamicNodes = append(v.DynamicNodes, &core.FragmentNode{Nodes: []*core.VNode{child}})
	}
	for i := range spec.Children {
		child := &spec.Children[i]
		slot := newSlot(child)
		v.DynamicNodes = append(v.DynamicNodes, slot)
		*children = append(*children, childMount{slot: slot, spec: child})
	}

	for _, name := range spec.Listeners {
		v.DynamicAttrs = append(v.DynamicAttrs, &core.Attribute{Name: name, Value: core.Listener(func(any) {})})
	}
	for _, name := range spec.Values {
		v.DynamicAttrs = append(v.DynamicAttrs, &core.Attribute{Name: name, Value: core.Any(name)})
	}
	return v, nil
}

// Run builds the scenario in a fresh Dom, drops the target scope, and
// returns the recorded teardown. Invariant violations raised by the engine
// are returned as errors of kind errors.KindInvariant.
func (s *Scenario) Run(ctx context.Context, opts ...core.Option) (t *trace.Trace, err error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	defer errors.Capture("scenario.Run", &err)

	rec := trace.NewRecorder()
	d := core.NewDom(append(opts, core.WithObserver(rec))...)
	built, err := s.Build(d)
	if err != nil {
		return nil, &errors.VdomError{Op: "scenario.Build", Kind: errors.KindScenario, Err: err}
	}
	target := built.Top
	if s.Drop != "" {
		target = built.Scopes[s.Drop]
	}

	rec.Reset()
	d.DropScope(target)
	t = rec.Finish(s.Name, target, d)
	log.Debug("scenario finished", "scenario", s.Name, "events", len(t.Events), "live_elements", len(t.LiveElements))
	return t, nil
}

// Verify compares t against the scenario's expectations. When the whole
// tree was dropped it also checks that nothing but the root element and the
// root scope survived.
func (s *Scenario) Verify(t *trace.Trace) error {
	var problems []string
	if len(s.Expect) > 0 {
		got := t.Lines()
		if !slices.Equal(got, s.Expect) {
			problems = append(problems, diffLines(s.Expect, got)...)
		}
	}
	if s.Drop == "" || s.Drop == s.Root.Name {
		if len(t.LiveElements) != 1 || t.LiveElements[0] != int(core.RootID) {
			problems = append(problems, fmt.Sprintf("leaked elements: %v", t.LiveElements))
		}
		if t.LiveScopes != 1 {
			problems = append(problems, fmt.Sprintf("leaked scopes: %d live, want 1 %v", t.LiveScopes, t.LiveScopeNames))
		}
	}
	if len(problems) > 0 {
		return fmt.Errorf("scenario %s:\n  %s", s.Name, strings.Join(problems, "\n  "))
	}
	return nil
}

func diffLines(want, got []string) []string {
	var out []string
	n := max(len(want), len(got))
	for i := 0; i < n; i++ {
		var w, g string
		if i < len(want) {
			w = want[i]
		}
		if i < len(got) {
			g = got[i]
		}
		if w != g {
			out = append(out, fmt.Sprintf("step %d: want %q, got %q", i+1, w, g))
		}
	}
	return out
}
