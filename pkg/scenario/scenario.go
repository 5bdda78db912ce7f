// Package scenario describes scope trees declaratively, builds them into a
// core.Dom, tears them down, and checks the recorded trace.
//
// Scenarios are written in YAML or TOML:
//
//	version: v1.0.0
//	name: nested
//	root:
//	  name: App
//	  hooks: [state]
//	  render:
//	    roots: [element]
//	    listeners: [onclick]
//	    children:
//	      - name: Header
//	        props: Welcome
//	        render:
//	          texts: [hello]
//	expect:
//	  - sever s1->Header
//	  - clear s1 onclick
package scenario

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"golang.org/x/mod/semver"
	"gopkg.in/yaml.v3"

	"github.com/go-drift/vdom/pkg/errors"
)

// Format is the encoding of a scenario file.
type Format int

const (
	YAML Format = iota
	TOML
)

// FormatFor picks the format from a file extension.
func FormatFor(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return YAML, nil
	case ".toml":
		return TOML, nil
	}
	return 0, fmt.Errorf("unsupported scenario extension %q", filepath.Ext(path))
}

// Scenario is one tree to build and tear down.
type Scenario struct {
	// Version is the scenario format version, a semver string in major v1.
	Version string `yaml:"version" toml:"version"`
	// Name identifies the scenario in traces.
	Name string `yaml:"name" toml:"name"`
	// Root is mounted under the root scope.
	Root *ScopeSpec `yaml:"root" toml:"root"`
	// Drop names the scope to tear down. Defaults to Root.
	Drop string `yaml:"drop,omitempty" toml:"drop,omitempty"`
	// Expect, if set, is the exact list of teardown steps.
	Expect []string `yaml:"expect,omitempty" toml:"expect,omitempty"`
}

// ScopeSpec describes a component instance.
type ScopeSpec struct {
	Name string `yaml:"name" toml:"name"`
	// Props is the value the parent hands to the component.
	Props string `yaml:"props,omitempty" toml:"props,omitempty"`
	// Static moves the props into the child instead of lending them.
	Static bool `yaml:"static,omitempty" toml:"static,omitempty"`
	// Hooks are added in order, each with no teardown of its own.
	Hooks []string `yaml:"hooks,omitempty" toml:"hooks,omitempty"`
	// Borrow adds a final hook that keeps the props borrowed until teardown.
	Borrow bool `yaml:"borrow,omitempty" toml:"borrow,omitempty"`
	// Pending leaves the current output deferred instead of rendering it.
	Pending bool `yaml:"pending,omitempty" toml:"pending,omitempty"`
	// Previous is rendered first and kept as the previous generation.
	Previous *NodeSpec `yaml:"previous,omitempty" toml:"previous,omitempty"`
	// Render is the current output.
	Render *NodeSpec `yaml:"render,omitempty" toml:"render,omitempty"`
}

// NodeSpec describes a rendered template.
type NodeSpec struct {
	Template string `yaml:"template,omitempty" toml:"template,omitempty"`
	// Roots lists top-level elements: "element" mints an identifier,
	// "root" records RootID, "null" mints an identifier naming no node.
	Roots []string `yaml:"roots,omitempty" toml:"roots,omitempty"`
	// Texts are dynamic text nodes, each with its own identifier.
	Texts []string `yaml:"texts,omitempty" toml:"texts,omitempty"`
	// Placeholders is the number of placeholder nodes.
	Placeholders int `yaml:"placeholders,omitempty" toml:"placeholders,omitempty"`
	// SharePlaceholder gives the first placeholder the first root's
	// identifier, so it is referenced twice.
	SharePlaceholder bool `yaml:"share_placeholder,omitempty" toml:"share_placeholder,omitempty"`
	// Listeners are event listener attributes by name.
	Listeners []string `yaml:"listeners,omitempty" toml:"listeners,omitempty"`
	// Values are arbitrary-valued attributes by name.
	Values []string `yaml:"values,omitempty" toml:"values,omitempty"`
	// Fragments are nested node lists.
	Fragments []NodeSpec `yaml:"fragments,omitempty" toml:"fragments,omitempty"`
	// Children are component slots mounted after this node renders.
	Children []ScopeSpec `yaml:"children,omitempty" toml:"children,omitempty"`
}

// Parse decodes a scenario and validates it. Unknown keys are rejected.
func Parse(data []byte, format Format) (*Scenario, error) {
	var s Scenario
	switch format {
	case YAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&s); err != nil {
			return nil, fmt.Errorf("parse yaml: %w", err)
		}
	case TOML:
		md, err := toml.Decode(string(data), &s)
		if err != nil {
			return nil, fmt.Errorf("parse toml: %w", err)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return nil, fmt.Errorf("parse toml: unknown key %q", undecoded[0].String())
		}
	default:
		return nil, fmt.Errorf("unknown format %d", format)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Load reads and parses a scenario file.
func Load(path string) (*Scenario, error) {
	format, err := FormatFor(path)
	if err != nil {
		return nil, &errors.VdomError{Op: "scenario.Load", Kind: errors.KindScenario, Source: path, Err: err}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &errors.VdomError{Op: "scenario.Load", Kind: errors.KindIO, Source: path, Err: err}
	}
	s, err := Parse(data, format)
	if err != nil {
		return nil, &errors.VdomError{Op: "scenario.Load", Kind: errors.KindScenario, Source: path, Err: err}
	}
	if s.Name == "" {
		s.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return s, nil
}

// Validate checks the version and the shape of the tree.
func (s *Scenario) Validate() error {
	if !semver.IsValid(s.Version) {
		return fmt.Errorf("invalid version %q", s.Version)
	}
	if semver.Major(s.Version) != "v1" {
		return fmt.Errorf("unsupported version %s, want v1.x", s.Version)
	}
	if s.Root == nil {
		return fmt.Errorf("missing root scope")
	}
	names := map[string]bool{}
	if err := s.Root.validate("root", names); err != nil {
		return err
	}
	if s.Drop != "" && !names[s.Drop] {
		return fmt.Errorf("drop target %q is not a scope in the tree", s.Drop)
	}
	return nil
}

func (sp *ScopeSpec) validate(at string, names map[string]bool) error {
	if sp.Name == "" {
		return fmt.Errorf("%s: scope without a name", at)
	}
	names[sp.Name] = true
	at = at + "/" + sp.Name
	if sp.Previous != nil {
		if err := sp.Previous.validate(at+"/previous", names); err != nil {
			return err
		}
	}
	if sp.Render != nil {
		if sp.Pending {
			return fmt.Errorf("%s: pending scope cannot also render", at)
		}
		if err := sp.Render.validate(at+"/render", names); err != nil {
			return err
		}
	}
	return nil
}

func (n *NodeSpec) validate(at string, names map[string]bool) error {
	for i, r := range n.Roots {
		switch r {
		case "element", "null":
		case "root":
			if i == 0 && n.SharePlaceholder {
				return fmt.Errorf("%s: cannot share the root element with a placeholder", at)
			}
		default:
			return fmt.Errorf("%s: unknown root kind %q", at, r)
		}
	}
	if n.Placeholders < 0 {
		return fmt.Errorf("%s: negative placeholder count", at)
	}
	if n.SharePlaceholder && (len(n.Roots) == 0 || n.Placeholders == 0) {
		return fmt.Errorf("%s: share_placeholder needs a root and a placeholder", at)
	}
	for i := range n.Fragments {
		if err := n.Fragments[i].validate(fmt.Sprintf("%s/fragment[%d]", at, i), names); err != nil {
			return err
		}
	}
	for i := range n.Children {
		if err := n.Children[i].validate(at, names); err != nil {
			return err
		}
	}
	return nil
}
