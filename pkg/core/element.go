package core

import (
	"bytes"
	"fmt"
	"strconv"

	"fortio.org/safecast"
)

// ElementID names one trackable element in the tree.
//
// An ElementID is unique among live elements but not across time: once an
// element is reclaimed, its identifier may be handed to an unrelated element.
type ElementID int

// RootID is the identifier of the tree root. It is never reclaimed.
const RootID ElementID = 0

func (id ElementID) String() string {
	return "e" + strconv.Itoa(int(id))
}

// PathKind distinguishes the two ElementPath encodings.
type PathKind uint8

const (
	// PathDeep addresses an element by child indices from a template root.
	PathDeep PathKind = iota
	// PathRoot addresses a top-level element of a template directly.
	PathRoot
)

// ElementPath locates an element inside the template that rendered it.
type ElementPath struct {
	kind PathKind
	deep []byte
	root int
}

// DeepPath returns a path that walks the given child indices from the
// template root. The slice is retained, not copied.
func DeepPath(indices ...byte) ElementPath {
	return ElementPath{kind: PathDeep, deep: indices}
}

// RootPath returns a path naming the index-th top-level element of a template.
func RootPath(index int) ElementPath {
	return ElementPath{kind: PathRoot, root: index}
}

// Kind reports which encoding the path uses.
func (p ElementPath) Kind() PathKind { return p.kind }

// Indices returns the child indices of a PathDeep path, nil for PathRoot.
func (p ElementPath) Indices() []byte {
	if p.kind != PathDeep {
		return nil
	}
	return p.deep
}

// RootIndex returns the top-level index of a PathRoot path.
func (p ElementPath) RootIndex() (int, bool) {
	return p.root, p.kind == PathRoot
}

// IsAscendant reports whether the element at p contains (or is) the element
// at candidate.
//
// A deep path is an ascendant of every sequence it prefixes, itself included.
// A root path is an ascendant only of the one-element sequence holding its
// index; it never matches a longer sequence.
func (p ElementPath) IsAscendant(candidate []byte) bool {
	switch p.kind {
	case PathDeep:
		return bytes.HasPrefix(candidate, p.deep)
	case PathRoot:
		return p.matchesRoot(candidate)
	}
	return false
}

// Equal reports whether p addresses exactly the element at candidate.
func (p ElementPath) Equal(candidate []byte) bool {
	switch p.kind {
	case PathDeep:
		return bytes.Equal(p.deep, candidate)
	case PathRoot:
		return p.matchesRoot(candidate)
	}
	return false
}

func (p ElementPath) matchesRoot(candidate []byte) bool {
	if len(candidate) != 1 {
		return false
	}
	// A root index that does not fit in a path segment cannot be spelled
	// as one, so it matches nothing.
	index, err := safecast.Conv[uint8](p.root)
	if err != nil {
		return false
	}
	return candidate[0] == index
}

func (p ElementPath) String() string {
	if p.kind == PathRoot {
		return fmt.Sprintf("root(%d)", p.root)
	}
	return fmt.Sprintf("deep%v", p.deep)
}

// ElementRef is the metadata stored for every allocated ElementID.
type ElementRef struct {
	// Path locates the element inside Template.
	Path ElementPath
	// Template is the rendered template containing the element. It is nil
	// only for null identifiers that name no real node. The template is not
	// owned by the reference; it stays live because the element is always
	// reclaimed in the same teardown that destroys the template's subtree.
	Template *VNode
}

// NullRef returns the reference stored for identifiers that name no node.
func NullRef() ElementRef {
	return ElementRef{Path: RootPath(0)}
}

// IsNull reports whether the reference carries no template.
func (r ElementRef) IsNull() bool {
	return r.Template == nil
}
