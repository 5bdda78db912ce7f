package core

// Props is a props value shared between the component slot that created it
// and the child scope that reads it.
//
// Readers that need the value to stay put take a borrow; while any borrow is
// outstanding TryClear refuses to empty the cell. Take empties it regardless.
// A nil *Props behaves as an empty cell.
type Props struct {
	value   any
	present bool
	borrows int
}

// NewProps returns a cell holding v.
func NewProps(v any) *Props {
	return &Props{value: v, present: true}
}

// Value returns the held value, if any.
func (p *Props) Value() (any, bool) {
	if p == nil {
		return nil, false
	}
	return p.value, p.present
}

// IsEmpty reports whether the cell holds nothing.
func (p *Props) IsEmpty() bool {
	return p == nil || !p.present
}

// Borrow returns the held value and a release func that ends the borrow.
// Calling release more than once has no further effect.
func (p *Props) Borrow() (any, func()) {
	if p == nil {
		return nil, func() {}
	}
	p.borrows++
	released := false
	return p.value, func() {
		if released {
			return
		}
		released = true
		p.borrows--
	}
}

// Borrowed reports whether any borrow is outstanding.
func (p *Props) Borrowed() bool {
	return p != nil && p.borrows > 0
}

// TryClear empties the cell unless it is borrowed. It reports whether the
// cell is empty afterwards.
func (p *Props) TryClear() bool {
	if p == nil {
		return true
	}
	if p.borrows > 0 {
		return false
	}
	p.value = nil
	p.present = false
	return true
}

// Take empties the cell and returns what it held.
func (p *Props) Take() any {
	if p == nil {
		return nil
	}
	v := p.value
	p.value = nil
	p.present = false
	return v
}
