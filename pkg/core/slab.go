package core

// slab is a dense store of values addressed by reusable integer keys.
// Vacated keys are handed out again most recently freed first, so keys stay
// small under churn. Not safe for concurrent use.
type slab[T any] struct {
	entries []slabEntry[T]
	free    []int
	len     int
}

type slabEntry[T any] struct {
	value    T
	occupied bool
}

func (s *slab[T]) reserve(capacity int) {
	if capacity > cap(s.entries) {
		entries := make([]slabEntry[T], len(s.entries), capacity)
		copy(entries, s.entries)
		s.entries = entries
	}
}

// insert stores v in the most recently vacated slot, or a new one, and
// returns its key.
func (s *slab[T]) insert(v T) int {
	s.len++
	if n := len(s.free); n > 0 {
		key := s.free[n-1]
		s.free = s.free[:n-1]
		s.entries[key] = slabEntry[T]{value: v, occupied: true}
		return key
	}
	s.entries = append(s.entries, slabEntry[T]{value: v, occupied: true})
	return len(s.entries) - 1
}

// at returns a pointer to the value stored at key, or nil if the key is
// vacant or out of range.
func (s *slab[T]) at(key int) *T {
	if key < 0 || key >= len(s.entries) || !s.entries[key].occupied {
		return nil
	}
	return &s.entries[key].value
}

func (s *slab[T]) contains(key int) bool {
	return s.at(key) != nil
}

// remove vacates key and returns the value it held.
func (s *slab[T]) remove(key int) (T, bool) {
	var zero T
	if s.at(key) == nil {
		return zero, false
	}
	v := s.entries[key].value
	s.entries[key] = slabEntry[T]{}
	s.free = append(s.free, key)
	s.len--
	return v, true
}

// each visits occupied entries in key order until fn returns false.
func (s *slab[T]) each(fn func(key int, v T) bool) {
	for key := range s.entries {
		if !s.entries[key].occupied {
			continue
		}
		if !fn(key, s.entries[key].value) {
			return
		}
	}
}
