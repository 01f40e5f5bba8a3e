package index

import "sort"

// IDSet is a set of record ids. The inverted index maps tokens to IDSets and
// retrieval combines them; sets flowing out of a snapshot must be treated as
// read-only (use Clone before mutating).
type IDSet map[uint32]struct{}

// NewIDSet builds a set from ids.
func NewIDSet(ids ...uint32) IDSet {
	s := make(IDSet, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

// Add inserts id into the set.
func (s IDSet) Add(id uint32) { s[id] = struct{}{} }

// Has reports membership.
func (s IDSet) Has(id uint32) bool {
	_, ok := s[id]
	return ok
}

// Clone returns an independent copy.
func (s IDSet) Clone() IDSet {
	out := make(IDSet, len(s))
	for id := range s {
		out[id] = struct{}{}
	}
	return out
}

// Union adds every member of other into s.
func (s IDSet) Union(other IDSet) {
	for id := range other {
		s[id] = struct{}{}
	}
}

// Intersect returns a new set containing ids present in both.
func (s IDSet) Intersect(other IDSet) IDSet {
	small, large := s, other
	if len(large) < len(small) {
		small, large = large, small
	}
	out := make(IDSet)
	for id := range small {
		if _, ok := large[id]; ok {
			out[id] = struct{}{}
		}
	}
	return out
}

// Sorted returns the member ids in ascending order.
func (s IDSet) Sorted() []uint32 {
	ids := make([]uint32, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
