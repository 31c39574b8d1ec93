/*
Package hashset implements the open-addressing hashed set of spec.md §4.3:
a value-type hash container with user-supplied hash/equality that supports
insert-or-find with a stable handle to the stored value. Used to intern
cores, sets, distance vectors, and goto-cache lookups.

Grounded on original_source/include/earley_hash_set.hpp's open-addressing
HashSet (probing, resizing to the next suitable capacity) and on the
interning use sites in original_source/include/earley/fast.hpp
(HashSet<ItemSetOwner>, HashSet<SetSymbolRules>).

Handles are *T rather than slot indices: a table resize relocates slots, not
the boxed values they point to, so a handle obtained from Insert stays valid
across subsequent inserts, satisfying spec.md §4.3's "relocation-tolerant
slot design" requirement without needing placement tricks.
*/
package hashset

// HashFunc computes a hash for a value of type T.
type HashFunc[T any] func(T) uint64

// EqFunc reports whether two values of type T are equal for set membership
// purposes.
type EqFunc[T any] func(a, b T) bool

const loadFactorPercent = 70

// HashSet is an open-addressing hash set over boxed values of type T,
// using a user-supplied hash and equality function.
type HashSet[T any] struct {
	hash  HashFunc[T]
	eq    EqFunc[T]
	slots []*T
	count int
}

// New creates an empty HashSet with the given hash and equality functions.
func New[T any](hash HashFunc[T], eq EqFunc[T]) *HashSet[T] {
	return &HashSet[T]{
		hash:  hash,
		eq:    eq,
		slots: make([]*T, 17),
	}
}

// NewSized is like New but pre-sizes the table for at least n elements,
// useful when a caller knows the expected load up front.
func NewSized[T any](hash HashFunc[T], eq EqFunc[T], n int) *HashSet[T] {
	s := New(hash, eq)
	cap := nextPrime(n*100/loadFactorPercent + 1)
	s.slots = make([]*T, cap)
	return s
}

// Len returns the number of distinct elements stored.
func (s *HashSet[T]) Len() int { return s.count }

// secondaryStep implements spec.md §4.3's "Secondary-probe step = 1 + h mod
// (cap−2) to avoid clustering on common hashes".
func secondaryStep(h uint64, cap int) int {
	if cap <= 2 {
		return 1
	}
	return 1 + int(h%uint64(cap-2))
}

func (s *HashSet[T]) find(v T, h uint64) (int, *T) {
	cap := len(s.slots)
	i := int(h % uint64(cap))
	step := secondaryStep(h, cap)
	for probes := 0; probes < cap; probes++ {
		slot := s.slots[i]
		if slot == nil {
			return i, nil
		}
		if s.eq(*slot, v) {
			return i, slot
		}
		i = (i + step) % cap
	}
	return -1, nil
}

// Find returns the canonical stored handle for a value equal to v, or nil
// if absent (the "end sentinel" of spec.md §4.3).
func (s *HashSet[T]) Find(v T) *T {
	_, found := s.find(v, s.hash(v))
	return found
}

// Insert returns the canonical handle for v: if an equal value is already
// present its existing handle is returned with inserted=false; otherwise v
// is boxed, stored, and its handle returned with inserted=true.
func (s *HashSet[T]) Insert(v T) (handle *T, inserted bool) {
	if s.count*100 >= len(s.slots)*loadFactorPercent {
		s.grow()
	}
	h := s.hash(v)
	i, found := s.find(v, h)
	if found != nil {
		return found, false
	}
	boxed := new(T)
	*boxed = v
	s.slots[i] = boxed
	s.count++
	return boxed, true
}

func (s *HashSet[T]) grow() {
	newCap := nextPrime(len(s.slots) * 2)
	old := s.slots
	s.slots = make([]*T, newCap)
	for _, slot := range old {
		if slot == nil {
			continue
		}
		h := s.hash(*slot)
		i := int(h % uint64(newCap))
		step := secondaryStep(h, newCap)
		for s.slots[i] != nil {
			i = (i + step) % newCap
		}
		s.slots[i] = slot // relocate the slot, not the boxed value: handle stays valid
	}
}

// nextPrime returns the smallest prime >= n (spec.md §4.3: "capacity grows
// by doubling then rounding up to a prime").
func nextPrime(n int) int {
	if n < 2 {
		return 2
	}
	for {
		if isPrime(n) {
			return n
		}
		n++
	}
}

func isPrime(n int) bool {
	if n < 2 {
		return false
	}
	if n%2 == 0 {
		return n == 2
	}
	for i := 3; i*i <= n; i += 2 {
		if n%i == 0 {
			return false
		}
	}
	return true
}
