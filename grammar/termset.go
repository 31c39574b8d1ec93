package grammar

import (
	"sort"

	"github.com/jarro2783/earleygo"
)

// Universe maps the terminal ids actually occurring in a grammar (plus
// earleygo.EndOfInput) to a dense index, so that FIRST/FOLLOW/lookahead sets
// can be represented as bitsets instead of maps.
type Universe struct {
	index map[earleygo.Sym]int
	order []earleygo.Sym
}

func newUniverse() *Universe {
	return &Universe{index: make(map[earleygo.Sym]int)}
}

func (u *Universe) intern(s earleygo.Sym) int {
	if i, ok := u.index[s]; ok {
		return i
	}
	i := len(u.order)
	u.index[s] = i
	u.order = append(u.order, s)
	return i
}

// Size returns the number of distinct terminals in the universe.
func (u *Universe) Size() int { return len(u.order) }

// TermSet is a bitset of terminal ids drawn from a single Universe. The zero
// value is an empty set, but most callers should use Universe.NewSet.
type TermSet struct {
	u    *Universe
	bits []uint64
}

// NewSet returns an empty terminal set over u.
func (u *Universe) NewSet() TermSet {
	return TermSet{u: u}
}

func (s *TermSet) ensure(word int) {
	for len(s.bits) <= word {
		s.bits = append(s.bits, 0)
	}
}

// Add inserts sym into the set and reports whether the set changed.
func (s *TermSet) Add(sym earleygo.Sym) bool {
	i := s.u.intern(sym)
	word, bit := i/64, uint(i%64)
	s.ensure(word)
	old := s.bits[word]
	s.bits[word] |= 1 << bit
	return s.bits[word] != old
}

// Contains reports whether sym is a member of the set.
func (s TermSet) Contains(sym earleygo.Sym) bool {
	i, ok := s.u.index[sym]
	if !ok {
		return false
	}
	word, bit := i/64, uint(i%64)
	if word >= len(s.bits) {
		return false
	}
	return s.bits[word]&(1<<bit) != 0
}

// Union merges other into s in place and reports whether s changed.
func (s *TermSet) Union(other TermSet) bool {
	changed := false
	s.ensure(len(other.bits) - 1)
	for i, w := range other.bits {
		old := s.bits[i]
		s.bits[i] |= w
		if s.bits[i] != old {
			changed = true
		}
	}
	return changed
}

// Empty reports whether the set has no members.
func (s TermSet) Empty() bool {
	for _, w := range s.bits {
		if w != 0 {
			return false
		}
	}
	return true
}

// Slice returns the set's members in ascending symbol-id order.
func (s TermSet) Slice() []earleygo.Sym {
	out := make([]earleygo.Sym, 0, 4)
	for i, w := range s.bits {
		if w == 0 {
			continue
		}
		for bit := 0; bit < 64; bit++ {
			if w&(1<<uint(bit)) != 0 {
				out = append(out, s.u.order[i*64+bit])
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Clone returns an independent copy of s.
func (s TermSet) Clone() TermSet {
	bits := make([]uint64, len(s.bits))
	copy(bits, s.bits)
	return TermSet{u: s.u, bits: bits}
}
