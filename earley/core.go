package earley

import "github.com/jarro2783/earleygo/item"

// Core is an ItemSetCore (spec.md §3, §4.5): the deduplicated ordered
// sequence of items that makes up a column, interned by the structural
// identity of its start items alone.
//
// Items holds start items first (Items[:StartCount]), followed by derived
// items. Of those derived items, the first NullableDerivedCount were added
// by the nullable shortcut of a start item (spec.md §4.6 step 1) and each
// has a corresponding entry in Parent pointing back at that start item's
// index; any further derived items (added by prediction or by an
// in-column nullable completion, spec.md §4.6 step 2) have no parent link,
// matching original_source's add_initial_item, which never records one.
type Core struct {
	Items                 []*item.Item
	StartCount            int
	NullableDerivedCount  int
	Parent                []int
	hashVal               uint64
}

// StartItems returns the core's start items, in their stable insertion
// order.
func (c *Core) StartItems() []*item.Item { return c.Items[:c.StartCount] }

// Item returns the item at position i (start or derived).
func (c *Core) Item(i int) *item.Item { return c.Items[i] }

// Len returns the total number of items (start + derived) in the core.
func (c *Core) Len() int { return len(c.Items) }

// ParentOf returns the start-item index that derived item i (a nullable
// shortcut of a start item) was produced from, and true if one is recorded.
// Prediction-initial items and in-column nullable completions return
// ok=false: they were not derived from any single start item.
func (c *Core) ParentOf(i int) (parent int, ok bool) {
	off := i - c.StartCount
	if off < 0 || off >= len(c.Parent) {
		return 0, false
	}
	return c.Parent[off], true
}

// Hash combines only the core's start items, per spec.md §3 ("A core's
// hash combines only its start items, in order").
func (c *Core) Hash() uint64 { return c.hashVal }

// Set is an ItemSet (spec.md §3, §4.5): a Core paired with a distance
// vector, one entry per start item. The distance of start item i is the
// number of tokens consumed since the column in which that item was first
// predicted.
type Set struct {
	Core      *Core
	Distances []int
	hashVal   uint64
}

// Distance returns the distance of start item i, or 0 for a derived item
// (mirrors original_source's ItemSet::distance, which defaults to 0 past
// the start-item range).
func (s *Set) Distance(i int) int {
	if i >= s.Core.StartCount {
		return 0
	}
	return s.Distances[i]
}

// ActualDistance resolves the distance a scan or completion should advance
// from when it transitions out of item i, following a nullable-shortcut
// derived item back to the start item it was produced from (original_source's
// actual_distance). A derived item with no recorded parent (prediction, or
// an in-column nullable completion) has no start item to inherit a distance
// from and reports 0, same as Distance.
func (s *Set) ActualDistance(i int) int {
	if i < s.Core.StartCount {
		return s.Distances[i]
	}
	if parent, ok := s.Core.ParentOf(i); ok {
		return s.Distances[parent]
	}
	return 0
}

// Hash combines the core's identity with the distance vector's identity
// (spec.md §3).
func (s *Set) Hash() uint64 { return s.hashVal }
