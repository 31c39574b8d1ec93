/*
Package item interns every dotted position of every grammar rule exactly
once (spec.md §3, §4.2). Each Item carries its precomputed lookahead set and
an empty_rhs flag, and has a dense index so the engine can use it directly
as the key into per-item side tables like item_membership (spec.md §4.6).

Grounded on original_source/include/earley/fast/items.hpp (Item, Items) and
src/fast/items.cpp (Items::fill_to, the lookahead/empty_sequence
computation).

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.
*/
package item

import (
	"fmt"
	"strings"

	"github.com/npillmayer/schuko/tracing"

	"github.com/jarro2783/earleygo"
	"github.com/jarro2783/earleygo/grammar"
)

func tracer() tracing.Trace {
	return tracing.Select("earley.item")
}

// Item is an interned dotted position (rule, dot) with its derived
// attributes. Pointer identity is item identity: the engine never compares
// Items by value, only by pointer (spec.md's "Invariants").
type Item struct {
	Rule      *grammar.Rule
	Dot       int
	Lookahead grammar.TermSet
	// EmptyRHS is true when every symbol from Dot to the end of Rule.RHS is
	// nullable (not only when Dot is literally at the end). The engine's
	// right-nulled completion uses this to treat such an item as already
	// reduced, the Aycock–Horspool shortcut that collapses a chain of
	// epsilon completions into a single step.
	EmptyRHS bool
	Index    int // dense index, unique across all items in a Store
}

// AtEnd reports whether the dot sits after the last rhs symbol.
func (it *Item) AtEnd() bool { return it.Dot == len(it.Rule.RHS) }

// NextSymbol returns the symbol immediately after the dot, or false if the
// dot is at the end of the rule.
func (it *Item) NextSymbol() (earleygo.Sym, bool) {
	if it.AtEnd() {
		return 0, false
	}
	return it.Rule.RHS[it.Dot], true
}

// InLookahead reports whether next is an allowed lookahead terminal for
// this item (spec.md §3: "lookahead: set of terminal ids allowed to follow
// this dot").
func (it *Item) InLookahead(next earleygo.Sym) bool {
	return it.Lookahead.Contains(next)
}

func (it *Item) String(g *grammar.Grammar) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s ->", g.Name(it.Rule.LHS))
	for i, s := range it.Rule.RHS {
		if i == it.Dot {
			b.WriteString(" ·")
		}
		fmt.Fprintf(&b, " %s", g.Name(s))
	}
	if it.AtEnd() {
		b.WriteString(" ·")
	}
	return b.String()
}

// Store interns every dotted item of a Grammar at construction time and
// never mutates afterwards (spec.md §5: "Grammar and item store are built
// once and never mutated").
type Store struct {
	g     *grammar.Grammar
	byRuleDot [][]*Item // indexed [rule.Serial][dot]
	count int
}

// NewStore builds the item store for g, computing every item's lookahead
// set and empty_rhs flag up front.
func NewStore(g *grammar.Grammar) *Store {
	s := &Store{g: g, byRuleDot: make([][]*Item, len(g.AllRules()))}
	index := 0
	for _, r := range g.AllRules() {
		items := make([]*Item, len(r.RHS)+1)
		for dot := 0; dot <= len(r.RHS); dot++ {
			items[dot] = &Item{
				Rule:      r,
				Dot:       dot,
				Lookahead: g.FirstOfSuffix(r.LHS, r.RHS, dot),
				EmptyRHS:  emptySuffix(g, r.RHS, dot),
				Index:     index,
			}
			index++
		}
		s.byRuleDot[r.Serial] = items
	}
	s.count = index
	tracer().Debugf("interned %d items for %d rules", s.count, len(g.AllRules()))
	return s
}

// emptySuffix reports whether rhs[from:] consists solely of nullable
// nonterminals, i.e. whether the rest of the rule from this dot can derive
// epsilon (spec.md §3's empty_rhs). This holds trivially at from=len(rhs),
// but also at earlier dots when every remaining symbol is nullable — the
// right-nulled completion in engine.completeColumn treats such an item as
// already reduced without waiting for its dot to literally reach the end.
func emptySuffix(g *grammar.Grammar, rhs []earleygo.Sym, from int) bool {
	for _, s := range rhs[from:] {
		if !g.Nullable(s) {
			return false
		}
	}
	return true
}

// GetItem returns the interned item for (rule, dot). dot must be in
// [0, len(rule.RHS)]; any other value is a programmer error and returns
// *earleygo.OutOfRangeItemError.
func (s *Store) GetItem(rule *grammar.Rule, dot int) (*Item, error) {
	if dot < 0 || dot > len(rule.RHS) {
		return nil, &earleygo.OutOfRangeItemError{Rule: rule.Serial, Dot: dot, RHS: len(rule.RHS)}
	}
	return s.byRuleDot[rule.Serial][dot], nil
}

// MustGetItem is like GetItem but panics on an out-of-range dot; the engine
// uses it internally once a dot position has already been validated against
// a rule's length, to avoid repeating the error-return boilerplate on a hot
// path where the condition is known to be impossible.
func (s *Store) MustGetItem(rule *grammar.Rule, dot int) *Item {
	it, err := s.GetItem(rule, dot)
	if err != nil {
		panic(err)
	}
	return it
}

// Count returns the total number of interned items, i.e. the size an
// item-indexed dense side table (like item_membership) must have.
func (s *Store) Count() int { return s.count }

// Grammar returns the grammar this store was built from.
func (s *Store) Grammar() *grammar.Grammar { return s.g }
