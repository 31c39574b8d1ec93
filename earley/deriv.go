package earley

import (
	"github.com/jarro2783/earleygo"
	"github.com/jarro2783/earleygo/item"
)

// DerivKey identifies a point the engine reached by scanning a terminal or
// completing a nonterminal: the resulting item, the chart column it now
// lives in, and its distance from that item's origin.
type DerivKey struct {
	Item     *item.Item
	Column   int
	Distance int
}

// DerivEdge records one way the item at a DerivKey was reached: from
// Predecessor (the item one dot earlier, living in chart column
// PredecessorColumn) by recognizing ChildSymbol across
// [PredecessorColumn, ChildColumn). Several edges can be recorded for the
// same DerivKey: one per way of reaching it where the grammar is ambiguous
// at that point, and identical repeats where the same predicting item
// appears twice in a transition bucket. Forest extraction follows only the
// first edge recorded for each DerivKey (see forest.Extract).
//
// Grounded on the disabled reduction/predecessor pointer code in
// original_source/src/fast/fast.cpp (create_new_set's #if 0 block and
// create_reductions). The original recorded these only in a post-pass
// over the finished chart, because at scan/completion time a just-built
// item, set, or core might still be replaced by an older interned
// equivalent. This engine keys the edges by interned items and column
// numbers only, never by a set or core, so such a replacement does not
// affect them, and the edges can be written inline during parseAt instead,
// with no separate pass required.
type DerivEdge struct {
	Predecessor       *item.Item
	PredecessorColumn int
	ChildSymbol       earleygo.Sym
	ChildColumn       int
	ChildIsTerminal   bool
}

// Reductions exposes the derivation edges recorded during the most recent
// Recognize call, for consumption by package forest.
func (e *Engine) Reductions() map[DerivKey][]DerivEdge { return e.derivEdges }

func (e *Engine) recordDeriv(key DerivKey, edge DerivEdge) {
	e.derivEdges[key] = append(e.derivEdges[key], edge)
}
