package forest

import (
	"github.com/emirpasic/gods/lists/arraylist"

	"github.com/jarro2783/earleygo"
	"github.com/jarro2783/earleygo/earley"
	"github.com/jarro2783/earleygo/grammar"
	"github.com/jarro2783/earleygo/item"
)

// Extract walks engine's chart and recorded derivation edges into a parse
// forest rooted at the grammar's start symbol (spec.md §4.8). Call it only
// after engine.Recognize returned accept=true; its result for a rejected or
// not-yet-run engine is the empty forest.
//
// Ambiguity between distinct rules deriving the same (symbol, span) is
// represented fully, as or-edges on the symbol node. Ambiguity in how a
// single rule instance's own right-hand side was split across sub-spans is
// not fanned out — only the first recorded derivation edge at each step is
// followed — matching gorgo's lr/sppf package, which also declines to
// implement Scott's fully binarized SPPF for exactly this class of
// ambiguity (see that package's doc comment).
func Extract(e *earley.Engine) *Forest {
	x := &extractor{e: e, f: New(e.Grammar()), memo: make(map[spanKey]*SymbolNode)}
	total := len(e.Chart()) - 1
	if total < 0 || total != len(e.Tokens()) {
		return x.f // not run, or stopped early by a parse error
	}
	if total == 0 && !e.Grammar().Nullable(e.Grammar().Start()) {
		return x.f // empty input that the start symbol cannot derive
	}
	x.buildSymbol(e.Grammar().Start(), 0, total)
	return x.f
}

type spanKey struct {
	sym  earleygo.Sym
	from int
	to   int
}

type extractor struct {
	e    *earley.Engine
	f    *Forest
	memo map[spanKey]*SymbolNode
}

// buildSymbol returns the (possibly shared) symbol node for sym spanning
// [from, to), fanning out to one AltNode per rule of sym that the chart
// shows reduced across exactly that span.
func (x *extractor) buildSymbol(sym earleygo.Sym, from, to int) *SymbolNode {
	key := spanKey{sym, from, to}
	if sn, ok := x.memo[key]; ok {
		return sn
	}
	x.memo[key] = nil // break cycles on a malformed chart

	if from == to {
		sn := x.buildEpsilon(sym, from)
		x.memo[key] = sn
		return sn
	}

	set := x.e.Chart()[to]
	distance := to - from
	var sn *SymbolNode
	for i := 0; i < set.Core.StartCount; i++ {
		it := set.Core.Item(i)
		if it.Rule.LHS != sym || !it.AtEnd() || set.Distance(i) != distance {
			continue
		}
		children := x.unwindChildren(it, to, distance)
		sn = x.f.AddReduction(sym, it.Rule.Serial, earleygo.Span{from, to}, children)
	}
	x.memo[key] = sn
	return sn
}

// unwindChildren recovers the child symbol nodes that derivation edges show
// were assembled into it (an item at column with the given distance), by
// walking the edges backward to dot 0 and prepending each child as it is
// found. The accumulator is an arraylist (spec.md §4.9), mirroring gorgo's
// lr/tables.go CFSM's edges list — built the same way here: one Insert per
// discovered edge, in the order the backward walk visits them.
func (x *extractor) unwindChildren(it *item.Item, column, distance int) []*SymbolNode {
	children := arraylist.New()
	curItem, curColumn, curDistance := it, column, distance
	for curItem.Dot > 0 {
		edges := x.e.Reductions()[earley.DerivKey{Item: curItem, Column: curColumn, Distance: curDistance}]
		if len(edges) == 0 {
			break
		}
		edge := edges[0]

		var child *SymbolNode
		if edge.ChildIsTerminal {
			child = x.f.AddTerminal(edge.ChildSymbol, edge.PredecessorColumn)
		} else {
			child = x.buildSymbol(edge.ChildSymbol, edge.PredecessorColumn, edge.ChildColumn)
		}
		children.Insert(0, child)

		curDistance -= edge.ChildColumn - edge.PredecessorColumn
		curItem, curColumn = edge.Predecessor, edge.PredecessorColumn
	}

	out := make([]*SymbolNode, children.Size())
	for i, v := range children.Values() {
		out[i] = v.(*SymbolNode)
	}
	return out
}

// buildEpsilon derives sym at a single position via the first of its rules
// whose entire right-hand side is nullable.
func (x *extractor) buildEpsilon(sym earleygo.Sym, pos int) *SymbolNode {
	g := x.e.Grammar()
	for _, r := range g.Rules(sym) {
		if !allNullable(g, r.RHS) {
			continue
		}
		if len(r.RHS) == 0 {
			return x.f.AddEpsilonReduction(sym, r.Serial, pos)
		}
		children := make([]*SymbolNode, 0, len(r.RHS))
		for _, s := range r.RHS {
			children = append(children, x.buildSymbol(s, pos, pos))
		}
		return x.f.AddReduction(sym, r.Serial, earleygo.Span{pos, pos}, children)
	}
	return x.f.AddEpsilonReduction(sym, -1, pos)
}

func allNullable(g *grammar.Grammar, rhs []earleygo.Sym) bool {
	for _, s := range rhs {
		if !g.Nullable(s) {
			return false
		}
	}
	return true
}
