/*
Package dump renders an engine's chart for diagnostics (spec.md §7: "The
engine dumps the chart up to position when a debug flag is set") and for
the `earleyrec dump` CLI subcommand.

Grounded on original_source/src/fast/fast.cpp's Parser::print_chart (the
column-by-column, item-by-item text dump) and on gorgo's lr/sparse
package, reused here unmodified for DistanceMatrix: a chart is exactly
the sparse (column, start-item-index) -> distance relation sparse.IntMatrix
was built to hold, so no reimplementation was warranted (see DESIGN.md).

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.
*/
package dump

import (
	"fmt"
	"io"

	"github.com/jarro2783/earleygo"
	"github.com/jarro2783/earleygo/earley"
	"github.com/jarro2783/earleygo/grammar"
	"github.com/jarro2783/earleygo/lr/sparse"
)

// Chart writes a text rendering of every column of e's chart, up to and
// including upTo (inclusive), one line per start item: its rule, dot
// position, origin column (column - distance) and distance. Derived items
// are not printed.
func Chart(e *earley.Engine, upTo int, w io.Writer) {
	g := e.Grammar()
	chart := e.Chart()
	if upTo < 0 || upTo >= len(chart) {
		upTo = len(chart) - 1
	}
	for column := 0; column <= upTo; column++ {
		set := chart[column]
		fmt.Fprintf(w, "=== column %d (%d start items) ===\n", column, set.Core.StartCount)
		for i := 0; i < set.Core.StartCount; i++ {
			it := set.Core.Item(i)
			dist := set.Distance(i)
			fmt.Fprintf(w, "  [%3d] %s  (origin %d, distance %d)\n",
				i, formatItem(g, it.Rule, it.Dot), column-dist, dist)
		}
	}
}

func formatItem(g *grammar.Grammar, r *grammar.Rule, dot int) string {
	s := g.Name(r.LHS) + " ->"
	for i, sym := range r.RHS {
		if i == dot {
			s += " ."
		}
		s += " " + g.Name(sym)
	}
	if dot == len(r.RHS) {
		s += " ."
	}
	return s
}

// Stats writes e's goto-cache effectiveness counters as a short report
// (mirrors original_source's Parser::print_stats()).
func Stats(e *earley.Engine, w io.Writer) {
	st := e.Stats()
	fmt.Fprintf(w, "columns: %d\n", st.Columns)
	fmt.Fprintf(w, "unique cores: %d\n", st.UniqueCores)
	fmt.Fprintf(w, "unique sets: %d\n", st.UniqueSets)
	fmt.Fprintf(w, "goto reuses: %d\n", st.GotoReuses)
	fmt.Fprintf(w, "goto collisions: %d\n", st.GotoCollisions)
}

// DistanceMatrix packs e's chart into a sparse.IntMatrix: row is the chart
// column, column is the start-item's index within that column's core, and
// the stored value is the item's distance plus one. Positions without a
// start item hold sparse.DefaultNullValue.
func DistanceMatrix(e *earley.Engine) *sparse.IntMatrix {
	chart := e.Chart()
	maxStart := 0
	for _, set := range chart {
		if set.Core.StartCount > maxStart {
			maxStart = set.Core.StartCount
		}
	}
	m := sparse.NewIntMatrix(len(chart), maxStart, sparse.DefaultNullValue)
	for column, set := range chart {
		for i := 0; i < set.Core.StartCount; i++ {
			m.Set(column, i, int32(set.Distance(i)+1))
		}
	}
	return m
}

// Expected formats a ParseError's expected-terminal set for display,
// resolving ids through g's names.
func Expected(g *grammar.Grammar, expected []earleygo.Sym) string {
	s := ""
	for i, sym := range expected {
		if i > 0 {
			s += ", "
		}
		s += g.Name(sym)
	}
	return s
}
