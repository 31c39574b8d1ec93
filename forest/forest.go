/*
Package forest implements a Shared Packed Parse Forest (SPPF) over the
recognition engine's chart and derivation edges (spec.md §4.8).

A packed parse forest re-uses parse-tree nodes between different parses of
the same span: for an unambiguous grammar it degrades to a single tree; for
an ambiguous one, a symbol node fans out via or-edges to one alternative
node per distinct rule that derives it across the same span.

Grounded on gorgo's lr/sppf package (Forest, SymbolNode, the two-level
searchTree keyed by span, the or-edge/and-edge bookkeeping, and the
deliberate choice — stated in that package's doc comment — not to follow
Scott's fully binarized SPPF construction). Edge sets use
github.com/emirpasic/gods' hashset (spec.md §4.9) in place of gorgo's
iteratable.Set, which this module does not carry forward (see DESIGN.md).

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.
*/
package forest

import (
	"fmt"
	"io"

	"github.com/emirpasic/gods/sets/hashset"
	"github.com/npillmayer/schuko/tracing"

	"github.com/jarro2783/earleygo"
	"github.com/jarro2783/earleygo/grammar"
)

func tracer() tracing.Trace {
	return tracing.Select("earley.forest")
}

// SymbolNode is an or-node: a grammar symbol recognized across a span of
// the input. Forest.Alternatives returns its AltNodes, one per rule that
// derives it across the span; a terminal leaf has none.
type SymbolNode struct {
	Symbol earleygo.Sym
	Span   earleygo.Span
}

func (sn *SymbolNode) String() string {
	return fmt.Sprintf("%s %s", sn.Symbol, sn.Span)
}

// AltNode is an and-node: one specific rule deriving its parent
// SymbolNode, together with the ordered sequence of child SymbolNodes that
// rule's right-hand side decomposes into.
type AltNode struct {
	Rule     int // grammar.Rule.Serial, or -1 for an epsilon node of a symbol with no nullable rule
	Span     earleygo.Span
	Children []*SymbolNode
}

func (a *AltNode) String() string {
	return fmt.Sprintf("rule %d %s", a.Rule, a.Span)
}

// searchTree indexes forest nodes by span, so repeated (symbol, span) or
// (rule, span) derivations reuse the same node instead of duplicating it
// (gorgo's lr/sppf.searchTree, generalized to an arbitrary leaf type).
type searchTree map[earleygo.Span]*hashset.Set

func (t searchTree) add(span earleygo.Span, v interface{}) {
	set, ok := t[span]
	if !ok {
		set = hashset.New()
		t[span] = set
	}
	set.Add(v)
}

func (t searchTree) find(span earleygo.Span, match func(interface{}) bool) interface{} {
	set, ok := t[span]
	if !ok {
		return nil
	}
	for _, v := range set.Values() {
		if match(v) {
			return v
		}
	}
	return nil
}

func (t searchTree) all() []interface{} {
	var out []interface{}
	for _, set := range t {
		out = append(out, set.Values()...)
	}
	return out
}

// Forest is a shared packed parse forest over one recognized token stream.
type Forest struct {
	g           *grammar.Grammar
	symbolNodes searchTree
	altNodes    searchTree
	orEdges     map[*SymbolNode]*hashset.Set // -> AltNode
	root        *SymbolNode
}

// New returns an empty forest for symbols drawn from g.
func New(g *grammar.Grammar) *Forest {
	return &Forest{
		g:           g,
		symbolNodes: make(searchTree),
		altNodes:    make(searchTree),
		orEdges:     make(map[*SymbolNode]*hashset.Set),
	}
}

// Root returns the forest's top-level symbol node, set by the most recent
// AddReduction/AddEpsilonReduction call whose symbol is the grammar's start
// symbol.
func (f *Forest) Root() *SymbolNode { return f.root }

func (f *Forest) findSymbol(sym earleygo.Sym, span earleygo.Span) *SymbolNode {
	v := f.symbolNodes.find(span, func(el interface{}) bool {
		return el.(*SymbolNode).Symbol == sym
	})
	if v == nil {
		return nil
	}
	return v.(*SymbolNode)
}

func (f *Forest) addSymbol(sym earleygo.Sym, span earleygo.Span) *SymbolNode {
	if sn := f.findSymbol(sym, span); sn != nil {
		return sn
	}
	sn := &SymbolNode{Symbol: sym, Span: span}
	f.symbolNodes.add(span, sn)
	return sn
}

func (f *Forest) findAlt(rule int, span earleygo.Span) *AltNode {
	v := f.altNodes.find(span, func(el interface{}) bool {
		return el.(*AltNode).Rule == rule
	})
	if v == nil {
		return nil
	}
	return v.(*AltNode)
}

// AddReduction records that rule (identified by its serial) derives sym
// across span, via children; terminal leaves are added with AddTerminal. If an equal
// alternative is already present it is reused; otherwise it is added as a
// new or-edge out of sym's symbol node, so ambiguous derivations of the
// same span accumulate rather than overwrite each other.
//
// A void children slice must use AddEpsilonReduction instead (mirrors
// gorgo's lr/sppf.Forest.AddReduction).
func (f *Forest) AddReduction(sym earleygo.Sym, rule int, span earleygo.Span, children []*SymbolNode) *SymbolNode {
	if len(children) == 0 {
		return f.AddEpsilonReduction(sym, rule, span.From())
	}
	sn := f.addSymbol(sym, span)
	if alt := f.findAlt(rule, span); alt == nil {
		alt = &AltNode{Rule: rule, Span: span, Children: children}
		f.altNodes.add(span, alt)
		f.linkOrEdge(sn, alt)
		tracer().Debugf("reduction: %s -> rule %d, span %s, %d children", f.g.Name(sym), rule, span, len(children))
	}
	if sym == f.g.Start() {
		f.root = sn
	}
	return sn
}

// AddEpsilonReduction records a zero-width derivation of sym by rule at
// position pos (an epsilon production).
func (f *Forest) AddEpsilonReduction(sym earleygo.Sym, rule int, pos int) *SymbolNode {
	span := earleygo.Span{pos, pos}
	sn := f.addSymbol(sym, span)
	if alt := f.findAlt(rule, span); alt == nil {
		alt = &AltNode{Rule: rule, Span: span}
		f.altNodes.add(span, alt)
		f.linkOrEdge(sn, alt)
	}
	if sym == f.g.Start() {
		f.root = sn
	}
	return sn
}

// AddTerminal records a scanned terminal leaf spanning exactly one token.
func (f *Forest) AddTerminal(sym earleygo.Sym, pos int) *SymbolNode {
	return f.addSymbol(sym, earleygo.Span{pos, pos + 1})
}

func (f *Forest) linkOrEdge(sn *SymbolNode, alt *AltNode) {
	set, ok := f.orEdges[sn]
	if !ok {
		set = hashset.New()
		f.orEdges[sn] = set
	}
	set.Add(alt)
}

// Alternatives returns every AltNode derived for sn, in no particular
// order; len > 1 means sn is an ambiguous point in the forest.
func (f *Forest) Alternatives(sn *SymbolNode) []*AltNode {
	set, ok := f.orEdges[sn]
	if !ok {
		return nil
	}
	out := make([]*AltNode, 0, set.Size())
	for _, v := range set.Values() {
		out = append(out, v.(*AltNode))
	}
	return out
}

// ToGraphViz writes the forest to w in GraphViz DOT format, for the
// `earleyrec dump --forest` CLI subcommand (spec.md §6).
func ToGraphViz(f *Forest, w io.Writer) {
	io.WriteString(w, "digraph G {\n")
	io.WriteString(w, "  node [fontname=\"Helvetica\",shape=box,fontsize=10];\n")
	for _, v := range f.symbolNodes.all() {
		sn := v.(*SymbolNode)
		fmt.Fprintf(w, "  \"%s\" [label=\"%s %s\"];\n", sn.String(), f.g.Name(sn.Symbol), sn.Span)
	}
	for _, v := range f.altNodes.all() {
		alt := v.(*AltNode)
		fmt.Fprintf(w, "  \"%s\" [shape=ellipse,style=dashed];\n", alt.String())
	}
	for sn, set := range f.orEdges {
		for _, v := range set.Values() {
			alt := v.(*AltNode)
			fmt.Fprintf(w, "  \"%s\" -> \"%s\";\n", sn.String(), alt.String())
			for i, child := range alt.Children {
				fmt.Fprintf(w, "  \"%s\" -> \"%s\" [label=\"%d\"];\n", alt.String(), child.String(), i)
			}
		}
	}
	io.WriteString(w, "}\n")
}
