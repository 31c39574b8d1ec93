/*
Package grammar implements the canonical grammar model described in
spec.md §3–§4.1: rules over integer symbol ids, a terminal/nonterminal
discriminator, and the precomputed nullable/FIRST/FOLLOW tables an Earley
engine needs before it can build a single item set.

Grounded on the analysis phase of gorgo's lr package (lr/tables.go's
closure/goto computations consume exactly this kind of precomputed grammar)
and on original_source/include/grammar.hpp, which performs the same
nullable/FIRST/FOLLOW fixed points over a RuleList-per-nonterminal model.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.
*/
package grammar

import (
	"fmt"
	"sort"

	"github.com/npillmayer/schuko/tracing"

	"github.com/jarro2783/earleygo"
)

// tracer traces with key 'earley.grammar'.
func tracer() tracing.Trace {
	return tracing.Select("earley.grammar")
}

// Kind discriminates terminal from nonterminal symbols.
type Kind uint8

const (
	// Terminal symbols are scanned from input; they never appear as an LHS.
	Terminal Kind = iota
	// Nonterminal symbols are defined by one or more Rules.
	Nonterminal
)

func (k Kind) String() string {
	if k == Terminal {
		return "terminal"
	}
	return "nonterminal"
}

// Rule is an immutable production (nonterminal id, ordered sequence of
// symbols). Serial is the rule's index within its Grammar's flat rule table,
// used by Item to identify which rule a dotted position belongs to.
type Rule struct {
	Serial int
	LHS    earleygo.Sym
	RHS    []earleygo.Sym
}

// Len returns the number of symbols on the right-hand side.
func (r *Rule) Len() int { return len(r.RHS) }

func (r *Rule) String() string {
	return fmt.Sprintf("%s -> %v", r.LHS, r.RHS)
}

// Grammar is the immutable, validated grammar model consumed by the item
// store and recognition engine. Build one with NewBuilder.
type Grammar struct {
	start     earleygo.Sym
	kinds     map[earleygo.Sym]Kind
	names     map[earleygo.Sym]string
	rules     []*Rule
	byNT      map[earleygo.Sym][]*Rule
	nullable  map[earleygo.Sym]bool
	universe  *Universe
	firstSets map[earleygo.Sym]TermSet
	follow    map[earleygo.Sym]TermSet
}

// Start returns the grammar's start symbol.
func (g *Grammar) Start() earleygo.Sym { return g.start }

// Rules returns the alternatives for nonterminal nt, in declaration order.
func (g *Grammar) Rules(nt earleygo.Sym) []*Rule { return g.byNT[nt] }

// AllRules returns every rule in the grammar, indexed by Rule.Serial.
func (g *Grammar) AllRules() []*Rule { return g.rules }

// Rule looks up a rule by its serial number.
func (g *Grammar) Rule(serial int) *Rule { return g.rules[serial] }

// SymbolKind reports whether sym is a terminal or a nonterminal. Symbols
// never referenced by any rule (e.g. unused literal bytes) default to
// Terminal.
func (g *Grammar) SymbolKind(sym earleygo.Sym) Kind {
	if k, ok := g.kinds[sym]; ok {
		return k
	}
	return Terminal
}

// IsTerminal reports whether sym is a terminal symbol of this grammar.
func (g *Grammar) IsTerminal(sym earleygo.Sym) bool {
	return g.SymbolKind(sym) == Terminal
}

// Name returns a human-readable name for sym, falling back to Sym.String().
func (g *Grammar) Name(sym earleygo.Sym) string {
	if n, ok := g.names[sym]; ok {
		return n
	}
	return sym.String()
}

// Nullable reports whether nonterminal nt can derive the empty string.
// Terminals (and EndOfInput) are never nullable.
func (g *Grammar) Nullable(sym earleygo.Sym) bool {
	if g.IsTerminal(sym) {
		return false
	}
	return g.nullable[sym]
}

// First returns FIRST(nt): the set of terminals that can begin some
// derivation of nt.
func (g *Grammar) First(nt earleygo.Sym) TermSet {
	return g.firstSets[nt]
}

// Follow returns FOLLOW(nt): the set of terminals that can immediately
// follow nt in some sentential form.
func (g *Grammar) Follow(nt earleygo.Sym) TermSet {
	return g.follow[nt]
}

// Universe returns the dense terminal universe used for all TermSets
// belonging to this grammar; item lookahead sets must be built against it.
func (g *Grammar) Universe() *Universe { return g.universe }

// FirstOfSuffix computes FIRST of the symbol sequence rhs[from:], propagated
// with FOLLOW(owner) when the whole suffix is nullable (spec.md §4.1's
// "sequence lookahead", grounded on original_source/include/earley/fast/items.cpp's
// sequence_lookahead combined with empty_sequence).
func (g *Grammar) FirstOfSuffix(owner earleygo.Sym, rhs []earleygo.Sym, from int) TermSet {
	result := g.universe.NewSet()
	allNullable := true
	for _, sym := range rhs[from:] {
		if g.IsTerminal(sym) {
			result.Add(sym)
			allNullable = false
			break
		}
		result.Union(g.First(sym))
		if !g.Nullable(sym) {
			allNullable = false
			break
		}
	}
	if allNullable {
		result.Union(g.Follow(owner))
	}
	return result
}

// Builder incrementally constructs a Grammar. Use NewBuilder, call AddRule
// for every production, Name to register human-readable names, then Build.
type Builder struct {
	start earleygo.Sym
	rules []*Rule
	kinds map[earleygo.Sym]Kind
	names map[earleygo.Sym]string
	seen  map[earleygo.Sym]bool // seen as a terminal in some RHS
}

// NewBuilder creates a Builder whose start symbol is start.
func NewBuilder(start earleygo.Sym) *Builder {
	return &Builder{
		start: start,
		kinds: map[earleygo.Sym]Kind{start: Nonterminal},
		names: make(map[earleygo.Sym]string),
		seen:  make(map[earleygo.Sym]bool),
	}
}

// Name registers a human-readable name for sym, used in diagnostics.
func (b *Builder) Name(sym earleygo.Sym, name string) *Builder {
	b.names[sym] = name
	return b
}

// AddRule adds a production lhs -> rhs. rhs may be empty (an epsilon rule).
// Every symbol appearing in rhs is provisionally classified as a terminal
// until some AddRule call uses it as an lhs, at which point it becomes a
// nonterminal; Build validates that every nonterminal mentioned in some RHS
// has at least one rule.
func (b *Builder) AddRule(lhs earleygo.Sym, rhs ...earleygo.Sym) *Builder {
	b.kinds[lhs] = Nonterminal
	r := &Rule{Serial: len(b.rules), LHS: lhs, RHS: append([]earleygo.Sym(nil), rhs...)}
	b.rules = append(b.rules, r)
	for _, s := range rhs {
		if _, known := b.kinds[s]; !known {
			b.kinds[s] = Terminal
		}
		b.seen[s] = true
	}
	return b
}

// Build validates and finalizes the grammar, computing nullable/FIRST/FOLLOW.
// It fails with a *earleygo.GrammarInvalidError if the grammar is empty, has
// no rule for its start symbol, or references an undefined nonterminal (a
// symbol used as a non-leaf that never appears as an lhs and was never
// explicitly named a terminal).
func (b *Builder) Build() (*Grammar, error) {
	if len(b.rules) == 0 {
		return nil, &earleygo.GrammarInvalidError{Reason: "grammar has no rules"}
	}
	byNT := make(map[earleygo.Sym][]*Rule)
	for _, r := range b.rules {
		byNT[r.LHS] = append(byNT[r.LHS], r)
	}
	if _, ok := byNT[b.start]; !ok {
		return nil, &earleygo.GrammarInvalidError{Reason: fmt.Sprintf("no rule for start symbol %s", b.start)}
	}
	// every symbol classified Nonterminal must have at least one rule.
	for sym, kind := range b.kinds {
		if kind == Nonterminal {
			if _, ok := byNT[sym]; !ok {
				return nil, &earleygo.GrammarInvalidError{
					Reason: fmt.Sprintf("undefined nonterminal %s", sym),
				}
			}
		}
	}

	g := &Grammar{
		start: b.start,
		kinds: b.kinds,
		names: b.names,
		rules: b.rules,
		byNT:  byNT,
	}
	g.universe = newUniverse()
	g.universe.intern(earleygo.EndOfInput)
	for _, r := range b.rules {
		for _, s := range r.RHS {
			if g.IsTerminal(s) {
				g.universe.intern(s)
			}
		}
	}

	g.computeNullable()
	g.computeFirst()
	g.computeFollow()
	return g, nil
}

// computeNullable runs a fixed point over an inverted index symbol→rules,
// per spec.md §4.1: a nonterminal is nullable if some rule's RHS is empty or
// every symbol in it is (already known) nullable.
func (g *Grammar) computeNullable() {
	g.nullable = make(map[earleygo.Sym]bool, len(g.byNT))
	changed := true
	for changed {
		changed = false
		for nt, rules := range g.byNT {
			if g.nullable[nt] {
				continue
			}
			for _, r := range rules {
				if ruleNullable(r, g.nullable) {
					g.nullable[nt] = true
					changed = true
					break
				}
			}
		}
	}
	tracer().Debugf("nullable set: %v", g.nullable)
}

func ruleNullable(r *Rule, nullable map[earleygo.Sym]bool) bool {
	for _, s := range r.RHS {
		if !nullable[s] {
			return false
		}
	}
	return true
}

// computeFirst computes FIRST per nonterminal by fixed point: propagate
// FIRST across the leading symbols of each alternative until a non-nullable
// symbol blocks; epsilon (i.e. FOLLOW-propagation) is handled separately in
// computeFollow, matching spec.md §4.1.
func (g *Grammar) computeFirst() {
	g.firstSets = make(map[earleygo.Sym]TermSet, len(g.byNT))
	for nt := range g.byNT {
		g.firstSets[nt] = g.universe.NewSet()
	}
	changed := true
	for changed {
		changed = false
		for nt, rules := range g.byNT {
			set := g.firstSets[nt]
			for _, r := range rules {
				for _, s := range r.RHS {
					if g.IsTerminal(s) {
						if set.Add(s) {
							changed = true
						}
						break
					}
					if set.Union(g.firstSets[s]) {
						changed = true
					}
					if !g.nullable[s] {
						break
					}
				}
			}
			g.firstSets[nt] = set
		}
	}
	tracer().Debugf("computed FIRST sets for %d nonterminals", len(g.firstSets))
}

// computeFollow implements the usual fixed point (spec.md §4.1): the start
// symbol's FOLLOW contains EndOfInput; for every occurrence A -> α B β, add
// FIRST(β)\{ε} to FOLLOW(B); add FOLLOW(A) to FOLLOW(B) when β is nullable.
func (g *Grammar) computeFollow() {
	g.follow = make(map[earleygo.Sym]TermSet, len(g.byNT))
	for nt := range g.byNT {
		g.follow[nt] = g.universe.NewSet()
	}
	startFollow := g.follow[g.start]
	startFollow.Add(earleygo.EndOfInput)
	g.follow[g.start] = startFollow

	changed := true
	for changed {
		changed = false
		for _, rules := range g.byNT {
			for _, r := range rules {
				for i, s := range r.RHS {
					if g.IsTerminal(s) {
						continue
					}
					beta := r.RHS[i+1:]
					set := g.follow[s]
					suffixNullable := true
					for _, b := range beta {
						if g.IsTerminal(b) {
							if set.Add(b) {
								changed = true
							}
							suffixNullable = false
							break
						}
						if set.Union(g.firstSets[b]) {
							changed = true
						}
						if !g.nullable[b] {
							suffixNullable = false
							break
						}
					}
					if suffixNullable {
						if set.Union(g.follow[r.LHS]) {
							changed = true
						}
					}
					g.follow[s] = set
				}
			}
		}
	}
	tracer().Debugf("computed FOLLOW sets for %d nonterminals", len(g.follow))
}

// EachSymbol calls fn for every distinct symbol id the grammar mentions
// (as an lhs or anywhere in a rhs), in ascending order; useful for building
// dense per-symbol tables in callers (mirrors lr.Grammar.EachSymbol).
func (g *Grammar) EachSymbol(fn func(sym earleygo.Sym, kind Kind)) {
	syms := make([]earleygo.Sym, 0, len(g.kinds))
	for s := range g.kinds {
		syms = append(syms, s)
	}
	sort.Slice(syms, func(i, j int) bool { return syms[i] < syms[j] })
	for _, s := range syms {
		fn(s, g.kinds[s])
	}
}
