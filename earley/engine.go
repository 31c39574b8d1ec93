/*
Package earley implements the recognition engine of spec.md §4.6: per-token
item-set construction (scan, prediction with the nullable shortcut,
completion, lookahead filtering), interning of cores/sets/distance vectors,
and the lookahead-keyed goto-reuse cache that lets repeated token contexts
skip recomputation entirely.

Grounded on original_source/src/fast/fast.cpp (Parser::parse,
Parser::create_new_set, Parser::expand_set and friends) for the algorithm,
and on gorgo's lr/earley/earley.go for the surrounding Go package shape
(a tracer() func per package, an Option-configured constructor, a Parse
method returning (accept bool, err error)).

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.
*/
package earley

import (
	"github.com/cnf/structhash"
	"github.com/emirpasic/gods/sets/treeset"
	"github.com/npillmayer/schuko/tracing"

	"github.com/jarro2783/earleygo"
	"github.com/jarro2783/earleygo/grammar"
	"github.com/jarro2783/earleygo/internal/arena"
	"github.com/jarro2783/earleygo/internal/hashset"
	"github.com/jarro2783/earleygo/item"
)

func tracer() tracing.Trace {
	return tracing.Select("earley.engine")
}

// DefaultMaxLookaheadSets is the ring size for each goto-cache entry,
// matching original_source's MAX_LOOKAHEAD_SETS tuning constant. spec.md §9
// leaves the exact bound a deployment choice; see DESIGN.md.
const DefaultMaxLookaheadSets = 4

type transKey struct {
	core *Core
	sym  earleygo.Sym
}

type gotoEntry struct {
	prev       *Set
	token      earleygo.Sym
	lookahead  earleygo.Sym
	successors []*Set
	origins    []int
	next       int
}

// Engine is the Earley recognition engine of spec.md §4.6. Create one with
// New; it owns the chart, the intern tables, the goto cache, and the
// scratch region stacks for the in-progress item set. An Engine is not
// thread-safe: each concurrent parse must own its own Engine (spec.md §5).
type Engine struct {
	g     *grammar.Grammar
	store *item.Store

	coreTable *hashset.HashSet[*Core]
	setTable  *hashset.HashSet[*Set]
	distTable *hashset.HashSet[[]int]
	gotoCache *hashset.HashSet[*gotoEntry]

	transIndex map[transKey][]int
	membership []map[int]int
	derivEdges map[DerivKey][]DerivEdge

	itemsArena  *arena.Stack[*item.Item]
	parentArena *arena.Stack[int]
	distArena   *arena.Stack[int]

	chart   []*Set
	tokens  []earleygo.Sym

	maxLookaheadSets int
	reuseCount       int
	collisionCount   int
}

// Option configures an Engine at construction time.
type Option func(*Engine)

// MaxLookaheadSets overrides DefaultMaxLookaheadSets.
func MaxLookaheadSets(n int) Option {
	return func(e *Engine) { e.maxLookaheadSets = n }
}

// New builds an Engine for grammar g, using an item store already built
// over g (callers typically do item.NewStore(g) once and reuse it across
// many Engines, since the store is immutable, spec.md §5).
func New(g *grammar.Grammar, store *item.Store, opts ...Option) *Engine {
	e := &Engine{
		g:                g,
		store:            store,
		transIndex:       make(map[transKey][]int),
		membership:       make([]map[int]int, store.Count()),
		derivEdges:       make(map[DerivKey][]DerivEdge),
		itemsArena:       arena.New[*item.Item](),
		parentArena:      arena.New[int](),
		distArena:        arena.New[int](),
		maxLookaheadSets: DefaultMaxLookaheadSets,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.coreTable = hashset.New[*Core](
		func(c *Core) uint64 { return c.hashVal },
		coresEqual,
	)
	e.setTable = hashset.New[*Set](
		func(s *Set) uint64 { return s.hashVal },
		setsEqual,
	)
	e.distTable = hashset.New[[]int](hashInts, intsEqual)
	e.gotoCache = hashset.New[*gotoEntry](hashGotoKey, gotoKeysEqual)
	return e
}

// Grammar returns the grammar this engine recognizes against.
func (e *Engine) Grammar() *grammar.Grammar { return e.g }

// Chart returns the chart built by the most recent Recognize call: one
// column per token, plus the initial column at index 0.
func (e *Engine) Chart() []*Set { return e.chart }

// Tokens returns the token stream of the most recent Recognize call.
func (e *Engine) Tokens() []earleygo.Sym { return e.tokens }

// Store returns the item store this engine was built with.
func (e *Engine) Store() *item.Store { return e.store }

// Stats reports goto-cache effectiveness, mirroring original_source's
// Parser::print_stats().
type Stats struct {
	Columns        int
	UniqueCores    int
	UniqueSets     int
	GotoReuses     int
	GotoCollisions int
}

// Stats returns bookkeeping counters. Columns describes the most recent
// Recognize call; the other counters accumulate over every Recognize call
// made on this engine, since its intern tables and goto cache persist
// between calls.
func (e *Engine) Stats() Stats {
	return Stats{
		Columns:        len(e.chart),
		UniqueCores:    e.coreTable.Len(),
		UniqueSets:     e.setTable.Len(),
		GotoReuses:     e.reuseCount,
		GotoCollisions: e.collisionCount,
	}
}

// Recognize runs the engine over tokens left to right (spec.md §4.6,
// §5: "Ordering of token processing is strictly left-to-right"), building a
// fresh chart, and reports whether the token sequence is a sentence of the
// grammar. A non-nil error is either a *earleygo.ParseError (rejection) or
// a *earleygo.UnexpectedCompletionError (internal corruption).
func (e *Engine) Recognize(tokens []earleygo.Sym) (accept bool, err error) {
	e.tokens = tokens
	e.chart = make([]*Set, 0, len(tokens)+1)
	e.membership = make([]map[int]int, e.store.Count())
	e.derivEdges = make(map[DerivKey][]DerivEdge)
	start, err := e.createStartSet()
	if err != nil {
		return false, err
	}
	e.chart = append(e.chart, start)
	for position := 0; position < len(tokens); position++ {
		if err := e.parseAt(position); err != nil {
			return false, err
		}
	}
	return e.checkAccept(), nil
}

// createStartSet builds column 0: for every rule of the start symbol, add
// (item(rule, dot=0), distance=0) as a start item, then expand it
// (spec.md §4.6, "Start column").
func (e *Engine) createStartSet() (*Set, error) {
	return e.buildColumn(0, func(add func(*item.Item, int)) error {
		for _, r := range e.g.Rules(e.g.Start()) {
			it := e.store.MustGetItem(r, 0)
			add(it, 0)
		}
		return nil
	})
}

// parseAt advances the chart by one column for tokens[position], per
// spec.md §4.6's parse(position).
func (e *Engine) parseAt(position int) error {
	token := e.tokens[position]
	lookahead := earleygo.EndOfInput
	if position+1 < len(e.tokens) {
		lookahead = e.tokens[position+1]
	}
	prev := e.chart[position]

	probe := &gotoEntry{prev: prev, token: token, lookahead: lookahead}
	if handle := e.gotoCache.Find(probe); handle != nil {
		if succ, ok := e.tryReuse(*handle, position); ok {
			e.chart = append(e.chart, succ)
			return nil
		}
		e.collisionCount++
	}

	bucket, ok := e.transIndex[transKey{prev.Core, token}]
	if !ok {
		return &earleygo.ParseError{Position: position, Expected: e.expectedTerminals(prev)}
	}

	column := position + 1
	set, err := e.buildColumn(column, func(add func(*item.Item, int)) error {
		e.scanBucket(add, prev, bucket, position, lookahead)
		return e.completeColumn(add, position, lookahead)
	})
	if err != nil {
		return err
	}

	e.recordGotoCache(probe, set, position+1)
	e.chart = append(e.chart, set)
	return nil
}

// scanBucket implements spec.md §4.6 step 2a.
func (e *Engine) scanBucket(add func(*item.Item, int), prev *Set, bucket []int, position int, lookahead earleygo.Sym) {
	column := position + 1
	for _, idx := range bucket {
		it := prev.Core.Item(idx)
		next := e.store.MustGetItem(it.Rule, it.Dot+1)
		if !next.InLookahead(lookahead) {
			continue
		}
		distance := prev.ActualDistance(idx) + 1
		add(next, distance)
		e.recordDeriv(DerivKey{Item: next, Column: column, Distance: distance}, DerivEdge{
			Predecessor:       it,
			PredecessorColumn: position,
			ChildSymbol:       e.tokens[position],
			ChildColumn:       column,
			ChildIsTerminal:   true,
		})
	}
}

// completeColumn implements spec.md §4.6 step 2b: nullable-empty completed
// start items already present in the new core reduce in place. The loop
// re-reads the item count on every iteration, because completion of one
// start item may itself add further start items that also need completing.
func (e *Engine) completeColumn(add func(*item.Item, int), position int, lookahead earleygo.Sym) error {
	column := position + 1
	for i := 0; i < e.itemsArena.Len(); i++ {
		it := *e.itemsArena.At(i)
		if !it.EmptyRHS {
			continue
		}
		dist := *e.distArena.At(i)
		from := position - dist + 1
		fromSet := e.chart[from]

		bucket, ok := e.transIndex[transKey{fromSet.Core, it.Rule.LHS}]
		if !ok {
			if it.Rule.LHS == e.g.Start() {
				continue // the accepting reduction: permitted to have no predictor.
			}
			return &earleygo.UnexpectedCompletionError{
				Nonterminal: it.Rule.LHS,
				Origin:      from,
				Position:    position,
			}
		}
		for _, tIdx := range bucket {
			titem := fromSet.Core.Item(tIdx)
			next := e.store.MustGetItem(titem.Rule, titem.Dot+1)
			if !next.InLookahead(lookahead) {
				continue
			}
			distance := fromSet.ActualDistance(tIdx) + dist
			add(next, distance)
			e.recordDeriv(DerivKey{Item: next, Column: column, Distance: distance}, DerivEdge{
				Predecessor:       titem,
				PredecessorColumn: from,
				ChildSymbol:       it.Rule.LHS,
				ChildColumn:       column,
				ChildIsTerminal:   false,
			})
		}
	}
	return nil
}

// buildColumn runs populate to collect the new column's start items
// (deduplicated via item_membership), then interns the resulting core
// (expanding it if genuinely new) and distance vector, and finally interns
// the (core, distances) pair as a Set (spec.md §4.6 step 2c-d).
func (e *Engine) buildColumn(column int, populate func(add func(*item.Item, int)) error) (*Set, error) {
	if err := e.itemsArena.Start(); err != nil {
		return nil, err
	}
	if err := e.distArena.Start(); err != nil {
		e.itemsArena.DestroyTop()
		return nil, err
	}

	add := func(it *item.Item, distance int) {
		if !e.tryMarkMembership(it.Index, distance, column) {
			return
		}
		e.itemsArena.Emplace(it)
		e.distArena.Emplace(distance)
	}
	if err := populate(add); err != nil {
		e.itemsArena.DestroyTop()
		e.distArena.DestroyTop()
		return nil, err
	}

	startCount := e.itemsArena.Len()
	startItems := make([]*item.Item, startCount)
	for i := 0; i < startCount; i++ {
		startItems[i] = *e.itemsArena.At(i)
	}
	candidate := &Core{Items: startItems, StartCount: startCount, hashVal: hashStartItems(startItems)}

	var core *Core
	if existing := e.coreTable.Find(candidate); existing != nil {
		e.itemsArena.DestroyTop()
		core = *existing
	} else {
		e.expandSet(candidate, startCount)
		candidate.Items = e.itemsArena.Finalize()
		handle, _ := e.coreTable.Insert(candidate)
		core = *handle
	}

	return e.internSet(core, startCount), nil
}

// expandSet implements spec.md §4.6's two expand_set phases over core,
// which at this point holds only start items on the still-open itemsArena
// run; it appends derived items to that same run.
func (e *Engine) expandSet(core *Core, startCount int) {
	e.parentArena.Start()
	for i := 0; i < startCount; i++ {
		it := *e.itemsArena.At(i)
		rhs := it.Rule.RHS
		pos := it.Dot
		for pos < len(rhs) && e.g.Nullable(rhs[pos]) {
			pos++
			next := e.store.MustGetItem(it.Rule, pos)
			e.itemsArena.Emplace(next)
			e.parentArena.Emplace(i)
		}
	}
	core.NullableDerivedCount = e.itemsArena.Len() - startCount
	core.Parent = e.parentArena.Finalize()

	for i := 0; i < e.itemsArena.Len(); i++ {
		it := *e.itemsArena.At(i)
		sym, ok := it.NextSymbol()
		if !ok {
			continue
		}
		if e.g.IsTerminal(sym) {
			key := transKey{core, sym}
			e.transIndex[key] = append(e.transIndex[key], i)
		} else {
			key := transKey{core, sym}
			if _, exists := e.transIndex[key]; !exists {
				e.transIndex[key] = make([]int, 0, 2)
				for _, rule := range e.g.Rules(sym) {
					e.appendPredictedUnique(startCount, e.store.MustGetItem(rule, 0))
				}
			}
			e.transIndex[key] = append(e.transIndex[key], i)
		}
		if e.g.Nullable(sym) {
			e.appendPredictedUnique(startCount, e.store.MustGetItem(it.Rule, it.Dot+1))
		}
	}
}

// appendPredictedUnique appends it to the open itemsArena run unless an
// equal (pointer-identical, since items are interned) derived item is
// already present — spec.md §4.6: "Prediction never introduces duplicate
// derived items: the engine scans the current derived-items suffix of the
// core before adding."
func (e *Engine) appendPredictedUnique(startCount int, it *item.Item) {
	for i := startCount; i < e.itemsArena.Len(); i++ {
		if *e.itemsArena.At(i) == it {
			return
		}
	}
	e.itemsArena.Emplace(it)
}

// internSet finalizes or discards the open distArena run depending on
// whether a structurally identical distance vector is already interned,
// then interns the (core, distances) pair as a Set.
func (e *Engine) internSet(core *Core, startCount int) *Set {
	distCopy := make([]int, startCount)
	for i := 0; i < startCount; i++ {
		distCopy[i] = *e.distArena.At(i)
	}

	var distances []int
	if existing := e.distTable.Find(distCopy); existing != nil {
		e.distArena.DestroyTop()
		distances = *existing
	} else {
		distances = e.distArena.Finalize()
		e.distTable.Insert(distances)
	}

	candidate := &Set{Core: core, Distances: distances, hashVal: hashSet(core, distances)}
	handle, _ := e.setTable.Insert(candidate)
	return *handle
}

// tryMarkMembership is the item_membership side table of spec.md §4.6: it
// suppresses duplicate (item, distance) inserts within the same column in
// O(1).
func (e *Engine) tryMarkMembership(itemIndex, distance, column int) bool {
	m := e.membership[itemIndex]
	if m == nil {
		m = make(map[int]int)
		e.membership[itemIndex] = m
	}
	if last, ok := m[distance]; ok && last == column {
		return false
	}
	m[distance] = column
	return true
}

// tryReuse implements spec.md §4.6 step 1's goto-cache verification: a hit
// must be re-verified by comparing lookahead contexts before reuse.
func (e *Engine) tryReuse(entry *gotoEntry, position int) (*Set, bool) {
	for k, succ := range entry.successors {
		place := entry.origins[k]
		if e.verifyLookaheadContext(succ, place, position) {
			e.reuseCount++
			return succ, true
		}
	}
	return nil, false
}

func (e *Engine) verifyLookaheadContext(succ *Set, place, position int) bool {
	for i := 0; i < succ.Core.StartCount; i++ {
		d := succ.Distances[i]
		a, b := place-d, position+1-d
		if a < 0 || b < 0 || a >= len(e.chart) || b > len(e.chart) {
			return false
		}
		if a == len(e.chart) || b == len(e.chart) {
			// one side refers to the column currently under construction;
			// cannot verify yet, so the cache entry does not apply.
			return false
		}
		if e.chart[a] != e.chart[b] {
			return false
		}
	}
	return true
}

func (e *Engine) recordGotoCache(probe *gotoEntry, set *Set, origin int) {
	handle, inserted := e.gotoCache.Insert(probe)
	entry := *handle
	if inserted {
		entry.successors = make([]*Set, 0, e.maxLookaheadSets)
		entry.origins = make([]int, 0, e.maxLookaheadSets)
	}
	if len(entry.successors) < e.maxLookaheadSets {
		entry.successors = append(entry.successors, set)
		entry.origins = append(entry.origins, origin)
	} else {
		entry.successors[entry.next] = set
		entry.origins[entry.next] = origin
		entry.next = (entry.next + 1) % e.maxLookaheadSets
	}
}

// checkAccept implements spec.md §4.6's "Acceptance". A start-symbol item
// whose remaining suffix is nullable accepts right-nulled, via EmptyRHS,
// not only when the dot is literally at the end of the rule: a start rule
// ending in nullable symbols (e.g. S -> '(' S ')' S) is never literally
// AtEnd as a start item, since its literal-end item only ever appears as a
// derived nullable-shortcut item.
func (e *Engine) checkAccept() bool {
	final := e.chart[len(e.chart)-1]
	total := len(e.chart) - 1
	for i := 0; i < final.Core.StartCount; i++ {
		it := final.Core.Item(i)
		if it.Rule.LHS == e.g.Start() && it.EmptyRHS && final.Distance(i) == total {
			return true
		}
	}
	return false
}

// expectedTerminals implements spec.md §7's ParseError payload: the
// terminal symbol after the dot of every item in the previous column, as a
// deduplicated, ascending-id list. Built on a treeset (spec.md §4.9), the
// same container gorgo's lr/tables.go uses to keep a CFSM's state set in a
// stable, comparator-ordered iteration order — here the comparator is
// just numeric Sym order, so a diagnostic's expected-terminal set prints
// the same way on every run instead of depending on insertion order.
func (e *Engine) expectedTerminals(prev *Set) []earleygo.Sym {
	set := treeset.NewWith(symComparator)
	for i := 0; i < prev.Core.Len(); i++ {
		sym, ok := prev.Core.Item(i).NextSymbol()
		if !ok || !e.g.IsTerminal(sym) {
			continue
		}
		set.Add(sym)
	}
	out := make([]earleygo.Sym, 0, set.Size())
	for _, v := range set.Values() {
		out = append(out, v.(earleygo.Sym))
	}
	return out
}

func symComparator(a, b interface{}) int {
	sa, sb := a.(earleygo.Sym), b.(earleygo.Sym)
	switch {
	case sa < sb:
		return -1
	case sa > sb:
		return 1
	default:
		return 0
	}
}

// --- hashing & equality for the intern tables --------------------------
//
// Content hashes are computed with structhash (spec.md §4.9's "structural
// hashing"), the same package gorgo's own earley.hash() leans on; the
// resulting digest is folded into a uint64 for use as a HashSet key.

func combine(h, x uint64) uint64 {
	h ^= x
	h *= 1099511628211
	return h
}

func foldDigest(b []byte) uint64 {
	h := uint64(14695981039346656037)
	for _, c := range b {
		h = combine(h, uint64(c))
	}
	return h
}

func structHash(v interface{}) uint64 {
	sum, err := structhash.Md5(v, 1)
	if err != nil {
		// only returned by structhash on a value it cannot reflect over
		// (e.g. a channel); every call site here passes plain data.
		panic(err)
	}
	return foldDigest(sum)
}

func hashStartItems(items []*item.Item) uint64 {
	idx := make([]int, len(items))
	for i, it := range items {
		idx[i] = it.Index
	}
	return structHash(idx)
}

func coresEqual(a, b *Core) bool {
	as, bs := a.StartItems(), b.StartItems()
	if len(as) != len(bs) {
		return false
	}
	for i := range as {
		if as[i] != bs[i] {
			return false
		}
	}
	return true
}

type setDigest struct {
	Core uint64
	Dist []int
}

func hashSet(core *Core, distances []int) uint64 {
	return structHash(setDigest{Core: core.hashVal, Dist: distances})
}

func setsEqual(a, b *Set) bool {
	if a.Core != b.Core {
		return false
	}
	return intsEqual(a.Distances, b.Distances)
}

func hashInts(v []int) uint64 {
	return structHash(v)
}

func intsEqual(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

type gotoKeyDigest struct {
	Prev      uint64
	Token     int32
	Lookahead int32
}

func hashGotoKey(e *gotoEntry) uint64 {
	return structHash(gotoKeyDigest{
		Prev:      e.prev.Hash(),
		Token:     int32(e.token),
		Lookahead: int32(e.lookahead),
	})
}

func gotoKeysEqual(a, b *gotoEntry) bool {
	return a.prev == b.prev && a.token == b.token && a.lookahead == b.lookahead
}
