package item

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jarro2783/earleygo"
	"github.com/jarro2783/earleygo/grammar"
)

const (
	symS earleygo.Sym = 256 + iota
	symA
	symB
)

// S -> A B
// A -> a | (epsilon)
// B -> (epsilon)
func buildNullableTailGrammar(t *testing.T) *grammar.Grammar {
	t.Helper()
	b := grammar.NewBuilder(symS).Name(symS, "S").Name(symA, "A").Name(symB, "B")
	b.AddRule(symS, symA, symB)
	b.AddRule(symA, earleygo.Sym('a'))
	b.AddRule(symA)
	b.AddRule(symB)
	g, err := b.Build()
	require.NoError(t, err)
	return g
}

func TestStore_InternsEveryDot(t *testing.T) {
	g := buildNullableTailGrammar(t)
	s := NewStore(g)
	assert := assert.New(t)

	r := g.Rules(symS)[0] // S -> A B
	for dot := 0; dot <= len(r.RHS); dot++ {
		it, err := s.GetItem(r, dot)
		require.NoError(t, err)
		assert.Equal(dot, it.Dot)
		assert.Same(r, it.Rule)
	}
}

func TestStore_GetItem_OutOfRange(t *testing.T) {
	g := buildNullableTailGrammar(t)
	s := NewStore(g)
	r := g.Rules(symS)[0]

	_, err := s.GetItem(r, len(r.RHS)+1)
	var outOfRange *earleygo.OutOfRangeItemError
	assert.ErrorAs(t, err, &outOfRange)
}

func TestStore_MustGetItem_Panics(t *testing.T) {
	g := buildNullableTailGrammar(t)
	s := NewStore(g)
	r := g.Rules(symS)[0]

	assert.Panics(t, func() {
		s.MustGetItem(r, len(r.RHS)+1)
	})
}

// EmptyRHS must hold at every dot whose remaining suffix is nullable, not
// only when the dot is literally at the end of the rule: S -> A B has both A
// and B nullable, so EmptyRHS is true at dot 0, dot 1, and dot 2.
func TestEmptyRHS_HoldsFromAnyNullableSuffixDot(t *testing.T) {
	g := buildNullableTailGrammar(t)
	s := NewStore(g)
	assert := assert.New(t)

	r := g.Rules(symS)[0] // S -> A B, both nullable
	for dot := 0; dot <= len(r.RHS); dot++ {
		it, err := s.GetItem(r, dot)
		require.NoError(t, err)
		assert.Truef(it.EmptyRHS, "dot %d should have EmptyRHS set", dot)
	}

	// A -> a is not nullable at dot 0 (a remains to be scanned).
	aRule := g.Rules(symA)[0] // A -> a
	atStart, err := s.GetItem(aRule, 0)
	require.NoError(t, err)
	assert.False(atStart.EmptyRHS)
	atEnd, err := s.GetItem(aRule, 1)
	require.NoError(t, err)
	assert.True(atEnd.EmptyRHS)
}

func TestItem_AtEndAndNextSymbol(t *testing.T) {
	g := buildNullableTailGrammar(t)
	s := NewStore(g)
	assert := assert.New(t)

	r := g.Rules(symS)[0]
	first := s.MustGetItem(r, 0)
	assert.False(first.AtEnd())
	sym, ok := first.NextSymbol()
	assert.True(ok)
	assert.Equal(symA, sym)

	last := s.MustGetItem(r, 2)
	assert.True(last.AtEnd())
	_, ok = last.NextSymbol()
	assert.False(ok)
}

func TestItem_InLookahead(t *testing.T) {
	g := buildNullableTailGrammar(t)
	s := NewStore(g)
	rule := g.Rules(symA)[0] // A -> a

	// At dot 0, the remaining rhs is "a": lookahead is just {a}.
	atStart := s.MustGetItem(rule, 0)
	assert.True(t, atStart.InLookahead(earleygo.Sym('a')))
	assert.False(t, atStart.InLookahead(earleygo.EndOfInput))

	// At dot 1 (AtEnd), lookahead is FOLLOW(A): B is nullable in S -> A B,
	// so FOLLOW(A) carries FOLLOW(S), which contains EndOfInput.
	atEnd := s.MustGetItem(rule, 1)
	assert.True(t, atEnd.InLookahead(earleygo.EndOfInput))
}

func TestStore_Count(t *testing.T) {
	g := buildNullableTailGrammar(t)
	s := NewStore(g)
	// S->AB (3 dots) + A->a (2 dots) + A-> (1 dot) + B-> (1 dot) = 7
	assert.Equal(t, 7, s.Count())
}
