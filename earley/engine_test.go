package earley

import (
	"errors"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jarro2783/earleygo"
	"github.com/jarro2783/earleygo/grammar"
	"github.com/jarro2783/earleygo/item"
)

func tokens(s string) []earleygo.Sym {
	out := make([]earleygo.Sym, len(s))
	for i := 0; i < len(s); i++ {
		out[i] = earleygo.Sym(s[i])
	}
	return out
}

func newEngine(t *testing.T, g *grammar.Grammar) *Engine {
	t.Helper()
	return New(g, item.NewStore(g))
}

// S -> e | '(' S ')' S
func balancedParensGrammar(t *testing.T) *grammar.Grammar {
	t.Helper()
	const symS earleygo.Sym = 256
	b := grammar.NewBuilder(symS).Name(symS, "S")
	b.AddRule(symS)
	b.AddRule(symS, earleygo.Sym('('), symS, earleygo.Sym(')'), symS)
	g, err := b.Build()
	require.NoError(t, err)
	return g
}

func TestRecognize_BalancedParens(t *testing.T) {
	g := balancedParensGrammar(t)
	accepted := []string{"", "()", "(())", "()()"}
	rejected := []string{"(", "((", ")("}

	for _, in := range accepted {
		t.Run("accepts "+in, func(t *testing.T) {
			e := newEngine(t, g)
			ok, err := e.Recognize(tokens(in))
			assert.NoError(t, err)
			assert.True(t, ok)
		})
	}
	for _, in := range rejected {
		t.Run("rejects "+in, func(t *testing.T) {
			e := newEngine(t, g)
			ok, err := e.Recognize(tokens(in))
			if err == nil {
				assert.False(t, ok)
			}
		})
	}
}

const (
	symN earleygo.Sym = 256 + iota
	symD
	symE
	symT
	symF
	symSum
)

// N -> D | N D ; D -> '0'..'9'
func digitSequenceGrammar(t *testing.T) *grammar.Grammar {
	t.Helper()
	b := grammar.NewBuilder(symN).Name(symN, "N").Name(symD, "D")
	b.AddRule(symN, symD)
	b.AddRule(symN, symN, symD)
	for d := '0'; d <= '9'; d++ {
		b.AddRule(symD, earleygo.Sym(d))
	}
	g, err := b.Build()
	require.NoError(t, err)
	return g
}

func TestRecognize_DigitSequence(t *testing.T) {
	g := digitSequenceGrammar(t)

	for _, in := range []string{"0", "123"} {
		t.Run("accepts "+in, func(t *testing.T) {
			e := newEngine(t, g)
			ok, err := e.Recognize(tokens(in))
			require.NoError(t, err)
			assert.True(t, ok)
		})
	}
	for _, in := range []string{"", "1a"} {
		t.Run("rejects "+in, func(t *testing.T) {
			e := newEngine(t, g)
			ok, err := e.Recognize(tokens(in))
			if err == nil {
				assert.False(t, ok)
			}
		})
	}
}

// E -> E '+' T | T ; T -> T '*' F | F ; F -> '(' E ')' | N ; N as digitSequenceGrammar
func arithmeticGrammar(t *testing.T) *grammar.Grammar {
	t.Helper()
	b := grammar.NewBuilder(symE).Name(symE, "E").Name(symT, "T").Name(symF, "F").
		Name(symN, "N").Name(symD, "D")
	b.AddRule(symE, symE, earleygo.Sym('+'), symT)
	b.AddRule(symE, symT)
	b.AddRule(symT, symT, earleygo.Sym('*'), symF)
	b.AddRule(symT, symF)
	b.AddRule(symF, earleygo.Sym('('), symE, earleygo.Sym(')'))
	b.AddRule(symF, symN)
	b.AddRule(symN, symD)
	b.AddRule(symN, symN, symD)
	for d := '0'; d <= '9'; d++ {
		b.AddRule(symD, earleygo.Sym(d))
	}
	g, err := b.Build()
	require.NoError(t, err)
	return g
}

func TestRecognize_Arithmetic(t *testing.T) {
	g := arithmeticGrammar(t)
	e := newEngine(t, g)
	ok, err := e.Recognize(tokens("1+2*3"))
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRecognize_RejectionDiagnostics(t *testing.T) {
	g := arithmeticGrammar(t)
	e := newEngine(t, g)
	_, err := e.Recognize(tokens("1+*2"))
	require.Error(t, err)

	var perr *earleygo.ParseError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, 2, perr.Position)

	assert.Contains(t, perr.Expected, earleygo.Sym('('))
	hasDigit := false
	for _, s := range perr.Expected {
		if s >= earleygo.Sym('0') && s <= earleygo.Sym('9') {
			hasDigit = true
			break
		}
	}
	assert.True(t, hasDigit, "expected set should contain at least one digit terminal")
}

// S -> S '+' S | '1'
func ambiguousSumGrammar(t *testing.T) *grammar.Grammar {
	t.Helper()
	b := grammar.NewBuilder(symSum).Name(symSum, "S")
	b.AddRule(symSum, symSum, earleygo.Sym('+'), symSum)
	b.AddRule(symSum, earleygo.Sym('1'))
	g, err := b.Build()
	require.NoError(t, err)
	return g
}

func TestRecognize_AmbiguousSum(t *testing.T) {
	g := ambiguousSumGrammar(t)
	e := newEngine(t, g)
	ok, err := e.Recognize(tokens("1+1+1"))
	require.NoError(t, err)
	assert.True(t, ok)
}

// S -> S (left recursion without a base case): never diverges, never accepts
// any non-empty input (and the empty input is rejected too, since S has no
// base rule at all to ground a derivation).
func TestRecognize_LeftRecursionWithoutBase(t *testing.T) {
	const symS earleygo.Sym = 256
	b := grammar.NewBuilder(symS).Name(symS, "S")
	b.AddRule(symS, symS)
	g, err := b.Build()
	require.NoError(t, err)

	e := newEngine(t, g)
	for _, in := range []string{"", "a", "aa"} {
		ok, _ := e.Recognize(tokens(in))
		assert.Falsef(t, ok, "input %q should never accept", in)
	}
}

// S -> A B C 'x' ; A,B,C -> ε. Accepting "x" must go through the nullable
// shortcut (derived items stepping over the nullable A, B, C), not a chain
// of completions.
func TestRecognize_NullableChain(t *testing.T) {
	const (
		symS earleygo.Sym = 256 + iota
		symA
		symB
		symC
	)
	b := grammar.NewBuilder(symS).Name(symS, "S").Name(symA, "A").Name(symB, "B").Name(symC, "C")
	b.AddRule(symS, symA, symB, symC, earleygo.Sym('x'))
	b.AddRule(symA)
	b.AddRule(symB)
	b.AddRule(symC)
	g, err := b.Build()
	require.NoError(t, err)

	store := item.NewStore(g)
	// No dot of S -> A B C x before the 'x' carries EmptyRHS: the terminal
	// 'x' still follows each of them, and a terminal is never nullable.
	rule := g.Rules(symS)[0]
	for dot := 0; dot < 3; dot++ {
		it := store.MustGetItem(rule, dot)
		assert.Falsef(t, it.EmptyRHS, "dot %d", dot)
	}

	e := New(g, store)
	ok, err := e.Recognize(tokens("x"))
	require.NoError(t, err)
	assert.True(t, ok)
}

// columnSignature reduces a Set to a sorted, comparable summary independent
// of any particular Engine's pointer identities, for structural-equality
// comparisons across separately-run engines.
func columnSignature(s *Set) []string {
	out := make([]string, s.Core.StartCount)
	for i := 0; i < s.Core.StartCount; i++ {
		it := s.Core.Item(i)
		out[i] = it.Rule.String() + "#" + itoa(it.Dot) + "@" + itoa(s.Distance(i))
	}
	sort.Strings(out)
	return out
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}

// Goto-cache reuse must be semantically transparent: engines differing only
// in how aggressively they can reuse cached successors (a tiny ring vs a
// generous one) must still build structurally identical charts for the same
// input.
func TestGotoCache_Transparency(t *testing.T) {
	g := arithmeticGrammar(t)
	input := tokens("((((1+1+1+1+1*2*3))))+4")

	tight := New(g, item.NewStore(g), MaxLookaheadSets(1))
	loose := New(g, item.NewStore(g), MaxLookaheadSets(64))

	okT, errT := tight.Recognize(input)
	okL, errL := loose.Recognize(input)
	require.NoError(t, errT)
	require.NoError(t, errL)
	require.Equal(t, okL, okT)

	require.Equal(t, len(loose.Chart()), len(tight.Chart()))
	for col := range loose.Chart() {
		assert.Equal(t, columnSignature(loose.Chart()[col]), columnSignature(tight.Chart()[col]),
			"column %d differs between goto-cache configurations", col)
	}
	assert.Greater(t, loose.Stats().GotoReuses, 0, "a generous cache should reuse at least once on the repeated '(' context")
}

// Idempotent expansion: re-encountering a core that was already expanded
// once must not grow the unique-core table, i.e. expand_set is not run a
// second time for the same core. Recognizing the same input twice on the
// same engine walks exactly the same sequence of cores both times, so the
// second run must intern zero new ones.
func TestExpandSet_Idempotent(t *testing.T) {
	g := digitSequenceGrammar(t)
	e := newEngine(t, g)

	_, err := e.Recognize(tokens("1729"))
	require.NoError(t, err)
	afterFirst := e.Stats().UniqueCores

	_, err = e.Recognize(tokens("1729"))
	require.NoError(t, err)
	afterSecond := e.Stats().UniqueCores

	assert.Equal(t, afterFirst, afterSecond, "re-parsing the same input must not intern any new cores")
}
