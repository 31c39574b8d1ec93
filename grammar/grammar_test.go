package grammar

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jarro2783/earleygo"
)

const (
	symS earleygo.Sym = 256 + iota
	symA
	symB
	symC
)

func TestBuild_Validation(t *testing.T) {
	testCases := []struct {
		name      string
		build     func() *Builder
		expectErr bool
	}{
		{
			name:      "empty grammar",
			build:     func() *Builder { return NewBuilder(symS) },
			expectErr: true,
		},
		{
			name: "no rule for start symbol",
			build: func() *Builder {
				b := NewBuilder(symS)
				b.AddRule(symA, symB)
				return b
			},
			expectErr: true,
		},
		{
			name: "undefined nonterminal reference",
			build: func() *Builder {
				b := NewBuilder(symS)
				b.AddRule(symS, symA)
				b.kinds[symA] = Nonterminal // force classification without a rule
				return b
			},
			expectErr: true,
		},
		{
			name: "minimal valid grammar",
			build: func() *Builder {
				b := NewBuilder(symS)
				b.AddRule(symS, earleygo.Sym('a'))
				return b
			},
			expectErr: false,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert := assert.New(t)
			_, err := tc.build().Build()
			if tc.expectErr {
				assert.Error(err)
			} else {
				assert.NoError(err)
			}
		})
	}
}

// S -> A B | a
// A -> a | (epsilon)
// B -> b
func buildAmbiguousNullableGrammar(t *testing.T) *Grammar {
	t.Helper()
	b := NewBuilder(symS).Name(symS, "S").Name(symA, "A").Name(symB, "B")
	b.AddRule(symS, symA, symB)
	b.AddRule(symS, earleygo.Sym('a'))
	b.AddRule(symA, earleygo.Sym('a'))
	b.AddRule(symA)
	b.AddRule(symB, earleygo.Sym('b'))
	g, err := b.Build()
	require.NoError(t, err)
	return g
}

func TestNullable(t *testing.T) {
	g := buildAmbiguousNullableGrammar(t)
	assert := assert.New(t)
	assert.True(g.Nullable(symA))
	assert.False(g.Nullable(symB))
	assert.False(g.Nullable(symS))
	assert.False(g.Nullable(earleygo.Sym('a')), "terminals are never nullable")
}

func TestFirstAndFollow(t *testing.T) {
	g := buildAmbiguousNullableGrammar(t)
	assert := assert.New(t)

	assert.True(g.First(symA).Contains(earleygo.Sym('a')))
	assert.True(g.First(symB).Contains(earleygo.Sym('b')))
	// A is nullable, so FIRST(S) also carries FIRST(B) through the A B rule.
	assert.True(g.First(symS).Contains(earleygo.Sym('a')))
	assert.True(g.First(symS).Contains(earleygo.Sym('b')))

	assert.True(g.Follow(symS).Contains(earleygo.EndOfInput))
	assert.True(g.Follow(symA).Contains(earleygo.Sym('b')), "FIRST(B) follows A in S -> A B")
}

func TestFirstOfSuffix(t *testing.T) {
	g := buildAmbiguousNullableGrammar(t)
	assert := assert.New(t)

	rhs := []earleygo.Sym{symA, symB}
	set := g.FirstOfSuffix(symS, rhs, 0)
	assert.True(set.Contains(earleygo.Sym('a')))
	assert.True(set.Contains(earleygo.Sym('b')))

	// suffix starting at B only: FIRST(B) propagated, not nullable so no FOLLOW.
	setB := g.FirstOfSuffix(symS, rhs, 1)
	assert.True(setB.Contains(earleygo.Sym('b')))
	assert.False(setB.Contains(earleygo.EndOfInput))
}

func TestSymbolKindAndName(t *testing.T) {
	g := buildAmbiguousNullableGrammar(t)
	assert := assert.New(t)

	assert.Equal(Nonterminal, g.SymbolKind(symS))
	assert.Equal(Terminal, g.SymbolKind(earleygo.Sym('a')))
	assert.True(g.IsTerminal(earleygo.Sym('b')))
	assert.False(g.IsTerminal(symB))
	assert.Equal("S", g.Name(symS))
}
