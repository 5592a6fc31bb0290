package squeeze

import (
	"math"
	"testing"

	"github.com/andybalholm/squeeze/lz77"
	"gotest.tools/v3/assert"
)

func TestSymbolStatsCosts(t *testing.T) {
	ll := make([]int, lz77.NumLitLen)
	ll['a'] = 2
	ll['b'] = 1
	ll[lz77.LengthSymbol(10)] = 1
	s := NewSymbolStats(ll, []int{0, 0, 0, 0, 0, 0, 4})

	assert.Equal(t, s.LiteralCost('a'), 1.0)
	assert.Equal(t, s.LiteralCost('b'), 2.0)
	// Unseen symbols cost more than the rarest seen one.
	assert.Equal(t, s.LiteralCost('c'), 3.0)

	// Length 10 has no extra bits; distance 10 has 2.
	assert.Equal(t, s.MatchCost(10, 10), 2.0+0+0+2)
}

func TestSymbolStatsEmpty(t *testing.T) {
	s := NewSymbolStats(nil, nil)
	assert.Equal(t, s.LiteralCost('x'), math.Log2(lz77.NumLitLen))
	assert.Equal(t, s.MatchCost(3, 1), math.Log2(lz77.NumLitLen)+math.Log2(lz77.NumDist))
}

func TestStatsFromStore(t *testing.T) {
	store := lz77.NewStore(0)
	store.AppendLiteral('x', 0)
	store.AppendMatch(4, 1, 1)
	s := StatsFromStore(store)
	assert.Equal(t, s.LitLens['x'], 1)
	assert.Equal(t, s.LitLens[lz77.EndOfBlock], 1)
	assert.Equal(t, s.LitLens[lz77.LengthSymbol(4)], 1)
	assert.Equal(t, s.Dists[0], 1)
}

func TestBootstrapCost(t *testing.T) {
	c := NewBootstrapCost([]byte("aaaaaaab"))
	// Literal costs never drop below one bit.
	assert.Equal(t, c.LiteralCost('a'), 1.0)
	assert.Equal(t, c.LiteralCost('b'), 3.0)
	assert.Equal(t, c.MatchCost(3, 1), c.MatchCost(258, 32768))
}

func TestFixedCost(t *testing.T) {
	var c FixedCost
	assert.Equal(t, c.LiteralCost(0), 8.0)
	assert.Equal(t, c.LiteralCost(200), 9.0)
	// Length 3 is symbol 257 (7 bits); distance 1 is symbol 0 (5 bits).
	assert.Equal(t, c.MatchCost(3, 1), 12.0)
	// Length 258 is symbol 285 (8 bits); distance 32768 has 13 extra bits.
	assert.Equal(t, c.MatchCost(258, 32768), 8.0+5+13)
}

func TestEstimateCost(t *testing.T) {
	store := greedyStore(t, testText(10000, 11))
	whole := EstimateCost(store, 0, store.Len())
	half := EstimateCost(store, 0, store.Len()/2)
	assert.Assert(t, half < whole)
	assert.Assert(t, whole > 0 && !math.IsInf(whole, 0))

	empty := EstimateCost(store, 5, 5)
	assert.Assert(t, empty > 0 && empty < 100)
}
