package squeeze

import (
	"math"

	"github.com/andybalholm/squeeze/lz77"
)

// A CostModel prices the symbols the OptimalParser chooses between, in bits.
type CostModel interface {
	LiteralCost(b byte) float64
	MatchCost(length, dist int) float64
}

// SymbolStats holds symbol frequencies for the literal/length and distance
// alphabets, and the bit costs derived from them.
type SymbolStats struct {
	LitLens [lz77.NumLitLen]int
	Dists   [lz77.NumDist]int

	litLenBits [lz77.NumLitLen]float64
	distBits   [lz77.NumDist]float64
}

// NewSymbolStats returns the stats for the given frequencies. Missing
// entries are treated as zero.
func NewSymbolStats(litLens, dists []int) *SymbolStats {
	s := new(SymbolStats)
	copy(s.LitLens[:], litLens)
	copy(s.Dists[:], dists)
	s.calculate()
	return s
}

// StatsFromStore returns the symbol frequencies of the whole of store,
// counting one end-of-block marker.
func StatsFromStore(store *lz77.Store) *SymbolStats {
	s := new(SymbolStats)
	s.LitLens, s.Dists = store.Histogram(0, store.Len())
	s.LitLens[lz77.EndOfBlock] = 1
	s.calculate()
	return s
}

func (s *SymbolStats) calculate() {
	entropyBits(s.LitLens[:], s.litLenBits[:])
	entropyBits(s.Dists[:], s.distBits[:])
}

// entropyBits sets bits[i] to -log2(freqs[i]/total). Symbols that were never
// seen cost one bit more than the rarest possible seen symbol, so that they
// stay usable without being cheap. With no symbols at all, every symbol
// costs as much as in a flat code.
func entropyBits(freqs []int, bits []float64) {
	total := 0
	for _, f := range freqs {
		total += f
	}
	if total == 0 {
		flat := math.Log2(float64(len(freqs)))
		for i := range bits {
			bits[i] = flat
		}
		return
	}

	log2Total := math.Log2(float64(total))
	for i, f := range freqs {
		if f == 0 {
			bits[i] = log2Total + 1
		} else {
			bits[i] = log2Total - math.Log2(float64(f))
		}
	}
}

// LiteralCost returns the cost of b as a literal.
func (s *SymbolStats) LiteralCost(b byte) float64 {
	return s.litLenBits[b]
}

// MatchCost returns the cost of a match, including its extra bits.
func (s *SymbolStats) MatchCost(length, dist int) float64 {
	lsym := lz77.LengthSymbol(length)
	dsym := lz77.DistSymbol(dist)
	return s.litLenBits[lsym] + float64(lz77.LengthSymbolExtraBits(lsym)) +
		s.distBits[dsym] + float64(lz77.DistSymbolExtraBits(dsym))
}

// bootstrapMatchCost is the price of every match before anything is known
// about which matches a parse uses. It is about what a match costs in
// typical text: a 7 or 8 bit length code, a 5 bit distance code and a few
// extra bits.
const bootstrapMatchCost = 15

// bootstrapCost is the cost model for the first pass of the parser. Literal
// costs come from the byte histogram of the input, and every match has the
// same cost, so the first parse prefers long matches.
type bootstrapCost struct {
	literal [256]float64
}

// NewBootstrapCost returns the cost model the OptimalParser uses for its
// first pass over src.
func NewBootstrapCost(src []byte) CostModel {
	var histogram [256]int
	for _, b := range src {
		histogram[b]++
	}
	c := new(bootstrapCost)
	for b, n := range histogram {
		if n == 0 {
			c.literal[b] = math.Log2(float64(len(src))) + 1
			continue
		}
		c.literal[b] = max(math.Log2(float64(len(src))/float64(n)), 1)
	}
	return c
}

func (c *bootstrapCost) LiteralCost(b byte) float64 {
	return c.literal[b]
}

func (c *bootstrapCost) MatchCost(length, dist int) float64 {
	return bootstrapMatchCost
}

// FixedCost prices symbols exactly as the fixed Huffman codes of DEFLATE
// encode them.
type FixedCost struct{}

func (FixedCost) LiteralCost(b byte) float64 {
	if b <= 143 {
		return 8
	}
	return 9
}

func (FixedCost) MatchCost(length, dist int) float64 {
	lsym := lz77.LengthSymbol(length)
	cost := 7
	if lsym > 279 {
		cost = 8
	}
	// Every distance code is 5 bits.
	cost += 5
	return float64(cost + lz77.LengthSymbolExtraBits(lsym) + lz77.DistExtraBits(dist))
}
