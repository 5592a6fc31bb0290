package squeeze

import (
	"bytes"
	"testing"

	"github.com/andybalholm/squeeze/lz77"
	"github.com/pkg/errors"
	"gotest.tools/v3/assert"
	"pgregory.net/rapid"
)

func TestOptimalRepeatedByte(t *testing.T) {
	src := bytes.Repeat([]byte{'a'}, 20)
	q := &HashChain{}
	q.Load(src)

	store, err := OptimalParse(src, 0, len(src), q, 15)
	assert.NilError(t, err)
	if store.Len() > 2 {
		t.Fatalf("20 repeated bytes parsed into %d symbols: %s", store.Len(), TextEncoder{}.EncodeStore(nil, store))
	}
	assert.Equal(t, string(TextEncoder{}.EncodeStore(nil, store)), "a<19,1>")
}

func TestOptimalEmptyRange(t *testing.T) {
	src := []byte("hello, hello")
	q := &HashChain{}
	q.Load(src)

	store, err := OptimalParse(src, 5, 5, q, 15)
	assert.NilError(t, err)
	assert.Equal(t, store.Len(), 0)
}

func TestOptimalRoundTrip(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		src := rapid.SliceOfN(rapid.ByteRange('a', 'd'), 0, 3000).Draw(t, "src")
		start := rapid.IntRange(0, len(src)).Draw(t, "start")
		end := rapid.IntRange(start, len(src)).Draw(t, "end")
		iterations := rapid.IntRange(0, 5).Draw(t, "iterations")

		q := &HashChain{}
		q.Load(src)
		store, err := OptimalParse(src, start, end, q, iterations)
		if err != nil {
			t.Fatal(err)
		}

		history := append([]byte(nil), src[:start]...)
		got := store.Expand(history)[start:]
		if !bytes.Equal(got, src[start:end]) {
			t.Fatalf("parse of [%d, %d) does not reproduce the input", start, end)
		}
		if s, e := store.ByteRange(0, store.Len()); store.Len() > 0 && (s != start || e != end) {
			t.Fatalf("store covers [%d, %d), want [%d, %d)", s, e, start, end)
		}
	})
}

func TestOptimalCostsDecrease(t *testing.T) {
	src := testText(50000, 2)
	q := &HashChain{}
	q.Load(src)

	p := &OptimalParser{Iterations: 15}
	store, err := p.Parse(src, 0, len(src), q)
	assert.NilError(t, err)
	assert.Assert(t, len(p.Costs) >= 1)
	for i := 1; i < len(p.Costs); i++ {
		if p.Costs[i] >= p.Costs[i-1] {
			t.Fatalf("cost went from %v to %v at iteration %d", p.Costs[i-1], p.Costs[i], i)
		}
	}
	assert.Equal(t, EstimateCost(store, 0, store.Len()), p.Costs[len(p.Costs)-1])
}

func TestOptimalBeatsGreedy(t *testing.T) {
	src := testText(30000, 3)
	q := &HashChain{}
	q.Load(src)

	greedy, err := (&GreedyParser{Lazy: true}).ParseStore(src, q, 0, len(src))
	assert.NilError(t, err)
	optimal, err := OptimalParse(src, 0, len(src), q, 15)
	assert.NilError(t, err)

	g := EstimateCost(greedy, 0, greedy.Len())
	o := EstimateCost(optimal, 0, optimal.Len())
	if o >= g {
		t.Fatalf("optimal parse costs %.0f bits, greedy %.0f", o, g)
	}
}

func TestOptimalCacheDoesNotChangeResult(t *testing.T) {
	src := testText(20000, 4)
	q := &HashChain{}
	q.Load(src)

	cached, err := (&OptimalParser{Iterations: 5}).Parse(src, 0, len(src), q)
	assert.NilError(t, err)
	uncached, err := (&OptimalParser{Iterations: 5, NoCache: true}).Parse(src, 0, len(src), q)
	assert.NilError(t, err)

	assert.DeepEqual(t, cached.LitLens, uncached.LitLens)
	assert.DeepEqual(t, cached.Dists, uncached.Dists)
}

func TestOptimalFixedCost(t *testing.T) {
	src := testText(5000, 5)
	q := &HashChain{}
	q.Load(src)

	p := &OptimalParser{}
	store := lz77.NewStore(0)
	assert.NilError(t, p.ParseWithModel(FixedCost{}, src, 0, len(src), q, store))
	assert.NilError(t, Verify(store, src, 0, len(src)))
}

func TestOptimalMemoryLimit(t *testing.T) {
	src := testText(10000, 6)
	q := &HashChain{}
	q.Load(src)

	p := &OptimalParser{MemoryLimit: 1}
	_, err := p.Parse(src, 0, len(src), q)
	assert.Assert(t, errors.Is(err, ErrAllocation))
	assert.Assert(t, !errors.Is(err, ErrInvariant))
}

func TestFindMatchesFallback(t *testing.T) {
	src := testText(10000, 7)

	// Enough for a single pass without the cache, but not for a full parse.
	p := &OptimalParser{MemoryLimit: dpBytes(len(src))}
	matches := p.FindMatches(nil, src)

	store := lz77.NewStore(0)
	end, err := AppendMatches(store, src, 0, matches)
	assert.NilError(t, err)
	assert.Equal(t, end, len(src))
	assert.NilError(t, Verify(store, src, 0, len(src)))
	assert.Assert(t, store.Len() < len(src)/2)

	p = &OptimalParser{MemoryLimit: 1}
	matches = p.FindMatches(nil, src)
	assert.DeepEqual(t, matches, []Match{{Unmatched: len(src)}})
}

func TestOptimalParserMatchFinder(t *testing.T) {
	src := testText(5000, 8)
	var mf MatchFinder = &OptimalParser{Iterations: 3}
	matches := mf.FindMatches(nil, src)
	mf.Reset()

	store := lz77.NewStore(0)
	_, err := AppendMatches(store, src, 0, matches)
	assert.NilError(t, err)
	assert.NilError(t, Verify(store, src, 0, len(src)))
}

func BenchmarkOptimalParse(b *testing.B) {
	src := testText(100000, 9)
	q := &HashChain{}
	q.Load(src)
	p := &OptimalParser{}
	b.SetBytes(int64(len(src)))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		store, err := p.Parse(src, 0, len(src), q)
		if err != nil {
			b.Fatal(err)
		}
		b.ReportMetric(float64(len(src))*8/EstimateCost(store, 0, store.Len()), "ratio")
	}
}
