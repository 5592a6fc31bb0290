package squeeze

import (
	"math"
	"slices"

	"github.com/andybalholm/squeeze/lz77"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

const (
	// Stores with fewer symbols than this are never split, and neither are
	// blocks that small.
	minSplitSymbols = 10

	// Ranges shorter than this are searched exhaustively for the best
	// split point.
	exhaustiveSearchLimit = 1024

	// splitProbes is the number of points sampled per round when searching
	// a longer range.
	splitProbes = 9

	// minSplitGain is how many bits a split must save, by the estimate, to
	// be accepted.
	minSplitGain = 8
)

// A BlockSplitter divides a parse into blocks that are cheaper to encode
// separately, each with its own Huffman codes, than together.
type BlockSplitter struct {
	// MaxBlocks is the maximum number of blocks to divide a store into.
	// Zero or negative means no limit.
	MaxBlocks int

	// Logger receives the accepted split points at debug level.
	Logger logrus.FieldLogger
}

// SplitBlocks divides store into at most maxBlocks blocks, and returns the
// input positions where the second and later blocks begin.
func SplitBlocks(store *lz77.Store, maxBlocks int) ([]int, error) {
	s := &BlockSplitter{MaxBlocks: maxBlocks}
	return s.SplitBytes(store)
}

// SplitBytes is like Split, but returns input positions instead of symbol
// indexes.
func (s *BlockSplitter) SplitBytes(store *lz77.Store) ([]int, error) {
	points, err := s.Split(store)
	if err != nil || len(points) == 0 {
		return nil, err
	}

	offsets := make([]int, 0, len(points))
	pos, _ := store.ByteRange(0, 0)
	for i := 0; i < store.Len() && len(offsets) < len(points); i++ {
		if i == points[len(offsets)] {
			offsets = append(offsets, pos)
		}
		pos += store.SymbolLen(i)
	}
	if len(offsets) != len(points) {
		return nil, errors.Wrapf(ErrInvariant, "found %d of %d split points in a store of %d symbols", len(offsets), len(points), store.Len())
	}
	return offsets, nil
}

// Split returns the indexes of the symbols that begin the second and later
// blocks of store, in increasing order.
func (s *BlockSplitter) Split(store *lz77.Store) ([]int, error) {
	size := store.Len()
	if size < minSplitSymbols || s.MaxBlocks == 1 {
		return nil, nil
	}

	log := logger(s.Logger)
	var points []int
	done := make([]bool, size)
	lstart, lend := 0, size
	numBlocks := 1

	for s.MaxBlocks <= 0 || numBlocks < s.MaxBlocks {
		splitCost := func(i int) float64 {
			return EstimateCost(store, lstart, i) + EstimateCost(store, i, lend)
		}
		llpos, cost := findMinimum(splitCost, lstart+1, lend)
		origCost := EstimateCost(store, lstart, lend)

		if cost > origCost-minSplitGain || llpos == lstart+1 || llpos == lend {
			done[lstart] = true
		} else {
			i, found := slices.BinarySearch(points, llpos)
			if found {
				return nil, errors.Wrapf(ErrInvariant, "split point %d chosen twice", llpos)
			}
			points = slices.Insert(points, i, llpos)
			numBlocks++
			log.WithFields(logrus.Fields{
				"symbol": llpos,
				"before": origCost,
				"after":  cost,
			}).Debug("split block")
		}

		var ok bool
		lstart, lend, ok = largestSplittableBlock(size, done, points)
		if !ok || lend-lstart < minSplitSymbols {
			break
		}
	}

	return points, nil
}

// findMinimum returns the i in [start, end) where f is smallest, and the
// value there. Short ranges are searched exhaustively. On longer ones f is
// assumed to be roughly unimodal: each round samples splitProbes evenly
// spaced points, and narrows the range to the neighborhood of the best one,
// until the best sample stops improving.
func findMinimum(f func(int) float64, start, end int) (int, float64) {
	if end-start < exhaustiveSearchLimit {
		best := math.Inf(1)
		result := start
		for i := start; i < end; i++ {
			if v := f(i); v < best {
				best = v
				result = i
			}
		}
		return result, best
	}

	var p [splitProbes]int
	var vp [splitProbes]float64
	lastBest := math.Inf(1)
	pos := start

	for end-start > splitProbes {
		for i := range p {
			p[i] = start + (i+1)*((end-start)/(splitProbes+1))
			vp[i] = f(p[i])
		}
		besti := 0
		for i := 1; i < splitProbes; i++ {
			if vp[i] < vp[besti] {
				besti = i
			}
		}
		if vp[besti] > lastBest {
			break
		}

		if besti > 0 {
			start = p[besti-1]
		}
		if besti < splitProbes-1 {
			end = p[besti+1]
		}
		pos = p[besti]
		lastBest = vp[besti]
	}
	return pos, lastBest
}

// largestSplittableBlock returns the largest block, as delimited by points,
// that has not been marked done.
func largestSplittableBlock(size int, done []bool, points []int) (lstart, lend int, ok bool) {
	longest := 0
	for i := 0; i <= len(points); i++ {
		start, end := 0, size
		if i > 0 {
			start = points[i-1]
		}
		if i < len(points) {
			end = points[i]
		}
		if !done[start] && end-start > longest {
			lstart, lend = start, end
			longest = end - start
			ok = true
		}
	}
	return lstart, lend, ok
}
