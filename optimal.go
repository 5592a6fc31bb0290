package squeeze

import (
	"math"

	"github.com/andybalholm/squeeze/lz77"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// An OptimalParser chooses a parse by finding the shortest path through
// the graph of all literals and matches available in its input, where the
// length of each edge is the cost of the symbol in bits. The first pass
// prices symbols with a simple model based on the byte histogram; each
// later pass prices them with the statistics of the previous pass's
// result, until the estimated size stops improving.
type OptimalParser struct {
	// Iterations is the maximum number of refinement passes after the first
	// one. The default is 15. A negative value means only the first pass
	// is run.
	Iterations int

	// MemoryLimit is the largest amount of working memory, in bytes, that
	// Parse may request. Zero means no limit.
	MemoryLimit int

	// NoCache turns off the cache of match candidates, so that every pass
	// searches the hash chains again. It uses less memory.
	NoCache bool

	// Logger receives the estimated cost of each pass at debug level.
	Logger logrus.FieldLogger

	// Costs holds the estimated costs of the passes accepted by the most
	// recent call to Parse, in order. Each is lower than the one before.
	Costs []float64

	// Searcher is the match source for FindMatches.
	// The default is a HashChain.
	Searcher IndexedSearcher

	cache      matchCache
	useCache   bool
	costs      []float64
	lengths    []uint16
	dists      []uint16
	matches    []AbsoluteMatch
	candidates []candidate
	path       []candidate
}

// OptimalParse parses src[start:end] with an OptimalParser that runs at
// most iterations refinement passes.
func OptimalParse(src []byte, start, end int, s Searcher, iterations int) (*lz77.Store, error) {
	if iterations <= 0 {
		iterations = -1
	}
	p := &OptimalParser{Iterations: iterations}
	return p.Parse(src, start, end, s)
}

func (p *OptimalParser) iterations() int {
	switch {
	case p.Iterations == 0:
		return 15
	case p.Iterations < 0:
		return 0
	}
	return p.Iterations
}

// dpBytes is the memory the shortest-path arrays need for n positions.
func dpBytes(n int) int {
	return (n + 1) * (8 + 2 + 2)
}

// memoryNeeded returns the working memory a parse of n bytes needs.
func (p *OptimalParser) memoryNeeded(n int) int {
	need := dpBytes(n)
	if !p.NoCache {
		need += cacheBytes(n)
	}
	return need
}

// Parse finds a near-optimal parse of src[start:end], using s to find
// matches. Matches may refer back to data before start.
func (p *OptimalParser) Parse(src []byte, start, end int, s Searcher) (store *lz77.Store, err error) {
	p.Costs = p.Costs[:0]
	if start > end || end > len(src) || start < 0 {
		return nil, errors.Wrapf(ErrInvariant, "parse range [%d, %d) of %d bytes", start, end, len(src))
	}
	if start == end {
		return lz77.NewStore(0), nil
	}

	n := end - start
	if p.MemoryLimit > 0 && p.memoryNeeded(n) > p.MemoryLimit {
		return nil, errors.Wrapf(ErrAllocation, "parsing %d bytes needs %d bytes of memory, limit is %d", n, p.memoryNeeded(n), p.MemoryLimit)
	}
	defer recoverAllocation(&err, "optimal parse")
	p.allocate(n)
	p.useCache = !p.NoCache
	if p.useCache {
		p.cache.reset(start, n)
	}

	log := logger(p.Logger).WithFields(logrus.Fields{"start": start, "end": end})

	best := lz77.NewStore(n / 2)
	if err := p.parsePass(NewBootstrapCost(src[start:end]), src, start, end, s, best); err != nil {
		return nil, err
	}
	bestCost := EstimateCost(best, 0, best.Len())
	p.Costs = append(p.Costs, bestCost)
	log.WithField("cost", bestCost).Debug("bootstrap pass")

	current := best
	for i := 0; i < p.iterations(); i++ {
		stats := StatsFromStore(current)
		next := lz77.NewStore(current.Len())
		if err := p.parsePass(stats, src, start, end, s, next); err != nil {
			return nil, err
		}
		cost := EstimateCost(next, 0, next.Len())
		log.WithFields(logrus.Fields{"iteration": i + 1, "cost": cost}).Debug("refinement pass")
		if cost >= bestCost {
			break
		}
		best, bestCost = next, cost
		p.Costs = append(p.Costs, cost)
		current = next
	}

	if err := Verify(best, src, start, end); err != nil {
		return nil, err
	}
	return best, nil
}

// ParseWithModel runs a single pass over src[start:end], pricing symbols
// with model, and appends the cheapest parse to store.
func (p *OptimalParser) ParseWithModel(model CostModel, src []byte, start, end int, s Searcher, store *lz77.Store) (err error) {
	if start > end || end > len(src) || start < 0 {
		return errors.Wrapf(ErrInvariant, "parse range [%d, %d) of %d bytes", start, end, len(src))
	}
	n := end - start
	if p.MemoryLimit > 0 && dpBytes(n) > p.MemoryLimit {
		return errors.Wrapf(ErrAllocation, "parsing %d bytes needs %d bytes of memory, limit is %d", n, dpBytes(n), p.MemoryLimit)
	}
	defer recoverAllocation(&err, "optimal parse")
	p.allocate(n)
	p.useCache = false
	return p.parsePass(model, src, start, end, s, store)
}

func (p *OptimalParser) allocate(n int) {
	if cap(p.costs) < n+1 {
		p.costs = make([]float64, n+1)
		p.lengths = make([]uint16, n+1)
		p.dists = make([]uint16, n+1)
	}
	p.costs = p.costs[:n+1]
	p.lengths = p.lengths[:n+1]
	p.dists = p.dists[:n+1]
}

// parsePass computes the cheapest path from start to end under model and
// appends its symbols to store.
func (p *OptimalParser) parsePass(model CostModel, src []byte, start, end int, s Searcher, store *lz77.Store) error {
	n := end - start
	costs, lengths, dists := p.costs[:n+1], p.lengths[:n+1], p.dists[:n+1]
	costs[0] = 0
	for i := 1; i <= n; i++ {
		costs[i] = math.Inf(1)
	}
	clear(lengths)
	clear(dists)

	for i := 0; i < n; i++ {
		pos := start + i
		c := costs[i]

		if lc := c + model.LiteralCost(src[pos]); lc < costs[i+1] {
			costs[i+1] = lc
			lengths[i+1] = 1
			dists[i+1] = 0
		}

		prevLength := lz77.MinMatch - 1
		for _, cand := range p.candidatesAt(s, pos, start, end) {
			dist := int(cand.dist)
			for l := prevLength + 1; l <= int(cand.length); l++ {
				if mc := c + model.MatchCost(l, dist); mc < costs[i+l] {
					costs[i+l] = mc
					lengths[i+l] = uint16(l)
					dists[i+l] = cand.dist
				}
			}
			prevLength = int(cand.length)
		}
	}

	// Follow the chosen transitions back from the end.
	path := p.path[:0]
	for i := n; i > 0; {
		l := int(lengths[i])
		if l == 0 || l > i {
			return errors.Wrapf(ErrInvariant, "backtrack stuck at offset %d of [%d, %d)", i, start, end)
		}
		path = append(path, candidate{length: uint16(l), dist: dists[i]})
		i -= l
	}
	p.path = path

	pos := start
	for k := len(path) - 1; k >= 0; k-- {
		step := path[k]
		if step.dist == 0 {
			store.AppendLiteral(src[pos], pos)
			pos++
			continue
		}
		store.AppendMatch(int(step.length), int(step.dist), pos)
		pos += int(step.length)
	}
	return nil
}

// candidatesAt returns the candidate list for pos, from the cache if it is
// there.
func (p *OptimalParser) candidatesAt(s Searcher, pos, start, end int) []candidate {
	if p.useCache {
		if cands, ok := p.cache.get(pos); ok {
			return cands
		}
	}
	p.matches = s.Search(p.matches[:0], pos, start, end)
	p.candidates = normalizeCandidates(p.candidates[:0], p.matches, pos, end)
	if p.useCache {
		p.cache.put(pos, p.candidates)
	}
	return p.candidates
}

// FindMatches parses src optimally and appends the result to dst. If the
// full parse runs out of memory, it falls back to a single pass with the
// bootstrap cost model and no cache. It panics if the parse fails an
// internal consistency check.
func (p *OptimalParser) FindMatches(dst []Match, src []byte) []Match {
	if p.Searcher == nil {
		p.Searcher = &HashChain{}
	}
	p.Searcher.Load(src)

	store, err := p.Parse(src, 0, len(src), p.Searcher)
	if errors.Is(err, ErrAllocation) {
		logger(p.Logger).WithError(err).Warn("falling back to a single pass parse")
		store = lz77.NewStore(len(src) / 2)
		err = p.ParseWithModel(NewBootstrapCost(src), src, 0, len(src), p.Searcher, store)
		if errors.Is(err, ErrAllocation) {
			logger(p.Logger).WithError(err).Warn("leaving the input unmatched")
			return append(dst, Match{Unmatched: len(src)})
		}
	}
	if err != nil {
		panic(err)
	}
	return StoreMatches(dst, store, 0, store.Len())
}

// Reset releases the parser's working memory.
func (p *OptimalParser) Reset() {
	*p = OptimalParser{
		Iterations:  p.Iterations,
		MemoryLimit: p.MemoryLimit,
		NoCache:     p.NoCache,
		Logger:      p.Logger,
		Searcher:    p.Searcher,
	}
	if p.Searcher != nil {
		p.Searcher.Load(nil)
	}
}
