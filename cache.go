package squeeze

import (
	"slices"

	"github.com/andybalholm/squeeze/lz77"
)

// A candidate is a match the optimal parser may use at a position. In a
// candidate list, lengths are strictly increasing, and all the lengths
// after the previous candidate's length, up to and including this one's,
// are reached with this candidate's distance.
type candidate struct {
	length uint16
	dist   uint16
}

// cacheSlots is the number of candidates a matchCache keeps per position.
// Positions with longer candidate lists are searched again on every pass.
const cacheSlots = 8

// uncached marks a position whose candidates have not been stored.
const uncached = 0xff

// A matchCache remembers the candidate lists of the positions of one parse
// range, so that later passes of the optimal parser do not have to search
// the hash chains again.
type matchCache struct {
	start   int
	counts  []uint8
	entries []candidate
}

func (c *matchCache) reset(start, n int) {
	c.start = start
	if cap(c.counts) < n {
		c.counts = make([]uint8, n)
		c.entries = make([]candidate, n*cacheSlots)
	} else {
		c.counts = c.counts[:n]
		c.entries = c.entries[:n*cacheSlots]
	}
	for i := range c.counts {
		c.counts[i] = uncached
	}
}

func (c *matchCache) get(pos int) ([]candidate, bool) {
	i := pos - c.start
	n := c.counts[i]
	if n == uncached {
		return nil, false
	}
	return c.entries[i*cacheSlots : i*cacheSlots+int(n)], true
}

func (c *matchCache) put(pos int, cands []candidate) {
	if len(cands) > cacheSlots {
		return
	}
	i := pos - c.start
	copy(c.entries[i*cacheSlots:], cands)
	c.counts[i] = uint8(len(cands))
}

// cacheBytes is the memory a matchCache needs for n positions.
func cacheBytes(n int) int {
	return n * (1 + cacheSlots*4)
}

// normalizeCandidates converts the matches a Searcher found at pos into a
// candidate list, appending it to dst. For every length, the closest match
// that reaches it is used. Matches are clipped to end and to the limits of
// DEFLATE.
func normalizeCandidates(dst []candidate, matches []AbsoluteMatch, pos, end int) []candidate {
	first := len(dst)
	for _, m := range matches {
		if m.Start > pos || m.End <= pos {
			continue
		}
		dist := m.Start - m.Match
		length := min(m.End, end) - pos
		length = min(length, lz77.MaxMatch)
		if dist < 1 || dist > lz77.WindowSize || length < lz77.MinMatch {
			continue
		}
		dst = append(dst, candidate{length: uint16(length), dist: uint16(dist)})
	}
	cands := dst[first:]
	if len(cands) < 2 {
		return dst
	}

	slices.SortFunc(cands, func(a, b candidate) int {
		if a.length != b.length {
			return int(a.length) - int(b.length)
		}
		return int(a.dist) - int(b.dist)
	})

	// Walk from the longest down, keeping each candidate that is closer than
	// every longer one. The kept ones end up at the back of cands.
	w := len(cands)
	for i := len(cands) - 1; i >= 0; i-- {
		c := cands[i]
		if w < len(cands) {
			kept := cands[w]
			if c.dist >= kept.dist {
				continue
			}
			if c.length == kept.length {
				cands[w] = c
				continue
			}
		}
		w--
		cands[w] = c
	}
	n := copy(cands, cands[w:])
	return dst[:first+n]
}
