package squeeze

import "github.com/andybalholm/squeeze/lz77"

// An AbsoluteMatch is like a Match, but it stores indexes into the byte
// stream instead of lengths.
type AbsoluteMatch struct {
	// Start is the index of the first byte.
	Start int

	// End is the index of the byte after the last byte
	// (so that End - Start = Length).
	End int

	// Match is the index of the previous data that matches
	// (Start - Match = Distance).
	Match int
}

// A Searcher is the source of matches for a Parser. It is a lower-level
// interface than MatchFinder, only looking for matches at one position at a
// time. A type that uses a Parser to implement MatchFinder can implement
// Searcher as well, and pass itself to the Parser.
type Searcher interface {
	// Search looks for matches at pos and appends them to dst.
	// In each match, Start and End must fall within the interval [min,max),
	// and Match < Start < End.
	Search(dst []AbsoluteMatch, pos, min, max int) []AbsoluteMatch
}

// An IndexedSearcher is a Searcher that indexes a whole input at once,
// before any searches.
type IndexedSearcher interface {
	Searcher
	Load(src []byte)
}

// A Parser chooses which matches to use to compress the data.
type Parser interface {
	// Parse gets matches from src, chooses which ones to use, and appends
	// them to dst. The matches cover the range of bytes from start to end.
	Parse(dst []Match, src Searcher, start, end int) []Match
}

// A GreedyParser implements the greedy matching strategy: It goes from start
// to end, choosing the longest match at each position.
type GreedyParser struct {
	// Lazy makes the parser check the next position before taking a match,
	// and start the match there instead if it would be more than one byte
	// longer.
	Lazy bool

	matchCache []AbsoluteMatch
}

func (p *GreedyParser) Parse(dst []Match, src Searcher, start, end int) []Match {
	matches := p.matchCache[:0]
	s := start
	nextEmit := start

	for s < end {
		matches = src.Search(matches[:0], s, nextEmit, end)
		m := longestMatch(matches)
		if lengthScore(m) < lz77.MinMatch {
			s++
			continue
		}

		if p.Lazy {
			for s+1 < end && m.End < end {
				matches = src.Search(matches[:0], s+1, nextEmit, end)
				next := longestMatch(matches)
				if lengthScore(next) <= lengthScore(m)+1 {
					break
				}
				m = next
				s++
			}
		}

		dst = append(dst, Match{
			Unmatched: m.Start - nextEmit,
			Length:    m.End - m.Start,
			Distance:  m.Start - m.Match,
		})
		s = m.End
		nextEmit = s
	}

	if nextEmit < end {
		dst = append(dst, Match{
			Unmatched: end - nextEmit,
		})
	}
	p.matchCache = matches[:0]
	return dst
}

// ParseStore is like Parse, but appends the parse of src[start:end] to a
// new lz77.Store. buf holds the input that s indexes.
func (p *GreedyParser) ParseStore(buf []byte, s Searcher, start, end int) (*lz77.Store, error) {
	matches := p.Parse(nil, s, start, end)
	store := lz77.NewStore(len(matches) * 2)
	if _, err := AppendMatches(store, buf, start, matches); err != nil {
		return nil, err
	}
	return store, nil
}

func longestMatch(matches []AbsoluteMatch) AbsoluteMatch {
	var longest AbsoluteMatch

	for _, m := range matches {
		if m.End-m.Start > longest.End-longest.Start {
			longest = m
		}
	}

	return longest
}

// lengthScore rates a match for the greedy parser. Short matches far away
// cost about as much as the literals they replace, so they score lower.
func lengthScore(m AbsoluteMatch) int {
	length := m.End - m.Start
	if m.Start-m.Match > 1024 {
		return length - 1
	}
	return length
}
