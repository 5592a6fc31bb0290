package lz77

// A Store is an ordered sequence of LZ77 symbols covering a contiguous range
// of the input. Symbol i is a literal when Dists[i] == 0 (LitLens[i] holds the
// byte), and a match otherwise (LitLens[i] is the length, Dists[i] the
// distance). Pos[i] is the input offset where symbol i begins.
//
// Besides the symbols themselves, a Store keeps cumulative symbol counts,
// snapshotted once per chunk of symbols, so that the histogram of any
// sub-range can be computed without scanning the whole range.
type Store struct {
	LitLens []uint16
	Dists   []uint16
	Pos     []int

	llSymbol []uint16
	dSymbol  []uint16

	// llCounts holds one chunk of NumLitLen counters per NumLitLen symbols.
	// The chunk starting at symbol c*NumLitLen holds the cumulative
	// lit/len histogram of symbols [0, min((c+1)*NumLitLen, Len())).
	// dCounts does the same for distances, with chunks of NumDist.
	llCounts []int
	dCounts  []int
}

// NewStore returns an empty Store with room for n symbols.
func NewStore(n int) *Store {
	return &Store{
		LitLens:  make([]uint16, 0, n),
		Dists:    make([]uint16, 0, n),
		Pos:      make([]int, 0, n),
		llSymbol: make([]uint16, 0, n),
		dSymbol:  make([]uint16, 0, n),
	}
}

// Reset empties s, keeping its allocated memory.
func (s *Store) Reset() {
	s.LitLens = s.LitLens[:0]
	s.Dists = s.Dists[:0]
	s.Pos = s.Pos[:0]
	s.llSymbol = s.llSymbol[:0]
	s.dSymbol = s.dSymbol[:0]
	s.llCounts = s.llCounts[:0]
	s.dCounts = s.dCounts[:0]
}

// Len returns the number of symbols in s.
func (s *Store) Len() int {
	return len(s.LitLens)
}

// AppendLiteral appends a literal byte found at input offset pos.
func (s *Store) AppendLiteral(b byte, pos int) {
	s.append(uint16(b), 0, pos)
}

// AppendMatch appends a match of the given length and distance that starts
// at input offset pos.
func (s *Store) AppendMatch(length, dist, pos int) {
	s.append(uint16(length), uint16(dist), pos)
}

// AppendStore appends all the symbols of other to s.
func (s *Store) AppendStore(other *Store) {
	for i := range other.LitLens {
		s.append(other.LitLens[i], other.Dists[i], other.Pos[i])
	}
}

func (s *Store) append(litlen, dist uint16, pos int) {
	n := len(s.LitLens)
	if n%NumLitLen == 0 {
		if n == 0 {
			s.llCounts = append(s.llCounts, make([]int, NumLitLen)...)
		} else {
			s.llCounts = append(s.llCounts, s.llCounts[n-NumLitLen:n]...)
		}
	}
	if n%NumDist == 0 {
		if n == 0 {
			s.dCounts = append(s.dCounts, make([]int, NumDist)...)
		} else {
			s.dCounts = append(s.dCounts, s.dCounts[n-NumDist:n]...)
		}
	}
	llChunk := n - n%NumLitLen
	dChunk := n - n%NumDist

	s.LitLens = append(s.LitLens, litlen)
	s.Dists = append(s.Dists, dist)
	s.Pos = append(s.Pos, pos)

	if dist == 0 {
		s.llSymbol = append(s.llSymbol, litlen)
		s.dSymbol = append(s.dSymbol, 0)
		s.llCounts[llChunk+int(litlen)]++
		return
	}
	ls := LengthSymbol(int(litlen))
	ds := DistSymbol(int(dist))
	s.llSymbol = append(s.llSymbol, uint16(ls))
	s.dSymbol = append(s.dSymbol, uint16(ds))
	s.llCounts[llChunk+ls]++
	s.dCounts[dChunk+ds]++
}

// IsLiteral reports whether symbol i is a literal.
func (s *Store) IsLiteral(i int) bool {
	return s.Dists[i] == 0
}

// LitLenSymbol returns the literal/length symbol of symbol i.
func (s *Store) LitLenSymbol(i int) int {
	return int(s.llSymbol[i])
}

// DistSymbol returns the distance symbol of symbol i. It is only meaningful
// for matches.
func (s *Store) DistSymbol(i int) int {
	return int(s.dSymbol[i])
}

// SymbolLen returns the number of input bytes covered by symbol i.
func (s *Store) SymbolLen(i int) int {
	if s.Dists[i] == 0 {
		return 1
	}
	return int(s.LitLens[i])
}

// ByteRange returns the input range [start, end) covered by the symbols
// [lstart, lend).
func (s *Store) ByteRange(lstart, lend int) (start, end int) {
	if lstart == lend {
		if lstart < s.Len() {
			return s.Pos[lstart], s.Pos[lstart]
		}
		if lstart == 0 {
			return 0, 0
		}
		end = s.Pos[lstart-1] + s.SymbolLen(lstart-1)
		return end, end
	}
	return s.Pos[lstart], s.Pos[lend-1] + s.SymbolLen(lend-1)
}

// Expand decodes the symbols of s, appending the output to dst, and returns
// the extended buffer. Matches are copied from earlier output, so dst must
// already hold the input that precedes the range covered by s (at least as
// far back as the longest distance).
func (s *Store) Expand(dst []byte) []byte {
	for i, litlen := range s.LitLens {
		dist := int(s.Dists[i])
		if dist == 0 {
			dst = append(dst, byte(litlen))
			continue
		}
		from := len(dst) - dist
		for j := 0; j < int(litlen); j++ {
			dst = append(dst, dst[from+j])
		}
	}
	return dst
}
