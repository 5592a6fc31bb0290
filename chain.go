package squeeze

import (
	"encoding/binary"
	"math/bits"
	"runtime"

	"github.com/andybalholm/squeeze/lz77"
)

// HashChain is an implementation of the Searcher interface that uses hash
// chaining to find all the useful matches at a position. It also
// implements MatchFinder, by passing itself to a Parser.
type HashChain struct {
	// ChainLength is how many entries to examine on the hash chain.
	// The default is 8192.
	ChainLength int

	// MaxDistance is the maximum distance (in bytes) to look back for
	// a match. The default is 32768, the largest distance DEFLATE allows.
	MaxDistance int

	// Parser chooses the matches for FindMatches.
	// The default is a lazy GreedyParser.
	Parser Parser

	src []byte

	// head holds 1 + the position of the latest occurrence of each hash.
	// prev[i] holds 1 + the position of the occurrence of the hash of i
	// that came before i. Zero means none.
	head []int32
	prev []int32
}

const (
	hashBits  = 15
	hashMul32 = 0x1e35a7bd
)

func hash3(b []byte) uint32 {
	u := uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16
	return (u * hashMul32) >> (32 - hashBits)
}

// Reset drops the indexed input.
func (q *HashChain) Reset() {
	q.src = nil
	q.prev = q.prev[:0]
}

// Load indexes all of src, so that Search can be called for any position
// in it. src must be shorter than 2 GiB.
func (q *HashChain) Load(src []byte) {
	if q.ChainLength == 0 {
		q.ChainLength = 8192
	}
	if q.MaxDistance == 0 {
		q.MaxDistance = lz77.WindowSize
	}

	q.src = src
	if len(q.head) != 1<<hashBits {
		q.head = make([]int32, 1<<hashBits)
	} else {
		clear(q.head)
	}
	if cap(q.prev) < len(src) {
		q.prev = make([]int32, len(src))
	} else {
		q.prev = q.prev[:len(src)]
		clear(q.prev)
	}

	for i := 0; i+lz77.MinMatch <= len(src); i++ {
		h := hash3(src[i:])
		q.prev[i] = q.head[h]
		q.head[h] = int32(i + 1)
	}
}

// FindMatches looks for matches in src, appends them to dst, and returns
// dst. Each call is independent: matches never refer to the data passed to
// earlier calls.
func (q *HashChain) FindMatches(dst []Match, src []byte) []Match {
	if q.Parser == nil {
		q.Parser = &GreedyParser{Lazy: true}
	}
	q.Load(src)
	return q.Parser.Parse(dst, q, 0, len(src))
}

// Search looks for matches at pos and appends them to dst. Every match it
// returns starts at pos and ends at or before max; each one is longer than
// the one before, and is the closest match of its length that the chain
// search found. The min parameter is not used, since matches are never
// extended backward.
func (q *HashChain) Search(dst []AbsoluteMatch, pos, min, max int) []AbsoluteMatch {
	end := max
	if end > len(q.src) {
		end = len(q.src)
	}
	if end > pos+lz77.MaxMatch {
		end = pos + lz77.MaxMatch
	}
	if pos >= len(q.prev) || end-pos < lz77.MinMatch {
		return dst
	}
	src := q.src[:end]

	length := lz77.MinMatch - 1
	candidate := int(q.prev[pos]) - 1
	for i := 0; i < q.ChainLength && candidate >= 0; i++ {
		if pos-candidate > q.MaxDistance {
			break
		}
		// A candidate can only be longer if it matches at the current length.
		if src[candidate+length] == src[pos+length] {
			newEnd := extendMatch(src, candidate, pos)
			if newEnd-pos > length {
				dst = append(dst, AbsoluteMatch{
					Start: pos,
					End:   newEnd,
					Match: candidate,
				})
				length = newEnd - pos
				if newEnd == end {
					break
				}
			}
		}
		candidate = int(q.prev[candidate]) - 1
	}

	return dst
}

// extendMatch returns the largest k such that k <= len(src) and that
// src[i:i+k-j] and src[j:k] have the same contents.
//
// It assumes that:
//
//	0 <= i && i < j && j <= len(src)
func extendMatch(src []byte, i, j int) int {
	switch runtime.GOARCH {
	case "amd64", "arm64":
		// As long as we are 8 or more bytes before the end of src, we can load and
		// compare 8 bytes at a time. If those 8 bytes are equal, repeat.
		for j+8 < len(src) {
			iBytes := binary.LittleEndian.Uint64(src[i:])
			jBytes := binary.LittleEndian.Uint64(src[j:])
			if iBytes != jBytes {
				// If those 8 bytes were not equal, XOR the two 8 byte values, and return
				// the index of the first byte that differs. The trailing zero count
				// finds the least significant 1 bit, and the shift by 3 converts a bit
				// index to a byte index.
				return j + bits.TrailingZeros64(iBytes^jBytes)>>3
			}
			i, j = i+8, j+8
		}
	case "386":
		// On a 32-bit CPU, we do it 4 bytes at a time.
		for j+4 < len(src) {
			iBytes := binary.LittleEndian.Uint32(src[i:])
			jBytes := binary.LittleEndian.Uint32(src[j:])
			if iBytes != jBytes {
				return j + bits.TrailingZeros32(iBytes^jBytes)>>3
			}
			i, j = i+4, j+4
		}
	}
	for ; j < len(src) && src[i] == src[j]; i, j = i+1, j+1 {
	}
	return j
}
