// Package squeeze finds near-optimal LZ77 parses for DEFLATE.
//
// Compression happens in two logically separate steps: something looks for
// repeated sequences of bytes, and an encoder writes the result in its final
// format. This package spends a lot of CPU time on the first step. Its
// OptimalParser runs a shortest-path search over all the matches a Searcher
// can find, pricing each literal and match with a statistical model of the
// Huffman codes that will encode them, and then refines the model from its
// own output and searches again. The BlockSplitter then looks for places
// where starting a new DEFLATE block, with fresh Huffman codes, makes the
// output smaller.
//
// The parse is held in an lz77.Store. The Match type is a simpler
// intermediate representation that lets the components here be mixed with
// other match finders and encoders.
package squeeze

// A Match is the basic unit of LZ77 compression.
type Match struct {
	Unmatched int // the number of unmatched bytes since the previous match
	Length    int // the number of bytes in the matched string; it may be 0 at the end of the input
	Distance  int // how far back in the stream to copy from
}

// A MatchFinder performs the LZ77 stage of compression, looking for matches.
type MatchFinder interface {
	// FindMatches looks for matches in src, appends them to dst, and returns dst.
	FindMatches(dst []Match, src []byte) []Match

	// Reset clears any internal state, preparing the MatchFinder to be used with
	// a new stream.
	Reset()
}

// An Encoder encodes the data in its final format.
type Encoder interface {
	// Header appends the appropriate stream header to dst.
	Header(dst []byte) []byte

	// Encode appends the encoded format of src to dst, using the match
	// information from matches.
	Encode(dst []byte, src []byte, matches []Match, lastBlock bool) []byte

	// Reset clears any internal state, preparing the Encoder to be used with
	// a new stream.
	Reset()
}
