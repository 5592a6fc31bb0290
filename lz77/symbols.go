// Package lz77 holds the intermediate representation shared by the parser,
// the block splitter and the DEFLATE writer: a sequence of literals and
// length/distance pairs, with the DEFLATE symbol tables needed to price them.
package lz77

import "math/bits"

const (
	MinMatch   = 3     // shortest match DEFLATE can express
	MaxMatch   = 258   // longest match DEFLATE can express
	WindowSize = 32768 // largest distance DEFLATE can express

	// NumLitLen is the size of the literal/length alphabet
	// (256 literals, the end-of-block marker, 29 length symbols).
	NumLitLen = 286

	// NumDist is the size of the distance alphabet.
	NumDist = 30

	// EndOfBlock is the literal/length symbol that ends every block.
	EndOfBlock = 256
)

// lengthSymbols maps a match length to its literal/length symbol.
var lengthSymbols [MaxMatch + 1]uint16

// The first length covered by each length symbol (RFC 1951 section 3.2.5).
var lengthBase = [29]uint16{
	3, 4, 5, 6, 7, 8, 9, 10, 11, 13,
	15, 17, 19, 23, 27, 31, 35, 43, 51, 59,
	67, 83, 99, 115, 131, 163, 195, 227, 258,
}

var lengthExtra = [29]uint8{
	0, 0, 0, 0, 0, 0, 0, 0, 1, 1,
	1, 1, 2, 2, 2, 2, 3, 3, 3, 3,
	4, 4, 4, 4, 5, 5, 5, 5, 0,
}

var distBase = [NumDist]uint16{
	1, 2, 3, 4, 5, 7, 9, 13, 17, 25,
	33, 49, 65, 97, 129, 193, 257, 385, 513, 769,
	1025, 1537, 2049, 3073, 4097, 6145, 8193, 12289, 16385, 24577,
}

var distExtra = [NumDist]uint8{
	0, 0, 0, 0, 1, 1, 2, 2, 3, 3,
	4, 4, 5, 5, 6, 6, 7, 7, 8, 8,
	9, 9, 10, 10, 11, 11, 12, 12, 13, 13,
}

func init() {
	for code := len(lengthBase) - 1; code >= 0; code-- {
		for l := int(lengthBase[code]); l <= MaxMatch && lengthSymbols[l] == 0; l++ {
			lengthSymbols[l] = uint16(257 + code)
		}
	}
}

// LengthSymbol returns the literal/length symbol for a match length in
// [MinMatch, MaxMatch].
func LengthSymbol(length int) int {
	return int(lengthSymbols[length])
}

// LengthExtraBits returns the number of extra bits that follow the symbol
// for a match length.
func LengthExtraBits(length int) int {
	return int(lengthExtra[lengthSymbols[length]-257])
}

// LengthExtraValue returns the value written in the extra bits of length.
func LengthExtraValue(length int) int {
	return length - int(lengthBase[lengthSymbols[length]-257])
}

// LengthSymbolExtraBits is like LengthExtraBits, but takes the symbol.
func LengthSymbolExtraBits(symbol int) int {
	return int(lengthExtra[symbol-257])
}

// DistSymbol returns the distance symbol for a distance in [1, WindowSize].
func DistSymbol(dist int) int {
	if dist < 5 {
		return dist - 1
	}
	d := uint(dist - 1)
	l := bits.Len(d) - 1
	r := (d >> (l - 1)) & 1
	return l*2 + int(r)
}

// DistExtraBits returns the number of extra bits that follow the symbol for
// a distance.
func DistExtraBits(dist int) int {
	return int(distExtra[DistSymbol(dist)])
}

// DistExtraValue returns the value written in the extra bits of dist.
func DistExtraValue(dist int) int {
	return dist - int(distBase[DistSymbol(dist)])
}

// DistSymbolExtraBits is like DistExtraBits, but takes the symbol.
func DistSymbolExtraBits(symbol int) int {
	return int(distExtra[symbol])
}
