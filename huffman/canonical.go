package huffman

import "math/bits"

// Codes returns the canonical prefix code for the given code lengths, as
// defined in RFC 1951 section 3.2.2: shorter codes come first, and codes of
// the same length are assigned in symbol order. The codes are bit-reversed,
// ready to be written least-significant bit first. Symbols with length 0
// get code 0.
func Codes(lengths []uint8) []uint16 {
	var maxLen uint8
	for _, l := range lengths {
		maxLen = max(maxLen, l)
	}

	count := make([]int, maxLen+1)
	for _, l := range lengths {
		count[l]++
	}
	count[0] = 0

	next := make([]int, maxLen+1)
	code := 0
	for l := 1; l <= int(maxLen); l++ {
		code = (code + count[l-1]) << 1
		next[l] = code
	}

	codes := make([]uint16, len(lengths))
	for sym, l := range lengths {
		if l == 0 {
			continue
		}
		codes[sym] = bits.Reverse16(uint16(next[l])) >> (16 - l)
		next[l]++
	}
	return codes
}

// Kraft returns the Kraft sum of lengths, in units of 2^-limit: a prefix
// code exists for lengths if and only if the result is at most 1<<limit,
// and the code is complete if it is equal. Lengths longer than limit are
// not allowed.
func Kraft(lengths []uint8, limit int) int {
	sum := 0
	for _, l := range lengths {
		if l != 0 {
			sum += 1 << (limit - int(l))
		}
	}
	return sum
}

// Cost returns the number of bits needed to encode symbols with the given
// frequencies using lengths.
func Cost(freqs []int, lengths []uint8) int {
	total := 0
	for i, f := range freqs {
		total += f * int(lengths[i])
	}
	return total
}
