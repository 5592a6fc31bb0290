package squeeze

import (
	"math"

	"github.com/andybalholm/squeeze/lz77"
)

// EstimateCost returns an estimate of the number of bits needed to encode
// the symbols [lstart, lend) of store as one dynamic DEFLATE block: the
// block header, an approximation of the code description, the entropy of
// the symbols, and their extra bits.
func EstimateCost(store *lz77.Store, lstart, lend int) float64 {
	ll, d := store.Histogram(lstart, lend)
	ll[lz77.EndOfBlock] = 1

	// BFINAL, BTYPE, HLIT, HDIST and HCLEN.
	bits := float64(3 + 5 + 5 + 4)
	bits += populationCost(ll[:])
	bits += populationCost(d[:])

	for sym := 257; sym < lz77.NumLitLen; sym++ {
		bits += float64(ll[sym] * lz77.LengthSymbolExtraBits(sym))
	}
	for sym := range d {
		bits += float64(d[sym] * lz77.DistSymbolExtraBits(sym))
	}
	return bits
}

// populationCost estimates the bits needed to describe a Huffman code for
// histogram in a dynamic block header, plus the bits to encode the symbols
// with it. Code lengths are approximated by rounding -log2 of each
// symbol's probability. The description cost is the entropy of those
// lengths, with runs of zeros coded by the repeat codes 17 and 18.
func populationCost(histogram []int) float64 {
	total := 0
	used := 0
	for _, n := range histogram {
		total += n
		if n > 0 {
			used++
		}
	}
	if used <= 1 {
		// One code of length 1, and the zeros around it.
		return float64(total) + 3*4
	}

	var depthHisto [19]int
	maxDepth := 1
	bits := 0.0
	log2Total := math.Log2(float64(total))
	for i := 0; i < len(histogram); {
		if histogram[i] > 0 {
			log2p := log2Total - math.Log2(float64(histogram[i]))
			bits += float64(histogram[i]) * max(log2p, 1)
			depth := min(int(log2p+0.5), MaxCodeLength)
			depth = max(depth, 1)
			maxDepth = max(maxDepth, depth)
			depthHisto[depth]++
			i++
			continue
		}

		reps := 1
		for k := i + 1; k < len(histogram) && histogram[k] == 0; k++ {
			reps++
		}
		i += reps
		if i == len(histogram) {
			// Trailing zeros are implied by HLIT and HDIST.
			break
		}
		for reps >= 11 {
			n := min(reps, 138)
			depthHisto[18]++
			bits += 7
			reps -= n
		}
		if reps >= 3 {
			depthHisto[17]++
			bits += 3
			reps = 0
		}
		depthHisto[0] += reps
	}

	// Three bits per code length code length, for about as many as are used.
	bits += float64(3 * (4 + 2*maxDepth/3))
	bits += bitsEntropy(depthHisto[:])
	return bits
}

// bitsEntropy returns the Shannon entropy of population, in bits, but at
// least one bit per symbol.
func bitsEntropy(population []int) float64 {
	sum := 0
	retval := 0.0
	for _, p := range population {
		if p == 0 {
			continue
		}
		sum += p
		retval -= float64(p) * math.Log2(float64(p))
	}
	if sum != 0 {
		retval += float64(sum) * math.Log2(float64(sum))
	}
	return max(retval, float64(sum))
}
