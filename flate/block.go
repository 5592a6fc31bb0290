package flate

import (
	"github.com/andybalholm/squeeze"
	"github.com/andybalholm/squeeze/huffman"
	"github.com/andybalholm/squeeze/lz77"
	"github.com/pkg/errors"
)

const (
	// The number of codegen codes.
	codegenCodeCount = 19
	badCode          = 255

	// The longest code for the code length alphabet.
	maxCodegenLength = 7

	maxStoredBlockSize = 65535
)

// The odd order in which the codegen code sizes are written.
var codegenOrder = [codegenCodeCount]uint8{16, 17, 18, 0, 8, 7, 9, 6, 10, 5, 11, 4, 12, 3, 13, 2, 14, 1, 15}

// The fixed Huffman codes of RFC 1951 section 3.2.6.
var (
	fixedLitLenLengths [288]uint8
	fixedDistLengths   [32]uint8
	fixedLitLenCodes   []uint16
	fixedDistCodes     []uint16
)

func init() {
	for i := range fixedLitLenLengths {
		switch {
		case i < 144:
			fixedLitLenLengths[i] = 8
		case i < 256:
			fixedLitLenLengths[i] = 9
		case i < 280:
			fixedLitLenLengths[i] = 7
		default:
			fixedLitLenLengths[i] = 8
		}
	}
	for i := range fixedDistLengths {
		fixedDistLengths[i] = 5
	}
	fixedLitLenCodes = huffman.Codes(fixedLitLenLengths[:])
	fixedDistCodes = huffman.Codes(fixedDistLengths[:])
}

// A code is the pair of Huffman codes used to write one block.
type code struct {
	litLenLengths []uint8
	litLenCodes   []uint16
	distLengths   []uint8
	distCodes     []uint16
}

var fixedCode = code{
	litLenLengths: fixedLitLenLengths[:lz77.NumLitLen],
	distLengths:   fixedDistLengths[:lz77.NumDist],
}

// A blockWriter writes DEFLATE blocks for ranges of an lz77.Store.
type blockWriter struct {
	bitWriter
	codegen     []uint8
	codegenFreq [codegenCodeCount]int
}

// A blockPlan is the cheapest way found to write a block, and its size in
// bits.
type blockPlan struct {
	stored  bool
	fixed   bool
	dynamic dynamicCode
	size    int
}

// dynamicCode is a dynamic Huffman code with its header already run-length
// coded.
type dynamicCode struct {
	code
	numLiterals  int
	numOffsets   int
	numCodegens  int
	codegen      []uint8
	codegenLens  []uint8
	codegenCodes []uint16
	headerSize   int
	dataSize     int
}

// extraBits returns the number of extra bits the matches of a histogram
// need, which is the same whichever code is used.
func extraBits(ll *[lz77.NumLitLen]int, d *[lz77.NumDist]int) int {
	bits := 0
	for sym := 257; sym < lz77.NumLitLen; sym++ {
		bits += ll[sym] * lz77.LengthSymbolExtraBits(sym)
	}
	for sym := range d {
		bits += d[sym] * lz77.DistSymbolExtraBits(sym)
	}
	return bits
}

// fixedSize returns the size in bits of a block with the fixed codes.
func fixedSize(ll *[lz77.NumLitLen]int, d *[lz77.NumDist]int) int {
	return 3 + huffman.Cost(ll[:], fixedCode.litLenLengths) + huffman.Cost(d[:], fixedCode.distLengths) + extraBits(ll, d)
}

// storedSize returns the size in bits of n bytes written as stored blocks,
// assuming the worst case for byte alignment.
func storedSize(n int) int {
	blocks := (n + maxStoredBlockSize - 1) / maxStoredBlockSize
	if blocks == 0 {
		blocks = 1
	}
	return blocks*5*8 + n*8
}

// plan chooses the smallest encoding for the symbols [lstart, lend) of
// store.
func (w *blockWriter) plan(store *lz77.Store, lstart, lend int) (blockPlan, error) {
	ll, d := store.Histogram(lstart, lend)
	ll[lz77.EndOfBlock] = 1

	start, end := store.ByteRange(lstart, lend)
	p := blockPlan{stored: true, size: storedSize(end - start)}

	if fs := fixedSize(&ll, &d); fs < p.size {
		p = blockPlan{fixed: true, size: fs}
	}

	dyn, err := w.dynamic(&ll, &d)
	if err != nil {
		return p, err
	}
	if ds := dyn.headerSize + dyn.dataSize + extraBits(&ll, &d); ds < p.size {
		p = blockPlan{dynamic: dyn, size: ds}
	}
	return p, nil
}

// dynamic builds the dynamic code for a histogram. It tries both the
// plain frequencies and a version smoothed for run-length coding, and
// keeps whichever makes header plus data smaller.
func (w *blockWriter) dynamic(ll *[lz77.NumLitLen]int, d *[lz77.NumDist]int) (dynamicCode, error) {
	plain, err := w.buildDynamic(ll[:], d[:], ll, d)
	if err != nil {
		return plain, err
	}

	llRLE, dRLE := *ll, *d
	huffman.OptimizeForRLE(llRLE[:])
	huffman.OptimizeForRLE(dRLE[:])
	smoothed, err := w.buildDynamic(llRLE[:], dRLE[:], ll, d)
	if err != nil {
		return plain, err
	}

	if smoothed.headerSize+smoothed.dataSize < plain.headerSize+plain.dataSize {
		return smoothed, nil
	}
	return plain, nil
}

// buildDynamic builds a code from the given counts, and measures it
// against the actual histogram.
func (w *blockWriter) buildDynamic(llCounts, dCounts []int, ll *[lz77.NumLitLen]int, d *[lz77.NumDist]int) (dynamicCode, error) {
	var c dynamicCode
	var err error
	c.litLenLengths, err = huffman.LengthLimited(llCounts, squeeze.MaxCodeLength)
	if err != nil {
		return c, errors.Wrap(squeeze.ErrInvariant, err.Error())
	}
	c.distLengths, err = huffman.LengthLimited(dCounts, squeeze.MaxCodeLength)
	if err != nil {
		return c, errors.Wrap(squeeze.ErrInvariant, err.Error())
	}
	patchDistanceCodes(c.distLengths)

	c.numLiterals = len(c.litLenLengths)
	for c.numLiterals > 257 && c.litLenLengths[c.numLiterals-1] == 0 {
		c.numLiterals--
	}
	c.numOffsets = len(c.distLengths)
	for c.numOffsets > 1 && c.distLengths[c.numOffsets-1] == 0 {
		c.numOffsets--
	}

	c.codegen = w.generateCodegen(c.litLenLengths[:c.numLiterals], c.distLengths[:c.numOffsets])
	c.codegenLens, err = huffman.LengthLimited(w.codegenFreq[:], maxCodegenLength)
	if err != nil {
		return c, errors.Wrap(squeeze.ErrInvariant, err.Error())
	}
	completeSingleCode(c.codegenLens)

	c.numCodegens = codegenCodeCount
	for c.numCodegens > 4 && c.codegenLens[codegenOrder[c.numCodegens-1]] == 0 {
		c.numCodegens--
	}
	c.headerSize = 3 + 5 + 5 + 4 + 3*c.numCodegens +
		huffman.Cost(w.codegenFreq[:], c.codegenLens) +
		w.codegenFreq[16]*2 +
		w.codegenFreq[17]*3 +
		w.codegenFreq[18]*7
	c.dataSize = huffman.Cost(ll[:], c.litLenLengths) + huffman.Cost(d[:], c.distLengths)
	return c, nil
}

// patchDistanceCodes makes sure at least two distance codes are present.
// Some old decoders reject blocks with fewer, even though the format
// allows them.
func patchDistanceCodes(lengths []uint8) {
	used := 0
	for _, l := range lengths {
		if l != 0 {
			used++
			if used == 2 {
				return
			}
		}
	}
	switch {
	case used == 0:
		lengths[0], lengths[1] = 1, 1
	case lengths[0] != 0:
		lengths[1] = 1
	default:
		lengths[0] = 1
	}
}

// completeSingleCode gives a second symbol a code when only one is used,
// since a code length code must be complete.
func completeSingleCode(lengths []uint8) {
	used := -1
	for i, l := range lengths {
		if l != 0 {
			if used >= 0 {
				return
			}
			used = i
		}
	}
	switch used {
	case -1:
	case 0:
		lengths[1] = 1
	default:
		lengths[0] = 1
	}
}

// RFC 1951 3.2.7 specifies a special run-length encoding for specifying
// the literal and offset lengths arrays (which are concatenated into a single
// array).  This method generates that run-length encoding.
//
// The result is returned as a new slice, terminated by badCode, and the
// frequencies of each code are written into the codegenFreq array.
// Codes 0-15 are single byte codes. Codes 16-18 are followed by additional
// information.
func (w *blockWriter) generateCodegen(litLenLengths, distLengths []uint8) []uint8 {
	for i := range w.codegenFreq {
		w.codegenFreq[i] = 0
	}
	lengths := make([]uint8, 0, len(litLenLengths)+len(distLengths)+1)
	lengths = append(lengths, litLenLengths...)
	lengths = append(lengths, distLengths...)
	lengths = append(lengths, badCode)

	codegen := w.codegen[:0]
	size := lengths[0]
	count := 1
	for inIndex := 1; size != badCode; inIndex++ {
		// INVARIANT: We have seen "count" copies of size that have not yet
		// had output generated for them.
		nextSize := lengths[inIndex]
		if nextSize == size {
			count++
			continue
		}
		// We need to generate codegen indicating "count" of size.
		if size != 0 {
			codegen = append(codegen, size)
			w.codegenFreq[size]++
			count--
			for count >= 3 {
				n := min(count, 6)
				codegen = append(codegen, 16, uint8(n-3))
				w.codegenFreq[16]++
				count -= n
			}
		} else {
			for count >= 11 {
				n := min(count, 138)
				codegen = append(codegen, 18, uint8(n-11))
				w.codegenFreq[18]++
				count -= n
			}
			if count >= 3 {
				// count >= 3 && count <= 10
				codegen = append(codegen, 17, uint8(count-3))
				w.codegenFreq[17]++
				count = 0
			}
		}
		for ; count > 0; count-- {
			codegen = append(codegen, size)
			w.codegenFreq[size]++
		}
		// Set up invariant for next time through the loop.
		size = nextSize
		count = 1
	}
	// Marker indicating the end of the codegen.
	codegen = append(codegen, badCode)
	w.codegen = codegen

	return append([]uint8(nil), codegen...)
}

// Write the header of a dynamic Huffman block to the output stream.
func (w *blockWriter) writeDynamicHeader(c *dynamicCode, isEOF bool) {
	firstBits := 4
	if isEOF {
		firstBits = 5
	}
	w.writeBits(firstBits, 3)
	w.writeBits(c.numLiterals-257, 5)
	w.writeBits(c.numOffsets-1, 5)
	w.writeBits(c.numCodegens-4, 4)

	for i := 0; i < c.numCodegens; i++ {
		w.writeBits(int(c.codegenLens[codegenOrder[i]]), 3)
	}

	for i := 0; c.codegen[i] != badCode; i++ {
		codeWord := c.codegen[i]
		w.writeCode(c.codegenCodes[codeWord], c.codegenLens[codeWord])

		switch codeWord {
		case 16:
			i++
			w.writeBits(int(c.codegen[i]), 2)
		case 17:
			i++
			w.writeBits(int(c.codegen[i]), 3)
		case 18:
			i++
			w.writeBits(int(c.codegen[i]), 7)
		}
	}
}

func (w *blockWriter) writeStoredHeader(length int, isEOF bool) {
	flag := 0
	if isEOF {
		flag = 1
	}
	w.writeBits(flag, 3)
	w.flush()
	w.writeBits(length, 16)
	w.writeBits(int(^uint16(length)), 16)
}

func (w *blockWriter) writeFixedHeader(isEOF bool) {
	// Indicate that we are a fixed Huffman block
	value := 2
	if isEOF {
		value = 3
	}
	w.writeBits(value, 3)
}

// writeEmptyBlock writes a fixed block holding only the end-of-block
// marker.
func (w *blockWriter) writeEmptyBlock(isEOF bool) {
	w.writeFixedHeader(isEOF)
	w.writeCode(fixedLitLenCodes[lz77.EndOfBlock], fixedCode.litLenLengths[lz77.EndOfBlock])
}

// writeStored writes input as one or more stored blocks.
func (w *blockWriter) writeStored(input []byte, eof bool) {
	for {
		n := min(len(input), maxStoredBlockSize)
		last := n == len(input)
		w.writeStoredHeader(n, eof && last)
		w.writeBytes(input[:n])
		input = input[n:]
		if last {
			return
		}
	}
}

// writeBlock writes the symbols [lstart, lend) of store as a block,
// according to p. input holds the bytes they cover.
func (w *blockWriter) writeBlock(p blockPlan, store *lz77.Store, lstart, lend int, input []byte, eof bool) {
	switch {
	case p.stored:
		w.writeStored(input, eof)
		return
	case p.fixed:
		w.writeFixedHeader(eof)
		w.writeSymbols(store, lstart, lend, fixedLitLenCodes, fixedCode.litLenLengths, fixedDistCodes, fixedCode.distLengths)
	default:
		c := &p.dynamic
		c.codegenCodes = huffman.Codes(c.codegenLens)
		c.litLenCodes = huffman.Codes(c.litLenLengths)
		c.distCodes = huffman.Codes(c.distLengths)
		w.writeDynamicHeader(c, eof)
		w.writeSymbols(store, lstart, lend, c.litLenCodes, c.litLenLengths, c.distCodes, c.distLengths)
	}
}

// writeSymbols writes the symbols [lstart, lend) of store, followed by the
// end-of-block marker.
func (w *blockWriter) writeSymbols(store *lz77.Store, lstart, lend int, llCodes []uint16, llLengths []uint8, dCodes []uint16, dLengths []uint8) {
	for i := lstart; i < lend; i++ {
		if store.IsLiteral(i) {
			b := store.LitLens[i]
			w.writeCode(llCodes[b], llLengths[b])
			continue
		}

		length := int(store.LitLens[i])
		lsym := store.LitLenSymbol(i)
		w.writeCode(llCodes[lsym], llLengths[lsym])
		if extra := lz77.LengthExtraBits(length); extra > 0 {
			w.writeBits(lz77.LengthExtraValue(length), uint(extra))
		}

		dist := int(store.Dists[i])
		dsym := store.DistSymbol(i)
		w.writeCode(dCodes[dsym], dLengths[dsym])
		if extra := lz77.DistExtraBits(dist); extra > 0 {
			w.writeBits(lz77.DistExtraValue(dist), uint(extra))
		}
	}
	w.writeCode(llCodes[lz77.EndOfBlock], llLengths[lz77.EndOfBlock])
}
