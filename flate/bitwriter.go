package flate

// A bitWriter accumulates a DEFLATE bit stream, least significant bit
// first, appending complete bytes to dst.
type bitWriter struct {
	dst []byte

	// Data waiting to be written is the low nbits of bits.
	bits  uint64
	nbits uint
}

func (w *bitWriter) reset() {
	w.bits, w.nbits = 0, 0
}

// flush writes out any pending bits, padding the last byte with zeros.
func (w *bitWriter) flush() {
	dst := w.dst
	for w.nbits != 0 {
		dst = append(dst, byte(w.bits))
		w.bits >>= 8
		if w.nbits > 8 { // Avoid underflow
			w.nbits -= 8
		} else {
			w.nbits = 0
		}
	}
	w.bits = 0
	w.dst = dst
}

func (w *bitWriter) writeBits(b int, nb uint) {
	w.bits |= uint64(b) << w.nbits
	w.nbits += nb
	if w.nbits >= 48 {
		bits := w.bits
		w.bits >>= 48
		w.nbits -= 48
		w.dst = append(w.dst,
			byte(bits),
			byte(bits>>8),
			byte(bits>>16),
			byte(bits>>24),
			byte(bits>>32),
			byte(bits>>40),
		)
	}
}

// writeCode writes a Huffman code, which must already be bit-reversed.
func (w *bitWriter) writeCode(code uint16, length uint8) {
	w.writeBits(int(code), uint(length))
}

func (w *bitWriter) writeBytes(bytes []byte) {
	if w.nbits&7 != 0 {
		panic("writeBytes with unfinished bits")
	}
	for w.nbits != 0 {
		w.dst = append(w.dst, byte(w.bits))
		w.bits >>= 8
		w.nbits -= 8
	}
	w.dst = append(w.dst, bytes...)
}
