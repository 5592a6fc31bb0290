package squeeze

import (
	"strconv"

	"github.com/andybalholm/squeeze/lz77"
)

// A TextEncoder is an Encoder that produces a human-readable representation of
// the LZ77 compression. Matches are replaced with <Length,Distance> symbols.
// Bytes that are not printable ASCII, and the characters < and \, are
// written as \xNN escapes.
type TextEncoder struct{}

func (t TextEncoder) Header(dst []byte) []byte {
	return dst
}

func (t TextEncoder) Reset() {}

func (t TextEncoder) Encode(dst []byte, src []byte, matches []Match, lastBlock bool) []byte {
	pos := 0
	for _, m := range matches {
		if m.Unmatched > 0 {
			dst = appendEscaped(dst, src[pos:pos+m.Unmatched])
			pos += m.Unmatched
		}
		if m.Length > 0 {
			dst = appendMatch(dst, m.Length, m.Distance)
			pos += m.Length
		}
	}
	if pos < len(src) {
		dst = appendEscaped(dst, src[pos:])
	}
	return dst
}

// EncodeStore appends the representation of the symbols of store to dst.
func (t TextEncoder) EncodeStore(dst []byte, store *lz77.Store) []byte {
	for i := 0; i < store.Len(); i++ {
		if store.IsLiteral(i) {
			dst = appendEscaped(dst, []byte{byte(store.LitLens[i])})
			continue
		}
		dst = appendMatch(dst, int(store.LitLens[i]), int(store.Dists[i]))
	}
	return dst
}

func appendMatch(dst []byte, length, dist int) []byte {
	dst = append(dst, '<')
	dst = strconv.AppendInt(dst, int64(length), 10)
	dst = append(dst, ',')
	dst = strconv.AppendInt(dst, int64(dist), 10)
	return append(dst, '>')
}

const hexDigits = "0123456789abcdef"

func appendEscaped(dst []byte, literals []byte) []byte {
	for _, b := range literals {
		if b == '\n' || b >= 0x20 && b < 0x7f && b != '<' && b != '\\' {
			dst = append(dst, b)
			continue
		}
		dst = append(dst, '\\', 'x', hexDigits[b>>4], hexDigits[b&15])
	}
	return dst
}
