package squeeze

import "math/rand"

var testWords = []string{
	"the", "of", "light", "and", "rays", "which", "is", "refracted", "colours",
	"prism", "glass", "white", "red", "violet", "experiment", "in", "that",
	"sun", "through", "hole", "window", "paper", "lens", "image",
}

// testText returns n bytes of word salad, compressible like English text.
func testText(n int, seed int64) []byte {
	r := rand.New(rand.NewSource(seed))
	b := make([]byte, 0, n+16)
	for len(b) < n {
		b = append(b, testWords[r.Intn(len(testWords))]...)
		switch r.Intn(12) {
		case 0:
			b = append(b, ".\n"...)
		case 1:
			b = append(b, ", "...)
		default:
			b = append(b, ' ')
		}
	}
	return b[:n]
}

// testMixed returns text followed by random digits, two halves with very
// different statistics.
func testMixed(n int, seed int64) []byte {
	r := rand.New(rand.NewSource(seed))
	b := testText(n/2, seed)
	for len(b) < n {
		b = append(b, byte('0'+r.Intn(10)))
	}
	return b
}
