package huffman

import (
	"math/bits"
	"slices"
	"testing"

	"gotest.tools/v3/assert"
	"pgregory.net/rapid"
)

func TestLengthLimitedPaperExamples(t *testing.T) {
	for _, c := range []struct {
		freqs []int
		limit int
		want  []uint8
	}{
		{[]int{1, 1, 5, 7, 10, 14}, 3, []uint8{3, 3, 3, 3, 2, 2}},
		{[]int{1, 1, 5, 7, 10, 14}, 4, []uint8{4, 4, 3, 2, 2, 2}},
		{[]int{252, 0, 1, 6, 9, 10, 6, 3, 2, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0}, 7,
			[]uint8{1, 0, 6, 4, 3, 3, 3, 5, 6, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0}},
	} {
		got, err := LengthLimited(c.freqs, c.limit)
		assert.NilError(t, err)
		assert.DeepEqual(t, got, c.want)
	}
}

func TestLengthLimitedSkewed(t *testing.T) {
	lengths, err := LengthLimited([]int{10, 1, 1, 1}, 15)
	assert.NilError(t, err)
	for i := 1; i < 4; i++ {
		if lengths[0] >= lengths[i] {
			t.Fatalf("heavy symbol has length %d, symbol %d has %d", lengths[0], i, lengths[i])
		}
	}
	assert.Equal(t, Kraft(lengths, 15), 1<<15)
}

func TestLengthLimitedSmallAlphabets(t *testing.T) {
	got, err := LengthLimited(nil, 15)
	assert.NilError(t, err)
	assert.Equal(t, len(got), 0)

	got, err = LengthLimited([]int{0, 0, 0}, 15)
	assert.NilError(t, err)
	assert.DeepEqual(t, got, []uint8{0, 0, 0})

	got, err = LengthLimited([]int{0, 7, 0}, 15)
	assert.NilError(t, err)
	assert.DeepEqual(t, got, []uint8{0, 1, 0})

	got, err = LengthLimited([]int{3, 0, 900}, 15)
	assert.NilError(t, err)
	assert.DeepEqual(t, got, []uint8{1, 0, 1})
}

func TestLengthLimitedTooSmall(t *testing.T) {
	_, err := LengthLimited([]int{1, 1, 1, 1, 1}, 2)
	assert.ErrorIs(t, err, ErrLimitTooSmall)

	_, err = LengthLimited([]int{1, 1, 1, 1}, 2)
	assert.NilError(t, err)
}

func TestLengthLimitedFibonacci(t *testing.T) {
	// Fibonacci weights produce the deepest possible unlimited tree, so
	// the limit has to kick in.
	freqs := []int{1, 1}
	for len(freqs) < 30 {
		freqs = append(freqs, freqs[len(freqs)-1]+freqs[len(freqs)-2])
	}
	lengths, err := LengthLimited(freqs, 15)
	assert.NilError(t, err)
	assert.Equal(t, int(slices.Max(lengths)), 15)
	assert.Assert(t, Kraft(lengths, 15) <= 1<<15)
}

// bruteForceCost returns the smallest total cost of any prefix code for the
// nonzero freqs with no code longer than limit. Since the heaviest symbols
// should get the shortest codes, it is enough to try every nondecreasing
// sequence of lengths against the frequencies sorted in decreasing order.
func bruteForceCost(freqs []int, limit int) int {
	var used []int
	for _, f := range freqs {
		if f != 0 {
			used = append(used, f)
		}
	}
	slices.Sort(used)
	slices.Reverse(used)
	switch len(used) {
	case 0:
		return 0
	case 1:
		return used[0]
	}

	maxLen := min(limit, len(used)-1)
	best := -1
	lengths := make([]int, len(used))
	var try func(i, from int)
	try = func(i, from int) {
		if i == len(used) {
			kraft := 0
			for _, l := range lengths {
				kraft += 1 << (maxLen - l)
			}
			if kraft > 1<<maxLen {
				return
			}
			cost := 0
			for j, l := range lengths {
				cost += used[j] * l
			}
			if best < 0 || cost < best {
				best = cost
			}
			return
		}
		for l := from; l <= maxLen; l++ {
			lengths[i] = l
			try(i+1, l)
		}
	}
	try(0, 1)
	return best
}

func TestLengthLimitedOptimal(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		freqs := rapid.SliceOfN(rapid.IntRange(0, 1000), 0, 8).Draw(t, "freqs")
		limit := rapid.IntRange(1, 15).Draw(t, "limit")

		used := 0
		for _, f := range freqs {
			if f != 0 {
				used++
			}
		}

		lengths, err := LengthLimited(freqs, limit)
		if 1<<limit < used {
			if err != ErrLimitTooSmall {
				t.Fatalf("got %v, want ErrLimitTooSmall", err)
			}
			return
		}
		if err != nil {
			t.Fatal(err)
		}

		for i, l := range lengths {
			if int(l) > limit {
				t.Fatalf("length %d of symbol %d exceeds limit %d", l, i, limit)
			}
			if (l == 0) != (freqs[i] == 0) {
				t.Fatalf("symbol %d with frequency %d got length %d", i, freqs[i], l)
			}
		}
		if Kraft(lengths, limit) > 1<<limit {
			t.Fatalf("lengths %v violate the Kraft inequality", lengths)
		}
		if got, want := Cost(freqs, lengths), bruteForceCost(freqs, limit); got != want {
			t.Fatalf("lengths %v cost %d, optimal is %d", lengths, got, want)
		}
	})
}

func TestLengthLimitedLargeAlphabet(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		freqs := rapid.SliceOfN(rapid.IntRange(0, 1<<20), 0, 300).Draw(t, "freqs")
		lengths, err := LengthLimited(freqs, 15)
		if err != nil {
			t.Fatal(err)
		}
		if slices.Max(append([]uint8{0}, lengths...)) > 15 {
			t.Fatalf("length over 15: %v", lengths)
		}
		if Kraft(lengths, 15) > 1<<15 {
			t.Fatalf("lengths %v violate the Kraft inequality", lengths)
		}
	})
}

func TestCodesRFCExample(t *testing.T) {
	// RFC 1951 section 3.2.2: ABCDEFGH with lengths (3, 3, 3, 3, 3, 2, 4, 4).
	lengths := []uint8{3, 3, 3, 3, 3, 2, 4, 4}
	want := []uint16{0b010, 0b011, 0b100, 0b101, 0b110, 0b00, 0b1110, 0b1111}

	codes := Codes(lengths)
	for i, c := range codes {
		l := int(lengths[i])
		got := bits.Reverse16(c) >> (16 - l)
		assert.Equal(t, got, want[i], "symbol %d", i)
	}
}

func TestCodesArePrefixFree(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		freqs := rapid.SliceOfN(rapid.IntRange(0, 500), 2, 40).Draw(t, "freqs")
		lengths, err := LengthLimited(freqs, 7)
		if err != nil {
			t.Fatal(err)
		}
		codes := Codes(lengths)
		for i := range codes {
			for j := range codes {
				if i == j || lengths[i] == 0 || lengths[j] == 0 || lengths[i] > lengths[j] {
					continue
				}
				// Codes are stored reversed, so a prefix is a suffix of the
				// low bits.
				mask := uint16(1)<<lengths[i] - 1
				if codes[j]&mask == codes[i] {
					t.Fatalf("code of symbol %d is a prefix of the code of symbol %d", i, j)
				}
			}
		}
	})
}

func TestOptimizeForRLE(t *testing.T) {
	counts := []int{10, 11, 9, 10, 12, 0, 0, 3, 0, 0, 0, 0, 0, 0, 0}
	OptimizeForRLE(counts)
	for i := 0; i < 5; i++ {
		assert.Equal(t, counts[i], counts[0], "index %d", i)
	}
	assert.Equal(t, counts[7] != 0, true)
	for _, c := range counts[8:] {
		assert.Equal(t, c, 0)
	}
}

func TestOptimizeForRLEKeepsUsedSymbols(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		counts := rapid.SliceOfN(rapid.IntRange(0, 50), 0, 300).Draw(t, "counts")
		orig := slices.Clone(counts)
		OptimizeForRLE(counts)

		last := len(orig)
		for last > 0 && orig[last-1] == 0 {
			last--
		}
		for i := range counts {
			if orig[i] != 0 && counts[i] == 0 {
				t.Fatalf("count %d became zero", i)
			}
			if i >= last && counts[i] != 0 {
				t.Fatalf("trailing zero %d became %d", i, counts[i])
			}
		}
	})
}
