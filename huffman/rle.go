package huffman

// OptimizeForRLE smooths counts so that the code lengths built from them are
// more likely to form runs, which the run-length coding of a DEFLATE dynamic
// header describes cheaply. Runs of similar counts are replaced by their
// average. Trailing zeros are left alone, since adding codes there would
// lengthen the header, and counts that are zero inside an all-zero stretch
// stay zero. Nonzero counts stay nonzero.
func OptimizeForRLE(counts []int) {
	length := len(counts)
	for length > 0 && counts[length-1] == 0 {
		length--
	}
	if length == 0 {
		return
	}

	// Mark the counts that are already part of a good run: at least 5 zeros,
	// or at least 7 equal nonzero values.
	goodForRLE := make([]bool, length)
	symbol := counts[0]
	stride := 0
	for i := 0; i <= length; i++ {
		if i == length || counts[i] != symbol {
			if symbol == 0 && stride >= 5 || symbol != 0 && stride >= 7 {
				for k := 0; k < stride; k++ {
					goodForRLE[i-k-1] = true
				}
			}
			stride = 1
			if i != length {
				symbol = counts[i]
			}
		} else {
			stride++
		}
	}

	// Collapse the remaining stretches of similar counts.
	orig := append([]int(nil), counts[:length]...)
	stride = 0
	limit := orig[0]
	sum := 0
	for i := 0; i <= length; i++ {
		if i == length || goodForRLE[i] || abs(orig[i]-limit) >= 4 {
			if stride >= 4 || stride >= 3 && sum == 0 {
				count := max((sum+stride/2)/stride, 1)
				if sum == 0 {
					count = 0
				}
				for k := 0; k < stride; k++ {
					counts[i-k-1] = count
				}
			}
			stride = 0
			sum = 0
			switch {
			case i < length-3:
				limit = (orig[i] + orig[i+1] + orig[i+2] + orig[i+3] + 2) / 4
			case i < length:
				limit = orig[i]
			default:
				limit = 0
			}
		}
		stride++
		if i != length {
			sum += orig[i]
		}
	}
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
