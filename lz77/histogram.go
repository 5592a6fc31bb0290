package lz77

// Histogram returns the lit/len and distance symbol counts of the symbols in
// [lstart, lend). Small ranges are counted directly; larger ones are computed
// from the cumulative chunk snapshots, so the cost does not grow with the
// size of the range.
func (s *Store) Histogram(lstart, lend int) (ll [NumLitLen]int, d [NumDist]int) {
	if lstart+NumLitLen*3 > lend {
		for i := lstart; i < lend; i++ {
			ll[s.llSymbol[i]]++
			if s.Dists[i] != 0 {
				d[s.dSymbol[i]]++
			}
		}
		return ll, d
	}

	s.histogramAt(lend-1, &ll, &d)
	if lstart > 0 {
		var ll2 [NumLitLen]int
		var d2 [NumDist]int
		s.histogramAt(lstart-1, &ll2, &d2)
		for i := range ll {
			ll[i] -= ll2[i]
		}
		for i := range d {
			d[i] -= d2[i]
		}
	}
	return ll, d
}

// histogramAt fills ll and d with the cumulative histogram of the symbols
// [0, lpos]. It starts from the snapshot of the chunk containing lpos and
// subtracts the symbols of that chunk that come after lpos.
func (s *Store) histogramAt(lpos int, ll *[NumLitLen]int, d *[NumDist]int) {
	llpos := NumLitLen * (lpos / NumLitLen)
	copy(ll[:], s.llCounts[llpos:llpos+NumLitLen])
	for i := lpos + 1; i < llpos+NumLitLen && i < s.Len(); i++ {
		ll[s.llSymbol[i]]--
	}

	dpos := NumDist * (lpos / NumDist)
	copy(d[:], s.dCounts[dpos:dpos+NumDist])
	for i := lpos + 1; i < dpos+NumDist && i < s.Len(); i++ {
		if s.Dists[i] != 0 {
			d[s.dSymbol[i]]--
		}
	}
}
