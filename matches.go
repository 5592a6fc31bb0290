package squeeze

import (
	"github.com/andybalholm/squeeze/lz77"
	"github.com/pkg/errors"
)

// AppendMatches appends the parse described by matches to store. The
// matches describe src[start:], and the function returns the position
// after the last byte they cover. Matches longer than DEFLATE allows are
// split into several, and matches shorter than the minimum length are
// turned into literals. A distance that reaches before the beginning of
// src or outside the DEFLATE window is an error.
func AppendMatches(store *lz77.Store, src []byte, start int, matches []Match) (int, error) {
	pos := start
	for _, m := range matches {
		if m.Unmatched < 0 || m.Length < 0 || pos+m.Unmatched+m.Length > len(src) {
			return pos, errors.Wrapf(ErrInvariant, "match %+v at %d runs past the end of the input (%d bytes)", m, pos, len(src))
		}
		for _, b := range src[pos : pos+m.Unmatched] {
			store.AppendLiteral(b, pos)
			pos++
		}

		if m.Length == 0 {
			continue
		}
		if m.Distance < 1 || m.Distance > lz77.WindowSize || m.Distance > pos {
			return pos, errors.Wrapf(ErrInvariant, "match at %d has distance %d", pos, m.Distance)
		}
		if m.Length < lz77.MinMatch {
			for _, b := range src[pos : pos+m.Length] {
				store.AppendLiteral(b, pos)
				pos++
			}
			continue
		}

		remaining := m.Length
		for remaining > lz77.MaxMatch {
			n := lz77.MaxMatch
			if remaining-n < lz77.MinMatch {
				n = remaining - lz77.MinMatch
			}
			store.AppendMatch(n, m.Distance, pos)
			pos += n
			remaining -= n
		}
		store.AppendMatch(remaining, m.Distance, pos)
		pos += remaining
	}
	return pos, nil
}

// StoreMatches converts the symbols [lstart, lend) of store to Matches,
// appends them to dst, and returns dst.
func StoreMatches(dst []Match, store *lz77.Store, lstart, lend int) []Match {
	unmatched := 0
	for i := lstart; i < lend; i++ {
		if store.IsLiteral(i) {
			unmatched++
			continue
		}
		dst = append(dst, Match{
			Unmatched: unmatched,
			Length:    int(store.LitLens[i]),
			Distance:  int(store.Dists[i]),
		})
		unmatched = 0
	}
	if unmatched > 0 {
		dst = append(dst, Match{Unmatched: unmatched})
	}
	return dst
}
