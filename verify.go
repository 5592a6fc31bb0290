package squeeze

import (
	"bytes"

	"github.com/andybalholm/squeeze/lz77"
	"github.com/pkg/errors"
)

// Verify checks that store is a parse of src[start:end]: that its symbols
// cover the range without gaps, and that expanding them reproduces the
// input.
func Verify(store *lz77.Store, src []byte, start, end int) error {
	pos := start
	for i := 0; i < store.Len(); i++ {
		if store.Pos[i] != pos {
			return errors.Wrapf(ErrInvariant, "symbol %d starts at %d, want %d", i, store.Pos[i], pos)
		}
		if !store.IsLiteral(i) && int(store.Dists[i]) > pos {
			return errors.Wrapf(ErrInvariant, "symbol %d at %d has distance %d", i, pos, store.Dists[i])
		}
		pos += store.SymbolLen(i)
	}
	if pos != end {
		return errors.Wrapf(ErrInvariant, "parse covers [%d, %d), want [%d, %d)", start, pos, start, end)
	}

	historyStart := max(start-lz77.WindowSize, 0)
	history := make([]byte, start-historyStart, end-historyStart)
	copy(history, src[historyStart:start])
	expanded := store.Expand(history)
	if !bytes.Equal(expanded[start-historyStart:], src[start:end]) {
		return errors.Wrapf(ErrInvariant, "parse of [%d, %d) does not reproduce the input", start, end)
	}
	return nil
}
