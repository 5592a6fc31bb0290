package flate

import (
	"github.com/andybalholm/squeeze"
	"github.com/andybalholm/squeeze/lz77"
)

// An Encoder implements squeeze.Encoder, writing raw DEFLATE data. Each
// call to Encode must get matches for the bytes of that call only.
type Encoder struct {
	// Splitter divides each call's matches into several blocks when that
	// makes the output smaller. If it is nil, each call writes one block.
	Splitter *squeeze.BlockSplitter

	w     blockWriter
	store *lz77.Store
}

// NewEncoder returns an Encoder that splits blocks with the default
// settings.
func NewEncoder() *Encoder {
	o := squeeze.DefaultOptions()
	return &Encoder{Splitter: o.NewBlockSplitter()}
}

// Header returns dst unchanged, since raw DEFLATE has no header.
func (e *Encoder) Header(dst []byte) []byte {
	return dst
}

func (e *Encoder) Reset() {
	e.w.reset()
}

// Encode appends the encoded form of src to dst. It panics if matches do
// not describe src.
func (e *Encoder) Encode(dst []byte, src []byte, matches []squeeze.Match, lastBlock bool) []byte {
	e.w.dst = dst
	if e.store == nil {
		e.store = lz77.NewStore(len(matches) * 2)
	}
	e.store.Reset()

	pos, err := squeeze.AppendMatches(e.store, src, 0, matches)
	if err != nil {
		panic(err)
	}
	for ; pos < len(src); pos++ {
		e.store.AppendLiteral(src[pos], pos)
	}

	if err := e.encodeStore(src, lastBlock); err != nil {
		panic(err)
	}
	if lastBlock {
		e.w.flush()
	}

	dst = e.w.dst
	e.w.dst = nil
	return dst
}

func (e *Encoder) encodeStore(src []byte, lastBlock bool) error {
	if e.store.Len() == 0 {
		if lastBlock {
			e.w.writeEmptyBlock(true)
		}
		return nil
	}

	var points []int
	if e.Splitter != nil {
		var err error
		points, err = e.Splitter.Split(e.store)
		if err != nil {
			return err
		}
	}

	bounds := append(append([]int{0}, points...), e.store.Len())
	for i := 0; i+1 < len(bounds); i++ {
		p, err := e.w.plan(e.store, bounds[i], bounds[i+1])
		if err != nil {
			return err
		}
		start, end := e.store.ByteRange(bounds[i], bounds[i+1])
		e.w.writeBlock(p, e.store, bounds[i], bounds[i+1], src[start:end], lastBlock && i+2 == len(bounds))
	}
	return nil
}
