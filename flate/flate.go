// Package flate writes DEFLATE streams (RFC 1951) from the parses produced
// by package squeeze.
package flate

import (
	"github.com/andybalholm/squeeze"
	"github.com/andybalholm/squeeze/lz77"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// fixedReparseSymbols is the largest block, in symbols, for which the
// compressor also tries a parse tuned for the fixed Huffman codes.
const fixedReparseSymbols = 1000

// Compress appends a raw DEFLATE stream holding src to dst, and returns the
// extended buffer. If opts is nil, squeeze.DefaultOptions is used.
func Compress(dst, src []byte, opts *squeeze.Options) ([]byte, error) {
	o := squeeze.DefaultOptions()
	if opts != nil {
		o = *opts
	}
	c := &compressor{
		opts:     o,
		chain:    o.NewHashChain(),
		parser:   o.NewOptimalParser(),
		splitter: o.NewBlockSplitter(),
		log:      o.Log(),
	}
	c.w.dst = dst
	c.chain.Load(src)

	if len(src) == 0 {
		c.w.writeEmptyBlock(true)
	}
	for start := 0; start < len(src); start += squeeze.MasterBlockSize {
		end := min(start+squeeze.MasterBlockSize, len(src))
		if err := c.compressMaster(src, start, end, end == len(src)); err != nil {
			return dst, err
		}
	}
	c.w.flush()
	return c.w.dst, nil
}

type compressor struct {
	opts     squeeze.Options
	chain    *squeeze.HashChain
	parser   *squeeze.OptimalParser
	greedy   squeeze.GreedyParser
	splitter *squeeze.BlockSplitter
	log      logrus.FieldLogger
	w        blockWriter
}

// compressMaster compresses src[start:end], one master block.
func (c *compressor) compressMaster(src []byte, start, end int, final bool) error {
	if c.opts.BlockSplitting && c.opts.SplitOnGreedy {
		c.greedy.Lazy = true
		greedy, err := c.greedy.ParseStore(src, c.chain, start, end)
		if err != nil {
			return err
		}
		points, err := c.splitter.SplitBytes(greedy)
		if err != nil {
			return err
		}

		bounds := append(append([]int{start}, points...), end)
		for i := 0; i+1 < len(bounds); i++ {
			store, err := c.parse(src, bounds[i], bounds[i+1])
			if err != nil {
				return err
			}
			last := final && i+2 == len(bounds)
			if err := c.writeBlock(src, store, 0, store.Len(), last); err != nil {
				return err
			}
		}
		return nil
	}

	store, err := c.parse(src, start, end)
	if err != nil {
		return err
	}
	points, err := c.splitter.Split(store)
	if err != nil {
		return err
	}
	bounds := append(append([]int{0}, points...), store.Len())
	for i := 0; i+1 < len(bounds); i++ {
		last := final && i+2 == len(bounds)
		if err := c.writeBlock(src, store, bounds[i], bounds[i+1], last); err != nil {
			return err
		}
	}
	return nil
}

// parse runs the optimal parser on src[start:end]. If it runs out of
// memory, it falls back to a single cache-free pass with the bootstrap
// cost model.
func (c *compressor) parse(src []byte, start, end int) (*lz77.Store, error) {
	store, err := c.parser.Parse(src, start, end, c.chain)
	if !errors.Is(err, squeeze.ErrAllocation) {
		return store, err
	}

	c.log.WithError(err).WithFields(logrus.Fields{"start": start, "end": end}).Warn("falling back to a single pass parse")
	store = lz77.NewStore((end - start) / 2)
	if err := c.parser.ParseWithModel(squeeze.NewBootstrapCost(src[start:end]), src, start, end, c.chain, store); err != nil {
		return nil, errors.Wrapf(err, "fallback parse of [%d, %d)", start, end)
	}
	return store, nil
}

// writeBlock writes the symbols [lstart, lend) of store in the smallest
// block type. Small blocks are also parsed again with the costs of the
// fixed Huffman codes, in case that parse in a fixed block is smaller
// still.
func (c *compressor) writeBlock(src []byte, store *lz77.Store, lstart, lend int, eof bool) error {
	p, err := c.w.plan(store, lstart, lend)
	if err != nil {
		return err
	}
	start, end := store.ByteRange(lstart, lend)

	if lend-lstart < fixedReparseSymbols && !p.fixed && end > start {
		fixedStore := lz77.NewStore(lend - lstart)
		err := c.parser.ParseWithModel(squeeze.FixedCost{}, src, start, end, c.chain, fixedStore)
		if err == nil {
			ll, d := fixedStore.Histogram(0, fixedStore.Len())
			ll[lz77.EndOfBlock] = 1
			if fs := fixedSize(&ll, &d); fs < p.size {
				c.w.writeBlock(blockPlan{fixed: true, size: fs}, fixedStore, 0, fixedStore.Len(), src[start:end], eof)
				return nil
			}
		} else if !errors.Is(err, squeeze.ErrAllocation) {
			return err
		}
	}

	c.w.writeBlock(p, store, lstart, lend, src[start:end], eof)
	return nil
}
