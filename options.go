package squeeze

import (
	"io"

	"github.com/sirupsen/logrus"
)

// MaxCodeLength is the longest Huffman code DEFLATE allows for the
// literal/length and distance alphabets.
const MaxCodeLength = 15

// MasterBlockSize is the size of the pieces the input is divided into
// before parsing, to bound the memory used by the parser. Matches may still
// refer back into earlier pieces.
const MasterBlockSize = 1000000

// Options controls how hard the compressor works.
type Options struct {
	// Iterations is the number of times the optimal parser refines its cost
	// model and parses again. More iterations give slightly smaller output
	// and take proportionally longer. The default is 15.
	Iterations int

	// BlockSplitting enables dividing the output into several DEFLATE
	// blocks, each with its own Huffman codes.
	BlockSplitting bool

	// BlockSplittingMax is the maximum number of blocks a master block may
	// be split into. Zero or negative means no limit.
	BlockSplittingMax int

	// SplitOnGreedy makes the block splitter work on a quick greedy parse
	// of each master block. The blocks are then parsed optimally one at a
	// time. Otherwise the whole master block is parsed optimally first and
	// the split points are searched in that parse.
	SplitOnGreedy bool

	// ChainLength is how many entries to examine on the hash chain when
	// looking for matches. The default is 8192.
	ChainLength int

	// MemoryLimit is the largest amount of working memory, in bytes, that a
	// parse may request. Zero means no limit.
	MemoryLimit int

	// Logger receives debug output about iterations and split points, and
	// warnings when the compressor falls back to a cheaper parse.
	// If it is nil, nothing is logged.
	Logger logrus.FieldLogger
}

// DefaultOptions returns the recommended settings.
func DefaultOptions() Options {
	return Options{
		Iterations:        15,
		BlockSplitting:    true,
		BlockSplittingMax: 15,
		SplitOnGreedy:     true,
		ChainLength:       8192,
	}
}

// NewOptimalParser returns an OptimalParser configured from o.
func (o Options) NewOptimalParser() *OptimalParser {
	return &OptimalParser{
		Iterations:  o.Iterations,
		MemoryLimit: o.MemoryLimit,
		Logger:      o.Logger,
	}
}

// NewBlockSplitter returns a BlockSplitter configured from o. If block
// splitting is disabled, the splitter never splits.
func (o Options) NewBlockSplitter() *BlockSplitter {
	maxBlocks := o.BlockSplittingMax
	if !o.BlockSplitting {
		maxBlocks = 1
	}
	return &BlockSplitter{
		MaxBlocks: maxBlocks,
		Logger:    o.Logger,
	}
}

// NewHashChain returns a HashChain configured from o.
func (o Options) NewHashChain() *HashChain {
	return &HashChain{ChainLength: o.ChainLength}
}

// Log returns o.Logger, or a logger that discards everything if it is nil.
func (o Options) Log() logrus.FieldLogger {
	return logger(o.Logger)
}

// logger returns l, or a logger that discards everything if l is nil.
func logger(l logrus.FieldLogger) logrus.FieldLogger {
	if l != nil {
		return l
	}
	return discard
}

var discard = func() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	l.SetLevel(logrus.PanicLevel)
	return l
}()
