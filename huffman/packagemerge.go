// Package huffman builds length-limited prefix codes.
//
// Code lengths are computed with the boundary package-merge algorithm from
// "A Fast and Space-Economical Algorithm for Length-Limited Coding" by Jyrki
// Katajainen, Alistair Moffat and Andrew Turpin. It produces lengths that
// minimize the total encoded size of the given frequencies among all prefix
// codes whose longest code is at most the limit.
package huffman

import (
	"slices"

	"github.com/pkg/errors"
)

// ErrLimitTooSmall is returned when there are more used symbols than codes
// of the requested maximum length.
var ErrLimitTooSmall = errors.New("huffman: length limit too small for alphabet")

// A node is one chain in a package-merge list. A chain either ends in a leaf
// (count is one more than the index of the leaf in the sorted leaves) or in a
// package of two chains from the previous list.
type node struct {
	weight int
	tail   *node
	count  int
}

type leaf struct {
	weight int
	symbol int
}

// boundaryPM holds the state of one run of the algorithm. lists[i] is the
// pair of lookahead chains of list i.
type boundaryPM struct {
	leaves []leaf
	lists  [][2]*node
	pool   []node
}

func (b *boundaryPM) newNode(weight, count int, tail *node) *node {
	if len(b.pool) == cap(b.pool) {
		// Growing the pool would move the nodes already linked into chains.
		return &node{weight: weight, count: count, tail: tail}
	}
	b.pool = append(b.pool, node{weight: weight, count: count, tail: tail})
	return &b.pool[len(b.pool)-1]
}

// run performs one step of boundary package-merge on list index, adding a
// chain to it. When the new chain is a package, the previous list has used
// up its two lookahead chains and is advanced twice.
func (b *boundaryPM) run(index int) {
	lastCount := b.lists[index][1].count
	if index == 0 && lastCount >= len(b.leaves) {
		return
	}

	oldChain := b.lists[index][1]
	if index == 0 {
		b.lists[index] = [2]*node{oldChain, b.newNode(b.leaves[lastCount].weight, lastCount+1, nil)}
		return
	}

	sum := b.lists[index-1][0].weight + b.lists[index-1][1].weight
	if lastCount < len(b.leaves) && sum > b.leaves[lastCount].weight {
		b.lists[index] = [2]*node{oldChain, b.newNode(b.leaves[lastCount].weight, lastCount+1, oldChain.tail)}
		return
	}

	b.lists[index] = [2]*node{oldChain, b.newNode(sum, lastCount, b.lists[index-1][1])}
	b.run(index - 1)
	b.run(index - 1)
}

// final is the last step on the last list. Only the chain itself matters
// now, so no lookahead chains are created in the previous lists.
func (b *boundaryPM) final(index int) {
	lastCount := b.lists[index][1].count
	sum := b.lists[index-1][0].weight + b.lists[index-1][1].weight
	if lastCount < len(b.leaves) && sum > b.leaves[lastCount].weight {
		oldTail := b.lists[index][1].tail
		b.lists[index][1] = b.newNode(0, lastCount+1, oldTail)
	} else {
		b.lists[index][1].tail = b.lists[index-1][1]
	}
}

// LengthLimited returns code lengths for the symbols with the given
// frequencies, such that no length exceeds limit and the sum of
// freqs[i]*lengths[i] is as small as possible. Symbols with zero frequency
// get length 0. A lone used symbol gets length 1, since DEFLATE cannot
// describe a zero-length code.
func LengthLimited(freqs []int, limit int) ([]uint8, error) {
	lengths := make([]uint8, len(freqs))

	var leaves []leaf
	for i, f := range freqs {
		if f < 0 {
			return nil, errors.New("huffman: negative frequency")
		}
		if f != 0 {
			leaves = append(leaves, leaf{weight: f, symbol: i})
		}
	}

	if limit < 1 || limit < 63 && 1<<limit < len(leaves) {
		return nil, ErrLimitTooSmall
	}

	switch len(leaves) {
	case 0:
		return lengths, nil
	case 1:
		lengths[leaves[0].symbol] = 1
		return lengths, nil
	case 2:
		lengths[leaves[0].symbol] = 1
		lengths[leaves[1].symbol] = 1
		return lengths, nil
	}

	// Lightest first; ties broken by symbol so the result is deterministic.
	slices.SortFunc(leaves, func(a, b leaf) int {
		if a.weight != b.weight {
			return a.weight - b.weight
		}
		return a.symbol - b.symbol
	})

	// No code needs to be longer than len(leaves)-1. With three or more
	// leaves and the limit check above, maxBits is at least 2.
	maxBits := min(limit, len(leaves)-1)

	b := &boundaryPM{
		leaves: leaves,
		lists:  make([][2]*node, maxBits),
		// Enough for every chain the runs below can create.
		pool: make([]node, 0, 2*maxBits*len(leaves)+2),
	}
	node0 := b.newNode(leaves[0].weight, 1, nil)
	node1 := b.newNode(leaves[1].weight, 2, nil)
	for i := range b.lists {
		b.lists[i] = [2]*node{node0, node1}
	}

	// The last list needs 2*len(leaves)-2 active chains. Two are already
	// there, and each run adds one.
	runs := 2*len(leaves) - 4
	for i := 0; i < runs-1; i++ {
		b.run(maxBits - 1)
	}
	b.final(maxBits - 1)

	// Each chain in the final solution records how many leaves are active in
	// its list. A leaf's code length is the number of lists it is active in.
	for chain := b.lists[maxBits-1][1]; chain != nil; chain = chain.tail {
		for i := 0; i < chain.count; i++ {
			lengths[leaves[i].symbol]++
		}
	}
	return lengths, nil
}
