package merkle

import (
	"fmt"
	"sync"

	"github.com/kysee/zkpool/utils"
	"github.com/kysee/zkpool/zk-pool/types"
)

var (
	zeroOnce   sync.Once
	zeroHashes [types.MaxTreeHeight + 1][32]byte
)

// ZeroHash returns the root of an empty subtree of the given height.
// Level 0 is the empty leaf, which is the zero field element.
func ZeroHash(level int) [32]byte {
	zeroOnce.Do(func() {
		for i := 1; i <= types.MaxTreeHeight; i++ {
			h, err := utils.PoseidonHash2(zeroHashes[i-1], zeroHashes[i-1])
			if err != nil {
				panic(err)
			}
			zeroHashes[i] = h
		}
	})
	return zeroHashes[level]
}

// Initialize returns an empty tree whose root history is seeded with the
// empty root.
func Initialize(authority types.Identity, height, rootHistorySize uint8, maxDepositAmount uint64) (*types.TreeState, error) {
	if height == 0 || height > types.MaxTreeHeight {
		return nil, fmt.Errorf("%w: height %d not in [1, %d]", types.ErrInvalidTreeParams, height, types.MaxTreeHeight)
	}
	if rootHistorySize == 0 {
		return nil, fmt.Errorf("%w: root history size must be positive", types.ErrInvalidTreeParams)
	}

	ts := &types.TreeState{
		Authority:        authority,
		Subtrees:         make([][32]byte, height),
		RootHistory:      make([][32]byte, rootHistorySize),
		MaxDepositAmount: maxDepositAmount,
		Height:           height,
		RootHistorySize:  rootHistorySize,
	}
	for i := 0; i < int(height); i++ {
		ts.Subtrees[i] = ZeroHash(i)
	}
	ts.Root = ZeroHash(int(height))
	ts.RootHistory[0] = ts.Root
	return ts, nil
}

// Append inserts leaf at NextIndex and returns its index. Only the filled
// subtrees on the leaf's path are read; empty siblings come from ZeroHash.
// On error ts is left untouched.
func Append(ts *types.TreeState, leaf [32]byte) (uint64, error) {
	if ts.NextIndex >= ts.Capacity() {
		return 0, types.ErrMerkleTreeFull
	}

	index := ts.NextIndex
	subtrees := append([][32]byte(nil), ts.Subtrees...)
	current := leaf
	idx := index
	for level := 0; level < int(ts.Height); level++ {
		var left, right [32]byte
		if idx%2 == 0 {
			left, right = current, ZeroHash(level)
			subtrees[level] = current
		} else {
			left, right = subtrees[level], current
		}
		h, err := utils.PoseidonHash2(left, right)
		if err != nil {
			return 0, fmt.Errorf("append leaf %d: %w", index, err)
		}
		current = h
		idx >>= 1
	}

	ts.Subtrees = subtrees
	ts.RootIndex = (ts.RootIndex + 1) % uint64(ts.RootHistorySize)
	ts.RootHistory[ts.RootIndex] = current
	ts.Root = current
	ts.NextIndex = index + 1
	return index, nil
}

// IsKnownRoot reports whether root is one of the last RootHistorySize roots.
// The zero value is never a known root.
func IsKnownRoot(ts *types.TreeState, root [32]byte) bool {
	if root == ([32]byte{}) {
		return false
	}
	size := uint64(len(ts.RootHistory))
	if size == 0 {
		return false
	}
	i := ts.RootIndex % size
	for n := uint64(0); n < size; n++ {
		if ts.RootHistory[i] == root {
			return true
		}
		if i == 0 {
			i = size
		}
		i--
	}
	return false
}
