package merkle

import (
	"github.com/kysee/zkpool/utils"
)

// ComputeRoot folds leaf with its sibling path. Bit i of index selects whether
// the running hash is the right child at level i.
func ComputeRoot(leaf [32]byte, index uint64, siblings [][32]byte) ([32]byte, error) {
	current := leaf
	for _, sib := range siblings {
		var err error
		if index&1 == 0 {
			current, err = utils.PoseidonHash2(current, sib)
		} else {
			current, err = utils.PoseidonHash2(sib, current)
		}
		if err != nil {
			return [32]byte{}, err
		}
		index >>= 1
	}
	return current, nil
}

func VerifyPath(leaf [32]byte, index uint64, siblings [][32]byte, root [32]byte) bool {
	if index>>uint(len(siblings)) != 0 {
		return false
	}
	r, err := ComputeRoot(leaf, index, siblings)
	if err != nil {
		return false
	}
	return r == root
}
