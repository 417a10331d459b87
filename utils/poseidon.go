package utils

import (
	"fmt"
	"math/big"

	"github.com/iden3/go-iden3-crypto/poseidon"
)

// PoseidonHash2 hashes two big-endian field elements with the circom compatible
// Poseidon permutation (t = 3). Both inputs must be canonical.
func PoseidonHash2(left, right [FieldSize]byte) ([FieldSize]byte, error) {
	var out [FieldSize]byte
	h, err := poseidon.Hash([]*big.Int{
		new(big.Int).SetBytes(left[:]),
		new(big.Int).SetBytes(right[:]),
	})
	if err != nil {
		return out, fmt.Errorf("poseidon: %w", err)
	}
	h.FillBytes(out[:])
	return out, nil
}
