package validator

import (
	"crypto/sha256"
	"fmt"

	"github.com/kysee/zkpool/utils"
	"github.com/kysee/zkpool/zk-pool/types"
	"github.com/near/borsh-go"
)

// ExtDataHash is sha256 over the borsh encoding of ed.
func ExtDataHash(ed *types.ExtData) ([32]byte, error) {
	bz, err := borsh.Serialize(*ed)
	if err != nil {
		return [32]byte{}, fmt.Errorf("serialize ext data: %w", err)
	}
	return sha256.Sum256(bz), nil
}

// SwapExtDataHash is sha256 over the borsh encoding of sed.
func SwapExtDataHash(sed *types.SwapExtData) ([32]byte, error) {
	bz, err := borsh.Serialize(*sed)
	if err != nil {
		return [32]byte{}, fmt.Errorf("serialize swap ext data: %w", err)
	}
	return sha256.Sum256(bz), nil
}

// HashMatches compares the locally computed digest, read little-endian, with
// the proof's ext data hash, read big-endian. Both are reduced modulo r.
func HashMatches(calculated, proofHash [32]byte) bool {
	a := utils.FrFromLE(calculated[:])
	b := utils.FrFromBE(proofHash[:])
	return a.Equal(&b)
}

// ProofExtDataHash returns the canonical big-endian value that matches
// calculated under HashMatches.
func ProofExtDataHash(calculated [32]byte) [32]byte {
	e := utils.FrFromLE(calculated[:])
	return e.Bytes()
}
