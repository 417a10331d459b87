package types

import (
	"fmt"

	"github.com/near/borsh-go"
)

// CommitmentData is emitted once per admitted transaction so that recipients
// can discover their notes. Index is the leaf index of Commitment0.
type CommitmentData struct {
	Index           uint64
	Commitment0     [32]byte
	Commitment1     [32]byte
	EncryptedOutput []byte
}

// MarshalBinary encodes the event as u64 LE index, both commitments and a
// u32 LE length prefixed payload.
func (cd *CommitmentData) MarshalBinary() ([]byte, error) {
	return borsh.Serialize(*cd)
}

func (cd *CommitmentData) UnmarshalBinary(bz []byte) error {
	var tmp CommitmentData
	if err := borsh.Deserialize(&tmp, bz); err != nil {
		return fmt.Errorf("decode commitment data: %w", err)
	}
	*cd = tmp
	return nil
}
