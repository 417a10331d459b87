package types

import (
	"fmt"
	"io"
	"math/big"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/holiman/uint256"
)

// OutputNote is the plaintext a sender seals for the owner of an output
// commitment. It is analogous to the note plaintext of Zcash Sapling.
type OutputNote struct {
	// Version indicates the format version of the note.
	Version byte

	// Amount is the value of the note in units of Mint.
	Amount *uint256.Int

	// Blinding is the random value used in the note commitment.
	Blinding []byte

	Mint Identity
	Memo []byte
}

func (n *OutputNote) Bytes() []byte {
	bz, err := rlp.EncodeToBytes(n)
	if err != nil {
		panic(fmt.Sprintf("failed to RLP encode OutputNote: %v", err))
	}
	return bz
}

// EncodeRLP implements rlp.Encoder.
func (n *OutputNote) EncodeRLP(w io.Writer) error {
	amount := new(big.Int)
	if n.Amount != nil {
		amount = n.Amount.ToBig()
	}
	return rlp.Encode(w, []interface{}{
		n.Version,
		amount,
		n.Blinding,
		n.Mint,
		n.Memo,
	})
}

// DecodeRLP implements rlp.Decoder.
func (n *OutputNote) DecodeRLP(s *rlp.Stream) error {
	var tmp struct {
		Version  byte
		Amount   *big.Int
		Blinding []byte
		Mint     Identity
		Memo     []byte
	}
	if err := s.Decode(&tmp); err != nil {
		return err
	}
	amount, overflow := uint256.FromBig(tmp.Amount)
	if overflow {
		return fmt.Errorf("amount value overflows uint256")
	}
	n.Version = tmp.Version
	n.Amount = amount
	n.Blinding = tmp.Blinding
	n.Mint = tmp.Mint
	n.Memo = tmp.Memo
	return nil
}

func DecodeOutputNote(bz []byte) (*OutputNote, error) {
	n := new(OutputNote)
	if err := rlp.DecodeBytes(bz, n); err != nil {
		return nil, err
	}
	return n, nil
}
