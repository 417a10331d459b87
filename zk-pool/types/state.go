package types

import (
	"fmt"

	"github.com/ethereum/go-ethereum/rlp"
)

const (
	DefaultTreeHeight       = 26
	DefaultRootHistorySize  = 100
	DefaultMaxDepositAmount = uint64(1_000_000_000_000)

	// MaxTreeHeight bounds the tree height. The root history size is bounded
	// by its uint8 type.
	MaxTreeHeight = 32

	DefaultDepositFeeRate    = uint16(0)
	DefaultWithdrawalFeeRate = uint16(25)
	DefaultFeeErrorMargin    = uint16(500)

	// BasisPoints is the denominator of every fee rate and margin.
	BasisPoints = 10000
)

// TreeState is the persisted singleton of the commitment tree.
// Subtrees holds one filled subtree hash per level and RootHistory is a ring
// buffer whose newest entry sits at RootIndex.
type TreeState struct {
	Authority        Identity
	NextIndex        uint64
	Subtrees         [][32]byte
	Root             [32]byte
	RootHistory      [][32]byte
	RootIndex        uint64
	MaxDepositAmount uint64
	Height           uint8
	RootHistorySize  uint8
}

// Capacity returns the number of leaves the tree can hold.
func (ts *TreeState) Capacity() uint64 {
	return uint64(1) << ts.Height
}

func (ts *TreeState) Clone() *TreeState {
	c := *ts
	c.Subtrees = append([][32]byte(nil), ts.Subtrees...)
	c.RootHistory = append([][32]byte(nil), ts.RootHistory...)
	return &c
}

func (ts *TreeState) Encode() ([]byte, error) {
	return rlp.EncodeToBytes(ts)
}

func DecodeTreeState(bz []byte) (*TreeState, error) {
	ts := new(TreeState)
	if err := rlp.DecodeBytes(bz, ts); err != nil {
		return nil, fmt.Errorf("decode tree state: %w", err)
	}
	if len(ts.Subtrees) != int(ts.Height) || len(ts.RootHistory) != int(ts.RootHistorySize) {
		return nil, fmt.Errorf("decode tree state: inconsistent lengths: height=%d subtrees=%d history=%d/%d",
			ts.Height, len(ts.Subtrees), ts.RootHistorySize, len(ts.RootHistory))
	}
	return ts, nil
}

// GlobalPolicy holds the fee policy of the pool, in basis points.
type GlobalPolicy struct {
	Authority         Identity
	DepositFeeRate    uint16
	WithdrawalFeeRate uint16
	FeeErrorMargin    uint16
}

func DefaultPolicy(authority Identity) *GlobalPolicy {
	return &GlobalPolicy{
		Authority:         authority,
		DepositFeeRate:    DefaultDepositFeeRate,
		WithdrawalFeeRate: DefaultWithdrawalFeeRate,
		FeeErrorMargin:    DefaultFeeErrorMargin,
	}
}

func (gp *GlobalPolicy) Encode() ([]byte, error) {
	return rlp.EncodeToBytes(gp)
}

func DecodeGlobalPolicy(bz []byte) (*GlobalPolicy, error) {
	gp := new(GlobalPolicy)
	if err := rlp.DecodeBytes(bz, gp); err != nil {
		return nil, fmt.Errorf("decode global policy: %w", err)
	}
	return gp, nil
}
