package validator

import (
	"math"

	"github.com/holiman/uint256"
	"github.com/kysee/zkpool/zk-pool/types"
)

var basisPoints = uint256.NewInt(types.BasisPoints)

// ValidateFee checks that fee is at least the policy fee minus the error
// margin. Deposits (ext > 0) use depositRate, withdrawals (ext < 0) use
// withdrawalRate and ext == 0 is not charged. Overpaying is always accepted.
func ValidateFee(ext int64, fee uint64, depositRate, withdrawalRate, errorMargin uint16) error {
	if ext == 0 {
		return nil
	}

	var amount uint64
	var rate uint16
	if ext > 0 {
		amount, rate = uint64(ext), depositRate
	} else {
		if ext == math.MinInt64 {
			return types.ErrArithmeticOverflow
		}
		amount, rate = uint64(-ext), withdrawalRate
	}

	minFee, err := MinimumFee(amount, rate, errorMargin)
	if err != nil {
		return err
	}
	if fee < minFee {
		return types.ErrInvalidFeeAmount
	}
	return nil
}

// MinimumFee returns floor(floor(amount*rate/10000) * (10000-margin) / 10000),
// or 0 when the expected fee is 0.
func MinimumFee(amount uint64, rate, errorMargin uint16) (uint64, error) {
	prod, overflow := new(uint256.Int).MulOverflow(uint256.NewInt(amount), uint256.NewInt(uint64(rate)))
	if overflow {
		return 0, types.ErrArithmeticOverflow
	}
	expected := new(uint256.Int).Div(prod, basisPoints)
	if !expected.IsUint64() {
		return 0, types.ErrArithmeticOverflow
	}
	if expected.IsZero() {
		return 0, nil
	}

	keep, underflow := new(uint256.Int).SubOverflow(basisPoints, uint256.NewInt(uint64(errorMargin)))
	if underflow {
		return 0, types.ErrArithmeticOverflow
	}
	minFee, overflow := new(uint256.Int).MulOverflow(expected, keep)
	if overflow {
		return 0, types.ErrArithmeticOverflow
	}
	minFee.Div(minFee, basisPoints)
	return minFee.Uint64(), nil
}
