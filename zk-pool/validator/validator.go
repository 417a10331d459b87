package validator

import (
	"fmt"
	"time"

	"github.com/kysee/zkpool/zk-pool/merkle"
	"github.com/kysee/zkpool/zk-pool/types"
	"github.com/rs/zerolog"
)

// ProofVerifier is satisfied by *verifier.Groth16Verifier.
type ProofVerifier interface {
	VerifyProof(proof *types.Proof, mintA, mintB types.Identity) bool
}

// Validator runs the admission checks of a transaction against a snapshot of
// the tree and the policy. Cheap checks run first, the pairing check last.
// It never mutates state.
type Validator struct {
	verifier ProofVerifier
	log      zerolog.Logger
}

func New(v ProofVerifier, log zerolog.Logger) *Validator {
	return &Validator{verifier: v, log: log}
}

func (v *Validator) ValidateDeposit(ts *types.TreeState, gp *types.GlobalPolicy, proof *types.Proof, ed *types.ExtData) error {
	if err := v.checkTransfer(ts, gp, proof, ed); err != nil {
		return err
	}
	if ed.ExtAmount <= 0 {
		return types.ErrInvalidExtAmount
	}
	if uint64(ed.ExtAmount) > ts.MaxDepositAmount {
		return fmt.Errorf("%w: %d > %d", types.ErrDepositLimitExceeded, ed.ExtAmount, ts.MaxDepositAmount)
	}
	return v.checkProof(proof, ed.MintA, ed.MintB)
}

func (v *Validator) ValidateWithdraw(ts *types.TreeState, gp *types.GlobalPolicy, proof *types.Proof, ed *types.ExtData) error {
	if err := v.checkTransfer(ts, gp, proof, ed); err != nil {
		return err
	}
	if ed.ExtAmount >= 0 {
		return types.ErrInvalidExtAmount
	}
	return v.checkProof(proof, ed.MintA, ed.MintB)
}

// ValidateSwap checks a swap out of MintA into MintB. The second public amount
// binds the declared minimum output with a zero fee.
func (v *Validator) ValidateSwap(ts *types.TreeState, gp *types.GlobalPolicy, proof *types.Proof, sed *types.SwapExtData) error {
	if !merkle.IsKnownRoot(ts, proof.Root) {
		return types.ErrUnknownRoot
	}
	calculated, err := SwapExtDataHash(sed)
	if err != nil {
		return err
	}
	if !HashMatches(calculated, proof.ExtDataHash) {
		return types.ErrExtDataHashMismatch
	}
	if sed.ExtAmount >= 0 || sed.ExtMinAmountOut < 0 {
		return types.ErrInvalidExtAmount
	}
	if !CheckPublicAmount(sed.ExtAmount, sed.Fee, proof.PublicAmount0) {
		return fmt.Errorf("%w: input leg", types.ErrInvalidPublicAmountData)
	}
	if !CheckPublicAmount(sed.ExtMinAmountOut, 0, proof.PublicAmount1) {
		return fmt.Errorf("%w: output leg", types.ErrInvalidPublicAmountData)
	}
	// swaps are charged at the deposit rate in both directions
	if err := ValidateFee(sed.ExtAmount, sed.Fee, gp.DepositFeeRate, gp.DepositFeeRate, gp.FeeErrorMargin); err != nil {
		return err
	}
	return v.checkProof(proof, sed.MintA, sed.MintB)
}

func (v *Validator) checkTransfer(ts *types.TreeState, gp *types.GlobalPolicy, proof *types.Proof, ed *types.ExtData) error {
	if !merkle.IsKnownRoot(ts, proof.Root) {
		return types.ErrUnknownRoot
	}
	calculated, err := ExtDataHash(ed)
	if err != nil {
		return err
	}
	if !HashMatches(calculated, proof.ExtDataHash) {
		return types.ErrExtDataHashMismatch
	}
	if !CheckPublicAmount(ed.ExtAmount, ed.Fee, proof.PublicAmount0) {
		return types.ErrInvalidPublicAmountData
	}
	if proof.PublicAmount1 != ([32]byte{}) {
		return fmt.Errorf("%w: second public amount must be zero", types.ErrInvalidPublicAmountData)
	}
	return ValidateFee(ed.ExtAmount, ed.Fee, gp.DepositFeeRate, gp.WithdrawalFeeRate, gp.FeeErrorMargin)
}

func (v *Validator) checkProof(proof *types.Proof, mintA, mintB types.Identity) error {
	start := time.Now()
	ok := v.verifier.VerifyProof(proof, mintA, mintB)
	observeVerify(time.Since(start), ok)
	if !ok {
		return types.ErrInvalidProof
	}
	return nil
}
