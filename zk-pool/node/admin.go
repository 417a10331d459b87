package node

import (
	"context"

	"github.com/kysee/zkpool/zk-pool/types"
)

// UpdateDepositLimit replaces the maximum deposit amount. Only the tree
// authority may call it.
func (p *Pool) UpdateDepositLimit(ctx context.Context, signer types.Identity, limit uint64) error {
	tx, err := p.begin(ctx)
	if err != nil {
		return err
	}
	defer tx.discard()

	if signer != tx.ts.Authority || !p.auth.IsSignedBy(signer) {
		return types.ErrUnauthorized
	}
	tx.ts.MaxDepositAmount = limit
	if err := tx.putTree(); err != nil {
		return err
	}
	if err := tx.commit(); err != nil {
		return err
	}
	p.log.Info().Uint64("maxDepositAmount", limit).Msg("deposit limit updated")
	return nil
}

// UpdatePolicy changes the fee rates named in u. Only the policy authority
// may call it.
func (p *Pool) UpdatePolicy(ctx context.Context, signer types.Identity, u PolicyUpdate) error {
	tx, err := p.begin(ctx)
	if err != nil {
		return err
	}
	defer tx.discard()

	if signer != tx.gp.Authority || !p.auth.IsSignedBy(signer) {
		return types.ErrUnauthorized
	}
	if err := u.apply(tx.gp); err != nil {
		return err
	}
	if err := tx.putPolicy(); err != nil {
		return err
	}
	if err := tx.commit(); err != nil {
		return err
	}
	p.log.Info().
		Uint16("depositFeeRate", tx.gp.DepositFeeRate).
		Uint16("withdrawalFeeRate", tx.gp.WithdrawalFeeRate).
		Uint16("feeErrorMargin", tx.gp.FeeErrorMargin).
		Msg("policy updated")
	return nil
}

// TreeState returns a snapshot of the commitment tree state.
func (p *Pool) TreeState(ctx context.Context) (*types.TreeState, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	txn, err := p.store.Begin()
	if err != nil {
		return nil, err
	}
	defer txn.Discard()
	ts, _, err := loadState(txn)
	return ts, err
}

func (p *Pool) Policy(ctx context.Context) (*types.GlobalPolicy, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	txn, err := p.store.Begin()
	if err != nil {
		return nil, err
	}
	defer txn.Discard()
	_, gp, err := loadState(txn)
	return gp, err
}

// apply writes the rates set in u into gp. Nothing is written if any rate is
// above BasisPoints.
func (u PolicyUpdate) apply(gp *types.GlobalPolicy) error {
	for _, r := range []*uint16{u.DepositFeeRate, u.WithdrawalFeeRate, u.FeeErrorMargin} {
		if r != nil && *r > types.BasisPoints {
			return types.ErrInvalidFeeRate
		}
	}
	if u.DepositFeeRate != nil {
		gp.DepositFeeRate = *u.DepositFeeRate
	}
	if u.WithdrawalFeeRate != nil {
		gp.WithdrawalFeeRate = *u.WithdrawalFeeRate
	}
	if u.FeeErrorMargin != nil {
		gp.FeeErrorMargin = *u.FeeErrorMargin
	}
	return nil
}
