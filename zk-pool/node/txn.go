package node

import (
	"context"
	"errors"
	"fmt"

	"github.com/kysee/zkpool/zk-pool/merkle"
	"github.com/kysee/zkpool/zk-pool/nullifier"
	"github.com/kysee/zkpool/zk-pool/store"
	"github.com/kysee/zkpool/zk-pool/types"
)

// poolTx pairs a store transaction with a ledger transaction and the pool
// state loaded inside it.
type poolTx struct {
	txn    store.Txn
	ledger LedgerTx
	ts     *types.TreeState
	gp     *types.GlobalPolicy
	done   bool
}

func (p *Pool) begin(ctx context.Context) (*poolTx, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	txn, err := p.store.Begin()
	if err != nil {
		return nil, err
	}
	ts, gp, err := loadState(txn)
	if err != nil {
		txn.Discard()
		return nil, err
	}
	ltx, err := p.ledger.Begin(ctx)
	if err != nil {
		txn.Discard()
		return nil, err
	}
	return &poolTx{txn: txn, ledger: ltx, ts: ts, gp: gp}, nil
}

func loadState(txn store.Txn) (*types.TreeState, *types.GlobalPolicy, error) {
	tsBz, err := txn.Get(store.TreeStateKey())
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, nil, types.ErrNotInitialized
		}
		return nil, nil, err
	}
	ts, err := types.DecodeTreeState(tsBz)
	if err != nil {
		return nil, nil, err
	}
	gpBz, err := txn.Get(store.GlobalPolicyKey())
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, nil, types.ErrNotInitialized
		}
		return nil, nil, err
	}
	gp, err := types.DecodeGlobalPolicy(gpBz)
	if err != nil {
		return nil, nil, err
	}
	return ts, gp, nil
}

// spendAndAppend consumes both input nullifiers and appends both output
// commitments. The tree is only written back once both appends succeed.
func (tx *poolTx) spendAndAppend(proof *types.Proof, encryptedOutput []byte) (*types.CommitmentData, error) {
	if err := nullifier.NewRegistry(tx.txn).ConsumeAll(proof.InputNullifiers[0], proof.InputNullifiers[1]); err != nil {
		return nil, err
	}

	next := tx.ts.Clone()
	index := next.NextIndex
	for _, c := range proof.OutputCommitments {
		if _, err := merkle.Append(next, c); err != nil {
			return nil, err
		}
	}
	bz, err := next.Encode()
	if err != nil {
		return nil, err
	}
	if err := tx.txn.Put(store.TreeStateKey(), bz); err != nil {
		return nil, err
	}
	tx.ts = next

	return &types.CommitmentData{
		Index:           index,
		Commitment0:     proof.OutputCommitments[0],
		Commitment1:     proof.OutputCommitments[1],
		EncryptedOutput: encryptedOutput,
	}, nil
}

func (tx *poolTx) putPolicy() error {
	bz, err := tx.gp.Encode()
	if err != nil {
		return err
	}
	return tx.txn.Put(store.GlobalPolicyKey(), bz)
}

func (tx *poolTx) putTree() error {
	bz, err := tx.ts.Encode()
	if err != nil {
		return err
	}
	return tx.txn.Put(store.TreeStateKey(), bz)
}

// commit prepares the ledger, makes the store effects durable and then
// finalizes the ledger. Once the store has committed nothing can fail.
func (tx *poolTx) commit() error {
	if err := tx.ledger.Prepare(); err != nil {
		return fmt.Errorf("ledger prepare: %w", err)
	}
	tx.done = true
	if err := tx.txn.Commit(); err != nil {
		tx.ledger.Rollback()
		return err
	}
	tx.ledger.Commit()
	return nil
}

func (tx *poolTx) discard() {
	if tx.done {
		return
	}
	tx.done = true
	tx.txn.Discard()
	tx.ledger.Rollback()
}
