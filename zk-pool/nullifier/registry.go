package nullifier

import (
	"errors"
	"fmt"

	"github.com/kysee/zkpool/zk-pool/store"
)

var spentMark = []byte{1}

// ErrSpent is returned for a nullifier that was consumed before. It matches
// store.ErrAlreadyExists.
var ErrSpent = fmt.Errorf("nullifier already spent: %w", store.ErrAlreadyExists)

// Registry records spent nullifiers inside one storage transaction.
// A record is never read back, updated or removed.
type Registry struct {
	txn store.Txn
}

func NewRegistry(txn store.Txn) *Registry {
	return &Registry{txn: txn}
}

// Consume creates the record of n. If n was spent before it returns ErrSpent
// and the caller must discard the transaction.
func (r *Registry) Consume(n [32]byte) error {
	err := r.txn.CreateIfAbsent(store.NullifierKey(n), spentMark)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, store.ErrAlreadyExists):
		return fmt.Errorf("%w: %x", ErrSpent, n)
	default:
		return fmt.Errorf("consume nullifier %x: %w", n, err)
	}
}

// ConsumeAll consumes every nullifier in order and stops at the first failure.
func (r *Registry) ConsumeAll(ns ...[32]byte) error {
	for _, n := range ns {
		if err := r.Consume(n); err != nil {
			return err
		}
	}
	return nil
}
