package node

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/holiman/uint256"
	"github.com/kysee/zkpool/zk-pool/types"
)

var ErrInsufficientBalance = errors.New("insufficient balance")

type balanceKey struct {
	mint    types.Identity
	account types.Identity
}

// MemLedger is an in-memory Ledger. One LedgerTx is open at a time.
type MemLedger struct {
	mtx      sync.Mutex
	balances map[balanceKey]*uint256.Int
}

func NewMemLedger() *MemLedger {
	return &MemLedger{balances: make(map[balanceKey]*uint256.Int)}
}

// Mint credits amount to account out of thin air.
func (l *MemLedger) Mint(mint, account types.Identity, amount uint64) {
	l.mtx.Lock()
	defer l.mtx.Unlock()

	k := balanceKey{mint, account}
	b, ok := l.balances[k]
	if !ok {
		b = uint256.NewInt(0)
		l.balances[k] = b
	}
	b.Add(b, uint256.NewInt(amount))
}

func (l *MemLedger) BalanceOf(mint, account types.Identity) *uint256.Int {
	l.mtx.Lock()
	defer l.mtx.Unlock()

	if b, ok := l.balances[balanceKey{mint, account}]; ok {
		return b.Clone()
	}
	return uint256.NewInt(0)
}

func (l *MemLedger) Begin(ctx context.Context) (LedgerTx, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	l.mtx.Lock()
	return &memLedgerTx{l: l, dirty: make(map[balanceKey]*uint256.Int)}, nil
}

type memLedgerTx struct {
	l        *MemLedger
	dirty    map[balanceKey]*uint256.Int
	prepared bool
	done     bool
}

func (tx *memLedgerTx) get(k balanceKey) *uint256.Int {
	if b, ok := tx.dirty[k]; ok {
		return b
	}
	b := uint256.NewInt(0)
	if committed, ok := tx.l.balances[k]; ok {
		b.Set(committed)
	}
	tx.dirty[k] = b
	return b
}

func (tx *memLedgerTx) Transfer(mint, from, to types.Identity, amount uint64) error {
	if tx.done {
		return errLedgerTxClosed
	}
	amt := uint256.NewInt(amount)
	src := tx.get(balanceKey{mint, from})
	if src.Lt(amt) {
		return fmt.Errorf("%w: %s has %s of %s, needs %d", ErrInsufficientBalance, from, src.Dec(), mint, amount)
	}
	dst := tx.get(balanceKey{mint, to})
	src.Sub(src, amt)
	dst.Add(dst, amt)
	return nil
}

func (tx *memLedgerTx) Balance(mint, account types.Identity) (uint64, error) {
	b := tx.get(balanceKey{mint, account})
	if !b.IsUint64() {
		return 0, fmt.Errorf("balance of %s exceeds u64", account)
	}
	return b.Uint64(), nil
}

var errLedgerTxClosed = errors.New("ledger transaction closed")

func (tx *memLedgerTx) Prepare() error {
	if tx.done {
		return errLedgerTxClosed
	}
	tx.prepared = true
	return nil
}

// Commit applies the overlay. It is a no-op unless Prepare succeeded.
func (tx *memLedgerTx) Commit() {
	if tx.done || !tx.prepared {
		return
	}
	for k, b := range tx.dirty {
		tx.l.balances[k] = b
	}
	tx.close()
}

func (tx *memLedgerTx) Rollback() {
	if !tx.done {
		tx.close()
	}
}

func (tx *memLedgerTx) close() {
	tx.done = true
	tx.dirty = nil
	tx.l.mtx.Unlock()
}
