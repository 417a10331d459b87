package node

import (
	"context"
	"testing"

	"github.com/kysee/zkpool/zk-pool/types"
	"github.com/stretchr/testify/require"
)

func TestMemLedger_CommitAndRollback(t *testing.T) {
	l := NewMemLedger()
	a, b := types.Identity{0x0a}, types.Identity{0x0b}
	l.Mint(mint, a, 100)

	tx, err := l.Begin(context.Background())
	require.NoError(t, err)
	require.NoError(t, tx.Transfer(mint, a, b, 40))
	bal, err := tx.Balance(mint, b)
	require.NoError(t, err)
	require.Equal(t, uint64(40), bal)
	tx.Rollback()
	require.Equal(t, uint64(100), l.BalanceOf(mint, a).Uint64())
	require.True(t, l.BalanceOf(mint, b).IsZero())

	tx, err = l.Begin(context.Background())
	require.NoError(t, err)
	require.NoError(t, tx.Transfer(mint, a, b, 40))
	require.ErrorIs(t, tx.Transfer(mint, a, b, 61), ErrInsufficientBalance)
	require.NoError(t, tx.Prepare())
	tx.Commit()
	require.Error(t, tx.Prepare())
	tx.Commit()
	tx.Rollback()

	require.Equal(t, uint64(60), l.BalanceOf(mint, a).Uint64())
	require.Equal(t, uint64(40), l.BalanceOf(mint, b).Uint64())
	require.True(t, l.BalanceOf(outputMint, a).IsZero())
}

func TestMemLedger_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewMemLedger().Begin(ctx)
	require.ErrorIs(t, err, context.Canceled)
}

func TestMemLedger_CommitWithoutPrepareIsIgnored(t *testing.T) {
	l := NewMemLedger()
	a, b := types.Identity{0x0a}, types.Identity{0x0b}
	l.Mint(mint, a, 100)

	tx, err := l.Begin(context.Background())
	require.NoError(t, err)
	require.NoError(t, tx.Transfer(mint, a, b, 40))
	tx.Commit()
	tx.Rollback()
	require.Equal(t, uint64(100), l.BalanceOf(mint, a).Uint64())
}
