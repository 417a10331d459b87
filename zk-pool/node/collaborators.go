package node

import (
	"context"

	"github.com/kysee/zkpool/zk-pool/types"
)

// Ledger moves fungible value between accounts. Effects of a LedgerTx become
// final on Commit and disappear on Rollback, so that value movement shares the
// atomic boundary of the pool transaction.
type Ledger interface {
	Begin(ctx context.Context) (LedgerTx, error)
}

// LedgerTx is committed in two phases. Prepare runs before the pool state is
// committed and is the last point where the ledger may refuse. After a
// successful Prepare, Commit must make every transfer final; it cannot fail.
type LedgerTx interface {
	Transfer(mint, from, to types.Identity, amount uint64) error
	Balance(mint, account types.Identity) (uint64, error)
	Prepare() error
	Commit()
	Rollback()
}

type ExchangeRequest struct {
	InputMint    types.Identity
	OutputMint   types.Identity
	Source       types.Identity
	Destination  types.Identity
	AmountIn     uint64
	MinAmountOut uint64
	RoutingData  []byte
}

// Exchange executes a swap through a third-party aggregator inside tx and
// returns the output amount it reports.
type Exchange interface {
	Swap(ctx context.Context, tx LedgerTx, req ExchangeRequest) (uint64, error)
}

type Authorizer interface {
	IsSignedBy(id types.Identity) bool
}

// EventSink receives one CommitmentData per admitted transaction, after commit.
type EventSink interface {
	Emit(cd *types.CommitmentData)
}

// SignerSet authorizes exactly the identities that signed the request.
type SignerSet map[types.Identity]struct{}

func NewSignerSet(ids ...types.Identity) SignerSet {
	s := make(SignerSet, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

func (s SignerSet) IsSignedBy(id types.Identity) bool {
	_, ok := s[id]
	return ok
}

type nopSink struct{}

func (nopSink) Emit(*types.CommitmentData) {}

// DepositAccounts wires a deposit. Reserve is the recipient bound into the
// ext data hash.
type DepositAccounts struct {
	Signer       types.Identity
	Mint         types.Identity
	UserAccount  types.Identity
	Reserve      types.Identity
	FeeRecipient types.Identity
}

// WithdrawAccounts wires a withdrawal. Signer is the relayer submitting it.
type WithdrawAccounts struct {
	Signer       types.Identity
	Mint         types.Identity
	Reserve      types.Identity
	Recipient    types.Identity
	FeeRecipient types.Identity
}

type SwapAccounts struct {
	Signer        types.Identity
	InputMint     types.Identity
	OutputMint    types.Identity
	InputReserve  types.Identity
	OutputReserve types.Identity
	FeeRecipient  types.Identity
}

// PolicyUpdate changes the fee rates that are set and keeps the others.
type PolicyUpdate struct {
	DepositFeeRate    *uint16
	WithdrawalFeeRate *uint16
	FeeErrorMargin    *uint16
}
