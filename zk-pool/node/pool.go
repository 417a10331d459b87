package node

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/kysee/zkpool/zk-pool/merkle"
	"github.com/kysee/zkpool/zk-pool/store"
	"github.com/kysee/zkpool/zk-pool/types"
	"github.com/kysee/zkpool/zk-pool/validator"
	"github.com/kysee/zkpool/zk-pool/verifier"
	"github.com/rs/zerolog"
)

// Pool admits deposits, withdrawals and swaps. Every operation runs inside
// one store transaction and one ledger transaction: both commit or neither
// does.
type Pool struct {
	store    store.Store
	ledger   Ledger
	auth     Authorizer
	exchange Exchange
	events   EventSink
	verifier validator.ProofVerifier
	admin    types.Identity
	log      zerolog.Logger

	validator *validator.Validator
}

type Option func(*Pool)

func WithLogger(log zerolog.Logger) Option {
	return func(p *Pool) { p.log = log }
}

// WithVerifier replaces the Groth16 verifier built from the embedded key.
func WithVerifier(v validator.ProofVerifier) Option {
	return func(p *Pool) { p.verifier = v }
}

func WithExchange(e Exchange) Option {
	return func(p *Pool) { p.exchange = e }
}

func WithEventSink(s EventSink) Option {
	return func(p *Pool) { p.events = s }
}

// WithAdmin restricts Initialize to the given identity.
func WithAdmin(admin types.Identity) Option {
	return func(p *Pool) { p.admin = admin }
}

func NewPool(st store.Store, ledger Ledger, auth Authorizer, opts ...Option) *Pool {
	p := &Pool{
		store:  st,
		ledger: ledger,
		auth:   auth,
		events: nopSink{},
		log:    zerolog.New(os.Stdout).Level(zerolog.InfoLevel).With().Timestamp().Logger(),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.verifier == nil {
		p.verifier = verifier.NewGroth16Verifier(nil, p.log)
	}
	p.validator = validator.New(p.verifier, p.log)
	return p
}

// Initialize creates the tree and the fee policy with the default rates. The
// signer becomes the authority of both. It fails if the pool already exists.
func (p *Pool) Initialize(ctx context.Context, signer types.Identity, height, rootHistorySize uint8, depositLimit uint64) error {
	return p.InitializeWithPolicy(ctx, signer, height, rootHistorySize, depositLimit, PolicyUpdate{})
}

// InitializeWithPolicy is Initialize with the rates set in rates replacing the
// defaults. Tree and policy are created in one transaction.
func (p *Pool) InitializeWithPolicy(ctx context.Context, signer types.Identity, height, rootHistorySize uint8, depositLimit uint64, rates PolicyUpdate) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if (!p.admin.IsZero() && signer != p.admin) || !p.auth.IsSignedBy(signer) {
		return types.ErrUnauthorized
	}

	ts, err := merkle.Initialize(signer, height, rootHistorySize, depositLimit)
	if err != nil {
		return err
	}
	gp := types.DefaultPolicy(signer)
	if err := rates.apply(gp); err != nil {
		return err
	}

	txn, err := p.store.Begin()
	if err != nil {
		return err
	}
	defer txn.Discard()

	tsBz, err := ts.Encode()
	if err != nil {
		return err
	}
	gpBz, err := gp.Encode()
	if err != nil {
		return err
	}
	if err := txn.CreateIfAbsent(store.TreeStateKey(), tsBz); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return types.ErrAlreadyInitialized
		}
		return err
	}
	if err := txn.CreateIfAbsent(store.GlobalPolicyKey(), gpBz); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return types.ErrAlreadyInitialized
		}
		return err
	}
	if err := txn.Commit(); err != nil {
		return err
	}

	treeNextIndex.Set(0)
	p.log.Info().
		Str("authority", signer.String()).
		Uint8("height", height).
		Uint8("rootHistorySize", rootHistorySize).
		Uint64("maxDepositAmount", depositLimit).
		Uint16("depositFeeRate", gp.DepositFeeRate).
		Uint16("withdrawalFeeRate", gp.WithdrawalFeeRate).
		Uint16("feeErrorMargin", gp.FeeErrorMargin).
		Msg("pool initialized")
	return nil
}

// Deposit moves ext.ExtAmount from the user into the reserve and appends the
// two output commitments of proof.
func (p *Pool) Deposit(ctx context.Context, acc DepositAccounts, proof *types.Proof, ext types.ExtDataMinified, encryptedOutput []byte) (*types.CommitmentData, error) {
	cd, err := p.deposit(ctx, acc, proof, ext, encryptedOutput)
	p.finish("deposit", cd, err)
	return cd, err
}

func (p *Pool) deposit(ctx context.Context, acc DepositAccounts, proof *types.Proof, ext types.ExtDataMinified, encryptedOutput []byte) (*types.CommitmentData, error) {
	if !p.auth.IsSignedBy(acc.Signer) {
		return nil, types.ErrUnauthorized
	}
	tx, err := p.begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.discard()

	ed := types.NewExtData(ext, acc.Reserve, acc.FeeRecipient, acc.Mint, encryptedOutput)
	if err := p.validator.ValidateDeposit(tx.ts, tx.gp, proof, ed); err != nil {
		return nil, err
	}

	cd, err := tx.spendAndAppend(proof, encryptedOutput)
	if err != nil {
		return nil, err
	}

	if err := tx.ledger.Transfer(acc.Mint, acc.UserAccount, acc.Reserve, uint64(ext.ExtAmount)); err != nil {
		return nil, fmt.Errorf("deposit transfer: %w", err)
	}
	if ext.Fee > 0 {
		if err := tx.ledger.Transfer(acc.Mint, acc.UserAccount, acc.FeeRecipient, ext.Fee); err != nil {
			return nil, fmt.Errorf("fee transfer: %w", err)
		}
	}
	return cd, tx.commit()
}

// Withdraw pays |ext.ExtAmount| out of the reserve to the recipient and the
// fee to the fee recipient. The relayer in acc.Signer must have signed.
func (p *Pool) Withdraw(ctx context.Context, acc WithdrawAccounts, proof *types.Proof, ext types.ExtDataMinified, encryptedOutput []byte) (*types.CommitmentData, error) {
	cd, err := p.withdraw(ctx, acc, proof, ext, encryptedOutput)
	p.finish("withdraw", cd, err)
	return cd, err
}

func (p *Pool) withdraw(ctx context.Context, acc WithdrawAccounts, proof *types.Proof, ext types.ExtDataMinified, encryptedOutput []byte) (*types.CommitmentData, error) {
	if !p.auth.IsSignedBy(acc.Signer) {
		return nil, types.ErrUnauthorized
	}
	tx, err := p.begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.discard()

	ed := types.NewExtData(ext, acc.Recipient, acc.FeeRecipient, acc.Mint, encryptedOutput)
	if err := p.validator.ValidateWithdraw(tx.ts, tx.gp, proof, ed); err != nil {
		return nil, err
	}

	amount := uint64(-ext.ExtAmount)
	total := amount + ext.Fee
	if total < amount {
		return nil, types.ErrArithmeticOverflow
	}
	reserve, err := tx.ledger.Balance(acc.Mint, acc.Reserve)
	if err != nil {
		return nil, err
	}
	if reserve < total {
		return nil, fmt.Errorf("%w: reserve %d, needs %d", types.ErrInsufficientFundsForWithdrawal, reserve, total)
	}

	cd, err := tx.spendAndAppend(proof, encryptedOutput)
	if err != nil {
		return nil, err
	}

	if err := tx.ledger.Transfer(acc.Mint, acc.Reserve, acc.Recipient, amount); err != nil {
		return nil, fmt.Errorf("withdraw transfer: %w", err)
	}
	if ext.Fee > 0 {
		if err := tx.ledger.Transfer(acc.Mint, acc.Reserve, acc.FeeRecipient, ext.Fee); err != nil {
			return nil, fmt.Errorf("fee transfer: %w", err)
		}
	}
	return cd, tx.commit()
}

// Swap exchanges |ext.ExtAmount| of the input asset for the output asset
// through the configured Exchange. Output received above ExtMinAmountOut is
// paid to the fee recipient.
func (p *Pool) Swap(ctx context.Context, acc SwapAccounts, proof *types.Proof, ext types.SwapExtDataMinified, encryptedOutput, routingData []byte) (*types.CommitmentData, error) {
	cd, err := p.swap(ctx, acc, proof, ext, encryptedOutput, routingData)
	p.finish("swap", cd, err)
	return cd, err
}

func (p *Pool) swap(ctx context.Context, acc SwapAccounts, proof *types.Proof, ext types.SwapExtDataMinified, encryptedOutput, routingData []byte) (*types.CommitmentData, error) {
	if !p.auth.IsSignedBy(acc.Signer) {
		return nil, types.ErrUnauthorized
	}
	if p.exchange == nil {
		return nil, errors.New("no exchange configured")
	}
	tx, err := p.begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.discard()

	sed := types.NewSwapExtData(ext, acc.FeeRecipient, acc.InputMint, acc.OutputMint, encryptedOutput)
	if err := p.validator.ValidateSwap(tx.ts, tx.gp, proof, sed); err != nil {
		return nil, err
	}
	if len(routingData) == 0 {
		return nil, types.ErrInvalidSwapData
	}

	cd, err := tx.spendAndAppend(proof, encryptedOutput)
	if err != nil {
		return nil, err
	}

	minOut := uint64(ext.ExtMinAmountOut)
	before, err := tx.ledger.Balance(acc.OutputMint, acc.OutputReserve)
	if err != nil {
		return nil, err
	}
	reported, err := p.exchange.Swap(ctx, tx.ledger, ExchangeRequest{
		InputMint:    acc.InputMint,
		OutputMint:   acc.OutputMint,
		Source:       acc.InputReserve,
		Destination:  acc.OutputReserve,
		AmountIn:     uint64(-ext.ExtAmount),
		MinAmountOut: minOut,
		RoutingData:  routingData,
	})
	if err != nil {
		return nil, fmt.Errorf("exchange: %w", err)
	}
	after, err := tx.ledger.Balance(acc.OutputMint, acc.OutputReserve)
	if err != nil {
		return nil, err
	}
	if after < before {
		return nil, types.ErrMathOverflow
	}
	received := after - before
	if received != reported {
		p.log.Warn().Uint64("reported", reported).Uint64("received", received).Msg("exchange reported a different output")
	}
	if received < minOut {
		return nil, fmt.Errorf("%w: received %d, minimum %d", types.ErrInsufficientSwapOutput, received, minOut)
	}
	if surplus := received - minOut; surplus > 0 {
		if err := tx.ledger.Transfer(acc.OutputMint, acc.OutputReserve, acc.FeeRecipient, surplus); err != nil {
			return nil, fmt.Errorf("fee transfer: %w", err)
		}
	}
	return cd, tx.commit()
}

func (p *Pool) finish(kind string, cd *types.CommitmentData, err error) {
	observeTx(kind, err)
	if err != nil {
		p.log.Debug().Str("kind", kind).Err(err).Msg("transaction rejected")
		return
	}
	treeNextIndex.Set(float64(cd.Index + 2))
	p.log.Debug().Str("kind", kind).Uint64("index", cd.Index).Msg("transaction admitted")
	p.events.Emit(cd)
}
