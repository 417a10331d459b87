package node

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/holiman/uint256"
	"github.com/kysee/zkpool/zk-pool/crypto"
	"github.com/kysee/zkpool/zk-pool/indexer"
	"github.com/kysee/zkpool/zk-pool/nullifier"
	"github.com/kysee/zkpool/zk-pool/prover"
	"github.com/kysee/zkpool/zk-pool/store"
	"github.com/kysee/zkpool/zk-pool/types"
	"github.com/kysee/zkpool/zk-pool/validator"
	"github.com/kysee/zkpool/zk-pool/verifier"
	"github.com/kysee/zkpool/zk-pool/wallet"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

var (
	admin        = types.Identity{0x01}
	user         = types.Identity{0x02}
	relayer      = types.Identity{0x03}
	reserve      = types.Identity{0xa1}
	recipient    = types.Identity{0xa2}
	feeRecipient = types.Identity{0xa3}
	outReserve   = types.Identity{0xa4}
	dex          = types.Identity{0xd1}
	mint         = types.Identity{0xb1}
	outputMint   = types.Identity{0xb2}
)

var (
	refOnce sync.Once
	refSys  *prover.ReferenceSystem
	refVK   *verifier.VerifyingKey
	refErr  error
)

func referenceSystem(t *testing.T) (*prover.ReferenceSystem, *verifier.VerifyingKey) {
	refOnce.Do(func() {
		refSys, refErr = prover.Setup()
		if refErr == nil {
			refVK, refErr = refSys.VerifyingKey()
		}
	})
	require.NoError(t, refErr)
	return refSys, refVK
}

type recordingSink struct {
	events []*types.CommitmentData
}

func (s *recordingSink) Emit(cd *types.CommitmentData) {
	s.events = append(s.events, cd)
}

// fixedRateExchange pays num/den output units per input unit out of its own
// account.
type fixedRateExchange struct {
	account  types.Identity
	num, den uint64
	report   uint64
}

func (e *fixedRateExchange) Swap(_ context.Context, tx LedgerTx, req ExchangeRequest) (uint64, error) {
	if err := tx.Transfer(req.InputMint, req.Source, e.account, req.AmountIn); err != nil {
		return 0, err
	}
	out := req.AmountIn * e.num / e.den
	if err := tx.Transfer(req.OutputMint, e.account, req.Destination, out); err != nil {
		return 0, err
	}
	if e.report != 0 {
		return e.report, nil
	}
	return out, nil
}

// refusingLedger refuses to prepare while refuse is set.
type refusingLedger struct {
	*MemLedger
	refuse bool
}

func (l *refusingLedger) Begin(ctx context.Context) (LedgerTx, error) {
	tx, err := l.MemLedger.Begin(ctx)
	if err != nil {
		return nil, err
	}
	return &refusingLedgerTx{LedgerTx: tx, l: l}, nil
}

type refusingLedgerTx struct {
	LedgerTx
	l *refusingLedger
}

func (tx *refusingLedgerTx) Prepare() error {
	if tx.l.refuse {
		return errors.New("ledger unavailable")
	}
	return tx.LedgerTx.Prepare()
}

type harness struct {
	t        *testing.T
	pool     *Pool
	ledger   *MemLedger
	gate     *refusingLedger
	sink     *recordingSink
	exchange *fixedRateExchange
	rs       *prover.ReferenceSystem
	seq      byte
}

func newHarness(t *testing.T, height, history uint8) *harness {
	rs, vk := referenceSystem(t)
	st, err := store.NewMemPebbleDB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	h := &harness{
		t:        t,
		ledger:   NewMemLedger(),
		sink:     &recordingSink{},
		exchange: &fixedRateExchange{account: dex, num: 2, den: 1},
		rs:       rs,
	}
	h.gate = &refusingLedger{MemLedger: h.ledger}
	h.pool = NewPool(st, h.gate, NewSignerSet(admin, user, relayer),
		WithLogger(zerolog.Nop()),
		WithVerifier(verifier.NewGroth16Verifier(vk, zerolog.Nop())),
		WithExchange(h.exchange),
		WithEventSink(h.sink),
		WithAdmin(admin),
	)
	require.NoError(t, h.pool.Initialize(context.Background(), admin, height, history, 1_000_000))
	return h
}

func (h *harness) root() [32]byte {
	ts, err := h.pool.TreeState(context.Background())
	require.NoError(h.t, err)
	return ts.Root
}

func (h *harness) nextIndex() uint64 {
	ts, err := h.pool.TreeState(context.Background())
	require.NoError(h.t, err)
	return ts.NextIndex
}

// fresh fills distinct nullifiers and commitments.
func (h *harness) fresh(p *types.Proof) {
	h.seq += 4
	p.InputNullifiers = [2][32]byte{{0: 0x0e, 31: h.seq}, {0: 0x0e, 31: h.seq + 1}}
	p.OutputCommitments = [2][32]byte{{0: 0x0c, 31: h.seq + 2}, {0: 0x0c, 31: h.seq + 3}}
}

func (h *harness) transferProof(root [32]byte, ed *types.ExtData) *types.Proof {
	hash, err := validator.ExtDataHash(ed)
	require.NoError(h.t, err)
	pa, ok := validator.PublicAmountBytes(ed.ExtAmount, ed.Fee)
	require.True(h.t, ok)
	p := &types.Proof{Root: root, PublicAmount0: pa, ExtDataHash: validator.ProofExtDataHash(hash)}
	h.fresh(p)
	require.NoError(h.t, h.rs.ProveTx(p, ed.MintA, ed.MintB))
	return p
}

func (h *harness) deposit(amount int64, fee uint64) (*types.CommitmentData, error) {
	ext := types.ExtDataMinified{ExtAmount: amount, Fee: fee}
	acc := DepositAccounts{Signer: user, Mint: mint, UserAccount: user, Reserve: reserve, FeeRecipient: feeRecipient}
	p := h.transferProof(h.root(), types.NewExtData(ext, acc.Reserve, acc.FeeRecipient, acc.Mint, []byte("note")))
	return h.pool.Deposit(context.Background(), acc, p, ext, []byte("note"))
}

func withdrawAccounts() WithdrawAccounts {
	return WithdrawAccounts{Signer: relayer, Mint: mint, Reserve: reserve, Recipient: recipient, FeeRecipient: feeRecipient}
}

func (h *harness) swapProof(ext types.SwapExtDataMinified, acc SwapAccounts) *types.Proof {
	sed := types.NewSwapExtData(ext, acc.FeeRecipient, acc.InputMint, acc.OutputMint, []byte("swap"))
	hash, err := validator.SwapExtDataHash(sed)
	require.NoError(h.t, err)
	pa0, ok := validator.PublicAmountBytes(ext.ExtAmount, ext.Fee)
	require.True(h.t, ok)
	pa1, ok := validator.PublicAmountBytes(ext.ExtMinAmountOut, 0)
	require.True(h.t, ok)
	p := &types.Proof{Root: h.root(), PublicAmount0: pa0, PublicAmount1: pa1, ExtDataHash: validator.ProofExtDataHash(hash)}
	h.fresh(p)
	require.NoError(h.t, h.rs.ProveTx(p, acc.InputMint, acc.OutputMint))
	return p
}

func swapAccounts() SwapAccounts {
	return SwapAccounts{
		Signer:        relayer,
		InputMint:     mint,
		OutputMint:    outputMint,
		InputReserve:  reserve,
		OutputReserve: outReserve,
		FeeRecipient:  feeRecipient,
	}
}

func balance(h *harness, m, acc types.Identity) uint64 {
	return h.ledger.BalanceOf(m, acc).Uint64()
}

func TestInitialize(t *testing.T) {
	h := newHarness(t, 3, 4)
	ctx := context.Background()

	ts, err := h.pool.TreeState(ctx)
	require.NoError(t, err)
	require.Equal(t, admin, ts.Authority)
	require.Equal(t, uint8(3), ts.Height)
	require.Equal(t, uint64(0), ts.NextIndex)

	gp, err := h.pool.Policy(ctx)
	require.NoError(t, err)
	require.Equal(t, types.DefaultPolicy(admin), gp)

	require.ErrorIs(t, h.pool.Initialize(ctx, admin, 3, 4, 1), types.ErrAlreadyInitialized)
	require.ErrorIs(t, h.pool.Initialize(ctx, user, 3, 4, 1), types.ErrUnauthorized)
}

func TestInitializeWithPolicy(t *testing.T) {
	st, err := store.NewMemLevelDB()
	require.NoError(t, err)
	defer st.Close()
	p := NewPool(st, NewMemLedger(), NewSignerSet(admin), WithLogger(zerolog.Nop()), WithAdmin(admin))
	ctx := context.Background()

	bad, deposit := uint16(types.BasisPoints+1), uint16(10)
	err = p.InitializeWithPolicy(ctx, admin, 3, 4, 1_000, PolicyUpdate{DepositFeeRate: &deposit, WithdrawalFeeRate: &bad})
	require.ErrorIs(t, err, types.ErrInvalidFeeRate)
	// a refused policy leaves no tree behind
	_, err = p.TreeState(ctx)
	require.ErrorIs(t, err, types.ErrNotInitialized)

	require.NoError(t, p.InitializeWithPolicy(ctx, admin, 3, 4, 1_000, PolicyUpdate{DepositFeeRate: &deposit}))
	gp, err := p.Policy(ctx)
	require.NoError(t, err)
	require.Equal(t, uint16(10), gp.DepositFeeRate)
	require.Equal(t, types.DefaultWithdrawalFeeRate, gp.WithdrawalFeeRate)
	require.Equal(t, admin, gp.Authority)
}

func TestNotInitialized(t *testing.T) {
	st, err := store.NewMemLevelDB()
	require.NoError(t, err)
	defer st.Close()
	p := NewPool(st, NewMemLedger(), NewSignerSet(admin), WithLogger(zerolog.Nop()))

	_, err = p.TreeState(context.Background())
	require.ErrorIs(t, err, types.ErrNotInitialized)
	require.ErrorIs(t, p.UpdateDepositLimit(context.Background(), admin, 1), types.ErrNotInitialized)
	require.ErrorIs(t, p.Initialize(context.Background(), admin, 0, 4, 1), types.ErrInvalidTreeParams)
}

func TestDeposit(t *testing.T) {
	h := newHarness(t, 3, 4)
	h.ledger.Mint(mint, user, 500_000)
	before := testutil.ToFloat64(transactionsTotal.WithLabelValues("deposit", "ok"))

	cd, err := h.deposit(100_000, 0)
	require.NoError(t, err)
	require.Equal(t, uint64(0), cd.Index)
	require.Equal(t, []byte("note"), cd.EncryptedOutput)

	require.Equal(t, uint64(400_000), balance(h, mint, user))
	require.Equal(t, uint64(100_000), balance(h, mint, reserve))
	require.Equal(t, uint64(2), h.nextIndex())
	require.Len(t, h.sink.events, 1)
	require.Equal(t, cd, h.sink.events[0])
	require.Equal(t, before+1, testutil.ToFloat64(transactionsTotal.WithLabelValues("deposit", "ok")))
	require.Equal(t, float64(2), testutil.ToFloat64(treeNextIndex))

	cd, err = h.deposit(1_000, 10)
	require.NoError(t, err)
	require.Equal(t, uint64(2), cd.Index)
	require.Equal(t, uint64(10), balance(h, mint, feeRecipient))
}

func TestDeposit_DoubleSpendLeavesStateUntouched(t *testing.T) {
	h := newHarness(t, 3, 4)
	h.ledger.Mint(mint, user, 500_000)

	ext := types.ExtDataMinified{ExtAmount: 1_000}
	acc := DepositAccounts{Signer: user, Mint: mint, UserAccount: user, Reserve: reserve, FeeRecipient: feeRecipient}
	p := h.transferProof(h.root(), types.NewExtData(ext, reserve, feeRecipient, mint, nil))
	_, err := h.pool.Deposit(context.Background(), acc, p, ext, nil)
	require.NoError(t, err)
	root := h.root()

	before := testutil.ToFloat64(transactionsTotal.WithLabelValues("deposit", "nullifier_spent"))
	_, err = h.pool.Deposit(context.Background(), acc, p, ext, nil)
	require.ErrorIs(t, err, nullifier.ErrSpent)
	require.Equal(t, before+1, testutil.ToFloat64(transactionsTotal.WithLabelValues("deposit", "nullifier_spent")))

	require.Equal(t, root, h.root())
	require.Equal(t, uint64(2), h.nextIndex())
	require.Equal(t, uint64(1_000), balance(h, mint, reserve))
	require.Len(t, h.sink.events, 1)
}

func TestDeposit_FailedTransferRollsBack(t *testing.T) {
	h := newHarness(t, 3, 4)
	root := h.root()

	ext := types.ExtDataMinified{ExtAmount: 1_000}
	acc := DepositAccounts{Signer: user, Mint: mint, UserAccount: user, Reserve: reserve, FeeRecipient: feeRecipient}
	p := h.transferProof(root, types.NewExtData(ext, reserve, feeRecipient, mint, nil))

	// the user holds nothing
	_, err := h.pool.Deposit(context.Background(), acc, p, ext, nil)
	require.ErrorIs(t, err, ErrInsufficientBalance)
	require.Equal(t, root, h.root())
	require.Equal(t, uint64(0), h.nextIndex())
	require.Empty(t, h.sink.events)

	// nullifiers were not consumed
	h.ledger.Mint(mint, user, 1_000)
	_, err = h.pool.Deposit(context.Background(), acc, p, ext, nil)
	require.NoError(t, err)
}

func TestDeposit_LedgerRefusalLeavesStateUntouched(t *testing.T) {
	h := newHarness(t, 3, 4)
	h.ledger.Mint(mint, user, 500_000)
	root := h.root()

	ext := types.ExtDataMinified{ExtAmount: 100_000}
	acc := DepositAccounts{Signer: user, Mint: mint, UserAccount: user, Reserve: reserve, FeeRecipient: feeRecipient}
	p := h.transferProof(root, types.NewExtData(ext, reserve, feeRecipient, mint, nil))

	h.gate.refuse = true
	_, err := h.pool.Deposit(context.Background(), acc, p, ext, nil)
	require.ErrorContains(t, err, "ledger unavailable")
	require.Equal(t, root, h.root())
	require.Equal(t, uint64(0), h.nextIndex())
	require.Equal(t, uint64(500_000), balance(h, mint, user))
	require.Empty(t, h.sink.events)

	// nullifiers were not consumed and the next event starts at leaf 0
	h.gate.refuse = false
	cd, err := h.pool.Deposit(context.Background(), acc, p, ext, nil)
	require.NoError(t, err)
	require.Equal(t, uint64(0), cd.Index)
	require.Equal(t, uint64(400_000), balance(h, mint, user))
	require.Equal(t, uint64(100_000), balance(h, mint, reserve))
}

func TestDeposit_Rejections(t *testing.T) {
	h := newHarness(t, 3, 4)
	h.ledger.Mint(mint, user, 10_000_000)
	ctx := context.Background()

	_, err := h.deposit(2_000_000, 0)
	require.ErrorIs(t, err, types.ErrDepositLimitExceeded)

	ext := types.ExtDataMinified{ExtAmount: 1_000}
	acc := DepositAccounts{Signer: user, Mint: mint, UserAccount: user, Reserve: reserve, FeeRecipient: feeRecipient}
	p := h.transferProof(h.root(), types.NewExtData(ext, reserve, feeRecipient, mint, nil))

	unsigned := acc
	unsigned.Signer = types.Identity{0x77}
	_, err = h.pool.Deposit(ctx, unsigned, p, ext, nil)
	require.ErrorIs(t, err, types.ErrUnauthorized)

	// the fee recipient is bound into the ext data hash
	other := acc
	other.FeeRecipient = types.Identity{0x78}
	_, err = h.pool.Deposit(ctx, other, p, ext, nil)
	require.ErrorIs(t, err, types.ErrExtDataHashMismatch)

	tampered := *p
	tampered.A[0] ^= 0x01
	_, err = h.pool.Deposit(ctx, acc, &tampered, ext, nil)
	require.ErrorIs(t, err, types.ErrInvalidProof)

	require.Equal(t, uint64(0), h.nextIndex())
	require.Equal(t, uint64(10_000_000), balance(h, mint, user))
}

func TestTreeFullAndRootAging(t *testing.T) {
	h := newHarness(t, 3, 4)
	h.ledger.Mint(mint, user, 1_000_000)
	initial := h.root()

	for i := 0; i < 4; i++ {
		_, err := h.deposit(100, 0)
		require.NoError(t, err)
	}
	require.Equal(t, uint64(8), h.nextIndex())

	_, err := h.deposit(100, 0)
	require.ErrorIs(t, err, types.ErrMerkleTreeFull)
	require.Equal(t, uint64(8), h.nextIndex())

	// eight appends later the initial root has left the history
	ext := types.ExtDataMinified{ExtAmount: 100}
	acc := DepositAccounts{Signer: user, Mint: mint, UserAccount: user, Reserve: reserve, FeeRecipient: feeRecipient}
	p := h.transferProof(initial, types.NewExtData(ext, reserve, feeRecipient, mint, nil))
	_, err = h.pool.Deposit(context.Background(), acc, p, ext, nil)
	require.ErrorIs(t, err, types.ErrUnknownRoot)
}

func TestWithdraw(t *testing.T) {
	h := newHarness(t, 3, 4)
	h.ledger.Mint(mint, user, 100_000)
	_, err := h.deposit(100_000, 0)
	require.NoError(t, err)

	ext := types.ExtDataMinified{ExtAmount: -50_000, Fee: 250}
	acc := withdrawAccounts()
	p := h.transferProof(h.root(), types.NewExtData(ext, acc.Recipient, acc.FeeRecipient, acc.Mint, []byte("change")))

	cd, err := h.pool.Withdraw(context.Background(), acc, p, ext, []byte("change"))
	require.NoError(t, err)
	require.Equal(t, uint64(2), cd.Index)
	require.Equal(t, uint64(50_000), balance(h, mint, recipient))
	require.Equal(t, uint64(250), balance(h, mint, feeRecipient))
	require.Equal(t, uint64(49_750), balance(h, mint, reserve))
	require.Equal(t, uint64(4), h.nextIndex())
}

func TestWithdraw_Rejections(t *testing.T) {
	h := newHarness(t, 3, 4)
	h.ledger.Mint(mint, user, 1_000)
	_, err := h.deposit(1_000, 0)
	require.NoError(t, err)
	acc := withdrawAccounts()
	ctx := context.Background()

	// below the minimum fee of 25 bps less the 5% margin
	ext := types.ExtDataMinified{ExtAmount: -1_000_000, Fee: 2_000}
	p := h.transferProof(h.root(), types.NewExtData(ext, acc.Recipient, acc.FeeRecipient, acc.Mint, nil))
	_, err = h.pool.Withdraw(ctx, acc, p, ext, nil)
	require.ErrorIs(t, err, types.ErrInvalidFeeAmount)

	ext = types.ExtDataMinified{ExtAmount: -1_000_000, Fee: 2_500}
	p = h.transferProof(h.root(), types.NewExtData(ext, acc.Recipient, acc.FeeRecipient, acc.Mint, nil))
	_, err = h.pool.Withdraw(ctx, acc, p, ext, nil)
	require.ErrorIs(t, err, types.ErrInsufficientFundsForWithdrawal)

	unsigned := acc
	unsigned.Signer = types.Identity{0x77}
	_, err = h.pool.Withdraw(ctx, unsigned, p, ext, nil)
	require.ErrorIs(t, err, types.ErrUnauthorized)

	// a deposit-direction proof is not a withdrawal
	dext := types.ExtDataMinified{ExtAmount: 500}
	p = h.transferProof(h.root(), types.NewExtData(dext, acc.Recipient, acc.FeeRecipient, acc.Mint, nil))
	_, err = h.pool.Withdraw(ctx, acc, p, dext, nil)
	require.ErrorIs(t, err, types.ErrInvalidExtAmount)

	require.Equal(t, uint64(1_000), balance(h, mint, reserve))
	require.Equal(t, uint64(2), h.nextIndex())
}

func TestSwap(t *testing.T) {
	h := newHarness(t, 3, 4)
	h.ledger.Mint(mint, user, 100_000)
	h.ledger.Mint(outputMint, dex, 1_000_000)
	_, err := h.deposit(100_000, 0)
	require.NoError(t, err)

	ext := types.SwapExtDataMinified{ExtAmount: -10_000, ExtMinAmountOut: 19_000}
	acc := swapAccounts()
	p := h.swapProof(ext, acc)

	cd, err := h.pool.Swap(context.Background(), acc, p, ext, []byte("swap"), []byte("route"))
	require.NoError(t, err)
	require.Equal(t, uint64(2), cd.Index)

	require.Equal(t, uint64(90_000), balance(h, mint, reserve))
	require.Equal(t, uint64(10_000), balance(h, mint, dex))
	require.Equal(t, uint64(19_000), balance(h, outputMint, outReserve))
	require.Equal(t, uint64(1_000), balance(h, outputMint, feeRecipient))
}

func TestSwap_Rejections(t *testing.T) {
	h := newHarness(t, 3, 4)
	h.ledger.Mint(mint, user, 100_000)
	h.ledger.Mint(outputMint, dex, 1_000_000)
	_, err := h.deposit(100_000, 0)
	require.NoError(t, err)
	ctx := context.Background()
	acc := swapAccounts()

	ext := types.SwapExtDataMinified{ExtAmount: -10_000, ExtMinAmountOut: 30_000}
	p := h.swapProof(ext, acc)

	_, err = h.pool.Swap(ctx, acc, p, ext, []byte("swap"), nil)
	require.ErrorIs(t, err, types.ErrInvalidSwapData)

	_, err = h.pool.Swap(ctx, acc, p, ext, []byte("swap"), []byte("route"))
	require.ErrorIs(t, err, types.ErrInsufficientSwapOutput)

	// the exchange leg was rolled back with everything else
	require.Equal(t, uint64(100_000), balance(h, mint, reserve))
	require.Equal(t, uint64(0), balance(h, outputMint, outReserve))
	require.Equal(t, uint64(1_000_000), balance(h, outputMint, dex))
	require.Equal(t, uint64(2), h.nextIndex())
	require.Len(t, h.sink.events, 1)
}

func TestSwap_ReportedAmountIsNotTrusted(t *testing.T) {
	h := newHarness(t, 3, 4)
	h.ledger.Mint(mint, user, 100_000)
	h.ledger.Mint(outputMint, dex, 1_000_000)
	_, err := h.deposit(100_000, 0)
	require.NoError(t, err)

	h.exchange.num, h.exchange.den, h.exchange.report = 1, 2, 50_000
	ext := types.SwapExtDataMinified{ExtAmount: -10_000, ExtMinAmountOut: 10_000}
	acc := swapAccounts()
	p := h.swapProof(ext, acc)

	_, err = h.pool.Swap(context.Background(), acc, p, ext, []byte("swap"), []byte("route"))
	require.ErrorIs(t, err, types.ErrInsufficientSwapOutput)
}

func TestUpdateDepositLimit(t *testing.T) {
	h := newHarness(t, 3, 4)
	h.ledger.Mint(mint, user, 10_000)
	ctx := context.Background()

	require.ErrorIs(t, h.pool.UpdateDepositLimit(ctx, user, 1), types.ErrUnauthorized)
	require.NoError(t, h.pool.UpdateDepositLimit(ctx, admin, 5_000))

	ts, err := h.pool.TreeState(ctx)
	require.NoError(t, err)
	require.Equal(t, uint64(5_000), ts.MaxDepositAmount)

	_, err = h.deposit(5_001, 0)
	require.ErrorIs(t, err, types.ErrDepositLimitExceeded)
	_, err = h.deposit(5_000, 0)
	require.NoError(t, err)
}

func TestUpdatePolicy(t *testing.T) {
	h := newHarness(t, 3, 4)
	ctx := context.Background()

	rate := uint16(100)
	tooHigh := uint16(types.BasisPoints + 1)
	require.ErrorIs(t, h.pool.UpdatePolicy(ctx, user, PolicyUpdate{DepositFeeRate: &rate}), types.ErrUnauthorized)
	require.ErrorIs(t, h.pool.UpdatePolicy(ctx, admin, PolicyUpdate{FeeErrorMargin: &tooHigh}), types.ErrInvalidFeeRate)

	require.NoError(t, h.pool.UpdatePolicy(ctx, admin, PolicyUpdate{DepositFeeRate: &rate}))
	gp, err := h.pool.Policy(ctx)
	require.NoError(t, err)
	require.Equal(t, uint16(100), gp.DepositFeeRate)
	require.Equal(t, types.DefaultWithdrawalFeeRate, gp.WithdrawalFeeRate)
	require.Equal(t, types.DefaultFeeErrorMargin, gp.FeeErrorMargin)

	// deposits are now charged 1%
	h.ledger.Mint(mint, user, 20_000)
	_, err = h.deposit(10_000, 0)
	require.ErrorIs(t, err, types.ErrInvalidFeeAmount)
	_, err = h.deposit(10_000, 100)
	require.NoError(t, err)
}

func TestResultCode(t *testing.T) {
	require.Equal(t, "ok", resultCode(nil))
	require.Equal(t, "invalid_proof", resultCode(types.ErrInvalidProof))
	require.Equal(t, "nullifier_spent", resultCode(fmt.Errorf("%w: 01", nullifier.ErrSpent)))
	require.Equal(t, "error", resultCode(ErrInsufficientBalance))
}

func TestIndexerAndWalletFollowPool(t *testing.T) {
	h := newHarness(t, 3, 4)
	h.ledger.Mint(mint, user, 10_000)
	ctx := context.Background()

	w, err := wallet.NewWallet()
	require.NoError(t, err)
	w.SetLogger(zerolog.Nop())
	sealed, err := wallet.SealTo(w.Address, &types.OutputNote{
		Version:  1,
		Amount:   uint256.NewInt(4_000),
		Blinding: types.RandBytes(31),
		Mint:     mint,
	})
	require.NoError(t, err)
	enc, err := crypto.EncodePayload(sealed)
	require.NoError(t, err)

	ext := types.ExtDataMinified{ExtAmount: 4_000}
	acc := DepositAccounts{Signer: user, Mint: mint, UserAccount: user, Reserve: reserve, FeeRecipient: feeRecipient}
	p := h.transferProof(h.root(), types.NewExtData(ext, reserve, feeRecipient, mint, enc))
	_, err = h.pool.Deposit(ctx, acc, p, ext, enc)
	require.NoError(t, err)
	_, err = h.deposit(1_000, 0)
	require.NoError(t, err)

	idx, err := indexer.New(nil, 3, zerolog.Nop())
	require.NoError(t, err)
	for _, cd := range h.sink.events {
		idx.Emit(cd)
	}
	require.NoError(t, idx.Err())
	ts, err := h.pool.TreeState(ctx)
	require.NoError(t, err)
	require.NoError(t, idx.CheckRoot(ts))

	path, err := idx.Path(p.OutputCommitments[1])
	require.NoError(t, err)
	require.Equal(t, uint64(1), path.Index)
	require.True(t, path.Verify())

	n, err := w.Sync(idx)
	require.NoError(t, err)
	require.Equal(t, 1, n)
	require.Equal(t, uint64(4_000), w.Balance(mint).Uint64())
}
