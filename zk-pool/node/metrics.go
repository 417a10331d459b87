package node

import (
	"errors"

	"github.com/kysee/zkpool/zk-pool/nullifier"
	"github.com/kysee/zkpool/zk-pool/types"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	metricsNamespace = "zkpool"
	subsystem        = "pool"
)

var (
	transactionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: subsystem,
			Name:      "transactions_total",
			Help:      "Transactions processed by the pool, by kind and result",
		},
		[]string{"kind", "result"},
	)

	treeNextIndex = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Subsystem: subsystem,
			Name:      "tree_next_index",
			Help:      "Next free leaf index of the commitment tree",
		},
	)
)

var resultCodes = []struct {
	err  error
	code string
}{
	{types.ErrUnauthorized, "unauthorized"},
	{types.ErrUnknownRoot, "unknown_root"},
	{types.ErrExtDataHashMismatch, "ext_data_hash_mismatch"},
	{types.ErrInvalidPublicAmountData, "invalid_public_amount"},
	{types.ErrInvalidFeeAmount, "invalid_fee_amount"},
	{types.ErrArithmeticOverflow, "arithmetic_overflow"},
	{types.ErrInvalidExtAmount, "invalid_ext_amount"},
	{types.ErrDepositLimitExceeded, "deposit_limit_exceeded"},
	{types.ErrInvalidProof, "invalid_proof"},
	{nullifier.ErrSpent, "nullifier_spent"},
	{types.ErrMerkleTreeFull, "tree_full"},
	{types.ErrInsufficientFundsForWithdrawal, "insufficient_funds"},
	{types.ErrInvalidSwapData, "invalid_swap_data"},
	{types.ErrMathOverflow, "math_overflow"},
	{types.ErrInsufficientSwapOutput, "insufficient_swap_output"},
	{types.ErrNotInitialized, "not_initialized"},
}

func resultCode(err error) string {
	if err == nil {
		return "ok"
	}
	for _, rc := range resultCodes {
		if errors.Is(err, rc.err) {
			return rc.code
		}
	}
	return "error"
}

func observeTx(kind string, err error) {
	transactionsTotal.WithLabelValues(kind, resultCode(err)).Inc()
}
