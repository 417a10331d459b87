package main

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/kysee/zkpool/zk-pool/config"
	"github.com/kysee/zkpool/zk-pool/merkle"
	"github.com/kysee/zkpool/zk-pool/node"
	"github.com/kysee/zkpool/zk-pool/prover"
	"github.com/kysee/zkpool/zk-pool/store"
	"github.com/kysee/zkpool/zk-pool/types"
	"github.com/kysee/zkpool/zk-pool/verifier"
	"github.com/kysee/zkpool/zk-pool/wallet"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

var (
	configPath string
	signerStr  string
)

func main() {
	var rootCmd = &cobra.Command{
		Use:   "zkpool",
		Short: "Operator tool for the shielded pool",
		Long: `zkpool initializes and administers a shielded pool: the commitment tree,
its root history, the deposit limit and the fee policy.`,
		SilenceUsage: true,
	}
	rootCmd.CompletionOptions.DisableDefaultCmd = true
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to the YAML config (defaults apply when empty)")
	rootCmd.PersistentFlags().StringVar(&signerStr, "signer", "", "base58 identity signing admin operations")

	rootCmd.AddCommand(initCmd(), statusCmd(), setLimitCmd(), setPolicyCmd(), vkCmd(), solidityCmd(), rootsCmd(), keygenCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

type env struct {
	cfg  *config.Config
	st   store.Store
	pool *node.Pool
	log  zerolog.Logger
}

func (e *env) Close() {
	if err := e.st.Close(); err != nil {
		e.log.Error().Err(err).Msg("close store")
	}
}

func loadConfig() (*config.Config, error) {
	if configPath == "" {
		return config.Default(), nil
	}
	return config.Load(configPath)
}

func signer() (types.Identity, error) {
	if signerStr == "" {
		return types.Identity{}, errors.New("--signer is required")
	}
	return types.ParseIdentity(signerStr)
}

// openPool opens the configured store. The signer, if any, is the only
// identity the pool treats as signed.
func openPool() (*env, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	log := cfg.Logger()
	st, err := store.Open(cfg.Store.Driver, cfg.Store.Path)
	if err != nil {
		return nil, err
	}
	var signers []types.Identity
	if id, err := signer(); err == nil {
		signers = append(signers, id)
	}
	pool := node.NewPool(st, node.NewMemLedger(), node.NewSignerSet(signers...),
		node.WithLogger(log),
		node.WithAdmin(cfg.AdminIdentity()),
	)
	return &env{cfg: cfg, st: st, pool: pool, log: log}, nil
}

func initCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create the commitment tree and the fee policy",
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := signer()
			if err != nil {
				return err
			}
			e, err := openPool()
			if err != nil {
				return err
			}
			defer e.Close()

			pc := e.cfg.Pool
			rates := node.PolicyUpdate{
				DepositFeeRate:    &pc.DepositFeeRate,
				WithdrawalFeeRate: &pc.WithdrawalFeeRate,
				FeeErrorMargin:    &pc.FeeErrorMargin,
			}
			if err := e.pool.InitializeWithPolicy(context.Background(), id, pc.Height, pc.RootHistorySize, pc.MaxDepositAmount, rates); err != nil {
				return err
			}
			fmt.Printf("pool initialized, authority %s\n", id)
			return nil
		},
	}
}

func percent(bp uint16) string {
	return decimal.New(int64(bp), -2).String() + "%"
}

func statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the tree state and the fee policy",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openPool()
			if err != nil {
				return err
			}
			defer e.Close()

			ctx := context.Background()
			ts, err := e.pool.TreeState(ctx)
			if err != nil {
				return err
			}
			gp, err := e.pool.Policy(ctx)
			if err != nil {
				return err
			}
			fmt.Printf("authority:          %s\n", ts.Authority)
			fmt.Printf("height:             %d\n", ts.Height)
			fmt.Printf("leaves:             %d / %d\n", ts.NextIndex, ts.Capacity())
			fmt.Printf("root:               %x\n", ts.Root)
			fmt.Printf("root history:       %d\n", ts.RootHistorySize)
			fmt.Printf("max deposit:        %d\n", ts.MaxDepositAmount)
			fmt.Printf("deposit fee:        %s\n", percent(gp.DepositFeeRate))
			fmt.Printf("withdrawal fee:     %s\n", percent(gp.WithdrawalFeeRate))
			fmt.Printf("fee error margin:   %s\n", percent(gp.FeeErrorMargin))
			return nil
		},
	}
}

func setLimitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set-limit <amount>",
		Short: "Set the maximum deposit amount",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			limit, err := strconv.ParseUint(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("amount: %w", err)
			}
			id, err := signer()
			if err != nil {
				return err
			}
			e, err := openPool()
			if err != nil {
				return err
			}
			defer e.Close()
			return e.pool.UpdateDepositLimit(context.Background(), id, limit)
		},
	}
}

func setPolicyCmd() *cobra.Command {
	var depositRate, withdrawalRate, margin uint16
	cmd := &cobra.Command{
		Use:   "set-policy",
		Short: "Change fee rates, in basis points",
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := signer()
			if err != nil {
				return err
			}
			var u node.PolicyUpdate
			if cmd.Flags().Changed("deposit-rate") {
				u.DepositFeeRate = &depositRate
			}
			if cmd.Flags().Changed("withdrawal-rate") {
				u.WithdrawalFeeRate = &withdrawalRate
			}
			if cmd.Flags().Changed("margin") {
				u.FeeErrorMargin = &margin
			}
			e, err := openPool()
			if err != nil {
				return err
			}
			defer e.Close()
			return e.pool.UpdatePolicy(context.Background(), id, u)
		},
	}
	cmd.Flags().Uint16Var(&depositRate, "deposit-rate", 0, "deposit fee rate")
	cmd.Flags().Uint16Var(&withdrawalRate, "withdrawal-rate", 0, "withdrawal fee rate")
	cmd.Flags().Uint16Var(&margin, "margin", 0, "fee error margin")
	return cmd
}

func vkCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "vk",
		Short: "Print the embedded verifying key",
		RunE: func(cmd *cobra.Command, args []string) error {
			vk := verifier.DefaultVerifyingKey()
			alpha := vk.Alpha.RawBytes()
			beta := vk.Beta.RawBytes()
			gamma := vk.Gamma.RawBytes()
			delta := vk.Delta.RawBytes()
			fmt.Printf("alpha: %x\n", alpha[:])
			fmt.Printf("beta:  %x\n", beta[:])
			fmt.Printf("gamma: %x\n", gamma[:])
			fmt.Printf("delta: %x\n", delta[:])
			for i := range vk.IC {
				ic := vk.IC[i].RawBytes()
				fmt.Printf("ic[%d]: %x\n", i, ic[:])
			}
			return nil
		},
	}
}

// solidityCmd runs a fresh reference setup, so the exported verifier only
// matches proofs from that throwaway key pair. It is meant for development
// chains.
func solidityCmd() *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "solidity",
		Short: "Export a Solidity verifier for a development key pair",
		RunE: func(cmd *cobra.Command, args []string) error {
			rs, err := prover.Setup()
			if err != nil {
				return err
			}
			path, err := rs.ExportSolidity(out)
			if err != nil {
				return err
			}
			fmt.Printf("solidity verifier generated: %s\n", path)
			return nil
		},
	}
	cmd.Flags().StringVar(&out, "out", "contracts", "output directory")
	return cmd
}

func rootsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "root [hex]",
		Short: "Print the current root, or check whether a root is known",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openPool()
			if err != nil {
				return err
			}
			defer e.Close()

			ts, err := e.pool.TreeState(context.Background())
			if err != nil {
				return err
			}
			if len(args) == 0 {
				fmt.Printf("%x\n", ts.Root)
				return nil
			}
			bz, err := hex.DecodeString(strings.TrimPrefix(args[0], "0x"))
			if err != nil || len(bz) != 32 {
				return fmt.Errorf("root must be 32 hex-encoded bytes")
			}
			var root [32]byte
			copy(root[:], bz)
			fmt.Println(merkle.IsKnownRoot(ts, root))
			return nil
		},
	}
}

func keygenCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "keygen",
		Short: "Generate a shielded receiving key",
		RunE: func(cmd *cobra.Command, args []string) error {
			w, err := wallet.NewWallet()
			if err != nil {
				return err
			}
			fmt.Printf("address: %s\n", w.Address)
			fmt.Printf("private: %x\n", w.PrivateKey.Bytes())
			return nil
		},
	}
}
