package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/kysee/zkpool/zk-pool/store"
	"github.com/kysee/zkpool/zk-pool/types"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v2"
)

type Config struct {
	Store StoreConfig `yaml:"store"`
	Log   LogConfig   `yaml:"log"`
	Pool  PoolConfig  `yaml:"pool"`
}

type StoreConfig struct {
	Driver string `yaml:"driver"`
	Path   string `yaml:"path"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

type PoolConfig struct {
	Height            uint8  `yaml:"height"`
	RootHistorySize   uint8  `yaml:"rootHistorySize"`
	MaxDepositAmount  uint64 `yaml:"maxDepositAmount"`
	DepositFeeRate    uint16 `yaml:"depositFeeRate"`
	WithdrawalFeeRate uint16 `yaml:"withdrawalFeeRate"`
	FeeErrorMargin    uint16 `yaml:"feeErrorMargin"`
	// Admin is the base58 identity allowed to initialize the pool. Empty
	// means any signer.
	Admin string `yaml:"admin"`
}

func Default() *Config {
	return &Config{
		Store: StoreConfig{Driver: store.DriverLevelDB, Path: "./data"},
		Log:   LogConfig{Level: zerolog.InfoLevel.String()},
		Pool: PoolConfig{
			Height:            types.DefaultTreeHeight,
			RootHistorySize:   types.DefaultRootHistorySize,
			MaxDepositAmount:  types.DefaultMaxDepositAmount,
			DepositFeeRate:    types.DefaultDepositFeeRate,
			WithdrawalFeeRate: types.DefaultWithdrawalFeeRate,
			FeeErrorMargin:    types.DefaultFeeErrorMargin,
		},
	}
}

// Load reads path over the defaults. Keys missing in the file keep their
// default value.
func Load(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) Validate() error {
	switch c.Store.Driver {
	case store.DriverLevelDB, store.DriverPebble, store.DriverMemory:
	default:
		return fmt.Errorf("unknown store driver: %q", c.Store.Driver)
	}
	if _, err := zerolog.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log level: %w", err)
	}
	p := c.Pool
	if p.Height == 0 || p.Height > types.MaxTreeHeight {
		return fmt.Errorf("%w: height %d", types.ErrInvalidTreeParams, p.Height)
	}
	if p.RootHistorySize == 0 {
		return fmt.Errorf("%w: rootHistorySize %d", types.ErrInvalidTreeParams, p.RootHistorySize)
	}
	for name, r := range map[string]uint16{
		"depositFeeRate":    p.DepositFeeRate,
		"withdrawalFeeRate": p.WithdrawalFeeRate,
		"feeErrorMargin":    p.FeeErrorMargin,
	} {
		if r > types.BasisPoints {
			return fmt.Errorf("%w: %s %d", types.ErrInvalidFeeRate, name, r)
		}
	}
	if p.Admin != "" {
		if _, err := types.ParseIdentity(p.Admin); err != nil {
			return fmt.Errorf("admin: %w", err)
		}
	}
	return nil
}

// AdminIdentity returns the configured admin or the zero identity.
func (c *Config) AdminIdentity() types.Identity {
	if c.Pool.Admin == "" {
		return types.Identity{}
	}
	return types.MustParseIdentity(c.Pool.Admin)
}

func (c *Config) Logger() zerolog.Logger {
	lvl, err := zerolog.ParseLevel(c.Log.Level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	return zerolog.New(os.Stdout).Level(lvl).With().Timestamp().Logger()
}
