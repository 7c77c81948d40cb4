package config

import (
	"fmt"

	"github.com/spf13/pflag"
)

// ReplayConfig holds configuration for the replay command.
type ReplayConfig struct {
	Config
	FromBlock uint64
	ToBlock   uint64
	BatchSize uint64 `validate:"gt=0"`
}

// LoadReplay merges config file, environment variables, and flags into ReplayConfig.
func LoadReplay(cfgFile string, flags *pflag.FlagSet) (ReplayConfig, error) {
	v, err := newViper(cfgFile, flags)
	if err != nil {
		return ReplayConfig{}, err
	}

	cfg := ReplayConfig{
		Config: Config{
			Common:       loadCommon(v),
			RPCURL:       v.GetString("rpc"),
			MaxRetries:   v.GetInt("max-retries"),
			RetryBackoff: v.GetDuration("retry-backoff"),
		},
		FromBlock: v.GetUint64("from"),
		ToBlock:   v.GetUint64("to"),
		BatchSize: v.GetUint64("batch-size"),
	}
	if err := Validate(cfg); err != nil {
		return ReplayConfig{}, err
	}
	if cfg.ToBlock != 0 && cfg.ToBlock < cfg.FromBlock {
		return ReplayConfig{}, fmt.Errorf("to block %d is before from block %d", cfg.ToBlock, cfg.FromBlock)
	}
	return cfg, nil
}
