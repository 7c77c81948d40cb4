package config

import (
	"fmt"

	"github.com/spf13/pflag"
)

// DecodeConfig holds configuration for the decode command. RPCURL is only needed
// when token metadata is resolved from chain.
type DecodeConfig struct {
	Common
	In     string `validate:"required"`
	RPCURL string
}

// LoadDecode merges config file, environment variables, and flags into DecodeConfig.
func LoadDecode(cfgFile string, flags *pflag.FlagSet) (DecodeConfig, error) {
	v, err := newViper(cfgFile, flags)
	if err != nil {
		return DecodeConfig{}, err
	}

	cfg := DecodeConfig{
		Common: loadCommon(v),
		In:     v.GetString("in"),
		RPCURL: v.GetString("rpc"),
	}
	if err := Validate(cfg); err != nil {
		return DecodeConfig{}, err
	}
	if cfg.ResolveTokens && cfg.RPCURL == "" {
		return DecodeConfig{}, fmt.Errorf("rpc url is required to resolve tokens")
	}
	return cfg, nil
}
