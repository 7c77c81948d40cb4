package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const envPrefix = "SWAPLOG"

// DefaultPool is the DAI/USDC 0.01% Uniswap V3 pool on mainnet.
const DefaultPool = "0x5777d92f208679db4b9778590fa3cab3ac9e2168"

// Common holds the settings shared by every command.
type Common struct {
	Pool          string `validate:"required,eth_addr"`
	Amount0Param  string `validate:"required"`
	Amount1Param  string `validate:"required,nefield=Amount0Param"`
	Amount0Token  string `validate:"required"`
	Amount1Token  string `validate:"required"`
	ResolveTokens bool
	MaxReorgDepth int    `validate:"gt=0"`
	Perspective   string `validate:"omitempty,oneof=pool trader"`
	Fields        []string
	Format        string `validate:"oneof=text json"`
	Out           string
	Errors        string
	RedisAddr     string `validate:"omitempty,hostname_port"`
	RedisChannel  string
	LogLevel      string `validate:"oneof=debug info warn error"`
	LogFile       string
}

// Config holds configuration for the live run command.
type Config struct {
	Common
	RPCURL       string        `validate:"required"`
	MaxRetries   int           `validate:"gte=0"`
	RetryBackoff time.Duration `validate:"gte=0"`
}

// Load merges config file, environment variables, and flags into Config.
func Load(cfgFile string, flags *pflag.FlagSet) (Config, error) {
	v, err := newViper(cfgFile, flags)
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		Common:       loadCommon(v),
		RPCURL:       v.GetString("rpc"),
		MaxRetries:   v.GetInt("max-retries"),
		RetryBackoff: v.GetDuration("retry-backoff"),
	}
	if err := Validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func newViper(cfgFile string, flags *pflag.FlagSet) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv("rpc", envPrefix+"_RPC", "WEBSOCKET_INFURA_ENDPOINT"); err != nil {
		return nil, fmt.Errorf("bind env: %w", err)
	}

	v.SetDefault("pool", DefaultPool)
	v.SetDefault("amount0-param", "amount0")
	v.SetDefault("amount1-param", "amount1")
	v.SetDefault("amount0-token", "DAI:18")
	v.SetDefault("amount1-token", "USDC:6")
	v.SetDefault("max-reorg-depth", 5)
	v.SetDefault("perspective", "pool")
	v.SetDefault("fields", "sender,recipient,amount0,amount1")
	v.SetDefault("format", "text")
	v.SetDefault("out", "-")
	v.SetDefault("redis-channel", "swaps")
	v.SetDefault("max-retries", 5)
	v.SetDefault("retry-backoff", 500*time.Millisecond)
	v.SetDefault("batch-size", uint64(2000))
	v.SetDefault("log-level", "info")

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return nil, fmt.Errorf("bind flags: %w", err)
		}
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}
	return v, nil
}

func loadCommon(v *viper.Viper) Common {
	return Common{
		Pool:          v.GetString("pool"),
		Amount0Param:  v.GetString("amount0-param"),
		Amount1Param:  v.GetString("amount1-param"),
		Amount0Token:  v.GetString("amount0-token"),
		Amount1Token:  v.GetString("amount1-token"),
		ResolveTokens: v.GetBool("resolve-tokens"),
		MaxReorgDepth: v.GetInt("max-reorg-depth"),
		Perspective:   strings.ToLower(v.GetString("perspective")),
		Fields:        getStringSlice(v, "fields"),
		Format:        strings.ToLower(v.GetString("format")),
		Out:           v.GetString("out"),
		Errors:        v.GetString("errors"),
		RedisAddr:     v.GetString("redis-addr"),
		RedisChannel:  v.GetString("redis-channel"),
		LogLevel:      strings.ToLower(v.GetString("log-level")),
		LogFile:       v.GetString("log-file"),
	}
}

func getStringSlice(v *viper.Viper, key string) []string {
	if !v.IsSet(key) {
		return nil
	}

	val := v.Get(key)
	switch typed := val.(type) {
	case []string:
		return cleanStrings(typed)
	case string:
		return splitAndClean(typed)
	case []interface{}:
		items := make([]string, 0, len(typed))
		for _, item := range typed {
			items = append(items, fmt.Sprintf("%v", item))
		}
		return cleanStrings(items)
	default:
		return nil
	}
}

func splitAndClean(input string) []string {
	if input == "" {
		return nil
	}
	parts := strings.Split(input, ",")
	return cleanStrings(parts)
}

func cleanStrings(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		out = append(out, item)
	}
	return out
}
