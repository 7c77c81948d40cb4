package main

import (
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

func main() {
	_ = godotenv.Load()

	root := &cobra.Command{
		Use:          "swaplogger",
		Short:        "Decode and classify Uniswap V3 Swap events",
		SilenceUsage: true,
	}

	root.PersistentFlags().String("config", "", "config file path")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Follow new blocks and log the pool's swaps",
		RunE:  runLive,
	}
	addCommonFlags(runCmd.Flags())
	addRPCFlags(runCmd.Flags())
	root.AddCommand(runCmd)

	replayCmd := &cobra.Command{
		Use:   "replay",
		Short: "Log the pool's swaps over a historical block range",
		RunE:  runReplay,
	}
	addCommonFlags(replayCmd.Flags())
	addRPCFlags(replayCmd.Flags())
	replayCmd.Flags().Uint64("from", 0, "start block (inclusive)")
	replayCmd.Flags().Uint64("to", 0, "end block (inclusive), 0 means latest")
	replayCmd.Flags().Uint64("batch-size", 2000, "blocks per log query")
	root.AddCommand(replayCmd)

	decodeCmd := &cobra.Command{
		Use:   "decode",
		Short: "Decode swaps from a JSONL file of raw logs",
		RunE:  runDecode,
	}
	addCommonFlags(decodeCmd.Flags())
	decodeCmd.Flags().String("in", "", "input raw logs JSONL")
	decodeCmd.Flags().String("rpc", "", "RPC URL, only needed with --resolve-tokens")
	root.AddCommand(decodeCmd)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func addCommonFlags(flags *pflag.FlagSet) {
	flags.String("pool", "", "pool contract address")
	flags.String("amount0-param", "amount0", "event param decoded as the first amount")
	flags.String("amount1-param", "amount1", "event param decoded as the second amount")
	flags.String("amount0-token", "DAI:18", "token of the first amount (SYMBOL:DECIMALS)")
	flags.String("amount1-token", "USDC:6", "token of the second amount (SYMBOL:DECIMALS)")
	flags.Bool("resolve-tokens", false, "read token symbols and decimals from the pool")
	flags.Int("max-reorg-depth", 5, "consecutive failing blocks before giving up")
	flags.String("perspective", "pool", "direction perspective (pool, trader)")
	flags.StringSlice("fields", nil, "event params to keep in swap records (default sender,recipient,amount0,amount1)")
	flags.String("format", "text", "output format (text, json)")
	flags.String("out", "-", "JSONL swap output path, - for stdout (json format)")
	flags.String("errors", "", "JSONL error output path, empty for the swap output (json format)")
	flags.String("redis-addr", "", "also publish records to this Redis server")
	flags.String("redis-channel", "swaps", "Redis channel for swap records")
	flags.String("log-level", "info", "log level (debug, info, warn, error)")
	flags.String("log-file", "", "write logs to a rotated file instead of stderr")
}

func addRPCFlags(flags *pflag.FlagSet) {
	flags.String("rpc", "", "websocket RPC URL (or WEBSOCKET_INFURA_ENDPOINT)")
	flags.Int("max-retries", 5, "maximum retry attempts")
	flags.Duration("retry-backoff", 500*time.Millisecond, "initial retry backoff")
}
