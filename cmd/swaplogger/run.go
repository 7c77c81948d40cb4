package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"swapLogger/internal/chain"
	"swapLogger/internal/config"
	"swapLogger/internal/dex"
	"swapLogger/internal/indexer"
)

func runLive(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		return err
	}
	defer logger.Sync()

	pool, err := indexer.ParseAddress(cfg.Pool)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	chainClient, err := chain.NewClient(ctx, cfg.RPCURL)
	if err != nil {
		return fmt.Errorf("connect rpc: %w", err)
	}
	defer chainClient.Close()

	token0, token1, err := resolveTokens(ctx, cfg.Common, pool, chainClient, logger)
	if err != nil {
		return err
	}

	sink, err := buildSink(ctx, cfg.Common)
	if err != nil {
		return err
	}
	defer sink.Close()

	processor, err := buildProcessor(cfg.Common, token0, token1, sink, logger)
	if err != nil {
		return err
	}

	decoder, err := dex.NewSwapDecoder()
	if err != nil {
		return err
	}

	runner := indexer.NewRunner(indexer.RunConfig{
		Pool:         pool,
		MaxRetries:   cfg.MaxRetries,
		RetryBackoff: cfg.RetryBackoff,
	}, chainClient, decoder, processor, logger)

	logger.Info("swaplogger start",
		zap.String("mode", "run"),
		zap.String("pool", pool.Hex()),
		zap.String("token0", token0.Label()),
		zap.String("token1", token1.Label()),
		zap.Int("max_reorg_depth", cfg.MaxReorgDepth),
		zap.String("perspective", cfg.Perspective),
		zap.String("format", cfg.Format),
		zap.Bool("redis", cfg.RedisAddr != ""),
	)

	err = runner.Run(ctx)
	logStats(logger, processor.Stats())
	return finish(logger, err)
}
