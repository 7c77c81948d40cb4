package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"swapLogger/internal/chain"
	"swapLogger/internal/config"
	"swapLogger/internal/dex"
	"swapLogger/internal/indexer"
	"swapLogger/internal/model"
)

func runDecode(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadDecode(cfgFile, cmd.Flags())
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

	var caller dex.Caller
	if cfg.ResolveTokens {
		chainClient, err := chain.NewClient(ctx, cfg.RPCURL)
		if err != nil {
			return fmt.Errorf("connect rpc: %w", err)
		}
		defer chainClient.Close()
		caller = chainClient
	}

	token0, token1, err := resolveTokens(ctx, cfg.Common, pool, caller, logger)
	if err != nil {
		return err
	}

	inputFile, err := os.Open(cfg.In)
	if err != nil {
		return fmt.Errorf("open input: %w", err)
	}
	defer inputFile.Close()

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

	logger.Info("decode start",
		zap.String("in", cfg.In),
		zap.String("pool", pool.Hex()),
		zap.String("token0", token0.Label()),
		zap.String("token1", token1.Label()),
	)

	var skipped int
	assembler := indexer.NewBlockAssembler(decoder)
	err = indexer.ScanLogRecords(inputFile, func(record model.LogRecord) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if record.Removed || !common.IsHexAddress(record.Address) || common.HexToAddress(record.Address) != pool ||
			len(record.Topics) == 0 || !decoder.CanDecode(record.Topics[0]) {
			skipped++
			return nil
		}
		if block, ok := assembler.Add(record); ok {
			return processor.ProcessBlock(ctx, block)
		}
		return nil
	})
	if err == nil {
		if block, ok := assembler.Flush(); ok {
			err = processor.ProcessBlock(ctx, block)
		}
	}

	logger.Info("decode complete", zap.Int("skipped", skipped))
	logStats(logger, processor.Stats())
	return finish(logger, err)
}
