package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"swapLogger/internal/config"
	"swapLogger/internal/dex"
	"swapLogger/internal/model"
	"swapLogger/internal/pipeline"
	"swapLogger/internal/reorg"
	"swapLogger/internal/storage"
	"swapLogger/internal/storage/redis"
	"swapLogger/internal/swap"
)

// resolveTokens returns the tokens of the two amount fields, from the pool when
// requested and from the configured specs otherwise.
func resolveTokens(ctx context.Context, cfg config.Common, pool common.Address, caller dex.Caller, logger *zap.Logger) (model.TokenMeta, model.TokenMeta, error) {
	if cfg.ResolveTokens {
		token0, token1, err := dex.FetchPoolTokens(ctx, caller, pool, logger)
		if err != nil {
			return model.TokenMeta{}, model.TokenMeta{}, fmt.Errorf("resolve pool tokens: %w", err)
		}
		return token0, token1, nil
	}

	token0, err := config.ParseToken(cfg.Amount0Token)
	if err != nil {
		return model.TokenMeta{}, model.TokenMeta{}, err
	}
	token1, err := config.ParseToken(cfg.Amount1Token)
	if err != nil {
		return model.TokenMeta{}, model.TokenMeta{}, err
	}
	return token0, token1, nil
}

func buildSink(ctx context.Context, cfg config.Common) (storage.Sink, error) {
	var sinks storage.MultiSink

	switch cfg.Format {
	case "json":
		jsonl, err := storage.NewJSONLSink(cfg.Out, cfg.Errors)
		if err != nil {
			return nil, fmt.Errorf("open output: %w", err)
		}
		sinks = append(sinks, jsonl)
	default:
		sinks = append(sinks, storage.NewConsoleSink(os.Stdout))
	}

	if cfg.RedisAddr != "" {
		publisher, err := redis.NewPublisher(ctx, cfg.RedisAddr, cfg.RedisChannel)
		if err != nil {
			sinks.Close()
			return nil, fmt.Errorf("connect redis: %w", err)
		}
		sinks = append(sinks, publisher)
	}

	if len(sinks) == 1 {
		return sinks[0], nil
	}
	return sinks, nil
}

func buildProcessor(cfg config.Common, token0, token1 model.TokenMeta, sink storage.Sink, logger *zap.Logger) (*pipeline.Processor, error) {
	perspective, err := swap.ParsePerspective(cfg.Perspective)
	if err != nil {
		return nil, err
	}
	return pipeline.NewProcessor(pipeline.Config{
		Amount0:       pipeline.FieldSpec{Param: cfg.Amount0Param, Token: token0},
		Amount1:       pipeline.FieldSpec{Param: cfg.Amount1Param, Token: token1},
		MaxReorgDepth: cfg.MaxReorgDepth,
		Perspective:   perspective,
		Fields:        cfg.Fields,
	}, sink, logger)
}

func logStats(logger *zap.Logger, stats pipeline.Stats) {
	fields := []zap.Field{
		zap.Uint64("blocks", stats.Blocks),
		zap.Uint64("events", stats.Events),
		zap.Uint64("swaps", stats.Swaps),
	}
	for kind, count := range stats.Failures {
		fields = append(fields, zap.Uint64("failed_"+kind, count))
	}
	for token, volume := range stats.Volume {
		fields = append(fields, zap.String("volume_"+token, volume.String()))
	}
	logger.Info("swaplogger summary", fields...)
}

// finish maps the end of a run to the command result. Cancellation is a clean stop.
func finish(logger *zap.Logger, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, context.Canceled):
		logger.Info("shutting down")
		return nil
	case errors.Is(err, reorg.ErrDepthExceeded):
		logger.Error("stopping: chain tip looks unreliable", zap.Error(err))
		return err
	default:
		return err
	}
}
