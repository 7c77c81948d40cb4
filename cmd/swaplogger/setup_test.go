package main

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"swapLogger/internal/config"
	"swapLogger/internal/model"
	"swapLogger/internal/reorg"
	"swapLogger/internal/storage"
)

func testCommon() config.Common {
	return config.Common{
		Pool:          config.DefaultPool,
		Amount0Param:  "amount0",
		Amount1Param:  "amount1",
		Amount0Token:  "DAI:18",
		Amount1Token:  "USDC:6",
		MaxReorgDepth: 5,
		Perspective:   "trader",
		Format:        "json",
	}
}

func TestResolveTokensFromConfig(t *testing.T) {
	token0, token1, err := resolveTokens(context.Background(), testCommon(), common.Address{}, nil, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, model.TokenMeta{Symbol: "DAI", Decimals: 18}, token0)
	assert.Equal(t, model.TokenMeta{Symbol: "USDC", Decimals: 6}, token1)

	cfg := testCommon()
	cfg.Amount1Token = "USDC"
	_, _, err = resolveTokens(context.Background(), cfg, common.Address{}, nil, zap.NewNop())
	assert.Error(t, err)

	cfg = testCommon()
	cfg.ResolveTokens = true
	_, _, err = resolveTokens(context.Background(), cfg, common.Address{}, nil, zap.NewNop())
	assert.Error(t, err)
}

func TestBuildSinkAndProcessor(t *testing.T) {
	cfg := testCommon()
	cfg.Out = filepath.Join(t.TempDir(), "swaps.jsonl")

	sink, err := buildSink(context.Background(), cfg)
	require.NoError(t, err)
	defer sink.Close()
	_, ok := sink.(*storage.JSONLSink)
	assert.True(t, ok)

	processor, err := buildProcessor(cfg, model.TokenMeta{Symbol: "DAI", Decimals: 18}, model.TokenMeta{Symbol: "USDC", Decimals: 6}, sink, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, processor.ProcessBlock(context.Background(), model.Block{Number: 1}))
	assert.Equal(t, uint64(1), processor.Stats().Blocks)

	cfg.Perspective = "sideways"
	_, err = buildProcessor(cfg, model.TokenMeta{}, model.TokenMeta{}, sink, zap.NewNop())
	assert.Error(t, err)
}

func TestBuildSinkText(t *testing.T) {
	cfg := testCommon()
	cfg.Format = "text"

	sink, err := buildSink(context.Background(), cfg)
	require.NoError(t, err)
	_, ok := sink.(*storage.ConsoleSink)
	assert.True(t, ok)
}

func TestFinish(t *testing.T) {
	logger := zap.NewNop()

	assert.NoError(t, finish(logger, nil))
	assert.NoError(t, finish(logger, fmt.Errorf("run: %w", context.Canceled)))

	depthErr := &reorg.DepthError{Depth: 5, Block: "0xabc"}
	assert.ErrorIs(t, finish(logger, depthErr), reorg.ErrDepthExceeded)

	other := errors.New("subscription lost")
	assert.Equal(t, other, finish(logger, other))
}
