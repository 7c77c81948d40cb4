package pipeline

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"swapLogger/internal/model"
	"swapLogger/internal/reorg"
	"swapLogger/internal/swap"
)

const (
	minus550DAI   = "ffffffffffffffffffffffffffffffffffffffffffffffe22f377a065f280000"
	plus89278DAI  = "12e7c5758742fa0d8000"
	minusUSDC     = "ffffffffffffffffffffffffffffffffffffffffffffffffffffffeb372399e8"
	plus14180USDC = "34d38ca30"
)

type memorySink struct {
	swaps   []model.SwapRecord
	errors  []model.ErrorRecord
	flushes int
	putErr  error
}

func (s *memorySink) PutSwap(_ context.Context, record model.SwapRecord) error {
	if s.putErr != nil {
		return s.putErr
	}
	s.swaps = append(s.swaps, record)
	return nil
}

func (s *memorySink) PutError(_ context.Context, record model.ErrorRecord) error {
	if s.putErr != nil {
		return s.putErr
	}
	s.errors = append(s.errors, record)
	return nil
}

func (s *memorySink) Flush(context.Context) error {
	s.flushes++
	return nil
}

func (s *memorySink) Close() error { return nil }

func testConfig() Config {
	return Config{
		Amount0:       FieldSpec{Param: "amount0", Token: model.TokenMeta{Symbol: "DAI", Decimals: 18}},
		Amount1:       FieldSpec{Param: "amount1", Token: model.TokenMeta{Symbol: "USDC", Decimals: 6}},
		MaxReorgDepth: 3,
	}
}

func swapEvent(tx string, amount0, amount1 string) model.RawEvent {
	return model.RawEvent{
		TxHash: tx,
		Params: model.Params{
			{Name: "sender", Value: "0x1111"},
			{Name: "recipient", Value: "0x2222"},
			{Name: "amount0", Value: amount0},
			{Name: "amount1", Value: amount1},
			{Name: "tick", Value: "-276324"},
		},
	}
}

func block(n uint64, events ...model.RawEvent) model.Block {
	return model.Block{
		Number:     n,
		Hash:       common.BigToHash(new(big.Int).SetUint64(n)),
		ParentHash: common.BigToHash(new(big.Int).SetUint64(n - 1)),
		Events:     events,
	}
}

func TestProcessBlockEmitsSwap(t *testing.T) {
	sink := &memorySink{}
	p, err := NewProcessor(testConfig(), sink, nil)
	require.NoError(t, err)

	require.NoError(t, p.ProcessBlock(context.Background(), block(100, swapEvent("0xaa", minus550DAI, plus14180USDC))))

	require.Len(t, sink.swaps, 1)
	assert.Empty(t, sink.errors)
	assert.Equal(t, 1, sink.flushes)

	got := sink.swaps[0]
	assert.Equal(t, uint64(100), got.BlockNumber)
	assert.Equal(t, "0xaa", got.TxHash)
	assert.Equal(t, "-550", got.Amount0)
	assert.Equal(t, "14180.469296", got.Amount1)
	assert.Equal(t, "DAI", got.Token0)
	assert.Equal(t, "USDC", got.Token1)
	assert.Equal(t, "DAI -> USDC", got.Direction)
	assert.Equal(t, model.Params{
		{Name: "sender", Value: "0x1111"},
		{Name: "recipient", Value: "0x2222"},
		{Name: "amount0", Value: "-550"},
		{Name: "amount1", Value: "14180.469296"},
		{Name: "tick", Value: "-276324"},
	}, got.Fields)
}

func TestProcessBlockTraderPerspectiveAndFieldFilter(t *testing.T) {
	cfg := testConfig()
	cfg.Perspective = swap.PerspectiveTrader
	cfg.Fields = []string{"sender", "recipient", "amount0", "amount1"}
	sink := &memorySink{}
	p, err := NewProcessor(cfg, sink, nil)
	require.NoError(t, err)

	require.NoError(t, p.ProcessBlock(context.Background(), block(7, swapEvent("0xaa", plus89278DAI, minusUSDC))))

	require.Len(t, sink.swaps, 1)
	got := sink.swaps[0]
	assert.Equal(t, "89278.023000000000000000", got.Amount0)
	assert.Equal(t, "-89269.233176", got.Amount1)
	assert.Equal(t, "DAI -> USDC", got.Direction)
	_, ok := got.Fields.Get("tick")
	assert.False(t, ok)
	assert.Len(t, got.Fields, 4)
}

func TestProcessBlockErrorRecords(t *testing.T) {
	sink := &memorySink{}
	p, err := NewProcessor(testConfig(), sink, nil)
	require.NoError(t, err)

	events := []model.RawEvent{
		swapEvent("0x01", "12g7c5758742fa0d8000", plus14180USDC),
		swapEvent("0x02", minus550DAI, "1"+minus550DAI),
		swapEvent("0x03", "fffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffb", minusUSDC),
		{TxHash: "0x04", Err: errors.New("unpack data: short buffer")},
		{TxHash: "0x05", Params: model.Params{{Name: "amount0", Value: minus550DAI}}},
		swapEvent("0x06", minus550DAI, plus14180USDC),
	}
	require.NoError(t, p.ProcessBlock(context.Background(), block(200, events...)))

	require.Len(t, sink.errors, 5)
	require.Len(t, sink.swaps, 1)
	assert.Equal(t, "0x06", sink.swaps[0].TxHash)

	kinds := make([]string, 0, len(sink.errors))
	for _, record := range sink.errors {
		kinds = append(kinds, record.Kind)
		assert.Equal(t, uint64(200), record.BlockNumber)
		assert.NotEmpty(t, record.BlockHash)
		assert.NotEmpty(t, record.Error)
	}
	assert.Equal(t, []string{KindInvalidDigits, KindOverflow, KindAmbiguousDirection, KindMalformedLog, KindInvalidDigits}, kinds)
	assert.Equal(t, "12g7c5758742fa0d8000", sink.errors[0].Raw)
	assert.Equal(t, "1"+minus550DAI, sink.errors[1].Raw)
	assert.Empty(t, sink.errors[2].Raw)
	assert.Contains(t, sink.errors[4].Error, "amount1")

	stats := p.Stats()
	assert.Equal(t, uint64(1), stats.Blocks)
	assert.Equal(t, uint64(6), stats.Events)
	assert.Equal(t, uint64(1), stats.Swaps)
	assert.Equal(t, map[string]uint64{
		KindInvalidDigits:      2,
		KindOverflow:           1,
		KindAmbiguousDirection: 1,
		KindMalformedLog:       1,
	}, stats.Failures)
	assert.Equal(t, 1, p.ConsecutiveFailures())
}

func TestProcessBlockStopsAtDepth(t *testing.T) {
	sink := &memorySink{}
	p, err := NewProcessor(testConfig(), sink, nil)
	require.NoError(t, err)
	ctx := context.Background()

	bad := swapEvent("0xbad", "zz", plus14180USDC)
	good := swapEvent("0xgood", minus550DAI, plus14180USDC)

	require.NoError(t, p.ProcessBlock(ctx, block(1, bad)))
	require.NoError(t, p.ProcessBlock(ctx, block(2, bad, good)))
	require.NoError(t, p.ProcessBlock(ctx, block(3, good)))
	assert.Equal(t, 0, p.ConsecutiveFailures())

	require.NoError(t, p.ProcessBlock(ctx, block(4, bad)))
	require.NoError(t, p.ProcessBlock(ctx, block(5, bad)))
	err = p.ProcessBlock(ctx, block(6, bad))
	require.Error(t, err)
	assert.ErrorIs(t, err, reorg.ErrDepthExceeded)

	var depthErr *reorg.DepthError
	require.ErrorAs(t, err, &depthErr)
	assert.Equal(t, 3, depthErr.Depth)
}

func TestProcessBlockRedeliveryIsBenign(t *testing.T) {
	sink := &memorySink{}
	p, err := NewProcessor(testConfig(), sink, nil)
	require.NoError(t, err)
	ctx := context.Background()

	bad := block(9, swapEvent("0xbad", "", plus14180USDC))
	for i := 0; i < 10; i++ {
		require.NoError(t, p.ProcessBlock(ctx, bad))
	}
	assert.Equal(t, 1, p.ConsecutiveFailures())
	assert.Len(t, sink.errors, 10)
}

func TestProcessBlockEmptyBlockResets(t *testing.T) {
	sink := &memorySink{}
	p, err := NewProcessor(testConfig(), sink, nil)
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, p.ProcessBlock(ctx, block(1, swapEvent("0xbad", "x", "y"))))
	require.NoError(t, p.ProcessBlock(ctx, block(2)))
	assert.Equal(t, 0, p.ConsecutiveFailures())
	assert.Equal(t, 2, sink.flushes)
}

func TestProcessBlockSinkFailure(t *testing.T) {
	sink := &memorySink{putErr: errors.New("disk full")}
	p, err := NewProcessor(testConfig(), sink, nil)
	require.NoError(t, err)

	err = p.ProcessBlock(context.Background(), block(1, swapEvent("0xaa", minus550DAI, plus14180USDC)))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
}

func TestProcessorVolume(t *testing.T) {
	sink := &memorySink{}
	p, err := NewProcessor(testConfig(), sink, nil)
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, p.ProcessBlock(ctx, block(1,
		swapEvent("0x01", minus550DAI, plus14180USDC),
		swapEvent("0x02", plus89278DAI, minusUSDC),
	)))

	stats := p.Stats()
	assert.True(t, decimal.RequireFromString("89828.023").Equal(stats.Volume["DAI"]), stats.Volume["DAI"].String())
	assert.True(t, decimal.RequireFromString("103449.702472").Equal(stats.Volume["USDC"]), stats.Volume["USDC"].String())

	// snapshot is detached
	stats.Volume["DAI"] = decimal.Zero
	assert.False(t, p.Stats().Volume["DAI"].IsZero())
}

func TestProcessorWarnsOnParentMismatch(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	p, err := NewProcessor(testConfig(), &memorySink{}, zap.New(core))
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, p.ProcessBlock(ctx, block(10)))
	require.NoError(t, p.ProcessBlock(ctx, block(11)))
	assert.Zero(t, logs.FilterMessage("parent hash mismatch").Len())

	forked := block(12)
	forked.ParentHash = common.HexToHash("0xdead")
	require.NoError(t, p.ProcessBlock(ctx, forked))
	assert.Equal(t, 1, logs.FilterMessage("parent hash mismatch").Len())

	// gaps are not compared
	gap := block(20)
	gap.ParentHash = common.HexToHash("0xbeef")
	require.NoError(t, p.ProcessBlock(ctx, gap))
	assert.Equal(t, 1, logs.FilterMessage("parent hash mismatch").Len())
	assert.Equal(t, 0, p.ConsecutiveFailures())
}

func TestNewProcessorValidation(t *testing.T) {
	sink := &memorySink{}

	_, err := NewProcessor(testConfig(), nil, nil)
	assert.Error(t, err)

	cfg := testConfig()
	cfg.MaxReorgDepth = 0
	_, err = NewProcessor(cfg, sink, nil)
	assert.Error(t, err)

	cfg = testConfig()
	cfg.Amount1.Param = "amount0"
	_, err = NewProcessor(cfg, sink, nil)
	assert.Error(t, err)

	cfg = testConfig()
	cfg.Amount0.Param = ""
	_, err = NewProcessor(cfg, sink, nil)
	assert.Error(t, err)
}

func TestKind(t *testing.T) {
	assert.Equal(t, KindUnknown, Kind(errors.New("other")))
	assert.Equal(t, KindMalformedLog, Kind(ErrMalformedLog))
}
