package indexer

import (
	"context"
	"math/big"
	"sync"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/require"

	"swapLogger/internal/dex"
	"swapLogger/internal/model"
)

var (
	testPool   = common.HexToAddress("0x5777d92f208679db4b9778590fa3cab3ac9e2168")
	testSender = common.HexToAddress("0x2222222222222222222222222222222222222222")
)

func newDecoder(t *testing.T) *dex.SwapDecoder {
	t.Helper()
	decoder, err := dex.NewSwapDecoder()
	require.NoError(t, err)
	return decoder
}

// swapLog builds a Swap log of testPool with the given signed amounts.
func swapLog(t *testing.T, blockNumber uint64, blockHash common.Hash, index uint, amount0, amount1 int64) types.Log {
	t.Helper()
	poolABI, err := dex.PoolABI()
	require.NoError(t, err)

	event := poolABI.Events["Swap"]
	data, err := event.Inputs.NonIndexed().Pack(
		big.NewInt(amount0),
		big.NewInt(amount1),
		big.NewInt(1),
		big.NewInt(1),
		big.NewInt(0),
	)
	require.NoError(t, err)

	sender := common.BytesToHash(testSender.Bytes())
	return types.Log{
		Address:     testPool,
		Topics:      []common.Hash{event.ID, sender, sender},
		Data:        data,
		BlockNumber: blockNumber,
		BlockHash:   blockHash,
		TxHash:      common.BigToHash(big.NewInt(int64(blockNumber*1000) + int64(index))),
		Index:       index,
	}
}

type recordingProcessor struct {
	mu      sync.Mutex
	blocks  []model.Block
	onBlock func(model.Block) error
}

func (p *recordingProcessor) ProcessBlock(_ context.Context, block model.Block) error {
	p.mu.Lock()
	p.blocks = append(p.blocks, block)
	p.mu.Unlock()
	if p.onBlock != nil {
		return p.onBlock(block)
	}
	return nil
}

func (p *recordingProcessor) Blocks() []model.Block {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]model.Block(nil), p.blocks...)
}
