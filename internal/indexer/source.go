package indexer

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"swapLogger/internal/model"
)

// HeadSource is the part of the chain client the live runner needs.
type HeadSource interface {
	GetChainID(ctx context.Context) (*big.Int, error)
	SubscribeNewHead(ctx context.Context, ch chan<- *model.Head) (ethereum.Subscription, error)
	HeadByNumber(ctx context.Context, number uint64) (*model.Head, error)
	FilterLogsByBlockHash(ctx context.Context, blockHash common.Hash, addresses []common.Address, topic0 []common.Hash) ([]types.Log, error)
}

// RangeSource is the part of the chain client the replayer needs.
type RangeSource interface {
	GetChainID(ctx context.Context) (*big.Int, error)
	LatestBlockNumber(ctx context.Context) (uint64, error)
	BlockTimestamp(ctx context.Context, number uint64) (uint64, error)
	FilterLogs(ctx context.Context, fromBlock, toBlock uint64, addresses []common.Address, topic0 []common.Hash) ([]types.Log, error)
}

// BlockProcessor consumes assembled blocks in order.
type BlockProcessor interface {
	ProcessBlock(ctx context.Context, block model.Block) error
}
