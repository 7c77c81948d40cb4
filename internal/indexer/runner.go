package indexer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"go.uber.org/zap"

	"swapLogger/internal/dex"
	"swapLogger/internal/model"
)

// ErrSubscriptionClosed is returned when the head subscription ends without an error.
var ErrSubscriptionClosed = errors.New("head subscription closed")

// RunConfig holds runtime settings for the live runner.
type RunConfig struct {
	Pool         common.Address
	MaxRetries   int
	RetryBackoff time.Duration
}

// Runner follows new chain heads and feeds the pool's Swap logs to a processor,
// one block per head.
type Runner struct {
	cfg       RunConfig
	chain     HeadSource
	decoder   *dex.SwapDecoder
	processor BlockProcessor
	logger    *zap.Logger
}

// NewRunner builds a Runner with its dependencies.
func NewRunner(cfg RunConfig, chainClient HeadSource, decoder *dex.SwapDecoder, processor BlockProcessor, logger *zap.Logger) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{
		cfg:       cfg,
		chain:     chainClient,
		decoder:   decoder,
		processor: processor,
		logger:    logger,
	}
}

// Run subscribes to new heads and processes them until ctx is done, the
// subscription fails or the processor returns an error.
func (r *Runner) Run(ctx context.Context) error {
	if r.chain == nil {
		return fmt.Errorf("chain client is nil")
	}
	if r.decoder == nil {
		return fmt.Errorf("decoder is nil")
	}
	if r.processor == nil {
		return fmt.Errorf("processor is nil")
	}

	chainID, err := r.chain.GetChainID(ctx)
	if err != nil {
		return fmt.Errorf("get chain id: %w", err)
	}
	if !chainID.IsUint64() {
		return fmt.Errorf("chain id does not fit in uint64: %s", chainID)
	}

	heads := make(chan *model.Head, 16)
	sub, err := r.chain.SubscribeNewHead(ctx, heads)
	if err != nil {
		return fmt.Errorf("subscribe new heads: %w", err)
	}
	defer sub.Unsubscribe()

	r.logger.Info("subscribed to new heads", zap.Uint64("chain_id", chainID.Uint64()), zap.String("pool", r.cfg.Pool.Hex()))

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case err := <-sub.Err():
			if err == nil {
				return ErrSubscriptionClosed
			}
			return fmt.Errorf("head subscription: %w", err)
		case head := <-heads:
			if head == nil {
				continue
			}
			if err := r.handleHead(ctx, chainID.Uint64(), head); err != nil {
				return err
			}
		}
	}
}

func (r *Runner) handleHead(ctx context.Context, chainID uint64, head *model.Head) error {
	if head.Hash == (common.Hash{}) {
		resolved, err := r.headByNumberWithRetry(ctx, head.Number)
		if err != nil {
			return fmt.Errorf("resolve hash of block %d: %w", head.Number, err)
		}
		head = resolved
	}

	logs, err := r.filterLogsWithRetry(ctx, head.Hash)
	if err != nil {
		return fmt.Errorf("filter logs of block %d: %w", head.Number, err)
	}

	ingestedAt := time.Now().UTC()
	block := model.Block{
		Number:     head.Number,
		Hash:       head.Hash,
		ParentHash: head.ParentHash,
		Events:     make([]model.RawEvent, 0, len(logs)),
	}
	for _, log := range logs {
		if log.Removed {
			continue
		}
		record := buildLogRecord(chainID, log, head.Time, ingestedAt)
		block.Events = append(block.Events, r.decoder.Decode(record))
	}

	r.logger.Debug("block received",
		zap.Uint64("block_number", block.Number),
		zap.String("block_hash", block.Hash.Hex()),
		zap.Int("swaps", len(block.Events)),
	)
	return r.processor.ProcessBlock(ctx, block)
}

// headByNumberWithRetry covers providers whose newHeads payload omits the hash.
func (r *Runner) headByNumberWithRetry(ctx context.Context, number uint64) (*model.Head, error) {
	var head *model.Head
	err := withRetry(ctx, r.cfg.MaxRetries, r.cfg.RetryBackoff, func(ctx context.Context) error {
		var err error
		head, err = r.chain.HeadByNumber(ctx, number)
		if err != nil {
			r.logger.Warn("head lookup failed", zap.Error(err), zap.Uint64("block_number", number))
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	if head.Hash == (common.Hash{}) {
		return nil, fmt.Errorf("node returned no hash for block %d", number)
	}
	return head, nil
}

func (r *Runner) filterLogsWithRetry(ctx context.Context, blockHash common.Hash) ([]types.Log, error) {
	var logs []types.Log
	err := withRetry(ctx, r.cfg.MaxRetries, r.cfg.RetryBackoff, func(ctx context.Context) error {
		var err error
		logs, err = r.chain.FilterLogsByBlockHash(ctx, blockHash, []common.Address{r.cfg.Pool}, []common.Hash{r.decoder.Topic()})
		if err != nil {
			r.logger.Warn("filter logs failed", zap.Error(err), zap.String("block_hash", blockHash.Hex()))
		}
		return err
	})
	return logs, err
}
