package pipeline

import (
	"context"
	"fmt"
	"maps"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"swapLogger/internal/amount"
	"swapLogger/internal/model"
	"swapLogger/internal/reorg"
	"swapLogger/internal/storage"
	"swapLogger/internal/swap"
)

// FieldSpec binds an event param to the token whose scale decodes it.
type FieldSpec struct {
	Param string
	Token model.TokenMeta
}

// Config holds the per-run settings of a Processor.
type Config struct {
	Amount0       FieldSpec
	Amount1       FieldSpec
	MaxReorgDepth int
	Perspective   swap.Perspective
	// Fields limits the params copied into swap records. Empty keeps all of them.
	Fields []string
}

// Stats summarizes what a Processor has seen so far.
type Stats struct {
	Blocks   uint64
	Events   uint64
	Swaps    uint64
	Failures map[string]uint64
	// Volume is the absolute amount moved per token label.
	Volume map[string]decimal.Decimal
}

// Processor turns delivered blocks into swap and error records. It must be fed
// one block at a time, in delivery order.
type Processor struct {
	cfg    Config
	sink   storage.Sink
	guard  *reorg.Guard[common.Hash]
	logger *zap.Logger

	stats    Stats
	lastHash common.Hash
	lastNum  uint64
	started  bool
}

func NewProcessor(cfg Config, sink storage.Sink, logger *zap.Logger) (*Processor, error) {
	if sink == nil {
		return nil, fmt.Errorf("sink is nil")
	}
	if cfg.Amount0.Param == "" || cfg.Amount1.Param == "" {
		return nil, fmt.Errorf("both amount params are required")
	}
	if cfg.Amount0.Param == cfg.Amount1.Param {
		return nil, fmt.Errorf("amount params must differ: %s", cfg.Amount0.Param)
	}
	if cfg.Perspective == "" {
		cfg.Perspective = swap.PerspectivePool
	}
	guard, err := reorg.NewGuard[common.Hash](cfg.MaxReorgDepth)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Processor{
		cfg:    cfg,
		sink:   sink,
		guard:  guard,
		logger: logger,
		stats: Stats{
			Failures: make(map[string]uint64),
			Volume:   make(map[string]decimal.Decimal),
		},
	}, nil
}

// ProcessBlock decodes and classifies every event of block, writes the results to
// the sink and records the block outcome with the reorg guard.
//
// Per-event failures are written as error records and do not stop the block. The
// returned error is either a sink failure or a *reorg.DepthError.
func (p *Processor) ProcessBlock(ctx context.Context, block model.Block) error {
	p.checkParent(block)

	failed := false
	for _, event := range block.Events {
		p.stats.Events++

		record, raw, err := p.buildSwap(block, event)
		if err != nil {
			failed = true
			kind := Kind(err)
			p.stats.Failures[kind]++
			p.logger.Warn("swap event rejected",
				zap.Uint64("block_number", block.Number),
				zap.String("tx_hash", event.TxHash),
				zap.Uint64("log_index", event.LogIndex),
				zap.String("kind", kind),
				zap.Error(err),
			)
			failure := model.ErrorRecord{
				BlockNumber: block.Number,
				BlockHash:   block.Hash.Hex(),
				TxHash:      event.TxHash,
				LogIndex:    event.LogIndex,
				Kind:        kind,
				Raw:         raw,
				Error:       err.Error(),
			}
			if err := p.sink.PutError(ctx, failure); err != nil {
				return fmt.Errorf("write error record: %w", err)
			}
			continue
		}

		p.stats.Swaps++
		if err := p.sink.PutSwap(ctx, record); err != nil {
			return fmt.Errorf("write swap record: %w", err)
		}
	}

	if err := p.sink.Flush(ctx); err != nil {
		return fmt.Errorf("flush sink: %w", err)
	}
	p.stats.Blocks++

	if err := p.guard.Observe(block.Hash, failed); err != nil {
		p.logger.Error("too many consecutive failing blocks",
			zap.Uint64("block_number", block.Number),
			zap.String("block_hash", block.Hash.Hex()),
			zap.Int("max_reorg_depth", p.guard.MaxDepth()),
		)
		return err
	}
	if failed {
		p.logger.Info("block had failures",
			zap.Uint64("block_number", block.Number),
			zap.Int("consecutive", p.guard.ConsecutiveFailures()),
		)
	}
	return nil
}

// buildSwap returns the swap record for event, or the error and the raw digits that
// caused it.
func (p *Processor) buildSwap(block model.Block, event model.RawEvent) (model.SwapRecord, string, error) {
	if event.Err != nil {
		return model.SwapRecord{}, "", fmt.Errorf("%w: %v", ErrMalformedLog, event.Err)
	}

	raw0, _ := event.Params.Get(p.cfg.Amount0.Param)
	amount0, err := amount.Decode(raw0, amount.Base16, uint(p.cfg.Amount0.Token.Decimals))
	if err != nil {
		return model.SwapRecord{}, raw0, fmt.Errorf("%s: %w", p.cfg.Amount0.Param, err)
	}
	raw1, _ := event.Params.Get(p.cfg.Amount1.Param)
	amount1, err := amount.Decode(raw1, amount.Base16, uint(p.cfg.Amount1.Token.Decimals))
	if err != nil {
		return model.SwapRecord{}, raw1, fmt.Errorf("%s: %w", p.cfg.Amount1.Param, err)
	}

	outcome, err := swap.Classify(amount0, amount1, p.cfg.Amount0.Token, p.cfg.Amount1.Token)
	if err != nil {
		return model.SwapRecord{}, "", err
	}

	value0, value1 := amount0.String(), amount1.String()
	fields := make(model.Params, 0, len(event.Params))
	for _, param := range event.Params {
		if !p.keepField(param.Name) {
			continue
		}
		switch param.Name {
		case p.cfg.Amount0.Param:
			param.Value = value0
		case p.cfg.Amount1.Param:
			param.Value = value1
		}
		fields = append(fields, param)
	}

	p.addVolume(p.cfg.Amount0.Token, amount0)
	p.addVolume(p.cfg.Amount1.Token, amount1)

	return model.SwapRecord{
		BlockNumber: block.Number,
		BlockHash:   block.Hash.Hex(),
		TxHash:      event.TxHash,
		LogIndex:    event.LogIndex,
		Amount0:     value0,
		Amount1:     value1,
		Token0:      p.cfg.Amount0.Token.Label(),
		Token1:      p.cfg.Amount1.Token.Label(),
		Direction:   p.cfg.Perspective.Render(outcome),
		Fields:      fields,
	}, "", nil
}

func (p *Processor) keepField(name string) bool {
	if len(p.cfg.Fields) == 0 {
		return true
	}
	for _, field := range p.cfg.Fields {
		if field == name {
			return true
		}
	}
	return false
}

func (p *Processor) addVolume(token model.TokenMeta, value amount.Decoded) {
	label := token.Label()
	p.stats.Volume[label] = p.stats.Volume[label].Add(value.Decimal().Abs())
}

// checkParent warns when a block does not extend the previous one. Only consecutive
// numbers are compared since the upstream skips blocks without swaps.
func (p *Processor) checkParent(block model.Block) {
	defer func() {
		p.lastHash = block.Hash
		p.lastNum = block.Number
		p.started = true
	}()

	if !p.started || block.Number != p.lastNum+1 || block.ParentHash == (common.Hash{}) {
		return
	}
	if block.ParentHash != p.lastHash {
		p.logger.Warn("parent hash mismatch",
			zap.Uint64("block_number", block.Number),
			zap.String("parent_hash", block.ParentHash.Hex()),
			zap.String("previous_hash", p.lastHash.Hex()),
		)
	}
}

// Stats returns a snapshot of the counters.
func (p *Processor) Stats() Stats {
	return Stats{
		Blocks:   p.stats.Blocks,
		Events:   p.stats.Events,
		Swaps:    p.stats.Swaps,
		Failures: maps.Clone(p.stats.Failures),
		Volume:   maps.Clone(p.stats.Volume),
	}
}

// ConsecutiveFailures reports the current run of failing blocks.
func (p *Processor) ConsecutiveFailures() int {
	return p.guard.ConsecutiveFailures()
}
