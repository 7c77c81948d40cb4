package dex

import (
	"fmt"
	"math/big"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/common/math"

	"swapLogger/internal/model"
)

// SwapDecoder decodes Uniswap V3 pool Swap logs into ordered params. Signed amounts
// are rendered as their unsigned 256-bit word in lowercase hex, without prefix.
type SwapDecoder struct {
	event abi.Event
	topic string
}

func NewSwapDecoder() (*SwapDecoder, error) {
	parsed, err := PoolABI()
	if err != nil {
		return nil, fmt.Errorf("parse pool abi: %w", err)
	}
	event, ok := parsed.Events["Swap"]
	if !ok {
		return nil, fmt.Errorf("pool abi has no Swap event")
	}
	return &SwapDecoder{
		event: event,
		topic: strings.ToLower(event.ID.Hex()),
	}, nil
}

// Topic returns the Swap event signature hash.
func (d *SwapDecoder) Topic() common.Hash {
	return d.event.ID
}

// CanDecode checks if the topic0 is the Swap signature.
func (d *SwapDecoder) CanDecode(topic0 string) bool {
	return topic0 != "" && strings.ToLower(topic0) == d.topic
}

// Decode converts a LogRecord into a RawEvent. Failures are reported through the
// event's Err so that the caller can account for them per block.
func (d *SwapDecoder) Decode(log model.LogRecord) model.RawEvent {
	event := model.RawEvent{TxHash: log.TxHash, LogIndex: log.LogIndex}
	params, err := d.decodeSwap(log)
	if err != nil {
		event.Err = err
		return event
	}
	event.Params = params
	return event
}

func (d *SwapDecoder) decodeSwap(log model.LogRecord) (model.Params, error) {
	if len(log.Topics) == 0 {
		return nil, fmt.Errorf("missing topics")
	}
	if !d.CanDecode(log.Topics[0]) {
		return nil, fmt.Errorf("unsupported topic0: %s", log.Topics[0])
	}

	indexedTopics, err := parseIndexedTopics(d.event, log.Topics)
	if err != nil {
		return nil, err
	}

	var indexed struct {
		Sender    common.Address
		Recipient common.Address
	}
	if err := abi.ParseTopics(&indexed, indexedArguments(d.event.Inputs), indexedTopics); err != nil {
		return nil, fmt.Errorf("parse topics: %w", err)
	}

	values, err := unpackNonIndexed(d.event, log.Data)
	if err != nil {
		return nil, err
	}
	if len(values) != 5 {
		return nil, fmt.Errorf("unexpected swap values: %d", len(values))
	}

	amount0, err := asBigInt(values[0])
	if err != nil {
		return nil, fmt.Errorf("amount0: %w", err)
	}
	amount1, err := asBigInt(values[1])
	if err != nil {
		return nil, fmt.Errorf("amount1: %w", err)
	}
	sqrtPrice, err := asBigInt(values[2])
	if err != nil {
		return nil, fmt.Errorf("sqrtPriceX96: %w", err)
	}
	liquidity, err := asBigInt(values[3])
	if err != nil {
		return nil, fmt.Errorf("liquidity: %w", err)
	}
	tickInt, err := asBigInt(values[4])
	if err != nil {
		return nil, fmt.Errorf("tick: %w", err)
	}
	tick, err := int24FromBig(tickInt)
	if err != nil {
		return nil, err
	}

	return model.Params{
		{Name: "sender", Value: indexed.Sender.Hex()},
		{Name: "recipient", Value: indexed.Recipient.Hex()},
		{Name: "amount0", Value: wordHex(amount0)},
		{Name: "amount1", Value: wordHex(amount1)},
		{Name: "sqrtPriceX96", Value: sqrtPrice.String()},
		{Name: "liquidity", Value: liquidity.String()},
		{Name: "tick", Value: strconv.FormatInt(int64(tick), 10)},
	}, nil
}

// wordHex renders v as a 256-bit two's-complement word.
func wordHex(v *big.Int) string {
	return math.U256(new(big.Int).Set(v)).Text(16)
}

func parseIndexedTopics(event abi.Event, topics []string) ([]common.Hash, error) {
	indexedCount := len(indexedArguments(event.Inputs))
	if len(topics) != indexedCount+1 {
		return nil, fmt.Errorf("expected %d topics, got %d", indexedCount+1, len(topics))
	}
	return parseTopicHashes(topics[1:])
}

func parseTopicHashes(topics []string) ([]common.Hash, error) {
	out := make([]common.Hash, 0, len(topics))
	for _, topic := range topics {
		data, err := hexutil.Decode(topic)
		if err != nil {
			return nil, fmt.Errorf("invalid topic: %w", err)
		}
		if len(data) > 32 {
			return nil, fmt.Errorf("topic length %d", len(data))
		}
		out = append(out, common.BytesToHash(data))
	}
	return out, nil
}

func indexedArguments(args abi.Arguments) abi.Arguments {
	indexed := make(abi.Arguments, 0, len(args))
	for _, arg := range args {
		if arg.Indexed {
			indexed = append(indexed, arg)
		}
	}
	return indexed
}

func unpackNonIndexed(event abi.Event, dataHex string) ([]interface{}, error) {
	data, err := hexutil.Decode(dataHex)
	if err != nil {
		return nil, fmt.Errorf("invalid data: %w", err)
	}
	values, err := event.Inputs.NonIndexed().Unpack(data)
	if err != nil {
		return nil, fmt.Errorf("unpack %s: %w", event.Name, err)
	}
	return values, nil
}
