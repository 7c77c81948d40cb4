package dex

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum"

	"swapLogger/internal/model"
)

// Decoder turns a raw chain log into an event the pipeline can process.
type Decoder interface {
	CanDecode(topic0 string) bool
	Decode(log model.LogRecord) model.RawEvent
}

// Caller performs read-only contract calls.
type Caller interface {
	CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
}
