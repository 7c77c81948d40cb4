package model

import (
	"encoding/json"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// Head is a chain head as reported by the node. Hash is the node's own block hash;
// it is never recomputed from the header fields, which change across forks.
type Head struct {
	Number     uint64
	Hash       common.Hash
	ParentHash common.Hash
	Time       uint64
}

// UnmarshalJSON reads a newHeads notification or an eth_getBlockByNumber result.
func (h *Head) UnmarshalJSON(data []byte) error {
	var wire struct {
		Number     *hexutil.Big   `json:"number"`
		Hash       common.Hash    `json:"hash"`
		ParentHash common.Hash    `json:"parentHash"`
		Time       hexutil.Uint64 `json:"timestamp"`
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	if wire.Number == nil {
		return fmt.Errorf("head: missing number")
	}
	number := wire.Number.ToInt()
	if !number.IsUint64() {
		return fmt.Errorf("head: number out of range: %s", number)
	}

	*h = Head{
		Number:     number.Uint64(),
		Hash:       wire.Hash,
		ParentHash: wire.ParentHash,
		Time:       uint64(wire.Time),
	}
	return nil
}
