package model

import "github.com/ethereum/go-ethereum/common"

// Block is one delivered block with its Swap events in log order.
type Block struct {
	Number     uint64
	Hash       common.Hash
	ParentHash common.Hash
	Events     []RawEvent
}

// RawEvent is an ABI-decoded event. Err is set when the log could not be decoded
// upstream; Params is empty in that case.
type RawEvent struct {
	TxHash   string
	LogIndex uint64
	Params   Params
	Err      error
}
