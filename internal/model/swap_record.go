package model

// SwapRecord is the rendered form of one successfully classified Swap event.
type SwapRecord struct {
	BlockNumber uint64 `json:"block_number"`
	BlockHash   string `json:"block_hash"`
	TxHash      string `json:"tx_hash"`
	LogIndex    uint64 `json:"log_index"`
	Amount0     string `json:"amount0"`
	Amount1     string `json:"amount1"`
	Token0      string `json:"token0"`
	Token1      string `json:"token1"`
	Direction   string `json:"direction"`
	Fields      Params `json:"fields"`
}
