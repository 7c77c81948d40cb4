package model

// ErrorRecord records an event that could not be decoded or classified.
type ErrorRecord struct {
	BlockNumber uint64 `json:"block_number"`
	BlockHash   string `json:"block_hash"`
	TxHash      string `json:"tx_hash"`
	LogIndex    uint64 `json:"log_index"`
	Kind        string `json:"kind"`
	Raw         string `json:"raw,omitempty"`
	Error       string `json:"error"`
}
