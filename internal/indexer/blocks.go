package indexer

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/ethereum/go-ethereum/common"

	"swapLogger/internal/dex"
	"swapLogger/internal/model"
)

// BlockAssembler groups consecutive log records of the same block into a
// model.Block, decoding each log on the way.
type BlockAssembler struct {
	decoder dex.Decoder
	current *model.Block
}

func NewBlockAssembler(decoder dex.Decoder) *BlockAssembler {
	return &BlockAssembler{decoder: decoder}
}

// Add appends record to the current block. When record starts a new block the
// previous one is returned as complete.
func (a *BlockAssembler) Add(record model.LogRecord) (model.Block, bool) {
	hash := common.HexToHash(record.BlockHash)

	var done model.Block
	var ok bool
	if a.current != nil && (a.current.Hash != hash || a.current.Number != record.BlockNumber) {
		done, ok = *a.current, true
		a.current = nil
	}
	if a.current == nil {
		a.current = &model.Block{Number: record.BlockNumber, Hash: hash}
	}
	a.current.Events = append(a.current.Events, a.decoder.Decode(record))
	return done, ok
}

// Flush returns the block in progress, if any.
func (a *BlockAssembler) Flush() (model.Block, bool) {
	if a.current == nil {
		return model.Block{}, false
	}
	done := *a.current
	a.current = nil
	return done, true
}

// GroupBlocks splits records into blocks, keeping their order.
func GroupBlocks(records []model.LogRecord, decoder dex.Decoder) []model.Block {
	assembler := NewBlockAssembler(decoder)
	blocks := make([]model.Block, 0)
	for _, record := range records {
		if block, ok := assembler.Add(record); ok {
			blocks = append(blocks, block)
		}
	}
	if block, ok := assembler.Flush(); ok {
		blocks = append(blocks, block)
	}
	return blocks
}

// ScanLogRecords reads JSONL log records from r and calls fn for each one. Blank
// lines are skipped; a line that is not a LogRecord stops the scan.
func ScanLogRecords(r io.Reader, fn func(model.LogRecord) error) error {
	scanner := bufio.NewScanner(r)
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 10*1024*1024)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}

		var record model.LogRecord
		if err := json.Unmarshal(line, &record); err != nil {
			return fmt.Errorf("line %d: %w", lineNo, err)
		}
		if err := fn(record); err != nil {
			return err
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("scan input: %w", err)
	}
	return nil
}
