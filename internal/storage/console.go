package storage

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"swapLogger/internal/model"
)

// ConsoleSink prints swaps in a brace-delimited block, one field per line:
//
//	{
//		sender: 0x...
//		recipient: 0x...
//		amount0: -550
//		amount1: 550.120001
//		direction: DAI -> USDC
//	}
type ConsoleSink struct {
	mu     sync.Mutex
	writer *bufio.Writer
}

func NewConsoleSink(w io.Writer) *ConsoleSink {
	return &ConsoleSink{writer: bufio.NewWriter(w)}
}

func (s *ConsoleSink) PutSwap(_ context.Context, record model.SwapRecord) error {
	var b strings.Builder
	b.WriteString("{\n")
	for _, field := range record.Fields {
		fmt.Fprintf(&b, "\t%s: %s\n", field.Name, field.Value)
	}
	fmt.Fprintf(&b, "\tdirection: %s\n}\n", record.Direction)

	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.writer.WriteString(b.String())
	return err
}

func (s *ConsoleSink) PutError(_ context.Context, record model.ErrorRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := fmt.Fprintf(s.writer, "error in block %s (tx %s, log %d): %s: %s\n",
		record.BlockHash, record.TxHash, record.LogIndex, record.Kind, record.Error)
	return err
}

func (s *ConsoleSink) Flush(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writer.Flush()
}

func (s *ConsoleSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writer.Flush()
}
