package storage

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"swapLogger/internal/model"
)

// JSONLSink writes swaps and failures as JSON lines to two outputs.
type JSONLSink struct {
	mu     sync.Mutex
	swaps  *jsonlWriter
	errors *jsonlWriter
}

// NewJSONLSink opens the swap and error outputs. "-" writes to stdout; an empty
// errors path sends failures to the swap output.
func NewJSONLSink(outPath, errorsPath string) (*JSONLSink, error) {
	swaps, err := openJSONLWriter(outPath)
	if err != nil {
		return nil, err
	}
	if errorsPath == "" || errorsPath == outPath {
		return &JSONLSink{swaps: swaps, errors: swaps}, nil
	}
	errs, err := openJSONLWriter(errorsPath)
	if err != nil {
		swaps.Close()
		return nil, err
	}
	return &JSONLSink{swaps: swaps, errors: errs}, nil
}

// NewJSONLSinkWriter writes everything to w. Used for tests and pipes.
func NewJSONLSinkWriter(w io.Writer) *JSONLSink {
	writer := &jsonlWriter{writer: bufio.NewWriter(w)}
	return &JSONLSink{swaps: writer, errors: writer}
}

func (s *JSONLSink) PutSwap(_ context.Context, record model.SwapRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.swaps.Write(record)
}

func (s *JSONLSink) PutError(_ context.Context, record model.ErrorRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.errors.Write(record)
}

func (s *JSONLSink) Flush(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.swaps.Flush(); err != nil {
		return err
	}
	if s.errors != s.swaps {
		return s.errors.Flush()
	}
	return nil
}

func (s *JSONLSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	err := s.swaps.Close()
	if s.errors != s.swaps {
		if closeErr := s.errors.Close(); err == nil {
			err = closeErr
		}
	}
	return err
}

type jsonlWriter struct {
	file   *os.File
	writer *bufio.Writer
}

func openJSONLWriter(path string) (*jsonlWriter, error) {
	if path == "" || path == "-" {
		return &jsonlWriter{writer: bufio.NewWriter(os.Stdout)}, nil
	}

	dir := filepath.Dir(path)
	if dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create dir: %w", err)
		}
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}

	return &jsonlWriter{
		file:   file,
		writer: bufio.NewWriter(file),
	}, nil
}

func (w *jsonlWriter) Write(value interface{}) error {
	line, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}
	if _, err := w.writer.Write(line); err != nil {
		return fmt.Errorf("write: %w", err)
	}
	if err := w.writer.WriteByte('\n'); err != nil {
		return fmt.Errorf("write newline: %w", err)
	}
	return nil
}

func (w *jsonlWriter) Flush() error {
	if err := w.writer.Flush(); err != nil {
		return fmt.Errorf("flush output: %w", err)
	}
	return nil
}

func (w *jsonlWriter) Close() error {
	if w == nil {
		return nil
	}
	if err := w.writer.Flush(); err != nil {
		if w.file != nil {
			w.file.Close()
		}
		return err
	}
	if w.file == nil {
		return nil
	}
	return w.file.Close()
}
