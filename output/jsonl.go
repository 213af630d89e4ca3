package output

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"CloudSentry/core"
)

// JSONLWriter implements the Writer interface for JSON Lines export
type JSONLWriter struct {
	mu          sync.Mutex
	file        *os.File
	writer      *bufio.Writer
	encoder     *json.Encoder
	recordCount int // Track records written for batched flushing
}

// NewJSONLWriter creates a new JSON Lines writer
func NewJSONLWriter(outputPath string) (*JSONLWriter, error) {
	file, err := os.Create(outputPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create JSONL file: %w", err)
	}

	writer := bufio.NewWriterSize(file, 64*1024)

	encoder := json.NewEncoder(writer)
	encoder.SetEscapeHTML(false)

	return &JSONLWriter{
		file:    file,
		writer:  writer,
		encoder: encoder,
	}, nil
}

// Write writes the records to the JSON Lines file
func (w *JSONLWriter) Write(records core.Events) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	for _, rec := range records {
		if err := w.encoder.Encode(rec); err != nil {
			return fmt.Errorf("%w: JSON record: %v", ErrWritingFailed, err)
		}

		w.recordCount++

		// Flush every 10000 records to reduce syscall overhead
		if w.recordCount%10000 == 0 {
			if err := w.writer.Flush(); err != nil {
				return fmt.Errorf("%w: JSONL flush: %v", ErrWritingFailed, err)
			}
		}
	}

	return nil
}

// Close closes the JSON Lines writer
func (w *JSONLWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.writer.Flush(); err != nil {
		return fmt.Errorf("failed to flush JSONL writer: %w", err)
	}

	return w.file.Close()
}
