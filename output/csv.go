package output

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"CloudSentry/core"
)

// CSVWriter implements the Writer interface for CSV export
type CSVWriter struct {
	mu          sync.Mutex
	file        *os.File
	bufWriter   *bufio.Writer
	writer      *csv.Writer
	recordCount int // Track records written for batched flushing
}

// NewCSVWriter creates a new CSV writer
func NewCSVWriter(outputPath string) (*CSVWriter, error) {
	file, err := os.Create(outputPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create CSV file: %w", err)
	}

	// 64KB buffer keeps syscall overhead down on large exports
	bufWriter := bufio.NewWriterSize(file, 64*1024)
	writer := csv.NewWriter(bufWriter)

	if err := writer.Write(Columns); err != nil {
		file.Close()
		return nil, fmt.Errorf("failed to write CSV header: %w", err)
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		file.Close()
		return nil, fmt.Errorf("failed to flush CSV writer: %w", err)
	}

	return &CSVWriter{
		file:      file,
		bufWriter: bufWriter,
		writer:    writer,
	}, nil
}

// Write writes the records to the CSV file
func (w *CSVWriter) Write(records core.Events) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	for _, rec := range records {
		if err := w.writer.Write(csvRow(rec)); err != nil {
			return fmt.Errorf("%w: CSV record: %v", ErrWritingFailed, err)
		}

		w.recordCount++

		// Flush every 10000 records to reduce syscall overhead
		if w.recordCount%10000 == 0 {
			w.writer.Flush()
			if err := w.writer.Error(); err != nil {
				return fmt.Errorf("%w: CSV flush: %v", ErrWritingFailed, err)
			}
		}
	}

	return nil
}

// Close closes the CSV writer
func (w *CSVWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.writer.Flush()
	if err := w.writer.Error(); err != nil {
		w.file.Close()
		return fmt.Errorf("failed to flush CSV writer: %w", err)
	}

	if err := w.bufWriter.Flush(); err != nil {
		w.file.Close()
		return fmt.Errorf("failed to flush buffer: %w", err)
	}

	return w.file.Close()
}

// WriteCSV serializes the records to w as UTF-8 delimited text with the
// fixed column schema, header first. Used for on-demand export downloads
// where the destination is a response body rather than a file.
func WriteCSV(w io.Writer, records core.Events) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(Columns); err != nil {
		return fmt.Errorf("%w: CSV header: %v", ErrWritingFailed, err)
	}

	for _, rec := range records {
		if err := writer.Write(csvRow(rec)); err != nil {
			return fmt.Errorf("%w: CSV record: %v", ErrWritingFailed, err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("%w: CSV flush: %v", ErrWritingFailed, err)
	}

	return nil
}

func csvRow(rec *core.EventRecord) []string {
	return []string{
		rec.EventTime.Format(time.RFC3339),
		rec.EventName,
		rec.UserName,
		rec.SourceIPAddress,
		rec.EventSource,
		rec.UserAgent,
	}
}
