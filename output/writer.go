package output

import (
	"errors"
	"fmt"
	"strings"

	"CloudSentry/core"
)

// Common errors
var (
	ErrUnsupportedFormat = errors.New("unsupported output format")
	ErrWritingFailed     = errors.New("failed to write output")
)

// Columns is the fixed, ordered export schema. Every writer emits the
// EventRecord field set in this order.
var Columns = []string{
	"eventTime",
	"eventName",
	"userName",
	"sourceIPAddress",
	"eventSource",
	"userAgent",
}

// Writer defines the interface for all export writers
type Writer interface {
	// Write writes the records to the output
	Write(records core.Events) error

	// Close closes the writer and performs any necessary cleanup
	Close() error
}

// GetWriter returns the appropriate writer for the given format
func GetWriter(format, outputPath string) (Writer, error) {
	format = strings.ToLower(format)

	switch format {
	case "csv":
		return NewCSVWriter(outputPath)
	case "jsonl":
		return NewJSONLWriter(outputPath)
	case "sqlite":
		return NewSQLiteWriter(outputPath)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
}
