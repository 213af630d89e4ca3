package providers

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"CloudSentry/core"
	"CloudSentry/internal/logger"
)

// CSVFileProvider loads audit records from a local delimited-text archive,
// such as an exported CloudTrail dataset or the bundled demo logs. It is
// also the fallback source for the CloudTrail provider when S3 is
// unreachable.
type CSVFileProvider struct {
	path        string
	defaultUser string
}

// NewCSVFileProvider creates a provider reading from the given file path
func NewCSVFileProvider(path string) *CSVFileProvider {
	return &CSVFileProvider{
		path:        path,
		defaultUser: DefaultUserDemo,
	}
}

// Name returns the provider identity
func (p *CSVFileProvider) Name() string {
	return "csv"
}

// CacheKey returns the cache key for this provider's fetch
func (p *CSVFileProvider) CacheKey() string {
	return "csv:" + p.path
}

// Fetch loads and normalizes the records from the CSV file
func (p *CSVFileProvider) Fetch(ctx context.Context) (*FetchResult, error) {
	return LoadCSVFile(p.path, p.defaultUser)
}

// LoadCSVFile reads a delimited-text log archive and normalizes its rows.
// Columns are mapped by header name; rows with unparseable timestamps are
// skipped and counted. A row with an empty or missing user name gets
// defaultUser. Fields absent from the header stay unset on every record.
func LoadCSVFile(path, defaultUser string) (*FetchResult, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open log archive: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1 // tolerate ragged rows

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read log archive header: %w", err)
	}

	// Map column positions by header name
	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[strings.TrimSpace(name)] = i
	}
	if _, ok := columns["eventTime"]; !ok {
		return nil, fmt.Errorf("log archive %s has no eventTime column", path)
	}

	field := func(row []string, name string) string {
		idx, ok := columns[name]
		if !ok || idx >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[idx])
	}

	records := make(core.Events, 0)
	skipped := 0
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			// Malformed row, skip and count rather than aborting the batch
			skipped++
			continue
		}

		eventTime, err := ParseEventTime(field(row, "eventTime"))
		if err != nil {
			skipped++
			continue
		}

		userName := field(row, "userName")
		if userName == "" {
			userName = defaultUser
		}

		records = append(records, core.NewEventRecord(
			eventTime,
			field(row, "eventName"),
			userName,
			field(row, "sourceIPAddress"),
			field(row, "eventSource"),
			field(row, "userAgent"),
		))
	}

	sort.Sort(records)

	if skipped > 0 {
		logger.Warn("Skipped %d unparseable rows in %s", skipped, path)
	}
	logger.Info("Loaded %d records from %s", len(records), path)

	return &FetchResult{
		Records: records,
		Skipped: skipped,
	}, nil
}
