package output

import (
	"bufio"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestGetWriter(t *testing.T) {
	dir, err := os.MkdirTemp("", "cloudsentry-writer-test")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(dir)

	tests := []struct {
		format string
		file   string
	}{
		{"csv", "out.csv"},
		{"CSV", "out_upper.csv"}, // format matching is case-insensitive
		{"jsonl", "out.jsonl"},
		{"sqlite", "out.db"},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			w, err := GetWriter(tt.format, filepath.Join(dir, tt.file))
			if err != nil {
				t.Fatalf("GetWriter(%q) failed: %v", tt.format, err)
			}
			if err := w.Write(sampleRecords()); err != nil {
				t.Fatalf("Write failed: %v", err)
			}
			if err := w.Close(); err != nil {
				t.Fatalf("Close failed: %v", err)
			}
		})
	}
}

func TestGetWriterUnsupportedFormat(t *testing.T) {
	_, err := GetWriter("xml", "out.xml")
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("error = %v, want ErrUnsupportedFormat", err)
	}
}

func TestJSONLWriter(t *testing.T) {
	dir, err := os.MkdirTemp("", "cloudsentry-jsonl-test")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(dir)

	path := filepath.Join(dir, "export.jsonl")
	w, err := NewJSONLWriter(path)
	if err != nil {
		t.Fatalf("NewJSONLWriter failed: %v", err)
	}
	if err := w.Write(sampleRecords()); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	file, err := os.Open(path)
	if err != nil {
		t.Fatalf("Failed to open export: %v", err)
	}
	defer file.Close()

	var lines []map[string]interface{}
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		var obj map[string]interface{}
		if err := json.Unmarshal(scanner.Bytes(), &obj); err != nil {
			t.Fatalf("line %d is not valid JSON: %v", len(lines)+1, err)
		}
		lines = append(lines, obj)
	}
	if err := scanner.Err(); err != nil {
		t.Fatalf("Failed to scan export: %v", err)
	}

	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2", len(lines))
	}
	if lines[0]["eventName"] != "ListBuckets" || lines[1]["userName"] != "mallory" {
		t.Errorf("unexpected line content: %v / %v", lines[0], lines[1])
	}
	if _, ok := lines[0]["eventTime"]; !ok {
		t.Error("eventTime field missing from JSONL record")
	}
}
