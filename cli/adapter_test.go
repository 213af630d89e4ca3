package cli

import (
	"errors"
	"testing"
	"time"

	"CloudSentry/filter"
)

func TestToAppConfig(t *testing.T) {
	cliConfig := &Config{
		Provider:        "aws",
		Bucket:          "audit-bucket",
		Prefix:          "AWSLogs/",
		MaxFiles:        25,
		FallbackPath:    "data/aws_logs.csv",
		OutputPath:      "out.csv",
		Format:          "csv",
		Threshold:       5,
		SensitiveEvents: "DeleteBucket, StopLogging",
		CriticalEvents:  "DeleteBucket",
		Verbose:         true,
	}

	appConfig := ToAppConfig(cliConfig)
	if appConfig.Provider != "aws" || appConfig.Bucket != "audit-bucket" {
		t.Errorf("provider settings not carried over: %+v", appConfig)
	}
	if appConfig.AlertThreshold != 5 {
		t.Errorf("AlertThreshold = %d", appConfig.AlertThreshold)
	}
	if len(appConfig.SensitiveEvents) != 2 || appConfig.SensitiveEvents[1] != "StopLogging" {
		t.Errorf("SensitiveEvents = %v", appConfig.SensitiveEvents)
	}
	if len(appConfig.CriticalEvents) != 1 {
		t.Errorf("CriticalEvents = %v", appConfig.CriticalEvents)
	}
}

func TestToCriteria(t *testing.T) {
	cliConfig := &Config{
		StartDate:     "2025-12-01",
		EndDate:       "2025-12-15",
		EventNames:    "DeleteBucket,StopLogging",
		Users:         "mallory , alice",
		SensitiveOnly: true,
	}

	criteria, err := ToCriteria(cliConfig)
	if err != nil {
		t.Fatalf("ToCriteria failed: %v", err)
	}

	wantStart := time.Date(2025, time.December, 1, 0, 0, 0, 0, time.UTC)
	if !criteria.Start.Equal(wantStart) {
		t.Errorf("Start = %v, want %v", criteria.Start, wantStart)
	}
	wantEnd := time.Date(2025, time.December, 15, 0, 0, 0, 0, time.UTC)
	if !criteria.End.Equal(wantEnd) {
		t.Errorf("End = %v, want %v", criteria.End, wantEnd)
	}
	if len(criteria.EventNames) != 2 || len(criteria.Users) != 2 {
		t.Errorf("lists = %v / %v", criteria.EventNames, criteria.Users)
	}
	if criteria.Users[0] != "mallory" || criteria.Users[1] != "alice" {
		t.Errorf("Users not trimmed: %v", criteria.Users)
	}
	if !criteria.SensitiveOnly {
		t.Error("SensitiveOnly not carried over")
	}
}

func TestToCriteriaEmpty(t *testing.T) {
	criteria, err := ToCriteria(&Config{})
	if err != nil {
		t.Fatalf("ToCriteria failed: %v", err)
	}
	if !criteria.IsZero() {
		t.Errorf("criteria = %+v, want zero", criteria)
	}
}

func TestToCriteriaBadDate(t *testing.T) {
	if _, err := ToCriteria(&Config{StartDate: "01/12/2025"}); err == nil {
		t.Fatal("expected error for malformed start date")
	}
	if _, err := ToCriteria(&Config{EndDate: "yesterday"}); err == nil {
		t.Fatal("expected error for malformed end date")
	}
}

func TestToCriteriaInvertedRange(t *testing.T) {
	_, err := ToCriteria(&Config{StartDate: "2025-12-20", EndDate: "2025-12-10"})
	if !errors.Is(err, filter.ErrInvalidDateRange) {
		t.Fatalf("error = %v, want ErrInvalidDateRange", err)
	}
}

func TestSplitList(t *testing.T) {
	tests := []struct {
		value string
		want  []string
	}{
		{"", nil},
		{"a", []string{"a"}},
		{"a,b", []string{"a", "b"}},
		{" a , b ", []string{"a", "b"}},
		{"a,,b,", []string{"a", "b"}},
	}

	for _, tt := range tests {
		got := splitList(tt.value)
		if len(got) != len(tt.want) {
			t.Errorf("splitList(%q) = %v, want %v", tt.value, got, tt.want)
			continue
		}
		for i := range tt.want {
			if got[i] != tt.want[i] {
				t.Errorf("splitList(%q) = %v, want %v", tt.value, got, tt.want)
				break
			}
		}
	}
}
