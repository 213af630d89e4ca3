package providers

import (
	"errors"
	"testing"
	"time"
)

func TestParseEventTime(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  string // RFC3339 in UTC
	}{
		{"rfc3339 zulu", "2025-12-15T08:00:00Z", "2025-12-15T08:00:00Z"},
		{"rfc3339 offset", "2025-12-15T10:00:00+02:00", "2025-12-15T08:00:00Z"},
		{"no zone", "2025-12-15T08:00:00", "2025-12-15T08:00:00Z"},
		{"space separator", "2025-12-15 08:00:00", "2025-12-15T08:00:00Z"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseEventTime(tt.value)
			if err != nil {
				t.Fatalf("ParseEventTime(%q) failed: %v", tt.value, err)
			}
			want, _ := time.Parse(time.RFC3339, tt.want)
			if !got.Equal(want) {
				t.Errorf("ParseEventTime(%q) = %v, want %v", tt.value, got, want)
			}
			if got.Location() != time.UTC {
				t.Errorf("ParseEventTime(%q) not normalized to UTC: %v", tt.value, got.Location())
			}
		})
	}
}

func TestParseEventTimeFailures(t *testing.T) {
	for _, value := range []string{"", "not-a-time", "15/12/2025"} {
		_, err := ParseEventTime(value)
		if !errors.Is(err, ErrUnparseableTime) {
			t.Errorf("ParseEventTime(%q) error = %v, want ErrUnparseableTime", value, err)
		}
	}
}

func TestNormalizeCloudTrailRecord(t *testing.T) {
	raw := map[string]interface{}{
		"eventTime":       "2025-12-10T11:02:19Z",
		"eventName":       "DeleteBucket",
		"sourceIPAddress": "203.0.113.77",
		"eventSource":     "s3.amazonaws.com",
		"userAgent":       "aws-cli/2.17.0",
		"userIdentity": map[string]interface{}{
			"userName": "mallory",
		},
	}

	rec, err := NormalizeCloudTrailRecord(raw, DefaultUserUnknown)
	if err != nil {
		t.Fatalf("NormalizeCloudTrailRecord failed: %v", err)
	}

	if rec.EventName != "DeleteBucket" {
		t.Errorf("EventName = %q", rec.EventName)
	}
	if rec.UserName != "mallory" {
		t.Errorf("UserName = %q", rec.UserName)
	}
	if rec.SourceIPAddress != "203.0.113.77" || rec.EventSource != "s3.amazonaws.com" || rec.UserAgent != "aws-cli/2.17.0" {
		t.Errorf("passthrough fields wrong: %+v", rec)
	}
	if rec.EventTime.Location() != time.UTC {
		t.Errorf("EventTime not UTC: %v", rec.EventTime)
	}
}

func TestNormalizeCloudTrailRecordDefaultsUser(t *testing.T) {
	tests := []struct {
		name string
		raw  map[string]interface{}
	}{
		{"no identity block", map[string]interface{}{
			"eventTime": "2025-12-10T11:02:19Z",
			"eventName": "ListBuckets",
		}},
		{"identity without user name", map[string]interface{}{
			"eventTime":    "2025-12-10T11:02:19Z",
			"eventName":    "ListBuckets",
			"userIdentity": map[string]interface{}{"type": "AWSService"},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, err := NormalizeCloudTrailRecord(tt.raw, DefaultUserUnknown)
			if err != nil {
				t.Fatalf("NormalizeCloudTrailRecord failed: %v", err)
			}
			if rec.UserName != DefaultUserUnknown {
				t.Errorf("UserName = %q, want %q", rec.UserName, DefaultUserUnknown)
			}
		})
	}
}

func TestNormalizeCloudTrailRecordLeavesAbsentFieldsUnset(t *testing.T) {
	raw := map[string]interface{}{
		"eventTime": "2025-12-10T11:02:19Z",
		"eventName": "ListBuckets",
	}

	rec, err := NormalizeCloudTrailRecord(raw, DefaultUserUnknown)
	if err != nil {
		t.Fatalf("NormalizeCloudTrailRecord failed: %v", err)
	}
	if rec.SourceIPAddress != "" || rec.EventSource != "" || rec.UserAgent != "" {
		t.Errorf("absent fields defaulted: %+v", rec)
	}
}

func TestNormalizeCloudTrailRecordRejectsBadTime(t *testing.T) {
	raw := map[string]interface{}{
		"eventTime": "garbage",
		"eventName": "ListBuckets",
	}

	if _, err := NormalizeCloudTrailRecord(raw, DefaultUserUnknown); !errors.Is(err, ErrUnparseableTime) {
		t.Fatalf("error = %v, want ErrUnparseableTime", err)
	}
}
