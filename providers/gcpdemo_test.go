package providers

import (
	"context"
	"testing"
	"time"
)

func TestGCPDemoFetch(t *testing.T) {
	p := NewGCPDemoProvider()
	if p.Name() != "gcp" {
		t.Errorf("Name() = %q", p.Name())
	}
	if p.CacheKey() != "gcp:demo" {
		t.Errorf("CacheKey() = %q", p.CacheKey())
	}

	result, err := p.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if result.Fallback {
		t.Error("Fallback set on demo fetch")
	}
	if len(result.Records) != 3 {
		t.Fatalf("got %d records, want 3", len(result.Records))
	}

	base := time.Date(2025, time.December, 15, 8, 0, 0, 0, time.UTC)
	want := []struct {
		eventName string
		userName  string
		source    string
		at        time.Time
	}{
		{"instances.start", "user1", "compute.googleapis.com", base},
		{"buckets.delete", "admin1", "storage.googleapis.com", base.Add(5 * time.Minute)},
		{"loginFailed", "user2", "iam.googleapis.com", base.Add(10 * time.Minute)},
	}

	for i, w := range want {
		rec := result.Records[i]
		if rec.EventName != w.eventName || rec.UserName != w.userName || rec.EventSource != w.source {
			t.Errorf("record %d = %s/%s/%s, want %s/%s/%s",
				i, rec.EventName, rec.UserName, rec.EventSource, w.eventName, w.userName, w.source)
		}
		if !rec.EventTime.Equal(w.at) {
			t.Errorf("record %d time = %v, want %v", i, rec.EventTime, w.at)
		}
		if rec.SourceIPAddress != "" || rec.UserAgent != "" {
			t.Errorf("record %d carries fields the demo schema omits: %+v", i, rec)
		}
	}
}
