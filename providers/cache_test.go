package providers

import (
	"context"
	"errors"
	"testing"
	"time"

	"CloudSentry/core"
)

// countingProvider records how many times Fetch runs. failures sets how
// many initial calls return an error before succeeding.
type countingProvider struct {
	key      string
	calls    int
	failures int
}

func (p *countingProvider) Name() string     { return "counting" }
func (p *countingProvider) CacheKey() string { return p.key }

func (p *countingProvider) Fetch(ctx context.Context) (*FetchResult, error) {
	p.calls++
	if p.calls <= p.failures {
		return nil, errors.New("source unavailable")
	}
	return &FetchResult{
		Records: core.Events{
			core.NewEventRecord(time.Date(2025, time.December, 10, 9, 0, 0, 0, time.UTC), "ListBuckets", "alice", "", "", ""),
		},
	}, nil
}

func TestCacheFetchesOnce(t *testing.T) {
	cache := NewCache()
	p := &countingProvider{key: "test:one"}

	for i := 0; i < 3; i++ {
		result, err := cache.Fetch(context.Background(), p)
		if err != nil {
			t.Fatalf("Fetch %d failed: %v", i, err)
		}
		if len(result.Records) != 1 {
			t.Fatalf("Fetch %d returned %d records", i, len(result.Records))
		}
	}

	if p.calls != 1 {
		t.Errorf("provider fetched %d times, want 1", p.calls)
	}
	if cache.Len() != 1 {
		t.Errorf("cache Len() = %d, want 1", cache.Len())
	}
}

func TestCacheKeysAreIndependent(t *testing.T) {
	cache := NewCache()
	a := &countingProvider{key: "test:a"}
	b := &countingProvider{key: "test:b"}

	if _, err := cache.Fetch(context.Background(), a); err != nil {
		t.Fatalf("Fetch a failed: %v", err)
	}
	if _, err := cache.Fetch(context.Background(), b); err != nil {
		t.Fatalf("Fetch b failed: %v", err)
	}

	if a.calls != 1 || b.calls != 1 {
		t.Errorf("calls = %d/%d, want 1/1", a.calls, b.calls)
	}
	if cache.Len() != 2 {
		t.Errorf("cache Len() = %d, want 2", cache.Len())
	}
}

func TestCacheDoesNotCacheErrors(t *testing.T) {
	cache := NewCache()
	p := &countingProvider{key: "test:flaky", failures: 1}

	if _, err := cache.Fetch(context.Background(), p); err == nil {
		t.Fatal("expected first fetch to fail")
	}
	if cache.Len() != 0 {
		t.Fatalf("failed fetch was cached, Len() = %d", cache.Len())
	}

	result, err := cache.Fetch(context.Background(), p)
	if err != nil {
		t.Fatalf("second fetch failed: %v", err)
	}
	if len(result.Records) != 1 {
		t.Errorf("got %d records, want 1", len(result.Records))
	}
	if p.calls != 2 {
		t.Errorf("provider fetched %d times, want 2", p.calls)
	}
}
