package providers

import (
	"context"
	"time"

	"CloudSentry/core"
)

// GCPDemoProvider is a synthetic GCP audit-log source, a placeholder
// until real GCP log ingestion lands. It yields a small fixed dataset
// covering a compute start, a storage deletion, and a failed login.
type GCPDemoProvider struct{}

// NewGCPDemoProvider creates the demo provider
func NewGCPDemoProvider() *GCPDemoProvider {
	return &GCPDemoProvider{}
}

// Name returns the provider identity
func (p *GCPDemoProvider) Name() string {
	return "gcp"
}

// CacheKey returns the cache key for this provider's fetch
func (p *GCPDemoProvider) CacheKey() string {
	return "gcp:demo"
}

// Fetch returns the fixed demo dataset. The records carry no source IP
// or user agent: the demo schema is deliberately minimal and downstream
// consumers must tolerate the absence.
func (p *GCPDemoProvider) Fetch(ctx context.Context) (*FetchResult, error) {
	base := time.Date(2025, time.December, 15, 8, 0, 0, 0, time.UTC)

	records := core.Events{
		core.NewEventRecord(base, "instances.start", "user1", "", "compute.googleapis.com", ""),
		core.NewEventRecord(base.Add(5*time.Minute), "buckets.delete", "admin1", "", "storage.googleapis.com", ""),
		core.NewEventRecord(base.Add(10*time.Minute), "loginFailed", "user2", "", "iam.googleapis.com", ""),
	}

	return &FetchResult{Records: records}, nil
}
