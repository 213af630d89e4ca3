package providers

import (
	"context"
	"errors"

	"CloudSentry/core"
)

// Common errors
var (
	ErrFetchFailed     = errors.New("failed to fetch logs from provider")
	ErrUnknownProvider = errors.New("unknown log provider")
)

// Provider is a log source collaborator: anything that can produce a
// normalized sequence of audit event records (object-storage fetcher,
// local file loader, demo generator).
type Provider interface {
	// Name returns the provider identity (e.g. "aws", "gcp", "csv")
	Name() string

	// CacheKey returns the cache key for this provider's fetch, built
	// from the provider identity and its fetch parameters
	CacheKey() string

	// Fetch retrieves and normalizes the provider's records. It returns
	// an error only on total failure; a degraded fetch that served
	// fallback data instead is reported through the result.
	Fetch(ctx context.Context) (*FetchResult, error)
}

// FetchResult is the outcome of a successful (possibly degraded) fetch.
// Callers can distinguish "used fallback data" from a clean fetch
// without inspecting error values.
type FetchResult struct {
	// Records is the normalized event collection, sorted chronologically.
	// A well-defined empty collection means the source had no data.
	Records core.Events

	// Fallback is true when the primary source was unreachable and a
	// known-safe local dataset was served instead
	Fallback bool

	// FallbackReason describes why the fallback was used
	FallbackReason string

	// Skipped counts raw records dropped because their timestamp or
	// structure could not be normalized
	Skipped int
}

// Empty reports whether the fetch yielded no records. Callers use this
// to terminate the interaction cycle early with a "no data" state
// instead of running the filter chain over nothing.
func (r *FetchResult) Empty() bool {
	return len(r.Records) == 0
}
