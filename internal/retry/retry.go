package retry

import (
	"context"
	"math"
	"math/rand"
	"time"

	"CloudSentry/internal/logger"
)

// DefaultConfig provides default configuration for retry operations
var DefaultConfig = Config{
	MaxAttempts:         4,
	InitialBackoff:      200 * time.Millisecond,
	MaxBackoff:          5 * time.Second,
	BackoffFactor:       2.0,
	RandomizationFactor: 0.5,
}

// Config configures the retry behavior
type Config struct {
	// MaxAttempts is the maximum number of attempts including the first attempt
	MaxAttempts int

	// InitialBackoff is the initial backoff duration
	InitialBackoff time.Duration

	// MaxBackoff is the maximum backoff duration
	MaxBackoff time.Duration

	// BackoffFactor is the factor by which the backoff increases
	BackoffFactor float64

	// RandomizationFactor is the factor by which the backoff is randomized
	RandomizationFactor float64
}

// Do executes the given function with retry logic and respects context
// cancellation, both between attempts and while backing off.
func Do(ctx context.Context, operation string, fn func() error) error {
	return DoWithConfig(ctx, operation, DefaultConfig, fn)
}

// DoWithConfig executes the given function with retry logic using the
// provided config and respects context cancellation.
func DoWithConfig(ctx context.Context, operation string, config Config, fn func() error) error {
	r := rand.New(rand.NewSource(time.Now().UnixNano()))

	var err error
	for attempt := 1; attempt <= config.MaxAttempts; attempt++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		err = fn()
		if err == nil {
			return nil
		}

		if attempt == config.MaxAttempts {
			logger.Error("Failed %s after %d attempts: %v", operation, attempt, err)
			return err
		}

		backoff := calculateBackoff(attempt, config, r)
		logger.Warn("Retrying %s (attempt %d/%d) after %v: %v",
			operation, attempt, config.MaxAttempts, backoff, err)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
	}

	return err
}

// calculateBackoff calculates the backoff duration for a given attempt
func calculateBackoff(attempt int, config Config, r *rand.Rand) time.Duration {
	backoff := float64(config.InitialBackoff) * math.Pow(config.BackoffFactor, float64(attempt-1))

	// Spread attempts out by a randomized delta around the base backoff
	delta := config.RandomizationFactor * backoff
	min := backoff - delta
	max := backoff + delta
	backoff = min + (max-min)*r.Float64()

	if backoff > float64(config.MaxBackoff) {
		backoff = float64(config.MaxBackoff)
	}

	return time.Duration(backoff)
}
