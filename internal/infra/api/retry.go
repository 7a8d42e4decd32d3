package api

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/sethvargo/go-retry"
)

// MaxRetryAttempts is the number of retries ShouldRetry grants at most.
const MaxRetryAttempts = 3

var notFoundStatus = strconv.Itoa(http.StatusNotFound)

// ShouldRetry decides whether a failed call deserves another attempt.
// failureCount is the number of failures before err (0 on the first one).
// Only server error envelopes other than "not found" are retried.
func ShouldRetry(failureCount int, err error) bool {
	fe, ok := AsFetchError(err)
	if !ok || fe.Tag() != TagAPIResponse {
		return false
	}
	apiErr, ok := fe.(*APIResponseError)
	if !ok || apiErr.Response.StatusCode == notFoundStatus {
		return false
	}
	return failureCount < MaxRetryAttempts
}

// RetryConfig defines the backoff between attempts.
type RetryConfig struct {
	InitialDelay time.Duration `yaml:"initial_delay"`
	MaxDelay     time.Duration `yaml:"max_delay"`
}

// DefaultRetryConfig doubles from one second up to thirty.
var DefaultRetryConfig = RetryConfig{
	InitialDelay: 1 * time.Second,
	MaxDelay:     30 * time.Second,
}

// Retry calls fn until it succeeds or shouldRetry declines, waiting with
// exponential backoff between attempts. A nil shouldRetry means ShouldRetry.
func Retry[T any](
	ctx context.Context,
	cfg RetryConfig,
	shouldRetry func(failureCount int, err error) bool,
	fn func(ctx context.Context) (T, error),
) (T, error) {
	if shouldRetry == nil {
		shouldRetry = ShouldRetry
	}

	initial := cfg.InitialDelay
	if initial <= 0 {
		initial = time.Millisecond
	}
	backoff := retry.NewExponential(initial)
	if cfg.MaxDelay > 0 {
		backoff = retry.WithCappedDuration(cfg.MaxDelay, backoff)
	}

	var value T
	failures := 0
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		v, err := fn(ctx)
		if err == nil {
			value = v
			return nil
		}

		count := failures
		failures++
		if shouldRetry(count, err) {
			return retry.RetryableError(err)
		}
		return err
	})
	return value, err
}
