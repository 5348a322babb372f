package graph

import (
	"context"
	"strings"
	"time"

	"github.com/medconnect/graphd/internal/types"
)

// retryPolicy bounds retries of transiently-failed graph operations.
// The first attempt runs immediately; each retry waits BaseDelay doubled per
// attempt (200ms, then 400ms with the defaults).
type retryPolicy struct {
	MaxAttempts int
	BaseDelay   time.Duration

	// sleep is swappable in tests.
	sleep func(ctx context.Context, d time.Duration) error
}

func defaultRetryPolicy() retryPolicy {
	return retryPolicy{
		MaxAttempts: 3,
		BaseDelay:   200 * time.Millisecond,
		sleep:       sleepCtx,
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Do runs fn up to MaxAttempts times. Only errors classified as transient are
// retried; permanent errors propagate immediately. After the attempt ceiling
// the last transient error is surfaced.
func (p retryPolicy) Do(ctx context.Context, fn func() error) error {
	var lastErr error
	delay := p.BaseDelay
	for attempt := 1; attempt <= p.MaxAttempts; attempt++ {
		if attempt > 1 {
			if err := p.sleep(ctx, delay); err != nil {
				return err
			}
			delay *= 2
		}

		err := fn()
		if err == nil {
			return nil
		}
		if !isTransient(err) {
			return err
		}
		lastErr = err
	}
	return lastErr
}

// transientMarkers are substrings of error texts that indicate a failure worth
// retrying: connectivity loss, service unavailability, and session expiry.
var transientMarkers = []string{
	"ServiceUnavailable",
	"SessionExpired",
	"Neo.TransientError",
	"ConnectivityError",
	"connection reset",
	"connection refused",
	"broken pipe",
	"i/o timeout",
	"EOF",
}

// isTransient classifies an error as transient (retryable) or permanent.
// Malformed queries, constraint violations, and all other client errors are
// permanent and must surface immediately.
func isTransient(err error) bool {
	if err == nil {
		return false
	}
	if types.IsRetryable(err) {
		return true
	}
	msg := err.Error()
	for _, marker := range transientMarkers {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}
