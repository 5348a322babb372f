package graph

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medconnect/graphd/internal/types"
)

func testPolicy(delays *[]time.Duration) retryPolicy {
	p := defaultRetryPolicy()
	p.sleep = func(ctx context.Context, d time.Duration) error {
		*delays = append(*delays, d)
		return nil
	}
	return p
}

func TestRetryPolicy_TransientRetriedThenSucceeds(t *testing.T) {
	var delays []time.Duration
	p := testPolicy(&delays)

	attempts := 0
	err := p.Do(context.Background(), func() error {
		attempts++
		if attempts == 1 {
			return errors.New("ServiceUnavailable: no available servers")
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 2, attempts)
	assert.Equal(t, []time.Duration{200 * time.Millisecond}, delays)
}

func TestRetryPolicy_ExhaustsAfterThreeAttempts(t *testing.T) {
	var delays []time.Duration
	p := testPolicy(&delays)

	attempts := 0
	transient := errors.New("SessionExpired: session no longer valid")
	err := p.Do(context.Background(), func() error {
		attempts++
		return transient
	})

	require.Error(t, err)
	assert.Equal(t, transient, err)
	assert.Equal(t, 3, attempts)
	// First attempt immediate, then exponential backoff.
	assert.Equal(t, []time.Duration{200 * time.Millisecond, 400 * time.Millisecond}, delays)
}

func TestRetryPolicy_PermanentFailsImmediately(t *testing.T) {
	var delays []time.Duration
	p := testPolicy(&delays)

	attempts := 0
	permanent := errors.New("Neo.ClientError.Statement.SyntaxError: invalid input")
	err := p.Do(context.Background(), func() error {
		attempts++
		return permanent
	})

	require.Error(t, err)
	assert.Equal(t, 1, attempts)
	assert.Empty(t, delays)
}

func TestRetryPolicy_ContextCancelledDuringBackoff(t *testing.T) {
	p := defaultRetryPolicy()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := p.Do(ctx, func() error {
		return errors.New("connection refused")
	})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestIsTransient(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil error", nil, false},
		{"service unavailable", errors.New("ServiceUnavailable"), true},
		{"session expired", errors.New("SessionExpired"), true},
		{"transient error code", errors.New("Neo.TransientError.General.TransactionMemoryLimit"), true},
		{"connection reset", errors.New("read tcp: connection reset by peer"), true},
		{"connection refused", errors.New("dial tcp: connection refused"), true},
		{"unexpected EOF", errors.New("unexpected EOF"), true},
		{"retryable coded error", types.NewRetryableError(ErrCodeGraphQueryFailed, "flaky"), true},
		{"syntax error", errors.New("Neo.ClientError.Statement.SyntaxError"), false},
		{"constraint violation", errors.New("Neo.ClientError.Schema.ConstraintValidationFailed"), false},
		{"plain error", errors.New("something else"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isTransient(tt.err))
		})
	}
}
