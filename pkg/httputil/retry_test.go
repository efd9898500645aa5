package httputil

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestRetryableError(t *testing.T) {
	err := &RetryableError{Err: ErrNetwork}

	if !isRetryable(err) {
		t.Error("isRetryable should return true for wrapped error")
	}

	// Error message is preserved
	if err.Error() != ErrNetwork.Error() {
		t.Errorf("Error message should be preserved: %s", err.Error())
	}

	// Unwrap reaches the cause
	if !errors.Is(err, ErrNetwork) {
		t.Error("errors.Is should reach the wrapped error")
	}

	// Non-wrapped errors are not retryable
	if isRetryable(ErrNotFound) {
		t.Error("isRetryable should return false for unwrapped error")
	}
}

func TestRetry(t *testing.T) {
	ctx := context.Background()

	// Success on first try
	calls := 0
	err := Retry(ctx, 3, time.Millisecond, func() error {
		calls++
		return nil
	})
	if err != nil {
		t.Errorf("Should succeed: %v", err)
	}
	if calls != 1 {
		t.Errorf("Should call once: %d", calls)
	}

	// Non-retryable error stops immediately
	calls = 0
	err = Retry(ctx, 3, time.Millisecond, func() error {
		calls++
		return ErrNotFound
	})
	if err != ErrNotFound {
		t.Errorf("Should return non-retryable error: %v", err)
	}
	if calls != 1 {
		t.Errorf("Should not retry non-retryable error: %d", calls)
	}

	// Retryable error triggers retries
	calls = 0
	err = Retry(ctx, 3, time.Millisecond, func() error {
		calls++
		if calls < 2 {
			return &RetryableError{Err: ErrNetwork}
		}
		return nil
	})
	if err != nil {
		t.Errorf("Should succeed after retry: %v", err)
	}
	if calls != 2 {
		t.Errorf("Should retry once: %d", calls)
	}

	// All attempts exhausted returns last error
	calls = 0
	err = Retry(ctx, 3, time.Millisecond, func() error {
		calls++
		return &RetryableError{Err: ErrNetwork}
	})
	if !errors.Is(err, ErrNetwork) {
		t.Errorf("Should return last error: %v", err)
	}
	if calls != 3 {
		t.Errorf("Should exhaust all attempts: %d", calls)
	}
}

func TestRetryContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel() // Cancel immediately

	err := Retry(ctx, 3, time.Millisecond, func() error {
		return &RetryableError{Err: ErrNetwork}
	})
	if err != context.Canceled {
		t.Errorf("Should return context error: %v", err)
	}
}

func TestRetryAtLeastOneAttempt(t *testing.T) {
	calls := 0
	err := Retry(context.Background(), 0, time.Millisecond, func() error {
		calls++
		return nil
	})
	if err != nil {
		t.Errorf("Should succeed: %v", err)
	}
	if calls != 1 {
		t.Errorf("attempts below 1 should still run once: %d", calls)
	}
}
