package retry

import (
	"context"
	"errors"
	"testing"
	"time"
)

func fastConfig() *Config {
	return &Config{
		MaxRetries:    3,
		BackoffFactor: 2.0,
		InitialDelay:  time.Millisecond,
		MaxDelay:      5 * time.Millisecond,
		Jitter:        time.Millisecond,
	}
}

func TestRetry_SuccessOnFirstTry(t *testing.T) {
	ctx := context.Background()
	retrier := NewRetrier(fastConfig())

	counter := 0
	err := retrier.Do(ctx, func(attempt int) error {
		counter++
		return nil
	}, nil)

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if counter != 1 {
		t.Errorf("expected 1 attempt, got %d", counter)
	}
}

func TestRetry_SuccessAfterRetries(t *testing.T) {
	ctx := context.Background()
	retrier := NewRetrier(fastConfig())

	counter := 0
	var attempts []int
	err := retrier.Do(ctx, func(attempt int) error {
		counter++
		attempts = append(attempts, attempt)
		if counter < 3 {
			return errors.New("temporary error")
		}
		return nil
	}, nil)

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if counter != 3 {
		t.Errorf("expected 3 attempts, got %d", counter)
	}
	for i, a := range attempts {
		if a != i {
			t.Errorf("attempt index = %d, want %d", a, i)
		}
	}
}

func TestRetry_MaxRetriesExceeded(t *testing.T) {
	ctx := context.Background()
	retrier := NewRetrier(fastConfig())

	expectedErr := errors.New("permanent error")
	counter := 0
	err := retrier.Do(ctx, func(attempt int) error {
		counter++
		return expectedErr
	}, nil)

	if !errors.Is(err, expectedErr) {
		t.Errorf("expected %v, got %v", expectedErr, err)
	}
	if counter != 4 {
		t.Errorf("expected 4 attempts (1 + 3 retries), got %d", counter)
	}
}

func TestRetry_NonRetryableStopsImmediately(t *testing.T) {
	ctx := context.Background()
	retrier := NewRetrier(fastConfig())

	retriableErr := errors.New("throttled")
	fatalErr := errors.New("bad request")

	counter := 0
	err := retrier.Do(ctx, func(attempt int) error {
		counter++
		if counter == 1 {
			return retriableErr
		}
		return fatalErr
	}, func(err error) bool {
		return errors.Is(err, retriableErr)
	})

	if !errors.Is(err, fatalErr) {
		t.Errorf("expected %v, got %v", fatalErr, err)
	}
	if counter != 2 {
		t.Errorf("expected 2 attempts, got %d", counter)
	}
}

func TestRetry_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cfg := fastConfig()
	cfg.InitialDelay = time.Second
	retrier := NewRetrier(cfg)

	counter := 0
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	err := retrier.Do(ctx, func(attempt int) error {
		counter++
		return errors.New("keep trying")
	}, nil)

	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if counter != 1 {
		t.Errorf("expected 1 attempt before cancel, got %d", counter)
	}
}

func TestRetry_DelaysBetweenAttempts(t *testing.T) {
	ctx := context.Background()
	cfg := &Config{
		MaxRetries:    2,
		BackoffFactor: 2.0,
		InitialDelay:  20 * time.Millisecond,
		MaxDelay:      time.Second,
		Jitter:        time.Millisecond,
	}
	retrier := NewRetrier(cfg)

	start := time.Now()
	_ = retrier.Do(ctx, func(attempt int) error {
		return errors.New("always fails")
	}, nil)
	elapsed := time.Since(start)

	// Two inter-attempt sleeps: ~20ms + ~40ms
	if elapsed < 55*time.Millisecond {
		t.Errorf("elapsed = %v, expected at least 55ms of backoff", elapsed)
	}
}
