package resilience

import (
	"context"
	"errors"
	"testing"
	"time"
)

func fastPolicy() Policy {
	return Policy{
		MaxAttempts:    3,
		InitialBackoff: time.Millisecond,
		MaxBackoff:     2 * time.Millisecond,
		Multiplier:     2.0,
		BreakerEnabled: false,
	}
}

func retryAll(error) Verdict { return Verdict{Retryable: true, CountsAsFailure: true} }

func TestDoRetriesUntilSuccess(t *testing.T) {
	calls := 0
	err := NewExecutor(fastPolicy()).Do(context.Background(), "op", retryAll, func(context.Context) error {
		calls++
		if calls < 3 {
			return errors.New("transient")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Do() error = %v", err)
	}
	if calls != 3 {
		t.Fatalf("calls = %d, want 3", calls)
	}
}

func TestDoStopsOnNonRetryable(t *testing.T) {
	calls := 0
	classify := func(error) Verdict { return Verdict{Retryable: false, CountsAsFailure: true} }
	err := NewExecutor(fastPolicy()).Do(context.Background(), "op", classify, func(context.Context) error {
		calls++
		return errors.New("fatal")
	})
	if err == nil {
		t.Fatalf("expected error")
	}
	if calls != 1 {
		t.Fatalf("calls = %d, want 1", calls)
	}
}

func TestDoReportsOutcomesToObserver(t *testing.T) {
	type call struct {
		operation string
		failed    bool
	}
	var calls []call

	executor := NewExecutor(fastPolicy())
	executor.SetObserver(func(operation string, err error, elapsed time.Duration) {
		if elapsed < 0 {
			t.Fatalf("elapsed = %v", elapsed)
		}
		calls = append(calls, call{operation: operation, failed: err != nil})
	})

	if err := executor.Do(context.Background(), "llm.complete", nil, func(context.Context) error {
		return nil
	}); err != nil {
		t.Fatalf("Do() error = %v", err)
	}
	classify := func(error) Verdict { return Verdict{Retryable: false, CountsAsFailure: true} }
	if err := executor.Do(context.Background(), "store.search", classify, func(context.Context) error {
		return errors.New("down")
	}); err == nil {
		t.Fatalf("expected error")
	}

	want := []call{
		{operation: "llm.complete", failed: false},
		{operation: "store.search", failed: true},
	}
	if len(calls) != len(want) {
		t.Fatalf("observer calls = %+v", calls)
	}
	for i := range want {
		if calls[i] != want[i] {
			t.Fatalf("observer call %d = %+v, want %+v", i, calls[i], want[i])
		}
	}
}

func TestDoHonorsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	err := NewExecutor(fastPolicy()).Do(ctx, "op", retryAll, func(context.Context) error {
		calls++
		return errors.New("transient")
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if calls != 0 {
		t.Fatalf("calls = %d, want 0", calls)
	}
}

func TestBreakerOpensAfterFailures(t *testing.T) {
	policy := fastPolicy()
	policy.MaxAttempts = 1
	policy.BreakerEnabled = true
	policy.BreakerMinRequests = 2
	policy.BreakerFailureRatio = 0.5
	executor := NewExecutor(policy)

	fail := func(context.Context) error { return errors.New("down") }
	for range 3 {
		_ = executor.Do(context.Background(), "op", retryAll, fail)
	}

	err := executor.Do(context.Background(), "op", retryAll, fail)
	if !IsCircuitOpen(err) {
		t.Fatalf("expected open circuit, got %v", err)
	}
}
