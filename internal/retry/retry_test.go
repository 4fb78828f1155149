package retry

import (
	"context"
	"errors"
	"testing"
	"time"
)

// fastPolicy keeps retry tests quick while exercising the real loop.
func fastPolicy() Policy {
	return Policy{
		MaxRetries: 3,
		BaseDelay:  time.Millisecond,
		MaxDelay:   5 * time.Millisecond,
	}
}

func TestDo_SucceedsFirstAttempt(t *testing.T) {
	calls := 0
	got, err := Do(context.Background(), fastPolicy(), func(ctx context.Context) (string, error) {
		calls++
		return "ok", nil
	})
	if err != nil {
		t.Fatalf("Do returned error: %v", err)
	}
	if got != "ok" {
		t.Errorf("Do = %q, want %q", got, "ok")
	}
	if calls != 1 {
		t.Errorf("op invoked %d times, want 1", calls)
	}
}

func TestDo_RetriesTransientThenSucceeds(t *testing.T) {
	calls := 0
	got, err := Do(context.Background(), fastPolicy(), func(ctx context.Context) (string, error) {
		calls++
		if calls < 3 {
			return "", &UpstreamError{Code: 503, Err: errors.New("service unavailable")}
		}
		return "recovered", nil
	})
	if err != nil {
		t.Fatalf("Do returned error: %v", err)
	}
	if got != "recovered" {
		t.Errorf("Do = %q, want %q", got, "recovered")
	}
	if calls != 3 {
		t.Errorf("op invoked %d times, want 3 (fail, fail, succeed)", calls)
	}
}

func TestDo_RetriesRateLimit(t *testing.T) {
	calls := 0
	_, err := Do(context.Background(), fastPolicy(), func(ctx context.Context) (string, error) {
		calls++
		if calls < 2 {
			return "", &RateLimitError{Err: errors.New("429 too many requests")}
		}
		return "ok", nil
	})
	if err != nil {
		t.Fatalf("Do returned error: %v", err)
	}
	if calls != 2 {
		t.Errorf("op invoked %d times, want 2", calls)
	}
}

func TestDo_FatalErrorNotRetried(t *testing.T) {
	fatal := errors.New("invalid request")
	calls := 0
	_, err := Do(context.Background(), fastPolicy(), func(ctx context.Context) (string, error) {
		calls++
		return "", fatal
	})
	if err != fatal {
		t.Errorf("Do error = %v, want the fatal error unchanged", err)
	}
	if calls != 1 {
		t.Errorf("op invoked %d times, want 1 (no retry on fatal errors)", calls)
	}
}

func TestDo_NonTransientStatusNotRetried(t *testing.T) {
	calls := 0
	_, err := Do(context.Background(), fastPolicy(), func(ctx context.Context) (string, error) {
		calls++
		return "", &UpstreamError{Code: 404, Err: errors.New("not found")}
	})
	if err == nil {
		t.Fatal("Do should return the error")
	}
	if calls != 1 {
		t.Errorf("op invoked %d times, want 1 (404 is not transient)", calls)
	}
}

func TestDo_ExhaustionReturnsLastErrorUnchanged(t *testing.T) {
	last := &UpstreamError{Code: 500, Err: errors.New("final failure")}
	policy := fastPolicy()
	calls := 0
	_, err := Do(context.Background(), policy, func(ctx context.Context) (string, error) {
		calls++
		return "", last
	})
	if err != error(last) {
		t.Errorf("Do error = %v, want the last error with its original type", err)
	}
	if calls != policy.MaxRetries+1 {
		t.Errorf("op invoked %d times, want %d", calls, policy.MaxRetries+1)
	}
	var ue *UpstreamError
	if !errors.As(err, &ue) || ue.Code != 500 {
		t.Error("the returned error should keep its concrete type and status code")
	}
}

func TestDo_ContextCancelledDuringBackoff(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	policy := Policy{MaxRetries: 3, BaseDelay: 10 * time.Second, MaxDelay: 10 * time.Second}
	calls := 0
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	_, err := Do(ctx, policy, func(opCtx context.Context) (string, error) {
		calls++
		return "", &UpstreamError{Code: 503}
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Do error = %v, want context.Canceled", err)
	}
	if calls != 1 {
		t.Errorf("op invoked %d times, want 1 (cancelled during first backoff)", calls)
	}
}

func TestDelay_ExponentialGrowthAndCap(t *testing.T) {
	p := Policy{BaseDelay: time.Second, MaxDelay: 60 * time.Second}

	cases := []struct {
		attempt int
		want    time.Duration
	}{
		{0, 1 * time.Second},
		{1, 2 * time.Second},
		{2, 4 * time.Second},
		{5, 32 * time.Second},
		{6, 60 * time.Second},
		{10, 60 * time.Second},
	}
	for _, tc := range cases {
		got := p.Delay(tc.attempt, false)
		if got != tc.want {
			t.Errorf("Delay(%d) = %s, want %s", tc.attempt, got, tc.want)
		}
	}
}

func TestDelay_RateLimitJitterBounds(t *testing.T) {
	p := Policy{BaseDelay: time.Second, MaxDelay: 60 * time.Second}

	for i := 0; i < 50; i++ {
		d := p.Delay(0, true)
		if d < time.Second || d >= 2*time.Second {
			t.Fatalf("jittered Delay(0) = %s, want in [1s, 2s)", d)
		}
	}
}

func TestDelay_OverflowClampsToMax(t *testing.T) {
	p := Policy{BaseDelay: time.Second, MaxDelay: 60 * time.Second}
	if got := p.Delay(70, false); got != p.MaxDelay {
		t.Errorf("Delay with shift overflow = %s, want the cap %s", got, p.MaxDelay)
	}
}

func TestStatusCode_Extraction(t *testing.T) {
	err := &UpstreamError{Code: 429, Err: errors.New("slow down")}
	code, ok := StatusCode(err)
	if !ok || code != 429 {
		t.Errorf("StatusCode = %d, %t, want 429, true", code, ok)
	}

	if _, ok := StatusCode(errors.New("plain")); ok {
		t.Error("plain errors should not expose a status code")
	}
}

func TestIsRateLimit_Wrapped(t *testing.T) {
	inner := &RateLimitError{Err: errors.New("429")}
	wrapped := errors.Join(errors.New("outer"), inner)
	if !IsRateLimit(wrapped) {
		t.Error("IsRateLimit should find a RateLimitError anywhere in the chain")
	}
	if IsRateLimit(errors.New("other")) {
		t.Error("IsRateLimit should be false for unrelated errors")
	}
}
