package fanout

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

func TestMap_PreservesInputOrder(t *testing.T) {
	items := []int{0, 1, 2, 3, 4, 5, 6, 7}

	// Later items finish first; the output must still follow input order.
	got, err := Map(context.Background(), 4, items, func(ctx context.Context, n int) (*string, error) {
		time.Sleep(time.Duration(len(items)-n) * 5 * time.Millisecond)
		s := fmt.Sprintf("item-%d", n)
		return &s, nil
	})
	if err != nil {
		t.Fatalf("Map returned error: %v", err)
	}
	if len(got) != len(items) {
		t.Fatalf("got %d results, want %d", len(got), len(items))
	}
	for i, s := range got {
		want := fmt.Sprintf("item-%d", i)
		if s != want {
			t.Errorf("result %d = %q, want %q", i, s, want)
		}
	}
}

func TestMap_FiltersNilResults(t *testing.T) {
	items := []int{1, 2, 3, 4, 5}

	got, err := Map(context.Background(), 2, items, func(ctx context.Context, n int) (*int, error) {
		if n%2 == 0 {
			return nil, nil
		}
		return &n, nil
	})
	if err != nil {
		t.Fatalf("Map returned error: %v", err)
	}
	want := []int{1, 3, 5}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("result %d = %d, want %d", i, got[i], want[i])
		}
	}
}

func TestMap_RespectsConcurrencyLimit(t *testing.T) {
	const limit = 3
	items := make([]int, 20)

	var inFlight, peak int64
	_, err := Map(context.Background(), limit, items, func(ctx context.Context, n int) (*int, error) {
		cur := atomic.AddInt64(&inFlight, 1)
		for {
			old := atomic.LoadInt64(&peak)
			if cur <= old || atomic.CompareAndSwapInt64(&peak, old, cur) {
				break
			}
		}
		time.Sleep(10 * time.Millisecond)
		atomic.AddInt64(&inFlight, -1)
		return &n, nil
	})
	if err != nil {
		t.Fatalf("Map returned error: %v", err)
	}
	if p := atomic.LoadInt64(&peak); p > limit {
		t.Errorf("peak concurrency = %d, want <= %d", p, limit)
	}
}

func TestMap_FirstErrorWins(t *testing.T) {
	boom := errors.New("operation failed")
	items := []int{0, 1, 2, 3}

	got, err := Map(context.Background(), 2, items, func(ctx context.Context, n int) (*int, error) {
		if n == 1 {
			return nil, boom
		}
		return &n, nil
	})
	if !errors.Is(err, boom) {
		t.Fatalf("Map error = %v, want %v", err, boom)
	}
	if got != nil {
		t.Errorf("results on error = %v, want nil", got)
	}
}

func TestMap_ErrorCancelsSiblings(t *testing.T) {
	items := []int{0, 1, 2, 3, 4, 5, 6, 7}

	var cancelled int64
	_, err := Map(context.Background(), 2, items, func(ctx context.Context, n int) (*int, error) {
		if n == 0 {
			return nil, errors.New("early failure")
		}
		select {
		case <-ctx.Done():
			atomic.AddInt64(&cancelled, 1)
			return nil, ctx.Err()
		case <-time.After(500 * time.Millisecond):
			return &n, nil
		}
	})
	if err == nil {
		t.Fatal("Map should return the first error")
	}
	if !strings.Contains(err.Error(), "early failure") {
		t.Errorf("Map error = %v, want the original failure", err)
	}
}

func TestMap_EmptyInput(t *testing.T) {
	got, err := Map(context.Background(), 4, nil, func(ctx context.Context, n int) (*int, error) {
		return &n, nil
	})
	if err != nil {
		t.Fatalf("Map on empty input returned error: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("Map on empty input = %v, want empty", got)
	}
}

func TestMap_ZeroLimitUsesDefault(t *testing.T) {
	items := []int{1, 2, 3}
	got, err := Map(context.Background(), 0, items, func(ctx context.Context, n int) (*int, error) {
		return &n, nil
	})
	if err != nil {
		t.Fatalf("Map returned error: %v", err)
	}
	if len(got) != 3 {
		t.Errorf("got %d results, want 3", len(got))
	}
}
