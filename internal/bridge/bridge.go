// Package bridge runs asynchronous operations to completion on behalf of
// blocking call sites. It is the single chokepoint between channel-based
// asynchronous providers and code that needs a plain result, and the only
// layer in the system that enforces a timeout.
package bridge

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrTimeout is matched by errors.Is for any bridge timeout.
var ErrTimeout = errors.New("bridge: operation timed out")

// TimeoutError is returned when an operation exceeds its deadline. The
// abandoned operation is cancelled through its context but is not forcibly
// stopped; it may continue running in the background.
type TimeoutError struct {
	// Timeout is the configured deadline that was exceeded.
	Timeout time.Duration
}

// Error implements the error interface.
func (e *TimeoutError) Error() string {
	return fmt.Sprintf("bridge: operation timed out after %s", e.Timeout)
}

// Is reports whether target is ErrTimeout.
func (e *TimeoutError) Is(target error) bool {
	return target == ErrTimeout
}

// Result carries an operation's outcome across the goroutine boundary.
// Errors travel explicitly in the slot rather than by panic propagation,
// so the caller sees exactly the value or error the operation produced.
type Result[T any] struct {
	// Value is the operation's return value when Err is nil.
	Value T
	// Err is the operation's error, preserved with its original type.
	Err error
}

// Run executes op on a dedicated goroutine and blocks until it finishes,
// the timeout elapses, or ctx is cancelled. A timeout of zero means no
// deadline. On timeout the operation's context is cancelled and the caller
// receives a *TimeoutError; the goroutine is abandoned, not killed, so
// cancellation is cooperative and best-effort.
func Run[T any](ctx context.Context, timeout time.Duration, op func(context.Context) (T, error)) (T, error) {
	opCtx, cancel := context.WithCancel(ctx)

	// Buffered so the worker never blocks delivering an abandoned result.
	slot := make(chan Result[T], 1)
	go func() {
		value, err := op(opCtx)
		slot <- Result[T]{Value: value, Err: err}
	}()

	res, err := wait(ctx, timeout, slot)
	if err != nil {
		cancel()
		var zero T
		return zero, err
	}
	cancel()
	return res.Value, res.Err
}

// Await blocks until an already-started operation delivers its result on
// slot, the timeout elapses, or ctx is cancelled. This is how asynchronous
// capability providers are normalized into a uniform blocking call.
func Await[T any](ctx context.Context, timeout time.Duration, slot <-chan Result[T]) (T, error) {
	res, err := wait(ctx, timeout, slot)
	if err != nil {
		var zero T
		return zero, err
	}
	return res.Value, res.Err
}

// wait selects between the result slot, the timeout, and caller cancellation.
func wait[T any](ctx context.Context, timeout time.Duration, slot <-chan Result[T]) (Result[T], error) {
	var timer <-chan time.Time
	if timeout > 0 {
		t := time.NewTimer(timeout)
		defer t.Stop()
		timer = t.C
	}

	select {
	case res := <-slot:
		return res, nil
	case <-timer:
		return Result[T]{}, &TimeoutError{Timeout: timeout}
	case <-ctx.Done():
		return Result[T]{}, ctx.Err()
	}
}
