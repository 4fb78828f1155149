// Package capability defines the provider contract for task execution and
// the registry that resolves task types to providers.
package capability

import (
	"context"
	"time"

	"github.com/calebhart/stepline/internal/bridge"
)

// Provider performs the actual work for one task. Implementations return a
// string, a []string, or nil; the executor normalizes the result. Any error
// is treated as a task failure.
type Provider interface {
	Invoke(ctx context.Context, prompt string, context []string) (any, error)
}

// Func is the synchronous provider variant: a plain blocking callable.
type Func func(ctx context.Context, prompt string, context []string) (any, error)

// Invoke implements Provider.
func (f Func) Invoke(ctx context.Context, prompt string, contextStrs []string) (any, error) {
	return f(ctx, prompt, contextStrs)
}

// AsyncFunc is the asynchronous provider variant. It starts the work and
// returns a channel that delivers exactly one result. The bridge normalizes
// it into the same blocking Invoke contract as Func, so callers never need
// to know which substrate a provider runs on.
type AsyncFunc func(ctx context.Context, prompt string, context []string) <-chan bridge.Result[any]

// Invoke implements Provider by blocking on the result channel through the
// bridge. The zero timeout here means the caller's context is the only
// deadline; per-call timeouts are applied by the executor.
func (f AsyncFunc) Invoke(ctx context.Context, prompt string, contextStrs []string) (any, error) {
	return bridge.Await(ctx, 0, f(ctx, prompt, contextStrs))
}

// WithTimeout wraps a provider so every invocation goes through the bridge
// with the given deadline. A timeout surfaces as bridge.ErrTimeout, distinct
// from provider failures.
func WithTimeout(p Provider, timeout time.Duration) Provider {
	if timeout <= 0 {
		return p
	}
	return Func(func(ctx context.Context, prompt string, contextStrs []string) (any, error) {
		return bridge.Run(ctx, timeout, func(opCtx context.Context) (any, error) {
			return p.Invoke(opCtx, prompt, contextStrs)
		})
	})
}
