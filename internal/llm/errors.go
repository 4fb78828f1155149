package llm

import (
	"errors"
	"net/http"

	"github.com/anthropics/anthropic-sdk-go"

	"github.com/calebhart/stepline/internal/retry"
)

// classify converts SDK errors into the retry package's error types so the
// retrier can tell transient failures from fatal ones. Non-API errors pass
// through unchanged.
func classify(err error) error {
	if err == nil {
		return nil
	}

	var apierr *anthropic.Error
	if !errors.As(err, &apierr) {
		return err
	}

	if apierr.StatusCode == http.StatusTooManyRequests {
		return &retry.RateLimitError{Err: err}
	}
	return &retry.UpstreamError{Code: apierr.StatusCode, Err: err}
}
