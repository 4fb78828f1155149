package retry

import "errors"

// RateLimitError marks a failure as an upstream rate-limit signal. Rate
// limits are always retryable and receive jittered backoff.
type RateLimitError struct {
	// Err is the underlying upstream error.
	Err error
}

// Error implements the error interface.
func (e *RateLimitError) Error() string {
	if e.Err == nil {
		return "rate limited"
	}
	return "rate limited: " + e.Err.Error()
}

// Unwrap returns the underlying error.
func (e *RateLimitError) Unwrap() error { return e.Err }

// UpstreamError carries an upstream HTTP status code. Codes in
// {408, 429, 500, 502, 503} are treated as transient.
type UpstreamError struct {
	// Code is the upstream HTTP status code.
	Code int
	// Err is the underlying upstream error.
	Err error
}

// Error implements the error interface.
func (e *UpstreamError) Error() string {
	if e.Err == nil {
		return "upstream error"
	}
	return e.Err.Error()
}

// Unwrap returns the underlying error.
func (e *UpstreamError) Unwrap() error { return e.Err }

// StatusCode implements the statusCoder interface.
func (e *UpstreamError) StatusCode() int { return e.Code }

// statusCoder is implemented by errors that expose an upstream status code.
type statusCoder interface {
	StatusCode() int
}

// IsRateLimit reports whether err is classified as a rate-limit signal.
func IsRateLimit(err error) bool {
	var rl *RateLimitError
	return errors.As(err, &rl)
}

// StatusCode extracts an upstream status code from err if any error in its
// chain exposes one.
func StatusCode(err error) (int, bool) {
	var sc statusCoder
	if errors.As(err, &sc) {
		return sc.StatusCode(), true
	}
	return 0, false
}
