package client

import (
	"errors"
	"fmt"
)

// Error taxonomy surfaced by the SDK. Callers branch with errors.Is.
var (
	// ErrInvalidInput covers caller mistakes: bad quantities, malformed
	// phone numbers, empty product ids.
	ErrInvalidInput = errors.New("invalid input")

	// ErrServiceUnavailable means the remote API could not be reached or
	// answered with a server error. Cart operations fall back to the local
	// simulated cart when they see it.
	ErrServiceUnavailable = errors.New("service unavailable")

	// ErrAuthRequired means the operation needs an authenticated session.
	ErrAuthRequired = errors.New("authentication required")

	// ErrProviderRejected is the base error for OTP provider failures.
	ErrProviderRejected = errors.New("verification provider rejected the request")

	// ErrNotFound and ErrGone map the API's 404 and 410 cart responses.
	ErrNotFound = errors.New("not found")
	ErrGone     = errors.New("expired")

	// ErrSessionChanged is returned when a login or logout happened while
	// an operation was in flight. The response is discarded; retry against
	// the new session.
	ErrSessionChanged = errors.New("session changed during operation")
)

// Specific provider rejections, matchable both directly and as
// ErrProviderRejected.
var (
	ErrCodeIncorrect = fmt.Errorf("incorrect verification code: %w", ErrProviderRejected)
	ErrRateLimited   = fmt.Errorf("too many attempts, try again later: %w", ErrProviderRejected)
)
