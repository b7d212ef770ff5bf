package ebay

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// ErrNotConfigured is returned when the client has no API credentials.
var ErrNotConfigured = errors.New("ebay: EBAY_CLIENT_ID / EBAY_CLIENT_SECRET not set")

// HTTPStatusError captures eBay API failures by status code.
type HTTPStatusError struct {
	Operation string
	Status    int
	Body      string
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("ebay %s status %d: %s", e.Operation, e.Status, e.Body)
}

// ErrorKind classifies lookup failures for logging.
type ErrorKind string

const (
	ErrorUnknown   ErrorKind = "unknown"
	ErrorCanceled  ErrorKind = "canceled"
	ErrorTimeout   ErrorKind = "timeout"
	ErrorAuth      ErrorKind = "auth"
	ErrorRateLimit ErrorKind = "rate_limit"
	ErrorHTTP      ErrorKind = "http"
	ErrorTransport ErrorKind = "transport"
)

// ClassifyError maps a lookup failure to an ErrorKind.
func ClassifyError(err error) ErrorKind {
	if err == nil {
		return ErrorUnknown
	}
	if errors.Is(err, context.Canceled) {
		return ErrorCanceled
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrorTimeout
	}

	var statusErr *HTTPStatusError
	if errors.As(err, &statusErr) {
		switch {
		case statusErr.Status == http.StatusUnauthorized || statusErr.Status == http.StatusForbidden:
			return ErrorAuth
		case statusErr.Status == http.StatusTooManyRequests:
			return ErrorRateLimit
		default:
			return ErrorHTTP
		}
	}

	return ErrorTransport
}

// isAuthError reports whether a request failed because the bearer token was
// rejected, which triggers a single re-authentication retry.
func isAuthError(err error) bool {
	return ClassifyError(err) == ErrorAuth
}
