package llm

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
)

// maxErrorBody bounds how much of an error response body is retained for
// diagnostics.
const maxErrorBody = 200

// APIError is a non-2xx response from a completion provider.
type APIError struct {
	Provider   string
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: unexpected status %d", e.Provider, e.StatusCode)
}

// AsAPIError unwraps an *APIError from the chain, if present.
func AsAPIError(err error) (*APIError, bool) {
	var ae *APIError
	if errors.As(err, &ae) {
		return ae, true
	}
	return nil, false
}

// IsRateLimited reports a 429 response.
func IsRateLimited(err error) bool {
	ae, ok := AsAPIError(err)
	return ok && ae.StatusCode == http.StatusTooManyRequests
}

// IsUnavailable reports a 503 response.
func IsUnavailable(err error) bool {
	ae, ok := AsAPIError(err)
	return ok && ae.StatusCode == http.StatusServiceUnavailable
}

// IsNotFound reports a 404 response, which usually means a misconfigured
// model name or endpoint rather than a transient outage.
func IsNotFound(err error) bool {
	ae, ok := AsAPIError(err)
	return ok && ae.StatusCode == http.StatusNotFound
}

// IsTimeout reports a network timeout or exceeded deadline.
func IsTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

func truncateBody(b []byte) string {
	if len(b) > maxErrorBody {
		b = b[:maxErrorBody]
	}
	return string(b)
}
