package httpclient

import (
	"fmt"

	ierr "github.com/flexprice/fiscal/internal/errors"
)

// Error represents a non 2xx response
type Error struct {
	StatusCode int
	Response   []byte
}

func (e *Error) Error() string {
	return fmt.Sprintf("http status %d", e.StatusCode)
}

// NewError creates a new HTTP client error marked ErrHTTPClient
func NewError(statusCode int, response []byte) error {
	return ierr.WithError(&Error{StatusCode: statusCode, Response: response}).
		WithHintf("Remote returned status %d", statusCode).
		WithReportableDetails(map[string]any{"status_code": statusCode}).
		Mark(ierr.ErrHTTPClient)
}

// IsHTTPError checks if an error carries a non 2xx response
func IsHTTPError(err error) (*Error, bool) {
	var httpErr *Error
	if ierr.As(err, &httpErr) {
		return httpErr, true
	}
	return nil, false
}
