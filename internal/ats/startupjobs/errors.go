package startupjobs

import (
	"errors"
	"fmt"
	"net/http"
)

// APIError is a non-2xx answer from the StartupJobs API.
type APIError struct {
	StatusCode int
	Message    string
	URL        string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("startupjobs: API error %d: %s (URL: %s)", e.StatusCode, e.Message, e.URL)
}

// IsUnauthorized reports whether err carries a 401 or 403 answer.
func IsUnauthorized(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == http.StatusUnauthorized || apiErr.StatusCode == http.StatusForbidden
	}
	return false
}
