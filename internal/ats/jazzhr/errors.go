package jazzhr

import (
	"errors"
	"fmt"
)

// APIError is a non-2xx answer (or an inline error on a read) from JazzHR.
type APIError struct {
	StatusCode int
	Message    string
	URL        string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("jazzhr: API error %d: %s (URL: %s)", e.StatusCode, e.Message, e.URL)
}

func IsUnauthorized(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == 401 || apiErr.StatusCode == 403
	}
	return false
}
