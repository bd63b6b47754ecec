package serpapi

import (
	"errors"
	"fmt"
)

var (
	ErrNotAnObject = errors.New("response is not a JSON object")
	ErrMissingKey  = errors.New("api key is required")
)

// APIError is returned for non-2xx responses.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("serpapi: unexpected status code: %d", e.StatusCode)
	}

	return fmt.Sprintf("serpapi: status %d: %s", e.StatusCode, e.Message)
}
