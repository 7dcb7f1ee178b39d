package poi

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when the API has no record for the request.
	ErrNotFound = errors.New("poi: not found")
	// ErrUnauthorized is returned when the API rejects the credentials.
	ErrUnauthorized = errors.New("poi: unauthorized")
)

// APIError describes a failed API call. Status is the HTTP status code, or
// zero when the server could not be reached.
type APIError struct {
	Status  int
	Message string
	Err     error
}

func (e *APIError) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("poi api unreachable: %s", e.Message)
	}
	return fmt.Sprintf("poi api status %d: %s", e.Status, e.Message)
}

func (e *APIError) Unwrap() error {
	return e.Err
}
