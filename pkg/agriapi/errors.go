package agriapi

import (
	"errors"
	"fmt"
)

var (
	// ErrNetwork matches every failure to obtain a usable answer from the
	// backend: transport errors, non-2xx statuses and undecodable bodies.
	ErrNetwork = errors.New("backend unavailable")

	// ErrEmptyResult is returned when a lookup succeeded but carried no usable data.
	ErrEmptyResult = errors.New("empty result")
)

// APIError is a non-2xx answer from the backend.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("backend returned status %d", e.Status)
	}
	return fmt.Sprintf("backend returned status %d: %s", e.Status, e.Message)
}

// Is reports whether target is ErrNetwork.
func (e *APIError) Is(target error) bool {
	return target == ErrNetwork
}
