package store

import "errors"

var (
	ErrNotFound     = errors.New("entry not found")
	ErrInvalidAlert = errors.New("invalid alert")
)
