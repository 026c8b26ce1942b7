package view

import "errors"

// ErrBusy is returned when the action is already in flight.
var ErrBusy = errors.New("request already in progress")
