package chat

import "errors"

var (
	// ErrEmptyMessage is returned by Send for blank input. Nothing is sent.
	ErrEmptyMessage = errors.New("empty message")

	// ErrBusy is returned by Send while a previous question is unanswered.
	ErrBusy = errors.New("waiting for a reply")
)
