package alerts

import "errors"

// ErrNotConfirmed is returned by Delete when the user declines.
var ErrNotConfirmed = errors.New("deletion not confirmed")
