package schedule

import "errors"

var (
	// ErrNoContent is returned when a channel has no playable content: an
	// empty timeline or one whose total duration is zero. Callers present
	// an "off air" state.
	ErrNoContent = errors.New("channel has no content")
)
