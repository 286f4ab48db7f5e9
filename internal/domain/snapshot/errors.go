package snapshot

import "errors"

var (
	// ErrUnknownEvent is returned for an event kind the reducer does not handle.
	ErrUnknownEvent = errors.New("unknown event kind")
	// ErrUnknownTeam is returned when an event targets a team the snapshot lacks.
	ErrUnknownTeam = errors.New("unknown team")
	// ErrInvalidEvent is returned when an event is missing its payload.
	ErrInvalidEvent = errors.New("invalid event")
)
