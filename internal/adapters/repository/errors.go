package repository

import "errors"

// Sentinel kinds for store errors.
var (
	ErrVersionConflict = errors.New("state version conflict")
	ErrClosed          = errors.New("store closed")
	ErrMissingEventID  = errors.New("event id is required")
)
