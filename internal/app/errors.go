package service

import "errors"

// Sentinel kinds for service errors.
var (
	ErrNotStarted  = errors.New("service not started")
	ErrUnavailable = errors.New("service unavailable")
	ErrNoHistory   = errors.New("store keeps no history")
)
