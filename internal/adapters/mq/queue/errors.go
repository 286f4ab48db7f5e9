package queue

import "errors"

var (
	// ErrFull is returned when the writer is too far behind to take more work.
	ErrFull = errors.New("queue full")
	// ErrClosed is returned after Close.
	ErrClosed = errors.New("queue closed")
)
