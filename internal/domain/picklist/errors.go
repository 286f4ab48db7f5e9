package picklist

import "errors"

// Sentinel kinds for picklist errors.
var (
	ErrCapacityExceeded  = errors.New("picklist capacity exceeded")
	ErrAlreadyPresent    = errors.New("team already present")
	ErrNotPresent        = errors.New("team not present")
	ErrIndexOutOfRange   = errors.New("picklist index out of range")
	ErrConflictingAwards = errors.New("team holds conflicting awards")
)
