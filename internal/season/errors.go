package season

import "errors"

// Sentinel kinds for season errors.
var (
	ErrInvalidSeason = errors.New("invalid season")
	ErrLoadSeason    = errors.New("load season failed")
)
