package deliberation

import "errors"

// Sentinel kinds for deliberation errors.
var (
	ErrInvalidStageTransition = errors.New("invalid stage transition")
	ErrUnknownCategory        = errors.New("unknown category")
	ErrUnknownAward           = errors.New("unknown award")
	ErrUnknownStage           = errors.New("unknown stage")
	ErrUnknownTeam            = errors.New("unknown team")
	ErrStaleEligibility       = errors.New("team no longer eligible")
	ErrNotInProgress          = errors.New("deliberation not in progress")
	ErrUnknownCommand         = errors.New("unknown command")
)

// CommandError reports which command failed and why.
type CommandError struct {
	Op  string
	Err error
}

func (e *CommandError) Error() string { return e.Op + ": " + e.Err.Error() }

func (e *CommandError) Unwrap() error { return e.Err }
