package api

import (
	"context"
	"errors"
	"net/http"

	service "github.com/okian/deliberation/internal/app"
	"github.com/okian/deliberation/internal/adapters/mq/queue"
	"github.com/okian/deliberation/internal/adapters/repository"
	"github.com/okian/deliberation/internal/domain/deliberation"
	"github.com/okian/deliberation/internal/domain/picklist"
	"github.com/okian/deliberation/internal/domain/snapshot"
)

// Sentinel kinds for API errors.
var (
	ErrBadRequest     = errors.New("bad request")
	ErrInvalidRequest = errors.New("invalid request")
)

// classify returns the status and error code for err. Unknown names map
// to 404, state conflicts to 409 and well-formed but unusable input to
// 422.
func classify(err error) (int, string) {
	switch {
	case errors.Is(err, ErrBadRequest):
		return http.StatusBadRequest, "bad_request"
	case errors.Is(err, queue.ErrFull):
		return http.StatusTooManyRequests, "backpressure"
	case errors.Is(err, service.ErrUnavailable), errors.Is(err, service.ErrNotStarted),
		errors.Is(err, repository.ErrClosed):
		return http.StatusServiceUnavailable, "unavailable"
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return http.StatusServiceUnavailable, "timeout"

	case errors.Is(err, deliberation.ErrUnknownCategory),
		errors.Is(err, deliberation.ErrUnknownAward),
		errors.Is(err, deliberation.ErrUnknownStage),
		errors.Is(err, deliberation.ErrUnknownTeam),
		errors.Is(err, snapshot.ErrUnknownTeam),
		errors.Is(err, service.ErrNoHistory):
		return http.StatusNotFound, "not_found"

	case errors.Is(err, deliberation.ErrInvalidStageTransition),
		errors.Is(err, deliberation.ErrNotInProgress),
		errors.Is(err, deliberation.ErrStaleEligibility),
		errors.Is(err, repository.ErrVersionConflict),
		errors.Is(err, picklist.ErrCapacityExceeded),
		errors.Is(err, picklist.ErrAlreadyPresent),
		errors.Is(err, picklist.ErrConflictingAwards):
		return http.StatusConflict, "conflict"

	case errors.Is(err, ErrInvalidRequest),
		errors.Is(err, picklist.ErrIndexOutOfRange),
		errors.Is(err, picklist.ErrNotPresent),
		errors.Is(err, deliberation.ErrUnknownCommand),
		errors.Is(err, snapshot.ErrUnknownEvent),
		errors.Is(err, snapshot.ErrInvalidEvent):
		return http.StatusUnprocessableEntity, "unprocessable"
	}
	return http.StatusInternalServerError, "internal"
}
