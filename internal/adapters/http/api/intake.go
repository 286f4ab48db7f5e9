package api

import (
	"fmt"
	"net/http"

	"github.com/okian/deliberation/internal/domain/model"
)

// IntakeHandler accepts upstream snapshot changes.
type IntakeHandler struct {
	deps Dependencies
}

// NewIntakeHandler creates a new intake handler.
func NewIntakeHandler(deps Dependencies) *IntakeHandler {
	return &IntakeHandler{deps: deps}
}

type ackResponse struct {
	Status          string `json:"status"`
	Duplicate       bool   `json:"duplicate"`
	SnapshotVersion int64  `json:"snapshot_version"`
}

// HandlePostEvent handles POST /events with one incremental event. The
// Idempotency-Key header fills a missing event id.
func (h *IntakeHandler) HandlePostEvent(w http.ResponseWriter, r *http.Request) {
	var ev model.Event
	if err := decode(r, &ev, false); err != nil {
		writeFailure(w, err)
		return
	}
	if ev.ID == "" {
		ev.ID = r.Header.Get(IdempotencyHeader)
	}
	if ev.Kind == "" {
		writeFailure(w, fmt.Errorf("%w: missing kind", ErrBadRequest))
		return
	}

	res, err := h.deps.ApplyEvent(r.Context(), ev)
	if err != nil {
		writeFailure(w, err)
		return
	}
	status := "accepted"
	if res.Duplicate {
		status = "duplicate"
	}
	writeJSON(w, http.StatusOK, ackResponse{Status: status, Duplicate: res.Duplicate, SnapshotVersion: res.Snapshot.Version})
}

// HandlePutSnapshot handles PUT /snapshot with a full upstream snapshot.
func (h *IntakeHandler) HandlePutSnapshot(w http.ResponseWriter, r *http.Request) {
	var snap model.Snapshot
	if err := decode(r, &snap, false); err != nil {
		writeFailure(w, err)
		return
	}
	res, err := h.deps.ReplaceSnapshot(r.Context(), snap)
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ackResponse{Status: "replaced", SnapshotVersion: res.Snapshot.Version})
}
