package api

import (
	"fmt"
	"net/http"

	"github.com/okian/deliberation/internal/domain/model"
)

// QueryHandler serves the derived read models.
type QueryHandler struct {
	deps Dependencies
}

// NewQueryHandler creates a new query handler.
func NewQueryHandler(deps Dependencies) *QueryHandler {
	return &QueryHandler{deps: deps}
}

type eligibilityResponse struct {
	Key         string              `json:"key"`
	Teams       []string            `json:"teams"`
	Nominations map[string][]string `json:"nominations,omitempty"`
}

type stateResponse struct {
	State        model.State      `json:"state"`
	Capacity     int              `json:"capacity"`
	OverCapacity []model.Category `json:"over_capacity"`
}

type historyResponse struct {
	History []model.State `json:"history"`
}

// HandleScores handles GET /scores.
func (h *QueryHandler) HandleScores(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.deps.Scores(r.Context()))
}

// HandleRooms handles GET /rooms.
func (h *QueryHandler) HandleRooms(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.deps.RoomMetrics(r.Context()))
}

// HandleRanks handles GET /ranks.
func (h *QueryHandler) HandleRanks(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.deps.Ranks(r.Context()))
}

// HandleEligibility handles GET /eligibility?stage=. The stage is either
// a category or a final deliberation stage.
func (h *QueryHandler) HandleEligibility(w http.ResponseWriter, r *http.Request) {
	key := r.URL.Query().Get("stage")
	if key == "" {
		writeFailure(w, fmt.Errorf("%w: missing stage", ErrBadRequest))
		return
	}
	ids, err := h.deps.Eligibility(r.Context(), key)
	if err != nil {
		writeFailure(w, err)
		return
	}
	resp := eligibilityResponse{Key: key, Teams: ids}
	if model.Stage(key) == model.StageOptionalAwards {
		all := h.deps.Nominations(r.Context())
		resp.Nominations = make(map[string][]string, len(ids))
		for _, id := range ids {
			if n, ok := all[id]; ok {
				resp.Nominations[id] = n
			}
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

// HandleSuggestion handles GET /suggestion?category=.
func (h *QueryHandler) HandleSuggestion(w http.ResponseWriter, r *http.Request) {
	c := r.URL.Query().Get("category")
	if c == "" {
		writeFailure(w, fmt.Errorf("%w: missing category", ErrBadRequest))
		return
	}
	sug, err := h.deps.Suggest(r.Context(), model.Category(c))
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sug)
}

// HandleState handles GET /state.
func (h *QueryHandler) HandleState(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	writeJSON(w, http.StatusOK, stateResponse{
		State:        h.deps.State(ctx),
		Capacity:     h.deps.Capacity(ctx),
		OverCapacity: h.deps.OverCapacity(ctx),
	})
}

// HandleHistory handles GET /state/history.
func (h *QueryHandler) HandleHistory(w http.ResponseWriter, r *http.Request) {
	history, err := h.deps.History(r.Context())
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, historyResponse{History: history})
}
