package api

import (
	"net/http"

	"github.com/okian/deliberation/internal/domain/model"
)

type commandResponse struct {
	State     model.State `json:"state"`
	Duplicate bool        `json:"duplicate"`
}

// execute stamps the caller's idempotency key on cmd and runs it.
func execute(deps Dependencies, w http.ResponseWriter, r *http.Request, cmd model.Command) {
	cmd.ID = r.Header.Get(IdempotencyHeader)
	res, err := deps.Execute(r.Context(), cmd)
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, commandResponse{State: res.State, Duplicate: res.Duplicate})
}

// DeliberationHandler serves category deliberation commands.
type DeliberationHandler struct {
	deps Dependencies
}

// NewDeliberationHandler creates a new category deliberation handler.
func NewDeliberationHandler(deps Dependencies) *DeliberationHandler {
	return &DeliberationHandler{deps: deps}
}

type replaceRequest struct {
	Picklist []string `json:"picklist" validate:"required,dive,required"`
}

type appendRequest struct {
	TeamID string `json:"team_id" validate:"required"`
}

type reorderRequest struct {
	From *int `json:"from" validate:"required"`
	To   *int `json:"to" validate:"required"`
}

func category(r *http.Request) model.Category {
	return model.Category(r.PathValue("category"))
}

// HandleStart handles POST /deliberations/{category}/start.
func (h *DeliberationHandler) HandleStart(w http.ResponseWriter, r *http.Request) {
	execute(h.deps, w, r, model.Command{Kind: model.CommandStartDeliberation, Category: category(r)})
}

// HandleComplete handles POST /deliberations/{category}/complete.
func (h *DeliberationHandler) HandleComplete(w http.ResponseWriter, r *http.Request) {
	execute(h.deps, w, r, model.Command{Kind: model.CommandCompleteDeliberation, Category: category(r)})
}

// HandleReplace handles PUT /deliberations/{category}/picklist.
func (h *DeliberationHandler) HandleReplace(w http.ResponseWriter, r *http.Request) {
	var req replaceRequest
	if err := decode(r, &req, false); err != nil {
		writeFailure(w, err)
		return
	}
	execute(h.deps, w, r, model.Command{Kind: model.CommandUpdatePicklist, Category: category(r), Picklist: req.Picklist})
}

// HandleAppend handles POST /deliberations/{category}/picklist.
func (h *DeliberationHandler) HandleAppend(w http.ResponseWriter, r *http.Request) {
	var req appendRequest
	if err := decode(r, &req, false); err != nil {
		writeFailure(w, err)
		return
	}
	execute(h.deps, w, r, model.Command{Kind: model.CommandAddToPicklist, Category: category(r), TeamID: req.TeamID})
}

// HandleRemove handles DELETE /deliberations/{category}/picklist/{team}.
func (h *DeliberationHandler) HandleRemove(w http.ResponseWriter, r *http.Request) {
	execute(h.deps, w, r, model.Command{
		Kind:     model.CommandRemoveFromPicklist,
		Category: category(r),
		TeamID:   r.PathValue("team"),
	})
}

// HandleReorder handles POST /deliberations/{category}/picklist/reorder.
func (h *DeliberationHandler) HandleReorder(w http.ResponseWriter, r *http.Request) {
	var req reorderRequest
	if err := decode(r, &req, false); err != nil {
		writeFailure(w, err)
		return
	}
	execute(h.deps, w, r, model.Command{
		Kind:      model.CommandReorderPicklist,
		Category:  category(r),
		FromIndex: *req.From,
		ToIndex:   *req.To,
	})
}

// FinalHandler serves final deliberation commands.
type FinalHandler struct {
	deps Dependencies
}

// NewFinalHandler creates a new final deliberation handler.
func NewFinalHandler(deps Dependencies) *FinalHandler {
	return &FinalHandler{deps: deps}
}

type advanceRequest struct {
	Stage model.Stage `json:"stage"`
}

type awardRequest struct {
	Winners []string `json:"winners" validate:"required"`
}

type manualEligibilityRequest struct {
	Teams []string `json:"teams" validate:"required,dive,required"`
}

// HandleStart handles POST /final/start.
func (h *FinalHandler) HandleStart(w http.ResponseWriter, r *http.Request) {
	execute(h.deps, w, r, model.Command{Kind: model.CommandStartFinal})
}

// HandleAdvance handles POST /final/advance. The optional body names the
// stage the caller expects to leave.
func (h *FinalHandler) HandleAdvance(w http.ResponseWriter, r *http.Request) {
	var req advanceRequest
	if err := decode(r, &req, true); err != nil {
		writeFailure(w, err)
		return
	}
	execute(h.deps, w, r, model.Command{Kind: model.CommandAdvanceStage, Stage: req.Stage})
}

// HandleApprove handles POST /final/approve.
func (h *FinalHandler) HandleApprove(w http.ResponseWriter, r *http.Request) {
	execute(h.deps, w, r, model.Command{Kind: model.CommandApproveFinal})
}

// HandleAward handles PUT /final/awards/{award}.
func (h *FinalHandler) HandleAward(w http.ResponseWriter, r *http.Request) {
	var req awardRequest
	if err := decode(r, &req, false); err != nil {
		writeFailure(w, err)
		return
	}
	execute(h.deps, w, r, model.Command{Kind: model.CommandUpdateAward, Award: r.PathValue("award"), Winners: req.Winners})
}

// HandleManualEligibility handles PUT /final/manual-eligibility/{stage}.
func (h *FinalHandler) HandleManualEligibility(w http.ResponseWriter, r *http.Request) {
	var req manualEligibilityRequest
	if err := decode(r, &req, false); err != nil {
		writeFailure(w, err)
		return
	}
	execute(h.deps, w, r, model.Command{
		Kind:  model.CommandUpdateManualEligibility,
		Stage: model.Stage(r.PathValue("stage")),
		Teams: req.Teams,
	})
}
