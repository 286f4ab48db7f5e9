// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/go-playground/validator/v10"

	service "github.com/okian/deliberation/internal/app"
	"github.com/okian/deliberation/internal/domain/model"
)

// Dependencies required by HTTP handlers.
type Dependencies interface {
	// Execute runs one deliberation command through the state writer.
	Execute(ctx context.Context, cmd model.Command) (service.Result, error)

	// ApplyEvent and ReplaceSnapshot feed upstream changes.
	ApplyEvent(ctx context.Context, ev model.Event) (service.Result, error)
	ReplaceSnapshot(ctx context.Context, snap model.Snapshot) (service.Result, error)

	// Read operations never block the writer.
	Scores(ctx context.Context) service.ScoresView
	RoomMetrics(ctx context.Context) service.RoomsView
	Ranks(ctx context.Context) service.RanksView
	Eligibility(ctx context.Context, key string) ([]string, error)
	Suggest(ctx context.Context, c model.Category) (service.Suggestion, error)
	State(ctx context.Context) model.State
	Capacity(ctx context.Context) int
	OverCapacity(ctx context.Context) []model.Category
	Nominations(ctx context.Context) map[string][]string
	History(ctx context.Context) ([]model.State, error)
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler       *HealthHandler
	statsHandler        *StatsHandler
	intakeHandler       *IntakeHandler
	queryHandler        *QueryHandler
	deliberationHandler *DeliberationHandler
	finalHandler        *FinalHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider) *Server {
	return &Server{
		healthHandler:       NewHealthHandler(),
		statsHandler:        NewStatsHandler(statsProvider),
		intakeHandler:       NewIntakeHandler(deps),
		queryHandler:        NewQueryHandler(deps),
		deliberationHandler: NewDeliberationHandler(deps),
		finalHandler:        NewFinalHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("GET /stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))

	mux.HandleFunc("PUT /snapshot", MetricsMiddleware(s.intakeHandler.HandlePutSnapshot, "snapshot"))
	mux.HandleFunc("POST /events", MetricsMiddleware(s.intakeHandler.HandlePostEvent, "events"))

	mux.HandleFunc("GET /scores", MetricsMiddleware(s.queryHandler.HandleScores, "scores"))
	mux.HandleFunc("GET /rooms", MetricsMiddleware(s.queryHandler.HandleRooms, "rooms"))
	mux.HandleFunc("GET /ranks", MetricsMiddleware(s.queryHandler.HandleRanks, "ranks"))
	mux.HandleFunc("GET /eligibility", MetricsMiddleware(s.queryHandler.HandleEligibility, "eligibility"))
	mux.HandleFunc("GET /suggestion", MetricsMiddleware(s.queryHandler.HandleSuggestion, "suggestion"))
	mux.HandleFunc("GET /state", MetricsMiddleware(s.queryHandler.HandleState, "state"))
	mux.HandleFunc("GET /state/history", MetricsMiddleware(s.queryHandler.HandleHistory, "state_history"))

	d := s.deliberationHandler
	mux.HandleFunc("POST /deliberations/{category}/start", MetricsMiddleware(d.HandleStart, "deliberation_start"))
	mux.HandleFunc("POST /deliberations/{category}/complete", MetricsMiddleware(d.HandleComplete, "deliberation_complete"))
	mux.HandleFunc("PUT /deliberations/{category}/picklist", MetricsMiddleware(d.HandleReplace, "picklist_replace"))
	mux.HandleFunc("POST /deliberations/{category}/picklist", MetricsMiddleware(d.HandleAppend, "picklist_append"))
	mux.HandleFunc("DELETE /deliberations/{category}/picklist/{team}", MetricsMiddleware(d.HandleRemove, "picklist_remove"))
	mux.HandleFunc("POST /deliberations/{category}/picklist/reorder", MetricsMiddleware(d.HandleReorder, "picklist_reorder"))

	f := s.finalHandler
	mux.HandleFunc("POST /final/start", MetricsMiddleware(f.HandleStart, "final_start"))
	mux.HandleFunc("POST /final/advance", MetricsMiddleware(f.HandleAdvance, "final_advance"))
	mux.HandleFunc("POST /final/approve", MetricsMiddleware(f.HandleApprove, "final_approve"))
	mux.HandleFunc("PUT /final/awards/{award}", MetricsMiddleware(f.HandleAward, "final_award"))
	mux.HandleFunc("PUT /final/manual-eligibility/{stage}", MetricsMiddleware(f.HandleManualEligibility, "final_manual_eligibility"))
}

// IdempotencyHeader carries the caller's command or event id.
const IdempotencyHeader = "Idempotency-Key"

var validate = validator.New()

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// writeFailure maps a domain error to its HTTP status.
func writeFailure(w http.ResponseWriter, err error) {
	status, code := classify(err)
	writeError(w, status, code, err)
}

// decode reads a JSON body into v and validates it. An empty body is
// accepted when optional is set.
func decode(r *http.Request, v any, optional bool) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if optional && errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("%w: %w", ErrBadRequest, err)
	}
	if err := validate.Struct(v); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}
	return nil
}
