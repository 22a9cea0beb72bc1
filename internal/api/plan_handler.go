package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/jmickel/wayfarer-api/internal/api/shared"
	"github.com/jmickel/wayfarer-api/internal/domain"
	"github.com/jmickel/wayfarer-api/internal/service"
)

// defaultListLimit caps the number of plans returned by the listing endpoint.
const defaultListLimit = 10

// PlanHandler handles plan-related HTTP requests
type PlanHandler struct {
	planService service.PlanService
	validator   *validator.Validate
}

// NewPlanHandler creates a new PlanHandler
func NewPlanHandler(planService service.PlanService) *PlanHandler {
	return &PlanHandler{
		planService: planService,
		validator:   validator.New(),
	}
}

// CreatePlan handles POST /api/plans requests. Generation happens
// asynchronously, so a newly created plan is returned with 202 Accepted
// and clients poll the status endpoint. A prompt that maps to an already
// existing plan returns that plan with 200 OK instead of creating a
// duplicate.
func (h *PlanHandler) CreatePlan(w http.ResponseWriter, r *http.Request) {
	var req CreatePlanRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	plan, created, err := h.planService.CreatePlanAndEnqueueTask(r.Context(), req.Text)
	if err != nil {
		if errors.Is(err, domain.ErrNotTravelRelated) {
			shared.RespondWithError(w, r, http.StatusBadRequest, GetSafeErrorMessage(err))
			return
		}
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusAccepted
	}
	shared.RespondWithJSON(w, r, status, planToResponse(plan))
}

// GetPlan handles GET /api/plans/{slug} requests
func (h *PlanHandler) GetPlan(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	if slug == "" {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Plan slug is required")
		return
	}

	plan, err := h.planService.GetPlan(r.Context(), slug)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, planToResponse(plan))
}

// GetPlanStatus handles GET /api/plans/{slug}/status requests. It returns
// a lightweight payload suited to frequent polling while generation runs.
func (h *PlanHandler) GetPlanStatus(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	if slug == "" {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Plan slug is required")
		return
	}

	plan, err := h.planService.GetPlan(r.Context(), slug)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, planToStatusResponse(plan))
}

// ListPlans handles GET /api/plans requests, returning the most recently
// completed plans. The optional limit query parameter defaults to 10.
func (h *PlanHandler) ListPlans(w http.ResponseWriter, r *http.Request) {
	limit := defaultListLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid limit parameter")
			return
		}
		limit = parsed
	}

	plans, err := h.planService.ListLatestCompleted(r.Context(), limit)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	resp := PlanListResponse{Plans: make([]PlanResponse, 0, len(plans))}
	for _, plan := range plans {
		resp.Plans = append(resp.Plans, planToResponse(plan))
	}

	shared.RespondWithJSON(w, r, http.StatusOK, resp)
}
