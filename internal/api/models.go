package api

import (
	"time"

	"github.com/jmickel/wayfarer-api/internal/domain"
)

// Common request/response structures

// CreatePlanRequest defines the payload for the plan creation endpoint.
// The text is a free-form travel prompt such as "5 days in Tokyo on a budget".
type CreatePlanRequest struct {
	Text string `json:"text" validate:"required,min=1,max=2000"`
}

// HeroImageResponse carries the hero image attribution for a plan.
type HeroImageResponse struct {
	URL          string `json:"url"`
	Photographer string `json:"photographer"`
	Source       string `json:"source"`
}

// ItineraryDayResponse is a single day within a completed plan.
type ItineraryDayResponse struct {
	Day        int      `json:"day"`
	Title      string   `json:"title"`
	Activities []string `json:"activities"`
}

// PlanResponse defines the full plan representation returned by the API.
// Generation-result fields are omitted while the plan is still pending.
type PlanResponse struct {
	Slug         string                 `json:"slug"`
	Destination  string                 `json:"destination"`
	Days         int                    `json:"days"`
	Budget       string                 `json:"budget"`
	TravelerType string                 `json:"traveler_type"`
	Status       string                 `json:"status"`
	Title        string                 `json:"title,omitempty"`
	Summary      string                 `json:"summary,omitempty"`
	Highlights   []string               `json:"highlights,omitempty"`
	Itinerary    []ItineraryDayResponse `json:"itinerary,omitempty"`
	HeroImage    *HeroImageResponse     `json:"hero_image,omitempty"`
	Error        string                 `json:"error,omitempty"`
	CreatedAt    time.Time              `json:"created_at"`
	UpdatedAt    time.Time              `json:"updated_at"`
}

// PlanStatusResponse is the lightweight payload for status polling.
type PlanStatusResponse struct {
	Slug      string    `json:"slug"`
	Status    string    `json:"status"`
	Title     string    `json:"title,omitempty"`
	Error     string    `json:"error,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

// PlanListResponse wraps the latest completed plans.
type PlanListResponse struct {
	Plans []PlanResponse `json:"plans"`
}

// planToResponse converts a domain.Plan to a PlanResponse.
func planToResponse(plan *domain.Plan) PlanResponse {
	resp := PlanResponse{
		Slug:         plan.Slug,
		Destination:  plan.Params.Destination,
		Days:         plan.Params.Days,
		Budget:       plan.Params.Budget,
		TravelerType: plan.Params.TravelerType,
		Status:       string(plan.Status),
		Title:        plan.Title,
		Summary:      plan.Summary,
		Highlights:   plan.Highlights,
		Error:        plan.ErrorMessage,
		CreatedAt:    plan.CreatedAt,
		UpdatedAt:    plan.UpdatedAt,
	}

	if len(plan.Itinerary) > 0 {
		resp.Itinerary = make([]ItineraryDayResponse, 0, len(plan.Itinerary))
		for _, day := range plan.Itinerary {
			resp.Itinerary = append(resp.Itinerary, ItineraryDayResponse{
				Day:        day.Day,
				Title:      day.Title,
				Activities: day.Activities,
			})
		}
	}

	if plan.HeroImage != nil {
		resp.HeroImage = &HeroImageResponse{
			URL:          plan.HeroImage.URL,
			Photographer: plan.HeroImage.Photographer,
			Source:       plan.HeroImage.Source,
		}
	}

	return resp
}

// planToStatusResponse converts a domain.Plan to a PlanStatusResponse.
func planToStatusResponse(plan *domain.Plan) PlanStatusResponse {
	return PlanStatusResponse{
		Slug:      plan.Slug,
		Status:    string(plan.Status),
		Title:     plan.Title,
		Error:     plan.ErrorMessage,
		UpdatedAt: plan.UpdatedAt,
	}
}
