package domain

import (
	"errors"
	"time"
)

// PlanStatus represents the processing state of a travel plan.
type PlanStatus string

// Possible plan status values. The lifecycle is monotonic: a plan starts
// pending and moves to exactly one of completed or failed, never back.
const (
	PlanStatusPending   PlanStatus = "pending"
	PlanStatusCompleted PlanStatus = "completed"
	PlanStatusFailed    PlanStatus = "failed"
)

// Common validation errors for Plan
var (
	ErrEmptyPlanSlug        = errors.New("plan slug cannot be empty")
	ErrEmptyPlanDestination = errors.New("plan destination cannot be empty")
	ErrInvalidPlanDays      = errors.New("plan days must be between 1 and 30")
	ErrEmptyPlanBudget      = errors.New("plan budget cannot be empty")
	ErrEmptyTravelerType    = errors.New("plan traveler type cannot be empty")
	ErrInvalidPlanStatus    = errors.New("invalid plan status")
)

// PlanParams holds the structured parameters derived from a free-text
// travel request. The tuple is semantically identifying: the store enforces
// a uniqueness constraint over it, independent of the slug.
type PlanParams struct {
	Destination  string `json:"destination"`
	Days         int    `json:"days"`
	Budget       string `json:"budget"`
	TravelerType string `json:"traveler_type"`
}

// ItineraryDay is a single day of a generated itinerary. Day numbers are
// conventionally 1-based and contiguous, but contiguity is not enforced.
type ItineraryDay struct {
	Day        int      `json:"day"`
	Title      string   `json:"title"`
	Activities []string `json:"activities"`
}

// HeroImage describes the illustrative image attached to a completed plan.
type HeroImage struct {
	URL          string `json:"url"`
	Photographer string `json:"photographer"`
	Source       string `json:"source"`
}

// Plan is the persisted record tracking one travel-itinerary request from
// creation through generation to a terminal state. Result fields are only
// populated once the plan reaches completed; ErrorMessage only on failed.
type Plan struct {
	Slug             string          `json:"slug"`
	Params           PlanParams      `json:"params"`
	Status           PlanStatus      `json:"status"`
	Title            string          `json:"title,omitempty"`
	Summary          string          `json:"summary,omitempty"`
	Highlights       []string        `json:"highlights,omitempty"`
	Itinerary        []ItineraryDay  `json:"itinerary,omitempty"`
	HeroImage        *HeroImage      `json:"hero_image,omitempty"`
	ErrorMessage     string         `json:"error_message,omitempty"`
	RawResponse      string         `json:"raw_response,omitempty"`
	GeneratorVersion string         `json:"generator_version,omitempty"`
	PromptVersion    string         `json:"prompt_version,omitempty"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
}

// NewPlan creates a new Plan with the given slug and parameters.
// The plan starts in pending status with creation/update timestamps set.
// Returns an error if validation fails.
func NewPlan(slug string, params PlanParams) (*Plan, error) {
	plan := &Plan{
		Slug:      slug,
		Params:    params,
		Status:    PlanStatusPending,
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}

	if err := plan.Validate(); err != nil {
		return nil, err
	}

	return plan, nil
}

// Validate checks if the Plan has valid data.
// Returns an error if any field fails validation.
func (p *Plan) Validate() error {
	if p.Slug == "" {
		return ErrEmptyPlanSlug
	}

	if p.Params.Destination == "" {
		return ErrEmptyPlanDestination
	}

	if p.Params.Days < 1 || p.Params.Days > 30 {
		return ErrInvalidPlanDays
	}

	if p.Params.Budget == "" {
		return ErrEmptyPlanBudget
	}

	if p.Params.TravelerType == "" {
		return ErrEmptyTravelerType
	}

	if !isValidPlanStatus(p.Status) {
		return ErrInvalidPlanStatus
	}

	return nil
}

// IsTerminal reports whether the plan has reached a terminal status.
// Terminal plans are immutable; a retry creates a new plan under a new slug.
func (p *Plan) IsTerminal() bool {
	return p.Status == PlanStatusCompleted || p.Status == PlanStatusFailed
}

// UpdateStatus updates the plan's status and the UpdatedAt timestamp.
// Returns an error if the new status is invalid or if the plan is already
// terminal, preserving the monotonic pending -> completed|failed lifecycle.
func (p *Plan) UpdateStatus(status PlanStatus) error {
	if !isValidPlanStatus(status) {
		return ErrInvalidPlanStatus
	}

	if p.IsTerminal() && status != p.Status {
		return ErrInvalidPlanStatus
	}

	p.Status = status
	p.UpdatedAt = time.Now().UTC()
	return nil
}

// isValidPlanStatus checks if the given status is a valid PlanStatus.
func isValidPlanStatus(status PlanStatus) bool {
	switch status {
	case PlanStatusPending, PlanStatusCompleted, PlanStatusFailed:
		return true
	default:
		return false
	}
}
