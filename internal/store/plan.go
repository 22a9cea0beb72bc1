package store

import (
	"context"
	"database/sql"

	"github.com/jmickel/wayfarer-api/internal/domain"
)

// PlanUpdate carries the optional result fields written alongside a status
// transition. Nil/zero fields are left untouched in the stored record.
type PlanUpdate struct {
	Title            string
	Summary          string
	Highlights       []string
	Itinerary        []domain.ItineraryDay
	HeroImage        *domain.HeroImage
	RawResponse      string
	GeneratorVersion string
	PromptVersion    string
	ErrorMessage     string
}

// PlanStore defines the interface for plan data persistence.
// Version: 1.0
type PlanStore interface {
	// Create saves a new plan to the store.
	// It handles domain validation internally.
	// Returns ErrPlanSlugExists if the slug is already taken, and
	// ErrPlanParamsExist if a plan with the same parameter tuple exists
	// (the deduplication constraint for semantically identical requests).
	Create(ctx context.Context, plan *domain.Plan) error

	// GetBySlug retrieves a plan by its unique slug.
	// Returns ErrPlanNotFound if the plan does not exist.
	GetBySlug(ctx context.Context, slug string) (*domain.Plan, error)

	// FindByParams retrieves the plan matching the exact parameter tuple,
	// if one exists. Returns ErrPlanNotFound when there is no match.
	FindByParams(ctx context.Context, params domain.PlanParams) (*domain.Plan, error)

	// UpdateStatus transitions a plan to the given status and writes the
	// accompanying result fields. Returns the updated plan.
	// Returns ErrPlanNotFound if the plan does not exist.
	UpdateStatus(
		ctx context.Context,
		slug string,
		status domain.PlanStatus,
		update PlanUpdate,
	) (*domain.Plan, error)

	// ListByStatus retrieves plans with the specified status, newest first.
	// Returns an empty slice if no plans match the criteria.
	// Can limit the number of results and paginate through offset.
	ListByStatus(ctx context.Context, status domain.PlanStatus, limit, offset int) ([]*domain.Plan, error)

	// WithTx returns a new PlanStore instance that uses the provided transaction.
	// This allows for multiple operations to be executed within a single transaction.
	// The transaction should be created and managed by the caller (typically a service).
	WithTx(tx *sql.Tx) PlanStore
}
