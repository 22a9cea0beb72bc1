package service

import (
	"context"
	"database/sql"

	"github.com/jmickel/wayfarer-api/internal/domain"
	"github.com/jmickel/wayfarer-api/internal/store"
)

// PlanRepositoryAdapter adapts a store.PlanStore to the service layer's
// PlanRepository interface, carrying the *sql.DB handle the service needs
// to open transactions.
type PlanRepositoryAdapter struct {
	planStore store.PlanStore
	db        *sql.DB
}

// NewPlanRepositoryAdapter creates a new adapter around the given store.
func NewPlanRepositoryAdapter(planStore store.PlanStore, db *sql.DB) *PlanRepositoryAdapter {
	return &PlanRepositoryAdapter{
		planStore: planStore,
		db:        db,
	}
}

// Ensure PlanRepositoryAdapter implements the PlanRepository interface
var _ PlanRepository = (*PlanRepositoryAdapter)(nil)

// Create saves a new plan to the store
func (a *PlanRepositoryAdapter) Create(ctx context.Context, plan *domain.Plan) error {
	return a.planStore.Create(ctx, plan)
}

// GetBySlug retrieves a plan by its unique slug
func (a *PlanRepositoryAdapter) GetBySlug(ctx context.Context, slug string) (*domain.Plan, error) {
	return a.planStore.GetBySlug(ctx, slug)
}

// FindByParams retrieves the plan matching the exact parameter tuple
func (a *PlanRepositoryAdapter) FindByParams(
	ctx context.Context,
	params domain.PlanParams,
) (*domain.Plan, error) {
	return a.planStore.FindByParams(ctx, params)
}

// ListByStatus retrieves plans with the specified status, newest first
func (a *PlanRepositoryAdapter) ListByStatus(
	ctx context.Context,
	status domain.PlanStatus,
	limit, offset int,
) ([]*domain.Plan, error) {
	return a.planStore.ListByStatus(ctx, status, limit, offset)
}

// WithTx returns a new adapter bound to the provided transaction
func (a *PlanRepositoryAdapter) WithTx(tx *sql.Tx) PlanRepository {
	return &PlanRepositoryAdapter{
		planStore: a.planStore.WithTx(tx),
		db:        a.db,
	}
}

// DB returns the underlying database connection
func (a *PlanRepositoryAdapter) DB() *sql.DB {
	return a.db
}
