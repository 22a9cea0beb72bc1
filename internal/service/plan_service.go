package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jmickel/wayfarer-api/internal/domain"
	"github.com/jmickel/wayfarer-api/internal/prompt"
	"github.com/jmickel/wayfarer-api/internal/store"
	"github.com/jmickel/wayfarer-api/internal/task"
)

// PlanRepository defines the repository interface for the service layer.
// This is aligned with store.PlanStore to ensure proper separation of concerns.
type PlanRepository interface {
	// Create saves a new plan to the store
	Create(ctx context.Context, plan *domain.Plan) error

	// GetBySlug retrieves a plan by its unique slug
	GetBySlug(ctx context.Context, slug string) (*domain.Plan, error)

	// FindByParams retrieves the plan matching the exact parameter tuple
	FindByParams(ctx context.Context, params domain.PlanParams) (*domain.Plan, error)

	// ListByStatus retrieves plans with the specified status, newest first
	ListByStatus(ctx context.Context, status domain.PlanStatus, limit, offset int) ([]*domain.Plan, error)

	// WithTx returns a new repository instance that uses the provided transaction
	WithTx(tx *sql.Tx) PlanRepository

	// DB returns the underlying database connection
	DB() *sql.DB
}

// TaskRunner defines the interface for submitting background tasks
type TaskRunner interface {
	// Submit adds a task to the processing queue
	Submit(ctx context.Context, task task.Task) error
}

// PlanGenerationTaskFactory creates PlanGenerationTask instances
type PlanGenerationTaskFactory interface {
	// CreateTask creates a new generation task for the specified plan
	CreateTask(slug string) (task.Task, error)
}

// PlanService provides plan-related operations
type PlanService interface {
	// CreatePlanAndEnqueueTask gates and parses the free-text request,
	// creates a pending plan, and enqueues it for generation. When an
	// equivalent plan already exists it is returned instead, with created
	// set to false.
	CreatePlanAndEnqueueTask(ctx context.Context, text string) (plan *domain.Plan, created bool, err error)

	// GetPlan retrieves a plan by its slug
	GetPlan(ctx context.Context, slug string) (*domain.Plan, error)

	// ListLatestCompleted retrieves the most recently completed plans
	ListLatestCompleted(ctx context.Context, limit int) ([]*domain.Plan, error)
}

// Common sentinel errors for PlanService
var (
	// ErrPlanNotFound indicates that the plan does not exist
	ErrPlanNotFound = errors.New("plan not found")
)

// PlanServiceError wraps errors from the plan service with context.
type PlanServiceError struct {
	// Operation is the operation that failed (e.g., "create_plan", "get_plan")
	Operation string
	// Message is a human-readable description of the error
	Message string
	// Err is the underlying error that caused the failure
	Err error
}

// Error implements the error interface for PlanServiceError.
func (e *PlanServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("plan service %s failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("plan service %s failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *PlanServiceError) Unwrap() error {
	return e.Err
}

// NewPlanServiceError creates a new PlanServiceError.
// It returns known sentinel errors directly without wrapping.
func NewPlanServiceError(operation, message string, err error) error {
	if err == nil {
		return nil
	}

	// Check for service-defined sentinel errors
	if errors.Is(err, ErrPlanNotFound) {
		return ErrPlanNotFound
	}

	// Check for store-level sentinel errors that should be mapped to service-level ones
	if errors.Is(err, store.ErrPlanNotFound) {
		return ErrPlanNotFound
	}

	// If not a sentinel to be returned directly, wrap it
	return &PlanServiceError{
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}

// planServiceImpl implements the PlanService interface
type planServiceImpl struct {
	planRepo    PlanRepository
	taskRunner  TaskRunner
	taskFactory PlanGenerationTaskFactory
	logger      *slog.Logger
}

// NewPlanService creates a new PlanService.
// It returns an error if any of the required dependencies are nil.
func NewPlanService(
	planRepo PlanRepository,
	taskRunner TaskRunner,
	taskFactory PlanGenerationTaskFactory,
	logger *slog.Logger,
) (PlanService, error) {
	// Validate dependencies
	if planRepo == nil {
		return nil, &PlanServiceError{
			Operation: "create_service",
			Message:   "planRepo cannot be nil",
		}
	}
	if taskRunner == nil {
		return nil, &PlanServiceError{
			Operation: "create_service",
			Message:   "taskRunner cannot be nil",
		}
	}
	if taskFactory == nil {
		return nil, &PlanServiceError{
			Operation: "create_service",
			Message:   "taskFactory cannot be nil",
		}
	}

	// Use provided logger or create default
	if logger == nil {
		logger = slog.Default()
	}

	return &planServiceImpl{
		planRepo:    planRepo,
		taskRunner:  taskRunner,
		taskFactory: taskFactory,
		logger:      logger.With("component", "plan_service"),
	}, nil
}

// CreatePlanAndEnqueueTask implements PlanService.CreatePlanAndEnqueueTask.
//
// The request text passes through the travel relevance gate first; rejected
// requests never create state. Parameter extraction is total, so everything
// past the gate yields a full parameter tuple. Two layers of deduplication
// apply: a lookup before insert for the common case, and the store's
// parameter-tuple constraint for concurrent duplicates.
func (s *planServiceImpl) CreatePlanAndEnqueueTask(
	ctx context.Context,
	text string,
) (*domain.Plan, bool, error) {
	// 1. Gate: only travel-related requests proceed
	if !prompt.IsTravelRelated(text) {
		s.logger.Info("rejected non-travel request", "text_length", len(text))
		return nil, false, domain.ErrNotTravelRelated
	}

	// 2. Derive structured parameters from the free text
	params := prompt.Parse(text)

	// 3. Return the existing plan for a semantically identical request
	existing, err := s.planRepo.FindByParams(ctx, params)
	if err == nil {
		s.logger.Info("returning existing plan for duplicate request",
			"slug", existing.Slug,
			"destination", params.Destination)
		return existing, false, nil
	}
	if !errors.Is(err, store.ErrPlanNotFound) {
		return nil, false, NewPlanServiceError("create_plan", "failed to check for existing plan", err)
	}

	// 4. Create the pending plan record
	slug := prompt.NewSlug(params.Destination, params.Days, params.Budget, params.TravelerType)
	plan, err := domain.NewPlan(slug, params)
	if err != nil {
		s.logger.Error("failed to create plan object", "error", err)
		return nil, false, NewPlanServiceError("create_plan", "failed to create plan object", err)
	}

	err = store.RunInTransaction(ctx, s.planRepo.DB(), func(ctx context.Context, tx *sql.Tx) error {
		txRepo := s.planRepo.WithTx(tx)
		return txRepo.Create(ctx, plan)
	})
	if err != nil {
		// A concurrent duplicate lost the race to the unique parameter
		// constraint; surface the winner's plan.
		if errors.Is(err, store.ErrPlanParamsExist) {
			winner, findErr := s.planRepo.FindByParams(ctx, params)
			if findErr == nil {
				s.logger.Info("concurrent duplicate request, returning winning plan",
					"slug", winner.Slug)
				return winner, false, nil
			}
			return nil, false, NewPlanServiceError(
				"create_plan", "failed to load plan after duplicate insert", findErr)
		}

		s.logger.Error("failed to create plan in transaction",
			"error", err,
			"slug", plan.Slug)
		return nil, false, NewPlanServiceError("create_plan", "failed to save plan to database", err)
	}

	s.logger.Info("plan created successfully with pending status",
		"slug", plan.Slug,
		"destination", params.Destination,
		"days", params.Days)

	// 5. Enqueue the generation task. The plan row is the durable record:
	// if enqueueing fails the plan stays pending and is requeued on the
	// next startup scan.
	genTask, err := s.taskFactory.CreateTask(plan.Slug)
	if err != nil {
		s.logger.Error("failed to create generation task",
			"error", err,
			"slug", plan.Slug)
		return nil, false, NewPlanServiceError("create_plan", "failed to create generation task", err)
	}

	if err := s.taskRunner.Submit(ctx, genTask); err != nil {
		s.logger.Error("failed to enqueue generation task",
			"error", err,
			"slug", plan.Slug)
		return nil, false, NewPlanServiceError("create_plan", "failed to enqueue generation task", err)
	}

	s.logger.Info("plan generation task enqueued",
		"slug", plan.Slug,
		"task_id", genTask.ID())

	return plan, true, nil
}

// GetPlan retrieves a plan by its slug
func (s *planServiceImpl) GetPlan(ctx context.Context, slug string) (*domain.Plan, error) {
	plan, err := s.planRepo.GetBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, store.ErrPlanNotFound) {
			return nil, ErrPlanNotFound
		}
		s.logger.Error("failed to retrieve plan",
			"error", err,
			"slug", slug)
		return nil, NewPlanServiceError("get_plan", "failed to retrieve plan", err)
	}

	s.logger.Debug("retrieved plan successfully",
		"slug", slug,
		"status", plan.Status)

	return plan, nil
}

// ListLatestCompleted retrieves the most recently completed plans
func (s *planServiceImpl) ListLatestCompleted(ctx context.Context, limit int) ([]*domain.Plan, error) {
	plans, err := s.planRepo.ListByStatus(ctx, domain.PlanStatusCompleted, limit, 0)
	if err != nil {
		s.logger.Error("failed to list completed plans", "error", err)
		return nil, NewPlanServiceError("list_plans", "failed to list completed plans", err)
	}
	return plans, nil
}
