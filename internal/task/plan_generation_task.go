package task

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/jmickel/wayfarer-api/internal/domain"
	"github.com/jmickel/wayfarer-api/internal/generation"
	"github.com/jmickel/wayfarer-api/internal/quota"
	"github.com/jmickel/wayfarer-api/internal/recovery"
	"github.com/jmickel/wayfarer-api/internal/store"
)

// Status constants for PlanGenerationTask
// These match the TaskStatus values defined in task.go
const (
	statusPending    = "pending"
	statusProcessing = "processing"
	statusCompleted  = "completed"
	statusFailed     = "failed"
)

// Defaults for the attempt budget when the configuration leaves them unset.
const (
	defaultMaxAttempts = 3
	defaultRetryDelay  = time.Second
)

// generationTimeout bounds a single backend call. The attempt budget, not
// the caller's context, decides how long the task keeps trying overall.
const generationTimeout = 30 * time.Second

// Common errors
var (
	ErrNilPlanRepository = errors.New("plan repository cannot be nil")
	ErrNilGenerator      = errors.New("generator cannot be nil")
	ErrNilImageFetcher   = errors.New("image fetcher cannot be nil")
	ErrNilLogger         = errors.New("logger cannot be nil")
	ErrEmptyPlanSlug     = errors.New("plan slug cannot be empty")
)

// PlanRepository defines the persistence operations the task needs.
// It is the subset of store.PlanStore the orchestration touches.
type PlanRepository interface {
	// GetBySlug retrieves a plan by its unique slug
	GetBySlug(ctx context.Context, slug string) (*domain.Plan, error)

	// UpdateStatus transitions the plan and writes the result fields
	UpdateStatus(
		ctx context.Context,
		slug string,
		status domain.PlanStatus,
		update store.PlanUpdate,
	) (*domain.Plan, error)
}

// Generator defines the interface for itinerary generation backends
type Generator interface {
	// GenerateItinerary produces the raw model response for the prompt
	GenerateItinerary(ctx context.Context, prompt string) (string, error)
}

// ImageFetcher defines the interface for hero image providers. Fetching
// never fails; providers degrade to a fallback image internally.
type ImageFetcher interface {
	FetchHeroImage(ctx context.Context, destination string) domain.HeroImage
}

// planGenerationPayload represents the serialized data stored in the task
type planGenerationPayload struct {
	Slug string `json:"slug"`
}

// PlanGenerationTask implements the Task interface for generating an
// itinerary for a pending plan.
//
// The task is the failure boundary for one plan: generation and schema
// repair run inside a bounded attempt loop, image acquisition is isolated
// so it can never fail the plan, and the terminal outcome is persisted on
// the plan record itself.
type PlanGenerationTask struct {
	id           uuid.UUID
	slug         string
	planRepo     PlanRepository
	generator    Generator
	imageFetcher ImageFetcher
	validate     *validator.Validate
	logger       *slog.Logger
	status       string // Using string to mirror TaskStatus without import knots
	maxAttempts  int
	retryDelay   time.Duration
}

// NewPlanGenerationTask creates a new plan generation task.
// maxAttempts counts the first try; non-positive values fall back to the
// default budget. A negative retryDelay falls back to the default pause.
func NewPlanGenerationTask(
	slug string,
	planRepo PlanRepository,
	generator Generator,
	imageFetcher ImageFetcher,
	logger *slog.Logger,
	maxAttempts int,
	retryDelay time.Duration,
) (*PlanGenerationTask, error) {
	// Validate dependencies
	if planRepo == nil {
		return nil, ErrNilPlanRepository
	}
	if generator == nil {
		return nil, ErrNilGenerator
	}
	if imageFetcher == nil {
		return nil, ErrNilImageFetcher
	}
	if logger == nil {
		return nil, ErrNilLogger
	}
	if slug == "" {
		return nil, ErrEmptyPlanSlug
	}

	if maxAttempts <= 0 {
		maxAttempts = defaultMaxAttempts
	}
	if retryDelay < 0 {
		retryDelay = defaultRetryDelay
	}

	return &PlanGenerationTask{
		id:           uuid.New(),
		slug:         slug,
		planRepo:     planRepo,
		generator:    generator,
		imageFetcher: imageFetcher,
		validate:     validator.New(),
		logger:       logger.With("task_type", TaskTypePlanGeneration, "slug", slug),
		status:       statusPending,
		maxAttempts:  maxAttempts,
		retryDelay:   retryDelay,
	}, nil
}

// ID returns the task's unique identifier
func (t *PlanGenerationTask) ID() uuid.UUID {
	return t.id
}

// Type returns the task type identifier
func (t *PlanGenerationTask) Type() string {
	return TaskTypePlanGeneration
}

// Payload returns the task data as a byte slice
func (t *PlanGenerationTask) Payload() []byte {
	data, err := json.Marshal(planGenerationPayload{Slug: t.slug})
	if err != nil {
		// If marshal fails, return an empty payload with error logged
		t.logger.Error("failed to marshal task payload", "error", err)
		return []byte{}
	}
	return data
}

// Status returns the current task status
// We convert the string to TaskStatus to fulfill the Task interface
func (t *PlanGenerationTask) Status() TaskStatus {
	return TaskStatus(t.status)
}

// Execute runs the plan generation task, handling the complete lifecycle
// from loading the plan, generating and repairing the itinerary within the
// attempt budget, fetching a hero image, and persisting the terminal state.
func (t *PlanGenerationTask) Execute(ctx context.Context) error {
	t.status = statusProcessing
	t.logger.Info("starting plan generation task")

	// Check for context cancellation
	if err := ctx.Err(); err != nil {
		t.status = statusFailed
		t.logger.Error("task cancelled by context", "error", err)
		return fmt.Errorf("task cancelled by context: %w", err)
	}

	// 1. Retrieve the plan
	plan, err := t.planRepo.GetBySlug(ctx, t.slug)
	if err != nil {
		t.status = statusFailed
		t.logger.Error("failed to retrieve plan", "error", err)
		return fmt.Errorf("failed to retrieve plan: %w", err)
	}

	// A terminal plan can reach the queue again through a restart requeue
	// racing a completed run. Nothing to do.
	if plan.IsTerminal() {
		t.status = statusCompleted
		t.logger.Info("plan already in terminal state, skipping",
			"plan_status", string(plan.Status))
		return nil
	}

	// 2. Generate the itinerary within the attempt budget
	prompt := generation.BuildPrompt(plan.Params)

	payload, raw, genErr := t.generateWithRetry(ctx, prompt)
	if genErr != nil {
		return t.fail(ctx, genErr)
	}

	// 3. Fill an empty itinerary with placeholder days so a completed plan
	// always has one entry per requested day
	if len(payload.Itinerary) == 0 {
		payload.Itinerary = placeholderItinerary(plan.Params)
		t.logger.Warn("recovered payload had no itinerary days, synthesized placeholders",
			"days", plan.Params.Days)
	}

	// 4. Fetch the hero image. This is an isolated failure domain: the
	// fetcher degrades internally and never blocks completion.
	image := t.imageFetcher.FetchHeroImage(ctx, plan.Params.Destination)

	// 5. Persist the completed plan
	update := store.PlanUpdate{
		Title:            payload.Title,
		Summary:          payload.Summary,
		Highlights:       payload.Highlights,
		Itinerary:        payload.Days(),
		HeroImage:        &image,
		RawResponse:      raw,
		GeneratorVersion: generation.GeneratorVersion,
		PromptVersion:    generation.PromptVersion,
	}

	if _, err := t.planRepo.UpdateStatus(ctx, t.slug, domain.PlanStatusCompleted, update); err != nil {
		t.status = statusFailed
		t.logger.Error("failed to persist completed plan", "error", err)
		return fmt.Errorf("failed to persist completed plan: %w", err)
	}

	t.status = statusCompleted
	t.logger.Info("plan generation task completed successfully",
		"itinerary_days", len(payload.Itinerary))
	return nil
}

// generateWithRetry runs the generate-recover-validate pipeline up to
// maxAttempts times with a fixed pause between attempts. Recovery and
// schema validation failures consume attempts the same way upstream
// failures do.
func (t *PlanGenerationTask) generateWithRetry(
	ctx context.Context,
	prompt string,
) (*generation.ItineraryPayload, string, error) {
	var lastErr error

	for attempt := 1; attempt <= t.maxAttempts; attempt++ {
		if attempt > 1 {
			select {
			case <-time.After(t.retryDelay):
			case <-ctx.Done():
				return nil, "", fmt.Errorf("generation cancelled: %w", ctx.Err())
			}
		}

		t.logger.Info("generation attempt",
			"attempt", attempt,
			"max_attempts", t.maxAttempts)

		genCtx, cancel := context.WithTimeout(ctx, generationTimeout)
		raw, err := t.generator.GenerateItinerary(genCtx, prompt)
		cancel()
		if err != nil {
			// Quota exhaustion is terminal: the counter does not reset
			// until the next calendar day, so further attempts can only
			// burn delay.
			if errors.Is(err, quota.ErrQuotaExceeded) {
				t.logger.Warn("daily quota exhausted, abandoning generation",
					"attempt", attempt)
				return nil, "", fmt.Errorf("generation call failed: %w", err)
			}
			lastErr = fmt.Errorf("generation call failed: %w", err)
			t.logger.Warn("generation attempt failed",
				"attempt", attempt, "error", err)
			continue
		}

		payload, err := recovery.Recover(raw)
		if err != nil {
			lastErr = fmt.Errorf("response recovery failed: %w", err)
			t.logger.Warn("response recovery failed",
				"attempt", attempt, "error", err)
			continue
		}

		if err := t.validate.Struct(payload); err != nil {
			lastErr = fmt.Errorf("recovered payload failed schema validation: %w", err)
			t.logger.Warn("recovered payload failed schema validation",
				"attempt", attempt, "error", err)
			continue
		}

		return payload, raw, nil
	}

	return nil, "", fmt.Errorf("%w: all %d attempts exhausted: %v",
		generation.ErrGenerationFailed, t.maxAttempts, lastErr)
}

// fail records the terminal failure on the plan and reports the error to
// the runner. A persistence failure here is logged but the original
// generation error is what surfaces.
func (t *PlanGenerationTask) fail(ctx context.Context, genErr error) error {
	t.status = statusFailed
	t.logger.Error("plan generation failed", "error", genErr)

	update := store.PlanUpdate{ErrorMessage: genErr.Error()}
	if _, err := t.planRepo.UpdateStatus(ctx, t.slug, domain.PlanStatusFailed, update); err != nil {
		t.logger.Error("failed to persist failed plan status", "error", err)
	}

	return genErr
}

// placeholderItinerary builds one generic day entry per requested day.
func placeholderItinerary(params domain.PlanParams) []generation.DaySchema {
	days := make([]generation.DaySchema, 0, params.Days)
	for i := 1; i <= params.Days; i++ {
		days = append(days, generation.DaySchema{
			Day:   i,
			Title: fmt.Sprintf("Day %d", i),
			Activities: []string{
				"Explore " + params.Destination,
				"Visit local attractions",
				"Enjoy local cuisine",
			},
		})
	}
	return days
}
