package task

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmickel/wayfarer-api/internal/domain"
)

// requeueBatchSize bounds each page when scanning for pending plans.
const requeueBatchSize = 100

// PlanSource extends PlanRepository with the listing operation the factory
// uses to rediscover pending plans after a restart.
type PlanSource interface {
	PlanRepository

	// ListByStatus retrieves plans with the specified status, newest first
	ListByStatus(ctx context.Context, status domain.PlanStatus, limit, offset int) ([]*domain.Plan, error)
}

// PlanGenerationTaskFactory creates PlanGenerationTask instances
type PlanGenerationTaskFactory struct {
	planSource   PlanSource
	generator    Generator
	imageFetcher ImageFetcher
	logger       *slog.Logger
	maxAttempts  int
	retryDelay   time.Duration
}

// NewPlanGenerationTaskFactory creates a new factory for PlanGenerationTasks
func NewPlanGenerationTaskFactory(
	planSource PlanSource,
	generator Generator,
	imageFetcher ImageFetcher,
	logger *slog.Logger,
	maxAttempts int,
	retryDelay time.Duration,
) *PlanGenerationTaskFactory {
	return &PlanGenerationTaskFactory{
		planSource:   planSource,
		generator:    generator,
		imageFetcher: imageFetcher,
		logger:       logger.With("component", "plan_generation_task_factory"),
		maxAttempts:  maxAttempts,
		retryDelay:   retryDelay,
	}
}

// CreateTask creates a new PlanGenerationTask for the specified plan
func (f *PlanGenerationTaskFactory) CreateTask(slug string) (Task, error) {
	task, err := NewPlanGenerationTask(
		slug,
		f.planSource,
		f.generator,
		f.imageFetcher,
		f.logger,
		f.maxAttempts,
		f.retryDelay,
	)
	if err != nil {
		return nil, err
	}
	return task, nil
}

// PendingPlanTasks scans storage for plans still in pending state and
// builds a task for each one. The plan record is the durable task state,
// so this is the whole recovery story after a restart: whatever was queued
// but unfinished is rediscovered here and resubmitted by the caller.
func (f *PlanGenerationTaskFactory) PendingPlanTasks(ctx context.Context) ([]Task, error) {
	var tasks []Task

	for offset := 0; ; offset += requeueBatchSize {
		plans, err := f.planSource.ListByStatus(
			ctx, domain.PlanStatusPending, requeueBatchSize, offset)
		if err != nil {
			return nil, fmt.Errorf("failed to list pending plans: %w", err)
		}
		if len(plans) == 0 {
			break
		}

		for _, plan := range plans {
			task, err := f.CreateTask(plan.Slug)
			if err != nil {
				return nil, fmt.Errorf("failed to create task for plan %s: %w", plan.Slug, err)
			}
			tasks = append(tasks, task)
		}

		if len(plans) < requeueBatchSize {
			break
		}
	}

	if len(tasks) > 0 {
		f.logger.Info("rediscovered pending plans for requeue", "count", len(tasks))
	}

	return tasks, nil
}
