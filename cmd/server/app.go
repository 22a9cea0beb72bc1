package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmickel/wayfarer-api/internal/config"
	"github.com/jmickel/wayfarer-api/internal/platform/gemini"
	"github.com/jmickel/wayfarer-api/internal/platform/postgres"
	"github.com/jmickel/wayfarer-api/internal/platform/unsplash"
	"github.com/jmickel/wayfarer-api/internal/quota"
	"github.com/jmickel/wayfarer-api/internal/service"
	"github.com/jmickel/wayfarer-api/internal/task"
)

// application holds the fully wired dependency graph for the server.
type application struct {
	config      *config.Config
	logger      *slog.Logger
	db          *sql.DB
	planStore   *postgres.PostgresPlanStore
	planService service.PlanService
	taskRunner  *task.TaskRunner
	taskFactory *task.PlanGenerationTaskFactory
}

// initializeApp builds the application from configuration: database,
// stores, generation backends, the background task runner, and services.
func initializeApp(
	ctx context.Context,
	cfg *config.Config,
	logger *slog.Logger,
) (*application, error) {
	db, err := setupAppDatabase(cfg, logger)
	if err != nil {
		return nil, err
	}

	planStore := postgres.NewPostgresPlanStore(db, logger)

	quotaTracker := quota.NewTracker(cfg.LLM.DailyRequestLimit)

	generator, err := gemini.NewGeminiGenerator(ctx, logger, cfg.LLM, quotaTracker)
	if err != nil {
		return nil, fmt.Errorf("failed to create itinerary generator: %w", err)
	}

	imageClient := unsplash.NewClient(
		cfg.Image.UnsplashAccessKey,
		logger,
		unsplash.WithTimeout(time.Duration(cfg.Image.TimeoutSeconds)*time.Second),
	)

	taskFactory := task.NewPlanGenerationTaskFactory(
		planStore,
		generator,
		imageClient,
		logger,
		cfg.Task.MaxAttempts,
		time.Duration(cfg.Task.RetryDelaySeconds)*time.Second,
	)

	taskRunner := task.NewTaskRunner(task.TaskRunnerConfig{
		WorkerCount: cfg.Task.WorkerCount,
		QueueSize:   cfg.Task.QueueSize,
	}, logger)

	planRepo := service.NewPlanRepositoryAdapter(planStore, db)

	planService, err := service.NewPlanService(planRepo, taskRunner, taskFactory, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create plan service: %w", err)
	}

	return &application{
		config:      cfg,
		logger:      logger,
		db:          db,
		planStore:   planStore,
		planService: planService,
		taskRunner:  taskRunner,
		taskFactory: taskFactory,
	}, nil
}

// run starts background processing, requeues any plans interrupted by a
// previous shutdown, and serves HTTP until a termination signal arrives.
func (app *application) run(ctx context.Context) error {
	if err := app.taskRunner.Start(); err != nil {
		return fmt.Errorf("failed to start task runner: %w", err)
	}

	app.requeuePendingPlans(ctx)

	return app.startHTTPServer(ctx, app.setupRouter())
}

// requeuePendingPlans resubmits plans that were accepted but never reached
// a terminal status. The plan row itself is the durable task record, so a
// restart scan is all the recovery the system needs.
func (app *application) requeuePendingPlans(ctx context.Context) {
	tasks, err := app.taskFactory.PendingPlanTasks(ctx)
	if err != nil {
		app.logger.Error("failed to scan for pending plans", "error", err)
		return
	}

	requeued := 0
	for _, t := range tasks {
		if err := app.taskRunner.Submit(ctx, t); err != nil {
			app.logger.Warn("failed to requeue pending plan task",
				"task_id", t.ID(),
				"error", err)
			continue
		}
		requeued++
	}

	if requeued > 0 {
		app.logger.Info("requeued pending plans from previous run", "count", requeued)
	}
}

// cleanup releases application resources during shutdown.
func (app *application) cleanup() {
	app.taskRunner.Stop()

	if err := app.db.Close(); err != nil {
		app.logger.Error("failed to close database connection", "error", err)
	}
}
