package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmickel/wayfarer-api/internal/domain"
	"github.com/jmickel/wayfarer-api/internal/platform/logger"
	"github.com/jmickel/wayfarer-api/internal/store"
)

// planColumns is the select list shared by every query that hydrates a
// full domain.Plan. Keep the order in sync with scanPlan.
const planColumns = `slug, destination, days, budget, traveler_type, status,
		title, summary, highlights, itinerary, hero_image,
		error_message, raw_response, generator_version, prompt_version,
		created_at, updated_at`

// PostgresPlanStore implements the store.PlanStore interface
// using a PostgreSQL database as the storage backend.
type PostgresPlanStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresPlanStore creates a new PostgreSQL implementation of the PlanStore interface.
// It accepts a database connection or transaction that should be initialized and managed by the caller.
// If logger is nil, a default logger will be used.
func NewPostgresPlanStore(db store.DBTX, logger *slog.Logger) *PostgresPlanStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresPlanStore{
		db:     db,
		logger: logger.With(slog.String("component", "plan_store")),
	}
}

// Ensure PostgresPlanStore implements store.PlanStore interface
var _ store.PlanStore = (*PostgresPlanStore)(nil)

// WithTx implements store.PlanStore.WithTx
// It returns a new PlanStore instance bound to the given transaction.
func (s *PostgresPlanStore) WithTx(tx *sql.Tx) store.PlanStore {
	return &PostgresPlanStore{
		db:     tx,
		logger: s.logger,
	}
}

// Create implements store.PlanStore.Create
// It saves a new plan record to the database, handling domain validation.
// Returns store.ErrPlanSlugExists if the slug is already taken and
// store.ErrPlanParamsExist if a plan with the same parameter tuple exists.
func (s *PostgresPlanStore) Create(ctx context.Context, plan *domain.Plan) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := plan.Validate(); err != nil {
		log.Warn("plan validation failed during create",
			slog.String("error", err.Error()),
			slog.String("slug", plan.Slug))
		return err
	}

	query := `
		INSERT INTO plans (slug, destination, days, budget, traveler_type,
			status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		plan.Slug,
		plan.Params.Destination,
		plan.Params.Days,
		plan.Params.Budget,
		plan.Params.TravelerType,
		plan.Status,
		plan.CreatedAt,
		plan.UpdatedAt,
	)

	if err != nil {
		if IsUniqueViolation(err) {
			mapped := mapPlanUniqueViolation(err)
			log.Warn("unique constraint violation during plan creation",
				slog.String("error", err.Error()),
				slog.String("slug", plan.Slug),
				slog.String("destination", plan.Params.Destination))
			return mapped
		}

		log.Error("failed to create plan",
			slog.String("error", err.Error()),
			slog.String("slug", plan.Slug))
		return MapError(err)
	}

	log.Info("plan created successfully",
		slog.String("slug", plan.Slug),
		slog.String("destination", plan.Params.Destination),
		slog.Int("days", plan.Params.Days),
		slog.String("status", string(plan.Status)))
	return nil
}

// GetBySlug implements store.PlanStore.GetBySlug
// It retrieves a plan by its unique slug.
// Returns store.ErrPlanNotFound if the plan does not exist.
func (s *PostgresPlanStore) GetBySlug(ctx context.Context, slug string) (*domain.Plan, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	log.Debug("retrieving plan by slug", slog.String("slug", slug))

	query := fmt.Sprintf(`SELECT %s FROM plans WHERE slug = $1`, planColumns)

	plan, err := scanPlan(s.db.QueryRowContext(ctx, query, slug))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("plan not found", slog.String("slug", slug))
			return nil, store.ErrPlanNotFound
		}
		log.Error("failed to get plan by slug",
			slog.String("error", err.Error()),
			slog.String("slug", slug))
		return nil, MapError(err)
	}

	log.Debug("plan retrieved successfully",
		slog.String("slug", slug),
		slog.String("status", string(plan.Status)))
	return plan, nil
}

// FindByParams implements store.PlanStore.FindByParams
// It retrieves the plan matching the exact parameter tuple, if one exists.
// Returns store.ErrPlanNotFound when there is no match.
func (s *PostgresPlanStore) FindByParams(
	ctx context.Context,
	params domain.PlanParams,
) (*domain.Plan, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	log.Debug("finding plan by params",
		slog.String("destination", params.Destination),
		slog.Int("days", params.Days),
		slog.String("budget", params.Budget),
		slog.String("traveler_type", params.TravelerType))

	query := fmt.Sprintf(`
		SELECT %s FROM plans
		WHERE destination = $1 AND days = $2 AND budget = $3 AND traveler_type = $4
	`, planColumns)

	plan, err := scanPlan(s.db.QueryRowContext(
		ctx, query,
		params.Destination, params.Days, params.Budget, params.TravelerType,
	))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("no plan found for params",
				slog.String("destination", params.Destination))
			return nil, store.ErrPlanNotFound
		}
		log.Error("failed to find plan by params",
			slog.String("error", err.Error()),
			slog.String("destination", params.Destination))
		return nil, MapError(err)
	}

	return plan, nil
}

// UpdateStatus implements store.PlanStore.UpdateStatus
// It transitions a plan to the given status and writes the accompanying
// result fields, enforcing the monotonic lifecycle through the domain
// entity. Returns store.ErrPlanNotFound if the plan does not exist.
func (s *PostgresPlanStore) UpdateStatus(
	ctx context.Context,
	slug string,
	status domain.PlanStatus,
	update store.PlanUpdate,
) (*domain.Plan, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	log.Debug("updating plan status",
		slog.String("slug", slug),
		slog.String("status", string(status)))

	plan, err := s.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}

	if err := plan.UpdateStatus(status); err != nil {
		log.Warn("invalid plan status transition",
			slog.String("error", err.Error()),
			slog.String("slug", slug),
			slog.String("from", string(plan.Status)),
			slog.String("to", string(status)))
		return nil, err
	}

	applyUpdate(plan, update)
	plan.UpdatedAt = time.Now().UTC()

	highlights, err := marshalNullable(plan.Highlights, len(plan.Highlights) == 0)
	if err != nil {
		return nil, fmt.Errorf("failed to encode highlights: %w", err)
	}
	itinerary, err := marshalNullable(plan.Itinerary, len(plan.Itinerary) == 0)
	if err != nil {
		return nil, fmt.Errorf("failed to encode itinerary: %w", err)
	}
	heroImage, err := marshalNullable(plan.HeroImage, plan.HeroImage == nil)
	if err != nil {
		return nil, fmt.Errorf("failed to encode hero image: %w", err)
	}

	query := `
		UPDATE plans
		SET status = $1, title = $2, summary = $3, highlights = $4,
			itinerary = $5, hero_image = $6, error_message = $7,
			raw_response = $8, generator_version = $9, prompt_version = $10,
			updated_at = $11
		WHERE slug = $12
	`

	result, err := s.db.ExecContext(
		ctx,
		query,
		plan.Status,
		nullString(plan.Title),
		nullString(plan.Summary),
		highlights,
		itinerary,
		heroImage,
		nullString(plan.ErrorMessage),
		nullString(plan.RawResponse),
		nullString(plan.GeneratorVersion),
		nullString(plan.PromptVersion),
		plan.UpdatedAt,
		plan.Slug,
	)
	if err != nil {
		log.Error("failed to update plan status",
			slog.String("error", err.Error()),
			slog.String("slug", slug),
			slog.String("status", string(status)))
		return nil, MapError(err)
	}

	if err := CheckRowsAffected(result, "plan"); err != nil {
		log.Debug("plan not found for status update", slog.String("slug", slug))
		return nil, store.ErrPlanNotFound
	}

	log.Info("plan status updated successfully",
		slog.String("slug", slug),
		slog.String("status", string(status)))
	return plan, nil
}

// ListByStatus implements store.PlanStore.ListByStatus
// It retrieves plans with the specified status, newest first.
// Returns an empty slice if no plans match the criteria.
func (s *PostgresPlanStore) ListByStatus(
	ctx context.Context,
	status domain.PlanStatus,
	limit, offset int,
) ([]*domain.Plan, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if limit <= 0 {
		limit = 10 // Default limit
	}
	if offset < 0 {
		offset = 0
	}

	log.Debug("listing plans by status",
		slog.String("status", string(status)),
		slog.Int("limit", limit),
		slog.Int("offset", offset))

	query := fmt.Sprintf(`
		SELECT %s FROM plans
		WHERE status = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`, planColumns)

	rows, err := s.db.QueryContext(ctx, query, status, limit, offset)
	if err != nil {
		log.Error("failed to query plans by status",
			slog.String("error", err.Error()),
			slog.String("status", string(status)))
		return nil, MapError(err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Error("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	plans := []*domain.Plan{}
	for rows.Next() {
		plan, err := scanPlan(rows)
		if err != nil {
			log.Error("failed to scan plan row",
				slog.String("error", err.Error()))
			return nil, err
		}
		plans = append(plans, plan)
	}

	if err := rows.Err(); err != nil {
		log.Error("error after scanning rows",
			slog.String("error", err.Error()))
		return nil, err
	}

	log.Debug("listed plans by status",
		slog.String("status", string(status)),
		slog.Int("count", len(plans)))
	return plans, nil
}

// applyUpdate copies the non-zero fields of a PlanUpdate onto the plan.
func applyUpdate(plan *domain.Plan, update store.PlanUpdate) {
	if update.Title != "" {
		plan.Title = update.Title
	}
	if update.Summary != "" {
		plan.Summary = update.Summary
	}
	if update.Highlights != nil {
		plan.Highlights = update.Highlights
	}
	if update.Itinerary != nil {
		plan.Itinerary = update.Itinerary
	}
	if update.HeroImage != nil {
		plan.HeroImage = update.HeroImage
	}
	if update.RawResponse != "" {
		plan.RawResponse = update.RawResponse
	}
	if update.GeneratorVersion != "" {
		plan.GeneratorVersion = update.GeneratorVersion
	}
	if update.PromptVersion != "" {
		plan.PromptVersion = update.PromptVersion
	}
	if update.ErrorMessage != "" {
		plan.ErrorMessage = update.ErrorMessage
	}
}

// rowScanner abstracts *sql.Row and *sql.Rows for scanPlan.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanPlan hydrates a domain.Plan from a row produced with planColumns.
func scanPlan(row rowScanner) (*domain.Plan, error) {
	var (
		plan       domain.Plan
		status     string
		title      sql.NullString
		summary    sql.NullString
		highlights []byte
		itinerary  []byte
		heroImage  []byte
		errMsg     sql.NullString
		rawResp    sql.NullString
		genVersion sql.NullString
		prVersion  sql.NullString
	)

	err := row.Scan(
		&plan.Slug,
		&plan.Params.Destination,
		&plan.Params.Days,
		&plan.Params.Budget,
		&plan.Params.TravelerType,
		&status,
		&title,
		&summary,
		&highlights,
		&itinerary,
		&heroImage,
		&errMsg,
		&rawResp,
		&genVersion,
		&prVersion,
		&plan.CreatedAt,
		&plan.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	plan.Status = domain.PlanStatus(status)
	plan.Title = title.String
	plan.Summary = summary.String
	plan.ErrorMessage = errMsg.String
	plan.RawResponse = rawResp.String
	plan.GeneratorVersion = genVersion.String
	plan.PromptVersion = prVersion.String

	if len(highlights) > 0 {
		if err := json.Unmarshal(highlights, &plan.Highlights); err != nil {
			return nil, fmt.Errorf("failed to decode highlights: %w", err)
		}
	}
	if len(itinerary) > 0 {
		if err := json.Unmarshal(itinerary, &plan.Itinerary); err != nil {
			return nil, fmt.Errorf("failed to decode itinerary: %w", err)
		}
	}
	if len(heroImage) > 0 {
		var img domain.HeroImage
		if err := json.Unmarshal(heroImage, &img); err != nil {
			return nil, fmt.Errorf("failed to decode hero image: %w", err)
		}
		plan.HeroImage = &img
	}

	return &plan, nil
}

// marshalNullable encodes v as JSON, returning nil (SQL NULL) when empty.
func marshalNullable(v any, empty bool) ([]byte, error) {
	if empty {
		return nil, nil
	}
	return json.Marshal(v)
}

// nullString maps an empty string to SQL NULL.
func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
