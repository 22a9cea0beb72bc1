package service

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"os"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/jmickel/wayfarer-api/internal/domain"
	"github.com/jmickel/wayfarer-api/internal/store"
	"github.com/jmickel/wayfarer-api/internal/task"
)

// MockPlanRepository is a mock implementation of the PlanRepository
type MockPlanRepository struct {
	mock.Mock
	db *sql.DB
}

func (m *MockPlanRepository) Create(ctx context.Context, plan *domain.Plan) error {
	args := m.Called(ctx, plan)
	return args.Error(0)
}

func (m *MockPlanRepository) GetBySlug(ctx context.Context, slug string) (*domain.Plan, error) {
	args := m.Called(ctx, slug)
	plan, _ := args.Get(0).(*domain.Plan)
	return plan, args.Error(1)
}

func (m *MockPlanRepository) FindByParams(
	ctx context.Context,
	params domain.PlanParams,
) (*domain.Plan, error) {
	args := m.Called(ctx, params)
	plan, _ := args.Get(0).(*domain.Plan)
	return plan, args.Error(1)
}

func (m *MockPlanRepository) ListByStatus(
	ctx context.Context,
	status domain.PlanStatus,
	limit, offset int,
) ([]*domain.Plan, error) {
	args := m.Called(ctx, status, limit, offset)
	plans, _ := args.Get(0).([]*domain.Plan)
	return plans, args.Error(1)
}

func (m *MockPlanRepository) WithTx(tx *sql.Tx) PlanRepository {
	// The mock records calls on the same instance inside transactions.
	return m
}

func (m *MockPlanRepository) DB() *sql.DB {
	return m.db
}

// MockTaskRunner is a mock implementation of the TaskRunner
type MockTaskRunner struct {
	mock.Mock
}

func (m *MockTaskRunner) Submit(ctx context.Context, t task.Task) error {
	args := m.Called(ctx, t)
	return args.Error(0)
}

// MockTaskFactory is a mock factory for creating plan generation tasks
type MockTaskFactory struct {
	mock.Mock
}

func (m *MockTaskFactory) CreateTask(slug string) (task.Task, error) {
	args := m.Called(slug)
	tk, _ := args.Get(0).(task.Task)
	return tk, args.Error(1)
}

// MockTask is a minimal Task implementation for service tests
type MockTask struct {
	id uuid.UUID
}

func NewMockTask() *MockTask                         { return &MockTask{id: uuid.New()} }
func (m *MockTask) ID() uuid.UUID                    { return m.id }
func (m *MockTask) Type() string                     { return task.TaskTypePlanGeneration }
func (m *MockTask) Payload() []byte                  { return []byte{} }
func (m *MockTask) Status() task.TaskStatus          { return task.TaskStatusPending }
func (m *MockTask) Execute(ctx context.Context) error { return nil }

func serviceTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

// newTestRepo builds a mock repository whose DB() is backed by sqlmock,
// pre-armed for a single successful transaction.
func newTestRepo(t *testing.T) (*MockPlanRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, dbMock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	return &MockPlanRepository{db: db}, dbMock
}

func TestNewPlanServiceValidation(t *testing.T) {
	repo := &MockPlanRepository{}
	runner := &MockTaskRunner{}
	factory := &MockTaskFactory{}

	_, err := NewPlanService(nil, runner, factory, nil)
	assert.Error(t, err)

	_, err = NewPlanService(repo, nil, factory, nil)
	assert.Error(t, err)

	_, err = NewPlanService(repo, runner, nil, nil)
	assert.Error(t, err)

	svc, err := NewPlanService(repo, runner, factory, nil)
	require.NoError(t, err)
	assert.NotNil(t, svc)
}

func TestCreatePlanAndEnqueueTask_Success(t *testing.T) {
	repo, dbMock := newTestRepo(t)
	runner := &MockTaskRunner{}
	factory := &MockTaskFactory{}
	mockTask := NewMockTask()

	dbMock.ExpectBegin()
	dbMock.ExpectCommit()

	repo.On("FindByParams", mock.Anything, mock.Anything).Return(nil, store.ErrPlanNotFound)
	repo.On("Create", mock.Anything, mock.MatchedBy(func(plan *domain.Plan) bool {
		return plan.Params.Destination == "Tokyo" &&
			plan.Params.Days == 5 &&
			plan.Status == domain.PlanStatusPending
	})).Return(nil)
	factory.On("CreateTask", mock.MatchedBy(func(slug string) bool {
		return slug != ""
	})).Return(mockTask, nil)
	runner.On("Submit", mock.Anything, mockTask).Return(nil)

	svc, err := NewPlanService(repo, runner, factory, serviceTestLogger())
	require.NoError(t, err)

	plan, created, err := svc.CreatePlanAndEnqueueTask(context.Background(), "5 days in Tokyo")
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, "Tokyo", plan.Params.Destination)
	assert.Equal(t, domain.PlanStatusPending, plan.Status)

	repo.AssertExpectations(t)
	factory.AssertExpectations(t)
	runner.AssertExpectations(t)
	assert.NoError(t, dbMock.ExpectationsWereMet())
}

func TestCreatePlanAndEnqueueTask_RejectsNonTravelText(t *testing.T) {
	repo, _ := newTestRepo(t)
	svc, err := NewPlanService(repo, &MockTaskRunner{}, &MockTaskFactory{}, serviceTestLogger())
	require.NoError(t, err)

	_, _, err = svc.CreatePlanAndEnqueueTask(context.Background(), "write me a sorting algorithm")
	assert.ErrorIs(t, err, domain.ErrNotTravelRelated)

	// Nothing was persisted or enqueued.
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCreatePlanAndEnqueueTask_ReturnsExistingPlan(t *testing.T) {
	repo, _ := newTestRepo(t)

	existing, err := domain.NewPlan("tokyo-5-days-moderate-friends-xyz", domain.PlanParams{
		Destination: "Tokyo", Days: 5, Budget: "moderate", TravelerType: "friends",
	})
	require.NoError(t, err)

	repo.On("FindByParams", mock.Anything, mock.Anything).Return(existing, nil)

	svc, err := NewPlanService(repo, &MockTaskRunner{}, &MockTaskFactory{}, serviceTestLogger())
	require.NoError(t, err)

	plan, created, err := svc.CreatePlanAndEnqueueTask(context.Background(), "5 days in Tokyo")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, existing.Slug, plan.Slug)

	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCreatePlanAndEnqueueTask_ConcurrentDuplicate(t *testing.T) {
	repo, dbMock := newTestRepo(t)

	winner, err := domain.NewPlan("tokyo-5-days-moderate-friends-winner", domain.PlanParams{
		Destination: "Tokyo", Days: 5, Budget: "moderate", TravelerType: "friends",
	})
	require.NoError(t, err)

	dbMock.ExpectBegin()
	dbMock.ExpectRollback()

	// First lookup misses; insert loses the race; second lookup finds the winner.
	repo.On("FindByParams", mock.Anything, mock.Anything).Return(nil, store.ErrPlanNotFound).Once()
	repo.On("Create", mock.Anything, mock.Anything).Return(store.ErrPlanParamsExist)
	repo.On("FindByParams", mock.Anything, mock.Anything).Return(winner, nil).Once()

	svc, err := NewPlanService(repo, &MockTaskRunner{}, &MockTaskFactory{}, serviceTestLogger())
	require.NoError(t, err)

	plan, created, err := svc.CreatePlanAndEnqueueTask(context.Background(), "5 days in Tokyo")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, winner.Slug, plan.Slug)
}

func TestCreatePlanAndEnqueueTask_SubmitFails(t *testing.T) {
	repo, dbMock := newTestRepo(t)
	runner := &MockTaskRunner{}
	factory := &MockTaskFactory{}
	mockTask := NewMockTask()

	dbMock.ExpectBegin()
	dbMock.ExpectCommit()

	repo.On("FindByParams", mock.Anything, mock.Anything).Return(nil, store.ErrPlanNotFound)
	repo.On("Create", mock.Anything, mock.Anything).Return(nil)
	factory.On("CreateTask", mock.Anything).Return(mockTask, nil)
	runner.On("Submit", mock.Anything, mockTask).Return(errors.New("queue full"))

	svc, err := NewPlanService(repo, runner, factory, serviceTestLogger())
	require.NoError(t, err)

	_, _, err = svc.CreatePlanAndEnqueueTask(context.Background(), "5 days in Tokyo")
	require.Error(t, err)

	var svcErr *PlanServiceError
	assert.ErrorAs(t, err, &svcErr)
	assert.Equal(t, "create_plan", svcErr.Operation)
}

func TestGetPlan(t *testing.T) {
	repo, _ := newTestRepo(t)

	plan, err := domain.NewPlan("kyoto-4-days-budget-family-abc", domain.PlanParams{
		Destination: "Kyoto", Days: 4, Budget: "budget", TravelerType: "family",
	})
	require.NoError(t, err)

	repo.On("GetBySlug", mock.Anything, plan.Slug).Return(plan, nil)
	repo.On("GetBySlug", mock.Anything, "missing").Return(nil, store.ErrPlanNotFound)

	svc, err := NewPlanService(repo, &MockTaskRunner{}, &MockTaskFactory{}, serviceTestLogger())
	require.NoError(t, err)

	got, err := svc.GetPlan(context.Background(), plan.Slug)
	require.NoError(t, err)
	assert.Equal(t, plan.Slug, got.Slug)

	_, err = svc.GetPlan(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrPlanNotFound)
}

func TestListLatestCompleted(t *testing.T) {
	repo, _ := newTestRepo(t)

	completed, err := domain.NewPlan("rome-2-days-luxury-couple-abc", domain.PlanParams{
		Destination: "Rome", Days: 2, Budget: "luxury", TravelerType: "couple",
	})
	require.NoError(t, err)
	require.NoError(t, completed.UpdateStatus(domain.PlanStatusCompleted))

	repo.On("ListByStatus", mock.Anything, domain.PlanStatusCompleted, 10, 0).
		Return([]*domain.Plan{completed}, nil)

	svc, err := NewPlanService(repo, &MockTaskRunner{}, &MockTaskFactory{}, serviceTestLogger())
	require.NoError(t, err)

	plans, err := svc.ListLatestCompleted(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, plans, 1)
	assert.Equal(t, completed.Slug, plans[0].Slug)
}
