package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/jmickel/wayfarer-api/internal/domain"
	"github.com/jmickel/wayfarer-api/internal/service"
)

// mockPlanService is a mock implementation of service.PlanService
type mockPlanService struct {
	mock.Mock
}

func (m *mockPlanService) CreatePlanAndEnqueueTask(
	ctx context.Context,
	text string,
) (*domain.Plan, bool, error) {
	args := m.Called(ctx, text)
	plan, _ := args.Get(0).(*domain.Plan)
	return plan, args.Bool(1), args.Error(2)
}

func (m *mockPlanService) GetPlan(ctx context.Context, slug string) (*domain.Plan, error) {
	args := m.Called(ctx, slug)
	plan, _ := args.Get(0).(*domain.Plan)
	return plan, args.Error(1)
}

func (m *mockPlanService) ListLatestCompleted(
	ctx context.Context,
	limit int,
) ([]*domain.Plan, error) {
	args := m.Called(ctx, limit)
	plans, _ := args.Get(0).([]*domain.Plan)
	return plans, args.Error(1)
}

// newPlanRouter wires a PlanHandler into a chi router the way the server does.
func newPlanRouter(svc service.PlanService) http.Handler {
	handler := NewPlanHandler(svc)
	r := chi.NewRouter()
	r.Route("/api/plans", func(r chi.Router) {
		r.Post("/", handler.CreatePlan)
		r.Get("/", handler.ListPlans)
		r.Get("/{slug}", handler.GetPlan)
		r.Get("/{slug}/status", handler.GetPlanStatus)
	})
	return r
}

func testPlan(t *testing.T, status domain.PlanStatus) *domain.Plan {
	t.Helper()
	plan, err := domain.NewPlan("tokyo-5-days-moderate-solo-abc123", domain.PlanParams{
		Destination:  "Tokyo",
		Days:         5,
		Budget:       "moderate",
		TravelerType: "solo",
	})
	require.NoError(t, err)
	if status != domain.PlanStatusPending {
		require.NoError(t, plan.UpdateStatus(status))
	}
	return plan
}

func TestCreatePlan_Accepted(t *testing.T) {
	svc := &mockPlanService{}
	plan := testPlan(t, domain.PlanStatusPending)
	svc.On("CreatePlanAndEnqueueTask", mock.Anything, "5 days in Tokyo").
		Return(plan, true, nil)

	router := newPlanRouter(svc)

	body, _ := json.Marshal(CreatePlanRequest{Text: "5 days in Tokyo"})
	req := httptest.NewRequest(http.MethodPost, "/api/plans", bytes.NewReader(body))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusAccepted, w.Code)

	var resp PlanResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, plan.Slug, resp.Slug)
	assert.Equal(t, "Tokyo", resp.Destination)
	assert.Equal(t, string(domain.PlanStatusPending), resp.Status)

	svc.AssertExpectations(t)
}

func TestCreatePlan_ExistingPlanReturnsOK(t *testing.T) {
	svc := &mockPlanService{}
	plan := testPlan(t, domain.PlanStatusCompleted)
	svc.On("CreatePlanAndEnqueueTask", mock.Anything, mock.Anything).
		Return(plan, false, nil)

	router := newPlanRouter(svc)

	body, _ := json.Marshal(CreatePlanRequest{Text: "5 days in Tokyo"})
	req := httptest.NewRequest(http.MethodPost, "/api/plans", bytes.NewReader(body))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp PlanResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, plan.Slug, resp.Slug)
}

func TestCreatePlan_RejectsNonTravelPrompt(t *testing.T) {
	svc := &mockPlanService{}
	svc.On("CreatePlanAndEnqueueTask", mock.Anything, mock.Anything).
		Return(nil, false, domain.ErrNotTravelRelated)

	router := newPlanRouter(svc)

	body, _ := json.Marshal(CreatePlanRequest{Text: "write me a sorting algorithm"})
	req := httptest.NewRequest(http.MethodPost, "/api/plans", bytes.NewReader(body))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "does not describe a trip")
}

func TestCreatePlan_InvalidBody(t *testing.T) {
	router := newPlanRouter(&mockPlanService{})

	tests := []struct {
		name string
		body string
	}{
		{name: "malformed json", body: `{"text": `},
		{name: "missing text", body: `{}`},
		{name: "empty text", body: `{"text": ""}`},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(
				http.MethodPost,
				"/api/plans",
				bytes.NewReader([]byte(tc.body)),
			)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestCreatePlan_ServiceError(t *testing.T) {
	svc := &mockPlanService{}
	svc.On("CreatePlanAndEnqueueTask", mock.Anything, mock.Anything).
		Return(nil, false, errors.New("database unavailable"))

	router := newPlanRouter(svc)

	body, _ := json.Marshal(CreatePlanRequest{Text: "5 days in Tokyo"})
	req := httptest.NewRequest(http.MethodPost, "/api/plans", bytes.NewReader(body))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	// The raw error never reaches the client.
	assert.NotContains(t, w.Body.String(), "database unavailable")
}

func TestGetPlan(t *testing.T) {
	svc := &mockPlanService{}
	plan := testPlan(t, domain.PlanStatusCompleted)
	plan.Title = "Five Days in Tokyo"
	plan.Itinerary = []domain.ItineraryDay{
		{Day: 1, Title: "Arrival", Activities: []string{"Check in", "Shibuya at night"}},
	}
	plan.HeroImage = &domain.HeroImage{URL: "https://images.example/tokyo.jpg", Photographer: "A. Smith", Source: "Unsplash"}
	svc.On("GetPlan", mock.Anything, plan.Slug).Return(plan, nil)

	router := newPlanRouter(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/plans/"+plan.Slug, nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp PlanResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Five Days in Tokyo", resp.Title)
	require.Len(t, resp.Itinerary, 1)
	assert.Equal(t, "Arrival", resp.Itinerary[0].Title)
	require.NotNil(t, resp.HeroImage)
	assert.Equal(t, "A. Smith", resp.HeroImage.Photographer)
}

func TestGetPlan_NotFound(t *testing.T) {
	svc := &mockPlanService{}
	svc.On("GetPlan", mock.Anything, "missing-plan").Return(nil, service.ErrPlanNotFound)

	router := newPlanRouter(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/plans/missing-plan", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "Plan not found")
}

func TestGetPlanStatus(t *testing.T) {
	svc := &mockPlanService{}
	plan := testPlan(t, domain.PlanStatusFailed)
	plan.ErrorMessage = "generation failed after 3 attempts"
	svc.On("GetPlan", mock.Anything, plan.Slug).Return(plan, nil)

	router := newPlanRouter(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/plans/"+plan.Slug+"/status", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp PlanStatusResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, plan.Slug, resp.Slug)
	assert.Equal(t, string(domain.PlanStatusFailed), resp.Status)
	assert.Equal(t, "generation failed after 3 attempts", resp.Error)

	// The status payload stays lightweight.
	assert.NotContains(t, w.Body.String(), "itinerary")
}

func TestListPlans(t *testing.T) {
	svc := &mockPlanService{}
	plan := testPlan(t, domain.PlanStatusCompleted)
	svc.On("ListLatestCompleted", mock.Anything, defaultListLimit).
		Return([]*domain.Plan{plan}, nil)

	router := newPlanRouter(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/plans", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp PlanListResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Plans, 1)
	assert.Equal(t, plan.Slug, resp.Plans[0].Slug)
}

func TestListPlans_LimitParameter(t *testing.T) {
	svc := &mockPlanService{}
	svc.On("ListLatestCompleted", mock.Anything, 3).Return([]*domain.Plan{}, nil)

	router := newPlanRouter(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/plans?limit=3", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	svc.AssertExpectations(t)

	req = httptest.NewRequest(http.MethodGet, "/api/plans?limit=zero", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
