package plan

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockPlanService struct{ mock.Mock }

func (m *MockPlanService) DecrementMessage(ctx context.Context, userID, trainerID int) (bool, error) {
	args := m.Called(ctx, userID, trainerID)
	return args.Bool(0), args.Error(1)
}

func (m *MockPlanService) DecrementVideoCall(ctx context.Context, userID, trainerID int) (bool, error) {
	args := m.Called(ctx, userID, trainerID)
	return args.Bool(0), args.Error(1)
}

func (m *MockPlanService) Purchase(ctx context.Context, userID, trainerID int, planType PlanType) (*UserPlan, error) {
	args := m.Called(ctx, userID, trainerID, planType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*UserPlan), args.Error(1)
}

func (m *MockPlanService) GetPlan(ctx context.Context, userID, trainerID int) (*UserPlan, error) {
	args := m.Called(ctx, userID, trainerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*UserPlan), args.Error(1)
}

func (m *MockPlanService) ListMyPlans(ctx context.Context, userID int) ([]*UserPlan, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*UserPlan), args.Error(1)
}

func (m *MockPlanService) Cancel(ctx context.Context, userID, trainerID int) (int64, error) {
	args := m.Called(ctx, userID, trainerID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockPlanService) Sweep(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func setupRouter(svc Service, userID int) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set("user_id", userID)
		c.Next()
	})

	handler := NewHandler(svc)
	router.POST("/user/plans", handler.PurchasePlan)
	router.GET("/user/plans", handler.ListMyPlans)
	router.GET("/user/plans/:trainerID", handler.GetPlan)
	router.POST("/user/plans/:trainerID/cancel", handler.CancelPlan)

	return router
}

func TestPurchasePlanEndpoint(t *testing.T) {
	svc := new(MockPlanService)
	router := setupRouter(svc, 42)

	svc.On("Purchase", mock.Anything, 42, 7, PlanPremium).
		Return(&UserPlan{ID: 1, UserID: 42, TrainerID: 7, PlanType: PlanPremium, MessagesLeft: PremiumMessages}, nil)

	body, _ := json.Marshal(PurchasePlanRequest{TrainerID: 7, PlanType: PlanPremium})
	req := httptest.NewRequest(http.MethodPost, "/user/plans", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)

	var plan UserPlan
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &plan))
	assert.Equal(t, PremiumMessages, plan.MessagesLeft)
}

func TestPurchasePlanUnknownType(t *testing.T) {
	svc := new(MockPlanService)
	router := setupRouter(svc, 42)

	svc.On("Purchase", mock.Anything, 42, 7, PlanType("gold")).
		Return(nil, ErrUnknownPlanType)

	body, _ := json.Marshal(PurchasePlanRequest{TrainerID: 7, PlanType: "gold"})
	req := httptest.NewRequest(http.MethodPost, "/user/plans", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetPlanEndpoint(t *testing.T) {
	t.Run("Found", func(t *testing.T) {
		svc := new(MockPlanService)
		router := setupRouter(svc, 42)
		svc.On("GetPlan", mock.Anything, 42, 7).
			Return(&UserPlan{ID: 1, UserID: 42, TrainerID: 7, PlanType: PlanPro}, nil)

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/user/plans/7", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"pro"`)
	})

	t.Run("No active plan", func(t *testing.T) {
		svc := new(MockPlanService)
		router := setupRouter(svc, 42)
		svc.On("GetPlan", mock.Anything, 42, 9).Return(nil, ErrPlanNotFound)

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/user/plans/9", nil))

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestCancelPlanEndpoint(t *testing.T) {
	svc := new(MockPlanService)
	router := setupRouter(svc, 42)

	svc.On("Cancel", mock.Anything, 42, 7).Return(int64(120900), nil)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/user/plans/7/cancel", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"refund_cents":120900`)
}
