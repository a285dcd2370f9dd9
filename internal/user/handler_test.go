package user

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

type MockUserService struct{ mock.Mock }

func (m *MockUserService) Register(ctx context.Context, req RegisterRequest) (*User, string, string, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, "", "", args.Error(3)
	}
	return args.Get(0).(*User), args.String(1), args.String(2), args.Error(3)
}

func (m *MockUserService) Login(ctx context.Context, req LoginRequest) (*User, string, string, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, "", "", args.Error(3)
	}
	return args.Get(0).(*User), args.String(1), args.String(2), args.Error(3)
}

func (m *MockUserService) GetByID(ctx context.Context, userID int) (*User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*User), args.Error(1)
}

func (m *MockUserService) LogoutEverywhere(ctx context.Context, userID int) error {
	return m.Called(ctx, userID).Error(0)
}

func (m *MockUserService) Ban(ctx context.Context, userID int) error {
	return m.Called(ctx, userID).Error(0)
}

func (m *MockUserService) Unban(ctx context.Context, userID int) error {
	return m.Called(ctx, userID).Error(0)
}

func setupRouter(svc Service, userID int) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()

	if userID != 0 {
		router.Use(func(c *gin.Context) {
			c.Set("user_id", userID)
			c.Next()
		})
	}

	handler := NewHandlerWithService(svc)
	router.POST("/auth/register", handler.Register)
	router.POST("/auth/login", handler.Login)
	router.GET("/me", handler.GetMe)
	router.POST("/auth/logout-everywhere", handler.LogoutEverywhere)
	router.POST("/admin/users/:userID/ban", handler.BanUser)
	router.POST("/admin/users/:userID/unban", handler.UnbanUser)

	return router
}

func postJSON(router *gin.Engine, path string, body any) *httptest.ResponseRecorder {
	payload, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestRegisterEndpoint(t *testing.T) {
	svc := new(MockUserService)
	router := setupRouter(svc, 0)

	req := RegisterRequest{Name: "Alice", Email: "alice@example.com", Password: "password123"}
	svc.On("Register", mock.Anything, req).
		Return(&User{ID: 1, Name: "Alice", Email: "alice@example.com", Role: RoleUser}, "access", "refresh", nil)

	w := postJSON(router, "/auth/register", req)

	assert.Equal(t, http.StatusCreated, w.Code)

	var resp AuthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.User.ID)
	assert.Equal(t, "access", resp.AccessToken)
}

func TestRegisterEndpointDuplicateEmail(t *testing.T) {
	svc := new(MockUserService)
	router := setupRouter(svc, 0)

	req := RegisterRequest{Name: "Alice", Email: "taken@example.com", Password: "password123"}
	svc.On("Register", mock.Anything, req).Return(nil, "", "", ErrEmailExists)

	w := postJSON(router, "/auth/register", req)

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestLoginEndpoint(t *testing.T) {
	t.Run("Invalid credentials", func(t *testing.T) {
		svc := new(MockUserService)
		router := setupRouter(svc, 0)
		svc.On("Login", mock.Anything, mock.Anything).Return(nil, "", "", ErrInvalidCredentials)

		w := postJSON(router, "/auth/login", LoginRequest{Email: "u@example.com", Password: "wrong"})

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("Banned account", func(t *testing.T) {
		svc := new(MockUserService)
		router := setupRouter(svc, 0)
		svc.On("Login", mock.Anything, mock.Anything).Return(nil, "", "", ErrUserBanned)

		w := postJSON(router, "/auth/login", LoginRequest{Email: "banned@example.com", Password: "password123"})

		assert.Equal(t, http.StatusForbidden, w.Code)
	})
}

func TestGetMe(t *testing.T) {
	svc := new(MockUserService)
	router := setupRouter(svc, 1)

	svc.On("GetByID", mock.Anything, 1).
		Return(&User{ID: 1, Name: "Alice", Email: "alice@example.com"}, nil)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "alice@example.com")
}

func TestLogoutEverywhereEndpoint(t *testing.T) {
	svc := new(MockUserService)
	router := setupRouter(svc, 1)

	svc.On("LogoutEverywhere", mock.Anything, 1).Return(nil)

	w := postJSON(router, "/auth/logout-everywhere", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	svc.AssertExpectations(t)
}

func TestBanUserEndpoint(t *testing.T) {
	svc := new(MockUserService)
	router := setupRouter(svc, 1)

	svc.On("Ban", mock.Anything, 2).Return(nil)
	svc.On("Unban", mock.Anything, 3).Return(ErrUserNotFound)

	assert.Equal(t, http.StatusOK, postJSON(router, "/admin/users/2/ban", nil).Code)
	assert.Equal(t, http.StatusNotFound, postJSON(router, "/admin/users/3/unban", nil).Code)
	assert.Equal(t, http.StatusBadRequest, postJSON(router, "/admin/users/abc/ban", nil).Code)
}
