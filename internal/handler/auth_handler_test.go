package handler

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/nastava-api/internal/middleware"
	"github.com/noah-isme/nastava-api/internal/models"
	appErrors "github.com/noah-isme/nastava-api/pkg/errors"
)

type authServiceMock struct {
	lastReq models.LoginRequest
}

func (m *authServiceMock) Login(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error) {
	m.lastReq = req
	if req.Password != "tajna123" {
		return nil, appErrors.ErrInvalidCredentials
	}
	return &models.LoginResponse{Token: "signed", User: models.UserInfo{ID: "u1", Username: req.Username, Role: models.RoleStaff}}, nil
}

func TestAuthHandlerLogin(t *testing.T) {
	svc := &authServiceMock{}
	handler := NewAuthHandler(svc)

	c, w := jsonContext(t, http.MethodPost, "/auth/login", map[string]string{"username": "referent", "password": "tajna123"})
	c.Request.Header.Set("User-Agent", "test-agent")
	handler.Login(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"token":"signed"`)
	assert.Equal(t, "test-agent", svc.lastReq.UserAgent)

	c, w = jsonContext(t, http.MethodPost, "/auth/login", map[string]string{"username": "referent", "password": "kriva"})
	handler.Login(c)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	c, w = jsonContext(t, http.MethodPost, "/auth/login", "not json")
	handler.Login(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAuthHandlerMe(t *testing.T) {
	handler := NewAuthHandler(&authServiceMock{})

	c, w := jsonContext(t, http.MethodGet, "/auth/me", nil)
	handler.Me(c)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	c, w = jsonContext(t, http.MethodGet, "/auth/me", nil)
	c.Set(middleware.ContextUserKey, &models.AuthContext{UserID: "u1", Username: "admin", Role: models.RoleAdmin})
	handler.Me(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"role":"ADMIN"`)
}

func TestHealthReportsDatabaseState(t *testing.T) {
	c, w := jsonContext(t, http.MethodGet, "/health", nil)
	NewMetricsHandler(nil, func(ctx context.Context) error { return nil }).Health(c)
	assert.Equal(t, http.StatusOK, w.Code)

	c, w = jsonContext(t, http.MethodGet, "/health", nil)
	NewMetricsHandler(nil, func(ctx context.Context) error { return errors.New("connection refused") }).Health(c)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "down")
}
