package service

import (
	"context"
	"database/sql"
	"net/http"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/nastava-api/internal/models"
	appErrors "github.com/noah-isme/nastava-api/pkg/errors"
)

type mockAuthRepo struct {
	users            map[string]*models.User
	auditLogs        []*models.AuditLog
	lastLoginUpdated bool
}

func (m *mockAuthRepo) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	for _, u := range m.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *mockAuthRepo) FindByID(ctx context.Context, id string) (*models.User, error) {
	if u, ok := m.users[id]; ok {
		return u, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockAuthRepo) UpdateLastLogin(ctx context.Context, id string, ts time.Time) error {
	m.lastLoginUpdated = true
	return nil
}

func (m *mockAuthRepo) CreateAuditLog(ctx context.Context, log *models.AuditLog) error {
	m.auditLogs = append(m.auditLogs, log)
	return nil
}

func newAuthFixture(t *testing.T, active bool) (*AuthService, *mockAuthRepo) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("tajna123"), bcrypt.MinCost)
	require.NoError(t, err)
	repo := &mockAuthRepo{users: map[string]*models.User{
		"u1": {ID: "u1", Username: "referent", FullName: "Ivana Ivić", Role: models.RoleStaff, Active: active, PasswordHash: string(hash)},
	}}
	svc := NewAuthService(repo, validator.New(), zap.NewNop(), AuthConfig{Secret: "secret", Expiry: time.Hour, Issuer: "nastava-api"})
	return svc, repo
}

func TestAuthServiceLoginSuccess(t *testing.T) {
	svc, repo := newAuthFixture(t, true)

	resp, err := svc.Login(context.Background(), models.LoginRequest{Username: "referent", Password: "tajna123", IP: "127.0.0.1"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, "u1", resp.User.ID)
	assert.Equal(t, models.RoleStaff, resp.User.Role)
	assert.True(t, repo.lastLoginUpdated)
	require.Len(t, repo.auditLogs, 1)
	assert.Equal(t, models.AuditActionLogin, repo.auditLogs[0].Action)

	auth, err := svc.ValidateToken(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, "u1", auth.UserID)
	assert.Equal(t, "referent", auth.Username)
	assert.True(t, auth.HasRole(models.RoleStaff))
}

func TestAuthServiceLoginRejections(t *testing.T) {
	svc, _ := newAuthFixture(t, true)
	ctx := context.Background()

	_, err := svc.Login(ctx, models.LoginRequest{Username: "referent", Password: "kriva"})
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErrors.FromError(err).Code)

	_, err = svc.Login(ctx, models.LoginRequest{Username: "nepoznat", Password: "tajna123"})
	assert.Equal(t, http.StatusUnauthorized, appErrors.FromError(err).Status)

	_, err = svc.Login(ctx, models.LoginRequest{Username: "referent"})
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestAuthServiceLoginInactive(t *testing.T) {
	svc, repo := newAuthFixture(t, false)

	_, err := svc.Login(context.Background(), models.LoginRequest{Username: "referent", Password: "tajna123"})
	assert.Equal(t, http.StatusForbidden, appErrors.FromError(err).Status)
	assert.Empty(t, repo.auditLogs)
}

func TestAuthServiceValidateTokenRejectsTampered(t *testing.T) {
	svc, _ := newAuthFixture(t, true)

	resp, err := svc.Login(context.Background(), models.LoginRequest{Username: "referent", Password: "tajna123"})
	require.NoError(t, err)

	_, err = svc.ValidateToken(resp.Token + "x")
	assert.Equal(t, http.StatusUnauthorized, appErrors.FromError(err).Status)

	other := NewAuthService(&mockAuthRepo{}, nil, nil, AuthConfig{Secret: "different"})
	_, err = other.ValidateToken(resp.Token)
	assert.Error(t, err)
}

func TestAuthServiceValidateTokenExpired(t *testing.T) {
	svc, _ := newAuthFixture(t, true)
	issued := time.Date(2025, 10, 1, 8, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return issued }

	resp, err := svc.Login(context.Background(), models.LoginRequest{Username: "referent", Password: "tajna123"})
	require.NoError(t, err)
	assert.Equal(t, issued.Add(time.Hour), resp.ExpiresAt)

	svc.now = func() time.Time { return issued.Add(2 * time.Hour) }
	_, err = svc.ValidateToken(resp.Token)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)
}

func TestAuthServiceValidateTokenWrongAlgorithm(t *testing.T) {
	svc, _ := newAuthFixture(t, true)

	claims := models.JWTClaims{UserID: "u1", Role: models.RoleAdmin}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte("secret"))
	require.NoError(t, err)

	_, err = svc.ValidateToken(token)
	assert.Error(t, err)
}
