package service

import (
	"context"
	"database/sql"
	"net/http"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/nastava-api/internal/models"
	appErrors "github.com/noah-isme/nastava-api/pkg/errors"
)

type mockUserRepo struct {
	users     map[string]*models.User
	createErr error
	auditLogs []*models.AuditLog
}

func (m *mockUserRepo) List(ctx context.Context, filter models.UserFilter) ([]models.User, int, error) {
	var users []models.User
	for _, u := range m.users {
		users = append(users, *u)
	}
	return users, len(users), nil
}

func (m *mockUserRepo) FindByID(ctx context.Context, id string) (*models.User, error) {
	if user, ok := m.users[id]; ok {
		copy := *user
		return &copy, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockUserRepo) Create(ctx context.Context, user *models.User) error {
	if m.createErr != nil {
		return m.createErr
	}
	user.ID = "u-new"
	copy := *user
	m.users[user.ID] = &copy
	return nil
}

func (m *mockUserRepo) Update(ctx context.Context, user *models.User) error {
	copy := *user
	m.users[user.ID] = &copy
	return nil
}

func (m *mockUserRepo) Delete(ctx context.Context, id string) error {
	if _, ok := m.users[id]; !ok {
		return sql.ErrNoRows
	}
	delete(m.users, id)
	return nil
}

func (m *mockUserRepo) CreateAuditLog(ctx context.Context, log *models.AuditLog) error {
	m.auditLogs = append(m.auditLogs, log)
	return nil
}

func newUserFixture() (*UserService, *mockUserRepo) {
	repo := &mockUserRepo{users: map[string]*models.User{
		"admin": {ID: "admin", Username: "admin", FullName: "Admin", Role: models.RoleAdmin, Active: true},
		"u1":    {ID: "u1", Username: "referent", FullName: "Ivana", Role: models.RoleStaff, Active: true, PasswordHash: "old"},
	}}
	return NewUserService(repo, validator.New(), zap.NewNop()), repo
}

var adminMeta = AuditMeta{ActorID: "admin", IP: "10.0.0.1"}

func TestUserServiceList(t *testing.T) {
	svc, _ := newUserFixture()

	users, page, err := svc.List(context.Background(), models.UserFilter{Page: 1, PageSize: 10})
	require.NoError(t, err)
	assert.Len(t, users, 2)
	assert.Equal(t, 2, page.TotalCount)
	assert.Equal(t, 10, page.PageSize)
}

func TestUserServiceCreate(t *testing.T) {
	svc, repo := newUserFixture()

	user, err := svc.Create(context.Background(), CreateUserRequest{
		Username: " Novi.Referent ",
		FullName: "Novi Referent",
		Role:     models.RoleStaff,
		Active:   true,
		Password: "lozinka1",
	}, adminMeta)
	require.NoError(t, err)
	assert.Equal(t, "novi.referent", user.Username)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("lozinka1")))
	require.Len(t, repo.auditLogs, 1)
	assert.Equal(t, models.AuditActionUserCreate, repo.auditLogs[0].Action)
	assert.Equal(t, "admin", *repo.auditLogs[0].UserID)
}

func TestUserServiceCreateValidation(t *testing.T) {
	svc, _ := newUserFixture()

	_, err := svc.Create(context.Background(), CreateUserRequest{Username: "abc", FullName: "X", Role: "TEACHER", Password: "lozinka1"}, adminMeta)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
	assert.Contains(t, appErr.Details["fields"], "Role")
}

func TestUserServiceCreateDuplicate(t *testing.T) {
	svc, repo := newUserFixture()
	repo.createErr = &pq.Error{Code: "23505"}

	_, err := svc.Create(context.Background(), CreateUserRequest{Username: "referent", FullName: "X", Role: models.RoleStaff, Password: "lozinka1"}, adminMeta)
	assert.Equal(t, http.StatusConflict, appErrors.FromError(err).Status)
	assert.Empty(t, repo.auditLogs)
}

func TestUserServiceUpdate(t *testing.T) {
	svc, repo := newUserFixture()
	inactive := false

	user, err := svc.Update(context.Background(), "u1", UpdateUserRequest{FullName: "Ivana Ivić", Role: models.RoleAdmin, Active: &inactive}, adminMeta)
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, user.Role)
	assert.False(t, user.Active)
	assert.Equal(t, "old", repo.users["u1"].PasswordHash)

	_, err = svc.Update(context.Background(), "u1", UpdateUserRequest{FullName: "Ivana", Role: models.RoleStaff, Password: strPtr("novalozinka")}, adminMeta)
	require.NoError(t, err)
	assert.NotEqual(t, "old", repo.users["u1"].PasswordHash)

	_, err = svc.Update(context.Background(), "missing", UpdateUserRequest{FullName: "X", Role: models.RoleStaff}, adminMeta)
	assert.Equal(t, http.StatusNotFound, appErrors.FromError(err).Status)
}

func TestUserServiceDelete(t *testing.T) {
	svc, repo := newUserFixture()
	ctx := context.Background()

	err := svc.Delete(ctx, "admin", adminMeta)
	assert.Equal(t, http.StatusForbidden, appErrors.FromError(err).Status)

	require.NoError(t, svc.Delete(ctx, "u1", adminMeta))
	assert.NotContains(t, repo.users, "u1")
	assert.Len(t, repo.auditLogs, 1)

	err = svc.Delete(ctx, "u1", adminMeta)
	assert.Equal(t, http.StatusNotFound, appErrors.FromError(err).Status)
}
