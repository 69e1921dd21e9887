package service

import (
	"context"
	"database/sql"
	"net/http"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/nastava-api/internal/models"
	appErrors "github.com/noah-isme/nastava-api/pkg/errors"
)

type mockProfessorRepo struct {
	items     map[string]*models.Professor
	createErr error
	deleteErr error
	lastList  models.ProfessorFilter
}

func (m *mockProfessorRepo) List(ctx context.Context, filter models.ProfessorFilter) ([]models.Professor, int, error) {
	m.lastList = filter
	out := make([]models.Professor, 0, len(m.items))
	for _, p := range m.items {
		out = append(out, *p)
	}
	return out, len(out), nil
}

func (m *mockProfessorRepo) FindByID(ctx context.Context, id string) (*models.Professor, error) {
	if p, ok := m.items[id]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockProfessorRepo) Create(ctx context.Context, professor *models.Professor) error {
	if m.createErr != nil {
		return m.createErr
	}
	if m.items == nil {
		m.items = map[string]*models.Professor{}
	}
	professor.ID = "generated"
	cp := *professor
	m.items[professor.ID] = &cp
	return nil
}

func (m *mockProfessorRepo) Update(ctx context.Context, professor *models.Professor) error {
	cp := *professor
	m.items[professor.ID] = &cp
	return nil
}

func (m *mockProfessorRepo) Delete(ctx context.Context, id string) error {
	return m.deleteErr
}

func TestProfessorServiceCreate(t *testing.T) {
	repo := &mockProfessorRepo{}
	svc := NewProfessorService(repo, nil, nil, nil)

	professor, err := svc.Create(context.Background(), ProfessorRequest{
		Name:       "  Ana Anić ",
		Email:      strPtr("ana@example.com"),
		Title:      strPtr("DOCENT"),
		Engagement: strPtr("EMPLOYED"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Ana Anić", professor.Name)
	require.NotNil(t, professor.Engagement)
	assert.Equal(t, models.EngagementEmployed, *professor.Engagement)
	assert.Equal(t, models.TitleDocent, *professor.Title)
}

func TestProfessorServiceCreateValidation(t *testing.T) {
	svc := NewProfessorService(&mockProfessorRepo{}, nil, nil, nil)

	_, err := svc.Create(context.Background(), ProfessorRequest{Name: "Ana", Engagement: strPtr("PART_TIME")})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
	assert.Contains(t, appErr.Details["fields"], "Engagement")

	_, err = svc.Create(context.Background(), ProfessorRequest{Name: "Ana", Email: strPtr("not-an-email")})
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestProfessorServiceUniqueViolation(t *testing.T) {
	svc := NewProfessorService(&mockProfessorRepo{createErr: &pq.Error{Code: "23505"}}, nil, nil, nil)

	_, err := svc.Create(context.Background(), ProfessorRequest{Name: "Ana"})
	assert.Equal(t, http.StatusConflict, appErrors.FromError(err).Status)
}

func TestProfessorServiceUpdateMissing(t *testing.T) {
	svc := NewProfessorService(&mockProfessorRepo{}, nil, nil, nil)

	_, err := svc.Update(context.Background(), "missing", ProfessorRequest{Name: "Ana"})
	assert.Equal(t, http.StatusNotFound, appErrors.FromError(err).Status)
}

func TestProfessorServiceUpdateClearsOptionalFields(t *testing.T) {
	engagement := models.EngagementExternal
	repo := &mockProfessorRepo{items: map[string]*models.Professor{
		"p1": {ID: "p1", Name: "Ana", Engagement: &engagement, Phone: strPtr("123")},
	}}
	svc := NewProfessorService(repo, nil, nil, nil)

	professor, err := svc.Update(context.Background(), "p1", ProfessorRequest{Name: "Ana Anić"})
	require.NoError(t, err)
	assert.Nil(t, professor.Engagement)
	assert.Nil(t, professor.Phone)
}

func TestProfessorServiceDeleteReferenced(t *testing.T) {
	svc := NewProfessorService(&mockProfessorRepo{deleteErr: &pq.Error{Code: "23503"}}, nil, nil, nil)

	err := svc.Delete(context.Background(), "p1")
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrReferenced.Code, appErr.Code)
	assert.Equal(t, http.StatusBadRequest, appErr.Status)
}

func TestProfessorServiceListPagination(t *testing.T) {
	repo := &mockProfessorRepo{items: map[string]*models.Professor{"p1": {ID: "p1", Name: "Ana"}}}
	svc := NewProfessorService(repo, nil, nil, nil)

	list, page, err := svc.List(context.Background(), models.ProfessorFilter{Page: 0, PageSize: 500})
	require.NoError(t, err)
	assert.Len(t, list, 1)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, 100, page.PageSize)
	assert.Equal(t, 1, page.TotalCount)
}

func TestProfessorServiceWritesInvalidateLoadCache(t *testing.T) {
	employed := models.EngagementEmployed
	repo := &mockProfessorRepo{items: map[string]*models.Professor{
		"p1": {ID: "p1", Name: "Ana", Engagement: &employed},
	}}
	cache := &countingInvalidator{}
	svc := NewProfessorService(repo, cache, nil, nil)
	ctx := context.Background()

	_, err := svc.Create(ctx, ProfessorRequest{Name: "Ivo"})
	require.NoError(t, err)
	assert.Zero(t, cache.calls)

	_, err = svc.Update(ctx, "p1", ProfessorRequest{Name: "Ana", Engagement: strPtr("EXTERNAL")})
	require.NoError(t, err)
	assert.Equal(t, 1, cache.calls)

	require.NoError(t, svc.Delete(ctx, "p1"))
	assert.Equal(t, 2, cache.calls)

	repo.deleteErr = &pq.Error{Code: "23503"}
	require.Error(t, svc.Delete(ctx, "p1"))
	assert.Equal(t, 2, cache.calls)
}
