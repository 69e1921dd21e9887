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

type mockProgramRepo struct {
	programs map[string]*models.StudyProgram
	links    []models.SubjectProgram
	linkErr  error
}

func (m *mockProgramRepo) List(ctx context.Context) ([]models.StudyProgram, error) { return nil, nil }

func (m *mockProgramRepo) FindByID(ctx context.Context, id string) (*models.StudyProgram, error) {
	if p, ok := m.programs[id]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockProgramRepo) Create(ctx context.Context, program *models.StudyProgram) error {
	program.ID = "prog-new"
	m.programs[program.ID] = program
	return nil
}

func (m *mockProgramRepo) Update(ctx context.Context, program *models.StudyProgram) error {
	return nil
}

func (m *mockProgramRepo) Delete(ctx context.Context, id string) error { return sql.ErrNoRows }

func (m *mockProgramRepo) ListYears(ctx context.Context, programID string) ([]models.ProgramYear, error) {
	return nil, nil
}

func (m *mockProgramRepo) AddYear(ctx context.Context, year models.ProgramYear) error { return nil }

func (m *mockProgramRepo) DeleteYear(ctx context.Context, programID string, yearNumber int) error {
	return nil
}

func (m *mockProgramRepo) ListSubjectLinks(ctx context.Context, programID string) ([]models.SubjectProgramLink, error) {
	return nil, nil
}

func (m *mockProgramRepo) LinkSubject(ctx context.Context, link models.SubjectProgram) error {
	if m.linkErr != nil {
		return m.linkErr
	}
	m.links = append(m.links, link)
	return nil
}

func (m *mockProgramRepo) UnlinkSubject(ctx context.Context, link models.SubjectProgram) error {
	return nil
}

func newProgramFixture() (*ProgramService, *mockProgramRepo, *countingInvalidator) {
	repo := &mockProgramRepo{programs: map[string]*models.StudyProgram{"prog-1": {ID: "prog-1", Name: "Informatika"}}}
	cache := &countingInvalidator{}
	return NewProgramService(repo, cache, nil, nil), repo, cache
}

func TestProgramServiceCreateInvalidatesLoadCache(t *testing.T) {
	svc, _, cache := newProgramFixture()

	program, err := svc.Create(context.Background(), ProgramRequest{Name: " Matematika ", Code: strPtr(" MAT "), Faculty: strPtr("")})
	require.NoError(t, err)
	assert.Equal(t, "Matematika", program.Name)
	assert.Equal(t, "MAT", *program.Code)
	assert.Nil(t, program.Faculty)
	assert.Equal(t, 1, cache.calls)
}

func TestProgramServiceLinkSubject(t *testing.T) {
	svc, repo, _ := newProgramFixture()
	ctx := context.Background()

	link, err := svc.LinkSubject(ctx, "prog-1", SubjectLinkRequest{SubjectID: "s1", YearNumber: 2})
	require.NoError(t, err)
	assert.Equal(t, models.SubjectProgram{ProgramID: "prog-1", SubjectID: "s1", YearNumber: 2}, *link)
	assert.Len(t, repo.links, 1)

	_, err = svc.LinkSubject(ctx, "missing", SubjectLinkRequest{SubjectID: "s1", YearNumber: 2})
	assert.Equal(t, http.StatusNotFound, appErrors.FromError(err).Status)

	_, err = svc.LinkSubject(ctx, "prog-1", SubjectLinkRequest{SubjectID: "s1", YearNumber: 0})
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

	repo.linkErr = &pq.Error{Code: "23505"}
	_, err = svc.LinkSubject(ctx, "prog-1", SubjectLinkRequest{SubjectID: "s1", YearNumber: 2})
	assert.Equal(t, http.StatusConflict, appErrors.FromError(err).Status)

	repo.linkErr = &pq.Error{Code: "23503"}
	_, err = svc.LinkSubject(ctx, "prog-1", SubjectLinkRequest{SubjectID: "ghost", YearNumber: 2})
	assert.Equal(t, http.StatusBadRequest, appErrors.FromError(err).Status)
}

func TestProgramServiceDeleteMissing(t *testing.T) {
	svc, _, cache := newProgramFixture()

	err := svc.Delete(context.Background(), "nope")
	assert.Equal(t, http.StatusNotFound, appErrors.FromError(err).Status)
	assert.Zero(t, cache.calls)
}

func TestProgramServiceRejectsSummaryFaculty(t *testing.T) {
	svc, repo, cache := newProgramFixture()
	ctx := context.Background()

	_, err := svc.Create(ctx, ProgramRequest{Name: "Opći", Faculty: strPtr(" summary ")})
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
	assert.Equal(t, map[string]string{"faculty": "reserved name"}, appErr.Details["fields"])

	_, err = svc.Update(ctx, "prog-1", ProgramRequest{Name: "Informatika", Faculty: strPtr("SUMMARY")})
	assert.Equal(t, http.StatusBadRequest, appErrors.FromError(err).Status)
	assert.Len(t, repo.programs, 1)
	assert.Zero(t, cache.calls)

	_, err = svc.Create(ctx, ProgramRequest{Name: "Opći", Faculty: strPtr("Summary studies")})
	require.NoError(t, err)
}
