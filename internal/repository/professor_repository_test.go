package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/nastava-api/internal/models"
)

func TestProfessorRepositoryList(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewProfessorRepository(db)

	rows := sqlmock.NewRows([]string{"id", "name", "email", "phone", "title", "engagement", "created_at", "updated_at"}).
		AddRow("p1", "Ana Anić", nil, nil, "DOCENT", "EXTERNAL", time.Now(), time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, name, email, phone, title, engagement, created_at, updated_at FROM professors WHERE 1=1 AND engagement = $1 ORDER BY name ASC LIMIT 20 OFFSET 0")).
		WithArgs(models.EngagementExternal).
		WillReturnRows(rows)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM professors WHERE 1=1 AND engagement = $1")).
		WithArgs(models.EngagementExternal).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	list, total, err := repo.List(context.Background(), models.ProfessorFilter{Engagement: models.EngagementExternal})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, 1, total)
	require.NotNil(t, list[0].Title)
	assert.Equal(t, models.TitleDocent, *list[0].Title)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProfessorRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewProfessorRepository(db)

	mock.ExpectExec("INSERT INTO professors").
		WithArgs(sqlmock.AnyArg(), "Ana Anić", sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	professor := &models.Professor{Name: "Ana Anić"}
	require.NoError(t, repo.Create(context.Background(), professor))
	assert.NotEmpty(t, professor.ID)
	assert.False(t, professor.CreatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}
