package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/nastava-api/internal/models"
)

func newRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

var scheduleEntryDetailColumns = []string{
	"id", "term_id", "course_id", "professor_id", "room_id", "group_name", "day_of_week", "start_min", "end_min",
	"week_type", "is_online", "note", "created_at", "subject_id", "subject_name", "professor_name", "room_name",
}

func TestScheduleEntryRepositoryListFilters(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewScheduleEntryRepository(db)

	rows := sqlmock.NewRows(scheduleEntryDetailColumns).
		AddRow("e1", "term-1", "c1", "p1", "r1", "G1", 1, 480, 600, "ALL", false, nil, time.Now(), "s1", "Matematika", "Ana", "A-101")
	mock.ExpectQuery(`WHERE e.term_id = \$1 AND e.day_of_week = \$2 AND LOWER\(TRIM\(e.group_name\)\) = \$3 ORDER BY e.day_of_week, e.start_min, e.end_min`).
		WithArgs("term-1", 1, "g1").
		WillReturnRows(rows)

	entries, err := repo.List(context.Background(), models.ScheduleEntryFilter{TermID: "term-1", DayOfWeek: 1, GroupName: " G1 "})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "Matematika", entries[0].SubjectName)
	require.NotNil(t, entries[0].RoomName)
	assert.Equal(t, "A-101", *entries[0].RoomName)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBuildConflictQueryDimensions(t *testing.T) {
	probe := models.ConflictProbe{
		TermID:      "term-1",
		DayOfWeek:   1,
		StartMin:    540,
		EndMin:      660,
		WeekTypes:   []models.WeekType{models.WeekAll, models.WeekA},
		ProfessorID: "p1",
	}

	query, args := buildConflictQuery(probe)
	assert.Contains(t, query, "(e.professor_id = $6)")
	assert.NotContains(t, query, "e.room_id = $7")
	assert.Len(t, args, 6)
	assert.Equal(t, pq.Array([]string{"ALL", "A"}), args[4])

	probe.RoomID = "r1"
	probe.GroupName = " G1 "
	query, args = buildConflictQuery(probe)
	assert.Contains(t, query, "e.professor_id = $6 OR (e.room_id = $7 AND NOT e.is_online) OR LOWER(TRIM(e.group_name)) = $8")
	assert.Equal(t, []interface{}{"r1", "g1"}, args[6:])
}

func TestScheduleEntryRepositoryCreateCheckedInserts(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewScheduleEntryRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("AND NOT (e.end_min <= $3 OR e.start_min >= $4)")).
		WithArgs("term-1", 1, 480, 600, sqlmock.AnyArg(), "p1", "r1").
		WillReturnRows(sqlmock.NewRows(scheduleEntryDetailColumns))
	mock.ExpectExec("INSERT INTO schedule_entries").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	room := "r1"
	entry := &models.ScheduleEntry{TermID: "term-1", CourseID: "c1", ProfessorID: "p1", RoomID: &room, DayOfWeek: 1, StartMin: 480, EndMin: 600, WeekType: models.WeekAll}
	probe := models.ConflictProbe{TermID: "term-1", DayOfWeek: 1, StartMin: 480, EndMin: 600, WeekTypes: []models.WeekType{models.WeekAll, models.WeekA, models.WeekB}, ProfessorID: "p1", RoomID: "r1"}

	checked := false
	err := repo.CreateChecked(context.Background(), entry, probe, true, func(existing []models.ScheduleEntryDetail) error {
		checked = true
		assert.Empty(t, existing)
		return nil
	})
	require.NoError(t, err)
	assert.True(t, checked)
	assert.NotEmpty(t, entry.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestScheduleEntryRepositoryCreateCheckedRejected(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewScheduleEntryRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery("FROM schedule_entries e").
		WillReturnRows(sqlmock.NewRows(scheduleEntryDetailColumns).
			AddRow("e1", "term-1", "c1", "p2", "r1", nil, 1, 480, 600, "ALL", false, nil, time.Now(), "s1", "Fizika", "Bojan", "A-101"))
	mock.ExpectRollback()

	rejected := errors.New("conflict")
	err := repo.CreateChecked(context.Background(), &models.ScheduleEntry{}, models.ConflictProbe{ProfessorID: "p1"}, false, func(existing []models.ScheduleEntryDetail) error {
		require.Len(t, existing, 1)
		return rejected
	})
	assert.ErrorIs(t, err, rejected)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestScheduleEntryRepositoryCreateCheckedCommitFailure(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewScheduleEntryRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery("FROM schedule_entries e").WillReturnRows(sqlmock.NewRows(scheduleEntryDetailColumns))
	mock.ExpectExec("INSERT INTO schedule_entries").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit().WillReturnError(&pq.Error{Code: "40001"})

	err := repo.CreateChecked(context.Background(), &models.ScheduleEntry{}, models.ConflictProbe{}, true, func([]models.ScheduleEntryDetail) error { return nil })
	var pqErr *pq.Error
	require.ErrorAs(t, err, &pqErr)
	assert.Equal(t, pq.ErrorCode("40001"), pqErr.Code)
}

func TestScheduleEntryRepositoryDeleteMissing(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewScheduleEntryRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM schedule_entries WHERE id = $1")).
		WithArgs("missing").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Delete(context.Background(), "missing")
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}
