package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/nastava-api/internal/models"
)

const scheduleEntryDetailSelect = `SELECT e.id, e.term_id, e.course_id, e.professor_id, e.room_id, e.group_name,
	e.day_of_week, e.start_min, e.end_min, e.week_type, e.is_online, e.note, e.created_at,
	c.subject_id, s.name AS subject_name, p.name AS professor_name, r.name AS room_name
	FROM schedule_entries e
	JOIN courses c ON c.id = e.course_id
	JOIN subjects s ON s.id = c.subject_id
	JOIN professors p ON p.id = e.professor_id
	LEFT JOIN rooms r ON r.id = e.room_id`

// ConflictCheck inspects colliding entries inside the creation transaction.
// A non-nil error aborts the insert.
type ConflictCheck func(existing []models.ScheduleEntryDetail) error

// ScheduleEntryRepository persists timetable entries.
type ScheduleEntryRepository struct {
	db *sqlx.DB
}

// NewScheduleEntryRepository constructs a ScheduleEntryRepository.
func NewScheduleEntryRepository(db *sqlx.DB) *ScheduleEntryRepository {
	return &ScheduleEntryRepository{db: db}
}

// List returns entries matching the filter ordered by day and time.
func (r *ScheduleEntryRepository) List(ctx context.Context, filter models.ScheduleEntryFilter) ([]models.ScheduleEntryDetail, error) {
	var conditions []string
	var args []interface{}
	if filter.TermID != "" {
		conditions = append(conditions, fmt.Sprintf("e.term_id = $%d", len(args)+1))
		args = append(args, filter.TermID)
	}
	if filter.DayOfWeek > 0 {
		conditions = append(conditions, fmt.Sprintf("e.day_of_week = $%d", len(args)+1))
		args = append(args, filter.DayOfWeek)
	}
	if filter.ProfessorID != "" {
		conditions = append(conditions, fmt.Sprintf("e.professor_id = $%d", len(args)+1))
		args = append(args, filter.ProfessorID)
	}
	if filter.RoomID != "" {
		conditions = append(conditions, fmt.Sprintf("e.room_id = $%d", len(args)+1))
		args = append(args, filter.RoomID)
	}
	if group := strings.TrimSpace(filter.GroupName); group != "" {
		conditions = append(conditions, fmt.Sprintf("LOWER(TRIM(e.group_name)) = $%d", len(args)+1))
		args = append(args, strings.ToLower(group))
	}

	query := scheduleEntryDetailSelect
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY e.day_of_week, e.start_min, e.end_min"

	var entries []models.ScheduleEntryDetail
	if err := r.db.SelectContext(ctx, &entries, query, args...); err != nil {
		return nil, fmt.Errorf("list schedule entries: %w", err)
	}
	return entries, nil
}

// FindByID fetches one entry.
func (r *ScheduleEntryRepository) FindByID(ctx context.Context, id string) (*models.ScheduleEntryDetail, error) {
	var entry models.ScheduleEntryDetail
	if err := r.db.GetContext(ctx, &entry, scheduleEntryDetailSelect+" WHERE e.id = $1", id); err != nil {
		return nil, err
	}
	return &entry, nil
}

// FindConflicts returns entries that may collide with the probe.
func (r *ScheduleEntryRepository) FindConflicts(ctx context.Context, probe models.ConflictProbe) ([]models.ScheduleEntryDetail, error) {
	return findConflicts(ctx, r.db, probe)
}

func buildConflictQuery(probe models.ConflictProbe) (string, []interface{}) {
	weekTypes := make([]string, len(probe.WeekTypes))
	for i, w := range probe.WeekTypes {
		weekTypes[i] = string(w)
	}
	args := []interface{}{probe.TermID, probe.DayOfWeek, probe.StartMin, probe.EndMin, pq.Array(weekTypes), probe.ProfessorID}

	dimensions := []string{"e.professor_id = $6"}
	if probe.RoomID != "" {
		args = append(args, probe.RoomID)
		dimensions = append(dimensions, fmt.Sprintf("(e.room_id = $%d AND NOT e.is_online)", len(args)))
	}
	if group := strings.TrimSpace(probe.GroupName); group != "" {
		args = append(args, strings.ToLower(group))
		dimensions = append(dimensions, fmt.Sprintf("LOWER(TRIM(e.group_name)) = $%d", len(args)))
	}

	query := scheduleEntryDetailSelect + `
	WHERE e.term_id = $1 AND e.day_of_week = $2
	AND NOT (e.end_min <= $3 OR e.start_min >= $4)
	AND e.week_type = ANY($5)
	AND (` + strings.Join(dimensions, " OR ") + `)
	ORDER BY e.start_min, e.end_min`
	return query, args
}

func findConflicts(ctx context.Context, q sqlx.QueryerContext, probe models.ConflictProbe) ([]models.ScheduleEntryDetail, error) {
	query, args := buildConflictQuery(probe)
	var entries []models.ScheduleEntryDetail
	if err := sqlx.SelectContext(ctx, q, &entries, query, args...); err != nil {
		return nil, fmt.Errorf("find schedule conflicts: %w", err)
	}
	return entries, nil
}

// CreateChecked runs the conflict query, the check and the insert in one
// transaction. With serializable set the transaction runs at SERIALIZABLE
// isolation so two overlapping inserts cannot both commit.
func (r *ScheduleEntryRepository) CreateChecked(ctx context.Context, entry *models.ScheduleEntry, probe models.ConflictProbe, serializable bool, check ConflictCheck) (err error) {
	opts := &sql.TxOptions{}
	if serializable {
		opts.Isolation = sql.LevelSerializable
	}
	tx, err := r.db.BeginTxx(ctx, opts)
	if err != nil {
		return fmt.Errorf("begin schedule entry tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	existing, err := findConflicts(ctx, tx, probe)
	if err != nil {
		return err
	}
	if err = check(existing); err != nil {
		return err
	}

	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	entry.CreatedAt = time.Now().UTC()
	const insert = `INSERT INTO schedule_entries (id, term_id, course_id, professor_id, room_id, group_name, day_of_week, start_min, end_min, week_type, is_online, note, created_at)
		VALUES (:id, :term_id, :course_id, :professor_id, :room_id, :group_name, :day_of_week, :start_min, :end_min, :week_type, :is_online, :note, :created_at)`
	if _, err = tx.NamedExecContext(ctx, insert, entry); err != nil {
		return fmt.Errorf("create schedule entry: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit schedule entry: %w", err)
	}
	return nil
}

// Delete removes an entry.
func (r *ScheduleEntryRepository) Delete(ctx context.Context, id string) error {
	return deleteByID(ctx, r.db, "schedule_entries", id)
}
