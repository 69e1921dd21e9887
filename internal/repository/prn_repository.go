package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/nastava-api/internal/models"
)

const prnRowDetailSelect = `SELECT r.id, r.plan_id, r.subject_id, r.professor_id, r.lecture_total, r.exercise_total, r.position, r.created_at, r.updated_at,
	s.name AS subject_name, s.code AS subject_code, s.semester AS subject_semester,
	p.name AS professor_name, p.title AS professor_title, p.engagement AS professor_engagement
	FROM prn_rows r
	JOIN subjects s ON s.id = r.subject_id
	LEFT JOIN professors p ON p.id = r.professor_id`

// PRNRepository persists teaching realisation plans and their rows.
type PRNRepository struct {
	db *sqlx.DB
}

// NewPRNRepository constructs a PRNRepository.
func NewPRNRepository(db *sqlx.DB) *PRNRepository {
	return &PRNRepository{db: db}
}

type seedSubject struct {
	ID   string `db:"id"`
	Name string `db:"name"`
}

// GetOrCreate returns the plan of a program year, creating and seeding it on first
// access. Only the caller whose insert wins seeds rows, one per distinct subject
// linked to the program year; concurrent callers see the winner's plan.
func (r *PRNRepository) GetOrCreate(ctx context.Context, programID string, yearNumber int) (plan *models.PRNPlan, created bool, err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, false, fmt.Errorf("begin plan tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	now := time.Now().UTC()
	const insertPlan = `INSERT INTO prn_plans (id, program_id, year_number, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (program_id, year_number) DO NOTHING`
	res, err := tx.ExecContext(ctx, insertPlan, uuid.NewString(), programID, yearNumber, now, now)
	if err != nil {
		return nil, false, fmt.Errorf("insert plan: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, false, fmt.Errorf("insert plan: %w", err)
	}

	var current models.PRNPlan
	const selectPlan = `SELECT id, program_id, year_number, created_at, updated_at FROM prn_plans WHERE program_id = $1 AND year_number = $2`
	if err = tx.GetContext(ctx, &current, selectPlan, programID, yearNumber); err != nil {
		return nil, false, fmt.Errorf("load plan: %w", err)
	}

	if affected == 1 {
		created = true
		if err = seedPlanRows(ctx, tx, current, now); err != nil {
			return nil, false, err
		}
	}

	if err = tx.Commit(); err != nil {
		return nil, false, fmt.Errorf("commit plan: %w", err)
	}
	return &current, created, nil
}

func seedPlanRows(ctx context.Context, tx *sqlx.Tx, plan models.PRNPlan, now time.Time) error {
	const selectSubjects = `SELECT DISTINCT s.id, s.name
		FROM subject_programs sp
		JOIN subjects s ON s.id = sp.subject_id
		WHERE sp.program_id = $1 AND sp.year_number = $2
		ORDER BY s.name, s.id`
	var subjects []seedSubject
	if err := tx.SelectContext(ctx, &subjects, selectSubjects, plan.ProgramID, plan.YearNumber); err != nil {
		return fmt.Errorf("load plan subjects: %w", err)
	}
	if len(subjects) == 0 {
		return nil
	}

	rows := make([]models.PRNRow, 0, len(subjects))
	for i, subject := range subjects {
		rows = append(rows, models.PRNRow{
			ID:        uuid.NewString(),
			PlanID:    plan.ID,
			SubjectID: subject.ID,
			Position:  i + 1,
			CreatedAt: now,
			UpdatedAt: now,
		})
	}
	const insertRows = `INSERT INTO prn_rows (id, plan_id, subject_id, professor_id, lecture_total, exercise_total, position, created_at, updated_at)
		VALUES (:id, :plan_id, :subject_id, :professor_id, :lecture_total, :exercise_total, :position, :created_at, :updated_at)`
	if _, err := tx.NamedExecContext(ctx, insertRows, rows); err != nil {
		return fmt.Errorf("seed plan rows: %w", err)
	}
	return nil
}

// FindPlanByID fetches a plan.
func (r *PRNRepository) FindPlanByID(ctx context.Context, id string) (*models.PRNPlan, error) {
	const query = `SELECT id, program_id, year_number, created_at, updated_at FROM prn_plans WHERE id = $1`
	var plan models.PRNPlan
	if err := r.db.GetContext(ctx, &plan, query, id); err != nil {
		return nil, err
	}
	return &plan, nil
}

// ListRows returns the rows of a plan; sibling rows of a subject share its position.
func (r *PRNRepository) ListRows(ctx context.Context, planID string) ([]models.PRNRowDetail, error) {
	query := prnRowDetailSelect + " WHERE r.plan_id = $1 ORDER BY r.position, r.created_at, r.id"
	var rows []models.PRNRowDetail
	if err := r.db.SelectContext(ctx, &rows, query, planID); err != nil {
		return nil, fmt.Errorf("list plan rows: %w", err)
	}
	return rows, nil
}

// FindRow fetches one row with its subject and professor.
func (r *PRNRepository) FindRow(ctx context.Context, id string) (*models.PRNRowDetail, error) {
	var row models.PRNRowDetail
	if err := r.db.GetContext(ctx, &row, prnRowDetailSelect+" WHERE r.id = $1", id); err != nil {
		return nil, err
	}
	return &row, nil
}

// UpdateRow stores the professor and totals of a row.
func (r *PRNRepository) UpdateRow(ctx context.Context, row *models.PRNRow) error {
	row.UpdatedAt = time.Now().UTC()
	const query = `UPDATE prn_rows SET professor_id = :professor_id, lecture_total = :lecture_total, exercise_total = :exercise_total, updated_at = :updated_at WHERE id = :id`
	res, err := r.db.NamedExecContext(ctx, query, row)
	if err != nil {
		return fmt.Errorf("update plan row: %w", err)
	}
	return requireAffected(res)
}

// SubjectPosition returns the position of a subject within a plan, or
// sql.ErrNoRows when the plan has no row for it.
func (r *PRNRepository) SubjectPosition(ctx context.Context, planID, subjectID string) (int, error) {
	const query = `SELECT MIN(position) FROM prn_rows WHERE plan_id = $1 AND subject_id = $2`
	var position sql.NullInt64
	if err := r.db.GetContext(ctx, &position, query, planID, subjectID); err != nil {
		return 0, fmt.Errorf("subject position: %w", err)
	}
	if !position.Valid {
		return 0, sql.ErrNoRows
	}
	return int(position.Int64), nil
}

// AddRow appends a zero-filled sibling row for a subject already in the plan.
func (r *PRNRepository) AddRow(ctx context.Context, row *models.PRNRow) error {
	if row.ID == "" {
		row.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	row.CreatedAt = now
	row.UpdatedAt = now
	const query = `INSERT INTO prn_rows (id, plan_id, subject_id, professor_id, lecture_total, exercise_total, position, created_at, updated_at)
		VALUES (:id, :plan_id, :subject_id, :professor_id, :lecture_total, :exercise_total, :position, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, row); err != nil {
		return fmt.Errorf("add plan row: %w", err)
	}
	return nil
}

// LoadSource returns every assigned row expanded for the teacher-load report.
func (r *PRNRepository) LoadSource(ctx context.Context) ([]models.LoadSourceRow, error) {
	const query = `SELECT r.id AS row_id, r.professor_id, p.name AS professor_name, p.title AS professor_title, p.engagement AS professor_engagement,
		s.id AS subject_id, s.code AS subject_code, s.name AS subject_name, s.semester AS subject_semester,
		pl.program_id, pl.year_number, r.lecture_total, r.exercise_total
		FROM prn_rows r
		JOIN prn_plans pl ON pl.id = r.plan_id
		JOIN subjects s ON s.id = r.subject_id
		JOIN professors p ON p.id = r.professor_id
		WHERE r.professor_id IS NOT NULL
		ORDER BY p.name, p.id, s.name, pl.year_number, r.position`
	var rows []models.LoadSourceRow
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("load teacher-load source: %w", err)
	}
	return rows, nil
}
