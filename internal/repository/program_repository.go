package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/nastava-api/internal/models"
)

// ProgramRepository persists study programs, their years and subject links.
type ProgramRepository struct {
	db *sqlx.DB
}

// NewProgramRepository constructs a ProgramRepository.
func NewProgramRepository(db *sqlx.DB) *ProgramRepository {
	return &ProgramRepository{db: db}
}

// List returns all study programs ordered by faculty and name.
func (r *ProgramRepository) List(ctx context.Context) ([]models.StudyProgram, error) {
	const query = `SELECT id, name, code, faculty, created_at, updated_at FROM study_programs ORDER BY faculty NULLS LAST, name`
	var programs []models.StudyProgram
	if err := r.db.SelectContext(ctx, &programs, query); err != nil {
		return nil, fmt.Errorf("list study programs: %w", err)
	}
	return programs, nil
}

// FindByID fetches a study program.
func (r *ProgramRepository) FindByID(ctx context.Context, id string) (*models.StudyProgram, error) {
	const query = `SELECT id, name, code, faculty, created_at, updated_at FROM study_programs WHERE id = $1`
	var program models.StudyProgram
	if err := r.db.GetContext(ctx, &program, query, id); err != nil {
		return nil, err
	}
	return &program, nil
}

// Create inserts a study program.
func (r *ProgramRepository) Create(ctx context.Context, program *models.StudyProgram) error {
	if program.ID == "" {
		program.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	program.CreatedAt = now
	program.UpdatedAt = now
	const query = `INSERT INTO study_programs (id, name, code, faculty, created_at, updated_at)
		VALUES (:id, :name, :code, :faculty, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, program); err != nil {
		return fmt.Errorf("create study program: %w", err)
	}
	return nil
}

// Update modifies a study program.
func (r *ProgramRepository) Update(ctx context.Context, program *models.StudyProgram) error {
	program.UpdatedAt = time.Now().UTC()
	const query = `UPDATE study_programs SET name = :name, code = :code, faculty = :faculty, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, program); err != nil {
		return fmt.Errorf("update study program: %w", err)
	}
	return nil
}

// Delete removes a study program.
func (r *ProgramRepository) Delete(ctx context.Context, id string) error {
	return deleteByID(ctx, r.db, "study_programs", id)
}

// ListYears returns the years of a program.
func (r *ProgramRepository) ListYears(ctx context.Context, programID string) ([]models.ProgramYear, error) {
	const query = `SELECT program_id, year_number FROM program_years WHERE program_id = $1 ORDER BY year_number`
	var years []models.ProgramYear
	if err := r.db.SelectContext(ctx, &years, query, programID); err != nil {
		return nil, fmt.Errorf("list program years: %w", err)
	}
	return years, nil
}

// AddYear registers a year of study for a program.
func (r *ProgramRepository) AddYear(ctx context.Context, year models.ProgramYear) error {
	const query = `INSERT INTO program_years (program_id, year_number) VALUES ($1, $2)`
	if _, err := r.db.ExecContext(ctx, query, year.ProgramID, year.YearNumber); err != nil {
		return fmt.Errorf("add program year: %w", err)
	}
	return nil
}

// DeleteYear removes a year of study.
func (r *ProgramRepository) DeleteYear(ctx context.Context, programID string, yearNumber int) error {
	const query = `DELETE FROM program_years WHERE program_id = $1 AND year_number = $2`
	res, err := r.db.ExecContext(ctx, query, programID, yearNumber)
	if err != nil {
		return fmt.Errorf("delete program year: %w", err)
	}
	return requireAffected(res)
}

// ListSubjectLinks returns the subjects linked to a program with the program display data.
func (r *ProgramRepository) ListSubjectLinks(ctx context.Context, programID string) ([]models.SubjectProgramLink, error) {
	const query = `SELECT sp.subject_id, sp.program_id, p.name AS program_name, p.code AS program_code, sp.year_number
		FROM subject_programs sp
		JOIN study_programs p ON p.id = sp.program_id
		WHERE sp.program_id = $1
		ORDER BY sp.year_number, sp.subject_id`
	var links []models.SubjectProgramLink
	if err := r.db.SelectContext(ctx, &links, query, programID); err != nil {
		return nil, fmt.Errorf("list subject links: %w", err)
	}
	return links, nil
}

// LinksForSubjects returns every program link of the given subjects.
func (r *ProgramRepository) LinksForSubjects(ctx context.Context, subjectIDs []string) ([]models.SubjectProgramLink, error) {
	if len(subjectIDs) == 0 {
		return []models.SubjectProgramLink{}, nil
	}
	query, args, err := sqlx.In(`SELECT sp.subject_id, sp.program_id, p.name AS program_name, p.code AS program_code, sp.year_number
		FROM subject_programs sp
		JOIN study_programs p ON p.id = sp.program_id
		WHERE sp.subject_id IN (?)
		ORDER BY p.name, sp.year_number`, subjectIDs)
	if err != nil {
		return nil, fmt.Errorf("build subject links query: %w", err)
	}
	query = r.db.Rebind(query)

	var links []models.SubjectProgramLink
	if err := r.db.SelectContext(ctx, &links, query, args...); err != nil {
		return nil, fmt.Errorf("load subject links: %w", err)
	}
	return links, nil
}

// LinkSubject links a subject to a program year.
func (r *ProgramRepository) LinkSubject(ctx context.Context, link models.SubjectProgram) error {
	const query = `INSERT INTO subject_programs (program_id, subject_id, year_number) VALUES (:program_id, :subject_id, :year_number)`
	if _, err := r.db.NamedExecContext(ctx, query, link); err != nil {
		return fmt.Errorf("link subject: %w", err)
	}
	return nil
}

// UnlinkSubject removes a subject link.
func (r *ProgramRepository) UnlinkSubject(ctx context.Context, link models.SubjectProgram) error {
	const query = `DELETE FROM subject_programs WHERE program_id = $1 AND subject_id = $2 AND year_number = $3`
	res, err := r.db.ExecContext(ctx, query, link.ProgramID, link.SubjectID, link.YearNumber)
	if err != nil {
		return fmt.Errorf("unlink subject: %w", err)
	}
	return requireAffected(res)
}
