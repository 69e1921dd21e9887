package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/nastava-api/internal/models"
)

// TermRepository handles persistence of cycles and their terms.
type TermRepository struct {
	db *sqlx.DB
}

// NewTermRepository returns a new repository instance.
func NewTermRepository(db *sqlx.DB) *TermRepository {
	return &TermRepository{db: db}
}

// ListCycles returns every cycle, newest first.
func (r *TermRepository) ListCycles(ctx context.Context) ([]models.Cycle, error) {
	const query = `SELECT id, name, created_at, updated_at FROM cycles ORDER BY created_at DESC`
	var cycles []models.Cycle
	if err := r.db.SelectContext(ctx, &cycles, query); err != nil {
		return nil, fmt.Errorf("list cycles: %w", err)
	}
	return cycles, nil
}

// FindCycle fetches a cycle by id.
func (r *TermRepository) FindCycle(ctx context.Context, id string) (*models.Cycle, error) {
	const query = `SELECT id, name, created_at, updated_at FROM cycles WHERE id = $1`
	var cycle models.Cycle
	if err := r.db.GetContext(ctx, &cycle, query, id); err != nil {
		return nil, err
	}
	return &cycle, nil
}

// CreateCycle inserts a cycle.
func (r *TermRepository) CreateCycle(ctx context.Context, cycle *models.Cycle) error {
	if cycle.ID == "" {
		cycle.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	cycle.CreatedAt = now
	cycle.UpdatedAt = now
	const query = `INSERT INTO cycles (id, name, created_at, updated_at) VALUES (:id, :name, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, cycle); err != nil {
		return fmt.Errorf("create cycle: %w", err)
	}
	return nil
}

// UpdateCycle renames a cycle.
func (r *TermRepository) UpdateCycle(ctx context.Context, cycle *models.Cycle) error {
	cycle.UpdatedAt = time.Now().UTC()
	const query = `UPDATE cycles SET name = :name, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, cycle); err != nil {
		return fmt.Errorf("update cycle: %w", err)
	}
	return nil
}

// DeleteCycle removes a cycle.
func (r *TermRepository) DeleteCycle(ctx context.Context, id string) error {
	return deleteByID(ctx, r.db, "cycles", id)
}

// ListTerms returns the terms of a cycle in their configured order.
func (r *TermRepository) ListTerms(ctx context.Context, cycleID string) ([]models.Term, error) {
	const query = `SELECT id, cycle_id, name, ordinal, date_start, date_end, created_at, updated_at
		FROM terms WHERE cycle_id = $1 ORDER BY ordinal, name`
	var terms []models.Term
	if err := r.db.SelectContext(ctx, &terms, query, cycleID); err != nil {
		return nil, fmt.Errorf("list terms: %w", err)
	}
	return terms, nil
}

// FindTerm fetches a term by id.
func (r *TermRepository) FindTerm(ctx context.Context, id string) (*models.Term, error) {
	const query = `SELECT id, cycle_id, name, ordinal, date_start, date_end, created_at, updated_at FROM terms WHERE id = $1`
	var term models.Term
	if err := r.db.GetContext(ctx, &term, query, id); err != nil {
		return nil, err
	}
	return &term, nil
}

// NextOrdinal returns the ordinal a newly appended term of the cycle should get.
func (r *TermRepository) NextOrdinal(ctx context.Context, cycleID string) (int, error) {
	const query = `SELECT COALESCE(MAX(ordinal), 0) + 1 FROM terms WHERE cycle_id = $1`
	var next int
	if err := r.db.GetContext(ctx, &next, query, cycleID); err != nil {
		return 0, fmt.Errorf("next term ordinal: %w", err)
	}
	return next, nil
}

// CreateTerm inserts a term.
func (r *TermRepository) CreateTerm(ctx context.Context, term *models.Term) error {
	if term.ID == "" {
		term.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	term.CreatedAt = now
	term.UpdatedAt = now
	const query = `INSERT INTO terms (id, cycle_id, name, ordinal, date_start, date_end, created_at, updated_at)
		VALUES (:id, :cycle_id, :name, :ordinal, :date_start, :date_end, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, term); err != nil {
		return fmt.Errorf("create term: %w", err)
	}
	return nil
}

// UpdateTerm modifies a term.
func (r *TermRepository) UpdateTerm(ctx context.Context, term *models.Term) error {
	term.UpdatedAt = time.Now().UTC()
	const query = `UPDATE terms SET name = :name, ordinal = :ordinal, date_start = :date_start, date_end = :date_end, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, term); err != nil {
		return fmt.Errorf("update term: %w", err)
	}
	return nil
}

// DeleteTerm removes a term.
func (r *TermRepository) DeleteTerm(ctx context.Context, id string) error {
	return deleteByID(ctx, r.db, "terms", id)
}
