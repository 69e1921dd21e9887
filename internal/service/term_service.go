package service

import (
	"context"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/nastava-api/internal/models"
	appErrors "github.com/noah-isme/nastava-api/pkg/errors"
)

const dateLayout = "2006-01-02"

type termRepository interface {
	ListCycles(ctx context.Context) ([]models.Cycle, error)
	FindCycle(ctx context.Context, id string) (*models.Cycle, error)
	CreateCycle(ctx context.Context, cycle *models.Cycle) error
	UpdateCycle(ctx context.Context, cycle *models.Cycle) error
	DeleteCycle(ctx context.Context, id string) error
	ListTerms(ctx context.Context, cycleID string) ([]models.Term, error)
	FindTerm(ctx context.Context, id string) (*models.Term, error)
	NextOrdinal(ctx context.Context, cycleID string) (int, error)
	CreateTerm(ctx context.Context, term *models.Term) error
	UpdateTerm(ctx context.Context, term *models.Term) error
	DeleteTerm(ctx context.Context, id string) error
}

// CycleRequest names a cycle.
type CycleRequest struct {
	Name string `json:"name" validate:"required,max=100"`
}

// TermRequest describes a term within a cycle. Ordinal defaults to the next free slot.
type TermRequest struct {
	Name      string  `json:"name" validate:"required,max=100"`
	Ordinal   *int    `json:"ordinal" validate:"omitempty,min=1"`
	DateStart *string `json:"dateStart" validate:"omitempty,datetime=2006-01-02"`
	DateEnd   *string `json:"dateEnd" validate:"omitempty,datetime=2006-01-02"`
}

// TermService orchestrates cycles and their terms.
type TermService struct {
	repo      termRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewTermService creates a new term service instance.
func NewTermService(repo termRepository, validate *validator.Validate, logger *zap.Logger) *TermService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TermService{repo: repo, validator: validate, logger: logger}
}

// ListCycles returns every cycle.
func (s *TermService) ListCycles(ctx context.Context) ([]models.Cycle, error) {
	cycles, err := s.repo.ListCycles(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list cycles")
	}
	if cycles == nil {
		cycles = []models.Cycle{}
	}
	return cycles, nil
}

// GetCycle returns one cycle.
func (s *TermService) GetCycle(ctx context.Context, id string) (*models.Cycle, error) {
	cycle, err := s.repo.FindCycle(ctx, id)
	if err != nil {
		return nil, mapLookupError(err, "cycle")
	}
	return cycle, nil
}

// CreateCycle adds a cycle.
func (s *TermService) CreateCycle(ctx context.Context, req CycleRequest) (*models.Cycle, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Validation(err, "invalid cycle payload")
	}
	cycle := &models.Cycle{Name: strings.TrimSpace(req.Name)}
	if err := s.repo.CreateCycle(ctx, cycle); err != nil {
		return nil, mapWriteError(err, "cycle")
	}
	return cycle, nil
}

// UpdateCycle renames a cycle.
func (s *TermService) UpdateCycle(ctx context.Context, id string, req CycleRequest) (*models.Cycle, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Validation(err, "invalid cycle payload")
	}
	cycle, err := s.repo.FindCycle(ctx, id)
	if err != nil {
		return nil, mapLookupError(err, "cycle")
	}
	cycle.Name = strings.TrimSpace(req.Name)
	if err := s.repo.UpdateCycle(ctx, cycle); err != nil {
		return nil, mapWriteError(err, "cycle")
	}
	return cycle, nil
}

// DeleteCycle removes a cycle without terms.
func (s *TermService) DeleteCycle(ctx context.Context, id string) error {
	if err := s.repo.DeleteCycle(ctx, id); err != nil {
		return mapDeleteError(err, "cycle")
	}
	return nil
}

// ListTerms returns the ordered terms of a cycle.
func (s *TermService) ListTerms(ctx context.Context, cycleID string) ([]models.Term, error) {
	if _, err := s.repo.FindCycle(ctx, cycleID); err != nil {
		return nil, mapLookupError(err, "cycle")
	}
	terms, err := s.repo.ListTerms(ctx, cycleID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list terms")
	}
	if terms == nil {
		terms = []models.Term{}
	}
	return terms, nil
}

// GetTerm returns one term.
func (s *TermService) GetTerm(ctx context.Context, id string) (*models.Term, error) {
	term, err := s.repo.FindTerm(ctx, id)
	if err != nil {
		return nil, mapLookupError(err, "term")
	}
	return term, nil
}

// CreateTerm appends a term to a cycle.
func (s *TermService) CreateTerm(ctx context.Context, cycleID string, req TermRequest) (*models.Term, error) {
	start, end, err := s.validateTerm(req)
	if err != nil {
		return nil, err
	}
	if _, err := s.repo.FindCycle(ctx, cycleID); err != nil {
		return nil, mapLookupError(err, "cycle")
	}

	ordinal := 0
	if req.Ordinal != nil {
		ordinal = *req.Ordinal
	} else {
		ordinal, err = s.repo.NextOrdinal(ctx, cycleID)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to order term")
		}
	}

	term := &models.Term{
		CycleID:   cycleID,
		Name:      strings.TrimSpace(req.Name),
		Ordinal:   ordinal,
		DateStart: start,
		DateEnd:   end,
	}
	if err := s.repo.CreateTerm(ctx, term); err != nil {
		return nil, mapWriteError(err, "term")
	}
	return term, nil
}

// UpdateTerm modifies a term. The cycle cannot change.
func (s *TermService) UpdateTerm(ctx context.Context, id string, req TermRequest) (*models.Term, error) {
	start, end, err := s.validateTerm(req)
	if err != nil {
		return nil, err
	}
	term, err := s.repo.FindTerm(ctx, id)
	if err != nil {
		return nil, mapLookupError(err, "term")
	}
	term.Name = strings.TrimSpace(req.Name)
	if req.Ordinal != nil {
		term.Ordinal = *req.Ordinal
	}
	term.DateStart = start
	term.DateEnd = end
	if err := s.repo.UpdateTerm(ctx, term); err != nil {
		return nil, mapWriteError(err, "term")
	}
	return term, nil
}

// DeleteTerm removes a term without courses or schedule entries.
func (s *TermService) DeleteTerm(ctx context.Context, id string) error {
	if err := s.repo.DeleteTerm(ctx, id); err != nil {
		return mapDeleteError(err, "term")
	}
	return nil
}

func (s *TermService) validateTerm(req TermRequest) (*time.Time, *time.Time, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, nil, appErrors.Validation(err, "invalid term payload")
	}
	start := parseDate(req.DateStart)
	end := parseDate(req.DateEnd)
	if start != nil && end != nil && end.Before(*start) {
		return nil, nil, appErrors.FieldError("dateEnd", "must not be before dateStart")
	}
	return start, end, nil
}

func parseDate(raw *string) *time.Time {
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return nil
	}
	parsed, err := time.Parse(dateLayout, strings.TrimSpace(*raw))
	if err != nil {
		return nil
	}
	return &parsed
}
