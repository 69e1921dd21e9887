package service

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/nastava-api/internal/models"
	appErrors "github.com/noah-isme/nastava-api/pkg/errors"
)

type professorRepository interface {
	List(ctx context.Context, filter models.ProfessorFilter) ([]models.Professor, int, error)
	FindByID(ctx context.Context, id string) (*models.Professor, error)
	Create(ctx context.Context, professor *models.Professor) error
	Update(ctx context.Context, professor *models.Professor) error
	Delete(ctx context.Context, id string) error
}

// ProfessorRequest is the create/update payload for professors.
type ProfessorRequest struct {
	Name       string  `json:"name" validate:"required,max=200"`
	Email      *string `json:"email" validate:"omitempty,email"`
	Phone      *string `json:"phone" validate:"omitempty,max=50"`
	Title      *string `json:"title" validate:"omitempty,oneof=DOCENT VANREDNI_PROFESOR REDOVNI_PROFESOR VISI_ASISTENT ASISTENT PREDAVAC"`
	Engagement *string `json:"engagement" validate:"omitempty,oneof=EMPLOYED EXTERNAL"`
}

// ProfessorService manages professors.
type ProfessorService struct {
	repo      professorRepository
	cache     loadCacheInvalidator
	validator *validator.Validate
	logger    *zap.Logger
}

// NewProfessorService creates a new professor service. Teacher-load rows embed
// professor attributes, so updates and deletes invalidate that cache.
func NewProfessorService(repo professorRepository, cache loadCacheInvalidator, validate *validator.Validate, logger *zap.Logger) *ProfessorService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProfessorService{repo: repo, cache: cache, validator: validate, logger: logger}
}

// List returns paginated professors.
func (s *ProfessorService) List(ctx context.Context, filter models.ProfessorFilter) ([]models.Professor, *models.Pagination, error) {
	professors, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list professors")
	}
	if professors == nil {
		professors = []models.Professor{}
	}
	return professors, pagination(filter.Page, filter.PageSize, total), nil
}

// Get returns a professor by id.
func (s *ProfessorService) Get(ctx context.Context, id string) (*models.Professor, error) {
	professor, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, mapLookupError(err, "professor")
	}
	return professor, nil
}

// Create registers a professor.
func (s *ProfessorService) Create(ctx context.Context, req ProfessorRequest) (*models.Professor, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Validation(err, "invalid professor payload")
	}
	professor := &models.Professor{}
	applyProfessorRequest(professor, req)
	if err := s.repo.Create(ctx, professor); err != nil {
		return nil, mapWriteError(err, "professor")
	}
	return professor, nil
}

// Update replaces the editable fields of a professor.
func (s *ProfessorService) Update(ctx context.Context, id string, req ProfessorRequest) (*models.Professor, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Validation(err, "invalid professor payload")
	}
	professor, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, mapLookupError(err, "professor")
	}
	applyProfessorRequest(professor, req)
	if err := s.repo.Update(ctx, professor); err != nil {
		return nil, mapWriteError(err, "professor")
	}
	s.invalidate(ctx)
	return professor, nil
}

// Delete removes a professor that no course, entry or plan row references.
func (s *ProfessorService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return mapDeleteError(err, "professor")
	}
	s.invalidate(ctx)
	return nil
}

func (s *ProfessorService) invalidate(ctx context.Context) {
	if s.cache != nil {
		s.cache.InvalidateTeacherLoad(ctx)
	}
}

func applyProfessorRequest(professor *models.Professor, req ProfessorRequest) {
	professor.Name = strings.TrimSpace(req.Name)
	professor.Email = trimmedOrNil(req.Email)
	professor.Phone = trimmedOrNil(req.Phone)
	professor.Title = nil
	if title := trimmedOrNil(req.Title); title != nil {
		t := models.ProfessorTitle(*title)
		professor.Title = &t
	}
	professor.Engagement = nil
	if engagement := trimmedOrNil(req.Engagement); engagement != nil {
		e := models.Engagement(*engagement)
		professor.Engagement = &e
	}
}
