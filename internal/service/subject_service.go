package service

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/nastava-api/internal/models"
	appErrors "github.com/noah-isme/nastava-api/pkg/errors"
)

type subjectRepository interface {
	List(ctx context.Context, filter models.SubjectFilter) ([]models.Subject, int, error)
	FindByID(ctx context.Context, id string) (*models.Subject, error)
	Create(ctx context.Context, subject *models.Subject) error
	Update(ctx context.Context, subject *models.Subject) error
	Delete(ctx context.Context, id string) error
}

// SubjectRequest captures fields for creating or updating subjects.
type SubjectRequest struct {
	Name     string  `json:"name" validate:"required,max=200"`
	Code     *string `json:"code" validate:"omitempty,max=50"`
	Semester *int    `json:"semester" validate:"omitempty,min=1,max=12"`
}

// SubjectService handles subject workflows.
type SubjectService struct {
	repo      subjectRepository
	cache     loadCacheInvalidator
	validator *validator.Validate
	logger    *zap.Logger
}

// NewSubjectService creates a new subject service. Teacher-load rows embed
// subject attributes, so updates and deletes invalidate that cache.
func NewSubjectService(repo subjectRepository, cache loadCacheInvalidator, validate *validator.Validate, logger *zap.Logger) *SubjectService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SubjectService{repo: repo, cache: cache, validator: validate, logger: logger}
}

// List returns paginated subjects.
func (s *SubjectService) List(ctx context.Context, filter models.SubjectFilter) ([]models.Subject, *models.Pagination, error) {
	subjects, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list subjects")
	}
	if subjects == nil {
		subjects = []models.Subject{}
	}
	return subjects, pagination(filter.Page, filter.PageSize, total), nil
}

// Get returns subject by identifier.
func (s *SubjectService) Get(ctx context.Context, id string) (*models.Subject, error) {
	subject, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, mapLookupError(err, "subject")
	}
	return subject, nil
}

// Create adds a new subject. Codes are stored upper-cased and must be unique.
func (s *SubjectService) Create(ctx context.Context, req SubjectRequest) (*models.Subject, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Validation(err, "invalid subject payload")
	}
	subject := &models.Subject{}
	applySubjectRequest(subject, req)
	if err := s.repo.Create(ctx, subject); err != nil {
		return nil, mapWriteError(err, "subject")
	}
	return subject, nil
}

// Update modifies an existing subject.
func (s *SubjectService) Update(ctx context.Context, id string, req SubjectRequest) (*models.Subject, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Validation(err, "invalid subject payload")
	}
	subject, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, mapLookupError(err, "subject")
	}
	applySubjectRequest(subject, req)
	if err := s.repo.Update(ctx, subject); err != nil {
		return nil, mapWriteError(err, "subject")
	}
	s.invalidate(ctx)
	return subject, nil
}

// Delete removes a subject that is not linked, scheduled or planned.
func (s *SubjectService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return mapDeleteError(err, "subject")
	}
	s.invalidate(ctx)
	return nil
}

func (s *SubjectService) invalidate(ctx context.Context) {
	if s.cache != nil {
		s.cache.InvalidateTeacherLoad(ctx)
	}
}

func applySubjectRequest(subject *models.Subject, req SubjectRequest) {
	subject.Name = strings.TrimSpace(req.Name)
	subject.Code = nil
	if code := trimmedOrNil(req.Code); code != nil {
		upper := strings.ToUpper(*code)
		subject.Code = &upper
	}
	subject.Semester = req.Semester
}
