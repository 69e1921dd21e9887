package service

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/nastava-api/internal/dto"
	"github.com/noah-isme/nastava-api/internal/models"
	appErrors "github.com/noah-isme/nastava-api/pkg/errors"
)

type programRepository interface {
	List(ctx context.Context) ([]models.StudyProgram, error)
	FindByID(ctx context.Context, id string) (*models.StudyProgram, error)
	Create(ctx context.Context, program *models.StudyProgram) error
	Update(ctx context.Context, program *models.StudyProgram) error
	Delete(ctx context.Context, id string) error
	ListYears(ctx context.Context, programID string) ([]models.ProgramYear, error)
	AddYear(ctx context.Context, year models.ProgramYear) error
	DeleteYear(ctx context.Context, programID string, yearNumber int) error
	ListSubjectLinks(ctx context.Context, programID string) ([]models.SubjectProgramLink, error)
	LinkSubject(ctx context.Context, link models.SubjectProgram) error
	UnlinkSubject(ctx context.Context, link models.SubjectProgram) error
}

// ProgramRequest is the create/update payload for study programs.
type ProgramRequest struct {
	Name    string  `json:"name" validate:"required,max=200"`
	Code    *string `json:"code" validate:"omitempty,max=50"`
	Faculty *string `json:"faculty" validate:"omitempty,max=100"`
}

// ProgramYearRequest adds a year of study.
type ProgramYearRequest struct {
	YearNumber int `json:"yearNumber" validate:"required,min=1,max=10"`
}

// SubjectLinkRequest links a subject to a program year.
type SubjectLinkRequest struct {
	SubjectID  string `json:"subjectId" validate:"required"`
	YearNumber int    `json:"yearNumber" validate:"required,min=1"`
}

// ProgramService manages study programs, their years and curriculum links.
type ProgramService struct {
	repo      programRepository
	cache     loadCacheInvalidator
	validator *validator.Validate
	logger    *zap.Logger
}

// NewProgramService creates a program service. Program changes alter the
// teacher-load layout, so cache is invalidated on every write.
func NewProgramService(repo programRepository, cache loadCacheInvalidator, validate *validator.Validate, logger *zap.Logger) *ProgramService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProgramService{repo: repo, cache: cache, validator: validate, logger: logger}
}

// List returns programs ordered by faculty and name.
func (s *ProgramService) List(ctx context.Context) ([]models.StudyProgram, error) {
	programs, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list programs")
	}
	if programs == nil {
		programs = []models.StudyProgram{}
	}
	return programs, nil
}

// Get returns one program.
func (s *ProgramService) Get(ctx context.Context, id string) (*models.StudyProgram, error) {
	program, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, mapLookupError(err, "program")
	}
	return program, nil
}

// Create adds a program.
func (s *ProgramService) Create(ctx context.Context, req ProgramRequest) (*models.StudyProgram, error) {
	if err := s.validateProgram(req); err != nil {
		return nil, err
	}
	program := &models.StudyProgram{}
	applyProgramRequest(program, req)
	if err := s.repo.Create(ctx, program); err != nil {
		return nil, mapWriteError(err, "program")
	}
	s.invalidate(ctx)
	return program, nil
}

// Update modifies a program.
func (s *ProgramService) Update(ctx context.Context, id string, req ProgramRequest) (*models.StudyProgram, error) {
	if err := s.validateProgram(req); err != nil {
		return nil, err
	}
	program, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, mapLookupError(err, "program")
	}
	applyProgramRequest(program, req)
	if err := s.repo.Update(ctx, program); err != nil {
		return nil, mapWriteError(err, "program")
	}
	s.invalidate(ctx)
	return program, nil
}

// Delete removes a program.
func (s *ProgramService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return mapDeleteError(err, "program")
	}
	s.invalidate(ctx)
	return nil
}

// ListYears returns the years of study of a program.
func (s *ProgramService) ListYears(ctx context.Context, programID string) ([]models.ProgramYear, error) {
	if _, err := s.repo.FindByID(ctx, programID); err != nil {
		return nil, mapLookupError(err, "program")
	}
	years, err := s.repo.ListYears(ctx, programID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list program years")
	}
	if years == nil {
		years = []models.ProgramYear{}
	}
	return years, nil
}

// AddYear registers a year of study.
func (s *ProgramService) AddYear(ctx context.Context, programID string, req ProgramYearRequest) (*models.ProgramYear, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Validation(err, "invalid program year payload")
	}
	if _, err := s.repo.FindByID(ctx, programID); err != nil {
		return nil, mapLookupError(err, "program")
	}
	year := models.ProgramYear{ProgramID: programID, YearNumber: req.YearNumber}
	if err := s.repo.AddYear(ctx, year); err != nil {
		return nil, mapWriteError(err, "program year")
	}
	return &year, nil
}

// DeleteYear removes a year of study.
func (s *ProgramService) DeleteYear(ctx context.Context, programID string, yearNumber int) error {
	if err := s.repo.DeleteYear(ctx, programID, yearNumber); err != nil {
		return mapDeleteError(err, "program year")
	}
	return nil
}

// ListSubjects returns the curriculum links of a program.
func (s *ProgramService) ListSubjects(ctx context.Context, programID string) ([]models.SubjectProgramLink, error) {
	if _, err := s.repo.FindByID(ctx, programID); err != nil {
		return nil, mapLookupError(err, "program")
	}
	links, err := s.repo.ListSubjectLinks(ctx, programID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list program subjects")
	}
	if links == nil {
		links = []models.SubjectProgramLink{}
	}
	return links, nil
}

// LinkSubject links a subject to a program year. Plans already materialised
// for that year keep their rows.
func (s *ProgramService) LinkSubject(ctx context.Context, programID string, req SubjectLinkRequest) (*models.SubjectProgram, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Validation(err, "invalid subject link payload")
	}
	if _, err := s.repo.FindByID(ctx, programID); err != nil {
		return nil, mapLookupError(err, "program")
	}
	link := models.SubjectProgram{ProgramID: programID, SubjectID: strings.TrimSpace(req.SubjectID), YearNumber: req.YearNumber}
	if err := s.repo.LinkSubject(ctx, link); err != nil {
		return nil, mapWriteError(err, "subject link")
	}
	return &link, nil
}

// UnlinkSubject removes a curriculum link.
func (s *ProgramService) UnlinkSubject(ctx context.Context, link models.SubjectProgram) error {
	if err := s.repo.UnlinkSubject(ctx, link); err != nil {
		return mapDeleteError(err, "subject link")
	}
	return nil
}

// validateProgram also rejects the faculty name of the all-rows load bucket,
// which would otherwise shadow that faculty's own bucket.
func (s *ProgramService) validateProgram(req ProgramRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Validation(err, "invalid program payload")
	}
	if req.Faculty != nil && strings.EqualFold(strings.TrimSpace(*req.Faculty), dto.SummaryBucket) {
		return appErrors.FieldError("faculty", "reserved name")
	}
	return nil
}

func (s *ProgramService) invalidate(ctx context.Context) {
	if s.cache != nil {
		s.cache.InvalidateTeacherLoad(ctx)
	}
}

func applyProgramRequest(program *models.StudyProgram, req ProgramRequest) {
	program.Name = strings.TrimSpace(req.Name)
	program.Code = trimmedOrNil(req.Code)
	program.Faculty = trimmedOrNil(req.Faculty)
}
