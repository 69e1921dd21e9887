package service

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/nastava-api/internal/models"
	"github.com/noah-isme/nastava-api/internal/repository"
	"github.com/noah-isme/nastava-api/pkg/database"
	appErrors "github.com/noah-isme/nastava-api/pkg/errors"
)

type scheduleEntryRepository interface {
	List(ctx context.Context, filter models.ScheduleEntryFilter) ([]models.ScheduleEntryDetail, error)
	FindByID(ctx context.Context, id string) (*models.ScheduleEntryDetail, error)
	FindConflicts(ctx context.Context, probe models.ConflictProbe) ([]models.ScheduleEntryDetail, error)
	CreateChecked(ctx context.Context, entry *models.ScheduleEntry, probe models.ConflictProbe, serializable bool, check repository.ConflictCheck) error
	Delete(ctx context.Context, id string) error
}

type scheduleCourseReader interface {
	FindByID(ctx context.Context, id string) (*models.Course, error)
}

type scheduleMetrics interface {
	RecordScheduleRejection(room, professor, group int)
}

// CreateScheduleEntryRequest is the payload of a new timetable slot. ProfessorID
// defaults to the course professor.
type CreateScheduleEntryRequest struct {
	TermID      string          `json:"termId" validate:"required"`
	CourseID    string          `json:"courseId" validate:"required"`
	ProfessorID string          `json:"professorId"`
	RoomID      *string         `json:"roomId"`
	GroupName   *string         `json:"groupName"`
	DayOfWeek   int             `json:"dayOfWeek" validate:"required,min=1,max=7"`
	StartMin    int             `json:"startMin" validate:"min=0,max=1439"`
	EndMin      int             `json:"endMin" validate:"required,min=1,max=1440"`
	WeekType    models.WeekType `json:"weekType"`
	IsOnline    bool            `json:"isOnline"`
	Note        *string         `json:"note"`
}

// ScheduleEntryService rejects colliding timetable entries and persists the rest.
type ScheduleEntryService struct {
	repo         scheduleEntryRepository
	courses      scheduleCourseReader
	validator    *validator.Validate
	logger       *zap.Logger
	metrics      scheduleMetrics
	serializable bool
}

// NewScheduleEntryService instantiates ScheduleEntryService.
func NewScheduleEntryService(repo scheduleEntryRepository, courses scheduleCourseReader, validate *validator.Validate, logger *zap.Logger, metrics scheduleMetrics, serializable bool) *ScheduleEntryService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ScheduleEntryService{repo: repo, courses: courses, validator: validate, logger: logger, metrics: metrics, serializable: serializable}
}

// List returns entries ordered by day and time.
func (s *ScheduleEntryService) List(ctx context.Context, filter models.ScheduleEntryFilter) ([]models.ScheduleEntryDetail, error) {
	entries, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list schedule entries")
	}
	if entries == nil {
		entries = []models.ScheduleEntryDetail{}
	}
	return entries, nil
}

// Get returns a single entry.
func (s *ScheduleEntryService) Get(ctx context.Context, id string) (*models.ScheduleEntryDetail, error) {
	entry, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, mapLookupError(err, "schedule entry")
	}
	return entry, nil
}

// Check reports the entries a candidate would collide with without persisting it.
func (s *ScheduleEntryService) Check(ctx context.Context, req CreateScheduleEntryRequest) (models.ScheduleConflictSet, error) {
	candidate, err := s.prepare(ctx, req)
	if err != nil {
		return models.ScheduleConflictSet{}, err
	}
	existing, err := s.repo.FindConflicts(ctx, probeFor(candidate))
	if err != nil {
		return models.ScheduleConflictSet{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check schedule conflicts")
	}
	return DetectConflicts(candidate, existing), nil
}

// Create persists a candidate unless it collides with an existing entry, in
// which case a SCHEDULE_CONFLICT error carrying the colliding entries is returned.
func (s *ScheduleEntryService) Create(ctx context.Context, req CreateScheduleEntryRequest) (*models.ScheduleEntry, error) {
	candidate, err := s.prepare(ctx, req)
	if err != nil {
		return nil, err
	}

	var conflicts models.ScheduleConflictSet
	check := func(existing []models.ScheduleEntryDetail) error {
		conflicts = DetectConflicts(candidate, existing)
		if conflicts.Empty() {
			return nil
		}
		return &models.ScheduleConflictError{Message: "schedule entry conflicts with existing entries", Conflicts: conflicts}
	}

	err = s.repo.CreateChecked(ctx, &candidate, probeFor(candidate), s.serializable, check)
	if err == nil {
		return &candidate, nil
	}

	var conflictErr *models.ScheduleConflictError
	switch {
	case errors.As(err, &conflictErr):
		s.logger.Info("schedule entry rejected",
			zap.String("term_id", candidate.TermID),
			zap.Int("day_of_week", candidate.DayOfWeek),
			zap.Int("room_conflicts", len(conflicts.Room)),
			zap.Int("professor_conflicts", len(conflicts.Professor)),
			zap.Int("group_conflicts", len(conflicts.Group)),
		)
		if s.metrics != nil {
			s.metrics.RecordScheduleRejection(len(conflicts.Room), len(conflicts.Professor), len(conflicts.Group))
		}
		return nil, conflictError(conflictErr.Message, conflictErr.Conflicts, err)
	case database.IsSerializationFailure(err):
		return nil, conflictError("concurrent schedule change, resubmit", emptyConflictSet(), err)
	case database.IsForeignKeyViolation(err):
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "referenced term, room or professor does not exist")
	default:
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create schedule entry")
	}
}

// Delete removes an entry.
func (s *ScheduleEntryService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return mapDeleteError(err, "schedule entry")
	}
	return nil
}

func (s *ScheduleEntryService) prepare(ctx context.Context, req CreateScheduleEntryRequest) (models.ScheduleEntry, error) {
	if err := s.validator.Struct(req); err != nil {
		return models.ScheduleEntry{}, appErrors.Validation(err, "invalid schedule entry payload")
	}
	if req.EndMin <= req.StartMin {
		return models.ScheduleEntry{}, appErrors.FieldError("endMin", "must be after startMin")
	}

	weekType := models.WeekType(strings.ToUpper(strings.TrimSpace(string(req.WeekType))))
	if weekType == "" {
		weekType = models.WeekAll
	}
	if !weekType.Valid() {
		return models.ScheduleEntry{}, appErrors.FieldError("weekType", "must be ALL, A or B")
	}

	roomID := trimmedOrNil(req.RoomID)
	if roomID == nil && !req.IsOnline {
		return models.ScheduleEntry{}, appErrors.FieldError("roomId", "required unless the entry is online")
	}

	course, err := s.courses.FindByID(ctx, req.CourseID)
	if err != nil {
		return models.ScheduleEntry{}, mapLookupError(err, "course")
	}
	if course.TermID != req.TermID {
		return models.ScheduleEntry{}, appErrors.FieldError("courseId", "course belongs to another term")
	}

	professorID := strings.TrimSpace(req.ProfessorID)
	if professorID == "" {
		professorID = course.ProfessorID
	}

	return models.ScheduleEntry{
		TermID:      req.TermID,
		CourseID:    req.CourseID,
		ProfessorID: professorID,
		RoomID:      roomID,
		GroupName:   trimmedOrNil(req.GroupName),
		DayOfWeek:   req.DayOfWeek,
		StartMin:    req.StartMin,
		EndMin:      req.EndMin,
		WeekType:    weekType,
		IsOnline:    req.IsOnline,
		Note:        trimmedOrNil(req.Note),
	}, nil
}

func probeFor(candidate models.ScheduleEntry) models.ConflictProbe {
	probe := models.ConflictProbe{
		TermID:      candidate.TermID,
		DayOfWeek:   candidate.DayOfWeek,
		StartMin:    candidate.StartMin,
		EndMin:      candidate.EndMin,
		WeekTypes:   CompatibleWeekTypes(candidate.WeekType),
		ProfessorID: candidate.ProfessorID,
	}
	if !candidate.IsOnline && candidate.RoomID != nil {
		probe.RoomID = *candidate.RoomID
	}
	if candidate.GroupName != nil {
		probe.GroupName = *candidate.GroupName
	}
	return probe
}

func emptyConflictSet() models.ScheduleConflictSet {
	return models.ScheduleConflictSet{
		Room:      []models.ScheduleEntryDetail{},
		Professor: []models.ScheduleEntryDetail{},
		Group:     []models.ScheduleEntryDetail{},
	}
}

func conflictError(message string, conflicts models.ScheduleConflictSet, cause error) *appErrors.Error {
	appErr := appErrors.Wrap(cause, appErrors.ErrScheduleConflict.Code, http.StatusConflict, message)
	appErr.Details = map[string]interface{}{"conflicts": conflicts}
	return appErr
}

func trimmedOrNil(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
