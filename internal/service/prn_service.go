package service

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/nastava-api/internal/dto"
	"github.com/noah-isme/nastava-api/internal/models"
	appErrors "github.com/noah-isme/nastava-api/pkg/errors"
	"github.com/noah-isme/nastava-api/pkg/export"
)

type prnRepository interface {
	GetOrCreate(ctx context.Context, programID string, yearNumber int) (*models.PRNPlan, bool, error)
	FindPlanByID(ctx context.Context, id string) (*models.PRNPlan, error)
	ListRows(ctx context.Context, planID string) ([]models.PRNRowDetail, error)
	FindRow(ctx context.Context, id string) (*models.PRNRowDetail, error)
	UpdateRow(ctx context.Context, row *models.PRNRow) error
	SubjectPosition(ctx context.Context, planID, subjectID string) (int, error)
	AddRow(ctx context.Context, row *models.PRNRow) error
}

type prnProgramReader interface {
	FindByID(ctx context.Context, id string) (*models.StudyProgram, error)
	LinksForSubjects(ctx context.Context, subjectIDs []string) ([]models.SubjectProgramLink, error)
}

type prnProfessorReader interface {
	FindByID(ctx context.Context, id string) (*models.Professor, error)
}

type loadCacheInvalidator interface {
	InvalidateTeacherLoad(ctx context.Context)
}

type planMetrics interface {
	RecordPlanMaterialised()
}

// OptionalString distinguishes an absent JSON key from an explicit null or "".
type OptionalString struct {
	Set   bool
	Value string
}

// UnmarshalJSON marks the key as present; null and "" both clear the value.
func (o *OptionalString) UnmarshalJSON(data []byte) error {
	o.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		o.Value = ""
		return nil
	}
	var value string
	if err := json.Unmarshal(data, &value); err != nil {
		return err
	}
	o.Value = strings.TrimSpace(value)
	return nil
}

// UpdatePlanRowRequest edits a plan row. Omitted totals keep their stored values.
type UpdatePlanRowRequest struct {
	ProfessorID   OptionalString `json:"professorId" swaggertype:"string"`
	LectureTotal  *HourValue     `json:"lectureTotal" swaggertype:"integer"`
	ExerciseTotal *HourValue     `json:"exerciseTotal" swaggertype:"integer"`
	Mode          *string        `json:"mode"`
}

// AddTeacherRowRequest adds another teacher to a subject already in a plan.
type AddTeacherRowRequest struct {
	PlanID    string `json:"planId" validate:"required"`
	SubjectID string `json:"subjectId" validate:"required"`
}

// PRNService materialises teaching plans and edits their rows.
type PRNService struct {
	repo       prnRepository
	programs   prnProgramReader
	professors prnProfessorReader
	cache      loadCacheInvalidator
	metrics    planMetrics
	validator  *validator.Validate
	logger     *zap.Logger
	weeks      int
}

// NewPRNService constructs the plan service. weeks is the semester length used for weekly figures.
func NewPRNService(repo prnRepository, programs prnProgramReader, professors prnProfessorReader, cache loadCacheInvalidator, metrics planMetrics, validate *validator.Validate, logger *zap.Logger, weeks int) *PRNService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if weeks <= 0 {
		weeks = DefaultTeachingWeeks
	}
	return &PRNService{
		repo:       repo,
		programs:   programs,
		professors: professors,
		cache:      cache,
		metrics:    metrics,
		validator:  validate,
		logger:     logger,
		weeks:      weeks,
	}
}

// GetOrCreatePlan returns the plan of a program year, creating and seeding it on first access.
func (s *PRNService) GetOrCreatePlan(ctx context.Context, programID string, year int) (*dto.PlanResponse, error) {
	programID = strings.TrimSpace(programID)
	if programID == "" {
		return nil, appErrors.FieldError("programId", "required")
	}
	if year < 1 {
		return nil, appErrors.FieldError("year", "must be at least 1")
	}
	program, err := s.programs.FindByID(ctx, programID)
	if err != nil {
		return nil, mapLookupError(err, "program")
	}

	plan, created, err := s.repo.GetOrCreate(ctx, programID, year)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load plan")
	}
	if created {
		s.logger.Info("plan materialised", zap.String("plan_id", plan.ID), zap.String("program_id", programID), zap.Int("year", year))
		if s.metrics != nil {
			s.metrics.RecordPlanMaterialised()
		}
	}

	rows, err := s.repo.ListRows(ctx, plan.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load plan rows")
	}
	planRows, err := s.expandRows(ctx, rows)
	if err != nil {
		return nil, err
	}

	return &dto.PlanResponse{
		Plan: *plan,
		Program: dto.PlanProgram{
			ID:      program.ID,
			Name:    program.Name,
			Code:    program.Code,
			Faculty: program.Faculty,
		},
		Rows:     planRows,
		Coverage: ComputeCoverage(rows, s.weeks),
	}, nil
}

// UpdateRow assigns a professor and hour totals to a row.
func (s *PRNService) UpdateRow(ctx context.Context, id string, req UpdatePlanRowRequest) (*dto.PlanRow, error) {
	current, err := s.repo.FindRow(ctx, id)
	if err != nil {
		return nil, mapLookupError(err, "plan row")
	}
	row := current.PRNRow

	if req.ProfessorID.Set {
		if req.ProfessorID.Value == "" {
			row.ProfessorID = nil
		} else {
			if _, err := s.professors.FindByID(ctx, req.ProfessorID.Value); err != nil {
				if errors.Is(err, sql.ErrNoRows) {
					return nil, appErrors.FieldError("professorId", "unknown professor")
				}
				return nil, mapLookupError(err, "professor")
			}
			professorID := req.ProfessorID.Value
			row.ProfessorID = &professorID
		}
	}

	lecture, exercise := row.LectureTotal, row.ExerciseTotal
	if req.LectureTotal != nil {
		lecture = req.LectureTotal.Int()
	}
	if req.ExerciseTotal != nil {
		exercise = req.ExerciseTotal.Int()
	}

	var mode models.TeachingMode
	if req.Mode != nil {
		mode = models.TeachingMode(strings.ToUpper(strings.TrimSpace(*req.Mode)))
		if mode != "" && !mode.Valid() {
			return nil, appErrors.FieldError("mode", "must be P, V or PV")
		}
	}
	row.LectureTotal, row.ExerciseTotal = NormalizeForSave(mode, lecture, exercise)

	if err := s.repo.UpdateRow(ctx, &row); err != nil {
		return nil, mapWriteError(err, "plan row")
	}
	s.invalidate(ctx)

	return s.loadRow(ctx, row.ID)
}

// AddTeacherRow appends a zero-filled row sharing the subject's position.
func (s *PRNService) AddTeacherRow(ctx context.Context, req AddTeacherRowRequest) (*dto.PlanRow, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Validation(err, "invalid add-teacher payload")
	}
	if _, err := s.repo.FindPlanByID(ctx, req.PlanID); err != nil {
		return nil, mapLookupError(err, "plan")
	}
	position, err := s.repo.SubjectPosition(ctx, req.PlanID, req.SubjectID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.FieldError("subjectId", "subject is not part of the plan")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to add plan row")
	}

	row := models.PRNRow{PlanID: req.PlanID, SubjectID: req.SubjectID, Position: position}
	if err := s.repo.AddRow(ctx, &row); err != nil {
		return nil, mapWriteError(err, "plan row")
	}
	s.invalidate(ctx)

	return s.loadRow(ctx, row.ID)
}

// ExportPlan renders a plan with its coverage footer as an XLSX workbook.
func (s *PRNService) ExportPlan(ctx context.Context, programID string, year int) ([]byte, string, error) {
	plan, err := s.GetOrCreatePlan(ctx, programID, year)
	if err != nil {
		return nil, "", err
	}
	payload, err := export.NewXLSXExporter().Render([]export.Sheet{{Name: "PRN", Data: planDataset(plan)}})
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render plan")
	}
	label := plan.Program.Name
	if plan.Program.Code != nil && *plan.Program.Code != "" {
		label = *plan.Program.Code
	}
	return payload, fmt.Sprintf("prn-%s-%d.xlsx", fileSlug(label), year), nil
}

func (s *PRNService) invalidate(ctx context.Context) {
	if s.cache != nil {
		s.cache.InvalidateTeacherLoad(ctx)
	}
}

func (s *PRNService) loadRow(ctx context.Context, id string) (*dto.PlanRow, error) {
	detail, err := s.repo.FindRow(ctx, id)
	if err != nil {
		return nil, mapLookupError(err, "plan row")
	}
	rows, err := s.expandRows(ctx, []models.PRNRowDetail{*detail})
	if err != nil {
		return nil, err
	}
	return &rows[0], nil
}

// expandRows attaches program links and the derived mode to each row.
func (s *PRNService) expandRows(ctx context.Context, rows []models.PRNRowDetail) ([]dto.PlanRow, error) {
	seen := make(map[string]struct{}, len(rows))
	subjectIDs := make([]string, 0, len(rows))
	for _, row := range rows {
		if _, ok := seen[row.SubjectID]; ok {
			continue
		}
		seen[row.SubjectID] = struct{}{}
		subjectIDs = append(subjectIDs, row.SubjectID)
	}

	links, err := s.programs.LinksForSubjects(ctx, subjectIDs)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load subject programs")
	}
	bySubject := make(map[string][]models.SubjectProgramLink, len(subjectIDs))
	for _, link := range links {
		bySubject[link.SubjectID] = append(bySubject[link.SubjectID], link)
	}

	out := make([]dto.PlanRow, 0, len(rows))
	for _, row := range rows {
		subjectLinks := bySubject[row.SubjectID]
		if subjectLinks == nil {
			subjectLinks = []models.SubjectProgramLink{}
		}
		out = append(out, toPlanRow(row, subjectLinks))
	}
	return out, nil
}

func toPlanRow(row models.PRNRowDetail, links []models.SubjectProgramLink) dto.PlanRow {
	programs := make(map[string]struct{}, len(links))
	for _, link := range links {
		programs[link.ProgramID] = struct{}{}
	}
	planRow := dto.PlanRow{
		ID:            row.ID,
		PlanID:        row.PlanID,
		SubjectID:     row.SubjectID,
		ProfessorID:   row.ProfessorID,
		LectureTotal:  row.LectureTotal,
		ExerciseTotal: row.ExerciseTotal,
		Combined:      row.LectureTotal + row.ExerciseTotal,
		Mode:          InferMode(row.LectureTotal, row.ExerciseTotal),
		Position:      row.Position,
		Subject: dto.PlanSubject{
			ID:       row.SubjectID,
			Name:     row.SubjectName,
			Code:     row.SubjectCode,
			Semester: row.SubjectSemester,
			Programs: links,
			IsJoint:  len(programs) > 1,
		},
	}
	if row.ProfessorID != nil && row.ProfessorName != nil {
		planRow.Professor = &dto.PlanProfessor{
			ID:         *row.ProfessorID,
			Name:       *row.ProfessorName,
			Title:      row.ProfessorTitle,
			Engagement: row.ProfessorEngagement,
		}
	}
	return planRow
}

var planExportHeaders = []string{"Subject", "Code", "Programs", "Professor", "Engagement", "Mode", "Lecture", "Exercise", "Combined", "Weekly", "Share %"}

var planNumericColumns = map[string]bool{"Lecture": true, "Exercise": true, "Combined": true, "Weekly": true, "Share %": true}

func planDataset(plan *dto.PlanResponse) export.Dataset {
	weeks := float64(plan.Coverage.Weeks)
	data := export.Dataset{
		Title:   fmt.Sprintf("PRN %s, year %d", plan.Program.Name, plan.Plan.YearNumber),
		Headers: planExportHeaders,
		Numeric: planNumericColumns,
	}

	spanStart := 0
	for i, row := range plan.Rows {
		labels := make([]string, 0, len(row.Subject.Programs))
		for _, link := range row.Subject.Programs {
			labels = append(labels, programLinkLabel(link))
		}
		record := map[string]string{
			"Subject":  row.Subject.Name,
			"Code":     derefString(row.Subject.Code),
			"Programs": strings.Join(labels, ", "),
			"Mode":     string(row.Mode),
			"Lecture":  strconv.Itoa(row.LectureTotal),
			"Exercise": strconv.Itoa(row.ExerciseTotal),
			"Combined": strconv.Itoa(row.Combined),
			"Weekly":   formatHours(float64(row.Combined) / weeks),
		}
		if row.Professor != nil {
			record["Professor"] = row.Professor.Name
			if row.Professor.Engagement != nil {
				record["Engagement"] = string(*row.Professor.Engagement)
			}
		}
		data.Rows = append(data.Rows, record)

		if i > 0 && plan.Rows[i-1].SubjectID != row.SubjectID {
			data.Spans = appendSubjectSpan(data.Spans, spanStart, i-1)
			spanStart = i
		}
	}
	if len(plan.Rows) > 0 {
		data.Spans = appendSubjectSpan(data.Spans, spanStart, len(plan.Rows)-1)
	}

	for _, footer := range []struct {
		label  string
		bucket dto.CoverageBucket
	}{
		{"RO", plan.Coverage.RO},
		{"VS", plan.Coverage.VS},
		{"Total", plan.Coverage.Total},
	} {
		data.Footer = append(data.Footer, map[string]string{
			"Subject":  footer.label,
			"Lecture":  strconv.Itoa(footer.bucket.Lecture),
			"Exercise": strconv.Itoa(footer.bucket.Exercise),
			"Combined": strconv.Itoa(footer.bucket.Combined),
			"Weekly":   formatHours(footer.bucket.WeeklyCombined),
			"Share %":  formatHours(footer.bucket.Share),
		})
	}
	return data
}

func appendSubjectSpan(spans []export.Span, first, last int) []export.Span {
	if last <= first {
		return spans
	}
	return append(spans, export.Span{Column: "Subject", FirstRow: first, LastRow: last})
}

func programLinkLabel(link models.SubjectProgramLink) string {
	label := link.ProgramName
	if link.ProgramCode != nil && *link.ProgramCode != "" {
		label = *link.ProgramCode
	}
	return fmt.Sprintf("%s/%d", label, link.YearNumber)
}

func formatHours(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func derefString(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}

func fileSlug(raw string) string {
	slug := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-':
			return r
		case r >= 'A' && r <= 'Z':
			return r + ('a' - 'A')
		}
		return '-'
	}, strings.TrimSpace(raw))
	if slug == "" {
		return "export"
	}
	return slug
}
