package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/nastava-api/internal/dto"
	"github.com/noah-isme/nastava-api/internal/models"
	appErrors "github.com/noah-isme/nastava-api/pkg/errors"
	"github.com/noah-isme/nastava-api/pkg/export"
)

// Export formats supported by the teacher-load report.
const (
	FormatXLSX = "xlsx"
	FormatCSV  = "csv"
	FormatPDF  = "pdf"
)

type loadSourceRepository interface {
	LoadSource(ctx context.Context) ([]models.LoadSourceRow, error)
}

type programLister interface {
	List(ctx context.Context) ([]models.StudyProgram, error)
}

type loadCache interface {
	Get(ctx context.Context, key string, dest interface{}) bool
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration)
}

// FacultyPrograms lists the program labels owned by one faculty.
type FacultyPrograms struct {
	Faculty  string   `json:"faculty"`
	Programs []string `json:"programs"`
}

// TeacherLoadSnapshot is the cached unit: flat rows plus the program layout they were built against.
type TeacherLoadSnapshot struct {
	Rows      []dto.FlatLoadRow `json:"rows"`
	Programs  []string          `json:"programs"`
	Faculties []FacultyPrograms `json:"faculties"`
}

func (s TeacherLoadSnapshot) facultyMap() map[string][]string {
	out := make(map[string][]string, len(s.Faculties))
	for _, f := range s.Faculties {
		out[f.Faculty] = f.Programs
	}
	return out
}

// ExportFile is a rendered report ready for download.
type ExportFile struct {
	Filename    string
	ContentType string
	Payload     []byte
}

// TeacherLoadService builds the teacher-load report from assigned plan rows.
type TeacherLoadService struct {
	source     loadSourceRepository
	programs   programLister
	cache      loadCache
	logger     *zap.Logger
	weeks      int
	weeklyNorm float64
	cacheTTL   time.Duration
}

// NewTeacherLoadService constructs the report service.
func NewTeacherLoadService(source loadSourceRepository, programs programLister, cache loadCache, logger *zap.Logger, weeks int, weeklyNorm float64, cacheTTL time.Duration) *TeacherLoadService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if weeks <= 0 {
		weeks = DefaultTeachingWeeks
	}
	return &TeacherLoadService{
		source:     source,
		programs:   programs,
		cache:      cache,
		logger:     logger,
		weeks:      weeks,
		weeklyNorm: weeklyNorm,
		cacheTTL:   cacheTTL,
	}
}

// Rows returns the flat teacher-load rows and whether they came from cache.
func (s *TeacherLoadService) Rows(ctx context.Context) (*dto.TeacherLoadRows, bool, error) {
	snapshot, hit, err := s.snapshot(ctx)
	if err != nil {
		return nil, false, err
	}
	return &dto.TeacherLoadRows{Rows: snapshot.Rows, Programs: snapshot.Programs}, hit, nil
}

// Buckets lists SUMMARY followed by every faculty that owns a program.
func (s *TeacherLoadService) Buckets(ctx context.Context) ([]string, error) {
	snapshot, _, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return bucketNames(snapshot), nil
}

// Report groups the rows of one bucket by professor.
func (s *TeacherLoadService) Report(ctx context.Context, bucket string) (*dto.LoadReport, bool, error) {
	snapshot, hit, err := s.snapshot(ctx)
	if err != nil {
		return nil, false, err
	}
	bucket, err = resolveBucket(snapshot, bucket)
	if err != nil {
		return nil, false, err
	}
	report := BuildLoadReport(snapshot.Rows, bucket, snapshot.Programs, snapshot.facultyMap())
	return &report, hit, nil
}

// Export renders the report. XLSX holds every bucket, one sheet each, unless
// bucket is given; CSV and PDF hold a single bucket, SUMMARY by default.
func (s *TeacherLoadService) Export(ctx context.Context, format, bucket string) (*ExportFile, error) {
	snapshot, _, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	format = strings.ToLower(strings.TrimSpace(format))
	if format == "" {
		format = FormatXLSX
	}
	faculties := snapshot.facultyMap()

	var buckets []string
	if strings.TrimSpace(bucket) == "" && format == FormatXLSX {
		buckets = bucketNames(snapshot)
	} else {
		resolved, err := resolveBucket(snapshot, bucket)
		if err != nil {
			return nil, err
		}
		buckets = []string{resolved}
	}

	datasets := make([]export.Dataset, 0, len(buckets))
	for _, name := range buckets {
		report := BuildLoadReport(snapshot.Rows, name, snapshot.Programs, faculties)
		datasets = append(datasets, loadReportDataset(report))
	}

	var (
		payload     []byte
		contentType string
		renderErr   error
	)
	switch format {
	case FormatXLSX:
		sheets := make([]export.Sheet, len(datasets))
		for i, data := range datasets {
			sheets[i] = export.Sheet{Name: buckets[i], Data: data}
		}
		payload, renderErr = export.NewXLSXExporter().Render(sheets)
		contentType = export.ContentTypeXLSX
	case FormatCSV:
		payload, renderErr = export.NewCSVExporter().Render(datasets[0])
		contentType = export.ContentTypeCSV
	case FormatPDF:
		payload, renderErr = export.NewPDFExporter().Render(datasets[0])
		contentType = export.ContentTypePDF
	default:
		return nil, appErrors.FieldError("format", "must be xlsx, csv or pdf")
	}
	if renderErr != nil {
		return nil, appErrors.Wrap(renderErr, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render teacher load")
	}

	name := "teacher-load"
	if len(buckets) == 1 {
		name += "-" + fileSlug(buckets[0])
	}
	return &ExportFile{Filename: name + "." + format, ContentType: contentType, Payload: payload}, nil
}

func (s *TeacherLoadService) snapshot(ctx context.Context) (TeacherLoadSnapshot, bool, error) {
	var cached TeacherLoadSnapshot
	if s.cache != nil && s.cache.Get(ctx, TeacherLoadRowsKey, &cached) {
		return cached, true, nil
	}

	programs, err := s.programs.List(ctx)
	if err != nil {
		return TeacherLoadSnapshot{}, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list programs")
	}
	source, err := s.source.LoadSource(ctx)
	if err != nil {
		return TeacherLoadSnapshot{}, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load teacher load")
	}

	snapshot := BuildFlatLoadRows(source, programs, s.weeks, s.weeklyNorm)
	if s.cache != nil {
		s.cache.Set(ctx, TeacherLoadRowsKey, snapshot, s.cacheTTL)
	}
	s.logger.Debug("teacher load rebuilt", zap.Int("rows", len(snapshot.Rows)), zap.Int("programs", len(snapshot.Programs)))
	return snapshot, false, nil
}

// BuildFlatLoadRows expands assigned plan rows into report rows. Every row
// carries a flag for every known program. A professor meets the weekly norm
// when their summed weekly hours reach weeklyNorm; the indicator is only
// set for employed professors.
func BuildFlatLoadRows(source []models.LoadSourceRow, programs []models.StudyProgram, weeks int, weeklyNorm float64) TeacherLoadSnapshot {
	if weeks <= 0 {
		weeks = DefaultTeachingWeeks
	}
	labels := make([]string, 0, len(programs))
	labelByID := make(map[string]string, len(programs))
	seenLabel := make(map[string]bool, len(programs))
	faculties := newOrderedMap[string, []string]()
	for _, program := range programs {
		label := uniqueProgramLabel(program.Label(), seenLabel)
		labelByID[program.ID] = label
		labels = append(labels, label)
		if program.Faculty == nil || strings.TrimSpace(*program.Faculty) == "" {
			continue
		}
		faculty := strings.TrimSpace(*program.Faculty)
		owned, _ := faculties.get(faculty)
		faculties.set(faculty, append(owned, label))
	}

	weeklyTotals := make(map[string]float64)
	rows := make([]dto.FlatLoadRow, 0, len(source))
	for _, src := range source {
		flags := make(map[string]bool, len(labels))
		for _, label := range labels {
			flags[label] = false
		}
		if label, ok := labelByID[src.ProgramID]; ok {
			flags[label] = true
		}
		lecture := float64(src.LectureTotal)
		exercise := float64(src.ExerciseTotal)
		weekly := (lecture + exercise) / float64(weeks)
		weeklyTotals[src.ProfessorID] += weekly

		rows = append(rows, dto.FlatLoadRow{
			ProfessorID:   src.ProfessorID,
			ProfessorName: src.ProfessorName,
			Title:         src.ProfessorTitle,
			Engagement:    src.ProfessorEngagement,
			SubjectID:     src.SubjectID,
			SubjectCode:   src.SubjectCode,
			SubjectName:   src.SubjectName,
			Programs:      flags,
			Year:          src.YearNumber,
			Semester:      src.SubjectSemester,
			Lecture:       lecture,
			Exercise:      exercise,
			Combined:      lecture + exercise,
			Weighted:      lecture + 0.5*exercise,
			Weekly:        weekly,
		})
	}

	for i := range rows {
		engagement := rows[i].Engagement
		if engagement == nil || *engagement != models.EngagementEmployed {
			continue
		}
		met := weeklyTotals[rows[i].ProfessorID] >= weeklyNorm
		rows[i].NormMet = &met
	}

	snapshot := TeacherLoadSnapshot{Rows: rows, Programs: labels, Faculties: []FacultyPrograms{}}
	faculties.each(func(name string, owned []string) {
		snapshot.Faculties = append(snapshot.Faculties, FacultyPrograms{Faculty: name, Programs: owned})
	})
	return snapshot
}

// uniqueProgramLabel gives every program its own flag column. Repeated
// labels and labels equal to a fixed report column get a " (n)" suffix.
func uniqueProgramLabel(base string, seen map[string]bool) string {
	candidate := base
	for i := 2; seen[candidate] || loadReportColumns[candidate]; i++ {
		candidate = fmt.Sprintf("%s (%d)", base, i)
	}
	seen[candidate] = true
	return candidate
}

func bucketNames(snapshot TeacherLoadSnapshot) []string {
	names := make([]string, 0, len(snapshot.Faculties)+1)
	names = append(names, dto.SummaryBucket)
	for _, f := range snapshot.Faculties {
		names = append(names, f.Faculty)
	}
	return names
}

func resolveBucket(snapshot TeacherLoadSnapshot, bucket string) (string, error) {
	bucket = strings.TrimSpace(bucket)
	if bucket == "" || strings.EqualFold(bucket, dto.SummaryBucket) {
		return dto.SummaryBucket, nil
	}
	for _, f := range snapshot.Faculties {
		if strings.EqualFold(f.Faculty, bucket) {
			return f.Faculty, nil
		}
	}
	return "", appErrors.FieldError("bucket", "unknown bucket")
}

var (
	loadLeadingHeaders  = []string{"Professor", "Title", "Engagement", "Subject", "Code"}
	loadTrailingHeaders = []string{"Years", "Semesters", "P", "V", "P+V", "P+0.5V", "Weekly", "Norm"}
	loadReportColumns   = func() map[string]bool {
		columns := make(map[string]bool, len(loadLeadingHeaders)+len(loadTrailingHeaders))
		for _, h := range append(append([]string{}, loadLeadingHeaders...), loadTrailingHeaders...) {
			columns[h] = true
		}
		return columns
	}()
)

var loadNumericColumns = map[string]bool{"P": true, "V": true, "P+V": true, "P+0.5V": true, "Weekly": true}

func loadReportDataset(report dto.LoadReport) export.Dataset {
	headers := append([]string{}, loadLeadingHeaders...)
	headers = append(headers, report.Programs...)
	headers = append(headers, loadTrailingHeaders...)

	title := "Teacher load"
	if report.Bucket != dto.SummaryBucket {
		title = fmt.Sprintf("Teacher load: %s", report.Bucket)
	}
	data := export.Dataset{Title: title, Headers: headers, Numeric: loadNumericColumns}

	for _, professor := range report.Professors {
		first := len(data.Rows)
		for _, line := range professor.Lines {
			record := map[string]string{
				"Professor": professor.ProfessorName,
				"Subject":   line.SubjectName,
				"Code":      derefString(line.SubjectCode),
				"Years":     line.Years,
				"Semesters": line.Semesters,
				"P":         formatHours(line.Lecture),
				"V":         formatHours(line.Exercise),
				"P+V":       formatHours(line.Combined),
				"P+0.5V":    formatHours(line.Weighted),
				"Weekly":    formatHours(line.Weekly),
				"Norm":      normLabel(line.NormMet),
			}
			if professor.Title != nil {
				record["Title"] = string(*professor.Title)
			}
			if professor.Engagement != nil {
				record["Engagement"] = string(*professor.Engagement)
			}
			for _, program := range report.Programs {
				if line.Programs[program] {
					record[program] = "X"
				}
			}
			data.Rows = append(data.Rows, record)
		}
		last := len(data.Rows) - 1
		if last > first {
			for _, column := range []string{"Professor", "Title", "Engagement"} {
				data.Spans = append(data.Spans, export.Span{Column: column, FirstRow: first, LastRow: last})
			}
		}
	}
	return data
}

func normLabel(met *bool) string {
	if met == nil {
		return ""
	}
	return strconv.FormatBool(*met)
}
