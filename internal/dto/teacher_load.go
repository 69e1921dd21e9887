package dto

import "github.com/noah-isme/nastava-api/internal/models"

// SummaryBucket is the report bucket that always contains every row.
const SummaryBucket = "SUMMARY"

// FlatLoadRow is one professor/subject/program line of the teacher-load report.
type FlatLoadRow struct {
	ProfessorID   string                 `json:"professorId"`
	ProfessorName string                 `json:"professorName"`
	Title         *models.ProfessorTitle `json:"title,omitempty"`
	Engagement    *models.Engagement     `json:"engagement,omitempty"`
	SubjectID     string                 `json:"subjectId"`
	SubjectCode   *string                `json:"subjectCode,omitempty"`
	SubjectName   string                 `json:"subjectName"`
	Programs      map[string]bool        `json:"programs"`
	Year          int                    `json:"year"`
	Semester      *int                   `json:"semester,omitempty"`
	Lecture       float64                `json:"lecture"`
	Exercise      float64                `json:"exercise"`
	Combined      float64                `json:"combined"`
	Weighted      float64                `json:"weighted"`
	Weekly        float64                `json:"weekly"`
	NormMet       *bool                  `json:"normMet"`
}

// TeacherLoadRows is the payload of GET /teacher-load.
type TeacherLoadRows struct {
	Rows     []FlatLoadRow `json:"rows"`
	Programs []string      `json:"programs"`
}

// LoadLine is a subject line under a professor after aggregation.
type LoadLine struct {
	SubjectID      string          `json:"subjectId,omitempty"`
	SubjectCode    *string         `json:"subjectCode,omitempty"`
	SubjectName    string          `json:"subjectName"`
	Programs       map[string]bool `json:"programs"`
	Years          string          `json:"years"`
	Semesters      string          `json:"semesters"`
	Lecture        float64         `json:"lecture"`
	Exercise       float64         `json:"exercise"`
	Combined       float64         `json:"combined"`
	Weighted       float64         `json:"weighted"`
	Weekly         float64         `json:"weekly"`
	NormMet        *bool           `json:"normMet"`
	MergedRowCount int             `json:"mergedRowCount"`
}

// ProfessorLoad groups the lines of one professor.
type ProfessorLoad struct {
	ProfessorID   string                 `json:"professorId"`
	ProfessorName string                 `json:"professorName"`
	Title         *models.ProfessorTitle `json:"title,omitempty"`
	Engagement    *models.Engagement     `json:"engagement,omitempty"`
	Lines         []LoadLine             `json:"lines"`
}

// LoadReport is one bucket of the teacher-load report.
type LoadReport struct {
	Bucket     string          `json:"bucket"`
	Merged     bool            `json:"merged"`
	Programs   []string        `json:"programs"`
	Professors []ProfessorLoad `json:"professors"`
}
