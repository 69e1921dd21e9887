package models

import "time"

// PRNPlan is the teaching realisation plan of one program year.
// (ProgramID, YearNumber) is unique.
type PRNPlan struct {
	ID         string    `db:"id" json:"id"`
	ProgramID  string    `db:"program_id" json:"programId"`
	YearNumber int       `db:"year_number" json:"yearNumber"`
	CreatedAt  time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt  time.Time `db:"updated_at" json:"updatedAt"`
}

// PRNRow assigns a professor and semester hour totals to a subject of a plan.
// A subject may own several rows when it is shared by several teachers.
type PRNRow struct {
	ID            string    `db:"id" json:"id"`
	PlanID        string    `db:"plan_id" json:"planId"`
	SubjectID     string    `db:"subject_id" json:"subjectId"`
	ProfessorID   *string   `db:"professor_id" json:"professorId"`
	LectureTotal  int       `db:"lecture_total" json:"lectureTotal"`
	ExerciseTotal int       `db:"exercise_total" json:"exerciseTotal"`
	Position      int       `db:"position" json:"position"`
	CreatedAt     time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt     time.Time `db:"updated_at" json:"updatedAt"`
}

// PRNRowDetail is a row joined with its subject and assigned professor.
type PRNRowDetail struct {
	PRNRow
	SubjectName         string          `db:"subject_name"`
	SubjectCode         *string         `db:"subject_code"`
	SubjectSemester     *int            `db:"subject_semester"`
	ProfessorName       *string         `db:"professor_name"`
	ProfessorTitle      *ProfessorTitle `db:"professor_title"`
	ProfessorEngagement *Engagement     `db:"professor_engagement"`
}

// TeachingMode is derived from a row's totals and never stored.
type TeachingMode string

const (
	ModeLecture  TeachingMode = "P"
	ModeExercise TeachingMode = "V"
	ModeBoth     TeachingMode = "PV"
)

// Valid reports whether m is a known mode.
func (m TeachingMode) Valid() bool {
	return m == ModeLecture || m == ModeExercise || m == ModeBoth
}

// LoadSourceRow is one assigned plan row expanded with program, subject and
// professor data; the raw material of the teacher-load report.
type LoadSourceRow struct {
	RowID               string          `db:"row_id"`
	ProfessorID         string          `db:"professor_id"`
	ProfessorName       string          `db:"professor_name"`
	ProfessorTitle      *ProfessorTitle `db:"professor_title"`
	ProfessorEngagement *Engagement     `db:"professor_engagement"`
	SubjectID           string          `db:"subject_id"`
	SubjectCode         *string         `db:"subject_code"`
	SubjectName         string          `db:"subject_name"`
	SubjectSemester     *int            `db:"subject_semester"`
	ProgramID           string          `db:"program_id"`
	YearNumber          int             `db:"year_number"`
	LectureTotal        int             `db:"lecture_total"`
	ExerciseTotal       int             `db:"exercise_total"`
}
