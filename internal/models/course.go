package models

import "time"

// Course is a subject taught by a professor within a term.
type Course struct {
	ID          string    `db:"id" json:"id"`
	SubjectID   string    `db:"subject_id" json:"subjectId"`
	ProfessorID string    `db:"professor_id" json:"professorId"`
	TermID      string    `db:"term_id" json:"termId"`
	CreatedAt   time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt   time.Time `db:"updated_at" json:"updatedAt"`
}

// CourseDetail adds display names to a course.
type CourseDetail struct {
	Course
	SubjectName   string `db:"subject_name" json:"subjectName"`
	ProfessorName string `db:"professor_name" json:"professorName"`
	TermName      string `db:"term_name" json:"termName"`
}

// CourseFilter describes query params for listing courses.
type CourseFilter struct {
	TermID      string
	ProfessorID string
	SubjectID   string
}
