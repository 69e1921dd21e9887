package models

import "time"

// ProfessorTitle is the academic rank of a professor.
type ProfessorTitle string

const (
	TitleFullProfessor      ProfessorTitle = "REDOVNI_PROFESOR"
	TitleAssociateProfessor ProfessorTitle = "VANREDNI_PROFESOR"
	TitleDocent             ProfessorTitle = "DOCENT"
	TitleLecturer           ProfessorTitle = "PREDAVAC"
	TitleSeniorAssistant    ProfessorTitle = "VISI_ASISTENT"
	TitleAssistant          ProfessorTitle = "ASISTENT"
)

// Engagement distinguishes in-house staff from external associates.
type Engagement string

const (
	EngagementEmployed Engagement = "EMPLOYED"
	EngagementExternal Engagement = "EXTERNAL"
)

// Professor is a teacher that can be assigned to courses, schedule entries and plan rows.
type Professor struct {
	ID         string          `db:"id" json:"id"`
	Name       string          `db:"name" json:"name"`
	Email      *string         `db:"email" json:"email,omitempty"`
	Phone      *string         `db:"phone" json:"phone,omitempty"`
	Title      *ProfessorTitle `db:"title" json:"title,omitempty"`
	Engagement *Engagement     `db:"engagement" json:"engagement,omitempty"`
	CreatedAt  time.Time       `db:"created_at" json:"createdAt"`
	UpdatedAt  time.Time       `db:"updated_at" json:"updatedAt"`
}

// ProfessorFilter captures filtering options for listing professors.
type ProfessorFilter struct {
	Search     string
	Engagement Engagement
	Page       int
	PageSize   int
	SortBy     string
	SortOrder  string
}
