package dto

import "github.com/noah-isme/nastava-api/internal/models"

// PlanResponse is the materialised plan of a program year.
type PlanResponse struct {
	Plan     models.PRNPlan  `json:"plan"`
	Program  PlanProgram     `json:"program"`
	Rows     []PlanRow       `json:"rows"`
	Coverage CoverageSummary `json:"coverage"`
}

// PlanProgram identifies the program a plan belongs to.
type PlanProgram struct {
	ID      string  `json:"id"`
	Name    string  `json:"name"`
	Code    *string `json:"code,omitempty"`
	Faculty *string `json:"faculty,omitempty"`
}

// PlanRow is a plan row with its subject and professor expanded.
type PlanRow struct {
	ID            string              `json:"id"`
	PlanID        string              `json:"planId"`
	SubjectID     string              `json:"subjectId"`
	ProfessorID   *string             `json:"professorId"`
	LectureTotal  int                 `json:"lectureTotal"`
	ExerciseTotal int                 `json:"exerciseTotal"`
	Combined      int                 `json:"combined"`
	Mode          models.TeachingMode `json:"mode"`
	Position      int                 `json:"position"`
	Subject       PlanSubject         `json:"subject"`
	Professor     *PlanProfessor      `json:"professor"`
}

// PlanSubject carries the subject of a row and the programs it is linked to.
type PlanSubject struct {
	ID       string                      `json:"id"`
	Name     string                      `json:"name"`
	Code     *string                     `json:"code,omitempty"`
	Semester *int                        `json:"semester,omitempty"`
	Programs []models.SubjectProgramLink `json:"programs"`
	IsJoint  bool                        `json:"isJoint"`
}

// PlanProfessor is the professor assigned to a row.
type PlanProfessor struct {
	ID         string                 `json:"id"`
	Name       string                 `json:"name"`
	Title      *models.ProfessorTitle `json:"title,omitempty"`
	Engagement *models.Engagement     `json:"engagement,omitempty"`
}

// CoverageBucket holds the hour totals of one engagement bucket.
type CoverageBucket struct {
	Lecture        int     `json:"lecture"`
	Exercise       int     `json:"exercise"`
	Combined       int     `json:"combined"`
	WeeklyLecture  float64 `json:"weeklyLecture"`
	WeeklyExercise float64 `json:"weeklyExercise"`
	WeeklyCombined float64 `json:"weeklyCombined"`
	Share          float64 `json:"share"`
	Rows           int     `json:"rows"`
}

// CoverageSummary splits plan hours into in-house (RO) and external (VS) buckets.
// Unassigned rows only count towards Total.
type CoverageSummary struct {
	RO         CoverageBucket `json:"ro"`
	VS         CoverageBucket `json:"vs"`
	Total      CoverageBucket `json:"total"`
	Unassigned int            `json:"unassigned"`
	Weeks      int            `json:"weeks"`
}
