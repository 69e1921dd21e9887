package models

import "time"

// StudyProgram is a degree program owned by a faculty.
type StudyProgram struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Code      *string   `db:"code" json:"code,omitempty"`
	Faculty   *string   `db:"faculty" json:"faculty,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// Label is the key used for the program in reports: its code, else its name.
func (p StudyProgram) Label() string {
	if p.Code != nil && *p.Code != "" {
		return *p.Code
	}
	return p.Name
}

// ProgramYear is one year of study within a program.
type ProgramYear struct {
	ProgramID  string `db:"program_id" json:"programId"`
	YearNumber int    `db:"year_number" json:"yearNumber"`
}

// SubjectProgram links a subject to a program in a given year.
type SubjectProgram struct {
	ProgramID  string `db:"program_id" json:"programId"`
	SubjectID  string `db:"subject_id" json:"subjectId"`
	YearNumber int    `db:"year_number" json:"yearNumber"`
}

// SubjectProgramLink is a SubjectProgram with program display data.
type SubjectProgramLink struct {
	SubjectID   string  `db:"subject_id" json:"-"`
	ProgramID   string  `db:"program_id" json:"programId"`
	ProgramName string  `db:"program_name" json:"programName"`
	ProgramCode *string `db:"program_code" json:"programCode,omitempty"`
	YearNumber  int     `db:"year_number" json:"yearNumber"`
}
