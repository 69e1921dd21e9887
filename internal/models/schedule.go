package models

import "time"

// WeekType is the weekly recurrence of a schedule slot in an alternating-week timetable.
type WeekType string

const (
	WeekAll WeekType = "ALL"
	WeekA   WeekType = "A"
	WeekB   WeekType = "B"
)

// Valid reports whether w is a known week type.
func (w WeekType) Valid() bool {
	return w == WeekAll || w == WeekA || w == WeekB
}

// ScheduleEntry is one weekly timetable slot. Times are minutes since midnight,
// half-open [StartMin, EndMin).
type ScheduleEntry struct {
	ID          string    `db:"id" json:"id"`
	TermID      string    `db:"term_id" json:"termId"`
	CourseID    string    `db:"course_id" json:"courseId"`
	ProfessorID string    `db:"professor_id" json:"professorId"`
	RoomID      *string   `db:"room_id" json:"roomId,omitempty"`
	GroupName   *string   `db:"group_name" json:"groupName,omitempty"`
	DayOfWeek   int       `db:"day_of_week" json:"dayOfWeek"`
	StartMin    int       `db:"start_min" json:"startMin"`
	EndMin      int       `db:"end_min" json:"endMin"`
	WeekType    WeekType  `db:"week_type" json:"weekType"`
	IsOnline    bool      `db:"is_online" json:"isOnline"`
	Note        *string   `db:"note" json:"note,omitempty"`
	CreatedAt   time.Time `db:"created_at" json:"createdAt"`
}

// ScheduleEntryDetail enriches an entry with subject, professor and room names.
type ScheduleEntryDetail struct {
	ScheduleEntry
	SubjectID     string  `db:"subject_id" json:"subjectId"`
	SubjectName   string  `db:"subject_name" json:"subjectName"`
	ProfessorName string  `db:"professor_name" json:"professorName"`
	RoomName      *string `db:"room_name" json:"roomName,omitempty"`
}

// ScheduleEntryFilter describes query params for listing entries.
type ScheduleEntryFilter struct {
	TermID      string
	DayOfWeek   int
	ProfessorID string
	RoomID      string
	GroupName   string
}

// ConflictProbe selects existing entries that could collide with a candidate:
// same term and day, overlapping time, compatible week type, and sharing the
// room, the professor or the group.
type ConflictProbe struct {
	TermID      string
	DayOfWeek   int
	StartMin    int
	EndMin      int
	WeekTypes   []WeekType
	RoomID      string
	ProfessorID string
	GroupName   string
}

// ScheduleConflictSet groups colliding entries by dimension.
type ScheduleConflictSet struct {
	Room      []ScheduleEntryDetail `json:"room"`
	Professor []ScheduleEntryDetail `json:"professor"`
	Group     []ScheduleEntryDetail `json:"group"`
}

// Empty reports whether no dimension has a conflict.
func (s ScheduleConflictSet) Empty() bool {
	return len(s.Room) == 0 && len(s.Professor) == 0 && len(s.Group) == 0
}

// ScheduleConflictError is returned when a candidate entry collides with existing ones.
type ScheduleConflictError struct {
	Message   string              `json:"message"`
	Conflicts ScheduleConflictSet `json:"conflicts"`
}

// Error implements the error interface for conflict errors.
func (e *ScheduleConflictError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return e.Message
}
