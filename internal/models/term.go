package models

import "time"

// Cycle groups an ordered set of terms, e.g. an academic year.
type Cycle struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// Term scopes courses and schedule entries within a cycle.
type Term struct {
	ID        string     `db:"id" json:"id"`
	CycleID   string     `db:"cycle_id" json:"cycleId"`
	Name      string     `db:"name" json:"name"`
	Ordinal   int        `db:"ordinal" json:"ordinal"`
	DateStart *time.Time `db:"date_start" json:"dateStart,omitempty"`
	DateEnd   *time.Time `db:"date_end" json:"dateEnd,omitempty"`
	CreatedAt time.Time  `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time  `db:"updated_at" json:"updatedAt"`
}
