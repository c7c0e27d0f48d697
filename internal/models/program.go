package models

import "time"

// ProgramType defines whether a program rotates across weeks
type ProgramType string

const (
	ProgramWeekly   ProgramType = "weekly"
	ProgramRotating ProgramType = "rotating"
)

// CycleProgram is a container of items that may rotate over several weeks
type CycleProgram struct {
	ID          string      `json:"id" db:"id"`
	UserID      int64       `json:"user_id" db:"user_id"`
	Name        string      `json:"name" db:"name"`
	Type        ProgramType `json:"type" db:"type"`
	StartDate   *time.Time  `json:"start_date" db:"start_date"`
	LengthWeeks int         `json:"length_weeks" db:"length_weeks"`
	CreatedAt   time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at" db:"updated_at"`
}

// IsRotating returns true if week rotation math applies to this program
func (p *CycleProgram) IsRotating() bool {
	return p != nil && p.Type == ProgramRotating && p.StartDate != nil && p.LengthWeeks > 0
}
