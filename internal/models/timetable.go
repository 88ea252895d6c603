package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// Weekday is the enumerated teaching day. Sunday is not a teaching day.
type Weekday string

const (
	Monday    Weekday = "Monday"
	Tuesday   Weekday = "Tuesday"
	Wednesday Weekday = "Wednesday"
	Thursday  Weekday = "Thursday"
	Friday    Weekday = "Friday"
	Saturday  Weekday = "Saturday"
)

// Valid reports whether the day is one of the six teaching days.
func (d Weekday) Valid() bool {
	switch d {
	case Monday, Tuesday, Wednesday, Thursday, Friday, Saturday:
		return true
	default:
		return false
	}
}

// Period is one scheduled class slot within a day's timetable.
type Period struct {
	PeriodNumber int    `json:"periodNumber" validate:"required,min=1"`
	StartTime    string `json:"startTime" validate:"required"`
	EndTime      string `json:"endTime" validate:"required"`
	Subject      string `json:"subject" validate:"required"`
	FacultyID    string `json:"facultyId" validate:"required"`
	Room         string `json:"room" validate:"required"`
	IsLab        bool   `json:"isLab"`
}

// PeriodList is stored as a JSONB column.
type PeriodList []Period

// Value implements driver.Valuer.
func (p PeriodList) Value() (driver.Value, error) {
	if p == nil {
		return "[]", nil
	}
	raw, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("marshal periods: %w", err)
	}
	return raw, nil
}

// Scan implements sql.Scanner.
func (p *PeriodList) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*p = nil
		return nil
	case []byte:
		return json.Unmarshal(v, p)
	case string:
		return json.Unmarshal([]byte(v), p)
	default:
		return fmt.Errorf("unsupported periods source type %T", src)
	}
}

// TimeTable is one per-day, per-section schedule of periods. Entries are
// upserted on (department, programme, batch, section, day).
type TimeTable struct {
	ID         string     `db:"id" json:"id"`
	Department string     `db:"department" json:"department"`
	Programme  string     `db:"programme" json:"programme"`
	Batch      string     `db:"batch" json:"batch"`
	Section    string     `db:"section" json:"section"`
	Semester   int        `db:"semester" json:"semester"`
	Day        Weekday    `db:"day" json:"day"`
	Periods    PeriodList `db:"periods" json:"periods"`
	CreatedAt  time.Time  `db:"created_at" json:"createdAt"`
	UpdatedAt  time.Time  `db:"updated_at" json:"updatedAt"`
}

// TimeTableFilter scopes timetable queries; empty fields are ignored.
type TimeTableFilter struct {
	Department string
	Programme  string
	Batch      string
	Section    string
	Day        Weekday
}

// SectionKey identifies the coarse replacement unit used by bulk import:
// deleting by this key removes every day's entry for the section.
type SectionKey struct {
	Department string
	Programme  string
	Batch      string
	Section    string
}
