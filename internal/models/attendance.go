package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// AttendanceStatus is one student's outcome for one record.
type AttendanceStatus string

const (
	StatusPresent AttendanceStatus = "present"
	StatusAbsent  AttendanceStatus = "absent"
	StatusLate    AttendanceStatus = "late"
)

// Valid returns true when the status is a supported value.
func (s AttendanceStatus) Valid() bool {
	switch s {
	case StatusPresent, StatusAbsent, StatusLate:
		return true
	default:
		return false
	}
}

// StudentStatus pairs a student with their outcome for one period.
type StudentStatus struct {
	StudentID string           `json:"studentId" validate:"required"`
	Status    AttendanceStatus `json:"status" validate:"required"`
}

// StudentStatusList is stored as a JSONB column.
type StudentStatusList []StudentStatus

// Value implements driver.Valuer.
func (l StudentStatusList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	raw, err := json.Marshal(l)
	if err != nil {
		return nil, fmt.Errorf("marshal student statuses: %w", err)
	}
	return raw, nil
}

// Scan implements sql.Scanner.
func (l *StudentStatusList) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*l = nil
		return nil
	case []byte:
		return json.Unmarshal(v, l)
	case string:
		return json.Unmarshal([]byte(v), l)
	default:
		return fmt.Errorf("unsupported student statuses source type %T", src)
	}
}

// AttendanceRecord is one row per (date, subject, period, faculty).
// Resubmission for the same key replaces the student list wholesale; the
// revision column counts how many times the record has been written.
type AttendanceRecord struct {
	ID         string            `db:"id" json:"id"`
	Date       time.Time         `db:"date" json:"date"`
	Department string            `db:"department" json:"department"`
	Programme  string            `db:"programme" json:"programme"`
	Batch      string            `db:"batch" json:"batch"`
	Section    string            `db:"section" json:"section"`
	Subject    string            `db:"subject" json:"subject"`
	FacultyID  string            `db:"faculty_id" json:"facultyId"`
	Period     int               `db:"period" json:"period"`
	Room       string            `db:"room" json:"room"`
	Students   StudentStatusList `db:"students" json:"students"`
	Revision   int               `db:"revision" json:"revision"`
	CreatedAt  time.Time         `db:"created_at" json:"createdAt"`
	UpdatedAt  time.Time         `db:"updated_at" json:"updatedAt"`
}

// AttendanceWithFaculty joins the record with the faculty display name so
// reports can expose the name while grouping by the stable identifier.
type AttendanceWithFaculty struct {
	AttendanceRecord
	FacultyName string `db:"faculty_name" json:"facultyName"`
}

// AttendanceFilter scopes aggregation queries. Empty string fields are
// ignored; nil times mean an open-ended range.
type AttendanceFilter struct {
	Department string
	Programme  string
	Batch      string
	Section    string
	Subject    string
	FacultyID  string
	StudentID  string
	DateFrom   *time.Time
	DateTo     *time.Time
}
