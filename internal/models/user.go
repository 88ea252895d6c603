package models

import (
	"time"

	"github.com/lib/pq"
)

// UserRole is the closed set of roles understood by the API. Aggregation and
// authorization sites switch over it exhaustively; an unknown role is an
// error, never a silent fall-through.
type UserRole string

const (
	RoleStudent UserRole = "student"
	RoleFaculty UserRole = "faculty"
	RoleHOD     UserRole = "hod"
)

// Valid returns true when the role is a supported value.
func (r UserRole) Valid() bool {
	switch r {
	case RoleStudent, RoleFaculty, RoleHOD:
		return true
	default:
		return false
	}
}

// User represents an identity stored in the users table. Role-specific
// attributes are nullable columns; the service layer enforces which set is
// required for each role.
type User struct {
	ID           string   `db:"id" json:"id"`
	Username     string   `db:"username" json:"username"`
	PasswordHash string   `db:"password_hash" json:"-"`
	Name         string   `db:"name" json:"name"`
	Role         UserRole `db:"role" json:"role"`
	Department   string   `db:"department" json:"department"`
	Email        *string  `db:"email" json:"email,omitempty"`
	Phone        *string  `db:"phone" json:"phone,omitempty"`
	Address      *string  `db:"address" json:"address,omitempty"`
	DateOfBirth  *string  `db:"date_of_birth" json:"dateOfBirth,omitempty"`
	Nationality  *string  `db:"nationality" json:"nationality,omitempty"`

	// Student fields.
	RollNumber    *string `db:"roll_number" json:"rollNumber,omitempty"`
	Programme     *string `db:"programme" json:"programme,omitempty"`
	Batch         *string `db:"batch" json:"batch,omitempty"`
	Section       *string `db:"section" json:"section,omitempty"`
	Semester      *int    `db:"semester" json:"semester,omitempty"`
	GuardianName  *string `db:"guardian_name" json:"guardianName,omitempty"`
	GuardianPhone *string `db:"guardian_phone" json:"guardianPhone,omitempty"`

	// Faculty/HOD fields.
	Subjects       pq.StringArray `db:"subjects" json:"subjects,omitempty"`
	Qualification  *string        `db:"qualification" json:"qualification,omitempty"`
	Experience     *string        `db:"experience" json:"experience,omitempty"`
	Specialization *string        `db:"specialization" json:"specialization,omitempty"`
	TenureStart    *time.Time     `db:"tenure_start" json:"tenureStart,omitempty"`

	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// StudentFilter scopes student roster queries. A nil field means no filter;
// callers translate the API's "all" sentinel before building the filter.
type StudentFilter struct {
	Department string
	Programme  string
	Batch      string
	Section    string
}

// DepartmentStats summarises the identity roster for a department.
type DepartmentStats struct {
	TotalStudents  int                  `json:"totalStudents"`
	TotalFaculty   int                  `json:"totalFaculty"`
	TotalPrograms  int                  `json:"totalPrograms"`
	TotalSections  int                  `json:"totalSections"`
	ProgramResults []ProgrammeBreakdown `json:"programBreakdown"`
}

// ProgrammeBreakdown counts students per programme.
type ProgrammeBreakdown struct {
	Programme string         `db:"programme" json:"programme"`
	Count     int            `db:"count" json:"count"`
	Sections  pq.StringArray `db:"sections" json:"sections"`
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"pageSize"`
	TotalCount int `json:"totalCount"`
}
