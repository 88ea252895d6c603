package models

// RecordStats summarises one attendance record's student list.
type RecordStats struct {
	TotalStudents int `json:"totalStudents"`
	Present       int `json:"present"`
	Absent        int `json:"absent"`
	Late          int `json:"late"`
	Percentage    int `json:"percentage"`
}

// GroupStats accumulates counts across records sharing a group key.
type GroupStats struct {
	TotalClasses  int `json:"totalClasses"`
	TotalStudents int `json:"totalStudents"`
	Present       int `json:"present"`
	Absent        int `json:"absent"`
	Late          int `json:"late"`
	Percentage    int `json:"percentage"`
}

// FacultyGroupStats keys by the stable faculty identifier and carries the
// display name separately, so two faculty with the same name never collapse
// into one group.
type FacultyGroupStats struct {
	FacultyName string `json:"facultyName"`
	GroupStats
}

// OverallStats totals the whole queried record set.
type OverallStats struct {
	TotalClasses        int `json:"totalClasses"`
	TotalStudentRecords int `json:"totalStudentRecords"`
	TotalPresent        int `json:"totalPresent"`
	TotalAbsent         int `json:"totalAbsent"`
	TotalLate           int `json:"totalLate"`
	OverallPercentage   int `json:"overallPercentage"`
}

// ReportBreakdown groups the record set by subject, faculty, and section.
type ReportBreakdown struct {
	BySubject map[string]*GroupStats        `json:"bySubject"`
	ByFaculty map[string]*FacultyGroupStats `json:"byFaculty"`
	BySection map[string]*GroupStats        `json:"bySection"`
}

// DepartmentReport is the HOD-facing aggregation output.
type DepartmentReport struct {
	Attendance []RecordWithStats `json:"attendance"`
	Stats      OverallStats      `json:"stats"`
	Breakdown  ReportBreakdown   `json:"breakdown"`
}

// RecordWithStats decorates a record with its per-record stats.
type RecordWithStats struct {
	AttendanceWithFaculty
	Stats RecordStats `json:"stats"`
}

// WindowSummary is one today/week/month tally. For students only their own
// status in each record counts, so TotalStudents stays zero; for faculty and
// HOD every student entry across visible records is tallied.
type WindowSummary struct {
	TotalClasses  int `json:"totalClasses"`
	TotalStudents int `json:"totalStudents,omitempty"`
	Present       int `json:"present"`
	Absent        int `json:"absent"`
	Late          int `json:"late"`
	Percentage    int `json:"percentage"`
}

// AttendanceSummary holds the three dashboard windows.
type AttendanceSummary struct {
	Today WindowSummary `json:"today"`
	Week  WindowSummary `json:"week"`
	Month WindowSummary `json:"month"`
}

// StudentSummary is the student-facing attendance tally over a window.
type StudentSummary struct {
	TotalClasses int `json:"totalClasses"`
	Present      int `json:"present"`
	Absent       int `json:"absent"`
	Late         int `json:"late"`
	Percentage   int `json:"percentage"`
}

// FacultyClass is one period of a faculty member's day, annotated with
// whether attendance has been taken for it.
type FacultyClass struct {
	ID               string  `json:"id"`
	Department       string  `json:"department"`
	Programme        string  `json:"programme"`
	Batch            string  `json:"batch"`
	Section          string  `json:"section"`
	Period           int     `json:"period"`
	StartTime        string  `json:"startTime"`
	EndTime          string  `json:"endTime"`
	Subject          string  `json:"subject"`
	Room             string  `json:"room"`
	IsLab            bool    `json:"isLab"`
	AttendanceStatus string  `json:"attendanceStatus"`
	AttendanceID     *string `json:"attendanceId,omitempty"`
}
