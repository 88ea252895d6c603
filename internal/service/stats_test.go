package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ravi-menon/dept-attendance-api/internal/models"
)

func TestAttendancePercentage(t *testing.T) {
	cases := []struct {
		name                  string
		present, late, total  int
		want                  int
	}{
		{"empty denominator", 0, 0, 0, 0},
		{"all present", 10, 0, 10, 100},
		{"late counts as attended", 5, 5, 10, 100},
		{"half", 5, 0, 10, 50},
		{"rounds up", 2, 0, 3, 67},
		{"rounds down", 1, 0, 3, 33},
		{"rounds half up", 1, 0, 8, 13},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, attendancePercentage(tc.present, tc.late, tc.total))
		})
	}
}

func TestComputeRecordStats(t *testing.T) {
	stats := computeRecordStats(models.StudentStatusList{
		{StudentID: "s1", Status: models.StatusPresent},
		{StudentID: "s2", Status: models.StatusAbsent},
		{StudentID: "s3", Status: models.StatusLate},
		{StudentID: "s4", Status: models.StatusPresent},
	})
	require.Equal(t, 4, stats.TotalStudents)
	require.Equal(t, 2, stats.Present)
	require.Equal(t, 1, stats.Absent)
	require.Equal(t, 1, stats.Late)
	require.Equal(t, 75, stats.Percentage)
}

func TestComputeRecordStatsEmptyList(t *testing.T) {
	stats := computeRecordStats(nil)
	require.Equal(t, 0, stats.TotalStudents)
	require.Equal(t, 0, stats.Percentage)
}

func reportRecord(subject, facultyID, facultyName, section string, students models.StudentStatusList) models.AttendanceWithFaculty {
	return models.AttendanceWithFaculty{
		AttendanceRecord: models.AttendanceRecord{
			Date:      time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC),
			Subject:   subject,
			FacultyID: facultyID,
			Section:   section,
			Students:  students,
		},
		FacultyName: facultyName,
	}
}

func TestBuildDepartmentReport(t *testing.T) {
	records := []models.AttendanceWithFaculty{
		reportRecord("Algorithms", "fac-1", "Dr. Rao", "A", models.StudentStatusList{
			{StudentID: "s1", Status: models.StatusPresent},
			{StudentID: "s2", Status: models.StatusAbsent},
		}),
		reportRecord("Algorithms", "fac-1", "Dr. Rao", "B", models.StudentStatusList{
			{StudentID: "s3", Status: models.StatusLate},
		}),
		reportRecord("Networks", "fac-2", "Dr. Iyer", "A", models.StudentStatusList{
			{StudentID: "s1", Status: models.StatusPresent},
		}),
	}

	report := buildDepartmentReport(records)

	require.Equal(t, 3, report.Stats.TotalClasses)
	require.Equal(t, 4, report.Stats.TotalStudentRecords)
	require.Equal(t, 2, report.Stats.TotalPresent)
	require.Equal(t, 1, report.Stats.TotalAbsent)
	require.Equal(t, 1, report.Stats.TotalLate)
	require.Equal(t, 75, report.Stats.OverallPercentage)

	require.Len(t, report.Attendance, 3)

	algo := report.Breakdown.BySubject["Algorithms"]
	require.NotNil(t, algo)
	require.Equal(t, 2, algo.TotalClasses)
	require.Equal(t, 3, algo.TotalStudents)
	require.Equal(t, 67, algo.Percentage)

	sectionA := report.Breakdown.BySection["A"]
	require.NotNil(t, sectionA)
	require.Equal(t, 2, sectionA.TotalClasses)
	require.Equal(t, 3, sectionA.TotalStudents)

	// Breakdown totals partition the overall totals.
	sumPresent := 0
	for _, group := range report.Breakdown.BySubject {
		sumPresent += group.Present
	}
	require.Equal(t, report.Stats.TotalPresent, sumPresent)
}

func TestBuildDepartmentReportFacultyKeyedByID(t *testing.T) {
	// Two faculty sharing a display name stay separate groups.
	records := []models.AttendanceWithFaculty{
		reportRecord("Algorithms", "fac-1", "Dr. Kumar", "A", models.StudentStatusList{
			{StudentID: "s1", Status: models.StatusPresent},
		}),
		reportRecord("Networks", "fac-2", "Dr. Kumar", "A", models.StudentStatusList{
			{StudentID: "s1", Status: models.StatusAbsent},
		}),
	}

	report := buildDepartmentReport(records)

	require.Len(t, report.Breakdown.ByFaculty, 2)
	require.Equal(t, "Dr. Kumar", report.Breakdown.ByFaculty["fac-1"].FacultyName)
	require.Equal(t, 100, report.Breakdown.ByFaculty["fac-1"].Percentage)
	require.Equal(t, 0, report.Breakdown.ByFaculty["fac-2"].Percentage)
}

func TestBuildDepartmentReportEmpty(t *testing.T) {
	report := buildDepartmentReport(nil)
	require.Equal(t, 0, report.Stats.TotalClasses)
	require.Equal(t, 0, report.Stats.OverallPercentage)
	require.Empty(t, report.Attendance)
	require.Empty(t, report.Breakdown.BySubject)
}
