package service

import (
	"math"

	"github.com/ravi-menon/dept-attendance-api/internal/models"
)

// attendancePercentage implements the house percentage rule: late counts
// toward the attended numerator, and an empty denominator yields 0 rather
// than a division error.
func attendancePercentage(present, late, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(present+late) / float64(total) * 100))
}

// computeRecordStats tallies one record's student list.
func computeRecordStats(students models.StudentStatusList) models.RecordStats {
	stats := models.RecordStats{TotalStudents: len(students)}
	for _, entry := range students {
		switch entry.Status {
		case models.StatusPresent:
			stats.Present++
		case models.StatusAbsent:
			stats.Absent++
		case models.StatusLate:
			stats.Late++
		}
	}
	stats.Percentage = attendancePercentage(stats.Present, stats.Late, stats.TotalStudents)
	return stats
}

// buildDepartmentReport runs the grouping passes over a queried record set:
// per-record stats, overall totals, and subject/faculty/section breakdowns.
// Faculty groups are keyed by the stable faculty ID with the display name
// carried alongside.
func buildDepartmentReport(records []models.AttendanceWithFaculty) *models.DepartmentReport {
	report := &models.DepartmentReport{
		Attendance: make([]models.RecordWithStats, 0, len(records)),
		Breakdown: models.ReportBreakdown{
			BySubject: map[string]*models.GroupStats{},
			ByFaculty: map[string]*models.FacultyGroupStats{},
			BySection: map[string]*models.GroupStats{},
		},
	}

	report.Stats.TotalClasses = len(records)
	for _, record := range records {
		stats := computeRecordStats(record.Students)
		report.Attendance = append(report.Attendance, models.RecordWithStats{AttendanceWithFaculty: record, Stats: stats})

		report.Stats.TotalStudentRecords += stats.TotalStudents
		report.Stats.TotalPresent += stats.Present
		report.Stats.TotalAbsent += stats.Absent
		report.Stats.TotalLate += stats.Late

		accumulate := func(group *models.GroupStats) {
			group.TotalClasses++
			group.TotalStudents += stats.TotalStudents
			group.Present += stats.Present
			group.Absent += stats.Absent
			group.Late += stats.Late
		}

		subject := report.Breakdown.BySubject[record.Subject]
		if subject == nil {
			subject = &models.GroupStats{}
			report.Breakdown.BySubject[record.Subject] = subject
		}
		accumulate(subject)

		faculty := report.Breakdown.ByFaculty[record.FacultyID]
		if faculty == nil {
			faculty = &models.FacultyGroupStats{FacultyName: record.FacultyName}
			report.Breakdown.ByFaculty[record.FacultyID] = faculty
		}
		accumulate(&faculty.GroupStats)

		section := report.Breakdown.BySection[record.Section]
		if section == nil {
			section = &models.GroupStats{}
			report.Breakdown.BySection[record.Section] = section
		}
		accumulate(section)
	}

	report.Stats.OverallPercentage = attendancePercentage(report.Stats.TotalPresent, report.Stats.TotalLate, report.Stats.TotalStudentRecords)
	for _, group := range report.Breakdown.BySubject {
		group.Percentage = attendancePercentage(group.Present, group.Late, group.TotalStudents)
	}
	for _, group := range report.Breakdown.ByFaculty {
		group.Percentage = attendancePercentage(group.Present, group.Late, group.TotalStudents)
	}
	for _, group := range report.Breakdown.BySection {
		group.Percentage = attendancePercentage(group.Present, group.Late, group.TotalStudents)
	}

	return report
}
