package service

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/ravi-menon/dept-attendance-api/internal/models"
	appErrors "github.com/ravi-menon/dept-attendance-api/pkg/errors"
	"github.com/ravi-menon/dept-attendance-api/pkg/export"
)

type reportAttendanceRepository interface {
	Find(ctx context.Context, filter models.AttendanceFilter) ([]models.AttendanceWithFaculty, error)
}

// DepartmentReportQuery scopes the HOD report. The string fields accept the
// API's "all" sentinel, which is treated the same as empty.
type DepartmentReportQuery struct {
	Programme string
	Batch     string
	Section   string
	Subject   string
	FacultyID string
	StartDate *time.Time
	EndDate   *time.Time
}

// ReportService is the aggregation engine: it fetches attendance record sets
// and reduces them to per-record stats, grouped breakdowns, and role-scoped
// dashboard summaries. Read-only; output depends only on the record set and
// the wall-clock date used for window bounds.
type ReportService struct {
	repo   reportAttendanceRepository
	cache  *ReportCache
	logger *zap.Logger
	now    func() time.Time
}

// NewReportService constructs the report service. cache may be nil.
func NewReportService(repo reportAttendanceRepository, cache *ReportCache, logger *zap.Logger) *ReportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportService{repo: repo, cache: cache, logger: logger, now: time.Now}
}

// DepartmentReport computes the HOD-facing attendance report for one
// department with subject, faculty, and section breakdowns.
func (s *ReportService) DepartmentReport(ctx context.Context, department string, q DepartmentReportQuery) (*models.DepartmentReport, error) {
	if department == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "department required")
	}

	key := departmentReportKey(department, q)
	if s.cache != nil {
		var cached models.DepartmentReport
		if s.cache.Get(ctx, key, &cached) {
			return &cached, nil
		}
	}

	filter := models.AttendanceFilter{
		Department: department,
		Programme:  normalizeAll(q.Programme),
		Batch:      normalizeAll(q.Batch),
		Section:    normalizeAll(q.Section),
		Subject:    normalizeAll(q.Subject),
		FacultyID:  normalizeAll(q.FacultyID),
		DateFrom:   q.StartDate,
		DateTo:     q.EndDate,
	}

	records, err := s.repo.Find(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load attendance records")
	}

	report := buildDepartmentReport(records)
	if s.cache != nil {
		s.cache.Set(ctx, key, report)
	}
	return report, nil
}

// Summary computes the today/week/month tallies for the caller's role. The
// role switch is exhaustive: an unknown role is rejected rather than being
// scoped to nothing.
func (s *ReportService) Summary(ctx context.Context, claims *models.JWTClaims) (*models.AttendanceSummary, error) {
	var base models.AttendanceFilter
	switch claims.Role {
	case models.RoleStudent:
		base = models.AttendanceFilter{StudentID: claims.UserID}
	case models.RoleFaculty:
		base = models.AttendanceFilter{FacultyID: claims.UserID}
	case models.RoleHOD:
		base = models.AttendanceFilter{Department: claims.Department}
	default:
		return nil, appErrors.Clone(appErrors.ErrForbidden, "unknown role")
	}

	key := fmt.Sprintf("summary:%s:%s:%s", claims.Role, claims.UserID, dateOnly(s.now()).Format("2006-01-02"))
	if s.cache != nil {
		var cached models.AttendanceSummary
		if s.cache.Get(ctx, key, &cached) {
			return &cached, nil
		}
	}

	now := s.now()
	summary := &models.AttendanceSummary{}
	windows := []struct {
		dest   *models.WindowSummary
		bounds func(time.Time) (time.Time, time.Time)
	}{
		{&summary.Today, dayBounds},
		{&summary.Week, weekBounds},
		{&summary.Month, monthBounds},
	}

	for _, window := range windows {
		from, to := window.bounds(now)
		filter := base
		filter.DateFrom = &from
		filter.DateTo = &to

		records, err := s.repo.Find(ctx, filter)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load attendance records")
		}
		*window.dest = summarizeWindow(records, claims.Role, claims.UserID)
	}

	if s.cache != nil {
		s.cache.Set(ctx, key, summary)
	}
	return summary, nil
}

// ExportDataset flattens a department report's breakdowns into one table for
// CSV/PDF rendering.
func (s *ReportService) ExportDataset(report *models.DepartmentReport) export.Dataset {
	data := export.Dataset{
		Headers: []string{"Group", "Key", "Classes", "Students", "Present", "Absent", "Late", "Percentage"},
	}

	appendRow := func(group, key string, stats models.GroupStats) {
		data.Rows = append(data.Rows, map[string]string{
			"Group":      group,
			"Key":        key,
			"Classes":    strconv.Itoa(stats.TotalClasses),
			"Students":   strconv.Itoa(stats.TotalStudents),
			"Present":    strconv.Itoa(stats.Present),
			"Absent":     strconv.Itoa(stats.Absent),
			"Late":       strconv.Itoa(stats.Late),
			"Percentage": strconv.Itoa(stats.Percentage),
		})
	}

	appendRow("Overall", "department", models.GroupStats{
		TotalClasses:  report.Stats.TotalClasses,
		TotalStudents: report.Stats.TotalStudentRecords,
		Present:       report.Stats.TotalPresent,
		Absent:        report.Stats.TotalAbsent,
		Late:          report.Stats.TotalLate,
		Percentage:    report.Stats.OverallPercentage,
	})

	for _, subject := range sortedKeys(report.Breakdown.BySubject) {
		appendRow("Subject", subject, *report.Breakdown.BySubject[subject])
	}
	for _, facultyID := range sortedFacultyKeys(report.Breakdown.ByFaculty) {
		group := report.Breakdown.ByFaculty[facultyID]
		appendRow("Faculty", group.FacultyName, group.GroupStats)
	}
	for _, section := range sortedKeys(report.Breakdown.BySection) {
		appendRow("Section", section, *report.Breakdown.BySection[section])
	}

	return data
}

// summarizeWindow tallies one window's record set. Students count only their
// own status per record (denominator is the class count); faculty and HOD
// tally every student entry across visible records.
func summarizeWindow(records []models.AttendanceWithFaculty, role models.UserRole, userID string) models.WindowSummary {
	summary := models.WindowSummary{TotalClasses: len(records)}

	if role == models.RoleStudent {
		for _, record := range records {
			for _, entry := range record.Students {
				if entry.StudentID != userID {
					continue
				}
				switch entry.Status {
				case models.StatusPresent:
					summary.Present++
				case models.StatusAbsent:
					summary.Absent++
				case models.StatusLate:
					summary.Late++
				}
				break
			}
		}
		summary.Percentage = attendancePercentage(summary.Present, summary.Late, summary.TotalClasses)
		return summary
	}

	for _, record := range records {
		stats := computeRecordStats(record.Students)
		summary.TotalStudents += stats.TotalStudents
		summary.Present += stats.Present
		summary.Absent += stats.Absent
		summary.Late += stats.Late
	}
	summary.Percentage = attendancePercentage(summary.Present, summary.Late, summary.TotalStudents)
	return summary
}

func normalizeAll(value string) string {
	if value == "all" {
		return ""
	}
	return value
}

func departmentReportKey(department string, q DepartmentReportQuery) string {
	from, to := "", ""
	if q.StartDate != nil {
		from = q.StartDate.Format("2006-01-02")
	}
	if q.EndDate != nil {
		to = q.EndDate.Format("2006-01-02")
	}
	return fmt.Sprintf("report:dept:%s:%s|%s|%s|%s|%s|%s|%s",
		department, normalizeAll(q.Programme), normalizeAll(q.Batch), normalizeAll(q.Section),
		normalizeAll(q.Subject), normalizeAll(q.FacultyID), from, to)
}

func sortedKeys(groups map[string]*models.GroupStats) []string {
	keys := make([]string, 0, len(groups))
	for key := range groups {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

func sortedFacultyKeys(groups map[string]*models.FacultyGroupStats) []string {
	keys := make([]string, 0, len(groups))
	for key := range groups {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
