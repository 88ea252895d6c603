package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ravi-menon/dept-attendance-api/internal/models"
	appErrors "github.com/ravi-menon/dept-attendance-api/pkg/errors"
)

type fakeReportRepo struct {
	records []models.AttendanceWithFaculty
	filters []models.AttendanceFilter
}

func (f *fakeReportRepo) Find(_ context.Context, filter models.AttendanceFilter) ([]models.AttendanceWithFaculty, error) {
	f.filters = append(f.filters, filter)
	return f.records, nil
}

func newReportService(repo *fakeReportRepo) *ReportService {
	svc := NewReportService(repo, nil, nil)
	svc.now = func() time.Time { return time.Date(2026, 3, 4, 12, 0, 0, 0, time.UTC) }
	return svc
}

func TestDepartmentReportRequiresDepartment(t *testing.T) {
	svc := newReportService(&fakeReportRepo{})

	_, err := svc.DepartmentReport(context.Background(), "", DepartmentReportQuery{})
	require.Error(t, err)
	require.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestDepartmentReportNormalizesAllSentinel(t *testing.T) {
	repo := &fakeReportRepo{}
	svc := newReportService(repo)

	_, err := svc.DepartmentReport(context.Background(), "CSE", DepartmentReportQuery{
		Programme: "all", Batch: "all", Section: "B", Subject: "all",
	})
	require.NoError(t, err)
	require.Len(t, repo.filters, 1)
	require.Equal(t, "CSE", repo.filters[0].Department)
	require.Empty(t, repo.filters[0].Programme)
	require.Empty(t, repo.filters[0].Batch)
	require.Equal(t, "B", repo.filters[0].Section)
	require.Empty(t, repo.filters[0].Subject)
}

func TestSummaryScopesByRole(t *testing.T) {
	cases := []struct {
		name   string
		claims models.JWTClaims
		check  func(t *testing.T, filter models.AttendanceFilter)
	}{
		{
			name:   "student scoped to own id",
			claims: models.JWTClaims{UserID: "stu-1", Role: models.RoleStudent},
			check: func(t *testing.T, filter models.AttendanceFilter) {
				require.Equal(t, "stu-1", filter.StudentID)
				require.Empty(t, filter.FacultyID)
				require.Empty(t, filter.Department)
			},
		},
		{
			name:   "faculty scoped to own records",
			claims: models.JWTClaims{UserID: "fac-1", Role: models.RoleFaculty},
			check: func(t *testing.T, filter models.AttendanceFilter) {
				require.Equal(t, "fac-1", filter.FacultyID)
				require.Empty(t, filter.StudentID)
			},
		},
		{
			name:   "hod scoped to department",
			claims: models.JWTClaims{UserID: "hod-1", Role: models.RoleHOD, Department: "CSE"},
			check: func(t *testing.T, filter models.AttendanceFilter) {
				require.Equal(t, "CSE", filter.Department)
				require.Empty(t, filter.StudentID)
				require.Empty(t, filter.FacultyID)
			},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			repo := &fakeReportRepo{}
			svc := newReportService(repo)

			_, err := svc.Summary(context.Background(), &tc.claims)
			require.NoError(t, err)
			// One query per window: today, week, month.
			require.Len(t, repo.filters, 3)
			for _, filter := range repo.filters {
				tc.check(t, filter)
				require.NotNil(t, filter.DateFrom)
				require.NotNil(t, filter.DateTo)
			}
		})
	}
}

func TestSummaryRejectsUnknownRole(t *testing.T) {
	svc := newReportService(&fakeReportRepo{})

	_, err := svc.Summary(context.Background(), &models.JWTClaims{UserID: "x-1", Role: "registrar"})
	require.Error(t, err)
	require.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}

func TestSummaryWindowBoundsAnchorOnToday(t *testing.T) {
	repo := &fakeReportRepo{}
	svc := newReportService(repo)

	_, err := svc.Summary(context.Background(), &models.JWTClaims{UserID: "fac-1", Role: models.RoleFaculty})
	require.NoError(t, err)

	today := time.Date(2026, 3, 4, 0, 0, 0, 0, time.UTC)
	require.Equal(t, today, *repo.filters[0].DateFrom)
	require.Equal(t, today, *repo.filters[0].DateTo)
	// Week starts on Sunday.
	require.Equal(t, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), *repo.filters[1].DateFrom)
	require.Equal(t, time.Date(2026, 3, 7, 0, 0, 0, 0, time.UTC), *repo.filters[1].DateTo)
	require.Equal(t, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), *repo.filters[2].DateFrom)
	require.Equal(t, time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC), *repo.filters[2].DateTo)
}

func TestSummarizeWindowStudent(t *testing.T) {
	records := []models.AttendanceWithFaculty{
		reportRecord("Algorithms", "fac-1", "Dr. Rao", "A", models.StudentStatusList{
			{StudentID: "stu-1", Status: models.StatusPresent},
			{StudentID: "stu-2", Status: models.StatusAbsent},
		}),
		reportRecord("Networks", "fac-2", "Dr. Iyer", "A", models.StudentStatusList{
			{StudentID: "stu-1", Status: models.StatusAbsent},
		}),
	}

	summary := summarizeWindow(records, models.RoleStudent, "stu-1")
	require.Equal(t, 2, summary.TotalClasses)
	require.Equal(t, 1, summary.Present)
	require.Equal(t, 1, summary.Absent)
	require.Equal(t, 0, summary.TotalStudents)
	require.Equal(t, 50, summary.Percentage)
}

func TestSummarizeWindowHODCountsEveryEntry(t *testing.T) {
	records := []models.AttendanceWithFaculty{
		reportRecord("Algorithms", "fac-1", "Dr. Rao", "A", models.StudentStatusList{
			{StudentID: "stu-1", Status: models.StatusPresent},
			{StudentID: "stu-2", Status: models.StatusLate},
			{StudentID: "stu-3", Status: models.StatusAbsent},
		}),
	}

	summary := summarizeWindow(records, models.RoleHOD, "hod-1")
	require.Equal(t, 1, summary.TotalClasses)
	require.Equal(t, 3, summary.TotalStudents)
	require.Equal(t, 67, summary.Percentage)
}

func TestExportDatasetFlattensBreakdowns(t *testing.T) {
	svc := newReportService(&fakeReportRepo{})

	report := buildDepartmentReport([]models.AttendanceWithFaculty{
		reportRecord("Algorithms", "fac-1", "Dr. Rao", "A", models.StudentStatusList{
			{StudentID: "stu-1", Status: models.StatusPresent},
		}),
		reportRecord("Networks", "fac-2", "Dr. Iyer", "B", models.StudentStatusList{
			{StudentID: "stu-2", Status: models.StatusAbsent},
		}),
	})

	dataset := svc.ExportDataset(report)
	require.Equal(t, []string{"Group", "Key", "Classes", "Students", "Present", "Absent", "Late", "Percentage"}, dataset.Headers)
	// 1 overall + 2 subjects + 2 faculty + 2 sections.
	require.Len(t, dataset.Rows, 7)
	require.Equal(t, "Overall", dataset.Rows[0]["Group"])
	require.Equal(t, "Algorithms", dataset.Rows[1]["Key"])
	require.Equal(t, "Dr. Rao", dataset.Rows[3]["Key"])
}
