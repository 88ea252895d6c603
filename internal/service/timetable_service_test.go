package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ravi-menon/dept-attendance-api/internal/models"
	appErrors "github.com/ravi-menon/dept-attendance-api/pkg/errors"
)

type fakeTimetableRepo struct {
	entries       []models.TimeTable
	replaced      []models.TimeTable
	replaceCalls  int
	upsertCalls   int
	deleteMatched int64
}

func (f *fakeTimetableRepo) Query(_ context.Context, _ models.TimeTableFilter) ([]models.TimeTable, error) {
	return f.entries, nil
}

func (f *fakeTimetableRepo) Upsert(_ context.Context, entry *models.TimeTable) (*models.TimeTable, error) {
	f.upsertCalls++
	stored := *entry
	stored.ID = "tt-1"
	return &stored, nil
}

func (f *fakeTimetableRepo) Delete(_ context.Context, _ string) (int64, error) {
	return f.deleteMatched, nil
}

func (f *fakeTimetableRepo) ReplaceSections(_ context.Context, entries []models.TimeTable) error {
	f.replaceCalls++
	f.replaced = entries
	return nil
}

func validTimetableRequest(section string, day models.Weekday) TimeTableRequest {
	return TimeTableRequest{
		Department: "CSE",
		Programme:  "B.Tech",
		Batch:      "2024",
		Section:    section,
		Semester:   4,
		Day:        day,
		Periods: []models.Period{
			{PeriodNumber: 1, StartTime: "09:00", EndTime: "09:50", Subject: "Algorithms", FacultyID: "fac-1", Room: "301"},
			{PeriodNumber: 2, StartTime: "10:00", EndTime: "10:50", Subject: "Networks", FacultyID: "fac-2", Room: "204"},
		},
	}
}

func TestTimetableUpsert(t *testing.T) {
	repo := &fakeTimetableRepo{}
	svc := NewTimetableService(repo, nil, nil, nil)

	stored, err := svc.Upsert(context.Background(), validTimetableRequest("A", models.Monday))
	require.NoError(t, err)
	require.Equal(t, "tt-1", stored.ID)
	require.Equal(t, 1, repo.upsertCalls)
}

func TestTimetableUpsertRejectsUnknownDay(t *testing.T) {
	repo := &fakeTimetableRepo{}
	svc := NewTimetableService(repo, nil, nil, nil)

	req := validTimetableRequest("A", "Sunday")
	_, err := svc.Upsert(context.Background(), req)
	require.Error(t, err)
	require.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
	require.Zero(t, repo.upsertCalls)
}

func TestTimetableUpsertRejectsDuplicatePeriodNumbers(t *testing.T) {
	repo := &fakeTimetableRepo{}
	svc := NewTimetableService(repo, nil, nil, nil)

	req := validTimetableRequest("A", models.Monday)
	req.Periods[1].PeriodNumber = 1
	_, err := svc.Upsert(context.Background(), req)
	require.Error(t, err)
	require.Contains(t, appErrors.FromError(err).Message, "duplicate period number")
}

func TestTimetableUpsertRejectsOverlap(t *testing.T) {
	repo := &fakeTimetableRepo{}
	svc := NewTimetableService(repo, nil, nil, nil)

	req := validTimetableRequest("A", models.Monday)
	req.Periods[1].StartTime = "09:30"
	_, err := svc.Upsert(context.Background(), req)
	require.Error(t, err)
	require.Contains(t, appErrors.FromError(err).Message, "overlap")
}

func TestTimetableUpsertRejectsInvertedTimes(t *testing.T) {
	repo := &fakeTimetableRepo{}
	svc := NewTimetableService(repo, nil, nil, nil)

	req := validTimetableRequest("A", models.Monday)
	req.Periods[0].EndTime = "08:00"
	_, err := svc.Upsert(context.Background(), req)
	require.Error(t, err)
	require.Contains(t, appErrors.FromError(err).Message, "end time must be after start time")
}

func TestTimetableDeleteNotFound(t *testing.T) {
	svc := NewTimetableService(&fakeTimetableRepo{deleteMatched: 0}, nil, nil, nil)

	err := svc.Delete(context.Background(), "missing")
	require.Error(t, err)
	require.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestBulkImportReplacesSections(t *testing.T) {
	repo := &fakeTimetableRepo{}
	svc := NewTimetableService(repo, nil, nil, nil)

	entries, err := svc.BulkImport(context.Background(), []TimeTableRequest{
		validTimetableRequest("A", models.Monday),
		validTimetableRequest("A", models.Tuesday),
		validTimetableRequest("B", models.Monday),
	})
	require.NoError(t, err)
	require.Len(t, entries, 3)
	require.Equal(t, 1, repo.replaceCalls)
	require.Len(t, repo.replaced, 3)
}

func TestBulkImportRejectsWholeBatch(t *testing.T) {
	repo := &fakeTimetableRepo{}
	svc := NewTimetableService(repo, nil, nil, nil)

	bad := validTimetableRequest("B", models.Monday)
	bad.Batch = ""

	_, err := svc.BulkImport(context.Background(), []TimeTableRequest{
		validTimetableRequest("A", models.Monday),
		bad,
	})
	require.Error(t, err)
	require.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
	require.Contains(t, appErrors.FromError(err).Message, "entry 1")
	// Nothing written when any entry fails validation.
	require.Zero(t, repo.replaceCalls)
}

func TestBulkImportRejectsEmptyBatch(t *testing.T) {
	svc := NewTimetableService(&fakeTimetableRepo{}, nil, nil, nil)

	_, err := svc.BulkImport(context.Background(), nil)
	require.Error(t, err)
	require.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}
