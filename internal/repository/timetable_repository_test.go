package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"github.com/ravi-menon/dept-attendance-api/internal/models"
)

func timetableRows() *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows([]string{"id", "department", "programme", "batch", "section", "semester", "day", "periods", "created_at", "updated_at"}).
		AddRow("tt-1", "CSE", "B.Tech", "2024", "A", 4, "Monday",
			`[{"periodNumber":3,"startTime":"11:00","endTime":"11:50","subject":"Algorithms","facultyId":"fac-1","room":"301","isLab":false}]`,
			now, now)
}

func TestTimetableRepositoryFindAssignment(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewTimetableRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM timetables WHERE periods @> $1::jsonb")).
		WithArgs([]byte(`[{"facultyId":"fac-1","periodNumber":3,"subject":"Algorithms"}]`)).
		WillReturnRows(timetableRows())

	entry, err := repo.FindAssignment(context.Background(), "fac-1", "Algorithms", 3)
	require.NoError(t, err)
	require.Equal(t, "A", entry.Section)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTimetableRepositoryFindAssignmentMiss(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewTimetableRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM timetables WHERE periods @> $1::jsonb")).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindAssignment(context.Background(), "fac-9", "Algorithms", 3)
	require.ErrorIs(t, err, sql.ErrNoRows)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTimetableRepositoryReplaceSections(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewTimetableRepository(db)

	entries := []models.TimeTable{
		{Department: "CSE", Programme: "B.Tech", Batch: "2024", Section: "A", Semester: 4, Day: models.Monday},
		{Department: "CSE", Programme: "B.Tech", Batch: "2024", Section: "A", Semester: 4, Day: models.Tuesday},
		{Department: "CSE", Programme: "B.Tech", Batch: "2024", Section: "B", Semester: 4, Day: models.Monday},
	}

	mock.ExpectBegin()
	// One delete per distinct section key, not per entry.
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM timetables WHERE department = $1")).
		WithArgs("CSE", "B.Tech", "2024", "A").
		WillReturnResult(sqlmock.NewResult(0, 6))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM timetables WHERE department = $1")).
		WithArgs("CSE", "B.Tech", "2024", "B").
		WillReturnResult(sqlmock.NewResult(0, 6))
	for range entries {
		mock.ExpectExec("INSERT INTO timetables").WillReturnResult(sqlmock.NewResult(1, 1))
	}
	mock.ExpectCommit()

	require.NoError(t, repo.ReplaceSections(context.Background(), entries))
	require.NotEmpty(t, entries[0].ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTimetableRepositoryReplaceSectionsRollsBack(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewTimetableRepository(db)

	entries := []models.TimeTable{
		{Department: "CSE", Programme: "B.Tech", Batch: "2024", Section: "A", Semester: 4, Day: models.Monday},
	}

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM timetables")).
		WillReturnResult(sqlmock.NewResult(0, 6))
	mock.ExpectExec("INSERT INTO timetables").WillReturnError(sql.ErrConnDone)
	mock.ExpectRollback()

	require.Error(t, repo.ReplaceSections(context.Background(), entries))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTimetableRepositoryDelete(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewTimetableRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM timetables WHERE id = $1")).
		WithArgs("tt-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	affected, err := repo.Delete(context.Background(), "tt-1")
	require.NoError(t, err)
	require.EqualValues(t, 1, affected)
	require.NoError(t, mock.ExpectationsWereMet())
}
