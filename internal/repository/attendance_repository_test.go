package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/ravi-menon/dept-attendance-api/internal/models"
)

func newRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func attendanceRows(revision int) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows([]string{"id", "date", "department", "programme", "batch", "section", "subject", "faculty_id", "period", "room", "students", "revision", "created_at", "updated_at"}).
		AddRow("att-1", now, "CSE", "B.Tech", "2024", "A", "Algorithms", "fac-1", 3, "301",
			`[{"studentId":"stu-1","status":"present"}]`, revision, now, now)
}

func joinedRows() *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows([]string{"id", "date", "department", "programme", "batch", "section", "subject", "faculty_id", "period", "room", "students", "revision", "created_at", "updated_at", "faculty_name"}).
		AddRow("att-1", now, "CSE", "B.Tech", "2024", "A", "Algorithms", "fac-1", 3, "301",
			`[{"studentId":"stu-1","status":"present"}]`, 1, now, now, "Dr. Rao")
}

func TestAttendanceRepositoryUpsert(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewAttendanceRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO attendance_records")).
		WillReturnRows(attendanceRows(1))

	stored, err := repo.Upsert(context.Background(), &models.AttendanceRecord{
		Date:       time.Now(),
		Department: "CSE",
		Programme:  "B.Tech",
		Batch:      "2024",
		Section:    "A",
		Subject:    "Algorithms",
		FacultyID:  "fac-1",
		Period:     3,
		Students:   models.StudentStatusList{{StudentID: "stu-1", Status: models.StatusPresent}},
	})
	require.NoError(t, err)
	require.Equal(t, 1, stored.Revision)
	require.Len(t, stored.Students, 1)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAttendanceRepositoryUpsertBumpsRevision(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewAttendanceRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO attendance_records")).
		WillReturnRows(attendanceRows(2))

	stored, err := repo.Upsert(context.Background(), &models.AttendanceRecord{
		Date: time.Now(), Subject: "Algorithms", FacultyID: "fac-1", Period: 3,
	})
	require.NoError(t, err)
	require.Equal(t, 2, stored.Revision)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAttendanceRepositoryFindStudentProbe(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewAttendanceRepository(db)

	rows := joinedRows().AddRow("att-2", time.Now(), "CSE", "B.Tech", "2024", "A", "Networks", "fac-2", 1, "204",
		`[{"studentId":"stu-1","status":"late"}]`, 1, time.Now(), time.Now(), "Dr. Iyer")

	mock.ExpectQuery("SELECT .* FROM attendance_records a JOIN users u ON u.id = a.faculty_id").
		WithArgs([]byte(`[{"studentId":"stu-1"}]`)).
		WillReturnRows(rows)

	records, err := repo.Find(context.Background(), models.AttendanceFilter{StudentID: "stu-1"})
	require.NoError(t, err)
	require.Len(t, records, 2)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAttendanceRepositoryFindPage(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewAttendanceRepository(db)

	mock.ExpectQuery("SELECT .* FROM attendance_records a JOIN users u").
		WithArgs("fac-1").
		WillReturnRows(joinedRows())
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*)")).
		WithArgs("fac-1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(14))

	records, total, err := repo.FindPage(context.Background(), models.AttendanceFilter{FacultyID: "fac-1"}, 1, 10)
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.Equal(t, 14, total)
	require.NoError(t, mock.ExpectationsWereMet())
}
