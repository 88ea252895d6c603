package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/ravi-menon/dept-attendance-api/internal/models"
)

const attendanceColumns = `a.id, a.date, a.department, a.programme, a.batch, a.section, a.subject, a.faculty_id, a.period, a.room, a.students, a.revision, a.created_at, a.updated_at`

// AttendanceRepository provides persistence for attendance records.
type AttendanceRepository struct {
	db *sqlx.DB
}

// NewAttendanceRepository creates a new attendance repository.
func NewAttendanceRepository(db *sqlx.DB) *AttendanceRepository {
	return &AttendanceRepository{db: db}
}

// Upsert writes the record for its (date, subject, period, faculty) key as a
// single statement. The student list is replaced wholesale on conflict and
// the revision counter bumped, so concurrent submissions serialize on the
// store's atomic upsert instead of racing a read-modify-write.
func (r *AttendanceRepository) Upsert(ctx context.Context, record *models.AttendanceRecord) (*models.AttendanceRecord, error) {
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if record.CreatedAt.IsZero() {
		record.CreatedAt = now
	}
	record.UpdatedAt = now

	const query = `INSERT INTO attendance_records (id, date, department, programme, batch, section, subject, faculty_id, period, room, students, revision, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, 1, $12, $13)
		ON CONFLICT (date, subject, period, faculty_id)
		DO UPDATE SET students = EXCLUDED.students, section = EXCLUDED.section, room = EXCLUDED.room, revision = attendance_records.revision + 1, updated_at = EXCLUDED.updated_at
		RETURNING id, date, department, programme, batch, section, subject, faculty_id, period, room, students, revision, created_at, updated_at`

	var stored models.AttendanceRecord
	err := r.db.GetContext(ctx, &stored, query,
		record.ID, record.Date, record.Department, record.Programme, record.Batch,
		record.Section, record.Subject, record.FacultyID, record.Period, record.Room,
		record.Students, record.CreatedAt, record.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("upsert attendance: %w", err)
	}
	return &stored, nil
}

// FindByKey loads the record for one (date, subject, period, faculty) tuple.
func (r *AttendanceRepository) FindByKey(ctx context.Context, date time.Time, subject string, period int, facultyID string) (*models.AttendanceRecord, error) {
	const query = `SELECT id, date, department, programme, batch, section, subject, faculty_id, period, room, students, revision, created_at, updated_at
		FROM attendance_records WHERE date = $1 AND subject = $2 AND period = $3 AND faculty_id = $4`
	var record models.AttendanceRecord
	if err := r.db.GetContext(ctx, &record, query, date, subject, period, facultyID); err != nil {
		return nil, err
	}
	return &record, nil
}

// Find returns records matching the filter joined with the faculty display
// name, newest first then by period.
func (r *AttendanceRepository) Find(ctx context.Context, filter models.AttendanceFilter) ([]models.AttendanceWithFaculty, error) {
	base, args, err := buildAttendanceWhere(filter)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf("SELECT %s, u.name AS faculty_name %s ORDER BY a.date DESC, a.period ASC", attendanceColumns, base)
	var records []models.AttendanceWithFaculty
	if err := r.db.SelectContext(ctx, &records, query, args...); err != nil {
		return nil, fmt.Errorf("find attendance: %w", err)
	}
	return records, nil
}

// FindPage returns one page of matching records plus the unpaginated total.
func (r *AttendanceRepository) FindPage(ctx context.Context, filter models.AttendanceFilter, page, pageSize int) ([]models.AttendanceWithFaculty, int, error) {
	base, args, err := buildAttendanceWhere(filter)
	if err != nil {
		return nil, 0, err
	}

	if page < 1 {
		page = 1
	}
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 10
	}
	offset := (page - 1) * pageSize

	query := fmt.Sprintf("SELECT %s, u.name AS faculty_name %s ORDER BY a.date DESC, a.period ASC LIMIT %d OFFSET %d", attendanceColumns, base, pageSize, offset)
	var records []models.AttendanceWithFaculty
	if err := r.db.SelectContext(ctx, &records, query, args...); err != nil {
		return nil, 0, fmt.Errorf("find attendance page: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count attendance: %w", err)
	}

	return records, total, nil
}

func buildAttendanceWhere(filter models.AttendanceFilter) (string, []interface{}, error) {
	base := "FROM attendance_records a JOIN users u ON u.id = a.faculty_id WHERE 1=1"
	var conditions []string
	var args []interface{}

	add := func(clause string, value interface{}) {
		conditions = append(conditions, fmt.Sprintf(clause, len(args)+1))
		args = append(args, value)
	}

	if filter.Department != "" {
		add("a.department = $%d", filter.Department)
	}
	if filter.Programme != "" {
		add("a.programme = $%d", filter.Programme)
	}
	if filter.Batch != "" {
		add("a.batch = $%d", filter.Batch)
	}
	if filter.Section != "" {
		add("a.section = $%d", filter.Section)
	}
	if filter.Subject != "" {
		add("a.subject = $%d", filter.Subject)
	}
	if filter.FacultyID != "" {
		add("a.faculty_id = $%d", filter.FacultyID)
	}
	if filter.StudentID != "" {
		probe, err := json.Marshal([]map[string]string{{"studentId": filter.StudentID}})
		if err != nil {
			return "", nil, fmt.Errorf("marshal student probe: %w", err)
		}
		add("a.students @> $%d::jsonb", probe)
	}
	if filter.DateFrom != nil {
		add("a.date >= $%d", *filter.DateFrom)
	}
	if filter.DateTo != nil {
		add("a.date <= $%d", *filter.DateTo)
	}

	if len(conditions) > 0 {
		base += " AND " + strings.Join(conditions, " AND ")
	}
	return base, args, nil
}
