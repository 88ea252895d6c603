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

const timetableColumns = `id, department, programme, batch, section, semester, day, periods, created_at, updated_at`

// TimetableRepository provides persistence for timetable entries.
type TimetableRepository struct {
	db *sqlx.DB
}

// NewTimetableRepository creates a new timetable repository.
func NewTimetableRepository(db *sqlx.DB) *TimetableRepository {
	return &TimetableRepository{db: db}
}

// Query returns timetable entries matching the filter.
func (r *TimetableRepository) Query(ctx context.Context, filter models.TimeTableFilter) ([]models.TimeTable, error) {
	base := "FROM timetables WHERE 1=1"
	var conditions []string
	var args []interface{}

	if filter.Department != "" {
		conditions = append(conditions, fmt.Sprintf("department = $%d", len(args)+1))
		args = append(args, filter.Department)
	}
	if filter.Programme != "" {
		conditions = append(conditions, fmt.Sprintf("programme = $%d", len(args)+1))
		args = append(args, filter.Programme)
	}
	if filter.Batch != "" {
		conditions = append(conditions, fmt.Sprintf("batch = $%d", len(args)+1))
		args = append(args, filter.Batch)
	}
	if filter.Section != "" {
		conditions = append(conditions, fmt.Sprintf("section = $%d", len(args)+1))
		args = append(args, filter.Section)
	}
	if filter.Day != "" {
		conditions = append(conditions, fmt.Sprintf("day = $%d", len(args)+1))
		args = append(args, filter.Day)
	}

	if len(conditions) > 0 {
		base += " AND " + strings.Join(conditions, " AND ")
	}

	query := fmt.Sprintf("SELECT %s %s ORDER BY section ASC, day ASC", timetableColumns, base)
	var entries []models.TimeTable
	if err := r.db.SelectContext(ctx, &entries, query, args...); err != nil {
		return nil, fmt.Errorf("query timetables: %w", err)
	}
	return entries, nil
}

// Upsert creates or replaces the entry for its (department, programme, batch,
// section, day) key and returns the stored row.
func (r *TimetableRepository) Upsert(ctx context.Context, entry *models.TimeTable) (*models.TimeTable, error) {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = now
	}
	entry.UpdatedAt = now

	query := fmt.Sprintf(`INSERT INTO timetables (id, department, programme, batch, section, semester, day, periods, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (department, programme, batch, section, day)
		DO UPDATE SET semester = EXCLUDED.semester, periods = EXCLUDED.periods, updated_at = EXCLUDED.updated_at
		RETURNING %s`, timetableColumns)

	var stored models.TimeTable
	err := r.db.GetContext(ctx, &stored, query,
		entry.ID, entry.Department, entry.Programme, entry.Batch, entry.Section,
		entry.Semester, entry.Day, entry.Periods, entry.CreatedAt, entry.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("upsert timetable: %w", err)
	}
	return &stored, nil
}

// Delete removes a timetable entry by id.
func (r *TimetableRepository) Delete(ctx context.Context, id string) (int64, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM timetables WHERE id = $1`, id)
	if err != nil {
		return 0, fmt.Errorf("delete timetable: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete timetable rows affected: %w", err)
	}
	return affected, nil
}

// FindAssignment returns the first entry whose period list contains a slot
// matching (faculty, subject, period number). The probe is deliberately
// day-agnostic: it mirrors the take-attendance authorization contract, which
// does not scope by day or requested date.
func (r *TimetableRepository) FindAssignment(ctx context.Context, facultyID, subject string, period int) (*models.TimeTable, error) {
	probe, err := json.Marshal([]map[string]interface{}{{
		"facultyId":    facultyID,
		"subject":      subject,
		"periodNumber": period,
	}})
	if err != nil {
		return nil, fmt.Errorf("marshal assignment probe: %w", err)
	}

	query := fmt.Sprintf(`SELECT %s FROM timetables WHERE periods @> $1::jsonb LIMIT 1`, timetableColumns)
	var entry models.TimeTable
	if err := r.db.GetContext(ctx, &entry, query, probe); err != nil {
		return nil, err
	}
	return &entry, nil
}

// FindForFacultyDay returns the entries for a given day containing at least
// one period taught by the faculty member.
func (r *TimetableRepository) FindForFacultyDay(ctx context.Context, facultyID string, day models.Weekday) ([]models.TimeTable, error) {
	probe, err := json.Marshal([]map[string]interface{}{{"facultyId": facultyID}})
	if err != nil {
		return nil, fmt.Errorf("marshal faculty probe: %w", err)
	}

	query := fmt.Sprintf(`SELECT %s FROM timetables WHERE day = $1 AND periods @> $2::jsonb ORDER BY section ASC`, timetableColumns)
	var entries []models.TimeTable
	if err := r.db.SelectContext(ctx, &entries, query, day, probe); err != nil {
		return nil, fmt.Errorf("find faculty day timetables: %w", err)
	}
	return entries, nil
}

// ReplaceSections atomically swaps the timetable rows for the section keys
// covered by the incoming batch: within one transaction it deletes every
// existing row for each (department, programme, batch, section) key, then
// inserts the new entries. Either the whole swap lands or none of it does.
func (r *TimetableRepository) ReplaceSections(ctx context.Context, entries []models.TimeTable) (err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin timetable replace: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	seen := map[models.SectionKey]struct{}{}
	for _, entry := range entries {
		key := models.SectionKey{
			Department: entry.Department,
			Programme:  entry.Programme,
			Batch:      entry.Batch,
			Section:    entry.Section,
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		if _, err = tx.ExecContext(ctx,
			`DELETE FROM timetables WHERE department = $1 AND programme = $2 AND batch = $3 AND section = $4`,
			key.Department, key.Programme, key.Batch, key.Section); err != nil {
			return fmt.Errorf("delete section timetables: %w", err)
		}
	}

	now := time.Now().UTC()
	for i := range entries {
		payload := entries[i]
		if payload.ID == "" {
			payload.ID = uuid.NewString()
		}
		if payload.CreatedAt.IsZero() {
			payload.CreatedAt = now
		}
		payload.UpdatedAt = now

		if _, err = tx.NamedExecContext(ctx,
			`INSERT INTO timetables (id, department, programme, batch, section, semester, day, periods, created_at, updated_at)
			VALUES (:id, :department, :programme, :batch, :section, :semester, :day, :periods, :created_at, :updated_at)`, &payload); err != nil {
			return fmt.Errorf("insert timetable: %w", err)
		}
		entries[i] = payload
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit timetable replace: %w", err)
	}
	return nil
}
