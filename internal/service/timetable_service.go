package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/ravi-menon/dept-attendance-api/internal/models"
	appErrors "github.com/ravi-menon/dept-attendance-api/pkg/errors"
)

type timetableRepository interface {
	Query(ctx context.Context, filter models.TimeTableFilter) ([]models.TimeTable, error)
	Upsert(ctx context.Context, entry *models.TimeTable) (*models.TimeTable, error)
	Delete(ctx context.Context, id string) (int64, error)
	ReplaceSections(ctx context.Context, entries []models.TimeTable) error
}

// TimetableService owns timetable reads, upserts, and bulk replacement.
type TimetableService struct {
	repo      timetableRepository
	cache     *ReportCache
	validator *validator.Validate
	logger    *zap.Logger
}

// NewTimetableService constructs the timetable service. cache may be nil.
func NewTimetableService(repo timetableRepository, cache *ReportCache, validate *validator.Validate, logger *zap.Logger) *TimetableService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TimetableService{repo: repo, cache: cache, validator: validate, logger: logger}
}

// TimeTableRequest is one complete timetable entry payload.
type TimeTableRequest struct {
	Department string          `json:"department" validate:"required"`
	Programme  string          `json:"programme" validate:"required"`
	Batch      string          `json:"batch" validate:"required"`
	Section    string          `json:"section" validate:"required"`
	Semester   int             `json:"semester" validate:"required,min=1"`
	Day        models.Weekday  `json:"day" validate:"required"`
	Periods    []models.Period `json:"periods" validate:"required,min=1,dive"`
}

// Query returns timetable entries matching the filter.
func (s *TimetableService) Query(ctx context.Context, filter models.TimeTableFilter) ([]models.TimeTable, error) {
	if filter.Day != "" && !filter.Day.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown day")
	}
	entries, err := s.repo.Query(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load timetables")
	}
	return entries, nil
}

// Upsert validates and stores one entry, replacing any existing entry for
// its (department, programme, batch, section, day) key.
func (s *TimetableService) Upsert(ctx context.Context, req TimeTableRequest) (*models.TimeTable, error) {
	if err := s.validateEntry(req); err != nil {
		return nil, err
	}

	entry := &models.TimeTable{
		Department: req.Department,
		Programme:  req.Programme,
		Batch:      req.Batch,
		Section:    req.Section,
		Semester:   req.Semester,
		Day:        req.Day,
		Periods:    req.Periods,
	}

	stored, err := s.repo.Upsert(ctx, entry)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store timetable")
	}

	if s.cache != nil {
		s.cache.InvalidateDepartment(stored.Department)
	}
	return stored, nil
}

// Delete removes one entry by id.
func (s *TimetableService) Delete(ctx context.Context, id string) error {
	affected, err := s.repo.Delete(ctx, id)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete timetable")
	}
	if affected == 0 {
		return appErrors.Clone(appErrors.ErrNotFound, "timetable entry not found")
	}
	return nil
}

// BulkImport validates every entry up front and then atomically replaces the
// timetable rows for each section key in the batch. Validation failure of any
// entry rejects the whole batch with no writes. Note the replacement unit is
// the section, not the (section, day) pair: a batch carrying only Monday for
// a section replaces that section's entire week.
func (s *TimetableService) BulkImport(ctx context.Context, reqs []TimeTableRequest) ([]models.TimeTable, error) {
	if len(reqs) == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "empty timetable batch")
	}

	entries := make([]models.TimeTable, len(reqs))
	for i, req := range reqs {
		if err := s.validateEntry(req); err != nil {
			return nil, appErrors.Clone(appErrors.FromError(err), fmt.Sprintf("entry %d: %s", i, appErrors.FromError(err).Message))
		}
		entries[i] = models.TimeTable{
			Department: req.Department,
			Programme:  req.Programme,
			Batch:      req.Batch,
			Section:    req.Section,
			Semester:   req.Semester,
			Day:        req.Day,
			Periods:    req.Periods,
		}
	}

	if err := s.repo.ReplaceSections(ctx, entries); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to replace timetables")
	}

	if s.cache != nil {
		departments := map[string]struct{}{}
		for _, entry := range entries {
			if _, ok := departments[entry.Department]; ok {
				continue
			}
			departments[entry.Department] = struct{}{}
			s.cache.InvalidateDepartment(entry.Department)
		}
	}

	s.logger.Info("timetable bulk import", zap.Int("entries", len(entries)))
	return entries, nil
}

func (s *TimetableService) validateEntry(req TimeTableRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid timetable entry")
	}
	if !req.Day.Valid() {
		return appErrors.Clone(appErrors.ErrValidation, "unknown day")
	}
	return validatePeriods(req.Periods)
}

// validatePeriods enforces unique period numbers, parseable HH:MM times, and
// non-overlapping time ranges within one entry.
func validatePeriods(periods []models.Period) error {
	type span struct {
		start, end time.Time
		number     int
	}

	seen := map[int]struct{}{}
	spans := make([]span, 0, len(periods))
	for _, period := range periods {
		if _, ok := seen[period.PeriodNumber]; ok {
			return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("duplicate period number %d", period.PeriodNumber))
		}
		seen[period.PeriodNumber] = struct{}{}

		start, err := time.Parse("15:04", period.StartTime)
		if err != nil {
			return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("period %d: invalid start time %q", period.PeriodNumber, period.StartTime))
		}
		end, err := time.Parse("15:04", period.EndTime)
		if err != nil {
			return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("period %d: invalid end time %q", period.PeriodNumber, period.EndTime))
		}
		if !end.After(start) {
			return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("period %d: end time must be after start time", period.PeriodNumber))
		}
		spans = append(spans, span{start: start, end: end, number: period.PeriodNumber})
	}

	sort.Slice(spans, func(i, j int) bool { return spans[i].start.Before(spans[j].start) })
	for i := 1; i < len(spans); i++ {
		if spans[i].start.Before(spans[i-1].end) {
			return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("periods %d and %d overlap", spans[i-1].number, spans[i].number))
		}
	}
	return nil
}
