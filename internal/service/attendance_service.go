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

type attendanceRepository interface {
	Upsert(ctx context.Context, record *models.AttendanceRecord) (*models.AttendanceRecord, error)
	FindByKey(ctx context.Context, date time.Time, subject string, period int, facultyID string) (*models.AttendanceRecord, error)
	Find(ctx context.Context, filter models.AttendanceFilter) ([]models.AttendanceWithFaculty, error)
	FindPage(ctx context.Context, filter models.AttendanceFilter, page, pageSize int) ([]models.AttendanceWithFaculty, int, error)
}

type assignmentRepository interface {
	FindAssignment(ctx context.Context, facultyID, subject string, period int) (*models.TimeTable, error)
	FindForFacultyDay(ctx context.Context, facultyID string, day models.Weekday) ([]models.TimeTable, error)
}

type rosterRepository interface {
	ListStudents(ctx context.Context, filter models.StudentFilter) ([]models.User, error)
}

type submissionCounter interface {
	IncAttendanceSubmission(department string)
}

// AttendanceService coordinates attendance capture and read paths.
type AttendanceService struct {
	attendance attendanceRepository
	timetables assignmentRepository
	roster     rosterRepository
	cache      *ReportCache
	metrics    submissionCounter
	validator  *validator.Validate
	logger     *zap.Logger
	now        func() time.Time
}

// NewAttendanceService constructs the attendance service. cache and metrics
// may be nil.
func NewAttendanceService(attendance attendanceRepository, timetables assignmentRepository, roster rosterRepository, cache *ReportCache, metrics submissionCounter, validate *validator.Validate, logger *zap.Logger) *AttendanceService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AttendanceService{
		attendance: attendance,
		timetables: timetables,
		roster:     roster,
		cache:      cache,
		metrics:    metrics,
		validator:  validate,
		logger:     logger,
		now:        time.Now,
	}
}

// TakeAttendanceRequest is the faculty submission payload.
type TakeAttendanceRequest struct {
	Date     string                 `json:"date" validate:"required"`
	Subject  string                 `json:"subject" validate:"required"`
	Period   int                    `json:"period" validate:"required,min=1"`
	Students []models.StudentStatus `json:"students" validate:"dive"`
	Section  string                 `json:"section"`
	Room     string                 `json:"room"`
}

// TakeAttendance authorizes the submission against the faculty member's
// timetable assignments and upserts the record for its key. The assignment
// probe ignores day and section on purpose: being assigned (subject, period)
// anywhere in the timetable authorizes submissions for any date.
func (s *AttendanceService) TakeAttendance(ctx context.Context, facultyID string, req TakeAttendanceRequest) (*models.AttendanceRecord, bool, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid attendance payload")
	}
	for _, entry := range req.Students {
		if !entry.Status.Valid() {
			return nil, false, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown attendance status %q", entry.Status))
		}
	}
	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		return nil, false, appErrors.Clone(appErrors.ErrValidation, "invalid date format, expected YYYY-MM-DD")
	}

	assignment, err := s.timetables.FindAssignment(ctx, facultyID, req.Subject, req.Period)
	if err != nil {
		if isNoRows(err) {
			return nil, false, appErrors.ErrNotAssigned
		}
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check assignment")
	}

	section := req.Section
	if section == "" {
		section = assignment.Section
	}
	room := req.Room
	if room == "" {
		room = assignmentRoom(assignment, req.Period)
	}

	students := req.Students
	if students == nil {
		students = models.StudentStatusList{}
	}

	record := &models.AttendanceRecord{
		Date:       date,
		Department: assignment.Department,
		Programme:  assignment.Programme,
		Batch:      assignment.Batch,
		Section:    section,
		Subject:    req.Subject,
		FacultyID:  facultyID,
		Period:     req.Period,
		Room:       room,
		Students:   students,
	}

	stored, err := s.attendance.Upsert(ctx, record)
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store attendance")
	}

	if s.metrics != nil {
		s.metrics.IncAttendanceSubmission(stored.Department)
	}
	if s.cache != nil {
		s.cache.InvalidateDepartment(stored.Department)
	}

	created := stored.Revision == 1
	s.logger.Info("attendance recorded",
		zap.String("faculty_id", facultyID),
		zap.String("subject", stored.Subject),
		zap.Int("period", stored.Period),
		zap.Bool("created", created))
	return stored, created, nil
}

// StudentAttendanceQuery scopes a student's own attendance view.
type StudentAttendanceQuery struct {
	Type      string
	Subject   string
	StartDate *time.Time
	EndDate   *time.Time
}

// StudentAttendanceResult pairs the matching records with the summary.
type StudentAttendanceResult struct {
	Attendance []models.AttendanceWithFaculty `json:"attendance"`
	Summary    models.StudentSummary          `json:"summary"`
}

// StudentAttendance returns a student's records for the requested window
// plus their personal tally. An explicit date range wins over the window
// type; otherwise daily, weekly, or monthly windows anchor on today.
func (s *AttendanceService) StudentAttendance(ctx context.Context, studentID string, q StudentAttendanceQuery) (*StudentAttendanceResult, error) {
	var from, to time.Time
	if q.StartDate != nil && q.EndDate != nil {
		from, to = dateOnly(*q.StartDate), dateOnly(*q.EndDate)
	} else {
		switch q.Type {
		case "weekly":
			from, to = weekBounds(s.now())
		case "monthly":
			from, to = monthBounds(s.now())
		default:
			from, to = dayBounds(s.now())
		}
	}

	filter := models.AttendanceFilter{
		StudentID: studentID,
		Subject:   normalizeAll(q.Subject),
		DateFrom:  &from,
		DateTo:    &to,
	}

	records, err := s.attendance.Find(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load attendance")
	}

	summary := models.StudentSummary{TotalClasses: len(records)}
	for _, record := range records {
		for _, entry := range record.Students {
			if entry.StudentID != studentID {
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

	return &StudentAttendanceResult{Attendance: records, Summary: summary}, nil
}

// FacultyClasses lists the faculty member's periods for the given date (or
// today) with a Taken/Pending flag per period.
func (s *AttendanceService) FacultyClasses(ctx context.Context, facultyID string, date *time.Time) ([]models.FacultyClass, error) {
	target := s.now()
	if date != nil {
		target = *date
	}
	target = dateOnly(target)

	day := models.Weekday(target.Weekday().String())
	classes := []models.FacultyClass{}
	if !day.Valid() {
		// Sunday has no timetable.
		return classes, nil
	}

	entries, err := s.timetables.FindForFacultyDay(ctx, facultyID, day)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load timetable")
	}

	for _, entry := range entries {
		for _, period := range entry.Periods {
			if period.FacultyID != facultyID {
				continue
			}

			class := models.FacultyClass{
				ID:               fmt.Sprintf("%s-%d", entry.ID, period.PeriodNumber),
				Department:       entry.Department,
				Programme:        entry.Programme,
				Batch:            entry.Batch,
				Section:          entry.Section,
				Period:           period.PeriodNumber,
				StartTime:        period.StartTime,
				EndTime:          period.EndTime,
				Subject:          period.Subject,
				Room:             period.Room,
				IsLab:            period.IsLab,
				AttendanceStatus: "Pending",
			}

			record, err := s.attendance.FindByKey(ctx, target, period.Subject, period.PeriodNumber, facultyID)
			if err != nil && !isNoRows(err) {
				return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check attendance")
			}
			if record != nil {
				class.AttendanceStatus = "Taken"
				id := record.ID
				class.AttendanceID = &id
			}

			classes = append(classes, class)
		}
	}

	sort.Slice(classes, func(i, j int) bool { return classes[i].Period < classes[j].Period })
	return classes, nil
}

// FacultyRecordsQuery scopes the paginated attendance history.
type FacultyRecordsQuery struct {
	StartDate *time.Time
	EndDate   *time.Time
	Subject   string
	Section   string
	Page      int
	PageSize  int
}

// FacultyRecords returns one page of the faculty member's records decorated
// with per-record stats.
func (s *AttendanceService) FacultyRecords(ctx context.Context, facultyID string, q FacultyRecordsQuery) ([]models.RecordWithStats, *models.Pagination, error) {
	filter := models.AttendanceFilter{
		FacultyID: facultyID,
		Subject:   normalizeAll(q.Subject),
		Section:   normalizeAll(q.Section),
		DateFrom:  q.StartDate,
		DateTo:    q.EndDate,
	}

	page := q.Page
	if page < 1 {
		page = 1
	}
	size := q.PageSize
	if size <= 0 {
		size = 10
	}

	records, total, err := s.attendance.FindPage(ctx, filter, page, size)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load attendance records")
	}

	result := make([]models.RecordWithStats, len(records))
	for i, record := range records {
		result[i] = models.RecordWithStats{AttendanceWithFaculty: record, Stats: computeRecordStats(record.Students)}
	}

	return result, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// ClassStudents returns the roster for one section; all four key fields are
// required.
func (s *AttendanceService) ClassStudents(ctx context.Context, filter models.StudentFilter) ([]models.User, error) {
	if filter.Department == "" || filter.Programme == "" || filter.Batch == "" || filter.Section == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "department, programme, batch and section are required")
	}
	students, err := s.roster.ListStudents(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load students")
	}
	return students, nil
}

func assignmentRoom(entry *models.TimeTable, periodNumber int) string {
	for _, period := range entry.Periods {
		if period.PeriodNumber == periodNumber {
			return period.Room
		}
	}
	return "Not specified"
}
