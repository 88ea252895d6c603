package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ravi-menon/dept-attendance-api/internal/models"
	"github.com/ravi-menon/dept-attendance-api/internal/service"
	appErrors "github.com/ravi-menon/dept-attendance-api/pkg/errors"
	"github.com/ravi-menon/dept-attendance-api/pkg/response"
)

// AttendanceHandler wires HTTP endpoints to the attendance service.
type AttendanceHandler struct {
	service *service.AttendanceService
}

// NewAttendanceHandler creates a new handler.
func NewAttendanceHandler(svc *service.AttendanceService) *AttendanceHandler {
	return &AttendanceHandler{service: svc}
}

// Take godoc
// @Summary Submit attendance for one period
// @Description Creates the record, or replaces the student list when the same key was already submitted
// @Tags Attendance
// @Accept json
// @Produce json
// @Param payload body service.TakeAttendanceRequest true "Attendance payload"
// @Success 200 {object} response.Envelope
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /attendance/take [post]
func (h *AttendanceHandler) Take(c *gin.Context) {
	claims, ok := claimsFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req service.TakeAttendanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid attendance payload"))
		return
	}

	record, created, err := h.service.TakeAttendance(c.Request.Context(), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	response.JSON(c, status, record, nil)
}

// Student godoc
// @Summary Own attendance for a window
// @Tags Attendance
// @Produce json
// @Param type query string false "daily, weekly, or monthly"
// @Param subject query string false "Subject filter"
// @Param startDate query string false "Range start (YYYY-MM-DD)"
// @Param endDate query string false "Range end (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Router /attendance/student [get]
func (h *AttendanceHandler) Student(c *gin.Context) {
	claims, ok := claimsFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	start, err := parseDateQuery(c, "startDate")
	if err != nil {
		response.Error(c, err)
		return
	}
	end, err := parseDateQuery(c, "endDate")
	if err != nil {
		response.Error(c, err)
		return
	}

	result, err := h.service.StudentAttendance(c.Request.Context(), claims.UserID, service.StudentAttendanceQuery{
		Type:      c.DefaultQuery("type", "daily"),
		Subject:   c.Query("subject"),
		StartDate: start,
		EndDate:   end,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, result, nil)
}

// FacultyClasses godoc
// @Summary Faculty member's periods for a date
// @Tags Attendance
// @Produce json
// @Param date query string false "Date (YYYY-MM-DD), defaults to today"
// @Success 200 {object} response.Envelope
// @Router /attendance/faculty/classes [get]
func (h *AttendanceHandler) FacultyClasses(c *gin.Context) {
	claims, ok := claimsFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	date, err := parseDateQuery(c, "date")
	if err != nil {
		response.Error(c, err)
		return
	}

	classes, err := h.service.FacultyClasses(c.Request.Context(), claims.UserID, date)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, classes, nil)
}

// FacultyRecords godoc
// @Summary Faculty member's attendance history
// @Tags Attendance
// @Produce json
// @Param startDate query string false "Range start (YYYY-MM-DD)"
// @Param endDate query string false "Range end (YYYY-MM-DD)"
// @Param subject query string false "Subject filter"
// @Param section query string false "Section filter"
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /attendance/faculty/records [get]
func (h *AttendanceHandler) FacultyRecords(c *gin.Context) {
	claims, ok := claimsFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	start, err := parseDateQuery(c, "startDate")
	if err != nil {
		response.Error(c, err)
		return
	}
	end, err := parseDateQuery(c, "endDate")
	if err != nil {
		response.Error(c, err)
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

	records, pagination, err := h.service.FacultyRecords(c.Request.Context(), claims.UserID, service.FacultyRecordsQuery{
		StartDate: start,
		EndDate:   end,
		Subject:   c.Query("subject"),
		Section:   c.Query("section"),
		Page:      page,
		PageSize:  limit,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, records, pagination)
}

// ClassStudents godoc
// @Summary Roster for one section
// @Tags Attendance
// @Produce json
// @Param department query string true "Department"
// @Param programme query string true "Programme"
// @Param batch query string true "Batch"
// @Param section query string true "Section"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /attendance/class-students [get]
func (h *AttendanceHandler) ClassStudents(c *gin.Context) {
	students, err := h.service.ClassStudents(c.Request.Context(), models.StudentFilter{
		Department: c.Query("department"),
		Programme:  c.Query("programme"),
		Batch:      c.Query("batch"),
		Section:    c.Query("section"),
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, students, nil)
}

// parseDateQuery reads an optional YYYY-MM-DD query parameter.
func parseDateQuery(c *gin.Context, name string) (*time.Time, error) {
	raw := c.Query(name)
	if raw == "" {
		return nil, nil
	}
	parsed, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, name+" must be YYYY-MM-DD")
	}
	return &parsed, nil
}
