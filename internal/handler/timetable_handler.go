package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ravi-menon/dept-attendance-api/internal/models"
	"github.com/ravi-menon/dept-attendance-api/internal/service"
	appErrors "github.com/ravi-menon/dept-attendance-api/pkg/errors"
	"github.com/ravi-menon/dept-attendance-api/pkg/response"
)

// TimetableHandler wires HTTP endpoints to the timetable service.
type TimetableHandler struct {
	service *service.TimetableService
}

// NewTimetableHandler creates a new handler.
func NewTimetableHandler(svc *service.TimetableService) *TimetableHandler {
	return &TimetableHandler{service: svc}
}

// Query godoc
// @Summary Query timetable entries
// @Tags Timetable
// @Produce json
// @Param department query string false "Department"
// @Param programme query string false "Programme"
// @Param batch query string false "Batch"
// @Param section query string false "Section"
// @Param day query string false "Day"
// @Success 200 {object} response.Envelope
// @Router /timetable [get]
func (h *TimetableHandler) Query(c *gin.Context) {
	filter := models.TimeTableFilter{
		Department: c.Query("department"),
		Programme:  c.Query("programme"),
		Batch:      c.Query("batch"),
		Section:    c.Query("section"),
		Day:        models.Weekday(c.Query("day")),
	}

	entries, err := h.service.Query(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, entries, nil)
}

// Upsert godoc
// @Summary Create or replace one timetable entry
// @Tags Timetable
// @Accept json
// @Produce json
// @Param payload body service.TimeTableRequest true "Timetable entry"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /timetable [put]
func (h *TimetableHandler) Upsert(c *gin.Context) {
	var req service.TimeTableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid timetable payload"))
		return
	}

	entry, err := h.service.Upsert(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, entry, nil)
}

// Delete godoc
// @Summary Delete one timetable entry
// @Tags Timetable
// @Produce json
// @Param id path string true "Timetable entry ID"
// @Success 204 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /timetable/{id} [delete]
func (h *TimetableHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// BulkImport godoc
// @Summary Atomically replace timetables for the sections in the batch
// @Tags Timetable
// @Accept json
// @Produce json
// @Param payload body []service.TimeTableRequest true "Timetable entries"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /timetable/bulk-import [post]
func (h *TimetableHandler) BulkImport(c *gin.Context) {
	var payload struct {
		Timetables []service.TimeTableRequest `json:"timetables"`
	}
	if err := c.ShouldBindJSON(&payload); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid bulk import payload"))
		return
	}

	entries, err := h.service.BulkImport(c.Request.Context(), payload.Timetables)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, gin.H{"imported": len(entries)}, nil)
}
