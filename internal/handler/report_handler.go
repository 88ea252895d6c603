package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ravi-menon/dept-attendance-api/internal/service"
	appErrors "github.com/ravi-menon/dept-attendance-api/pkg/errors"
	"github.com/ravi-menon/dept-attendance-api/pkg/export"
	"github.com/ravi-menon/dept-attendance-api/pkg/response"
)

// ReportHandler wires HTTP endpoints to the report service.
type ReportHandler struct {
	service *service.ReportService
	csv     *export.CSVExporter
	pdf     *export.PDFExporter
}

// NewReportHandler creates a new handler.
func NewReportHandler(svc *service.ReportService) *ReportHandler {
	return &ReportHandler{
		service: svc,
		csv:     export.NewCSVExporter(),
		pdf:     export.NewPDFExporter(),
	}
}

// Department godoc
// @Summary Department attendance report
// @Tags Reports
// @Produce json
// @Param programme query string false "Programme filter"
// @Param batch query string false "Batch filter"
// @Param section query string false "Section filter"
// @Param subject query string false "Subject filter"
// @Param facultyId query string false "Faculty filter"
// @Param startDate query string false "Range start (YYYY-MM-DD)"
// @Param endDate query string false "Range end (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /attendance/department [get]
func (h *ReportHandler) Department(c *gin.Context) {
	claims, ok := claimsFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	query, err := departmentQueryFromRequest(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	report, err := h.service.DepartmentReport(c.Request.Context(), claims.Department, query)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, report, nil)
}

// Export godoc
// @Summary Export the department report
// @Tags Reports
// @Produce text/csv
// @Produce application/pdf
// @Param format query string false "csv or pdf" default(csv)
// @Success 200 {file} file
// @Failure 400 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /attendance/department/export [get]
func (h *ReportHandler) Export(c *gin.Context) {
	claims, ok := claimsFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	query, err := departmentQueryFromRequest(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	report, err := h.service.DepartmentReport(c.Request.Context(), claims.Department, query)
	if err != nil {
		response.Error(c, err)
		return
	}

	dataset := h.service.ExportDataset(report)
	filename := fmt.Sprintf("attendance-report-%s", time.Now().Format("2006-01-02"))

	switch c.DefaultQuery("format", "csv") {
	case "csv":
		raw, err := h.csv.Render(dataset)
		if err != nil {
			response.Error(c, err)
			return
		}
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s.csv", filename))
		c.Data(http.StatusOK, "text/csv", raw)
	case "pdf":
		raw, err := h.pdf.Render(dataset, fmt.Sprintf("%s attendance report", claims.Department))
		if err != nil {
			response.Error(c, err)
			return
		}
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s.pdf", filename))
		c.Data(http.StatusOK, "application/pdf", raw)
	default:
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf"))
	}
}

// Summary godoc
// @Summary Today/week/month attendance summary for the caller's role
// @Tags Reports
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /attendance/summary [get]
func (h *ReportHandler) Summary(c *gin.Context) {
	claims, ok := claimsFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	summary, err := h.service.Summary(c.Request.Context(), claims)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, summary, nil)
}

func departmentQueryFromRequest(c *gin.Context) (service.DepartmentReportQuery, error) {
	start, err := parseDateQuery(c, "startDate")
	if err != nil {
		return service.DepartmentReportQuery{}, err
	}
	end, err := parseDateQuery(c, "endDate")
	if err != nil {
		return service.DepartmentReportQuery{}, err
	}
	return service.DepartmentReportQuery{
		Programme: c.Query("programme"),
		Batch:     c.Query("batch"),
		Section:   c.Query("section"),
		Subject:   c.Query("subject"),
		FacultyID: c.Query("facultyId"),
		StartDate: start,
		EndDate:   end,
	}, nil
}
