package handler

import (
	"fmt"
	"net/http"

	"dailypos/internal/dto"
	"dailypos/internal/service"

	"github.com/gin-gonic/gin"
)

type ReportHandler struct{ svc service.ClosingService }

func NewReportHandler(svc service.ClosingService) *ReportHandler { return &ReportHandler{svc: svc} }

// Get godoc
// @Summary Daily report (live, or frozen once the day is closed)
// @Tags reports
// @Produce json
// @Security BearerAuth
// @Param date query string false "YYYY-MM-DD, defaults to today"
// @Param mode query string false "detailed | simple"
// @Success 200 {object} dto.DetailedReport
// @Failure 400 {object} apierror.APIError
// @Router /reports/daily-pos/ [get]
func (h *ReportHandler) Get(c *gin.Context) {
	rep, err := h.svc.GetReport(c.Request.Context(), c.Query("date"), c.Query("mode"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rep.Payload())
}

// Start godoc
// @Summary Start today's business day
// @Tags reports
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.DayRequest false "Date, defaults to today"
// @Success 201 {object} dto.DetailedReport
// @Failure 400 {object} apierror.APIError
// @Failure 409 {object} apierror.ConflictError
// @Router /reports/daily-pos/start/ [post]
func (h *ReportHandler) Start(c *gin.Context) {
	var req dto.DayRequest
	if !bindOptional(c, &req) {
		return
	}
	rep, err := h.svc.StartDay(c.Request.Context(), actorFrom(c), req.Date)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, rep.Payload())
}

// Close godoc
// @Summary Close today's business day and freeze its Z report
// @Tags reports
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.DayRequest false "Date, defaults to today"
// @Success 200 {object} dto.DetailedReport
// @Failure 400 {object} apierror.APIError
// @Failure 409 {object} apierror.APIError
// @Router /reports/daily-pos/close/ [post]
func (h *ReportHandler) Close(c *gin.Context) {
	var req dto.DayRequest
	if !bindOptional(c, &req) {
		return
	}
	rep, err := h.svc.CloseDay(c.Request.Context(), actorFrom(c), req.Date)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rep.Payload())
}

// Export godoc
// @Summary Download the Z report of a closed day
// @Tags reports
// @Produce application/pdf
// @Produce text/csv
// @Security BearerAuth
// @Param date query string false "YYYY-MM-DD, defaults to today"
// @Param mode query string false "detailed | simple"
// @Param format query string false "pdf | csv"
// @Success 200 {file} file
// @Failure 409 {object} apierror.APIError
// @Router /reports/daily-pos/pdf/ [get]
func (h *ReportHandler) Export(c *gin.Context) {
	h.export(c, c.Query("date"))
}

// ExportByDate godoc
// @Summary Download the PDF Z report of a closed day
// @Tags reports
// @Produce application/pdf
// @Security BearerAuth
// @Param date path string true "YYYY-MM-DD"
// @Param mode query string false "detailed | simple"
// @Success 200 {file} file
// @Failure 409 {object} apierror.APIError
// @Router /reports/daily/pdf/{date}/ [get]
func (h *ReportHandler) ExportByDate(c *gin.Context) {
	h.export(c, c.Param("date"))
}

func (h *ReportHandler) export(c *gin.Context, date string) {
	doc, err := h.svc.Export(c.Request.Context(), date, c.Query("mode"), c.Query("format"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, doc.Filename))
	c.Data(http.StatusOK, doc.ContentType, doc.Body)
}

// History godoc
// @Summary List closed days, most recent first
// @Tags reports
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page (default 1)"
// @Param limit query int false "Page size (default 20, max 100)"
// @Success 200 {object} dto.HistoryResponse
// @Router /reports/daily-pos/history/ [get]
func (h *ReportHandler) History(c *gin.Context) {
	resp, err := h.svc.History(c.Request.Context(), queryInt(c, "page", 1), queryInt(c, "limit", 20))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Email godoc
// @Summary Email the PDF Z report of a closed day
// @Tags reports
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.EmailReportRequest true "Recipient and date"
// @Success 202 {object} map[string]string
// @Failure 409 {object} apierror.APIError
// @Failure 503 {object} apierror.APIError
// @Router /reports/daily-pos/email/ [post]
func (h *ReportHandler) Email(c *gin.Context) {
	var req dto.EmailReportRequest
	if !bindAndValidate(c, &req) {
		return
	}
	if err := h.svc.EmailReport(c.Request.Context(), req); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"detail": "Report sent to " + req.To})
}
