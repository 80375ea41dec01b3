package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"

	"medcompanion-server/internal/logger"
	"medcompanion-server/internal/models"
	"medcompanion-server/internal/query"
	"medcompanion-server/internal/utils"
)

// ReportHandler serves report summaries and raw report content.
type ReportHandler struct {
	Query *query.Facade
	Log   *logger.Logger
}

// NewReportHandler creates a new ReportHandler.
func NewReportHandler(q *query.Facade, log *logger.Logger) *ReportHandler {
	return &ReportHandler{Query: q, Log: log}
}

// ListReports returns the summary index.
func (h *ReportHandler) ListReports(c *gin.Context) {
	summaries, err := h.Query.ListReports(c.Request.Context())
	if err != nil {
		h.Log.WithComponent("handlers").WithError(err).Error("list reports")
		utils.InternalServerError(c, err.Error())
		return
	}
	utils.Success(c, gin.H{"reports": summaries})
}

// GetReport returns the raw content of one report.
func (h *ReportHandler) GetReport(c *gin.Context) {
	detail, err := h.Query.ReportContent(c.Request.Context(), c.Param("filename"))
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			utils.NotFound(c, "Report not found")
			return
		}
		h.Log.WithComponent("handlers").WithError(err).WithField("filename", c.Param("filename")).Error("read report")
		utils.InternalServerError(c, err.Error())
		return
	}
	utils.Success(c, gin.H{"filename": detail.Filename, "content": detail.Content})
}
