package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"medcompanion-server/internal/logger"
	"medcompanion-server/internal/query"
	"medcompanion-server/internal/utils"
)

// DoctorHandler serves the doctor directory.
type DoctorHandler struct {
	Query *query.Facade
	Log   *logger.Logger
}

// NewDoctorHandler creates a new DoctorHandler.
func NewDoctorHandler(q *query.Facade, log *logger.Logger) *DoctorHandler {
	return &DoctorHandler{Query: q, Log: log}
}

// ListDoctors returns the directory mapping as stored, without an envelope.
func (h *DoctorHandler) ListDoctors(c *gin.Context) {
	doctors, err := h.Query.ListDoctors(c.Request.Context())
	if err != nil {
		h.Log.WithComponent("handlers").WithError(err).Error("list doctors")
		utils.InternalServerError(c, err.Error())
		return
	}
	c.JSON(http.StatusOK, doctors)
}
