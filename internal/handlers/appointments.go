package handlers

import (
	"github.com/gin-gonic/gin"

	"medcompanion-server/internal/logger"
	"medcompanion-server/internal/query"
	"medcompanion-server/internal/utils"
)

// AppointmentHandler serves the appointment list.
type AppointmentHandler struct {
	Query *query.Facade
	Log   *logger.Logger
}

// NewAppointmentHandler creates a new AppointmentHandler.
func NewAppointmentHandler(q *query.Facade, log *logger.Logger) *AppointmentHandler {
	return &AppointmentHandler{Query: q, Log: log}
}

// ListAppointments returns every booked appointment in storage order.
func (h *AppointmentHandler) ListAppointments(c *gin.Context) {
	appts, err := h.Query.ListAppointments(c.Request.Context())
	if err != nil {
		h.Log.WithComponent("handlers").WithError(err).Error("list appointments")
		utils.InternalServerError(c, err.Error())
		return
	}
	utils.Success(c, gin.H{"appointments": appts})
}
