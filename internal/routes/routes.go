package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"medcompanion-server/internal/agent"
	"medcompanion-server/internal/config"
	"medcompanion-server/internal/handlers"
	"medcompanion-server/internal/logger"
	"medcompanion-server/internal/metrics"
	"medcompanion-server/internal/middleware"
	"medcompanion-server/internal/query"
	"medcompanion-server/internal/tools"
)

// maxToolBodyBytes caps tool argument payloads; report content travels in them
const maxToolBodyBytes = 8 << 20

// Deps are the services the routes are wired to
type Deps struct {
	Config   *config.Config
	Log      *logger.Logger
	Metrics  *metrics.Metrics
	Query    *query.Facade
	Registry *tools.Registry
	Manifest agent.Definition
}

// SetupRoutes configures the application routes.
func SetupRoutes(router *gin.Engine, deps Deps) {
	// Initialize handlers
	reportHandler := handlers.NewReportHandler(deps.Query, deps.Log)
	doctorHandler := handlers.NewDoctorHandler(deps.Query, deps.Log)
	appointmentHandler := handlers.NewAppointmentHandler(deps.Query, deps.Log)
	toolHandler := handlers.NewToolHandler(deps.Registry, deps.Manifest)

	// Read-only data routes used by the frontend
	router.GET("/reports", reportHandler.ListReports)
	router.GET("/reports/:filename", reportHandler.GetReport)
	router.GET("/doctors", doctorHandler.ListDoctors)
	router.GET("/appointments", appointmentHandler.ListAppointments)

	// Agent routes, protected when a tools secret is configured
	agentRoutes := router.Group("")
	agentRoutes.Use(middleware.ToolAuthMiddleware(deps.Config.Tools.JWTSecret))
	{
		agentRoutes.GET("/agent", toolHandler.GetAgent)
		agentRoutes.GET("/tools", toolHandler.ListTools)
		agentRoutes.POST("/tools/:name", middleware.LimitBodySize(maxToolBodyBytes), toolHandler.InvokeTool)
	}

	router.GET("/metrics", gin.WrapH(deps.Metrics.Handler()))

	// Simple health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "UP"})
	})
}
