package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"medcompanion-server/internal/agent"
	"medcompanion-server/internal/tools"
	"medcompanion-server/internal/utils"
)

// ToolHandler exposes the agent tool registry over HTTP.
type ToolHandler struct {
	Registry *tools.Registry
	Manifest agent.Definition
}

// NewToolHandler creates a new ToolHandler.
func NewToolHandler(registry *tools.Registry, manifest agent.Definition) *ToolHandler {
	return &ToolHandler{Registry: registry, Manifest: manifest}
}

// ListTools returns the tool catalog with argument schemas.
func (h *ToolHandler) ListTools(c *gin.Context) {
	utils.Success(c, gin.H{"tools": h.Registry.List()})
}

// InvokeTool runs a tool with the request body as arguments. Tool failures
// are reported inside the tagged result with status 200.
func (h *ToolHandler) InvokeTool(c *gin.Context) {
	raw, err := c.GetRawData()
	if err != nil {
		utils.BadRequest(c, "Invalid request payload: "+err.Error())
		return
	}

	result, err := h.Registry.Invoke(c.Request.Context(), c.Param("name"), raw)
	if err != nil {
		if errors.Is(err, tools.ErrUnknownTool) {
			utils.NotFound(c, err.Error())
			return
		}
		utils.InternalServerError(c, err.Error())
		return
	}
	c.JSON(http.StatusOK, result)
}

// GetAgent returns the agent manifest for the orchestrator.
func (h *ToolHandler) GetAgent(c *gin.Context) {
	utils.Success(c, gin.H{"agent": h.Manifest})
}
