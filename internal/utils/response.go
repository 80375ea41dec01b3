package utils

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Success sends a {"status": "success", ...} body with the given fields
// merged in.
func Success(c *gin.Context, fields gin.H) {
	body := gin.H{"status": "success"}
	for k, v := range fields {
		body[k] = v
	}
	c.JSON(http.StatusOK, body)
}

// Error sends a standard error response.
func Error(c *gin.Context, statusCode int, detail string) {
	c.JSON(statusCode, gin.H{
		"status": "error",
		"detail": detail,
	})
}

// BadRequest sends a 400 Bad Request error response.
func BadRequest(c *gin.Context, detail string) {
	Error(c, http.StatusBadRequest, detail)
}

// Unauthorized sends a 401 Unauthorized error response.
func Unauthorized(c *gin.Context, detail string) {
	Error(c, http.StatusUnauthorized, detail)
}

// NotFound sends a 404 Not Found error response.
func NotFound(c *gin.Context, detail string) {
	Error(c, http.StatusNotFound, detail)
}

// InternalServerError sends a 500 Internal Server Error response.
func InternalServerError(c *gin.Context, detail string) {
	Error(c, http.StatusInternalServerError, detail)
}
