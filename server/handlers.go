package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/koinoniahq/koinonia/utils/dotenv"
	Logger "github.com/koinoniahq/koinonia/utils/log"
)

// Shared response helpers for all API handlers. The error taxonomy is:
// 400 required input missing or invalid, 404 referenced entity absent,
// 403 operation gated off, 409 duplicate relation, 500 storage failure.

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": msg})
}

func notFound(c *gin.Context, msg string) {
	c.JSON(http.StatusNotFound, gin.H{"error": msg})
}

func forbidden(c *gin.Context, msg string) {
	c.JSON(http.StatusForbidden, gin.H{"error": msg})
}

func conflict(c *gin.Context, msg string) {
	c.JSON(http.StatusConflict, gin.H{"error": msg})
}

// internalError hides storage error details in production.
func internalError(c *gin.Context, err error) {
	Logger.Log.Error("internal error: ", err)
	if dotenv.IsProdEnv() {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}
