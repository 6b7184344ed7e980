package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/korpa/basket-service/internal/database"
)

// HealthResponse represents the health check response
type HealthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
	Catalog  string `json:"catalog"`
}

// HealthCheck handles the health check endpoint
func HealthCheck(c *gin.Context) {
	response := HealthResponse{
		Status: "ok",
	}

	if database.Pool() != nil {
		err := database.Status(c.Request.Context())
		if err != nil {
			response.Database = "disconnected"
			c.JSON(http.StatusServiceUnavailable, response)
			return
		}
		response.Database = "connected"
	} else {
		response.Database = "not configured"
	}

	switch {
	case catalogCache == nil:
		response.Catalog = "not configured"
	case catalogCache.IsHealthy(c.Request.Context()):
		response.Catalog = "ready"
	default:
		response.Catalog = "warming"
	}

	c.JSON(http.StatusOK, response)
}

// ReadyCheck reports whether the service can serve comparisons. Load
// balancers should route traffic only after the first catalog snapshot
// has loaded.
func ReadyCheck(c *gin.Context) {
	if catalogCache == nil || !catalogCache.IsHealthy(c.Request.Context()) {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not ready"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}
