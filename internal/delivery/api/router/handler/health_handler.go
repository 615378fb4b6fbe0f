package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// HealthResponse is served at the root path.
type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

// HealthCheck reports that the process is serving requests
func HealthCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC(),
	})
}
