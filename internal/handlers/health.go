package handlers

import (
	"context"
	"net/http"
	"time"

	"shiftly/internal/models"

	"github.com/labstack/echo/v4"
)

// HealthChecker reports whether the agent backend is reachable
type HealthChecker interface {
	CheckHealth(ctx context.Context) bool
}

// HealthHandler handles basic health check requests
// @Summary Service health
// @Description Console health plus agent backend reachability
// @Tags health
// @Produce json
// @Success 200 {object} models.HealthResponse
// @Router /healthz [get]
func HealthHandler(version string, backend HealthChecker) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
		defer cancel()

		response := models.HealthResponse{
			Status:    "healthy",
			Timestamp: time.Now().UTC(),
			Version:   version,
		}
		if backend != nil {
			response.BackendHealthy = backend.CheckHealth(ctx)
		}

		return c.JSON(http.StatusOK, response)
	}
}

// RootHandler handles requests to the root endpoint
func RootHandler(version string) echo.HandlerFunc {
	return func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"service": "Shiftly Console",
			"version": version,
			"status":  "running",
		})
	}
}
