package handlers

import (
	"context"
	"net/http"
	"time"

	"pocket-budget/internal/errors"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

const healthPingTimeout = 2 * time.Second

// HealthCheckHandler handles the health check endpoint
type HealthCheckHandler struct {
	db  *gorm.DB
	now func() time.Time
}

// NewHealthCheckHandler creates a new health check handler
func NewHealthCheckHandler(db *gorm.DB) *HealthCheckHandler {
	return &HealthCheckHandler{db: db, now: time.Now}
}

// HealthCheck reports whether the API can reach its database.
// @Summary Health check
// @Tags Health
// @Produce json
// @Success 200 {object} object{status=string,time=string}
// @Failure 503 {object} errors.ErrorResponse "SYSTEM_003"
// @Router /health [get]
func (h *HealthCheckHandler) HealthCheck(c echo.Context) error {
	sqlDB, err := h.db.DB()
	if err != nil {
		return SendError(c, errors.SystemServiceUnavailable, errors.WithDetails("Database connection failed"))
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), healthPingTimeout)
	defer cancel()

	if err := sqlDB.PingContext(ctx); err != nil {
		return SendError(c, errors.SystemServiceUnavailable, errors.WithDetails("Database connection failed"))
	}

	return c.JSON(http.StatusOK, map[string]string{
		"status": "healthy",
		"time":   h.now().UTC().Format(time.RFC3339),
	})
}
