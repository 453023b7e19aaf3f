package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

type HealthHandler struct {
	instanceID string
}

func NewHealthHandler(instanceID string) *HealthHandler {
	return &HealthHandler{
		instanceID: instanceID,
	}
}

func (h *HealthHandler) CheckHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status":   "ok",
		"instance": h.instanceID,
		"time":     time.Now().Format(time.RFC3339),
	})
}
