package handlers

import (
	"net/http"

	"worklog-backend/internal/health"
	"worklog-backend/pkg/utils"
)

type HealthHandler struct {
	Checker *health.HealthChecker
}

func NewHealthHandler(checker *health.HealthChecker) *HealthHandler {
	return &HealthHandler{Checker: checker}
}

// BasicHealth is the liveness/readiness probe endpoint
func (h *HealthHandler) BasicHealth(w http.ResponseWriter, r *http.Request) {
	status := h.Checker.CheckBasic()

	code := http.StatusOK
	if status.Status != "healthy" {
		code = http.StatusServiceUnavailable
	}
	utils.JSON(w, code, status)
}

// SystemStats reports host CPU, memory and disk usage (managers only)
func (h *HealthHandler) SystemStats(w http.ResponseWriter, r *http.Request) {
	utils.JSON(w, http.StatusOK, h.Checker.CheckSystem())
}
