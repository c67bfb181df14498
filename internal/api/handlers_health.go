package api

import (
	"net/http"

	"github.com/ramitgoyal/zensync/internal/models"
	"github.com/ramitgoyal/zensync/internal/store"
)

type HealthHandler struct {
	db *store.DB
}

func NewHealthHandler(db *store.DB) *HealthHandler {
	return &HealthHandler{db: db}
}

func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	resp := models.HealthResponse{Status: "ok", DB: "ok"}

	count, err := h.db.SessionCount()
	if err != nil {
		resp.Status = "degraded"
		resp.DB = "error"
	} else {
		resp.SessionCount = count
	}

	status := http.StatusOK
	if resp.Status != "ok" {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, resp)
}
