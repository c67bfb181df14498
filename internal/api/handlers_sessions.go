package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ramitgoyal/zensync/internal/models"
	"github.com/ramitgoyal/zensync/internal/session"
	"github.com/ramitgoyal/zensync/internal/store"
)

// SessionHandler handles session history and lifecycle requests.
type SessionHandler struct {
	sessions   *store.SessionStore
	controller *session.Controller
}

func NewSessionHandler(sessions *store.SessionStore, controller *session.Controller) *SessionHandler {
	return &SessionHandler{sessions: sessions, controller: controller}
}

// List handles GET /sessions
func (h *SessionHandler) List(w http.ResponseWriter, r *http.Request) {
	sessionType := models.SessionType(r.URL.Query().Get("type"))
	if sessionType != "" && !sessionType.IsValid() {
		writeError(w, http.StatusBadRequest, "invalid session type")
		return
	}

	records, err := h.sessions.ListRecords(sessionType, r.URL.Query().Get("q"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if records == nil {
		records = []*models.SessionRecord{}
	}

	writeJSON(w, http.StatusOK, models.ListSessionsResponse{Sessions: records, Total: len(records)})
}

// Delete handles DELETE /sessions/{id}
func (h *SessionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid session id")
		return
	}

	deleted, err := h.sessions.DeleteRecord(id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if !deleted {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Start handles POST /sessions/start
func (h *SessionHandler) Start(w http.ResponseWriter, r *http.Request) {
	var req models.StartSessionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	active, err := h.controller.Start(req.Subject, req.Type, req.GoalMinutes)
	switch {
	case errors.Is(err, session.ErrInvalidSession):
		writeError(w, http.StatusBadRequest, "subject and a valid session type are required")
		return
	case errors.Is(err, session.ErrSessionActive):
		writeError(w, http.StatusConflict, err.Error())
		return
	case err != nil:
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, models.ActiveSessionResponse{Session: active})
}

// Pause handles POST /sessions/pause
func (h *SessionHandler) Pause(w http.ResponseWriter, r *http.Request) {
	active, err := h.controller.Pause()
	if err != nil {
		writeLifecycleError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, models.ActiveSessionResponse{Session: active, Elapsed: active.Elapsed(time.Now())})
}

// Resume handles POST /sessions/resume
func (h *SessionHandler) Resume(w http.ResponseWriter, r *http.Request) {
	active, err := h.controller.Resume()
	if err != nil {
		writeLifecycleError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, models.ActiveSessionResponse{Session: active, Elapsed: active.Elapsed(time.Now())})
}

// End handles POST /sessions/end
func (h *SessionHandler) End(w http.ResponseWriter, r *http.Request) {
	record, err := h.controller.End()
	if err != nil {
		writeLifecycleError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, models.EndSessionResponse{Record: record, Elapsed: record.Duration})
}

// Active handles GET /sessions/active
func (h *SessionHandler) Active(w http.ResponseWriter, r *http.Request) {
	active, elapsed := h.controller.Active()
	if active == nil {
		writeError(w, http.StatusNotFound, "no active session")
		return
	}
	writeJSON(w, http.StatusOK, models.ActiveSessionResponse{Session: active, Elapsed: elapsed})
}

// writeLifecycleError maps controller contract violations to 409 and
// anything else to 500.
func writeLifecycleError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, session.ErrNoActiveSession),
		errors.Is(err, session.ErrAlreadyPaused),
		errors.Is(err, session.ErrNotPaused),
		errors.Is(err, session.ErrSessionActive):
		writeError(w, http.StatusConflict, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}
