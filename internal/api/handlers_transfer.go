package api

import (
	"errors"
	"net/http"

	"github.com/ramitgoyal/zensync/internal/auth"
	"github.com/ramitgoyal/zensync/internal/store"
	"github.com/ramitgoyal/zensync/internal/transfer"
)

// TransferHandler handles backup export, import, and delete-all.
type TransferHandler struct {
	sessions *store.SessionStore
	authSvc  *auth.Service
}

func NewTransferHandler(sessions *store.SessionStore, authSvc *auth.Service) *TransferHandler {
	return &TransferHandler{sessions: sessions, authSvc: authSvc}
}

// Export handles GET /data/export
func (h *TransferHandler) Export(w http.ResponseWriter, r *http.Request) {
	user, err := h.authSvc.CurrentUser(UserID(r))
	if err != nil && !errors.Is(err, auth.ErrUserNotFound) {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	backup, err := transfer.Export(h.sessions, user)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, backup)
}

// Import handles POST /data/import
func (h *TransferHandler) Import(w http.ResponseWriter, r *http.Request) {
	var backup transfer.Backup
	if err := decodeJSON(r, &backup); err != nil {
		writeError(w, http.StatusBadRequest, "invalid backup file: "+err.Error())
		return
	}

	if err := transfer.Import(h.sessions, &backup); err != nil {
		if errors.Is(err, transfer.ErrEmptyBackup) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"imported": len(backup.Sessions),
	})
}

// Wipe handles DELETE /data
func (h *TransferHandler) Wipe(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.Wipe(); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
