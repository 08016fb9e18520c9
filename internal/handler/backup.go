package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/dukerupert/familist/internal/auth"
	"github.com/dukerupert/familist/internal/backup"
	"github.com/dukerupert/familist/internal/model"
	"github.com/dukerupert/familist/internal/store"
)

const backupHistoryLimit = 20

type BackupHandler struct {
	backups *store.BackupStore
	manager *backup.Manager
	logger  *slog.Logger
}

func NewBackupHandler(bs *store.BackupStore, mgr *backup.Manager, logger *slog.Logger) *BackupHandler {
	return &BackupHandler{backups: bs, manager: mgr, logger: logger}
}

// List handles GET /api/admin/backups
func (h *BackupHandler) List(w http.ResponseWriter, r *http.Request) {
	backups, err := h.backups.List(backupHistoryLimit)
	if err != nil {
		h.logger.Error("list backups", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list backups")
		return
	}
	if backups == nil {
		backups = []model.Backup{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  h.manager.Status(),
		"backups": backups,
	})
}

// Run handles POST /api/admin/backups and takes a snapshot immediately.
func (h *BackupHandler) Run(w http.ResponseWriter, r *http.Request) {
	admin := auth.UserID(r.Context())
	b, err := h.manager.RunNow(r.Context(), &admin)
	if errors.Is(err, backup.ErrDisabled) {
		writeError(w, http.StatusConflict, "Backups are not configured")
		return
	}
	if err != nil {
		h.logger.Error("manual backup", "error", err)
		writeError(w, http.StatusInternalServerError, "backup failed")
		return
	}
	writeJSON(w, http.StatusCreated, b)
}
