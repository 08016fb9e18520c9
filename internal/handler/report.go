package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/dukerupert/familist/internal/auth"
	"github.com/dukerupert/familist/internal/model"
	"github.com/dukerupert/familist/internal/store"
)

// Fairness report periods and how far back each one looks.
var reportPeriods = map[string]time.Duration{
	"week":  7 * 24 * time.Hour,
	"month": 30 * 24 * time.Hour,
	"all":   0,
}

type ReportHandler struct {
	reports *store.ReportStore
	tasks   *store.TaskStore
	users   *store.UserStore
	logger  *slog.Logger
	now     func() time.Time
}

func NewReportHandler(rs *store.ReportStore, ts *store.TaskStore, us *store.UserStore, logger *slog.Logger) *ReportHandler {
	return &ReportHandler{reports: rs, tasks: ts, users: us, logger: logger, now: time.Now}
}

// Fairness handles GET /api/reports/fairness?period=week|month|all
func (h *ReportHandler) Fairness(w http.ResponseWriter, r *http.Request) {
	period := r.URL.Query().Get("period")
	if period == "" {
		period = "month"
	}
	window, ok := reportPeriods[period]
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid period")
		return
	}
	var since *time.Time
	if window > 0 {
		t := h.now().UTC().Add(-window)
		since = &t
	}

	familyID := auth.FamilyID(r.Context())
	stats, err := h.reports.Fairness(familyID, since)
	if err != nil {
		h.logger.Error("fairness report", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to build report")
		return
	}
	members, err := h.users.ListByFamily(familyID)
	if err != nil {
		h.logger.Error("list members", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to build report")
		return
	}
	if stats == nil {
		stats = []model.FairnessStat{}
	}
	if members == nil {
		members = []model.User{}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"period":  period,
		"stats":   stats,
		"members": members,
	})
}

// Open handles GET /api/reports/open
func (h *ReportHandler) Open(w http.ResponseWriter, r *http.Request) {
	familyID := auth.FamilyID(r.Context())

	unclaimed, err := h.openTasks(familyID, model.TaskStatusUnclaimed)
	if err != nil {
		h.logger.Error("open report", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to build report")
		return
	}
	inProgress, err := h.openTasks(familyID, model.TaskStatusInProgress)
	if err != nil {
		h.logger.Error("open report", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to build report")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"unclaimed":   unclaimed,
		"in_progress": inProgress,
	})
}

func (h *ReportHandler) openTasks(familyID int64, status string) ([]model.OpenTask, error) {
	tasks, err := h.tasks.ListByStatus(familyID, status)
	if err != nil {
		return nil, err
	}
	open := make([]model.OpenTask, 0, len(tasks))
	for _, t := range tasks {
		open = append(open, model.NewOpenTask(t))
	}
	return open, nil
}
