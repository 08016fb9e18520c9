package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/dukerupert/familist/internal/auth"
	"github.com/dukerupert/familist/internal/model"
	"github.com/dukerupert/familist/internal/store"
)

type CalendarHandler struct {
	tasks  *store.TaskStore
	events *store.FamilyEventStore
	logger *slog.Logger
}

func NewCalendarHandler(ts *store.TaskStore, es *store.FamilyEventStore, logger *slog.Logger) *CalendarHandler {
	return &CalendarHandler{tasks: ts, events: es, logger: logger}
}

// Get handles GET /api/calendar?start_date=YYYY-MM-DD&end_date=YYYY-MM-DD.
// A date-only end_date covers that whole day.
func (h *CalendarHandler) Get(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	start, err := parseFlexibleTime(q.Get("start_date"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date format. Use YYYY-MM-DD")
		return
	}
	end, err := parseFlexibleTime(q.Get("end_date"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date format. Use YYYY-MM-DD")
		return
	}
	if isDateOnly(q.Get("end_date")) {
		end = end.Add(24*time.Hour - time.Nanosecond)
	}
	if end.Before(start) {
		writeError(w, http.StatusBadRequest, "end_date must not be before start_date")
		return
	}

	familyID := auth.FamilyID(r.Context())
	tasks, err := h.tasks.ListDueBetween(familyID, start, end)
	if err != nil {
		h.logger.Error("calendar tasks", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load calendar")
		return
	}
	events, err := h.events.ListOverlapping(familyID, start, end)
	if err != nil {
		h.logger.Error("calendar events", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load calendar")
		return
	}

	calTasks := make([]model.CalendarTask, 0, len(tasks))
	for _, t := range tasks {
		calTasks = append(calTasks, model.NewCalendarTask(t))
	}
	calEvents := make([]model.CalendarEvent, 0, len(events))
	for _, e := range events {
		calEvents = append(calEvents, model.NewCalendarEvent(e))
	}

	writeJSON(w, http.StatusOK, map[string]any{"tasks": calTasks, "events": calEvents})
}
