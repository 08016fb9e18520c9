package handler

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/dukerupert/familist/internal/auth"
	"github.com/dukerupert/familist/internal/model"
	"github.com/dukerupert/familist/internal/store"
	"github.com/dukerupert/familist/internal/websocket"
)

// A month in the care-record filter is a flat 30 days.
const careMonth = 30 * 24 * time.Hour

type CareEventHandler struct {
	broadcaster
	events *store.CareEventStore
	logger *slog.Logger
	now    func() time.Time
}

func NewCareEventHandler(es *store.CareEventStore, hub *websocket.Hub, logger *slog.Logger) *CareEventHandler {
	return &CareEventHandler{
		broadcaster: broadcaster{hub: hub},
		events:      es,
		logger:      logger,
		now:         time.Now,
	}
}

// List handles GET /api/events?months=1&subject=
func (h *CareEventHandler) List(w http.ResponseWriter, r *http.Request) {
	months := 1
	if v := r.URL.Query().Get("months"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "months must be a positive integer")
			return
		}
		months = n
	}
	since := h.now().UTC().Add(-time.Duration(months) * careMonth)
	subject := strings.TrimSpace(r.URL.Query().Get("subject"))

	events, err := h.events.ListSince(auth.FamilyID(r.Context()), since, subject)
	if err != nil {
		h.logger.Error("list care events", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list events")
		return
	}
	if events == nil {
		events = []model.CareEvent{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"events": events})
}

// Create handles POST /api/events
func (h *CareEventHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Subject     string  `json:"subject"`
		OccurredAt  string  `json:"occurred_at"`
		Severity    string  `json:"severity"`
		Category    *string `json:"category"`
		Description string  `json:"description"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	req.Subject = strings.TrimSpace(req.Subject)
	req.Severity = strings.TrimSpace(req.Severity)
	req.Description = strings.TrimSpace(req.Description)
	if req.Subject == "" || req.Severity == "" || req.Description == "" {
		writeError(w, http.StatusBadRequest, "subject, severity and description are required")
		return
	}
	occurredAt, err := parseFlexibleTime(req.OccurredAt)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid occurred_at")
		return
	}
	if req.Category != nil && strings.TrimSpace(*req.Category) == "" {
		req.Category = nil
	}

	ac, _ := auth.FromContext(r.Context())
	event, err := h.events.Create(ac.FamilyID, ac.UserID, req.Subject, occurredAt, req.Severity, req.Category, req.Description)
	if err != nil {
		h.logger.Error("create care event", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create event")
		return
	}

	h.broadcast(event.FamilyID, "care_event", "created", event.ID)
	writeJSON(w, http.StatusCreated, event)
}
