package handler

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/dukerupert/familist/internal/auth"
	"github.com/dukerupert/familist/internal/model"
	"github.com/dukerupert/familist/internal/store"
	"github.com/dukerupert/familist/internal/websocket"
)

type FamilyEventHandler struct {
	broadcaster
	events *store.FamilyEventStore
	logger *slog.Logger
}

func NewFamilyEventHandler(es *store.FamilyEventStore, hub *websocket.Hub, logger *slog.Logger) *FamilyEventHandler {
	return &FamilyEventHandler{broadcaster: broadcaster{hub: hub}, events: es, logger: logger}
}

type familyEventRequest struct {
	Title       string  `json:"title"`
	Description *string `json:"description"`
	StartDate   string  `json:"start_date"`
	EndDate     *string `json:"end_date"`
}

type familyEventInput struct {
	title       string
	description *string
	start       time.Time
	end         *time.Time
}

// parse validates the request. The returned message is empty on success.
func (req familyEventRequest) parse() (familyEventInput, string) {
	in := familyEventInput{title: strings.TrimSpace(req.Title), description: req.Description}
	if in.title == "" {
		return in, "Title is required"
	}
	start, err := parseFlexibleTime(req.StartDate)
	if err != nil {
		return in, "Invalid start date"
	}
	in.start = start
	if req.EndDate != nil && strings.TrimSpace(*req.EndDate) != "" {
		end, err := parseFlexibleTime(*req.EndDate)
		if err != nil {
			return in, "Invalid end date"
		}
		if end.Before(start) {
			return in, "End date must be after start date"
		}
		in.end = &end
	}
	return in, ""
}

// List handles GET /api/family-events
func (h *FamilyEventHandler) List(w http.ResponseWriter, r *http.Request) {
	events, err := h.events.ListByFamily(auth.FamilyID(r.Context()))
	if err != nil {
		h.logger.Error("list family events", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list events")
		return
	}
	if events == nil {
		events = []model.FamilyEvent{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"events": events})
}

// Create handles POST /api/family-events
func (h *FamilyEventHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req familyEventRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	in, msg := req.parse()
	if msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	ac, _ := auth.FromContext(r.Context())
	event, err := h.events.Create(ac.FamilyID, ac.UserID, in.title, in.description, in.start, in.end)
	if err != nil {
		h.logger.Error("create family event", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create event")
		return
	}

	h.broadcast(event.FamilyID, "family_event", "created", event.ID)
	writeJSON(w, http.StatusCreated, event)
}

func (h *FamilyEventHandler) load(w http.ResponseWriter, r *http.Request) *model.FamilyEvent {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return nil
	}
	event, err := h.events.GetByID(id)
	if err != nil {
		h.logger.Error("get family event", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get event")
		return nil
	}
	// Events of other families are reported as missing.
	if event == nil || event.FamilyID != auth.FamilyID(r.Context()) {
		writeError(w, http.StatusNotFound, "Event not found")
		return nil
	}
	return event
}

// Update handles PUT /api/family-events/{id}
func (h *FamilyEventHandler) Update(w http.ResponseWriter, r *http.Request) {
	existing := h.load(w, r)
	if existing == nil {
		return
	}

	var req familyEventRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	in, msg := req.parse()
	if msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	event, err := h.events.Update(existing.ID, in.title, in.description, in.start, in.end)
	if err != nil {
		h.logger.Error("update family event", "id", existing.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to update event")
		return
	}

	h.broadcast(event.FamilyID, "family_event", "updated", event.ID)
	writeJSON(w, http.StatusOK, event)
}

// Delete handles DELETE /api/family-events/{id}
func (h *FamilyEventHandler) Delete(w http.ResponseWriter, r *http.Request) {
	existing := h.load(w, r)
	if existing == nil {
		return
	}
	if err := h.events.Delete(existing.ID); err != nil {
		h.logger.Error("delete family event", "id", existing.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to delete event")
		return
	}

	h.broadcast(existing.FamilyID, "family_event", "deleted", existing.ID)
	w.WriteHeader(http.StatusNoContent)
}
