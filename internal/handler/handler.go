// Package handler implements the JSON REST endpoints under /api.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/dukerupert/familist/internal/email"
	"github.com/dukerupert/familist/internal/websocket"
)

const mailTimeout = 30 * time.Second

var errInvalidTime = errors.New("invalid time")

func parseIDParam(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func decodeJSON(r *http.Request, v any) error {
	return json.NewDecoder(r.Body).Decode(v)
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	time.DateOnly,
}

// parseFlexibleTime accepts RFC 3339 timestamps as well as the zone-less
// forms produced by HTML date and datetime-local inputs, which are read as UTC.
func parseFlexibleTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, errInvalidTime
}

func isDateOnly(s string) bool {
	_, err := time.Parse(time.DateOnly, strings.TrimSpace(s))
	return err == nil
}

// broadcaster sends change notifications to a family. A nil hub disables it.
type broadcaster struct {
	hub *websocket.Hub
}

func (b broadcaster) broadcast(familyID int64, entity, action string, id int64) {
	if b.hub != nil {
		b.hub.BroadcastToFamily(familyID, websocket.NewMessage(entity, action, id, nil))
	}
}

// sendInBackground delivers msg without holding up the response. Failures
// are logged and never reach the caller.
func sendInBackground(ctx context.Context, sender email.Sender, msg email.Message, logger *slog.Logger) {
	if sender == nil || len(msg.To) == 0 {
		return
	}
	ctx = context.WithoutCancel(ctx)
	go func() {
		ctx, cancel := context.WithTimeout(ctx, mailTimeout)
		defer cancel()
		if err := sender.Send(ctx, msg); err != nil {
			logger.Error("send email", "subject", msg.Subject, "error", err)
		}
	}()
}
