package handler

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/dukerupert/familist/internal/auth"
	"github.com/dukerupert/familist/internal/model"
	"github.com/dukerupert/familist/internal/store"
	"github.com/dukerupert/familist/internal/websocket"
)

type ChatHandler struct {
	broadcaster
	chat   *store.ChatStore
	logger *slog.Logger
}

func NewChatHandler(cs *store.ChatStore, hub *websocket.Hub, logger *slog.Logger) *ChatHandler {
	return &ChatHandler{broadcaster: broadcaster{hub: hub}, chat: cs, logger: logger}
}

// ListThreads handles GET /api/chat/threads
func (h *ChatHandler) ListThreads(w http.ResponseWriter, r *http.Request) {
	threads, err := h.chat.ListThreads(auth.FamilyID(r.Context()))
	if err != nil {
		h.logger.Error("list threads", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list threads")
		return
	}
	if threads == nil {
		threads = []model.ChatThread{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"threads": threads})
}

// CreateThread handles POST /api/chat/threads
func (h *ChatHandler) CreateThread(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Title string `json:"title"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		writeError(w, http.StatusBadRequest, "Title is required")
		return
	}

	ac, _ := auth.FromContext(r.Context())
	thread, err := h.chat.CreateThread(ac.FamilyID, ac.UserID, req.Title)
	if err != nil {
		h.logger.Error("create thread", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create thread")
		return
	}

	h.broadcast(thread.FamilyID, "chat_thread", "created", thread.ID)
	writeJSON(w, http.StatusCreated, thread)
}

func (h *ChatHandler) loadThread(w http.ResponseWriter, r *http.Request) *model.ChatThread {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return nil
	}
	thread, err := h.chat.GetThread(id)
	if err != nil {
		h.logger.Error("get thread", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get thread")
		return nil
	}
	if thread == nil || thread.FamilyID != auth.FamilyID(r.Context()) {
		writeError(w, http.StatusNotFound, "Thread not found")
		return nil
	}
	return thread
}

// GetThread handles GET /api/chat/threads/{id}
func (h *ChatHandler) GetThread(w http.ResponseWriter, r *http.Request) {
	thread := h.loadThread(w, r)
	if thread == nil {
		return
	}
	messages, err := h.chat.ListMessages(thread.ID)
	if err != nil {
		h.logger.Error("list messages", "thread_id", thread.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list messages")
		return
	}
	if messages == nil {
		messages = []model.ChatMessage{}
	}
	if n := len(messages); n > 0 {
		thread.LastMessage = &messages[n-1]
	}
	writeJSON(w, http.StatusOK, map[string]any{"thread": thread, "messages": messages})
}

// SendMessage handles POST /api/chat/threads/{id}/messages
func (h *ChatHandler) SendMessage(w http.ResponseWriter, r *http.Request) {
	thread := h.loadThread(w, r)
	if thread == nil {
		return
	}

	var req struct {
		Message string `json:"message"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		writeError(w, http.StatusBadRequest, "Message is required")
		return
	}

	msg, err := h.chat.AddMessage(thread.ID, auth.UserID(r.Context()), req.Message)
	if err != nil {
		h.logger.Error("add message", "thread_id", thread.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to send message")
		return
	}

	h.broadcast(thread.FamilyID, "chat_message", "created", thread.ID)
	writeJSON(w, http.StatusCreated, msg)
}
