package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/dukerupert/familist/internal/auth"
	"github.com/dukerupert/familist/internal/email"
	"github.com/dukerupert/familist/internal/model"
	"github.com/dukerupert/familist/internal/store"
	"github.com/dukerupert/familist/internal/websocket"
)

type TaskHandler struct {
	broadcaster
	tasks  *store.TaskStore
	users  *store.UserStore
	mailer email.Sender
	logger *slog.Logger
}

func NewTaskHandler(ts *store.TaskStore, us *store.UserStore, mailer email.Sender, hub *websocket.Hub, logger *slog.Logger) *TaskHandler {
	return &TaskHandler{
		broadcaster: broadcaster{hub: hub},
		tasks:       ts,
		users:       us,
		mailer:      mailer,
		logger:      logger,
	}
}

func taskResponse(t *model.Task) map[string]any {
	return map[string]any{"task": t}
}

// List handles GET /api/tasks
func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	tasks, err := h.tasks.ListByFamily(auth.FamilyID(r.Context()))
	if err != nil {
		h.logger.Error("list tasks", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list tasks")
		return
	}
	if tasks == nil {
		tasks = []model.Task{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"tasks": tasks})
}

// Create handles POST /api/tasks
func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Title       string  `json:"title"`
		Description string  `json:"description"`
		Priority    string  `json:"priority"`
		DueDate     *string `json:"dueDate"`
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
	if req.Priority == "" {
		req.Priority = model.PriorityMedium
	}
	if !model.ValidPriority(req.Priority) {
		writeError(w, http.StatusBadRequest, "Invalid priority")
		return
	}

	var due *time.Time
	if req.DueDate != nil && strings.TrimSpace(*req.DueDate) != "" {
		t, err := parseFlexibleTime(*req.DueDate)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid due date")
			return
		}
		due = &t
	}

	ac, _ := auth.FromContext(r.Context())
	task, err := h.tasks.Create(ac.FamilyID, ac.UserID, req.Title, req.Description, req.Priority, due)
	if err != nil {
		h.logger.Error("create task", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create task")
		return
	}

	h.notifyFamily(r, task)
	h.broadcast(task.FamilyID, "task", "created", task.ID)

	writeJSON(w, http.StatusCreated, taskResponse(task))
}

// notifyFamily emails every member about a new task.
func (h *TaskHandler) notifyFamily(r *http.Request, task *model.Task) {
	members, err := h.users.ListByFamily(task.FamilyID)
	if err != nil {
		h.logger.Error("list members for task email", "task_id", task.ID, "error", err)
		return
	}
	to := make([]string, 0, len(members))
	for _, m := range members {
		if m.Email != "" {
			to = append(to, m.Email)
		}
	}
	subject, body := email.TaskCreated(task.Title, task.CreatorName)
	sendInBackground(r.Context(), h.mailer, email.Message{To: to, Subject: subject, Text: body}, h.logger)
}

// loadTask resolves the {id} path parameter to a task in the caller's
// family. It writes the error response and returns nil on failure.
func (h *TaskHandler) loadTask(w http.ResponseWriter, r *http.Request) *model.Task {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return nil
	}
	task, err := h.tasks.GetByID(id)
	if err != nil {
		h.logger.Error("get task", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get task")
		return nil
	}
	if task == nil {
		writeError(w, http.StatusNotFound, "Task not found")
		return nil
	}
	if task.FamilyID != auth.FamilyID(r.Context()) {
		writeError(w, http.StatusForbidden, "Access denied")
		return nil
	}
	return task
}

// Update handles PATCH /api/tasks/{id}. Empty title or priority keep the
// current value. dueDate: null clears it, "" or absent keeps it.
func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	task := h.loadTask(w, r)
	if task == nil {
		return
	}

	var req struct {
		Title       string          `json:"title"`
		Description *string         `json:"description"`
		Priority    string          `json:"priority"`
		DueDate     json.RawMessage `json:"dueDate"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	title := task.Title
	if t := strings.TrimSpace(req.Title); t != "" {
		title = t
	}
	description := task.Description
	if req.Description != nil {
		description = *req.Description
	}
	priority := task.Priority
	if req.Priority != "" {
		if !model.ValidPriority(req.Priority) {
			writeError(w, http.StatusBadRequest, "Invalid priority")
			return
		}
		priority = req.Priority
	}
	due, err := patchDueDate(task.DueDate, req.DueDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid due date")
		return
	}

	updated, err := h.tasks.Update(task.ID, title, description, priority, due)
	if err != nil {
		h.logger.Error("update task", "id", task.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to update task")
		return
	}

	h.broadcast(updated.FamilyID, "task", "updated", updated.ID)
	writeJSON(w, http.StatusOK, taskResponse(updated))
}

func patchDueDate(current *time.Time, raw json.RawMessage) (*time.Time, error) {
	if len(raw) == 0 {
		return current, nil
	}
	if bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return nil, nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, err
	}
	if strings.TrimSpace(s) == "" {
		return current, nil
	}
	t, err := parseFlexibleTime(s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// Volunteer handles POST /api/tasks/{id}/volunteer
func (h *TaskHandler) Volunteer(w http.ResponseWriter, r *http.Request) {
	task := h.loadTask(w, r)
	if task == nil {
		return
	}
	if task.Status != model.TaskStatusUnclaimed {
		writeError(w, http.StatusBadRequest, "Task is not available")
		return
	}

	updated, err := h.tasks.Volunteer(task.ID, auth.UserID(r.Context()))
	if errors.Is(err, store.ErrTaskUnavailable) {
		// Another member claimed it first.
		writeError(w, http.StatusBadRequest, "Task is not available")
		return
	}
	if err != nil {
		h.logger.Error("volunteer", "id", task.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to volunteer")
		return
	}

	h.broadcast(updated.FamilyID, "task", "volunteered", updated.ID)
	writeJSON(w, http.StatusOK, taskResponse(updated))
}

// Unvolunteer handles POST /api/tasks/{id}/unvolunteer
func (h *TaskHandler) Unvolunteer(w http.ResponseWriter, r *http.Request) {
	task := h.loadTask(w, r)
	if task == nil {
		return
	}
	userID := auth.UserID(r.Context())
	if task.VolunteerID == nil || *task.VolunteerID != userID {
		writeError(w, http.StatusForbidden, "Not your task")
		return
	}

	updated, err := h.tasks.Unvolunteer(task.ID, userID)
	if errors.Is(err, store.ErrNotVolunteer) {
		writeError(w, http.StatusForbidden, "Not your task")
		return
	}
	if err != nil {
		h.logger.Error("unvolunteer", "id", task.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to unvolunteer")
		return
	}

	h.broadcast(updated.FamilyID, "task", "unvolunteered", updated.ID)
	writeJSON(w, http.StatusOK, taskResponse(updated))
}

// Complete handles POST /api/tasks/{id}/complete
func (h *TaskHandler) Complete(w http.ResponseWriter, r *http.Request) {
	task := h.loadTask(w, r)
	if task == nil {
		return
	}
	userID := auth.UserID(r.Context())
	if task.VolunteerID == nil || *task.VolunteerID != userID {
		writeError(w, http.StatusForbidden, "Not your task")
		return
	}
	if task.Status != model.TaskStatusInProgress {
		writeError(w, http.StatusBadRequest, "Task is not in progress")
		return
	}

	updated, err := h.tasks.Complete(task.ID, userID)
	if errors.Is(err, store.ErrNotVolunteer) {
		writeError(w, http.StatusBadRequest, "Task is not in progress")
		return
	}
	if err != nil {
		h.logger.Error("complete", "id", task.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to complete task")
		return
	}

	h.broadcast(updated.FamilyID, "task", "completed", updated.ID)
	writeJSON(w, http.StatusOK, taskResponse(updated))
}

// Reassign handles POST /api/tasks/{id}/reassign. A null volunteerId
// returns the task to unclaimed.
func (h *TaskHandler) Reassign(w http.ResponseWriter, r *http.Request) {
	task := h.loadTask(w, r)
	if task == nil {
		return
	}

	var req struct {
		VolunteerID *int64 `json:"volunteerId"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	if req.VolunteerID != nil {
		member, err := h.users.GetByID(*req.VolunteerID)
		if err != nil {
			h.logger.Error("get volunteer", "error", err)
			writeError(w, http.StatusInternalServerError, "failed to reassign task")
			return
		}
		if member == nil || member.FamilyID == nil || *member.FamilyID != task.FamilyID {
			writeError(w, http.StatusBadRequest, "Invalid volunteer")
			return
		}
	}

	updated, err := h.tasks.Reassign(task.ID, auth.UserID(r.Context()), req.VolunteerID)
	if err != nil {
		h.logger.Error("reassign", "id", task.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to reassign task")
		return
	}

	h.broadcast(updated.FamilyID, "task", "reassigned", updated.ID)
	writeJSON(w, http.StatusOK, taskResponse(updated))
}

// History handles GET /api/tasks/{id}/history
func (h *TaskHandler) History(w http.ResponseWriter, r *http.Request) {
	task := h.loadTask(w, r)
	if task == nil {
		return
	}
	history, err := h.tasks.ListHistory(task.ID)
	if err != nil {
		h.logger.Error("task history", "id", task.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load history")
		return
	}
	if history == nil {
		history = []model.TaskHistory{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"history": history})
}
