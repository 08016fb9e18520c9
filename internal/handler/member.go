package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/dukerupert/familist/internal/auth"
	"github.com/dukerupert/familist/internal/email"
	"github.com/dukerupert/familist/internal/model"
	"github.com/dukerupert/familist/internal/store"
	"github.com/dukerupert/familist/internal/websocket"
)

type MemberHandler struct {
	broadcaster
	users    *store.UserStore
	families *store.FamilyStore
	mailer   email.Sender
	logger   *slog.Logger
}

func NewMemberHandler(us *store.UserStore, fs *store.FamilyStore, mailer email.Sender, hub *websocket.Hub, logger *slog.Logger) *MemberHandler {
	return &MemberHandler{
		broadcaster: broadcaster{hub: hub},
		users:       us,
		families:    fs,
		mailer:      mailer,
		logger:      logger,
	}
}

// List handles GET /api/members
func (h *MemberHandler) List(w http.ResponseWriter, r *http.Request) {
	members, err := h.users.ListByFamily(auth.FamilyID(r.Context()))
	if err != nil {
		h.logger.Error("list members", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list members")
		return
	}
	if members == nil {
		members = []model.User{}
	}
	writeJSON(w, http.StatusOK, members)
}

// Add handles POST /api/members. The account is created with a random
// temporary password which is mailed to the new member.
func (h *MemberHandler) Add(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
		Name  string `json:"name"`
		Role  string `json:"role"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	req.Email = store.NormalizeEmail(req.Email)
	if !validEmail(req.Email) {
		writeError(w, http.StatusBadRequest, "A valid email is required")
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "Name is required")
		return
	}
	if req.Role == "" {
		req.Role = model.RoleMember
	}
	req.Role = strings.ToUpper(req.Role)
	if !model.ValidRole(req.Role) {
		writeError(w, http.StatusBadRequest, "Invalid role")
		return
	}

	tempPassword, err := auth.TemporaryPassword()
	if err != nil {
		h.logger.Error("generate password", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to add member")
		return
	}
	hash, err := auth.HashPassword(tempPassword)
	if err != nil {
		h.logger.Error("hash password", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to add member")
		return
	}

	familyID := auth.FamilyID(r.Context())
	member, err := h.users.CreateInFamily(familyID, req.Email, hash, req.Name, req.Role)
	if errors.Is(err, store.ErrEmailTaken) {
		writeError(w, http.StatusBadRequest, "Email already registered")
		return
	}
	if err != nil {
		h.logger.Error("create member", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to add member")
		return
	}

	h.sendInvite(r, familyID, member, tempPassword)
	h.broadcast(familyID, "member", "created", member.ID)

	writeJSON(w, http.StatusCreated, member)
}

func (h *MemberHandler) sendInvite(r *http.Request, familyID int64, member *model.User, tempPassword string) {
	familyName := "your"
	if family, err := h.families.GetByID(familyID); err == nil && family != nil {
		familyName = family.Name
	}
	inviterName := "A family admin"
	if inviter, err := h.users.GetByID(auth.UserID(r.Context())); err == nil && inviter != nil {
		inviterName = inviter.Name
	}

	subject, body := email.MemberInvite(familyName, inviterName, member.Email, tempPassword)
	sendInBackground(r.Context(), h.mailer, email.Message{
		To:      []string{member.Email},
		Subject: subject,
		Text:    body,
	}, h.logger)
}

// UpdateRole handles PATCH /api/members/{id}/role
func (h *MemberHandler) UpdateRole(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	var req struct {
		Role string `json:"role"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	req.Role = strings.ToUpper(strings.TrimSpace(req.Role))
	if !model.ValidRole(req.Role) {
		writeError(w, http.StatusBadRequest, "Invalid role")
		return
	}

	familyID := auth.FamilyID(r.Context())
	member, err := h.users.GetByID(id)
	if err != nil {
		h.logger.Error("get member", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get member")
		return
	}
	if member == nil || member.FamilyID == nil || *member.FamilyID != familyID {
		writeError(w, http.StatusNotFound, "Member not found")
		return
	}

	if member.Role == model.RoleAdmin && req.Role != model.RoleAdmin {
		admins, err := h.users.CountAdmins(familyID)
		if err != nil {
			h.logger.Error("count admins", "error", err)
			writeError(w, http.StatusInternalServerError, "failed to update role")
			return
		}
		if admins <= 1 {
			writeError(w, http.StatusBadRequest, "A family must keep at least one admin")
			return
		}
	}

	updated, err := h.users.UpdateRole(id, req.Role)
	if err != nil {
		h.logger.Error("update role", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to update role")
		return
	}

	h.broadcast(familyID, "member", "updated", id)
	writeJSON(w, http.StatusOK, updated)
}
