package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/dukerupert/familist/internal/auth"
	"github.com/dukerupert/familist/internal/model"
	"github.com/dukerupert/familist/internal/store"
	"github.com/dukerupert/familist/internal/websocket"
)

type FamilyHandler struct {
	broadcaster
	families *store.FamilyStore
	users    *store.UserStore
	issuer   *auth.TokenIssuer
	logger   *slog.Logger
}

func NewFamilyHandler(fs *store.FamilyStore, us *store.UserStore, issuer *auth.TokenIssuer, hub *websocket.Hub, logger *slog.Logger) *FamilyHandler {
	return &FamilyHandler{
		broadcaster: broadcaster{hub: hub},
		families:    fs,
		users:       us,
		issuer:      issuer,
		logger:      logger,
	}
}

type familyWithToken struct {
	Family *model.Family `json:"family"`
	User   *model.User   `json:"user"`
	Token  string        `json:"token"`
}

// Create handles POST /api/family/create. The caller becomes the family's
// first admin and receives a token carrying the new family id.
func (h *FamilyHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "Family name is required")
		return
	}

	userID := auth.UserID(r.Context())
	family, err := h.families.CreateWithAdmin(req.Name, userID)
	if errors.Is(err, store.ErrAlreadyInFamily) {
		writeError(w, http.StatusBadRequest, "User already belongs to a family")
		return
	}
	if err != nil {
		h.logger.Error("create family", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create family")
		return
	}

	h.respond(w, http.StatusCreated, family, userID)
}

// Join handles POST /api/family/join/{id}
func (h *FamilyHandler) Join(w http.ResponseWriter, r *http.Request) {
	familyID, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	if auth.FamilyID(r.Context()) != 0 {
		writeError(w, http.StatusBadRequest, "User already belongs to a family")
		return
	}

	family, err := h.families.GetByID(familyID)
	if err != nil {
		h.logger.Error("get family", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get family")
		return
	}
	if family == nil {
		writeError(w, http.StatusNotFound, "Family not found")
		return
	}

	userID := auth.UserID(r.Context())
	_, err = h.users.JoinFamily(userID, family.ID, model.RoleMember)
	if errors.Is(err, store.ErrAlreadyInFamily) {
		writeError(w, http.StatusBadRequest, "User already belongs to a family")
		return
	}
	if err != nil {
		h.logger.Error("join family", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to join family")
		return
	}

	h.broadcast(family.ID, "member", "joined", userID)
	h.respond(w, http.StatusOK, family, userID)
}

func (h *FamilyHandler) respond(w http.ResponseWriter, status int, family *model.Family, userID int64) {
	user, err := h.users.GetByID(userID)
	if err != nil || user == nil {
		h.logger.Error("reload user", "user_id", userID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load user")
		return
	}
	token, err := h.issuer.Issue(user.ID, user.FamilyID)
	if err != nil {
		h.logger.Error("issue token", "user_id", user.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to issue token")
		return
	}
	writeJSON(w, status, familyWithToken{Family: family, User: user, Token: token})
}

// Get handles GET /api/family
func (h *FamilyHandler) Get(w http.ResponseWriter, r *http.Request) {
	familyID := auth.FamilyID(r.Context())
	if familyID == 0 {
		writeError(w, http.StatusBadRequest, "User does not belong to a family")
		return
	}

	family, err := h.families.GetByID(familyID)
	if err != nil {
		h.logger.Error("get family", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get family")
		return
	}
	if family == nil {
		writeError(w, http.StatusNotFound, "Family not found")
		return
	}

	members, err := h.users.ListByFamily(familyID)
	if err != nil {
		h.logger.Error("list members", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list members")
		return
	}
	if members == nil {
		members = []model.User{}
	}

	writeJSON(w, http.StatusOK, map[string]any{"family": family, "members": members})
}

// List handles GET /api/family/list, the directory shown on the join screen.
func (h *FamilyHandler) List(w http.ResponseWriter, r *http.Request) {
	families, err := h.families.List()
	if err != nil {
		h.logger.Error("list families", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list families")
		return
	}
	if families == nil {
		families = []model.Family{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"families": families})
}
