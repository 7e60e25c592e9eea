package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/mkarpenko/campushub/internal/auth"
	"github.com/mkarpenko/campushub/internal/model"
	"github.com/mkarpenko/campushub/internal/store"
	ws "github.com/mkarpenko/campushub/internal/websocket"
)

type ClubHandler struct {
	clubs  *store.ClubStore
	events *store.EventStore
	hub    *ws.Hub
	logger *slog.Logger
}

func NewClubHandler(clubs *store.ClubStore, events *store.EventStore, hub *ws.Hub, logger *slog.Logger) *ClubHandler {
	return &ClubHandler{clubs: clubs, events: events, hub: hub, logger: logger}
}

func (h *ClubHandler) List(w http.ResponseWriter, r *http.Request) {
	clubs, err := h.clubs.List(r.Context())
	if err != nil {
		h.logger.Error("list clubs", "error", err)
		writeError(w, http.StatusInternalServerError, "store_unavailable", "failed to list clubs")
		return
	}
	if clubs == nil {
		clubs = []model.Club{}
	}
	writeJSON(w, http.StatusOK, clubs)
}

func (h *ClubHandler) Get(w http.ResponseWriter, r *http.Request) {
	club, err := h.clubs.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		h.logger.Error("get club", "error", err)
		writeError(w, http.StatusInternalServerError, "store_unavailable", "failed to get club")
		return
	}
	if club == nil {
		writeError(w, http.StatusNotFound, "not_found", "club not found")
		return
	}
	writeJSON(w, http.StatusOK, club)
}

func (h *ClubHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name        string `json:"name"`
		Description string `json:"description"`
		Category    string `json:"category"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "validation_error", "invalid JSON")
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "validation_error", "name is required")
		return
	}

	club, err := h.clubs.Create(r.Context(), req.Name, req.Description, req.Category, auth.UserID(r.Context()))
	if err != nil {
		if errors.Is(err, store.ErrDuplicateName) {
			writeError(w, http.StatusConflict, "duplicate_name", "a club with that name already exists")
			return
		}
		h.logger.Error("create club", "error", err)
		writeError(w, http.StatusInternalServerError, "store_unavailable", "failed to create club")
		return
	}

	h.hub.Broadcast(ws.NewMessage("club", "created", club.ID, nil))
	writeJSON(w, http.StatusCreated, club)
}

func (h *ClubHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name        string `json:"name"`
		Description string `json:"description"`
		Category    string `json:"category"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "validation_error", "invalid JSON")
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "validation_error", "name is required")
		return
	}

	club, err := h.clubs.Update(r.Context(), r.PathValue("id"), req.Name, req.Description, req.Category)
	if err != nil {
		if errors.Is(err, store.ErrDuplicateName) {
			writeError(w, http.StatusConflict, "duplicate_name", "a club with that name already exists")
			return
		}
		h.logger.Error("update club", "error", err)
		writeError(w, http.StatusInternalServerError, "store_unavailable", "failed to update club")
		return
	}
	if club == nil {
		writeError(w, http.StatusNotFound, "not_found", "club not found")
		return
	}

	h.hub.Broadcast(ws.NewMessage("club", "updated", club.ID, nil))
	writeJSON(w, http.StatusOK, club)
}

// Delete removes the club and its events.
func (h *ClubHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	if err := h.events.DeleteByClub(r.Context(), id); err != nil {
		h.logger.Error("delete club events", "error", err)
		writeError(w, http.StatusInternalServerError, "store_unavailable", "failed to delete club")
		return
	}
	if err := h.clubs.Delete(r.Context(), id); err != nil {
		h.logger.Error("delete club", "error", err)
		writeError(w, http.StatusInternalServerError, "store_unavailable", "failed to delete club")
		return
	}

	h.hub.Broadcast(ws.NewMessage("club", "deleted", id, nil))
	writeJSON(w, http.StatusOK, map[string]string{"message": "club deleted"})
}
