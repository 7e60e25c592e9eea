package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/mkarpenko/campushub/internal/model"
	"github.com/mkarpenko/campushub/internal/store"
	ws "github.com/mkarpenko/campushub/internal/websocket"
)

type EventHandler struct {
	events *store.EventStore
	clubs  *store.ClubStore
	hub    *ws.Hub
	logger *slog.Logger
}

func NewEventHandler(events *store.EventStore, clubs *store.ClubStore, hub *ws.Hub, logger *slog.Logger) *EventHandler {
	return &EventHandler{events: events, clubs: clubs, hub: hub, logger: logger}
}

type eventRequest struct {
	Title    string    `json:"title"`
	Details  string    `json:"details"`
	Venue    string    `json:"venue"`
	StartsAt time.Time `json:"starts_at"`
}

func (req *eventRequest) validate() string {
	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		return "title is required"
	}
	if req.StartsAt.IsZero() {
		return "starts_at is required"
	}
	return ""
}

func (h *EventHandler) ListByClub(w http.ResponseWriter, r *http.Request) {
	clubID := r.PathValue("id")

	club, err := h.clubs.GetByID(r.Context(), clubID)
	if err != nil {
		h.logger.Error("get club", "error", err)
		writeError(w, http.StatusInternalServerError, "store_unavailable", "failed to list events")
		return
	}
	if club == nil {
		writeError(w, http.StatusNotFound, "not_found", "club not found")
		return
	}

	events, err := h.events.ListByClub(r.Context(), clubID)
	if err != nil {
		h.logger.Error("list events", "error", err)
		writeError(w, http.StatusInternalServerError, "store_unavailable", "failed to list events")
		return
	}
	if events == nil {
		events = []model.ClubEvent{}
	}
	writeJSON(w, http.StatusOK, events)
}

func (h *EventHandler) Create(w http.ResponseWriter, r *http.Request) {
	clubID := r.PathValue("id")

	var req eventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "validation_error", "invalid JSON")
		return
	}
	if msg := req.validate(); msg != "" {
		writeError(w, http.StatusBadRequest, "validation_error", msg)
		return
	}

	club, err := h.clubs.GetByID(r.Context(), clubID)
	if err != nil {
		h.logger.Error("get club", "error", err)
		writeError(w, http.StatusInternalServerError, "store_unavailable", "failed to create event")
		return
	}
	if club == nil {
		writeError(w, http.StatusNotFound, "not_found", "club not found")
		return
	}

	event, err := h.events.Create(r.Context(), clubID, req.Title, req.Details, req.Venue, req.StartsAt)
	if err != nil {
		h.logger.Error("create event", "error", err)
		writeError(w, http.StatusInternalServerError, "store_unavailable", "failed to create event")
		return
	}

	h.hub.Broadcast(ws.NewMessage("event", "created", event.ID, nil))
	writeJSON(w, http.StatusCreated, event)
}

func (h *EventHandler) Get(w http.ResponseWriter, r *http.Request) {
	event, err := h.events.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		h.logger.Error("get event", "error", err)
		writeError(w, http.StatusInternalServerError, "store_unavailable", "failed to get event")
		return
	}
	if event == nil {
		writeError(w, http.StatusNotFound, "not_found", "event not found")
		return
	}
	writeJSON(w, http.StatusOK, event)
}

func (h *EventHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req eventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "validation_error", "invalid JSON")
		return
	}
	if msg := req.validate(); msg != "" {
		writeError(w, http.StatusBadRequest, "validation_error", msg)
		return
	}

	event, err := h.events.Update(r.Context(), r.PathValue("id"), req.Title, req.Details, req.Venue, req.StartsAt)
	if err != nil {
		h.logger.Error("update event", "error", err)
		writeError(w, http.StatusInternalServerError, "store_unavailable", "failed to update event")
		return
	}
	if event == nil {
		writeError(w, http.StatusNotFound, "not_found", "event not found")
		return
	}

	h.hub.Broadcast(ws.NewMessage("event", "updated", event.ID, nil))
	writeJSON(w, http.StatusOK, event)
}

func (h *EventHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	if err := h.events.Delete(r.Context(), id); err != nil {
		h.logger.Error("delete event", "error", err)
		writeError(w, http.StatusInternalServerError, "store_unavailable", "failed to delete event")
		return
	}

	h.hub.Broadcast(ws.NewMessage("event", "deleted", id, nil))
	writeJSON(w, http.StatusOK, map[string]string{"message": "event deleted"})
}
