package httpapi

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/alexanderramin/dayplan/internal/service"
)

type addEventRequest struct {
	UserID string `json:"user_id"`
	VEvent string `json:"vevent"`
}

type updateEventRequest struct {
	VEvent string `json:"vevent"`
}

type eventItem struct {
	Index  int    `json:"index"`
	VEvent string `json:"vevent"`
	Source string `json:"source,omitempty"`
}

type listEventsResponse struct {
	Events []eventItem `json:"events"`
}

type statusResponse struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// EventHandler serves a user's stored calendar blobs.
type EventHandler struct {
	events    service.EventService
	responder responder
}

func NewEventHandler(events service.EventService, logger *slog.Logger) *EventHandler {
	return &EventHandler{events: events, responder: newResponder(logger)}
}

func (h *EventHandler) Add(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req addEventRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.responder.writeError(ctx, w, http.StatusBadRequest, err)
		return
	}
	if _, err := h.events.Append(ctx, req.UserID, req.VEvent); err != nil {
		h.responder.handleServiceError(ctx, w, err)
		return
	}
	h.responder.writeJSON(ctx, w, http.StatusOK, statusResponse{Status: "ok", Message: "Event added"})
}

func (h *EventHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	blobs, err := h.events.List(ctx, r.URL.Query().Get("user_id"))
	if err != nil {
		h.responder.handleServiceError(ctx, w, err)
		return
	}
	items := make([]eventItem, 0, len(blobs))
	for _, b := range blobs {
		items = append(items, eventItem{Index: b.Index, VEvent: b.Payload, Source: string(b.Source)})
	}
	h.responder.writeJSON(ctx, w, http.StatusOK, listEventsResponse{Events: items})
}

func (h *EventHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	index, err := strconv.Atoi(r.PathValue("index"))
	if err != nil {
		h.responder.writeError(ctx, w, http.StatusBadRequest, errBadIndex)
		return
	}
	var req updateEventRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.responder.writeError(ctx, w, http.StatusBadRequest, err)
		return
	}
	if err := h.events.Update(ctx, r.URL.Query().Get("user_id"), index, req.VEvent); err != nil {
		h.responder.handleServiceError(ctx, w, err)
		return
	}
	h.responder.writeJSON(ctx, w, http.StatusOK, statusResponse{Status: "ok"})
}

func (h *EventHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	index, err := strconv.Atoi(r.PathValue("index"))
	if err != nil {
		h.responder.writeError(ctx, w, http.StatusBadRequest, errBadIndex)
		return
	}
	if err := h.events.Delete(ctx, r.URL.Query().Get("user_id"), index); err != nil {
		h.responder.handleServiceError(ctx, w, err)
		return
	}
	h.responder.writeJSON(ctx, w, http.StatusOK, statusResponse{Status: "ok"})
}
