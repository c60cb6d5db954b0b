package httpapi

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/alexanderramin/dayplan/internal/domain"
	"github.com/alexanderramin/dayplan/internal/service"
)

type generateRequest struct {
	Prompt string `json:"prompt"`
	UserID string `json:"user_id,omitempty"`
}

type generateResponse struct {
	Events  []domain.Event `json:"events"`
	Summary string         `json:"summary"`
	Saved   int            `json:"saved,omitempty"`
}

type aiRequest struct {
	UserText string `json:"user_text"`
}

// GenerateHandler serves the schedule generation endpoints.
type GenerateHandler struct {
	planner   service.PlannerService
	responder responder
	logger    *slog.Logger
}

func NewGenerateHandler(planner service.PlannerService, logger *slog.Logger) *GenerateHandler {
	return &GenerateHandler{planner: planner, responder: newResponder(logger), logger: logger}
}

func (h *GenerateHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return handlerLogger(ctx, h.logger, "GenerateHandler", operation, attrs...)
}

// Chat turns free text into events. With a user_id the events are also
// stored in that user's list.
func (h *GenerateHandler) Chat(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req generateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.responder.writeError(ctx, w, http.StatusBadRequest, err)
		return
	}

	if req.UserID == "" {
		res, err := h.planner.Plan(ctx, req.Prompt)
		if err != nil {
			h.responder.handleServiceError(ctx, w, err)
			return
		}
		h.log(ctx, "Chat", "source", res.Source, "events", len(res.Events)).InfoContext(ctx, "schedule generated")
		h.responder.writeJSON(ctx, w, http.StatusOK, generateResponse{Events: res.Events, Summary: res.Summary})
		return
	}

	out, err := h.planner.PlanAndSave(ctx, req.UserID, req.Prompt)
	if err != nil {
		h.responder.handleServiceError(ctx, w, err)
		return
	}
	h.log(ctx, "Chat", "source", out.Result.Source, "events", len(out.Result.Events), "user_id", req.UserID).
		InfoContext(ctx, "schedule generated and saved")
	h.responder.writeJSON(ctx, w, http.StatusOK, generateResponse{
		Events:  out.Result.Events,
		Summary: out.Result.Summary,
		Saved:   len(out.Saved),
	})
}

// Single answers with the first generated event only.
func (h *GenerateHandler) Single(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req aiRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.responder.writeError(ctx, w, http.StatusBadRequest, err)
		return
	}

	res, err := h.planner.Plan(ctx, req.UserText)
	if err != nil {
		h.responder.handleServiceError(ctx, w, err)
		return
	}
	h.responder.writeJSON(ctx, w, http.StatusOK, res.Events[0])
}
