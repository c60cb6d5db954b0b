package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/alexanderramin/dayplan/internal/service"
)

var (
	errBadRequestBody = errors.New("invalid request body")
	errBadIndex       = errors.New("event index must be an integer")
)

type errorResponse struct {
	Detail string `json:"detail"`
}

type responder struct {
	logger *slog.Logger
}

func newResponder(logger *slog.Logger) responder {
	if logger == nil {
		logger = slog.Default()
	}
	return responder{logger: logger}
}

func (r responder) writeJSON(ctx context.Context, w http.ResponseWriter, status int, payload any) {
	if payload == nil {
		w.WriteHeader(status)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		r.loggerFor(ctx).ErrorContext(ctx, "failed to encode response", "error", err)
	}
}

// writeError sends {"detail": err} with status. Server faults are logged at
// error level, client faults at debug.
func (r responder) writeError(ctx context.Context, w http.ResponseWriter, status int, err error) {
	detail := http.StatusText(status)
	if err != nil {
		detail = err.Error()
	}
	if status >= http.StatusInternalServerError {
		r.loggerFor(ctx).ErrorContext(ctx, "request failed", "status", status, "error", err)
	} else {
		r.loggerFor(ctx).DebugContext(ctx, "request rejected", "status", status, "error", err)
	}
	r.writeJSON(ctx, w, status, errorResponse{Detail: detail})
}

// handleServiceError maps service sentinels onto status codes.
func (r responder) handleServiceError(ctx context.Context, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidInput):
		r.writeError(ctx, w, http.StatusBadRequest, err)
	case errors.Is(err, service.ErrInvalidCredentials):
		r.writeError(ctx, w, http.StatusUnauthorized, err)
	case errors.Is(err, service.ErrUserNotFound), errors.Is(err, service.ErrIndexOutOfRange):
		r.writeError(ctx, w, http.StatusNotFound, err)
	case errors.Is(err, service.ErrEmailTaken):
		r.writeError(ctx, w, http.StatusConflict, err)
	default:
		r.writeError(ctx, w, http.StatusInternalServerError, err)
	}
}

func (r responder) loggerFor(ctx context.Context) *slog.Logger {
	if logger := LoggerFromContext(ctx); logger != nil {
		return logger
	}
	return r.logger
}

// decodeJSON reads a single JSON document from the request body.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("%w: %v", errBadRequestBody, err)
	}
	return nil
}

const maxBodyBytes = 1 << 20
