package httpapi

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/alexanderramin/dayplan/internal/domain"
	"github.com/alexanderramin/dayplan/internal/service"
)

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type userPublic struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type tokenResponse struct {
	Token string     `json:"token"`
	User  userPublic `json:"user"`
}

func toUserPublic(u *domain.User) userPublic {
	return userPublic{ID: u.ID, Name: u.Name, Email: u.Email}
}

// UserHandler serves registration, login and profile lookup.
type UserHandler struct {
	users     service.UserService
	responder responder
	logger    *slog.Logger
}

func NewUserHandler(users service.UserService, logger *slog.Logger) *UserHandler {
	return &UserHandler{users: users, responder: newResponder(logger), logger: logger}
}

func (h *UserHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return handlerLogger(ctx, h.logger, "UserHandler", operation, attrs...)
}

func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req registerRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.responder.writeError(ctx, w, http.StatusBadRequest, err)
		return
	}

	res, err := h.users.Register(ctx, req.Name, req.Email, req.Password)
	if err != nil {
		h.responder.handleServiceError(ctx, w, err)
		return
	}
	h.log(ctx, "Register", "user_id", res.User.ID).InfoContext(ctx, "user registered")
	h.responder.writeJSON(ctx, w, http.StatusOK, tokenResponse{Token: res.Token, User: toUserPublic(res.User)})
}

func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.responder.writeError(ctx, w, http.StatusBadRequest, err)
		return
	}

	res, err := h.users.Login(ctx, req.Email, req.Password)
	if err != nil {
		h.responder.handleServiceError(ctx, w, err)
		return
	}
	h.responder.writeJSON(ctx, w, http.StatusOK, tokenResponse{Token: res.Token, User: toUserPublic(res.User)})
}

// Me looks a user up by the email query parameter.
func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	u, err := h.users.GetByEmail(ctx, r.URL.Query().Get("email"))
	if err != nil {
		h.responder.handleServiceError(ctx, w, err)
		return
	}
	h.responder.writeJSON(ctx, w, http.StatusOK, toUserPublic(u))
}
