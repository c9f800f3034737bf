package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/userdesk/userdesk/internal/auth"
	"github.com/userdesk/userdesk/internal/metrics"
	"github.com/userdesk/userdesk/internal/middleware"
	"github.com/userdesk/userdesk/internal/model"
	"github.com/userdesk/userdesk/internal/service"
)

// UserDeleter removes a user by exact username.
type UserDeleter interface {
	DeleteUser(ctx context.Context, username string) error
}

// UserHandler handles user management endpoints.
type UserHandler struct {
	users   UserDeleter
	metrics metrics.Recorder
	logger  *slog.Logger
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(users UserDeleter, recorder metrics.Recorder, logger *slog.Logger) *UserHandler {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &UserHandler{
		users:   users,
		metrics: recorder,
		logger:  logger,
	}
}

// Delete handles POST /auth/delete/user.
//
// Authentication and authorization have already run. Every outcome is a JSON
// {"message": ...} body: 400 when username is absent or empty, 404 when no
// user matched, 200 when one was removed, 500 on any store fault.
func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	var req model.DeleteUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Username == "" {
		h.metrics.IncUserDelete(metrics.OutcomeInvalid)
		writeMessage(w, http.StatusBadRequest, model.MsgUsernameRequired)
		return
	}

	err := h.users.DeleteUser(r.Context(), req.Username)
	switch {
	case err == nil:
		h.metrics.IncUserDelete(metrics.OutcomeDeleted)
		writeMessage(w, http.StatusOK, model.MsgUserDeleted)

	case errors.Is(err, service.ErrUserNotFound):
		h.metrics.IncUserDelete(metrics.OutcomeNotFound)
		writeMessage(w, http.StatusNotFound, model.MsgUserNotFound)

	case errors.Is(err, service.ErrUsernameRequired):
		h.metrics.IncUserDelete(metrics.OutcomeInvalid)
		writeMessage(w, http.StatusBadRequest, model.MsgUsernameRequired)

	default:
		h.metrics.IncUserDelete(metrics.OutcomeError)
		h.logger.Error("error deleting user",
			slog.String("error", err.Error()),
			slog.String("caller", auth.CallerFromContext(r.Context())),
			slog.String("request_id", middleware.GetRequestID(r.Context())),
		)
		writeMessage(w, http.StatusInternalServerError, model.MsgInternalError)
	}
}

func writeMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, model.MessageResponse{Message: message})
}
