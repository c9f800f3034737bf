// Package service provides business logic for the application.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/userdesk/userdesk/internal/metrics"
	"github.com/userdesk/userdesk/internal/repository"
)

// Service errors.
var (
	ErrUsernameRequired = errors.New("username is required")
	ErrUserNotFound     = errors.New("user not found")
)

// UserStore is the persistent user store as seen by UserService.
type UserStore interface {
	DeleteUserByUsername(ctx context.Context, username string) (string, error)
}

// AuthInvalidator drops cached credentials of a user.
type AuthInvalidator interface {
	InvalidateUserAuthContexts(ctx context.Context, userID string) error
}

// UserService handles user business logic.
type UserService struct {
	store   UserStore
	auth    AuthInvalidator
	metrics metrics.Recorder
	logger  *slog.Logger
}

// NewUserService creates a new UserService. authCache may be nil.
func NewUserService(store UserStore, authCache AuthInvalidator, recorder metrics.Recorder, logger *slog.Logger) *UserService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &UserService{
		store:   store,
		auth:    authCache,
		metrics: recorder,
		logger:  logger,
	}
}

// DeleteUser removes the user whose username equals username exactly.
// It returns ErrUsernameRequired for an empty username without touching the
// store, and ErrUserNotFound when no record matched.
func (s *UserService) DeleteUser(ctx context.Context, username string) error {
	if username == "" {
		return ErrUsernameRequired
	}

	start := time.Now()
	userID, err := s.store.DeleteUserByUsername(ctx, username)
	s.metrics.ObserveUserDeleteDuration(time.Since(start))

	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("delete user: %w", err)
	}

	if s.auth != nil {
		// The row is already gone; a stale cache entry expires on its own.
		if err := s.auth.InvalidateUserAuthContexts(ctx, userID); err != nil {
			s.logger.Warn("failed to invalidate cached credentials",
				slog.String("user_id", userID),
				slog.String("error", err.Error()),
			)
		}
	}

	return nil
}
