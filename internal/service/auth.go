package service

import (
	"context"
	"fmt"

	"github.com/readsync/kosync-server/internal/logger"
	"github.com/readsync/kosync-server/internal/model"
)

// Auth decides whether an identity claim is authorized by consulting
// the user store. It is stateless and safe for concurrent use.
type Auth struct {
	userStore model.UserStore
	logger    *logger.Logger
}

// NewAuth creates a new Auth service.
func NewAuth(userStore model.UserStore, logger *logger.Logger) *Auth {
	return &Auth{
		userStore: userStore,
		logger:    logger,
	}
}

// Authenticate checks the claim in short-circuit order and returns one
// of ErrMissingCredentials, ErrUnknownUser, ErrBadSecret or nil. The
// three failure modes are never collapsed; the transport maps each to
// its own status code.
func (a *Auth) Authenticate(ctx context.Context, username, secret string) error {
	if username == "" || secret == "" {
		return model.ErrMissingCredentials
	}

	exists, err := a.userStore.Exists(ctx, username)
	if err != nil {
		a.logger.Error("Auth service: failed to check user existence",
			"username", username,
			"error", err.Error())
		return fmt.Errorf("failed to check user existence: %w", err)
	}
	if !exists {
		return model.ErrUnknownUser
	}

	matches, err := a.userStore.Matches(ctx, username, secret)
	if err != nil {
		a.logger.Error("Auth service: failed to match credentials",
			"username", username,
			"error", err.Error())
		return fmt.Errorf("failed to match credentials: %w", err)
	}
	if !matches {
		return model.ErrBadSecret
	}

	return nil
}
