package service

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/readsync/kosync-server/internal/logger"
	"github.com/readsync/kosync-server/internal/model"
)

// SyncConfig contains deployment policy flags for the sync protocol.
type SyncConfig struct {
	// OpenRegistrations gates Register; when false every registration
	// attempt fails with ErrRegistrationClosed.
	OpenRegistrations bool
	// RandomDeviceID makes GetProgress return a freshly generated
	// device id instead of the stored one. The stored record is never
	// touched.
	RandomDeviceID bool
}

// Sync implements the progress synchronization protocol: registration,
// last-write-wins progress updates and progress retrieval. Every
// document operation is gated behind the auth guard.
type Sync struct {
	auth          *Auth
	userStore     model.UserStore
	progressStore model.ProgressStore
	config        SyncConfig
	logger        *logger.Logger

	now func() time.Time
}

// NewSync creates a new Sync service.
func NewSync(
	auth *Auth,
	userStore model.UserStore,
	progressStore model.ProgressStore,
	config SyncConfig,
	logger *logger.Logger,
) *Sync {
	return &Sync{
		auth:          auth,
		userStore:     userStore,
		progressStore: progressStore,
		config:        config,
		logger:        logger,
		now:           time.Now,
	}
}

// Register creates a new credential record and returns the username.
func (s *Sync) Register(ctx context.Context, username, password *string) (string, error) {
	if !s.config.OpenRegistrations {
		return "", model.ErrRegistrationClosed
	}

	if username == nil || password == nil || *username == "" || *password == "" {
		return "", model.ErrInvalidRequest
	}

	s.logger.Debug("Sync service: registering user",
		"username", *username)

	err := s.userStore.Create(ctx, model.User{Username: *username, Password: *password})
	if err != nil {
		if errors.Is(err, model.ErrDuplicateUser) {
			s.logger.Info("Sync service: username already registered",
				"username", *username)
			return "", err
		}
		s.logger.Error("Sync service: failed to create user",
			"username", *username,
			"error", err.Error())
		return "", fmt.Errorf("failed to create user: %w", err)
	}

	s.logger.Info("Sync service: user registered",
		"username", *username)

	return *username, nil
}

// Authorize is a read-only credential probe. It delegates to the auth
// guard and returns its outcome unchanged.
func (s *Sync) Authorize(ctx context.Context, claim model.Claim) error {
	return s.auth.Authenticate(ctx, claim.Username, claim.Secret)
}

// UpdateProgress replaces the progress record for (claim.Username,
// document) wholesale and returns the document with the server-assigned
// timestamp. The prior record's timestamp is never consulted: last
// write wins on the server clock regardless of client clock skew.
func (s *Sync) UpdateProgress(ctx context.Context, claim model.Claim, payload model.DocumentPayload) (string, int64, error) {
	if err := s.auth.Authenticate(ctx, claim.Username, claim.Secret); err != nil {
		return "", 0, err
	}

	if payload.Document == nil || *payload.Document == "" ||
		payload.Progress == nil || *payload.Progress == "" ||
		payload.Percentage == nil ||
		payload.Device == nil || *payload.Device == "" ||
		payload.DeviceID == nil || *payload.DeviceID == "" {
		return "", 0, model.ErrIncompleteDocument
	}

	timestamp := s.now().Unix()

	progress := model.Progress{
		Username:   claim.Username,
		Document:   *payload.Document,
		Position:   *payload.Progress,
		Percentage: *payload.Percentage,
		Device:     *payload.Device,
		DeviceID:   *payload.DeviceID,
		Timestamp:  timestamp,
	}

	if err := s.progressStore.Upsert(ctx, progress); err != nil {
		s.logger.Error("Sync service: failed to upsert progress",
			"username", claim.Username,
			"document", progress.Document,
			"error", err.Error())
		return "", 0, fmt.Errorf("failed to upsert progress: %w", err)
	}

	s.logger.Info("Sync service: progress updated",
		"username", claim.Username,
		"document", progress.Document,
		"timestamp", timestamp)

	return progress.Document, timestamp, nil
}

// GetProgress returns the stored progress record for (claim.Username,
// document). With RandomDeviceID enabled the returned device id is
// replaced with a fresh one; the stored value is left untouched.
func (s *Sync) GetProgress(ctx context.Context, claim model.Claim, document string) (model.Progress, error) {
	if err := s.auth.Authenticate(ctx, claim.Username, claim.Secret); err != nil {
		return model.Progress{}, err
	}

	if document == "" {
		return model.Progress{}, model.ErrMissingDocument
	}

	progress, err := s.progressStore.Get(ctx, claim.Username, document)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return model.Progress{}, err
		}
		s.logger.Error("Sync service: failed to get progress",
			"username", claim.Username,
			"document", document,
			"error", err.Error())
		return model.Progress{}, fmt.Errorf("failed to get progress: %w", err)
	}

	if s.config.RandomDeviceID {
		progress.DeviceID = randomDeviceID()
	}

	return progress, nil
}

// randomDeviceID generates an uppercase hex device identifier in the
// same shape clients produce themselves.
func randomDeviceID() string {
	id := uuid.New()
	return strings.ToUpper(hex.EncodeToString(id[:]))
}
