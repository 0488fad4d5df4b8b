package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/readsync/kosync-server/internal/logger"
	"github.com/readsync/kosync-server/internal/model"
)

// SyncService defines the progress synchronization operations.
type SyncService interface {
	Register(ctx context.Context, username, password *string) (string, error)
	Authorize(ctx context.Context, claim model.Claim) error
	UpdateProgress(ctx context.Context, claim model.Claim, payload model.DocumentPayload) (document string, timestamp int64, err error)
	GetProgress(ctx context.Context, claim model.Claim, document string) (model.Progress, error)
}

// Sync handles HTTP endpoints for the sync protocol.
type Sync struct {
	syncService    SyncService
	contextManager model.ClaimManager
	logger         *logger.Logger
}

// NewSync creates a new Sync handler.
func NewSync(syncService SyncService, contextManager model.ClaimManager, logger *logger.Logger) *Sync {
	return &Sync{
		syncService:    syncService,
		contextManager: contextManager,
		logger:         logger,
	}
}

type registerRequest struct {
	Username *string `json:"username"`
	Password *string `json:"password"`
}

type registerResponse struct {
	Username string `json:"username"`
}

type authorizeResponse struct {
	Authorized string `json:"authorized"`
}

type updateProgressResponse struct {
	Document  string `json:"document"`
	Timestamp int64  `json:"timestamp"`
}

type progressResponse struct {
	Username   string  `json:"username"`
	Document   string  `json:"document"`
	Progress   string  `json:"progress"`
	Percentage float64 `json:"percentage"`
	Device     string  `json:"device"`
	DeviceID   string  `json:"device_id"`
	Timestamp  int64   `json:"timestamp"`
}

type messageResponse struct {
	Message string `json:"message"`
}

// Register creates a new user account.
func (h *Sync) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		handleError(w, model.ErrInvalidRequest)
		return
	}

	username, err := h.syncService.Register(r.Context(), req.Username, req.Password)
	if err != nil {
		h.logger.Error("Sync handler: registration failed",
			"error", err.Error())
		handleError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, registerResponse{Username: username})
}

// Authorize validates the credentials carried in the auth headers.
func (h *Sync) Authorize(w http.ResponseWriter, r *http.Request) {
	claim, _ := h.contextManager.GetClaimFromContext(r.Context())

	if err := h.syncService.Authorize(r.Context(), claim); err != nil {
		handleError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, authorizeResponse{Authorized: "OK"})
}

// UpdateProgress stores the progress record from the request body.
func (h *Sync) UpdateProgress(w http.ResponseWriter, r *http.Request) {
	claim, _ := h.contextManager.GetClaimFromContext(r.Context())

	var payload model.DocumentPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		handleError(w, model.ErrIncompleteDocument)
		return
	}

	document, timestamp, err := h.syncService.UpdateProgress(r.Context(), claim, payload)
	if err != nil {
		h.logger.Error("Sync handler: progress update failed",
			"username", claim.Username,
			"error", err.Error())
		handleError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, updateProgressResponse{Document: document, Timestamp: timestamp})
}

// GetProgress returns the progress record for the document in the path.
func (h *Sync) GetProgress(w http.ResponseWriter, r *http.Request) {
	claim, _ := h.contextManager.GetClaimFromContext(r.Context())
	document := r.PathValue("document")

	progress, err := h.syncService.GetProgress(r.Context(), claim, document)
	if err != nil {
		h.logger.Error("Sync handler: progress fetch failed",
			"username", claim.Username,
			"document", document,
			"error", err.Error())
		handleError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, progressResponse{
		Username:   progress.Username,
		Document:   progress.Document,
		Progress:   progress.Position,
		Percentage: progress.Percentage,
		Device:     progress.Device,
		DeviceID:   progress.DeviceID,
		Timestamp:  progress.Timestamp,
	})
}

// Health reports server liveness. Always 200, independent of store
// state.
func (h *Sync) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, messageResponse{Message: "healthy"})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
