package context

import (
	"context"

	"github.com/readsync/kosync-server/internal/model"
)

type claimKey struct{}

// Manager stores and retrieves the identity claim on a request context.
type Manager struct{}

// NewManager creates a new context manager instance.
func NewManager() *Manager {
	return &Manager{}
}

// SetClaimToContext returns a new context carrying the identity claim.
func (m *Manager) SetClaimToContext(ctx context.Context, claim model.Claim) context.Context {
	return context.WithValue(ctx, claimKey{}, claim)
}

// GetClaimFromContext returns the identity claim set by the claim
// middleware, if any.
func (m *Manager) GetClaimFromContext(ctx context.Context) (model.Claim, bool) {
	claim, ok := ctx.Value(claimKey{}).(model.Claim)
	return claim, ok
}
