package middleware

import (
	"net/http"

	"github.com/readsync/kosync-server/internal/model"
)

// Header names fixed by the sync protocol wire contract.
const (
	HeaderAuthUser = "X-Auth-User"
	HeaderAuthKey  = "X-Auth-Key"
)

// Claim extracts the per-request identity claim from the auth headers
// and injects it into the request context. It never rejects a request
// itself: authentication is decided by the services so that the
// missing/unknown/bad-secret distinction stays in one place.
type Claim struct {
	contextManager model.ClaimManager
}

// NewClaim creates a new Claim middleware instance.
func NewClaim(contextManager model.ClaimManager) *Claim {
	return &Claim{contextManager: contextManager}
}

// Handle wraps next, setting the identity claim on the context.
func (m *Claim) Handle(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claim := model.Claim{
			Username: r.Header.Get(HeaderAuthUser),
			Secret:   r.Header.Get(HeaderAuthKey),
		}
		next.ServeHTTP(w, r.WithContext(m.contextManager.SetClaimToContext(r.Context(), claim)))
	})
}
