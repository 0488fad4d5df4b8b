package model

import "context"

// Claim is the identity presented with a request. There is no session
// or token lifecycle; every request carries the full claim.
type Claim struct {
	Username string
	Secret   string
}

// ClaimManager stores and retrieves the identity claim on a request
// context.
type ClaimManager interface {
	SetClaimToContext(ctx context.Context, claim Claim) context.Context
	GetClaimFromContext(ctx context.Context) (Claim, bool)
}
