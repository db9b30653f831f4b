package domain

import "time"

// Identity is the authenticated user as asserted by the hosted auth provider.
type Identity struct {
	UserID string
	Email  string
	Name   string
}

// TokenIssuer issues tokens (e.g. JWT) for an authenticated user.
type TokenIssuer interface {
	Issue(identity Identity, expiry time.Duration) (string, error)
}

// TokenVerifier verifies a token and returns the authenticated identity.
type TokenVerifier interface {
	Verify(token string) (Identity, error)
}
